package cache

import (
	"context"

	"github.com/tafypz/ercot-rts/pkg/logger"
)

type PageStore interface {
	Get(ctx context.Context, url string) ([]byte, bool)
	Set(ctx context.Context, url string, page []byte) error
}

type PageFetcher interface {
	Fetch(ctx context.Context, url string) ([]byte, error)
}

// CachedFetcher serves pages from store and falls back to the wrapped
// fetcher on a miss. Cache write failures are logged and ignored.
type CachedFetcher struct {
	next  PageFetcher
	store PageStore
}

func NewCachedFetcher(next PageFetcher, store PageStore) *CachedFetcher {
	return &CachedFetcher{next: next, store: store}
}

func (f *CachedFetcher) Fetch(ctx context.Context, url string) ([]byte, error) {
	if page, ok := f.store.Get(ctx, url); ok {
		return page, nil
	}

	page, err := f.next.Fetch(ctx, url)
	if err != nil {
		return nil, err
	}

	if err := f.store.Set(ctx, url, page); err != nil {
		logger.Log.Warn().Err(err).Str("url", url).Msg("page cache set failed")
	}
	return page, nil
}
