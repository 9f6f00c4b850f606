package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/tafypz/ercot-rts/pkg/logger"
)

// PageCache keeps fetched settlement pages in Redis so that one collection
// run reads the page once for all hubs.
type PageCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewPageCache(redisURL string, ttl time.Duration) (*PageCache, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, err
	}

	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, err
	}

	return &PageCache{
		client: client,
		ttl:    ttl,
	}, nil
}

func (c *PageCache) Get(ctx context.Context, url string) ([]byte, bool) {
	page, err := c.client.Get(ctx, pageKey(url)).Bytes()
	if err == redis.Nil {
		return nil, false
	}
	if err != nil {
		logger.Log.Debug().Err(err).Str("url", url).Msg("page cache get error")
		return nil, false
	}
	return page, true
}

func (c *PageCache) Set(ctx context.Context, url string, page []byte) error {
	return c.client.Set(ctx, pageKey(url), page, c.ttl).Err()
}

func (c *PageCache) Close() error {
	return c.client.Close()
}

func pageKey(url string) string {
	hash := sha256.Sum256([]byte(url))
	return "page:" + hex.EncodeToString(hash[:])
}
