package collector

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/tafypz/ercot-rts/pkg/logger"
	"github.com/tafypz/ercot-rts/pkg/models"
	"github.com/tafypz/ercot-rts/pkg/queue"
	"github.com/tafypz/ercot-rts/pkg/settlement"
)

type PageFetcher interface {
	Fetch(ctx context.Context, url string) ([]byte, error)
}

type PriceStore interface {
	// UpsertMany returns the prices that were not stored before.
	UpsertMany(ctx context.Context, prices []models.Price) ([]models.Price, error)
	LatestTimestamp(ctx context.Context, hub string) (time.Time, bool, error)
}

type Publisher interface {
	PublishPriceBatch(ctx context.Context, batch queue.PriceBatch) error
	PublishRunResult(ctx context.Context, result queue.CollectRunResult) error
}

// SeenSet approximates the stored intervals. It only feeds logging; the
// store decides what is new.
type SeenSet interface {
	Seen(p models.Price) bool
	Mark(prices ...models.Price)
}

// Collector reads the settlement page once per run and stores the intervals
// settled since the last run for every hub.
type Collector struct {
	url       string
	fetcher   PageFetcher
	extractor *settlement.Extractor
	store     PriceStore
	publisher Publisher
	seen      SeenSet
	hubs      []string
	backfill  time.Duration
	now       func() time.Time
}

type Option func(*Collector)

// WithHubs limits collection to hubs; by default every location on the page is collected.
func WithHubs(hubs []string) Option {
	return func(c *Collector) {
		c.hubs = hubs
	}
}

// WithBackfill sets how far back a hub without stored prices is read.
func WithBackfill(d time.Duration) Option {
	return func(c *Collector) {
		c.backfill = d
	}
}

func WithClock(now func() time.Time) Option {
	return func(c *Collector) {
		c.now = now
	}
}

func WithPublisher(p Publisher) Option {
	return func(c *Collector) {
		c.publisher = p
	}
}

func WithSeenSet(s SeenSet) Option {
	return func(c *Collector) {
		c.seen = s
	}
}

func New(url string, fetcher PageFetcher, extractor *settlement.Extractor, store PriceStore, opts ...Option) *Collector {
	c := &Collector{
		url:       url,
		fetcher:   fetcher,
		extractor: extractor,
		store:     store,
		backfill:  24 * time.Hour,
		now:       time.Now,
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// Run performs one collection run. A fetch, structure or parse failure
// aborts the run; an unknown configured hub is skipped.
func (c *Collector) Run(ctx context.Context) (queue.CollectRunResult, error) {
	log := logger.Log

	result := queue.CollectRunResult{
		RunID:     uuid.New().String(),
		StartedAt: c.now(),
	}

	err := c.collect(ctx, &result)

	result.FinishedAt = c.now()
	result.Success = err == nil
	if err != nil {
		result.Error = err.Error()
	}

	if c.publisher != nil {
		if pubErr := c.publisher.PublishRunResult(ctx, result); pubErr != nil {
			log.Warn().Err(pubErr).Str("run_id", result.RunID).Msg("failed to publish run result")
		}
	}

	return result, err
}

func (c *Collector) collect(ctx context.Context, result *queue.CollectRunResult) error {
	log := logger.Log.With().Str("run_id", result.RunID).Logger()

	page, err := c.fetcher.Fetch(ctx, c.url)
	if err != nil {
		return fmt.Errorf("fetch settlement page: %w", err)
	}

	hubs := c.hubs
	if len(hubs) == 0 {
		hubs, err = c.extractor.Locations(page)
		if err != nil {
			return fmt.Errorf("list locations: %w", err)
		}
	}

	for _, hub := range hubs {
		n, err := c.collectHub(ctx, page, hub, result.RunID)
		if err != nil {
			var invalid *settlement.InvalidArgumentError
			if errors.As(err, &invalid) {
				log.Warn().Err(err).Str("hub", hub).Msg("hub not on settlement page, skipping")
				continue
			}
			return fmt.Errorf("collect %s: %w", hub, err)
		}
		result.Hubs++
		result.PricesNew += n
	}

	log.Info().
		Int("hubs", result.Hubs).
		Int("prices_new", result.PricesNew).
		Msg("collection run finished")

	return nil
}

func (c *Collector) collectHub(ctx context.Context, page []byte, hub, runID string) (int, error) {
	cutoff, err := c.cutoff(ctx, hub)
	if err != nil {
		return 0, err
	}

	prices, err := c.extractor.Prices(page, hub, cutoff)
	if err != nil {
		return 0, err
	}

	if len(prices) == 0 {
		return 0, nil
	}

	collectedAt := c.now()
	known := 0
	for i := range prices {
		prices[i].CollectedAt = collectedAt
		if c.seen != nil && c.seen.Seen(prices[i]) {
			known++
		}
	}

	inserted, err := c.store.UpsertMany(ctx, prices)
	if err != nil {
		return 0, fmt.Errorf("store prices: %w", err)
	}

	if c.seen != nil {
		c.seen.Mark(inserted...)
	}

	logger.Log.Debug().
		Str("run_id", runID).
		Str("hub", hub).
		Int("read", len(prices)).
		Int("known", known).
		Int("new", len(inserted)).
		Msg("hub collected")

	if c.publisher != nil && len(inserted) > 0 {
		batch := queue.PriceBatch{
			RunID:       runID,
			Hub:         hub,
			Prices:      inserted,
			SourceURL:   c.url,
			CollectedAt: collectedAt,
		}
		if err := c.publisher.PublishPriceBatch(ctx, batch); err != nil {
			logger.Log.Warn().Err(err).Str("hub", hub).Msg("failed to publish price batch")
		}
	}

	return len(inserted), nil
}

// cutoff is the newest stored interval (inclusive, the store deduplicates)
// or the backfill window for a hub without history.
func (c *Collector) cutoff(ctx context.Context, hub string) (time.Time, error) {
	latest, ok, err := c.store.LatestTimestamp(ctx, hub)
	if err != nil {
		return time.Time{}, fmt.Errorf("latest timestamp: %w", err)
	}
	if ok {
		return latest, nil
	}
	return c.now().Add(-c.backfill), nil
}
