package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/tafypz/ercot-rts/internal/api"
	"github.com/tafypz/ercot-rts/internal/cache"
	"github.com/tafypz/ercot-rts/internal/collector"
	"github.com/tafypz/ercot-rts/internal/config"
	"github.com/tafypz/ercot-rts/internal/repo"
	"github.com/tafypz/ercot-rts/internal/scheduler"
	"github.com/tafypz/ercot-rts/pkg/fetcher"
	"github.com/tafypz/ercot-rts/pkg/logger"
	"github.com/tafypz/ercot-rts/pkg/nats"
	"github.com/tafypz/ercot-rts/pkg/settlement"
)

const seenWarmupWindow = 48 * time.Hour

func main() {
	cfg := config.Load()
	logger.Init(logger.IsDev())
	log := logger.Log

	loc, err := cfg.Location()
	if err != nil {
		log.Fatal().Err(err).Str("timezone", cfg.Timezone).Msg("invalid timezone")
	}

	connectCtx, connectCancel := context.WithTimeout(context.Background(), 10*time.Second)
	mongoClient, err := mongo.Connect(connectCtx, options.Client().ApplyURI(cfg.MongoURL))
	connectCancel()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to MongoDB")
	}
	defer mongoClient.Disconnect(context.Background())

	priceRepo := repo.NewPriceRepo(mongoClient.Database(cfg.MongoDB))

	var pageFetcher settlement.PageFetcher = fetcher.New(
		fetcher.WithTimeout(cfg.FetchTimeout),
		fetcher.WithRateLimit(cfg.FetchRatePerMin),
		fetcher.WithUserAgent("ercot-rts"),
	)

	// Redis is optional: without it every request fetches the page
	if cfg.RedisURL != "" {
		pageCache, err := cache.NewPageCache(cfg.RedisURL, cfg.PageCacheTTL)
		if err != nil {
			log.Warn().Err(err).Msg("redis unavailable, page cache disabled")
		} else {
			defer pageCache.Close()
			pageFetcher = cache.NewCachedFetcher(pageFetcher, pageCache)
			log.Info().Dur("ttl", cfg.PageCacheTTL).Msg("page cache enabled")
		}
	}

	seen := cache.NewSeenFilter(1_000_000, 0.001)
	warmCtx, warmCancel := context.WithTimeout(context.Background(), 30*time.Second)
	recent, err := priceRepo.IntervalsSince(warmCtx, time.Now().Add(-seenWarmupWindow))
	warmCancel()
	if err != nil {
		log.Warn().Err(err).Msg("failed to warm seen filter")
	} else {
		seen.Mark(recent...)
		log.Info().Uint32("intervals", seen.Intervals()).Msg("seen filter warmed")
	}

	parser := settlement.NewParser(
		settlement.WithURL(cfg.RTSURL),
		settlement.WithDateFormat(cfg.DateFormat),
		settlement.WithTimeFormat(cfg.TimeFormat),
		settlement.WithLocation(loc),
		settlement.WithFetcher(pageFetcher),
	)

	collectorOpts := []collector.Option{
		collector.WithHubs(cfg.CollectHubs),
		collector.WithSeenSet(seen),
	}

	if cfg.NatsURL != "" {
		natsClient, err := nats.New(cfg.NatsURL)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to connect to NATS")
		}
		defer natsClient.Close()
		collectorOpts = append(collectorOpts, collector.WithPublisher(nats.NewPublisher(natsClient)))
	}

	priceCollector := collector.New(cfg.RTSURL, pageFetcher, parser.Extractor(), priceRepo, collectorOpts...)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sched, err := scheduler.New(priceCollector, cfg.CollectInterval)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create scheduler")
	}
	if err := sched.Start(ctx); err != nil {
		log.Fatal().Err(err).Msg("failed to start scheduler")
	}
	defer sched.Stop()

	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			log.Error().Err(err).Str("path", c.Path()).Msg("request error")
			return c.Status(500).JSON(fiber.Map{"error": err.Error()})
		},
	})
	api.SetupRoutes(app, api.NewHandler(parser, priceRepo), cfg.InternalAPIToken)

	go func() {
		addr := ":" + cfg.HTTPPort
		log.Info().Str("addr", addr).Msg("HTTP API server starting")
		if err := app.Listen(addr); err != nil {
			log.Error().Err(err).Msg("HTTP server error")
		}
	}()

	log.Info().
		Str("url", cfg.RTSURL).
		Strs("hubs", cfg.CollectHubs).
		Dur("interval", cfg.CollectInterval).
		Msg("collector started")

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	log.Info().Msg("shutting down")
	cancel()
	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		log.Error().Err(err).Msg("HTTP server shutdown error")
	}
}
