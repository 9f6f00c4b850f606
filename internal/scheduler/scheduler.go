package scheduler

import (
	"context"
	"time"

	"github.com/go-co-op/gocron/v2"
	"github.com/tafypz/ercot-rts/pkg/logger"
	"github.com/tafypz/ercot-rts/pkg/queue"
)

type Runner interface {
	Run(ctx context.Context) (queue.CollectRunResult, error)
}

type Scheduler struct {
	runner    Runner
	interval  time.Duration
	scheduler gocron.Scheduler
}

func New(runner Runner, interval time.Duration) (*Scheduler, error) {
	s, err := gocron.NewScheduler()
	if err != nil {
		return nil, err
	}

	return &Scheduler{
		runner:    runner,
		interval:  interval,
		scheduler: s,
	}, nil
}

// Start registers the collection job and runs it once immediately. Runs
// never overlap; a tick that fires during a run is dropped.
func (s *Scheduler) Start(ctx context.Context) error {
	log := logger.Log

	_, err := s.scheduler.NewJob(
		gocron.DurationJob(s.interval),
		gocron.NewTask(func() {
			s.collect(ctx)
		}),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
		gocron.WithStartAt(gocron.WithStartImmediately()),
	)
	if err != nil {
		return err
	}

	s.scheduler.Start()
	log.Info().Dur("interval", s.interval).Msg("scheduler started")

	return nil
}

func (s *Scheduler) Stop() {
	if err := s.scheduler.Shutdown(); err != nil {
		logger.Log.Error().Err(err).Msg("scheduler shutdown error")
	}
}

func (s *Scheduler) collect(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}

	result, err := s.runner.Run(ctx)
	if err != nil {
		logger.Log.Error().Err(err).Str("run_id", result.RunID).Msg("collection run failed")
	}
}
