package scheduler

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tafypz/ercot-rts/pkg/queue"
)

type countingRunner struct {
	runs atomic.Int32
	err  error
}

func (r *countingRunner) Run(context.Context) (queue.CollectRunResult, error) {
	r.runs.Add(1)
	return queue.CollectRunResult{RunID: "run"}, r.err
}

func TestScheduler_RunsImmediatelyAndOnInterval(t *testing.T) {
	runner := &countingRunner{}
	s, err := New(runner, 50*time.Millisecond)
	require.NoError(t, err)

	require.NoError(t, s.Start(context.Background()))
	defer s.Stop()

	assert.Eventually(t, func() bool { return runner.runs.Load() >= 3 }, 2*time.Second, 10*time.Millisecond)
}

func TestScheduler_KeepsRunningAfterFailure(t *testing.T) {
	runner := &countingRunner{err: errors.New("page unavailable")}
	s, err := New(runner, 30*time.Millisecond)
	require.NoError(t, err)

	require.NoError(t, s.Start(context.Background()))
	defer s.Stop()

	assert.Eventually(t, func() bool { return runner.runs.Load() >= 2 }, 2*time.Second, 10*time.Millisecond)
}

func TestScheduler_SkipsWhenContextDone(t *testing.T) {
	runner := &countingRunner{}
	s, err := New(runner, time.Hour)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	s.collect(ctx)

	assert.Zero(t, runner.runs.Load())
}
