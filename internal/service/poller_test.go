package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/target/quizreport/internal/domain/model"
	"github.com/target/quizreport/internal/observability/metrics"
	"github.com/target/quizreport/internal/observability/statsd"
)

// scriptedRunner returns queued results in order, then empty batches.
type scriptedRunner struct {
	mu      sync.Mutex
	results []model.ReportBatchResult
	errs    []error
	limits  []int
}

func (r *scriptedRunner) RunBatch(_ context.Context, limit int) (model.ReportBatchResult, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.limits = append(r.limits, limit)
	var (
		res model.ReportBatchResult
		err error
	)
	if len(r.results) > 0 {
		res, r.results = r.results[0], r.results[1:]
	}
	if len(r.errs) > 0 {
		err, r.errs = r.errs[0], r.errs[1:]
	}
	return res, err
}

func (r *scriptedRunner) calls() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.limits)
}

func TestNewReportPoller_Validation(t *testing.T) {
	_, err := NewReportPoller(ReportPollerOptions{Interval: time.Second})
	require.Error(t, err)
	_, err = NewReportPoller(ReportPollerOptions{Runner: &scriptedRunner{}})
	require.Error(t, err)
}

func TestReportPoller_DrainsFullBatches(t *testing.T) {
	runner := &scriptedRunner{results: []model.ReportBatchResult{
		{Claimed: 2, Ready: 2},
		{Claimed: 2, Ready: 1, Failed: 1},
		{Claimed: 1, Ready: 1},
	}}
	rec := &statsd.Recorder{}
	p, err := NewReportPoller(ReportPollerOptions{Runner: runner, Interval: time.Hour, Limit: 2, Metrics: rec})
	require.NoError(t, err)

	p.drain(context.Background())

	assert.Equal(t, 3, runner.calls())
	assert.Equal(t, []int{2, 2, 2}, runner.limits)
	assert.InDelta(t, 3, rec.Sum(metrics.MetricPollerTick, map[string]string{"result": metrics.ResultSuccess}), 0)
}

func TestReportPoller_StopsDrainOnError(t *testing.T) {
	runner := &scriptedRunner{
		results: []model.ReportBatchResult{{}},
		errs:    []error{errors.New("db down")},
	}
	rec := &statsd.Recorder{}
	p, _ := NewReportPoller(ReportPollerOptions{Runner: runner, Interval: time.Hour, Limit: 5, Metrics: rec})

	p.drain(context.Background())

	assert.Equal(t, 1, runner.calls())
	assert.InDelta(t, 1, rec.Sum(metrics.MetricPollerTick, map[string]string{"result": metrics.ResultError}), 0)
}

func TestReportPoller_RunStopsOnCancel(t *testing.T) {
	runner := &scriptedRunner{}
	p, _ := NewReportPoller(ReportPollerOptions{Runner: runner, Interval: 20 * time.Millisecond, BatchTimeout: time.Second})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- p.Run(ctx) }()

	require.Eventually(t, func() bool { return runner.calls() >= 2 }, time.Second, 5*time.Millisecond)
	cancel()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("poller did not stop")
	}
}
