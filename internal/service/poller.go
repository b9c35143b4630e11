package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/target/quizreport/internal/domain/model"
	"github.com/target/quizreport/internal/observability/metrics"
	"github.com/target/quizreport/internal/observability/statsd"
)

// BatchRunner runs one claim-and-process cycle.
type BatchRunner interface {
	RunBatch(ctx context.Context, limit int) (model.ReportBatchResult, error)
}

// ReportPollerOptions groups dependencies for ReportPoller.
type ReportPollerOptions struct {
	Runner   BatchRunner   // Required
	Interval time.Duration // Required
	Limit    int
	// BatchTimeout bounds each batch; zero means no per-batch deadline.
	BatchTimeout time.Duration
	Logger       *slog.Logger
	Metrics      statsd.Sink
}

// ReportPoller triggers report batches on an interval, as an in-process alternative to an external cron.
// A tick that finds a full batch polls again immediately so a backlog drains without waiting.
type ReportPoller struct {
	runner       BatchRunner
	interval     time.Duration
	limit        int
	batchTimeout time.Duration
	logger       *slog.Logger
	metrics      statsd.Sink
}

// NewReportPoller constructs a ReportPoller.
func NewReportPoller(opts ReportPollerOptions) (*ReportPoller, error) {
	if opts.Runner == nil {
		return nil, errors.New("Runner is required")
	}
	if opts.Interval <= 0 {
		return nil, errors.New("Interval must be positive")
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	limit := opts.Limit
	if limit <= 0 {
		limit = 5
	}
	return &ReportPoller{
		runner:       opts.Runner,
		interval:     opts.Interval,
		limit:        limit,
		batchTimeout: opts.BatchTimeout,
		logger:       logger.With("component", "report_poller"),
		metrics:      opts.Metrics,
	}, nil
}

// Run polls until ctx is cancelled. It returns nil on cancellation.
func (p *ReportPoller) Run(ctx context.Context) error {
	p.logger.InfoContext(ctx, "starting report poller", "interval", p.interval, "limit", p.limit)
	waitWithJitter(ctx, p.interval, p.logger)

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		p.drain(ctx)
		select {
		case <-ctx.Done():
			p.logger.InfoContext(ctx, "report poller stopping", "reason", ctx.Err())
			if errors.Is(ctx.Err(), context.Canceled) {
				return nil
			}
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

// drain runs batches until one comes back short of the limit.
func (p *ReportPoller) drain(ctx context.Context) {
	for ctx.Err() == nil {
		res, err := p.tick(ctx)
		if err != nil || res.Claimed < p.limit {
			return
		}
	}
}

func (p *ReportPoller) tick(ctx context.Context) (model.ReportBatchResult, error) {
	batchCtx := ctx
	if p.batchTimeout > 0 {
		var cancel context.CancelFunc
		batchCtx, cancel = context.WithTimeout(ctx, p.batchTimeout)
		defer cancel()
	}

	res, err := p.runner.RunBatch(batchCtx, p.limit)
	result := metrics.ResultSuccess
	switch {
	case err != nil:
		result = metrics.ResultError
		if !isContextCancellation(err) {
			p.logger.ErrorContext(ctx, "report batch failed", "error", err)
		}
	case res.Claimed == 0:
		result = metrics.ResultNoop
	}
	if p.metrics != nil {
		p.metrics.Count(metrics.MetricPollerTick, 1, map[string]string{"result": result})
	}
	return res, err
}
