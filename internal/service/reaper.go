package service

import (
	"context"
	"crypto/rand"
	"encoding/binary"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/target/quizreport/config"
	"github.com/target/quizreport/internal/core"
	obserrors "github.com/target/quizreport/internal/observability/errors"
	"github.com/target/quizreport/internal/observability/metrics"
	"github.com/target/quizreport/internal/observability/statsd"
)

// ReaperServiceOptions groups dependencies for ReaperService.
type ReaperServiceOptions struct {
	Repo    core.ReaperRepository // Required: reaper repository
	Config  config.ReaperConfig   // Required: reaper configuration
	Logger  *slog.Logger          // Optional: structured logger
	Metrics statsd.Sink           // Optional: metrics sink (StatsD-compatible)
}

// ReaperService keeps the report queue healthy.
//
// This service manages:
// - Requeueing running jobs orphaned by a crashed worker.
// - Deleting old ready job rows to prevent database bloat.
//
// Failed jobs are the dead letter and are never touched.
type ReaperService struct {
	repo    core.ReaperRepository
	config  config.ReaperConfig
	logger  *slog.Logger
	metrics statsd.Sink
}

// NewReaperService constructs a new ReaperService.
func NewReaperService(opts ReaperServiceOptions) (*ReaperService, error) {
	if opts.Repo == nil {
		return nil, errors.New("ReaperRepository is required")
	}

	var logger *slog.Logger
	if opts.Logger != nil {
		logger = opts.Logger.With("component", "reaper_service")
		logger.Debug("ReaperService initialized",
			"interval", opts.Config.Interval,
			"running_max_age", opts.Config.RunningMaxAge,
			"ready_max_age", opts.Config.ReadyMaxAge,
		)
	}

	return &ReaperService{
		repo:    opts.Repo,
		config:  opts.Config,
		logger:  logger,
		metrics: opts.Metrics,
	}, nil
}

// Run starts the reaper loop and runs until the context is cancelled.
// Returns nil on graceful shutdown (context.Canceled), error otherwise.
func (s *ReaperService) Run(ctx context.Context) error {
	if s.logger != nil {
		s.logger.InfoContext(ctx, "starting reaper service", "interval", s.config.Interval)
	}

	// Stagger instances that start together.
	waitWithJitter(ctx, s.config.Interval, s.logger)

	ticker := time.NewTicker(s.config.Interval)
	defer ticker.Stop()

	if err := s.RunOnce(ctx); err != nil {
		s.logCleanupError(err, "initial cleanup")
	}

	for {
		select {
		case <-ctx.Done():
			if s.logger != nil {
				s.logger.InfoContext(ctx, "reaper service stopping", "reason", ctx.Err())
			}
			if errors.Is(ctx.Err(), context.Canceled) {
				return nil
			}
			return ctx.Err()

		case <-ticker.C:
			if err := s.RunOnce(ctx); err != nil {
				s.logCleanupError(err, "cleanup")
			}
		}
	}
}

// RunOnce performs every cleanup step once.
func (s *ReaperService) RunOnce(ctx context.Context) error {
	start := time.Now()
	var (
		errs               []error
		allContextCanceled = true
		requeued, deleted  cleanupStepOutcome
	)

	steps := []struct {
		fn    cleanupFunc
		label string
		out   *cleanupStepOutcome
	}{
		{s.requeueStaleRunning, "requeue stale running jobs", &requeued},
		{s.deleteOldReadyJobs, "delete old ready jobs", &deleted},
	}

	for _, step := range steps {
		*step.out = executeCleanupStep(ctx, step.fn, step.label)
		if step.out.aggregateErr != nil {
			errs = append(errs, step.out.aggregateErr)
			allContextCanceled = allContextCanceled && step.out.canceled
		}
	}

	s.emitCleanupMetrics(requeued, deleted, time.Since(start))

	if len(errs) > 0 {
		joined := errors.Join(errs...)
		if allContextCanceled && isContextCancellation(joined) {
			return context.Canceled
		}
		return fmt.Errorf("cleanup failed: %w", joined)
	}
	return nil
}

type cleanupFunc func(context.Context) (int64, error)

type cleanupStepOutcome struct {
	count        int64
	metricErr    error
	aggregateErr error
	canceled     bool
}

func executeCleanupStep(ctx context.Context, fn cleanupFunc, label string) cleanupStepOutcome {
	count, err := fn(ctx)
	outcome := cleanupStepOutcome{
		count:     count,
		metricErr: suppressContextCancellation(err),
		canceled:  isContextCancellation(err),
	}
	if err != nil {
		outcome.aggregateErr = fmt.Errorf("%s: %w", label, err)
	}
	return outcome
}

// drainBatches calls batch until it affects no rows, checking ctx between batches.
func drainBatches(ctx context.Context, batch func() (int64, error)) (int64, error) {
	var total int64
	for {
		count, err := batch()
		if err != nil {
			return total, err
		}
		total += count
		if count == 0 {
			return total, nil
		}
		if ctx.Err() != nil {
			return total, ctx.Err()
		}
	}
}

// requeueStaleRunning returns jobs orphaned in running to the queue.
// The artifact check makes reprocessing them safe.
func (s *ReaperService) requeueStaleRunning(ctx context.Context) (int64, error) {
	total, err := drainBatches(ctx, func() (int64, error) {
		return s.repo.RequeueStaleRunning(ctx, s.config.RunningMaxAge, s.config.BatchSize)
	})
	if total > 0 && s.logger != nil {
		s.logger.WarnContext(ctx, "requeued stale running report jobs",
			"count", total,
			"max_age", s.config.RunningMaxAge,
		)
	}
	return total, err
}

// deleteOldReadyJobs deletes ready job rows older than the configured max age.
func (s *ReaperService) deleteOldReadyJobs(ctx context.Context) (int64, error) {
	total, err := drainBatches(ctx, func() (int64, error) {
		return s.repo.DeleteOldReadyJobs(ctx, core.DeleteOldReportJobsParams{
			MaxAge:    s.config.ReadyMaxAge,
			BatchSize: s.config.BatchSize,
		})
	})
	if total > 0 && s.logger != nil {
		s.logger.InfoContext(ctx, "deleted old ready report jobs",
			"count", total,
			"max_age", s.config.ReadyMaxAge,
		)
	}
	return total, err
}

func (s *ReaperService) emitCleanupMetrics(requeued, deleted cleanupStepOutcome, elapsed time.Duration) {
	if s.metrics == nil {
		return
	}

	firstErr := firstError(requeued.metricErr, deleted.metricErr)
	result := metrics.ResultSuccess
	if firstErr != nil {
		result = metrics.ResultError
	} else if requeued.count+deleted.count == 0 {
		result = metrics.ResultNoop
	}

	tags := map[string]string{"result": result}
	if firstErr != nil {
		if class := obserrors.Classify(firstErr); class != "" {
			tags["error_class"] = class
		}
	}

	s.metrics.Count(metrics.MetricReaperCleanup, 1, tags)
	if elapsed > 0 {
		s.metrics.Timing(metrics.MetricReaperDuration, elapsed, metrics.CloneTags(tags))
	}
	metrics.EmitReaper(s.metrics, requeued.count, deleted.count)

	if firstErr == nil {
		s.metrics.Gauge(metrics.MetricReaperLastSuccess, float64(time.Now().Unix()), nil)
	}
}

func (s *ReaperService) logCleanupError(err error, label string) {
	if err == nil || s.logger == nil {
		return
	}

	if isContextCancellation(err) {
		s.logger.Debug(label+" cancelled by context", "error", err)
		return
	}

	s.logger.Error(label+" failed", "error", err)
}

// waitWithJitter sleeps for a random delay up to 10% of interval, or until ctx is done.
func waitWithJitter(ctx context.Context, interval time.Duration, logger *slog.Logger) {
	maxJitter := int64(interval / 10)
	if maxJitter <= 0 {
		return
	}

	var buf [8]byte
	if _, err := rand.Read(buf[:]); err != nil {
		// If crypto/rand fails, skip jitter rather than failing startup
		if logger != nil {
			logger.WarnContext(ctx, "failed to generate jitter, skipping", "error", err)
		}
		return
	}

	// Use modulo on uint64 before converting to avoid overflow
	jitterNanos := binary.BigEndian.Uint64(buf[:]) % uint64(maxJitter)
	jitter := time.Duration(int64(jitterNanos)) // #nosec G115 - bounded by maxJitter which is int64

	timer := time.NewTimer(jitter)
	defer timer.Stop()
	select {
	case <-timer.C:
	case <-ctx.Done():
	}
}

func firstError(errs ...error) error {
	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}

func isContextCancellation(err error) bool {
	if err == nil {
		return false
	}
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}

func suppressContextCancellation(err error) error {
	if isContextCancellation(err) {
		return nil
	}
	return err
}
