package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/target/quizreport/internal/core"
	"github.com/target/quizreport/internal/domain/model"
	"github.com/target/quizreport/internal/domain/report"
	apperrors "github.com/target/quizreport/internal/errors"
	obserrors "github.com/target/quizreport/internal/observability/errors"
	"github.com/target/quizreport/internal/observability/metrics"
	"github.com/target/quizreport/internal/observability/notify"
	"github.com/target/quizreport/internal/observability/statsd"
	"github.com/target/quizreport/internal/service/failurenotifier"
)

// MaxReportWorkerConcurrency caps the in-batch worker pool.
const MaxReportWorkerConcurrency = 16

// terminalWriteTimeout bounds MarkReady/MarkFailed once they are detached from the batch context.
const terminalWriteTimeout = 10 * time.Second

// ReportWorkerOptions groups dependencies for ReportWorker.
type ReportWorkerOptions struct {
	Jobs      core.ReportJobRepository      // required
	Artifacts core.ReportArtifactRepository // required
	Summaries core.AttemptSummaryRepository // required
	Content   core.PublishedTestProvider    // required
	// Generator may be nil; jobs then fail with report.ErrGeneratorNotConfigured.
	Generator core.ReportGenerator
	// Mirror optionally copies stored artifacts to object storage. Failures are logged only.
	Mirror core.ArtifactMirror
	// Concurrency is the number of jobs processed at once within a batch. Values below 1 mean 1.
	Concurrency     int
	Logger          *slog.Logger
	Metrics         statsd.Sink
	FailureNotifier *failurenotifier.Service
	Clock           func() time.Time
}

// ReportWorker claims queued report jobs and drives each through the generation pipeline.
type ReportWorker struct {
	jobs        core.ReportJobRepository
	artifacts   core.ReportArtifactRepository
	summaries   core.AttemptSummaryRepository
	content     core.PublishedTestProvider
	generator   core.ReportGenerator
	mirror      core.ArtifactMirror
	concurrency int
	logger      *slog.Logger
	metrics     statsd.Sink
	notifier    *failurenotifier.Service
	clock       func() time.Time
}

// NewReportWorker constructs a ReportWorker.
func NewReportWorker(opts ReportWorkerOptions) (*ReportWorker, error) {
	if opts.Jobs == nil {
		return nil, errors.New("Jobs is required")
	}
	if opts.Artifacts == nil {
		return nil, errors.New("Artifacts is required")
	}
	if opts.Summaries == nil {
		return nil, errors.New("Summaries is required")
	}
	if opts.Content == nil {
		return nil, errors.New("Content is required")
	}

	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	clock := opts.Clock
	if clock == nil {
		clock = time.Now
	}
	concurrency := min(max(opts.Concurrency, 1), MaxReportWorkerConcurrency)

	return &ReportWorker{
		jobs:        opts.Jobs,
		artifacts:   opts.Artifacts,
		summaries:   opts.Summaries,
		content:     opts.Content,
		generator:   opts.Generator,
		mirror:      opts.Mirror,
		concurrency: concurrency,
		logger:      logger.With("component", "report_worker"),
		metrics:     opts.Metrics,
		notifier:    opts.FailureNotifier,
		clock:       clock,
	}, nil
}

// MustNewReportWorker is like NewReportWorker but panics on invalid options.
func MustNewReportWorker(opts ReportWorkerOptions) *ReportWorker {
	w, err := NewReportWorker(opts)
	if err != nil {
		//nolint:forbidigo // Must constructor fails fast when dependencies are invalid during startup
		panic(err)
	}
	return w
}

// RunBatch claims up to limit queued jobs and processes each to a terminal state.
// Only a claim failure is returned; per-job failures are recorded on the job.
func (w *ReportWorker) RunBatch(ctx context.Context, limit int) (model.ReportBatchResult, error) {
	start := w.clock()
	jobs, err := w.jobs.ClaimQueued(ctx, limit)
	if err != nil {
		return model.ReportBatchResult{}, fmt.Errorf("claim report jobs: %w", err)
	}

	var ready, failed atomic.Int64
	g := new(errgroup.Group)
	g.SetLimit(w.concurrency)
	for _, job := range jobs {
		g.Go(func() error {
			if w.processJob(ctx, job) {
				ready.Add(1)
			} else {
				failed.Add(1)
			}
			return nil
		})
	}
	_ = g.Wait()

	res := model.ReportBatchResult{
		Claimed: len(jobs),
		Failed:  int(failed.Load()),
		Ready:   int(ready.Load()),
	}
	metrics.EmitReportBatch(w.metrics, res.Claimed, w.clock().Sub(start))
	if res.Claimed > 0 {
		w.logger.InfoContext(ctx, "report batch complete",
			"claimed", res.Claimed, "ready", res.Ready, "failed", res.Failed)
	}
	return res, nil
}

// processJob runs one job to a terminal state and reports whether it ended ready.
func (w *ReportWorker) processJob(ctx context.Context, job *model.ReportJob) bool {
	start := w.clock()
	log := w.logger.With("purchase_id", job.PurchaseID, "tenant_id", job.TenantID, "test_id", job.TestID)

	var reason string
	err := ctx.Err()
	if err != nil {
		err = fmt.Errorf("batch canceled before start: %w", err)
	} else {
		reason, err = w.generate(ctx, job, log)
	}

	// The job is claimed, so its terminal write must land even after the batch deadline.
	done, cancel := context.WithTimeout(context.WithoutCancel(ctx), terminalWriteTimeout)
	defer cancel()

	if err == nil {
		if err = w.jobs.MarkReady(done, job.PurchaseID); err == nil {
			metrics.EmitReportJob(w.metrics, metrics.ReportJobMetric{
				Result:   metrics.ResultReady,
				Reason:   reason,
				Duration: w.clock().Sub(start),
			})
			log.InfoContext(done, "report job ready", "reason", reason)
			return true
		}
		err = fmt.Errorf("mark ready: %w", err)
	}

	w.fail(done, job, err, log)
	metrics.EmitReportJob(w.metrics, metrics.ReportJobMetric{
		Result:   metrics.ResultFailed,
		Reason:   metrics.ReasonError,
		Duration: w.clock().Sub(start),
		Err:      err,
	})
	return false
}

// generate produces and stores the artifact for job. It returns the success reason.
func (w *ReportWorker) generate(ctx context.Context, job *model.ReportJob, log *slog.Logger) (string, error) {
	exists, err := w.artifacts.Exists(ctx, job.PurchaseID)
	if err != nil {
		return "", fmt.Errorf("check artifact: %w", err)
	}
	if exists {
		return metrics.ReasonArtifactExists, nil
	}

	if w.generator == nil || !w.generator.Configured() {
		return "", report.ErrGeneratorNotConfigured
	}

	summary, err := w.summaries.Get(ctx, model.AttemptSummaryKey{
		TenantID:  job.TenantID,
		TestID:    job.TestID,
		SessionID: job.SessionID,
	})
	switch {
	case apperrors.IsNotFound(err):
		return "", report.ErrSummaryMissing
	case err != nil:
		return "", fmt.Errorf("load attempt summary: %w", err)
	case summary == nil:
		return "", report.ErrSummaryMissing
	}

	published, err := w.content.LoadPublishedTestByID(ctx, job.TenantID, job.TestID, job.Locale)
	if err != nil {
		return "", fmt.Errorf("load published test: %w", err)
	}
	if published == nil || published.Spec == nil {
		return "", report.ErrPublishedTestMissing
	}

	brief, err := report.BuildBrief(published.Spec, summary)
	if err != nil {
		return "", err
	}
	styleID := report.InferStyle(brief)
	modelName := w.generator.Model()

	doc, err := w.generator.Generate(ctx, core.GenerateReportParams{
		Brief:   brief,
		StyleID: styleID,
		Model:   modelName,
	})
	if err != nil {
		return "", err
	}
	body, err := json.Marshal(doc)
	if err != nil {
		return "", fmt.Errorf("encode report: %w", err)
	}

	artifact := &model.ReportArtifact{
		PurchaseID:     job.PurchaseID,
		TenantID:       job.TenantID,
		TestID:         job.TestID,
		SessionID:      job.SessionID,
		Locale:         job.Locale,
		StyleID:        styleID,
		Model:          modelName,
		PromptVersion:  model.PromptVersion,
		ScoringVersion: model.ScoringVersion,
		ReportJSON:     body,
		CreatedAt:      w.clock().UTC(),
	}
	inserted, err := w.artifacts.Insert(ctx, artifact)
	if err != nil {
		return "", fmt.Errorf("store artifact: %w", err)
	}
	if !inserted {
		// A concurrent worker stored the artifact first; the purchase is still satisfied.
		log.InfoContext(ctx, "artifact already stored by another worker")
		return metrics.ReasonArtifactExists, nil
	}

	if w.mirror != nil {
		if mirrorErr := w.mirror.Mirror(ctx, artifact); mirrorErr != nil {
			log.WarnContext(ctx, "artifact mirror failed", "error", mirrorErr)
		}
	}
	return metrics.ReasonGenerated, nil
}

func (w *ReportWorker) fail(ctx context.Context, job *model.ReportJob, cause error, log *slog.Logger) {
	msg := report.TruncateError(cause)
	if err := w.jobs.MarkFailed(ctx, job.PurchaseID, msg); err != nil {
		// The job stays running; the reaper returns it to the queue.
		log.ErrorContext(ctx, "failed to mark report job failed", "error", err, "cause", msg)
	} else {
		log.WarnContext(ctx, "report job failed", "error", msg)
	}

	w.notifier.NotifyReportFailure(ctx, notify.ReportFailurePayload{
		PurchaseID: job.PurchaseID,
		TenantID:   job.TenantID,
		TestID:     job.TestID,
		SessionID:  job.SessionID,
		Attempts:   job.Attempts + 1,
		Error:      msg,
		ErrorClass: obserrors.Classify(cause),
		Severity:   notify.SeverityError,
		OccurredAt: w.clock().UTC(),
	})
}
