// Package failurenotifier fans report failure notifications out to the configured sinks.
package failurenotifier

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/target/quizreport/internal/core"
	"github.com/target/quizreport/internal/observability/notify"
)

// DefaultDedupeWindow suppresses repeat notifications for the same purchase.
const DefaultDedupeWindow = time.Hour

// SinkRegistration pairs a sink implementation with a human-readable name for logging.
type SinkRegistration struct {
	Name string
	Sink notify.Sink
}

// Options configures the failure notifier service.
type Options struct {
	Logger *slog.Logger
	Sinks  []SinkRegistration
	// Dedupe, when set, records a marker per purchase so a job that keeps failing
	// after requeues pages once per DedupeWindow.
	Dedupe       core.CacheRepository
	DedupeWindow time.Duration
}

// Service dispatches failure events to all registered sinks.
type Service struct {
	logger       *slog.Logger
	sinks        []SinkRegistration
	dedupe       core.CacheRepository
	dedupeWindow time.Duration
}

// NewService constructs a failure notifier.
func NewService(opts Options) *Service {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	var sinks []SinkRegistration
	for _, entry := range opts.Sinks {
		if entry.Sink == nil {
			continue
		}
		if entry.Name == "" {
			entry.Name = "sink"
		}
		sinks = append(sinks, entry)
	}

	window := opts.DedupeWindow
	if window <= 0 {
		window = DefaultDedupeWindow
	}
	return &Service{
		logger:       logger.With("component", "failure_notifier"),
		sinks:        sinks,
		dedupe:       opts.Dedupe,
		dedupeWindow: window,
	}
}

// NotifyReportFailure delivers the payload to every sink concurrently and waits for all of them.
// Delivery errors are logged, never returned.
func (s *Service) NotifyReportFailure(ctx context.Context, payload notify.ReportFailurePayload) {
	if s == nil || len(s.sinks) == 0 {
		return
	}
	if s.suppressed(ctx, payload.PurchaseID) {
		s.logger.DebugContext(ctx, "suppressing repeat failure notification", "purchase_id", payload.PurchaseID)
		return
	}
	if payload.Severity == "" {
		payload.Severity = notify.SeverityCritical
	}

	var wg sync.WaitGroup
	for _, entry := range s.sinks {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := entry.Sink.SendReportFailure(ctx, payload); err != nil {
				s.logger.ErrorContext(ctx, "failure notifier delivery error",
					"sink", entry.Name,
					"purchase_id", payload.PurchaseID,
					"error", err,
				)
			}
		}()
	}
	wg.Wait()
}

// suppressed reports whether a notification for purchaseID was sent within the window.
// Cache errors fail open.
func (s *Service) suppressed(ctx context.Context, purchaseID string) bool {
	if s.dedupe == nil || purchaseID == "" {
		return false
	}
	first, err := s.dedupe.SetIfNotExists(ctx, "report_failure_notified:"+purchaseID, []byte("1"), s.dedupeWindow)
	if err != nil {
		s.logger.WarnContext(ctx, "failure notification dedupe unavailable", "error", err)
		return false
	}
	return !first
}

// Enabled reports whether the notifier has any active sinks.
func (s *Service) Enabled() bool {
	return s != nil && len(s.sinks) > 0
}
