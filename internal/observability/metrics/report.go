// Package metrics names and tags the report pipeline's StatsD metrics.
package metrics

import (
	"time"

	obserrors "github.com/target/quizreport/internal/observability/errors"
	"github.com/target/quizreport/internal/observability/statsd"
)

// Job outcomes used as the result tag.
const (
	ResultReady  = "ready"
	ResultFailed = "failed"
)

// Outcomes of periodic maintenance passes.
const (
	ResultSuccess = "success"
	ResultError   = "error"
	ResultNoop    = "noop"
)

// Reasons a job reached its outcome.
const (
	ReasonGenerated      = "generated"
	ReasonArtifactExists = "artifact_exists"
	ReasonError          = "error"
)

// Metric names.
const (
	MetricReportJob         = "report.job"
	MetricReportJobDuration = "report.job_duration"
	MetricReportBatch       = "report.batch"
	MetricReportBatchSize   = "report.batch_size"
	MetricReaperRequeued    = "report.reaper.requeued"
	MetricReaperDeleted     = "report.reaper.deleted"
	MetricReaperCleanup     = "report.reaper.cleanup"
	MetricReaperDuration    = "report.reaper.cleanup_duration"
	MetricReaperLastSuccess = "report.reaper.last_success_epoch"
	MetricPollerTick        = "report.poller.tick"
)

// ReportJobMetric describes the outcome of processing one claimed job.
type ReportJobMetric struct {
	Result   string
	Reason   string
	Duration time.Duration
	Err      error
}

// EmitReportJob counts a processed job and records its duration.
func EmitReportJob(sink statsd.Sink, in ReportJobMetric) {
	if sink == nil {
		return
	}
	tags := map[string]string{
		"result": in.Result,
		"reason": in.Reason,
	}
	if in.Err != nil && in.Result == ResultFailed {
		if class := obserrors.Classify(in.Err); class != "" {
			tags["error_class"] = class
		}
	}
	sink.Count(MetricReportJob, 1, tags)
	if in.Duration > 0 {
		sink.Timing(MetricReportJobDuration, in.Duration, CloneTags(tags))
	}
}

// EmitReportBatch records the size and duration of one claim-and-process cycle.
func EmitReportBatch(sink statsd.Sink, claimed int, duration time.Duration) {
	if sink == nil {
		return
	}
	sink.Gauge(MetricReportBatchSize, float64(claimed), nil)
	sink.Timing(MetricReportBatch, duration, nil)
}

// EmitReaper counts rows touched by one reaper pass.
func EmitReaper(sink statsd.Sink, requeued, deleted int64) {
	if sink == nil {
		return
	}
	if requeued > 0 {
		sink.Count(MetricReaperRequeued, requeued, nil)
	}
	if deleted > 0 {
		sink.Count(MetricReaperDeleted, deleted, nil)
	}
}

// CloneTags creates a shallow copy of a tag map.
func CloneTags(src map[string]string) map[string]string {
	if len(src) == 0 {
		return nil
	}
	out := make(map[string]string, len(src))
	for k, v := range src {
		out[k] = v
	}
	return out
}
