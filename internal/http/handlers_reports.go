// Package httpx provides the HTTP surface of the report pipeline: internal worker endpoints,
// operator endpoints and health checks.
package httpx

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/target/quizreport/internal/domain/model"
	"github.com/target/quizreport/internal/domain/report"
	"github.com/target/quizreport/internal/service"
)

const (
	defaultListLimit = 50
	maxListLimit     = 500
)

// ReportRunner runs one claim-and-process cycle.
type ReportRunner interface {
	RunBatch(ctx context.Context, limit int) (model.ReportBatchResult, error)
}

// ReportAdmin is the operator and ingest surface.
type ReportAdmin interface {
	Enqueue(ctx context.Context, req *model.EnqueueReportJobRequest) (*model.ReportJob, bool, error)
	UpsertAttemptSummary(ctx context.Context, req *model.UpsertAttemptSummaryRequest) (*model.AttemptSummary, error)
	ListJobs(ctx context.Context, opts model.ReportJobListOptions) ([]*model.ReportJob, error)
	CountJobs(ctx context.Context) (map[model.ReportJobStatus]int, error)
	GetJob(ctx context.Context, purchaseID string) (*model.ReportJob, error)
	Requeue(ctx context.Context, purchaseID string) (*model.ReportJob, error)
	RequeueFailed(ctx context.Context, opts model.RequeueFailedOptions) (int64, error)
	GetArtifact(ctx context.Context, purchaseID, query string) (*service.ArtifactView, error)
	InvalidateContentCache(ctx context.Context, tenantID string) (string, error)
}

// ReportHandlers provides HTTP handlers for the report pipeline.
type ReportHandlers struct {
	Runner ReportRunner
	Admin  ReportAdmin
	// BatchTimeout bounds one run request. Zero leaves the request context as is.
	BatchTimeout time.Duration
	Logger       *slog.Logger
}

func (h *ReportHandlers) logger() *slog.Logger {
	if h.Logger != nil {
		return h.Logger
	}
	return slog.Default()
}

// RunBatch claims up to ?limit queued jobs and processes them.
func (h *ReportHandlers) RunBatch(w http.ResponseWriter, r *http.Request) {
	limit := report.ParseClaimLimit(r.URL.Query().Get("limit"))

	ctx := r.Context()
	if h.BatchTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, h.BatchTimeout)
		defer cancel()
	}

	result, err := h.Runner.RunBatch(ctx, limit)
	if err != nil {
		h.logger().ErrorContext(r.Context(), "report batch failed", "error", err, "limit", limit)
		WriteError(w, ErrorParams{
			Code:    http.StatusInternalServerError,
			ErrCode: "run_failed",
			Err:     errors.New("failed to claim report jobs"),
		})
		return
	}
	WriteJSON(w, http.StatusOK, result)
}

// EnqueueJob queues a report job. 201 with the job when created, 200 when it already existed.
func (h *ReportHandlers) EnqueueJob(w http.ResponseWriter, r *http.Request) {
	var req model.EnqueueReportJobRequest
	if !DecodeJSON(w, r, &req) {
		return
	}
	job, created, err := h.Admin.Enqueue(r.Context(), &req)
	if err != nil {
		writeServiceError(w, r, h.logger(), "enqueue", err)
		return
	}
	if !created {
		WriteJSON(w, http.StatusOK, map[string]bool{"created": false})
		return
	}
	WriteJSON(w, http.StatusCreated, job)
}

// UpsertAttemptSummary stores the computed summary for an attempt.
func (h *ReportHandlers) UpsertAttemptSummary(w http.ResponseWriter, r *http.Request) {
	var req model.UpsertAttemptSummaryRequest
	if !DecodeJSON(w, r, &req) {
		return
	}
	summary, err := h.Admin.UpsertAttemptSummary(r.Context(), &req)
	if err != nil {
		writeServiceError(w, r, h.logger(), "upsert_summary", err)
		return
	}
	WriteJSON(w, http.StatusOK, summary)
}

// ListJobs lists jobs newest first, optionally filtered by ?status.
func (h *ReportHandlers) ListJobs(w http.ResponseWriter, r *http.Request) {
	limit, offset := ParseLimitOffset(r, defaultListLimit, maxListLimit)
	opts := model.ReportJobListOptions{Limit: limit, Offset: offset}
	if raw := strings.TrimSpace(r.URL.Query().Get("status")); raw != "" {
		status := model.ReportJobStatus(strings.ToLower(raw))
		opts.Status = &status
	}

	jobs, err := h.Admin.ListJobs(r.Context(), opts)
	if err != nil {
		writeServiceError(w, r, h.logger(), "list_jobs", err)
		return
	}
	if jobs == nil {
		jobs = []*model.ReportJob{}
	}
	WriteJSON(w, http.StatusOK, map[string]any{"jobs": jobs, "limit": limit, "offset": offset})
}

// JobStats returns per-status counts.
func (h *ReportHandlers) JobStats(w http.ResponseWriter, r *http.Request) {
	counts, err := h.Admin.CountJobs(r.Context())
	if err != nil {
		writeServiceError(w, r, h.logger(), "job_stats", err)
		return
	}
	WriteJSON(w, http.StatusOK, counts)
}

// GetJob returns the job for {purchase_id}.
func (h *ReportHandlers) GetJob(w http.ResponseWriter, r *http.Request) {
	job, err := h.Admin.GetJob(r.Context(), r.PathValue("purchase_id"))
	if err != nil {
		writeServiceError(w, r, h.logger(), "get_job", err)
		return
	}
	WriteJSON(w, http.StatusOK, job)
}

// RequeueJob moves the failed job for {purchase_id} back to the queue.
func (h *ReportHandlers) RequeueJob(w http.ResponseWriter, r *http.Request) {
	job, err := h.Admin.Requeue(r.Context(), r.PathValue("purchase_id"))
	if err != nil {
		writeServiceError(w, r, h.logger(), "requeue", err)
		return
	}
	WriteJSON(w, http.StatusOK, job)
}

// RequeueFailed bulk-requeues dead-lettered jobs.
func (h *ReportHandlers) RequeueFailed(w http.ResponseWriter, r *http.Request) {
	opts := model.RequeueFailedOptions{
		Limit:       queryInt(r, "limit", defaultListLimit),
		MaxAttempts: queryInt(r, "max_attempts", 0),
	}
	opts.Limit = min(max(opts.Limit, 1), maxListLimit)
	n, err := h.Admin.RequeueFailed(r.Context(), opts)
	if err != nil {
		writeServiceError(w, r, h.logger(), "requeue_failed", err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]int64{"requeued": n})
}

// GetArtifact returns the artifact for {purchase_id}, projected by ?query when given.
func (h *ReportHandlers) GetArtifact(w http.ResponseWriter, r *http.Request) {
	view, err := h.Admin.GetArtifact(r.Context(), r.PathValue("purchase_id"), r.URL.Query().Get("query"))
	if err != nil {
		writeServiceError(w, r, h.logger(), "get_artifact", err)
		return
	}
	WriteJSON(w, http.StatusOK, view)
}

// InvalidateContentCache orphans the cached content of {tenant_id}.
func (h *ReportHandlers) InvalidateContentCache(w http.ResponseWriter, r *http.Request) {
	tenantID := r.PathValue("tenant_id")
	gen, err := h.Admin.InvalidateContentCache(r.Context(), tenantID)
	if err != nil {
		writeServiceError(w, r, h.logger(), "invalidate_cache", err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]string{"tenant_id": strings.TrimSpace(tenantID), "generation": gen})
}
