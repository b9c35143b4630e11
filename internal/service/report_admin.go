package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	jmespath "github.com/jmespath-community/go-jmespath"

	"github.com/target/quizreport/internal/core"
	"github.com/target/quizreport/internal/domain/model"
	"github.com/target/quizreport/internal/domain/report"
	apperrors "github.com/target/quizreport/internal/errors"
)

// ContentCacheInvalidator drops cached published content for a tenant.
type ContentCacheInvalidator interface {
	InvalidateTenant(ctx context.Context, tenantID string) (string, error)
}

// ReportAdminServiceOptions groups dependencies for ReportAdminService.
type ReportAdminServiceOptions struct {
	Jobs      core.ReportJobRepository      // required
	Artifacts core.ReportArtifactRepository // required
	Summaries core.AttemptSummaryRepository // required
	// Cache is optional; without it InvalidateContentCache reports unavailable.
	Cache  ContentCacheInvalidator
	Logger *slog.Logger
}

// ReportAdminService implements the enqueue, summary ingest and dead-letter operations
// exposed to internal callers and operators.
type ReportAdminService struct {
	jobs      core.ReportJobRepository
	artifacts core.ReportArtifactRepository
	summaries core.AttemptSummaryRepository
	cache     ContentCacheInvalidator
	logger    *slog.Logger
}

// NewReportAdminService constructs a ReportAdminService.
func NewReportAdminService(opts ReportAdminServiceOptions) (*ReportAdminService, error) {
	if opts.Jobs == nil {
		return nil, errors.New("Jobs is required")
	}
	if opts.Artifacts == nil {
		return nil, errors.New("Artifacts is required")
	}
	if opts.Summaries == nil {
		return nil, errors.New("Summaries is required")
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &ReportAdminService{
		jobs:      opts.Jobs,
		artifacts: opts.Artifacts,
		summaries: opts.Summaries,
		cache:     opts.Cache,
		logger:    logger.With("component", "report_admin"),
	}, nil
}

// MustNewReportAdminService is like NewReportAdminService but panics on invalid options.
func MustNewReportAdminService(opts ReportAdminServiceOptions) *ReportAdminService {
	s, err := NewReportAdminService(opts)
	if err != nil {
		//nolint:forbidigo // Must constructor fails fast when dependencies are invalid during startup
		panic(err)
	}
	return s
}

// Enqueue queues a report job for a purchase. created is false when the purchase already has a job.
func (s *ReportAdminService) Enqueue(
	ctx context.Context,
	req *model.EnqueueReportJobRequest,
) (*model.ReportJob, bool, error) {
	if req == nil {
		return nil, false, apperrors.Validation("request body is required")
	}
	if err := req.Validate(); err != nil {
		return nil, false, err
	}
	job, created, err := s.jobs.Enqueue(ctx, req)
	if err != nil {
		return nil, false, err
	}
	if created {
		s.logger.InfoContext(ctx, "report job enqueued", "purchase_id", job.PurchaseID, "tenant_id", job.TenantID)
	}
	return job, created, nil
}

// UpsertAttemptSummary validates and stores the computed summary for an attempt.
func (s *ReportAdminService) UpsertAttemptSummary(
	ctx context.Context,
	req *model.UpsertAttemptSummaryRequest,
) (*model.AttemptSummary, error) {
	if req == nil {
		return nil, apperrors.Validation("request body is required")
	}
	summary, err := req.Sanitize()
	if err != nil {
		return nil, err
	}
	if err := s.summaries.Upsert(ctx, summary); err != nil {
		return nil, err
	}
	return summary, nil
}

// ListJobs returns jobs newest first.
func (s *ReportAdminService) ListJobs(ctx context.Context, opts model.ReportJobListOptions) ([]*model.ReportJob, error) {
	if opts.Status != nil && !opts.Status.Valid() {
		return nil, apperrors.ValidationField("status", "is not a known status")
	}
	return s.jobs.List(ctx, opts)
}

// CountJobs returns per-status job counts.
func (s *ReportAdminService) CountJobs(ctx context.Context) (map[model.ReportJobStatus]int, error) {
	return s.jobs.CountByStatus(ctx)
}

// GetJob returns the job for a purchase.
func (s *ReportAdminService) GetJob(ctx context.Context, purchaseID string) (*model.ReportJob, error) {
	purchaseID = strings.TrimSpace(purchaseID)
	if purchaseID == "" {
		return nil, apperrors.ValidationField("purchase_id", "is required")
	}
	return s.jobs.GetByPurchaseID(ctx, purchaseID)
}

// Requeue moves a failed job back to the queue.
func (s *ReportAdminService) Requeue(ctx context.Context, purchaseID string) (*model.ReportJob, error) {
	purchaseID = strings.TrimSpace(purchaseID)
	if purchaseID == "" {
		return nil, apperrors.ValidationField("purchase_id", "is required")
	}
	job, err := s.jobs.Requeue(ctx, purchaseID)
	if err != nil {
		return nil, err
	}
	s.logger.InfoContext(ctx, "report job requeued", "purchase_id", purchaseID, "attempts", job.Attempts)
	return job, nil
}

// RequeueFailed moves up to opts.Limit failed jobs back to the queue.
func (s *ReportAdminService) RequeueFailed(ctx context.Context, opts model.RequeueFailedOptions) (int64, error) {
	if opts.MaxAttempts < 0 {
		return 0, apperrors.ValidationField("max_attempts", "must not be negative")
	}
	return s.jobs.RequeueFailed(ctx, opts)
}

// ArtifactView is an artifact as shown to operators, with its style card and an optional projection.
type ArtifactView struct {
	Artifact  *model.ReportArtifact `json:"artifact"`
	StyleCard report.StyleCard      `json:"style_card"`
	// Projection holds the result of the JMESPath query against the report body, when one was given.
	Projection any `json:"projection,omitempty"`
}

// GetArtifact loads the artifact for a purchase and optionally projects its report body with a
// JMESPath expression.
func (s *ReportAdminService) GetArtifact(ctx context.Context, purchaseID, query string) (*ArtifactView, error) {
	purchaseID = strings.TrimSpace(purchaseID)
	if purchaseID == "" {
		return nil, apperrors.ValidationField("purchase_id", "is required")
	}
	query = strings.TrimSpace(query)
	if query != "" {
		if _, err := jmespath.Compile(query); err != nil {
			return nil, apperrors.ValidationField("query", fmt.Sprintf("is not a valid JMESPath expression: %v", err))
		}
	}

	artifact, err := s.artifacts.Get(ctx, purchaseID)
	if err != nil {
		return nil, err
	}
	view := &ArtifactView{Artifact: artifact, StyleCard: report.StyleCardFor(artifact.StyleID)}
	if query == "" {
		return view, nil
	}

	var body any
	if err := json.Unmarshal(artifact.ReportJSON, &body); err != nil {
		return nil, fmt.Errorf("decode report body: %w", err)
	}
	projected, err := jmespath.Search(query, body)
	if err != nil {
		return nil, apperrors.ValidationField("query", err.Error())
	}
	view.Projection = projected
	return view, nil
}

// InvalidateContentCache orphans the tenant's cached catalog and specs.
func (s *ReportAdminService) InvalidateContentCache(ctx context.Context, tenantID string) (string, error) {
	if s.cache == nil {
		return "", apperrors.Unavailable("content cache is not configured")
	}
	tenantID = strings.TrimSpace(tenantID)
	if tenantID == "" {
		return "", apperrors.ValidationField("tenant_id", "is required")
	}
	return s.cache.InvalidateTenant(ctx, tenantID)
}
