package core

import (
	"context"
	"time"

	"github.com/target/quizreport/internal/domain/model"
	"github.com/target/quizreport/internal/domain/report"
)

// This file contains the ports between the service layer and its adapters.
// Services depend on these interfaces; data and adapter packages implement them.

// ReportJobRepository persists the report job queue.
type ReportJobRepository interface {
	// Enqueue inserts a queued job. created is false when a job already exists for the purchase.
	Enqueue(ctx context.Context, req *model.EnqueueReportJobRequest) (job *model.ReportJob, created bool, err error)
	GetByPurchaseID(ctx context.Context, purchaseID string) (*model.ReportJob, error)
	// ClaimQueued atomically moves up to limit of the oldest queued jobs to running.
	ClaimQueued(ctx context.Context, limit int) ([]*model.ReportJob, error)
	MarkReady(ctx context.Context, purchaseID string) error
	MarkFailed(ctx context.Context, purchaseID, message string) error
	List(ctx context.Context, opts model.ReportJobListOptions) ([]*model.ReportJob, error)
	CountByStatus(ctx context.Context) (map[model.ReportJobStatus]int, error)
	// Requeue moves one failed job back to queued.
	Requeue(ctx context.Context, purchaseID string) (*model.ReportJob, error)
	RequeueFailed(ctx context.Context, opts model.RequeueFailedOptions) (int64, error)
}

// ReportArtifactRepository persists generated reports.
type ReportArtifactRepository interface {
	Exists(ctx context.Context, purchaseID string) (bool, error)
	// Insert stores the artifact unless one already exists; it reports whether a row was written.
	Insert(ctx context.Context, artifact *model.ReportArtifact) (bool, error)
	Get(ctx context.Context, purchaseID string) (*model.ReportArtifact, error)
}

// AttemptSummaryRepository reads and writes computed attempt summaries.
type AttemptSummaryRepository interface {
	Get(ctx context.Context, key model.AttemptSummaryKey) (*model.AttemptSummary, error)
	Upsert(ctx context.Context, summary *model.AttemptSummary) error
}

// PublishedSpec is a tenant catalog entry joined with its published spec document.
type PublishedSpec struct {
	Entry model.TenantCatalogEntry
	Spec  *model.TestSpec
}

// ContentRepository reads tenant catalogs and published specs.
type ContentRepository interface {
	ListTenantCatalog(ctx context.Context, tenantID string) ([]model.TenantCatalogEntry, error)
	GetPublishedBySlug(ctx context.Context, tenantID, slug string) (*PublishedSpec, error)
}

// PublishedTestProvider resolves the published test a job should be scored against.
type PublishedTestProvider interface {
	// LoadPublishedTestByID returns nil, nil when the tenant has no enabled, published test with that id.
	LoadPublishedTestByID(ctx context.Context, tenantID, testID, locale string) (*model.PublishedTest, error)
}

// GenerateReportParams groups the inputs of ReportGenerator.Generate.
type GenerateReportParams struct {
	Brief   *report.Brief
	StyleID string
	Model   string
}

// ReportGenerator produces the structured report for a brief.
type ReportGenerator interface {
	// Configured reports whether the generator has credentials.
	Configured() bool
	Model() string
	Generate(ctx context.Context, params GenerateReportParams) (*report.Document, error)
}

// ArtifactMirror copies stored artifacts to secondary storage.
type ArtifactMirror interface {
	Mirror(ctx context.Context, artifact *model.ReportArtifact) error
}

// DeleteOldReportJobsParams groups parameters for ReaperRepository.DeleteOldReadyJobs.
type DeleteOldReportJobsParams struct {
	MaxAge    time.Duration
	BatchSize int
}

// ReaperRepository defines report job cleanup operations.
type ReaperRepository interface {
	// RequeueStaleRunning returns running jobs untouched for maxAge to the queue.
	// Processes up to batchSize jobs per call.
	RequeueStaleRunning(ctx context.Context, maxAge time.Duration, batchSize int) (int64, error)

	// DeleteOldReadyJobs deletes ready job rows older than MaxAge. Artifacts are kept.
	DeleteOldReadyJobs(ctx context.Context, params DeleteOldReportJobsParams) (int64, error)
}
