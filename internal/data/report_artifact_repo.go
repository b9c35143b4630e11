package data

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/target/quizreport/internal/domain/model"
)

// ReportArtifactRepo stores generated reports. Artifacts are write-once.
type ReportArtifactRepo struct {
	DB     *sql.DB
	logger *slog.Logger
}

// NewReportArtifactRepo creates a new ReportArtifactRepo.
func NewReportArtifactRepo(db *sql.DB, cfg RepoConfig) *ReportArtifactRepo {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &ReportArtifactRepo{DB: db, logger: logger.With("component", "report_artifact_repo")}
}

// Exists reports whether an artifact has been stored for the purchase.
func (r *ReportArtifactRepo) Exists(ctx context.Context, purchaseID string) (bool, error) {
	var exists bool
	err := r.DB.QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM report_artifacts WHERE purchase_id = $1)`, purchaseID,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check report artifact: %w", err)
	}
	return exists, nil
}

// Insert stores the artifact. When one already exists for the purchase the stored row wins
// and Insert reports false.
func (r *ReportArtifactRepo) Insert(ctx context.Context, a *model.ReportArtifact) (bool, error) {
	if err := a.Validate(); err != nil {
		return false, err
	}
	res, err := r.DB.ExecContext(ctx, `
		INSERT INTO report_artifacts (
			purchase_id, tenant_id, test_id, session_id, locale,
			style_id, model, prompt_version, scoring_version, report_json
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10::jsonb)
		ON CONFLICT (purchase_id) DO NOTHING
	`, a.PurchaseID, a.TenantID, a.TestID, a.SessionID, a.Locale,
		a.StyleID, a.Model, a.PromptVersion, a.ScoringVersion, string(a.ReportJSON))
	if err != nil {
		return false, fmt.Errorf("insert report artifact: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		r.logger.DebugContext(ctx, "report artifact already stored", "purchase_id", a.PurchaseID)
	}
	return n > 0, nil
}

// Get loads the artifact for a purchase.
func (r *ReportArtifactRepo) Get(ctx context.Context, purchaseID string) (*model.ReportArtifact, error) {
	var (
		a    model.ReportArtifact
		body []byte
	)
	err := r.DB.QueryRowContext(ctx, `
		SELECT purchase_id, tenant_id, test_id, session_id, locale, style_id,
			model, prompt_version, scoring_version, report_json, created_at
		FROM report_artifacts
		WHERE purchase_id = $1
	`, purchaseID).Scan(
		&a.PurchaseID, &a.TenantID, &a.TestID, &a.SessionID, &a.Locale, &a.StyleID,
		&a.Model, &a.PromptVersion, &a.ScoringVersion, &body, &a.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrReportArtifactNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get report artifact: %w", err)
	}
	a.ReportJSON = body
	a.CreatedAt = a.CreatedAt.UTC()
	return &a, nil
}
