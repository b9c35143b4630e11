package data

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/target/quizreport/internal/domain/model"
	apperrors "github.com/target/quizreport/internal/errors"
)

// AttemptSummaryRepo stores computed attempt summaries keyed by tenant, test and session.
type AttemptSummaryRepo struct {
	DB *sql.DB
}

// NewAttemptSummaryRepo creates a new AttemptSummaryRepo.
func NewAttemptSummaryRepo(db *sql.DB) *AttemptSummaryRepo {
	return &AttemptSummaryRepo{DB: db}
}

// Get returns ErrAttemptSummaryNotFound when no summary exists for the key.
func (r *AttemptSummaryRepo) Get(ctx context.Context, key model.AttemptSummaryKey) (*model.AttemptSummary, error) {
	var (
		s      model.AttemptSummary
		scores []byte
	)
	err := r.DB.QueryRowContext(ctx, `
		SELECT tenant_id, test_id, session_id, distinct_id, locale,
			computed_at, band_id, scale_scores, total_score
		FROM attempt_summaries
		WHERE tenant_id = $1 AND test_id = $2 AND session_id = $3
	`, key.TenantID, key.TestID, key.SessionID).Scan(
		&s.TenantID, &s.TestID, &s.SessionID, &s.DistinctID, &s.Locale,
		&s.ComputedAt, &s.BandID, &scores, &s.TotalScore,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrAttemptSummaryNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get attempt summary: %w", err)
	}
	if err := json.Unmarshal(scores, &s.ScaleScores); err != nil {
		return nil, fmt.Errorf("decode scale scores: %w", err)
	}
	s.ComputedAt = s.ComputedAt.UTC()
	return &s, nil
}

// Upsert inserts or replaces the summary for its key.
func (r *AttemptSummaryRepo) Upsert(ctx context.Context, s *model.AttemptSummary) error {
	// encoding/json writes map keys sorted, so equal scores store identical documents.
	scores, err := json.Marshal(s.ScaleScores)
	if err != nil {
		return fmt.Errorf("encode scale scores: %w", err)
	}
	_, err = r.DB.ExecContext(ctx, `
		INSERT INTO attempt_summaries (
			tenant_id, test_id, session_id, distinct_id, locale,
			computed_at, band_id, scale_scores, total_score
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8::jsonb, $9)
		ON CONFLICT (tenant_id, test_id, session_id) DO UPDATE SET
			distinct_id = EXCLUDED.distinct_id,
			locale = EXCLUDED.locale,
			computed_at = EXCLUDED.computed_at,
			band_id = EXCLUDED.band_id,
			scale_scores = EXCLUDED.scale_scores,
			total_score = EXCLUDED.total_score,
			updated_at = now()
	`, s.TenantID, s.TestID, s.SessionID, s.DistinctID, s.Locale,
		s.ComputedAt.UTC(), s.BandID, string(scores), s.TotalScore)
	if err != nil {
		return fmt.Errorf("upsert attempt summary: %w", apperrors.MapDBError(err))
	}
	return nil
}
