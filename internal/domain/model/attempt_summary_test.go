package model

import (
	"encoding/json"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/target/quizreport/internal/errors"
)

func validSummaryRequest() UpsertAttemptSummaryRequest {
	return UpsertAttemptSummaryRequest{
		TenantID:    " tenant-a ",
		TestID:      "test-focus",
		SessionID:   "s-1",
		DistinctID:  "d-1",
		Locale:      "en",
		ComputedAt:  "2026-01-02T03:04:05+02:00",
		BandID:      "band-mid",
		ScaleScores: map[string]float64{" logic ": 7, "feel": 3},
		TotalScore:  json.Number("10"),
	}
}

func TestUpsertAttemptSummaryRequest_Sanitize(t *testing.T) {
	req := validSummaryRequest()
	got, err := req.Sanitize()
	require.NoError(t, err)

	assert.Equal(t, "tenant-a", got.TenantID)
	assert.Equal(t, time.Date(2026, 1, 2, 1, 4, 5, 0, time.UTC), got.ComputedAt)
	assert.Equal(t, ScaleScores{"logic": 7, "feel": 3}, got.ScaleScores)
	assert.Equal(t, 10, got.TotalScore)
}

func TestUpsertAttemptSummaryRequest_SanitizeRejects(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*UpsertAttemptSummaryRequest)
		field  string
	}{
		{"blank distinct id", func(r *UpsertAttemptSummaryRequest) { r.DistinctID = " " }, "distinct_id"},
		{"bad timestamp", func(r *UpsertAttemptSummaryRequest) { r.ComputedAt = "yesterday" }, "computed_at"},
		{"empty scores", func(r *UpsertAttemptSummaryRequest) { r.ScaleScores = nil }, "scale_scores"},
		{"nan score", func(r *UpsertAttemptSummaryRequest) { r.ScaleScores = map[string]float64{"x": math.NaN()} }, "scale_scores"},
		{"blank score key", func(r *UpsertAttemptSummaryRequest) { r.ScaleScores = map[string]float64{" ": 1} }, "scale_scores"},
		{"fractional total", func(r *UpsertAttemptSummaryRequest) { r.TotalScore = json.Number("1.5") }, "total_score"},
		{"missing total", func(r *UpsertAttemptSummaryRequest) { r.TotalScore = "" }, "total_score"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := validSummaryRequest()
			tt.mutate(&req)
			_, err := req.Sanitize()
			require.Error(t, err)
			assert.True(t, apperrors.IsValidation(err))
			assert.Contains(t, err.Error(), tt.field)
		})
	}
}
