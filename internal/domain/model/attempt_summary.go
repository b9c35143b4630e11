package model

import (
	"encoding/json"
	"math"
	"strings"
	"time"

	apperrors "github.com/target/quizreport/internal/errors"
)

// ScaleScores maps a scale id to its raw score.
type ScaleScores map[string]float64

// AttemptSummary is the computed result of one quiz attempt.
type AttemptSummary struct {
	TenantID    string      `json:"tenant_id"`
	TestID      string      `json:"test_id"`
	SessionID   string      `json:"session_id"`
	DistinctID  string      `json:"distinct_id"`
	Locale      string      `json:"locale"`
	ComputedAt  time.Time   `json:"computed_at"`
	BandID      string      `json:"band_id"`
	ScaleScores ScaleScores `json:"scale_scores"`
	TotalScore  int         `json:"total_score"`
}

// AttemptSummaryKey identifies an attempt summary.
type AttemptSummaryKey struct {
	TenantID  string
	TestID    string
	SessionID string
}

// UpsertAttemptSummaryRequest is the wire form accepted when recording an attempt summary.
type UpsertAttemptSummaryRequest struct {
	TenantID    string             `json:"tenant_id"`
	TestID      string             `json:"test_id"`
	SessionID   string             `json:"session_id"`
	DistinctID  string             `json:"distinct_id"`
	Locale      string             `json:"locale"`
	ComputedAt  string             `json:"computed_at"`
	BandID      string             `json:"band_id"`
	ScaleScores map[string]float64 `json:"scale_scores"`
	TotalScore  json.Number        `json:"total_score"`
}

// Sanitize trims and validates the request and returns the normalised summary.
// computed_at accepts RFC 3339 timestamps and is stored in UTC.
func (r *UpsertAttemptSummaryRequest) Sanitize() (*AttemptSummary, error) {
	out := &AttemptSummary{
		TenantID:   strings.TrimSpace(r.TenantID),
		TestID:     strings.TrimSpace(r.TestID),
		SessionID:  strings.TrimSpace(r.SessionID),
		DistinctID: strings.TrimSpace(r.DistinctID),
		Locale:     strings.TrimSpace(r.Locale),
		BandID:     strings.TrimSpace(r.BandID),
	}
	required := []struct {
		name  string
		value string
	}{
		{"tenant_id", out.TenantID},
		{"test_id", out.TestID},
		{"session_id", out.SessionID},
		{"distinct_id", out.DistinctID},
		{"locale", out.Locale},
		{"band_id", out.BandID},
	}
	for _, f := range required {
		if f.value == "" {
			return nil, apperrors.ValidationField(f.name, "is required")
		}
	}

	computedAt, err := ParseTimestamp(r.ComputedAt)
	if err != nil {
		return nil, apperrors.ValidationField("computed_at", "must be an RFC 3339 timestamp")
	}
	out.ComputedAt = computedAt

	scores, err := SanitizeScaleScores(r.ScaleScores)
	if err != nil {
		return nil, err
	}
	out.ScaleScores = scores

	total, err := parseInteger(r.TotalScore)
	if err != nil {
		return nil, apperrors.ValidationField("total_score", "must be an integer")
	}
	out.TotalScore = total
	return out, nil
}

// SanitizeScaleScores trims keys and rejects empty maps, blank keys and non-finite values.
func SanitizeScaleScores(in map[string]float64) (ScaleScores, error) {
	if len(in) == 0 {
		return nil, apperrors.ValidationField("scale_scores", "must not be empty")
	}
	out := make(ScaleScores, len(in))
	for k, v := range in {
		key := strings.TrimSpace(k)
		if key == "" {
			return nil, apperrors.ValidationField("scale_scores", "keys must not be blank")
		}
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, apperrors.ValidationField("scale_scores", "values must be finite numbers")
		}
		out[key] = v
	}
	return out, nil
}

// ParseTimestamp parses an RFC 3339 timestamp and converts it to UTC.
func ParseTimestamp(value string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339Nano, strings.TrimSpace(value))
	if err != nil {
		return time.Time{}, err
	}
	return t.UTC(), nil
}

func parseInteger(n json.Number) (int, error) {
	s := strings.TrimSpace(n.String())
	if s == "" {
		return 0, apperrors.Validation("missing integer")
	}
	v, err := json.Number(s).Int64()
	if err != nil {
		return 0, err
	}
	if v > math.MaxInt32 || v < math.MinInt32 {
		return 0, apperrors.Validation("integer out of range")
	}
	return int(v), nil
}
