package model

import (
	"encoding/json"
	"strings"
	"time"

	apperrors "github.com/target/quizreport/internal/errors"
)

const (
	// PromptVersion identifies the prompt template that produced an artifact.
	PromptVersion = "v1"
	// ScoringVersion identifies the brief and normalisation rules that produced an artifact.
	ScoringVersion = "v1"
)

// ReportArtifact is the immutable generated report for a purchase.
type ReportArtifact struct {
	PurchaseID     string          `json:"purchase_id"`
	TenantID       string          `json:"tenant_id"`
	TestID         string          `json:"test_id"`
	SessionID      string          `json:"session_id"`
	Locale         string          `json:"locale"`
	StyleID        string          `json:"style_id"`
	Model          string          `json:"model"`
	PromptVersion  string          `json:"prompt_version"`
	ScoringVersion string          `json:"scoring_version"`
	ReportJSON     json.RawMessage `json:"report_json"`
	CreatedAt      time.Time       `json:"created_at"`
}

// Validate checks that every identifying field is present and the report body is JSON.
func (a *ReportArtifact) Validate() error {
	fields := []struct {
		name  string
		value string
	}{
		{"purchase_id", a.PurchaseID},
		{"tenant_id", a.TenantID},
		{"test_id", a.TestID},
		{"session_id", a.SessionID},
		{"locale", a.Locale},
		{"style_id", a.StyleID},
		{"model", a.Model},
		{"prompt_version", a.PromptVersion},
		{"scoring_version", a.ScoringVersion},
	}
	for _, f := range fields {
		if strings.TrimSpace(f.value) == "" {
			return apperrors.ValidationField(f.name, "is required")
		}
	}
	if len(a.ReportJSON) == 0 || !json.Valid(a.ReportJSON) {
		return apperrors.ValidationField("report_json", "must be valid JSON")
	}
	return nil
}
