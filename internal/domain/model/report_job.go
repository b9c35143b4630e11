// Package model defines the core data types shared by the report pipeline.
package model

import (
	"errors"
	"fmt"
	"strings"
	"time"

	apperrors "github.com/target/quizreport/internal/errors"
)

// ReportJobStatus represents the lifecycle state of a report job.
//
//nolint:recvcheck // UnmarshalText needs pointer receiver, Valid needs value receiver
type ReportJobStatus string

const (
	// ReportJobStatusQueued indicates the job is waiting to be claimed.
	ReportJobStatusQueued ReportJobStatus = "queued"
	// ReportJobStatusRunning indicates a worker invocation has claimed the job.
	ReportJobStatusRunning ReportJobStatus = "running"
	// ReportJobStatusReady indicates an artifact exists for the purchase.
	ReportJobStatusReady ReportJobStatus = "ready"
	// ReportJobStatusFailed is the dead-letter state. Jobs leave it only through an explicit requeue.
	ReportJobStatusFailed ReportJobStatus = "failed"
)

// ErrInvalidReportJobStatus is returned when parsing an unknown status.
var ErrInvalidReportJobStatus = errors.New("invalid report job status")

// Valid reports whether s is a known status.
func (s ReportJobStatus) Valid() bool {
	switch s {
	case ReportJobStatusQueued, ReportJobStatusRunning, ReportJobStatusReady, ReportJobStatusFailed:
		return true
	}
	return false
}

// Terminal reports whether s is ready or failed.
func (s ReportJobStatus) Terminal() bool {
	return s == ReportJobStatusReady || s == ReportJobStatusFailed
}

// UnmarshalText implements encoding.TextUnmarshaler so statuses can be parsed from query strings and flags.
func (s *ReportJobStatus) UnmarshalText(text []byte) error {
	v := ReportJobStatus(strings.ToLower(strings.TrimSpace(string(text))))
	if !v.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidReportJobStatus, string(text))
	}
	*s = v
	return nil
}

// ReportJob is one queued request to produce the report for a purchase.
type ReportJob struct {
	ID          string          `json:"id"                     db:"id"`
	PurchaseID  string          `json:"purchase_id"            db:"purchase_id"`
	TenantID    string          `json:"tenant_id"              db:"tenant_id"`
	TestID      string          `json:"test_id"                db:"test_id"`
	SessionID   string          `json:"session_id"             db:"session_id"`
	Locale      string          `json:"locale"                 db:"locale"`
	Status      ReportJobStatus `json:"status"                 db:"status"`
	Attempts    int             `json:"attempts"               db:"attempts"`
	LastError   *string         `json:"last_error,omitempty"   db:"last_error"`
	CreatedAt   time.Time       `json:"created_at"             db:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"             db:"updated_at"`
	StartedAt   *time.Time      `json:"started_at,omitempty"   db:"started_at"`
	CompletedAt *time.Time      `json:"completed_at,omitempty" db:"completed_at"`
}

// EnqueueReportJobRequest carries the fields needed to queue a report job.
type EnqueueReportJobRequest struct {
	PurchaseID string `json:"purchase_id"`
	TenantID   string `json:"tenant_id"`
	TestID     string `json:"test_id"`
	SessionID  string `json:"session_id"`
	Locale     string `json:"locale"`
}

// Normalize trims every field in place.
func (r *EnqueueReportJobRequest) Normalize() {
	r.PurchaseID = strings.TrimSpace(r.PurchaseID)
	r.TenantID = strings.TrimSpace(r.TenantID)
	r.TestID = strings.TrimSpace(r.TestID)
	r.SessionID = strings.TrimSpace(r.SessionID)
	r.Locale = strings.TrimSpace(r.Locale)
}

// Validate ensures every field is present after trimming.
func (r *EnqueueReportJobRequest) Validate() error {
	r.Normalize()
	fields := []struct {
		name  string
		value string
	}{
		{"purchase_id", r.PurchaseID},
		{"tenant_id", r.TenantID},
		{"test_id", r.TestID},
		{"session_id", r.SessionID},
		{"locale", r.Locale},
	}
	for _, f := range fields {
		if f.value == "" {
			return apperrors.ValidationField(f.name, "is required")
		}
	}
	return nil
}

// ReportJobListOptions filters admin listings of report jobs.
type ReportJobListOptions struct {
	Status *ReportJobStatus
	Limit  int
	Offset int
}

// ReportBatchResult summarises one claim-and-process cycle.
// Field order matches the JSON contract of the run endpoint.
type ReportBatchResult struct {
	Claimed int `json:"claimed"`
	Failed  int `json:"failed"`
	Ready   int `json:"ready"`
}

// RequeueFailedOptions bounds a bulk dead-letter requeue.
type RequeueFailedOptions struct {
	Limit int
	// MaxAttempts skips jobs that already failed this many times. Zero disables the filter.
	MaxAttempts int
}
