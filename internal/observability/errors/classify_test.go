package errors

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"

	"github.com/target/quizreport/internal/domain/report"
	apperrors "github.com/target/quizreport/internal/errors"
)

type customErr struct{}

func (customErr) Error() string { return "custom" }

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"nil", nil, ""},
		{"sentinel wrapped", fmt.Errorf("job p-1: %w", report.ErrSummaryMissing), "summary_missing"},
		{"payload", report.ErrInvalidReportPayload, "invalid_report_payload"},
		{"deadline", fmt.Errorf("generate: %w", context.DeadlineExceeded), "timeout"},
		{"postgres", fmt.Errorf("claim: %w", &pgconn.PgError{Code: "40P01"}), "pg_40p01"},
		{"app error", apperrors.ValidationField("locale", "is required"), "app_validation"},
		{"concrete type", fmt.Errorf("wrap: %w", customErr{}), "errors_customerr"},
		{"plain", errors.New("boom"), "errors_errorstring"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(tt.err))
		})
	}
}
