// Package errors maps errors to low-cardinality class names for metric tags and notifications.
package errors

import (
	"context"
	goerrors "errors"
	"reflect"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/target/quizreport/internal/domain/report"
	apperrors "github.com/target/quizreport/internal/errors"
)

var knownReasons = []struct {
	err   error
	class string
}{
	{report.ErrGeneratorNotConfigured, "generator_not_configured"},
	{report.ErrSummaryMissing, "summary_missing"},
	{report.ErrPublishedTestMissing, "published_test_missing"},
	{report.ErrInvalidReportPayload, "invalid_report_payload"},
	{report.ErrTestMismatch, "test_mismatch"},
	{context.DeadlineExceeded, "timeout"},
	{context.Canceled, "canceled"},
}

// Classify returns a normalized error class suitable for tagging metrics and logs.
// Pipeline sentinels, coded application errors and Postgres errors get stable names;
// anything else falls back to the innermost concrete type.
func Classify(err error) string {
	if err == nil {
		return ""
	}
	for _, k := range knownReasons {
		if goerrors.Is(err, k.err) {
			return k.class
		}
	}

	var pgErr *pgconn.PgError
	if goerrors.As(err, &pgErr) {
		return "pg_" + strings.ToLower(pgErr.Code)
	}
	var appErr *apperrors.AppError
	if goerrors.As(err, &appErr) {
		return "app_" + string(appErr.Code)
	}

	for {
		unwrapped := goerrors.Unwrap(err)
		if unwrapped == nil {
			break
		}
		err = unwrapped
	}

	t := reflect.TypeOf(err)
	for t != nil && t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t == nil {
		return "unknown"
	}
	name := strings.ToLower(strings.ReplaceAll(t.String(), ".", "_"))
	if name == "" {
		return "unknown"
	}
	return name
}
