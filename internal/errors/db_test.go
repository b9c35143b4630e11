package errors

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

func TestMapDBError_Nil(t *testing.T) {
	if err := MapDBError(nil); err != nil {
		t.Errorf("MapDBError(nil) = %v, want nil", err)
	}
}

func TestMapDBError_Codes(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantCode ErrorCode
		field    string
	}{
		{name: "sql no rows", err: sql.ErrNoRows, wantCode: ErrCodeNotFound},
		{name: "pgx no rows wrapped", err: fmt.Errorf("get: %w", pgx.ErrNoRows), wantCode: ErrCodeNotFound},
		{name: "deadline", err: context.DeadlineExceeded, wantCode: ErrCodeTimeout},
		{
			name:     "unique violation from detail",
			err:      &pgconn.PgError{Code: pgerrcode.UniqueViolation, Detail: "Key (purchase_id)=(p-1) already exists."},
			wantCode: ErrCodeConflict,
			field:    "purchase_id",
		},
		{
			name:     "not null",
			err:      &pgconn.PgError{Code: pgerrcode.NotNullViolation, ColumnName: "tenant_id"},
			wantCode: ErrCodeValidation,
			field:    "tenant_id",
		},
		{
			name:     "bad uuid literal",
			err:      &pgconn.PgError{Code: pgerrcode.InvalidTextRepresentation},
			wantCode: ErrCodeValidation,
		},
		{
			name:     "other pg error",
			err:      &pgconn.PgError{Code: pgerrcode.DeadlockDetected},
			wantCode: ErrCodeInternal,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := MapDBError(tt.err)
			var appErr *AppError
			if !errors.As(err, &appErr) {
				t.Fatalf("MapDBError() = %T, want *AppError", err)
			}
			if appErr.Code != tt.wantCode {
				t.Errorf("code = %q, want %q", appErr.Code, tt.wantCode)
			}
			if appErr.Field != tt.field {
				t.Errorf("field = %q, want %q", appErr.Field, tt.field)
			}
			if !errors.Is(err, tt.err) {
				t.Errorf("cause not preserved")
			}
		})
	}
}

func TestMapDBError_PassThrough(t *testing.T) {
	orig := errors.New("something else")
	if got := MapDBError(orig); got != orig {
		t.Errorf("MapDBError() = %v, want original", got)
	}
}
