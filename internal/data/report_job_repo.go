package data

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/target/quizreport/internal/data/pgxutil"
	"github.com/target/quizreport/internal/domain/model"
)

// RepoConfig holds configuration options shared by the repositories.
type RepoConfig struct {
	Logger       *slog.Logger
	TimeProvider TimeProvider
}

// ReportJobRepo provides database operations for the report job queue.
type ReportJobRepo struct {
	DB           *sql.DB
	timeProvider TimeProvider
	logger       *slog.Logger
}

// NewReportJobRepo creates a new ReportJobRepo.
func NewReportJobRepo(db *sql.DB, cfg RepoConfig) *ReportJobRepo {
	tp := cfg.TimeProvider
	if tp == nil {
		tp = systemClock
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &ReportJobRepo{
		DB:           db,
		timeProvider: tp,
		logger:       logger.With("component", "report_job_repo"),
	}
}

const reportJobColumns = `
  id::text,
  purchase_id,
  tenant_id,
  test_id,
  session_id,
  locale,
  status,
  attempts,
  last_error,
  created_at,
  updated_at,
  started_at,
  completed_at
`

// Enqueue inserts a queued job. It returns created=false and the existing row when the purchase already has a job.
func (r *ReportJobRepo) Enqueue(
	ctx context.Context,
	req *model.EnqueueReportJobRequest,
) (*model.ReportJob, bool, error) {
	if err := req.Validate(); err != nil {
		return nil, false, err
	}

	var job *model.ReportJob
	err := pgxutil.WithConn(ctx, r.DB, func(conn *pgx.Conn) error {
		rows, err := conn.Query(ctx, `
			INSERT INTO report_jobs (purchase_id, tenant_id, test_id, session_id, locale, status)
			VALUES ($1, $2, $3, $4, $5, 'queued')
			ON CONFLICT (purchase_id) DO NOTHING
			RETURNING `+reportJobColumns,
			req.PurchaseID, req.TenantID, req.TestID, req.SessionID, req.Locale)
		if err != nil {
			return err
		}
		job, err = collectOneReportJob(rows)
		return err
	})
	if err == nil {
		return job, true, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, false, fmt.Errorf("enqueue report job: %w", err)
	}

	existing, getErr := r.GetByPurchaseID(ctx, req.PurchaseID)
	if getErr != nil {
		return nil, false, getErr
	}
	return existing, false, nil
}

// GetByPurchaseID retrieves the job for a purchase.
func (r *ReportJobRepo) GetByPurchaseID(ctx context.Context, purchaseID string) (*model.ReportJob, error) {
	var job *model.ReportJob
	err := pgxutil.WithConn(ctx, r.DB, func(conn *pgx.Conn) error {
		rows, err := conn.Query(ctx, `SELECT `+reportJobColumns+` FROM report_jobs WHERE purchase_id = $1`,
			strings.TrimSpace(purchaseID))
		if err != nil {
			return err
		}
		job, err = collectOneReportJob(rows)
		return err
	})
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrReportJobNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get report job: %w", err)
	}
	return job, nil
}

// ClaimQueued atomically moves up to limit of the oldest queued jobs to running.
// SKIP LOCKED lets concurrent claimers pass over each other's rows, so no job is claimed twice.
func (r *ReportJobRepo) ClaimQueued(ctx context.Context, limit int) ([]*model.ReportJob, error) {
	if limit <= 0 {
		return nil, nil
	}
	var jobs []*model.ReportJob
	err := pgxutil.WithConn(ctx, r.DB, func(conn *pgx.Conn) error {
		rows, err := conn.Query(ctx, `
			WITH claimed AS (
				SELECT id
				FROM report_jobs
				WHERE status = 'queued'
				ORDER BY created_at ASC
				LIMIT $1
				FOR UPDATE SKIP LOCKED
			)
			UPDATE report_jobs AS jobs
			SET status = 'running',
				started_at = COALESCE(jobs.started_at, now()),
				updated_at = now()
			FROM claimed
			WHERE jobs.id = claimed.id
			RETURNING
				jobs.id::text, jobs.purchase_id, jobs.tenant_id, jobs.test_id, jobs.session_id,
				jobs.locale, jobs.status, jobs.attempts, jobs.last_error, jobs.created_at,
				jobs.updated_at, jobs.started_at, jobs.completed_at
		`, limit)
		if err != nil {
			return err
		}
		jobs, err = pgx.CollectRows(rows, scanReportJob)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("claim queued report jobs: %w", err)
	}
	return jobs, nil
}

// MarkReady records successful generation and clears any previous error.
func (r *ReportJobRepo) MarkReady(ctx context.Context, purchaseID string) error {
	res, err := r.DB.ExecContext(ctx, `
		UPDATE report_jobs
		SET status = 'ready',
			last_error = NULL,
			updated_at = now(),
			completed_at = now()
		WHERE purchase_id = $1
	`, purchaseID)
	if err != nil {
		return fmt.Errorf("mark report job ready: %w", err)
	}
	return expectAffected(res, ErrReportJobNotFound)
}

// MarkFailed moves the job to the dead-letter state and increments its attempt counter.
func (r *ReportJobRepo) MarkFailed(ctx context.Context, purchaseID, message string) error {
	res, err := r.DB.ExecContext(ctx, `
		UPDATE report_jobs
		SET status = 'failed',
			attempts = attempts + 1,
			last_error = $2,
			updated_at = now(),
			completed_at = NULL
		WHERE purchase_id = $1
	`, purchaseID, message)
	if err != nil {
		return fmt.Errorf("mark report job failed: %w", err)
	}
	return expectAffected(res, ErrReportJobNotFound)
}

const (
	defaultListLimit = 50
	maxListLimit     = 500
)

// List returns jobs, newest first, optionally filtered by status.
func (r *ReportJobRepo) List(ctx context.Context, opts model.ReportJobListOptions) ([]*model.ReportJob, error) {
	limit := opts.Limit
	if limit <= 0 {
		limit = defaultListLimit
	}
	limit = min(limit, maxListLimit)
	offset := max(opts.Offset, 0)

	query := `SELECT ` + reportJobColumns + ` FROM report_jobs`
	args := []any{}
	if opts.Status != nil {
		query += ` WHERE status = $1`
		args = append(args, string(*opts.Status))
	}
	query += fmt.Sprintf(` ORDER BY created_at DESC, id LIMIT $%d OFFSET $%d`, len(args)+1, len(args)+2)
	args = append(args, limit, offset)

	var jobs []*model.ReportJob
	err := pgxutil.WithConn(ctx, r.DB, func(conn *pgx.Conn) error {
		rows, err := conn.Query(ctx, query, args...)
		if err != nil {
			return err
		}
		jobs, err = pgx.CollectRows(rows, scanReportJob)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("list report jobs: %w", err)
	}
	return jobs, nil
}

// CountByStatus returns the number of jobs in each status. Missing statuses count zero.
func (r *ReportJobRepo) CountByStatus(ctx context.Context) (map[model.ReportJobStatus]int, error) {
	rows, err := r.DB.QueryContext(ctx, `SELECT status, COUNT(*) FROM report_jobs GROUP BY status`)
	if err != nil {
		return nil, fmt.Errorf("count report jobs: %w", err)
	}
	defer rows.Close()

	counts := map[model.ReportJobStatus]int{
		model.ReportJobStatusQueued:  0,
		model.ReportJobStatusRunning: 0,
		model.ReportJobStatusReady:   0,
		model.ReportJobStatusFailed:  0,
	}
	for rows.Next() {
		var status string
		var n int
		if err := rows.Scan(&status, &n); err != nil {
			return nil, fmt.Errorf("scan report job count: %w", err)
		}
		counts[model.ReportJobStatus(status)] = n
	}
	return counts, rows.Err()
}

// Requeue returns one failed job to the queue. attempts and last_error are kept for audit.
func (r *ReportJobRepo) Requeue(ctx context.Context, purchaseID string) (*model.ReportJob, error) {
	var job *model.ReportJob
	err := pgxutil.WithConn(ctx, r.DB, func(conn *pgx.Conn) error {
		rows, err := conn.Query(ctx, `
			UPDATE report_jobs
			SET status = 'queued',
				started_at = NULL,
				completed_at = NULL,
				updated_at = now()
			WHERE purchase_id = $1 AND status = 'failed'
			RETURNING `+reportJobColumns, purchaseID)
		if err != nil {
			return err
		}
		job, err = collectOneReportJob(rows)
		return err
	})
	if err == nil {
		return job, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("requeue report job: %w", err)
	}
	if _, getErr := r.GetByPurchaseID(ctx, purchaseID); getErr != nil {
		return nil, getErr
	}
	return nil, ErrReportJobNotFailed
}

// RequeueFailed returns up to opts.Limit failed jobs, oldest failure first, to the queue.
func (r *ReportJobRepo) RequeueFailed(ctx context.Context, opts model.RequeueFailedOptions) (int64, error) {
	limit := opts.Limit
	if limit <= 0 {
		limit = defaultListLimit
	}
	limit = min(limit, maxListLimit)

	res, err := r.DB.ExecContext(ctx, `
		UPDATE report_jobs
		SET status = 'queued',
			started_at = NULL,
			completed_at = NULL,
			updated_at = now()
		WHERE id IN (
			SELECT id FROM report_jobs
			WHERE status = 'failed'
			  AND ($2 = 0 OR attempts < $2)
			ORDER BY updated_at ASC
			LIMIT $1
			FOR UPDATE SKIP LOCKED
		)
	`, limit, opts.MaxAttempts)
	if err != nil {
		return 0, fmt.Errorf("requeue failed report jobs: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("rows affected: %w", err)
	}
	if n > 0 {
		r.logger.InfoContext(ctx, "requeued failed report jobs", "count", n)
	}
	return n, nil
}

func collectOneReportJob(rows pgx.Rows) (*model.ReportJob, error) {
	return pgx.CollectExactlyOneRow(rows, scanReportJob)
}

func scanReportJob(row pgx.CollectableRow) (*model.ReportJob, error) {
	var (
		job                    model.ReportJob
		status                 string
		lastError              sql.NullString
		startedAt, completedAt sql.NullTime
	)
	if err := row.Scan(
		&job.ID,
		&job.PurchaseID,
		&job.TenantID,
		&job.TestID,
		&job.SessionID,
		&job.Locale,
		&status,
		&job.Attempts,
		&lastError,
		&job.CreatedAt,
		&job.UpdatedAt,
		&startedAt,
		&completedAt,
	); err != nil {
		return nil, err
	}
	job.Status = model.ReportJobStatus(status)
	job.LastError = cloneNullableString(lastError)
	job.StartedAt = cloneNullableTime(startedAt)
	job.CompletedAt = cloneNullableTime(completedAt)
	job.CreatedAt = job.CreatedAt.UTC()
	job.UpdatedAt = job.UpdatedAt.UTC()
	return &job, nil
}

func expectAffected(res sql.Result, notFound error) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return notFound
	}
	return nil
}
