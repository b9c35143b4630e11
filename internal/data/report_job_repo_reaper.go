package data

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/target/quizreport/internal/core"
	"github.com/target/quizreport/internal/data/pgxutil"
)

// Two-arg pg_try_advisory_xact_lock(major, minor) namespaces reaper work.
// Major key 1000 is reserved for report job reaper operations.
const (
	advisoryLockReaperMajor        = 1000
	advisoryLockReaperRequeueStale = 1
	advisoryLockReaperDeleteReady  = 2
)

// RequeueStaleRunning returns running jobs whose updated_at is older than maxAge to the queue.
// A worker that crashed mid-batch leaves its jobs running; this hands them to the next claimer.
// Jobs keep their attempt count. Returns the number of jobs requeued.
func (r *ReportJobRepo) RequeueStaleRunning(ctx context.Context, maxAge time.Duration, batchSize int) (int64, error) {
	if batchSize <= 0 {
		return 0, errors.New("batch size must be greater than zero")
	}
	return r.withReaperLock(ctx, advisoryLockReaperRequeueStale, func(tx *sql.Tx) (sql.Result, error) {
		now := r.timeProvider.Now().UTC()
		return tx.ExecContext(ctx, `
			UPDATE report_jobs
			SET status = 'queued',
				started_at = NULL,
				updated_at = $1
			WHERE id IN (
				SELECT id FROM report_jobs
				WHERE status = 'running'
				  AND updated_at < $2
				ORDER BY updated_at
				LIMIT $3
				FOR UPDATE SKIP LOCKED
			)
		`, now, now.Add(-maxAge), batchSize)
	})
}

// DeleteOldReadyJobs deletes ready job rows completed more than MaxAge ago.
// Failed jobs are never reaped. Artifacts are kept.
func (r *ReportJobRepo) DeleteOldReadyJobs(ctx context.Context, params core.DeleteOldReportJobsParams) (int64, error) {
	if params.BatchSize <= 0 {
		return 0, errors.New("batch size must be greater than zero")
	}
	if params.MaxAge <= 0 {
		return 0, errors.New("max age must be greater than zero")
	}
	return r.withReaperLock(ctx, advisoryLockReaperDeleteReady, func(tx *sql.Tx) (sql.Result, error) {
		cutoff := r.timeProvider.Now().Add(-params.MaxAge).UTC()
		return tx.ExecContext(ctx, `
			DELETE FROM report_jobs
			WHERE id IN (
				SELECT id FROM report_jobs
				WHERE status = 'ready'
				  AND COALESCE(completed_at, updated_at) < $1
				ORDER BY COALESCE(completed_at, updated_at)
				LIMIT $2
			)
		`, cutoff, params.BatchSize)
	})
}

// withReaperLock runs exec inside a transaction holding the given reaper lock.
// When another instance holds the lock it does nothing and reports zero rows.
func (r *ReportJobRepo) withReaperLock(
	ctx context.Context,
	minor int32,
	exec func(*sql.Tx) (sql.Result, error),
) (int64, error) {
	var rowsAffected int64
	err := pgxutil.WithStdTx(ctx, r.DB, nil, func(tx *sql.Tx) error {
		locked, err := pgxutil.TryXactLock(ctx, tx, advisoryLockReaperMajor, minor)
		if err != nil || !locked {
			return err
		}
		res, err := exec(tx)
		if err != nil {
			return fmt.Errorf("reaper minor %d: %w", minor, err)
		}
		ra, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("rows affected: %w", err)
		}
		rowsAffected = ra
		return nil
	})
	if err != nil {
		return 0, err
	}
	return rowsAffected, nil
}
