package main

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/target/quizreport/internal/adapters/reaper"
	"github.com/target/quizreport/internal/bootstrap"
	"github.com/target/quizreport/internal/domain/model"
	"github.com/target/quizreport/internal/domain/report"
)

type migrateOptions struct {
	Timeout time.Duration
}

type listJobsOptions struct {
	Status model.ReportJobStatus
	Limit  int
	Offset int
	JSON   bool
}

type requeueFailedOptions struct {
	Limit       int
	MaxAttempts int
	Yes         bool
}

type runOnceOptions struct {
	Limit   int
	Timeout time.Duration
}

type showArtifactOptions struct {
	PurchaseID string
	Query      string
}

func newFlagSet(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	return fs
}

func parseMigrateFlags(args []string) (migrateOptions, error) {
	fs := newFlagSet("migrate")
	opts := migrateOptions{Timeout: defaultMigrationTimeout}
	fs.DurationVar(&opts.Timeout, "timeout", opts.Timeout, "Maximum time allowed for migrations")
	if err := fs.Parse(args); err != nil {
		return migrateOptions{}, err
	}
	if opts.Timeout <= 0 {
		return migrateOptions{}, errors.New("--timeout must be positive")
	}
	return opts, nil
}

func runMigrations(cmdCtx *commandContext, args []string) error {
	opts, err := parseMigrateFlags(args)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(cmdCtx.Ctx, opts.Timeout)
	defer cancel()

	db, err := bootstrap.ConnectDB(ctx, bootstrap.DatabaseConfig{
		DBConfig: cmdCtx.Config.Postgres,
		Logger:   cmdCtx.Logger,
	})
	if err != nil {
		return fmt.Errorf("connect db: %w", err)
	}
	defer func() {
		if closeErr := db.Close(); closeErr != nil {
			cmdCtx.Logger.Warn("db close failed", "error", closeErr)
		}
	}()

	cmdCtx.Logger.Info("running database migrations")
	return bootstrap.RunMigrations(ctx, db, cmdCtx.Logger)
}

func parseEnqueueFlags(args []string) (*model.EnqueueReportJobRequest, error) {
	fs := newFlagSet("enqueue")
	req := &model.EnqueueReportJobRequest{}
	fs.StringVar(&req.PurchaseID, "purchase-id", "", "Purchase ID (required)")
	fs.StringVar(&req.TenantID, "tenant-id", "", "Tenant ID (required)")
	fs.StringVar(&req.TestID, "test-id", "", "Test ID (required)")
	fs.StringVar(&req.SessionID, "session-id", "", "Attempt session ID (required)")
	fs.StringVar(&req.Locale, "locale", "en", "Report locale")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}
	return req, nil
}

func runEnqueue(cmdCtx *commandContext, args []string) error {
	req, err := parseEnqueueFlags(args)
	if err != nil {
		return err
	}
	return withInfra(cmdCtx, func(ctx context.Context, in *infra) error {
		job, created, err := in.Services.Admin.Enqueue(ctx, req)
		if err != nil {
			return err
		}
		if !created {
			return writef(cmdCtx.Out, "report job for %s already exists\n", req.PurchaseID)
		}
		return printJobs(cmdCtx.Out, []*model.ReportJob{job})
	})
}

func parseListJobsFlags(args []string) (listJobsOptions, error) {
	fs := newFlagSet("list-jobs")
	var (
		opts   listJobsOptions
		status string
	)
	fs.StringVar(&status, "status", "", "Filter by status (queued, running, ready, failed)")
	fs.IntVar(&opts.Limit, "limit", 50, "Maximum jobs to list (1-500)")
	fs.IntVar(&opts.Offset, "offset", 0, "Jobs to skip")
	fs.BoolVar(&opts.JSON, "json", false, "Print JSON instead of a table")
	if err := fs.Parse(args); err != nil {
		return listJobsOptions{}, err
	}
	if status != "" {
		if err := opts.Status.UnmarshalText([]byte(status)); err != nil {
			return listJobsOptions{}, err
		}
	}
	if opts.Limit < 1 || opts.Limit > 500 {
		return listJobsOptions{}, errors.New("--limit must be between 1 and 500")
	}
	if opts.Offset < 0 {
		return listJobsOptions{}, errors.New("--offset must not be negative")
	}
	return opts, nil
}

func runListJobs(cmdCtx *commandContext, args []string) error {
	opts, err := parseListJobsFlags(args)
	if err != nil {
		return err
	}
	listOpts := model.ReportJobListOptions{Limit: opts.Limit, Offset: opts.Offset}
	if opts.Status != "" {
		listOpts.Status = &opts.Status
	}
	return withInfra(cmdCtx, func(ctx context.Context, in *infra) error {
		jobs, err := in.Services.Admin.ListJobs(ctx, listOpts)
		if err != nil {
			return err
		}
		if opts.JSON {
			return printJSON(cmdCtx.Out, jobs)
		}
		return printJobs(cmdCtx.Out, jobs)
	})
}

func runJobStats(cmdCtx *commandContext, _ []string) error {
	return withInfra(cmdCtx, func(ctx context.Context, in *infra) error {
		counts, err := in.Services.Admin.CountJobs(ctx)
		if err != nil {
			return err
		}
		return printJobStats(cmdCtx.Out, counts)
	})
}

func parsePurchaseID(name string, args []string) (string, error) {
	fs := newFlagSet(name)
	var purchaseID string
	fs.StringVar(&purchaseID, "purchase-id", "", "Purchase ID (required)")
	if err := fs.Parse(args); err != nil {
		return "", err
	}
	if purchaseID = strings.TrimSpace(purchaseID); purchaseID == "" {
		return "", errors.New("--purchase-id is required")
	}
	return purchaseID, nil
}

func runRequeue(cmdCtx *commandContext, args []string) error {
	purchaseID, err := parsePurchaseID("requeue", args)
	if err != nil {
		return err
	}
	return withInfra(cmdCtx, func(ctx context.Context, in *infra) error {
		job, err := in.Services.Admin.Requeue(ctx, purchaseID)
		if err != nil {
			return err
		}
		return printJobs(cmdCtx.Out, []*model.ReportJob{job})
	})
}

func parseRequeueFailedFlags(args []string) (requeueFailedOptions, error) {
	fs := newFlagSet("requeue-failed")
	var opts requeueFailedOptions
	fs.IntVar(&opts.Limit, "limit", 100, "Maximum jobs to requeue (1-500)")
	fs.IntVar(&opts.MaxAttempts, "max-attempts", 0, "Skip jobs that already failed this many times (0 = no filter)")
	fs.BoolVar(&opts.Yes, "yes", false, "Skip the confirmation prompt")
	if err := fs.Parse(args); err != nil {
		return requeueFailedOptions{}, err
	}
	if opts.Limit < 1 || opts.Limit > 500 {
		return requeueFailedOptions{}, errors.New("--limit must be between 1 and 500")
	}
	if opts.MaxAttempts < 0 {
		return requeueFailedOptions{}, errors.New("--max-attempts must not be negative")
	}
	return opts, nil
}

func runRequeueFailed(cmdCtx *commandContext, args []string) error {
	opts, err := parseRequeueFailedFlags(args)
	if err != nil {
		return err
	}
	if !opts.Yes {
		prompt := fmt.Sprintf("Requeue up to %d failed report jobs?", opts.Limit)
		if err := confirm(cmdCtx.In, cmdCtx.Out, prompt); err != nil {
			return err
		}
	}
	return withInfra(cmdCtx, func(ctx context.Context, in *infra) error {
		n, err := in.Services.Admin.RequeueFailed(ctx, model.RequeueFailedOptions{
			Limit:       opts.Limit,
			MaxAttempts: opts.MaxAttempts,
		})
		if err != nil {
			return err
		}
		return writef(cmdCtx.Out, "requeued %d failed report jobs\n", n)
	})
}

func parseRunOnceFlags(args []string) (runOnceOptions, error) {
	fs := newFlagSet("run-once")
	opts := runOnceOptions{Timeout: 5 * time.Minute}
	var limit string
	fs.StringVar(&limit, "limit", "", "Jobs to claim (default 5, max 50)")
	fs.DurationVar(&opts.Timeout, "timeout", opts.Timeout, "Maximum time for the batch")
	if err := fs.Parse(args); err != nil {
		return runOnceOptions{}, err
	}
	opts.Limit = report.ParseClaimLimit(limit)
	return opts, nil
}

func runOnce(cmdCtx *commandContext, args []string) error {
	opts, err := parseRunOnceFlags(args)
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(cmdCtx.Ctx, opts.Timeout)
	defer cancel()

	scoped := *cmdCtx
	scoped.Ctx = ctx
	in, err := connectInfra(&scoped)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := in.close(); closeErr != nil {
			cmdCtx.Logger.Warn("close infrastructure failed", "error", closeErr)
		}
	}()

	result, err := in.Services.Worker.RunBatch(ctx, opts.Limit)
	if err != nil {
		return err
	}
	return printJSON(cmdCtx.Out, result)
}

func runReap(cmdCtx *commandContext, _ []string) error {
	ctx, cancel := context.WithTimeout(cmdCtx.Ctx, defaultCommandTimeout)
	defer cancel()

	db, err := bootstrap.ConnectDB(ctx, bootstrap.DatabaseConfig{
		DBConfig: cmdCtx.Config.Postgres,
		Logger:   cmdCtx.Logger,
	})
	if err != nil {
		return fmt.Errorf("connect db: %w", err)
	}
	defer func() {
		if closeErr := db.Close(); closeErr != nil {
			cmdCtx.Logger.Warn("db close failed", "error", closeErr)
		}
	}()

	runner, err := reaper.NewRunner(reaper.RunnerOptions{
		DB:     db,
		Config: cmdCtx.Config.Reaper,
		Logger: cmdCtx.Logger,
	})
	if err != nil {
		return err
	}
	return runner.RunOnce(ctx)
}

func parseShowArtifactFlags(args []string) (showArtifactOptions, error) {
	fs := newFlagSet("show-artifact")
	var opts showArtifactOptions
	fs.StringVar(&opts.PurchaseID, "purchase-id", "", "Purchase ID (required)")
	fs.StringVar(&opts.Query, "query", "", "Optional JMESPath expression applied to the report body")
	if err := fs.Parse(args); err != nil {
		return showArtifactOptions{}, err
	}
	if opts.PurchaseID = strings.TrimSpace(opts.PurchaseID); opts.PurchaseID == "" {
		return showArtifactOptions{}, errors.New("--purchase-id is required")
	}
	return opts, nil
}

func runShowArtifact(cmdCtx *commandContext, args []string) error {
	opts, err := parseShowArtifactFlags(args)
	if err != nil {
		return err
	}
	return withInfra(cmdCtx, func(ctx context.Context, in *infra) error {
		view, err := in.Services.Admin.GetArtifact(ctx, opts.PurchaseID, opts.Query)
		if err != nil {
			return err
		}
		if opts.Query != "" {
			return printJSON(cmdCtx.Out, view.Projection)
		}
		return printJSON(cmdCtx.Out, view)
	})
}

func runInvalidateCache(cmdCtx *commandContext, args []string) error {
	fs := newFlagSet("invalidate-cache")
	var tenantID string
	fs.StringVar(&tenantID, "tenant-id", "", "Tenant ID (required)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if strings.TrimSpace(tenantID) == "" {
		return errors.New("--tenant-id is required")
	}
	return withInfra(cmdCtx, func(ctx context.Context, in *infra) error {
		gen, err := in.Services.Admin.InvalidateContentCache(ctx, tenantID)
		if err != nil {
			return err
		}
		return writef(cmdCtx.Out, "tenant %s content generation is now %s\n", strings.TrimSpace(tenantID), gen)
	})
}

func printJobs(w io.Writer, jobs []*model.ReportJob) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	if err := writeln(tw, "PURCHASE\tTENANT\tTEST\tSTATUS\tATTEMPTS\tUPDATED\tLAST ERROR"); err != nil {
		return fmt.Errorf("write jobs header: %w", err)
	}
	for _, job := range jobs {
		lastErr := "-"
		if job.LastError != nil {
			lastErr = *job.LastError
		}
		if err := writef(tw, "%s\t%s\t%s\t%s\t%d\t%s\t%s\n",
			job.PurchaseID,
			job.TenantID,
			job.TestID,
			job.Status,
			job.Attempts,
			job.UpdatedAt.UTC().Format(time.RFC3339),
			lastErr,
		); err != nil {
			return fmt.Errorf("write job %s: %w", job.PurchaseID, err)
		}
	}
	return tw.Flush()
}

func printJobStats(w io.Writer, counts map[model.ReportJobStatus]int) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	if err := writeln(tw, "Status\tCount"); err != nil {
		return fmt.Errorf("write stats header: %w", err)
	}
	total := 0
	statuses := []model.ReportJobStatus{
		model.ReportJobStatusQueued,
		model.ReportJobStatusRunning,
		model.ReportJobStatusReady,
		model.ReportJobStatusFailed,
	}
	for _, status := range statuses {
		total += counts[status]
		if err := writef(tw, "%s\t%d\n", status, counts[status]); err != nil {
			return fmt.Errorf("write stats row: %w", err)
		}
	}
	if err := writef(tw, "total\t%d\n", total); err != nil {
		return fmt.Errorf("write stats total: %w", err)
	}
	return tw.Flush()
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encode output: %w", err)
	}
	return nil
}

func confirm(in io.Reader, out io.Writer, prompt string) error {
	if err := writef(out, "%s [y/N]: ", prompt); err != nil {
		return err
	}
	answer, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("read confirmation: %w", err)
	}
	switch strings.ToLower(strings.TrimSpace(answer)) {
	case "y", "yes":
		return nil
	default:
		return errAborted
	}
}
