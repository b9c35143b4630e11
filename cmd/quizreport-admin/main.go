package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"sort"
	"syscall"
	"time"

	"github.com/target/quizreport/config"
	"github.com/target/quizreport/internal/bootstrap"
)

type commandFn func(ctx *commandContext, args []string) error

type command struct {
	name        string
	description string
	run         commandFn
}

type commandContext struct {
	Ctx    context.Context
	Logger *slog.Logger
	Config config.AppConfig
	Out    io.Writer
	In     io.Reader
}

const (
	defaultMigrationTimeout = 5 * time.Minute
	defaultCommandTimeout   = 2 * time.Minute
)

var errAborted = errors.New("aborted by user")

func main() {
	cfg, cfgErr := bootstrap.LoadConfig()
	logger := bootstrap.InitLogger(cfg.IsDev)

	if len(os.Args) < 2 {
		if err := printUsage(os.Stdout); err != nil {
			logger.Error("print usage failed", "error", err)
		}
		os.Exit(2) //nolint:forbidigo // CLI must exit with failure status when no command is provided
	}

	cmdName := os.Args[1]
	cmd, ok := commands()[cmdName]
	if !ok {
		if err := writef(os.Stderr, "unknown command %q\n\n", cmdName); err != nil {
			logger.Error("print unknown command message failed", "error", err)
		}
		if err := printUsage(os.Stderr); err != nil {
			logger.Error("print usage failed", "error", err)
		}
		os.Exit(2) //nolint:forbidigo // CLI must exit with failure status when command is unknown
	}

	if cfgErr != nil {
		logger.Error("load config", "error", cfgErr)
		os.Exit(1) //nolint:forbidigo // CLI must signal configuration load failure to shell scripts
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	cmdCtx := &commandContext{
		Ctx:    ctx,
		Logger: logger,
		Config: cfg,
		Out:    os.Stdout,
		In:     os.Stdin,
	}
	runErr := cmd.run(cmdCtx, os.Args[2:])
	stop()
	if runErr != nil {
		logger.Error("command failed", "command", cmdName, "error", runErr)
		os.Exit(1) //nolint:forbidigo // CLI must propagate command execution failure to callers
	}
}

func commands() map[string]command {
	return map[string]command{
		"migrate": {
			name:        "migrate",
			description: "Run database migrations",
			run:         runMigrations,
		},
		"enqueue": {
			name:        "enqueue",
			description: "Queue a report job for a purchase",
			run:         runEnqueue,
		},
		"list-jobs": {
			name:        "list-jobs",
			description: "List report jobs, optionally filtered by status",
			run:         runListJobs,
		},
		"job-stats": {
			name:        "job-stats",
			description: "Show report job counts per status",
			run:         runJobStats,
		},
		"requeue": {
			name:        "requeue",
			description: "Return one failed report job to the queue",
			run:         runRequeue,
		},
		"requeue-failed": {
			name:        "requeue-failed",
			description: "Return failed report jobs to the queue in bulk",
			run:         runRequeueFailed,
		},
		"run-once": {
			name:        "run-once",
			description: "Claim and process one batch of report jobs",
			run:         runOnce,
		},
		"reap": {
			name:        "reap",
			description: "Run one reaper pass (requeue stale running jobs, delete old ready jobs)",
			run:         runReap,
		},
		"show-artifact": {
			name:        "show-artifact",
			description: "Print the stored report artifact for a purchase",
			run:         runShowArtifact,
		},
		"invalidate-cache": {
			name:        "invalidate-cache",
			description: "Invalidate the cached published tests of a tenant",
			run:         runInvalidateCache,
		},
	}
}

func printUsage(w io.Writer) error {
	if err := writef(w, "Usage: quizreport-admin <command> [flags]\n\n"); err != nil {
		return err
	}
	if err := writef(w, "Available commands:\n"); err != nil {
		return err
	}
	all := commands()
	names := make([]string, 0, len(all))
	for name := range all {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		if err := writef(w, "  %-18s %s\n", name, all[name].description); err != nil {
			return err
		}
	}
	return nil
}

func writef(w io.Writer, format string, args ...any) error {
	if _, err := fmt.Fprintf(w, format, args...); err != nil {
		return fmt.Errorf("write output: %w", err)
	}
	return nil
}

func writeln(w io.Writer, line string) error {
	return writef(w, "%s\n", line)
}
