package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/target/quizreport/internal/bootstrap"
)

// infra holds the connections and services one command needs.
type infra struct {
	DB       *sql.DB
	Redis    redis.UniversalClient
	Services bootstrap.ServiceContainer
}

// connectInfra opens Postgres, Redis when enabled, and wires the services on top.
func connectInfra(cmdCtx *commandContext) (*infra, error) {
	cfg := &cmdCtx.Config
	dbCfg := bootstrap.DatabaseConfig{
		DBConfig:    cfg.Postgres,
		RedisConfig: cfg.Redis,
		Logger:      cmdCtx.Logger,
	}

	db, err := bootstrap.ConnectDB(cmdCtx.Ctx, dbCfg)
	if err != nil {
		return nil, fmt.Errorf("connect db: %w", err)
	}
	in := &infra{DB: db}

	if cfg.Redis.Enabled {
		in.Redis, err = bootstrap.ConnectRedis(cmdCtx.Ctx, dbCfg)
		if err != nil {
			return nil, errors.Join(fmt.Errorf("connect redis: %w", err), in.close())
		}
	}

	in.Services, err = bootstrap.NewServices(cmdCtx.Ctx, &bootstrap.ServiceDeps{
		Config:      cfg,
		DB:          db,
		RedisClient: in.Redis,
		Logger:      cmdCtx.Logger,
	})
	if err != nil {
		return nil, errors.Join(err, in.close())
	}
	return in, nil
}

func (in *infra) close() error {
	var closeErr error
	if sink := in.Services.Observability.MetricsSink; sink != nil {
		if err := sink.Close(); err != nil {
			closeErr = errors.Join(closeErr, fmt.Errorf("close statsd: %w", err))
		}
	}
	if in.Redis != nil {
		if err := in.Redis.Close(); err != nil {
			closeErr = errors.Join(closeErr, fmt.Errorf("close redis: %w", err))
		}
	}
	if in.DB != nil {
		if err := in.DB.Close(); err != nil {
			closeErr = errors.Join(closeErr, fmt.Errorf("close db: %w", err))
		}
	}
	return closeErr
}

// withInfra runs fn with connected infrastructure under the default command timeout.
func withInfra(cmdCtx *commandContext, fn func(ctx context.Context, in *infra) error) error {
	ctx, cancel := context.WithTimeout(cmdCtx.Ctx, defaultCommandTimeout)
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
	return fn(ctx, in)
}
