package bootstrap

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"

	"github.com/target/quizreport/config"
	"github.com/target/quizreport/internal/adapters/artifactstore"
	"github.com/target/quizreport/internal/adapters/openai"
	"github.com/target/quizreport/internal/adapters/reaper"
	"github.com/target/quizreport/internal/core"
	"github.com/target/quizreport/internal/data"
	"github.com/target/quizreport/internal/observability/notify/pagerduty"
	"github.com/target/quizreport/internal/observability/notify/slack"
	"github.com/target/quizreport/internal/observability/statsd"
	"github.com/target/quizreport/internal/service"
	"github.com/target/quizreport/internal/service/failurenotifier"
)

// ServiceContainer holds all application services.
type ServiceContainer struct {
	Worker        *service.ReportWorker
	Admin         *service.ReportAdminService
	ContentCache  *core.ContentCacheService
	Observability ObservabilityContainer
}

// ObservabilityContainer groups shared observability dependencies.
type ObservabilityContainer struct {
	MetricsSink     *statsd.Client
	FailureNotifier *failurenotifier.Service
}

// ServiceDeps groups dependencies for service initialization.
type ServiceDeps struct {
	Config      *config.AppConfig
	DB          *sql.DB
	RedisClient redis.UniversalClient
	Logger      *slog.Logger
}

// serviceRepositories groups data adapters backing service ports; no business rules here.
type serviceRepositories struct {
	Jobs      *data.ReportJobRepo
	Artifacts *data.ReportArtifactRepo
	Summaries *data.AttemptSummaryRepo
	Content   *data.ContentRepo
	// Cache is nil when Redis is disabled.
	Cache core.CacheRepository
}

func buildRepositories(deps *ServiceDeps) *serviceRepositories {
	repoCfg := data.RepoConfig{Logger: deps.Logger}
	repos := &serviceRepositories{
		Jobs:      data.NewReportJobRepo(deps.DB, repoCfg),
		Artifacts: data.NewReportArtifactRepo(deps.DB, repoCfg),
		Summaries: data.NewAttemptSummaryRepo(deps.DB),
		Content:   data.NewContentRepo(deps.DB),
	}
	if deps.RedisClient != nil {
		repos.Cache = data.NewRedisCacheRepo(deps.RedisClient, deps.Config.Redis.KeyPrefix)
	}
	return repos
}

func buildObservability(ctx context.Context, logger *slog.Logger, cfg config.ObservabilityConfig, dedupe core.CacheRepository) ObservabilityContainer {
	var metricsSink *statsd.Client
	if cfg.Metrics.IsEnabled() {
		client, err := statsd.NewClient(ctx, statsd.Config{
			Enabled: true,
			Address: cfg.Metrics.StatsdAddress,
			Prefix:  cfg.Metrics.Prefix,
			Logger:  logger,
		})
		if err != nil {
			logger.Error("failed to initialise statsd client", "error", err)
		} else {
			metricsSink = client
		}
	}

	return ObservabilityContainer{
		MetricsSink:     metricsSink,
		FailureNotifier: buildFailureNotifier(logger, cfg.Notifications, dedupe),
	}
}

// metricsSink avoids handing a typed nil client to services that check for a nil Sink.
func (o ObservabilityContainer) metricsSink() statsd.Sink {
	if o.MetricsSink == nil {
		return nil
	}
	return o.MetricsSink
}

func buildFailureNotifier(
	logger *slog.Logger,
	cfg config.ObservabilityNotificationsConfig,
	dedupe core.CacheRepository,
) *failurenotifier.Service {
	notifierLogger := logger.With("component", "failure_notifier")
	if !cfg.Enabled {
		return failurenotifier.NewService(failurenotifier.Options{Logger: notifierLogger})
	}

	sinks := make([]failurenotifier.SinkRegistration, 0, 2)

	if cfg.Slack.Enabled {
		client, err := slack.NewClient(slack.Config{
			WebhookURL:      cfg.Slack.WebhookURL,
			Channel:         cfg.Slack.Channel,
			Username:        cfg.Slack.Username,
			Timeout:         cfg.Timeout,
			RetryLimit:      cfg.RetryLimit,
			ReportURLPrefix: cfg.Slack.ReportURLPrefix,
		})
		if err != nil {
			logger.Error("failed to initialise slack notifier", "error", err)
		} else {
			sinks = append(sinks, failurenotifier.SinkRegistration{Name: "slack", Sink: client})
		}
	}

	if cfg.PagerDuty.Enabled {
		client, err := pagerduty.NewClient(pagerduty.Config{
			RoutingKey: cfg.PagerDuty.RoutingKey,
			Source:     cfg.PagerDuty.Source,
			Component:  cfg.PagerDuty.Component,
			Endpoint:   cfg.PagerDuty.Endpoint,
			Timeout:    cfg.Timeout,
			RetryLimit: cfg.RetryLimit,
		})
		if err != nil {
			logger.Error("failed to initialise pagerduty notifier", "error", err)
		} else {
			sinks = append(sinks, failurenotifier.SinkRegistration{Name: "pagerduty", Sink: client})
		}
	}

	return failurenotifier.NewService(failurenotifier.Options{
		Logger:       notifierLogger,
		Sinks:        sinks,
		Dedupe:       dedupe,
		DedupeWindow: cfg.DedupeWindow,
	})
}

// buildGenerator returns nil when no API key is configured so the worker fails jobs with
// a clear "not configured" error instead of calling the API.
func buildGenerator(cfg config.OpenAIConfig, logger *slog.Logger) core.ReportGenerator {
	if !cfg.Configured() {
		return nil
	}
	return openai.NewGenerator(openai.Config{
		APIKey:  cfg.APIKey,
		Model:   cfg.Model,
		BaseURL: cfg.BaseURL,
		Timeout: cfg.Timeout,
		Logger:  logger,
	})
}

func buildMirror(ctx context.Context, cfg config.ArtifactStoreConfig, logger *slog.Logger) (core.ArtifactMirror, error) {
	if !cfg.Enabled {
		return nil, nil
	}
	store, err := artifactstore.New(ctx, artifactstore.Config{
		Endpoint:     cfg.Endpoint,
		AccessKey:    cfg.AccessKey,
		SecretKey:    cfg.SecretKey,
		Bucket:       cfg.Bucket,
		Region:       cfg.Region,
		UseSSL:       cfg.UseSSL,
		Prefix:       cfg.Prefix,
		CreateBucket: true,
		Logger:       logger,
	})
	if err != nil {
		return nil, fmt.Errorf("connect artifact store: %w", err)
	}
	return store, nil
}

// NewServices wires repositories, adapters and services.
func NewServices(ctx context.Context, deps *ServiceDeps) (ServiceContainer, error) {
	if deps == nil || deps.Config == nil {
		return ServiceContainer{}, errors.New("service deps with config are required")
	}
	if deps.DB == nil {
		return ServiceContainer{}, errors.New("database connection is required")
	}
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	deps.Logger = logger
	cfg := deps.Config

	repos := buildRepositories(deps)
	observability := buildObservability(ctx, logger, cfg.Observability, repos.Cache)

	mirror, err := buildMirror(ctx, cfg.ArtifactStore, logger)
	if err != nil {
		return ServiceContainer{}, err
	}

	contentCache := core.NewContentCacheService(core.ContentCacheServiceOptions{
		Content: repos.Content,
		Cache:   repos.Cache,
		TTL:     cfg.ContentCache.TTL,
		Logger:  logger,
	})

	worker, err := service.NewReportWorker(service.ReportWorkerOptions{
		Jobs:            repos.Jobs,
		Artifacts:       repos.Artifacts,
		Summaries:       repos.Summaries,
		Content:         contentCache,
		Generator:       buildGenerator(cfg.OpenAI, logger),
		Mirror:          mirror,
		Concurrency:     cfg.Report.Concurrency,
		Logger:          logger,
		Metrics:         observability.metricsSink(),
		FailureNotifier: observability.FailureNotifier,
	})
	if err != nil {
		return ServiceContainer{}, fmt.Errorf("wire report worker: %w", err)
	}

	adminOpts := service.ReportAdminServiceOptions{
		Jobs:      repos.Jobs,
		Artifacts: repos.Artifacts,
		Summaries: repos.Summaries,
		Logger:    logger,
	}
	// Without Redis there is nothing to invalidate.
	if repos.Cache != nil {
		adminOpts.Cache = contentCache
	}
	admin, err := service.NewReportAdminService(adminOpts)
	if err != nil {
		return ServiceContainer{}, fmt.Errorf("wire report admin service: %w", err)
	}

	return ServiceContainer{
		Worker:        worker,
		Admin:         admin,
		ContentCache:  contentCache,
		Observability: observability,
	}, nil
}

// ServiceOrchestrationConfig contains everything needed to run the enabled services.
type ServiceOrchestrationConfig struct {
	Config   *config.AppConfig
	Services ServiceContainer
	DB       *sql.DB
	Auth     AuthConfig
	Logger   *slog.Logger
}

// backgroundService describes a startable component.
type backgroundService struct {
	mode  config.ServiceMode
	name  string
	start func(context.Context) error
}

func buildBackgroundServices(ctx context.Context, cfg *ServiceOrchestrationConfig, logger *slog.Logger) ([]backgroundService, error) {
	appCfg := cfg.Config
	var services []backgroundService

	if appCfg.IsHTTPServerEnabled() {
		authCfg := cfg.Auth
		authCfg.Logger = logger
		auth, err := BuildAuthenticator(ctx, authCfg)
		if err != nil {
			return nil, err
		}
		server := NewHTTPServer(&HTTPServerConfig{
			Config:   appCfg,
			Services: cfg.Services,
			Auth:     auth,
			Logger:   logger,
		})
		services = append(services, backgroundService{
			mode: config.ServiceModeHTTP,
			name: "http server",
			start: func(ctx context.Context) error {
				return ServeHTTP(ctx, server, appCfg.HTTP.MaxConns, logger)
			},
		})
	}

	if appCfg.IsPollerEnabled() {
		poller, err := service.NewReportPoller(service.ReportPollerOptions{
			Runner:       cfg.Services.Worker,
			Interval:     appCfg.Report.PollInterval,
			Limit:        appCfg.Report.PollLimit,
			BatchTimeout: appCfg.Report.JobTimeout,
			Logger:       logger,
			Metrics:      cfg.Services.Observability.metricsSink(),
		})
		if err != nil {
			return nil, fmt.Errorf("wire report poller: %w", err)
		}
		services = append(services, backgroundService{mode: config.ServiceModePoller, name: "report poller", start: poller.Run})
	}

	if appCfg.IsReaperEnabled() {
		runner, err := reaper.NewRunner(reaper.RunnerOptions{
			DB:      cfg.DB,
			Config:  appCfg.Reaper,
			Logger:  logger,
			Metrics: cfg.Services.Observability.metricsSink(),
		})
		if err != nil {
			return nil, fmt.Errorf("wire reaper: %w", err)
		}
		services = append(services, backgroundService{mode: config.ServiceModeReaper, name: "reaper", start: runner.Run})
	}

	return services, nil
}

// RunServices starts every enabled service and blocks until ctx is cancelled or one of
// them fails; the others are then stopped and awaited.
func RunServices(ctx context.Context, cfg *ServiceOrchestrationConfig) error {
	if cfg == nil || cfg.Config == nil {
		return errors.New("service orchestration config with AppConfig is required")
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	services, err := buildBackgroundServices(ctx, cfg, logger)
	if err != nil {
		return err
	}
	if len(services) == 0 {
		return errors.New("no services enabled")
	}

	return runAll(ctx, services, logger)
}

func runAll(ctx context.Context, services []backgroundService, logger *slog.Logger) error {
	g, gctx := errgroup.WithContext(ctx)
	for _, svc := range services {
		g.Go(func() error {
			logger.InfoContext(gctx, "service started", "service", svc.name, "mode", svc.mode)
			err := svc.start(gctx)
			// Reaper and poller return ctx.Err() on deadline; only real failures stop the group.
			if err != nil && !(gctx.Err() != nil && errors.Is(err, gctx.Err())) {
				return fmt.Errorf("%s failed: %w", svc.name, err)
			}
			logger.Info(svc.name + " stopped")
			return nil
		})
	}

	err := g.Wait()
	if err != nil {
		logger.Error("service error", "error", err)
	}
	return err
}
