package bootstrap

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/target/quizreport/config"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestRunAll_FailureStopsOtherServices(t *testing.T) {
	stopped := make(chan struct{})
	services := []backgroundService{
		{
			mode: config.ServiceModePoller,
			name: "report poller",
			start: func(ctx context.Context) error {
				<-ctx.Done()
				close(stopped)
				return nil
			},
		},
		{
			mode:  config.ServiceModeReaper,
			name:  "reaper",
			start: func(context.Context) error { return errors.New("boom") },
		},
	}

	err := runAll(context.Background(), services, discardLogger())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "reaper failed: boom")

	select {
	case <-stopped:
	case <-time.After(time.Second):
		t.Fatal("poller was not cancelled after reaper failure")
	}
}

func TestRunAll_CancellationIsClean(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	services := []backgroundService{
		{
			mode: config.ServiceModeReaper,
			name: "reaper",
			start: func(ctx context.Context) error {
				<-ctx.Done()
				return ctx.Err()
			},
		},
		{
			mode: config.ServiceModePoller,
			name: "report poller",
			start: func(ctx context.Context) error {
				<-ctx.Done()
				return nil
			},
		},
	}

	done := make(chan error, 1)
	go func() { done <- runAll(ctx, services, discardLogger()) }()
	cancel()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("runAll did not return after cancellation")
	}
}

func TestRunServices_Validation(t *testing.T) {
	require.Error(t, RunServices(context.Background(), nil))

	err := RunServices(context.Background(), &ServiceOrchestrationConfig{
		Config: &config.AppConfig{Services: "reaper"},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "wire reaper")
}

func TestNewServices_RequiresDatabase(t *testing.T) {
	_, err := NewServices(context.Background(), nil)
	require.Error(t, err)

	_, err = NewServices(context.Background(), &ServiceDeps{Config: &config.AppConfig{}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "database connection is required")
}

func TestGetEnabledServices(t *testing.T) {
	assert.Equal(t, []string{"http", "poller", "reaper"},
		GetEnabledServices(&config.AppConfig{Services: "reaper,http,poller"}))
	assert.Empty(t, GetEnabledServices(&config.AppConfig{Services: "scheduler"}))
	assert.Empty(t, GetEnabledServices(nil))
}

func TestValidateServiceConfig(t *testing.T) {
	require.NoError(t, ValidateServiceConfig(&config.AppConfig{Services: "http"}))
	require.Error(t, ValidateServiceConfig(&config.AppConfig{Services: ""}))
	require.Error(t, ValidateServiceConfig(nil))
}

func TestBuildGenerator(t *testing.T) {
	assert.Nil(t, buildGenerator(config.OpenAIConfig{}, discardLogger()))
	assert.NotNil(t, buildGenerator(config.OpenAIConfig{APIKey: "sk-test", Model: "gpt-4o"}, discardLogger()))
}

func TestBuildMirror_Disabled(t *testing.T) {
	mirror, err := buildMirror(context.Background(), config.ArtifactStoreConfig{}, discardLogger())
	require.NoError(t, err)
	assert.Nil(t, mirror)
}

func TestBuildObservability_Disabled(t *testing.T) {
	obs := buildObservability(context.Background(), discardLogger(), config.ObservabilityConfig{}, nil)
	assert.Nil(t, obs.MetricsSink)
	assert.Nil(t, obs.metricsSink())
	assert.NotNil(t, obs.FailureNotifier)
}

func TestNewLogger(t *testing.T) {
	prev := slog.Default()
	t.Cleanup(func() { slog.SetDefault(prev) })

	var buf bytes.Buffer
	logger := newLogger(&buf, false)
	logger.Debug("hidden")
	logger.Info("shown", "purchase_id", "P1")
	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), `"purchase_id":"P1"`)

	buf.Reset()
	newLogger(&buf, true).Debug("visible")
	assert.Contains(t, buf.String(), "visible")
}

func TestWarnInsecureConfig(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))

	WarnInsecureConfig(&config.AppConfig{}, logger)
	assert.Contains(t, buf.String(), "REPORT_WORKER_SECRET is empty")
	assert.Contains(t, buf.String(), "OPENAI_API_KEY is empty")
	assert.Contains(t, buf.String(), "no accepted credential")
}
