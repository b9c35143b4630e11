// Package openai implements the report generator on the OpenAI chat completions API.
package openai

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	goopenai "github.com/sashabaranov/go-openai"

	"github.com/target/quizreport/internal/core"
	"github.com/target/quizreport/internal/domain/report"
)

const (
	// DefaultModel is used when no model is configured.
	DefaultModel = "gpt-4o"
	// DefaultBaseURL is the public OpenAI API.
	DefaultBaseURL = "https://api.openai.com/v1"
	// DefaultTimeout bounds one generation request.
	DefaultTimeout = 15 * time.Second

	maxReportTokens = 1600
	temperature     = 0.4
)

// ErrEmptyCompletion is returned when the API answers without a message.
var ErrEmptyCompletion = errors.New("OpenAI returned an empty completion.")

// Config configures a Generator.
type Config struct {
	APIKey  string
	Model   string
	BaseURL string
	Timeout time.Duration
	// HTTPClient overrides the transport; its Timeout is replaced by Timeout.
	HTTPClient *http.Client
	Logger     *slog.Logger
}

// Generator produces structured reports with a strict JSON schema response format.
type Generator struct {
	client *goopenai.Client
	model  string
	apiKey string
	logger *slog.Logger
}

var _ core.ReportGenerator = (*Generator)(nil)

// NewGenerator builds a Generator. A blank API key yields a generator whose Configured is false.
func NewGenerator(cfg Config) *Generator {
	model := strings.TrimSpace(cfg.Model)
	if model == "" {
		model = DefaultModel
	}
	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	httpClient := &http.Client{Timeout: timeout}
	if cfg.HTTPClient != nil {
		clone := *cfg.HTTPClient
		clone.Timeout = timeout
		httpClient = &clone
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	apiKey := strings.TrimSpace(cfg.APIKey)
	clientCfg := goopenai.DefaultConfig(apiKey)
	clientCfg.BaseURL = baseURL
	clientCfg.HTTPClient = httpClient

	return &Generator{
		client: goopenai.NewClientWithConfig(clientCfg),
		model:  model,
		apiKey: apiKey,
		logger: logger.With("component", "openai_generator"),
	}
}

// Configured reports whether an API key is present.
func (g *Generator) Configured() bool {
	return g != nil && g.apiKey != ""
}

// Model returns the configured model name.
func (g *Generator) Model() string {
	return g.model
}

// Generate asks the model for a report and validates the answer against the schema.
func (g *Generator) Generate(ctx context.Context, params core.GenerateReportParams) (*report.Document, error) {
	if !g.Configured() {
		return nil, report.ErrGeneratorNotConfigured
	}
	if params.Brief == nil {
		return nil, errors.New("brief is required")
	}
	model := strings.TrimSpace(params.Model)
	if model == "" {
		model = g.model
	}

	prompt, err := report.BuildPrompt(params.Brief, params.StyleID)
	if err != nil {
		return nil, err
	}

	req := goopenai.ChatCompletionRequest{
		Model: model,
		Messages: []goopenai.ChatCompletionMessage{
			{Role: goopenai.ChatMessageRoleSystem, Content: prompt.System},
			{Role: goopenai.ChatMessageRoleUser, Content: prompt.User},
		},
		ResponseFormat: &goopenai.ChatCompletionResponseFormat{
			Type: goopenai.ChatCompletionResponseFormatTypeJSONSchema,
			JSONSchema: &goopenai.ChatCompletionResponseFormatJSONSchema{
				Name:   report.SchemaName,
				Schema: report.JSONSchema(),
				Strict: true,
			},
		},
	}
	// Reasoning models reject max_tokens and a custom temperature.
	if isReasoningModel(model) {
		req.MaxCompletionTokens = maxReportTokens
	} else {
		req.MaxTokens = maxReportTokens
		req.Temperature = temperature
	}

	start := time.Now()
	resp, err := g.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return nil, describeAPIError(err)
	}
	g.logger.DebugContext(ctx, "openai completion received",
		"model", resp.Model,
		"duration", time.Since(start),
		"prompt_tokens", resp.Usage.PromptTokens,
		"completion_tokens", resp.Usage.CompletionTokens,
	)

	if len(resp.Choices) == 0 {
		return nil, ErrEmptyCompletion
	}
	content := strings.TrimSpace(resp.Choices[0].Message.Content)
	if content == "" {
		if refusal := strings.TrimSpace(resp.Choices[0].Message.Refusal); refusal != "" {
			return nil, fmt.Errorf("OpenAI refused the request: %s", refusal)
		}
		return nil, ErrEmptyCompletion
	}
	return report.ParseDocument([]byte(content))
}

func isReasoningModel(model string) bool {
	for _, prefix := range []string{"o1", "o3", "o4", "gpt-5"} {
		if strings.HasPrefix(model, prefix) {
			return true
		}
	}
	return false
}

// describeAPIError keeps the status code at the front so it survives truncation of last_error.
func describeAPIError(err error) error {
	var apiErr *goopenai.APIError
	if errors.As(err, &apiErr) {
		return fmt.Errorf("OpenAI request failed (%d): %w", apiErr.HTTPStatusCode, err)
	}
	var reqErr *goopenai.RequestError
	if errors.As(err, &reqErr) {
		return fmt.Errorf("OpenAI request failed (%d): %w", reqErr.HTTPStatusCode, err)
	}
	return fmt.Errorf("OpenAI request failed: %w", err)
}
