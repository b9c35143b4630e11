// Package workflowtest provides an end-to-end harness for the report pipeline: real Postgres
// repositories, the worker and admin services, and the HTTP router behind an httptest server.
package workflowtest

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"sync/atomic"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/target/quizreport/internal/core"
	"github.com/target/quizreport/internal/data"
	"github.com/target/quizreport/internal/domain/model"
	"github.com/target/quizreport/internal/domain/report"
	httpx "github.com/target/quizreport/internal/http"
	"github.com/target/quizreport/internal/service"
	"github.com/target/quizreport/internal/testutil"
)

// DefaultWorkerSecret is the secret the harness router accepts.
const DefaultWorkerSecret = "workflow-secret"

// StubGenerator is a ReportGenerator that returns a fixed document or a fixed error.
type StubGenerator struct {
	mu    sync.Mutex
	err   error
	calls atomic.Int32
	// Briefs records every brief passed to Generate.
	Briefs []*report.Brief
}

var _ core.ReportGenerator = (*StubGenerator)(nil)

// Configured always reports true.
func (g *StubGenerator) Configured() bool { return true }

// Model returns the model name stored on artifacts.
func (g *StubGenerator) Model() string { return "gpt-4o" }

// FailWith makes every later Generate call return err; nil restores success.
func (g *StubGenerator) FailWith(err error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.err = err
}

// Calls returns the number of Generate calls so far.
func (g *StubGenerator) Calls() int { return int(g.calls.Load()) }

// Generate returns testutil.ReportDocumentJSON parsed, or the configured error.
func (g *StubGenerator) Generate(_ context.Context, params core.GenerateReportParams) (*report.Document, error) {
	g.calls.Add(1)
	g.mu.Lock()
	defer g.mu.Unlock()
	g.Briefs = append(g.Briefs, params.Brief)
	if g.err != nil {
		return nil, g.err
	}
	return report.ParseDocument([]byte(testutil.ReportDocumentJSON))
}

// Options configures the harness.
type Options struct {
	// EnableRedis backs the content cache with the test Redis instance.
	EnableRedis bool
	Concurrency int
	Logger      *slog.Logger
}

// Harness wires the pipeline against one test database.
type Harness struct {
	t  testutil.TestingTB
	DB *sql.DB
	ts *httptest.Server

	Jobs         *data.ReportJobRepo
	Artifacts    *data.ReportArtifactRepo
	Summaries    *data.AttemptSummaryRepo
	Content      *data.ContentRepo
	ContentCache *core.ContentCacheService
	RedisClient  *redis.Client

	Generator *StubGenerator
	Worker    *service.ReportWorker
	Admin     *service.ReportAdminService
}

// NewHarness builds every component on db and starts the HTTP test server.
func NewHarness(t testutil.TestingTB, db *sql.DB, opts Options) *Harness {
	t.Helper()

	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	repoCfg := data.RepoConfig{Logger: logger}

	h := &Harness{
		t:         t,
		DB:        db,
		Jobs:      data.NewReportJobRepo(db, repoCfg),
		Artifacts: data.NewReportArtifactRepo(db, repoCfg),
		Summaries: data.NewAttemptSummaryRepo(db),
		Content:   data.NewContentRepo(db),
		Generator: &StubGenerator{},
	}

	var cache core.CacheRepository
	if opts.EnableRedis {
		h.RedisClient = testutil.SetupTestRedis(t)
		cache = data.NewRedisCacheRepo(h.RedisClient, "quizreport-test:")
	}
	h.ContentCache = core.NewContentCacheService(core.ContentCacheServiceOptions{
		Content: h.Content,
		Cache:   cache,
		TTL:     time.Minute,
		Logger:  logger,
	})

	h.Worker = service.MustNewReportWorker(service.ReportWorkerOptions{
		Jobs:        h.Jobs,
		Artifacts:   h.Artifacts,
		Summaries:   h.Summaries,
		Content:     h.ContentCache,
		Generator:   h.Generator,
		Concurrency: opts.Concurrency,
		Logger:      logger,
	})
	adminOpts := service.ReportAdminServiceOptions{
		Jobs:      h.Jobs,
		Artifacts: h.Artifacts,
		Summaries: h.Summaries,
		Logger:    logger,
	}
	if cache != nil {
		adminOpts.Cache = h.ContentCache
	}
	h.Admin = service.MustNewReportAdminService(adminOpts)

	h.ts = httptest.NewServer(httpx.NewRouter(httpx.RouterServices{
		Reports: &httpx.ReportHandlers{Runner: h.Worker, Admin: h.Admin, Logger: logger},
		Auth: httpx.NewAuthenticator(httpx.AuthenticatorOptions{
			WorkerSecret:  DefaultWorkerSecret,
			SecretIsAdmin: true,
			Logger:        logger,
		}),
		Logger: logger,
	}))
	return h
}

// Close stops the test server.
func (h *Harness) Close() {
	h.t.Helper()
	if h.ts != nil {
		h.ts.Close()
	}
}

// BaseURL returns the base URL of the test HTTP server.
func (h *Harness) BaseURL() string {
	return h.ts.URL
}

// PublishTest stores spec as version spec.Version and publishes it for the tenant.
func (h *Harness) PublishTest(tenantID string, spec *model.TestSpec) {
	h.t.Helper()
	ctx := context.Background()
	if _, err := h.Content.UpsertTestVersion(ctx, spec, model.LocaleEN); err != nil {
		h.t.Fatalf("upsert test version: %v", err)
	}
	if err := h.Content.PublishForTenant(ctx, tenantID, spec.TestID, spec.Version); err != nil {
		h.t.Fatalf("publish test: %v", err)
	}
}

// SaveSummary stores an attempt summary directly.
func (h *Harness) SaveSummary(summary *model.AttemptSummary) {
	h.t.Helper()
	if err := h.Summaries.Upsert(context.Background(), summary); err != nil {
		h.t.Fatalf("upsert attempt summary: %v", err)
	}
}

// HTTPClient issues authenticated requests against the harness server.
type HTTPClient struct {
	t       testutil.TestingTB
	baseURL string
	secret  string
	client  *http.Client
}

// NewHTTPClient creates a client that sends the harness worker secret.
func (h *Harness) NewHTTPClient() *HTTPClient {
	return &HTTPClient{
		t:       h.t,
		baseURL: h.BaseURL(),
		secret:  DefaultWorkerSecret,
		client:  &http.Client{Timeout: 10 * time.Second},
	}
}

// WithSecret returns a copy of the client that sends secret instead; "" sends none.
func (c *HTTPClient) WithSecret(secret string) *HTTPClient {
	clone := *c
	clone.secret = secret
	return &clone
}

// DoJSON performs a request with an optional JSON body. The caller closes the response body.
func (c *HTTPClient) DoJSON(method, path string, payload any) *http.Response {
	c.t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	body := bytes.NewReader(nil)
	if payload != nil {
		b, err := json.Marshal(payload)
		if err != nil {
			c.t.Fatalf("marshal payload: %v", err)
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		c.t.Fatalf("new request: %v", err)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.secret != "" {
		req.Header.Set(httpx.WorkerSecretHeader, c.secret)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		c.t.Fatalf("do request: %v", err)
	}
	return resp
}

// decode reads resp into dst after checking the status, then closes the body.
func (c *HTTPClient) decode(resp *http.Response, wantStatus int, dst any) {
	c.t.Helper()
	defer func() {
		if err := resp.Body.Close(); err != nil {
			c.t.Logf("warning: failed to close response body: %v", err)
		}
	}()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		c.t.Fatalf("read response: %v", err)
	}
	if resp.StatusCode != wantStatus {
		c.t.Fatalf("%s %s status: %d, response: %s", resp.Request.Method, resp.Request.URL.Path, resp.StatusCode, body)
	}
	if dst == nil {
		return
	}
	if err := json.Unmarshal(body, dst); err != nil {
		c.t.Fatalf("decode response: %v", err)
	}
}

// Enqueue queues a job and reports whether a new row was created.
func (c *HTTPClient) Enqueue(req *model.EnqueueReportJobRequest) bool {
	c.t.Helper()
	resp := c.DoJSON(http.MethodPost, "/api/internal/report-jobs", req)
	if resp.StatusCode == http.StatusOK {
		c.decode(resp, http.StatusOK, nil)
		return false
	}
	c.decode(resp, http.StatusCreated, nil)
	return true
}

// RunBatch triggers one worker batch.
func (c *HTTPClient) RunBatch(limit int) model.ReportBatchResult {
	c.t.Helper()
	var result model.ReportBatchResult
	c.decode(c.DoJSON(http.MethodPost, fmt.Sprintf("/api/internal/report-jobs/run?limit=%d", limit), nil), http.StatusOK, &result)
	return result
}

// GetJob fetches one job through the admin API.
func (c *HTTPClient) GetJob(purchaseID string) model.ReportJob {
	c.t.Helper()
	var job model.ReportJob
	c.decode(c.DoJSON(http.MethodGet, "/api/admin/report-jobs/"+purchaseID, nil), http.StatusOK, &job)
	return job
}

// Requeue returns a failed job to the queue through the admin API.
func (c *HTTPClient) Requeue(purchaseID string) model.ReportJob {
	c.t.Helper()
	var job model.ReportJob
	c.decode(c.DoJSON(http.MethodPost, "/api/admin/report-jobs/"+purchaseID+"/requeue", nil), http.StatusOK, &job)
	return job
}

// GetArtifact fetches the stored artifact, optionally projected with a JMESPath query.
func (c *HTTPClient) GetArtifact(purchaseID, query string) service.ArtifactView {
	c.t.Helper()
	path := "/api/admin/report-artifacts/" + purchaseID
	if query != "" {
		path += "?query=" + url.QueryEscape(query)
	}
	var view service.ArtifactView
	c.decode(c.DoJSON(http.MethodGet, path, nil), http.StatusOK, &view)
	return view
}

// WithHarness skips unless a test database is available, then runs fn against a fresh schema.
func WithHarness(t testutil.TestingTB, opts Options, fn func(*Harness)) {
	t.Helper()

	testutil.SkipIfNoTestDB(t)
	testutil.WithAutoDB(t, func(db *sql.DB) {
		h := NewHarness(t, db, opts)
		defer h.Close()
		fn(h)
	})
}
