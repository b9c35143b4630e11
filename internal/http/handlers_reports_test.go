package httpx

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/target/quizreport/internal/domain/model"
	"github.com/target/quizreport/internal/domain/report"
	apperrors "github.com/target/quizreport/internal/errors"
	"github.com/target/quizreport/internal/mocks"
	"github.com/target/quizreport/internal/service"
	"github.com/target/quizreport/internal/testutil"
)

const testSecret = "worker-secret"

// fakeRunner records the limits it was called with.
type fakeRunner struct {
	calls  atomic.Int32
	limits []int
	result model.ReportBatchResult
	err    error
}

func (f *fakeRunner) RunBatch(_ context.Context, limit int) (model.ReportBatchResult, error) {
	f.calls.Add(1)
	f.limits = append(f.limits, limit)
	return f.result, f.err
}

type routerFixture struct {
	handler   http.Handler
	runner    *fakeRunner
	jobs      *mocks.MockReportJobRepository
	artifacts *mocks.MockReportArtifactRepository
	summaries *mocks.MockAttemptSummaryRepository
}

func newRouterFixture(t *testing.T, secret string) *routerFixture {
	t.Helper()
	ctrl := gomock.NewController(t)
	f := &routerFixture{
		runner:    &fakeRunner{},
		jobs:      mocks.NewMockReportJobRepository(ctrl),
		artifacts: mocks.NewMockReportArtifactRepository(ctrl),
		summaries: mocks.NewMockAttemptSummaryRepository(ctrl),
	}
	admin := service.MustNewReportAdminService(service.ReportAdminServiceOptions{
		Jobs:      f.jobs,
		Artifacts: f.artifacts,
		Summaries: f.summaries,
	})
	f.handler = NewRouter(RouterServices{
		Reports: &ReportHandlers{Runner: f.runner, Admin: admin},
		Auth:    NewAuthenticator(AuthenticatorOptions{WorkerSecret: secret, SecretIsAdmin: true}),
	})
	return f
}

func (f *routerFixture) do(t *testing.T, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	r := httptest.NewRequest(method, target, strings.NewReader(body))
	r.Header.Set(WorkerSecretHeader, testSecret)
	w := httptest.NewRecorder()
	f.handler.ServeHTTP(w, r)
	return w
}

func TestRunBatch_Unauthorized(t *testing.T) {
	tests := []struct {
		name       string
		configured string
		presented  string
	}{
		{"missing header", testSecret, ""},
		{"wrong secret", testSecret, "nope"},
		{"secret prefix", testSecret, "worker"},
		{"empty configured secret rejects everything", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newRouterFixture(t, tt.configured)
			r := httptest.NewRequest(http.MethodPost, "/api/internal/report-jobs/run", nil)
			if tt.presented != "" {
				r.Header.Set(WorkerSecretHeader, tt.presented)
			}
			w := httptest.NewRecorder()
			f.handler.ServeHTTP(w, r)

			assert.Equal(t, http.StatusUnauthorized, w.Code)
			assert.JSONEq(t, `{"error":"Unauthorized."}`, w.Body.String())
			assert.Zero(t, f.runner.calls.Load(), "claim must not run for unauthorized callers")
		})
	}
}

func TestInternalRoutes_AdminBearerNeedsWorkerSecret(t *testing.T) {
	f := newRouterFixture(t, testSecret)
	f.handler = NewRouter(RouterServices{
		Reports: &ReportHandlers{Runner: f.runner},
		Auth:    newTestAuthenticator(true),
	})

	r := httptest.NewRequest(http.MethodPost, "/api/internal/report-jobs/run", nil)
	r.Header.Set("Authorization", "Bearer ops-token")
	w := httptest.NewRecorder()
	f.handler.ServeHTTP(w, r)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Zero(t, f.runner.calls.Load())

	r = httptest.NewRequest(http.MethodPost, "/api/internal/report-jobs/run", nil)
	r.Header.Set("Authorization", "Bearer ops-token")
	r.Header.Set(WorkerSecretHeader, testSecret)
	w = httptest.NewRecorder()
	f.handler.ServeHTTP(w, r)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, int32(1), f.runner.calls.Load())
}

func TestRunBatch_ReturnsCounts(t *testing.T) {
	f := newRouterFixture(t, testSecret)
	f.runner.result = model.ReportBatchResult{Claimed: 3, Failed: 1, Ready: 2}

	w := f.do(t, http.MethodPost, "/api/internal/report-jobs/run?limit=500", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, `{"claimed":3,"failed":1,"ready":2}`+"\n", w.Body.String())

	f.do(t, http.MethodPost, "/api/internal/report-jobs/run?limit=abc", "")
	f.do(t, http.MethodPost, "/api/internal/report-jobs/run?limit=7jobs", "")
	assert.Equal(t, []int{report.MaxClaimLimit, report.DefaultClaimLimit, 7}, f.runner.limits)
}

func TestRunBatch_ClaimErrorIs500(t *testing.T) {
	f := newRouterFixture(t, testSecret)
	f.runner.err = errors.New("claim report jobs: connection refused")

	w := f.do(t, http.MethodPost, "/api/internal/report-jobs/run", "")
	require.Equal(t, http.StatusInternalServerError, w.Code)
	var body map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "run_failed", body["error"])
	assert.NotContains(t, body["message"], "connection refused")
}

func TestEnqueueJob(t *testing.T) {
	f := newRouterFixture(t, testSecret)
	body := `{"purchase_id":"P1","tenant_id":"tenant-a","test_id":"test-focus","session_id":"s1","locale":"en"}`

	f.jobs.EXPECT().Enqueue(gomock.Any(), gomock.Any()).
		Return(&model.ReportJob{PurchaseID: "P1", Status: model.ReportJobStatusQueued}, true, nil)
	w := f.do(t, http.MethodPost, "/api/internal/report-jobs", body)
	require.Equal(t, http.StatusCreated, w.Code)
	assert.Contains(t, w.Body.String(), `"status":"queued"`)

	f.jobs.EXPECT().Enqueue(gomock.Any(), gomock.Any()).Return(&model.ReportJob{PurchaseID: "P1"}, false, nil)
	w = f.do(t, http.MethodPost, "/api/internal/report-jobs", body)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"created":false}`, w.Body.String())

	w = f.do(t, http.MethodPost, "/api/internal/report-jobs", `{"purchase_id":"  "}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = f.do(t, http.MethodPost, "/api/internal/report-jobs", `{"purchase_id":"P1","extra":1}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "invalid_json")
}

func TestUpsertAttemptSummary(t *testing.T) {
	f := newRouterFixture(t, testSecret)
	body := `{"tenant_id":"tenant-a","test_id":"test-focus","session_id":"s1","distinct_id":"d1","locale":"en",
		"computed_at":"2026-01-02T03:04:05Z","band_id":"band-mid","scale_scores":{"logic":2},"total_score":3}`

	f.summaries.EXPECT().Upsert(gomock.Any(), gomock.Any()).Return(nil)
	w := f.do(t, http.MethodPut, "/api/internal/attempt-summaries", body)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"total_score":3`)

	w = f.do(t, http.MethodPut, "/api/internal/attempt-summaries", strings.Replace(body, `"total_score":3`, `"total_score":3.5`, 1))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAdminRoutes(t *testing.T) {
	f := newRouterFixture(t, testSecret)

	failed := model.ReportJobStatusFailed
	f.jobs.EXPECT().List(gomock.Any(), model.ReportJobListOptions{Status: &failed, Limit: 10, Offset: 5}).
		Return([]*model.ReportJob{{PurchaseID: "P9", Status: failed}}, nil)
	w := f.do(t, http.MethodGet, "/api/admin/report-jobs?status=FAILED&limit=10&offset=5", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"purchase_id":"P9"`)

	f.jobs.EXPECT().GetByPurchaseID(gomock.Any(), "missing").Return(nil, apperrors.NotFoundf("report job not found"))
	w = f.do(t, http.MethodGet, "/api/admin/report-jobs/missing", "")
	assert.Equal(t, http.StatusNotFound, w.Code)

	f.jobs.EXPECT().Requeue(gomock.Any(), "P2").Return(nil, apperrors.Conflictf("report job is not in failed state"))
	w = f.do(t, http.MethodPost, "/api/admin/report-jobs/P2/requeue", "")
	assert.Equal(t, http.StatusConflict, w.Code)

	f.jobs.EXPECT().RequeueFailed(gomock.Any(), model.RequeueFailedOptions{Limit: maxListLimit, MaxAttempts: 3}).
		Return(int64(4), nil)
	w = f.do(t, http.MethodPost, "/api/admin/report-jobs/requeue-failed?limit=9999&max_attempts=3", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"requeued":4}`, w.Body.String())

	f.jobs.EXPECT().CountByStatus(gomock.Any()).
		Return(map[model.ReportJobStatus]int{model.ReportJobStatusQueued: 2}, nil)
	w = f.do(t, http.MethodGet, "/api/admin/report-jobs/stats", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"queued":2}`, w.Body.String())

	f.artifacts.EXPECT().Get(gomock.Any(), "P1").Return(testutil.NewReportArtifact("P1"), nil)
	w = f.do(t, http.MethodGet, "/api/admin/report-artifacts/P1?query=summary.headline", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"projection":"Thinker"`)

	w = f.do(t, http.MethodPost, "/api/admin/content-cache/tenants/tenant-a/invalidate", "")
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestAdminRoutes_UncodedErrorIsHidden(t *testing.T) {
	f := newRouterFixture(t, testSecret)
	f.jobs.EXPECT().GetByPurchaseID(gomock.Any(), "P1").Return(nil, errors.New("pq: relation does not exist"))

	w := f.do(t, http.MethodGet, "/api/admin/report-jobs/P1", "")
	require.Equal(t, http.StatusInternalServerError, w.Code)
	assert.NotContains(t, w.Body.String(), "relation")
}
