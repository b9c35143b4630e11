package service

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/target/quizreport/internal/core"
	"github.com/target/quizreport/internal/domain/model"
	"github.com/target/quizreport/internal/domain/report"
	apperrors "github.com/target/quizreport/internal/errors"
	"github.com/target/quizreport/internal/mocks"
	"github.com/target/quizreport/internal/testutil"
)

type adminFixture struct {
	svc       *ReportAdminService
	jobs      *mocks.MockReportJobRepository
	artifacts *mocks.MockReportArtifactRepository
	summaries *mocks.MockAttemptSummaryRepository
	cache     *mocks.MockCacheRepository
}

func newAdminFixture(t *testing.T) *adminFixture {
	t.Helper()
	ctrl := gomock.NewController(t)
	f := &adminFixture{
		jobs:      mocks.NewMockReportJobRepository(ctrl),
		artifacts: mocks.NewMockReportArtifactRepository(ctrl),
		summaries: mocks.NewMockAttemptSummaryRepository(ctrl),
		cache:     mocks.NewMockCacheRepository(ctrl),
	}
	f.svc = MustNewReportAdminService(ReportAdminServiceOptions{
		Jobs:      f.jobs,
		Artifacts: f.artifacts,
		Summaries: f.summaries,
		Cache: core.NewContentCacheService(core.ContentCacheServiceOptions{
			Content: mocks.NewMockContentRepository(ctrl),
			Cache:   f.cache,
			Clock:   func() time.Time { return time.Unix(0, 36) },
		}),
	})
	return f
}

func TestReportAdminService_Enqueue(t *testing.T) {
	f := newAdminFixture(t)
	ctx := context.Background()

	req := testutil.NewEnqueueRequest(" P1 ").Build()
	f.jobs.EXPECT().
		Enqueue(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, r *model.EnqueueReportJobRequest) (*model.ReportJob, bool, error) {
			assert.Equal(t, "P1", r.PurchaseID)
			return &model.ReportJob{PurchaseID: r.PurchaseID, Status: model.ReportJobStatusQueued}, true, nil
		})

	job, created, err := f.svc.Enqueue(ctx, req)
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, model.ReportJobStatusQueued, job.Status)

	_, _, err = f.svc.Enqueue(ctx, testutil.NewEnqueueRequest("P2").WithTenant("  ").Build())
	require.Error(t, err)
	assert.True(t, apperrors.IsValidation(err))

	_, _, err = f.svc.Enqueue(ctx, nil)
	assert.True(t, apperrors.IsValidation(err))
}

func TestReportAdminService_UpsertAttemptSummary(t *testing.T) {
	f := newAdminFixture(t)
	req := &model.UpsertAttemptSummaryRequest{
		TenantID:    "tenant-a",
		TestID:      "test-focus",
		SessionID:   "s1",
		DistinctID:  "d1",
		Locale:      "en",
		ComputedAt:  "2026-01-02T03:04:05+02:00",
		BandID:      "band-mid",
		ScaleScores: map[string]float64{" logic ": 2},
		TotalScore:  json.Number("3"),
	}
	f.summaries.EXPECT().Upsert(gomock.Any(), gomock.Any()).Return(nil)

	summary, err := f.svc.UpsertAttemptSummary(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 1, 2, 1, 4, 5, 0, time.UTC), summary.ComputedAt)
	assert.Contains(t, summary.ScaleScores, "logic")

	req.TotalScore = json.Number("3.5")
	_, err = f.svc.UpsertAttemptSummary(context.Background(), req)
	assert.True(t, apperrors.IsValidation(err))
}

func TestReportAdminService_ListJobsRejectsUnknownStatus(t *testing.T) {
	f := newAdminFixture(t)
	bogus := model.ReportJobStatus("paused")
	_, err := f.svc.ListJobs(context.Background(), model.ReportJobListOptions{Status: &bogus})
	assert.True(t, apperrors.IsValidation(err))

	failed := model.ReportJobStatusFailed
	f.jobs.EXPECT().List(gomock.Any(), model.ReportJobListOptions{Status: &failed, Limit: 10}).Return(nil, nil)
	_, err = f.svc.ListJobs(context.Background(), model.ReportJobListOptions{Status: &failed, Limit: 10})
	require.NoError(t, err)
}

func TestReportAdminService_Requeue(t *testing.T) {
	f := newAdminFixture(t)
	ctx := context.Background()

	f.jobs.EXPECT().Requeue(gomock.Any(), "P1").Return(&model.ReportJob{PurchaseID: "P1", Attempts: 2}, nil)
	job, err := f.svc.Requeue(ctx, " P1 ")
	require.NoError(t, err)
	assert.Equal(t, 2, job.Attempts)

	f.jobs.EXPECT().Requeue(gomock.Any(), "P2").Return(nil, apperrors.Conflictf("report job is not in failed state"))
	_, err = f.svc.Requeue(ctx, "P2")
	assert.True(t, apperrors.IsConflict(err))

	_, err = f.svc.Requeue(ctx, "")
	assert.True(t, apperrors.IsValidation(err))
}

func TestReportAdminService_RequeueFailed(t *testing.T) {
	f := newAdminFixture(t)
	opts := model.RequeueFailedOptions{Limit: 20, MaxAttempts: 3}
	f.jobs.EXPECT().RequeueFailed(gomock.Any(), opts).Return(int64(7), nil)

	n, err := f.svc.RequeueFailed(context.Background(), opts)
	require.NoError(t, err)
	assert.Equal(t, int64(7), n)

	_, err = f.svc.RequeueFailed(context.Background(), model.RequeueFailedOptions{MaxAttempts: -1})
	assert.True(t, apperrors.IsValidation(err))
}

func TestReportAdminService_GetArtifact(t *testing.T) {
	f := newAdminFixture(t)
	ctx := context.Background()
	artifact := testutil.NewReportArtifact("P1")
	f.artifacts.EXPECT().Get(gomock.Any(), "P1").Return(artifact, nil).Times(2)

	view, err := f.svc.GetArtifact(ctx, "P1", "")
	require.NoError(t, err)
	assert.Equal(t, report.StyleAnalytical, view.StyleCard.ID)
	assert.Nil(t, view.Projection)

	view, err = f.svc.GetArtifact(ctx, "P1", "summary.headline")
	require.NoError(t, err)
	assert.Equal(t, "Thinker", view.Projection)

	_, err = f.svc.GetArtifact(ctx, "P1", "summary.[")
	assert.True(t, apperrors.IsValidation(err))
}

func TestReportAdminService_InvalidateContentCache(t *testing.T) {
	f := newAdminFixture(t)
	f.cache.EXPECT().Set(gomock.Any(), "content_gen:tenant-a", []byte("10"), time.Duration(0)).Return(nil)

	gen, err := f.svc.InvalidateContentCache(context.Background(), "tenant-a")
	require.NoError(t, err)
	assert.Equal(t, "10", gen)

	noCache := MustNewReportAdminService(ReportAdminServiceOptions{Jobs: f.jobs, Artifacts: f.artifacts, Summaries: f.summaries})
	_, err = noCache.InvalidateContentCache(context.Background(), "tenant-a")
	assert.True(t, apperrors.IsUnavailable(err))
}
