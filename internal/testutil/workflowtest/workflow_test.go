package workflowtest

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/target/quizreport/internal/core"
	"github.com/target/quizreport/internal/domain/model"
	"github.com/target/quizreport/internal/domain/report"
	"github.com/target/quizreport/internal/testutil"
)

func TestStubGenerator(t *testing.T) {
	gen := &StubGenerator{}
	brief := &report.Brief{TestID: "test-focus"}

	doc, err := gen.Generate(context.Background(), core.GenerateReportParams{Brief: brief})
	require.NoError(t, err)
	require.NotNil(t, doc)
	assert.Equal(t, 1, gen.Calls())
	assert.Equal(t, []*report.Brief{brief}, gen.Briefs)

	gen.FailWith(errors.New("upstream timeout"))
	_, err = gen.Generate(context.Background(), core.GenerateReportParams{Brief: brief})
	require.EqualError(t, err, "upstream timeout")
	assert.Equal(t, 2, gen.Calls())

	gen.FailWith(nil)
	_, err = gen.Generate(context.Background(), core.GenerateReportParams{Brief: brief})
	require.NoError(t, err)
	assert.True(t, gen.Configured())
	assert.Equal(t, "gpt-4o", gen.Model())
}

func TestWorkflow_EnqueueRunReady(t *testing.T) {
	WithHarness(t, Options{}, func(h *Harness) {
		h.PublishTest("tenant-a", testutil.NewTestSpec("focus").Build())
		h.SaveSummary(testutil.NewAttemptSummary("purchase-1"))

		client := h.NewHTTPClient()
		require.True(t, client.Enqueue(testutil.NewEnqueueRequest("purchase-1").Build()))
		assert.False(t, client.Enqueue(testutil.NewEnqueueRequest("purchase-1").Build()), "second enqueue is a no-op")

		result := client.RunBatch(10)
		assert.Equal(t, model.ReportBatchResult{Claimed: 1, Ready: 1}, result)

		job := client.GetJob("purchase-1")
		assert.Equal(t, model.ReportJobStatusReady, job.Status)
		assert.Zero(t, job.Attempts, "attempts only count failures")
		assert.Nil(t, job.LastError)

		view := client.GetArtifact("purchase-1", "")
		require.NotNil(t, view.Artifact)
		assert.Equal(t, "gpt-4o", view.Artifact.Model)
		assert.Equal(t, "session-purchase-1", view.Artifact.SessionID)
		assert.Equal(t, view.Artifact.StyleID, view.StyleCard.ID)

		assert.Equal(t, model.ReportBatchResult{}, client.RunBatch(10), "nothing left to claim")
		assert.Equal(t, 1, h.Generator.Calls())
	})
}

func TestWorkflow_FailureDeadLettersUntilRequeued(t *testing.T) {
	WithHarness(t, Options{Concurrency: 2}, func(h *Harness) {
		h.PublishTest("tenant-a", testutil.NewTestSpec("focus").Build())
		h.SaveSummary(testutil.NewAttemptSummary("purchase-2"))
		client := h.NewHTTPClient()
		require.True(t, client.Enqueue(testutil.NewEnqueueRequest("purchase-2").Build()))

		h.Generator.FailWith(errors.New("model overloaded"))
		assert.Equal(t, model.ReportBatchResult{Claimed: 1, Failed: 1}, client.RunBatch(10))

		job := client.GetJob("purchase-2")
		assert.Equal(t, model.ReportJobStatusFailed, job.Status)
		require.NotNil(t, job.LastError)
		assert.Contains(t, *job.LastError, "model overloaded")

		assert.Equal(t, model.ReportBatchResult{}, client.RunBatch(10), "failed jobs stay dead-lettered")

		h.Generator.FailWith(nil)
		requeued := client.Requeue("purchase-2")
		assert.Equal(t, model.ReportJobStatusQueued, requeued.Status)
		assert.Equal(t, 1, requeued.Attempts, "requeue keeps the failure count")

		assert.Equal(t, model.ReportBatchResult{Claimed: 1, Ready: 1}, client.RunBatch(10))
		assert.Equal(t, model.ReportJobStatusReady, client.GetJob("purchase-2").Status)
	})
}

func TestWorkflow_MissingSummaryFails(t *testing.T) {
	WithHarness(t, Options{}, func(h *Harness) {
		h.PublishTest("tenant-a", testutil.NewTestSpec("focus").Build())
		client := h.NewHTTPClient()
		require.True(t, client.Enqueue(testutil.NewEnqueueRequest("purchase-3").Build()))

		assert.Equal(t, model.ReportBatchResult{Claimed: 1, Failed: 1}, client.RunBatch(10))
		assert.Zero(t, h.Generator.Calls())
	})
}

func TestWorkflow_RejectsWrongSecret(t *testing.T) {
	WithHarness(t, Options{}, func(h *Harness) {
		resp := h.NewHTTPClient().WithSecret("nope").DoJSON(http.MethodPost, "/api/internal/report-jobs/run", nil)
		defer resp.Body.Close()
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

		resp2 := h.NewHTTPClient().WithSecret("").DoJSON(http.MethodGet, "/api/admin/report-jobs/stats", nil)
		defer resp2.Body.Close()
		assert.Equal(t, http.StatusUnauthorized, resp2.StatusCode)
	})
}
