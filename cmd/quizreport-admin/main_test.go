package main

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/target/quizreport/internal/domain/model"
)

func TestPrintJobsIncludesLastError(t *testing.T) {
	lastErr := "OpenAI request failed: 429 rate limited"
	jobs := []*model.ReportJob{
		{
			PurchaseID: "P1",
			TenantID:   "tenant-a",
			TestID:     "test-focus",
			Status:     model.ReportJobStatusFailed,
			Attempts:   3,
			LastError:  &lastErr,
			UpdatedAt:  time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
		},
		{PurchaseID: "P2", TenantID: "tenant-a", TestID: "test-focus", Status: model.ReportJobStatusQueued},
	}

	var out bytes.Buffer
	require.NoError(t, printJobs(&out, jobs))

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Len(t, lines, 3)
	assert.Contains(t, lines[0], "LAST ERROR")
	assert.Contains(t, lines[1], "2026-01-02T03:04:05Z")
	assert.Contains(t, lines[1], lastErr)
	assert.True(t, strings.HasSuffix(lines[2], "-"))
}

func TestPrintJobStats(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, printJobStats(&out, map[model.ReportJobStatus]int{
		model.ReportJobStatusQueued: 4,
		model.ReportJobStatusFailed: 2,
	}))
	assert.Regexp(t, `queued\s+4`, out.String())
	assert.Regexp(t, `running\s+0`, out.String())
	assert.Regexp(t, `total\s+6`, out.String())
}

func TestParseListJobsFlags(t *testing.T) {
	opts, err := parseListJobsFlags([]string{"--status", "FAILED", "--limit", "10"})
	require.NoError(t, err)
	assert.Equal(t, model.ReportJobStatusFailed, opts.Status)
	assert.Equal(t, 10, opts.Limit)

	_, err = parseListJobsFlags([]string{"--status", "paused"})
	require.ErrorIs(t, err, model.ErrInvalidReportJobStatus)

	_, err = parseListJobsFlags([]string{"--limit", "501"})
	require.Error(t, err)
}

func TestParseEnqueueFlags(t *testing.T) {
	req, err := parseEnqueueFlags([]string{
		"--purchase-id", " P1 ", "--tenant-id", "tenant-a", "--test-id", "test-focus", "--session-id", "s1",
	})
	require.NoError(t, err)
	assert.Equal(t, "P1", req.PurchaseID)
	assert.Equal(t, "en", req.Locale)

	_, err = parseEnqueueFlags([]string{"--purchase-id", "P1"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "tenant_id")
}

func TestParseRunOnceFlags(t *testing.T) {
	opts, err := parseRunOnceFlags([]string{"--limit", "12abc"})
	require.NoError(t, err)
	assert.Equal(t, 12, opts.Limit)

	opts, err = parseRunOnceFlags(nil)
	require.NoError(t, err)
	assert.Equal(t, 5, opts.Limit)
}

func TestConfirm(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, confirm(strings.NewReader("yes\n"), &out, "Requeue?"))
	assert.Equal(t, "Requeue? [y/N]: ", out.String())

	require.ErrorIs(t, confirm(strings.NewReader("\n"), &out, "Requeue?"), errAborted)
	require.ErrorIs(t, confirm(strings.NewReader(""), &out, "Requeue?"), errAborted)
}

func TestPrintUsageListsCommandsSorted(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, printUsage(&out))
	usage := out.String()
	assert.Less(t, strings.Index(usage, "enqueue"), strings.Index(usage, "requeue-failed"))
	for name := range commands() {
		assert.Contains(t, usage, name)
	}
}
