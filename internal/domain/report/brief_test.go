package report

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/target/quizreport/internal/domain/model"
)

func TestNormalizeScaleScore(t *testing.T) {
	spec := focusSpec()

	b, err := ScaleNormalizationBounds(spec, "logic")
	require.NoError(t, err)
	assert.Equal(t, ScaleBounds{MinPossible: 0, MaxPossible: 3}, b)

	tests := []struct {
		name  string
		scale string
		raw   float64
		want  int
	}{
		{"two thirds rounds up", "logic", 2, 67},
		{"quarter", "feel", 1, 25},
		{"midpoint", "feel", 2, 50},
		{"clamped high", "logic", 10, 100},
		{"clamped low", "logic", -4, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NormalizeScaleScore(spec, tt.scale, tt.raw)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNormalizeScaleScore_EqualBoundsIsFifty(t *testing.T) {
	spec := focusSpec()
	got, err := NormalizeScaleScore(spec, "unweighted", 7)
	require.NoError(t, err)
	assert.Equal(t, 50, got)
}

func TestScaleNormalizationBounds_Errors(t *testing.T) {
	spec := focusSpec()
	delete(spec.Scoring.OptionWeights, "q2b")
	_, err := ScaleNormalizationBounds(spec, "logic")
	require.EqualError(t, err, "Missing weights for option q2b.")

	spec = focusSpec()
	spec.Questions[1].Options = nil
	_, err = ScaleNormalizationBounds(spec, "logic")
	require.EqualError(t, err, "Question q2 has no options.")
}

func TestBuildBrief(t *testing.T) {
	brief, err := BuildBrief(focusSpec(), focusSummary(model.ScaleScores{"logic": 2, "feel": 1}))
	require.NoError(t, err)

	assert.Equal(t, "tenant-a", brief.TenantID)
	assert.Equal(t, "test-focus", brief.TestID)
	assert.Equal(t, "focus", brief.Slug)
	assert.Equal(t, "es", brief.Locale)
	assert.Equal(t, "2026-03-04T04:06:07.000Z", brief.ComputedAtUTC)
	assert.Equal(t, []BriefScale{
		{ScaleID: "feel", RawScore: 1, Normalized: 25},
		{ScaleID: "logic", RawScore: 2, Normalized: 67},
	}, brief.Scales)
	assert.Equal(t, "logic", brief.TopScales[0].ScaleID)
	assert.Len(t, brief.TopScales, 2)
}

func TestBuildBrief_TopScalesTieBreakAndCap(t *testing.T) {
	spec := focusSpec()
	spec.Scoring.Scales = []string{"d", "c", "b", "a"}
	brief, err := BuildBrief(spec, focusSummary(model.ScaleScores{"a": 0, "b": 0, "c": 0, "d": 0}))
	require.NoError(t, err)

	require.Len(t, brief.TopScales, 3)
	assert.Equal(t, "a", brief.TopScales[0].ScaleID)
	assert.Equal(t, "b", brief.TopScales[1].ScaleID)
	assert.Equal(t, "c", brief.TopScales[2].ScaleID)
}

func TestBuildBrief_Errors(t *testing.T) {
	summary := focusSummary(model.ScaleScores{"logic": 2, "feel": 1})
	summary.TestID = "test-other"
	_, err := BuildBrief(focusSpec(), summary)
	require.ErrorIs(t, err, ErrTestMismatch)

	_, err = BuildBrief(focusSpec(), focusSummary(model.ScaleScores{"logic": 2}))
	require.EqualError(t, err, "Missing or invalid scale score for feel.")
}

func TestBuildBrief_Deterministic(t *testing.T) {
	a, err := BuildBrief(focusSpec(), focusSummary(model.ScaleScores{"logic": 2, "feel": 1}))
	require.NoError(t, err)
	b, err := BuildBrief(focusSpec(), focusSummary(model.ScaleScores{"feel": 1, "logic": 2}))
	require.NoError(t, err)
	assert.Equal(t, a, b)
}
