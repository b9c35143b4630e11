package report

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"github.com/target/quizreport/internal/domain/model"
)

const topScaleCount = 3

// ErrTestMismatch is returned when a summary belongs to a different test than the spec.
//
//nolint:stylecheck // stored verbatim as last_error
var ErrTestMismatch = errors.New("Attempt summary test_id does not match spec test_id.")

// BriefScale is one scale's raw and normalised score.
type BriefScale struct {
	ScaleID    string  `json:"scale_id"`
	RawScore   float64 `json:"raw_score"`
	Normalized int     `json:"normalized_score_0_100"`
}

// Brief is the compact, model-facing description of one attempt.
type Brief struct {
	TenantID      string       `json:"tenant_id"`
	TestID        string       `json:"test_id"`
	Slug          string       `json:"slug"`
	Locale        string       `json:"locale"`
	ComputedAtUTC string       `json:"computed_at_utc"`
	BandID        string       `json:"band_id"`
	TotalScore    int          `json:"total_score"`
	Scales        []BriefScale `json:"scales"`
	TopScales     []BriefScale `json:"top_scales"`
}

// BuildBrief combines a spec and an attempt summary. It is deterministic.
func BuildBrief(spec *model.TestSpec, summary *model.AttemptSummary) (*Brief, error) {
	if summary.TestID != spec.TestID {
		return nil, ErrTestMismatch
	}
	if summary.ComputedAt.IsZero() {
		return nil, errors.New("Invalid attempt summary timestamp.") //nolint:stylecheck // stored verbatim as last_error
	}

	ids := append([]string(nil), spec.Scoring.Scales...)
	sort.Strings(ids)

	scales := make([]BriefScale, 0, len(ids))
	for _, id := range ids {
		raw, ok := summary.ScaleScores[id]
		if !ok || math.IsNaN(raw) || math.IsInf(raw, 0) {
			return nil, fmt.Errorf("Missing or invalid scale score for %s.", id) //nolint:stylecheck // stored verbatim as last_error
		}
		n, err := NormalizeScaleScore(spec, id, raw)
		if err != nil {
			return nil, err
		}
		scales = append(scales, BriefScale{ScaleID: id, RawScore: raw, Normalized: n})
	}

	top := append([]BriefScale(nil), scales...)
	sort.SliceStable(top, func(i, j int) bool {
		if top[i].Normalized != top[j].Normalized {
			return top[i].Normalized > top[j].Normalized
		}
		return top[i].ScaleID < top[j].ScaleID
	})
	if len(top) > topScaleCount {
		top = top[:topScaleCount]
	}

	return &Brief{
		TenantID:      summary.TenantID,
		TestID:        spec.TestID,
		Slug:          spec.Slug,
		Locale:        summary.Locale,
		ComputedAtUTC: summary.ComputedAt.UTC().Format("2006-01-02T15:04:05.000Z"),
		BandID:        summary.BandID,
		TotalScore:    summary.TotalScore,
		Scales:        scales,
		TopScales:     top,
	}, nil
}
