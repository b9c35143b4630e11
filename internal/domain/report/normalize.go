package report

import (
	"fmt"
	"math"

	"github.com/target/quizreport/internal/domain/model"
)

const (
	defaultNormalizedScore = 50
	normalizedMin          = 0
	normalizedMax          = 100
)

// ScaleBounds are the lowest and highest raw scores a scale can reach.
type ScaleBounds struct {
	MinPossible int
	MaxPossible int
}

// ScaleNormalizationBounds sums, over every question, the smallest and largest
// weight any of its options gives scaleID. A scale missing from an option's
// weights contributes zero.
func ScaleNormalizationBounds(spec *model.TestSpec, scaleID string) (ScaleBounds, error) {
	var b ScaleBounds
	for _, q := range spec.Questions {
		if len(q.Options) == 0 {
			return ScaleBounds{}, fmt.Errorf("Question %s has no options.", q.ID) //nolint:stylecheck // stored verbatim as last_error
		}
		qMin, qMax := math.MaxInt, math.MinInt
		for _, opt := range q.Options {
			weights, ok := spec.Scoring.OptionWeights[opt.ID]
			if !ok {
				return ScaleBounds{}, fmt.Errorf("Missing weights for option %s.", opt.ID) //nolint:stylecheck // stored verbatim as last_error
			}
			w := weights[scaleID]
			qMin = min(qMin, w)
			qMax = max(qMax, w)
		}
		b.MinPossible += qMin
		b.MaxPossible += qMax
	}
	return b, nil
}

// NormalizeScaleScore maps raw onto 0..100 using the scale's bounds.
// A scale whose bounds coincide normalises to 50.
func NormalizeScaleScore(spec *model.TestSpec, scaleID string, raw float64) (int, error) {
	if math.IsNaN(raw) || math.IsInf(raw, 0) {
		return 0, fmt.Errorf("Invalid raw score for scale %s.", scaleID) //nolint:stylecheck // stored verbatim as last_error
	}
	b, err := ScaleNormalizationBounds(spec, scaleID)
	if err != nil {
		return 0, err
	}
	if b.MaxPossible == b.MinPossible {
		return defaultNormalizedScore, nil
	}
	span := float64(b.MaxPossible - b.MinPossible)
	n := roundHalfUp((raw - float64(b.MinPossible)) / span * normalizedMax)
	return min(normalizedMax, max(normalizedMin, n)), nil
}

// roundHalfUp rounds x.5 towards positive infinity.
func roundHalfUp(x float64) int {
	return int(math.Floor(x + 0.5))
}
