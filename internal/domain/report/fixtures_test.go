package report

import (
	"time"

	"github.com/target/quizreport/internal/domain/model"
)

// focusSpec has two questions; bounds are logic 0..3 and feel 0..4.
func focusSpec() *model.TestSpec {
	en := func(s string) map[string]string { return map[string]string{"en": s} }
	return &model.TestSpec{
		TestID:   "test-focus",
		Slug:     "focus",
		Version:  1,
		Category: "work",
		Locales: map[string]model.LocaleStrings{
			"en": {Title: "Focus", ShortDescription: "d", Intro: "i", PaywallHeadline: "p", ReportTitle: "r"},
		},
		Questions: []model.TestQuestion{
			{ID: "q1", Type: model.QuestionTypeSingleChoice, Prompt: en("Q1"), Options: []model.QuestionOption{
				{ID: "q1a", Label: en("A")}, {ID: "q1b", Label: en("B")},
			}},
			{ID: "q2", Type: model.QuestionTypeSingleChoice, Prompt: en("Q2"), Options: []model.QuestionOption{
				{ID: "q2a", Label: en("A")}, {ID: "q2b", Label: en("B")},
			}},
		},
		Scoring: model.TestScoring{
			Scales: []string{"logic", "feel"},
			OptionWeights: map[string]map[string]int{
				"q1a": {"logic": 2},
				"q1b": {"feel": 3},
				"q2a": {"logic": 1},
				"q2b": {"feel": 1},
			},
		},
	}
}

func focusSummary(scores model.ScaleScores) *model.AttemptSummary {
	return &model.AttemptSummary{
		TenantID:    "tenant-a",
		TestID:      "test-focus",
		SessionID:   "s-1",
		DistinctID:  "d-1",
		Locale:      "es",
		ComputedAt:  time.Date(2026, 3, 4, 5, 6, 7, 0, time.FixedZone("x", 3600)),
		BandID:      "band-mid",
		ScaleScores: scores,
		TotalScore:  3,
	}
}
