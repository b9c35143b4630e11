// Package testutil provides database, Redis, and fixture helpers for tests of the report pipeline.
package testutil

import (
	"fmt"
	"time"

	"github.com/target/quizreport/internal/domain/model"
)

// TestSpecBuilder provides a fluent interface for building valid TestSpec fixtures.
type TestSpecBuilder struct {
	spec *model.TestSpec
}

// NewTestSpec creates a builder for a one-locale spec with two scales and two questions.
// Scale bounds are logic 0..3 and feel 0..4.
func NewTestSpec(slug string) *TestSpecBuilder {
	b := &TestSpecBuilder{spec: &model.TestSpec{
		TestID:   "test-" + slug,
		Slug:     slug,
		Version:  1,
		Category: "personality",
		Locales:  map[string]model.LocaleStrings{},
		Scoring: model.TestScoring{
			Scales: []string{"logic", "feel"},
			OptionWeights: map[string]map[string]int{
				"q1a": {"logic": 2},
				"q1b": {"feel": 3},
				"q2a": {"logic": 1},
				"q2b": {"feel": 1},
			},
		},
	}}
	return b.WithLocales(model.LocaleEN)
}

// WithLocales replaces the spec's locales and localizes every string for them.
func (b *TestSpecBuilder) WithLocales(locales ...string) *TestSpecBuilder {
	localized := func(text string) map[string]string {
		m := make(map[string]string, len(locales))
		for _, l := range locales {
			m[l] = fmt.Sprintf("%s (%s)", text, l)
		}
		return m
	}

	b.spec.Locales = make(map[string]model.LocaleStrings, len(locales))
	for _, l := range locales {
		b.spec.Locales[l] = model.LocaleStrings{
			Title:            "Title " + l,
			ShortDescription: "Description " + l,
			Intro:            "Intro " + l,
			PaywallHeadline:  "Unlock " + l,
			ReportTitle:      "Report " + l,
		}
	}
	b.spec.Questions = []model.TestQuestion{
		{ID: "q1", Type: model.QuestionTypeSingleChoice, Prompt: localized("Question one"), Options: []model.QuestionOption{
			{ID: "q1a", Label: localized("A")}, {ID: "q1b", Label: localized("B")},
		}},
		{ID: "q2", Type: model.QuestionTypeSingleChoice, Prompt: localized("Question two"), Options: []model.QuestionOption{
			{ID: "q2a", Label: localized("A")}, {ID: "q2b", Label: localized("B")},
		}},
	}
	bandCopy := make(map[string]model.ResultBandCopy, len(locales))
	for _, l := range locales {
		bandCopy[l] = model.ResultBandCopy{Headline: "Headline " + l, Summary: "Summary " + l, Bullets: []string{"bullet"}}
	}
	b.spec.ResultBands = []model.ResultBand{
		{BandID: "band-mid", MinScoreInclusive: 0, MaxScoreInclusive: 7, Copy: bandCopy},
	}
	return b
}

// WithVersion sets the spec version.
func (b *TestSpecBuilder) WithVersion(v int) *TestSpecBuilder {
	b.spec.Version = v
	return b
}

// Build returns the built spec.
func (b *TestSpecBuilder) Build() *model.TestSpec {
	return b.spec
}

// EnqueueRequestBuilder provides a fluent interface for building EnqueueReportJobRequest objects.
type EnqueueRequestBuilder struct {
	req *model.EnqueueReportJobRequest
}

// NewEnqueueRequest creates a builder for a purchase of test-focus by tenant-a.
func NewEnqueueRequest(purchaseID string) *EnqueueRequestBuilder {
	return &EnqueueRequestBuilder{req: &model.EnqueueReportJobRequest{
		PurchaseID: purchaseID,
		TenantID:   "tenant-a",
		TestID:     "test-focus",
		SessionID:  "session-" + purchaseID,
		Locale:     model.LocaleEN,
	}}
}

// WithTenant sets the tenant id.
func (b *EnqueueRequestBuilder) WithTenant(tenantID string) *EnqueueRequestBuilder {
	b.req.TenantID = tenantID
	return b
}

// WithTest sets the test id.
func (b *EnqueueRequestBuilder) WithTest(testID string) *EnqueueRequestBuilder {
	b.req.TestID = testID
	return b
}

// WithSession sets the session id.
func (b *EnqueueRequestBuilder) WithSession(sessionID string) *EnqueueRequestBuilder {
	b.req.SessionID = sessionID
	return b
}

// WithLocale sets the requested locale.
func (b *EnqueueRequestBuilder) WithLocale(locale string) *EnqueueRequestBuilder {
	b.req.Locale = locale
	return b
}

// Build returns the built request.
func (b *EnqueueRequestBuilder) Build() *model.EnqueueReportJobRequest {
	return b.req
}

// NewAttemptSummary returns a summary matching the job built by NewEnqueueRequest(purchaseID).
func NewAttemptSummary(purchaseID string) *model.AttemptSummary {
	return &model.AttemptSummary{
		TenantID:    "tenant-a",
		TestID:      "test-focus",
		SessionID:   "session-" + purchaseID,
		DistinctID:  "distinct-" + purchaseID,
		Locale:      model.LocaleEN,
		ComputedAt:  time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
		BandID:      "band-mid",
		ScaleScores: model.ScaleScores{"logic": 2, "feel": 1},
		TotalScore:  3,
	}
}

// ReportDocumentJSON is a minimal document that satisfies the structured report schema.
const ReportDocumentJSON = `{
  "report_title": "Your report",
  "summary": {"headline": "Thinker", "bullets": ["Logic leads"]},
  "sections": [{"id": "strengths", "title": "Strengths", "body": "You reason well.", "bullets": []}],
  "action_plan": [{"title": "Next week", "steps": ["Reflect"]}],
  "disclaimers": ["Not a diagnosis."]
}`

// NewReportArtifact returns a storable artifact for the purchase.
func NewReportArtifact(purchaseID string) *model.ReportArtifact {
	return &model.ReportArtifact{
		PurchaseID:     purchaseID,
		TenantID:       "tenant-a",
		TestID:         "test-focus",
		SessionID:      "session-" + purchaseID,
		Locale:         model.LocaleEN,
		StyleID:        "analytical",
		Model:          "gpt-4o",
		PromptVersion:  model.PromptVersion,
		ScoringVersion: model.ScoringVersion,
		ReportJSON:     []byte(ReportDocumentJSON),
	}
}
