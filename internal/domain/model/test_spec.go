package model

import (
	"encoding/json"
	"fmt"
	"regexp"
	"sort"
	"strings"
	"time"
)

// Supported locale tags for test content.
const (
	LocaleEN   = "en"
	LocaleES   = "es"
	LocalePTBR = "pt-BR"
)

// QuestionTypeSingleChoice is the only supported question type.
const QuestionTypeSingleChoice = "single_choice"

var (
	testIDPattern = regexp.MustCompile(`^test-[a-z0-9]+(?:-[a-z0-9]+)*$`)
	slugPattern   = regexp.MustCompile(`^[a-z0-9]+(?:-[a-z0-9]+)*$`)

	canonicalLocales = map[string]string{
		"en":    LocaleEN,
		"es":    LocaleES,
		"pt-br": LocalePTBR,
	}
)

// NormalizeLocaleTag returns the canonical tag for value, matching case-insensitively.
func NormalizeLocaleTag(value string) (string, bool) {
	tag, ok := canonicalLocales[strings.ToLower(strings.TrimSpace(value))]
	return tag, ok
}

// LocaleStrings holds the per-locale presentation strings of a test.
type LocaleStrings struct {
	Title            string `json:"title"`
	ShortDescription string `json:"short_description"`
	Intro            string `json:"intro"`
	PaywallHeadline  string `json:"paywall_headline"`
	ReportTitle      string `json:"report_title"`
}

// QuestionOption is one selectable answer.
type QuestionOption struct {
	ID    string            `json:"id"`
	Label map[string]string `json:"label"`
}

// TestQuestion is one single-choice question.
type TestQuestion struct {
	ID      string            `json:"id"`
	Type    string            `json:"type"`
	Prompt  map[string]string `json:"prompt"`
	Options []QuestionOption  `json:"options"`
}

// TestScoring lists the scales and the integer weight each option contributes to them.
type TestScoring struct {
	Scales        []string                  `json:"scales"`
	OptionWeights map[string]map[string]int `json:"option_weights"`
}

// ResultBandCopy is the localized copy of a result band.
type ResultBandCopy struct {
	Headline string   `json:"headline"`
	Summary  string   `json:"summary"`
	Bullets  []string `json:"bullets"`
}

// ResultBand maps a total score range to copy.
type ResultBand struct {
	BandID            string                    `json:"band_id"`
	MinScoreInclusive int                       `json:"min_score_inclusive"`
	MaxScoreInclusive int                       `json:"max_score_inclusive"`
	Copy              map[string]ResultBandCopy `json:"copy"`
}

// TestSpec is the versioned definition of a quiz.
type TestSpec struct {
	TestID      string                   `json:"test_id"`
	Slug        string                   `json:"slug"`
	Version     int                      `json:"version"`
	Category    string                   `json:"category"`
	Locales     map[string]LocaleStrings `json:"locales"`
	Questions   []TestQuestion           `json:"questions"`
	Scoring     TestScoring              `json:"scoring"`
	ResultBands []ResultBand             `json:"result_bands"`
}

// TestSpecError describes why a stored spec was rejected.
type TestSpecError struct {
	TestID  string
	Path    string
	Message string
}

func (e *TestSpecError) Error() string {
	return fmt.Sprintf("invalid test spec %s: %s at %s", e.TestID, e.Message, e.Path)
}

// ParseTestSpec decodes and validates a stored spec document.
func ParseTestSpec(raw []byte) (*TestSpec, error) {
	var spec TestSpec
	if err := json.Unmarshal(raw, &spec); err != nil {
		return nil, fmt.Errorf("decode test spec: %w", err)
	}
	if err := spec.Validate(); err != nil {
		return nil, err
	}
	return &spec, nil
}

// LocaleTags returns the spec's locale keys in sorted order.
func (s *TestSpec) LocaleTags() []string {
	tags := make([]string, 0, len(s.Locales))
	for k := range s.Locales {
		tags = append(tags, k)
	}
	sort.Strings(tags)
	return tags
}

// HasLocale reports whether the spec carries strings for the given canonical tag.
func (s *TestSpec) HasLocale(tag string) bool {
	_, ok := s.Locales[tag]
	return ok
}

// Validate enforces structural rules on a spec.
func (s *TestSpec) Validate() error {
	id := strings.TrimSpace(s.TestID)
	fail := func(path, msg string) error { return &TestSpecError{TestID: id, Path: path, Message: msg} }

	if id == "" {
		return fail("test_id", "missing required field")
	}
	if !testIDPattern.MatchString(id) {
		return fail("test_id", "must match test-<slug>")
	}
	if !slugPattern.MatchString(s.Slug) {
		return fail("slug", "must be url-safe")
	}
	if id != "test-"+s.Slug {
		return fail("test_id", "must align with slug")
	}
	if s.Version < 1 {
		return fail("version", "must be >= 1")
	}
	if strings.TrimSpace(s.Category) == "" {
		return fail("category", "must not be empty")
	}

	if len(s.Locales) == 0 {
		return fail("locales", "must include at least one locale")
	}
	locales := s.LocaleTags()
	for _, key := range locales {
		canonical, ok := NormalizeLocaleTag(key)
		if !ok {
			return fail("locales."+key, "unsupported locale tag")
		}
		if canonical != key {
			return fail("locales."+key, "locale tag must be "+canonical)
		}
		if err := s.Locales[key].validate(func(field string) error {
			return fail("locales."+key+"."+field, "must not be empty")
		}); err != nil {
			return err
		}
	}

	for i, q := range s.Questions {
		path := fmt.Sprintf("questions[%d]", i)
		if strings.TrimSpace(q.ID) == "" {
			return fail(path+".id", "must not be empty")
		}
		if q.Type != QuestionTypeSingleChoice {
			return fail(path+".type", "only single_choice is supported")
		}
		if missing := missingLocale(q.Prompt, locales); missing != "" {
			return fail(path+".prompt."+missing, "must not be empty")
		}
		for j, opt := range q.Options {
			optPath := fmt.Sprintf("%s.options[%d]", path, j)
			if strings.TrimSpace(opt.ID) == "" {
				return fail(optPath+".id", "must not be empty")
			}
			if missing := missingLocale(opt.Label, locales); missing != "" {
				return fail(optPath+".label."+missing, "must not be empty")
			}
		}
	}

	for i, scale := range s.Scoring.Scales {
		if strings.TrimSpace(scale) == "" {
			return fail(fmt.Sprintf("scoring.scales[%d]", i), "must not be empty")
		}
	}
	if s.Scoring.OptionWeights == nil {
		return fail("scoring.option_weights", "expected object")
	}

	for i, band := range s.ResultBands {
		path := fmt.Sprintf("result_bands[%d]", i)
		if strings.TrimSpace(band.BandID) == "" {
			return fail(path+".band_id", "must not be empty")
		}
		for _, loc := range locales {
			c, ok := band.Copy[loc]
			if !ok || strings.TrimSpace(c.Headline) == "" || strings.TrimSpace(c.Summary) == "" {
				return fail(path+".copy."+loc, "missing localized copy")
			}
		}
	}
	return nil
}

func (l LocaleStrings) validate(fail func(field string) error) error {
	fields := []struct {
		name  string
		value string
	}{
		{"title", l.Title},
		{"short_description", l.ShortDescription},
		{"intro", l.Intro},
		{"paywall_headline", l.PaywallHeadline},
		{"report_title", l.ReportTitle},
	}
	for _, f := range fields {
		if strings.TrimSpace(f.value) == "" {
			return fail(f.name)
		}
	}
	return nil
}

func missingLocale(values map[string]string, locales []string) string {
	for _, loc := range locales {
		if strings.TrimSpace(values[loc]) == "" {
			return loc
		}
	}
	return ""
}

// TenantCatalogEntry is one enabled, published test in a tenant's catalog.
type TenantCatalogEntry struct {
	TenantID           string     `json:"tenant_id"`
	TestID             string     `json:"test_id"`
	Slug               string     `json:"slug"`
	DefaultLocale      string     `json:"default_locale"`
	IsEnabled          bool       `json:"is_enabled"`
	PublishedVersionID *string    `json:"published_version_id,omitempty"`
	PublishedVersion   *int       `json:"published_version,omitempty"`
	PublishedAt        *time.Time `json:"published_at,omitempty"`
}

// PublishedTest is a tenant's published spec resolved to a concrete locale.
type PublishedTest struct {
	TenantID      string    `json:"tenant_id"`
	TestID        string    `json:"test_id"`
	Slug          string    `json:"slug"`
	DefaultLocale string    `json:"default_locale"`
	Locale        string    `json:"locale"`
	Spec          *TestSpec `json:"spec"`
}
