package report

import "strings"

// Style identifiers.
const (
	StyleAnalytical = "analytical"
	StyleIntuitive  = "intuitive"
	StyleBalanced   = "balanced"
	// DefaultStyleID is the fallback when no scale dominates.
	DefaultStyleID = StyleBalanced
)

const balancedSpreadThreshold = 5

var (
	analyticalKeywords = []string{"analyt", "logic", "system", "detail"}
	intuitiveKeywords  = []string{"intuit", "feel", "creative", "gut"}
)

// InferStyle picks a presentation style from the brief's leading scales.
func InferStyle(b *Brief) string {
	if len(b.TopScales) == 0 {
		return DefaultStyleID
	}
	top := b.TopScales[0]
	if len(b.TopScales) > 1 {
		spread := top.Normalized - b.TopScales[1].Normalized
		if spread < 0 {
			spread = -spread
		}
		if spread <= balancedSpreadThreshold {
			return DefaultStyleID
		}
	}

	id := strings.ToLower(top.ScaleID)
	switch {
	case containsAny(id, analyticalKeywords):
		return StyleAnalytical
	case containsAny(id, intuitiveKeywords):
		return StyleIntuitive
	default:
		return DefaultStyleID
	}
}

func containsAny(s string, keywords []string) bool {
	for _, k := range keywords {
		if strings.Contains(s, k) {
			return true
		}
	}
	return false
}

// StyleCard is the writing guidance attached to a style.
type StyleCard struct {
	ID                string   `json:"id"`
	Label             string   `json:"label"`
	ToneGuidance      string   `json:"tone_guidance"`
	StructureGuidance string   `json:"structure_guidance"`
	DoList            []string `json:"do_list"`
	DontList          []string `json:"dont_list"`
}

var styleCards = map[string]StyleCard{
	StyleAnalytical: {
		ID:                StyleAnalytical,
		Label:             "Analytical",
		ToneGuidance:      "Use a precise and objective tone focused on evidence and trade-offs.",
		StructureGuidance: "Prefer tight structure with short sections, bullet points, and explicit risk notes.",
		DoList: []string{
			"Use checklists where useful.",
			"Name concrete trade-offs and constraints.",
			"Call out assumptions and risks explicitly.",
			"Prioritize actionable recommendations.",
		},
		DontList: []string{
			"Do not use vague motivational language.",
			"Do not hide uncertainty or known limitations.",
			"Do not use long narrative detours.",
		},
	},
	StyleIntuitive: {
		ID:                StyleIntuitive,
		Label:             "Intuitive",
		ToneGuidance:      "Use a warm and encouraging tone with clear emotional framing.",
		StructureGuidance: "Use short narrative flow with examples, metaphors, and gentle reflective prompts.",
		DoList: []string{
			"Include relatable examples.",
			"Use simple metaphors to explain patterns.",
			"Name emotional states in a supportive way.",
			"Offer gentle next-step prompts.",
		},
		DontList: []string{
			"Do not sound clinical or detached.",
			"Do not overload with technical jargon.",
			"Do not use harsh or judgmental language.",
		},
	},
	StyleBalanced: {
		ID:                StyleBalanced,
		Label:             "Balanced",
		ToneGuidance:      "Use a neutral and practical tone with concise, actionable wording.",
		StructureGuidance: "Use short paragraphs supported by focused bullet points.",
		DoList: []string{
			"Keep explanations specific and grounded.",
			"Balance clarity with brevity.",
			"Provide practical actions with context.",
		},
		DontList: []string{
			"Do not overstate certainty.",
			"Do not be overly technical or overly poetic.",
			"Do not produce long, dense paragraphs.",
		},
	},
}

// StyleCardFor returns the card for id, falling back to the balanced card.
func StyleCardFor(id string) StyleCard {
	if c, ok := styleCards[strings.TrimSpace(id)]; ok {
		return c
	}
	return styleCards[DefaultStyleID]
}
