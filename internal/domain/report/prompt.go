package report

import (
	"encoding/json"
	"fmt"
	"strings"
)

const neutralStyleID = "neutral"

// Prompt is the system and user message pair sent to the model.
type Prompt struct {
	System string
	User   string
}

// BuildPrompt renders the prompt for a brief and style. A blank style id becomes "neutral".
func BuildPrompt(b *Brief, styleID string) (Prompt, error) {
	style := strings.TrimSpace(styleID)
	if style == "" {
		style = neutralStyleID
	}

	briefJSON, err := json.MarshalIndent(b, "", "  ")
	if err != nil {
		return Prompt{}, fmt.Errorf("marshal brief: %w", err)
	}

	system := strings.Join([]string{
		"You generate quiz result reports from structured input.",
		"Use the provided brief only.",
		"Do not invent user identity, history, or personal data.",
		"Do not use medical diagnosis, treatment, or clinical language.",
		fmt.Sprintf("Respond in the same language as brief.locale (%s).", b.Locale),
		"Output must be valid JSON matching schema " + SchemaName + ".",
		"Keep writing concise, specific, and actionable.",
		fmt.Sprintf("Apply style_id %s.", style),
		"Return JSON only.",
	}, "\n")

	user := strings.Join([]string{
		"Generate a report JSON object for this brief.",
		"schema_name: " + SchemaName,
		"test_id: " + b.TestID,
		"locale: " + b.Locale,
		"style_id: " + style,
		"brief_json:",
		string(briefJSON),
	}, "\n")

	return Prompt{System: system, User: user}, nil
}
