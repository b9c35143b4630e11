package report

import (
	"encoding/json"
	"errors"
)

// SchemaName names the structured output contract.
const SchemaName = "quiz_report_v1"

// ErrInvalidReportPayload is returned when model output does not match the schema exactly.
//
//nolint:stylecheck // stored verbatim as last_error
var ErrInvalidReportPayload = errors.New("Structured report payload is invalid.")

// Summary is the report headline block.
type Summary struct {
	Headline string   `json:"headline"`
	Bullets  []string `json:"bullets"`
}

// Section is one titled body of the report.
type Section struct {
	ID      string   `json:"id"`
	Title   string   `json:"title"`
	Body    string   `json:"body"`
	Bullets []string `json:"bullets"`
}

// ActionPlanItem is a titled list of steps.
type ActionPlanItem struct {
	Title string   `json:"title"`
	Steps []string `json:"steps"`
}

// Document is the structured report produced by the model.
type Document struct {
	ReportTitle string           `json:"report_title"`
	Summary     Summary          `json:"summary"`
	Sections    []Section        `json:"sections"`
	ActionPlan  []ActionPlanItem `json:"action_plan"`
	Disclaimers []string         `json:"disclaimers"`
}

var jsonSchema = json.RawMessage(`{
  "type": "object",
  "additionalProperties": false,
  "required": ["report_title", "summary", "sections", "action_plan", "disclaimers"],
  "properties": {
    "report_title": {"type": "string"},
    "summary": {
      "type": "object",
      "additionalProperties": false,
      "required": ["headline", "bullets"],
      "properties": {
        "headline": {"type": "string"},
        "bullets": {"type": "array", "items": {"type": "string"}}
      }
    },
    "sections": {
      "type": "array",
      "items": {
        "type": "object",
        "additionalProperties": false,
        "required": ["id", "title", "body", "bullets"],
        "properties": {
          "id": {"type": "string"},
          "title": {"type": "string"},
          "body": {"type": "string"},
          "bullets": {"type": "array", "items": {"type": "string"}}
        }
      }
    },
    "action_plan": {
      "type": "array",
      "items": {
        "type": "object",
        "additionalProperties": false,
        "required": ["title", "steps"],
        "properties": {
          "title": {"type": "string"},
          "steps": {"type": "array", "items": {"type": "string"}}
        }
      }
    },
    "disclaimers": {"type": "array", "items": {"type": "string"}}
  }
}`)

// JSONSchema returns a copy of the strict JSON schema for Document.
func JSONSchema() json.RawMessage {
	return append(json.RawMessage(nil), jsonSchema...)
}

// ParseDocument validates raw model output against the schema: every object
// must carry exactly the declared keys with the declared types.
func ParseDocument(raw []byte) (*Document, error) {
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil, ErrInvalidReportPayload
	}
	if !isDocument(v) {
		return nil, ErrInvalidReportPayload
	}
	var doc Document
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, ErrInvalidReportPayload
	}
	return &doc, nil
}

func isDocument(v any) bool {
	obj, ok := exactObject(v, "report_title", "summary", "sections", "action_plan", "disclaimers")
	if !ok || !isString(obj["report_title"]) || !isStringArray(obj["disclaimers"]) {
		return false
	}
	summary, ok := exactObject(obj["summary"], "headline", "bullets")
	if !ok || !isString(summary["headline"]) || !isStringArray(summary["bullets"]) {
		return false
	}
	if !everyItem(obj["sections"], func(item any) bool {
		s, ok := exactObject(item, "id", "title", "body", "bullets")
		return ok && isString(s["id"]) && isString(s["title"]) && isString(s["body"]) && isStringArray(s["bullets"])
	}) {
		return false
	}
	return everyItem(obj["action_plan"], func(item any) bool {
		a, ok := exactObject(item, "title", "steps")
		return ok && isString(a["title"]) && isStringArray(a["steps"])
	})
}

func exactObject(v any, keys ...string) (map[string]any, bool) {
	obj, ok := v.(map[string]any)
	if !ok || len(obj) != len(keys) {
		return nil, false
	}
	for _, k := range keys {
		if _, present := obj[k]; !present {
			return nil, false
		}
	}
	return obj, true
}

func isString(v any) bool {
	_, ok := v.(string)
	return ok
}

func isStringArray(v any) bool {
	return everyItem(v, isString)
}

func everyItem(v any, pred func(any) bool) bool {
	arr, ok := v.([]any)
	if !ok {
		return false
	}
	for _, item := range arr {
		if !pred(item) {
			return false
		}
	}
	return true
}
