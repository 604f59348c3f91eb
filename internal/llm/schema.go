package llm

import "github.com/autoesg/analyzer/internal/rubric"

// BuildIndicatorJSONSchema returns a JSON-Schema (draft 2020-12 subset) as a generic map
// for one track's extraction output. For every indicator the model must emit
// "<key>" (integer sub-score, boolean, or null) and "<key>_evidence" (string).
// We pass this to the provider as a structured output hint and also use it
// locally to validate the response.
func BuildIndicatorJSONSchema(tr *rubric.TrackRubric) map[string]any {
	props := map[string]any{}
	var required []string

	for _, ind := range tr.Indicators() {
		switch ind.Kind {
		case rubric.KindBoolean:
			props[ind.Key] = map[string]any{"type": []string{"boolean", "null"}}
		default:
			props[ind.Key] = map[string]any{
				"type":    []string{"integer", "null"},
				"minimum": 0,
				"maximum": ind.MaxPoints,
			}
		}
		props[ind.Key+"_evidence"] = map[string]any{"type": "string"}
		required = append(required, ind.Key, ind.Key+"_evidence")
	}

	return map[string]any{
		"type":                 "object",
		"additionalProperties": false,
		"properties":           props,
		"required":             required,
	}
}
