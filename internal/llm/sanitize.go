package llm

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/autoesg/analyzer/internal/rubric"
)

// SanitizeReport records every repair applied to one payload so callers
// can surface them on the result instead of losing them in logs.
type SanitizeReport struct {
	DroppedKeys     []string // unknown keys removed
	NulledKeys      []string // textual nulls in value positions converted to real nulls
	CoercedEvidence []string // evidence entries replaced or stringified
}

func (r SanitizeReport) Empty() bool {
	return len(r.DroppedKeys) == 0 && len(r.NulledKeys) == 0 && len(r.CoercedEvidence) == 0
}

// SanitizeIndicatorJSON
// - Removes unknown keys (strict additionalProperties = false friendliness)
// - Converts "null"/"" strings in value positions to real nulls
// - Trims evidence strings and replaces null evidence with ""
// The heavier per-key repairs (clamping, defaulting) stay in the extractor,
// which records them on the indicator.
func SanitizeIndicatorJSON(raw []byte, tr *rubric.TrackRubric) ([]byte, SanitizeReport, error) {
	var rep SanitizeReport

	var m map[string]any
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, rep, fmt.Errorf("sanitize: decode: %w", err)
	}

	allowed := make(map[string]struct{})
	for _, ind := range tr.Indicators() {
		allowed[ind.Key] = struct{}{}
		allowed[ind.Key+"_evidence"] = struct{}{}
	}

	for k, v := range m {
		if _, ok := allowed[k]; !ok {
			delete(m, k)
			rep.DroppedKeys = append(rep.DroppedKeys, k)
			continue
		}
		if strings.HasSuffix(k, "_evidence") {
			switch t := v.(type) {
			case string:
				m[k] = strings.TrimSpace(t)
			case nil:
				m[k] = ""
				rep.CoercedEvidence = append(rep.CoercedEvidence, k)
			default:
				m[k] = fmt.Sprint(t)
				rep.CoercedEvidence = append(rep.CoercedEvidence, k)
			}
			continue
		}
		// value position: turn textual nulls into real nulls
		if s, ok := v.(string); ok {
			s = strings.TrimSpace(s)
			if s == "" || strings.EqualFold(s, "null") || strings.EqualFold(s, "n/a") {
				m[k] = nil
				rep.NulledKeys = append(rep.NulledKeys, k)
			}
		}
	}

	out, err := json.Marshal(m)
	if err != nil {
		return nil, rep, fmt.Errorf("sanitize: encode: %w", err)
	}
	return out, rep, nil
}
