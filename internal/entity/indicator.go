package entity

// Indicator is one scored rubric line item, created by the extractor and
// never mutated afterwards. A nil Value means "insufficient evidence",
// which is distinct from a disclosed score of zero.
type Indicator struct {
	Key       string   `json:"key"`
	Label     string   `json:"label"`
	Value     *int     `json:"value"`
	MaxPoints int      `json:"max_points"`
	Evidence  string   `json:"evidence"`
	Flags     []string `json:"flags,omitempty"`
}

// Normalization flags recorded by the extractor when it had to repair
// model output. Kept on the indicator so reviewers can see what happened.
const (
	FlagClamped   = "clamped"   // value was outside [0, max_points]
	FlagDefaulted = "defaulted" // key missing or unparsable; value set to null
)

// IsNull reports whether the indicator carries no evidence-backed value.
func (i Indicator) IsNull() bool { return i.Value == nil }

// Points returns the contribution to the category sum (0 when null).
func (i Indicator) Points() int {
	if i.Value == nil {
		return 0
	}
	return *i.Value
}

// Flagged reports whether flag was recorded on this indicator.
func (i Indicator) Flagged(flag string) bool {
	for _, f := range i.Flags {
		if f == flag {
			return true
		}
	}
	return false
}
