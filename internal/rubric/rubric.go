// Package rubric holds the versioned scoring rubric as declarative data.
// Threshold revisions are new rubric documents, not code changes.
package rubric

import (
	"fmt"

	"github.com/autoesg/analyzer/constants"
	"github.com/autoesg/analyzer/internal/common"
)

// ValueKind distinguishes graded indicators from yes/no disclosures.
type ValueKind string

const (
	KindScore   ValueKind = "score"   // integer 0..max_points
	KindBoolean ValueKind = "boolean" // reported/not reported, 1 point
)

// RuleType tags a threshold rule variant.
type RuleType string

const (
	RuleRange       RuleType = "range"        // value falls in a numeric band
	RuleGreaterThan RuleType = "greater_than" // value exceeds a threshold
	RulePresence    RuleType = "presence"     // disclosure exists at all
)

// Rule is one scoring condition. Text is quoted verbatim into the
// extraction instruction, so it must stand alone ("2: revenue increased
// >5% year-over-year").
type Rule struct {
	Points int      `yaml:"points"`
	Type   RuleType `yaml:"type"`
	Text   string   `yaml:"text"`
}

// IndicatorDef defines a single rubric line item.
type IndicatorDef struct {
	Key       string    `yaml:"key"`
	Label     string    `yaml:"label"`
	Kind      ValueKind `yaml:"kind"`
	MaxPoints int       `yaml:"max_points"`
	Guidance  string    `yaml:"guidance,omitempty"`
	Rules     []Rule    `yaml:"rules"`
}

// Category groups indicators under a declared point ceiling.
type Category struct {
	Name       string         `yaml:"name"`
	Ceiling    int            `yaml:"ceiling"`
	Indicators []IndicatorDef `yaml:"indicators"`
}

// TrackRubric is the full rubric for one track. Ceiling is declared, not
// inferred; Validate checks it against the category sums.
type TrackRubric struct {
	Track      constants.Track `yaml:"-"`
	Ceiling    int             `yaml:"ceiling"`
	Categories []Category      `yaml:"categories"`
}

// Rubric is one rubric revision covering both tracks.
type Rubric struct {
	Version        string      `yaml:"version"`
	Financial      TrackRubric `yaml:"financial"`
	Sustainability TrackRubric `yaml:"sustainability"`
}

// Track returns the per-track rubric.
func (r *Rubric) Track(t constants.Track) (*TrackRubric, error) {
	switch t {
	case constants.TrackFinancial:
		return &r.Financial, nil
	case constants.TrackSustainability:
		return &r.Sustainability, nil
	default:
		return nil, fmt.Errorf("unknown track %q: %w", t, common.ErrInvalidInput)
	}
}

// Indicators returns the track's indicator definitions in rubric order.
func (tr *TrackRubric) Indicators() []IndicatorDef {
	var out []IndicatorDef
	for _, c := range tr.Categories {
		out = append(out, c.Indicators...)
	}
	return out
}

// Find returns the definition for key, if present.
func (tr *TrackRubric) Find(key string) (IndicatorDef, bool) {
	for _, c := range tr.Categories {
		for _, ind := range c.Indicators {
			if ind.Key == key {
				return ind, true
			}
		}
	}
	return IndicatorDef{}, false
}

// Validate checks the static rubric invariants. Any violation is a
// ConfigurationError: the process must not start with a malformed rubric.
func (r *Rubric) Validate() error {
	if r.Version == "" {
		return common.NewAppError("RUBRIC_INVALID", "missing version", common.ErrConfiguration)
	}
	for _, tr := range []*TrackRubric{&r.Financial, &r.Sustainability} {
		if err := tr.validate(); err != nil {
			return err
		}
	}
	return nil
}

func (tr *TrackRubric) validate() error {
	fail := func(format string, args ...any) error {
		return common.NewAppError("RUBRIC_INVALID",
			fmt.Sprintf("%s: ", tr.Track)+fmt.Sprintf(format, args...),
			common.ErrConfiguration)
	}

	if len(tr.Categories) == 0 {
		return fail("no categories")
	}
	seen := make(map[string]struct{})
	catSum := 0
	for _, c := range tr.Categories {
		if c.Name == "" {
			return fail("category with empty name")
		}
		indSum := 0
		for _, ind := range c.Indicators {
			if ind.Key == "" || ind.Label == "" {
				return fail("category %q: indicator with empty key or label", c.Name)
			}
			if _, dup := seen[ind.Key]; dup {
				return fail("duplicate indicator key %q", ind.Key)
			}
			seen[ind.Key] = struct{}{}
			switch ind.Kind {
			case KindScore:
				if ind.MaxPoints < 1 {
					return fail("indicator %q: max_points must be >= 1", ind.Key)
				}
			case KindBoolean:
				if ind.MaxPoints != 1 {
					return fail("indicator %q: boolean indicators carry exactly 1 point", ind.Key)
				}
			default:
				return fail("indicator %q: unknown kind %q", ind.Key, ind.Kind)
			}
			if len(ind.Rules) == 0 {
				return fail("indicator %q: no scoring rules", ind.Key)
			}
			topPoints := 0
			for _, rule := range ind.Rules {
				switch rule.Type {
				case RuleRange, RuleGreaterThan, RulePresence:
				default:
					return fail("indicator %q: unknown rule type %q", ind.Key, rule.Type)
				}
				if rule.Text == "" {
					return fail("indicator %q: rule with empty text", ind.Key)
				}
				if rule.Points < 0 || rule.Points > ind.MaxPoints {
					return fail("indicator %q: rule awards %d points outside [0, %d]",
						ind.Key, rule.Points, ind.MaxPoints)
				}
				if rule.Points > topPoints {
					topPoints = rule.Points
				}
			}
			if topPoints != ind.MaxPoints {
				return fail("indicator %q: no rule awards the full %d points", ind.Key, ind.MaxPoints)
			}
			indSum += ind.MaxPoints
		}
		if indSum != c.Ceiling {
			return fail("category %q: indicator points sum to %d, ceiling declares %d",
				c.Name, indSum, c.Ceiling)
		}
		catSum += c.Ceiling
	}
	if catSum != tr.Ceiling {
		return fail("category ceilings sum to %d, track declares %d", catSum, tr.Ceiling)
	}
	return nil
}
