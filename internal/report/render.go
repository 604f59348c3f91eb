// Package report renders score reports for humans: the fixed text layout,
// the investor narrative, and the disclosure-quality view.
package report

import (
	"fmt"
	"strings"

	"github.com/autoesg/analyzer/constants"
	"github.com/autoesg/analyzer/internal/entity"
)

// RenderText produces the canonical textual layout: per track one
// `<Label>: <raw> / <max>` line per category with indicator detail
// beneath, a `(normalized: Y / 10)` line, and a final
// `Overall score: M / 10` line. This layout is the de facto external
// format; callers persist and diff it, so changes here are breaking.
func RenderText(r *entity.ScoreReport) string {
	var b strings.Builder

	for _, tr := range r.Tracks() {
		fmt.Fprintf(&b, "%s score: %d / %d\n", trackTitle(tr.Track), tr.RawTotal, tr.Ceiling)
		byKey := indicatorsByKey(tr)
		for _, cat := range tr.Categories {
			fmt.Fprintf(&b, "%s: %d / %d\n", cat.Name, cat.Raw, cat.Ceiling)
			for _, ind := range tr.Indicators {
				if byKey[ind.Key] != cat.Name {
					continue
				}
				b.WriteString("  - " + renderIndicator(ind) + "\n")
			}
		}
		fmt.Fprintf(&b, "(normalized: %s / 10)\n", trimFloat(tr.Normalized, 1))
		if tr.Incomplete {
			fmt.Fprintf(&b, "incomplete: true (%s)\n", strings.Join(tr.Degradations, "; "))
		}
		b.WriteString("\n")
	}

	fmt.Fprintf(&b, "Overall score: %s / 10\n", trimFloat(r.Overall, 2))
	if r.Partial {
		b.WriteString("(partial: overall score computed from incomplete or missing tracks)\n")
	}
	return b.String()
}

// renderIndicator keeps null visibly distinct from zero: a reviewer must
// be able to tell "scored zero because disclosed-and-bad" from "scored
// zero because undisclosed".
func renderIndicator(ind entity.Indicator) string {
	if ind.IsNull() {
		return fmt.Sprintf("%s: insufficient evidence", ind.Label)
	}
	s := fmt.Sprintf("%s: %d / %d", ind.Label, *ind.Value, ind.MaxPoints)
	if len(ind.Flags) > 0 {
		s += " [" + strings.Join(ind.Flags, ",") + "]"
	}
	return s
}

func trackTitle(t constants.Track) string {
	switch t {
	case constants.TrackFinancial:
		return "Financial"
	case constants.TrackSustainability:
		return "Sustainability"
	default:
		return string(t)
	}
}

func indicatorsByKey(tr *entity.TrackResult) map[string]string {
	// map indicator key -> owning category name, using rubric order
	// reconstructed from the category/indicator sequence
	out := make(map[string]string, len(tr.Indicators))
	i := 0
	for _, cat := range tr.Categories {
		// categories and indicators are both in rubric order, and the
		// ceilings partition the indicator slice
		sum := 0
		for i < len(tr.Indicators) && sum < cat.Ceiling {
			out[tr.Indicators[i].Key] = cat.Name
			sum += tr.Indicators[i].MaxPoints
			i++
		}
	}
	return out
}

// trimFloat formats with up to prec decimals, dropping a trailing zero
// only beyond the first decimal (7.5 stays "7.5", 7.85 stays "7.85",
// 7.80 becomes "7.8").
func trimFloat(f float64, prec int) string {
	s := fmt.Sprintf("%.*f", prec, f)
	for prec > 1 && strings.HasSuffix(s, "0") {
		s = s[:len(s)-1]
		prec--
	}
	return s
}
