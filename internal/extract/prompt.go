package extract

import (
	"fmt"
	"strings"

	"github.com/autoesg/analyzer/constants"
	"github.com/autoesg/analyzer/internal/rubric"
)

// BuildInstruction composes the per-track extraction instruction: analyst
// persona, every indicator with its verbatim threshold rules, the null
// policy, and the exact output keys. One instruction, one pass.
func BuildInstruction(tr *rubric.TrackRubric) string {
	var b strings.Builder

	switch tr.Track {
	case constants.TrackSustainability:
		b.WriteString("You are an ESG analyst specializing in automotive industry sustainability reporting.\n")
	default:
		b.WriteString("You are a financial analyst reading an automotive company's annual report.\n")
	}
	b.WriteString("Assess the indicators below strictly from the CONTEXT the user provides.\n\n")

	n := 0
	for _, cat := range tr.Categories {
		fmt.Fprintf(&b, "Category: %s (max %d points)\n", cat.Name, cat.Ceiling)
		for _, ind := range cat.Indicators {
			n++
			fmt.Fprintf(&b, "\n%d) %s (key: %s)\n", n, ind.Label, ind.Key)
			if ind.Guidance != "" {
				b.WriteString(ind.Guidance + "\n")
			}
			b.WriteString("Scoring:\n")
			for _, rule := range ind.Rules {
				b.WriteString("- " + rule.Text + "\n")
			}
			switch ind.Kind {
			case rubric.KindBoolean:
				fmt.Fprintf(&b, "- null: not enough information to decide\nAnswer with true, false, or null under %q.\n", ind.Key)
			default:
				fmt.Fprintf(&b, "- null: not enough information to determine\nAnswer with an integer 0-%d or null under %q.\n", ind.MaxPoints, ind.Key)
			}
			fmt.Fprintf(&b, "Quote the supporting numbers or statements under %q.\n", ind.Key+"_evidence")
		}
		b.WriteString("\n")
	}

	b.WriteString("Rules:\n")
	b.WriteString("- Use null, NOT 0 and NOT false, whenever the CONTEXT lacks the evidence to decide. ")
	b.WriteString("A 0 or false must mean the report disclosed something and it was bad; null means it disclosed nothing.\n")
	b.WriteString("- Evidence strings must reference specific numbers, percentages, or quotes from the CONTEXT; ")
	b.WriteString("when the value is null, explain in the evidence string what was missing.\n")
	b.WriteString("- Return a STRICT JSON object containing exactly the keys named above and nothing else. ")
	b.WriteString("ONLY output the JSON object, no extra text.\n")

	return b.String()
}
