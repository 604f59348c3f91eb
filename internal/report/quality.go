package report

import "github.com/autoesg/analyzer/internal/entity"

// ClaimsCategory is the sustainability category whose indicators measure
// claim quality rather than disclosure coverage.
const ClaimsCategory = "Transparency & Claims Quality"

// Level buckets a ratio for the disclosure-quality matrix.
type Level string

const (
	LevelLow    Level = "Low"
	LevelMedium Level = "Medium"
	LevelHigh   Level = "High"
)

// DisclosureQuality positions a company on the completeness/reliability
// matrix. Completeness covers the disclosure booleans; reliability covers
// the claim-quality checks. Null indicators count as not disclosed.
type DisclosureQuality struct {
	CompletenessRatio float64 `json:"completeness_ratio"`
	ReliabilityRatio  float64 `json:"reliability_ratio"`
	CompletenessLevel Level   `json:"completeness_level"`
	ReliabilityLevel  Level   `json:"reliability_level"`
	Risk              string  `json:"risk"`
}

// ComputeDisclosureQuality derives the matrix position from a
// sustainability track result. Returns false when the track is absent.
func ComputeDisclosureQuality(sus *entity.TrackResult) (DisclosureQuality, bool) {
	if sus == nil {
		return DisclosureQuality{}, false
	}

	claimKeys := make(map[string]struct{})
	catByKey := indicatorsByKey(sus)
	for key, cat := range catByKey {
		if cat == ClaimsCategory {
			claimKeys[key] = struct{}{}
		}
	}

	var compHit, compTotal, relHit, relTotal int
	for _, ind := range sus.Indicators {
		reported := !ind.IsNull() && *ind.Value > 0
		if _, isClaim := claimKeys[ind.Key]; isClaim {
			relTotal++
			if reported {
				relHit++
			}
		} else {
			compTotal++
			if reported {
				compHit++
			}
		}
	}

	q := DisclosureQuality{
		CompletenessRatio: ratio(compHit, compTotal),
		ReliabilityRatio:  ratio(relHit, relTotal),
	}
	q.CompletenessLevel = toLevel(q.CompletenessRatio)
	q.ReliabilityLevel = toLevel(q.ReliabilityRatio)
	q.Risk = riskLabel(q.ReliabilityLevel, q.CompletenessLevel)
	return q, true
}

func ratio(hit, total int) float64 {
	if total == 0 {
		return 0
	}
	return float64(hit) / float64(total)
}

func toLevel(r float64) Level {
	switch {
	case r >= 0.75:
		return LevelHigh
	case r >= 0.4:
		return LevelMedium
	default:
		return LevelLow
	}
}

// riskLabel follows a risk-matrix reading: sparse or unreliable
// disclosure is high risk, complete and reliable disclosure is low.
var riskMatrix = map[[2]Level]string{
	{LevelLow, LevelLow}:       "High",
	{LevelLow, LevelMedium}:    "High",
	{LevelLow, LevelHigh}:      "Med-High",
	{LevelMedium, LevelLow}:    "High",
	{LevelMedium, LevelMedium}: "Medium",
	{LevelMedium, LevelHigh}:   "Medium",
	{LevelHigh, LevelLow}:      "Med-High",
	{LevelHigh, LevelMedium}:   "Medium",
	{LevelHigh, LevelHigh}:     "Low",
}

func riskLabel(reliability, completeness Level) string {
	return riskMatrix[[2]Level{reliability, completeness}]
}
