package scoring

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/autoesg/analyzer/constants"
	"github.com/autoesg/analyzer/internal/entity"
	"github.com/autoesg/analyzer/internal/rubric"
)

func intp(v int) *int { return &v }

func testFinancialRubric() *rubric.TrackRubric {
	return &rubric.TrackRubric{
		Track:   constants.TrackFinancial,
		Ceiling: 16,
		Categories: []rubric.Category{
			{
				Name:    "Growth & Profitability",
				Ceiling: 8,
				Indicators: []rubric.IndicatorDef{
					scoreDef("revenue_growth", "Revenue Growth"),
					scoreDef("gross_margin", "Gross Margin"),
					scoreDef("operating_margin", "Operating Margin"),
					scoreDef("ebitda_margin", "EBITDA Margin"),
				},
			},
			{
				Name:    "Cash & Capital Allocation",
				Ceiling: 6,
				Indicators: []rubric.IndicatorDef{
					scoreDef("fcf", "Free Cash Flow"),
					scoreDef("capex_pct", "CapEx Intensity"),
					scoreDef("rd_pct", "R&D Intensity"),
				},
			},
			{
				Name:    "Operational Efficiency",
				Ceiling: 2,
				Indicators: []rubric.IndicatorDef{
					scoreDef("dio", "Days Inventory Outstanding"),
				},
			},
		},
	}
}

func scoreDef(key, label string) rubric.IndicatorDef {
	return rubric.IndicatorDef{
		Key: key, Label: label, Kind: rubric.KindScore, MaxPoints: 2,
		Rules: []rubric.Rule{
			{Points: 2, Type: rubric.RuleGreaterThan, Text: "2: strong"},
			{Points: 0, Type: rubric.RuleRange, Text: "0: weak"},
		},
	}
}

func indicatorsWithValues(tr *rubric.TrackRubric, values map[string]*int) []entity.Indicator {
	var out []entity.Indicator
	for _, def := range tr.Indicators() {
		out = append(out, entity.Indicator{
			Key:       def.Key,
			Label:     def.Label,
			Value:     values[def.Key],
			MaxPoints: def.MaxPoints,
		})
	}
	return out
}

func TestScoreTrack_TwelveOfSixteenNormalizesToSevenPointFive(t *testing.T) {
	tr := testFinancialRubric()
	values := map[string]*int{
		"revenue_growth":   intp(2),
		"gross_margin":     intp(2),
		"operating_margin": intp(2),
		"ebitda_margin":    intp(0),
		"fcf":              intp(2),
		"capex_pct":        intp(2),
		"rd_pct":           intp(0),
		"dio":              intp(2),
	}

	result, err := ScoreTrack(tr, "2025.1", indicatorsWithValues(tr, values), nil)
	if err != nil {
		t.Fatalf("ScoreTrack failed: %v", err)
	}
	if result.RawTotal != 12 {
		t.Errorf("RawTotal = %d, want 12", result.RawTotal)
	}
	if result.Normalized != 7.5 {
		t.Errorf("Normalized = %v, want 7.5", result.Normalized)
	}
	if result.Incomplete {
		t.Error("Incomplete = true, want false")
	}

	wantCategories := []entity.CategoryScore{
		{Name: "Growth & Profitability", Raw: 6, Ceiling: 8},
		{Name: "Cash & Capital Allocation", Raw: 4, Ceiling: 6},
		{Name: "Operational Efficiency", Raw: 2, Ceiling: 2},
	}
	if diff := cmp.Diff(wantCategories, result.Categories); diff != "" {
		t.Errorf("categories mismatch (-want +got):\n%s", diff)
	}
}

func TestScoreTrack_NullContributesZeroButStaysNull(t *testing.T) {
	tr := testFinancialRubric()
	values := map[string]*int{"revenue_growth": intp(2)} // the rest null

	result, err := ScoreTrack(tr, "2025.1", indicatorsWithValues(tr, values), nil)
	if err != nil {
		t.Fatalf("ScoreTrack failed: %v", err)
	}
	if result.RawTotal != 2 {
		t.Errorf("RawTotal = %d, want 2", result.RawTotal)
	}
	if result.Ceiling != 16 {
		t.Errorf("Ceiling = %d, want 16 despite nulls", result.Ceiling)
	}
	nulls := 0
	for _, ind := range result.Indicators {
		if ind.IsNull() {
			nulls++
		}
	}
	if nulls != 7 {
		t.Errorf("null indicators = %d, want 7", nulls)
	}
}

func TestScoreTrack_IsDeterministic(t *testing.T) {
	tr := testFinancialRubric()
	values := map[string]*int{"revenue_growth": intp(2), "dio": intp(1)}
	inds := indicatorsWithValues(tr, values)

	a, err := ScoreTrack(tr, "2025.1", inds, nil)
	if err != nil {
		t.Fatalf("ScoreTrack failed: %v", err)
	}
	b, err := ScoreTrack(tr, "2025.1", inds, nil)
	if err != nil {
		t.Fatalf("ScoreTrack failed: %v", err)
	}
	if diff := cmp.Diff(a, b); diff != "" {
		t.Errorf("two runs over the same input differ (-first +second):\n%s", diff)
	}
}

func TestScoreTrack_MissingIndicator(t *testing.T) {
	tr := testFinancialRubric()
	inds := indicatorsWithValues(tr, nil)[:5]
	if _, err := ScoreTrack(tr, "2025.1", inds, nil); err == nil {
		t.Fatal("ScoreTrack succeeded with missing indicators, want error")
	}
}

func TestScoreTrack_OverMaxIndicator(t *testing.T) {
	tr := testFinancialRubric()
	inds := indicatorsWithValues(tr, map[string]*int{"revenue_growth": intp(5)})
	if _, err := ScoreTrack(tr, "2025.1", inds, nil); err == nil {
		t.Fatal("ScoreTrack succeeded with out-of-range points, want error")
	}
}

func TestScoreTrack_DegradationsMarkIncomplete(t *testing.T) {
	tr := testFinancialRubric()
	result, err := ScoreTrack(tr, "2025.1", indicatorsWithValues(tr, nil), []string{"no_evidence"})
	if err != nil {
		t.Fatalf("ScoreTrack failed: %v", err)
	}
	if !result.Incomplete {
		t.Error("Incomplete = false, want true with degradations")
	}
}

func TestNormalize(t *testing.T) {
	tests := []struct {
		raw, ceiling int
		want         float64
	}{
		{12, 16, 7.5},
		{16, 16, 10},
		{0, 16, 0},
		{13, 15, 8.7}, // 8.666... rounds half-up to one decimal
		{11, 15, 7.3},
		{7, 15, 4.7},
		{1, 3, 3.3},
		{5, 0, 0}, // degenerate ceiling
	}
	for _, tc := range tests {
		if got := Normalize(tc.raw, tc.ceiling); got != tc.want {
			t.Errorf("Normalize(%d, %d) = %v, want %v", tc.raw, tc.ceiling, got, tc.want)
		}
	}
}

func TestRoundHalfUp1(t *testing.T) {
	tests := []struct{ in, want float64 }{
		{7.45, 7.5},
		{7.44, 7.4},
		{7.850000, 7.9},
		{0, 0},
		{9.99, 10},
	}
	for _, tc := range tests {
		if got := RoundHalfUp1(tc.in); got != tc.want {
			t.Errorf("RoundHalfUp1(%v) = %v, want %v", tc.in, got, tc.want)
		}
	}
}

func trackResult(track constants.Track, normalized float64, incomplete bool) *entity.TrackResult {
	return &entity.TrackResult{
		Track:         track,
		RubricVersion: "2025.1",
		Normalized:    normalized,
		Incomplete:    incomplete,
	}
}

func TestCombine_AveragesNormalizedScores(t *testing.T) {
	fin := trackResult(constants.TrackFinancial, 7.5, false)
	sus := trackResult(constants.TrackSustainability, 8.2, false)

	r, err := Combine(fin, sus)
	if err != nil {
		t.Fatalf("Combine failed: %v", err)
	}
	if r.Overall != 7.85 {
		t.Errorf("Overall = %v, want 7.85", r.Overall)
	}
	if r.Partial {
		t.Error("Partial = true, want false")
	}
	if r.RubricVersion != "2025.1" {
		t.Errorf("RubricVersion = %q", r.RubricVersion)
	}
}

func TestCombine_SingleTrackIsPartial(t *testing.T) {
	fin := trackResult(constants.TrackFinancial, 6.0, false)

	r, err := Combine(fin, nil)
	if err != nil {
		t.Fatalf("Combine failed: %v", err)
	}
	if r.Overall != 6.0 {
		t.Errorf("Overall = %v, want 6.0 from the only track", r.Overall)
	}
	if !r.Partial {
		t.Error("Partial = false, want true with one track")
	}
}

func TestCombine_IncompleteTrackIsPartial(t *testing.T) {
	fin := trackResult(constants.TrackFinancial, 7.5, true)
	sus := trackResult(constants.TrackSustainability, 8.2, false)

	r, err := Combine(fin, sus)
	if err != nil {
		t.Fatalf("Combine failed: %v", err)
	}
	if !r.Partial {
		t.Error("Partial = false, want true with a degraded track")
	}
}

func TestCombine_NoTracks(t *testing.T) {
	if _, err := Combine(nil, nil); err == nil {
		t.Fatal("Combine succeeded with no tracks, want error")
	}
}

func TestCombine_RubricVersionMismatch(t *testing.T) {
	fin := trackResult(constants.TrackFinancial, 7.5, false)
	sus := trackResult(constants.TrackSustainability, 8.2, false)
	sus.RubricVersion = "2024.2"

	if _, err := Combine(fin, sus); err == nil {
		t.Fatal("Combine succeeded across rubric versions, want error")
	}
}
