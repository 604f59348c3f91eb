package report

import (
	"strings"
	"testing"

	"github.com/autoesg/analyzer/constants"
	"github.com/autoesg/analyzer/internal/entity"
)

func intp(v int) *int { return &v }

func sampleFinancial() *entity.TrackResult {
	return &entity.TrackResult{
		Track:         constants.TrackFinancial,
		RubricVersion: "2025.1",
		Categories: []entity.CategoryScore{
			{Name: "Growth & Profitability", Raw: 3, Ceiling: 4},
			{Name: "Cash & Capital Allocation", Raw: 2, Ceiling: 2},
		},
		Indicators: []entity.Indicator{
			{Key: "revenue_growth", Label: "Revenue Growth", Value: intp(2), MaxPoints: 2},
			{Key: "gross_margin", Label: "Gross Margin", Value: intp(1), MaxPoints: 2, Flags: []string{"clamped"}},
			{Key: "fcf", Label: "Free Cash Flow", Value: intp(2), MaxPoints: 2},
		},
		RawTotal:   5,
		Ceiling:    6,
		Normalized: 8.3,
	}
}

func sampleSustainability() *entity.TrackResult {
	return &entity.TrackResult{
		Track:         constants.TrackSustainability,
		RubricVersion: "2025.1",
		Categories: []entity.CategoryScore{
			{Name: "GHG Emissions Reporting", Raw: 1, Ceiling: 2},
		},
		Indicators: []entity.Indicator{
			{Key: "scope1_emissions", Label: "Scope 1 Emissions", Value: intp(1), MaxPoints: 1},
			{Key: "scope2_emissions", Label: "Scope 2 Emissions", MaxPoints: 1},
		},
		RawTotal:   1,
		Ceiling:    2,
		Normalized: 5.0,
	}
}

func TestRenderText_Layout(t *testing.T) {
	r := &entity.ScoreReport{
		RubricVersion:  "2025.1",
		Financial:      sampleFinancial(),
		Sustainability: sampleSustainability(),
		Overall:        6.65,
	}

	got := RenderText(r)
	for _, want := range []string{
		"Financial score: 5 / 6\n",
		"Growth & Profitability: 3 / 4\n",
		"  - Revenue Growth: 2 / 2\n",
		"  - Gross Margin: 1 / 2 [clamped]\n",
		"Cash & Capital Allocation: 2 / 2\n",
		"  - Free Cash Flow: 2 / 2\n",
		"(normalized: 8.3 / 10)\n",
		"Sustainability score: 1 / 2\n",
		"  - Scope 1 Emissions: 1 / 1\n",
		"  - Scope 2 Emissions: insufficient evidence\n",
		"(normalized: 5.0 / 10)\n",
		"Overall score: 6.65 / 10\n",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("rendered report missing %q\n---\n%s", want, got)
		}
	}
	if strings.Contains(got, "partial") {
		t.Error("report marked partial without cause")
	}
}

func TestRenderText_NullNeverRendersAsZero(t *testing.T) {
	r := &entity.ScoreReport{
		RubricVersion:  "2025.1",
		Sustainability: sampleSustainability(),
		Overall:        5.0,
		Partial:        true,
	}

	got := RenderText(r)
	if strings.Contains(got, "Scope 2 Emissions: 0") {
		t.Error("null indicator rendered as a zero")
	}
	if !strings.Contains(got, "Scope 2 Emissions: insufficient evidence") {
		t.Error("null indicator missing its insufficient-evidence line")
	}
	if !strings.Contains(got, "(partial:") {
		t.Error("partial report missing the partial note")
	}
}

func TestRenderText_IncompleteTrack(t *testing.T) {
	fin := sampleFinancial()
	fin.Incomplete = true
	fin.Degradations = []string{"generation_failed: rate limited"}
	r := &entity.ScoreReport{
		RubricVersion: "2025.1",
		Financial:     fin,
		Overall:       8.3,
		Partial:       true,
	}

	got := RenderText(r)
	if !strings.Contains(got, "incomplete: true (generation_failed: rate limited)") {
		t.Errorf("incomplete marker missing:\n%s", got)
	}
}

func TestTrimFloat(t *testing.T) {
	tests := []struct {
		f    float64
		prec int
		want string
	}{
		{7.5, 1, "7.5"},
		{7.85, 2, "7.85"},
		{7.8, 2, "7.8"},
		{10, 2, "10.0"},
		{6.65, 2, "6.65"},
	}
	for _, tc := range tests {
		if got := trimFloat(tc.f, tc.prec); got != tc.want {
			t.Errorf("trimFloat(%v, %d) = %q, want %q", tc.f, tc.prec, got, tc.want)
		}
	}
}
