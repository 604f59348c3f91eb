package export

import (
	"bytes"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/xuri/excelize/v2"

	"github.com/autoesg/analyzer/constants"
	"github.com/autoesg/analyzer/internal/entity"
)

func intp(v int) *int { return &v }

func sampleScoreReport() *entity.ScoreReport {
	return &entity.ScoreReport{
		RunID:         uuid.New(),
		RubricVersion: "2025.1",
		Financial: &entity.TrackResult{
			Track:         constants.TrackFinancial,
			RubricVersion: "2025.1",
			Categories: []entity.CategoryScore{
				{Name: "Growth & Profitability", Raw: 3, Ceiling: 4},
			},
			Indicators: []entity.Indicator{
				{Key: "revenue_growth", Label: "Revenue Growth", Value: intp(2), MaxPoints: 2, Evidence: "revenue grew 8%"},
				{Key: "gross_margin", Label: "Gross Margin", Value: intp(1), MaxPoints: 2, Flags: []string{"clamped"}},
			},
			RawTotal:   3,
			Ceiling:    4,
			Normalized: 7.5,
		},
		Sustainability: &entity.TrackResult{
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
		},
		Overall:   6.25,
		CreatedAt: time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC),
	}
}

func TestExportReportXLSX(t *testing.T) {
	svc := NewService(nil)
	data, err := svc.ExportReportXLSX(sampleScoreReport())
	if err != nil {
		t.Fatalf("ExportReportXLSX failed: %v", err)
	}

	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("workbook does not open: %v", err)
	}
	defer func() { _ = f.Close() }()

	for _, sheet := range []string{"Scores", "Financial", "Sustainability"} {
		if idx, _ := f.GetSheetIndex(sheet); idx == -1 {
			t.Errorf("missing sheet %q", sheet)
		}
	}

	label, err := f.GetCellValue("Financial", "B2")
	if err != nil {
		t.Fatalf("read cell: %v", err)
	}
	if label != "Revenue Growth" {
		t.Errorf("Financial!B2 = %q, want Revenue Growth", label)
	}

	flags, err := f.GetCellValue("Financial", "E3")
	if err != nil {
		t.Fatalf("read cell: %v", err)
	}
	if flags != "clamped" {
		t.Errorf("Financial!E3 = %q, want clamped", flags)
	}

	nullCell, err := f.GetCellValue("Sustainability", "C3")
	if err != nil {
		t.Fatalf("read cell: %v", err)
	}
	if nullCell != "insufficient evidence" {
		t.Errorf("Sustainability!C3 = %q, want insufficient evidence", nullCell)
	}
}

func TestTruncate(t *testing.T) {
	if got := truncate("short", 10); got != "short" {
		t.Errorf("truncate(short, 10) = %q", got)
	}
	got := truncate("a very long evidence string", 10)
	if len([]rune(got)) != 10 {
		t.Errorf("truncate length = %d, want 10", len([]rune(got)))
	}
}
