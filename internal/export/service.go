// Package export produces XLSX workbooks from finished score reports.
package export

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/autoesg/analyzer/constants"
	"github.com/autoesg/analyzer/internal/entity"
)

// Service is a tiny façade that turns a score report into XLSX bytes.
type Service struct {
	logger *slog.Logger
}

func NewService(logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{logger: logger}
}

// ExportReportXLSX returns an XLSX workbook (as bytes) with one sheet per
// track plus a Scores summary sheet. Null indicators render as
// "insufficient evidence" so the workbook never masks a null as a zero.
func (s *Service) ExportReportXLSX(r *entity.ScoreReport) ([]byte, error) {
	start := time.Now()

	f := excelize.NewFile()
	const summarySheet = "Scores"
	// excelize starts with "Sheet1"; rename it to our summary sheet
	if err := f.SetSheetName("Sheet1", summarySheet); err != nil {
		return nil, fmt.Errorf("xlsx sheet: %w", err)
	}

	rows := 0
	for _, tr := range r.Tracks() {
		n, err := s.writeTrackSheet(f, tr)
		if err != nil {
			return nil, err
		}
		rows += n
	}
	if err := s.writeSummarySheet(f, summarySheet, r); err != nil {
		return nil, err
	}
	activeIndex, _ := f.GetSheetIndex(summarySheet)
	f.SetActiveSheet(activeIndex)

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("xlsx write: %w", err)
	}

	s.logger.Info("export.xlsx.ok",
		"run_id", r.RunID.String(),
		"rows", rows,
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return buf.Bytes(), nil
}

func (s *Service) writeTrackSheet(f *excelize.File, tr *entity.TrackResult) (int, error) {
	sheet := sheetTitle(tr.Track)
	if _, err := f.NewSheet(sheet); err != nil {
		return 0, fmt.Errorf("xlsx sheet: %w", err)
	}

	headers := []string{
		"Category",
		"Indicator",
		"Value",
		"Max",
		"Flags",
		"Evidence",
	}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(sheet, cell, h)
	}

	write := func(col, row int, v any) {
		cell, _ := excelize.CoordinatesToCellName(col, row)
		_ = f.SetCellValue(sheet, cell, v)
	}

	catByKey := categoryByKey(tr)
	row := 2
	for _, ind := range tr.Indicators {
		write(1, row, catByKey[ind.Key])
		write(2, row, ind.Label)
		if ind.IsNull() {
			write(3, row, "insufficient evidence")
		} else {
			write(3, row, *ind.Value)
		}
		write(4, row, ind.MaxPoints)
		write(5, row, strings.Join(ind.Flags, ","))
		write(6, row, truncate(ind.Evidence, 400))
		row++
	}

	_ = f.SetColWidth(sheet, "A", "A", 30) // category
	_ = f.SetColWidth(sheet, "B", "B", 34) // indicator
	_ = f.SetColWidth(sheet, "C", "D", 12) // value, max
	_ = f.SetColWidth(sheet, "E", "E", 16) // flags
	_ = f.SetColWidth(sheet, "F", "F", 80) // evidence

	return row - 2, nil
}

func (s *Service) writeSummarySheet(f *excelize.File, sheet string, r *entity.ScoreReport) error {
	write := func(col, row int, v any) {
		cell, _ := excelize.CoordinatesToCellName(col, row)
		_ = f.SetCellValue(sheet, cell, v)
	}

	write(1, 1, "Rubric Version")
	write(2, 1, r.RubricVersion)
	write(1, 2, "Run ID")
	write(2, 2, r.RunID.String())
	write(1, 3, "Created At")
	if !r.CreatedAt.IsZero() {
		write(2, 3, r.CreatedAt.UTC().Format(time.RFC3339))
	}

	row := 5
	headers := []string{"Track", "Raw", "Ceiling", "Normalized", "Incomplete"}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, row)
		_ = f.SetCellValue(sheet, cell, h)
	}
	row++
	for _, tr := range r.Tracks() {
		write(1, row, sheetTitle(tr.Track))
		write(2, row, tr.RawTotal)
		write(3, row, tr.Ceiling)
		write(4, row, tr.Normalized)
		write(5, row, tr.Incomplete)
		row++
	}

	row++
	write(1, row, "Overall")
	write(2, row, r.Overall)
	if r.Partial {
		write(3, row, "partial")
	}

	_ = f.SetColWidth(sheet, "A", "A", 18)
	_ = f.SetColWidth(sheet, "B", "E", 14)
	return nil
}

func sheetTitle(t constants.Track) string {
	switch t {
	case constants.TrackFinancial:
		return "Financial"
	case constants.TrackSustainability:
		return "Sustainability"
	default:
		return string(t)
	}
}

// categoryByKey partitions the indicator slice by the category ceilings,
// both being in rubric order.
func categoryByKey(tr *entity.TrackResult) map[string]string {
	out := make(map[string]string, len(tr.Indicators))
	i := 0
	for _, cat := range tr.Categories {
		sum := 0
		for i < len(tr.Indicators) && sum < cat.Ceiling {
			out[tr.Indicators[i].Key] = cat.Name
			sum += tr.Indicators[i].MaxPoints
			i++
		}
	}
	return out
}

func truncate(s string, n int) string {
	if n <= 0 || len(s) <= n {
		return s
	}
	if n <= 1 {
		return s[:n]
	}
	return s[:n-1] + "…"
}
