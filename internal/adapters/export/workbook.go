// Package export renders core outputs into a downloadable XLSX workbook.
package export

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/mkarimof/jurybox/internal/domain/model"
	"github.com/mkarimof/jurybox/pkg/metrics"
)

// Sheet names in the exported workbook.
const (
	SheetRankings  = "Rankings"
	SheetRawScores = "Raw Scores"
)

var rankingHeaders = []string{
	"Rank", "Entry ID", "Entry Name", "Avg Raw Score", "Max Possible", "Avg Normalized Score", "Num Judges",
}

// Workbook builds a two-sheet workbook: ranked results and the raw ledger.
// It is pure formatting over outputs the core already produced.
func Workbook(results []model.EntryResult, records []model.ScoreRecord, criteria []model.Criterion, maxPossible int) (*excelize.File, error) {
	f := excelize.NewFile()

	if err := f.SetSheetName("Sheet1", SheetRankings); err != nil {
		return nil, fmt.Errorf("renaming sheet: %w", err)
	}
	if _, err := f.NewSheet(SheetRawScores); err != nil {
		return nil, fmt.Errorf("creating raw scores sheet: %w", err)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Color: "FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"000000"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	if err != nil {
		return nil, fmt.Errorf("creating header style: %w", err)
	}

	if err := writeRankings(f, headerStyle, results, maxPossible); err != nil {
		return nil, err
	}
	if err := writeRawScores(f, headerStyle, records, criteria); err != nil {
		return nil, err
	}

	metrics.RecordExportGenerated()
	return f, nil
}

func writeRankings(f *excelize.File, headerStyle int, results []model.EntryResult, maxPossible int) error {
	if err := setRow(f, SheetRankings, 1, toAny(rankingHeaders)); err != nil {
		return err
	}
	if err := styleHeader(f, SheetRankings, headerStyle, len(rankingHeaders)); err != nil {
		return err
	}

	for i, res := range results {
		row := []any{i + 1, res.EntryID, res.EntryName, res.AvgRaw, maxPossible, res.AvgNormalized, res.NumJudges}
		if err := setRow(f, SheetRankings, i+2, row); err != nil {
			return err
		}
	}

	widths := []float64{8, 15, 25, 15, 12, 20, 12}
	return setWidths(f, SheetRankings, widths)
}

func writeRawScores(f *excelize.File, headerStyle int, records []model.ScoreRecord, criteria []model.Criterion) error {
	headers := []any{"Timestamp", "Judge", "Entry ID", "Entry Name"}
	for _, c := range criteria {
		name := c.Name
		if name == "" {
			name = c.ID
		}
		headers = append(headers, name)
	}
	if err := setRow(f, SheetRawScores, 1, headers); err != nil {
		return err
	}
	if err := styleHeader(f, SheetRawScores, headerStyle, len(headers)); err != nil {
		return err
	}

	for i, rec := range records {
		row := []any{rec.Timestamp.UTC().Format("2006-01-02 15:04:05"), rec.Judge, rec.EntryID, rec.EntryName}
		for _, c := range criteria {
			row = append(row, rec.Scores[c.ID])
		}
		if err := setRow(f, SheetRawScores, i+2, row); err != nil {
			return err
		}
	}

	widths := []float64{22, 12, 15, 25}
	for range criteria {
		widths = append(widths, 18)
	}
	return setWidths(f, SheetRawScores, widths)
}

func setRow(f *excelize.File, sheet string, row int, values []any) error {
	for col, v := range values {
		cell, err := excelize.CoordinatesToCellName(col+1, row)
		if err != nil {
			return fmt.Errorf("locating cell: %w", err)
		}
		if err := f.SetCellValue(sheet, cell, v); err != nil {
			return fmt.Errorf("writing cell %s!%s: %w", sheet, cell, err)
		}
	}
	return nil
}

func styleHeader(f *excelize.File, sheet string, style, cols int) error {
	last, err := excelize.CoordinatesToCellName(cols, 1)
	if err != nil {
		return fmt.Errorf("locating header end: %w", err)
	}
	if err := f.SetCellStyle(sheet, "A1", last, style); err != nil {
		return fmt.Errorf("styling header of %s: %w", sheet, err)
	}
	return nil
}

func setWidths(f *excelize.File, sheet string, widths []float64) error {
	for i, w := range widths {
		col, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			return fmt.Errorf("naming column: %w", err)
		}
		if err := f.SetColWidth(sheet, col, col, w); err != nil {
			return fmt.Errorf("sizing column %s!%s: %w", sheet, col, err)
		}
	}
	return nil
}

func toAny(strs []string) []any {
	out := make([]any, len(strs))
	for i, s := range strs {
		out[i] = s
	}
	return out
}
