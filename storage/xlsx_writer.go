package storage

import (
	"fmt"
	"math"
	"path/filepath"
	"strconv"

	"github.com/xuri/excelize/v2"

	"airbnb-analyzer/models"
)

// XLSXWriter exports a report as a workbook with one sheet per section.
// Count and amount columns are written as numbers so they stay usable in
// formulas; identifier columns stay text.
type XLSXWriter struct{}

func NewXLSXWriter() *XLSXWriter { return &XLSXWriter{} }

func (x *XLSXWriter) Format() string { return "xlsx" }

func (x *XLSXWriter) Export(report *models.Report, name, dir string) (string, error) {
	path, err := generateFilename(name, dir, x.Format())
	if err != nil {
		return "", err
	}

	f := excelize.NewFile()
	defer f.Close()

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return "", fmt.Errorf("xlsx: create style: %w", err)
	}

	first := f.GetSheetName(0)
	for i, t := range reportTables(report) {
		sheet := sheetName(t.title)
		if i == 0 {
			if err := f.SetSheetName(first, sheet); err != nil {
				return "", fmt.Errorf("xlsx: rename sheet: %w", err)
			}
		} else if _, err := f.NewSheet(sheet); err != nil {
			return "", fmt.Errorf("xlsx: create sheet %q: %w", sheet, err)
		}

		if err := writeSheetRow(f, sheet, 1, t.header, nil); err != nil {
			return "", err
		}
		last, _ := excelize.CoordinatesToCellName(max(len(t.header), 1), 1)
		if err := f.SetCellStyle(sheet, "A1", last, bold); err != nil {
			return "", fmt.Errorf("xlsx: style header: %w", err)
		}
		for r, row := range t.rows {
			if err := writeSheetRow(f, sheet, r+2, row, t.isNumeric); err != nil {
				return "", err
			}
		}
	}

	if err := f.SaveAs(path); err != nil {
		return "", fmt.Errorf("xlsx: save %q: %w", path, err)
	}
	return filepath.Abs(path)
}

// writeSheetRow writes cells starting at column A. Cells in columns numeric
// reports true are stored as numbers when they parse; numeric may be nil.
func writeSheetRow(f *excelize.File, sheet string, row int, cells []string, numeric func(int) bool) error {
	values := make([]any, len(cells))
	for i, c := range cells {
		values[i] = c
		if numeric == nil || !numeric(i) {
			continue
		}
		if v, err := strconv.ParseFloat(c, 64); err == nil && !math.IsInf(v, 0) && !math.IsNaN(v) {
			values[i] = v
		}
	}
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return fmt.Errorf("xlsx: row %d: %w", row, err)
	}
	if err := f.SetSheetRow(sheet, cell, &values); err != nil {
		return fmt.Errorf("xlsx: write %s!%s: %w", sheet, cell, err)
	}
	return nil
}

// sheetName trims a title to the 31 characters Excel allows.
func sheetName(title string) string {
	if len(title) > 31 {
		return title[:31]
	}
	return title
}
