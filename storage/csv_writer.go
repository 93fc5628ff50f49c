package storage

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"

	"airbnb-analyzer/models"
)

// CSVWriter exports a report as one CSV file. Each section starts with a row
// holding its title, then its header and data rows; sections are separated by
// an empty row.
type CSVWriter struct{}

func NewCSVWriter() *CSVWriter { return &CSVWriter{} }

func (c *CSVWriter) Format() string { return "csv" }

// Export writes report to dir and returns the absolute path of the file.
func (c *CSVWriter) Export(report *models.Report, name, dir string) (string, error) {
	path, err := generateFilename(name, dir, c.Format())
	if err != nil {
		return "", err
	}

	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("csv: create file %q: %w", path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	for i, t := range reportTables(report) {
		if i > 0 {
			if err := w.Write([]string{}); err != nil {
				return "", fmt.Errorf("csv: write separator: %w", err)
			}
		}
		if err := w.Write([]string{t.title}); err != nil {
			return "", fmt.Errorf("csv: write section %q: %w", t.title, err)
		}
		if err := w.Write(t.header); err != nil {
			return "", fmt.Errorf("csv: write header: %w", err)
		}
		if err := w.WriteAll(t.rows); err != nil {
			return "", fmt.Errorf("csv: write rows: %w", err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return "", fmt.Errorf("csv: flush: %w", err)
	}
	return filepath.Abs(path)
}
