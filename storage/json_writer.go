package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"airbnb-analyzer/models"
)

// JSONWriter exports the report structure as indented JSON.
type JSONWriter struct{}

func NewJSONWriter() *JSONWriter { return &JSONWriter{} }

func (j *JSONWriter) Format() string { return "json" }

func (j *JSONWriter) Export(report *models.Report, name, dir string) (string, error) {
	path, err := generateFilename(name, dir, j.Format())
	if err != nil {
		return "", err
	}

	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("json: create file %q: %w", path, err)
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	if err := enc.Encode(report); err != nil {
		return "", fmt.Errorf("json: encode report: %w", err)
	}
	return filepath.Abs(path)
}
