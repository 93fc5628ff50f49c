package storage

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"airbnb-analyzer/models"
)

// ErrUnknownFormat is returned for an export format without an exporter.
var ErrUnknownFormat = errors.New("unknown export format")

// Formats lists the supported export formats.
var Formats = []string{"csv", "json", "xlsx", "pdf"}

// ExporterFor returns the exporter of format (case insensitive).
func ExporterFor(format string) (ReportExporter, error) {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "csv":
		return NewCSVWriter(), nil
	case "json":
		return NewJSONWriter(), nil
	case "xlsx":
		return NewXLSXWriter(), nil
	case "pdf":
		return NewPDFWriter(), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
}

// ExportAll writes report in every format concurrently. A format repeated in
// formats is written once, and paths follow the first occurrence of each.
// Unknown formats fail before anything is written.
func ExportAll(ctx context.Context, report *models.Report, formats []string, name, dir string) ([]string, error) {
	exporters := make([]ReportExporter, 0, len(formats))
	seen := make(map[string]bool, len(formats))
	for _, format := range formats {
		exp, err := ExporterFor(format)
		if err != nil {
			return nil, err
		}
		if seen[exp.Format()] {
			continue
		}
		seen[exp.Format()] = true
		exporters = append(exporters, exp)
	}

	paths := make([]string, len(exporters))
	g, ctx := errgroup.WithContext(ctx)
	for i, exp := range exporters {
		i, exp := i, exp
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			path, err := exp.Export(report, name, dir)
			if err != nil {
				return fmt.Errorf("export %s: %w", exp.Format(), err)
			}
			paths[i] = path
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return paths, nil
}

// generateFilename builds dir/base_YYYYMMDD_HHMMSS.ext, creating dir when
// needed. An empty dir means the working directory.
func generateFilename(base, dir, ext string) (string, error) {
	if dir == "" {
		cwd, err := os.Getwd()
		if err != nil {
			return "", fmt.Errorf("could not get current working directory: %w", err)
		}
		dir = cwd
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("error creating output directory '%s': %w", dir, err)
	}
	timestamp := time.Now().Format("20060102_150405")
	return filepath.Join(dir, fmt.Sprintf("%s_%s.%s", base, timestamp, ext)), nil
}
