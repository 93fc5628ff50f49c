package storage

import (
	"context"

	"airbnb-analyzer/models"
)

// ReportExporter writes a report to dir as one file and returns its absolute
// path. The file name is name suffixed with a timestamp and the format's
// extension.
type ReportExporter interface {
	Format() string
	Export(report *models.Report, name, dir string) (string, error)
}

// RowSource yields the raw header and cell rows of an earnings table, ready
// for services.Loader.FromRows.
type RowSource interface {
	Fetch(ctx context.Context, table string) ([]string, [][]string, error)
	Close() error
}
