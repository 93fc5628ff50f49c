package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/lib/pq"

	"airbnb-analyzer/utils"
)

// PostgresSource reads an earnings export that was imported into a
// PostgreSQL table. Every column is read as text so the rows go through the
// same typing as an uploaded file; timestamps arrive as RFC 3339 text.
type PostgresSource struct {
	db     *sql.DB
	logger *utils.Logger
}

var _ RowSource = (*PostgresSource)(nil)

// NewPostgresSource opens a connection and waits for the server to answer,
// retrying with back-off up to maxRetries times.
func NewPostgresSource(ctx context.Context, dsn string, maxRetries int, logger *utils.Logger) (*PostgresSource, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("postgres: open: %w", err)
	}

	retry := utils.RetryConfig{MaxAttempts: maxRetries, BaseDelay: 500 * time.Millisecond, Logger: logger}
	if err := retry.Do(ctx, "postgres ping", func() error {
		return db.PingContext(ctx)
	}); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("postgres: %w", err)
	}

	logger.Info("[postgres] Connected")
	return &PostgresSource{db: db, logger: logger}, nil
}

// selectAllQuery selects every column of table in its declared order.
func selectAllQuery(table string) string {
	return fmt.Sprintf("SELECT * FROM %s", pq.QuoteIdentifier(table))
}

// Fetch returns the column names and rows of table. NULLs become empty cells.
func (p *PostgresSource) Fetch(ctx context.Context, table string) ([]string, [][]string, error) {
	rows, err := p.db.QueryContext(ctx, selectAllQuery(table))
	if err != nil {
		return nil, nil, fmt.Errorf("postgres: query %q: %w", table, err)
	}
	defer rows.Close()

	header, err := rows.Columns()
	if err != nil {
		return nil, nil, fmt.Errorf("postgres: columns: %w", err)
	}

	var out [][]string
	for rows.Next() {
		cells := make([]sql.NullString, len(header))
		dest := make([]any, len(header))
		for i := range cells {
			dest[i] = &cells[i]
		}
		if err := rows.Scan(dest...); err != nil {
			return nil, nil, fmt.Errorf("postgres: scan row %d: %w", len(out)+1, err)
		}

		row := make([]string, len(header))
		for i, c := range cells {
			if c.Valid {
				row[i] = c.String
			}
		}
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, nil, fmt.Errorf("postgres: iterate rows: %w", err)
	}

	p.logger.Info("[postgres] Fetched %d rows from %s", len(out), table)
	return header, out, nil
}

func (p *PostgresSource) Close() error {
	return p.db.Close()
}
