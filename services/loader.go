package services

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"airbnb-analyzer/models"
	"airbnb-analyzer/utils"
)

var (
	// ErrEmptyFile is returned when an upload has no header row.
	ErrEmptyFile = errors.New("loader: file is empty")

	// ErrUnsupportedFormat is returned for files that are neither CSV nor XLSX.
	ErrUnsupportedFormat = errors.New("loader: unsupported file format, expected .csv or .xlsx")
)

// RequiredUploadColumns must be present in every export.
var RequiredUploadColumns = []string{
	models.ColDate, models.ColArrivingBy, models.ColBookingDate,
	models.ColStartDate, models.ColEarningsYear, models.ColType,
}

var dateColumns = map[string]bool{
	models.ColDate:        true,
	models.ColArrivingBy:  true,
	models.ColBookingDate: true,
	models.ColStartDate:   true,
}

// textColumns are identifiers that stay strings even when they look numeric.
var textColumns = map[string]bool{
	models.ColType:             true,
	models.ColConfirmationCode: true,
	models.ColListing:          true,
	models.ColGuest:            true,
}

var dateLayouts = []string{
	"01/02/2006",
	"1/2/2006",
	"2006-01-02",
	"2006-01-02 15:04:05",
	time.RFC3339Nano,
}

// Loader turns an earnings export into a typed dataset of reservations.
type Loader struct {
	logger  *utils.Logger
	cleaner *Cleaner
}

// NewLoader creates a Loader with the given logger.
func NewLoader(logger *utils.Logger) *Loader {
	return &Loader{logger: logger, cleaner: NewCleaner(logger)}
}

// LoadFile opens path and loads it according to its extension.
func (l *Loader) LoadFile(path string) (*models.Dataset, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("loader: open %q: %w", path, err)
	}
	defer f.Close()
	return l.Load(filepath.Base(path), f)
}

// Load reads r as CSV or XLSX depending on the extension of name.
func (l *Loader) Load(name string, r io.Reader) (*models.Dataset, error) {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".csv":
		return l.LoadCSV(r)
	case ".xlsx":
		return l.LoadXLSX(r)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, name)
	}
}

// LoadCSV reads a comma separated export.
func (l *Loader) LoadCSV(r io.Reader) (*models.Dataset, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("loader: parse csv: %w", err)
	}
	if len(rows) == 0 {
		return nil, ErrEmptyFile
	}
	return l.FromRows(rows[0], rows[1:])
}

// LoadXLSX reads the first sheet of a workbook.
func (l *Loader) LoadXLSX(r io.Reader) (*models.Dataset, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("loader: open workbook: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, ErrEmptyFile
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("loader: read sheet %q: %w", sheets[0], err)
	}
	if len(rows) == 0 {
		return nil, ErrEmptyFile
	}
	return l.FromRows(rows[0], rows[1:])
}

// FromRows types raw cells and keeps reservation rows only. Date columns become
// time.Time, Earnings year becomes the year as int, columns whose non-empty
// cells are all numeric (formatted amounts included) become float64, and
// empty cells become nil.
func (l *Loader) FromRows(header []string, rows [][]string) (*models.Dataset, error) {
	columns := normaliseHeader(header)
	if len(columns) == 0 {
		return nil, ErrEmptyFile
	}

	var missing []string
	index := make(map[string]int, len(columns))
	for i, c := range columns {
		index[c] = i
	}
	for _, c := range RequiredUploadColumns {
		if _, ok := index[c]; !ok {
			missing = append(missing, c)
		}
	}
	if len(missing) > 0 {
		return nil, &MissingColumnsError{Op: "load", Columns: missing}
	}

	typed := make([][]any, len(columns))
	for col, name := range columns {
		cells := make([]string, len(rows))
		for i, row := range rows {
			if col < len(row) {
				cells[i] = strings.TrimSpace(row[col])
			}
		}
		values, err := l.typeColumn(name, cells)
		if err != nil {
			return nil, err
		}
		typed[col] = values
	}

	typeIdx := index[models.ColType]
	ds := &models.Dataset{Columns: columns, Records: make([]models.Record, 0, len(rows))}
	for i := range rows {
		if typed[typeIdx][i] != models.TypeReservation {
			continue
		}
		rec := make(models.Record, len(columns))
		for col, name := range columns {
			rec[name] = typed[col][i]
		}
		ds.Records = append(ds.Records, rec)
	}

	l.logger.Info("[loader] Loaded %d rows, kept %d reservations", len(rows), len(ds.Records))
	return ds, nil
}

// normaliseHeader trims names, strips a UTF-8 BOM and suffixes repeated
// names with ".1", ".2", ...
func normaliseHeader(header []string) []string {
	seen := make(map[string]int, len(header))
	out := make([]string, len(header))
	for i, h := range header {
		h = strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))
		if n := seen[h]; n > 0 {
			seen[h] = n + 1
			h = fmt.Sprintf("%s.%d", h, n)
		} else {
			seen[h] = 1
		}
		out[i] = h
	}
	if len(out) == 1 && out[0] == "" {
		return nil
	}
	return out
}

func (l *Loader) typeColumn(name string, cells []string) ([]any, error) {
	values := make([]any, len(cells))

	switch {
	case dateColumns[name]:
		for i, c := range cells {
			if c == "" {
				continue
			}
			t, err := parseDate(c)
			if err != nil {
				return nil, fmt.Errorf("loader: row %d column %q: %w", i+1, name, err)
			}
			values[i] = t
		}
		return values, nil

	case name == models.ColEarningsYear:
		for i, c := range cells {
			if c == "" {
				continue
			}
			year, err := parseYear(c)
			if err != nil {
				return nil, fmt.Errorf("loader: row %d column %q: %w", i+1, name, err)
			}
			values[i] = year
		}
		return values, nil

	case textColumns[name]:
		for i, c := range cells {
			if c != "" {
				values[i] = l.cleaner.Text(c)
			}
		}
		return values, nil
	}

	numeric := true
	for i, c := range cells {
		if c == "" {
			continue
		}
		f, ok := l.cleaner.Amount(c)
		if !ok {
			numeric = false
			break
		}
		values[i] = f
	}
	if numeric {
		return values, nil
	}
	for i, c := range cells {
		if c == "" {
			values[i] = nil
		} else {
			values[i] = c
		}
	}
	return values, nil
}

func parseDate(s string) (time.Time, error) {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognised date %q", s)
}

func parseYear(s string) (int, error) {
	if y, err := strconv.Atoi(s); err == nil {
		return y, nil
	}
	t, err := parseDate(s)
	if err != nil {
		return 0, err
	}
	return t.Year(), nil
}
