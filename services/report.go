package services

import (
	"fmt"
	"maps"
	"slices"
	"sort"
	"strconv"
	"time"

	"airbnb-analyzer/models"
)

// ReportEngine derives earnings, occupancy, listing, customer and lead-time
// views from one dataset. Queries never modify the dataset.
type ReportEngine struct {
	data    *models.Dataset
	length  int
	columns []string
}

// NewReportEngine builds an engine over ds. A nil or empty dataset yields an
// empty engine whose queries fail with ErrDataUnavailable.
func NewReportEngine(ds *models.Dataset) (*ReportEngine, error) {
	if ds.Len() == 0 {
		return &ReportEngine{}, nil
	}
	if err := checkShape(ds); err != nil {
		return nil, err
	}
	return &ReportEngine{
		data:    ds,
		length:  len(ds.Records),
		columns: append([]string(nil), ds.Columns...),
	}, nil
}

func checkShape(ds *models.Dataset) error {
	known := make(map[string]struct{}, len(ds.Columns))
	for _, c := range ds.Columns {
		if _, dup := known[c]; dup {
			return fmt.Errorf("%w: duplicate column %q", ErrInvalidDataset, c)
		}
		known[c] = struct{}{}
	}
	for i, r := range ds.Records {
		if r == nil {
			return fmt.Errorf("%w: record %d is nil", ErrInvalidDataset, i)
		}
		for k := range r {
			if _, ok := known[k]; !ok {
				return fmt.Errorf("%w: record %d has undeclared column %q", ErrInvalidDataset, i, k)
			}
		}
	}
	return nil
}

// Empty reports whether the engine holds no data.
func (e *ReportEngine) Empty() bool { return e.data == nil }

// Len is the record count captured at construction (0 when empty).
func (e *ReportEngine) Len() int { return e.length }

// Columns is the column list captured at construction (nil when empty).
func (e *ReportEngine) Columns() []string {
	if e.columns == nil {
		return nil
	}
	return append([]string(nil), e.columns...)
}

// Dataset returns the underlying dataset (nil when empty).
func (e *ReportEngine) Dataset() *models.Dataset { return e.data }

// require fails with ErrDataUnavailable on an empty engine, or names every
// column of cols missing from the captured column list.
func (e *ReportEngine) require(op string, cols ...string) error {
	if e.data == nil {
		return fmt.Errorf("%s: %w", op, ErrDataUnavailable)
	}
	have := make(map[string]struct{}, len(e.columns))
	for _, c := range e.columns {
		have[c] = struct{}{}
	}
	var missing []string
	for _, c := range cols {
		if _, ok := have[c]; !ok {
			missing = append(missing, c)
		}
	}
	if len(missing) > 0 {
		return &MissingColumnsError{Op: op, Columns: missing}
	}
	return nil
}

// Earnings sums gross earnings, service fees and occupancy taxes.
func (e *ReportEngine) Earnings() (*models.Earnings, error) {
	const op = "earnings"
	if err := e.require(op, models.ColGrossEarnings, models.ColServiceFee, models.ColOccupancyTaxes); err != nil {
		return nil, err
	}

	var gross, fees, taxes accumulator
	for i, r := range e.data.Records {
		if err := addAll(r, i, op,
			colAcc{models.ColGrossEarnings, &gross},
			colAcc{models.ColServiceFee, &fees},
			colAcc{models.ColOccupancyTaxes, &taxes},
		); err != nil {
			return nil, err
		}
	}

	out := &models.Earnings{
		GrossEarnings: gross.sum,
		Adjustments:   0,
		ServiceFees:   fees.sum,
		TaxWithheld:   taxes.sum,
	}
	out.Total = out.GrossEarnings + out.Adjustments - out.ServiceFees - out.TaxWithheld
	return out, nil
}

// Performance returns total and mean nights.
func (e *ReportEngine) Performance() (*models.PerformanceStats, error) {
	const op = "performance"
	if err := e.require(op, models.ColNights); err != nil {
		return nil, err
	}

	var nights accumulator
	for i, r := range e.data.Records {
		if err := addAll(r, i, op, colAcc{models.ColNights, &nights}); err != nil {
			return nil, err
		}
	}
	avg, err := nights.mean(op, models.ColNights)
	if err != nil {
		return nil, err
	}
	return &models.PerformanceStats{TotalNights: nights.sum, AverageNights: avg}, nil
}

type listingGroup struct {
	nights, amount, paidOut, serviceFee, fastPay, cleaning, taxes accumulator

	guests     map[string]struct{}
	guestCount int
}

// Listings rolls records up per listing, ordered ascending by listing.
func (e *ReportEngine) Listings() ([]models.ListingStat, error) {
	const op = "listings"
	if err := e.require(op,
		models.ColListing, models.ColNights, models.ColAmount, models.ColPaidOut,
		models.ColServiceFee, models.ColFastPayFee, models.ColCleaningFee,
		models.ColOccupancyTaxes, models.ColGuest,
	); err != nil {
		return nil, err
	}

	groups := make(map[string]*listingGroup)
	for i, r := range e.data.Records {
		key, ok := keyAt(r, models.ColListing)
		if !ok {
			continue
		}
		g := groups[key]
		if g == nil {
			g = &listingGroup{guests: make(map[string]struct{})}
			groups[key] = g
		}
		if err := addAll(r, i, op,
			colAcc{models.ColNights, &g.nights},
			colAcc{models.ColAmount, &g.amount},
			colAcc{models.ColPaidOut, &g.paidOut},
			colAcc{models.ColServiceFee, &g.serviceFee},
			colAcc{models.ColFastPayFee, &g.fastPay},
			colAcc{models.ColCleaningFee, &g.cleaning},
			colAcc{models.ColOccupancyTaxes, &g.taxes},
		); err != nil {
			return nil, err
		}
		if guest, ok := keyAt(r, models.ColGuest); ok {
			g.guests[guest] = struct{}{}
			g.guestCount++
		}
	}

	out := make([]models.ListingStat, 0, len(groups))
	for _, key := range sortedKeys(groups) {
		g := groups[key]
		stat := models.ListingStat{
			Listing:           key,
			NightsSum:         g.nights.sum,
			AmountSum:         g.amount.sum,
			PaidOutSum:        g.paidOut.sum,
			ServiceFeeSum:     g.serviceFee.sum,
			FastPayFeeSum:     g.fastPay.sum,
			CleaningFeeSum:    g.cleaning.sum,
			OccupancyTaxesSum: g.taxes.sum,
			GuestNunique:      len(g.guests),
			GuestCount:        g.guestCount,
		}
		var err error
		if stat.NightsMean, err = g.nights.mean(op, models.ColNights); err != nil {
			return nil, err
		}
		if stat.NightsMax, err = g.nights.maximum(op, models.ColNights); err != nil {
			return nil, err
		}
		if stat.AmountMean, err = g.amount.mean(op, models.ColAmount); err != nil {
			return nil, err
		}
		if stat.AmountMax, err = g.amount.maximum(op, models.ColAmount); err != nil {
			return nil, err
		}
		out = append(out, stat)
	}
	return out, nil
}

type customerGroup struct {
	gross, nights accumulator
	bookings      int
}

// Customers ranks repeat guests (more than one record) by total gross
// earnings, descending. Ties keep ascending guest order. top > 0 keeps only
// the first top rows; any other value means no limit.
func (e *ReportEngine) Customers(top int) ([]models.CustomerStat, error) {
	const op = "customers"
	if err := e.require(op,
		models.ColGuest, models.ColGrossEarnings, models.ColConfirmationCode, models.ColNights,
	); err != nil {
		return nil, err
	}

	occurrences := make(map[string]int)
	for _, r := range e.data.Records {
		if guest, ok := keyAt(r, models.ColGuest); ok {
			occurrences[guest]++
		}
	}

	groups := make(map[string]*customerGroup)
	for i, r := range e.data.Records {
		guest, ok := keyAt(r, models.ColGuest)
		if !ok || occurrences[guest] < 2 {
			continue
		}
		g := groups[guest]
		if g == nil {
			g = &customerGroup{}
			groups[guest] = g
		}
		if err := addAll(r, i, op,
			colAcc{models.ColGrossEarnings, &g.gross},
			colAcc{models.ColNights, &g.nights},
		); err != nil {
			return nil, err
		}
		if r[models.ColConfirmationCode] != nil {
			g.bookings++
		}
	}

	out := make([]models.CustomerStat, 0, len(groups))
	for _, guest := range sortedKeys(groups) {
		g := groups[guest]
		avg, err := g.gross.mean(op, models.ColGrossEarnings)
		if err != nil {
			return nil, err
		}
		out = append(out, models.CustomerStat{
			Guest:              guest,
			TotalGrossEarnings: g.gross.sum,
			AverageEarnings:    avg,
			BookingsExecuted:   g.bookings,
			TotalNights:        g.nights.sum,
		})
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].TotalGrossEarnings > out[j].TotalGrossEarnings
	})
	if top > 0 && len(out) > top {
		out = out[:top]
	}
	return out, nil
}

// Bookings returns a new dataset with ColBookingToDate set on every record:
// the days from booking to stay start, or nil when either date is missing.
// The engine's own dataset is left untouched.
func (e *ReportEngine) Bookings() (*models.Dataset, error) {
	const op = "bookings"
	if err := e.require(op, models.ColStartDate, models.ColBookingDate); err != nil {
		return nil, err
	}

	columns := append([]string(nil), e.columns...)
	if !slices.Contains(columns, models.ColBookingToDate) {
		columns = append(columns, models.ColBookingToDate)
	}

	records := make([]models.Record, len(e.data.Records))
	for i, r := range e.data.Records {
		start, okStart, err := dateAt(r, models.ColStartDate)
		if err != nil {
			return nil, &ComputationError{Op: op, Err: fmt.Errorf("row %d: %w", i, err)}
		}
		booked, okBooked, err := dateAt(r, models.ColBookingDate)
		if err != nil {
			return nil, &ComputationError{Op: op, Err: fmt.Errorf("row %d: %w", i, err)}
		}

		rec := maps.Clone(r)
		if okStart && okBooked {
			rec[models.ColBookingToDate] = start.Sub(booked).Hours() / 24
		} else {
			rec[models.ColBookingToDate] = nil
		}
		records[i] = rec
	}
	return &models.Dataset{Columns: columns, Records: records}, nil
}

// accumulator tracks sum, count and max of present numeric values.
type accumulator struct {
	sum float64
	n   int
	max float64
}

func (a *accumulator) add(v float64) {
	if a.n == 0 || v > a.max {
		a.max = v
	}
	a.sum += v
	a.n++
}

func (a *accumulator) mean(op, col string) (float64, error) {
	if a.n == 0 {
		return 0, &ComputationError{Op: op, Err: fmt.Errorf("mean of %q is undefined: no numeric values", col)}
	}
	return a.sum / float64(a.n), nil
}

func (a *accumulator) maximum(op, col string) (float64, error) {
	if a.n == 0 {
		return 0, &ComputationError{Op: op, Err: fmt.Errorf("max of %q is undefined: no numeric values", col)}
	}
	return a.max, nil
}

type colAcc struct {
	col string
	acc *accumulator
}

func addAll(r models.Record, row int, op string, targets ...colAcc) error {
	for _, t := range targets {
		v, ok, err := numberAt(r, t.col)
		if err != nil {
			return &ComputationError{Op: op, Err: fmt.Errorf("row %d: %w", row, err)}
		}
		if ok {
			t.acc.add(v)
		}
	}
	return nil
}

// numberAt reads a numeric cell. Missing cells report ok=false.
func numberAt(r models.Record, col string) (float64, bool, error) {
	switch v := r[col].(type) {
	case nil:
		return 0, false, nil
	case float64:
		return v, true, nil
	case float32:
		return float64(v), true, nil
	case int:
		return float64(v), true, nil
	case int64:
		return float64(v), true, nil
	default:
		return 0, false, fmt.Errorf("column %q: value %v (%T) is not numeric", col, v, v)
	}
}

// dateAt reads a date cell. Missing cells report ok=false.
func dateAt(r models.Record, col string) (time.Time, bool, error) {
	switch v := r[col].(type) {
	case nil:
		return time.Time{}, false, nil
	case time.Time:
		return v, true, nil
	default:
		return time.Time{}, false, fmt.Errorf("column %q: value %v (%T) is not a date", col, v, v)
	}
}

// keyAt renders a grouping key. Missing and empty cells are not grouped.
func keyAt(r models.Record, col string) (string, bool) {
	switch v := r[col].(type) {
	case nil:
		return "", false
	case string:
		return v, v != ""
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64), true
	case int:
		return strconv.Itoa(v), true
	default:
		return fmt.Sprint(v), true
	}
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
