package services

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"airbnb-analyzer/models"
)

var allColumns = []string{
	models.ColConfirmationCode, models.ColBookingDate, models.ColStartDate,
	models.ColNights, models.ColGuest, models.ColListing, models.ColAmount,
	models.ColPaidOut, models.ColServiceFee, models.ColFastPayFee,
	models.ColCleaningFee, models.ColGrossEarnings, models.ColOccupancyTaxes,
}

func day(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t
}

// booking builds a record with every column set; zero-valued strings are kept.
func booking(code, listing, guest string, nights, gross float64) models.Record {
	return models.Record{
		models.ColConfirmationCode: code,
		models.ColBookingDate:      day("2024-01-01"),
		models.ColStartDate:        day("2024-01-11"),
		models.ColNights:           nights,
		models.ColGuest:            guest,
		models.ColListing:          listing,
		models.ColAmount:           gross,
		models.ColPaidOut:          gross - 10,
		models.ColServiceFee:       10.0,
		models.ColFastPayFee:       0.0,
		models.ColCleaningFee:      5.0,
		models.ColGrossEarnings:    gross,
		models.ColOccupancyTaxes:   1.0,
	}
}

func newEngine(t *testing.T, columns []string, records ...models.Record) *ReportEngine {
	t.Helper()
	e, err := NewReportEngine(&models.Dataset{Columns: columns, Records: records})
	require.NoError(t, err)
	return e
}

func TestNewReportEngineEmpty(t *testing.T) {
	for _, ds := range []*models.Dataset{nil, {Columns: allColumns}} {
		e, err := NewReportEngine(ds)
		require.NoError(t, err)
		assert.True(t, e.Empty())
		assert.Zero(t, e.Len())
		assert.Nil(t, e.Columns())
		assert.Nil(t, e.Dataset())
	}
}

func TestNewReportEngineRejectsMalformedTables(t *testing.T) {
	tests := []struct {
		name string
		ds   *models.Dataset
	}{
		{"undeclared column", &models.Dataset{Columns: []string{"A"}, Records: []models.Record{{"B": 1.0}}}},
		{"nil record", &models.Dataset{Columns: []string{"A"}, Records: []models.Record{nil}}},
		{"duplicate column", &models.Dataset{Columns: []string{"A", "A"}, Records: []models.Record{{"A": 1.0}}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewReportEngine(tt.ds)
			assert.ErrorIs(t, err, ErrInvalidDataset)
		})
	}
}

func TestNewReportEngineCapturesColumns(t *testing.T) {
	ds := &models.Dataset{Columns: []string{models.ColNights}, Records: []models.Record{{models.ColNights: 2.0}}}
	e, err := NewReportEngine(ds)
	require.NoError(t, err)

	ds.Columns = append(ds.Columns, "Later")
	assert.Equal(t, []string{models.ColNights}, e.Columns())
	assert.Equal(t, 1, e.Len())
}

func TestEmptyEngineQueriesFail(t *testing.T) {
	e := newEngine(t, nil)

	_, err := e.Earnings()
	assert.ErrorIs(t, err, ErrDataUnavailable)
	_, err = e.Performance()
	assert.ErrorIs(t, err, ErrDataUnavailable)
	_, err = e.Listings()
	assert.ErrorIs(t, err, ErrDataUnavailable)
	_, err = e.Customers(0)
	assert.ErrorIs(t, err, ErrDataUnavailable)
	_, err = e.Bookings()
	assert.ErrorIs(t, err, ErrDataUnavailable)
}

func TestMissingColumnsAreAllNamed(t *testing.T) {
	e := newEngine(t, []string{"Other"}, models.Record{"Other": "x"})

	tests := []struct {
		name string
		run  func() error
		want []string
	}{
		{"earnings", func() error { _, err := e.Earnings(); return err },
			[]string{models.ColGrossEarnings, models.ColServiceFee, models.ColOccupancyTaxes}},
		{"performance", func() error { _, err := e.Performance(); return err },
			[]string{models.ColNights}},
		{"listings", func() error { _, err := e.Listings(); return err },
			[]string{models.ColListing, models.ColNights, models.ColAmount, models.ColPaidOut,
				models.ColServiceFee, models.ColFastPayFee, models.ColCleaningFee,
				models.ColOccupancyTaxes, models.ColGuest}},
		{"customers", func() error { _, err := e.Customers(3); return err },
			[]string{models.ColGuest, models.ColGrossEarnings, models.ColConfirmationCode, models.ColNights}},
		{"bookings", func() error { _, err := e.Bookings(); return err },
			[]string{models.ColStartDate, models.ColBookingDate}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.run()
			var mc *MissingColumnsError
			require.True(t, errors.As(err, &mc), "got %v", err)
			assert.Equal(t, tt.want, mc.Columns)
			for _, c := range tt.want {
				assert.Contains(t, err.Error(), c)
			}
		})
	}
}

func TestEarnings(t *testing.T) {
	cols := []string{models.ColGrossEarnings, models.ColServiceFee, models.ColOccupancyTaxes}
	e := newEngine(t, cols,
		models.Record{models.ColGrossEarnings: 100.0, models.ColServiceFee: 10.0, models.ColOccupancyTaxes: 5.0},
		models.Record{models.ColGrossEarnings: 200.0, models.ColServiceFee: 20.0, models.ColOccupancyTaxes: 5.0},
	)

	got, err := e.Earnings()
	require.NoError(t, err)
	assert.Equal(t, &models.Earnings{
		GrossEarnings: 300, Adjustments: 0, ServiceFees: 30, TaxWithheld: 10, Total: 260,
	}, got)
}

func TestEarningsRejectsNonNumericValues(t *testing.T) {
	cols := []string{models.ColGrossEarnings, models.ColServiceFee, models.ColOccupancyTaxes}
	e := newEngine(t, cols,
		models.Record{models.ColGrossEarnings: "lots", models.ColServiceFee: 10.0, models.ColOccupancyTaxes: 5.0},
	)

	_, err := e.Earnings()
	var ce *ComputationError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, "earnings", ce.Op)
}

func TestPerformance(t *testing.T) {
	cols := []string{models.ColNights}
	e := newEngine(t, cols,
		models.Record{models.ColNights: 1.0},
		models.Record{models.ColNights: 3},
		models.Record{models.ColNights: 5.0},
	)

	got, err := e.Performance()
	require.NoError(t, err)
	assert.Equal(t, 9.0, got.TotalNights)
	assert.Equal(t, 3.0, got.AverageNights)
}

func TestPerformanceWithoutValuesFails(t *testing.T) {
	e := newEngine(t, []string{models.ColNights}, models.Record{models.ColNights: nil})

	_, err := e.Performance()
	var ce *ComputationError
	assert.ErrorAs(t, err, &ce)
}

func TestListings(t *testing.T) {
	e := newEngine(t, allColumns,
		booking("C1", "B", "ann", 1, 100),
		booking("C2", "A", "bob", 2, 50),
		booking("C3", "A", "bob", 4, 150),
		booking("C4", "A", "cat", 3, 100),
	)

	got, err := e.Listings()
	require.NoError(t, err)
	require.Len(t, got, 2)

	a := got[0]
	assert.Equal(t, "A", a.Listing)
	assert.Equal(t, 9.0, a.NightsSum)
	assert.Equal(t, 3.0, a.NightsMean)
	assert.Equal(t, 4.0, a.NightsMax)
	assert.Equal(t, 300.0, a.AmountSum)
	assert.Equal(t, 100.0, a.AmountMean)
	assert.Equal(t, 150.0, a.AmountMax)
	assert.Equal(t, 270.0, a.PaidOutSum)
	assert.Equal(t, 30.0, a.ServiceFeeSum)
	assert.Equal(t, 15.0, a.CleaningFeeSum)
	assert.Equal(t, 3.0, a.OccupancyTaxesSum)
	assert.Equal(t, 2, a.GuestNunique)
	assert.Equal(t, 3, a.GuestCount)
	assert.Equal(t, 270.0, a.FiscalTotal())

	assert.Equal(t, "B", got[1].Listing)
	assert.Equal(t, 1, got[1].GuestCount)
	assert.Len(t, a.Values(), len(models.ListingStatColumns))
}

func TestListingsTwoRecordsOneListing(t *testing.T) {
	e := newEngine(t, allColumns,
		booking("C1", "A", "g1", 2, 10),
		booking("C2", "A", "g1", 4, 10),
	)

	got, err := e.Listings()
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, 6.0, got[0].NightsSum)
	assert.Equal(t, 3.0, got[0].NightsMean)
	assert.Equal(t, 4.0, got[0].NightsMax)
	assert.Equal(t, 1, got[0].GuestNunique)
	assert.Equal(t, 2, got[0].GuestCount)
}

func TestListingsSkipsMissingKeys(t *testing.T) {
	noListing := booking("C9", "", "zed", 1, 10)
	noListing[models.ColListing] = nil
	e := newEngine(t, allColumns, booking("C1", "A", "g1", 2, 10), noListing)

	got, err := e.Listings()
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "A", got[0].Listing)
}

func TestCustomers(t *testing.T) {
	e := newEngine(t, allColumns,
		booking("C1", "A", "once", 1, 999),
		booking("C2", "A", "twice", 2, 50),
		booking("C3", "B", "twice", 3, 150),
		booking("C4", "A", "thrice", 1, 100),
		booking("C5", "A", "thrice", 1, 100),
		booking("C6", "B", "thrice", 1, 100),
	)

	got, err := e.Customers(0)
	require.NoError(t, err)
	require.Len(t, got, 2)

	assert.Equal(t, models.CustomerStat{
		Guest: "thrice", TotalGrossEarnings: 300, AverageEarnings: 100, BookingsExecuted: 3, TotalNights: 3,
	}, got[0])
	assert.Equal(t, models.CustomerStat{
		Guest: "twice", TotalGrossEarnings: 200, AverageEarnings: 100, BookingsExecuted: 2, TotalNights: 5,
	}, got[1])
	for _, c := range got {
		assert.NotEqual(t, "once", c.Guest)
	}

	top, err := e.Customers(1)
	require.NoError(t, err)
	require.Len(t, top, 1)
	assert.Equal(t, "thrice", top[0].Guest)
}

func TestCustomersNonPositiveTopMeansNoLimit(t *testing.T) {
	e := newEngine(t, allColumns,
		booking("C1", "A", "x", 1, 10), booking("C2", "A", "x", 1, 10),
		booking("C3", "A", "y", 1, 20), booking("C4", "A", "y", 1, 20),
	)

	for _, top := range []int{0, -3} {
		got, err := e.Customers(top)
		require.NoError(t, err)
		assert.Len(t, got, 2)
	}

	got, err := e.Customers(10)
	require.NoError(t, err)
	assert.Len(t, got, 2)
}

func TestCustomersTiesKeepGuestOrder(t *testing.T) {
	e := newEngine(t, allColumns,
		booking("C1", "A", "mia", 1, 100), booking("C2", "A", "mia", 1, 100),
		booking("C3", "A", "ava", 1, 100), booking("C4", "A", "ava", 1, 100),
		booking("C5", "A", "zoe", 1, 500), booking("C6", "A", "zoe", 1, 500),
		booking("C7", "A", "kim", 1, 100), booking("C8", "A", "kim", 1, 100),
	)

	for i := 0; i < 5; i++ {
		got, err := e.Customers(0)
		require.NoError(t, err)
		guests := make([]string, len(got))
		for j, c := range got {
			guests[j] = c.Guest
		}
		assert.Equal(t, []string{"zoe", "ava", "kim", "mia"}, guests)
	}
}

func TestCustomersCountsOnlyPresentConfirmationCodes(t *testing.T) {
	noCode := booking("", "A", "x", 1, 10)
	noCode[models.ColConfirmationCode] = nil
	e := newEngine(t, allColumns, booking("C1", "A", "x", 1, 10), noCode)

	got, err := e.Customers(0)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, 1, got[0].BookingsExecuted)
	assert.Equal(t, 20.0, got[0].TotalGrossEarnings)
}

func TestBookingsIsPure(t *testing.T) {
	ds := &models.Dataset{Columns: allColumns, Records: []models.Record{
		booking("C1", "A", "x", 1, 10),
	}}
	e, err := NewReportEngine(ds)
	require.NoError(t, err)

	got, err := e.Bookings()
	require.NoError(t, err)

	assert.Equal(t, 10.0, got.Records[0][models.ColBookingToDate])
	assert.Equal(t, models.ColBookingToDate, got.Columns[len(got.Columns)-1])
	assert.NotContains(t, ds.Records[0], models.ColBookingToDate)
	assert.False(t, ds.HasColumn(models.ColBookingToDate))
	assert.Equal(t, allColumns, e.Columns())
}

func TestBookingsRepeatedKeepsOneDerivedColumn(t *testing.T) {
	e := newEngine(t, allColumns, booking("C1", "A", "x", 1, 10))

	first, err := e.Bookings()
	require.NoError(t, err)
	again, err := e.Bookings()
	require.NoError(t, err)
	assert.Equal(t, first, again)

	// Persisting the augmented view and deriving again must not duplicate it.
	reloaded, err := NewReportEngine(first)
	require.NoError(t, err)
	second, err := reloaded.Bookings()
	require.NoError(t, err)

	count := 0
	for _, c := range second.Columns {
		if c == models.ColBookingToDate {
			count++
		}
	}
	assert.Equal(t, 1, count)
	assert.Equal(t, 10.0, second.Records[0][models.ColBookingToDate])
}

func TestBookingsFractionalAndMissingDates(t *testing.T) {
	cols := []string{models.ColStartDate, models.ColBookingDate}
	e := newEngine(t, cols,
		models.Record{
			models.ColStartDate:   time.Date(2024, 3, 2, 12, 0, 0, 0, time.UTC),
			models.ColBookingDate: time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
		},
		models.Record{models.ColStartDate: nil, models.ColBookingDate: day("2024-03-01")},
	)

	got, err := e.Bookings()
	require.NoError(t, err)
	assert.Equal(t, 1.5, got.Records[0][models.ColBookingToDate])
	assert.Nil(t, got.Records[1][models.ColBookingToDate])
}

func TestBookingsRejectsNonDates(t *testing.T) {
	cols := []string{models.ColStartDate, models.ColBookingDate}
	e := newEngine(t, cols, models.Record{models.ColStartDate: "soon", models.ColBookingDate: day("2024-03-01")})

	_, err := e.Bookings()
	var ce *ComputationError
	assert.ErrorAs(t, err, &ce)
}

func TestQueriesAreDeterministic(t *testing.T) {
	e := newEngine(t, allColumns,
		booking("C1", "Loft", "a", 1, 10), booking("C2", "Cabin", "b", 2, 20),
		booking("C3", "Villa", "a", 3, 30), booking("C4", "Cabin", "b", 4, 40),
	)

	first, err := e.Listings()
	require.NoError(t, err)
	for i := 0; i < 10; i++ {
		again, err := e.Listings()
		require.NoError(t, err)
		assert.Equal(t, first, again)
	}
	assert.Equal(t, "Cabin", first[0].Listing)
	assert.Equal(t, "Loft", first[1].Listing)
	assert.Equal(t, "Villa", first[2].Listing)
}
