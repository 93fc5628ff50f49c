package services

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"airbnb-analyzer/models"
)

func counts(d *models.Distribution) map[string]int {
	out := make(map[string]int, len(d.Buckets))
	for _, b := range d.Buckets {
		out[b.Label] = b.Count
	}
	return out
}

func TestNightsBinningEdges(t *testing.T) {
	tests := []struct {
		v    float64
		want int
	}{
		{0.5, -1},
		{1, 0},
		{1.9, 0},
		{9, 8},
		{10, 9},
		{42, 9},
		{math.NaN(), -1},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, nightsBinning.index(tt.v), "value %v", tt.v)
	}
}

func TestLeadTimeBinningEdges(t *testing.T) {
	tests := []struct {
		v    float64
		want string
	}{
		{0, "0-5"},
		{5, "0-5"},
		{5.5, "6-10"},
		{10, "6-10"},
		{50, "46-50"},
		{50.1, "50>"},
		{365, "50>"},
	}
	for _, tt := range tests {
		idx := leadTimeBinning.index(tt.v)
		require.GreaterOrEqual(t, idx, 0, "value %v", tt.v)
		assert.Equal(t, tt.want, leadTimeBinning.labels[idx], "value %v", tt.v)
	}
	assert.Equal(t, -1, leadTimeBinning.index(-1))
}

func TestNightsDistribution(t *testing.T) {
	e := newEngine(t, []string{models.ColNights},
		models.Record{models.ColNights: 1.0},
		models.Record{models.ColNights: 1.0},
		models.Record{models.ColNights: 3},
		models.Record{models.ColNights: 14.0},
		models.Record{models.ColNights: nil},
	)

	d, err := NightsDistribution(e)
	require.NoError(t, err)
	assert.Equal(t, models.ColNights, d.Column)
	assert.Len(t, d.Buckets, 10)
	assert.Equal(t, 1, d.Skipped)

	c := counts(d)
	assert.Equal(t, 2, c["1"])
	assert.Equal(t, 1, c["3"])
	assert.Equal(t, 1, c["10+"])
	assert.Equal(t, 0, c["2"])
}

func TestNightsDistributionRequiresColumn(t *testing.T) {
	e := newEngine(t, []string{"Other"}, models.Record{"Other": 1.0})

	_, err := NightsDistribution(e)
	var mc *MissingColumnsError
	require.ErrorAs(t, err, &mc)
	assert.Equal(t, []string{models.ColNights}, mc.Columns)
}

func TestLeadTimeDistribution(t *testing.T) {
	cols := []string{models.ColStartDate, models.ColBookingDate}
	e := newEngine(t, cols,
		models.Record{models.ColBookingDate: day("2024-01-01"), models.ColStartDate: day("2024-01-03")},
		models.Record{models.ColBookingDate: day("2024-01-01"), models.ColStartDate: day("2024-01-09")},
		models.Record{models.ColBookingDate: day("2024-01-01"), models.ColStartDate: day("2024-04-01")},
		models.Record{models.ColBookingDate: nil, models.ColStartDate: day("2024-04-01")},
	)

	d, err := LeadTimeDistribution(e)
	require.NoError(t, err)
	assert.Equal(t, models.ColBookingToDate, d.Column)
	assert.Equal(t, 1, d.Skipped)

	c := counts(d)
	assert.Equal(t, 1, c["0-5"])
	assert.Equal(t, 1, c["6-10"])
	assert.Equal(t, 1, c["50>"])

	assert.False(t, e.Dataset().HasColumn(models.ColBookingToDate))
}

func TestLeadTimeDistributionEmptyEngine(t *testing.T) {
	_, err := LeadTimeDistribution(newEngine(t, nil))
	assert.ErrorIs(t, err, ErrDataUnavailable)
}

func TestFindingsFor(t *testing.T) {
	d := &models.Distribution{Buckets: []models.Bucket{
		{Label: "0-5", Count: 4},
		{Label: "6-10", Count: 1},
		{Label: "11-15", Count: 4},
		{Label: "16-20", Count: 1},
		{Label: "21-25", Count: 1},
	}}

	f := FindingsFor(d)
	assert.Equal(t, []string{"0-5", "11-15"}, f.MostFrequent)
	assert.Equal(t, 4, f.MostCount)
	assert.Equal(t, []string{"6-10", "16-20", "21-25"}, f.LeastFrequent)
	assert.Equal(t, 1, f.LeastCount)
	assert.Equal(t,
		"Most bookings occur 0-5 and 11-15 days away from the booking with 4 bookings each\n"+
			"Fewest bookings occur 6-10, 16-20, and 21-25 days away from the booking with 1 bookings each",
		f.Summary)
}

func TestFindingsForEmptyDistribution(t *testing.T) {
	assert.Equal(t, &models.Findings{}, FindingsFor(nil))
	assert.Equal(t, &models.Findings{}, FindingsFor(&models.Distribution{}))
}

func TestJoinLabels(t *testing.T) {
	assert.Equal(t, "", joinLabels(nil))
	assert.Equal(t, "a", joinLabels([]string{"a"}))
	assert.Equal(t, "a and b", joinLabels([]string{"a", "b"}))
	assert.Equal(t, "a, b, and c", joinLabels([]string{"a", "b", "c"}))
}
