package services

import (
	"fmt"
	"math"
	"strings"

	"airbnb-analyzer/models"
)

// binning describes histogram edges. Left-closed bins are [lo, hi); right-closed
// bins are (lo, hi] with the very first bin also including its lower edge.
type binning struct {
	edges       []float64
	labels      []string
	rightClosed bool
}

var nightsBinning = binning{
	edges:  []float64{1, 2, 3, 4, 5, 6, 7, 8, 9, 10, math.Inf(1)},
	labels: []string{"1", "2", "3", "4", "5", "6", "7", "8", "9", "10+"},
}

var leadTimeBinning = binning{
	edges:       []float64{0, 5, 10, 15, 20, 25, 30, 35, 40, 45, 50, math.Inf(1)},
	labels:      []string{"0-5", "6-10", "11-15", "16-20", "21-25", "26-30", "31-35", "36-40", "41-45", "46-50", "50>"},
	rightClosed: true,
}

func (b binning) index(v float64) int {
	if math.IsNaN(v) {
		return -1
	}
	last := len(b.edges) - 2
	for i := 0; i <= last; i++ {
		lo, hi := b.edges[i], b.edges[i+1]
		if b.rightClosed {
			if (v > lo || (i == 0 && v == lo)) && v <= hi {
				return i
			}
			continue
		}
		if v >= lo && (v < hi || (i == last && v == hi)) {
			return i
		}
	}
	return -1
}

func (b binning) histogram(column string, values []*float64) *models.Distribution {
	d := &models.Distribution{Column: column, Buckets: make([]models.Bucket, len(b.labels))}
	for i, label := range b.labels {
		d.Buckets[i] = models.Bucket{Label: label, Lower: b.edges[i], Upper: b.edges[i+1]}
	}
	for _, v := range values {
		if v == nil {
			d.Skipped++
			continue
		}
		idx := b.index(*v)
		if idx < 0 {
			d.Skipped++
			continue
		}
		d.Buckets[idx].Count++
	}
	return d
}

// NightsDistribution bins reservations by length of stay: one bucket per night
// count from 1 to 9 and a final "10+" bucket.
func NightsDistribution(e *ReportEngine) (*models.Distribution, error) {
	const op = "nights distribution"
	if err := e.require(op, models.ColNights); err != nil {
		return nil, err
	}
	values, err := columnValues(op, e.data, models.ColNights)
	if err != nil {
		return nil, err
	}
	return nightsBinning.histogram(models.ColNights, values), nil
}

// LeadTimeDistribution bins reservations by booking-to-date lead time in five
// day steps up to 50 days.
func LeadTimeDistribution(e *ReportEngine) (*models.Distribution, error) {
	const op = "lead time distribution"
	augmented, err := e.Bookings()
	if err != nil {
		return nil, err
	}
	values, err := columnValues(op, augmented, models.ColBookingToDate)
	if err != nil {
		return nil, err
	}
	return leadTimeBinning.histogram(models.ColBookingToDate, values), nil
}

func columnValues(op string, ds *models.Dataset, col string) ([]*float64, error) {
	values := make([]*float64, len(ds.Records))
	for i, r := range ds.Records {
		v, ok, err := numberAt(r, col)
		if err != nil {
			return nil, &ComputationError{Op: op, Err: fmt.Errorf("row %d: %w", i, err)}
		}
		if ok {
			values[i] = &v
		}
	}
	return values, nil
}

// FindingsFor reports the most and least frequent buckets of d. Buckets with
// zero entries take part in the least-frequent ranking.
func FindingsFor(d *models.Distribution) *models.Findings {
	if d == nil || len(d.Buckets) == 0 {
		return &models.Findings{}
	}

	f := &models.Findings{MostCount: d.Buckets[0].Count, LeastCount: d.Buckets[0].Count}
	for _, b := range d.Buckets[1:] {
		f.MostCount = max(f.MostCount, b.Count)
		f.LeastCount = min(f.LeastCount, b.Count)
	}
	for _, b := range d.Buckets {
		if b.Count == f.MostCount {
			f.MostFrequent = append(f.MostFrequent, b.Label)
		}
		if b.Count == f.LeastCount {
			f.LeastFrequent = append(f.LeastFrequent, b.Label)
		}
	}

	f.Summary = fmt.Sprintf(
		"Most bookings occur %s days away from the booking with %d bookings each\n"+
			"Fewest bookings occur %s days away from the booking with %d bookings each",
		joinLabels(f.MostFrequent), f.MostCount, joinLabels(f.LeastFrequent), f.LeastCount)
	return f
}

// joinLabels renders "a", "a and b" or "a, b, and c".
func joinLabels(labels []string) string {
	if len(labels) <= 2 {
		return strings.Join(labels, " and ")
	}
	return strings.Join(labels[:len(labels)-1], ", ") + ", and " + labels[len(labels)-1]
}
