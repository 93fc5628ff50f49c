package models

// Earnings is the payout breakdown across all reservations.
type Earnings struct {
	GrossEarnings float64 `json:"gross_earnings"`
	// Adjustments is reserved: no export column maps to it yet, so it is
	// always zero.
	Adjustments float64 `json:"adjustments"`
	ServiceFees float64 `json:"service_fees"`
	TaxWithheld float64 `json:"tax_withheld"`
	Total       float64 `json:"total"`
}

// PerformanceStats summarises occupancy.
type PerformanceStats struct {
	TotalNights   float64 `json:"total_nights"`
	AverageNights float64 `json:"average_nights"`
}

// ListingStatColumns are the compound column names of a listing rollup, in
// output order.
var ListingStatColumns = []string{
	"Nights_sum", "Nights_mean", "Nights_max",
	"Amount_sum", "Amount_mean", "Amount_max",
	"Paid out_sum",
	"Service fee_sum",
	"Fast pay fee_sum",
	"Cleaning fee_sum",
	"Occupancy taxes_sum",
	"Guest_nunique", "Guest_count",
}

// ListingStat is the rollup of one listing.
type ListingStat struct {
	Listing           string  `json:"Listing"`
	NightsSum         float64 `json:"Nights_sum"`
	NightsMean        float64 `json:"Nights_mean"`
	NightsMax         float64 `json:"Nights_max"`
	AmountSum         float64 `json:"Amount_sum"`
	AmountMean        float64 `json:"Amount_mean"`
	AmountMax         float64 `json:"Amount_max"`
	PaidOutSum        float64 `json:"Paid out_sum"`
	ServiceFeeSum     float64 `json:"Service fee_sum"`
	FastPayFeeSum     float64 `json:"Fast pay fee_sum"`
	CleaningFeeSum    float64 `json:"Cleaning fee_sum"`
	OccupancyTaxesSum float64 `json:"Occupancy taxes_sum"`
	GuestNunique      int     `json:"Guest_nunique"`
	GuestCount        int     `json:"Guest_count"`
}

// Values returns the aggregates in ListingStatColumns order.
func (s ListingStat) Values() []float64 {
	return []float64{
		s.NightsSum, s.NightsMean, s.NightsMax,
		s.AmountSum, s.AmountMean, s.AmountMax,
		s.PaidOutSum,
		s.ServiceFeeSum,
		s.FastPayFeeSum,
		s.CleaningFeeSum,
		s.OccupancyTaxesSum,
		float64(s.GuestNunique), float64(s.GuestCount),
	}
}

// FiscalTotal is the listing's amount net of service fees.
func (s ListingStat) FiscalTotal() float64 {
	return s.AmountSum - s.ServiceFeeSum
}

// CustomerStat ranks one repeat guest.
type CustomerStat struct {
	Guest              string  `json:"Guest"`
	TotalGrossEarnings float64 `json:"Total Gross Earnings"`
	AverageEarnings    float64 `json:"Average Earnings per Booking"`
	BookingsExecuted   int     `json:"Bookings Executed"`
	TotalNights        float64 `json:"Total Nights"`
}

// Bucket is one histogram bin.
type Bucket struct {
	Label string  `json:"label"`
	Lower float64 `json:"lower"`
	// Upper is +Inf for the open-ended last bin; JSON consumers should rely
	// on Label instead.
	Upper float64 `json:"-"`
	Count int     `json:"count"`
}

// Distribution is a labelled histogram over one numeric column.
type Distribution struct {
	Column  string   `json:"column"`
	Buckets []Bucket `json:"buckets"`
	// Skipped counts values that were missing or fell outside every bin.
	Skipped int `json:"skipped"`
}

// Findings highlights the busiest and quietest buckets of a distribution.
type Findings struct {
	MostFrequent  []string `json:"most_frequent"`
	MostCount     int      `json:"most_count"`
	LeastFrequent []string `json:"least_frequent"`
	LeastCount    int      `json:"least_count"`
	Summary       string   `json:"summary"`
}

// Report bundles every view of one dataset. Sections that failed are nil and
// explained in Warnings.
type Report struct {
	Info         DatasetInfo       `json:"info"`
	Earnings     *Earnings         `json:"earnings,omitempty"`
	Performance  *PerformanceStats `json:"performance,omitempty"`
	Listings     []ListingStat     `json:"listings,omitempty"`
	Customers    []CustomerStat    `json:"customers,omitempty"`
	Nights       *Distribution     `json:"nights_distribution,omitempty"`
	LeadTime     *Distribution     `json:"lead_time_distribution,omitempty"`
	LeadFindings *Findings         `json:"lead_time_findings,omitempty"`
	Warnings     []string          `json:"warnings,omitempty"`
}
