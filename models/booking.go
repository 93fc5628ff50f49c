package models

import "time"

// Column names of the host earnings export.
const (
	ColDate             = "Date"
	ColArrivingBy       = "Arriving by date"
	ColType             = "Type"
	ColConfirmationCode = "Confirmation code"
	ColBookingDate      = "Booking date"
	ColStartDate        = "Start date"
	ColNights           = "Nights"
	ColGuest            = "Guest"
	ColListing          = "Listing"
	ColAmount           = "Amount"
	ColPaidOut          = "Paid out"
	ColServiceFee       = "Service fee"
	ColFastPayFee       = "Fast pay fee"
	ColCleaningFee      = "Cleaning fee"
	ColGrossEarnings    = "Gross earnings"
	ColOccupancyTaxes   = "Occupancy taxes"
	ColEarningsYear     = "Earnings year"

	// ColBookingToDate is derived: days between booking and stay start.
	ColBookingToDate = "booking_to_date"
)

// TypeReservation is the transaction type kept on ingestion.
const TypeReservation = "Reservation"

// Record is one transaction row. Values are nil (missing), string, float64,
// int or time.Time.
type Record map[string]any

// Dataset is an ordered table of records sharing one column set.
type Dataset struct {
	Columns []string `json:"columns"`
	Records []Record `json:"records"`
}

// Len returns the number of records; a nil Dataset has none.
func (d *Dataset) Len() int {
	if d == nil {
		return 0
	}
	return len(d.Records)
}

// HasColumn reports whether name is part of the column set.
func (d *Dataset) HasColumn(name string) bool {
	if d == nil {
		return false
	}
	for _, c := range d.Columns {
		if c == name {
			return true
		}
	}
	return false
}

// DatasetInfo describes a loaded dataset.
type DatasetInfo struct {
	ID       string    `json:"id"`
	Source   string    `json:"source"`
	Rows     int       `json:"rows"`
	Columns  []string  `json:"columns"`
	LoadedAt time.Time `json:"loaded_at"`
}
