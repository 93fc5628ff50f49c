package storage

import (
	"strconv"

	"airbnb-analyzer/models"
)

// table is one tabular section of a report as rendered by the file exporters.
// numeric marks the columns holding counts or amounts; every other column is
// text even when a value looks like a number.
type table struct {
	title   string
	header  []string
	numeric []bool
	rows    [][]string
}

// numericExcept marks all width columns numeric except the text indexes.
func numericExcept(width int, text ...int) []bool {
	out := make([]bool, width)
	for i := range out {
		out[i] = true
	}
	for _, i := range text {
		out[i] = false
	}
	return out
}

func (t table) isNumeric(col int) bool {
	return col < len(t.numeric) && t.numeric[col]
}

func amount(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}

func number(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// reportTables flattens every available section of r in display order.
func reportTables(r *models.Report) []table {
	var out []table

	out = append(out, table{
		title:   "Dataset",
		header:  []string{"ID", "Source", "Reservations", "Columns", "Loaded at"},
		numeric: []bool{false, false, true, true, false},
		rows: [][]string{{
			r.Info.ID, r.Info.Source, strconv.Itoa(r.Info.Rows),
			strconv.Itoa(len(r.Info.Columns)), r.Info.LoadedAt.Format("2006-01-02 15:04:05"),
		}},
	})

	if e := r.Earnings; e != nil {
		out = append(out, table{
			title:   "Earnings",
			header:  []string{"Gross earnings", "Adjustments", "Service fees", "Tax withheld", "Total"},
			numeric: numericExcept(5),
			rows: [][]string{{
				amount(e.GrossEarnings), amount(e.Adjustments), amount(e.ServiceFees),
				amount(e.TaxWithheld), amount(e.Total),
			}},
		})
	}

	if p := r.Performance; p != nil {
		out = append(out, table{
			title:   "Performance",
			header:  []string{"Total nights", "Average nights"},
			numeric: numericExcept(2),
			rows:    [][]string{{number(p.TotalNights), amount(p.AverageNights)}},
		})
	}

	if len(r.Listings) > 0 {
		t := table{title: "Listings", header: append([]string{models.ColListing}, models.ListingStatColumns...)}
		t.numeric = numericExcept(len(t.header), 0)
		for _, l := range r.Listings {
			row := []string{l.Listing}
			for _, v := range l.Values() {
				row = append(row, number(v))
			}
			t.rows = append(t.rows, row)
		}
		out = append(out, t)
	}

	if len(r.Customers) > 0 {
		t := table{
			title:   "Customers",
			header:  []string{"Guest", "Total Gross Earnings", "Average Earnings per Booking", "Bookings Executed", "Total Nights"},
			numeric: numericExcept(5, 0),
		}
		for _, c := range r.Customers {
			t.rows = append(t.rows, []string{
				c.Guest, amount(c.TotalGrossEarnings), amount(c.AverageEarnings),
				strconv.Itoa(c.BookingsExecuted), number(c.TotalNights),
			})
		}
		out = append(out, t)
	}

	for _, d := range []struct {
		title string
		dist  *models.Distribution
	}{{"Nights distribution", r.Nights}, {"Lead time distribution", r.LeadTime}} {
		if d.dist == nil {
			continue
		}
		t := table{title: d.title, header: []string{"Bucket", "Bookings"}, numeric: []bool{false, true}}
		for _, b := range d.dist.Buckets {
			t.rows = append(t.rows, []string{b.Label, strconv.Itoa(b.Count)})
		}
		if d.dist.Skipped > 0 {
			t.rows = append(t.rows, []string{"skipped", strconv.Itoa(d.dist.Skipped)})
		}
		out = append(out, t)
	}

	if len(r.Warnings) > 0 {
		t := table{title: "Warnings", header: []string{"Warning"}}
		for _, w := range r.Warnings {
			t.rows = append(t.rows, []string{w})
		}
		out = append(out, t)
	}
	return out
}
