package services

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/pterm/pterm"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"airbnb-analyzer/models"
)

var (
	boldGreen  = color.New(color.FgGreen, color.Bold).SprintFunc()
	boldYellow = color.New(color.FgYellow, color.Bold).SprintFunc()
)

// Printer renders a report to a terminal writer.
type Printer struct {
	w        io.Writer
	numbers  *message.Printer
	currency string
}

// NewPrinter creates a Printer writing to w and prefixing money values with
// currency (may be empty).
func NewPrinter(w io.Writer, currency string) *Printer {
	return &Printer{w: w, numbers: message.NewPrinter(language.English), currency: currency}
}

func (p *Printer) money(v float64) string {
	s := p.numbers.Sprintf("%.2f", v)
	if p.currency == "" {
		return s
	}
	return p.currency + " " + s
}

func (p *Printer) count(v float64) string {
	return p.numbers.Sprintf("%.0f", v)
}

// Print writes every available section of r.
func (p *Printer) Print(r *models.Report) error {
	pterm.DefaultHeader.WithFullWidth().WithWriter(p.w).Println("AirBnB Analyzer")
	pterm.Info.WithWriter(p.w).Printfln("Source: %s | reservations: %d | columns: %d",
		r.Info.Source, r.Info.Rows, len(r.Info.Columns))

	if r.Earnings != nil {
		p.section("Earnings Summary")
		if err := p.table([][]string{
			{"Gross earnings", "Adjustments", "Service fees", "Tax withheld", "Total"},
			{
				p.money(r.Earnings.GrossEarnings),
				p.money(r.Earnings.Adjustments),
				p.money(r.Earnings.ServiceFees),
				p.money(r.Earnings.TaxWithheld),
				boldGreen(p.money(r.Earnings.Total)),
			},
		}); err != nil {
			return err
		}
	}

	if r.Performance != nil {
		p.section("Performance Stats")
		pterm.Fprintln(p.w, fmt.Sprintf("Total nights: %s   Average nights: %s",
			boldYellow(p.count(r.Performance.TotalNights)),
			boldYellow(fmt.Sprintf("%.2f", r.Performance.AverageNights))))
	}
	if r.Nights != nil {
		if err := p.chart("Nights reserved", r.Nights); err != nil {
			return err
		}
	}

	if len(r.Listings) > 0 {
		p.section("Listing Stats")
		fiscal := [][]string{{"Listing", "Gross earnings", "Service fees", "Total"}}
		perf := [][]string{{"Listing", "Total Nights", "Average Nights", "Maximum Nights Stay", "Unique Guest Bookings", "Total Guests"}}
		for _, l := range r.Listings {
			fiscal = append(fiscal, []string{
				l.Listing, p.money(l.AmountSum), p.money(l.ServiceFeeSum), p.money(l.FiscalTotal()),
			})
			perf = append(perf, []string{
				l.Listing,
				p.count(l.NightsSum),
				fmt.Sprintf("%.2f", l.NightsMean),
				p.count(l.NightsMax),
				fmt.Sprint(l.GuestNunique),
				fmt.Sprint(l.GuestCount),
			})
		}
		pterm.Fprintln(p.w, "Fiscal report")
		if err := p.table(fiscal); err != nil {
			return err
		}
		pterm.Fprintln(p.w, "Performance")
		if err := p.table(perf); err != nil {
			return err
		}
	}

	if len(r.Customers) > 0 {
		p.section("Customers")
		rows := [][]string{{"Guest", "Total Gross Earnings", "Average Earnings per Booking", "Bookings Executed", "Total Nights"}}
		for _, c := range r.Customers {
			rows = append(rows, []string{
				c.Guest,
				p.money(c.TotalGrossEarnings),
				p.money(c.AverageEarnings),
				fmt.Sprint(c.BookingsExecuted),
				p.count(c.TotalNights),
			})
		}
		if err := p.table(rows); err != nil {
			return err
		}
	}

	if r.LeadTime != nil {
		p.section("Booking Distributions")
		if err := p.chart("Booking-to-date", r.LeadTime); err != nil {
			return err
		}
		if r.LeadFindings != nil && r.LeadFindings.Summary != "" {
			for _, line := range strings.Split(r.LeadFindings.Summary, "\n") {
				pterm.Fprintln(p.w, "  - "+line)
			}
		}
	}

	for _, w := range r.Warnings {
		pterm.Warning.WithWriter(p.w).Println(w)
	}
	return nil
}

func (p *Printer) section(title string) {
	pterm.DefaultSection.WithWriter(p.w).Println(title)
}

func (p *Printer) table(rows [][]string) error {
	return pterm.DefaultTable.WithWriter(p.w).WithHasHeader().WithBoxed().WithData(rows).Render()
}

func (p *Printer) chart(title string, d *models.Distribution) error {
	bars := make(pterm.Bars, 0, len(d.Buckets))
	total := 0
	for _, b := range d.Buckets {
		bars = append(bars, pterm.Bar{Label: b.Label, Value: b.Count})
		total += b.Count
	}
	pterm.Fprintln(p.w, title)
	if total == 0 {
		pterm.Fprintln(p.w, "  no values to chart")
		return nil
	}
	return pterm.DefaultBarChart.WithWriter(p.w).WithHorizontal().WithShowValue().WithBars(bars).Render()
}
