package services

import (
	"fmt"

	"airbnb-analyzer/models"
	"airbnb-analyzer/utils"
)

// InsightService assembles every view of an engine into one report.
type InsightService struct {
	logger *utils.Logger
}

func NewInsightService(logger *utils.Logger) *InsightService {
	return &InsightService{logger: logger}
}

// Generate runs each view independently. A failing view leaves its section
// empty and adds a warning; the others are still computed.
func (s *InsightService) Generate(info models.DatasetInfo, engine *ReportEngine, topCustomers int) *models.Report {
	report := &models.Report{Info: info}

	warn := func(section string, err error) {
		s.logger.Warn("[insights] %s unavailable: %v", section, err)
		report.Warnings = append(report.Warnings, fmt.Sprintf("%s: %v", section, err))
	}

	if earnings, err := engine.Earnings(); err != nil {
		warn("earnings", err)
	} else {
		report.Earnings = earnings
	}

	if perf, err := engine.Performance(); err != nil {
		warn("performance", err)
	} else {
		report.Performance = perf
	}

	if nights, err := NightsDistribution(engine); err != nil {
		warn("nights distribution", err)
	} else {
		report.Nights = nights
	}

	if listings, err := engine.Listings(); err != nil {
		warn("listings", err)
	} else {
		report.Listings = listings
	}

	if customers, err := engine.Customers(topCustomers); err != nil {
		warn("customers", err)
	} else {
		report.Customers = customers
	}

	if lead, err := LeadTimeDistribution(engine); err != nil {
		warn("lead time distribution", err)
	} else {
		report.LeadTime = lead
		report.LeadFindings = FindingsFor(lead)
	}

	s.logger.Info("[insights] Report ready: %d listings, %d repeat guests, %d warnings",
		len(report.Listings), len(report.Customers), len(report.Warnings))
	return report
}
