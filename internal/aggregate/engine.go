// Package aggregate computes the derived report views over a snapshot of
// ledger entries, processes, visits, campaigns and clients.
//
// Everything here is a pure function of its Input: no I/O and no caching.
// Results must be recomputed whenever the underlying collections change.
package aggregate

import (
	"time"

	"github.com/shopspring/decimal"

	"lexledger/internal/core"
	"lexledger/internal/period"
)

type (
	// Input is an immutable snapshot plus the period to report on.
	Input struct {
		Period period.Selection
		// Now anchors the trailing window of unbounded periods.
		Now core.Date
		// Months overrides the months of the series when non-empty.
		Months []period.YearMonth

		Entries   []core.LedgerEntry
		Processes []core.Process
		Visits    []core.Visit
		Campaigns []core.Campaign
		Clients   []core.Client
	}

	Result struct {
		Period period.Selection `json:"period"`

		Monthly    []MonthPoint    `json:"monthly"`
		Categories []CategoryShare `json:"categories"`
		Totals     Totals          `json:"totals"`

		ProcessesByStatus []Bucket     `json:"processes_by_status"`
		ProcessesByArea   []Bucket     `json:"processes_by_area"`
		VisitsBySource    []Bucket     `json:"visits_by_source"`
		VisitSeries       []VisitPoint `json:"visit_series"`

		Campaigns      []CampaignMetrics `json:"campaigns"`
		CampaignTotals CampaignTotals    `json:"campaign_totals"`

		Clients []ClientSummary `json:"clients"`
	}

	// Totals are paid sums over the period. Outstanding (pending or overdue)
	// amounts are kept apart and never enter Income or Expense.
	Totals struct {
		Income      decimal.Decimal `json:"income"`
		Expense     decimal.Decimal `json:"expense"`
		Profit      decimal.Decimal `json:"profit"`
		Outstanding decimal.Decimal `json:"outstanding"`
		Receivable  decimal.Decimal `json:"receivable"`
		Payable     decimal.Decimal `json:"payable"`
	}
)

// Aggregate builds every report view for in.
func Aggregate(in Input) Result {
	months := in.Months
	if len(months) == 0 {
		now := in.Now
		if now.IsZero() {
			now = core.DateOf(time.Now())
		}
		months = in.Period.Months(now)
	}

	entries := filterEntries(in.Entries, in.Period)
	visits := filterVisits(in.Visits, in.Period)

	return Result{
		Period:            in.Period,
		Monthly:           MonthlySeries(in.Entries, months),
		Categories:        CategoryRollup(entries),
		Totals:            PeriodTotals(entries),
		ProcessesByStatus: ProcessesByStatus(in.Processes),
		ProcessesByArea:   ProcessesByArea(in.Processes),
		VisitsBySource:    VisitsBySource(visits),
		VisitSeries:       VisitSeries(in.Visits, months),
		Campaigns:         CampaignReport(filterCampaigns(in.Campaigns, in.Period)),
		CampaignTotals:    SumCampaigns(filterCampaigns(in.Campaigns, in.Period)),
		Clients:           ClientSummaries(in.Clients, in.Entries, in.Processes, in.Visits),
	}
}

// PeriodTotals sums already period-filtered entries.
func PeriodTotals(entries []core.LedgerEntry) Totals {
	t := Totals{
		Income:      decimal.Zero,
		Expense:     decimal.Zero,
		Outstanding: decimal.Zero,
		Receivable:  decimal.Zero,
		Payable:     decimal.Zero,
	}
	for _, e := range entries {
		switch e.Status {
		case core.StatusPaid:
			switch e.Type {
			case core.Income:
				t.Income = t.Income.Add(e.Value)
			case core.Expense:
				t.Expense = t.Expense.Add(e.Value)
			}
		case core.StatusPending, core.StatusOverdue:
			t.Outstanding = t.Outstanding.Add(e.Value)
			switch e.Type {
			case core.Income:
				t.Receivable = t.Receivable.Add(e.Value)
			case core.Expense:
				t.Payable = t.Payable.Add(e.Value)
			}
		}
	}
	t.Profit = t.Income.Sub(t.Expense)
	return t
}

func filterEntries(entries []core.LedgerEntry, sel period.Selection) []core.LedgerEntry {
	out := make([]core.LedgerEntry, 0, len(entries))
	for _, e := range entries {
		if sel.Contains(e.Date) {
			out = append(out, e)
		}
	}
	return out
}

func filterVisits(visits []core.Visit, sel period.Selection) []core.Visit {
	out := make([]core.Visit, 0, len(visits))
	for _, v := range visits {
		if sel.Contains(v.Date) {
			out = append(out, v)
		}
	}
	return out
}

func filterCampaigns(campaigns []core.Campaign, sel period.Selection) []core.Campaign {
	out := make([]core.Campaign, 0, len(campaigns))
	for _, c := range campaigns {
		if sel.Contains(c.StartDate) {
			out = append(out, c)
		}
	}
	return out
}

// percentOf returns part/total*100 rounded to one decimal, or zero when the
// total is zero.
func percentOf(part, total decimal.Decimal) decimal.Decimal {
	if total.IsZero() {
		return decimal.Zero
	}
	return part.Div(total).Mul(decimal.NewFromInt(100)).Round(1)
}
