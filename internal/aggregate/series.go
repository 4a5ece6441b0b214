package aggregate

import (
	"time"

	"github.com/shopspring/decimal"

	"lexledger/internal/core"
	"lexledger/internal/period"
)

type (
	// MonthPoint holds paid totals for one calendar month.
	MonthPoint struct {
		Label   string          `json:"label"`
		Year    int             `json:"year"`
		Month   time.Month      `json:"month"`
		Income  decimal.Decimal `json:"income"`
		Expense decimal.Decimal `json:"expense"`
		Profit  decimal.Decimal `json:"profit"`
	}

	// VisitPoint counts visits and conversions in one calendar month.
	VisitPoint struct {
		Label       string     `json:"label"`
		Year        int        `json:"year"`
		Month       time.Month `json:"month"`
		Visits      int        `json:"visits"`
		Conversions int        `json:"conversions"`
	}
)

// MonthlySeries sums paid income and paid expense per month. Only the month
// of each entry matters; pending and overdue entries are ignored.
func MonthlySeries(entries []core.LedgerEntry, months []period.YearMonth) []MonthPoint {
	index := make(map[period.YearMonth]int, len(months))
	out := make([]MonthPoint, len(months))
	for i, ym := range months {
		index[ym] = i
		out[i] = MonthPoint{
			Label:   MonthLabel(ym.Month),
			Year:    ym.Year,
			Month:   ym.Month,
			Income:  decimal.Zero,
			Expense: decimal.Zero,
		}
	}

	for _, e := range entries {
		if e.Status != core.StatusPaid || e.Date.IsZero() {
			continue
		}
		i, ok := index[period.YearMonthOf(e.Date)]
		if !ok {
			continue
		}
		switch e.Type {
		case core.Income:
			out[i].Income = out[i].Income.Add(e.Value)
		case core.Expense:
			out[i].Expense = out[i].Expense.Add(e.Value)
		}
	}

	for i := range out {
		out[i].Profit = out[i].Income.Sub(out[i].Expense)
	}
	return out
}

// VisitSeries counts visits and converted visits per month.
func VisitSeries(visits []core.Visit, months []period.YearMonth) []VisitPoint {
	index := make(map[period.YearMonth]int, len(months))
	out := make([]VisitPoint, len(months))
	for i, ym := range months {
		index[ym] = i
		out[i] = VisitPoint{Label: MonthLabel(ym.Month), Year: ym.Year, Month: ym.Month}
	}
	for _, v := range visits {
		if v.Date.IsZero() {
			continue
		}
		i, ok := index[period.YearMonthOf(v.Date)]
		if !ok {
			continue
		}
		out[i].Visits++
		if v.Converted {
			out[i].Conversions++
		}
	}
	return out
}
