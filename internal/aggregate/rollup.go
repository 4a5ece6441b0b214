package aggregate

import (
	"sort"

	"github.com/shopspring/decimal"

	"lexledger/internal/core"
)

// CategoryShare is one row of the expense rollup.
type CategoryShare struct {
	Category core.Category   `json:"category"`
	Label    string          `json:"label"`
	Total    decimal.Decimal `json:"total"`
	Percent  decimal.Decimal `json:"percent"`
}

// CategoryRollup groups paid expenses by category, largest first. Percent is
// the share of the summed categories rounded to one decimal place.
func CategoryRollup(entries []core.LedgerEntry) []CategoryShare {
	sums := make(map[core.Category]decimal.Decimal)
	total := decimal.Zero
	for _, e := range entries {
		if e.Type != core.Expense || e.Status != core.StatusPaid || e.Category == "" {
			continue
		}
		sums[e.Category] = sums[e.Category].Add(e.Value)
		total = total.Add(e.Value)
	}

	out := make([]CategoryShare, 0, len(sums))
	for cat, sum := range sums {
		out = append(out, CategoryShare{
			Category: cat,
			Label:    CategoryLabel(cat),
			Total:    sum,
			Percent:  percentOf(sum, total),
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if c := out[i].Total.Cmp(out[j].Total); c != 0 {
			return c > 0
		}
		return out[i].Category < out[j].Category
	})
	return out
}
