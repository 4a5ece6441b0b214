package aggregate

import (
	"github.com/shopspring/decimal"

	"lexledger/internal/core"
)

// ClientSummary is the per-client card of the report.
type ClientSummary struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	PaidIncome  decimal.Decimal `json:"paid_income"`
	Outstanding decimal.Decimal `json:"outstanding"`
	Processes   int             `json:"processes"`
	Visits      int             `json:"visits"`
}

// ClientSummaries summarizes every active client over the full history,
// in client order.
func ClientSummaries(clients []core.Client, entries []core.LedgerEntry, processes []core.Process, visits []core.Visit) []ClientSummary {
	index := make(map[string]int)
	out := make([]ClientSummary, 0, len(clients))
	for _, c := range clients {
		if c.Status != core.ClientActive || c.ID == "" {
			continue
		}
		index[c.ID] = len(out)
		out = append(out, ClientSummary{
			ID:          c.ID,
			Name:        c.Name,
			PaidIncome:  decimal.Zero,
			Outstanding: decimal.Zero,
		})
	}

	for _, e := range entries {
		i, ok := index[e.ClientID]
		if !ok {
			continue
		}
		switch {
		case e.Type == core.Income && e.Status == core.StatusPaid:
			out[i].PaidIncome = out[i].PaidIncome.Add(e.Value)
		case e.Status == core.StatusPending || e.Status == core.StatusOverdue:
			out[i].Outstanding = out[i].Outstanding.Add(e.Value)
		}
	}
	for _, p := range processes {
		if i, ok := index[p.ClientID]; ok {
			out[i].Processes++
		}
	}
	for _, v := range visits {
		if i, ok := index[v.ClientID]; ok {
			out[i].Visits++
		}
	}
	return out
}
