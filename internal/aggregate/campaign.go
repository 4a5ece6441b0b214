package aggregate

import (
	"github.com/shopspring/decimal"

	"lexledger/internal/core"
)

type (
	CampaignMetrics struct {
		ID          string           `json:"id"`
		Name        string           `json:"name"`
		Status      string           `json:"status"`
		Budget      decimal.Decimal  `json:"budget"`
		Spent       decimal.Decimal  `json:"spent"`
		Impressions int64            `json:"impressions"`
		Clicks      int64            `json:"clicks"`
		Leads       int64            `json:"leads"`
		CTR         decimal.Decimal  `json:"ctr"`
		CostPerLead *decimal.Decimal `json:"cost_per_lead,omitempty"`
	}

	CampaignTotals struct {
		Budget decimal.Decimal `json:"budget"`
		Spent  decimal.Decimal `json:"spent"`
		Leads  int64           `json:"leads"`
		Clicks int64           `json:"clicks"`
		Active int             `json:"active"`
	}
)

var hundred = decimal.NewFromInt(100)

// CTR returns clicks/impressions*100 rounded to two places, zero without impressions.
func CTR(clicks, impressions int64) decimal.Decimal {
	if impressions <= 0 {
		return decimal.Zero
	}
	return decimal.NewFromInt(clicks).Div(decimal.NewFromInt(impressions)).Mul(hundred).Round(2)
}

// CostPerLead returns spent/leads rounded to cents, or nil without leads.
func CostPerLead(spent decimal.Decimal, leads int64) *decimal.Decimal {
	if leads <= 0 {
		return nil
	}
	cpl := core.RoundMoney(spent.Div(decimal.NewFromInt(leads)))
	return &cpl
}

// CampaignReport derives per-campaign metrics, keeping input order.
func CampaignReport(campaigns []core.Campaign) []CampaignMetrics {
	out := make([]CampaignMetrics, 0, len(campaigns))
	for _, c := range campaigns {
		out = append(out, CampaignMetrics{
			ID:          c.ID,
			Name:        c.Name,
			Status:      c.Status,
			Budget:      c.Budget,
			Spent:       c.Spent,
			Impressions: c.Impressions,
			Clicks:      c.Clicks,
			Leads:       c.Leads,
			CTR:         CTR(c.Clicks, c.Impressions),
			CostPerLead: CostPerLead(c.Spent, c.Leads),
		})
	}
	return out
}

// SumCampaigns totals budget, spend, leads and clicks and counts running campaigns.
func SumCampaigns(campaigns []core.Campaign) CampaignTotals {
	t := CampaignTotals{Budget: decimal.Zero, Spent: decimal.Zero}
	for _, c := range campaigns {
		t.Budget = t.Budget.Add(c.Budget)
		t.Spent = t.Spent.Add(c.Spent)
		t.Leads += c.Leads
		t.Clicks += c.Clicks
		if c.Status == core.CampaignActive {
			t.Active++
		}
	}
	return t
}
