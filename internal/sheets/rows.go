package sheets

import (
	"github.com/shopspring/decimal"

	"lexledger/internal/aggregate"
	"lexledger/internal/period"
)

var periodLabels = map[period.Kind]string{
	period.CurrentMonth: "Mês atual",
	period.LastMonth:    "Mês anterior",
	period.Last3Months:  "Últimos 3 meses",
	period.Last6Months:  "Últimos 6 meses",
	period.CurrentYear:  "Ano atual",
	period.CustomMonth:  "Mês",
	period.All:          "Todo o período",
}

// PeriodLabel names a selection the way the report header shows it.
func PeriodLabel(sel period.Selection) string {
	label, ok := periodLabels[sel.Kind]
	if !ok {
		return string(sel.Kind)
	}
	if sel.Kind == period.CustomMonth {
		return label + " " + sel.YearMonth.String()
	}
	return label
}

// BuildReportRows lays out res as sheet rows: a header, then one block per
// report view separated by a blank row. Money is written as numbers.
func BuildReportRows(res aggregate.Result) [][]any {
	rows := [][]any{
		{"Relatório", PeriodLabel(res.Period), res.Period.Start.String(), res.Period.End.String()},
	}

	rows = append(rows, []any{}, []any{"Mês", "Receitas", "Despesas", "Lucro"})
	for _, m := range res.Monthly {
		rows = append(rows, []any{m.Label, money(m.Income), money(m.Expense), money(m.Profit)})
	}

	t := res.Totals
	rows = append(rows, []any{},
		[]any{"Totais"},
		[]any{"Receitas", money(t.Income)},
		[]any{"Despesas", money(t.Expense)},
		[]any{"Lucro", money(t.Profit)},
		[]any{"A receber", money(t.Receivable)},
		[]any{"A pagar", money(t.Payable)},
	)

	rows = append(rows, []any{}, []any{"Categoria", "Total", "%"})
	for _, c := range res.Categories {
		rows = append(rows, []any{c.Label, money(c.Total), c.Percent.InexactFloat64()})
	}

	rows = appendBuckets(rows, "Status do processo", res.ProcessesByStatus)
	rows = appendBuckets(rows, "Área", res.ProcessesByArea)
	rows = appendBuckets(rows, "Origem da visita", res.VisitsBySource)

	rows = append(rows, []any{}, []any{"Campanha", "Status", "Orçamento", "Gasto", "Cliques", "Leads", "CTR (%)", "Custo por lead"})
	for _, c := range res.Campaigns {
		cpl := any("")
		if c.CostPerLead != nil {
			cpl = money(*c.CostPerLead)
		}
		rows = append(rows, []any{c.Name, c.Status, money(c.Budget), money(c.Spent), c.Clicks, c.Leads, c.CTR.InexactFloat64(), cpl})
	}

	rows = append(rows, []any{}, []any{"Cliente", "Recebido", "Em aberto", "Processos", "Visitas"})
	for _, c := range res.Clients {
		rows = append(rows, []any{c.Name, money(c.PaidIncome), money(c.Outstanding), c.Processes, c.Visits})
	}
	return rows
}

func appendBuckets(rows [][]any, title string, buckets []aggregate.Bucket) [][]any {
	rows = append(rows, []any{}, []any{title, "Quantidade"})
	for _, b := range buckets {
		rows = append(rows, []any{b.Label, b.Count})
	}
	return rows
}

func money(d decimal.Decimal) float64 {
	return d.Round(2).InexactFloat64()
}
