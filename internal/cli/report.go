package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"lexledger/internal/aggregate"
	"lexledger/internal/core"
	"lexledger/internal/sheets"
)

func newReportCommand(rt *runtime) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Build the period report",
		Long: `Build the period report from the current store contents: paid income and
expense per month, the expense category rollup, outstanding amounts, process
and visit distributions, campaign metrics and active client summaries.

With --export the report rows are written to the configured Google Sheets
spreadsheet (GOOGLE_SPREADSHEET_ID, REPORT_SHEET_NAME).`,
		Example: `  lexledger report
  lexledger report --kind last_6_months --json
  lexledger report --kind custom_month --month 2024-02 --export`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			sel, err := rt.selection(cmd)
			if err != nil {
				return err
			}
			now, err := rt.reference(cmd)
			if err != nil {
				return err
			}
			app, err := rt.App(cmd.Context())
			if err != nil {
				return err
			}

			res, err := app.Reports.Build(cmd.Context(), sel, now)
			if err != nil {
				return err
			}

			asJSON, _ := cmd.Flags().GetBool("json")
			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				if err := enc.Encode(res); err != nil {
					return err
				}
			} else {
				printReport(cmd.OutOrStdout(), res)
			}

			export, _ := cmd.Flags().GetBool("export")
			if !export {
				return nil
			}
			if app.Writer == nil {
				return fmt.Errorf("report export is not configured: set GOOGLE_SPREADSHEET_ID and service account credentials")
			}
			ref, err := app.Reports.Export(cmd.Context(), app.Writer, res)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "Exported report to %s\n", ref)
			return nil
		},
	}
	addPeriodFlags(cmd)
	cmd.Flags().Bool("json", false, "Print the report as JSON")
	cmd.Flags().Bool("export", false, "Write the report to Google Sheets")
	return cmd
}

func printReport(out io.Writer, res aggregate.Result) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	defer w.Flush()

	fmt.Fprintf(w, "Relatório\t%s\t%s\t%s\n", sheets.PeriodLabel(res.Period), res.Period.Start, res.Period.End)

	t := res.Totals
	fmt.Fprintln(w)
	fmt.Fprintf(w, "Receitas\t%s\n", core.FormatBRL(t.Income))
	fmt.Fprintf(w, "Despesas\t%s\n", core.FormatBRL(t.Expense))
	fmt.Fprintf(w, "Lucro\t%s\n", core.FormatBRL(t.Profit))
	fmt.Fprintf(w, "A receber\t%s\n", core.FormatBRL(t.Receivable))
	fmt.Fprintf(w, "A pagar\t%s\n", core.FormatBRL(t.Payable))

	fmt.Fprintln(w)
	fmt.Fprintln(w, "Mês\tReceitas\tDespesas\tLucro")
	for _, m := range res.Monthly {
		fmt.Fprintf(w, "%s/%d\t%s\t%s\t%s\n", m.Label, m.Year, core.FormatBRL(m.Income), core.FormatBRL(m.Expense), core.FormatBRL(m.Profit))
	}

	if len(res.Categories) > 0 {
		fmt.Fprintln(w)
		fmt.Fprintln(w, "Categoria\tTotal\t%")
		for _, c := range res.Categories {
			fmt.Fprintf(w, "%s\t%s\t%s\n", c.Label, core.FormatBRL(c.Total), c.Percent.StringFixed(1))
		}
	}

	printBuckets(w, "Status do processo", res.ProcessesByStatus)
	printBuckets(w, "Área", res.ProcessesByArea)
	printBuckets(w, "Origem da visita", res.VisitsBySource)

	if len(res.Campaigns) > 0 {
		fmt.Fprintln(w)
		fmt.Fprintln(w, "Campanha\tGasto\tCliques\tLeads\tCTR (%)\tCusto por lead")
		for _, c := range res.Campaigns {
			cpl := "-"
			if c.CostPerLead != nil {
				cpl = core.FormatBRL(*c.CostPerLead)
			}
			fmt.Fprintf(w, "%s\t%s\t%d\t%d\t%s\t%s\n", c.Name, core.FormatBRL(c.Spent), c.Clicks, c.Leads, c.CTR.StringFixed(2), cpl)
		}
	}

	if len(res.Clients) > 0 {
		fmt.Fprintln(w)
		fmt.Fprintln(w, "Cliente\tRecebido\tEm aberto\tProcessos\tVisitas")
		for _, c := range res.Clients {
			fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%d\n", c.Name, core.FormatBRL(c.PaidIncome), core.FormatBRL(c.Outstanding), c.Processes, c.Visits)
		}
	}
}

func printBuckets(w io.Writer, title string, buckets []aggregate.Bucket) {
	if len(buckets) == 0 {
		return
	}
	fmt.Fprintln(w)
	fmt.Fprintf(w, "%s\tQuantidade\n", title)
	for _, b := range buckets {
		fmt.Fprintf(w, "%s\t%d\n", b.Label, b.Count)
	}
}
