package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"lexledger/internal/period"
	"lexledger/internal/sheets"
)

func newPeriodCommand(rt *runtime) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "period",
		Short: "Resolve and navigate report periods",
	}

	resolve := &cobra.Command{
		Use:   "resolve",
		Short: "Print the date range of a period selection",
		Example: `  lexledger period resolve --kind last_3_months --ref 2024-03-15
  lexledger period resolve --kind custom_month --month 2024-02`,
		RunE: func(cmd *cobra.Command, args []string) error {
			sel, err := rt.selection(cmd)
			if err != nil {
				return err
			}
			printSelection(cmd.OutOrStdout(), sel)
			return nil
		},
	}
	addPeriodFlags(resolve)

	shift := &cobra.Command{
		Use:   "shift",
		Short: "Move a month selection one month back or forward",
		Example: `  lexledger period shift --kind custom_month --month 2024-01 --direction prev
  lexledger period shift --kind current_month --direction next`,
		RunE: func(cmd *cobra.Command, args []string) error {
			sel, err := rt.selection(cmd)
			if err != nil {
				return err
			}
			dirFlag, _ := cmd.Flags().GetString("direction")
			dir, err := parseDirection(dirFlag)
			if err != nil {
				return err
			}
			if dir == period.Next && !rt.resolver.CanAdvance(sel) {
				fmt.Fprintf(cmd.ErrOrStderr(), "Already at the last selectable month (%s)\n", rt.resolver.MaxMonth())
			}
			shifted, err := rt.resolver.ShiftMonth(sel, dir)
			if err != nil {
				return err
			}
			printSelection(cmd.OutOrStdout(), shifted)
			return nil
		},
	}
	addPeriodFlags(shift)
	shift.Flags().String("direction", "next", "Navigation direction (prev or next)")

	kinds := &cobra.Command{
		Use:   "kinds",
		Short: "List the supported period kinds",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, k := range period.Kinds() {
				fmt.Fprintf(cmd.OutOrStdout(), "%-14s %s\n", k, sheets.PeriodLabel(period.Selection{Kind: k}))
			}
			return nil
		},
	}

	cmd.AddCommand(resolve, shift, kinds)
	return cmd
}

func addPeriodFlags(cmd *cobra.Command) {
	cmd.Flags().String("kind", string(period.CurrentMonth), "Period kind (see 'lexledger period kinds')")
	cmd.Flags().String("month", "", "Month for custom_month (format: YYYY-MM)")
}

// selection resolves --kind, --month and --ref.
func (rt *runtime) selection(cmd *cobra.Command) (period.Selection, error) {
	kindFlag, _ := cmd.Flags().GetString("kind")
	monthFlag, _ := cmd.Flags().GetString("month")

	kind, err := period.ParseKind(kindFlag)
	if err != nil {
		return period.Selection{}, err
	}
	ref, err := rt.reference(cmd)
	if err != nil {
		return period.Selection{}, err
	}

	var custom *period.YearMonth
	if monthFlag != "" {
		ym, err := period.ParseYearMonth(monthFlag)
		if err != nil {
			return period.Selection{}, err
		}
		custom = &ym
	}
	return rt.resolver.Resolve(kind, ref, custom)
}

func parseDirection(s string) (period.Direction, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "next", "+1", "1":
		return period.Next, nil
	case "prev", "previous", "-1":
		return period.Previous, nil
	default:
		return 0, fmt.Errorf("%w: %q", period.ErrInvalidDirection, s)
	}
}

func printSelection(w io.Writer, sel period.Selection) {
	fmt.Fprintf(w, "Período: %s\n", sheets.PeriodLabel(sel))
	if !sel.Bounded() {
		fmt.Fprintln(w, "Intervalo: sem limite")
		return
	}
	fmt.Fprintf(w, "Início: %s\n", sel.Start)
	fmt.Fprintf(w, "Fim: %s\n", sel.End)
}
