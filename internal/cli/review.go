package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"lexledger/internal/review"
)

func newReviewCommand(rt *runtime) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "review",
		Short: "Processes overdue for review",
	}

	list := &cobra.Command{
		Use:   "list",
		Short: "List processes not reviewed for 30 days or more, oldest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			now, err := rt.reference(cmd)
			if err != nil {
				return err
			}
			app, err := rt.App(cmd.Context())
			if err != nil {
				return err
			}
			stale, err := app.Reviews.Pending(cmd.Context(), now)
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			defer w.Flush()
			fmt.Fprintln(w, "ID\tProcesso\tCliente\tStatus\tDias")
			for _, p := range stale {
				days, _ := review.DaysSinceReview(p, now)
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%d\n", p.ID, p.Number, p.ClientName, p.Status, days)
			}
			return nil
		},
	}

	mark := &cobra.Command{
		Use:   "mark <process-id>",
		Short: "Record that a process was reviewed",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			now, err := rt.reference(cmd)
			if err != nil {
				return err
			}
			app, err := rt.App(cmd.Context())
			if err != nil {
				return err
			}
			p, err := app.Reviews.MarkReviewed(cmd.Context(), args[0], now)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Process %s reviewed on %s\n", p.Number, p.LastReviewDate)
			return nil
		},
	}

	cmd.AddCommand(list, mark)
	return cmd
}
