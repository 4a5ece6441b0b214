package cli

import (
	"fmt"
	"io"
	"sort"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"lexledger/internal/core"
	"lexledger/internal/services"
	"lexledger/internal/storage"
)

// ledgerFormFlags maps command flags to ledger record fields.
var ledgerFormFlags = []struct {
	flag, field, usage string
}{
	{"type", "type", "Entry type (entrada or despesa)"},
	{"category", "category", "Category (honorarios, custas_processuais, aluguel, ...)"},
	{"value", "value", `Amount, e.g. "1.234,56" or 1234.56`},
	{"date", "date", "Entry date (format: YYYY-MM-DD, default: --ref)"},
	{"due-date", "due_date", "Due date (format: YYYY-MM-DD)"},
	{"status", "status", "Status (pendente, pago, atrasado, cancelado)"},
	{"payment-method", "payment_method", "Payment method (pix, boleto, cartao_credito_parcelado, ...)"},
	{"description", "description", "Description"},
	{"client-id", "client_id", "Client id"},
	{"client-name", "client_name", "Client name"},
	{"process-id", "process_id", "Process id"},
	{"process-number", "process_number", "Process number"},
	{"notes", "notes", "Notes"},
}

func newLedgerCommand(rt *runtime) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ledger",
		Short: "Create and update ledger entries",
	}

	add := &cobra.Command{
		Use:   "add",
		Short: "Add an entry, expanding parceled card payments into installments",
		Long: `Add an income or expense entry. A payment with method
cartao_credito_parcelado and --installments above 1 is stored as an
installment group: one paid entry per installment, 30 days apart.`,
		Example: `  lexledger ledger add --type despesa --category aluguel --value "2.500,00" --status pago
  lexledger ledger add --type despesa --category materiais --value 300 \
      --payment-method cartao_credito_parcelado --installments 3 --description Notebook`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			form, err := rt.ledgerForm(cmd)
			if err != nil {
				return err
			}
			app, err := rt.App(cmd.Context())
			if err != nil {
				return err
			}
			created, err := app.Ledger.Submit(cmd.Context(), form)
			if err != nil {
				return err
			}
			entries, err := storage.DecodeAll[core.LedgerEntry](created)
			if err != nil {
				return err
			}
			printEntries(cmd.OutOrStdout(), entries)
			return nil
		},
	}
	for _, f := range ledgerFormFlags {
		add.Flags().String(f.flag, "", f.usage)
	}
	add.Flags().Int("installments", 1, "Number of installments (2-12) for cartao_credito_parcelado")
	_ = add.MarkFlagRequired("type")
	_ = add.MarkFlagRequired("category")
	_ = add.MarkFlagRequired("value")

	list := &cobra.Command{
		Use:   "list",
		Short: "List the entries dated inside a period",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			sel, err := rt.selection(cmd)
			if err != nil {
				return err
			}
			group, _ := cmd.Flags().GetString("group")
			app, err := rt.App(cmd.Context())
			if err != nil {
				return err
			}

			var recs []storage.Record
			if group != "" {
				recs, err = storage.InstallmentGroup(cmd.Context(), app.Repo, group)
			} else {
				recs, err = app.Repo.List(cmd.Context(), storage.Financial)
			}
			if err != nil {
				return err
			}
			entries, err := storage.DecodeAll[core.LedgerEntry](recs)
			if err != nil {
				return err
			}

			var shown []core.LedgerEntry
			for _, e := range entries {
				if group != "" || sel.Contains(e.Date) {
					shown = append(shown, e)
				}
			}
			if group == "" {
				sort.SliceStable(shown, func(i, j int) bool { return shown[i].Date.Before(shown[j].Date) })
			}
			printEntries(cmd.OutOrStdout(), shown)
			return nil
		},
	}
	addPeriodFlags(list)
	list.Flags().String("group", "", "Only the entries of this installment group, in installment order")

	status := &cobra.Command{
		Use:     "status <id> <status>",
		Short:   "Change the status of an entry",
		Example: `  lexledger ledger status 6f1c... pago`,
		Args:    cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := rt.App(cmd.Context())
			if err != nil {
				return err
			}
			rec, err := app.Ledger.SetStatus(cmd.Context(), args[0], core.EntryStatus(args[1]))
			if err != nil {
				return err
			}
			e, err := storage.Decode[core.LedgerEntry](rec)
			if err != nil {
				return err
			}
			printEntries(cmd.OutOrStdout(), []core.LedgerEntry{e})
			return nil
		},
	}

	cancelGroup := &cobra.Command{
		Use:   "cancel-group <group-id>",
		Short: "Cancel every installment of a group",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := rt.App(cmd.Context())
			if err != nil {
				return err
			}
			recs, err := app.Ledger.CancelInstallments(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			entries, err := storage.DecodeAll[core.LedgerEntry](recs)
			if err != nil {
				return err
			}
			printEntries(cmd.OutOrStdout(), entries)
			return nil
		},
	}

	del := &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete an entry",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := rt.App(cmd.Context())
			if err != nil {
				return err
			}
			if err := app.Ledger.Delete(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s\n", args[0])
			return nil
		},
	}

	cmd.AddCommand(add, list, status, cancelGroup, del)
	return cmd
}

// ledgerForm collects the set flags into a raw form record. Values are left
// as typed so the service normalizes them like any other form input.
func (rt *runtime) ledgerForm(cmd *cobra.Command) (storage.Record, error) {
	form := storage.Record{}
	for _, f := range ledgerFormFlags {
		v, _ := cmd.Flags().GetString(f.flag)
		form[f.field] = v
	}
	if form["date"] == "" {
		ref, err := rt.reference(cmd)
		if err != nil {
			return nil, err
		}
		form["date"] = ref.String()
	}
	if form["status"] == "" {
		form["status"] = string(core.StatusPending)
	}
	n, _ := cmd.Flags().GetInt("installments")
	form[services.FieldInstallments] = n
	return form, nil
}

func printEntries(out io.Writer, entries []core.LedgerEntry) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	defer w.Flush()
	fmt.Fprintln(w, "ID\tData\tTipo\tCategoria\tValor\tStatus\tDescrição")
	for _, e := range entries {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			e.ID, e.Date, e.Type, e.Category, core.FormatBRL(e.Value), e.Status, e.Description)
	}
}
