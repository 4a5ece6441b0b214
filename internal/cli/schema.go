package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"lexledger/internal/backend"
	"lexledger/internal/storage"
)

func newSchemaCommand(rt *runtime) *cobra.Command {
	return &cobra.Command{
		Use:   "schema",
		Short: "Show the applied schema version of the SQLite store",
		Long: `schema reads the migration version of the configured SQLite database
without applying pending migrations. The memory backend has no schema.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := rt.opts.Config
			if cfg == nil {
				return errors.New("no configuration loaded")
			}
			if backend.BackendType(cfg.DataBackend) != backend.SQLiteBackend {
				fmt.Fprintf(cmd.OutOrStdout(), "Backend %s has no schema\n", cfg.DataBackend)
				return nil
			}
			v, err := storage.SchemaVersion(cfg.SQLiteDBPath)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Schema version: %d (%s)\n", v, cfg.SQLiteDBPath)
			return nil
		},
	}
}
