package cli

import (
	"context"
	"errors"
	"time"

	"github.com/spf13/cobra"

	"lexledger/internal/config"
	"lexledger/internal/core"
	"lexledger/internal/period"
)

var version = "0.1.0"

// AppFactory builds the App for commands that touch the store.
type AppFactory func(ctx context.Context) (*App, error)

// Options configure the command tree.
type Options struct {
	Config *config.Config
	NewApp AppFactory
	// Now overrides the wall clock used as the default reference date.
	Now func() time.Time
}

type runtime struct {
	opts     Options
	resolver *period.Resolver
	app      *App
}

// NewRootCommand builds the lexledger command tree.
func NewRootCommand(opts Options) *cobra.Command {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	rt := &runtime{opts: opts}
	if opts.Config != nil {
		rt.resolver = period.NewResolver(period.WithMaxMonth(opts.Config.PeriodMaxMonth))
	} else {
		rt.resolver = period.NewResolver()
	}

	root := &cobra.Command{
		Use:   "lexledger",
		Short: "Ledger, installment and report tooling for the firm back office",
		Long: `lexledger manages the financial ledger of the firm back office and builds
period reports (cash flow, categories, process and visit distributions,
campaign metrics) over the record store.

Configuration is read from the environment and an optional .env file.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			return rt.close()
		},
	}
	root.PersistentFlags().String("ref", "", "Reference date (format: YYYY-MM-DD, default: today)")

	root.AddCommand(
		newPeriodCommand(rt),
		newReportCommand(rt),
		newLedgerCommand(rt),
		newReviewCommand(rt),
		newSchemaCommand(rt),
	)
	return root
}

// App returns the lazily built App shared by one command run.
func (rt *runtime) App(ctx context.Context) (*App, error) {
	if rt.app != nil {
		return rt.app, nil
	}
	if rt.opts.NewApp == nil {
		return nil, errors.New("no storage backend configured")
	}
	app, err := rt.opts.NewApp(ctx)
	if err != nil {
		return nil, err
	}
	rt.app = app
	return app, nil
}

func (rt *runtime) close() error {
	if rt.app == nil {
		return nil
	}
	err := rt.app.Close()
	rt.app = nil
	return err
}

// reference reads --ref, defaulting to today.
func (rt *runtime) reference(cmd *cobra.Command) (core.Date, error) {
	s, _ := cmd.Flags().GetString("ref")
	if s == "" {
		return core.DateOf(rt.opts.Now()), nil
	}
	return core.ParseDate(s)
}

// Execute runs the command tree and exits non-zero on failure.
func Execute(ctx context.Context, opts Options) int {
	root := NewRootCommand(opts)
	if err := root.ExecuteContext(ctx); err != nil {
		root.PrintErrln("Error:", err)
		return 1
	}
	return 0
}
