package cli

import (
	"context"
	"fmt"
	"time"

	"lexledger/internal/backend"
	"lexledger/internal/config"
	applog "lexledger/internal/log"
	"lexledger/internal/period"
	"lexledger/internal/ratelimit"
	"lexledger/internal/services"
	"lexledger/internal/sheets"
	"lexledger/internal/sheets/google"
	"lexledger/internal/storage"
)

// App is the wired object graph behind the commands.
type App struct {
	Config   *config.Config
	Logger   *applog.Logger
	Repo     storage.Repository
	Cache    *storage.CachedRepository
	Resolver *period.Resolver
	Ledger   *services.LedgerService
	Reviews  *services.ReviewService
	Reports  *services.ReportService
	// Writer is nil when report export is not configured.
	Writer sheets.ReportWriter
	Now    func() time.Time

	cleanup backend.CleanupFunc
	stop    []func()
}

// NewApp creates the storage backend named by cfg and wires the services on it.
func NewApp(ctx context.Context, cfg *config.Config, logger *applog.Logger) (*App, error) {
	bcfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		return nil, err
	}
	res, err := backend.NewFactory(logger.WithComponent(applog.ComponentBackend).Logger).CreateBackend(ctx, bcfg)
	if err != nil {
		return nil, fmt.Errorf("create backend: %w", err)
	}

	app := Assemble(cfg, logger, res.Repository, res.Publisher)
	app.Cache = res.Cache
	app.cleanup = res.Cleanup

	if cfg.SheetsEnabled() {
		w, err := google.New(ctx, cfg.GoogleSpreadsheetID, cfg.ReportSheetName, google.Credentials{
			JSON: cfg.GoogleServiceAccountJSON,
			File: cfg.GoogleServiceAccountFile,
		}, logger.WithComponent(applog.ComponentSheets).Logger)
		if err != nil {
			_ = app.Close()
			return nil, fmt.Errorf("init report export: %w", err)
		}
		limiter := ratelimit.NewLimiter(ratelimit.Config{Limit: cfg.SheetsWritesPerMinute, Window: time.Minute})
		app.Writer = sheets.NewLimitedWriter(w, limiter, cfg.GoogleSpreadsheetID)
		app.stop = append(app.stop, limiter.Stop)
	}
	return app, nil
}

// Assemble wires the services over an existing repository. publisher may be nil.
func Assemble(cfg *config.Config, logger *applog.Logger, repo storage.Repository, publisher services.Publisher) *App {
	resolver := period.NewResolver(period.WithMaxMonth(cfg.PeriodMaxMonth))
	return &App{
		Config:   cfg,
		Logger:   logger,
		Repo:     repo,
		Resolver: resolver,
		Ledger: services.NewLedgerService(repo,
			services.WithPublisher(publisher),
			services.WithConcurrency(cfg.InstallmentConcurrency),
			services.WithLogger(logger.WithComponent(applog.ComponentLedger)),
		),
		Reviews: services.NewReviewService(repo, publisher, logger),
		Reports: services.NewReportService(repo, logger),
		Now:     time.Now,
	}
}

// Close releases the backend resources. Later calls are no-ops.
func (a *App) Close() error {
	for _, stop := range a.stop {
		stop()
	}
	a.stop = nil
	if a.cleanup == nil {
		return nil
	}
	cleanup := a.cleanup
	a.cleanup = nil
	return cleanup()
}
