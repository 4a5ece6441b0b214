package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"lexledger/internal/amqp"
	"lexledger/internal/cli"
	applog "lexledger/internal/log"
	"lexledger/internal/period"
	"lexledger/internal/worker"
)

const shutdownTimeout = 30 * time.Second

func main() {
	cfg, err := cli.LoadAndValidateConfig()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	logger, err := cli.SetupLogger(cfg)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	logger = logger.WithComponent(applog.ComponentWorker)
	logger.Info("Starting lexledger-worker")

	if cfg.AMQPURL == "" {
		logger.Error("AMQP_URL is required to consume collection changes")
		os.Exit(1)
	}

	app, err := cli.NewApp(context.Background(), cfg, logger)
	if err != nil {
		logger.Error("Failed to initialize application", "error", err)
		os.Exit(1)
	}
	if app.Writer == nil {
		logger.Info("Report export disabled - no GOOGLE_SPREADSHEET_ID provided")
	}

	// Consumer connection, separate from the publisher the services use
	consumer, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	if err != nil {
		logger.Error("Failed to initialize AMQP client", "error", err)
		_ = app.Close()
		os.Exit(1)
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	metrics := worker.NewMetrics(registry)

	// ReportPeriod is validated by the config
	kind, _ := period.ParseKind(cfg.ReportPeriod)
	var invalidator worker.Invalidator
	if app.Cache != nil {
		invalidator = app.Cache
	}
	reportWorker := worker.NewReportWorker(app.Reports, app.Writer, invalidator, logger,
		worker.WithPeriodKind(kind),
		worker.WithResolver(app.Resolver),
		worker.WithMetrics(metrics),
	)
	scanner := worker.NewReviewScanner(app.Reviews, cfg.ReviewScanInterval, logger,
		worker.WithScannerMetrics(metrics))

	var metricsServer *http.Server
	if cfg.MetricsAddr != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
		metricsServer = &http.Server{
			Addr:              cfg.MetricsAddr,
			Handler:           mux,
			ReadHeaderTimeout: 5 * time.Second,
		}
		go func() {
			if err := metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error("Metrics server failed", "error", err)
			}
		}()
		logger.Info("Serving metrics", "addr", cfg.MetricsAddr)
	}

	parent, abort := context.WithCancel(context.Background())
	defer abort()
	ctx, done := cli.GracefulShutdown(parent, logger, shutdownTimeout, func(shutdownCtx context.Context) {
		if err := scanner.Stop(shutdownCtx); err != nil {
			logger.Warn("Review scanner did not stop cleanly", "error", err)
		}
		if metricsServer != nil {
			_ = metricsServer.Shutdown(shutdownCtx)
		}
		if err := consumer.Close(); err != nil {
			logger.Warn("Failed to close AMQP consumer", "error", err)
		}
		if err := app.Close(); err != nil {
			logger.Warn("Failed to release backend", "error", err)
		}
	})

	// Bring the sheet up to date with whatever changed while the worker was down
	if err := reportWorker.ExportReport(ctx); err != nil {
		logger.Error("Startup report export failed", "error", err)
	}

	if err := scanner.Start(ctx); err != nil {
		logger.Error("Failed to start review scanner", "error", err)
	}

	go func() {
		if err := consumer.ConsumeCollectionChanged(ctx, reportWorker.HandleCollectionChanged); err != nil {
			if !errors.Is(err, context.Canceled) {
				logger.Error("Message consumption failed", "error", err)
			}
			abort()
		}
	}()

	// Periodic export for bursts of change messages
	go func() {
		ticker := time.NewTicker(cfg.ReportExportInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if err := reportWorker.ExportIfDirty(ctx); err != nil {
					logger.Error("Periodic report export failed", "error", err)
				}
			}
		}
	}()

	cli.WaitForShutdown(ctx, done)
}
