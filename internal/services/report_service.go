package services

import (
	"context"
	"fmt"
	"time"

	"lexledger/internal/aggregate"
	"lexledger/internal/core"
	applog "lexledger/internal/log"
	"lexledger/internal/period"
	"lexledger/internal/sheets"
	"lexledger/internal/storage"
)

// ReportService builds period reports from the current store contents.
type ReportService struct {
	repo   storage.Repository
	logger *applog.Logger
}

func NewReportService(repo storage.Repository, logger *applog.Logger) *ReportService {
	if logger == nil {
		logger = applog.New(applog.DefaultConfig())
	}
	return &ReportService{repo: repo, logger: logger.WithComponent(applog.ComponentReport)}
}

// Build loads a snapshot and aggregates it for sel. now anchors the
// trailing series window of unbounded selections.
func (s *ReportService) Build(ctx context.Context, sel period.Selection, now core.Date) (aggregate.Result, error) {
	start := time.Now()
	snap, err := storage.LoadSnapshot(ctx, s.repo)
	if err != nil {
		return aggregate.Result{}, fmt.Errorf("load snapshot: %w", err)
	}

	res := aggregate.Aggregate(aggregate.Input{
		Period:    sel,
		Now:       now,
		Entries:   snap.Entries,
		Processes: snap.Processes,
		Visits:    snap.Visits,
		Campaigns: snap.Campaigns,
		Clients:   snap.Clients,
	})

	fields := applog.NewFields().
		WithPeriod(string(sel.Kind), sel.Start.String(), sel.End.String()).
		WithOperation(applog.OpAggregate)
	fields[applog.FieldCount] = len(snap.Entries)
	fields[applog.FieldDuration] = time.Since(start).Milliseconds()
	s.logger.DebugContext(ctx, "Report built", fields.ToSlice()...)
	return res, nil
}

// Export writes the rows of res through w.
func (s *ReportService) Export(ctx context.Context, w sheets.ReportWriter, res aggregate.Result) (string, error) {
	ref, err := w.WriteReport(ctx, sheets.BuildReportRows(res))
	if err != nil {
		return "", fmt.Errorf("export report: %w", err)
	}
	fields := applog.NewFields().
		WithPeriod(string(res.Period.Kind), res.Period.Start.String(), res.Period.End.String()).
		WithOperation(applog.OpExport)
	fields[applog.FieldSheetsRef] = ref
	s.logger.InfoContext(ctx, "Report exported", fields.ToSlice()...)
	return ref, nil
}
