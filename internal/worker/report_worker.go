package worker

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"lexledger/internal/amqp"
	"lexledger/internal/core"
	applog "lexledger/internal/log"
	"lexledger/internal/period"
	"lexledger/internal/services"
	"lexledger/internal/sheets"
	"lexledger/internal/storage"
)

// Invalidator drops cached reads of a collection. storage.CachedRepository
// implements it.
type Invalidator interface {
	Invalidate(ctx context.Context, c storage.Collection)
}

// reportCollections are the collections the report is built from.
var reportCollections = map[storage.Collection]bool{
	storage.Financial: true,
	storage.Processes: true,
	storage.Visits:    true,
	storage.Campaigns: true,
	storage.Clients:   true,
}

// ReportWorker reacts to change events: it invalidates the read cache of the
// changed collection and keeps the exported report sheet current.
type ReportWorker struct {
	reports  *services.ReportService
	writer   sheets.ReportWriter
	cache    Invalidator
	resolver *period.Resolver
	kind     period.Kind
	now      func() time.Time
	metrics  *Metrics
	logger   *applog.Logger

	dirty atomic.Bool
}

type ReportWorkerOption func(*ReportWorker)

// WithPeriodKind sets the period the exported report covers. Default current_month.
func WithPeriodKind(k period.Kind) ReportWorkerOption {
	return func(w *ReportWorker) { w.kind = k }
}

// WithResolver sets the period resolver.
func WithResolver(r *period.Resolver) ReportWorkerOption {
	return func(w *ReportWorker) {
		if r != nil {
			w.resolver = r
		}
	}
}

// WithClock overrides the wall clock used to anchor the report period.
func WithClock(now func() time.Time) ReportWorkerOption {
	return func(w *ReportWorker) { w.now = now }
}

// WithMetrics records message and export metrics.
func WithMetrics(m *Metrics) ReportWorkerOption {
	return func(w *ReportWorker) { w.metrics = m }
}

// NewReportWorker builds a worker. writer and cache may be nil, disabling
// export and invalidation respectively.
func NewReportWorker(reports *services.ReportService, writer sheets.ReportWriter, cache Invalidator, logger *applog.Logger, opts ...ReportWorkerOption) *ReportWorker {
	if logger == nil {
		logger = applog.New(applog.DefaultConfig())
	}
	w := &ReportWorker{
		reports:  reports,
		writer:   writer,
		cache:    cache,
		resolver: period.NewResolver(),
		kind:     period.CurrentMonth,
		now:      time.Now,
		logger:   logger.WithComponent(applog.ComponentWorker),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// HandleCollectionChanged processes a single change message from AMQP.
// Messages about unknown collections are acknowledged and dropped.
func (w *ReportWorker) HandleCollectionChanged(ctx context.Context, msg *amqp.CollectionChangedMessage) error {
	c, err := storage.ParseCollection(msg.Collection)
	if err != nil {
		w.logger.WarnContext(ctx, "Dropping change message", applog.FieldCollection, msg.Collection, applog.FieldError, err.Error())
		return nil
	}

	w.metrics.ObserveMessage(string(c))

	fields := applog.NewFields().WithRecord(string(c), "").WithOperation(applog.OpInvalidate)
	fields[applog.FieldCount] = len(msg.IDs)
	w.logger.DebugContext(ctx, "Processing change message", fields.ToSlice()...)

	if w.cache != nil {
		w.cache.Invalidate(ctx, c)
	}
	if reportCollections[c] {
		w.dirty.Store(true)
	}
	return nil
}

// Dirty reports whether a change arrived since the last export.
func (w *ReportWorker) Dirty() bool {
	return w.dirty.Load()
}

// ExportIfDirty exports the report when a relevant change arrived since the
// last export. This is the periodic backup for bursts of messages.
func (w *ReportWorker) ExportIfDirty(ctx context.Context) error {
	if !w.dirty.Swap(false) {
		return nil
	}
	if err := w.ExportReport(ctx); err != nil {
		w.dirty.Store(true)
		return err
	}
	return nil
}

// ExportReport builds the configured period at the current time and writes it.
func (w *ReportWorker) ExportReport(ctx context.Context) error {
	if w.writer == nil {
		return nil
	}
	return w.metrics.Track(JobReportExport).End(w.exportReport(ctx))
}

func (w *ReportWorker) exportReport(ctx context.Context) error {
	now := core.DateOf(w.now())
	sel, err := w.resolver.Resolve(w.kind, now, nil)
	if err != nil {
		return fmt.Errorf("resolve report period: %w", err)
	}
	res, err := w.reports.Build(ctx, sel, now)
	if err != nil {
		return err
	}
	if _, err := w.reports.Export(ctx, w.writer, res); err != nil {
		return err
	}
	return nil
}
