package services

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strconv"

	"golang.org/x/sync/errgroup"

	"lexledger/internal/core"
	"lexledger/internal/installment"
	applog "lexledger/internal/log"
	"lexledger/internal/storage"
)

// FieldInstallments is the form field carrying the requested installment count.
const FieldInstallments = "installments"

const defaultConcurrency = 4

var (
	ErrInvalidStatus = errors.New("invalid entry status")
	ErrEmptyGroup    = errors.New("installment group has no entries")
)

// Publisher announces committed writes. amqp.Client implements it.
type Publisher interface {
	PublishCollectionChanged(ctx context.Context, collection, operation string, ids []string) error
}

// Change operations published after writes.
const (
	OpCreated = "created"
	OpUpdated = "updated"
	OpDeleted = "deleted"
)

// LedgerService creates and updates ledger entries, expanding parceled
// credit card payments into installment groups.
type LedgerService struct {
	repo        storage.Repository
	publisher   Publisher
	expander    *installment.Expander
	concurrency int
	logger      *applog.Logger
}

type LedgerOption func(*LedgerService)

// WithPublisher sets the change event publisher. Without one no events are sent.
func WithPublisher(p Publisher) LedgerOption {
	return func(s *LedgerService) { s.publisher = p }
}

// WithExpander overrides the installment expander.
func WithExpander(x *installment.Expander) LedgerOption {
	return func(s *LedgerService) {
		if x != nil {
			s.expander = x
		}
	}
}

// WithConcurrency bounds the parallel creates of one installment group.
func WithConcurrency(n int) LedgerOption {
	return func(s *LedgerService) {
		if n > 0 {
			s.concurrency = n
		}
	}
}

// WithLogger sets the service logger.
func WithLogger(l *applog.Logger) LedgerOption {
	return func(s *LedgerService) {
		if l != nil {
			s.logger = l
		}
	}
}

func NewLedgerService(repo storage.Repository, opts ...LedgerOption) *LedgerService {
	s := &LedgerService{
		repo:        repo,
		expander:    installment.New(),
		concurrency: defaultConcurrency,
		logger:      applog.New(applog.DefaultConfig()).WithComponent(applog.ComponentLedger),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Submit stores a raw form record. A parceled credit card payment with more
// than one installment is stored as its installment group, otherwise a
// single entry is created. The stored records are returned.
func (s *LedgerService) Submit(ctx context.Context, form storage.Record) ([]storage.Record, error) {
	rec := storage.Record(core.PrepareRecord(form))
	n, err := installmentCount(rec[FieldInstallments])
	if err != nil {
		return nil, err
	}
	if n < 1 {
		return nil, fmt.Errorf("%w: got %d", installment.ErrInvalidInstallmentCount, n)
	}
	delete(rec, FieldInstallments)

	entry, err := storage.Decode[core.LedgerEntry](rec)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", storage.ErrInvalidRecord, err)
	}

	if !installment.ShouldExpand(entry.PaymentMethod, n) {
		created, err := s.repo.Create(ctx, storage.Financial, rec)
		if err != nil {
			return nil, fmt.Errorf("create entry: %w", err)
		}
		applog.NewStructuredLogger(s.logger).LogRecordWritten(ctx, applog.OpCreate, string(storage.Financial), created.ID())
		s.publish(ctx, OpCreated, created.ID())
		return []storage.Record{created}, nil
	}

	return s.createInstallments(ctx, entry, n)
}

func (s *LedgerService) createInstallments(ctx context.Context, entry core.LedgerEntry, n int) ([]storage.Record, error) {
	parts, err := s.expander.Expand(entry, n)
	if err != nil {
		return nil, fmt.Errorf("expand installments: %w", err)
	}

	recs := make([]storage.Record, len(parts))
	for i, p := range parts {
		if recs[i], err = storage.Encode(p); err != nil {
			return nil, err
		}
	}

	created, err := s.createGroup(ctx, recs)
	if err != nil {
		return nil, err
	}

	ids := make([]string, len(created))
	for i, rec := range created {
		ids[i] = rec.ID()
	}
	group := parts[0].InstallmentGroupID
	applog.NewStructuredLogger(s.logger).LogInstallmentsCreated(ctx, group, len(created), installment.Total(parts).StringFixed(core.MoneyPlaces))
	s.publish(ctx, OpCreated, ids...)
	return created, nil
}

// createGroup persists every record or none: when any create fails the
// records already created are deleted again and the create error is returned,
// joined with the compensation error if cleanup failed too.
func (s *LedgerService) createGroup(ctx context.Context, recs []storage.Record) ([]storage.Record, error) {
	created := make([]storage.Record, len(recs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)
	for i, rec := range recs {
		i, rec := i, rec
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			out, err := s.repo.Create(gctx, storage.Financial, rec)
			if err != nil {
				return fmt.Errorf("create installment %d/%d: %w", i+1, len(recs), err)
			}
			created[i] = out
			return nil
		})
	}

	err := g.Wait()
	if err == nil {
		return created, nil
	}

	if cerr := s.compensate(context.WithoutCancel(ctx), created); cerr != nil {
		return nil, errors.Join(err, cerr)
	}
	return nil, err
}

func (s *LedgerService) compensate(ctx context.Context, created []storage.Record) error {
	var errs []error
	removed := 0
	for _, rec := range created {
		if rec == nil {
			continue
		}
		if err := s.repo.Delete(ctx, storage.Financial, rec.ID()); err != nil {
			errs = append(errs, fmt.Errorf("delete installment %s: %w", rec.ID(), err))
			continue
		}
		removed++
	}

	fields := applog.NewFields().WithOperation(applog.OpCompensate)
	fields[applog.FieldCount] = removed
	if len(errs) > 0 {
		err := fmt.Errorf("compensate installment group: %w", errors.Join(errs...))
		applog.NewStructuredLogger(s.logger).LogError(ctx, "Installment compensation incomplete", err, applog.ComponentLedger, applog.OpCompensate, fields)
		return err
	}
	s.logger.WarnContext(ctx, "Installment group rolled back", fields.ToSlice()...)
	return nil
}

// SetStatus changes the status of one entry.
func (s *LedgerService) SetStatus(ctx context.Context, id string, status core.EntryStatus) (storage.Record, error) {
	if !validStatus(status) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidStatus, status)
	}
	updated, err := s.repo.Update(ctx, storage.Financial, id, storage.Record{"status": string(status)})
	if err != nil {
		return nil, fmt.Errorf("set status of %s: %w", id, err)
	}
	applog.NewStructuredLogger(s.logger).LogRecordWritten(ctx, applog.OpUpdate, string(storage.Financial), id)
	s.publish(ctx, OpUpdated, id)
	return updated, nil
}

// CancelInstallments marks every entry of an installment group as cancelled
// and returns the updated entries in installment order.
func (s *LedgerService) CancelInstallments(ctx context.Context, groupID string) ([]storage.Record, error) {
	group, err := storage.InstallmentGroup(ctx, s.repo, groupID)
	if err != nil {
		return nil, fmt.Errorf("load installment group %s: %w", groupID, err)
	}
	if len(group) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrEmptyGroup, groupID)
	}

	out := make([]storage.Record, 0, len(group))
	ids := make([]string, 0, len(group))
	for _, rec := range group {
		updated, err := s.repo.Update(ctx, storage.Financial, rec.ID(), storage.Record{"status": string(core.StatusCancelled)})
		if err != nil {
			if len(ids) > 0 {
				s.publish(ctx, OpUpdated, ids...)
			}
			return out, fmt.Errorf("cancel installment %s: %w", rec.ID(), err)
		}
		out = append(out, updated)
		ids = append(ids, rec.ID())
	}

	s.logger.InfoContext(ctx, "Installment group cancelled",
		applog.NewFields().WithInstallments(groupID, len(out)).WithOperation(applog.OpUpdate).ToSlice()...)
	s.publish(ctx, OpUpdated, ids...)
	return out, nil
}

// Delete removes one entry.
func (s *LedgerService) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, storage.Financial, id); err != nil {
		return fmt.Errorf("delete entry %s: %w", id, err)
	}
	applog.NewStructuredLogger(s.logger).LogRecordWritten(ctx, applog.OpDelete, string(storage.Financial), id)
	s.publish(ctx, OpDeleted, id)
	return nil
}

// publish never fails the write; the records are already stored.
func (s *LedgerService) publish(ctx context.Context, op string, ids ...string) {
	publishChange(ctx, s.publisher, s.logger, storage.Financial, op, ids)
}

func publishChange(ctx context.Context, p Publisher, logger *applog.Logger, c storage.Collection, op string, ids []string) {
	if p == nil {
		logger.DebugContext(ctx, "No publisher configured, skipping change event", applog.FieldCollection, string(c))
		return
	}
	if err := p.PublishCollectionChanged(ctx, string(c), op, ids); err != nil {
		fields := applog.NewFields().WithRecord(string(c), "")
		fields[applog.FieldCount] = len(ids)
		applog.NewStructuredLogger(logger).LogError(ctx, "Failed to publish change event", err, logger.Component(), applog.OpPublish, fields)
	}
}

func validStatus(status core.EntryStatus) bool {
	return slices.Contains([]core.EntryStatus{core.StatusPending, core.StatusPaid, core.StatusOverdue, core.StatusCancelled}, status)
}

// installmentCount reads the installment form field. Missing means one.
func installmentCount(v any) (int, error) {
	switch n := v.(type) {
	case nil:
		return 1, nil
	case int:
		return n, nil
	case int64:
		return int(n), nil
	case float64:
		if n != float64(int(n)) {
			return 0, fmt.Errorf("%w: %v", installment.ErrInvalidInstallmentCount, n)
		}
		return int(n), nil
	case string:
		i, err := strconv.Atoi(n)
		if err != nil {
			return 0, fmt.Errorf("%w: %q", installment.ErrInvalidInstallmentCount, n)
		}
		return i, nil
	default:
		return 0, fmt.Errorf("%w: %v", installment.ErrInvalidInstallmentCount, v)
	}
}
