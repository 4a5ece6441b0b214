package services

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lexledger/internal/core"
	"lexledger/internal/installment"
	applog "lexledger/internal/log"
	"lexledger/internal/storage"
	mock_storage "lexledger/internal/storage/mocks"
	"lexledger/internal/storage/memory"
)

func parceledForm(n any) storage.Record {
	return storage.Record{
		"type":           "despesa",
		"category":       "materiais",
		"description":    "Notebook",
		"value":          "R$ 300,00",
		"date":           "2024-01-01",
		"status":         "pendente",
		"payment_method": "cartao_credito_parcelado",
		"installments":   n,
	}
}

func TestSubmitSingleEntry(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	pub := &fakePublisher{}
	svc := NewLedgerService(store, WithPublisher(pub), WithLogger(quietLogger()))

	recs, err := svc.Submit(ctx, storage.Record{
		"type":           "entrada",
		"category":       "honorarios",
		"value":          "1.200,00",
		"date":           "2024-03-10",
		"status":         "pago",
		"payment_method": "pix",
		"due_date":       "",
	})
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, 1200.0, recs[0]["value"])
	assert.NotContains(t, recs[0], "due_date")
	assert.Equal(t, 1, store.Len(storage.Financial))

	events := pub.Events()
	require.Len(t, events, 1)
	assert.Equal(t, publishedEvent{"financial", OpCreated, []string{recs[0].ID()}}, events[0])
}

func TestSubmitExpandsInstallments(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	pub := &fakePublisher{}
	svc := NewLedgerService(store,
		WithPublisher(pub),
		WithLogger(quietLogger()),
		WithExpander(installment.New(installment.WithGroupIDs(func() string { return "grp-1" }))))

	recs, err := svc.Submit(ctx, parceledForm("3"))
	require.NoError(t, err)
	require.Len(t, recs, 3)
	assert.Equal(t, 3, store.Len(storage.Financial))

	entries, err := storage.DecodeAll[core.LedgerEntry](recs)
	require.NoError(t, err)
	wantDates := []string{"2024-01-31", "2024-03-01", "2024-03-31"}
	for i, e := range entries {
		assert.Equal(t, "100", e.Value.String())
		assert.Equal(t, wantDates[i], e.Date.String())
		assert.Equal(t, core.StatusPaid, e.Status)
		assert.Equal(t, core.MethodCreditCard, e.PaymentMethod)
		assert.Equal(t, "grp-1", e.InstallmentGroupID)
		assert.Equal(t, i+1, e.InstallmentIndex)
		assert.Equal(t, 3, e.InstallmentTotal)
		assert.NotContains(t, recs[i], FieldInstallments)
	}
	assert.Equal(t, "Notebook - Parcela 2/3", entries[1].Description)

	events := pub.Events()
	require.Len(t, events, 1)
	assert.Equal(t, OpCreated, events[0].operation)
	assert.Len(t, events[0].ids, 3)
}

func TestSubmitSingleInstallmentIsNotExpanded(t *testing.T) {
	store := memory.NewStore()
	svc := NewLedgerService(store, WithLogger(quietLogger()))

	recs, err := svc.Submit(context.Background(), parceledForm(1))
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, "cartao_credito_parcelado", recs[0]["payment_method"])
	assert.Equal(t, "pendente", recs[0]["status"])
	assert.Equal(t, 300.0, recs[0]["value"])
}

func TestSubmitRejectsBadInstallmentCounts(t *testing.T) {
	for _, n := range []any{13, "abc", 2.5, 0, -3, "0"} {
		store := memory.NewStore()
		svc := NewLedgerService(store, WithLogger(quietLogger()))

		_, err := svc.Submit(context.Background(), parceledForm(n))
		assert.ErrorIs(t, err, installment.ErrInvalidInstallmentCount, "%v", n)
		assert.Zero(t, store.Len(storage.Financial))
	}
}

func TestSubmitRoundsValueToCents(t *testing.T) {
	store := memory.NewStore()
	svc := NewLedgerService(store, WithLogger(quietLogger()))

	recs, err := svc.Submit(context.Background(), storage.Record{
		"type": "despesa", "category": "aluguel", "value": "1.234,5678", "date": "2024-06-05", "status": "pago",
	})
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, 1234.57, recs[0]["value"])

	stored, err := store.Get(context.Background(), storage.Financial, recs[0].ID())
	require.NoError(t, err)
	assert.Equal(t, 1234.57, stored["value"])
}

func TestSubmitRejectsInvalidRecord(t *testing.T) {
	store := memory.NewStore()
	svc := NewLedgerService(store, WithLogger(quietLogger()))

	_, err := svc.Submit(context.Background(), storage.Record{"type": "entrada", "value": "10", "date": "2024-01-01", "status": "pago"})
	assert.ErrorIs(t, err, storage.ErrInvalidRecord)

	_, err = svc.Submit(context.Background(), storage.Record{"type": "entrada", "date": "not a date"})
	assert.ErrorIs(t, err, storage.ErrInvalidRecord)
}

func TestSubmitSurvivesPublishFailure(t *testing.T) {
	store := memory.NewStore()
	pub := &fakePublisher{err: errors.New("broker down")}
	svc := NewLedgerService(store, WithPublisher(pub), WithLogger(quietLogger()))

	recs, err := svc.Submit(context.Background(), parceledForm(2))
	require.NoError(t, err)
	assert.Len(t, recs, 2)
	assert.Equal(t, 2, store.Len(storage.Financial))
}

func TestInstallmentSagaRollsBackOnFailure(t *testing.T) {
	store := &failingRepo{Store: memory.NewStore(), failIndex: 3}
	pub := &fakePublisher{}
	svc := NewLedgerService(store, WithPublisher(pub), WithConcurrency(4), WithLogger(quietLogger()))

	recs, err := svc.Submit(context.Background(), parceledForm(6))
	assert.ErrorIs(t, err, errStoreWrite)
	assert.Nil(t, recs)
	assert.Zero(t, store.Len(storage.Financial), "created installments must be removed")
	assert.Empty(t, pub.Events())
}

func TestInstallmentSagaCompensatesCreatedEntries(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	boom := errors.New("disk full")
	repo := mock_storage.NewMockRepository(ctrl)
	gomock.InOrder(
		repo.EXPECT().Create(gomock.Any(), storage.Financial, gomock.Any()).
			DoAndReturn(func(_ context.Context, _ storage.Collection, rec storage.Record) (storage.Record, error) {
				out := rec.Clone()
				out[storage.FieldID] = "inst-1"
				return out, nil
			}),
		repo.EXPECT().Create(gomock.Any(), storage.Financial, gomock.Any()).Return(nil, boom),
		repo.EXPECT().Delete(gomock.Any(), storage.Financial, "inst-1").Return(nil),
	)

	svc := NewLedgerService(repo, WithConcurrency(1), WithLogger(quietLogger()))
	_, err := svc.Submit(context.Background(), parceledForm(3))
	assert.ErrorIs(t, err, boom)
}

func TestInstallmentSagaJoinsCompensationErrors(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	boom := errors.New("disk full")
	deleteErr := errors.New("delete refused")
	repo := mock_storage.NewMockRepository(ctrl)
	gomock.InOrder(
		repo.EXPECT().Create(gomock.Any(), storage.Financial, gomock.Any()).
			DoAndReturn(func(_ context.Context, _ storage.Collection, rec storage.Record) (storage.Record, error) {
				out := rec.Clone()
				out[storage.FieldID] = "inst-1"
				return out, nil
			}),
		repo.EXPECT().Create(gomock.Any(), storage.Financial, gomock.Any()).Return(nil, boom),
		repo.EXPECT().Delete(gomock.Any(), storage.Financial, "inst-1").Return(deleteErr),
	)

	svc := NewLedgerService(repo, WithConcurrency(1), WithLogger(quietLogger()))
	_, err := svc.Submit(context.Background(), parceledForm(2))
	assert.ErrorIs(t, err, boom)
	assert.ErrorIs(t, err, deleteErr)
}

func TestEntryWritesAreLogged(t *testing.T) {
	ctx := context.Background()
	var buf bytes.Buffer
	svc := NewLedgerService(memory.NewStore(), WithLogger(applog.New(applog.Config{Format: "json", Output: &buf})))

	recs, err := svc.Submit(ctx, storage.Record{
		"type": "entrada", "category": "honorarios", "value": "500", "date": "2024-02-01", "status": "pendente",
	})
	require.NoError(t, err)
	id := recs[0].ID()
	_, err = svc.SetStatus(ctx, id, core.StatusPaid)
	require.NoError(t, err)
	require.NoError(t, svc.Delete(ctx, id))

	out := buf.String()
	assert.Equal(t, 3, strings.Count(out, `"msg":"Record written"`))
	for _, op := range []string{applog.OpCreate, applog.OpUpdate, applog.OpDelete} {
		assert.Contains(t, out, `"`+applog.FieldOperation+`":"`+op+`"`)
	}
	assert.Contains(t, out, id)
}

func TestSetStatus(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	pub := &fakePublisher{}
	svc := NewLedgerService(store, WithPublisher(pub), WithLogger(quietLogger()))

	recs, err := svc.Submit(ctx, storage.Record{
		"type": "entrada", "category": "honorarios", "value": "500", "date": "2024-02-01", "status": "pendente",
	})
	require.NoError(t, err)
	id := recs[0].ID()

	updated, err := svc.SetStatus(ctx, id, core.StatusPaid)
	require.NoError(t, err)
	assert.Equal(t, "pago", updated["status"])
	assert.Equal(t, recs[0][storage.FieldCreatedDate], updated[storage.FieldCreatedDate])

	_, err = svc.SetStatus(ctx, id, core.EntryStatus("estornado"))
	assert.ErrorIs(t, err, ErrInvalidStatus)

	_, err = svc.SetStatus(ctx, "missing", core.StatusPaid)
	assert.ErrorIs(t, err, storage.ErrNotFound)

	events := pub.Events()
	require.Len(t, events, 2)
	assert.Equal(t, OpUpdated, events[1].operation)
}

func TestCancelInstallments(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	svc := NewLedgerService(store, WithLogger(quietLogger()),
		WithExpander(installment.New(installment.WithGroupIDs(func() string { return "grp-9" }))))

	_, err := svc.Submit(ctx, parceledForm(4))
	require.NoError(t, err)
	_, err = svc.Submit(ctx, storage.Record{
		"type": "despesa", "category": "aluguel", "value": "900", "date": "2024-01-05", "status": "pago",
	})
	require.NoError(t, err)

	cancelled, err := svc.CancelInstallments(ctx, "grp-9")
	require.NoError(t, err)
	require.Len(t, cancelled, 4)
	for i, rec := range cancelled {
		assert.Equal(t, "cancelado", rec["status"])
		assert.Equal(t, float64(i+1), rec[storage.FieldInstallmentIndex])
	}

	all, err := store.List(ctx, storage.Financial)
	require.NoError(t, err)
	active := 0
	for _, rec := range all {
		if rec["status"] != "cancelado" {
			active++
		}
	}
	assert.Equal(t, 1, active)

	_, err = svc.CancelInstallments(ctx, "nope")
	assert.ErrorIs(t, err, ErrEmptyGroup)
}

func TestDeleteEntry(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	pub := &fakePublisher{}
	svc := NewLedgerService(store, WithPublisher(pub), WithLogger(quietLogger()))

	recs, err := svc.Submit(ctx, storage.Record{
		"type": "despesa", "category": "impostos", "value": "80", "date": "2024-04-01", "status": "pago",
	})
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, recs[0].ID()))
	assert.Zero(t, store.Len(storage.Financial))
	assert.ErrorIs(t, svc.Delete(ctx, recs[0].ID()), storage.ErrNotFound)
	assert.Equal(t, OpDeleted, pub.Events()[1].operation)
}

func TestInstallmentCount(t *testing.T) {
	tests := []struct {
		in   any
		want int
		ok   bool
	}{
		{nil, 1, true},
		{3, 3, true},
		{int64(4), 4, true},
		{5.0, 5, true},
		{"6", 6, true},
		{2.5, 0, false},
		{"x", 0, false},
		{true, 0, false},
	}
	for _, tt := range tests {
		got, err := installmentCount(tt.in)
		if tt.ok {
			require.NoError(t, err, "%v", tt.in)
			assert.Equal(t, tt.want, got)
		} else {
			assert.ErrorIs(t, err, installment.ErrInvalidInstallmentCount, "%v", tt.in)
		}
	}
}
