package storage

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lexledger/internal/core"
)

var created = time.Date(2024, 6, 1, 9, 30, 0, 0, time.UTC)

func ledgerForm() Record {
	return Record{
		"type":        "despesa",
		"category":    "aluguel",
		"description": "Aluguel junho",
		"value":       "R$ 1.234,56",
		"date":        "2024-06-05",
		"status":      "pago",
		"process_id":  "",
		"notes":       nil,
	}
}

func TestNewRecordNormalizesAndStamps(t *testing.T) {
	rec, err := NewRecord(Financial, ledgerForm(), "id-1", created)
	require.NoError(t, err)

	assert.Equal(t, "id-1", rec.ID())
	assert.Equal(t, 1234.56, rec["value"])
	assert.Equal(t, "2024-06-01T09:30:00.000000000Z", rec[FieldCreatedDate])
	assert.NotContains(t, rec, "process_id")
	assert.NotContains(t, rec, "notes")

	entry, err := Decode[core.LedgerEntry](rec)
	require.NoError(t, err)
	assert.Equal(t, "2024-06-01", entry.CreatedDate.String())
	assert.Equal(t, "1234.56", entry.Value.String())
}

func TestWritesRoundMoneyToLedgerPrecision(t *testing.T) {
	form := ledgerForm()
	form["value"] = "1.234,5678"
	rec, err := NewRecord(Financial, form, "id-1", created)
	require.NoError(t, err)
	assert.Equal(t, 1234.57, rec["value"])

	merged, err := Merge(Financial, rec, Record{"value": 10.005, "description": "3.14159"})
	require.NoError(t, err)
	assert.Equal(t, 10.01, merged["value"])
	assert.Equal(t, "3.14159", merged["description"])

	camp, err := NewRecord(Campaigns, Record{"name": "Google Ads", "budget": 99.999, "spent": 12}, "c", created)
	require.NoError(t, err)
	assert.Equal(t, 100.0, camp["budget"])
	assert.Equal(t, 12, camp["spent"])
}

func TestNewRecordRejectsInvalid(t *testing.T) {
	tests := []struct {
		name string
		c    Collection
		rec  Record
	}{
		{"bad category", Financial, Record{"type": "despesa", "category": "viagem", "date": "2024-01-01", "status": "pago"}},
		{"unparseable value", Financial, Record{"type": "despesa", "category": "aluguel", "date": "2024-01-01", "status": "pago", "value": "abc"}},
		{"missing date", Financial, Record{"type": "entrada", "category": "honorarios", "status": "pago"}},
		{"process status", Processes, Record{"status": "suspenso"}},
		{"campaign without name", Campaigns, Record{"budget": 10}},
		{"client without name", Clients, Record{"status": "active"}},
		{"visit without date", Visits, Record{"source": "google"}},
		{"appointment without title", Appointments, Record{"date": "2024-01-01"}},
		{"notice priority", Notices, Record{"title": "Prazo", "priority": "maxima"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewRecord(tt.c, tt.rec, "id", created)
			assert.ErrorIs(t, err, ErrInvalidRecord)
		})
	}
}

func TestNewRecordAcceptsLooseCollections(t *testing.T) {
	_, err := NewRecord(Appointments, Record{"title": "Audiência", "date": "2024-07-01", "status": "agendado", "reminder": true}, "a", created)
	assert.NoError(t, err)

	_, err = NewRecord(Notices, Record{"title": "Pagar custas", "priority": "alta"}, "n", created)
	assert.NoError(t, err)
}

func TestValidateUnknownCollection(t *testing.T) {
	err := Validate(Collection("invoices"), Record{})
	assert.True(t, errors.Is(err, ErrUnknownCollection))
}

func TestMergeKeepsIdentity(t *testing.T) {
	rec, err := NewRecord(Financial, ledgerForm(), "id-1", created)
	require.NoError(t, err)

	merged, err := Merge(Financial, rec, Record{"id": "other", "created_date": "x", "status": "pendente", "value": "10,00", "notes": ""})
	require.NoError(t, err)
	assert.Equal(t, "id-1", merged.ID())
	assert.Equal(t, rec[FieldCreatedDate], merged[FieldCreatedDate])
	assert.Equal(t, "pendente", merged["status"])
	assert.Equal(t, 10.0, merged["value"])
	assert.Equal(t, "pago", rec["status"], "existing must not change")

	_, err = Merge(Financial, rec, Record{"status": "estornado"})
	assert.ErrorIs(t, err, ErrInvalidRecord)
}

func TestEncodeEntity(t *testing.T) {
	entry := core.LedgerEntry{
		Type:     core.Income,
		Category: core.CategoryFees,
		Status:   core.StatusPaid,
		Date:     core.MustParseDate("2024-02-01"),
	}

	rec, err := Encode(entry)
	require.NoError(t, err)
	assert.Equal(t, "entrada", rec["type"])
	assert.Equal(t, "2024-02-01", rec["date"])
	assert.NotContains(t, rec, "due_date")
	assert.NotContains(t, rec, "id")
	assert.Equal(t, 0.0, rec["value"])
}

func TestParseCollection(t *testing.T) {
	c, err := ParseCollection("financial")
	require.NoError(t, err)
	assert.Equal(t, Financial, c)

	_, err = ParseCollection("ledger")
	assert.ErrorIs(t, err, ErrUnknownCollection)
}
