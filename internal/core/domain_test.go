package core

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
)

func validEntry() LedgerEntry {
	return LedgerEntry{
		Type:          Expense,
		Category:      CategoryRent,
		Description:   "Aluguel sala",
		Value:         decimal.NewFromInt(1000),
		Date:          NewDate(2024, 1, 5),
		Status:        StatusPaid,
		PaymentMethod: MethodPix,
	}
}

func TestLedgerEntryValidate(t *testing.T) {
	if err := validEntry().Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}

	cases := []struct {
		name   string
		mutate func(*LedgerEntry)
	}{
		{"unknown type", func(e *LedgerEntry) { e.Type = "transfer" }},
		{"unknown status", func(e *LedgerEntry) { e.Status = "paid" }},
		{"unknown category", func(e *LedgerEntry) { e.Category = "viagens" }},
		{"unknown method", func(e *LedgerEntry) { e.PaymentMethod = "crypto" }},
		{"negative value", func(e *LedgerEntry) { e.Value = decimal.NewFromInt(-1) }},
		{"missing date", func(e *LedgerEntry) { e.Date = Date{} }},
		{"index past total", func(e *LedgerEntry) { e.InstallmentIndex, e.InstallmentTotal = 3, 2 }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			e := validEntry()
			tc.mutate(&e)
			err := e.Validate()
			if !errors.Is(err, ErrInvalidEntry) {
				t.Fatalf("expected ErrInvalidEntry, got %v", err)
			}
		})
	}
}

func TestProcessValidate(t *testing.T) {
	p := Process{Status: ProcessOngoing, Area: "civil"}
	if err := p.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}
	p.Status = "open"
	if err := p.Validate(); !errors.Is(err, ErrInvalidProcess) {
		t.Fatalf("expected ErrInvalidProcess, got %v", err)
	}
}

func TestCampaignValidate(t *testing.T) {
	c := Campaign{Name: "Google Ads", StartDate: NewDate(2024, 3, 1), EndDate: NewDate(2024, 2, 1)}
	if err := c.Validate(); !errors.Is(err, ErrInvalidDateRange) {
		t.Fatalf("expected ErrInvalidDateRange, got %v", err)
	}
	c.EndDate = NewDate(2024, 4, 1)
	if err := c.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}
}

func TestLedgerEntryJSON(t *testing.T) {
	raw := `{"type":"despesa","category":"aluguel","value":1000.5,"date":"2024-01-05",
		"status":"pago","created_date":"2024-01-05T13:45:00Z","due_date":null}`
	var e LedgerEntry
	if err := json.Unmarshal([]byte(raw), &e); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if !e.Value.Equal(decimal.RequireFromString("1000.5")) {
		t.Fatalf("value = %s", e.Value)
	}
	if e.Date != NewDate(2024, 1, 5) || e.CreatedDate != NewDate(2024, 1, 5) {
		t.Fatalf("dates = %s / %s", e.Date, e.CreatedDate)
	}
	if !e.DueDate.IsEmpty() {
		t.Fatalf("due date should be empty")
	}
}
