package memory

import (
	"context"
	"testing"
)

func TestStore_WriteReport(t *testing.T) {
	s := New()
	if s.Last() != nil {
		t.Fatal("expected no report yet")
	}

	rows := [][]any{{"Relatório", "Mês atual"}, {}, {"Mês", "Receitas"}}
	ref, err := s.WriteReport(context.Background(), rows)
	if err != nil {
		t.Fatalf("WriteReport error: %v", err)
	}
	if ref != "mem:1" {
		t.Fatalf("unexpected ref %q", ref)
	}

	rows[0][1] = "changed"
	if got := s.Last()[0][1]; got != "Mês atual" {
		t.Fatalf("stored rows alias the input: %v", got)
	}

	if _, err := s.WriteReport(context.Background(), nil); err != nil {
		t.Fatalf("WriteReport error: %v", err)
	}
	if s.Count() != 2 || len(s.Last()) != 0 {
		t.Fatalf("unexpected state: count=%d last=%v", s.Count(), s.Last())
	}
}
