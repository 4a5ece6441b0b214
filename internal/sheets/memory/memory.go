package memory

import (
	"context"
	"fmt"
	"sync"

	"lexledger/internal/sheets"
)

var _ sheets.ReportWriter = (*Store)(nil)

// Store keeps written reports in memory.
type Store struct {
	mu      sync.Mutex
	reports [][][]any
}

func New() *Store {
	return &Store{}
}

// WriteReport stores a copy of rows and returns a synthetic reference.
func (s *Store) WriteReport(_ context.Context, rows [][]any) (string, error) {
	cp := make([][]any, len(rows))
	for i, r := range rows {
		cp[i] = append([]any(nil), r...)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reports = append(s.reports, cp)
	return fmt.Sprintf("mem:%d", len(s.reports)), nil
}

// Last returns the most recently written report, or nil.
func (s *Store) Last() [][]any {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.reports) == 0 {
		return nil
	}
	return s.reports[len(s.reports)-1]
}

// Count returns how many reports were written.
func (s *Store) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.reports)
}
