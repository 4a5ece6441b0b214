// Package memory is an in-process record store used by tests and by the
// default "memory" data backend.
package memory

import (
	"context"
	"sync"

	"lexledger/internal/storage"
)

type entry struct {
	seq uint64
	rec storage.Record
}

// Store keeps every collection in memory. It is safe for concurrent use.
type Store struct {
	mu   sync.RWMutex
	seq  uint64
	data map[storage.Collection]map[string]entry
	opts storage.Options
}

func NewStore(opts ...storage.Option) *Store {
	return &Store{
		data: make(map[storage.Collection]map[string]entry),
		opts: storage.BuildOptions(opts...),
	}
}

// List returns records newest first. Records created in the same instant
// keep reverse insertion order.
func (s *Store) List(_ context.Context, c storage.Collection) ([]storage.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entries := make([]entry, 0, len(s.data[c]))
	for _, e := range s.data[c] {
		entries = append(entries, e)
	}
	sortNewestFirst(entries)

	out := make([]storage.Record, len(entries))
	for i, e := range entries {
		out[i] = e.rec.Clone()
	}
	return out, nil
}

func (s *Store) Get(_ context.Context, c storage.Collection, id string) (storage.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.data[c][id]
	if !ok {
		return nil, storage.NotFound(c, id)
	}
	return e.rec.Clone(), nil
}

func (s *Store) Create(_ context.Context, c storage.Collection, rec storage.Record) (storage.Record, error) {
	out, err := storage.NewRecord(c, rec, s.opts.NewID(), s.opts.Now())
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.data[c] == nil {
		s.data[c] = make(map[string]entry)
	}
	s.seq++
	s.data[c][out.ID()] = entry{seq: s.seq, rec: out}
	return out.Clone(), nil
}

func (s *Store) Update(_ context.Context, c storage.Collection, id string, patch storage.Record) (storage.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.data[c][id]
	if !ok {
		return nil, storage.NotFound(c, id)
	}
	out, err := storage.Merge(c, e.rec, patch)
	if err != nil {
		return nil, err
	}
	e.rec = out
	s.data[c][id] = e
	return out.Clone(), nil
}

func (s *Store) Delete(_ context.Context, c storage.Collection, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.data[c][id]; !ok {
		return storage.NotFound(c, id)
	}
	delete(s.data[c], id)
	return nil
}

// Len returns the number of records in c.
func (s *Store) Len(c storage.Collection) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.data[c])
}
