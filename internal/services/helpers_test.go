package services

import (
	"context"
	"errors"
	"io"
	"sync"
	"time"

	applog "lexledger/internal/log"
	"lexledger/internal/storage"
	"lexledger/internal/storage/memory"
)

type publishedEvent struct {
	collection string
	operation  string
	ids        []string
}

type fakePublisher struct {
	mu     sync.Mutex
	events []publishedEvent
	err    error
}

func (p *fakePublisher) PublishCollectionChanged(_ context.Context, collection, operation string, ids []string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.events = append(p.events, publishedEvent{collection, operation, append([]string(nil), ids...)})
	return nil
}

func (p *fakePublisher) Events() []publishedEvent {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]publishedEvent(nil), p.events...)
}

// failingRepo fails Create for the installment with the given index.
type failingRepo struct {
	*memory.Store
	failIndex float64
}

var errStoreWrite = errors.New("store write failed")

func (r *failingRepo) Create(ctx context.Context, c storage.Collection, rec storage.Record) (storage.Record, error) {
	if idx, _ := rec[storage.FieldInstallmentIndex].(float64); idx == r.failIndex {
		return nil, errStoreWrite
	}
	return r.Store.Create(ctx, c, rec)
}

func quietLogger() *applog.Logger {
	return applog.New(applog.Config{Output: io.Discard})
}

func fixedClock(s string) storage.Option {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		panic(err)
	}
	return storage.WithClock(func() time.Time { return t })
}
