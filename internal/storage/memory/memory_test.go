package memory

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lexledger/internal/storage"
)

func TestStoreCRUD(t *testing.T) {
	ctx := context.Background()
	s := NewStore(storage.WithIDs(func() string { return "fixed" }))

	rec, err := s.Create(ctx, storage.Clients, storage.Record{"name": "Maria", "email": ""})
	require.NoError(t, err)
	assert.Equal(t, "fixed", rec.ID())
	assert.NotContains(t, rec, "email")

	rec["name"] = "changed by caller"
	got, err := s.Get(ctx, storage.Clients, "fixed")
	require.NoError(t, err)
	assert.Equal(t, "Maria", got["name"])

	got, err = s.Update(ctx, storage.Clients, "fixed", storage.Record{"status": "active"})
	require.NoError(t, err)
	assert.Equal(t, "active", got["status"])

	require.NoError(t, s.Delete(ctx, storage.Clients, "fixed"))
	assert.ErrorIs(t, s.Delete(ctx, storage.Clients, "fixed"), storage.ErrNotFound)
	_, err = s.Get(ctx, storage.Clients, "fixed")
	assert.ErrorIs(t, err, storage.ErrNotFound)
	assert.Zero(t, s.Len(storage.Clients))
}

func TestStoreListNewestFirst(t *testing.T) {
	ctx := context.Background()
	same := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	s := NewStore(storage.WithClock(func() time.Time { return same }))

	for _, name := range []string{"A", "B", "C"} {
		_, err := s.Create(ctx, storage.Clients, storage.Record{"name": name})
		require.NoError(t, err)
	}

	recs, err := s.List(ctx, storage.Clients)
	require.NoError(t, err)
	names := []any{recs[0]["name"], recs[1]["name"], recs[2]["name"]}
	assert.Equal(t, []any{"C", "B", "A"}, names)
}

func TestStoreValidatesUpdates(t *testing.T) {
	ctx := context.Background()
	s := NewStore()

	rec, err := s.Create(ctx, storage.Processes, storage.Record{"status": "em_andamento"})
	require.NoError(t, err)

	_, err = s.Update(ctx, storage.Processes, rec.ID(), storage.Record{"status": "pausado"})
	assert.ErrorIs(t, err, storage.ErrInvalidRecord)

	got, err := s.Get(ctx, storage.Processes, rec.ID())
	require.NoError(t, err)
	assert.Equal(t, "em_andamento", got["status"])
}

func TestStoreConcurrentCreates(t *testing.T) {
	ctx := context.Background()
	s := NewStore()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		i := i
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := s.Create(ctx, storage.Clients, storage.Record{"name": fmt.Sprintf("client %d", i)})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	recs, err := s.List(ctx, storage.Clients)
	require.NoError(t, err)
	assert.Len(t, recs, 20)
}
