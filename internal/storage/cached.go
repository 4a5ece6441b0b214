package storage

import (
	"context"
	"log/slog"
	"sync"

	"lexledger/internal/cache"
)

// CachedRepository serves List from a cache keyed by collection name.
// Every successful write drops the written collection; Invalidate drops
// a collection on behalf of another process's writes.
//
// Each collection carries a generation bumped by Invalidate. A List only
// fills the cache when no invalidation happened while it read the inner
// store, so a write racing a read never leaves the old list cached.
type CachedRepository struct {
	inner  Repository
	cache  cache.Cache[[]Record]
	logger *slog.Logger

	mu   sync.Mutex
	gens map[Collection]uint64
}

func NewCachedRepository(inner Repository, c cache.Cache[[]Record], logger *slog.Logger) *CachedRepository {
	if logger == nil {
		logger = slog.Default()
	}
	return &CachedRepository{inner: inner, cache: c, logger: logger, gens: make(map[Collection]uint64)}
}

func (r *CachedRepository) List(ctx context.Context, c Collection) ([]Record, error) {
	if recs, ok := r.cache.Get(ctx, string(c)); ok {
		r.logger.DebugContext(ctx, "Collection served from cache", "collection", c, "count", len(recs))
		return CloneAll(recs), nil
	}

	r.mu.Lock()
	gen := r.gens[c]
	r.mu.Unlock()

	recs, err := r.inner.List(ctx, c)
	if err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.gens[c] != gen {
		r.logger.DebugContext(ctx, "Collection changed during read, not caching", "collection", c)
		return recs, nil
	}
	r.cache.Set(ctx, string(c), CloneAll(recs))
	return recs, nil
}

func (r *CachedRepository) Get(ctx context.Context, c Collection, id string) (Record, error) {
	return r.inner.Get(ctx, c, id)
}

func (r *CachedRepository) Create(ctx context.Context, c Collection, rec Record) (Record, error) {
	out, err := r.inner.Create(ctx, c, rec)
	if err != nil {
		return nil, err
	}
	r.Invalidate(ctx, c)
	return out, nil
}

func (r *CachedRepository) Update(ctx context.Context, c Collection, id string, patch Record) (Record, error) {
	out, err := r.inner.Update(ctx, c, id, patch)
	if err != nil {
		return nil, err
	}
	r.Invalidate(ctx, c)
	return out, nil
}

func (r *CachedRepository) Delete(ctx context.Context, c Collection, id string) error {
	if err := r.inner.Delete(ctx, c, id); err != nil {
		return err
	}
	r.Invalidate(ctx, c)
	return nil
}

// Invalidate drops the cached list of c.
func (r *CachedRepository) Invalidate(ctx context.Context, c Collection) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.gens[c]++
	r.cache.Delete(ctx, string(c))
}

// InvalidateAll drops every cached collection.
func (r *CachedRepository) InvalidateAll(ctx context.Context) {
	for _, c := range Collections() {
		r.Invalidate(ctx, c)
	}
}
