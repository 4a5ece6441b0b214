package storage

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"lexledger/internal/core"
)

// Snapshot is a typed, point-in-time read of the collections the reports use.
type Snapshot struct {
	Clients   []core.Client
	Processes []core.Process
	Entries   []core.LedgerEntry
	Visits    []core.Visit
	Campaigns []core.Campaign
}

// LoadSnapshot lists and decodes the report collections concurrently.
func LoadSnapshot(ctx context.Context, repo Repository) (Snapshot, error) {
	var s Snapshot
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error { return load(ctx, repo, Clients, &s.Clients) })
	g.Go(func() error { return load(ctx, repo, Processes, &s.Processes) })
	g.Go(func() error { return load(ctx, repo, Financial, &s.Entries) })
	g.Go(func() error { return load(ctx, repo, Visits, &s.Visits) })
	g.Go(func() error { return load(ctx, repo, Campaigns, &s.Campaigns) })

	if err := g.Wait(); err != nil {
		return Snapshot{}, err
	}
	return s, nil
}

func load[T any](ctx context.Context, repo Repository, c Collection, dst *[]T) error {
	recs, err := repo.List(ctx, c)
	if err != nil {
		return fmt.Errorf("load %s: %w", c, err)
	}
	out, err := DecodeAll[T](recs)
	if err != nil {
		return fmt.Errorf("load %s: %w", c, err)
	}
	*dst = out
	return nil
}
