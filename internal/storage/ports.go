// Package storage defines the record repository the ledger engine reads
// from and writes to, plus its SQLite backend and read-through cache.
package storage

import (
	"context"
	"errors"
	"fmt"
)

// Collection names a record collection of the store.
type Collection string

const (
	Clients      Collection = "clients"
	Processes    Collection = "processes"
	Financial    Collection = "financial"
	Appointments Collection = "appointments"
	Campaigns    Collection = "campaigns"
	Notices      Collection = "notices"
	Visits       Collection = "visits"
)

var (
	ErrNotFound          = errors.New("record not found")
	ErrInvalidRecord     = errors.New("invalid record")
	ErrUnknownCollection = errors.New("unknown collection")
)

// Repository is the record store contract. List returns the most recently
// created records first. Create and Update normalize money fields, drop
// empty values and validate the result against the collection schema.
//
//go:generate mockgen -destination=mocks/mock_repository.go -source=ports.go Repository
type Repository interface {
	List(ctx context.Context, c Collection) ([]Record, error)
	Get(ctx context.Context, c Collection, id string) (Record, error)
	Create(ctx context.Context, c Collection, rec Record) (Record, error)
	Update(ctx context.Context, c Collection, id string, patch Record) (Record, error)
	Delete(ctx context.Context, c Collection, id string) error
}

// Collections lists every known collection.
func Collections() []Collection {
	return []Collection{Clients, Processes, Financial, Appointments, Campaigns, Notices, Visits}
}

// ParseCollection validates a collection name.
func ParseCollection(s string) (Collection, error) {
	for _, c := range Collections() {
		if string(c) == s {
			return c, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownCollection, s)
}

// NotFound wraps ErrNotFound with the record coordinates.
func NotFound(c Collection, id string) error {
	return fmt.Errorf("%w: %s/%s", ErrNotFound, c, id)
}

// GroupLister is implemented by backends that can look up an installment
// group without listing the whole ledger.
type GroupLister interface {
	ListInstallmentGroup(ctx context.Context, groupID string) ([]Record, error)
}
