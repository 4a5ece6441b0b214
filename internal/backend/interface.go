package backend

import (
	"context"
	"time"

	"lexledger/internal/services"
	"lexledger/internal/storage"
)

// CleanupFunc represents a cleanup function for resources
type CleanupFunc func() error

// BackendResult contains the wired store and optional cleanup function
type BackendResult struct {
	// Repository is the store every service uses, cache included.
	Repository storage.Repository
	// Cache is nil when caching is disabled.
	Cache *storage.CachedRepository
	// Publisher is nil when AMQP is not configured or unreachable.
	Publisher services.Publisher
	Cleanup   CleanupFunc
}

// Factory creates backends based on configuration
type Factory interface {
	// CreateBackend creates a backend instance based on the provided config
	CreateBackend(ctx context.Context, config Config) (*BackendResult, error)
}

// Config holds configuration for backend creation
type Config struct {
	// Backend type
	Type BackendType

	// SQLite specific
	SQLiteDBPath string

	// Change events, optional
	AMQPURL      string
	AMQPExchange string
	AMQPQueue    string

	// Read cache
	Cache     CacheType
	CacheSize int
	CacheTTL  time.Duration
	RedisAddr string
}

// BackendType represents the type of backend
type BackendType string

const (
	SQLiteBackend BackendType = "sqlite"
	MemoryBackend BackendType = "memory"
)

// String implements fmt.Stringer
func (bt BackendType) String() string {
	return string(bt)
}

// IsValid returns true if the backend type is valid
func (bt BackendType) IsValid() bool {
	switch bt {
	case SQLiteBackend, MemoryBackend:
		return true
	default:
		return false
	}
}

// CacheType selects the read cache in front of the store.
type CacheType string

const (
	NoCache    CacheType = "none"
	LRUCache   CacheType = "lru"
	RedisCache CacheType = "redis"
)

// IsValid returns true if the cache type is valid
func (ct CacheType) IsValid() bool {
	switch ct {
	case NoCache, LRUCache, RedisCache:
		return true
	default:
		return false
	}
}
