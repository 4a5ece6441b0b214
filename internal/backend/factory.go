package backend

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"lexledger/internal/amqp"
	"lexledger/internal/cache"
	"lexledger/internal/storage"
	"lexledger/internal/storage/memory"
)

// RedisKeyPrefix namespaces the cached collection lists in Redis.
const RedisKeyPrefix = "lexledger:records:"

const redisPingTimeout = 2 * time.Second

// DefaultFactory implements the Factory interface
type DefaultFactory struct {
	logger *slog.Logger
}

// NewFactory creates a new backend factory
func NewFactory(logger *slog.Logger) Factory {
	if logger == nil {
		logger = slog.Default()
	}
	return &DefaultFactory{
		logger: logger,
	}
}

// CreateBackend implements Factory.CreateBackend
func (f *DefaultFactory) CreateBackend(ctx context.Context, config Config) (*BackendResult, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	var cleanups []CleanupFunc
	result := &BackendResult{}

	switch config.Type {
	case SQLiteBackend:
		repo, err := storage.NewSQLiteRepository(config.SQLiteDBPath)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize SQLite repository: %w", err)
		}
		result.Repository = repo
		cleanups = append(cleanups, repo.Close)
		f.logger.Info("Initialized SQLite backend", "db_path", config.SQLiteDBPath)
	case MemoryBackend:
		result.Repository = memory.NewStore()
		f.logger.Info("Initialized memory backend")
	default:
		return nil, fmt.Errorf("unsupported backend type: %s", config.Type)
	}

	c, cleanup := f.createCache(ctx, config)
	if cleanup != nil {
		cleanups = append(cleanups, cleanup)
	}
	if c != nil {
		result.Cache = storage.NewCachedRepository(result.Repository, c, f.logger)
		result.Repository = result.Cache
	}

	if config.AMQPURL != "" {
		amqpClient, err := amqp.NewClient(config.AMQPURL, config.AMQPExchange, config.AMQPQueue)
		if err != nil {
			f.logger.Warn("Failed to initialize AMQP client, continuing without change events", "error", err)
		} else {
			result.Publisher = amqpClient
			cleanups = append(cleanups, amqpClient.Close)
			f.logger.Info("Initialized AMQP client",
				"exchange", config.AMQPExchange,
				"queue", config.AMQPQueue)
		}
	}

	result.Cleanup = func() error {
		var errs []error
		for i := len(cleanups) - 1; i >= 0; i-- {
			if err := cleanups[i](); err != nil {
				errs = append(errs, err)
			}
		}
		return errors.Join(errs...)
	}
	return result, nil
}

// createCache builds the configured read cache. An unreachable Redis leaves
// the store uncached rather than failing startup.
func (f *DefaultFactory) createCache(ctx context.Context, config Config) (cache.Cache[[]storage.Record], CleanupFunc) {
	switch config.Cache {
	case LRUCache:
		lru := cache.NewLRUCache[[]storage.Record](config.CacheSize, config.CacheTTL)
		manager := cache.NewManager(f.logger)
		manager.Register(lru)
		if config.CacheTTL > 0 {
			manager.StartCleanup(config.CacheTTL)
		}
		f.logger.Info("Initialized LRU cache", "size", config.CacheSize, "ttl", config.CacheTTL)
		return lru, func() error {
			manager.Stop()
			return nil
		}
	case RedisCache:
		client := redis.NewClient(&redis.Options{Addr: config.RedisAddr})
		pingCtx, cancel := context.WithTimeout(ctx, redisPingTimeout)
		defer cancel()
		if err := client.Ping(pingCtx).Err(); err != nil {
			f.logger.Warn("Redis unreachable, continuing without cache", "addr", config.RedisAddr, "error", err)
			_ = client.Close()
			return nil, nil
		}
		f.logger.Info("Initialized Redis cache", "addr", config.RedisAddr, "ttl", config.CacheTTL)
		return cache.NewRedisCache[[]storage.Record](client, RedisKeyPrefix, config.CacheTTL, f.logger), client.Close
	default:
		return nil, nil
	}
}
