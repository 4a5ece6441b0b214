package cache

import (
	"context"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type payload struct {
	ID    string  `json:"id"`
	Value float64 `json:"value"`
}

func newRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return mr, client
}

func TestRedisCacheRoundTrip(t *testing.T) {
	ctx := context.Background()
	mr, client := newRedis(t)
	c := NewRedisCache[[]payload](client, "lexledger:list:", time.Minute, nil)

	_, ok := c.Get(ctx, "financial")
	assert.False(t, ok)

	c.Set(ctx, "financial", []payload{{ID: "a", Value: 10.5}})
	require.True(t, mr.Exists("lexledger:list:financial"))

	got, ok := c.Get(ctx, "financial")
	require.True(t, ok)
	assert.Equal(t, []payload{{ID: "a", Value: 10.5}}, got)

	c.Delete(ctx, "financial")
	_, ok = c.Get(ctx, "financial")
	assert.False(t, ok)
}

func TestRedisCacheTTL(t *testing.T) {
	ctx := context.Background()
	mr, client := newRedis(t)
	c := NewRedisCache[int](client, "p:", time.Minute, nil)

	c.Set(ctx, "k", 7)
	mr.FastForward(2 * time.Minute)

	_, ok := c.Get(ctx, "k")
	assert.False(t, ok)
}

func TestRedisCacheCorruptEntryIsAMiss(t *testing.T) {
	ctx := context.Background()
	mr, client := newRedis(t)
	c := NewRedisCache[int](client, "p:", time.Minute, nil)

	require.NoError(t, mr.Set("p:k", "not json"))
	_, ok := c.Get(ctx, "k")
	assert.False(t, ok)
	assert.False(t, mr.Exists("p:k"))
}
