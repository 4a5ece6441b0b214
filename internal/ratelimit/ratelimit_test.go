package ratelimit

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type clock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *clock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

func TestLimiterWindow(t *testing.T) {
	clk := &clock{t: time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)}
	rl := NewLimiter(Config{Limit: 2, Window: time.Minute, Now: clk.Now})
	defer rl.Stop()

	assert.True(t, rl.Allow("sheet"))
	assert.True(t, rl.Allow("sheet"))
	assert.False(t, rl.Allow("sheet"))
	assert.True(t, rl.Allow("other"), "keys are limited independently")
	assert.Equal(t, int64(1), rl.Rejected())
	assert.Equal(t, time.Minute, rl.RetryAfter("sheet"))

	clk.Advance(30 * time.Second)
	assert.False(t, rl.Allow("sheet"))
	assert.Equal(t, 30*time.Second, rl.RetryAfter("sheet"))

	clk.Advance(30 * time.Second)
	assert.True(t, rl.Allow("sheet"))
	assert.Equal(t, 2, rl.ActiveKeys())
}

func TestLimiterCleanup(t *testing.T) {
	clk := &clock{t: time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)}
	rl := NewLimiter(Config{Limit: 1, Window: time.Minute, Now: clk.Now})
	defer rl.Stop()

	rl.Allow("a")
	clk.Advance(time.Minute)
	rl.Allow("b")
	clk.Advance(90 * time.Second)

	rl.cleanupStaleEntries()
	assert.Equal(t, 1, rl.ActiveKeys())
	assert.Equal(t, time.Duration(0), rl.RetryAfter("a"))
}

func TestLimiterDefaultsAndStop(t *testing.T) {
	rl := NewLimiter(Config{})
	assert.Equal(t, DefaultConfig().Limit, rl.limit)
	rl.Stop()
	rl.Stop()
}
