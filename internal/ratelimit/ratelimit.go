// Package ratelimit provides a keyed fixed-window limiter.
package ratelimit

import (
	"sync"
	"sync/atomic"
	"time"
)

// Limiter allows a fixed number of events per key in each window.
type Limiter struct {
	mu           sync.Mutex
	keys         map[string]*window
	stopCleanup  chan struct{}
	shutdownOnce sync.Once
	rejected     atomic.Int64
	now          func() time.Time

	// Configuration
	limit           int
	window          time.Duration
	cleanupInterval time.Duration
}

type window struct {
	start  time.Time
	events int
}

// Config holds rate limiter configuration
type Config struct {
	Limit           int
	Window          time.Duration
	CleanupInterval time.Duration
	// Now overrides the clock; tests only.
	Now func() time.Time
}

// DefaultConfig returns sensible defaults
func DefaultConfig() Config {
	return Config{
		Limit:           10,
		Window:          time.Minute,
		CleanupInterval: 5 * time.Minute,
	}
}

// NewLimiter creates a new rate limiter and starts its cleanup goroutine.
func NewLimiter(config Config) *Limiter {
	def := DefaultConfig()
	if config.Limit <= 0 {
		config.Limit = def.Limit
	}
	if config.Window <= 0 {
		config.Window = def.Window
	}
	if config.CleanupInterval <= 0 {
		config.CleanupInterval = def.CleanupInterval
	}
	if config.Now == nil {
		config.Now = time.Now
	}

	rl := &Limiter{
		keys:            make(map[string]*window),
		stopCleanup:     make(chan struct{}),
		now:             config.Now,
		limit:           config.Limit,
		window:          config.Window,
		cleanupInterval: config.CleanupInterval,
	}
	go rl.startCleanup()
	return rl
}

// Allow records an event for key and reports whether it fits the window.
func (rl *Limiter) Allow(key string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	w, exists := rl.keys[key]
	if !exists || now.Sub(w.start) >= rl.window {
		rl.keys[key] = &window{start: now, events: 1}
		return true
	}

	if w.events >= rl.limit {
		rl.rejected.Add(1)
		return false
	}
	w.events++
	return true
}

// RetryAfter returns how long until key gets a fresh window.
func (rl *Limiter) RetryAfter(key string) time.Duration {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	w, exists := rl.keys[key]
	if !exists {
		return 0
	}
	if d := w.start.Add(rl.window).Sub(rl.now()); d > 0 {
		return d
	}
	return 0
}

// Rejected returns how many events were refused so far.
func (rl *Limiter) Rejected() int64 {
	return rl.rejected.Load()
}

// ActiveKeys returns the number of currently tracked keys
func (rl *Limiter) ActiveKeys() int {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	return len(rl.keys)
}

// Stop gracefully shuts down the rate limiter cleanup goroutine
func (rl *Limiter) Stop() {
	rl.shutdownOnce.Do(func() {
		close(rl.stopCleanup)
	})
}

func (rl *Limiter) startCleanup() {
	ticker := time.NewTicker(rl.cleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			rl.cleanupStaleEntries()
		case <-rl.stopCleanup:
			return
		}
	}
}

// cleanupStaleEntries drops keys whose window has long expired.
func (rl *Limiter) cleanupStaleEntries() {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	cutoff := rl.now().Add(-2 * rl.window)
	for key, w := range rl.keys {
		if w.start.Before(cutoff) {
			delete(rl.keys, key)
		}
	}
}
