package storage

import (
	"time"

	"github.com/google/uuid"
)

// Options are shared by the repository backends.
type Options struct {
	NewID func() string
	Now   func() time.Time
}

type Option func(*Options)

// WithIDs overrides record id generation.
func WithIDs(gen func() string) Option {
	return func(o *Options) { o.NewID = gen }
}

// WithClock overrides the creation timestamp source.
func WithClock(now func() time.Time) Option {
	return func(o *Options) { o.Now = now }
}

// BuildOptions applies opts over the defaults (random UUIDs, wall clock).
func BuildOptions(opts ...Option) Options {
	o := Options{NewID: uuid.NewString, Now: time.Now}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}
