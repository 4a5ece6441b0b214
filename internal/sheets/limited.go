package sheets

import (
	"context"
	"errors"
	"fmt"
	"time"

	"lexledger/internal/ratelimit"
)

// ErrRateLimited is returned when a write would exceed the export quota.
var ErrRateLimited = errors.New("report export rate limited")

// LimitedWriter refuses writes above a per-window quota instead of letting
// the remote API reject them.
type LimitedWriter struct {
	next    ReportWriter
	limiter *ratelimit.Limiter
	key     string
}

// NewLimitedWriter wraps next. key scopes the quota, usually the spreadsheet id.
func NewLimitedWriter(next ReportWriter, limiter *ratelimit.Limiter, key string) *LimitedWriter {
	return &LimitedWriter{next: next, limiter: limiter, key: key}
}

func (w *LimitedWriter) WriteReport(ctx context.Context, rows [][]any) (string, error) {
	if !w.limiter.Allow(w.key) {
		return "", fmt.Errorf("%w: retry in %s", ErrRateLimited, w.limiter.RetryAfter(w.key).Round(time.Second))
	}
	return w.next.WriteReport(ctx, rows)
}
