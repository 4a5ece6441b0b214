package sheets_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lexledger/internal/ratelimit"
	"lexledger/internal/sheets"
	"lexledger/internal/sheets/memory"
)

func TestLimitedWriter(t *testing.T) {
	limiter := ratelimit.NewLimiter(ratelimit.Config{Limit: 1, Window: time.Hour})
	defer limiter.Stop()

	store := memory.New()
	w := sheets.NewLimitedWriter(store, limiter, "spreadsheet")

	ref, err := w.WriteReport(context.Background(), [][]any{{"a"}})
	require.NoError(t, err)
	assert.Equal(t, "mem:1", ref)

	_, err = w.WriteReport(context.Background(), [][]any{{"b"}})
	assert.ErrorIs(t, err, sheets.ErrRateLimited)
	assert.Equal(t, 1, store.Count())
}
