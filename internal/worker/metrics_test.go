package worker

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lexledger/internal/amqp"
	"lexledger/internal/services"
	"lexledger/internal/storage"
	"lexledger/internal/storage/memory"
)

type failingWriter struct{}

func (failingWriter) WriteReport(context.Context, [][]any) (string, error) {
	return "", errors.New("quota exceeded")
}

func TestMetricsTracker(t *testing.T) {
	m := NewMetrics(prometheus.NewRegistry())

	assert.NoError(t, m.Track("job").End(nil))
	boom := errors.New("boom")
	assert.ErrorIs(t, m.Track("job").End(boom), boom)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.runs.WithLabelValues("job", "success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.runs.WithLabelValues("job", "failure")))
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	m.ObserveMessage("financial")
	m.SetPendingReviews(3)
	assert.NoError(t, m.Track("job").End(nil))
}

func TestReportWorkerRecordsMetrics(t *testing.T) {
	ctx := context.Background()
	m := NewMetrics(prometheus.NewRegistry())
	store := memory.NewStore()
	w := NewReportWorker(services.NewReportService(store, quietLogger()), failingWriter{}, nil, quietLogger(),
		WithClock(fixedNow), WithMetrics(m))

	require.NoError(t, w.HandleCollectionChanged(ctx, amqp.NewCollectionChangedMessage("financial", amqp.OpCreated, nil)))
	require.NoError(t, w.HandleCollectionChanged(ctx, amqp.NewCollectionChangedMessage("financial", amqp.OpUpdated, nil)))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.messages.WithLabelValues("financial")))

	assert.Error(t, w.ExportIfDirty(ctx))
	assert.True(t, w.Dirty(), "failed export stays pending")
	assert.Equal(t, 1.0, testutil.ToFloat64(m.runs.WithLabelValues(JobReportExport, "failure")))
}

func TestReviewScannerRecordsPendingGauge(t *testing.T) {
	ctx := context.Background()
	m := NewMetrics(prometheus.NewRegistry())
	store := memory.NewStore(storage.WithClock(func() time.Time { return time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC) }))
	for i := 0; i < 2; i++ {
		_, err := store.Create(ctx, storage.Processes, storage.Record{"status": "em_andamento"})
		require.NoError(t, err)
	}

	s := NewReviewScanner(services.NewReviewService(store, nil, quietLogger()), time.Hour, quietLogger(),
		WithScannerClock(fixedNow), WithScannerMetrics(m))
	n, err := s.Scan(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Equal(t, 2.0, testutil.ToFloat64(m.stale))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.runs.WithLabelValues(JobReviewScan, "success")))
}
