package worker

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Job names recorded by Metrics.
const (
	JobReportExport = "report_export"
	JobReviewScan   = "review_scan"
)

// Metrics exposes Prometheus collectors for the worker jobs. A nil *Metrics
// records nothing.
type Metrics struct {
	runs     *prometheus.CounterVec
	duration *prometheus.HistogramVec
	messages *prometheus.CounterVec
	stale    prometheus.Gauge
}

// NewMetrics registers the worker metrics against registerer, or the default
// Prometheus registerer when nil.
func NewMetrics(registerer prometheus.Registerer) *Metrics {
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}
	m := &Metrics{
		runs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "lexledger_worker_jobs_total",
			Help: "Worker job executions partitioned by job name and status.",
		}, []string{"job", "status"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "lexledger_worker_job_duration_seconds",
			Help:    "Duration in seconds of worker job executions.",
			Buckets: prometheus.DefBuckets,
		}, []string{"job"}),
		messages: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "lexledger_collection_changed_messages_total",
			Help: "Collection changed messages handled, by collection.",
		}, []string{"collection"}),
		stale: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "lexledger_processes_pending_review",
			Help: "Processes flagged for review by the last scan.",
		}),
	}
	registerer.MustRegister(m.runs, m.duration, m.messages, m.stale)
	return m
}

// Tracker times a single job run.
type Tracker struct {
	metrics *Metrics
	job     string
	start   time.Time
}

// Track starts timing job.
func (m *Metrics) Track(job string) *Tracker {
	return &Tracker{metrics: m, job: job, start: time.Now()}
}

// End records the run outcome and returns err untouched.
func (t *Tracker) End(err error) error {
	if t == nil || t.metrics == nil {
		return err
	}
	status := "success"
	if err != nil {
		status = "failure"
	}
	t.metrics.runs.WithLabelValues(t.job, status).Inc()
	t.metrics.duration.WithLabelValues(t.job).Observe(time.Since(t.start).Seconds())
	return err
}

// ObserveMessage counts one handled change message.
func (m *Metrics) ObserveMessage(collection string) {
	if m == nil {
		return
	}
	m.messages.WithLabelValues(collection).Inc()
}

// SetPendingReviews records the size of the last review scan.
func (m *Metrics) SetPendingReviews(n int) {
	if m == nil {
		return
	}
	m.stale.Set(float64(n))
}
