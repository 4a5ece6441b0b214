package worker

import (
	"context"
	"errors"
	"sync"
	"time"

	"lexledger/internal/core"
	applog "lexledger/internal/log"
	"lexledger/internal/review"
	"lexledger/internal/services"
)

// ReviewScanner periodically lists the processes overdue for review.
type ReviewScanner struct {
	reviews  *services.ReviewService
	interval time.Duration
	now      func() time.Time
	metrics  *Metrics
	logger   *applog.Logger

	// Lifecycle management
	mu      sync.Mutex
	running bool
	stopCh  chan struct{}
	doneCh  chan struct{}
}

type ScannerOption func(*ReviewScanner)

// WithScannerMetrics records scan runs and the pending review gauge.
func WithScannerMetrics(m *Metrics) ScannerOption {
	return func(s *ReviewScanner) { s.metrics = m }
}

// WithScannerClock overrides the wall clock the scan compares against.
func WithScannerClock(now func() time.Time) ScannerOption {
	return func(s *ReviewScanner) { s.now = now }
}

func NewReviewScanner(reviews *services.ReviewService, interval time.Duration, logger *applog.Logger, opts ...ScannerOption) *ReviewScanner {
	if logger == nil {
		logger = applog.New(applog.DefaultConfig())
	}
	s := &ReviewScanner{
		reviews:  reviews,
		interval: interval,
		now:      time.Now,
		logger:   logger.WithComponent(applog.ComponentReview),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Scan logs every stale process and returns how many were flagged.
func (s *ReviewScanner) Scan(ctx context.Context) (int, error) {
	tracker := s.metrics.Track(JobReviewScan)
	now := core.DateOf(s.now())
	stale, err := s.reviews.Pending(ctx, now)
	if err != nil {
		return 0, tracker.End(err)
	}
	s.metrics.SetPendingReviews(len(stale))
	for _, p := range stale {
		days, _ := review.DaysSinceReview(p, now)
		s.logger.WarnContext(ctx, "Process needs review",
			applog.FieldRecordID, p.ID,
			"number", p.Number,
			"client", p.ClientName,
			"days_since_review", days)
	}
	s.logger.InfoContext(ctx, "Review scan completed", applog.FieldCount, len(stale))
	return len(stale), tracker.End(nil)
}

// Start begins the scan loop. Returns an error if already running.
func (s *ReviewScanner) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return errors.New("review scanner is already running")
	}
	s.running = true
	s.stopCh = make(chan struct{})
	s.doneCh = make(chan struct{})
	stopCh, doneCh := s.stopCh, s.doneCh
	s.mu.Unlock()

	go s.runLoop(ctx, stopCh, doneCh)

	s.logger.InfoContext(ctx, "Review scanner started", "interval", s.interval)
	return nil
}

// Stop gracefully stops the scanner and waits for completion.
func (s *ReviewScanner) Stop(ctx context.Context) error {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return nil
	}
	stopCh, doneCh := s.stopCh, s.doneCh
	s.running = false
	s.mu.Unlock()

	close(stopCh)

	select {
	case <-doneCh:
		s.logger.InfoContext(ctx, "Review scanner stopped gracefully")
		return nil
	case <-ctx.Done():
		s.logger.WarnContext(ctx, "Review scanner stop timed out")
		return ctx.Err()
	}
}

// IsRunning returns whether the scanner is currently running
func (s *ReviewScanner) IsRunning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

func (s *ReviewScanner) runLoop(ctx context.Context, stopCh <-chan struct{}, doneCh chan<- struct{}) {
	defer close(doneCh)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	// Scan immediately on startup
	s.scanLogged(ctx)

	for {
		select {
		case <-stopCh:
			return
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.scanLogged(ctx)
		}
	}
}

func (s *ReviewScanner) scanLogged(ctx context.Context) {
	if _, err := s.Scan(ctx); err != nil {
		s.logger.ErrorContext(ctx, "Review scan failed", applog.FieldError, err.Error())
	}
}
