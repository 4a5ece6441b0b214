package services

import (
	"context"
	"fmt"

	"lexledger/internal/core"
	applog "lexledger/internal/log"
	"lexledger/internal/review"
	"lexledger/internal/storage"
)

// ReviewService lists processes overdue for review and records reviews.
type ReviewService struct {
	repo      storage.Repository
	publisher Publisher
	logger    *applog.Logger
}

func NewReviewService(repo storage.Repository, publisher Publisher, logger *applog.Logger) *ReviewService {
	if logger == nil {
		logger = applog.New(applog.DefaultConfig())
	}
	return &ReviewService{
		repo:      repo,
		publisher: publisher,
		logger:    logger.WithComponent(applog.ComponentReview),
	}
}

// Pending returns the stale processes at now, oldest first.
func (s *ReviewService) Pending(ctx context.Context, now core.Date) ([]core.Process, error) {
	recs, err := s.repo.List(ctx, storage.Processes)
	if err != nil {
		return nil, fmt.Errorf("list processes: %w", err)
	}
	processes, err := storage.DecodeAll[core.Process](recs)
	if err != nil {
		return nil, err
	}
	return review.FlagForReview(processes, now), nil
}

// MarkReviewed stamps the process review date with now.
func (s *ReviewService) MarkReviewed(ctx context.Context, id string, now core.Date) (core.Process, error) {
	rec, err := s.repo.Get(ctx, storage.Processes, id)
	if err != nil {
		return core.Process{}, fmt.Errorf("get process %s: %w", id, err)
	}
	p, err := storage.Decode[core.Process](rec)
	if err != nil {
		return core.Process{}, err
	}
	p = review.MarkReviewed(p, now)

	updated, err := s.repo.Update(ctx, storage.Processes, id, storage.Record{"last_review_date": p.LastReviewDate.String()})
	if err != nil {
		return core.Process{}, fmt.Errorf("mark process %s reviewed: %w", id, err)
	}
	out, err := storage.Decode[core.Process](updated)
	if err != nil {
		return core.Process{}, err
	}

	s.logger.InfoContext(ctx, "Process reviewed",
		applog.NewFields().WithRecord(string(storage.Processes), id).WithOperation(applog.OpReview).ToSlice()...)
	publishChange(ctx, s.publisher, s.logger, storage.Processes, OpUpdated, []string{id})
	return out, nil
}
