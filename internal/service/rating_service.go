package service

import (
	"context"
	"fmt"
	"time"

	"tukangku/internal/core/domain"
	"tukangku/internal/core/ports"
	"tukangku/pkg/apperror"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// RatingServiceImpl implements ports.RatingService.
type RatingServiceImpl struct {
	ratingRepo ports.RatingRepository
	orderRepo  ports.OrderRepository
	transactor ports.DBTransactor
	log        zerolog.Logger
}

// NewRatingService creates a new RatingServiceImpl.
func NewRatingService(
	ratingRepo ports.RatingRepository,
	orderRepo ports.OrderRepository,
	transactor ports.DBTransactor,
	log zerolog.Logger,
) *RatingServiceImpl {
	return &RatingServiceImpl{
		ratingRepo: ratingRepo,
		orderRepo:  orderRepo,
		transactor: transactor,
		log:        log,
	}
}

// Submit records a one-time review of a completed order and recomputes the
// worker's public aggregates in the same transaction. Ratings never touch
// balances; the money side of an order settles at completion.
func (s *RatingServiceImpl) Submit(ctx context.Context, req ports.SubmitRatingRequest) (*domain.Rating, error) {
	if !domain.ValidScore(req.Score) {
		return nil, apperror.Validation("score must be between 1 and 5")
	}

	order, err := s.orderRepo.GetByID(ctx, req.OrderID)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("find order: %w", err))
	}
	if order == nil {
		return nil, apperror.ErrNotFound("order")
	}
	if order.ClientID != req.ClientID {
		return nil, apperror.ErrForbidden()
	}
	if order.Status != domain.OrderStatusCompleted {
		return nil, apperror.Validation("only completed orders can be rated")
	}

	dbTx, err := s.transactor.Begin(ctx)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("begin tx: %w", err))
	}
	defer dbTx.Rollback(ctx) //nolint:errcheck

	rating := &domain.Rating{
		ID:        uuid.New(),
		OrderID:   order.ID,
		ClientID:  order.ClientID,
		WorkerID:  order.WorkerID,
		Score:     req.Score,
		Review:    req.Review,
		CreatedAt: time.Now().UTC(),
	}

	// The unique index on order_id turns a double submission into
	// ErrDuplicateRating here.
	if err := s.ratingRepo.Create(ctx, dbTx, rating); err != nil {
		return nil, err
	}

	if err := s.ratingRepo.RecomputeWorkerStats(ctx, dbTx, order.WorkerID); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("recompute worker stats: %w", err))
	}

	if err := dbTx.Commit(ctx); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("commit tx: %w", err))
	}

	s.log.Info().
		Str("rating_id", rating.ID.String()).
		Str("order_id", order.ID.String()).
		Str("worker_id", order.WorkerID.String()).
		Int("score", req.Score).
		Msg("rating submitted")

	return rating, nil
}

// ListByWorker returns a worker's ratings, newest first.
func (s *RatingServiceImpl) ListByWorker(ctx context.Context, workerID uuid.UUID, limit, offset int) ([]domain.Rating, error) {
	ratings, err := s.ratingRepo.ListByWorker(ctx, workerID, limit, offset)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("list ratings: %w", err))
	}
	return ratings, nil
}
