package postgres

import (
	"context"
	"errors"
	"fmt"

	"tukangku/internal/core/domain"
	"tukangku/pkg/apperror"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// pgUniqueViolation is the PostgreSQL error code for unique_violation.
const pgUniqueViolation = "23505"

// RatingRepo implements ports.RatingRepository.
type RatingRepo struct {
	pool Pool
}

// NewRatingRepo creates a new RatingRepo.
func NewRatingRepo(pool Pool) *RatingRepo {
	return &RatingRepo{pool: pool}
}

// Create inserts a rating within tx. The unique index on order_id turns a
// duplicate submission into a conflict error.
func (r *RatingRepo) Create(ctx context.Context, tx pgx.Tx, rating *domain.Rating) error {
	query := `INSERT INTO ratings (id, order_id, client_id, worker_id, score, review, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`

	_, err := tx.Exec(ctx, query,
		rating.ID, rating.OrderID, rating.ClientID, rating.WorkerID,
		rating.Score, rating.Review, rating.CreatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
			return apperror.ErrDuplicateRating()
		}
		return fmt.Errorf("insert rating: %w", err)
	}
	return nil
}

// GetByOrderID fetches the rating for an order, nil when absent.
func (r *RatingRepo) GetByOrderID(ctx context.Context, orderID uuid.UUID) (*domain.Rating, error) {
	query := `SELECT id, order_id, client_id, worker_id, score, review, created_at
		FROM ratings WHERE order_id = $1`

	rating := &domain.Rating{}
	err := r.pool.QueryRow(ctx, query, orderID).Scan(
		&rating.ID, &rating.OrderID, &rating.ClientID, &rating.WorkerID,
		&rating.Score, &rating.Review, &rating.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get rating by order: %w", err)
	}
	return rating, nil
}

// ListByWorker returns a worker's ratings, newest first.
func (r *RatingRepo) ListByWorker(ctx context.Context, workerID uuid.UUID, limit, offset int) ([]domain.Rating, error) {
	if limit <= 0 {
		limit = 20
	}
	query := `SELECT id, order_id, client_id, worker_id, score, review, created_at
		FROM ratings WHERE worker_id = $1 ORDER BY created_at DESC LIMIT $2 OFFSET $3`

	rows, err := r.pool.Query(ctx, query, workerID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list ratings: %w", err)
	}
	defer rows.Close()

	var ratings []domain.Rating
	for rows.Next() {
		rating := domain.Rating{}
		if err := rows.Scan(
			&rating.ID, &rating.OrderID, &rating.ClientID, &rating.WorkerID,
			&rating.Score, &rating.Review, &rating.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan rating: %w", err)
		}
		ratings = append(ratings, rating)
	}
	return ratings, rows.Err()
}

// RecomputeWorkerStats refreshes the worker's aggregate from the ratings
// table and bumps the completed-jobs counter, inside tx so the aggregate
// cannot drift from the rating that triggered it.
func (r *RatingRepo) RecomputeWorkerStats(ctx context.Context, tx pgx.Tx, workerID uuid.UUID) error {
	query := `UPDATE worker_profiles SET
		rating_average = COALESCE((SELECT AVG(score)::float8 FROM ratings WHERE worker_id = $1), 0),
		rating_count = (SELECT COUNT(*) FROM ratings WHERE worker_id = $1),
		completed_jobs = completed_jobs + 1,
		updated_at = NOW()
		WHERE user_id = $1`

	tag, err := tx.Exec(ctx, query, workerID)
	if err != nil {
		return fmt.Errorf("recompute worker stats: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("worker profile not found: %s", workerID)
	}
	return nil
}
