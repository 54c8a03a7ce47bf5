package postgres

import (
	"context"
	"errors"
	"fmt"

	"tukangku/internal/core/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// WorkerProfileRepo implements ports.WorkerProfileRepository.
type WorkerProfileRepo struct {
	pool Pool
}

// NewWorkerProfileRepo creates a new WorkerProfileRepo.
func NewWorkerProfileRepo(pool Pool) *WorkerProfileRepo {
	return &WorkerProfileRepo{pool: pool}
}

// Create inserts a new worker profile.
func (r *WorkerProfileRepo) Create(ctx context.Context, p *domain.WorkerProfile) error {
	query := `INSERT INTO worker_profiles (id, user_id, hourly_rate, experience_years, available,
		rating_average, rating_count, completed_jobs, bio, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`

	_, err := r.pool.Exec(ctx, query,
		p.ID, p.UserID, p.HourlyRate, p.ExperienceYrs, p.Available,
		p.RatingAverage, p.RatingCount, p.CompletedJobs, p.Bio,
		p.CreatedAt, p.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert worker profile: %w", err)
	}
	return nil
}

// GetByUserID fetches a worker profile by the owning user id.
func (r *WorkerProfileRepo) GetByUserID(ctx context.Context, userID uuid.UUID) (*domain.WorkerProfile, error) {
	query := `SELECT id, user_id, hourly_rate, experience_years, available,
		rating_average, rating_count, completed_jobs, bio, created_at, updated_at
		FROM worker_profiles WHERE user_id = $1`

	p := &domain.WorkerProfile{}
	err := r.pool.QueryRow(ctx, query, userID).Scan(
		&p.ID, &p.UserID, &p.HourlyRate, &p.ExperienceYrs, &p.Available,
		&p.RatingAverage, &p.RatingCount, &p.CompletedJobs, &p.Bio,
		&p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get worker profile: %w", err)
	}
	return p, nil
}
