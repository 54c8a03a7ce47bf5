package postgres

import (
	"context"
	"errors"
	"fmt"

	"tukangku/internal/core/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// CategoryRepo implements ports.CategoryRepository.
type CategoryRepo struct {
	pool Pool
}

// NewCategoryRepo creates a new CategoryRepo.
func NewCategoryRepo(pool Pool) *CategoryRepo {
	return &CategoryRepo{pool: pool}
}

// GetByID fetches a category by UUID, nil when absent.
func (r *CategoryRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Category, error) {
	query := `SELECT id, name, description, active FROM categories WHERE id = $1`

	c := &domain.Category{}
	err := r.pool.QueryRow(ctx, query, id).Scan(&c.ID, &c.Name, &c.Description, &c.Active)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get category by id: %w", err)
	}
	return c, nil
}
