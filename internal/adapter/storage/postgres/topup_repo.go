package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"tukangku/internal/core/domain"
	"tukangku/internal/core/ports"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// TopupRepo implements ports.TopupRepository.
type TopupRepo struct {
	pool Pool
}

// NewTopupRepo creates a new TopupRepo.
func NewTopupRepo(pool Pool) *TopupRepo {
	return &TopupRepo{pool: pool}
}

const topupColumns = `id, user_id, amount, method, proof_path, status, reviewed_by, reviewed_at,
	reject_reason, expires_at, created_at, updated_at`

// Create inserts a new top-up request.
func (r *TopupRepo) Create(ctx context.Context, t *domain.TopupRequest) error {
	query := `INSERT INTO topup_requests (id, user_id, amount, method, proof_path, status, expires_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

	_, err := r.pool.Exec(ctx, query,
		t.ID, t.UserID, t.Amount, t.Method, t.ProofPath, t.Status,
		t.ExpiresAt, t.CreatedAt, t.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert topup request: %w", err)
	}
	return nil
}

// GetByID fetches a top-up request by UUID.
func (r *TopupRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.TopupRequest, error) {
	query := `SELECT ` + topupColumns + ` FROM topup_requests WHERE id = $1`

	t, err := scanTopupRow(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get topup by id: %w", err)
	}
	return t, nil
}

// Decide flips pending -> next inside tx. The WHERE guard on pending makes
// a second admin decision affect zero rows instead of overwriting the first.
func (r *TopupRepo) Decide(ctx context.Context, tx pgx.Tx, id uuid.UUID, next domain.TopupStatus, reviewedBy uuid.UUID, rejectReason *string) (bool, error) {
	query := `UPDATE topup_requests
		SET status = $2, reviewed_by = $3, reviewed_at = NOW(), reject_reason = $4, updated_at = NOW()
		WHERE id = $1 AND status = $5`

	tag, err := tx.Exec(ctx, query, id, next, reviewedBy, rejectReason, domain.TopupStatusPending)
	if err != nil {
		return false, fmt.Errorf("decide topup: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

// List returns top-up requests matching the filter, newest first.
func (r *TopupRepo) List(ctx context.Context, filter ports.TopupListFilter) ([]domain.TopupRequest, error) {
	var (
		where []string
		args  []any
	)

	if filter.UserID != nil {
		args = append(args, *filter.UserID)
		where = append(where, fmt.Sprintf("user_id = $%d", len(args)))
	}
	if filter.Status != nil {
		args = append(args, *filter.Status)
		where = append(where, fmt.Sprintf("status = $%d", len(args)))
	}

	query := `SELECT ` + topupColumns + ` FROM topup_requests`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY created_at DESC"

	limit := filter.Limit
	if limit <= 0 {
		limit = 20
	}
	args = append(args, limit)
	query += fmt.Sprintf(" LIMIT $%d", len(args))
	if filter.Offset > 0 {
		args = append(args, filter.Offset)
		query += fmt.Sprintf(" OFFSET $%d", len(args))
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list topup requests: %w", err)
	}
	defer rows.Close()

	var topups []domain.TopupRequest
	for rows.Next() {
		t, err := scanTopupRow(rows)
		if err != nil {
			return nil, err
		}
		topups = append(topups, *t)
	}
	return topups, rows.Err()
}

func scanTopupRow(row pgx.Row) (*domain.TopupRequest, error) {
	t := &domain.TopupRequest{}
	err := row.Scan(
		&t.ID, &t.UserID, &t.Amount, &t.Method, &t.ProofPath, &t.Status,
		&t.ReviewedBy, &t.ReviewedAt, &t.RejectReason,
		&t.ExpiresAt, &t.CreatedAt, &t.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return t, nil
}
