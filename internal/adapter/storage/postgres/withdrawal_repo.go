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

// WithdrawalRepo implements ports.WithdrawalRepository.
type WithdrawalRepo struct {
	pool Pool
}

// NewWithdrawalRepo creates a new WithdrawalRepo.
func NewWithdrawalRepo(pool Pool) *WithdrawalRepo {
	return &WithdrawalRepo{pool: pool}
}

const withdrawalColumns = `id, worker_id, amount, fee, net_amount, bank_name, account_number, account_holder,
	status, processed_by, processed_at, proof_path, reject_reason, created_at, updated_at`

// Create inserts a new withdrawal request within the caller's transaction,
// alongside the balance reservation.
func (r *WithdrawalRepo) Create(ctx context.Context, tx pgx.Tx, w *domain.WithdrawalRequest) error {
	query := `INSERT INTO withdrawal_requests (id, worker_id, amount, fee, net_amount, bank_name,
		account_number, account_holder, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`

	_, err := tx.Exec(ctx, query,
		w.ID, w.WorkerID, w.Amount, w.Fee, w.NetAmount,
		w.BankName, w.AccountNumber, w.AccountHolder,
		w.Status, w.CreatedAt, w.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert withdrawal request: %w", err)
	}
	return nil
}

// GetByID fetches a withdrawal request by UUID.
func (r *WithdrawalRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.WithdrawalRequest, error) {
	query := `SELECT ` + withdrawalColumns + ` FROM withdrawal_requests WHERE id = $1`

	w, err := scanWithdrawalRow(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get withdrawal by id: %w", err)
	}
	return w, nil
}

// Decide flips pending -> next inside tx. The WHERE guard on pending makes
// double-processing affect zero rows.
func (r *WithdrawalRepo) Decide(ctx context.Context, tx pgx.Tx, id uuid.UUID, next domain.WithdrawalStatus, processedBy uuid.UUID, proofPath, rejectReason *string) (bool, error) {
	query := `UPDATE withdrawal_requests
		SET status = $2, processed_by = $3, processed_at = NOW(), proof_path = $4, reject_reason = $5, updated_at = NOW()
		WHERE id = $1 AND status = $6`

	tag, err := tx.Exec(ctx, query, id, next, processedBy, proofPath, rejectReason, domain.WithdrawalStatusPending)
	if err != nil {
		return false, fmt.Errorf("decide withdrawal: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

// List returns withdrawal requests matching the filter, newest first.
func (r *WithdrawalRepo) List(ctx context.Context, filter ports.WithdrawalListFilter) ([]domain.WithdrawalRequest, error) {
	var (
		where []string
		args  []any
	)

	if filter.WorkerID != nil {
		args = append(args, *filter.WorkerID)
		where = append(where, fmt.Sprintf("worker_id = $%d", len(args)))
	}
	if filter.Status != nil {
		args = append(args, *filter.Status)
		where = append(where, fmt.Sprintf("status = $%d", len(args)))
	}

	query := `SELECT ` + withdrawalColumns + ` FROM withdrawal_requests`
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
		return nil, fmt.Errorf("list withdrawal requests: %w", err)
	}
	defer rows.Close()

	var withdrawals []domain.WithdrawalRequest
	for rows.Next() {
		w, err := scanWithdrawalRow(rows)
		if err != nil {
			return nil, err
		}
		withdrawals = append(withdrawals, *w)
	}
	return withdrawals, rows.Err()
}

func scanWithdrawalRow(row pgx.Row) (*domain.WithdrawalRequest, error) {
	w := &domain.WithdrawalRequest{}
	err := row.Scan(
		&w.ID, &w.WorkerID, &w.Amount, &w.Fee, &w.NetAmount,
		&w.BankName, &w.AccountNumber, &w.AccountHolder,
		&w.Status, &w.ProcessedBy, &w.ProcessedAt, &w.ProofPath, &w.RejectReason,
		&w.CreatedAt, &w.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return w, nil
}
