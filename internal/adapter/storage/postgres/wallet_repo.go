package postgres

import (
	"context"
	"errors"
	"fmt"

	"tukangku/pkg/apperror"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// WalletRepo implements ports.WalletRepository. Balances live on the users
// table; the check-and-decrement in Debit is a single UPDATE so concurrent
// debits against the same account serialize on the row and can never both
// pass a balance sufficient for only one.
type WalletRepo struct {
	pool Pool
}

// NewWalletRepo creates a new WalletRepo.
func NewWalletRepo(pool Pool) *WalletRepo {
	return &WalletRepo{pool: pool}
}

// Credit atomically adds amount to the user's balance within tx.
func (r *WalletRepo) Credit(ctx context.Context, tx pgx.Tx, userID uuid.UUID, amount int64) error {
	if amount <= 0 {
		return apperror.ErrInvalidAmount()
	}

	query := `UPDATE users SET balance = balance + $2, updated_at = NOW() WHERE id = $1`
	tag, err := tx.Exec(ctx, query, userID, amount)
	if err != nil {
		return fmt.Errorf("credit balance: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperror.ErrNotFound("account")
	}
	return nil
}

// Debit atomically subtracts amount when the balance suffices, within tx.
// The balance guard is part of the UPDATE predicate: zero rows affected for
// an existing user means the balance check failed.
func (r *WalletRepo) Debit(ctx context.Context, tx pgx.Tx, userID uuid.UUID, amount int64) error {
	if amount <= 0 {
		return apperror.ErrInvalidAmount()
	}

	query := `UPDATE users SET balance = balance - $2, updated_at = NOW()
		WHERE id = $1 AND balance >= $2`
	tag, err := tx.Exec(ctx, query, userID, amount)
	if err != nil {
		return fmt.Errorf("debit balance: %w", err)
	}
	if tag.RowsAffected() > 0 {
		return nil
	}

	// Distinguish a missing account from an insufficient balance.
	var exists bool
	err = tx.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM users WHERE id = $1)`, userID).Scan(&exists)
	if err != nil {
		return fmt.Errorf("check account exists: %w", err)
	}
	if !exists {
		return apperror.ErrNotFound("account")
	}
	return apperror.ErrInsufficientBalance()
}

// GetBalance reads the current balance without locking.
func (r *WalletRepo) GetBalance(ctx context.Context, userID uuid.UUID) (int64, error) {
	var balance int64
	err := r.pool.QueryRow(ctx, `SELECT balance FROM users WHERE id = $1`, userID).Scan(&balance)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, apperror.ErrNotFound("account")
		}
		return 0, fmt.Errorf("get balance: %w", err)
	}
	return balance, nil
}
