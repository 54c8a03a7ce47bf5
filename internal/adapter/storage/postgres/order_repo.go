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

// OrderRepo implements ports.OrderRepository.
type OrderRepo struct {
	pool Pool
}

// NewOrderRepo creates a new OrderRepo.
func NewOrderRepo(pool Pool) *OrderRepo {
	return &OrderRepo{pool: pool}
}

const orderColumns = `id, order_number, client_id, worker_id, category_id, title, description, location,
	scheduled_at, base_amount, extra_amount, total_amount, payment_method, status, escrowed,
	client_note, cancel_reason, reject_reason, cancelled_by, cash_confirmed, cash_confirmed_at,
	accepted_at, started_at, completed_at, cancelled_at, rejected_at, created_at, updated_at`

// Create inserts a new order within the caller's transaction.
func (r *OrderRepo) Create(ctx context.Context, tx pgx.Tx, o *domain.Order) error {
	query := `INSERT INTO orders (id, order_number, client_id, worker_id, category_id, title, description, location,
		scheduled_at, base_amount, extra_amount, total_amount, payment_method, status, escrowed,
		client_note, cash_confirmed, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19)`

	_, err := tx.Exec(ctx, query,
		o.ID, o.OrderNumber, o.ClientID, o.WorkerID, o.CategoryID,
		o.Title, o.Description, o.Location, o.ScheduledAt,
		o.BaseAmount, o.ExtraAmount, o.TotalAmount,
		o.PaymentMethod, o.Status, o.Escrowed,
		o.ClientNote, o.CashConfirmed, o.CreatedAt, o.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert order: %w", err)
	}
	return nil
}

// GetByID fetches an order by UUID (non-locking read).
func (r *OrderRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE id = $1`
	return scanOrder(r.pool.QueryRow(ctx, query, id))
}

// GetByIDForUpdate fetches an order with a row lock. Must be called within
// a transaction.
func (r *OrderRepo) GetByIDForUpdate(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*domain.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE id = $1 FOR UPDATE`
	return scanOrder(tx.QueryRow(ctx, query, id))
}

// UpdateStatus applies a conditional status flip: the row is written only
// when it still holds the expected status. Returns false when another actor
// already moved the order, so the caller can surface the lost race instead
// of double-applying a side effect.
func (r *OrderRepo) UpdateStatus(ctx context.Context, tx pgx.Tx, id uuid.UUID, expected, next domain.OrderStatus, patch ports.OrderStatusPatch) (bool, error) {
	set := []string{"status = $3", "updated_at = NOW()"}
	args := []any{id, expected, next}

	if patch.AcceptedAt {
		set = append(set, "accepted_at = NOW()")
	}
	if patch.StartedAt {
		set = append(set, "started_at = NOW()")
	}
	if patch.CompletedAt {
		set = append(set, "completed_at = NOW()")
	}
	if patch.CancelledAt {
		set = append(set, "cancelled_at = NOW()")
	}
	if patch.RejectedAt {
		set = append(set, "rejected_at = NOW()")
	}
	if patch.CancelReason != nil {
		args = append(args, *patch.CancelReason)
		set = append(set, fmt.Sprintf("cancel_reason = $%d", len(args)))
	}
	if patch.RejectReason != nil {
		args = append(args, *patch.RejectReason)
		set = append(set, fmt.Sprintf("reject_reason = $%d", len(args)))
	}
	if patch.CancelledBy != nil {
		args = append(args, *patch.CancelledBy)
		set = append(set, fmt.Sprintf("cancelled_by = $%d", len(args)))
	}

	query := fmt.Sprintf(`UPDATE orders SET %s WHERE id = $1 AND status = $2`, strings.Join(set, ", "))

	tag, err := tx.Exec(ctx, query, args...)
	if err != nil {
		return false, fmt.Errorf("update order status: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

// ConfirmCashPayment marks a completed cash order as paid. The predicate
// carries the full precondition so a repeat call affects zero rows.
func (r *OrderRepo) ConfirmCashPayment(ctx context.Context, tx pgx.Tx, id uuid.UUID, workerID uuid.UUID) (bool, error) {
	query := `UPDATE orders SET cash_confirmed = TRUE, cash_confirmed_at = NOW(), updated_at = NOW()
		WHERE id = $1 AND worker_id = $2 AND status = $3 AND payment_method = $4 AND cash_confirmed = FALSE`

	tag, err := tx.Exec(ctx, query, id, workerID, domain.OrderStatusCompleted, domain.PaymentMethodCash)
	if err != nil {
		return false, fmt.Errorf("confirm cash payment: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

// List returns orders matching the filter, newest first.
func (r *OrderRepo) List(ctx context.Context, filter ports.OrderListFilter) ([]domain.Order, error) {
	var (
		where []string
		args  []any
	)

	if filter.ClientID != nil {
		args = append(args, *filter.ClientID)
		where = append(where, fmt.Sprintf("client_id = $%d", len(args)))
	}
	if filter.WorkerID != nil {
		args = append(args, *filter.WorkerID)
		where = append(where, fmt.Sprintf("worker_id = $%d", len(args)))
	}
	if filter.Status != nil {
		args = append(args, *filter.Status)
		where = append(where, fmt.Sprintf("status = $%d", len(args)))
	}
	if filter.PaymentMethod != nil {
		args = append(args, *filter.PaymentMethod)
		where = append(where, fmt.Sprintf("payment_method = $%d", len(args)))
	}

	query := `SELECT ` + orderColumns + ` FROM orders`
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
		return nil, fmt.Errorf("list orders: %w", err)
	}
	defer rows.Close()

	var orders []domain.Order
	for rows.Next() {
		o, err := scanOrderRow(rows)
		if err != nil {
			return nil, err
		}
		orders = append(orders, *o)
	}
	return orders, rows.Err()
}

func scanOrder(row pgx.Row) (*domain.Order, error) {
	o, err := scanOrderRow(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return o, nil
}

func scanOrderRow(row pgx.Row) (*domain.Order, error) {
	o := &domain.Order{}
	err := row.Scan(
		&o.ID, &o.OrderNumber, &o.ClientID, &o.WorkerID, &o.CategoryID,
		&o.Title, &o.Description, &o.Location, &o.ScheduledAt,
		&o.BaseAmount, &o.ExtraAmount, &o.TotalAmount,
		&o.PaymentMethod, &o.Status, &o.Escrowed,
		&o.ClientNote, &o.CancelReason, &o.RejectReason, &o.CancelledBy,
		&o.CashConfirmed, &o.CashConfirmedAt,
		&o.AcceptedAt, &o.StartedAt, &o.CompletedAt, &o.CancelledAt, &o.RejectedAt,
		&o.CreatedAt, &o.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return o, nil
}
