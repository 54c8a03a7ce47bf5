package ports

import (
	"context"

	"tukangku/internal/core/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// UserRepository defines persistence operations for principals.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error)
	GetByUsername(ctx context.Context, username string) (*domain.User, error)
}

// WalletRepository is the only path allowed to mutate a point balance.
// Both operations must run inside the same database transaction as the
// order/request mutation they back.
type WalletRepository interface {
	// Credit atomically increments a balance. Amount must be positive.
	Credit(ctx context.Context, tx pgx.Tx, userID uuid.UUID, amount int64) error
	// Debit atomically checks balance >= amount and decrements in one
	// statement. Returns apperror.ErrInsufficientBalance when the check
	// fails, so two concurrent debits can never both succeed on a balance
	// sufficient for only one.
	Debit(ctx context.Context, tx pgx.Tx, userID uuid.UUID, amount int64) error
	// GetBalance reads the current balance without locking.
	GetBalance(ctx context.Context, userID uuid.UUID) (int64, error)
}

// OrderListFilter narrows order listings. Nil fields are ignored.
type OrderListFilter struct {
	ClientID      *uuid.UUID
	WorkerID      *uuid.UUID
	Status        *domain.OrderStatus
	PaymentMethod *domain.PaymentMethod
	Limit         int
	Offset        int
}

// OrderRepository defines persistence operations for bookings.
// Methods accepting pgx.Tx participate in the caller's transaction.
type OrderRepository interface {
	Create(ctx context.Context, tx pgx.Tx, order *domain.Order) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Order, error)
	// GetByIDForUpdate locks the order row. Must be called within a transaction.
	GetByIDForUpdate(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*domain.Order, error)
	// UpdateStatus flips the status only when the row still holds expected.
	// Returns false when another actor moved it first (zero rows affected).
	UpdateStatus(ctx context.Context, tx pgx.Tx, id uuid.UUID, expected, next domain.OrderStatus, patch OrderStatusPatch) (bool, error)
	// ConfirmCashPayment sets the cash-confirmed flag when the order is
	// completed, cash-paid and not yet confirmed. Returns false otherwise.
	ConfirmCashPayment(ctx context.Context, tx pgx.Tx, id uuid.UUID, workerID uuid.UUID) (bool, error)
	List(ctx context.Context, filter OrderListFilter) ([]domain.Order, error)
}

// OrderStatusPatch carries the columns written alongside a status flip.
type OrderStatusPatch struct {
	AcceptedAt   bool // stamp accepted_at = now()
	StartedAt    bool
	CompletedAt  bool
	CancelledAt  bool
	RejectedAt   bool
	CancelReason *string
	RejectReason *string
	CancelledBy  *uuid.UUID
}

// TopupListFilter narrows top-up listings. Nil fields are ignored.
type TopupListFilter struct {
	UserID *uuid.UUID
	Status *domain.TopupStatus
	Limit  int
	Offset int
}

// TopupRepository defines persistence operations for deposit requests.
type TopupRepository interface {
	Create(ctx context.Context, topup *domain.TopupRequest) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.TopupRequest, error)
	// Decide flips pending -> next and records the reviewer. Returns false
	// when the request was already decided (conditional update on pending).
	Decide(ctx context.Context, tx pgx.Tx, id uuid.UUID, next domain.TopupStatus, reviewedBy uuid.UUID, rejectReason *string) (bool, error)
	List(ctx context.Context, filter TopupListFilter) ([]domain.TopupRequest, error)
}

// WithdrawalListFilter narrows withdrawal listings. Nil fields are ignored.
type WithdrawalListFilter struct {
	WorkerID *uuid.UUID
	Status   *domain.WithdrawalStatus
	Limit    int
	Offset   int
}

// WithdrawalRepository defines persistence operations for payout requests.
type WithdrawalRepository interface {
	// Create inserts the request inside the transaction that reserves the
	// gross amount from the worker's balance.
	Create(ctx context.Context, tx pgx.Tx, w *domain.WithdrawalRequest) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.WithdrawalRequest, error)
	// Decide flips pending -> next and records the processor. Returns false
	// when the request was already decided.
	Decide(ctx context.Context, tx pgx.Tx, id uuid.UUID, next domain.WithdrawalStatus, processedBy uuid.UUID, proofPath, rejectReason *string) (bool, error)
	List(ctx context.Context, filter WithdrawalListFilter) ([]domain.WithdrawalRequest, error)
}

// RatingRepository defines persistence for ratings and worker aggregates.
type RatingRepository interface {
	// Create inserts a rating. The orders unique index makes a duplicate
	// submission fail; the implementation maps that to a conflict error.
	Create(ctx context.Context, tx pgx.Tx, rating *domain.Rating) error
	GetByOrderID(ctx context.Context, orderID uuid.UUID) (*domain.Rating, error)
	ListByWorker(ctx context.Context, workerID uuid.UUID, limit, offset int) ([]domain.Rating, error)
	// RecomputeWorkerStats recalculates count and mean from the ratings
	// table and increments the completed-jobs counter, inside tx.
	RecomputeWorkerStats(ctx context.Context, tx pgx.Tx, workerID uuid.UUID) error
}

// WorkerProfileRepository reads worker public stats.
type WorkerProfileRepository interface {
	Create(ctx context.Context, profile *domain.WorkerProfile) error
	GetByUserID(ctx context.Context, userID uuid.UUID) (*domain.WorkerProfile, error)
}

// CategoryRepository is the read-only catalogue consumed at order creation.
type CategoryRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Category, error)
}

// DBTransactor provides database transaction management.
type DBTransactor interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}
