package ports

import (
	"context"
	"time"

	"tukangku/internal/core/domain"

	"github.com/google/uuid"
)

// HashService handles password hashing (Argon2id).
type HashService interface {
	Hash(password string) (string, error)
	Verify(password string, hash string) (bool, error)
}

// TokenService handles JWT token operations.
type TokenService interface {
	Generate(userID uuid.UUID, role domain.Role) (string, time.Time, error)
	Validate(tokenString string) (*TokenClaims, error)
}

// TokenClaims holds the parsed JWT claims.
type TokenClaims struct {
	UserID uuid.UUID
	Role   domain.Role
}

// --- Service Ports (Business Logic) ---

// AuthService registers principals and issues tokens.
type AuthService interface {
	Register(ctx context.Context, req RegisterRequest) (*domain.User, error)
	Login(ctx context.Context, username, password string) (string, time.Time, *domain.User, error)
	GetWorkerProfile(ctx context.Context, userID uuid.UUID) (*domain.WorkerProfile, error)
}

// RegisterRequest holds validated input for registration.
type RegisterRequest struct {
	Username string
	Email    string
	Phone    string
	Password string
	FullName string
	Role     domain.Role // client or worker; admins are seeded out of band
}

// OrderService is the booking state machine. Every transition commits its
// wallet side effect in the same database transaction, and fails with
// ErrInvalidTransition when a concurrent actor moved the order first.
type OrderService interface {
	Create(ctx context.Context, req CreateOrderRequest) (*domain.Order, error)
	Accept(ctx context.Context, workerID, orderID uuid.UUID) (*domain.Order, error)
	Reject(ctx context.Context, workerID, orderID uuid.UUID, reason string) (*domain.Order, error)
	Start(ctx context.Context, workerID, orderID uuid.UUID) (*domain.Order, error)
	Complete(ctx context.Context, workerID, orderID uuid.UUID) (*domain.Order, error)
	Cancel(ctx context.Context, clientID, orderID uuid.UUID, reason string) (*domain.Order, error)
	ConfirmCashPayment(ctx context.Context, workerID, orderID uuid.UUID) error
	GetForPrincipal(ctx context.Context, principalID uuid.UUID, role domain.Role, orderID uuid.UUID) (*domain.Order, error)
	List(ctx context.Context, filter OrderListFilter) ([]domain.Order, error)
}

// CreateOrderRequest holds validated input for booking creation.
type CreateOrderRequest struct {
	ClientID      uuid.UUID
	WorkerID      uuid.UUID
	CategoryID    uuid.UUID
	Title         string
	Description   string
	Location      string
	ScheduledAt   time.Time
	BaseAmount    int64
	ExtraAmount   int64
	PaymentMethod domain.PaymentMethod
	ClientNote    string
}

// TopupService is the admin-gated deposit flow.
type TopupService interface {
	Request(ctx context.Context, userID uuid.UUID, amount int64, proofPath string) (*domain.TopupRequest, error)
	Decide(ctx context.Context, adminID, topupID uuid.UUID, approve bool, rejectReason string) (*domain.TopupRequest, error)
	List(ctx context.Context, filter TopupListFilter) ([]domain.TopupRequest, error)
}

// WithdrawalService is the worker payout flow. The gross amount is reserved
// at request time.
type WithdrawalService interface {
	Request(ctx context.Context, req WithdrawalRequestInput) (*domain.WithdrawalRequest, error)
	Decide(ctx context.Context, adminID, withdrawalID uuid.UUID, complete bool, proofPath, rejectReason string) (*domain.WithdrawalRequest, error)
	List(ctx context.Context, filter WithdrawalListFilter) ([]domain.WithdrawalRequest, error)
}

// WithdrawalRequestInput holds validated input for a payout request.
type WithdrawalRequestInput struct {
	WorkerID      uuid.UUID
	Amount        int64 // Gross
	BankName      string
	AccountNumber string
	AccountHolder string
}

// RatingService records one-time ratings and maintains worker aggregates.
type RatingService interface {
	Submit(ctx context.Context, req SubmitRatingRequest) (*domain.Rating, error)
	ListByWorker(ctx context.Context, workerID uuid.UUID, limit, offset int) ([]domain.Rating, error)
}

// SubmitRatingRequest holds validated input for rating submission.
type SubmitRatingRequest struct {
	ClientID uuid.UUID
	OrderID  uuid.UUID
	Score    int
	Review   string
}

// WalletService exposes read access to the points ledger.
type WalletService interface {
	GetBalance(ctx context.Context, userID uuid.UUID) (int64, error)
}
