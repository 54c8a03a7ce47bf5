package dto

// RegisterRequest is the request body for account registration.
type RegisterRequest struct {
	Username string `json:"username" binding:"required,min=3,max=50,safe_id"`
	Email    string `json:"email" binding:"required,email"`
	Phone    string `json:"phone,omitempty" binding:"omitempty,max=20"`
	Password string `json:"password" binding:"required,min=8,max=128"`
	FullName string `json:"full_name" binding:"required,min=1,max=100"`
	Role     string `json:"role" binding:"required,oneof=client worker"`
}

// LoginRequest is the request body for login.
type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// LoginResponse is the response body for successful login.
type LoginResponse struct {
	Token    string `json:"token"`
	Expiry   int64  `json:"expiry"` // Unix timestamp
	UserID   string `json:"user_id"`
	Role     string `json:"role"`
	FullName string `json:"full_name"`
}

// CreateOrderRequest is the request body for booking creation.
type CreateOrderRequest struct {
	WorkerID      string `json:"worker_id" binding:"required,uuid"`
	CategoryID    string `json:"category_id" binding:"required,uuid"`
	Title         string `json:"title" binding:"required,min=1,max=150"`
	Description   string `json:"description,omitempty" binding:"max=2000"`
	Location      string `json:"location" binding:"required,min=1,max=255"`
	ScheduledAt   string `json:"scheduled_at" binding:"required"` // RFC 3339
	BaseAmount    int64  `json:"base_amount" binding:"required,gt=0"`
	ExtraAmount   int64  `json:"extra_amount" binding:"gte=0"`
	PaymentMethod string `json:"payment_method" binding:"required,oneof=wallet cash"`
	ClientNote    string `json:"client_note,omitempty" binding:"max=500"`
}

// ReasonRequest is the request body for reject and cancel, which both
// require an explanation.
type ReasonRequest struct {
	Reason string `json:"reason" binding:"required,min=1,max=500"`
}

// TopupCreateRequest is the request body for a deposit request.
type TopupCreateRequest struct {
	Amount    int64  `json:"amount" binding:"required,gt=0"`
	ProofPath string `json:"proof_path" binding:"required,max=255"`
}

// TopupRejectRequest is the request body for rejecting a deposit.
type TopupRejectRequest struct {
	Reason string `json:"reason" binding:"required,min=1,max=500"`
}

// WithdrawalCreateRequest is the request body for a payout request.
type WithdrawalCreateRequest struct {
	Amount        int64  `json:"amount" binding:"required,gt=0"`
	BankName      string `json:"bank_name" binding:"required,max=100"`
	AccountNumber string `json:"account_number" binding:"required,max=50"`
	AccountHolder string `json:"account_holder" binding:"required,max=100"`
}

// WithdrawalCompleteRequest is the request body for completing a payout.
type WithdrawalCompleteRequest struct {
	ProofPath string `json:"proof_path" binding:"required,max=255"`
}

// RatingCreateRequest is the request body for rating a completed order.
type RatingCreateRequest struct {
	Score  int    `json:"score" binding:"required,min=1,max=5"`
	Review string `json:"review,omitempty" binding:"max=1000"`
}

// BalanceResponse is the response for a wallet balance query.
type BalanceResponse struct {
	Balance int64 `json:"balance"`
}

// WithdrawalQuoteResponse echoes the fee breakdown of a payout request.
type WithdrawalQuoteResponse struct {
	ID        string `json:"id"`
	Amount    int64  `json:"amount"`
	Fee       int64  `json:"fee"`
	NetAmount int64  `json:"net_amount"`
	Status    string `json:"status"`
}
