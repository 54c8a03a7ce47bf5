package domain

import (
	"time"

	"github.com/google/uuid"
)

// Withdrawal business constants. These are fixed platform terms, kept out of
// configuration on purpose.
const (
	MinWithdrawalAmount int64 = 50000
	WithdrawalFeeCap    int64 = 5000
	// WithdrawalFeeRate is 2% expressed in basis points.
	WithdrawalFeeRate int64 = 200
)

// WithdrawalFee computes the platform fee for a gross amount: 2% capped at
// WithdrawalFeeCap.
func WithdrawalFee(gross int64) int64 {
	fee := gross * WithdrawalFeeRate / 10000
	if fee > WithdrawalFeeCap {
		fee = WithdrawalFeeCap
	}
	return fee
}

// WithdrawalStatus is the state of a payout request. A request leaves
// pending at most once.
type WithdrawalStatus string

const (
	WithdrawalStatusPending   WithdrawalStatus = "pending"
	WithdrawalStatusCompleted WithdrawalStatus = "completed"
	WithdrawalStatusRejected  WithdrawalStatus = "rejected"
)

// WithdrawalRequest is a worker payout request. The gross amount is debited
// from the worker's balance when the request is created, so a rejection must
// credit the full gross back.
type WithdrawalRequest struct {
	ID            uuid.UUID        `json:"id"`
	WorkerID      uuid.UUID        `json:"worker_id"`
	Amount        int64            `json:"amount"` // Gross, reserved at request time
	Fee           int64            `json:"fee"`
	NetAmount     int64            `json:"net_amount"`
	BankName      string           `json:"bank_name"`
	AccountNumber string           `json:"account_number"`
	AccountHolder string           `json:"account_holder"`
	Status        WithdrawalStatus `json:"status"`
	ProcessedBy   *uuid.UUID       `json:"processed_by,omitempty"`
	ProcessedAt   *time.Time       `json:"processed_at,omitempty"`
	ProofPath     *string          `json:"proof_path,omitempty"` // Transfer proof, set on completion
	RejectReason  *string          `json:"reject_reason,omitempty"`
	CreatedAt     time.Time        `json:"created_at"`
	UpdatedAt     time.Time        `json:"updated_at"`
}

// IsDecided returns true once the request left the pending state.
func (w *WithdrawalRequest) IsDecided() bool {
	return w.Status != WithdrawalStatusPending
}
