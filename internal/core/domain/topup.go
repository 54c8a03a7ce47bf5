package domain

import (
	"time"

	"github.com/google/uuid"
)

// TopupStatus is the state of a deposit request. A request leaves pending
// at most once.
type TopupStatus string

const (
	TopupStatusPending  TopupStatus = "pending"
	TopupStatusApproved TopupStatus = "approved"
	TopupStatusRejected TopupStatus = "rejected"
	// TopupStatusExpired exists in the data model but no process currently
	// enforces ExpiresAt. Stale pending requests keep their status.
	TopupStatusExpired TopupStatus = "expired"
)

// TopupRequest is a client-submitted deposit awaiting an admin decision.
// Approval credits the client's balance in the same transaction that flips
// the status.
type TopupRequest struct {
	ID           uuid.UUID   `json:"id"`
	UserID       uuid.UUID   `json:"user_id"`
	Amount       int64       `json:"amount"`
	Method       string      `json:"method"` // e.g. "qris"
	ProofPath    string      `json:"proof_path"`
	Status       TopupStatus `json:"status"`
	ReviewedBy   *uuid.UUID  `json:"reviewed_by,omitempty"`
	ReviewedAt   *time.Time  `json:"reviewed_at,omitempty"`
	RejectReason *string     `json:"reject_reason,omitempty"`
	ExpiresAt    time.Time   `json:"expires_at"`
	CreatedAt    time.Time   `json:"created_at"`
	UpdatedAt    time.Time   `json:"updated_at"`
}

// IsDecided returns true once the request left the pending state.
func (t *TopupRequest) IsDecided() bool {
	return t.Status != TopupStatusPending
}

// TopupValidity is how long a submitted top-up proof remains reviewable.
const TopupValidity = 24 * time.Hour
