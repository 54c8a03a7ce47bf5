package domain

import (
	"time"

	"github.com/google/uuid"
)

// OrderStatus is the closed set of booking states.
type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "pending"
	OrderStatusAccepted   OrderStatus = "accepted"
	OrderStatusInProgress OrderStatus = "in_progress"
	OrderStatusCompleted  OrderStatus = "completed"
	OrderStatusCancelled  OrderStatus = "cancelled"
	OrderStatusRejected   OrderStatus = "rejected"
)

// PaymentMethod selects how an order is paid.
type PaymentMethod string

const (
	PaymentMethodWallet PaymentMethod = "wallet"
	PaymentMethodCash   PaymentMethod = "cash"
)

// orderTransitions is the explicit legality table for status changes.
// A transition not listed here is rejected.
var orderTransitions = map[OrderStatus][]OrderStatus{
	OrderStatusPending:    {OrderStatusAccepted, OrderStatusRejected, OrderStatusCancelled},
	OrderStatusAccepted:   {OrderStatusInProgress, OrderStatusCancelled},
	OrderStatusInProgress: {OrderStatusCompleted},
}

// CanTransitionTo reports whether moving from s to next is a legal edge.
func (s OrderStatus) CanTransitionTo(next OrderStatus) bool {
	for _, allowed := range orderTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// IsTerminal returns true once no further status change is possible.
func (s OrderStatus) IsTerminal() bool {
	return len(orderTransitions[s]) == 0
}

// ValidOrderStatus reports whether the token names a known status.
func ValidOrderStatus(s string) bool {
	switch OrderStatus(s) {
	case OrderStatusPending, OrderStatusAccepted, OrderStatusInProgress,
		OrderStatusCompleted, OrderStatusCancelled, OrderStatusRejected:
		return true
	}
	return false
}

// Order represents a booking between a client and a worker. Orders are never
// deleted; terminal states are final.
type Order struct {
	ID          uuid.UUID `json:"id"`
	OrderNumber string    `json:"order_number"`
	ClientID    uuid.UUID `json:"client_id"`
	WorkerID    uuid.UUID `json:"worker_id"`
	CategoryID  uuid.UUID `json:"category_id"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	Location    string    `json:"location"`
	ScheduledAt time.Time `json:"scheduled_at"`
	BaseAmount  int64     `json:"base_amount"`
	ExtraAmount int64     `json:"extra_amount"`
	TotalAmount int64     `json:"total_amount"`

	PaymentMethod PaymentMethod `json:"payment_method"`
	Status        OrderStatus   `json:"status"`
	// Escrowed is true when the client's wallet was debited at creation.
	// Such an order receives exactly one compensating effect over its
	// lifetime: a refund on rejection/cancellation, or a payout on completion.
	Escrowed bool `json:"escrowed"`

	ClientNote   string     `json:"client_note,omitempty"`
	CancelReason *string    `json:"cancel_reason,omitempty"`
	RejectReason *string    `json:"reject_reason,omitempty"`
	CancelledBy  *uuid.UUID `json:"cancelled_by,omitempty"`

	CashConfirmed   bool       `json:"cash_confirmed"`
	CashConfirmedAt *time.Time `json:"cash_confirmed_at,omitempty"`

	AcceptedAt  *time.Time `json:"accepted_at,omitempty"`
	StartedAt   *time.Time `json:"started_at,omitempty"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
	CancelledAt *time.Time `json:"cancelled_at,omitempty"`
	RejectedAt  *time.Time `json:"rejected_at,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// IsWalletPaid returns true when the order settles through the points ledger.
func (o *Order) IsWalletPaid() bool {
	return o.PaymentMethod == PaymentMethodWallet
}
