package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestOrderStatus_CanTransitionTo(t *testing.T) {
	tests := []struct {
		name string
		from OrderStatus
		to   OrderStatus
		want bool
	}{
		{"pending to accepted", OrderStatusPending, OrderStatusAccepted, true},
		{"pending to rejected", OrderStatusPending, OrderStatusRejected, true},
		{"pending to cancelled", OrderStatusPending, OrderStatusCancelled, true},
		{"pending to in_progress skips accept", OrderStatusPending, OrderStatusInProgress, false},
		{"pending to completed skips everything", OrderStatusPending, OrderStatusCompleted, false},
		{"accepted to in_progress", OrderStatusAccepted, OrderStatusInProgress, true},
		{"accepted to cancelled", OrderStatusAccepted, OrderStatusCancelled, true},
		{"accepted to rejected not allowed", OrderStatusAccepted, OrderStatusRejected, false},
		{"in_progress to completed", OrderStatusInProgress, OrderStatusCompleted, true},
		{"in_progress to cancelled not allowed", OrderStatusInProgress, OrderStatusCancelled, false},
		{"completed is terminal", OrderStatusCompleted, OrderStatusPending, false},
		{"cancelled is terminal", OrderStatusCancelled, OrderStatusAccepted, false},
		{"rejected is terminal", OrderStatusRejected, OrderStatusPending, false},
		{"no reversed edge", OrderStatusAccepted, OrderStatusPending, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.from.CanTransitionTo(tt.to))
		})
	}
}

func TestOrderStatus_IsTerminal(t *testing.T) {
	tests := []struct {
		status OrderStatus
		want   bool
	}{
		{OrderStatusPending, false},
		{OrderStatusAccepted, false},
		{OrderStatusInProgress, false},
		{OrderStatusCompleted, true},
		{OrderStatusCancelled, true},
		{OrderStatusRejected, true},
	}

	for _, tt := range tests {
		t.Run(string(tt.status), func(t *testing.T) {
			assert.Equal(t, tt.want, tt.status.IsTerminal())
		})
	}
}

func TestValidOrderStatus(t *testing.T) {
	assert.True(t, ValidOrderStatus("pending"))
	assert.True(t, ValidOrderStatus("in_progress"))
	assert.False(t, ValidOrderStatus("PENDING"))
	assert.False(t, ValidOrderStatus("done"))
	assert.False(t, ValidOrderStatus(""))
}

func TestOrder_IsWalletPaid(t *testing.T) {
	assert.True(t, (&Order{PaymentMethod: PaymentMethodWallet}).IsWalletPaid())
	assert.False(t, (&Order{PaymentMethod: PaymentMethodCash}).IsWalletPaid())
}

func TestWithdrawalFee(t *testing.T) {
	tests := []struct {
		name  string
		gross int64
		want  int64
	}{
		{"small amount", 10000, 200},
		{"exactly at cap boundary", 250000, 5000},
		{"above cap", 1000000, 5000},
		{"minimum withdrawal", 50000, 1000},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, WithdrawalFee(tt.gross))
		})
	}
}

func TestWithdrawalFee_NetAmounts(t *testing.T) {
	// Published examples of the platform's fee terms.
	assert.Equal(t, int64(9800), int64(10000)-WithdrawalFee(10000))
	assert.Equal(t, int64(995000), int64(1000000)-WithdrawalFee(1000000))
}

func TestTopupRequest_IsDecided(t *testing.T) {
	assert.False(t, (&TopupRequest{Status: TopupStatusPending}).IsDecided())
	assert.True(t, (&TopupRequest{Status: TopupStatusApproved}).IsDecided())
	assert.True(t, (&TopupRequest{Status: TopupStatusRejected}).IsDecided())
}

func TestWithdrawalRequest_IsDecided(t *testing.T) {
	assert.False(t, (&WithdrawalRequest{Status: WithdrawalStatusPending}).IsDecided())
	assert.True(t, (&WithdrawalRequest{Status: WithdrawalStatusCompleted}).IsDecided())
	assert.True(t, (&WithdrawalRequest{Status: WithdrawalStatusRejected}).IsDecided())
}

func TestValidScore(t *testing.T) {
	assert.False(t, ValidScore(0))
	assert.True(t, ValidScore(1))
	assert.True(t, ValidScore(5))
	assert.False(t, ValidScore(6))
	assert.False(t, ValidScore(-1))
}
