package service

import (
	"context"
	"errors"
	"fmt"

	"tukangku/internal/core/ports"
	"tukangku/pkg/apperror"

	"github.com/google/uuid"
)

// WalletServiceImpl implements ports.WalletService. It only reads; balance
// mutations belong to the order, topup and withdrawal flows.
type WalletServiceImpl struct {
	walletRepo ports.WalletRepository
}

// NewWalletService creates a new WalletServiceImpl.
func NewWalletService(walletRepo ports.WalletRepository) *WalletServiceImpl {
	return &WalletServiceImpl{walletRepo: walletRepo}
}

// GetBalance returns the current point balance for a user.
func (s *WalletServiceImpl) GetBalance(ctx context.Context, userID uuid.UUID) (int64, error) {
	balance, err := s.walletRepo.GetBalance(ctx, userID)
	if err != nil {
		var appErr *apperror.AppError
		if errors.As(err, &appErr) {
			return 0, err
		}
		return 0, apperror.InternalError(fmt.Errorf("get balance: %w", err))
	}
	return balance, nil
}
