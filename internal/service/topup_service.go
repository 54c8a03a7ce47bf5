package service

import (
	"context"
	"fmt"
	"time"

	"tukangku/internal/core/domain"
	"tukangku/internal/core/ports"
	"tukangku/pkg/apperror"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// TopupServiceImpl implements ports.TopupService.
type TopupServiceImpl struct {
	topupRepo  ports.TopupRepository
	walletRepo ports.WalletRepository
	transactor ports.DBTransactor
	log        zerolog.Logger
}

// NewTopupService creates a new TopupServiceImpl.
func NewTopupService(
	topupRepo ports.TopupRepository,
	walletRepo ports.WalletRepository,
	transactor ports.DBTransactor,
	log zerolog.Logger,
) *TopupServiceImpl {
	return &TopupServiceImpl{
		topupRepo:  topupRepo,
		walletRepo: walletRepo,
		transactor: transactor,
		log:        log,
	}
}

// Request submits a deposit for admin review. No balance changes here; the
// credit happens only on approval.
func (s *TopupServiceImpl) Request(ctx context.Context, userID uuid.UUID, amount int64, proofPath string) (*domain.TopupRequest, error) {
	if amount <= 0 {
		return nil, apperror.ErrInvalidAmount()
	}

	now := time.Now().UTC()
	topup := &domain.TopupRequest{
		ID:        uuid.New(),
		UserID:    userID,
		Amount:    amount,
		Method:    "qris",
		ProofPath: proofPath,
		Status:    domain.TopupStatusPending,
		ExpiresAt: now.Add(domain.TopupValidity),
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.topupRepo.Create(ctx, topup); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("create topup: %w", err))
	}

	s.log.Info().
		Str("topup_id", topup.ID.String()).
		Str("user_id", userID.String()).
		Int64("amount", amount).
		Msg("topup requested")

	return topup, nil
}

// Decide resolves a pending deposit. Approval credits the requester in the
// same transaction that flips the status; the conditional update makes the
// decision one-shot under concurrent admins. Rejection requires a reason.
func (s *TopupServiceImpl) Decide(ctx context.Context, adminID, topupID uuid.UUID, approve bool, rejectReason string) (*domain.TopupRequest, error) {
	if !approve && rejectReason == "" {
		return nil, apperror.Validation("reject reason is required")
	}

	topup, err := s.topupRepo.GetByID(ctx, topupID)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("find topup: %w", err))
	}
	if topup == nil {
		return nil, apperror.ErrNotFound("topup request")
	}
	if topup.IsDecided() {
		return nil, apperror.ErrRequestAlreadyDecided()
	}

	next := domain.TopupStatusApproved
	var reasonPtr *string
	if !approve {
		next = domain.TopupStatusRejected
		reasonPtr = &rejectReason
	}

	dbTx, err := s.transactor.Begin(ctx)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("begin tx: %w", err))
	}
	defer dbTx.Rollback(ctx) //nolint:errcheck

	ok, err := s.topupRepo.Decide(ctx, dbTx, topupID, next, adminID, reasonPtr)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("decide topup: %w", err))
	}
	if !ok {
		return nil, apperror.ErrRequestAlreadyDecided()
	}

	if approve {
		if err := s.walletRepo.Credit(ctx, dbTx, topup.UserID, topup.Amount); err != nil {
			return nil, err
		}
	}

	if err := dbTx.Commit(ctx); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("commit tx: %w", err))
	}

	now := time.Now().UTC()
	topup.Status = next
	topup.ReviewedBy = &adminID
	topup.ReviewedAt = &now
	topup.RejectReason = reasonPtr
	topup.UpdatedAt = now

	s.log.Info().
		Str("topup_id", topupID.String()).
		Str("admin_id", adminID.String()).
		Bool("approved", approve).
		Msg("topup decided")

	return topup, nil
}

// List returns deposit requests matching the filter, newest first.
func (s *TopupServiceImpl) List(ctx context.Context, filter ports.TopupListFilter) ([]domain.TopupRequest, error) {
	topups, err := s.topupRepo.List(ctx, filter)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("list topups: %w", err))
	}
	return topups, nil
}
