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

// WithdrawalServiceImpl implements ports.WithdrawalService.
type WithdrawalServiceImpl struct {
	withdrawalRepo ports.WithdrawalRepository
	walletRepo     ports.WalletRepository
	transactor     ports.DBTransactor
	log            zerolog.Logger
}

// NewWithdrawalService creates a new WithdrawalServiceImpl.
func NewWithdrawalService(
	withdrawalRepo ports.WithdrawalRepository,
	walletRepo ports.WalletRepository,
	transactor ports.DBTransactor,
	log zerolog.Logger,
) *WithdrawalServiceImpl {
	return &WithdrawalServiceImpl{
		withdrawalRepo: withdrawalRepo,
		walletRepo:     walletRepo,
		transactor:     transactor,
		log:            log,
	}
}

// Request reserves the gross amount from the worker's balance and records a
// pending payout in one transaction. The atomic debit is what keeps two
// concurrent requests from both succeeding against one balance.
func (s *WithdrawalServiceImpl) Request(ctx context.Context, req ports.WithdrawalRequestInput) (*domain.WithdrawalRequest, error) {
	if req.Amount < domain.MinWithdrawalAmount {
		return nil, apperror.ErrWithdrawalBelowMinimum(domain.MinWithdrawalAmount)
	}
	if req.BankName == "" || req.AccountNumber == "" || req.AccountHolder == "" {
		return nil, apperror.Validation("bank account details are required")
	}

	fee := domain.WithdrawalFee(req.Amount)

	dbTx, err := s.transactor.Begin(ctx)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("begin tx: %w", err))
	}
	defer dbTx.Rollback(ctx) //nolint:errcheck

	if err := s.walletRepo.Debit(ctx, dbTx, req.WorkerID, req.Amount); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	withdrawal := &domain.WithdrawalRequest{
		ID:            uuid.New(),
		WorkerID:      req.WorkerID,
		Amount:        req.Amount,
		Fee:           fee,
		NetAmount:     req.Amount - fee,
		BankName:      req.BankName,
		AccountNumber: req.AccountNumber,
		AccountHolder: req.AccountHolder,
		Status:        domain.WithdrawalStatusPending,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	if err := s.withdrawalRepo.Create(ctx, dbTx, withdrawal); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("create withdrawal: %w", err))
	}

	if err := dbTx.Commit(ctx); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("commit tx: %w", err))
	}

	s.log.Info().
		Str("withdrawal_id", withdrawal.ID.String()).
		Str("worker_id", req.WorkerID.String()).
		Int64("gross", req.Amount).
		Int64("fee", fee).
		Msg("withdrawal requested")

	return withdrawal, nil
}

// Decide resolves a pending payout. Completion records the transfer proof;
// the funds already left the balance at request time. Rejection credits the
// full gross back in the same transaction that flips the status.
func (s *WithdrawalServiceImpl) Decide(ctx context.Context, adminID, withdrawalID uuid.UUID, complete bool, proofPath, rejectReason string) (*domain.WithdrawalRequest, error) {
	if complete && proofPath == "" {
		return nil, apperror.Validation("transfer proof is required")
	}
	if !complete && rejectReason == "" {
		return nil, apperror.Validation("reject reason is required")
	}

	withdrawal, err := s.withdrawalRepo.GetByID(ctx, withdrawalID)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("find withdrawal: %w", err))
	}
	if withdrawal == nil {
		return nil, apperror.ErrNotFound("withdrawal request")
	}
	if withdrawal.IsDecided() {
		return nil, apperror.ErrRequestAlreadyDecided()
	}

	next := domain.WithdrawalStatusCompleted
	var proofPtr, reasonPtr *string
	if complete {
		proofPtr = &proofPath
	} else {
		next = domain.WithdrawalStatusRejected
		reasonPtr = &rejectReason
	}

	dbTx, err := s.transactor.Begin(ctx)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("begin tx: %w", err))
	}
	defer dbTx.Rollback(ctx) //nolint:errcheck

	ok, err := s.withdrawalRepo.Decide(ctx, dbTx, withdrawalID, next, adminID, proofPtr, reasonPtr)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("decide withdrawal: %w", err))
	}
	if !ok {
		return nil, apperror.ErrRequestAlreadyDecided()
	}

	if !complete {
		// Refund the reserved gross, fee included
		if err := s.walletRepo.Credit(ctx, dbTx, withdrawal.WorkerID, withdrawal.Amount); err != nil {
			return nil, err
		}
	}

	if err := dbTx.Commit(ctx); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("commit tx: %w", err))
	}

	now := time.Now().UTC()
	withdrawal.Status = next
	withdrawal.ProcessedBy = &adminID
	withdrawal.ProcessedAt = &now
	withdrawal.ProofPath = proofPtr
	withdrawal.RejectReason = reasonPtr
	withdrawal.UpdatedAt = now

	s.log.Info().
		Str("withdrawal_id", withdrawalID.String()).
		Str("admin_id", adminID.String()).
		Bool("completed", complete).
		Msg("withdrawal decided")

	return withdrawal, nil
}

// List returns payout requests matching the filter, newest first.
func (s *WithdrawalServiceImpl) List(ctx context.Context, filter ports.WithdrawalListFilter) ([]domain.WithdrawalRequest, error) {
	withdrawals, err := s.withdrawalRepo.List(ctx, filter)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("list withdrawals: %w", err))
	}
	return withdrawals, nil
}
