package service

import (
	"context"
	"fmt"
	"time"

	"tukangku/internal/core/domain"
	"tukangku/internal/core/ports"
	"tukangku/pkg/apperror"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
)

// OrderServiceImpl implements ports.OrderService. Every transition locks the
// order row, flips the status with a conditional update and commits any
// wallet effect in the same database transaction.
type OrderServiceImpl struct {
	orderRepo    ports.OrderRepository
	walletRepo   ports.WalletRepository
	userRepo     ports.UserRepository
	categoryRepo ports.CategoryRepository
	transactor   ports.DBTransactor
	log          zerolog.Logger
}

// NewOrderService creates a new OrderServiceImpl.
func NewOrderService(
	orderRepo ports.OrderRepository,
	walletRepo ports.WalletRepository,
	userRepo ports.UserRepository,
	categoryRepo ports.CategoryRepository,
	transactor ports.DBTransactor,
	log zerolog.Logger,
) *OrderServiceImpl {
	return &OrderServiceImpl{
		orderRepo:    orderRepo,
		walletRepo:   walletRepo,
		userRepo:     userRepo,
		categoryRepo: categoryRepo,
		transactor:   transactor,
		log:          log,
	}
}

// Create books a worker. Wallet-paid orders reserve the full amount from the
// client's balance before the order row exists; either both happen or neither.
func (s *OrderServiceImpl) Create(ctx context.Context, req ports.CreateOrderRequest) (*domain.Order, error) {
	if req.BaseAmount <= 0 || req.ExtraAmount < 0 {
		return nil, apperror.ErrInvalidAmount()
	}
	if req.ClientID == req.WorkerID {
		return nil, apperror.Validation("cannot book yourself")
	}
	if req.PaymentMethod != domain.PaymentMethodWallet && req.PaymentMethod != domain.PaymentMethodCash {
		return nil, apperror.Validation("payment method must be wallet or cash")
	}

	worker, err := s.userRepo.GetByID(ctx, req.WorkerID)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("find worker: %w", err))
	}
	if worker == nil || worker.Role != domain.RoleWorker || !worker.Active {
		return nil, apperror.ErrNotFound("worker")
	}

	category, err := s.categoryRepo.GetByID(ctx, req.CategoryID)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("find category: %w", err))
	}
	if category == nil || !category.Active {
		return nil, apperror.ErrNotFound("category")
	}

	totalAmount := req.BaseAmount + req.ExtraAmount

	dbTx, err := s.transactor.Begin(ctx)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("begin tx: %w", err))
	}
	defer dbTx.Rollback(ctx) //nolint:errcheck

	escrowed := req.PaymentMethod == domain.PaymentMethodWallet
	if escrowed {
		if err := s.walletRepo.Debit(ctx, dbTx, req.ClientID, totalAmount); err != nil {
			return nil, err
		}
	}

	now := time.Now().UTC()
	order := &domain.Order{
		ID:            uuid.New(),
		OrderNumber:   fmt.Sprintf("TRX-%d", now.UnixMilli()),
		ClientID:      req.ClientID,
		WorkerID:      req.WorkerID,
		CategoryID:    req.CategoryID,
		Title:         req.Title,
		Description:   req.Description,
		Location:      req.Location,
		ScheduledAt:   req.ScheduledAt,
		BaseAmount:    req.BaseAmount,
		ExtraAmount:   req.ExtraAmount,
		TotalAmount:   totalAmount,
		PaymentMethod: req.PaymentMethod,
		Status:        domain.OrderStatusPending,
		Escrowed:      escrowed,
		ClientNote:    req.ClientNote,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	if err := s.orderRepo.Create(ctx, dbTx, order); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("create order: %w", err))
	}

	if err := dbTx.Commit(ctx); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("commit tx: %w", err))
	}

	s.log.Info().
		Str("order_id", order.ID.String()).
		Str("order_number", order.OrderNumber).
		Int64("total_amount", totalAmount).
		Bool("escrowed", escrowed).
		Msg("order created")

	return order, nil
}

// Accept moves a pending order to accepted. Only the assigned worker may
// accept, and only while the order is still pending.
func (s *OrderServiceImpl) Accept(ctx context.Context, workerID, orderID uuid.UUID) (*domain.Order, error) {
	dbTx, err := s.transactor.Begin(ctx)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("begin tx: %w", err))
	}
	defer dbTx.Rollback(ctx) //nolint:errcheck

	order, err := s.lockOwnedByWorker(ctx, dbTx, workerID, orderID)
	if err != nil {
		return nil, err
	}

	ok, err := s.orderRepo.UpdateStatus(ctx, dbTx, orderID,
		domain.OrderStatusPending, domain.OrderStatusAccepted,
		ports.OrderStatusPatch{AcceptedAt: true})
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("accept order: %w", err))
	}
	if !ok {
		return nil, apperror.ErrInvalidTransition()
	}

	if err := dbTx.Commit(ctx); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("commit tx: %w", err))
	}

	now := time.Now().UTC()
	order.Status = domain.OrderStatusAccepted
	order.AcceptedAt = &now
	order.UpdatedAt = now

	s.log.Info().Str("order_id", orderID.String()).Msg("order accepted")
	return order, nil
}

// Reject moves a pending order to rejected and refunds the escrow, if any,
// to the client in the same transaction.
func (s *OrderServiceImpl) Reject(ctx context.Context, workerID, orderID uuid.UUID, reason string) (*domain.Order, error) {
	if reason == "" {
		return nil, apperror.Validation("reject reason is required")
	}

	dbTx, err := s.transactor.Begin(ctx)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("begin tx: %w", err))
	}
	defer dbTx.Rollback(ctx) //nolint:errcheck

	order, err := s.lockOwnedByWorker(ctx, dbTx, workerID, orderID)
	if err != nil {
		return nil, err
	}

	ok, err := s.orderRepo.UpdateStatus(ctx, dbTx, orderID,
		domain.OrderStatusPending, domain.OrderStatusRejected,
		ports.OrderStatusPatch{RejectedAt: true, RejectReason: &reason})
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("reject order: %w", err))
	}
	if !ok {
		return nil, apperror.ErrInvalidTransition()
	}

	if order.Escrowed {
		if err := s.walletRepo.Credit(ctx, dbTx, order.ClientID, order.TotalAmount); err != nil {
			return nil, err
		}
	}

	if err := dbTx.Commit(ctx); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("commit tx: %w", err))
	}

	now := time.Now().UTC()
	order.Status = domain.OrderStatusRejected
	order.RejectedAt = &now
	order.RejectReason = &reason
	order.UpdatedAt = now

	s.log.Info().
		Str("order_id", orderID.String()).
		Bool("refunded", order.Escrowed).
		Msg("order rejected")
	return order, nil
}

// Start moves an accepted order to in_progress.
func (s *OrderServiceImpl) Start(ctx context.Context, workerID, orderID uuid.UUID) (*domain.Order, error) {
	dbTx, err := s.transactor.Begin(ctx)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("begin tx: %w", err))
	}
	defer dbTx.Rollback(ctx) //nolint:errcheck

	order, err := s.lockOwnedByWorker(ctx, dbTx, workerID, orderID)
	if err != nil {
		return nil, err
	}

	ok, err := s.orderRepo.UpdateStatus(ctx, dbTx, orderID,
		domain.OrderStatusAccepted, domain.OrderStatusInProgress,
		ports.OrderStatusPatch{StartedAt: true})
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("start order: %w", err))
	}
	if !ok {
		return nil, apperror.ErrInvalidTransition()
	}

	if err := dbTx.Commit(ctx); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("commit tx: %w", err))
	}

	now := time.Now().UTC()
	order.Status = domain.OrderStatusInProgress
	order.StartedAt = &now
	order.UpdatedAt = now

	s.log.Info().Str("order_id", orderID.String()).Msg("order started")
	return order, nil
}

// Complete moves an in_progress order to completed and, for escrowed orders,
// pays the reserved amount out to the worker in the same transaction.
func (s *OrderServiceImpl) Complete(ctx context.Context, workerID, orderID uuid.UUID) (*domain.Order, error) {
	dbTx, err := s.transactor.Begin(ctx)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("begin tx: %w", err))
	}
	defer dbTx.Rollback(ctx) //nolint:errcheck

	order, err := s.lockOwnedByWorker(ctx, dbTx, workerID, orderID)
	if err != nil {
		return nil, err
	}

	ok, err := s.orderRepo.UpdateStatus(ctx, dbTx, orderID,
		domain.OrderStatusInProgress, domain.OrderStatusCompleted,
		ports.OrderStatusPatch{CompletedAt: true})
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("complete order: %w", err))
	}
	if !ok {
		return nil, apperror.ErrInvalidTransition()
	}

	if order.Escrowed {
		if err := s.walletRepo.Credit(ctx, dbTx, order.WorkerID, order.TotalAmount); err != nil {
			return nil, err
		}
	}

	if err := dbTx.Commit(ctx); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("commit tx: %w", err))
	}

	now := time.Now().UTC()
	order.Status = domain.OrderStatusCompleted
	order.CompletedAt = &now
	order.UpdatedAt = now

	s.log.Info().
		Str("order_id", orderID.String()).
		Bool("paid_out", order.Escrowed).
		Int64("amount", order.TotalAmount).
		Msg("order completed")
	return order, nil
}

// Cancel lets the client withdraw a pending or accepted order. Escrow is
// refunded in full; in_progress and terminal orders cannot be cancelled.
func (s *OrderServiceImpl) Cancel(ctx context.Context, clientID, orderID uuid.UUID, reason string) (*domain.Order, error) {
	if reason == "" {
		return nil, apperror.Validation("cancel reason is required")
	}

	dbTx, err := s.transactor.Begin(ctx)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("begin tx: %w", err))
	}
	defer dbTx.Rollback(ctx) //nolint:errcheck

	order, err := s.orderRepo.GetByIDForUpdate(ctx, dbTx, orderID)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("lock order: %w", err))
	}
	if order == nil {
		return nil, apperror.ErrNotFound("order")
	}
	if order.ClientID != clientID {
		return nil, apperror.ErrForbidden()
	}
	if !order.Status.CanTransitionTo(domain.OrderStatusCancelled) {
		return nil, apperror.ErrInvalidTransition()
	}

	ok, err := s.orderRepo.UpdateStatus(ctx, dbTx, orderID,
		order.Status, domain.OrderStatusCancelled,
		ports.OrderStatusPatch{CancelledAt: true, CancelReason: &reason, CancelledBy: &clientID})
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("cancel order: %w", err))
	}
	if !ok {
		return nil, apperror.ErrInvalidTransition()
	}

	if order.Escrowed {
		if err := s.walletRepo.Credit(ctx, dbTx, order.ClientID, order.TotalAmount); err != nil {
			return nil, err
		}
	}

	if err := dbTx.Commit(ctx); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("commit tx: %w", err))
	}

	now := time.Now().UTC()
	order.Status = domain.OrderStatusCancelled
	order.CancelledAt = &now
	order.CancelReason = &reason
	order.CancelledBy = &clientID
	order.UpdatedAt = now

	s.log.Info().
		Str("order_id", orderID.String()).
		Bool("refunded", order.Escrowed).
		Msg("order cancelled")
	return order, nil
}

// ConfirmCashPayment records that the worker received cash for a completed
// cash order. It is a one-shot flag with no wallet effect.
func (s *OrderServiceImpl) ConfirmCashPayment(ctx context.Context, workerID, orderID uuid.UUID) error {
	dbTx, err := s.transactor.Begin(ctx)
	if err != nil {
		return apperror.InternalError(fmt.Errorf("begin tx: %w", err))
	}
	defer dbTx.Rollback(ctx) //nolint:errcheck

	order, err := s.lockOwnedByWorker(ctx, dbTx, workerID, orderID)
	if err != nil {
		return err
	}

	ok, err := s.orderRepo.ConfirmCashPayment(ctx, dbTx, order.ID, workerID)
	if err != nil {
		return apperror.InternalError(fmt.Errorf("confirm cash payment: %w", err))
	}
	if !ok {
		return apperror.ErrInvalidTransition()
	}

	if err := dbTx.Commit(ctx); err != nil {
		return apperror.InternalError(fmt.Errorf("commit tx: %w", err))
	}

	s.log.Info().Str("order_id", orderID.String()).Msg("cash payment confirmed")
	return nil
}

// GetForPrincipal returns an order visible to the caller: its client, its
// worker, or any admin.
func (s *OrderServiceImpl) GetForPrincipal(ctx context.Context, principalID uuid.UUID, role domain.Role, orderID uuid.UUID) (*domain.Order, error) {
	order, err := s.orderRepo.GetByID(ctx, orderID)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("find order: %w", err))
	}
	if order == nil {
		return nil, apperror.ErrNotFound("order")
	}

	if role != domain.RoleAdmin && order.ClientID != principalID && order.WorkerID != principalID {
		return nil, apperror.ErrForbidden()
	}

	return order, nil
}

// List returns orders matching the filter, newest first.
func (s *OrderServiceImpl) List(ctx context.Context, filter ports.OrderListFilter) ([]domain.Order, error) {
	orders, err := s.orderRepo.List(ctx, filter)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("list orders: %w", err))
	}
	return orders, nil
}

// lockOwnedByWorker locks the order row and verifies the caller is its
// assigned worker.
func (s *OrderServiceImpl) lockOwnedByWorker(ctx context.Context, dbTx pgx.Tx, workerID, orderID uuid.UUID) (*domain.Order, error) {
	order, err := s.orderRepo.GetByIDForUpdate(ctx, dbTx, orderID)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("lock order: %w", err))
	}
	if order == nil {
		return nil, apperror.ErrNotFound("order")
	}
	if order.WorkerID != workerID {
		return nil, apperror.ErrForbidden()
	}
	return order, nil
}
