package handler

import (
	"context"

	"tukangku/internal/adapter/http/dto"
	"tukangku/internal/core/domain"
	"tukangku/internal/core/ports"
	"tukangku/pkg/apperror"
	"tukangku/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// WorkerHandler handles worker-facing endpoints: the job queue,
// withdrawals and the wallet balance.
type WorkerHandler struct {
	orderSvc      ports.OrderService
	withdrawalSvc ports.WithdrawalService
	ratingSvc     ports.RatingService
	walletSvc     ports.WalletService
}

// NewWorkerHandler creates a new WorkerHandler.
func NewWorkerHandler(orderSvc ports.OrderService, withdrawalSvc ports.WithdrawalService, ratingSvc ports.RatingService, walletSvc ports.WalletService) *WorkerHandler {
	return &WorkerHandler{
		orderSvc:      orderSvc,
		withdrawalSvc: withdrawalSvc,
		ratingSvc:     ratingSvc,
		walletSvc:     walletSvc,
	}
}

// ListOrders handles GET /api/v1/worker/orders.
func (h *WorkerHandler) ListOrders(c *gin.Context) {
	workerID, ok := principalID(c)
	if !ok {
		response.Error(c, apperror.ErrInvalidToken())
		return
	}

	limit, offset := limitOffset(c)
	filter := ports.OrderListFilter{
		WorkerID: &workerID,
		Limit:    limit,
		Offset:   offset,
	}
	if s := c.Query("status"); s != "" {
		if !domain.ValidOrderStatus(s) {
			response.Error(c, apperror.Validation("unknown status"))
			return
		}
		status := domain.OrderStatus(s)
		filter.Status = &status
	}

	orders, err := h.orderSvc.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, orders)
}

// GetOrder handles GET /api/v1/worker/orders/:id.
func (h *WorkerHandler) GetOrder(c *gin.Context) {
	workerID, ok := principalID(c)
	if !ok {
		response.Error(c, apperror.ErrInvalidToken())
		return
	}
	orderID, err := uuidParam(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}

	order, err := h.orderSvc.GetForPrincipal(c.Request.Context(), workerID, domain.RoleWorker, orderID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, order)
}

// AcceptOrder handles POST /api/v1/worker/orders/:id/accept.
func (h *WorkerHandler) AcceptOrder(c *gin.Context) {
	h.transition(c, h.orderSvc.Accept)
}

// StartOrder handles POST /api/v1/worker/orders/:id/start.
func (h *WorkerHandler) StartOrder(c *gin.Context) {
	h.transition(c, h.orderSvc.Start)
}

// CompleteOrder handles POST /api/v1/worker/orders/:id/complete.
func (h *WorkerHandler) CompleteOrder(c *gin.Context) {
	h.transition(c, h.orderSvc.Complete)
}

// RejectOrder handles POST /api/v1/worker/orders/:id/reject.
func (h *WorkerHandler) RejectOrder(c *gin.Context) {
	workerID, ok := principalID(c)
	if !ok {
		response.Error(c, apperror.ErrInvalidToken())
		return
	}
	orderID, err := uuidParam(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}

	var req dto.ReasonRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}
	dto.SanitizeStruct(&req)

	order, err := h.orderSvc.Reject(c.Request.Context(), workerID, orderID, req.Reason)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, order)
}

// ConfirmCashPayment handles POST /api/v1/worker/orders/:id/confirm-cash.
func (h *WorkerHandler) ConfirmCashPayment(c *gin.Context) {
	workerID, ok := principalID(c)
	if !ok {
		response.Error(c, apperror.ErrInvalidToken())
		return
	}
	orderID, err := uuidParam(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}

	if err := h.orderSvc.ConfirmCashPayment(c.Request.Context(), workerID, orderID); err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, gin.H{"confirmed": true})
}

// RequestWithdrawal handles POST /api/v1/worker/withdrawals.
func (h *WorkerHandler) RequestWithdrawal(c *gin.Context) {
	workerID, ok := principalID(c)
	if !ok {
		response.Error(c, apperror.ErrInvalidToken())
		return
	}

	var req dto.WithdrawalCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}
	dto.SanitizeStruct(&req)

	w, err := h.withdrawalSvc.Request(c.Request.Context(), ports.WithdrawalRequestInput{
		WorkerID:      workerID,
		Amount:        req.Amount,
		BankName:      req.BankName,
		AccountNumber: req.AccountNumber,
		AccountHolder: req.AccountHolder,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, dto.WithdrawalQuoteResponse{
		ID:        w.ID.String(),
		Amount:    w.Amount,
		Fee:       w.Fee,
		NetAmount: w.NetAmount,
		Status:    string(w.Status),
	})
}

// ListWithdrawals handles GET /api/v1/worker/withdrawals.
func (h *WorkerHandler) ListWithdrawals(c *gin.Context) {
	workerID, ok := principalID(c)
	if !ok {
		response.Error(c, apperror.ErrInvalidToken())
		return
	}

	limit, offset := limitOffset(c)
	filter := ports.WithdrawalListFilter{
		WorkerID: &workerID,
		Limit:    limit,
		Offset:   offset,
	}
	if s := c.Query("status"); s != "" {
		status := domain.WithdrawalStatus(s)
		filter.Status = &status
	}

	withdrawals, err := h.withdrawalSvc.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, withdrawals)
}

// ListRatings handles GET /api/v1/worker/ratings.
func (h *WorkerHandler) ListRatings(c *gin.Context) {
	workerID, ok := principalID(c)
	if !ok {
		response.Error(c, apperror.ErrInvalidToken())
		return
	}

	limit, offset := limitOffset(c)
	ratings, err := h.ratingSvc.ListByWorker(c.Request.Context(), workerID, limit, offset)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, ratings)
}

// GetBalance handles GET /api/v1/worker/wallet/balance.
func (h *WorkerHandler) GetBalance(c *gin.Context) {
	workerID, ok := principalID(c)
	if !ok {
		response.Error(c, apperror.ErrInvalidToken())
		return
	}

	balance, err := h.walletSvc.GetBalance(c.Request.Context(), workerID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, dto.BalanceResponse{Balance: balance})
}

// transition runs a reason-less order transition shared by accept, start
// and complete.
func (h *WorkerHandler) transition(c *gin.Context, fn func(ctx context.Context, workerID, orderID uuid.UUID) (*domain.Order, error)) {
	workerID, ok := principalID(c)
	if !ok {
		response.Error(c, apperror.ErrInvalidToken())
		return
	}
	orderID, err := uuidParam(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}

	order, err := fn(c.Request.Context(), workerID, orderID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, order)
}
