package handler

import (
	"tukangku/internal/adapter/http/dto"
	"tukangku/internal/core/domain"
	"tukangku/internal/core/ports"
	"tukangku/pkg/apperror"
	"tukangku/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// AdminHandler handles the back-office endpoints: top-up and withdrawal
// review plus an order overview.
type AdminHandler struct {
	orderSvc      ports.OrderService
	topupSvc      ports.TopupService
	withdrawalSvc ports.WithdrawalService
}

// NewAdminHandler creates a new AdminHandler.
func NewAdminHandler(orderSvc ports.OrderService, topupSvc ports.TopupService, withdrawalSvc ports.WithdrawalService) *AdminHandler {
	return &AdminHandler{
		orderSvc:      orderSvc,
		topupSvc:      topupSvc,
		withdrawalSvc: withdrawalSvc,
	}
}

// ListTopups handles GET /api/v1/admin/topups.
func (h *AdminHandler) ListTopups(c *gin.Context) {
	limit, offset := limitOffset(c)
	filter := ports.TopupListFilter{Limit: limit, Offset: offset}
	if s := c.Query("status"); s != "" {
		status := domain.TopupStatus(s)
		filter.Status = &status
	}
	if u := c.Query("user_id"); u != "" {
		userID, err := uuid.Parse(u)
		if err != nil {
			response.Error(c, apperror.Validation("invalid user_id"))
			return
		}
		filter.UserID = &userID
	}

	topups, err := h.topupSvc.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, topups)
}

// ApproveTopup handles POST /api/v1/admin/topups/:id/approve.
func (h *AdminHandler) ApproveTopup(c *gin.Context) {
	adminID, ok := principalID(c)
	if !ok {
		response.Error(c, apperror.ErrInvalidToken())
		return
	}
	topupID, err := uuidParam(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}

	topup, err := h.topupSvc.Decide(c.Request.Context(), adminID, topupID, true, "")
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, topup)
}

// RejectTopup handles POST /api/v1/admin/topups/:id/reject.
func (h *AdminHandler) RejectTopup(c *gin.Context) {
	adminID, ok := principalID(c)
	if !ok {
		response.Error(c, apperror.ErrInvalidToken())
		return
	}
	topupID, err := uuidParam(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}

	var req dto.TopupRejectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}
	dto.SanitizeStruct(&req)

	topup, err := h.topupSvc.Decide(c.Request.Context(), adminID, topupID, false, req.Reason)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, topup)
}

// ListWithdrawals handles GET /api/v1/admin/withdrawals.
func (h *AdminHandler) ListWithdrawals(c *gin.Context) {
	limit, offset := limitOffset(c)
	filter := ports.WithdrawalListFilter{Limit: limit, Offset: offset}
	if s := c.Query("status"); s != "" {
		status := domain.WithdrawalStatus(s)
		filter.Status = &status
	}
	if w := c.Query("worker_id"); w != "" {
		workerID, err := uuid.Parse(w)
		if err != nil {
			response.Error(c, apperror.Validation("invalid worker_id"))
			return
		}
		filter.WorkerID = &workerID
	}

	withdrawals, err := h.withdrawalSvc.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, withdrawals)
}

// CompleteWithdrawal handles POST /api/v1/admin/withdrawals/:id/complete.
func (h *AdminHandler) CompleteWithdrawal(c *gin.Context) {
	adminID, ok := principalID(c)
	if !ok {
		response.Error(c, apperror.ErrInvalidToken())
		return
	}
	withdrawalID, err := uuidParam(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}

	var req dto.WithdrawalCompleteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}
	dto.SanitizeStruct(&req)

	w, err := h.withdrawalSvc.Decide(c.Request.Context(), adminID, withdrawalID, true, req.ProofPath, "")
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, w)
}

// RejectWithdrawal handles POST /api/v1/admin/withdrawals/:id/reject.
func (h *AdminHandler) RejectWithdrawal(c *gin.Context) {
	adminID, ok := principalID(c)
	if !ok {
		response.Error(c, apperror.ErrInvalidToken())
		return
	}
	withdrawalID, err := uuidParam(c, "id")
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

	w, err := h.withdrawalSvc.Decide(c.Request.Context(), adminID, withdrawalID, false, "", req.Reason)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, w)
}

// ListOrders handles GET /api/v1/admin/orders.
func (h *AdminHandler) ListOrders(c *gin.Context) {
	limit, offset := limitOffset(c)
	filter := ports.OrderListFilter{Limit: limit, Offset: offset}
	if s := c.Query("status"); s != "" {
		if !domain.ValidOrderStatus(s) {
			response.Error(c, apperror.Validation("unknown status"))
			return
		}
		status := domain.OrderStatus(s)
		filter.Status = &status
	}
	if v := c.Query("client_id"); v != "" {
		clientID, err := uuid.Parse(v)
		if err != nil {
			response.Error(c, apperror.Validation("invalid client_id"))
			return
		}
		filter.ClientID = &clientID
	}
	if v := c.Query("worker_id"); v != "" {
		workerID, err := uuid.Parse(v)
		if err != nil {
			response.Error(c, apperror.Validation("invalid worker_id"))
			return
		}
		filter.WorkerID = &workerID
	}

	orders, err := h.orderSvc.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, orders)
}

// GetOrder handles GET /api/v1/admin/orders/:id.
func (h *AdminHandler) GetOrder(c *gin.Context) {
	adminID, ok := principalID(c)
	if !ok {
		response.Error(c, apperror.ErrInvalidToken())
		return
	}
	orderID, err := uuidParam(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}

	order, err := h.orderSvc.GetForPrincipal(c.Request.Context(), adminID, domain.RoleAdmin, orderID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, order)
}
