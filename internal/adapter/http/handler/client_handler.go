package handler

import (
	"time"

	"tukangku/internal/adapter/http/dto"
	"tukangku/internal/core/domain"
	"tukangku/internal/core/ports"
	"tukangku/pkg/apperror"
	"tukangku/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// ClientHandler handles client-facing endpoints: bookings, ratings,
// top-ups and the wallet balance.
type ClientHandler struct {
	orderSvc  ports.OrderService
	topupSvc  ports.TopupService
	ratingSvc ports.RatingService
	walletSvc ports.WalletService
}

// NewClientHandler creates a new ClientHandler.
func NewClientHandler(orderSvc ports.OrderService, topupSvc ports.TopupService, ratingSvc ports.RatingService, walletSvc ports.WalletService) *ClientHandler {
	return &ClientHandler{
		orderSvc:  orderSvc,
		topupSvc:  topupSvc,
		ratingSvc: ratingSvc,
		walletSvc: walletSvc,
	}
}

// CreateOrder handles POST /api/v1/client/orders.
func (h *ClientHandler) CreateOrder(c *gin.Context) {
	clientID, ok := principalID(c)
	if !ok {
		response.Error(c, apperror.ErrInvalidToken())
		return
	}

	var req dto.CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}
	dto.SanitizeStruct(&req)

	workerID, err := uuid.Parse(req.WorkerID)
	if err != nil {
		response.Error(c, apperror.Validation("invalid worker_id"))
		return
	}
	categoryID, err := uuid.Parse(req.CategoryID)
	if err != nil {
		response.Error(c, apperror.Validation("invalid category_id"))
		return
	}
	scheduledAt, err := time.Parse(time.RFC3339, req.ScheduledAt)
	if err != nil {
		response.Error(c, apperror.Validation("scheduled_at must be RFC 3339"))
		return
	}

	order, err := h.orderSvc.Create(c.Request.Context(), ports.CreateOrderRequest{
		ClientID:      clientID,
		WorkerID:      workerID,
		CategoryID:    categoryID,
		Title:         req.Title,
		Description:   req.Description,
		Location:      req.Location,
		ScheduledAt:   scheduledAt,
		BaseAmount:    req.BaseAmount,
		ExtraAmount:   req.ExtraAmount,
		PaymentMethod: domain.PaymentMethod(req.PaymentMethod),
		ClientNote:    req.ClientNote,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, order)
}

// ListOrders handles GET /api/v1/client/orders.
func (h *ClientHandler) ListOrders(c *gin.Context) {
	clientID, ok := principalID(c)
	if !ok {
		response.Error(c, apperror.ErrInvalidToken())
		return
	}

	limit, offset := limitOffset(c)
	filter := ports.OrderListFilter{
		ClientID: &clientID,
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

// GetOrder handles GET /api/v1/client/orders/:id.
func (h *ClientHandler) GetOrder(c *gin.Context) {
	clientID, ok := principalID(c)
	if !ok {
		response.Error(c, apperror.ErrInvalidToken())
		return
	}
	orderID, err := uuidParam(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}

	order, err := h.orderSvc.GetForPrincipal(c.Request.Context(), clientID, domain.RoleClient, orderID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, order)
}

// CancelOrder handles POST /api/v1/client/orders/:id/cancel.
func (h *ClientHandler) CancelOrder(c *gin.Context) {
	clientID, ok := principalID(c)
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

	order, err := h.orderSvc.Cancel(c.Request.Context(), clientID, orderID, req.Reason)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, order)
}

// SubmitRating handles POST /api/v1/client/orders/:id/rating.
func (h *ClientHandler) SubmitRating(c *gin.Context) {
	clientID, ok := principalID(c)
	if !ok {
		response.Error(c, apperror.ErrInvalidToken())
		return
	}
	orderID, err := uuidParam(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}

	var req dto.RatingCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}
	dto.SanitizeStruct(&req)

	rating, err := h.ratingSvc.Submit(c.Request.Context(), ports.SubmitRatingRequest{
		ClientID: clientID,
		OrderID:  orderID,
		Score:    req.Score,
		Review:   req.Review,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, rating)
}

// RequestTopup handles POST /api/v1/client/topups.
func (h *ClientHandler) RequestTopup(c *gin.Context) {
	clientID, ok := principalID(c)
	if !ok {
		response.Error(c, apperror.ErrInvalidToken())
		return
	}

	var req dto.TopupCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}
	dto.SanitizeStruct(&req)

	topup, err := h.topupSvc.Request(c.Request.Context(), clientID, req.Amount, req.ProofPath)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, topup)
}

// ListTopups handles GET /api/v1/client/topups.
func (h *ClientHandler) ListTopups(c *gin.Context) {
	clientID, ok := principalID(c)
	if !ok {
		response.Error(c, apperror.ErrInvalidToken())
		return
	}

	limit, offset := limitOffset(c)
	filter := ports.TopupListFilter{
		UserID: &clientID,
		Limit:  limit,
		Offset: offset,
	}
	if s := c.Query("status"); s != "" {
		status := domain.TopupStatus(s)
		filter.Status = &status
	}

	topups, err := h.topupSvc.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, topups)
}

// GetBalance handles GET /api/v1/client/wallet/balance.
func (h *ClientHandler) GetBalance(c *gin.Context) {
	clientID, ok := principalID(c)
	if !ok {
		response.Error(c, apperror.ErrInvalidToken())
		return
	}

	balance, err := h.walletSvc.GetBalance(c.Request.Context(), clientID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, dto.BalanceResponse{Balance: balance})
}
