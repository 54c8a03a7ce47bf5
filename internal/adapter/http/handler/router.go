package handler

import (
	"tukangku/internal/adapter/http/middleware"
	redisStore "tukangku/internal/adapter/storage/redis"
	"tukangku/internal/core/domain"
	"tukangku/internal/core/ports"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// RouterDeps holds all dependencies needed to set up routes.
type RouterDeps struct {
	AuthSvc        ports.AuthService
	OrderSvc       ports.OrderService
	TopupSvc       ports.TopupService
	WithdrawalSvc  ports.WithdrawalService
	RatingSvc      ports.RatingService
	WalletSvc      ports.WalletService
	TokenSvc       ports.TokenService
	RateLimitStore *redisStore.RateLimitStore // nil = rate limiting disabled
	HealthCheckers []ports.HealthChecker
	Logger         zerolog.Logger
}

// SetupRouter initialises the Gin engine with all routes and middleware.
func SetupRouter(deps RouterDeps) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()

	// Global middleware
	r.Use(middleware.Recovery(deps.Logger))
	r.Use(middleware.RequestLogger(deps.Logger))
	r.Use(middleware.MaxBodySize(1 << 20)) // 1 MB request body limit

	// Health check (deep — verifies PostgreSQL + Redis)
	r.GET("/health", HealthCheck(deps.HealthCheckers...))

	// Rate limit rules
	rules := middleware.DefaultRateLimitRules()

	// Helper: return rate limiter middleware if store is available, else noop.
	rl := func(group string) gin.HandlerFunc {
		if deps.RateLimitStore == nil {
			return func(c *gin.Context) { c.Next() }
		}
		rule, ok := rules[group]
		if !ok {
			return func(c *gin.Context) { c.Next() }
		}
		return middleware.RateLimiter(deps.RateLimitStore, group, rule, deps.Logger)
	}

	// API v1 routes
	v1 := r.Group("/api/v1")

	// --- Public routes (no auth) ---
	authHandler := NewAuthHandler(deps.AuthSvc)
	auth := v1.Group("/auth")
	{
		auth.POST("/register", rl("auth_register"), authHandler.Register)
		auth.POST("/login", rl("auth_login"), authHandler.Login)
	}

	jwtAuth := middleware.JWTAuth(deps.TokenSvc, deps.Logger)

	// --- Client routes ---
	clientHandler := NewClientHandler(deps.OrderSvc, deps.TopupSvc, deps.RatingSvc, deps.WalletSvc)
	client := v1.Group("/client", jwtAuth, middleware.RequireRole(domain.RoleClient))
	{
		client.POST("/orders", rl("orders"), clientHandler.CreateOrder)
		client.GET("/orders", rl("orders"), clientHandler.ListOrders)
		client.GET("/orders/:id", rl("orders"), clientHandler.GetOrder)
		client.POST("/orders/:id/cancel", rl("orders"), clientHandler.CancelOrder)
		client.POST("/orders/:id/rating", rl("ratings"), clientHandler.SubmitRating)
		client.POST("/topups", rl("topups"), clientHandler.RequestTopup)
		client.GET("/topups", rl("topups"), clientHandler.ListTopups)
		client.GET("/wallet/balance", rl("wallet"), clientHandler.GetBalance)
	}

	// --- Worker routes ---
	workerHandler := NewWorkerHandler(deps.OrderSvc, deps.WithdrawalSvc, deps.RatingSvc, deps.WalletSvc)
	worker := v1.Group("/worker", jwtAuth, middleware.RequireRole(domain.RoleWorker))
	{
		worker.GET("/orders", rl("orders"), workerHandler.ListOrders)
		worker.GET("/orders/:id", rl("orders"), workerHandler.GetOrder)
		worker.POST("/orders/:id/accept", rl("orders"), workerHandler.AcceptOrder)
		worker.POST("/orders/:id/reject", rl("orders"), workerHandler.RejectOrder)
		worker.POST("/orders/:id/start", rl("orders"), workerHandler.StartOrder)
		worker.POST("/orders/:id/complete", rl("orders"), workerHandler.CompleteOrder)
		worker.POST("/orders/:id/confirm-cash", rl("orders"), workerHandler.ConfirmCashPayment)
		worker.POST("/withdrawals", rl("withdrawals"), workerHandler.RequestWithdrawal)
		worker.GET("/withdrawals", rl("withdrawals"), workerHandler.ListWithdrawals)
		worker.GET("/profile", rl("wallet"), authHandler.GetWorkerProfile)
		worker.GET("/ratings", rl("ratings"), workerHandler.ListRatings)
		worker.GET("/wallet/balance", rl("wallet"), workerHandler.GetBalance)
	}

	// --- Admin routes ---
	adminHandler := NewAdminHandler(deps.OrderSvc, deps.TopupSvc, deps.WithdrawalSvc)
	admin := v1.Group("/admin", jwtAuth, middleware.RequireRole(domain.RoleAdmin))
	{
		admin.GET("/topups", rl("admin"), adminHandler.ListTopups)
		admin.POST("/topups/:id/approve", rl("admin"), adminHandler.ApproveTopup)
		admin.POST("/topups/:id/reject", rl("admin"), adminHandler.RejectTopup)
		admin.GET("/withdrawals", rl("admin"), adminHandler.ListWithdrawals)
		admin.POST("/withdrawals/:id/complete", rl("admin"), adminHandler.CompleteWithdrawal)
		admin.POST("/withdrawals/:id/reject", rl("admin"), adminHandler.RejectWithdrawal)
		admin.GET("/orders", rl("admin"), adminHandler.ListOrders)
		admin.GET("/orders/:id", rl("admin"), adminHandler.GetOrder)
	}

	return r
}
