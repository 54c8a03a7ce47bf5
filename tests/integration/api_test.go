package integration

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	httpHandler "tukangku/internal/adapter/http/handler"
	redisStorage "tukangku/internal/adapter/storage/redis"
	"tukangku/internal/core/domain"
	"tukangku/internal/service"
	"tukangku/pkg/logger"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testApp builds the full application stack on in-memory storage: miniredis
// for the rate limiter and mutex-guarded maps for the repos. It exercises the
// real HTTP layer, middleware, handlers and services end-to-end.

type testApp struct {
	server     *httptest.Server
	redis      *miniredis.Miniredis
	users      *inMemoryUserRepo
	wallets    *inMemoryWalletRepo
	orders     *inMemoryOrderRepo
	profiles   *inMemoryWorkerProfileRepo
	tokenSvc   *service.JWTTokenService
	categoryID uuid.UUID
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()

	mr, err := miniredis.Run()
	require.NoError(t, err)

	rdb := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})

	hashSvc := service.NewArgon2HashService()
	tokenSvc := service.NewJWTTokenService("test-jwt-secret-key-32bytes!!", 24*time.Hour, "test-issuer")

	userRepo := newInMemoryUserRepo()
	walletRepo := newInMemoryWalletRepo()
	orderRepo := newInMemoryOrderRepo()
	topupRepo := newInMemoryTopupRepo()
	withdrawalRepo := newInMemoryWithdrawalRepo()
	profileRepo := newInMemoryWorkerProfileRepo()
	ratingRepo := newInMemoryRatingRepo(profileRepo)
	categoryRepo := newInMemoryCategoryRepo()
	transactor := newInMemoryTransactor()

	categoryID := uuid.New()
	categoryRepo.add(&domain.Category{ID: categoryID, Name: "Plumbing", Active: true})

	log := logger.New("debug", false)
	authSvc := service.NewAuthService(userRepo, profileRepo, hashSvc, tokenSvc)
	orderSvc := service.NewOrderService(orderRepo, walletRepo, userRepo, categoryRepo, transactor, log)
	topupSvc := service.NewTopupService(topupRepo, walletRepo, transactor, log)
	withdrawalSvc := service.NewWithdrawalService(withdrawalRepo, walletRepo, transactor, log)
	ratingSvc := service.NewRatingService(ratingRepo, orderRepo, transactor, log)
	walletSvc := service.NewWalletService(walletRepo)

	router := httpHandler.SetupRouter(httpHandler.RouterDeps{
		AuthSvc:        authSvc,
		OrderSvc:       orderSvc,
		TopupSvc:       topupSvc,
		WithdrawalSvc:  withdrawalSvc,
		RatingSvc:      ratingSvc,
		WalletSvc:      walletSvc,
		TokenSvc:       tokenSvc,
		RateLimitStore: redisStorage.NewRateLimitStore(rdb),
		Logger:         log,
	})

	server := httptest.NewServer(router)

	return &testApp{
		server:     server,
		redis:      mr,
		users:      userRepo,
		wallets:    walletRepo,
		orders:     orderRepo,
		profiles:   profileRepo,
		tokenSvc:   tokenSvc,
		categoryID: categoryID,
	}
}

func (a *testApp) close() {
	a.server.Close()
	a.redis.Close()
}

// registerAndLogin creates an account through the API and returns its ID and
// a bearer token.
func (a *testApp) registerAndLogin(t *testing.T, username string, role domain.Role) (uuid.UUID, string) {
	t.Helper()

	regBody, _ := json.Marshal(map[string]string{
		"username":  username,
		"email":     username + "@example.com",
		"password":  "StrongPass123!",
		"full_name": "Test " + username,
		"role":      string(role),
	})
	resp, err := http.Post(a.server.URL+"/api/v1/auth/register", "application/json", bytes.NewReader(regBody))
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	loginBody, _ := json.Marshal(map[string]string{
		"username": username,
		"password": "StrongPass123!",
	})
	resp2, err := http.Post(a.server.URL+"/api/v1/auth/login", "application/json", bytes.NewReader(loginBody))
	require.NoError(t, err)
	defer resp2.Body.Close()
	require.Equal(t, http.StatusOK, resp2.StatusCode)

	var loginResp struct {
		Data struct {
			Token  string `json:"token"`
			UserID string `json:"user_id"`
		} `json:"data"`
	}
	require.NoError(t, json.NewDecoder(resp2.Body).Decode(&loginResp))
	userID, err := uuid.Parse(loginResp.Data.UserID)
	require.NoError(t, err)
	return userID, loginResp.Data.Token
}

// adminToken seeds an admin account directly (admins cannot register) and
// mints a token for it.
func (a *testApp) adminToken(t *testing.T) (uuid.UUID, string) {
	t.Helper()

	adminID := uuid.New()
	err := a.users.Create(context.Background(), &domain.User{
		ID:       adminID,
		Username: fmt.Sprintf("admin-%s", adminID.String()[:8]),
		Email:    "admin@example.com",
		FullName: "Back Office",
		Role:     domain.RoleAdmin,
		Active:   true,
	})
	require.NoError(t, err)

	token, _, err := a.tokenSvc.Generate(adminID, domain.RoleAdmin)
	require.NoError(t, err)
	return adminID, token
}

func (a *testApp) do(t *testing.T, method, path, token string, body interface{}) (*http.Response, map[string]interface{}) {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequest(method, a.server.URL+path, reader)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	var envelope map[string]interface{}
	_ = json.NewDecoder(resp.Body).Decode(&envelope)
	return resp, envelope
}

func dataOf(t *testing.T, envelope map[string]interface{}) map[string]interface{} {
	t.Helper()
	data, ok := envelope["data"].(map[string]interface{})
	require.True(t, ok, "envelope has no data object: %v", envelope)
	return data
}

func (a *testApp) balance(t *testing.T, userID uuid.UUID) int64 {
	t.Helper()
	b, err := a.wallets.GetBalance(context.Background(), userID)
	require.NoError(t, err)
	return b
}

// --- Integration Tests ---

func TestIntegration_HealthCheck(t *testing.T) {
	app := newTestApp(t)
	defer app.close()

	resp, err := http.Get(app.server.URL + "/health")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var body map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "healthy", body["status"])
}

func TestIntegration_RegisterAndLogin(t *testing.T) {
	app := newTestApp(t)
	defer app.close()

	userID, token := app.registerAndLogin(t, "budi", domain.RoleClient)
	assert.NotEqual(t, uuid.Nil, userID)
	assert.NotEmpty(t, token)
}

func TestIntegration_LoginWrongCredentials(t *testing.T) {
	app := newTestApp(t)
	defer app.close()

	loginBody, _ := json.Marshal(map[string]string{
		"username": "nobody",
		"password": "wrong",
	})
	resp, err := http.Post(app.server.URL+"/api/v1/auth/login", "application/json", bytes.NewReader(loginBody))
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestIntegration_RoleEnforcement(t *testing.T) {
	app := newTestApp(t)
	defer app.close()

	_, workerToken := app.registerAndLogin(t, "wawan", domain.RoleWorker)

	// Worker token on a client endpoint
	resp, _ := app.do(t, http.MethodGet, "/api/v1/client/wallet/balance", workerToken, nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	// Worker token on an admin endpoint
	resp, _ = app.do(t, http.MethodGet, "/api/v1/admin/topups", workerToken, nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	// No token at all
	resp, _ = app.do(t, http.MethodGet, "/api/v1/worker/wallet/balance", "", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestIntegration_WalletOrderLifecycle(t *testing.T) {
	app := newTestApp(t)
	defer app.close()

	clientID, clientToken := app.registerAndLogin(t, "client1", domain.RoleClient)
	workerID, workerToken := app.registerAndLogin(t, "worker1", domain.RoleWorker)

	require.NoError(t, app.wallets.Credit(context.Background(), nil, clientID, 200000))

	// Client books the worker: 150,000 escrowed at creation.
	resp, envelope := app.do(t, http.MethodPost, "/api/v1/client/orders", clientToken, map[string]interface{}{
		"worker_id":      workerID.String(),
		"category_id":    app.categoryID.String(),
		"title":          "Fix leaking sink",
		"location":       "Jl. Sudirman 10",
		"scheduled_at":   time.Now().Add(48 * time.Hour).Format(time.RFC3339),
		"base_amount":    125000,
		"extra_amount":   25000,
		"payment_method": "wallet",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	order := dataOf(t, envelope)
	orderID := order["id"].(string)
	assert.Equal(t, "pending", order["status"])
	assert.Equal(t, true, order["escrowed"])
	assert.Equal(t, int64(50000), app.balance(t, clientID), "escrow should be reserved at creation")

	// Worker walks the order to completion.
	resp, _ = app.do(t, http.MethodPost, "/api/v1/worker/orders/"+orderID+"/accept", workerToken, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	// Completing before starting is not a legal edge.
	resp, _ = app.do(t, http.MethodPost, "/api/v1/worker/orders/"+orderID+"/complete", workerToken, nil)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	resp, _ = app.do(t, http.MethodPost, "/api/v1/worker/orders/"+orderID+"/start", workerToken, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, envelope = app.do(t, http.MethodPost, "/api/v1/worker/orders/"+orderID+"/complete", workerToken, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "completed", dataOf(t, envelope)["status"])

	// Payout lands on the worker at completion.
	assert.Equal(t, int64(150000), app.balance(t, workerID))
	assert.Equal(t, int64(50000), app.balance(t, clientID))

	// Client rates the completed order.
	resp, _ = app.do(t, http.MethodPost, "/api/v1/client/orders/"+orderID+"/rating", clientToken, map[string]interface{}{
		"score":  5,
		"review": "Quick and tidy",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	// A second rating for the same order is refused.
	resp, _ = app.do(t, http.MethodPost, "/api/v1/client/orders/"+orderID+"/rating", clientToken, map[string]interface{}{
		"score": 1,
	})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	// Rating settles nothing; balances are untouched.
	assert.Equal(t, int64(150000), app.balance(t, workerID))

	// The worker sees the new rating.
	resp, envelope = app.do(t, http.MethodGet, "/api/v1/worker/ratings", workerToken, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	ratings, ok := envelope["data"].([]interface{})
	require.True(t, ok)
	require.Len(t, ratings, 1)
	assert.Equal(t, float64(5), ratings[0].(map[string]interface{})["score"])

	// Aggregates recomputed on the worker's public profile.
	resp, envelope = app.do(t, http.MethodGet, "/api/v1/worker/profile", workerToken, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	profile := dataOf(t, envelope)
	assert.Equal(t, float64(1), profile["rating_count"])
	assert.Equal(t, float64(5), profile["rating_average"])
	assert.Equal(t, float64(1), profile["completed_jobs"])
}

func TestIntegration_RejectRefundsEscrow(t *testing.T) {
	app := newTestApp(t)
	defer app.close()

	clientID, clientToken := app.registerAndLogin(t, "client2", domain.RoleClient)
	workerID, workerToken := app.registerAndLogin(t, "worker2", domain.RoleWorker)

	require.NoError(t, app.wallets.Credit(context.Background(), nil, clientID, 100000))

	resp, envelope := app.do(t, http.MethodPost, "/api/v1/client/orders", clientToken, map[string]interface{}{
		"worker_id":      workerID.String(),
		"category_id":    app.categoryID.String(),
		"title":          "Paint fence",
		"location":       "Jl. Melati 3",
		"scheduled_at":   time.Now().Add(24 * time.Hour).Format(time.RFC3339),
		"base_amount":    80000,
		"payment_method": "wallet",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	orderID := dataOf(t, envelope)["id"].(string)
	require.Equal(t, int64(20000), app.balance(t, clientID))

	// A reject without a reason is refused.
	resp, _ = app.do(t, http.MethodPost, "/api/v1/worker/orders/"+orderID+"/reject", workerToken, map[string]interface{}{})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, envelope = app.do(t, http.MethodPost, "/api/v1/worker/orders/"+orderID+"/reject", workerToken, map[string]interface{}{
		"reason": "fully booked that day",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "rejected", dataOf(t, envelope)["status"])

	// Escrow comes back to the client in full.
	assert.Equal(t, int64(100000), app.balance(t, clientID))
	assert.Equal(t, int64(0), app.balance(t, workerID))

	// The decision is one-shot.
	resp, _ = app.do(t, http.MethodPost, "/api/v1/worker/orders/"+orderID+"/reject", workerToken, map[string]interface{}{
		"reason": "again",
	})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
}

func TestIntegration_CancelPendingRefunds(t *testing.T) {
	app := newTestApp(t)
	defer app.close()

	clientID, clientToken := app.registerAndLogin(t, "client3", domain.RoleClient)
	workerID, _ := app.registerAndLogin(t, "worker3", domain.RoleWorker)

	require.NoError(t, app.wallets.Credit(context.Background(), nil, clientID, 60000))

	resp, envelope := app.do(t, http.MethodPost, "/api/v1/client/orders", clientToken, map[string]interface{}{
		"worker_id":      workerID.String(),
		"category_id":    app.categoryID.String(),
		"title":          "Mount shelves",
		"location":       "Jl. Kenanga 7",
		"scheduled_at":   time.Now().Add(24 * time.Hour).Format(time.RFC3339),
		"base_amount":    60000,
		"payment_method": "wallet",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	orderID := dataOf(t, envelope)["id"].(string)
	require.Equal(t, int64(0), app.balance(t, clientID))

	resp, _ = app.do(t, http.MethodPost, "/api/v1/client/orders/"+orderID+"/cancel", clientToken, map[string]interface{}{
		"reason": "changed my mind",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, int64(60000), app.balance(t, clientID))

	// Cancelling a cancelled order is refused and must not refund twice.
	resp, _ = app.do(t, http.MethodPost, "/api/v1/client/orders/"+orderID+"/cancel", clientToken, map[string]interface{}{
		"reason": "again",
	})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Equal(t, int64(60000), app.balance(t, clientID))
}

func TestIntegration_CancelAcceptedRefunds(t *testing.T) {
	app := newTestApp(t)
	defer app.close()

	clientID, clientToken := app.registerAndLogin(t, "client6", domain.RoleClient)
	workerID, workerToken := app.registerAndLogin(t, "worker7", domain.RoleWorker)

	require.NoError(t, app.wallets.Credit(context.Background(), nil, clientID, 80000))

	resp, envelope := app.do(t, http.MethodPost, "/api/v1/client/orders", clientToken, map[string]interface{}{
		"worker_id":      workerID.String(),
		"category_id":    app.categoryID.String(),
		"title":          "Repair gate hinge",
		"location":       "Jl. Cempaka 4",
		"scheduled_at":   time.Now().Add(24 * time.Hour).Format(time.RFC3339),
		"base_amount":    80000,
		"payment_method": "wallet",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	orderID := dataOf(t, envelope)["id"].(string)
	require.Equal(t, int64(0), app.balance(t, clientID))

	// The client may still back out after the worker accepts.
	resp, _ = app.do(t, http.MethodPost, "/api/v1/worker/orders/"+orderID+"/accept", workerToken, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, envelope = app.do(t, http.MethodPost, "/api/v1/client/orders/"+orderID+"/cancel", clientToken, map[string]interface{}{
		"reason": "worker delayed too long",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "cancelled", dataOf(t, envelope)["status"])
	assert.Equal(t, int64(80000), app.balance(t, clientID))
	assert.Equal(t, int64(0), app.balance(t, workerID))

	// Once cancelled the order is terminal; no second refund.
	resp, _ = app.do(t, http.MethodPost, "/api/v1/client/orders/"+orderID+"/cancel", clientToken, map[string]interface{}{
		"reason": "again",
	})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Equal(t, int64(80000), app.balance(t, clientID))
}

func TestIntegration_CashOrderNoEscrow(t *testing.T) {
	app := newTestApp(t)
	defer app.close()

	clientID, clientToken := app.registerAndLogin(t, "client4", domain.RoleClient)
	workerID, workerToken := app.registerAndLogin(t, "worker4", domain.RoleWorker)

	resp, envelope := app.do(t, http.MethodPost, "/api/v1/client/orders", clientToken, map[string]interface{}{
		"worker_id":      workerID.String(),
		"category_id":    app.categoryID.String(),
		"title":          "Garden cleanup",
		"location":       "Jl. Anggrek 2",
		"scheduled_at":   time.Now().Add(24 * time.Hour).Format(time.RFC3339),
		"base_amount":    90000,
		"payment_method": "cash",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	order := dataOf(t, envelope)
	orderID := order["id"].(string)
	assert.Equal(t, false, order["escrowed"])
	assert.Equal(t, int64(0), app.balance(t, clientID), "cash orders never touch the ledger")

	// Confirming cash before completion is refused.
	resp, _ = app.do(t, http.MethodPost, "/api/v1/worker/orders/"+orderID+"/confirm-cash", workerToken, nil)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	for _, step := range []string{"accept", "start", "complete"} {
		resp, _ = app.do(t, http.MethodPost, "/api/v1/worker/orders/"+orderID+"/"+step, workerToken, nil)
		require.Equal(t, http.StatusOK, resp.StatusCode, "step %s", step)
	}

	// No payout for cash orders; the worker is paid off-ledger.
	assert.Equal(t, int64(0), app.balance(t, workerID))

	resp, _ = app.do(t, http.MethodPost, "/api/v1/worker/orders/"+orderID+"/confirm-cash", workerToken, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	// The confirmation is one-shot.
	resp, _ = app.do(t, http.MethodPost, "/api/v1/worker/orders/"+orderID+"/confirm-cash", workerToken, nil)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
}

func TestIntegration_TopupApprovalFlow(t *testing.T) {
	app := newTestApp(t)
	defer app.close()

	clientID, clientToken := app.registerAndLogin(t, "client5", domain.RoleClient)
	_, adminTok := app.adminToken(t)

	resp, envelope := app.do(t, http.MethodPost, "/api/v1/client/topups", clientToken, map[string]interface{}{
		"amount":     100000,
		"proof_path": "uploads/proof-001.jpg",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	topup := dataOf(t, envelope)
	topupID := topup["id"].(string)
	assert.Equal(t, "pending", topup["status"])
	assert.Equal(t, "qris", topup["method"])
	assert.Equal(t, int64(0), app.balance(t, clientID), "no credit before approval")

	// Rejecting without a reason is refused.
	resp, _ = app.do(t, http.MethodPost, "/api/v1/admin/topups/"+topupID+"/reject", adminTok, map[string]interface{}{})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, envelope = app.do(t, http.MethodPost, "/api/v1/admin/topups/"+topupID+"/approve", adminTok, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "approved", dataOf(t, envelope)["status"])
	assert.Equal(t, int64(100000), app.balance(t, clientID))

	// The decision is one-shot: a second approve must not double-credit.
	resp, _ = app.do(t, http.MethodPost, "/api/v1/admin/topups/"+topupID+"/approve", adminTok, nil)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Equal(t, int64(100000), app.balance(t, clientID))
}

func TestIntegration_WithdrawalFlow(t *testing.T) {
	app := newTestApp(t)
	defer app.close()

	workerID, workerToken := app.registerAndLogin(t, "worker5", domain.RoleWorker)
	_, adminTok := app.adminToken(t)

	require.NoError(t, app.wallets.Credit(context.Background(), nil, workerID, 200000))

	// Below the platform minimum.
	resp, _ := app.do(t, http.MethodPost, "/api/v1/worker/withdrawals", workerToken, map[string]interface{}{
		"amount":         30000,
		"bank_name":      "BCA",
		"account_number": "1234567890",
		"account_holder": "Wawan Kurnia",
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, int64(200000), app.balance(t, workerID))

	// Valid request: gross reserved immediately, fee is 2% of 100,000.
	resp, envelope := app.do(t, http.MethodPost, "/api/v1/worker/withdrawals", workerToken, map[string]interface{}{
		"amount":         100000,
		"bank_name":      "BCA",
		"account_number": "1234567890",
		"account_holder": "Wawan Kurnia",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	w := dataOf(t, envelope)
	withdrawalID := w["id"].(string)
	assert.Equal(t, float64(2000), w["fee"])
	assert.Equal(t, float64(98000), w["net_amount"])
	assert.Equal(t, int64(100000), app.balance(t, workerID))

	// Rejection refunds the full gross, not the net.
	resp, _ = app.do(t, http.MethodPost, "/api/v1/admin/withdrawals/"+withdrawalID+"/reject", adminTok, map[string]interface{}{
		"reason": "account name mismatch",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, int64(200000), app.balance(t, workerID))

	// Large amount: fee caps at 5,000.
	resp, envelope = app.do(t, http.MethodPost, "/api/v1/worker/withdrawals", workerToken, map[string]interface{}{
		"amount":         200000,
		"bank_name":      "BCA",
		"account_number": "1234567890",
		"account_holder": "Wawan Kurnia",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	w = dataOf(t, envelope)
	withdrawalID = w["id"].(string)
	assert.Equal(t, float64(4000), w["fee"])
	assert.Equal(t, int64(0), app.balance(t, workerID))

	// Completing requires a transfer proof.
	resp, _ = app.do(t, http.MethodPost, "/api/v1/admin/withdrawals/"+withdrawalID+"/complete", adminTok, map[string]interface{}{})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, envelope = app.do(t, http.MethodPost, "/api/v1/admin/withdrawals/"+withdrawalID+"/complete", adminTok, map[string]interface{}{
		"proof_path": "uploads/transfer-001.jpg",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "completed", dataOf(t, envelope)["status"])

	// Completion pays out off-ledger; the balance stays debited.
	assert.Equal(t, int64(0), app.balance(t, workerID))
}

func TestIntegration_FeeCapAtFiveThousand(t *testing.T) {
	app := newTestApp(t)
	defer app.close()

	workerID, workerToken := app.registerAndLogin(t, "worker6", domain.RoleWorker)
	require.NoError(t, app.wallets.Credit(context.Background(), nil, workerID, 1000000))

	resp, envelope := app.do(t, http.MethodPost, "/api/v1/worker/withdrawals", workerToken, map[string]interface{}{
		"amount":         1000000,
		"bank_name":      "Mandiri",
		"account_number": "9876543210",
		"account_holder": "Wawan Kurnia",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	w := dataOf(t, envelope)
	assert.Equal(t, float64(5000), w["fee"])
	assert.Equal(t, float64(995000), w["net_amount"])
}
