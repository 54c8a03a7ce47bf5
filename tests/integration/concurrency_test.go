package integration

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"testing"
	"time"

	"tukangku/internal/core/domain"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// These tests race real HTTP requests against each other through the full
// stack. The in-memory repos apply conditional updates and the balance check
// atomically, the same guarantees the SQL layer provides, so the assertions
// below are exact: no "at most one", always "exactly one".

// fire sends the request from a goroutine and reports only the status code.
// Request construction errors surface as status 0.
func fire(wg *sync.WaitGroup, statuses chan<- int, method, url, token string, body []byte) {
	defer wg.Done()

	req, err := http.NewRequest(method, url, bytes.NewReader(body))
	if err != nil {
		statuses <- 0
		return
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		statuses <- 0
		return
	}
	resp.Body.Close()
	statuses <- resp.StatusCode
}

func TestIntegration_ConcurrentOrdersCannotOverspend(t *testing.T) {
	app := newTestApp(t)
	defer app.close()

	clientID, clientToken := app.registerAndLogin(t, "racer-client", domain.RoleClient)
	workerID, _ := app.registerAndLogin(t, "racer-worker", domain.RoleWorker)

	require.NoError(t, app.wallets.Credit(context.Background(), nil, clientID, 100000))

	const attempts = 10
	body, err := json.Marshal(map[string]interface{}{
		"worker_id":      workerID.String(),
		"category_id":    app.categoryID.String(),
		"title":          "Rewire outlet",
		"location":       "Jl. Dahlia 5",
		"scheduled_at":   time.Now().Add(24 * time.Hour).Format(time.RFC3339),
		"base_amount":    60000,
		"payment_method": "wallet",
	})
	require.NoError(t, err)

	statuses := make(chan int, attempts)
	var wg sync.WaitGroup
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go fire(&wg, statuses, http.MethodPost, app.server.URL+"/api/v1/client/orders", clientToken, body)
	}
	wg.Wait()
	close(statuses)

	created, rejected := 0, 0
	for code := range statuses {
		switch code {
		case http.StatusCreated:
			created++
		case http.StatusPaymentRequired:
			rejected++
		default:
			t.Fatalf("unexpected status %d", code)
		}
	}

	// 100,000 covers exactly one 60,000 escrow.
	assert.Equal(t, 1, created)
	assert.Equal(t, attempts-1, rejected)

	balance, err := app.wallets.GetBalance(context.Background(), clientID)
	require.NoError(t, err)
	assert.Equal(t, int64(40000), balance)
}

func TestIntegration_ConcurrentWithdrawalsCannotOverdraw(t *testing.T) {
	app := newTestApp(t)
	defer app.close()

	workerID, workerToken := app.registerAndLogin(t, "racer-payout", domain.RoleWorker)
	require.NoError(t, app.wallets.Credit(context.Background(), nil, workerID, 100000))

	const attempts = 5
	body, err := json.Marshal(map[string]interface{}{
		"amount":         60000,
		"bank_name":      "BNI",
		"account_number": "5551234567",
		"account_holder": "Racer Payout",
	})
	require.NoError(t, err)

	statuses := make(chan int, attempts)
	var wg sync.WaitGroup
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go fire(&wg, statuses, http.MethodPost, app.server.URL+"/api/v1/worker/withdrawals", workerToken, body)
	}
	wg.Wait()
	close(statuses)

	created, rejected := 0, 0
	for code := range statuses {
		switch code {
		case http.StatusCreated:
			created++
		case http.StatusPaymentRequired:
			rejected++
		default:
			t.Fatalf("unexpected status %d", code)
		}
	}

	assert.Equal(t, 1, created)
	assert.Equal(t, attempts-1, rejected)

	balance, err := app.wallets.GetBalance(context.Background(), workerID)
	require.NoError(t, err)
	assert.Equal(t, int64(40000), balance)
}

func TestIntegration_ConcurrentAcceptVersusCancel(t *testing.T) {
	app := newTestApp(t)
	defer app.close()

	clientID, clientToken := app.registerAndLogin(t, "racer-cancel", domain.RoleClient)
	workerID, workerToken := app.registerAndLogin(t, "racer-accept", domain.RoleWorker)

	require.NoError(t, app.wallets.Credit(context.Background(), nil, clientID, 80000))

	resp, envelope := app.do(t, http.MethodPost, "/api/v1/client/orders", clientToken, map[string]interface{}{
		"worker_id":      workerID.String(),
		"category_id":    app.categoryID.String(),
		"title":          "Tile repair",
		"location":       "Jl. Flamboyan 9",
		"scheduled_at":   time.Now().Add(24 * time.Hour).Format(time.RFC3339),
		"base_amount":    80000,
		"payment_method": "wallet",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	orderID := dataOf(t, envelope)["id"].(string)

	cancelBody, err := json.Marshal(map[string]string{"reason": "found someone closer"})
	require.NoError(t, err)

	statuses := make(chan int, 2)
	var wg sync.WaitGroup
	wg.Add(2)
	go fire(&wg, statuses, http.MethodPost, app.server.URL+"/api/v1/worker/orders/"+orderID+"/accept", workerToken, nil)
	go fire(&wg, statuses, http.MethodPost, app.server.URL+"/api/v1/client/orders/"+orderID+"/cancel", clientToken, cancelBody)
	wg.Wait()
	close(statuses)

	won, lost := 0, 0
	for code := range statuses {
		switch code {
		case http.StatusOK:
			won++
		case http.StatusConflict:
			lost++
		default:
			t.Fatalf("unexpected status %d", code)
		}
	}

	order, err := app.orders.GetByID(context.Background(), uuid.MustParse(orderID))
	require.NoError(t, err)
	require.NotNil(t, order)

	clientBalance, err := app.wallets.GetBalance(context.Background(), clientID)
	require.NoError(t, err)

	// Two serializations are legal. Both transitions touch the same locked
	// row, so either the loser observes a conflict, or accept commits first
	// and cancel follows it (cancel is a legal edge from accepted too). In
	// no interleaving does the escrow move more than once.
	switch {
	case won == 1 && lost == 1:
		switch order.Status {
		case domain.OrderStatusCancelled:
			// Cancel won: escrow refunded exactly once.
			assert.Equal(t, int64(80000), clientBalance)
		case domain.OrderStatusAccepted:
			// Accept won: escrow stays reserved.
			assert.Equal(t, int64(0), clientBalance)
		default:
			t.Fatalf("unexpected terminal status %s", order.Status)
		}
	case won == 2 && lost == 0:
		// Accept then cancel: the order ends cancelled with a single refund.
		assert.Equal(t, domain.OrderStatusCancelled, order.Status)
		assert.Equal(t, int64(80000), clientBalance)
	default:
		t.Fatalf("unexpected outcome: won=%d lost=%d", won, lost)
	}

	workerBalance, err := app.wallets.GetBalance(context.Background(), workerID)
	require.NoError(t, err)
	assert.Equal(t, int64(0), workerBalance, "no payout before completion")
}
