package integration

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"tukangku/internal/core/domain"
	"tukangku/internal/core/ports"
	"tukangku/pkg/apperror"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// The in-memory repos mirror the PostgreSQL repos' contracts: conditional
// updates and the check-and-decrement debit run atomically under a mutex, so
// the race-sensitive tests get the same exactly-once guarantees the real
// store enforces with row locks and conditional UPDATEs.

// --- In-Memory User Repo ---

type inMemoryUserRepo struct {
	mu    sync.RWMutex
	users map[uuid.UUID]*domain.User
}

func newInMemoryUserRepo() *inMemoryUserRepo {
	return &inMemoryUserRepo{users: make(map[uuid.UUID]*domain.User)}
}

func (r *inMemoryUserRepo) Create(ctx context.Context, u *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.users {
		if existing.Username == u.Username {
			return fmt.Errorf("username already exists")
		}
	}
	cp := *u
	r.users[u.ID] = &cp
	return nil
}

func (r *inMemoryUserRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	u, ok := r.users[id]
	if !ok {
		return nil, nil
	}
	cp := *u
	return &cp, nil
}

func (r *inMemoryUserRepo) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, u := range r.users {
		if u.Username == username {
			cp := *u
			return &cp, nil
		}
	}
	return nil, nil
}

// --- In-Memory Wallet Repo ---

// inMemoryWalletRepo keeps balances keyed by user ID. Debit performs the
// check-and-decrement under the lock, matching the single-statement
// conditional UPDATE of the real repo.
type inMemoryWalletRepo struct {
	mu       sync.Mutex
	balances map[uuid.UUID]int64
}

func newInMemoryWalletRepo() *inMemoryWalletRepo {
	return &inMemoryWalletRepo{balances: make(map[uuid.UUID]int64)}
}

func (r *inMemoryWalletRepo) Credit(ctx context.Context, tx pgx.Tx, userID uuid.UUID, amount int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.balances[userID] += amount
	return nil
}

func (r *inMemoryWalletRepo) Debit(ctx context.Context, tx pgx.Tx, userID uuid.UUID, amount int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.balances[userID] < amount {
		return apperror.ErrInsufficientBalance()
	}
	r.balances[userID] -= amount
	return nil
}

func (r *inMemoryWalletRepo) GetBalance(ctx context.Context, userID uuid.UUID) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.balances[userID], nil
}

// --- In-Memory Order Repo ---

type inMemoryOrderRepo struct {
	mu     sync.Mutex
	orders map[uuid.UUID]*domain.Order
}

func newInMemoryOrderRepo() *inMemoryOrderRepo {
	return &inMemoryOrderRepo{orders: make(map[uuid.UUID]*domain.Order)}
}

func (r *inMemoryOrderRepo) Create(ctx context.Context, tx pgx.Tx, o *domain.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *o
	r.orders[o.ID] = &cp
	return nil
}

func (r *inMemoryOrderRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	o, ok := r.orders[id]
	if !ok {
		return nil, nil
	}
	cp := *o
	return &cp, nil
}

func (r *inMemoryOrderRepo) GetByIDForUpdate(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*domain.Order, error) {
	return r.GetByID(ctx, id)
}

func (r *inMemoryOrderRepo) UpdateStatus(ctx context.Context, tx pgx.Tx, id uuid.UUID, expected, next domain.OrderStatus, patch ports.OrderStatusPatch) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	o, ok := r.orders[id]
	if !ok || o.Status != expected {
		return false, nil
	}
	now := time.Now().UTC()
	o.Status = next
	o.UpdatedAt = now
	if patch.AcceptedAt {
		o.AcceptedAt = &now
	}
	if patch.StartedAt {
		o.StartedAt = &now
	}
	if patch.CompletedAt {
		o.CompletedAt = &now
	}
	if patch.CancelledAt {
		o.CancelledAt = &now
	}
	if patch.RejectedAt {
		o.RejectedAt = &now
	}
	if patch.CancelReason != nil {
		o.CancelReason = patch.CancelReason
	}
	if patch.RejectReason != nil {
		o.RejectReason = patch.RejectReason
	}
	if patch.CancelledBy != nil {
		o.CancelledBy = patch.CancelledBy
	}
	return true, nil
}

func (r *inMemoryOrderRepo) ConfirmCashPayment(ctx context.Context, tx pgx.Tx, id uuid.UUID, workerID uuid.UUID) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	o, ok := r.orders[id]
	if !ok {
		return false, nil
	}
	if o.Status != domain.OrderStatusCompleted || o.PaymentMethod != domain.PaymentMethodCash || o.CashConfirmed {
		return false, nil
	}
	now := time.Now().UTC()
	o.CashConfirmed = true
	o.CashConfirmedAt = &now
	o.UpdatedAt = now
	return true, nil
}

func (r *inMemoryOrderRepo) List(ctx context.Context, filter ports.OrderListFilter) ([]domain.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var result []domain.Order
	for _, o := range r.orders {
		if filter.ClientID != nil && o.ClientID != *filter.ClientID {
			continue
		}
		if filter.WorkerID != nil && o.WorkerID != *filter.WorkerID {
			continue
		}
		if filter.Status != nil && o.Status != *filter.Status {
			continue
		}
		if filter.PaymentMethod != nil && o.PaymentMethod != *filter.PaymentMethod {
			continue
		}
		result = append(result, *o)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].CreatedAt.After(result[j].CreatedAt) })
	return paginate(result, filter.Limit, filter.Offset), nil
}

// --- In-Memory Topup Repo ---

type inMemoryTopupRepo struct {
	mu     sync.Mutex
	topups map[uuid.UUID]*domain.TopupRequest
}

func newInMemoryTopupRepo() *inMemoryTopupRepo {
	return &inMemoryTopupRepo{topups: make(map[uuid.UUID]*domain.TopupRequest)}
}

func (r *inMemoryTopupRepo) Create(ctx context.Context, t *domain.TopupRequest) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *t
	r.topups[t.ID] = &cp
	return nil
}

func (r *inMemoryTopupRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.TopupRequest, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.topups[id]
	if !ok {
		return nil, nil
	}
	cp := *t
	return &cp, nil
}

func (r *inMemoryTopupRepo) Decide(ctx context.Context, tx pgx.Tx, id uuid.UUID, next domain.TopupStatus, reviewedBy uuid.UUID, rejectReason *string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.topups[id]
	if !ok || t.Status != domain.TopupStatusPending {
		return false, nil
	}
	now := time.Now().UTC()
	t.Status = next
	t.ReviewedBy = &reviewedBy
	t.ReviewedAt = &now
	t.RejectReason = rejectReason
	t.UpdatedAt = now
	return true, nil
}

func (r *inMemoryTopupRepo) List(ctx context.Context, filter ports.TopupListFilter) ([]domain.TopupRequest, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var result []domain.TopupRequest
	for _, t := range r.topups {
		if filter.UserID != nil && t.UserID != *filter.UserID {
			continue
		}
		if filter.Status != nil && t.Status != *filter.Status {
			continue
		}
		result = append(result, *t)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].CreatedAt.After(result[j].CreatedAt) })
	return paginate(result, filter.Limit, filter.Offset), nil
}

// --- In-Memory Withdrawal Repo ---

type inMemoryWithdrawalRepo struct {
	mu          sync.Mutex
	withdrawals map[uuid.UUID]*domain.WithdrawalRequest
}

func newInMemoryWithdrawalRepo() *inMemoryWithdrawalRepo {
	return &inMemoryWithdrawalRepo{withdrawals: make(map[uuid.UUID]*domain.WithdrawalRequest)}
}

func (r *inMemoryWithdrawalRepo) Create(ctx context.Context, tx pgx.Tx, w *domain.WithdrawalRequest) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *w
	r.withdrawals[w.ID] = &cp
	return nil
}

func (r *inMemoryWithdrawalRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.WithdrawalRequest, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	w, ok := r.withdrawals[id]
	if !ok {
		return nil, nil
	}
	cp := *w
	return &cp, nil
}

func (r *inMemoryWithdrawalRepo) Decide(ctx context.Context, tx pgx.Tx, id uuid.UUID, next domain.WithdrawalStatus, processedBy uuid.UUID, proofPath, rejectReason *string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	w, ok := r.withdrawals[id]
	if !ok || w.Status != domain.WithdrawalStatusPending {
		return false, nil
	}
	now := time.Now().UTC()
	w.Status = next
	w.ProcessedBy = &processedBy
	w.ProcessedAt = &now
	w.ProofPath = proofPath
	w.RejectReason = rejectReason
	w.UpdatedAt = now
	return true, nil
}

func (r *inMemoryWithdrawalRepo) List(ctx context.Context, filter ports.WithdrawalListFilter) ([]domain.WithdrawalRequest, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var result []domain.WithdrawalRequest
	for _, w := range r.withdrawals {
		if filter.WorkerID != nil && w.WorkerID != *filter.WorkerID {
			continue
		}
		if filter.Status != nil && w.Status != *filter.Status {
			continue
		}
		result = append(result, *w)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].CreatedAt.After(result[j].CreatedAt) })
	return paginate(result, filter.Limit, filter.Offset), nil
}

// --- In-Memory Rating Repo ---

// inMemoryRatingRepo enforces the one-rating-per-order unique constraint and
// recomputes aggregates against the shared profile repo.
type inMemoryRatingRepo struct {
	mu       sync.Mutex
	ratings  map[uuid.UUID]*domain.Rating // keyed by order ID
	profiles *inMemoryWorkerProfileRepo
}

func newInMemoryRatingRepo(profiles *inMemoryWorkerProfileRepo) *inMemoryRatingRepo {
	return &inMemoryRatingRepo{
		ratings:  make(map[uuid.UUID]*domain.Rating),
		profiles: profiles,
	}
}

func (r *inMemoryRatingRepo) Create(ctx context.Context, tx pgx.Tx, rating *domain.Rating) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.ratings[rating.OrderID]; exists {
		return apperror.ErrDuplicateRating()
	}
	cp := *rating
	r.ratings[rating.OrderID] = &cp
	return nil
}

func (r *inMemoryRatingRepo) GetByOrderID(ctx context.Context, orderID uuid.UUID) (*domain.Rating, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	rt, ok := r.ratings[orderID]
	if !ok {
		return nil, nil
	}
	cp := *rt
	return &cp, nil
}

func (r *inMemoryRatingRepo) ListByWorker(ctx context.Context, workerID uuid.UUID, limit, offset int) ([]domain.Rating, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var result []domain.Rating
	for _, rt := range r.ratings {
		if rt.WorkerID == workerID {
			result = append(result, *rt)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].CreatedAt.After(result[j].CreatedAt) })
	return paginate(result, limit, offset), nil
}

func (r *inMemoryRatingRepo) RecomputeWorkerStats(ctx context.Context, tx pgx.Tx, workerID uuid.UUID) error {
	r.mu.Lock()
	var count int64
	var sum int64
	for _, rt := range r.ratings {
		if rt.WorkerID == workerID {
			count++
			sum += int64(rt.Score)
		}
	}
	r.mu.Unlock()

	avg := 0.0
	if count > 0 {
		avg = float64(sum) / float64(count)
	}
	return r.profiles.updateStats(workerID, avg, count)
}

// --- In-Memory Worker Profile Repo ---

type inMemoryWorkerProfileRepo struct {
	mu       sync.Mutex
	profiles map[uuid.UUID]*domain.WorkerProfile // keyed by user ID
}

func newInMemoryWorkerProfileRepo() *inMemoryWorkerProfileRepo {
	return &inMemoryWorkerProfileRepo{profiles: make(map[uuid.UUID]*domain.WorkerProfile)}
}

func (r *inMemoryWorkerProfileRepo) Create(ctx context.Context, p *domain.WorkerProfile) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *p
	r.profiles[p.UserID] = &cp
	return nil
}

func (r *inMemoryWorkerProfileRepo) GetByUserID(ctx context.Context, userID uuid.UUID) (*domain.WorkerProfile, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.profiles[userID]
	if !ok {
		return nil, nil
	}
	cp := *p
	return &cp, nil
}

func (r *inMemoryWorkerProfileRepo) updateStats(userID uuid.UUID, avg float64, count int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.profiles[userID]
	if !ok {
		return fmt.Errorf("worker profile not found")
	}
	p.RatingAverage = avg
	p.RatingCount = count
	p.CompletedJobs++
	return nil
}

// --- In-Memory Category Repo ---

type inMemoryCategoryRepo struct {
	mu         sync.RWMutex
	categories map[uuid.UUID]*domain.Category
}

func newInMemoryCategoryRepo() *inMemoryCategoryRepo {
	return &inMemoryCategoryRepo{categories: make(map[uuid.UUID]*domain.Category)}
}

func (r *inMemoryCategoryRepo) add(c *domain.Category) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.categories[c.ID] = c
}

func (r *inMemoryCategoryRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Category, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.categories[id]
	if !ok {
		return nil, nil
	}
	cp := *c
	return &cp, nil
}

// --- In-Memory Transactor (no-op tx) ---

type inMemoryTransactor struct{}

func newInMemoryTransactor() *inMemoryTransactor {
	return &inMemoryTransactor{}
}

func (t *inMemoryTransactor) Begin(ctx context.Context) (pgx.Tx, error) {
	return &noopTx{}, nil
}

// noopTx is a no-op pgx.Tx implementation for in-memory testing.
type noopTx struct{}

func (t *noopTx) Begin(ctx context.Context) (pgx.Tx, error) { return t, nil }
func (t *noopTx) Commit(ctx context.Context) error          { return nil }
func (t *noopTx) Rollback(ctx context.Context) error        { return nil }
func (t *noopTx) CopyFrom(ctx context.Context, tableName pgx.Identifier, columnNames []string, rowSrc pgx.CopyFromSource) (int64, error) {
	return 0, nil
}
func (t *noopTx) SendBatch(ctx context.Context, b *pgx.Batch) pgx.BatchResults { return nil }
func (t *noopTx) LargeObjects() pgx.LargeObjects                               { return pgx.LargeObjects{} }
func (t *noopTx) Prepare(ctx context.Context, name, sql string) (*pgconn.StatementDescription, error) {
	return nil, nil
}
func (t *noopTx) Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error) {
	return pgconn.NewCommandTag(""), nil
}
func (t *noopTx) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	return nil, nil
}
func (t *noopTx) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	return nil
}
func (t *noopTx) Conn() *pgx.Conn { return nil }

// paginate applies limit/offset the way the SQL repos do. limit <= 0 means
// no limit.
func paginate[T any](items []T, limit, offset int) []T {
	if offset >= len(items) {
		return []T{}
	}
	items = items[offset:]
	if limit > 0 && limit < len(items) {
		items = items[:limit]
	}
	return items
}
