//go:build !integration

package usecase_test

import (
	"context"
	"io"
	"sync"
	"time"

	"github.com/jackc/pgx/v4"
	"github.com/rs/zerolog"

	"kundli-ai-payments/internal/domain"
	"kundli-ai-payments/internal/domain/model"
	"kundli-ai-payments/internal/domain/ports/adapter"
	"kundli-ai-payments/internal/domain/ports/repository"
)

func newTestLogger() *zerolog.Logger {
	logger := zerolog.New(io.Discard)
	return &logger
}

// --- In-memory order repository

type memOrderRepo struct {
	mu      sync.RWMutex
	store   map[string]*model.Order // by gateway order id
	saveErr error

	// override hooks for failure-injection tests
	MarkCompletedFunc func(ctx context.Context, tx repository.Tx, gatewayOrderID, userID, paymentID string) (*model.Order, bool, error)
}

func newMemOrderRepo() *memOrderRepo {
	return &memOrderRepo{store: make(map[string]*model.Order)}
}

func (m *memOrderRepo) Save(ctx context.Context, tx repository.Tx, o *model.Order) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *o
	m.store[o.GatewayOrderID] = &cp
	return nil
}

func (m *memOrderRepo) FindByGatewayOrderID(ctx context.Context, tx repository.Tx, gatewayOrderID string) (*model.Order, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	o, ok := m.store[gatewayOrderID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *o
	return &cp, nil
}

func (m *memOrderRepo) MarkCompletedIfPending(ctx context.Context, tx repository.Tx, gatewayOrderID, userID, paymentID string) (*model.Order, bool, error) {
	if m.MarkCompletedFunc != nil {
		return m.MarkCompletedFunc(ctx, tx, gatewayOrderID, userID, paymentID)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	o, ok := m.store[gatewayOrderID]
	if !ok {
		return nil, false, domain.ErrNotFound
	}
	if o.Status != model.OrderStatusPending || o.UserID != userID {
		cp := *o
		return &cp, false, nil
	}
	o.Status = model.OrderStatusCompleted
	pid := paymentID
	o.PaymentID = &pid
	o.UpdatedAt = time.Now()
	cp := *o
	return &cp, true, nil
}

func (m *memOrderRepo) MarkFailedIfPending(ctx context.Context, tx repository.Tx, gatewayOrderID string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	o, ok := m.store[gatewayOrderID]
	if !ok {
		return false, domain.ErrNotFound
	}
	if o.Status != model.OrderStatusPending {
		return false, nil
	}
	o.Status = model.OrderStatusFailed
	o.UpdatedAt = time.Now()
	return true, nil
}

func (m *memOrderRepo) FindLatestCompletedByUser(ctx context.Context, tx repository.Tx, userID string) (*model.Order, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var latest *model.Order
	for _, o := range m.store {
		if o.UserID != userID || o.Status != model.OrderStatusCompleted {
			continue
		}
		if latest == nil || o.UpdatedAt.After(latest.UpdatedAt) {
			latest = o
		}
	}
	if latest == nil {
		return nil, domain.ErrNotFound
	}
	cp := *latest
	return &cp, nil
}

func (m *memOrderRepo) ListPendingOlderThan(ctx context.Context, tx repository.Tx, olderThan time.Time, limit int) ([]*model.Order, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*model.Order
	for _, o := range m.store {
		if o.Status == model.OrderStatusPending && o.CreatedAt.Before(olderThan) {
			cp := *o
			out = append(out, &cp)
			if len(out) == limit {
				break
			}
		}
	}
	return out, nil
}

// --- In-memory credits repository (real upsert semantics)

type memCreditsRepo struct {
	mu      sync.RWMutex
	store   map[string]*model.UserCredits
	findErr error
	addErr  error
}

func newMemCreditsRepo() *memCreditsRepo {
	return &memCreditsRepo{store: make(map[string]*model.UserCredits)}
}

func (m *memCreditsRepo) FindByUser(ctx context.Context, tx repository.Tx, userID string) (*model.UserCredits, error) {
	if m.findErr != nil {
		return nil, m.findErr
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	c, ok := m.store[userID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *c
	return &cp, nil
}

func (m *memCreditsRepo) AddCredits(ctx context.Context, tx repository.Tx, userID string, credits int64, purchasedAt time.Time) (*model.UserCredits, error) {
	if m.addErr != nil {
		return nil, m.addErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.store[userID]
	if !ok {
		c = model.ZeroCredits(userID)
		m.store[userID] = c
	}
	c.TotalCredits += credits
	c.RemainingCredits += credits
	c.LastPurchaseAt = &purchasedAt
	c.UpdatedAt = time.Now()
	cp := *c
	return &cp, nil
}

// --- Mock payment gateway

type mockGateway struct {
	CreateOrderFunc     func(ctx context.Context, req adapter.CreateOrderRequest) (*adapter.OrderCreation, error)
	VerifySignatureFunc func(orderID, paymentID, signature string) bool

	mu          sync.Mutex
	createCalls int
}

func (g *mockGateway) Name() string  { return "mock" }
func (g *mockGateway) KeyID() string { return "rzp_test_key" }

func (g *mockGateway) CreateOrder(ctx context.Context, req adapter.CreateOrderRequest) (*adapter.OrderCreation, error) {
	g.mu.Lock()
	g.createCalls++
	g.mu.Unlock()
	if g.CreateOrderFunc != nil {
		return g.CreateOrderFunc(ctx, req)
	}
	return &adapter.OrderCreation{
		GatewayOrderID: "order_test_1",
		AmountPaise:    req.AmountPaise,
		Currency:       "INR",
		KeyID:          g.KeyID(),
	}, nil
}

func (g *mockGateway) CreateCalls() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.createCalls
}

func (g *mockGateway) VerifySignature(orderID, paymentID, signature string) bool {
	if g.VerifySignatureFunc != nil {
		return g.VerifySignatureFunc(orderID, paymentID, signature)
	}
	return signature == "valid"
}

// --- Mock checkout client

type mockCheckout struct {
	unavailable bool
	OpenFunc    func(ctx context.Context, desc model.CheckoutDescriptor) (model.CheckoutResult, error)

	mu       sync.Mutex
	lastDesc model.CheckoutDescriptor
}

func (c *mockCheckout) Available() bool { return !c.unavailable }

func (c *mockCheckout) Open(ctx context.Context, desc model.CheckoutDescriptor) (model.CheckoutResult, error) {
	c.mu.Lock()
	c.lastDesc = desc
	c.mu.Unlock()
	if c.OpenFunc != nil {
		return c.OpenFunc(ctx, desc)
	}
	return model.NewCheckoutDismiss(), nil
}

func (c *mockCheckout) LastDesc() model.CheckoutDescriptor {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastDesc
}

// --- Mock identity

type mockIdentity struct {
	user *adapter.User
	err  error
}

func (i *mockIdentity) CurrentUser(ctx context.Context) (*adapter.User, error) {
	if i.err != nil {
		return nil, i.err
	}
	if i.user == nil {
		return nil, domain.ErrAuthRequired
	}
	return i.user, nil
}

// --- Mock notifier / navigator

type mockNotifier struct {
	mu      sync.Mutex
	notices []adapter.Notice
}

func (n *mockNotifier) Notify(ctx context.Context, notice adapter.Notice) {
	n.mu.Lock()
	n.notices = append(n.notices, notice)
	n.mu.Unlock()
}

func (n *mockNotifier) Notices() []adapter.Notice {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]adapter.Notice(nil), n.notices...)
}

type navCall struct {
	dest  adapter.Destination
	after time.Duration
}

type mockNavigator struct {
	mu    sync.Mutex
	calls []navCall
}

func (n *mockNavigator) ScheduleNavigate(dest adapter.Destination, after time.Duration) {
	n.mu.Lock()
	n.calls = append(n.calls, navCall{dest: dest, after: after})
	n.mu.Unlock()
}

func (n *mockNavigator) Calls() []navCall {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]navCall(nil), n.calls...)
}

// --- Mock change feed

type mockFeed struct {
	mu        sync.Mutex
	published []adapter.ChangeEvent
	events    chan adapter.ChangeEvent
	subErr    error
}

func newMockFeed() *mockFeed {
	return &mockFeed{events: make(chan adapter.ChangeEvent, 8)}
}

func (f *mockFeed) Subscribe(ctx context.Context, userID string) (<-chan adapter.ChangeEvent, func(), error) {
	if f.subErr != nil {
		return nil, nil, f.subErr
	}
	return f.events, func() {}, nil
}

func (f *mockFeed) Publish(ctx context.Context, ev adapter.ChangeEvent) error {
	f.mu.Lock()
	f.published = append(f.published, ev)
	f.mu.Unlock()
	return nil
}

func (f *mockFeed) Published() []adapter.ChangeEvent {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]adapter.ChangeEvent(nil), f.published...)
}

// --- Mock transaction manager

// mockTxManager runs the callback without a transaction handle; the in-memory
// repos don't need one. failTimes aborts that many transactions up front to
// simulate transient database trouble.
type mockTxManager struct {
	mu        sync.Mutex
	withTxErr error
	failTimes int
	calls     int
}

func (m *mockTxManager) WithTx(ctx context.Context, opts pgx.TxOptions, fn func(ctx context.Context, tx repository.Tx) error) error {
	m.mu.Lock()
	m.calls++
	if m.withTxErr != nil {
		err := m.withTxErr
		m.mu.Unlock()
		return err
	}
	if m.failTimes > 0 {
		m.failTimes--
		m.mu.Unlock()
		return domain.ErrOperationFailed
	}
	m.mu.Unlock()
	return fn(ctx, nil)
}
