//go:build !integration

package web_test

import (
	"context"
	"io"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"kundli-ai-payments/internal/domain"
	"kundli-ai-payments/internal/domain/model"
	"kundli-ai-payments/internal/domain/ports/adapter"
	"kundli-ai-payments/internal/domain/ports/repository"
	"kundli-ai-payments/internal/usecase"
)

func newTestLogger() *zerolog.Logger {
	logger := zerolog.New(io.Discard)
	return &logger
}

// --- Stub order use case

type stubOrderUC struct {
	CreateFunc func(ctx context.Context, userID string, in usecase.CreateOrderInput) (*adapter.OrderCreation, error)
}

func (s *stubOrderUC) Create(ctx context.Context, userID string, in usecase.CreateOrderInput) (*adapter.OrderCreation, error) {
	if s.CreateFunc != nil {
		return s.CreateFunc(ctx, userID, in)
	}
	return &adapter.OrderCreation{GatewayOrderID: "order_web_1", AmountPaise: in.AmountPaise, Currency: "INR", KeyID: "rzp_test_key"}, nil
}

// --- Stub verify use case

type stubVerifyUC struct {
	VerifyFunc func(ctx context.Context, userID, orderID, paymentID, signature string) (*usecase.VerifyResult, error)
}

func (s *stubVerifyUC) Verify(ctx context.Context, userID, orderID, paymentID, signature string) (*usecase.VerifyResult, error) {
	if s.VerifyFunc != nil {
		return s.VerifyFunc(ctx, userID, orderID, paymentID, signature)
	}
	if signature != "valid" {
		return nil, domain.ErrInvalidSignature
	}
	return &usecase.VerifyResult{
		CreditsAdded: 50,
		Credits:      &model.UserCredits{UserID: userID, TotalCredits: 50, RemainingCredits: 50},
	}, nil
}

// --- Stub repositories backing the subscription reader

type stubOrderRepo struct {
	latest *model.Order
}

func (s *stubOrderRepo) Save(ctx context.Context, tx repository.Tx, o *model.Order) error { return nil }
func (s *stubOrderRepo) FindByGatewayOrderID(ctx context.Context, tx repository.Tx, id string) (*model.Order, error) {
	return nil, domain.ErrNotFound
}
func (s *stubOrderRepo) MarkCompletedIfPending(ctx context.Context, tx repository.Tx, gatewayOrderID, userID, paymentID string) (*model.Order, bool, error) {
	return nil, false, domain.ErrNotFound
}
func (s *stubOrderRepo) MarkFailedIfPending(ctx context.Context, tx repository.Tx, gatewayOrderID string) (bool, error) {
	return false, domain.ErrNotFound
}
func (s *stubOrderRepo) FindLatestCompletedByUser(ctx context.Context, tx repository.Tx, userID string) (*model.Order, error) {
	if s.latest == nil {
		return nil, domain.ErrNotFound
	}
	return s.latest, nil
}
func (s *stubOrderRepo) ListPendingOlderThan(ctx context.Context, tx repository.Tx, olderThan time.Time, limit int) ([]*model.Order, error) {
	return nil, nil
}

type stubCreditsRepo struct {
	ledger *model.UserCredits
}

func (s *stubCreditsRepo) FindByUser(ctx context.Context, tx repository.Tx, userID string) (*model.UserCredits, error) {
	if s.ledger == nil {
		return nil, domain.ErrNotFound
	}
	return s.ledger, nil
}
func (s *stubCreditsRepo) AddCredits(ctx context.Context, tx repository.Tx, userID string, credits int64, purchasedAt time.Time) (*model.UserCredits, error) {
	return nil, domain.ErrOperationFailed
}

// --- Stub change feed

type stubFeed struct{}

func (stubFeed) Subscribe(ctx context.Context, userID string) (<-chan adapter.ChangeEvent, func(), error) {
	ch := make(chan adapter.ChangeEvent)
	return ch, func() {}, nil
}
func (stubFeed) Publish(ctx context.Context, ev adapter.ChangeEvent) error { return nil }

// --- Recording checkout client for flow factories

type stubCheckout struct {
	mu     sync.Mutex
	result model.CheckoutResult
}

func (c *stubCheckout) Available() bool { return true }
func (c *stubCheckout) Open(ctx context.Context, desc model.CheckoutDescriptor) (model.CheckoutResult, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	res := c.result
	if res.Outcome == "" {
		res = model.NewCheckoutDismiss()
	}
	if res.Outcome == model.CheckoutOutcomeSuccess && res.OrderID == "" {
		res.OrderID = desc.OrderID
	}
	return res, nil
}
