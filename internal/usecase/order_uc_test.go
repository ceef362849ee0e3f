//go:build !integration

package usecase_test

import (
	"context"
	"errors"
	"testing"

	"kundli-ai-payments/internal/domain"
	"kundli-ai-payments/internal/domain/model"
	"kundli-ai-payments/internal/domain/ports/adapter"
	"kundli-ai-payments/internal/usecase"
)

func TestOrderUseCase_Create(t *testing.T) {
	ctx := context.Background()

	t.Run("should create and persist a pending order", func(t *testing.T) {
		// --- Arrange ---
		orders := newMemOrderRepo()
		gateway := &mockGateway{}
		uc := usecase.NewOrderUseCase(orders, gateway, newTestLogger())

		// --- Act ---
		created, err := uc.Create(ctx, "user-1", usecase.CreateOrderInput{
			PlanName:       "Basic",
			AmountPaise:    model.RupeesToPaise(99),
			MessageCredits: 50,
		})

		// --- Assert ---
		if err != nil {
			t.Fatalf("expected no error, got: %v", err)
		}
		if created.GatewayOrderID == "" || created.KeyID == "" {
			t.Fatalf("incomplete order creation response: %+v", created)
		}
		if created.AmountPaise != 9900 {
			t.Errorf("expected amount 9900 paise, got %d", created.AmountPaise)
		}

		saved, err := orders.FindByGatewayOrderID(ctx, nil, created.GatewayOrderID)
		if err != nil {
			t.Fatalf("expected order to be persisted: %v", err)
		}
		if saved.Status != model.OrderStatusPending {
			t.Errorf("expected pending status, got %q", saved.Status)
		}
		if saved.MessageCredits != 50 {
			t.Errorf("expected 50 credits, got %d", saved.MessageCredits)
		}
		if saved.Receipt == "" {
			t.Error("expected a receipt to be set")
		}
	})

	t.Run("should store donations with a minimum of one credit", func(t *testing.T) {
		orders := newMemOrderRepo()
		gateway := &mockGateway{}
		uc := usecase.NewOrderUseCase(orders, gateway, newTestLogger())

		created, err := uc.Create(ctx, "user-1", usecase.CreateOrderInput{
			PlanName:       "Donation",
			AmountPaise:    model.RupeesToPaise(500),
			MessageCredits: 0,
		})
		if err != nil {
			t.Fatalf("expected no error, got: %v", err)
		}

		saved, _ := orders.FindByGatewayOrderID(ctx, nil, created.GatewayOrderID)
		if saved.MessageCredits != 1 {
			t.Errorf("expected donation to be stored with 1 credit, got %d", saved.MessageCredits)
		}
	})

	t.Run("should reject invalid input without calling the gateway", func(t *testing.T) {
		orders := newMemOrderRepo()
		gateway := &mockGateway{}
		uc := usecase.NewOrderUseCase(orders, gateway, newTestLogger())

		cases := []usecase.CreateOrderInput{
			{PlanName: "", AmountPaise: 100, MessageCredits: 1},
			{PlanName: "Basic", AmountPaise: 0, MessageCredits: 1},
			{PlanName: "Basic", AmountPaise: -100, MessageCredits: 1},
			{PlanName: "Basic", AmountPaise: 100, MessageCredits: -1},
		}
		for _, in := range cases {
			if _, err := uc.Create(ctx, "user-1", in); !errors.Is(err, domain.ErrInvalidArgument) {
				t.Errorf("input %+v: expected ErrInvalidArgument, got %v", in, err)
			}
		}
		if gateway.CreateCalls() != 0 {
			t.Errorf("gateway should not have been called, got %d calls", gateway.CreateCalls())
		}
	})

	t.Run("should surface gateway failure without persisting", func(t *testing.T) {
		orders := newMemOrderRepo()
		gateway := &mockGateway{
			CreateOrderFunc: func(ctx context.Context, req adapter.CreateOrderRequest) (*adapter.OrderCreation, error) {
				return nil, domain.ErrGatewayUnavailable
			},
		}
		uc := usecase.NewOrderUseCase(orders, gateway, newTestLogger())

		_, err := uc.Create(ctx, "user-1", usecase.CreateOrderInput{
			PlanName: "Basic", AmountPaise: 9900, MessageCredits: 50,
		})
		if !errors.Is(err, domain.ErrGatewayUnavailable) {
			t.Fatalf("expected gateway error, got: %v", err)
		}
		if len(orders.store) != 0 {
			t.Error("no order should be persisted on gateway failure")
		}
	})

	t.Run("should reject an incomplete gateway response", func(t *testing.T) {
		orders := newMemOrderRepo()
		gateway := &mockGateway{
			CreateOrderFunc: func(ctx context.Context, req adapter.CreateOrderRequest) (*adapter.OrderCreation, error) {
				return &adapter.OrderCreation{GatewayOrderID: "", AmountPaise: req.AmountPaise, Currency: "INR", KeyID: "k"}, nil
			},
		}
		uc := usecase.NewOrderUseCase(orders, gateway, newTestLogger())

		_, err := uc.Create(ctx, "user-1", usecase.CreateOrderInput{
			PlanName: "Basic", AmountPaise: 9900, MessageCredits: 50,
		})
		if !errors.Is(err, domain.ErrOrderCreationFailed) {
			t.Fatalf("expected ErrOrderCreationFailed, got: %v", err)
		}
	})
}
