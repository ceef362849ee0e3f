package usecase

import (
	"context"

	"github.com/google/uuid"
	"github.com/oklog/ulid/v2"
	"github.com/rs/zerolog"

	"kundli-ai-payments/internal/domain"
	"kundli-ai-payments/internal/domain/model"
	"kundli-ai-payments/internal/domain/ports/adapter"
	"kundli-ai-payments/internal/domain/ports/repository"
	"kundli-ai-payments/internal/infra/metrics"
)

// Compile-time check
var _ OrderUseCase = (*orderUC)(nil)

// CreateOrderInput mirrors the order-creation contract: amount already in
// minor units, credits as the plan advertises them (donations send 0).
type CreateOrderInput struct {
	PlanName       string
	AmountPaise    int64
	MessageCredits int64
}

type OrderUseCase interface {
	// Create registers an order with the gateway and persists it as pending.
	Create(ctx context.Context, userID string, in CreateOrderInput) (*adapter.OrderCreation, error)
}

type orderUC struct {
	orders  repository.OrderRepository
	gateway adapter.OrderGateway
	log     *zerolog.Logger
}

func NewOrderUseCase(orders repository.OrderRepository, gateway adapter.OrderGateway, logger *zerolog.Logger) *orderUC {
	return &orderUC{orders: orders, gateway: gateway, log: logger}
}

func (u *orderUC) receipt() string {
	return "rcpt_" + ulid.Make().String()
}

func (u *orderUC) Create(ctx context.Context, userID string, in CreateOrderInput) (*adapter.OrderCreation, error) {
	if userID == "" || in.PlanName == "" || in.AmountPaise <= 0 || in.MessageCredits < 0 {
		return nil, domain.ErrInvalidArgument
	}

	receipt := u.receipt()
	created, err := u.gateway.CreateOrder(ctx, adapter.CreateOrderRequest{
		UserID:         userID,
		PlanName:       in.PlanName,
		AmountPaise:    in.AmountPaise,
		MessageCredits: in.MessageCredits,
		Receipt:        receipt,
	})
	if err != nil {
		metrics.IncOrder("create_error")
		u.log.Error().Err(err).Str("user_id", userID).Str("plan", in.PlanName).Msg("gateway order creation failed")
		return nil, err
	}
	if created.GatewayOrderID == "" || created.KeyID == "" {
		metrics.IncOrder("create_error")
		return nil, domain.ErrOrderCreationFailed
	}

	order, err := model.NewOrder(uuid.NewString(), created.GatewayOrderID, userID, in.PlanName, created.AmountPaise, in.MessageCredits, receipt)
	if err != nil {
		return nil, err
	}
	if err := u.orders.Save(ctx, nil, order); err != nil {
		u.log.Error().Err(err).Str("gateway_order_id", created.GatewayOrderID).Msg("failed to persist order")
		return nil, err
	}

	metrics.IncOrder("created")
	u.log.Info().
		Str("user_id", userID).
		Str("plan", in.PlanName).
		Str("gateway_order_id", created.GatewayOrderID).
		Int64("amount_paise", created.AmountPaise).
		Msg("order created")
	return created, nil
}
