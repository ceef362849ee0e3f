package model

import (
	"time"

	"kundli-ai-payments/internal/domain"
)

type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "pending"   // created with the gateway; checkout not finished
	OrderStatusCompleted OrderStatus = "completed" // signature verified, credits granted
	OrderStatusFailed    OrderStatus = "failed"    // declined, verification failed, or session timed out
)

// Order records a single payment attempt against the gateway. Orders are never
// deleted; completed/failed rows stay as the audit trail.
type Order struct {
	ID             string // internal UUID
	GatewayOrderID string // gateway-assigned opaque id ("order_...")
	UserID         string
	PlanName       string
	AmountPaise    int64 // minor currency units; immutable after creation
	Currency       string
	MessageCredits int64
	Receipt        string
	Status         OrderStatus
	PaymentID      *string // gateway payment id, set on completion
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// NewOrder validates and constructs a pending order. Zero-credit orders
// (donations) are stored with one credit to satisfy the ledger constraint.
func NewOrder(id, gatewayOrderID, userID, planName string, amountPaise, messageCredits int64, receipt string) (*Order, error) {
	if id == "" || gatewayOrderID == "" || userID == "" || planName == "" {
		return nil, domain.ErrInvalidArgument
	}
	if amountPaise <= 0 || messageCredits < 0 {
		return nil, domain.ErrInvalidArgument
	}
	if messageCredits == 0 {
		messageCredits = 1
	}
	now := time.Now()
	return &Order{
		ID:             id,
		GatewayOrderID: gatewayOrderID,
		UserID:         userID,
		PlanName:       planName,
		AmountPaise:    amountPaise,
		Currency:       "INR",
		MessageCredits: messageCredits,
		Receipt:        receipt,
		Status:         OrderStatusPending,
		CreatedAt:      now,
		UpdatedAt:      now,
	}, nil
}
