package adapter

import "context"

// CreateOrderRequest is what the order service sends the gateway. Amount is
// already in minor units; the major->minor conversion happened exactly once
// in model.RupeesToPaise.
type CreateOrderRequest struct {
	UserID         string
	PlanName       string
	AmountPaise    int64
	MessageCredits int64
	Receipt        string
}

// OrderCreation is the gateway's answer to a successful order request.
type OrderCreation struct {
	GatewayOrderID string
	AmountPaise    int64
	Currency       string
	KeyID          string
}

// OrderGateway is the hex port for the payment provider's server-side API.
type OrderGateway interface {
	Name() string
	KeyID() string

	// CreateOrder registers a payment intent with the provider.
	CreateOrder(ctx context.Context, req CreateOrderRequest) (*OrderCreation, error)

	// VerifySignature reports whether signature equals
	// HMAC-SHA256(orderID|paymentID, key secret), hex-encoded. Implementations
	// must compare in constant time.
	VerifySignature(orderID, paymentID, signature string) bool
}
