package payment

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sync/atomic"

	"kundli-ai-payments/internal/domain/ports/adapter"
)

var _ adapter.OrderGateway = (*NoopGateway)(nil)

// NoopGateway is a stand-in gateway for dev mode. Orders get deterministic
// ids and signatures verify against the same HMAC contract as the real
// gateway, using the configured secret.
type NoopGateway struct {
	secret string
	seq    atomic.Int64
}

func NewNoopGateway(secret string) *NoopGateway {
	if secret == "" {
		secret = "noop-secret"
	}
	return &NoopGateway{secret: secret}
}

func (g *NoopGateway) Name() string  { return "noop" }
func (g *NoopGateway) KeyID() string { return "key_noop" }

func (g *NoopGateway) CreateOrder(ctx context.Context, req adapter.CreateOrderRequest) (*adapter.OrderCreation, error) {
	n := g.seq.Add(1)
	return &adapter.OrderCreation{
		GatewayOrderID: fmt.Sprintf("order_noop_%d", n),
		AmountPaise:    req.AmountPaise,
		Currency:       "INR",
		KeyID:          g.KeyID(),
	}, nil
}

func (g *NoopGateway) VerifySignature(orderID, paymentID, signature string) bool {
	mac := hmac.New(sha256.New, []byte(g.secret))
	mac.Write([]byte(orderID + "|" + paymentID))
	expected := hex.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(expected), []byte(signature))
}

// Sign produces a valid signature for a payment, so dev flows can exercise
// the full verification path without the hosted checkout.
func (g *NoopGateway) Sign(orderID, paymentID string) string {
	mac := hmac.New(sha256.New, []byte(g.secret))
	mac.Write([]byte(orderID + "|" + paymentID))
	return hex.EncodeToString(mac.Sum(nil))
}
