package adapter

import (
	"context"

	"kundli-ai-payments/internal/domain/model"
)

// CheckoutClient drives the hosted checkout UI. Open suspends until exactly
// one of the gateway's three callbacks fires (or the session times out, which
// counts as a dismissal) and returns that single outcome.
type CheckoutClient interface {
	// Available reports whether the hosted checkout can be invoked at all.
	Available() bool

	Open(ctx context.Context, desc model.CheckoutDescriptor) (model.CheckoutResult, error)
}
