// Package checkout hosts the server-side half of the hosted checkout
// conversation. The browser opens the gateway's modal; whichever callback it
// reports back (success, failure, dismissal) resolves the session that Open
// is blocked on.
package checkout

import (
	"context"
	"sync"
	"time"

	"kundli-ai-payments/internal/domain"
	"kundli-ai-payments/internal/domain/model"
	"kundli-ai-payments/internal/domain/ports/adapter"

	"github.com/rs/zerolog"
)

var _ adapter.CheckoutClient = (*SessionBroker)(nil)

// SessionBroker tracks one open checkout session per gateway order id.
type SessionBroker struct {
	defaultTimeout time.Duration
	log            *zerolog.Logger

	mu       sync.Mutex
	sessions map[string]chan model.CheckoutResult
}

func NewSessionBroker(defaultTimeout time.Duration, logger *zerolog.Logger) *SessionBroker {
	if defaultTimeout <= 0 {
		defaultTimeout = 15 * time.Minute
	}
	return &SessionBroker{
		defaultTimeout: defaultTimeout,
		log:            logger,
		sessions:       make(map[string]chan model.CheckoutResult),
	}
}

func (b *SessionBroker) Available() bool { return true }

// Open registers a session for the descriptor's order and suspends until a
// callback resolves it. The session self-closes as a dismissal after the
// descriptor timeout, matching the hosted modal's own behavior. A canceled
// context also reads as a dismissal: the user walked away.
func (b *SessionBroker) Open(ctx context.Context, desc model.CheckoutDescriptor) (model.CheckoutResult, error) {
	ch := make(chan model.CheckoutResult, 1)

	b.mu.Lock()
	if _, exists := b.sessions[desc.OrderID]; exists {
		b.mu.Unlock()
		return model.CheckoutResult{}, domain.ErrAlreadyExists
	}
	b.sessions[desc.OrderID] = ch
	b.mu.Unlock()

	defer func() {
		b.mu.Lock()
		delete(b.sessions, desc.OrderID)
		b.mu.Unlock()
	}()

	timeout := b.defaultTimeout
	if desc.TimeoutSeconds > 0 {
		timeout = time.Duration(desc.TimeoutSeconds) * time.Second
	}
	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case res := <-ch:
		return res, nil
	case <-timer.C:
		b.log.Info().Str("order_id", desc.OrderID).Msg("checkout session timed out")
		return model.NewCheckoutDismiss(), nil
	case <-ctx.Done():
		return model.NewCheckoutDismiss(), nil
	}
}

// Resolve delivers a callback outcome to the session waiting on orderID.
// Returns false when no session is open (timed out, already resolved, or
// never existed).
func (b *SessionBroker) Resolve(orderID string, res model.CheckoutResult) bool {
	b.mu.Lock()
	ch, ok := b.sessions[orderID]
	if ok {
		delete(b.sessions, orderID)
	}
	b.mu.Unlock()
	if !ok {
		return false
	}
	ch <- res
	return true
}
