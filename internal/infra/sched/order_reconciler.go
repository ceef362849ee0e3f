package sched

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"kundli-ai-payments/internal/domain/ports/repository"
	"kundli-ai-payments/internal/infra/metrics"
)

// OrderReconciler periodically scans for stale pending orders and marks them
// failed. This covers checkouts that were abandoned without a dismiss
// callback, or a process crash between order creation and verification. The
// guarded transition means an order verified between the scan and the update
// is left alone.
type OrderReconciler struct {
	orders     repository.OrderRepository
	interval   time.Duration // how often to scan
	staleAfter time.Duration // how old a pending order must be to expire
	log        *zerolog.Logger
}

func NewOrderReconciler(orders repository.OrderRepository, interval, staleAfter time.Duration, logger *zerolog.Logger) *OrderReconciler {
	if interval <= 0 {
		interval = time.Minute
	}
	if staleAfter <= 0 {
		staleAfter = 15 * time.Minute
	}
	return &OrderReconciler{orders: orders, interval: interval, staleAfter: staleAfter, log: logger}
}

func (w *OrderReconciler) Start(ctx context.Context) {
	t := time.NewTicker(w.interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			w.tick(ctx)
		}
	}
}

func (w *OrderReconciler) tick(ctx context.Context) {
	cutoff := time.Now().Add(-w.staleAfter)
	pending, err := w.orders.ListPendingOlderThan(ctx, nil, cutoff, 200)
	if err != nil {
		w.log.Error().Err(err).Msg("order-reconciler: list pending failed")
		return
	}
	for _, o := range pending {
		changed, err := w.orders.MarkFailedIfPending(ctx, nil, o.GatewayOrderID)
		if err != nil {
			w.log.Error().Err(err).Str("gateway_order_id", o.GatewayOrderID).Msg("order-reconciler: expire failed")
			continue
		}
		if changed {
			metrics.IncOrder("expired")
			w.log.Info().
				Str("gateway_order_id", o.GatewayOrderID).
				Str("user_id", o.UserID).
				Time("created_at", o.CreatedAt).
				Msg("order-reconciler: expired stale pending order")
		}
	}
}
