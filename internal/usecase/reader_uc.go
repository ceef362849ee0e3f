package usecase

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"kundli-ai-payments/internal/domain"
	"kundli-ai-payments/internal/domain/model"
	"kundli-ai-payments/internal/domain/ports/adapter"
	"kundli-ai-payments/internal/domain/ports/repository"
	"kundli-ai-payments/internal/retry"
)

// pollInterval is the safety net behind the change feed: even if every event
// is lost, the snapshot is at most this stale.
const pollInterval = 5 * time.Minute

// SubscriptionReader maintains a live subscription snapshot for one user.
// It rebuilds the whole snapshot on every trigger: change-feed event, the
// periodic poll, or an explicit Refresh. It never writes.
type SubscriptionReader struct {
	userID  string
	orders  repository.OrderRepository
	credits repository.UserCreditsRepository
	feed    adapter.ChangeFeed
	policy  retry.Policy
	log     *zerolog.Logger

	mu         sync.Mutex
	snap       model.Subscription
	retryCount int
}

func NewSubscriptionReader(
	userID string,
	orders repository.OrderRepository,
	credits repository.UserCreditsRepository,
	feed adapter.ChangeFeed,
	policy retry.Policy,
	logger *zerolog.Logger,
) *SubscriptionReader {
	return &SubscriptionReader{
		userID:  userID,
		orders:  orders,
		credits: credits,
		feed:    feed,
		policy:  policy,
		log:     logger,
		snap:    model.Subscription{IsLoading: true},
	}
}

// Snapshot returns a copy of the current view.
func (r *SubscriptionReader) Snapshot() model.Subscription {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.snap
}

// Refresh rebuilds the snapshot now. Signed-out readers settle on the zero
// state instead of erroring.
func (r *SubscriptionReader) Refresh(ctx context.Context) error {
	if r.userID == "" {
		r.mu.Lock()
		r.snap = model.Subscription{LastUpdated: time.Now()}
		r.mu.Unlock()
		return nil
	}

	r.mu.Lock()
	r.snap.IsLoading = true
	r.mu.Unlock()

	var ledger *model.UserCredits
	var latest *model.Order
	err := r.policy.Do(ctx, func(ctx context.Context) error {
		uc, err := r.credits.FindByUser(ctx, nil, r.userID)
		if err != nil {
			if !errors.Is(err, domain.ErrNotFound) {
				return err
			}
			uc = model.ZeroCredits(r.userID)
		}
		lo, err := r.orders.FindLatestCompletedByUser(ctx, nil, r.userID)
		if err != nil && !errors.Is(err, domain.ErrNotFound) {
			return err
		}
		ledger, latest = uc, lo
		return nil
	}, nil)
	if err != nil {
		r.log.Error().Err(err).Str("user_id", r.userID).Msg("subscription refresh failed")
		r.mu.Lock()
		r.snap.IsLoading = false
		r.snap.Error = "Failed to load subscription status"
		r.retryCount++
		r.mu.Unlock()
		return err
	}

	snap := model.Subscription{
		HasActiveSubscription: ledger.RemainingCredits > 0,
		TotalCredits:          ledger.TotalCredits,
		UsedCredits:           ledger.UsedCredits,
		RemainingCredits:      ledger.RemainingCredits,
		LastPurchaseAt:        ledger.LastPurchaseAt,
		LastUpdated:           time.Now(),
	}
	if snap.HasActiveSubscription && latest != nil {
		snap.ActivePlan = latest.PlanName
	}

	r.mu.Lock()
	r.snap = snap
	r.retryCount = 0
	r.mu.Unlock()
	return nil
}

// Retry re-runs a failed refresh, bounded by the policy's attempt budget so a
// dead database can't be hammered from the client.
func (r *SubscriptionReader) Retry(ctx context.Context) error {
	r.mu.Lock()
	if r.retryCount >= r.policy.MaxAttempts {
		r.mu.Unlock()
		return domain.ErrOperationFailed
	}
	r.mu.Unlock()
	return r.Refresh(ctx)
}

// Start loads the initial snapshot and then keeps it fresh until ctx ends,
// reacting to change-feed events and polling every pollInterval. It returns
// after spawning the watcher; the first refresh happens synchronously.
func (r *SubscriptionReader) Start(ctx context.Context) error {
	if err := r.Refresh(ctx); err != nil {
		// Keep watching anyway; the poll will heal a transient failure.
		r.log.Warn().Err(err).Str("user_id", r.userID).Msg("initial subscription load failed")
	}
	if r.userID == "" {
		return nil
	}

	events, cancel, err := r.feed.Subscribe(ctx, r.userID)
	if err != nil {
		return err
	}

	go func() {
		defer cancel()
		ticker := time.NewTicker(pollInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-events:
				if !ok {
					return
				}
				r.log.Debug().Str("user_id", r.userID).Str("table", ev.Table).Msg("change event, refreshing subscription")
				_ = r.Refresh(ctx)
			case <-ticker.C:
				_ = r.Refresh(ctx)
			}
		}
	}()
	return nil
}
