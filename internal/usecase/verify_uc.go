package usecase

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v4"
	"github.com/rs/zerolog"

	"kundli-ai-payments/internal/domain"
	"kundli-ai-payments/internal/domain/model"
	"kundli-ai-payments/internal/domain/ports/adapter"
	"kundli-ai-payments/internal/domain/ports/repository"
	"kundli-ai-payments/internal/infra/metrics"
)

// Compile-time check
var _ VerifyUseCase = (*verifyUC)(nil)

// VerifyResult reports what a verified payment granted.
type VerifyResult struct {
	CreditsAdded int64
	Credits      *model.UserCredits
}

type VerifyUseCase interface {
	// Verify checks the gateway signature and, inside one transaction,
	// completes the order and credits the user's ledger. A repeat call for an
	// already-completed order is a no-op success (no double credit).
	Verify(ctx context.Context, userID, orderID, paymentID, signature string) (*VerifyResult, error)
}

type verifyUC struct {
	orders  repository.OrderRepository
	credits repository.UserCreditsRepository
	gateway adapter.OrderGateway
	tm      repository.TransactionManager
	feed    adapter.ChangeFeed
	log     *zerolog.Logger
}

func NewVerifyUseCase(
	orders repository.OrderRepository,
	credits repository.UserCreditsRepository,
	gateway adapter.OrderGateway,
	tm repository.TransactionManager,
	feed adapter.ChangeFeed,
	logger *zerolog.Logger,
) *verifyUC {
	return &verifyUC{orders: orders, credits: credits, gateway: gateway, tm: tm, feed: feed, log: logger}
}

func (u *verifyUC) Verify(ctx context.Context, userID, orderID, paymentID, signature string) (*VerifyResult, error) {
	start := time.Now()
	if userID == "" || orderID == "" || paymentID == "" || signature == "" {
		metrics.ObserveVerify("fail", "invalid_argument", time.Since(start).Seconds())
		return nil, domain.ErrInvalidArgument
	}

	// Signature first: a mismatch is terminal, nothing else may run.
	if !u.gateway.VerifySignature(orderID, paymentID, signature) {
		metrics.ObserveVerify("fail", "invalid_signature", time.Since(start).Seconds())
		u.log.Warn().Str("user_id", userID).Str("gateway_order_id", orderID).Msg("signature mismatch")
		return nil, domain.ErrInvalidSignature
	}

	var res VerifyResult
	var completed *model.Order
	err := u.tm.WithTx(ctx, pgx.TxOptions{}, func(ctx context.Context, tx repository.Tx) error {
		order, transitioned, err := u.orders.MarkCompletedIfPending(ctx, tx, orderID, userID, paymentID)
		if err != nil {
			return err
		}
		if !transitioned {
			if order.Status == model.OrderStatusCompleted {
				// Already verified (another tab, a retried call). Nothing to add.
				cur, ferr := u.credits.FindByUser(ctx, tx, userID)
				if ferr != nil && !errors.Is(ferr, domain.ErrNotFound) {
					return ferr
				}
				res = VerifyResult{CreditsAdded: 0, Credits: cur}
				return nil
			}
			return domain.ErrOrderNotPending
		}

		updated, err := u.credits.AddCredits(ctx, tx, userID, order.MessageCredits, time.Now())
		if err != nil {
			return err
		}
		completed = order
		res = VerifyResult{CreditsAdded: order.MessageCredits, Credits: updated}
		return nil
	})
	if err != nil {
		reason := "ledger_error"
		if errors.Is(err, domain.ErrNotFound) {
			reason = "order_not_found"
		} else if errors.Is(err, domain.ErrOrderNotPending) {
			reason = "not_pending"
		}
		metrics.ObserveVerify("fail", reason, time.Since(start).Seconds())
		u.log.Error().Err(err).Str("user_id", userID).Str("gateway_order_id", orderID).Msg("verification failed")
		return nil, err
	}

	if completed != nil {
		metrics.IncOrder("completed")
		metrics.AddOrderRevenue(completed.Currency, completed.AmountPaise)

		// Best effort: a missed event is repaired by the reader's poll.
		for _, table := range []string{"orders", "user_credits"} {
			if ferr := u.feed.Publish(ctx, adapter.ChangeEvent{UserID: userID, Table: table}); ferr != nil {
				u.log.Warn().Err(ferr).Str("user_id", userID).Msg("change feed publish failed")
			}
		}
		u.log.Info().
			Str("user_id", userID).
			Str("gateway_order_id", orderID).
			Str("payment_id", paymentID).
			Int64("credits_added", res.CreditsAdded).
			Msg("payment verified and credited")
	}

	metrics.ObserveVerify("ok", "", time.Since(start).Seconds())
	return &res, nil
}
