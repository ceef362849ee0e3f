package repository

import (
	"context"
	"time"

	"kundli-ai-payments/internal/domain/model"
)

// UserCreditsRepository is the port for the credit ledger. AddCredits is the
// only mutation the payment core performs and it must be atomic with respect
// to concurrent purchases by the same user: implementations upsert additively
// (insert {total=c, used=0, remaining=c} or total += c, remaining += c) under
// whatever transaction handle is supplied.
type UserCreditsRepository interface {
	// FindByUser returns domain.ErrNotFound for a user with no ledger row;
	// callers treat that as the zero state, not an error.
	FindByUser(ctx context.Context, tx Tx, userID string) (*model.UserCredits, error)

	AddCredits(ctx context.Context, tx Tx, userID string, credits int64, purchasedAt time.Time) (*model.UserCredits, error)
}
