package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"kundli-ai-payments/internal/domain"
	"kundli-ai-payments/internal/domain/model"
	"kundli-ai-payments/internal/domain/ports/repository"
)

var _ repository.UserCreditsRepository = (*creditsRepo)(nil)

type creditsRepo struct{ pool *pgxpool.Pool }

func NewCreditsRepo(pool *pgxpool.Pool) *creditsRepo {
	return &creditsRepo{pool: pool}
}

func (r *creditsRepo) FindByUser(ctx context.Context, tx repository.Tx, userID string) (*model.UserCredits, error) {
	q := `SELECT user_id, total_credits, used_credits, remaining_credits, last_purchase_at, updated_at FROM user_credits WHERE user_id=$1`
	if _, ok := tx.(pgx.Tx); ok {
		q += " FOR UPDATE"
	}
	q += ";"
	row, err := pickRow(ctx, r.pool, tx, q, userID)
	if err != nil {
		return nil, err
	}

	c := &model.UserCredits{}
	if err := row.Scan(&c.UserID, &c.TotalCredits, &c.UsedCredits, &c.RemainingCredits, &c.LastPurchaseAt, &c.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, domain.ErrReadDatabaseRow
	}
	return c, nil
}

// AddCredits applies a verified completion to the ledger in one statement.
// The upsert keeps remaining = total - used without a read-modify-write
// window, so two devices crediting the same user cannot race.
func (r *creditsRepo) AddCredits(ctx context.Context, tx repository.Tx, userID string, credits int64, purchasedAt time.Time) (*model.UserCredits, error) {
	if credits <= 0 {
		return nil, domain.ErrInvalidArgument
	}
	const q = `
INSERT INTO user_credits (user_id, total_credits, used_credits, remaining_credits, last_purchase_at, updated_at)
VALUES ($1, $2, 0, $2, $3, NOW())
ON CONFLICT (user_id) DO UPDATE SET
  total_credits     = user_credits.total_credits + $2,
  remaining_credits = user_credits.remaining_credits + $2,
  last_purchase_at  = $3,
  updated_at        = NOW()
RETURNING user_id, total_credits, used_credits, remaining_credits, last_purchase_at, updated_at;`

	row, err := pickRow(ctx, r.pool, tx, q, userID, credits, purchasedAt)
	if err != nil {
		return nil, err
	}

	c := &model.UserCredits{}
	if err := row.Scan(&c.UserID, &c.TotalCredits, &c.UsedCredits, &c.RemainingCredits, &c.LastPurchaseAt, &c.UpdatedAt); err != nil {
		return nil, domain.ErrReadDatabaseRow
	}
	return c, nil
}
