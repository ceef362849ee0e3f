package postgres

import (
	"context"

	"github.com/jackc/pgx/v4/pgxpool"
)

const schema = `
CREATE TABLE IF NOT EXISTS orders (
    id               UUID PRIMARY KEY,
    gateway_order_id TEXT NOT NULL UNIQUE,
    user_id          TEXT NOT NULL,
    plan_name        TEXT NOT NULL,
    amount_paise     BIGINT NOT NULL CHECK (amount_paise > 0),
    currency         TEXT NOT NULL DEFAULT 'INR',
    message_credits  BIGINT NOT NULL CHECK (message_credits > 0),
    receipt          TEXT NOT NULL,
    status           TEXT NOT NULL DEFAULT 'pending',
    payment_id       TEXT,
    created_at       TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    updated_at       TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
CREATE INDEX IF NOT EXISTS idx_orders_user_status ON orders (user_id, status, created_at DESC);
CREATE INDEX IF NOT EXISTS idx_orders_pending_age ON orders (created_at) WHERE status = 'pending';

CREATE TABLE IF NOT EXISTS user_credits (
    user_id           TEXT PRIMARY KEY,
    total_credits     BIGINT NOT NULL DEFAULT 0 CHECK (total_credits >= 0),
    used_credits      BIGINT NOT NULL DEFAULT 0 CHECK (used_credits >= 0),
    remaining_credits BIGINT NOT NULL DEFAULT 0 CHECK (remaining_credits >= 0),
    last_purchase_at  TIMESTAMPTZ,
    updated_at        TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
`

// EnsureSchema creates the payment tables when they do not exist yet.
// Intended for dev and test environments; production uses migrations.
func EnsureSchema(ctx context.Context, pool *pgxpool.Pool) error {
	_, err := pool.Exec(ctx, schema)
	return err
}
