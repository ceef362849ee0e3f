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

var _ repository.OrderRepository = (*orderRepo)(nil)

type orderRepo struct{ pool *pgxpool.Pool }

func NewOrderRepo(pool *pgxpool.Pool) *orderRepo {
	return &orderRepo{pool: pool}
}

const orderColumns = `id, gateway_order_id, user_id, plan_name, amount_paise, currency, message_credits, receipt, status, payment_id, created_at, updated_at`

func scanOrder(row pgx.Row) (*model.Order, error) {
	o := &model.Order{}
	if err := row.Scan(&o.ID, &o.GatewayOrderID, &o.UserID, &o.PlanName, &o.AmountPaise, &o.Currency, &o.MessageCredits, &o.Receipt, &o.Status, &o.PaymentID, &o.CreatedAt, &o.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, domain.ErrReadDatabaseRow
	}
	return o, nil
}

func (r *orderRepo) Save(ctx context.Context, tx repository.Tx, o *model.Order) error {
	const q = `
INSERT INTO orders (
  id, gateway_order_id, user_id, plan_name, amount_paise, currency, message_credits, receipt, status, payment_id, created_at, updated_at
) VALUES (
  $1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12
) ON CONFLICT (id) DO UPDATE SET
  status=$9, payment_id=$10, updated_at=$12;`

	_, err := execSQL(ctx, r.pool, tx, q, o.ID, o.GatewayOrderID, o.UserID, o.PlanName, o.AmountPaise, o.Currency, o.MessageCredits, o.Receipt, o.Status, o.PaymentID, o.CreatedAt, o.UpdatedAt)
	if err != nil {
		if err == domain.ErrInvalidArgument || err == domain.ErrInvalidExecContext {
			return err
		}
		return domain.ErrOperationFailed
	}
	return nil
}

func (r *orderRepo) FindByGatewayOrderID(ctx context.Context, tx repository.Tx, gatewayOrderID string) (*model.Order, error) {
	q := `SELECT ` + orderColumns + ` FROM orders WHERE gateway_order_id=$1`
	if _, ok := tx.(pgx.Tx); ok {
		q += " FOR UPDATE"
	}
	q += ";"
	row, err := pickRow(ctx, r.pool, tx, q, gatewayOrderID)
	if err != nil {
		return nil, err
	}
	return scanOrder(row)
}

// MarkCompletedIfPending performs the guarded pending -> completed transition.
// The status predicate in the UPDATE is what makes a double verification of
// the same order a no-op rather than a double credit.
func (r *orderRepo) MarkCompletedIfPending(ctx context.Context, tx repository.Tx, gatewayOrderID, userID, paymentID string) (*model.Order, bool, error) {
	const q = `
UPDATE orders
   SET status='completed', payment_id=$3, updated_at=NOW()
 WHERE gateway_order_id=$1
   AND user_id=$2
   AND status='pending'
RETURNING ` + orderColumns + `;`

	row, err := pickRow(ctx, r.pool, tx, q, gatewayOrderID, userID, paymentID)
	if err != nil {
		return nil, false, err
	}
	o, err := scanOrder(row)
	if err == nil {
		return o, true, nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return nil, false, err
	}

	// No pending row transitioned: report the current state instead.
	cur, ferr := r.FindByGatewayOrderID(ctx, tx, gatewayOrderID)
	if ferr != nil {
		return nil, false, ferr
	}
	return cur, false, nil
}

func (r *orderRepo) MarkFailedIfPending(ctx context.Context, tx repository.Tx, gatewayOrderID string) (bool, error) {
	const q = `UPDATE orders SET status='failed', updated_at=NOW() WHERE gateway_order_id=$1 AND status='pending';`
	cmd, err := execSQL(ctx, r.pool, tx, q, gatewayOrderID)
	if err != nil {
		if err == domain.ErrInvalidArgument || err == domain.ErrInvalidExecContext {
			return false, err
		}
		return false, domain.ErrOperationFailed
	}
	return cmd.RowsAffected() >= 1, nil
}

func (r *orderRepo) FindLatestCompletedByUser(ctx context.Context, tx repository.Tx, userID string) (*model.Order, error) {
	const q = `SELECT ` + orderColumns + ` FROM orders WHERE user_id=$1 AND status='completed' ORDER BY created_at DESC LIMIT 1;`
	row, err := pickRow(ctx, r.pool, tx, q, userID)
	if err != nil {
		return nil, err
	}
	return scanOrder(row)
}

func (r *orderRepo) ListPendingOlderThan(ctx context.Context, tx repository.Tx, olderThan time.Time, limit int) ([]*model.Order, error) {
	if limit <= 0 {
		limit = 100
	}
	const q = `SELECT ` + orderColumns + ` FROM orders WHERE status='pending' AND created_at < $1 ORDER BY created_at ASC LIMIT $2;`
	rows, err := queryRows(ctx, r.pool, tx, q, olderThan, limit)
	if err != nil {
		switch err {
		case domain.ErrInvalidArgument, domain.ErrInvalidExecContext:
			return nil, err
		default:
			return nil, domain.ErrOperationFailed
		}
	}
	defer rows.Close()

	var out []*model.Order
	for rows.Next() {
		o := &model.Order{}
		if err := rows.Scan(&o.ID, &o.GatewayOrderID, &o.UserID, &o.PlanName, &o.AmountPaise, &o.Currency, &o.MessageCredits, &o.Receipt, &o.Status, &o.PaymentID, &o.CreatedAt, &o.UpdatedAt); err != nil {
			return nil, domain.ErrReadDatabaseRow
		}
		out = append(out, o)
	}
	return out, nil
}
