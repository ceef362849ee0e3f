package repository

import (
	"context"
	"time"

	"kundli-ai-payments/internal/domain/model"
)

// OrderRepository is the port for order persistence. Status transitions go
// through the guarded Mark* methods so that pending -> completed happens at
// most once even when two devices race on the same order.
type OrderRepository interface {
	Save(ctx context.Context, tx Tx, o *model.Order) error
	FindByGatewayOrderID(ctx context.Context, tx Tx, gatewayOrderID string) (*model.Order, error)

	// MarkCompletedIfPending transitions the order to completed and stores the
	// gateway payment id, only if the order is still pending and belongs to
	// userID. Returns the order row and whether this call made the transition.
	MarkCompletedIfPending(ctx context.Context, tx Tx, gatewayOrderID, userID, paymentID string) (*model.Order, bool, error)

	// MarkFailedIfPending transitions a pending order to failed. Completed
	// orders are never touched.
	MarkFailedIfPending(ctx context.Context, tx Tx, gatewayOrderID string) (bool, error)

	FindLatestCompletedByUser(ctx context.Context, tx Tx, userID string) (*model.Order, error)
	ListPendingOlderThan(ctx context.Context, tx Tx, olderThan time.Time, limit int) ([]*model.Order, error)
}
