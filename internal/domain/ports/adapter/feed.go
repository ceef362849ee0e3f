package adapter

import "context"

// ChangeEvent says "something about this user's orders or credits changed".
// It carries no payload consumers are allowed to rely on; it only triggers a
// full re-read.
type ChangeEvent struct {
	UserID string
	Table  string // "orders" | "user_credits"
}

// ChangeFeed is a per-user change notification bus. The verification service
// publishes after crediting; subscription readers subscribe to re-fetch.
type ChangeFeed interface {
	// Subscribe returns a channel of events for userID and a cancel func.
	Subscribe(ctx context.Context, userID string) (<-chan ChangeEvent, func(), error)

	Publish(ctx context.Context, ev ChangeEvent) error
}
