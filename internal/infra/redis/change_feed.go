package redis

import (
	"context"
	"encoding/json"
	"fmt"

	"kundli-ai-payments/internal/domain/ports/adapter"

	"github.com/rs/zerolog"
)

var _ adapter.ChangeFeed = (*ChangeFeed)(nil)

// ChangeFeed fans per-user change notifications out over Redis pub/sub, one
// channel per user. Subscribers only use events as a re-fetch trigger; a
// dropped message is repaired by the reader's safety-net poll.
type ChangeFeed struct {
	client *Client
	log    *zerolog.Logger
}

func NewChangeFeed(client *Client, logger *zerolog.Logger) *ChangeFeed {
	return &ChangeFeed{client: client, log: logger}
}

func channelFor(userID string) string { return fmt.Sprintf("credits:%s", userID) }

func (f *ChangeFeed) Publish(ctx context.Context, ev adapter.ChangeEvent) error {
	payload, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	return f.client.cli.Publish(ctx, channelFor(ev.UserID), payload).Err()
}

func (f *ChangeFeed) Subscribe(ctx context.Context, userID string) (<-chan adapter.ChangeEvent, func(), error) {
	sub := f.client.cli.Subscribe(ctx, channelFor(userID))
	if _, err := sub.Receive(ctx); err != nil {
		_ = sub.Close()
		return nil, nil, err
	}

	out := make(chan adapter.ChangeEvent, 8)
	go func() {
		defer close(out)
		for msg := range sub.Channel() {
			var ev adapter.ChangeEvent
			if err := json.Unmarshal([]byte(msg.Payload), &ev); err != nil {
				f.log.Warn().Err(err).Str("user_id", userID).Msg("change feed: bad payload")
				continue
			}
			select {
			case out <- ev:
			default:
				// Subscriber is slow; dropping is fine, the poll catches up.
			}
		}
	}()

	cancel := func() { _ = sub.Close() }
	return out, cancel, nil
}
