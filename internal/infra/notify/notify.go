// Package notify carries the purchase flow's user-facing side effects in a
// server process: notices are collected (and logged) instead of toasted, and
// navigation becomes a recorded redirect the HTTP layer hands back to the
// client.
package notify

import (
	"context"
	"sync"
	"time"

	"kundli-ai-payments/internal/domain/ports/adapter"

	"github.com/rs/zerolog"
)

var (
	_ adapter.Notifier  = (*Collector)(nil)
	_ adapter.Navigator = (*DeferredNavigator)(nil)
)

// Collector keeps the most recent notices for one flow and mirrors them to
// the log.
type Collector struct {
	log *zerolog.Logger

	mu      sync.Mutex
	notices []adapter.Notice
}

func NewCollector(logger *zerolog.Logger) *Collector {
	return &Collector{log: logger}
}

func (c *Collector) Notify(ctx context.Context, n adapter.Notice) {
	ev := c.log.Info()
	if n.Destructive {
		ev = c.log.Warn()
	}
	ev.Str("title", n.Title).Str("body", n.Body).Msg("notice")

	c.mu.Lock()
	c.notices = append(c.notices, n)
	if len(c.notices) > 8 {
		c.notices = c.notices[len(c.notices)-8:]
	}
	c.mu.Unlock()
}

// Drain returns and clears the collected notices.
func (c *Collector) Drain() []adapter.Notice {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := c.notices
	c.notices = nil
	return out
}

// DeferredNavigator records the scheduled destination instead of moving a
// browser; the HTTP response relays it so the client performs the redirect
// after the same delay.
type DeferredNavigator struct {
	mu    sync.Mutex
	dest  adapter.Destination
	after time.Duration
	set   bool
}

func NewDeferredNavigator() *DeferredNavigator { return &DeferredNavigator{} }

func (n *DeferredNavigator) ScheduleNavigate(dest adapter.Destination, after time.Duration) {
	n.mu.Lock()
	n.dest, n.after, n.set = dest, after, true
	n.mu.Unlock()
}

// Take returns the pending navigation, if any, and clears it.
func (n *DeferredNavigator) Take() (adapter.Destination, time.Duration, bool) {
	n.mu.Lock()
	defer n.mu.Unlock()
	dest, after, set := n.dest, n.after, n.set
	n.set = false
	return dest, after, set
}
