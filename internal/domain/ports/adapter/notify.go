package adapter

import (
	"context"
	"time"
)

// Notice is a transient user-facing notification. Every terminal purchase
// outcome produces exactly one.
type Notice struct {
	Title       string
	Body        string
	Destructive bool
}

type Notifier interface {
	Notify(ctx context.Context, n Notice)
}

// Destination is where the flow sends the user after a terminal outcome.
type Destination string

const (
	DestinationSuccess Destination = "/thank-you"
	DestinationFailure Destination = "/payment-failed"
	DestinationSignIn  Destination = "/login"
)

// Navigator schedules post-payment navigation. The delay exists so the user
// can read the confirmation before being moved.
type Navigator interface {
	ScheduleNavigate(dest Destination, after time.Duration)
}
