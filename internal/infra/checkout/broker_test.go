//go:build !integration

package checkout

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"kundli-ai-payments/internal/domain"
	"kundli-ai-payments/internal/domain/model"
)

func newTestBroker(timeout time.Duration) *SessionBroker {
	logger := zerolog.New(io.Discard)
	return NewSessionBroker(timeout, &logger)
}

func TestSessionBroker_Open(t *testing.T) {
	ctx := context.Background()

	t.Run("should deliver the callback result to the blocked opener", func(t *testing.T) {
		b := newTestBroker(time.Minute)
		desc := model.CheckoutDescriptor{OrderID: "order_1"}

		done := make(chan model.CheckoutResult, 1)
		go func() {
			res, err := b.Open(ctx, desc)
			if err != nil {
				t.Errorf("open: %v", err)
			}
			done <- res
		}()

		// wait for the session to register
		deadline := time.After(time.Second)
		for !b.Resolve("order_1", model.NewCheckoutSuccess("order_1", "pay_1", "sig")) {
			select {
			case <-deadline:
				t.Fatal("session never registered")
			case <-time.After(time.Millisecond):
			}
		}

		res := <-done
		if res.Outcome != model.CheckoutOutcomeSuccess || res.PaymentID != "pay_1" {
			t.Errorf("unexpected result: %+v", res)
		}
	})

	t.Run("should refuse a second session for the same order", func(t *testing.T) {
		b := newTestBroker(time.Minute)
		desc := model.CheckoutDescriptor{OrderID: "order_1"}

		opened := make(chan struct{})
		go func() {
			close(opened)
			_, _ = b.Open(ctx, desc)
		}()
		<-opened
		time.Sleep(5 * time.Millisecond)

		_, err := b.Open(ctx, desc)
		if !errors.Is(err, domain.ErrAlreadyExists) {
			t.Fatalf("expected ErrAlreadyExists, got: %v", err)
		}
		b.Resolve("order_1", model.NewCheckoutDismiss())
	})

	t.Run("should time out as a dismissal", func(t *testing.T) {
		// a descriptor without its own timeout falls back to the broker default
		b := newTestBroker(10 * time.Millisecond)

		res, err := b.Open(ctx, model.CheckoutDescriptor{OrderID: "order_1"})
		if err != nil {
			t.Fatalf("open: %v", err)
		}
		if res.Outcome != model.CheckoutOutcomeDismissed {
			t.Errorf("expected dismissal on timeout, got %+v", res)
		}
		if b.Resolve("order_1", model.NewCheckoutDismiss()) {
			t.Error("session should be gone after timeout")
		}
	})

	t.Run("should read context cancellation as a dismissal", func(t *testing.T) {
		b := newTestBroker(time.Minute)
		cctx, cancel := context.WithCancel(ctx)
		go func() {
			time.Sleep(5 * time.Millisecond)
			cancel()
		}()
		res, err := b.Open(cctx, model.CheckoutDescriptor{OrderID: "order_1"})
		if err != nil {
			t.Fatalf("open: %v", err)
		}
		if res.Outcome != model.CheckoutOutcomeDismissed {
			t.Errorf("expected dismissal, got %+v", res)
		}
	})
}

func TestSessionBroker_Resolve(t *testing.T) {
	t.Run("should report false for an unknown session", func(t *testing.T) {
		b := newTestBroker(time.Minute)
		if b.Resolve("order_missing", model.NewCheckoutDismiss()) {
			t.Error("unknown session resolved")
		}
	})

	t.Run("should resolve each session at most once", func(t *testing.T) {
		b := newTestBroker(time.Minute)
		done := make(chan struct{})
		go func() {
			_, _ = b.Open(context.Background(), model.CheckoutDescriptor{OrderID: "order_1"})
			close(done)
		}()

		deadline := time.After(time.Second)
		for !b.Resolve("order_1", model.NewCheckoutDecline("PAYMENT_DECLINED", "")) {
			select {
			case <-deadline:
				t.Fatal("session never registered")
			case <-time.After(time.Millisecond):
			}
		}
		if b.Resolve("order_1", model.NewCheckoutDismiss()) {
			t.Error("second resolve should find no session")
		}
		<-done
	})
}
