package usecase

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"kundli-ai-payments/internal/domain"
	"kundli-ai-payments/internal/domain/model"
	"kundli-ai-payments/internal/domain/ports/adapter"
	"kundli-ai-payments/internal/retry"
)

// FlowConfig tunes the purchase flow's presentation-facing knobs.
type FlowConfig struct {
	DisplayName     string        // merchant name shown on the checkout
	ThemeColor      string        // checkout accent color
	CheckoutTimeout time.Duration // hosted session lifetime
	SuccessDelay    time.Duration // pause before success navigation
	FailureDelay    time.Duration // pause before failure navigation
}

func DefaultFlowConfig() FlowConfig {
	return FlowConfig{
		DisplayName:     "KundliLabs",
		ThemeColor:      "#8B5CF6",
		CheckoutTimeout: 15 * time.Minute,
		SuccessDelay:    1500 * time.Millisecond,
		FailureDelay:    2 * time.Second,
	}
}

// declineMessages maps the gateway's structured failure codes to what the
// user reads. Unknown codes fall back to the gateway-provided description.
var declineMessages = map[string]string{
	"PAYMENT_CANCELLED":  "Payment was cancelled. You can try again anytime.",
	"PAYMENT_DECLINED":   "Payment was declined by your bank. Please check your card details or try a different payment method.",
	"INSUFFICIENT_FUNDS": "Insufficient funds in your account. Please try with a different payment method.",
	"NETWORK_ERROR":      "Network error occurred. Please check your internet connection and try again.",
}

const genericDeclineMessage = "Payment failed. Please try again."

// PaymentFlow drives a single purchase attempt from plan selection to a
// terminal outcome. One attempt may be in flight per instance; a second
// InitiatePayment while loading is dropped, not queued. State is reset on
// every new attempt and never shared between instances.
type PaymentFlow struct {
	identity adapter.Identity
	orders   OrderUseCase
	checkout adapter.CheckoutClient
	verifier VerifyUseCase
	notifier adapter.Notifier
	nav      adapter.Navigator
	policy   retry.Policy
	cfg      FlowConfig
	log      *zerolog.Logger

	mu    sync.Mutex
	state model.FlowState
}

func NewPaymentFlow(
	identity adapter.Identity,
	orders OrderUseCase,
	checkout adapter.CheckoutClient,
	verifier VerifyUseCase,
	notifier adapter.Notifier,
	nav adapter.Navigator,
	policy retry.Policy,
	cfg FlowConfig,
	logger *zerolog.Logger,
) *PaymentFlow {
	if cfg.DisplayName == "" {
		cfg = DefaultFlowConfig()
	}
	return &PaymentFlow{
		identity: identity,
		orders:   orders,
		checkout: checkout,
		verifier: verifier,
		notifier: notifier,
		nav:      nav,
		policy:   policy,
		cfg:      cfg,
		log:      logger,
	}
}

// State returns a copy of the current attempt state.
func (f *PaymentFlow) State() model.FlowState {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state
}

func (f *PaymentFlow) setState(s model.FlowState) {
	f.mu.Lock()
	f.state = s
	f.mu.Unlock()
}

func (f *PaymentFlow) onRetry(attempt int) {
	f.mu.Lock()
	f.state.RetryCount = attempt
	f.state.IsRetrying = true
	f.mu.Unlock()
}

// fail records a terminal error, notifies once, optionally schedules the
// failure navigation, and always clears the loading flag.
func (f *PaymentFlow) fail(ctx context.Context, title, message string, navigate bool) {
	f.setState(model.FlowState{Error: message})
	f.notifier.Notify(ctx, adapter.Notice{Title: title, Body: message, Destructive: true})
	if navigate {
		f.nav.ScheduleNavigate(adapter.DestinationFailure, f.cfg.FailureDelay)
	}
}

// InitiatePayment runs one purchase attempt for the given plan. Every return
// path leaves IsLoading false; the caller can always re-enable its button.
func (f *PaymentFlow) InitiatePayment(ctx context.Context, plan model.Plan) error {
	f.mu.Lock()
	if f.state.IsLoading {
		f.mu.Unlock()
		f.log.Warn().Str("plan", plan.ID).Msg("payment already in progress, ignoring duplicate request")
		return domain.ErrAttemptInFlight
	}
	f.state = model.FlowState{IsLoading: true, ProcessingPlanID: plan.ID}
	f.mu.Unlock()

	user, err := f.identity.CurrentUser(ctx)
	if err != nil || user == nil {
		msg := "Please log in to purchase a plan"
		f.setState(model.FlowState{Error: msg})
		f.notifier.Notify(ctx, adapter.Notice{Title: "Payment Error", Body: msg, Destructive: true})
		f.nav.ScheduleNavigate(adapter.DestinationSignIn, 0)
		return domain.ErrAuthRequired
	}

	f.log.Info().Str("user_id", user.ID).Str("plan", plan.Name).Msg("creating payment order")

	var created *adapter.OrderCreation
	err = f.policy.Do(ctx, func(ctx context.Context) error {
		oc, err := f.orders.Create(ctx, user.ID, CreateOrderInput{
			PlanName:       plan.Name,
			AmountPaise:    plan.AmountPaise(),
			MessageCredits: plan.Credits,
		})
		if err != nil {
			return err
		}
		created = oc
		return nil
	}, f.onRetry)
	if err != nil {
		f.log.Error().Err(err).Str("user_id", user.ID).Msg("order creation failed")
		f.fail(ctx, "Payment Error", "Failed to create payment order", false)
		return fmt.Errorf("%w: %v", domain.ErrOrderCreationFailed, err)
	}
	if created.GatewayOrderID == "" || created.KeyID == "" {
		f.fail(ctx, "Payment Error", "Invalid payment order received", false)
		return domain.ErrOrderCreationFailed
	}

	if !f.checkout.Available() {
		f.fail(ctx, "Payment Error", "Payment system not loaded. Please refresh the page and try again.", false)
		return domain.ErrGatewayUnavailable
	}

	desc := model.CheckoutDescriptor{
		Key:         created.KeyID,
		AmountPaise: created.AmountPaise,
		Currency:    created.Currency,
		Name:        f.cfg.DisplayName,
		Description: fmt.Sprintf("%s Plan - %d Credits", plan.Name, plan.Credits),
		OrderID:     created.GatewayOrderID,
		Prefill:     model.CheckoutPrefill{Email: user.Email, Contact: user.Phone},
		ThemeColor:  f.cfg.ThemeColor,
		Modal:       model.CheckoutModal{Escape: true, BackdropClose: false},
		Retry:       model.CheckoutRetry{Enabled: true, MaxCount: 3},

		TimeoutSeconds: int(f.cfg.CheckoutTimeout.Seconds()),
	}

	res, err := f.checkout.Open(ctx, desc)
	if err != nil {
		f.fail(ctx, "Payment Error", "Payment processing error. Please try again.", false)
		return err
	}

	switch res.Outcome {
	case model.CheckoutOutcomeSuccess:
		return f.handleSuccess(ctx, user, plan, res)
	case model.CheckoutOutcomeDeclined:
		return f.handleDecline(ctx, res)
	default:
		// Dismissal is not a failure: reset silently, no navigation.
		f.log.Info().Str("gateway_order_id", created.GatewayOrderID).Msg("checkout dismissed by user")
		f.setState(model.FlowState{})
		return nil
	}
}

func (f *PaymentFlow) handleSuccess(ctx context.Context, user *adapter.User, plan model.Plan, res model.CheckoutResult) error {
	// The money has moved; tell the user verification is in progress so they
	// don't retry during the capture-to-credit window.
	f.notifier.Notify(ctx, adapter.Notice{
		Title: "Processing Payment...",
		Body:  "Please wait while we verify your payment",
	})

	var verified *VerifyResult
	err := f.policy.Do(ctx, func(ctx context.Context) error {
		vr, err := f.verifier.Verify(ctx, user.ID, res.OrderID, res.PaymentID, res.Signature)
		if err != nil {
			if errors.Is(err, domain.ErrInvalidSignature) {
				// Retrying cannot change a signature mismatch.
				return retry.Permanent(err)
			}
			return err
		}
		verified = vr
		return nil
	}, f.onRetry)
	if err != nil {
		f.log.Error().Err(err).Str("gateway_order_id", res.OrderID).Msg("payment verification failed")
		f.fail(ctx, "Payment Verification Failed", "Payment verification failed. Please contact support if amount was deducted.", true)
		return fmt.Errorf("%w: %v", domain.ErrVerificationFailed, err)
	}

	f.setState(model.FlowState{})
	f.notifier.Notify(ctx, adapter.Notice{
		Title: "Payment Successful!",
		Body:  fmt.Sprintf("Welcome to %s plan! Your %d credits have been added.", plan.Name, verified.CreditsAdded),
	})
	f.nav.ScheduleNavigate(adapter.DestinationSuccess, f.cfg.SuccessDelay)
	return nil
}

func (f *PaymentFlow) handleDecline(ctx context.Context, res model.CheckoutResult) error {
	msg, ok := declineMessages[res.Code]
	if !ok {
		msg = res.Description
		if msg == "" {
			msg = genericDeclineMessage
		}
	}
	f.log.Warn().Str("code", res.Code).Str("description", res.Description).Msg("payment declined by gateway")
	f.fail(ctx, "Payment Failed", msg, true)
	return fmt.Errorf("%w: %s", domain.ErrPaymentDeclined, res.Code)
}
