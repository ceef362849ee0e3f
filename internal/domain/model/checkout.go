package model

// CheckoutPrefill pre-populates the hosted checkout form.
type CheckoutPrefill struct {
	Email   string
	Contact string
}

// CheckoutModal controls how the hosted checkout window can be closed.
type CheckoutModal struct {
	Escape        bool
	BackdropClose bool
}

// CheckoutRetry configures the gateway-side retry behavior inside the
// hosted checkout (distinct from our own order/verify retry policy).
type CheckoutRetry struct {
	Enabled  bool
	MaxCount int
}

// CheckoutDescriptor enumerates every option passed to the hosted checkout.
// No open-ended option bags: an option the gateway recognizes is a field here.
type CheckoutDescriptor struct {
	Key            string // gateway key id
	AmountPaise    int64
	Currency       string
	Name           string // merchant display name
	Description    string
	OrderID        string // gateway order id
	Prefill        CheckoutPrefill
	ThemeColor     string
	Modal          CheckoutModal
	Retry          CheckoutRetry
	TimeoutSeconds int // checkout self-closes as a dismissal after this
}

type CheckoutOutcome string

const (
	CheckoutOutcomeSuccess   CheckoutOutcome = "success"
	CheckoutOutcomeDeclined  CheckoutOutcome = "declined"
	CheckoutOutcomeDismissed CheckoutOutcome = "dismissed"
)

// CheckoutResult is the one-of-three resolution of a checkout session.
// Exactly one of the gateway's callbacks fires; whichever does produces this.
type CheckoutResult struct {
	Outcome CheckoutOutcome

	// Success fields
	OrderID   string
	PaymentID string
	Signature string

	// Declined fields
	Code        string
	Description string
}

func NewCheckoutSuccess(orderID, paymentID, signature string) CheckoutResult {
	return CheckoutResult{Outcome: CheckoutOutcomeSuccess, OrderID: orderID, PaymentID: paymentID, Signature: signature}
}

func NewCheckoutDecline(code, description string) CheckoutResult {
	return CheckoutResult{Outcome: CheckoutOutcomeDeclined, Code: code, Description: description}
}

func NewCheckoutDismiss() CheckoutResult {
	return CheckoutResult{Outcome: CheckoutOutcomeDismissed}
}
