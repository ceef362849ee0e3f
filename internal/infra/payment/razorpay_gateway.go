package payment

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"kundli-ai-payments/internal/domain/ports/adapter"
)

var _ adapter.OrderGateway = (*RazorpayGateway)(nil)

// RazorpayGateway implements OrderGateway against the Razorpay REST API.
type RazorpayGateway struct {
	keyID     string
	keySecret string
	baseURL   string
	client    *http.Client
}

func NewRazorpayGateway(keyID, keySecret, baseURL string) (*RazorpayGateway, error) {
	if keyID == "" || keySecret == "" {
		return nil, errors.New("razorpay: key id and key secret are required")
	}
	if baseURL == "" {
		baseURL = "https://api.razorpay.com"
	}
	return &RazorpayGateway{
		keyID:     keyID,
		keySecret: keySecret,
		baseURL:   baseURL,
		client:    &http.Client{Timeout: 15 * time.Second},
	}, nil
}

func (g *RazorpayGateway) Name() string  { return "razorpay" }
func (g *RazorpayGateway) KeyID() string { return g.keyID }

type razorpayOrderResponse struct {
	ID       string `json:"id"`
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
	Receipt  string `json:"receipt"`
	Status   string `json:"status"`
}

// CreateOrder registers a payment intent via POST /v1/orders. Amount is
// already in paise; notes carry the plan and credit context so the order is
// self-describing on the Razorpay dashboard.
func (g *RazorpayGateway) CreateOrder(ctx context.Context, req adapter.CreateOrderRequest) (*adapter.OrderCreation, error) {
	requestData := map[string]interface{}{
		"amount":   req.AmountPaise,
		"currency": "INR",
		"receipt":  req.Receipt,
		"notes": map[string]string{
			"plan_name":       req.PlanName,
			"message_credits": fmt.Sprintf("%d", req.MessageCredits),
			"user_id":         req.UserID,
		},
	}

	jsonData, err := json.Marshal(requestData)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request data: %w", err)
	}

	url := g.baseURL + "/v1/orders"
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.SetBasicAuth(g.keyID, g.keySecret)
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")

	resp, err := g.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		switch resp.StatusCode {
		case http.StatusBadRequest:
			return nil, errors.New("razorpay: invalid payment details")
		case http.StatusUnauthorized:
			return nil, errors.New("razorpay: authentication failed")
		case http.StatusTooManyRequests:
			return nil, errors.New("razorpay: rate limited")
		default:
			return nil, fmt.Errorf("razorpay: order creation failed with status %d", resp.StatusCode)
		}
	}

	var order razorpayOrderResponse
	if err := json.Unmarshal(body, &order); err != nil {
		return nil, fmt.Errorf("failed to unmarshal response: %w, body: %s", err, string(body))
	}
	if order.ID == "" || order.Amount <= 0 {
		return nil, fmt.Errorf("razorpay: invalid order response: %s", string(body))
	}

	currency := order.Currency
	if currency == "" {
		currency = "INR"
	}
	return &adapter.OrderCreation{
		GatewayOrderID: order.ID,
		AmountPaise:    order.Amount,
		Currency:       currency,
		KeyID:          g.keyID,
	}, nil
}

// VerifySignature checks the checkout success triple: the gateway signs
// "order_id|payment_id" with the key secret using HMAC-SHA256, hex-encoded.
// Comparison is constant time.
func (g *RazorpayGateway) VerifySignature(orderID, paymentID, signature string) bool {
	mac := hmac.New(sha256.New, []byte(g.keySecret))
	mac.Write([]byte(orderID + "|" + paymentID))
	expected := hex.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(expected), []byte(signature))
}
