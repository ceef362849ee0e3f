package web

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"kundli-ai-payments/internal/domain"
	"kundli-ai-payments/internal/domain/model"
	"kundli-ai-payments/internal/infra/notify"
	"kundli-ai-payments/internal/usecase"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// statusFor maps domain sentinels to HTTP statuses.
func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrInvalidArgument):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrAuthRequired):
		return http.StatusUnauthorized
	case errors.Is(err, domain.ErrInvalidSignature):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrAlreadyExists), errors.Is(err, domain.ErrAttemptInFlight), errors.Is(err, domain.ErrOrderNotPending):
		return http.StatusConflict
	case errors.Is(err, domain.ErrPaymentDeclined):
		return http.StatusPaymentRequired
	case errors.Is(err, domain.ErrGatewayUnavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// ===== Orders =====

type createOrderRequest struct {
	PlanName    string `json:"plan_name"`
	PriceRupees int64  `json:"price_rupees"`
	Credits     int64  `json:"credits"`
}

type createOrderResponse struct {
	OrderID  string `json:"orderId"` // gateway order id, fed straight to the checkout
	Amount   int64  `json:"amount"`  // paise
	Currency string `json:"currency"`
	KeyID    string `json:"keyId"`
}

func (s *Server) handleCreateOrder() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		u, _ := UserFromContext(ctx)

		var req createOrderRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "Invalid request body")
			return
		}

		created, err := s.orderUC.Create(ctx, u.ID, usecase.CreateOrderInput{
			PlanName:       req.PlanName,
			AmountPaise:    model.RupeesToPaise(req.PriceRupees),
			MessageCredits: req.Credits,
		})
		if err != nil {
			s.log.Error().Err(err).Str("user_id", u.ID).Msg("create order failed")
			writeError(w, statusFor(err), "Failed to create payment order")
			return
		}

		writeJSON(w, http.StatusCreated, createOrderResponse{
			OrderID:  created.GatewayOrderID,
			Amount:   created.AmountPaise,
			Currency: created.Currency,
			KeyID:    created.KeyID,
		})
	}
}

// ===== Verification =====

type verifyRequest struct {
	RazorpayOrderID   string `json:"razorpay_order_id"`
	RazorpayPaymentID string `json:"razorpay_payment_id"`
	RazorpaySignature string `json:"razorpay_signature"`
}

type verifyResponse struct {
	Success          bool  `json:"success"`
	CreditsAdded     int64 `json:"credits_added"`
	RemainingCredits int64 `json:"remaining_credits"`
}

func (s *Server) handleVerifyPayment() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		u, _ := UserFromContext(ctx)

		var req verifyRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "Invalid request body")
			return
		}

		res, err := s.verifyUC.Verify(ctx, u.ID, req.RazorpayOrderID, req.RazorpayPaymentID, req.RazorpaySignature)
		if err != nil {
			if errors.Is(err, domain.ErrInvalidSignature) {
				writeError(w, http.StatusBadRequest, "Invalid payment signature")
				return
			}
			writeError(w, statusFor(err), "Payment verification failed")
			return
		}

		resp := verifyResponse{Success: true, CreditsAdded: res.CreditsAdded}
		if res.Credits != nil {
			resp.RemainingCredits = res.Credits.RemainingCredits
		}
		writeJSON(w, http.StatusOK, resp)
	}
}

// ===== Subscription =====

type subscriptionResponse struct {
	HasActiveSubscription bool       `json:"has_active_subscription"`
	ActivePlan            string     `json:"active_plan,omitempty"`
	TotalCredits          int64      `json:"total_credits"`
	UsedCredits           int64      `json:"used_credits"`
	RemainingCredits      int64      `json:"remaining_credits"`
	LastPurchaseAt        *time.Time `json:"last_purchase_at,omitempty"`
	LastUpdated           time.Time  `json:"last_updated"`
}

func (s *Server) handleGetSubscription() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		u, _ := UserFromContext(ctx)

		reader := s.newReader(u.ID)
		if err := reader.Refresh(ctx); err != nil {
			writeError(w, http.StatusInternalServerError, "Failed to load subscription status")
			return
		}

		snap := reader.Snapshot()
		writeJSON(w, http.StatusOK, subscriptionResponse{
			HasActiveSubscription: snap.HasActiveSubscription,
			ActivePlan:            snap.ActivePlan,
			TotalCredits:          snap.TotalCredits,
			UsedCredits:           snap.UsedCredits,
			RemainingCredits:      snap.RemainingCredits,
			LastPurchaseAt:        snap.LastPurchaseAt,
			LastUpdated:           snap.LastUpdated,
		})
	}
}

// ===== Purchase flow =====

type purchaseRequest struct {
	PlanID         string `json:"plan_id"`
	PlanName       string `json:"plan_name"`
	PriceRupees    int64  `json:"price_rupees"`
	Credits        int64  `json:"credits"`
	DonationRupees int64  `json:"donation_rupees,omitempty"` // set instead of a plan for one-off support
}

type noticeJSON struct {
	Title       string `json:"title"`
	Body        string `json:"body"`
	Destructive bool   `json:"destructive,omitempty"`
}

type redirectJSON struct {
	To      string `json:"to"`
	AfterMS int64  `json:"after_ms"`
}

type purchaseResponse struct {
	Completed bool          `json:"completed"`
	Error     string        `json:"error,omitempty"`
	Notices   []noticeJSON  `json:"notices,omitempty"`
	Redirect  *redirectJSON `json:"redirect,omitempty"`
}

// handlePurchase runs the whole flow inside the request: it creates the
// order, then blocks on the checkout session until the browser posts one of
// the callback routes, then verifies and credits. Long-poll by design.
func (s *Server) handlePurchase() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		u, _ := UserFromContext(ctx)

		var req purchaseRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "Invalid request body")
			return
		}

		var plan model.Plan
		var err error
		if req.DonationRupees > 0 {
			plan, err = model.DonationPlan(req.DonationRupees)
		} else {
			plan, err = model.NewPlan(req.PlanID, req.PlanName, req.PriceRupees, req.Credits)
		}
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid plan")
			return
		}

		collector := notify.NewCollector(s.log)
		nav := notify.NewDeferredNavigator()
		flow := s.newFlow(collector, nav)

		flowErr := flow.InitiatePayment(ctx, plan)

		resp := purchaseResponse{Completed: flowErr == nil}
		if flowErr != nil {
			resp.Error = flow.State().Error
		}
		for _, n := range collector.Drain() {
			resp.Notices = append(resp.Notices, noticeJSON{Title: n.Title, Body: n.Body, Destructive: n.Destructive})
		}
		if dest, after, ok := nav.Take(); ok {
			resp.Redirect = &redirectJSON{To: string(dest), AfterMS: after.Milliseconds()}
		}

		status := http.StatusOK
		if flowErr != nil {
			status = statusFor(flowErr)
			s.log.Warn().Err(flowErr).Str("user_id", u.ID).Msg("purchase flow ended with error")
		}
		writeJSON(w, status, resp)
	}
}

// ===== Checkout callbacks =====

type checkoutFailureRequest struct {
	Code        string `json:"code"`
	Description string `json:"description"`
}

func (s *Server) resolveCheckout(w http.ResponseWriter, orderID string, res model.CheckoutResult) {
	if orderID == "" {
		writeError(w, http.StatusBadRequest, "Order ID is required")
		return
	}
	if !s.broker.Resolve(orderID, res) {
		writeError(w, http.StatusNotFound, "No open checkout session for order")
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"accepted": true})
}

func (s *Server) handleCheckoutSuccess() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		orderID := chi.URLParam(r, "orderID")
		var req verifyRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "Invalid request body")
			return
		}
		if req.RazorpayOrderID == "" {
			req.RazorpayOrderID = orderID
		}
		s.resolveCheckout(w, orderID, model.NewCheckoutSuccess(req.RazorpayOrderID, req.RazorpayPaymentID, req.RazorpaySignature))
	}
}

func (s *Server) handleCheckoutFailure() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		orderID := chi.URLParam(r, "orderID")
		var req checkoutFailureRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "Invalid request body")
			return
		}
		s.resolveCheckout(w, orderID, model.NewCheckoutDecline(req.Code, req.Description))
	}
}

func (s *Server) handleCheckoutDismiss() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.resolveCheckout(w, chi.URLParam(r, "orderID"), model.NewCheckoutDismiss())
	}
}
