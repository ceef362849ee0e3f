package web

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"kundli-ai-payments/internal/domain/ports/adapter"
	"kundli-ai-payments/internal/infra/checkout"
	"kundli-ai-payments/internal/usecase"
)

// FlowFactory builds a payment flow bound to one request's notifier and
// navigator. Each purchase gets a fresh flow so attempt state never leaks
// between users or requests.
type FlowFactory func(notifier adapter.Notifier, nav adapter.Navigator) *usecase.PaymentFlow

type Server struct {
	orderUC   usecase.OrderUseCase
	verifyUC  usecase.VerifyUseCase
	newReader func(userID string) *usecase.SubscriptionReader
	newFlow   FlowFactory
	broker    *checkout.SessionBroker
	auth      *AuthManager
	log       *zerolog.Logger
}

func NewServer(
	orderUC usecase.OrderUseCase,
	verifyUC usecase.VerifyUseCase,
	newReader func(userID string) *usecase.SubscriptionReader,
	newFlow FlowFactory,
	broker *checkout.SessionBroker,
	auth *AuthManager,
	logger *zerolog.Logger,
) *Server {
	return &Server{
		orderUC:   orderUC,
		verifyUC:  verifyUC,
		newReader: newReader,
		newFlow:   newFlow,
		broker:    broker,
		auth:      auth,
		log:       logger,
	}
}

// Router wires all routes. Checkout callbacks are unauthenticated on purpose:
// the gateway's browser-side handler posts them, and each one is only a
// nudge — the success path is still signature-verified before anything is
// credited.
func (s *Server) Router() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(20 * time.Minute)) // purchase blocks on the checkout session

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(s.authMiddleware)
			r.Post("/orders", s.handleCreateOrder())
			r.Post("/payments/verify", s.handleVerifyPayment())
			r.Get("/subscription", s.handleGetSubscription())
			r.Post("/purchase", s.handlePurchase())
		})

		r.Post("/checkout/{orderID}/success", s.handleCheckoutSuccess())
		r.Post("/checkout/{orderID}/failure", s.handleCheckoutFailure())
		r.Post("/checkout/{orderID}/dismiss", s.handleCheckoutDismiss())
	})

	return r
}

// authMiddleware validates the bearer token and attaches the user to the
// request context, where ContextIdentity picks it up.
func (s *Server) authMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims, err := s.auth.ParseFromRequest(r)
		if err != nil {
			writeError(w, http.StatusUnauthorized, "Unauthorized")
			return
		}
		u := &adapter.User{ID: claims.Subject, Email: claims.Email, Phone: claims.Phone}
		next.ServeHTTP(w, r.WithContext(withUser(r.Context(), u)))
	})
}

// ListenAndServe runs the HTTP server until ctx is canceled, then drains
// in-flight requests.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info().Str("addr", addr).Msg("http server listening")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}
