package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"kundli-ai-payments/internal/config"
	"kundli-ai-payments/internal/domain/ports/adapter"
	"kundli-ai-payments/internal/infra/checkout"
	pg "kundli-ai-payments/internal/infra/db/postgres"
	"kundli-ai-payments/internal/infra/logging"
	"kundli-ai-payments/internal/infra/metrics"
	payadapter "kundli-ai-payments/internal/infra/payment"
	red "kundli-ai-payments/internal/infra/redis"
	"kundli-ai-payments/internal/infra/sched"
	"kundli-ai-payments/internal/infra/web"
	"kundli-ai-payments/internal/retry"
	"kundli-ai-payments/internal/usecase"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// ---- CLI flags ----
	cfgPath := flag.String("config", "config.yaml", "path to YAML config file")
	devMode := flag.Bool("dev", false, "enable developer mode (in-memory gateway, schema bootstrap)")
	flag.Parse()

	cfg, err := config.LoadConfig(*cfgPath, *devMode)
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logger := logging.New(cfg.Log, cfg.Runtime.Dev)
	if cfg.Runtime.Dev {
		logger.Warn().Msg("developer mode enabled")
	}

	metrics.MustRegister()

	// ---- Postgres ----
	pool, err := pg.NewPgxPool(ctx, cfg.Database.URL, 10)
	if err != nil {
		logger.Fatal().Err(err).Msg("postgres connect failed")
	}
	defer pool.Close()
	if cfg.Runtime.Dev {
		if err := pg.EnsureSchema(ctx, pool); err != nil {
			logger.Fatal().Err(err).Msg("schema bootstrap failed")
		}
	}

	// ---- Redis ----
	redisClient, err := red.NewClient(ctx, &cfg.Redis)
	if err != nil {
		logger.Fatal().Err(err).Msg("redis connect failed")
	}
	defer redisClient.Close()
	feed := red.NewChangeFeed(redisClient, logger)

	// ---- Repositories ----
	orderRepo := pg.NewOrderRepo(pool)
	creditsRepo := pg.NewCreditsRepo(pool)
	tm := pg.NewTxManager(pool)

	// ---- Payment gateway ----
	var gateway adapter.OrderGateway
	if cfg.Runtime.Dev && cfg.Razorpay.KeyID == "" {
		gateway = payadapter.NewNoopGateway("dev-secret")
		logger.Warn().Msg("using in-memory payment gateway")
	} else {
		gateway, err = payadapter.NewRazorpayGateway(cfg.Razorpay.KeyID, cfg.Razorpay.KeySecret, cfg.Razorpay.BaseURL)
		if err != nil {
			logger.Fatal().Err(err).Msg("razorpay gateway init failed")
		}
	}

	// ---- Checkout session broker ----
	checkoutTimeout := time.Duration(cfg.Checkout.TimeoutSeconds) * time.Second
	broker := checkout.NewSessionBroker(checkoutTimeout, logger)

	// ---- Use cases ----
	policy := retry.DefaultPolicy()
	orderUC := usecase.NewOrderUseCase(orderRepo, gateway, logger)
	verifyUC := usecase.NewVerifyUseCase(orderRepo, creditsRepo, gateway, tm, feed, logger)

	flowCfg := usecase.FlowConfig{
		DisplayName:     cfg.Razorpay.DisplayName,
		ThemeColor:      cfg.Razorpay.ThemeColor,
		CheckoutTimeout: checkoutTimeout,
		SuccessDelay:    1500 * time.Millisecond,
		FailureDelay:    2 * time.Second,
	}
	identity := web.ContextIdentity{}
	newFlow := func(notifier adapter.Notifier, nav adapter.Navigator) *usecase.PaymentFlow {
		return usecase.NewPaymentFlow(identity, orderUC, broker, verifyUC, notifier, nav, policy, flowCfg, logger)
	}
	newReader := func(userID string) *usecase.SubscriptionReader {
		return usecase.NewSubscriptionReader(userID, orderRepo, creditsRepo, feed, policy, logger)
	}

	// ---- HTTP server ----
	auth := web.NewAuthManager(cfg.Web.JWTSecret, 24*time.Hour)
	server := web.NewServer(orderUC, verifyUC, newReader, newFlow, broker, auth, logger)
	go func() {
		if err := server.ListenAndServe(ctx, fmt.Sprintf(":%d", cfg.Web.Port)); err != nil {
			logger.Error().Err(err).Msg("http server stopped")
			cancel()
		}
	}()

	// ---- Stale order reconciler ----
	reconciler := sched.NewOrderReconciler(orderRepo, cfg.Reconciler.Interval, cfg.Reconciler.StaleAfter, logger)
	go reconciler.Start(ctx)

	// ---- Graceful shutdown ----
	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-sigc:
		logger.Info().Msg("shutdown requested")
	case <-ctx.Done():
	}
	cancel()
}
