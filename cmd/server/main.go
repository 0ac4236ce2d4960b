package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"payneteasy-be/internal/auth"
	"payneteasy-be/internal/callback"
	"payneteasy-be/internal/config"
	"payneteasy-be/internal/db"
	"payneteasy-be/internal/logger"
	"payneteasy-be/internal/metrics"
	"payneteasy-be/internal/middleware"
	"payneteasy-be/internal/order"
	"payneteasy-be/internal/payment"
	"payneteasy-be/internal/reconciler"
	"payneteasy-be/internal/tracing"

	"go.uber.org/zap"
)

const (
	serviceName     = "payneteasy-be"
	paymentMethodID = "wc_payneteasy"
	shutdownTimeout = 10 * time.Second
)

var (
	initDBFunc      = db.NewDatabase
	startServerFunc = listenAndServe
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	appLog, err := logger.New(cfg.AppEnv)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer logger.Sync(appLog)

	shutdownTracing, err := tracing.Init(cfg.JaegerEndpoint, serviceName)
	if err != nil {
		return fmt.Errorf("init tracing: %w", err)
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := shutdownTracing(ctx); err != nil {
			appLog.Warn("tracer shutdown failed", zap.Error(err))
		}
	}()

	database, err := initDBFunc(cfg)
	if err != nil {
		return err
	}
	defer database.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	handler := newServer(ctx, cfg, database, appLog)

	appLog.Info("PAYNET gateway server running",
		zap.String("port", cfg.AppPort),
		zap.String("payment_method", cfg.PaynetPaymentMethod),
		zap.Bool("sandbox", cfg.PaynetSandbox),
		zap.Bool("three_d_secure", cfg.PaynetThreeDSecure),
	)
	return startServerFunc(ctx, ":"+cfg.AppPort, handler)
}

// newServer wires repositories, the gateway client and the reconciler
// behind the callback routes and the middleware chain.
func newServer(ctx context.Context, cfg *config.Config, database *sql.DB, appLog *zap.Logger) http.Handler {
	orders := order.NewRepository(database, appLog)
	records := payment.NewRepository(database)

	gateway := payment.NewPaynetGateway(payment.GatewayConfig{
		BaseURL:            cfg.GatewayURL(),
		Login:              cfg.PaynetLogin,
		ControlKey:         cfg.PaynetControlKey,
		EndpointID:         cfg.PaynetEndpointID,
		InsecureSkipVerify: cfg.PaynetInsecureTLS,
		Timeout:            cfg.PaynetHTTPTimeout,
		LogExchange:        cfg.PaynetLogging,
	}, appLog)

	siteURL := strings.TrimSuffix(cfg.SiteURL, "/")
	svc := reconciler.NewService(reconciler.Config{
		MethodID:        paymentMethodID,
		Integration:     payment.IntegrationMethod(cfg.PaynetPaymentMethod),
		CompletedStatus: order.Status(cfg.PaynetTransactionEnd),
		RequireSSN:      cfg.PaynetRequireSSN,
		ReturnURL:       siteURL + callback.ReturnPath,
		CallbackURL:     siteURL + callback.WebhookPath,
		NotifyURL:       cfg.PaynetNotifyURL,
	}, orders, orders, records, gateway, appLog)

	nonces := auth.NewNonceIssuer(cfg.AjaxNonceSecret, cfg.AjaxNonceTTL)
	h := callback.NewHandler(svc, orders, records, nonces, callback.Options{
		SiteURL:     cfg.SiteURL,
		InternalKey: cfg.InternalSecretKey,
	}, appLog)

	limiter := middleware.NewRateLimiter(newLimiterConfig(cfg))
	go limiter.Cleanup(ctx)

	return middleware.Chain(setupRouter(h),
		logger.RequestIDMiddleware,
		logger.LoggingMiddleware(appLog),
		middleware.Metrics(
			callback.ReturnPath, callback.WebhookPath, callback.AjaxPath,
			callback.CheckoutPath, callback.NoncePath, "/health",
		),
		limiter.Middleware,
	)
}

// newLimiterConfig puts the customer and admin entry points on the strict
// tier. Webhooks arrive in bursts from a few gateway addresses and stay on
// the general tier.
func newLimiterConfig(cfg *config.Config) middleware.LimiterConfig {
	limiterCfg := middleware.DefaultLimiterConfig()
	limiterCfg.StrictPaths = []string{callback.AjaxPath, callback.CheckoutPath}
	limiterCfg.InternalKey = cfg.InternalSecretKey
	return limiterCfg
}

func setupRouter(h *callback.Handler) *http.ServeMux {
	mux := http.NewServeMux()
	h.Routes(mux)
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})
	mux.Handle("/metrics", metrics.Handler())
	return mux
}

func listenAndServe(ctx context.Context, addr string, handler http.Handler) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() { errCh <- srv.ListenAndServe() }()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}
