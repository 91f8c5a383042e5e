package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/DanielPopoola/consultation-relay/internal/adapters/handler"
	"github.com/DanielPopoola/consultation-relay/internal/adapters/repo"
	"github.com/DanielPopoola/consultation-relay/internal/adapters/webhook"
	"github.com/DanielPopoola/consultation-relay/internal/api"
	"github.com/DanielPopoola/consultation-relay/internal/config"
	"github.com/DanielPopoola/consultation-relay/internal/core/ports"
	"github.com/DanielPopoola/consultation-relay/internal/core/service"
	"github.com/DanielPopoola/consultation-relay/internal/intl"
	"github.com/DanielPopoola/consultation-relay/internal/interfaces/rest/middleware"
	"github.com/DanielPopoola/consultation-relay/internal/worker"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"
)

type storeBundle struct {
	store  ports.RequestStore
	health handler.HealthCheck
	close  func()
}

func openStore(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*storeBundle, error) {
	switch cfg.Store.Backend {
	case config.BackendPostgres:
		db, err := repo.Connect(ctx, &cfg.Database, logger)
		if err != nil {
			return nil, err
		}
		if err := db.EnsureSchema(ctx); err != nil {
			db.Close()
			return nil, err
		}
		return &storeBundle{
			store:  repo.NewPostgresRequestStore(db.Pool),
			health: db.Ping,
			close:  db.Close,
		}, nil

	case config.BackendRedis:
		client, err := repo.NewRedisClient(ctx, &cfg.Redis, logger)
		if err != nil {
			return nil, err
		}
		return &storeBundle{
			store:  repo.NewRedisRequestStore(client, cfg.Redis.KeyPrefix),
			health: func(ctx context.Context) error { return client.Ping(ctx).Err() },
			close:  func() { _ = client.Close() },
		}, nil

	default:
		logger.Warn("using in-memory store, requests are lost on restart")
		return &storeBundle{
			store: repo.NewMemoryRequestStore(),
			close: func() {},
		}, nil
	}
}

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	logger := cfg.Logger.NewLogger()
	slog.SetDefault(logger)

	logger.Info("starting consultation relay",
		"port", cfg.Server.Port,
		"store", cfg.Store.Backend,
		"log_level", cfg.Logger.Level,
		"webhook_configured", cfg.Webhook.URL != "",
	)
	if cfg.Webhook.URL == "" {
		logger.Warn("no webhook URL configured; submissions will be stored but not delivered",
			"variables", config.WebhookURLVars)
	}

	ctx := context.Background()

	stores, err := openStore(ctx, cfg, logger)
	if err != nil {
		logger.Error("failed to open request store", "backend", cfg.Store.Backend, "error", err)
		os.Exit(1)
	}
	defer stores.close()

	translator, err := intl.NewTranslator()
	if err != nil {
		logger.Error("failed to load translations", "error", err)
		os.Exit(1)
	}

	doc, err := api.LoadSpec(ctx)
	if err != nil {
		logger.Error("failed to load openapi document", "error", err)
		os.Exit(1)
	}

	webhookClient := webhook.NewWebhookClient(cfg.Webhook, logger)
	dispatchService := service.NewDispatchService(stores.store, webhookClient, cfg.Webhook.URL, logger)
	queryService := service.NewConsultationQueryService(stores.store)

	workerCtx, cancelWorkers := context.WithCancel(context.Background())
	defer cancelWorkers()

	consultations := handler.NewConsultationHandler(dispatchService, queryService, translator, logger).
		WithHealthCheck(cfg.Store.Backend, stores.health)

	if cfg.RateLimit.RPS > 0 {
		limiter := middleware.NewLimiterStore(cfg.RateLimit.RPS, cfg.RateLimit.Burst)
		limiter.StartJanitor(workerCtx, 2*time.Minute)
		consultations.WithSubmitMiddleware(middleware.RateLimit(limiter, cfg.RateLimit.TrustXForwardedFor))
	}

	mux := http.NewServeMux()
	consultations.RegisterRoutes(mux)
	handler.NewPageHandler(translator).RegisterRoutes(mux)
	if err := api.RegisterDocsRoutes(mux, doc); err != nil {
		logger.Error("failed to register docs routes", "error", err)
		os.Exit(1)
	}
	mux.Handle("GET /metrics", promhttp.Handler())

	router := http.Handler(mux)

	h := middleware.Timeout(cfg.Server.RequestTimeout)(router)
	h = middleware.Metrics(h)
	h = middleware.Recovery(logger)(h)
	h = translator.Middleware(h)
	h = middleware.RequestLogger(logger)(h)

	if len(cfg.Server.CORSOrigins) > 0 {
		h = cors.New(cors.Options{
			AllowedOrigins: cfg.Server.CORSOrigins,
			AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
			AllowedHeaders: []string{"Content-Type", "Accept-Language", "X-Request-ID"},
			ExposedHeaders: []string{"X-Request-ID", "Retry-After"},
			MaxAge:         600,
		}).Handler(h)
	}

	server := &http.Server{
		Addr:         "0.0.0.0:" + cfg.Server.Port,
		Handler:      h,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	monitor := worker.NewPendingMonitor(
		stores.store,
		cfg.Worker.Interval,
		cfg.Worker.StaleAfter,
		cfg.Worker.ReportSample,
		logger,
	)
	go monitor.Start(workerCtx)

	go func() {
		logger.Info("server starting", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server...")

	cancelWorkers()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
	}

	logger.Info("server exited")
}
