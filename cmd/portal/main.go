package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/maxp/merchant-portal/internal/app"
	charthttp "github.com/maxp/merchant-portal/internal/charts/http"
	"github.com/maxp/merchant-portal/internal/merchants"
	merchanthttp "github.com/maxp/merchant-portal/internal/merchants/http"
	"github.com/maxp/merchant-portal/internal/observability"
	"github.com/maxp/merchant-portal/internal/platform/cache"
	"github.com/maxp/merchant-portal/internal/portal"
	"github.com/maxp/merchant-portal/internal/shared"
	"github.com/maxp/merchant-portal/internal/view"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping runtime startup")
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// A missing .env is fine; the environment may already be populated.
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		slog.Default().Warn("load .env", slog.Any("error", err))
	}

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg)

	redisClient, err := cache.New(ctx, cfg.RedisAddr)
	if err != nil {
		logger.Warn("redis ping", slog.Any("error", err))
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()

	metrics := observability.NewMetrics()

	client := portal.NewClient(cfg.PortalAPIURL, cfg.PortalAPITimeout, metrics)
	if err := client.Ping(ctx); err != nil {
		logger.Warn("portal api ping", slog.String("url", cfg.PortalAPIURL), slog.Any("error", err))
	}

	sessionManager := shared.NewSessionManager(redisClient, "portal_session", cfg.SessionTTL, cfg.IsProduction())
	csrfManager := shared.NewCSRFManager(cfg.CSRFSecret)

	templates, err := view.NewEngine()
	if err != nil {
		logger.Error("parse templates", slog.Any("error", err))
		os.Exit(1)
	}

	merchantCache := merchants.NewCache(redisClient, cfg.MerchantCacheTTL)
	merchantService := merchants.NewService(client, merchantCache, logger)
	reportService := merchants.NewReportService(client, logger)
	merchantsHandler := merchanthttp.NewHandler(logger, merchantService, reportService, templates, csrfManager, metrics)
	chartsHandler := charthttp.NewHandler(logger, client, templates, csrfManager)

	router := app.NewRouter(app.RouterParams{
		Logger:           logger,
		Config:           cfg,
		Templates:        templates,
		SessionManager:   sessionManager,
		CSRFManager:      csrfManager,
		MerchantsHandler: merchantsHandler,
		ChartsHandler:    chartsHandler,
		Metrics:          metrics,
		HealthChecks: map[string]app.HealthCheck{
			"redis": cache.Checker(redisClient),
		},
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	go func() {
		logger.Info("starting http server", slog.String("addr", cfg.AppAddr), slog.String("portal_api", cfg.PortalAPIURL))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("http server", slog.Any("error", err))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown", slog.Any("error", err))
	}
}
