package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/angyaliszalon/salon-api/internal/admin"
	"github.com/angyaliszalon/salon-api/internal/api/router"
	"github.com/angyaliszalon/salon-api/internal/booking"
	appconfig "github.com/angyaliszalon/salon-api/internal/config"
	"github.com/angyaliszalon/salon-api/internal/observability/metrics"
	"github.com/angyaliszalon/salon-api/internal/sheets"
	"github.com/angyaliszalon/salon-api/pkg/logging"
)

func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	cfg := appconfig.Load()
	logger := logging.New(cfg.LogLevel)
	logger.Info("starting salon API server",
		"env", cfg.Env,
		"port", cfg.Port,
	)

	if cfg.ScriptURL == "" {
		logger.Error("SCRIPT_URL is required: the booking and admin endpoints cannot run without the automation endpoint")
		os.Exit(1)
	}
	if cfg.AdminPassword == "" {
		logger.Warn("ADMIN_PASSWORD is empty, admin console login is disabled")
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	gateway := sheets.NewClient(cfg.ScriptURL, logger).
		WithTimeout(cfg.ScriptTimeout).
		WithMetrics(metrics.NewGatewayMetrics(registry))

	bookingHandler := booking.NewHandler(gateway, cfg.PublicBaseURL, logger).
		WithMetrics(metrics.NewBookingMetrics(registry))
	adminHandler := admin.NewHandler(gateway, cfg.AdminPassword, cfg.AdminJWTSecret, cfg.AdminTokenTTL, logger)

	r := router.New(&router.Config{
		Logger:             logger,
		BookingHandler:     bookingHandler,
		AdminHandler:       adminHandler,
		AdminJWTSecret:     cfg.AdminJWTSecret,
		MetricsHandler:     promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		CORSAllowedOrigins: cfg.CORSAllowedOrigins,
		CheckoutRatePerSec: 1,
		CheckoutBurst:      5,
	})

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	logger.Info("server stopped")
}
