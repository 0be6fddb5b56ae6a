package main

import (
	"context"
	"crypto/tls"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/careport/booking-gateway/internal/api/router"
	"github.com/careport/booking-gateway/internal/availability"
	"github.com/careport/booking-gateway/internal/booking"
	appconfig "github.com/careport/booking-gateway/internal/config"
	"github.com/careport/booking-gateway/internal/hms"
	"github.com/careport/booking-gateway/internal/http/handlers"
	"github.com/careport/booking-gateway/internal/notify"
	"github.com/careport/booking-gateway/internal/observability/metrics"
	"github.com/careport/booking-gateway/internal/payments"
	"github.com/careport/booking-gateway/internal/session"
	"github.com/careport/booking-gateway/pkg/logging"
)

func main() {
	cfg := appconfig.Load()

	logger := logging.New(cfg.LogLevel)
	logger.Info("starting booking-gateway API server",
		"env", cfg.Env,
		"port", cfg.Port,
	)

	redisOpts := &redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
	}
	if cfg.RedisTLS {
		redisOpts.TLSConfig = &tls.Config{MinVersion: tls.VersionTLS12}
	}
	rdb := redis.NewClient(redisOpts)
	if err := rdb.Ping(context.Background()).Err(); err != nil {
		logger.Error("redis unreachable", "addr", cfg.RedisAddr, "error", err)
		os.Exit(1)
	}

	sessions := session.NewStore(rdb, logger)
	if cfg.HMSToken != "" {
		if err := sessions.SetToken(context.Background(), cfg.HMSToken); err != nil {
			logger.Error("failed to seed HMS token", "error", err)
			os.Exit(1)
		}
	}

	hmsClient := hms.NewClient(cfg.HMSBaseURL, sessions, logger).
		WithTimeout(cfg.HMSTimeout).
		WithUnauthorizedHook(func() {
			sessions.Clear(context.Background())
		})

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	bookingMetrics := metrics.NewBookingMetrics(registry)

	availabilitySvc := availability.NewService(hmsClient, logger)

	orchestrator := payments.NewOrchestrator(
		hmsClient,
		cfg.RazorpayKeyID,
		cfg.HospitalName,
		cfg.CheckoutThemeColor,
		logger,
	).WithMetrics(bookingMetrics)

	var sender notify.EmailSender
	if sg := notify.NewSendGridSender(cfg.SendGridAPIKey, cfg.SendGridFromEmail, cfg.SendGridFromName, logger); sg != nil {
		sender = sg
	} else {
		logger.Info("sendgrid not configured, confirmation emails disabled")
		sender = notify.NewStubEmailSender(logger)
	}
	notifier := notify.NewConfirmationNotifier(sender, logger)

	stateStore := booking.NewRedisStore(rdb, cfg.BookingTTL)
	wizard := booking.NewWizard(stateStore, hmsClient, availabilitySvc, orchestrator, logger).
		WithMetrics(bookingMetrics).
		WithNotifier(notifier).
		WithAbandonAfter(cfg.PaymentAbandonAfter)

	routerCfg := &router.Config{
		Logger:              logger,
		BookingHandler:      booking.NewHandler(wizard, logger),
		AvailabilityHandler: availability.NewHandler(availabilitySvc, logger),
		AdminAppointments:   handlers.NewAdminAppointmentsHandler(hmsClient, logger),
		MetricsHandler:      promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		CORSAllowedOrigins:  cfg.CORSAllowedOrigins,
		AdminJWTSecret:      cfg.AdminJWTSecret,
	}
	r := router.New(routerCfg)

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

	if err := rdb.Close(); err != nil {
		logger.Error("redis close failed", "error", err)
	}

	logger.Info("server stopped")
}
