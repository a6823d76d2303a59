package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/dancehub/event-registration/internal/api"
	"github.com/dancehub/event-registration/internal/config"
	"github.com/dancehub/event-registration/internal/db"
	"github.com/dancehub/event-registration/internal/logger"
	"github.com/dancehub/event-registration/internal/messaging"
	"github.com/dancehub/event-registration/internal/observability"
	"github.com/dancehub/event-registration/internal/payment"
	"github.com/dancehub/event-registration/internal/service"
)

type publisher interface {
	service.EventPublisher
	Close() error
}

func Start() error {
	conf, err := config.Load("./cmd/app/config.yml")
	if err != nil {
		return fmt.Errorf("failed to initialize config -> %w", err)
	}

	if err = logger.Init(conf.API.Environment); err != nil {
		return fmt.Errorf("failed to initialize logger -> %w", err)
	}
	defer func() { _ = zap.L().Sync() }()

	dbURL := os.Getenv("DATABASE_URL")
	var postgresDB *gorm.DB
	if dbURL != "" {
		postgresDB, err = db.OpenPostgresWithURL(dbURL)
	} else {
		postgresDB, err = db.OpenPostgres(conf.Postgres)
	}
	if err != nil {
		return fmt.Errorf("failed to initialize database -> %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := observability.SetupTracing(ctx, conf.Otel)
	if err != nil {
		return fmt.Errorf("failed to initialize tracing -> %w", err)
	}

	var events publisher = messaging.NoopPublisher{}
	if conf.Kafka.Enabled() {
		events = messaging.NewOrderEventPublisher(messaging.NewKafkaWriter(conf.Kafka.Brokers, conf.Kafka.Topic))
		zap.L().Info("publishing order events", zap.Strings("brokers", conf.Kafka.Brokers), zap.String("topic", conf.Kafka.Topic))
	}

	if conf.Stripe.WebhookSecret == "" {
		zap.L().Warn("stripe.webhook_secret is empty, payment webhooks will be rejected")
	}

	s := api.NewServer(conf, api.Dependencies{
		DB:        postgresDB,
		Gateway:   payment.NewStripeGateway(conf.Stripe.SecretKey, conf.Stripe.WebhookSecret, nil),
		Publisher: events,
	})

	srv := &http.Server{
		Addr:              ":" + conf.API.Port,
		Handler:           s.Router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      conf.API.RequestTimeout + 5*time.Second,
		IdleTimeout:       60 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		zap.L().Info(fmt.Sprintf("starting server at %v", srv.Addr))
		serveErr <- srv.ListenAndServe()
	}()

	select {
	case err = <-serveErr:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("failed to start the server -> %w", err)
		}
	case <-ctx.Done():
		zap.L().Info("shutting down server")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), conf.API.ShutdownTimeout)
	defer cancel()

	if err = srv.Shutdown(shutdownCtx); err != nil {
		zap.L().Error("server shutdown", zap.Error(err))
	}
	if err = events.Close(); err != nil {
		zap.L().Error("close event publisher", zap.Error(err))
	}
	if err = shutdownTracing(shutdownCtx); err != nil {
		zap.L().Error("shutdown tracing", zap.Error(err))
	}
	if sqlDB, dbErr := postgresDB.DB(); dbErr == nil {
		_ = sqlDB.Close()
	}

	return nil
}
