package main

import (
	"context"
	"log"
	"net/http"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/segmentio/kafka-go"

	"github.com/example/admin-platform/internal/api"
	"github.com/example/admin-platform/internal/common"
	"github.com/example/admin-platform/internal/email"
	"github.com/example/admin-platform/internal/logging"
	"github.com/example/admin-platform/internal/notify"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	cfg, err := common.LoadConfig("admin-platform")
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	logger := common.NewLogger(cfg.ServiceName)
	shutdown, err := common.SetupOTel(ctx, cfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to initialise telemetry")
	}
	defer common.ShutdownTelemetry(context.Background(), shutdown)

	metricsSrv := common.StartMetricsServer(cfg.MetricsPort)
	defer metricsSrv.Shutdown(context.Background())

	if cfg.DatabaseURL == "" {
		logger.Fatal().Msg("DATABASE_URL must be provided")
	}
	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Fatal().Err(err).Msg("connect postgres")
	}
	defer pool.Close()

	logWriter := &kafka.Writer{
		Addr:     kafka.TCP(cfg.KafkaBrokers...),
		Topic:    cfg.LogTopic,
		Balancer: &kafka.Hash{},
		Async:    true,
	}
	defer logWriter.Close()

	settings := common.EnvSettings{}
	emitter := &logging.Emitter{
		Logger: logger,
		Observers: []logging.Observer{
			&logging.Broadcaster{Enabled: settings.LogBroadcastEnabled, Writer: logWriter},
		},
	}

	repo := notify.NewPostgresRepository(pool)
	userSettings := notify.NewPostgresUserSettings(pool)

	sender := &email.Sender{
		Providers: []email.Provider{
			&email.SESProvider{Endpoint: cfg.SESEndpoint, APIKey: cfg.SESAPIKey},
			&email.SendGridProvider{Endpoint: cfg.SGEndpoint, APIKey: cfg.SGAPIKey},
		},
		Logger: logger,
	}

	registry := notify.NewRegistry()
	registry.Register(notify.Descriptor{ID: "database", AlwaysAvailable: true}, func() notify.Handler {
		return &notify.DatabaseChannel{Repo: repo}
	})
	registry.Register(notify.Descriptor{ID: "email", AlwaysAvailable: true}, func() notify.Handler {
		return &notify.EmailChannel{Sender: sender, Settings: userSettings}
	})
	registry.Register(notify.Descriptor{ID: "telegram", UserConfigurable: true}, func() notify.Handler {
		return &notify.WebhookChannel{ChannelID: "telegram", Settings: userSettings}
	})
	registry.Register(notify.Descriptor{ID: "slack", UserConfigurable: true}, func() notify.Handler {
		return &notify.WebhookChannel{ChannelID: "slack", Settings: userSettings}
	})
	registry.Register(notify.Descriptor{ID: "sms", UserConfigurable: true}, func() notify.Handler {
		return &notify.SMSChannel{GatewayURL: cfg.SMSGatewayURL, APIKey: cfg.SMSAPIKey, Settings: userSettings}
	})

	orchestrator := notify.NewOrchestrator(registry, settings, repo, logger)
	handler := api.NewHandler(orchestrator, repo, registry, settings, emitter)

	srv := &http.Server{
		Addr:    ":" + strconv.Itoa(cfg.HTTPPort),
		Handler: handler.Router(),
	}

	go func() {
		logger.Info().Int("port", cfg.HTTPPort).Msg("admin platform listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("http server failed")
		}
	}()

	<-ctx.Done()

	ctxShutdown, cancelShutdown := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelShutdown()
	if err := srv.Shutdown(ctxShutdown); err != nil {
		logger.Error().Err(err).Msg("graceful shutdown failed")
	}
}
