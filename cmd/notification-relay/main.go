package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/pflag"

	"github.com/Samuel1505/Event-Ticketing/internal/repository"
	"github.com/Samuel1505/Event-Ticketing/internal/repository/migrations"
	"github.com/Samuel1505/Event-Ticketing/internal/service"
	"github.com/Samuel1505/Event-Ticketing/internal/worker"
	"github.com/Samuel1505/Event-Ticketing/pkg/config"
	"github.com/Samuel1505/Event-Ticketing/pkg/database"
	"github.com/Samuel1505/Event-Ticketing/pkg/logger"
	"github.com/Samuel1505/Event-Ticketing/pkg/retry"
	"github.com/Samuel1505/Event-Ticketing/pkg/telemetry"
)

const serviceName = "notification-relay"

func main() {
	flags := pflag.NewFlagSet(serviceName, pflag.ExitOnError)
	configPath := flags.String("config", "", "path to an env file (default: ./.env plus environment)")
	_ = flags.Parse(os.Args[1:])

	// Load configuration
	var cfg *config.Config
	var err error
	if *configPath != "" {
		cfg, err = config.LoadWithPath(*configPath)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if err := cfg.ValidateLedgerDatabase(); err != nil {
		log.Fatalf("Invalid config: %v", err)
	}
	if !cfg.Kafka.Enabled() {
		log.Fatalf("Invalid config: KAFKA_BROKERS is required")
	}

	// Initialize logger
	if err := logger.Init(&logger.Config{
		Level:       cfg.App.Environment,
		ServiceName: serviceName,
		Development: cfg.IsDevelopment(),
	}); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	appLog := logger.Get()
	appLog.Info("Starting Notification Relay...")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize OpenTelemetry
	telemetryCfg := &telemetry.Config{
		Enabled:        cfg.OTel.Enabled,
		ServiceName:    serviceName,
		ServiceVersion: cfg.App.Version,
		Environment:    cfg.App.Environment,
		CollectorAddr:  cfg.OTel.CollectorAddr,
		SampleRatio:    cfg.OTel.SampleRatio,
	}
	if _, err := telemetry.Init(ctx, telemetryCfg); err != nil {
		appLog.Warn(fmt.Sprintf("Failed to initialize telemetry: %v", err))
	}
	defer telemetry.Shutdown(context.Background())

	// Initialize database connection
	dbCfg := database.FromConfig(&cfg.LedgerDatabase, cfg.OTel.Enabled)
	dbCfg.MaxConns, dbCfg.MinConns = 5, 1
	dbCfg.Connect = &retry.Config{MaxRetries: 5, InitialInterval: 2 * time.Second, MaxInterval: 30 * time.Second}
	db, err := database.NewPostgres(ctx, dbCfg)
	if err != nil {
		appLog.Fatal(fmt.Sprintf("Database connection failed: %v", err))
	}
	defer db.Close()

	if err := migrations.Apply(ctx, db.Pool()); err != nil {
		appLog.Fatal(fmt.Sprintf("Failed to apply migrations: %v", err))
	}

	// Initialize Kafka publisher
	publisher, err := service.NewKafkaNotificationPublisher(ctx, &service.NotificationPublisherConfig{
		Brokers:     cfg.Kafka.Brokers,
		Topic:       cfg.Kafka.NotificationTopic,
		ServiceName: serviceName,
		ClientID:    cfg.Kafka.ClientID,
	})
	if err != nil {
		appLog.Fatal(fmt.Sprintf("Kafka connection failed: %v", err))
	}
	defer publisher.Close()
	appLog.Info(fmt.Sprintf("Publishing to %s via %v", cfg.Kafka.NotificationTopic, cfg.Kafka.Brokers))

	metrics, err := telemetry.NewLedgerMetrics(nil)
	if err != nil {
		appLog.Fatal(fmt.Sprintf("Failed to register metrics: %v", err))
	}

	relay := worker.NewNotificationRelay(
		repository.NewPostgresRecordRepository(db.Pool()),
		repository.NewPostgresCursorRepository(db.Pool()),
		publisher,
		metrics,
		&worker.NotificationRelayConfig{
			Name:         cfg.Relay.Name,
			PollInterval: cfg.Relay.PollInterval,
			BatchSize:    cfg.Relay.BatchSize,
			Retry:        &retry.Config{MaxRetries: cfg.Relay.MaxRetries, JitterFactor: 0.1},
		},
	)
	if err := relay.Start(ctx); err != nil {
		appLog.Fatal(fmt.Sprintf("Failed to start relay: %v", err))
	}

	// Wait for interrupt signal for graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	appLog.Info("Shutting down relay...")

	relay.Stop()
	appLog.Info("Relay exited gracefully")
}
