package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/pflag"

	"github.com/Samuel1505/Event-Ticketing/internal/di"
	"github.com/Samuel1505/Event-Ticketing/internal/repository/migrations"
	"github.com/Samuel1505/Event-Ticketing/internal/service"
	"github.com/Samuel1505/Event-Ticketing/internal/worker"
	"github.com/Samuel1505/Event-Ticketing/pkg/config"
	"github.com/Samuel1505/Event-Ticketing/pkg/database"
	"github.com/Samuel1505/Event-Ticketing/pkg/logger"
	"github.com/Samuel1505/Event-Ticketing/pkg/middleware"
	"github.com/Samuel1505/Event-Ticketing/pkg/redis"
	"github.com/Samuel1505/Event-Ticketing/pkg/retry"
	"github.com/Samuel1505/Event-Ticketing/pkg/telemetry"
)

const serviceName = "ledger-service"

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

	// Initialize logger
	logCfg := &logger.Config{
		Level:       cfg.App.Environment,
		ServiceName: serviceName,
		Development: cfg.IsDevelopment(),
	}
	if err := logger.Init(logCfg); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	appLog := logger.Get()
	appLog.Info("Starting Ledger Service...")

	ctx := context.Background()

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
	} else if telemetryCfg.Enabled {
		appLog.Info(fmt.Sprintf("Telemetry initialized (collector: %s)", telemetryCfg.CollectorAddr))
	}
	defer telemetry.Shutdown(ctx)

	// Initialize database connection (optional - journal stays in memory without it)
	var db *database.PostgresDB
	if cfg.LedgerDatabase.Enabled() {
		dbCfg := database.FromConfig(&cfg.LedgerDatabase, cfg.OTel.Enabled)
		db, err = database.NewPostgres(ctx, dbCfg)
		if err != nil {
			appLog.Fatal(fmt.Sprintf("Database connection failed: %v", err))
		}
		defer db.Close()
		appLog.Info(fmt.Sprintf("Database connected (pool: min=%d, max=%d)", dbCfg.MinConns, dbCfg.MaxConns))

		if err := migrations.Apply(ctx, db.Pool()); err != nil {
			appLog.Fatal(fmt.Sprintf("Failed to apply migrations: %v", err))
		}
	} else {
		appLog.Warn("LEDGER_DATABASE_HOST not set, journal is kept in memory")
	}

	// Initialize Redis connection (optional - idempotency keys are disabled without it)
	var redisClient *redis.Client
	if cfg.Redis.Enabled() {
		redisCfg := redis.FromConfig(&cfg.Redis)
		redisClient, err = redis.NewClient(ctx, redisCfg)
		if err != nil {
			appLog.Warn(fmt.Sprintf("Redis connection failed (idempotency disabled): %v", err))
			redisClient = nil
		} else {
			defer redisClient.Close()
			appLog.Info(fmt.Sprintf("Redis connected (%s)", redisCfg.Addr()))
		}
	}

	// The in-memory journal is only visible to this process, so the relay
	// runs in-process. With a database the notification-relay binary owns it.
	var publisher service.NotificationPublisher
	if cfg.Kafka.Enabled() && db == nil {
		kafkaPublisher, err := service.NewKafkaNotificationPublisher(ctx, &service.NotificationPublisherConfig{
			Brokers:     cfg.Kafka.Brokers,
			Topic:       cfg.Kafka.NotificationTopic,
			ServiceName: serviceName,
			ClientID:    cfg.Kafka.ClientID,
		})
		if err != nil {
			appLog.Warn(fmt.Sprintf("Kafka connection failed (notifications not relayed): %v", err))
		} else {
			publisher = kafkaPublisher
			defer publisher.Close()
		}
	}

	// Build dependency injection container
	container, err := di.NewContainer(ctx, &di.ContainerConfig{
		DB:        db,
		Redis:     redisClient,
		Publisher: publisher,
		Relay: &worker.NotificationRelayConfig{
			Name:         cfg.Relay.Name,
			PollInterval: cfg.Relay.PollInterval,
			BatchSize:    cfg.Relay.BatchSize,
			Retry:        &retry.Config{MaxRetries: cfg.Relay.MaxRetries, JitterFactor: 0.1},
		},
		Logger: appLog,
	})
	if err != nil {
		appLog.Fatal(fmt.Sprintf("Failed to build container: %v", err))
	}
	appLog.Info(fmt.Sprintf("Ledger ready (events: %d, journal head: %d)", container.Registry.EventCount(), container.HeadSeq))

	relayCtx, stopRelay := context.WithCancel(ctx)
	defer stopRelay()
	if container.Relay != nil {
		if err := container.Relay.Start(relayCtx); err != nil {
			appLog.Fatal(fmt.Sprintf("Failed to start notification relay: %v", err))
		}
	}

	// Setup Gin
	if cfg.IsDevelopment() {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestID())
	router.Use(middleware.Logger(appLog))

	// Add OpenTelemetry tracing middleware if enabled
	if cfg.OTel.Enabled {
		router.Use(telemetry.TracingMiddleware(serviceName))
	}

	di.RegisterRoutes(router, container, &middleware.JWTConfig{
		Secret: cfg.JWT.Secret,
		Issuer: cfg.JWT.Issuer,
		SkipPaths: []string{
			"/health",
			"/ready",
		},
	})

	// Create HTTP server
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadTimeout:       cfg.Server.ReadTimeout,
		WriteTimeout:      cfg.Server.WriteTimeout,
		IdleTimeout:       cfg.Server.IdleTimeout,
		ReadHeaderTimeout: 2 * time.Second,
	}

	// Start server in goroutine
	go func() {
		appLog.Info(fmt.Sprintf("Ledger Service listening on %s", addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			appLog.Fatal(fmt.Sprintf("Failed to start server: %v", err))
		}
	}()

	// Wait for interrupt signal for graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	appLog.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		appLog.Error(fmt.Sprintf("Server forced to shutdown: %v", err))
	}
	if container.Relay != nil {
		container.Relay.Stop()
	}

	appLog.Info("Server exited gracefully")
}
