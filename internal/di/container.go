package di

import (
	"context"
	"fmt"

	"github.com/Samuel1505/Event-Ticketing/internal/clock"
	"github.com/Samuel1505/Event-Ticketing/internal/handler"
	"github.com/Samuel1505/Event-Ticketing/internal/journal"
	"github.com/Samuel1505/Event-Ticketing/internal/registry"
	"github.com/Samuel1505/Event-Ticketing/internal/repository"
	"github.com/Samuel1505/Event-Ticketing/internal/service"
	"github.com/Samuel1505/Event-Ticketing/internal/worker"
	"github.com/Samuel1505/Event-Ticketing/pkg/database"
	"github.com/Samuel1505/Event-Ticketing/pkg/logger"
	"github.com/Samuel1505/Event-Ticketing/pkg/redis"
	"github.com/Samuel1505/Event-Ticketing/pkg/telemetry"
)

// Container holds all dependencies for the ledger service
type Container struct {
	// Infrastructure
	DB      *database.PostgresDB
	Redis   *redis.Client
	Metrics *telemetry.LedgerMetrics

	// Repositories
	Journal journal.Journal
	Cursors repository.CursorRepository

	// Core
	Registry *registry.Registry
	HeadSeq  uint64

	// Services
	LedgerService       service.LedgerService
	NotificationService service.NotificationService
	Publisher           service.NotificationPublisher

	// Workers
	Relay *worker.NotificationRelay

	// Handlers
	HealthHandler       *handler.HealthHandler
	EventHandler        *handler.EventHandler
	TicketHandler       *handler.TicketHandler
	NotificationHandler *handler.NotificationHandler
}

// ContainerConfig contains configuration for building the container
type ContainerConfig struct {
	// DB holds the journal when set; otherwise the journal lives in memory
	DB    *database.PostgresDB
	Redis *redis.Client
	Clock clock.Clock

	// Publisher enables the in-process notification relay when set
	Publisher service.NotificationPublisher
	Relay     *worker.NotificationRelayConfig

	Metrics *telemetry.LedgerMetrics
	Logger  *logger.Logger
}

// NewContainer creates a new dependency injection container. The journal
// is replayed into the registry before any handler is built.
func NewContainer(ctx context.Context, cfg *ContainerConfig) (*Container, error) {
	c := &Container{
		DB:        cfg.DB,
		Redis:     cfg.Redis,
		Metrics:   cfg.Metrics,
		Publisher: cfg.Publisher,
	}

	log := cfg.Logger
	if log == nil {
		log = logger.Get()
	}
	clk := cfg.Clock
	if clk == nil {
		clk = clock.NewSystem()
	}
	if c.Metrics == nil {
		metrics, err := telemetry.NewLedgerMetrics(nil)
		if err != nil {
			return nil, fmt.Errorf("failed to register ledger metrics: %w", err)
		}
		c.Metrics = metrics
	}

	// Initialize repositories
	if c.DB != nil {
		c.Journal = repository.NewPostgresRecordRepository(c.DB.Pool())
		c.Cursors = repository.NewPostgresCursorRepository(c.DB.Pool())
	} else {
		c.Journal = journal.NewMemory()
		c.Cursors = repository.NewMemoryCursorRepository()
	}

	// Rebuild the registry from the journal
	c.Registry = registry.New(clk, c.Journal)
	head, err := service.Bootstrap(ctx, c.Journal, c.Registry, log)
	if err != nil {
		return nil, fmt.Errorf("failed to replay journal: %w", err)
	}
	c.HeadSeq = head

	// Initialize services
	c.LedgerService = service.NewLedgerService(c.Registry, c.Metrics, log)
	c.NotificationService = service.NewNotificationService(c.Journal)

	// Initialize workers
	if c.Publisher != nil {
		c.Relay = worker.NewNotificationRelay(c.Journal, c.Cursors, c.Publisher, c.Metrics, cfg.Relay)
	}

	// Initialize handlers
	checks := map[string]handler.HealthChecker{"database": nil, "redis": nil}
	if c.DB != nil {
		checks["database"] = c.DB
	}
	if c.Redis != nil {
		checks["redis"] = c.Redis
	}
	c.HealthHandler = handler.NewHealthHandler(checks)
	c.EventHandler = handler.NewEventHandler(c.LedgerService)
	c.TicketHandler = handler.NewTicketHandler(c.LedgerService)
	c.NotificationHandler = handler.NewNotificationHandler(c.NotificationService)

	return c, nil
}
