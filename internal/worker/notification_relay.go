package worker

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/Samuel1505/Event-Ticketing/internal/journal"
	"github.com/Samuel1505/Event-Ticketing/internal/repository"
	"github.com/Samuel1505/Event-Ticketing/internal/service"
	"github.com/Samuel1505/Event-Ticketing/pkg/logger"
	"github.com/Samuel1505/Event-Ticketing/pkg/retry"
	"github.com/Samuel1505/Event-Ticketing/pkg/telemetry"
)

// NotificationRelayConfig contains configuration for the notification relay
type NotificationRelayConfig struct {
	// Name identifies the relay's cursor
	Name string
	// PollInterval is the interval between journal polls
	PollInterval time.Duration
	// BatchSize is the number of records to fetch in each poll
	BatchSize int
	// Retry controls backoff when publishing a record fails
	Retry *retry.Config
}

// DefaultNotificationRelayConfig returns default configuration
func DefaultNotificationRelayConfig() *NotificationRelayConfig {
	return &NotificationRelayConfig{
		Name:         "kafka",
		PollInterval: 500 * time.Millisecond,
		BatchSize:    100,
		Retry:        retry.DefaultConfig(),
	}
}

// NotificationRelay tails the journal and publishes every committed record
// exactly in sequence order. The cursor only advances past records the
// publisher accepted, so a failing broker stalls the relay rather than
// skipping notifications. Delivery is at least once.
type NotificationRelay struct {
	reader    journal.Reader
	cursors   repository.CursorRepository
	publisher service.NotificationPublisher
	metrics   *telemetry.LedgerMetrics
	retrier   *retry.Retrier
	config    *NotificationRelayConfig
	log       *logger.Logger
	stopCh    chan struct{}
	cancel    context.CancelFunc
	wg        sync.WaitGroup
	mu        sync.Mutex
	running   bool
}

// NewNotificationRelay creates a new notification relay
func NewNotificationRelay(
	reader journal.Reader,
	cursors repository.CursorRepository,
	publisher service.NotificationPublisher,
	metrics *telemetry.LedgerMetrics,
	config *NotificationRelayConfig,
) *NotificationRelay {
	if config == nil {
		config = DefaultNotificationRelayConfig()
	}
	if config.PollInterval <= 0 {
		config.PollInterval = DefaultNotificationRelayConfig().PollInterval
	}
	if config.BatchSize <= 0 {
		config.BatchSize = DefaultNotificationRelayConfig().BatchSize
	}

	return &NotificationRelay{
		reader:    reader,
		cursors:   cursors,
		publisher: publisher,
		metrics:   metrics,
		retrier:   retry.New(config.Retry),
		config:    config,
		log:       logger.Get().With(zap.String("relay", config.Name)),
		stopCh:    make(chan struct{}),
	}
}

// Start starts the notification relay
func (w *NotificationRelay) Start(ctx context.Context) error {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return fmt.Errorf("notification relay already running")
	}
	w.running = true
	// Stop cancels ctx so an in-flight publish and its backoff end at once
	ctx, w.cancel = context.WithCancel(ctx)
	w.mu.Unlock()

	w.log.Info("Starting notification relay")

	w.wg.Add(1)
	go w.poll(ctx)

	return nil
}

// Stop stops the notification relay. A publish still being retried is
// abandoned; its record stays past the cursor and is sent again next start.
func (w *NotificationRelay) Stop() {
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		return
	}
	w.running = false
	cancel := w.cancel
	w.mu.Unlock()

	w.log.Info("Stopping notification relay")
	close(w.stopCh)
	cancel()
	w.wg.Wait()
	w.log.Info("Notification relay stopped")
}

func (w *NotificationRelay) poll(ctx context.Context) {
	defer w.wg.Done()

	ticker := time.NewTicker(w.config.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-w.stopCh:
			return
		case <-ticker.C:
			// drain the backlog before waiting for the next tick
			for {
				n, err := w.RelayBatch(ctx)
				if err != nil {
					w.log.Error("Failed to relay notifications", zap.Error(err))
					break
				}
				if n < w.config.BatchSize {
					break
				}
			}
		}
	}
}

// RelayBatch publishes up to one batch of records past the cursor and
// returns how many were published
func (w *NotificationRelay) RelayBatch(ctx context.Context) (int, error) {
	after, err := w.cursors.Get(ctx, w.config.Name)
	if err != nil {
		return 0, err
	}

	records, err := w.reader.Since(ctx, after, w.config.BatchSize)
	if err != nil {
		return 0, fmt.Errorf("failed to read journal after %d: %w", after, err)
	}

	published := 0
	defer func() {
		if published > 0 && w.metrics != nil {
			w.metrics.Published(ctx, w.config.Name, published)
		}
	}()

	for _, rec := range records {
		if rec.Seq != after+1 {
			return published, fmt.Errorf("%w: expected seq %d, got %d", journal.ErrSequenceHole, after+1, rec.Seq)
		}

		result := w.retrier.Do(ctx, func(ctx context.Context) error {
			return w.publisher.Publish(ctx, rec)
		}, func(attempt int, err error, next time.Duration) {
			w.log.Warn("Retrying notification",
				zap.Uint64("seq", rec.Seq),
				zap.Int("attempt", attempt),
				zap.Duration("backoff", next),
				zap.Error(err),
			)
		})
		if result.Err != nil {
			cause := result.LastError
			if cause == nil {
				cause = result.Err
			}
			return published, fmt.Errorf("failed to publish record %d after %d attempts: %w", rec.Seq, result.Attempts, cause)
		}

		if err := w.cursors.Advance(ctx, w.config.Name, rec.Seq); err != nil {
			return published, err
		}
		after = rec.Seq
		published++
	}

	if published > 0 {
		w.log.Debug("Relayed notifications", zap.Int("count", published), zap.Uint64("cursor", after))
	}
	return published, nil
}
