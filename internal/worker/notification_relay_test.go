package worker

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Samuel1505/Event-Ticketing/internal/domain"
	"github.com/Samuel1505/Event-Ticketing/internal/journal"
	"github.com/Samuel1505/Event-Ticketing/internal/repository"
	"github.com/Samuel1505/Event-Ticketing/pkg/retry"
)

// recordingPublisher remembers what it published and can fail on demand
type recordingPublisher struct {
	mu        sync.Mutex
	published []uint64
	failSeq   uint64
	failures  int
}

func (p *recordingPublisher) Publish(ctx context.Context, rec *domain.Record) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if rec.Seq == p.failSeq && p.failures > 0 {
		p.failures--
		return errors.New("broker unavailable")
	}
	p.published = append(p.published, rec.Seq)
	return nil
}

func (p *recordingPublisher) Close() error { return nil }

func (p *recordingPublisher) seqs() []uint64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]uint64(nil), p.published...)
}

func fillJournal(t *testing.T, j *journal.Memory, n int) {
	t.Helper()
	now := time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC)
	require.NoError(t, j.Append(context.Background(), &domain.Record{
		Kind:    domain.RecordEventCreated,
		EventID: 1,
		Actor:   "0xowner",
		Title:   "pool party",
		Params: &domain.EventParams{
			Title: "pool party", StartTime: now.Add(time.Minute), EndTime: now.Add(time.Hour), Capacity: 100,
		},
		CommittedAt: now,
	}))
	for i := 1; i < n; i++ {
		require.NoError(t, j.Append(context.Background(), &domain.Record{
			Kind:        domain.RecordRegisterEvent,
			EventID:     1,
			Actor:       "0xaddress",
			TicketID:    uint64(i),
			CommittedAt: now.Add(time.Duration(i) * time.Second),
		}))
	}
}

func testConfig(batch int) *NotificationRelayConfig {
	return &NotificationRelayConfig{
		Name:         "kafka",
		PollInterval: 10 * time.Millisecond,
		BatchSize:    batch,
		Retry: &retry.Config{
			MaxRetries:      2,
			InitialInterval: time.Millisecond,
			MaxInterval:     2 * time.Millisecond,
			Multiplier:      2,
		},
	}
}

func TestDefaultNotificationRelayConfig(t *testing.T) {
	config := DefaultNotificationRelayConfig()
	assert.Equal(t, "kafka", config.Name)
	assert.Equal(t, 500*time.Millisecond, config.PollInterval)
	assert.Equal(t, 100, config.BatchSize)
	assert.NotNil(t, config.Retry)
}

func TestNewNotificationRelay_FillsDefaults(t *testing.T) {
	relay := NewNotificationRelay(nil, nil, nil, nil, &NotificationRelayConfig{Name: "x"})
	assert.Equal(t, 500*time.Millisecond, relay.config.PollInterval)
	assert.Equal(t, 100, relay.config.BatchSize)
	assert.False(t, relay.running)
}

func TestNotificationRelay_RelayBatch_InOrder(t *testing.T) {
	j := journal.NewMemory()
	fillJournal(t, j, 5)
	cursors := repository.NewMemoryCursorRepository()
	pub := &recordingPublisher{}
	relay := NewNotificationRelay(j, cursors, pub, nil, testConfig(3))
	ctx := context.Background()

	n, err := relay.RelayBatch(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	n, err = relay.RelayBatch(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	n, err = relay.RelayBatch(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, n)

	assert.Equal(t, []uint64{1, 2, 3, 4, 5}, pub.seqs())
	cursor, _ := cursors.Get(ctx, "kafka")
	assert.Equal(t, uint64(5), cursor)
}

func TestNotificationRelay_RetriesTransientFailure(t *testing.T) {
	j := journal.NewMemory()
	fillJournal(t, j, 3)
	pub := &recordingPublisher{failSeq: 2, failures: 2}
	relay := NewNotificationRelay(j, repository.NewMemoryCursorRepository(), pub, nil, testConfig(10))

	n, err := relay.RelayBatch(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, n)
	assert.Equal(t, []uint64{1, 2, 3}, pub.seqs())
}

func TestNotificationRelay_StallsOnPersistentFailure(t *testing.T) {
	j := journal.NewMemory()
	fillJournal(t, j, 4)
	cursors := repository.NewMemoryCursorRepository()
	pub := &recordingPublisher{failSeq: 3, failures: 100}
	relay := NewNotificationRelay(j, cursors, pub, nil, testConfig(10))
	ctx := context.Background()

	n, err := relay.RelayBatch(ctx)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "record 3")
	assert.Equal(t, 2, n)

	// nothing after the failed record is published
	assert.Equal(t, []uint64{1, 2}, pub.seqs())
	cursor, _ := cursors.Get(ctx, "kafka")
	assert.Equal(t, uint64(2), cursor)

	pub.mu.Lock()
	pub.failures = 0
	pub.mu.Unlock()

	n, err = relay.RelayBatch(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Equal(t, []uint64{1, 2, 3, 4}, pub.seqs())
}

func TestNotificationRelay_ResumesFromCursor(t *testing.T) {
	j := journal.NewMemory()
	fillJournal(t, j, 4)
	cursors := repository.NewMemoryCursorRepository()
	require.NoError(t, cursors.Advance(context.Background(), "kafka", 2))

	pub := &recordingPublisher{}
	relay := NewNotificationRelay(j, cursors, pub, nil, testConfig(10))

	_, err := relay.RelayBatch(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []uint64{3, 4}, pub.seqs())
}

func TestNotificationRelay_StartStop(t *testing.T) {
	j := journal.NewMemory()
	fillJournal(t, j, 5)
	pub := &recordingPublisher{}
	relay := NewNotificationRelay(j, repository.NewMemoryCursorRepository(), pub, nil, testConfig(2))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	require.NoError(t, relay.Start(ctx))
	assert.Error(t, relay.Start(ctx))

	assert.Eventually(t, func() bool {
		return len(pub.seqs()) == 5
	}, 2*time.Second, 10*time.Millisecond)

	relay.Stop()
	relay.Stop()
	assert.Equal(t, []uint64{1, 2, 3, 4, 5}, pub.seqs())
}

// downPublisher fails every publish and signals its first attempt
type downPublisher struct {
	once      sync.Once
	attempted chan struct{}
}

func (p *downPublisher) Publish(ctx context.Context, rec *domain.Record) error {
	p.once.Do(func() { close(p.attempted) })
	return errors.New("broker unavailable")
}

func (p *downPublisher) Close() error { return nil }

func TestNotificationRelay_StopInterruptsBackoff(t *testing.T) {
	j := journal.NewMemory()
	fillJournal(t, j, 1)
	pub := &downPublisher{attempted: make(chan struct{})}
	cursors := repository.NewMemoryCursorRepository()
	relay := NewNotificationRelay(j, cursors, pub, nil, &NotificationRelayConfig{
		Name:         "kafka",
		PollInterval: 10 * time.Millisecond,
		BatchSize:    10,
		Retry:        &retry.Config{MaxRetries: 10, InitialInterval: time.Minute, MaxInterval: time.Minute},
	})

	require.NoError(t, relay.Start(context.Background()))
	<-pub.attempted

	stopped := make(chan struct{})
	go func() {
		relay.Stop()
		close(stopped)
	}()

	select {
	case <-stopped:
	case <-time.After(2 * time.Second):
		t.Fatal("Stop waited out the publish backoff")
	}

	after, err := cursors.Get(context.Background(), "kafka")
	require.NoError(t, err)
	assert.Equal(t, uint64(0), after)
}
