package repository

import (
	"context"
	"os"
	"strconv"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Samuel1505/Event-Ticketing/internal/domain"
	"github.com/Samuel1505/Event-Ticketing/internal/journal"
	"github.com/Samuel1505/Event-Ticketing/internal/repository/migrations"
	"github.com/Samuel1505/Event-Ticketing/pkg/database"
	"github.com/Samuel1505/Event-Ticketing/pkg/retry"
)

// newTestPool connects to TEST_DATABASE_* and resets the ledger tables
func newTestPool(t *testing.T) *pgxpool.Pool {
	t.Helper()
	host := os.Getenv("TEST_DATABASE_HOST")
	if host == "" {
		t.Skip("TEST_DATABASE_HOST not set")
	}

	cfg := database.DefaultPostgresConfig()
	cfg.Host = host
	if port, err := strconv.Atoi(os.Getenv("TEST_DATABASE_PORT")); err == nil {
		cfg.Port = port
	}
	if user := os.Getenv("TEST_DATABASE_USER"); user != "" {
		cfg.User = user
	}
	cfg.Password = os.Getenv("TEST_DATABASE_PASSWORD")
	if name := os.Getenv("TEST_DATABASE_NAME"); name != "" {
		cfg.Database = name
	}
	cfg.Connect = &retry.Config{MaxRetries: 0}

	ctx := context.Background()
	db, err := database.NewPostgres(ctx, cfg)
	require.NoError(t, err)
	t.Cleanup(db.Close)

	require.NoError(t, migrations.Apply(ctx, db.Pool()))
	_, err = db.Pool().Exec(ctx, `TRUNCATE ledger_records, relay_cursors`)
	require.NoError(t, err)
	return db.Pool()
}

func sampleRecords(now time.Time) []*domain.Record {
	now = now.UTC().Truncate(time.Microsecond)
	return []*domain.Record{
		{
			Kind:    domain.RecordEventCreated,
			EventID: 1,
			Actor:   "0xowner",
			Title:   "pool party",
			Params: &domain.EventParams{
				Title:     "pool party",
				StartTime: now.Add(30 * time.Second),
				EndTime:   now.Add(24 * time.Hour),
				Fee:       1,
				IsPaid:    true,
				Capacity:  20,
			},
			CommittedAt: now,
		},
		{Kind: domain.RecordRegisterEvent, EventID: 1, Actor: "0xaddress1", TicketID: 1, Payment: 1, CommittedAt: now.Add(time.Second)},
		{Kind: domain.RecordVerifiedTicket, EventID: 1, Actor: "0xowner", TicketID: 1, CommittedAt: now.Add(2 * time.Second)},
		{Kind: domain.RecordTicketTransferred, EventID: 1, Actor: "0xaddress1", TicketID: 1, Recipient: "0xaddress2", CommittedAt: now.Add(3 * time.Second)},
	}
}

func TestPostgresRecordRepository_AppendAndSince(t *testing.T) {
	pool := newTestPool(t)
	repo := NewPostgresRecordRepository(pool)
	ctx := context.Background()

	seq, hash, err := repo.Head(ctx)
	require.NoError(t, err)
	assert.Equal(t, uint64(0), seq)
	assert.Equal(t, journal.GenesisHash, hash)

	records := sampleRecords(time.Now())
	for _, rec := range records {
		require.NoError(t, repo.Append(ctx, rec))
	}
	assert.Equal(t, uint64(4), records[3].Seq)

	loaded, err := repo.Since(ctx, 0, 0)
	require.NoError(t, err)
	require.Len(t, loaded, 4)
	require.NoError(t, journal.Verify(loaded, 0, journal.GenesisHash))

	assert.Equal(t, records[0].Params.Capacity, loaded[0].Params.Capacity)
	assert.Equal(t, "0xaddress2", loaded[3].Recipient)

	page, err := repo.Since(ctx, 1, 2)
	require.NoError(t, err)
	require.Len(t, page, 2)
	assert.Equal(t, uint64(2), page[0].Seq)

	seq, hash, err = repo.Head(ctx)
	require.NoError(t, err)
	assert.Equal(t, uint64(4), seq)
	assert.Equal(t, records[3].Hash, hash)
}

func TestPostgresRecordRepository_Find(t *testing.T) {
	pool := newTestPool(t)
	repo := NewPostgresRecordRepository(pool)
	ctx := context.Background()

	records := sampleRecords(time.Now())
	for _, rec := range records {
		require.NoError(t, repo.Append(ctx, rec))
	}

	lookup := *records[1]
	lookup.Seq, lookup.PrevHash, lookup.Hash = 0, "", ""
	found, ok, err := repo.Find(ctx, &lookup)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, records[1].Seq, found.Seq)
	assert.Equal(t, records[1].Hash, found.Hash)

	lookup.TicketID = 9
	_, ok, err = repo.Find(ctx, &lookup)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestPostgresRecordRepository_RejectsUnknownKind(t *testing.T) {
	pool := newTestPool(t)
	repo := NewPostgresRecordRepository(pool)

	err := repo.Append(context.Background(), &domain.Record{Kind: "Bogus", CommittedAt: time.Now()})
	assert.ErrorIs(t, err, journal.ErrInvalidKind)
}

func TestPostgresCursorRepository(t *testing.T) {
	pool := newTestPool(t)
	repo := NewPostgresCursorRepository(pool)
	ctx := context.Background()

	seq, err := repo.Get(ctx, "kafka")
	require.NoError(t, err)
	assert.Equal(t, uint64(0), seq)

	require.NoError(t, repo.Advance(ctx, "kafka", 5))
	require.NoError(t, repo.Advance(ctx, "kafka", 3))

	seq, err = repo.Get(ctx, "kafka")
	require.NoError(t, err)
	assert.Equal(t, uint64(5), seq)
}
