package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/Samuel1505/Event-Ticketing/internal/clock"
	"github.com/Samuel1505/Event-Ticketing/internal/domain"
	"github.com/Samuel1505/Event-Ticketing/internal/journal"
	"github.com/Samuel1505/Event-Ticketing/internal/registry"
	"github.com/Samuel1505/Event-Ticketing/pkg/logger"
	"github.com/Samuel1505/Event-Ticketing/pkg/telemetry"
)

const (
	organizer = "0xowner"
	alice     = "0xaddress1"
	bob       = "0xaddress2"
)

var genesis = time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC)

type serviceFixture struct {
	svc     LedgerService
	clock   *clock.Manual
	journal *journal.Memory
	reader  *sdkmetric.ManualReader
	logs    *observer.ObservedLogs
}

func newServiceFixture(t *testing.T) *serviceFixture {
	t.Helper()
	clk := clock.NewManual(genesis)
	j := journal.NewMemory()

	reader := sdkmetric.NewManualReader()
	metrics, err := telemetry.NewLedgerMetrics(sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader)))
	require.NoError(t, err)

	core, logs := observer.New(zapcore.DebugLevel)
	log := &logger.Logger{Logger: zap.New(core)}

	return &serviceFixture{
		svc:     NewLedgerService(registry.New(clk, j), metrics, log),
		clock:   clk,
		journal: j,
		reader:  reader,
		logs:    logs,
	}
}

// counters sums every int64 counter by name, and rejections by kind
func (f *serviceFixture) counters(t *testing.T) (map[string]int64, map[string]int64) {
	t.Helper()
	var rm metricdata.ResourceMetrics
	require.NoError(t, f.reader.Collect(context.Background(), &rm))

	totals := make(map[string]int64)
	byKind := make(map[string]int64)
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			sum, ok := m.Data.(metricdata.Sum[int64])
			if !ok {
				continue
			}
			for _, dp := range sum.DataPoints {
				totals[m.Name] += dp.Value
				if kind, ok := dp.Attributes.Value("kind"); ok {
					byKind[kind.AsString()] += dp.Value
				}
			}
		}
	}
	return totals, byKind
}

func poolParty(now time.Time) domain.EventParams {
	return domain.EventParams{
		Title:       "pool party",
		Description: "Matured minds only",
		StartTime:   now.Add(30 * time.Second),
		EndTime:     now.Add(24 * time.Hour),
		Fee:         1,
		IsPaid:      true,
		Capacity:    20,
	}
}

func TestLedgerService_Lifecycle(t *testing.T) {
	f := newServiceFixture(t)
	ctx := context.Background()

	ev, err := f.svc.CreateEvent(ctx, organizer, poolParty(genesis))
	require.NoError(t, err)
	assert.Equal(t, uint64(1), ev.ID)
	assert.Equal(t, organizer, ev.Organizer)
	assert.Equal(t, uint64(1), f.svc.EventCount(ctx))

	ticket, err := f.svc.RegisterForEvent(ctx, alice, ev.ID, 1)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), ticket.ID)
	assert.Equal(t, alice, ticket.Holder)

	registered, err := f.svc.GetHasRegistered(ctx, ev.ID, alice)
	require.NoError(t, err)
	assert.True(t, registered)

	ticket, first, err := f.svc.VerifyAttendance(ctx, organizer, ev.ID, 1)
	require.NoError(t, err)
	assert.True(t, first)
	assert.True(t, ticket.Verified)

	_, first, err = f.svc.VerifyAttendance(ctx, organizer, ev.ID, 1)
	require.NoError(t, err)
	assert.False(t, first)

	ticket, err = f.svc.TransferTicket(ctx, alice, ev.ID, 1, bob)
	require.NoError(t, err)
	assert.Equal(t, bob, ticket.Holder)
	assert.Equal(t, alice, ticket.Registrant)

	balance, err := f.svc.BalanceOf(ctx, ev.ID, bob)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), balance)

	info, err := f.svc.GetLedger(ctx, ev.ID)
	require.NoError(t, err)
	assert.Equal(t, "pool party", info.Name)
	assert.Equal(t, uint64(1), info.TotalSupply)

	got, err := f.svc.GetEvent(ctx, ev.ID)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), got.RegisteredCount)
	assert.Equal(t, uint64(1), got.VerifiedGuestCount)

	// create, register, verify once, transfer
	assert.Equal(t, 4, f.journal.Len())

	totals, _ := f.counters(t)
	assert.Equal(t, int64(1), totals["ledger.events.created"])
	assert.Equal(t, int64(1), totals["ledger.registrations"])
	assert.Equal(t, int64(1), totals["ledger.verifications"])
	assert.Equal(t, int64(1), totals["ledger.transfers"])
}

func TestLedgerService_RejectionsCountedByKind(t *testing.T) {
	f := newServiceFixture(t)
	ctx := context.Background()

	ev, err := f.svc.CreateEvent(ctx, organizer, poolParty(genesis))
	require.NoError(t, err)

	_, err = f.svc.RegisterForEvent(ctx, alice, ev.ID, 0)
	assert.True(t, errors.Is(err, domain.ErrPaymentError))

	_, err = f.svc.RegisterForEvent(ctx, alice, 42, 1)
	assert.True(t, errors.Is(err, domain.ErrNotFound))

	_, _, err = f.svc.VerifyAttendance(ctx, alice, ev.ID, 1)
	assert.True(t, errors.Is(err, domain.ErrUnauthorized))

	f.clock.Advance(25 * time.Hour)
	_, err = f.svc.RegisterForEvent(ctx, bob, ev.ID, 1)
	assert.True(t, errors.Is(err, domain.ErrExpired))

	_, byKind := f.counters(t)
	assert.Equal(t, int64(1), byKind["PaymentError"])
	assert.Equal(t, int64(1), byKind["NotFound"])
	assert.Equal(t, int64(1), byKind["Unauthorized"])
	assert.Equal(t, int64(1), byKind["Expired"])

	assert.Equal(t, 1, f.journal.Len())
	assert.Equal(t, 4, f.logs.FilterMessage("ledger operation rejected").Len())
}

type brokenWriter struct{}

func (brokenWriter) Append(ctx context.Context, rec *domain.Record) error {
	return errors.New("connection reset")
}

func TestLedgerService_InfrastructureFailureLogged(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	svc := NewLedgerService(
		registry.New(clock.NewFixed(genesis), brokenWriter{}),
		nil,
		&logger.Logger{Logger: zap.New(core)},
	)

	_, err := svc.CreateEvent(context.Background(), organizer, poolParty(genesis))
	require.Error(t, err)
	assert.Nil(t, domain.KindOf(err))
	assert.Equal(t, uint64(0), svc.EventCount(context.Background()))

	entries := logs.FilterMessage("ledger operation failed").All()
	require.Len(t, entries, 1)
	assert.Equal(t, zapcore.ErrorLevel, entries[0].Level)
}

func TestLedgerService_ListEvents(t *testing.T) {
	f := newServiceFixture(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_, err := f.svc.CreateEvent(ctx, organizer, poolParty(genesis))
		require.NoError(t, err)
	}

	events, err := f.svc.ListEvents(ctx, 1, 10)
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, uint64(2), events[0].ID)
	assert.Equal(t, uint64(3), events[1].ID)

	events, err = f.svc.ListEvents(ctx, 0, 1)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, uint64(1), events[0].ID)
}

func TestLedgerService_UnknownTicket(t *testing.T) {
	f := newServiceFixture(t)
	ctx := context.Background()

	ev, err := f.svc.CreateEvent(ctx, organizer, poolParty(genesis))
	require.NoError(t, err)

	_, err = f.svc.GetTicket(ctx, ev.ID, 7)
	assert.True(t, errors.Is(err, domain.ErrNotFound))

	verified, err := f.svc.IsVerifiedTicket(ctx, ev.ID, 7)
	require.NoError(t, err)
	assert.False(t, verified)

	_, err = f.svc.GetLedger(ctx, 9)
	assert.True(t, errors.Is(err, domain.ErrNotFound))
}
