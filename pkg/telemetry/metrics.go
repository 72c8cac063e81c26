package telemetry

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// LedgerMetrics counts ledger operations
type LedgerMetrics struct {
	eventsCreated metric.Int64Counter
	registrations metric.Int64Counter
	verifications metric.Int64Counter
	transfers     metric.Int64Counter
	rejections    metric.Int64Counter
	published     metric.Int64Counter
}

// NewLedgerMetrics registers the ledger counters on mp. A nil mp uses the
// global meter provider.
func NewLedgerMetrics(mp metric.MeterProvider) (*LedgerMetrics, error) {
	if mp == nil {
		mp = otel.GetMeterProvider()
	}
	meter := mp.Meter("ticket-ledger")

	m := &LedgerMetrics{}
	var err error
	if m.eventsCreated, err = meter.Int64Counter("ledger.events.created",
		metric.WithDescription("Events created")); err != nil {
		return nil, err
	}
	if m.registrations, err = meter.Int64Counter("ledger.registrations",
		metric.WithDescription("Tickets minted by registration")); err != nil {
		return nil, err
	}
	if m.verifications, err = meter.Int64Counter("ledger.verifications",
		metric.WithDescription("Tickets verified at the door")); err != nil {
		return nil, err
	}
	if m.transfers, err = meter.Int64Counter("ledger.transfers",
		metric.WithDescription("Tickets moved between holders")); err != nil {
		return nil, err
	}
	if m.rejections, err = meter.Int64Counter("ledger.rejections",
		metric.WithDescription("Operations rejected by the ledger")); err != nil {
		return nil, err
	}
	if m.published, err = meter.Int64Counter("ledger.notifications.published",
		metric.WithDescription("Notifications relayed to the broker")); err != nil {
		return nil, err
	}
	return m, nil
}

func (m *LedgerMetrics) EventCreated(ctx context.Context) {
	m.eventsCreated.Add(ctx, 1)
}

func (m *LedgerMetrics) Registered(ctx context.Context) {
	m.registrations.Add(ctx, 1)
}

func (m *LedgerMetrics) Verified(ctx context.Context) {
	m.verifications.Add(ctx, 1)
}

func (m *LedgerMetrics) Transferred(ctx context.Context) {
	m.transfers.Add(ctx, 1)
}

// Rejected counts a rejection of the given kind for operation op
func (m *LedgerMetrics) Rejected(ctx context.Context, op, kind string) {
	m.rejections.Add(ctx, 1, metric.WithAttributes(
		attribute.String("operation", op),
		attribute.String("kind", kind),
	))
}

// Published counts notifications relayed by relay
func (m *LedgerMetrics) Published(ctx context.Context, relay string, n int) {
	m.published.Add(ctx, int64(n), metric.WithAttributes(attribute.String("relay", relay)))
}
