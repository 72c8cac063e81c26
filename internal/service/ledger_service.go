package service

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/Samuel1505/Event-Ticketing/internal/domain"
	"github.com/Samuel1505/Event-Ticketing/internal/registry"
	"github.com/Samuel1505/Event-Ticketing/pkg/logger"
	"github.com/Samuel1505/Event-Ticketing/pkg/telemetry"
)

const (
	opCreateEvent = "create_event"
	opRegister    = "register"
	opVerify      = "verify"
	opTransfer    = "transfer"
)

// ledgerService implements LedgerService on top of the event registry
type ledgerService struct {
	registry *registry.Registry
	metrics  *telemetry.LedgerMetrics
	log      *logger.Logger
}

// NewLedgerService creates a new LedgerService
func NewLedgerService(reg *registry.Registry, metrics *telemetry.LedgerMetrics, log *logger.Logger) LedgerService {
	if log == nil {
		log = logger.Nop()
	}
	return &ledgerService{
		registry: reg,
		metrics:  metrics,
		log:      log,
	}
}

// CreateEvent creates a new event
func (s *ledgerService) CreateEvent(ctx context.Context, organizer string, params domain.EventParams) (*domain.Event, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.ledger.create_event")
	defer span.End()

	id, err := s.registry.CreateEvent(ctx, organizer, params)
	if err != nil {
		s.rejected(ctx, opCreateEvent, err)
		return nil, err
	}
	span.SetAttributes(attribute.Int64("ledger.event_id", int64(id)))
	s.count(ctx, opCreateEvent)

	s.log.InfoContext(ctx, "event created",
		zap.Uint64("event_id", id),
		zap.String("organizer", organizer),
		zap.Uint64("capacity", params.Capacity),
	)
	return s.GetEvent(ctx, id)
}

// RegisterForEvent registers caller and returns the minted ticket
func (s *ledgerService) RegisterForEvent(ctx context.Context, caller string, eventID, payment uint64) (*domain.Ticket, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.ledger.register")
	defer span.End()
	span.SetAttributes(attribute.Int64("ledger.event_id", int64(eventID)))

	ticketID, err := s.registry.RegisterForEvent(ctx, caller, eventID, payment)
	if err != nil {
		s.rejected(ctx, opRegister, err)
		return nil, err
	}
	span.SetAttributes(attribute.Int64("ledger.ticket_id", int64(ticketID)))
	s.count(ctx, opRegister)

	s.log.InfoContext(ctx, "ticket minted",
		zap.Uint64("event_id", eventID),
		zap.Uint64("ticket_id", ticketID),
		zap.String("registrant", caller),
	)
	return s.GetTicket(ctx, eventID, ticketID)
}

// VerifyAttendance verifies a ticket at the door
func (s *ledgerService) VerifyAttendance(ctx context.Context, caller string, eventID, ticketID uint64) (*domain.Ticket, bool, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.ledger.verify")
	defer span.End()
	span.SetAttributes(
		attribute.Int64("ledger.event_id", int64(eventID)),
		attribute.Int64("ledger.ticket_id", int64(ticketID)),
	)

	first, err := s.registry.VerifyAttendance(ctx, caller, eventID, ticketID)
	if err != nil {
		s.rejected(ctx, opVerify, err)
		return nil, false, err
	}
	if first {
		s.count(ctx, opVerify)
		s.log.InfoContext(ctx, "ticket verified",
			zap.Uint64("event_id", eventID),
			zap.Uint64("ticket_id", ticketID),
		)
	}

	ticket, err := s.GetTicket(ctx, eventID, ticketID)
	if err != nil {
		return nil, false, err
	}
	return ticket, first, nil
}

// TransferTicket moves a ticket to recipient
func (s *ledgerService) TransferTicket(ctx context.Context, caller string, eventID, ticketID uint64, recipient string) (*domain.Ticket, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.ledger.transfer")
	defer span.End()
	span.SetAttributes(
		attribute.Int64("ledger.event_id", int64(eventID)),
		attribute.Int64("ledger.ticket_id", int64(ticketID)),
	)

	if err := s.registry.TransferTicket(ctx, caller, eventID, ticketID, recipient); err != nil {
		s.rejected(ctx, opTransfer, err)
		return nil, err
	}
	s.count(ctx, opTransfer)

	s.log.InfoContext(ctx, "ticket transferred",
		zap.Uint64("event_id", eventID),
		zap.Uint64("ticket_id", ticketID),
		zap.String("from", caller),
		zap.String("to", recipient),
	)
	return s.GetTicket(ctx, eventID, ticketID)
}

// EventCount returns the id of the most recently created event
func (s *ledgerService) EventCount(ctx context.Context) uint64 {
	return s.registry.EventCount()
}

// GetEvent retrieves an event by id
func (s *ledgerService) GetEvent(ctx context.Context, eventID uint64) (*domain.Event, error) {
	ev, err := s.registry.Event(eventID)
	if err != nil {
		return nil, err
	}
	return &ev, nil
}

// ListEvents lists events with ids greater than afterID
func (s *ledgerService) ListEvents(ctx context.Context, afterID uint64, limit int) ([]*domain.Event, error) {
	snapshots := s.registry.Events(afterID, limit)
	events := make([]*domain.Event, 0, len(snapshots))
	for i := range snapshots {
		events = append(events, &snapshots[i])
	}
	return events, nil
}

// GetHasRegistered reports whether identity registered for the event
func (s *ledgerService) GetHasRegistered(ctx context.Context, eventID uint64, identity string) (bool, error) {
	return s.registry.GetHasRegistered(eventID, identity)
}

// IsVerifiedTicket reports whether the ticket has been verified
func (s *ledgerService) IsVerifiedTicket(ctx context.Context, eventID, ticketID uint64) (bool, error) {
	return s.registry.IsVerifiedTicket(eventID, ticketID)
}

// GetTicket retrieves a ticket of an event
func (s *ledgerService) GetTicket(ctx context.Context, eventID, ticketID uint64) (*domain.Ticket, error) {
	instance, err := s.registry.TicketInstance(eventID)
	if err != nil {
		return nil, err
	}
	ticket, err := instance.Ticket(ticketID)
	if err != nil {
		return nil, err
	}
	return &ticket, nil
}

// GetLedger retrieves the ticket ledger metadata of an event
func (s *ledgerService) GetLedger(ctx context.Context, eventID uint64) (*domain.LedgerInfo, error) {
	instance, err := s.registry.TicketInstance(eventID)
	if err != nil {
		return nil, err
	}
	return &domain.LedgerInfo{
		EventID:     instance.EventID(),
		Name:        instance.Name(),
		Symbol:      instance.Symbol(),
		TotalSupply: instance.TotalSupply(),
	}, nil
}

// BalanceOf returns the number of tickets identity holds for the event
func (s *ledgerService) BalanceOf(ctx context.Context, eventID uint64, identity string) (uint64, error) {
	instance, err := s.registry.TicketInstance(eventID)
	if err != nil {
		return 0, err
	}
	return instance.BalanceOf(identity), nil
}

func (s *ledgerService) count(ctx context.Context, op string) {
	if s.metrics == nil {
		return
	}
	switch op {
	case opCreateEvent:
		s.metrics.EventCreated(ctx)
	case opRegister:
		s.metrics.Registered(ctx)
	case opVerify:
		s.metrics.Verified(ctx)
	case opTransfer:
		s.metrics.Transferred(ctx)
	}
}

// rejected records a failed operation. Ledger rejections are expected
// traffic; anything else is an infrastructure failure.
func (s *ledgerService) rejected(ctx context.Context, op string, err error) {
	telemetry.SetSpanError(ctx, err)

	kind := domain.KindOf(err)
	if kind == nil {
		s.log.ErrorContext(ctx, "ledger operation failed",
			zap.String("operation", op),
			zap.Error(err),
		)
		return
	}

	if s.metrics != nil {
		s.metrics.Rejected(ctx, op, domain.KindName(kind))
	}
	s.log.Debug("ledger operation rejected",
		zap.String("operation", op),
		zap.String("kind", domain.KindName(kind)),
		zap.String("reason", err.Error()),
	)
}
