package service

import (
	"context"

	"github.com/Samuel1505/Event-Ticketing/internal/domain"
)

// LedgerService defines the interface for ledger operations
type LedgerService interface {
	// CreateEvent creates a new event organized by organizer
	CreateEvent(ctx context.Context, organizer string, params domain.EventParams) (*domain.Event, error)

	// RegisterForEvent mints a ticket for caller and returns it
	RegisterForEvent(ctx context.Context, caller string, eventID, payment uint64) (*domain.Ticket, error)

	// VerifyAttendance marks a ticket as verified. first is false when the
	// ticket had already been verified.
	VerifyAttendance(ctx context.Context, caller string, eventID, ticketID uint64) (ticket *domain.Ticket, first bool, err error)

	// TransferTicket moves a ticket from caller to recipient
	TransferTicket(ctx context.Context, caller string, eventID, ticketID uint64, recipient string) (*domain.Ticket, error)

	// EventCount returns the id of the most recently created event
	EventCount(ctx context.Context) uint64

	// GetEvent retrieves an event by id
	GetEvent(ctx context.Context, eventID uint64) (*domain.Event, error)

	// ListEvents lists events with ids greater than afterID
	ListEvents(ctx context.Context, afterID uint64, limit int) ([]*domain.Event, error)

	// GetHasRegistered reports whether identity registered for the event
	GetHasRegistered(ctx context.Context, eventID uint64, identity string) (bool, error)

	// IsVerifiedTicket reports whether the ticket has been verified
	IsVerifiedTicket(ctx context.Context, eventID, ticketID uint64) (bool, error)

	// GetTicket retrieves a ticket of an event
	GetTicket(ctx context.Context, eventID, ticketID uint64) (*domain.Ticket, error)

	// GetLedger retrieves the ticket ledger metadata of an event
	GetLedger(ctx context.Context, eventID uint64) (*domain.LedgerInfo, error)

	// BalanceOf returns the number of tickets identity holds for the event
	BalanceOf(ctx context.Context, eventID uint64, identity string) (uint64, error)
}

// NotificationService defines the interface for reading the notification feed
type NotificationService interface {
	// ListNotifications returns notifications with seq greater than afterSeq
	ListNotifications(ctx context.Context, afterSeq uint64, limit int) ([]domain.Notification, error)
}

// NotificationPublisher defines the interface for publishing committed records
type NotificationPublisher interface {
	// Publish publishes the notification of a committed record
	Publish(ctx context.Context, rec *domain.Record) error

	// Close closes the publisher
	Close() error
}
