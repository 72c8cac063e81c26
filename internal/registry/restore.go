package registry

import (
	"errors"
	"fmt"

	"github.com/Samuel1505/Event-Ticketing/internal/domain"
)

// ErrNotEmpty is returned when restoring into a registry that already holds events
var ErrNotEmpty = errors.New("registry already holds events")

// Restore rebuilds state from committed records in sequence order. Records
// are applied as facts: temporal rules are not re-checked because they held
// when the record was committed. Nothing is journaled.
func (r *Registry) Restore(records []*domain.Record) error {
	r.createMu.Lock()
	defer r.createMu.Unlock()
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.eventCount != 0 {
		return ErrNotEmpty
	}

	for _, rec := range records {
		if err := r.restoreOne(rec); err != nil {
			return fmt.Errorf("failed to restore record %d: %w", rec.Seq, err)
		}
	}
	return nil
}

// restoreOne must be called with r.mu held
func (r *Registry) restoreOne(rec *domain.Record) error {
	if rec.Kind == domain.RecordEventCreated {
		return r.applyCreate(rec)
	}

	e, ok := r.events[rec.EventID]
	if !ok {
		return domain.Reject(domain.ErrNotFound, domain.ReasonEventNotFound)
	}
	e.mu.Lock()
	defer e.mu.Unlock()

	switch rec.Kind {
	case domain.RecordRegisterEvent:
		return applyRegister(e, rec)
	case domain.RecordVerifiedTicket:
		return applyVerify(e, rec)
	case domain.RecordTicketTransferred:
		return e.tickets.Transfer(rec.Actor, rec.Recipient, rec.TicketID)
	default:
		return fmt.Errorf("unknown record kind %q", rec.Kind)
	}
}
