package registry

import "github.com/Samuel1505/Event-Ticketing/internal/domain"

// TicketInstance is a concurrency-safe, read-only handle on one event's
// ticket ledger. Each call observes a committed state.
type TicketInstance struct {
	e *entry
}

func (t *TicketInstance) EventID() uint64 {
	return t.e.tickets.EventID()
}

func (t *TicketInstance) Name() string {
	return t.e.tickets.Name()
}

func (t *TicketInstance) Symbol() string {
	return t.e.tickets.Symbol()
}

func (t *TicketInstance) TotalSupply() uint64 {
	t.e.mu.Lock()
	defer t.e.mu.Unlock()
	return t.e.tickets.TotalSupply()
}

func (t *TicketInstance) BalanceOf(identity string) uint64 {
	t.e.mu.Lock()
	defer t.e.mu.Unlock()
	return t.e.tickets.BalanceOf(identity)
}

func (t *TicketInstance) OwnerOf(ticketID uint64) (string, error) {
	t.e.mu.Lock()
	defer t.e.mu.Unlock()
	return t.e.tickets.OwnerOf(ticketID)
}

func (t *TicketInstance) Ticket(ticketID uint64) (domain.Ticket, error) {
	t.e.mu.Lock()
	defer t.e.mu.Unlock()
	return t.e.tickets.Ticket(ticketID)
}
