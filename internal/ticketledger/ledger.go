// Package ticketledger holds the per-event ticket registry: minting,
// ownership, transfer and the one-way verification flag.
//
// A Ledger is not safe for concurrent use. The event registry owns each
// ledger and serializes access through the owning event's lock.
package ticketledger

import (
	"strings"
	"time"
	"unicode"

	"github.com/Samuel1505/Event-Ticketing/internal/domain"
)

// Ledger is the ticket registry of a single event
type Ledger struct {
	eventID  uint64
	name     string
	symbol   string
	lastID   uint64
	tickets  map[uint64]*domain.Ticket
	balances map[string]uint64
}

// New creates an empty ledger for the event. Name and symbol are derived
// from the event title and never change.
func New(eventID uint64, title string) *Ledger {
	return &Ledger{
		eventID:  eventID,
		name:     title,
		symbol:   deriveSymbol(title),
		tickets:  make(map[uint64]*domain.Ticket),
		balances: make(map[string]uint64),
	}
}

// EventID returns the owning event's id
func (l *Ledger) EventID() uint64 { return l.eventID }

// Name returns the ledger name (the event title)
func (l *Ledger) Name() string { return l.name }

// Symbol returns the ledger symbol
func (l *Ledger) Symbol() string { return l.symbol }

// TotalSupply returns the number of tickets minted so far
func (l *Ledger) TotalSupply() uint64 { return l.lastID }

// NextTicketID returns the id the next Mint will assign
func (l *Ledger) NextTicketID() uint64 { return l.lastID + 1 }

// Mint issues the next sequential ticket to holder
func (l *Ledger) Mint(holder string, at time.Time) uint64 {
	l.lastID++
	l.tickets[l.lastID] = &domain.Ticket{
		ID:         l.lastID,
		EventID:    l.eventID,
		Holder:     holder,
		Registrant: holder,
		MintedAt:   at,
	}
	l.balances[holder]++
	return l.lastID
}

// Ticket returns a copy of the ticket
func (l *Ledger) Ticket(ticketID uint64) (domain.Ticket, error) {
	t, ok := l.tickets[ticketID]
	if !ok {
		return domain.Ticket{}, domain.Reject(domain.ErrNotFound, domain.ReasonTicketNotFound)
	}
	return *t, nil
}

// Exists reports whether ticketID has been minted
func (l *Ledger) Exists(ticketID uint64) bool {
	_, ok := l.tickets[ticketID]
	return ok
}

// OwnerOf returns the current holder of the ticket
func (l *Ledger) OwnerOf(ticketID uint64) (string, error) {
	t, ok := l.tickets[ticketID]
	if !ok {
		return "", domain.Reject(domain.ErrNotFound, domain.ReasonTicketNotFound)
	}
	return t.Holder, nil
}

// BalanceOf returns the number of tickets identity currently holds
func (l *Ledger) BalanceOf(identity string) uint64 {
	return l.balances[identity]
}

// IsVerified reports whether the ticket has been verified. Unknown tickets
// are reported as unverified.
func (l *Ledger) IsVerified(ticketID uint64) bool {
	t, ok := l.tickets[ticketID]
	return ok && t.Verified
}

// SetVerified marks the ticket verified. first is true only on the call
// that flipped the flag; later calls are no-ops.
func (l *Ledger) SetVerified(ticketID uint64) (first bool, err error) {
	t, ok := l.tickets[ticketID]
	if !ok {
		return false, domain.Reject(domain.ErrNotFound, domain.ReasonTicketNotFound)
	}
	if t.Verified {
		return false, nil
	}
	t.Verified = true
	return true, nil
}

// CheckTransfer validates a transfer without applying it
func (l *Ledger) CheckTransfer(from, to string, ticketID uint64) error {
	t, ok := l.tickets[ticketID]
	if !ok {
		return domain.Reject(domain.ErrNotFound, domain.ReasonTicketNotFound)
	}
	if t.Holder != from {
		return domain.Reject(domain.ErrUnauthorized, domain.ReasonOnlyHolder)
	}
	if to == "" || to == from {
		return domain.Reject(domain.ErrInvalidTransfer, domain.ReasonInvalidRecipient)
	}
	return nil
}

// Transfer moves the ticket from its current holder to another identity
func (l *Ledger) Transfer(from, to string, ticketID uint64) error {
	if err := l.CheckTransfer(from, to, ticketID); err != nil {
		return err
	}
	t := l.tickets[ticketID]
	t.Holder = to
	l.balances[from]--
	if l.balances[from] == 0 {
		delete(l.balances, from)
	}
	l.balances[to]++
	return nil
}

// deriveSymbol builds an upper-case ticker from the initials of the title's
// words, e.g. "pool party" -> "PP".
func deriveSymbol(title string) string {
	var b strings.Builder
	for _, word := range strings.FieldsFunc(title, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	}) {
		for _, r := range word {
			b.WriteRune(unicode.ToUpper(r))
			break
		}
	}
	if b.Len() == 0 {
		return "TKT"
	}
	return b.String()
}
