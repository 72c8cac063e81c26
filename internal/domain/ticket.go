package domain

import "time"

// Ticket is one attendee's claim to an event
type Ticket struct {
	ID         uint64
	EventID    uint64
	Holder     string
	Registrant string
	Verified   bool
	MintedAt   time.Time
}

// LedgerInfo describes an event's ticket ledger
type LedgerInfo struct {
	EventID     uint64
	Name        string
	Symbol      string
	TotalSupply uint64
}
