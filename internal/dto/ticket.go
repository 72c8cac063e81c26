package dto

import "github.com/Samuel1505/Event-Ticketing/internal/domain"

// RegisterRequest represents the request to register for an event
type RegisterRequest struct {
	Payment uint64 `json:"payment"`
}

// TransferTicketRequest represents the request to transfer a ticket
type TransferTicketRequest struct {
	Recipient string `json:"recipient"`
}

// Validate validates the TransferTicketRequest
func (r *TransferTicketRequest) Validate() (bool, string) {
	if r.Recipient == "" {
		return false, "recipient is required"
	}
	return true, ""
}

// TicketResponse represents the response for a ticket
type TicketResponse struct {
	ID         uint64 `json:"id"`
	EventID    uint64 `json:"event_id"`
	Holder     string `json:"holder"`
	Registrant string `json:"registrant"`
	Verified   bool   `json:"verified"`
	MintedAt   int64  `json:"minted_at"`
}

// FromTicket converts a domain ticket to a response
func FromTicket(t *domain.Ticket) *TicketResponse {
	return &TicketResponse{
		ID:         t.ID,
		EventID:    t.EventID,
		Holder:     t.Holder,
		Registrant: t.Registrant,
		Verified:   t.Verified,
		MintedAt:   t.MintedAt.Unix(),
	}
}

// VerifyTicketResponse represents the outcome of a door verification
type VerifyTicketResponse struct {
	Ticket *TicketResponse `json:"ticket"`
	// AlreadyVerified is true when the ticket was verified by an earlier call
	AlreadyVerified bool `json:"already_verified"`
}

// TicketVerifiedResponse represents the verification flag of a ticket
type TicketVerifiedResponse struct {
	EventID  uint64 `json:"event_id"`
	TicketID uint64 `json:"ticket_id"`
	Verified bool   `json:"verified"`
}

// LedgerResponse represents the metadata of an event's ticket ledger
type LedgerResponse struct {
	EventID     uint64 `json:"event_id"`
	Name        string `json:"name"`
	Symbol      string `json:"symbol"`
	TotalSupply uint64 `json:"total_supply"`
}

// FromLedgerInfo converts ledger metadata to a response
func FromLedgerInfo(info *domain.LedgerInfo) *LedgerResponse {
	return &LedgerResponse{
		EventID:     info.EventID,
		Name:        info.Name,
		Symbol:      info.Symbol,
		TotalSupply: info.TotalSupply,
	}
}

// BalanceResponse represents the ticket balance of an identity
type BalanceResponse struct {
	EventID  uint64 `json:"event_id"`
	Identity string `json:"identity"`
	Balance  uint64 `json:"balance"`
}
