package dto

import (
	"time"

	"github.com/Samuel1505/Event-Ticketing/internal/domain"
)

// CreateEventRequest represents the request to create a new event.
// Times are unix seconds.
type CreateEventRequest struct {
	Title       string `json:"title" binding:"max=255"`
	Description string `json:"description" binding:"max=2000"`
	StartTime   int64  `json:"start_time"`
	EndTime     int64  `json:"end_time"`
	Fee         uint64 `json:"fee"`
	IsPaid      bool   `json:"is_paid"`
	Capacity    uint64 `json:"capacity"`
}

// ToParams converts the request to ledger event parameters. Schedule, fee
// policy and capacity rules are enforced by the ledger itself, so missing
// times pass through as the epoch.
func (r *CreateEventRequest) ToParams() domain.EventParams {
	return domain.EventParams{
		Title:       r.Title,
		Description: r.Description,
		StartTime:   time.Unix(r.StartTime, 0).UTC(),
		EndTime:     time.Unix(r.EndTime, 0).UTC(),
		Fee:         r.Fee,
		IsPaid:      r.IsPaid,
		Capacity:    r.Capacity,
	}
}

// EventListFilter represents the query of the event list
type EventListFilter struct {
	After uint64 `form:"after"`
	Limit int    `form:"limit"`
}

// SetDefaults sets default values for the filter
func (f *EventListFilter) SetDefaults() {
	if f.Limit <= 0 {
		f.Limit = 20
	}
	if f.Limit > 100 {
		f.Limit = 100
	}
}

// EventResponse represents the response for an event
type EventResponse struct {
	ID                 uint64 `json:"id"`
	Organizer          string `json:"organizer"`
	Title              string `json:"title"`
	Description        string `json:"description"`
	StartTime          int64  `json:"start_time"`
	EndTime            int64  `json:"end_time"`
	Fee                uint64 `json:"fee"`
	IsPaid             bool   `json:"is_paid"`
	Capacity           uint64 `json:"capacity"`
	RegisteredCount    uint64 `json:"registered_count"`
	VerifiedGuestCount uint64 `json:"verified_guest_count"`
	RemainingCapacity  uint64 `json:"remaining_capacity"`
	CreatedAt          int64  `json:"created_at"`
}

// FromEvent converts a domain event to a response
func FromEvent(ev *domain.Event) *EventResponse {
	return &EventResponse{
		ID:                 ev.ID,
		Organizer:          ev.Organizer,
		Title:              ev.Title,
		Description:        ev.Description,
		StartTime:          ev.StartTime.Unix(),
		EndTime:            ev.EndTime.Unix(),
		Fee:                ev.Fee,
		IsPaid:             ev.IsPaid,
		Capacity:           ev.Capacity,
		RegisteredCount:    ev.RegisteredCount,
		VerifiedGuestCount: ev.VerifiedGuestCount,
		RemainingCapacity:  ev.RemainingCapacity(),
		CreatedAt:          ev.CreatedAt.Unix(),
	}
}

// EventCountResponse represents the response for the event counter
type EventCountResponse struct {
	EventCount uint64 `json:"event_count"`
}

// RegistrationStatusResponse represents whether an identity registered for an event
type RegistrationStatusResponse struct {
	EventID    uint64 `json:"event_id"`
	Identity   string `json:"identity"`
	Registered bool   `json:"registered"`
}
