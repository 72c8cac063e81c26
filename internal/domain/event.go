package domain

import "time"

// EventParams are the organizer-supplied attributes of a new event
type EventParams struct {
	Title       string    `json:"title"`
	Description string    `json:"description"`
	StartTime   time.Time `json:"start_time"`
	EndTime     time.Time `json:"end_time"`
	Fee         uint64    `json:"fee"`
	IsPaid      bool      `json:"is_paid"`
	Capacity    uint64    `json:"capacity"`
}

// Event is a registered event. Schedule, fee policy and capacity are fixed
// at creation; the two counters only grow.
type Event struct {
	ID                 uint64
	Organizer          string
	Title              string
	Description        string
	StartTime          time.Time
	EndTime            time.Time
	Fee                uint64
	IsPaid             bool
	Capacity           uint64
	RegisteredCount    uint64
	VerifiedGuestCount uint64
	CreatedAt          time.Time
}

// HasEnded reports whether now is past the event's end time
func (e *Event) HasEnded(now time.Time) bool {
	return now.After(e.EndTime)
}

// IsFull reports whether every slot has been taken
func (e *Event) IsFull() bool {
	return e.RegisteredCount >= e.Capacity
}

// RemainingCapacity returns the number of registrations still accepted
func (e *Event) RemainingCapacity() uint64 {
	if e.IsFull() {
		return 0
	}
	return e.Capacity - e.RegisteredCount
}
