package domain

import "time"

// RecordKind names the notification a committed operation emits
type RecordKind string

const (
	RecordEventCreated      RecordKind = "EventCreated"
	RecordRegisterEvent     RecordKind = "RegisterEvent"
	RecordVerifiedTicket    RecordKind = "VerifiedTicket"
	RecordTicketTransferred RecordKind = "TicketTransferred"
)

// Valid reports whether k is a known record kind
func (k RecordKind) Valid() bool {
	switch k {
	case RecordEventCreated, RecordRegisterEvent, RecordVerifiedTicket, RecordTicketTransferred:
		return true
	}
	return false
}

// Record is one committed ledger operation. Records are append-only and
// ordered by Seq; each one carries the hash of its predecessor.
type Record struct {
	Seq         uint64       `json:"seq"`
	Kind        RecordKind   `json:"kind"`
	EventID     uint64       `json:"event_id"`
	Actor       string       `json:"actor"`
	TicketID    uint64       `json:"ticket_id,omitempty"`
	Title       string       `json:"title,omitempty"`
	Params      *EventParams `json:"params,omitempty"`
	Payment     uint64       `json:"payment,omitempty"`
	Recipient   string       `json:"recipient,omitempty"`
	CommittedAt time.Time    `json:"committed_at"`
	PrevHash    string       `json:"prev_hash"`
	Hash        string       `json:"hash"`
}

// Notification is the external view of a record as indexers consume it
type Notification struct {
	Seq        uint64     `json:"seq"`
	Type       RecordKind `json:"type"`
	EventID    uint64     `json:"event_id"`
	Organizer  string     `json:"organizer,omitempty"`
	Title      string     `json:"title,omitempty"`
	Registrant string     `json:"registrant,omitempty"`
	TicketID   uint64     `json:"ticket_id,omitempty"`
	From       string     `json:"from,omitempty"`
	To         string     `json:"to,omitempty"`
	At         time.Time  `json:"at"`
	Hash       string     `json:"hash"`
}

// Notification projects the record onto its notification payload
func (r *Record) Notification() Notification {
	n := Notification{
		Seq:     r.Seq,
		Type:    r.Kind,
		EventID: r.EventID,
		At:      r.CommittedAt,
		Hash:    r.Hash,
	}
	switch r.Kind {
	case RecordEventCreated:
		n.Organizer = r.Actor
		n.Title = r.Title
	case RecordRegisterEvent:
		n.Registrant = r.Actor
		n.TicketID = r.TicketID
	case RecordVerifiedTicket:
		n.TicketID = r.TicketID
	case RecordTicketTransferred:
		n.TicketID = r.TicketID
		n.From = r.Actor
		n.To = r.Recipient
	}
	return n
}
