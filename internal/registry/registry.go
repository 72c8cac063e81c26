// Package registry is the event registry state machine. It creates events,
// validates registrations against each event's rules, delegates minting to
// the event's ticket ledger and records attendance verification.
//
// Every mutating operation is all-or-nothing: it validates, appends exactly
// one record to the journal, and only then applies its effects. A rejected
// operation or a failed append leaves no trace.
package registry

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/Samuel1505/Event-Ticketing/internal/clock"
	"github.com/Samuel1505/Event-Ticketing/internal/domain"
	"github.com/Samuel1505/Event-Ticketing/internal/journal"
	"github.com/Samuel1505/Event-Ticketing/internal/ticketledger"
	"github.com/Samuel1505/Event-Ticketing/pkg/retry"
)

// ErrOutcomeUnknown means an append failed and the journal could not tell
// whether the record landed. The registry refuses writes from then on and
// must be rebuilt from the journal.
var ErrOutcomeUnknown = errors.New("journal append outcome unknown")

const commitTimeout = 30 * time.Second

// Registry owns all events and their ticket ledgers
type Registry struct {
	clock   clock.Clock
	journal journal.Writer
	settle  *retry.Retrier
	halted  atomic.Bool

	// createMu serializes event creation so ids reach the journal in order
	createMu sync.Mutex

	// mu guards eventCount and the events map. Per-event state is guarded
	// by the entry's own lock.
	mu         sync.RWMutex
	eventCount uint64
	events     map[uint64]*entry
}

type entry struct {
	mu         sync.Mutex
	event      domain.Event
	registered map[string]struct{}
	tickets    *ticketledger.Ledger
}

// New creates an empty registry that journals through w
func New(clk clock.Clock, w journal.Writer) *Registry {
	return &Registry{
		clock:   clk,
		journal: w,
		settle: retry.New(&retry.Config{
			MaxRetries:      3,
			InitialInterval: 100 * time.Millisecond,
			MaxInterval:     time.Second,
		}),
		events: make(map[uint64]*entry),
	}
}

// CreateEvent registers a new event organized by organizer and returns its id
func (r *Registry) CreateEvent(ctx context.Context, organizer string, params domain.EventParams) (uint64, error) {
	r.createMu.Lock()
	defer r.createMu.Unlock()

	now := r.clock.Now()
	if err := validateParams(params, now); err != nil {
		return 0, err
	}

	p := params
	rec := &domain.Record{
		Kind:        domain.RecordEventCreated,
		EventID:     r.EventCount() + 1,
		Actor:       organizer,
		Title:       params.Title,
		Params:      &p,
		CommittedAt: stamp(now),
	}
	if err := r.commit(ctx, rec); err != nil {
		return 0, fmt.Errorf("failed to journal event creation: %w", err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.applyCreate(rec); err != nil {
		return 0, err
	}
	return rec.EventID, nil
}

// RegisterForEvent reserves a slot for caller and mints a ticket to them
func (r *Registry) RegisterForEvent(ctx context.Context, caller string, eventID, payment uint64) (uint64, error) {
	e, err := r.lookup(eventID)
	if err != nil {
		return 0, err
	}
	e.mu.Lock()
	defer e.mu.Unlock()

	now := r.clock.Now()
	ev := &e.event
	if ev.HasEnded(now) {
		return 0, domain.Reject(domain.ErrExpired, domain.ReasonEventEnded)
	}
	if ev.IsFull() {
		return 0, domain.Reject(domain.ErrCapacityExceeded, domain.ReasonRegistrationFull)
	}
	if _, ok := e.registered[caller]; ok {
		return 0, domain.Reject(domain.ErrAlreadyRegistered, domain.ReasonAlreadyRegistered)
	}
	if err := checkPayment(ev, payment); err != nil {
		return 0, err
	}

	rec := &domain.Record{
		Kind:        domain.RecordRegisterEvent,
		EventID:     eventID,
		Actor:       caller,
		TicketID:    e.tickets.NextTicketID(),
		Payment:     payment,
		CommittedAt: stamp(now),
	}
	if err := r.commit(ctx, rec); err != nil {
		return 0, fmt.Errorf("failed to journal registration: %w", err)
	}
	if err := applyRegister(e, rec); err != nil {
		return 0, err
	}
	return rec.TicketID, nil
}

// VerifyAttendance marks a ticket as attended. Only the event organizer may
// call it. Verifying an already verified ticket succeeds without effect;
// first reports whether this call performed the verification.
func (r *Registry) VerifyAttendance(ctx context.Context, caller string, eventID, ticketID uint64) (first bool, err error) {
	e, err := r.lookup(eventID)
	if err != nil {
		return false, err
	}
	e.mu.Lock()
	defer e.mu.Unlock()

	if caller != e.event.Organizer {
		return false, domain.Reject(domain.ErrUnauthorized, domain.ReasonOnlyOrganizer)
	}
	if !e.tickets.Exists(ticketID) {
		return false, domain.Reject(domain.ErrNotFound, domain.ReasonTicketNotFound)
	}
	if e.tickets.IsVerified(ticketID) {
		return false, nil
	}

	rec := &domain.Record{
		Kind:        domain.RecordVerifiedTicket,
		EventID:     eventID,
		Actor:       caller,
		TicketID:    ticketID,
		CommittedAt: stamp(r.clock.Now()),
	}
	if err := r.commit(ctx, rec); err != nil {
		return false, fmt.Errorf("failed to journal verification: %w", err)
	}
	if err := applyVerify(e, rec); err != nil {
		return false, err
	}
	return true, nil
}

// TransferTicket moves a ticket from caller, its current holder, to recipient
func (r *Registry) TransferTicket(ctx context.Context, caller string, eventID, ticketID uint64, recipient string) error {
	e, err := r.lookup(eventID)
	if err != nil {
		return err
	}
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.tickets.CheckTransfer(caller, recipient, ticketID); err != nil {
		return err
	}

	rec := &domain.Record{
		Kind:        domain.RecordTicketTransferred,
		EventID:     eventID,
		Actor:       caller,
		TicketID:    ticketID,
		Recipient:   recipient,
		CommittedAt: stamp(r.clock.Now()),
	}
	if err := r.commit(ctx, rec); err != nil {
		return fmt.Errorf("failed to journal transfer: %w", err)
	}
	return e.tickets.Transfer(caller, recipient, ticketID)
}

// EventCount returns the id of the most recently created event
func (r *Registry) EventCount() uint64 {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.eventCount
}

// Event returns a snapshot of the event
func (r *Registry) Event(eventID uint64) (domain.Event, error) {
	e, err := r.lookup(eventID)
	if err != nil {
		return domain.Event{}, err
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.event, nil
}

// Events returns up to limit event snapshots with ids greater than afterID
func (r *Registry) Events(afterID uint64, limit int) []domain.Event {
	r.mu.RLock()
	count := r.eventCount
	r.mu.RUnlock()

	out := make([]domain.Event, 0)
	for id := afterID + 1; id <= count; id++ {
		if limit > 0 && len(out) >= limit {
			break
		}
		ev, err := r.Event(id)
		if err != nil {
			continue
		}
		out = append(out, ev)
	}
	return out
}

// GetHasRegistered reports whether identity registered for the event
func (r *Registry) GetHasRegistered(eventID uint64, identity string) (bool, error) {
	e, err := r.lookup(eventID)
	if err != nil {
		return false, err
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	_, ok := e.registered[identity]
	return ok, nil
}

// IsVerifiedTicket reports whether the ticket has been verified. Unknown
// tickets of an existing event are reported as unverified.
func (r *Registry) IsVerifiedTicket(eventID, ticketID uint64) (bool, error) {
	e, err := r.lookup(eventID)
	if err != nil {
		return false, err
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.tickets.IsVerified(ticketID), nil
}

// TicketInstance returns a handle on the event's ticket ledger
func (r *Registry) TicketInstance(eventID uint64) (*TicketInstance, error) {
	e, err := r.lookup(eventID)
	if err != nil {
		return nil, err
	}
	return &TicketInstance{e: e}, nil
}

func (r *Registry) lookup(eventID uint64) (*entry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.events[eventID]
	if !ok {
		return nil, domain.Reject(domain.ErrNotFound, domain.ReasonEventNotFound)
	}
	return e, nil
}

// commit appends rec to the journal. A client going away must not abort
// an append mid-commit, so the request context only contributes its
// values. When the append reports failure the journal is asked whether the
// record landed anyway; a landed record counts as committed.
func (r *Registry) commit(ctx context.Context, rec *domain.Record) error {
	if r.halted.Load() {
		return ErrOutcomeUnknown
	}

	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), commitTimeout)
	defer cancel()

	appendErr := r.journal.Append(ctx, rec)
	if appendErr == nil {
		return nil
	}
	finder, ok := r.journal.(journal.Finder)
	if !ok {
		return appendErr
	}

	var (
		stored *domain.Record
		found  bool
	)
	result := r.settle.Do(ctx, func(ctx context.Context) error {
		var err error
		stored, found, err = finder.Find(ctx, rec)
		return err
	}, nil)
	if result.Err != nil {
		r.halted.Store(true)
		return errors.Join(ErrOutcomeUnknown, appendErr, result.Err)
	}
	if !found {
		return appendErr
	}
	rec.Seq, rec.PrevHash, rec.Hash = stored.Seq, stored.PrevHash, stored.Hash
	return nil
}

// applyCreate must be called with r.mu held
func (r *Registry) applyCreate(rec *domain.Record) error {
	if rec.EventID != r.eventCount+1 {
		return fmt.Errorf("event id %d out of order, expected %d", rec.EventID, r.eventCount+1)
	}
	if rec.Params == nil {
		return fmt.Errorf("event %d has no creation parameters", rec.EventID)
	}
	p := rec.Params
	r.eventCount = rec.EventID
	r.events[rec.EventID] = &entry{
		event: domain.Event{
			ID:          rec.EventID,
			Organizer:   rec.Actor,
			Title:       p.Title,
			Description: p.Description,
			StartTime:   p.StartTime,
			EndTime:     p.EndTime,
			Fee:         p.Fee,
			IsPaid:      p.IsPaid,
			Capacity:    p.Capacity,
			CreatedAt:   rec.CommittedAt,
		},
		registered: make(map[string]struct{}),
		tickets:    ticketledger.New(rec.EventID, p.Title),
	}
	return nil
}

// applyRegister must be called with e.mu held
func applyRegister(e *entry, rec *domain.Record) error {
	if e.event.IsFull() {
		return fmt.Errorf("event %d over capacity", rec.EventID)
	}
	e.registered[rec.Actor] = struct{}{}
	e.event.RegisteredCount++
	if id := e.tickets.Mint(rec.Actor, rec.CommittedAt); id != rec.TicketID {
		return fmt.Errorf("ticket id mismatch for event %d: minted %d, recorded %d", rec.EventID, id, rec.TicketID)
	}
	return nil
}

// applyVerify must be called with e.mu held
func applyVerify(e *entry, rec *domain.Record) error {
	first, err := e.tickets.SetVerified(rec.TicketID)
	if err != nil {
		return err
	}
	if first {
		e.event.VerifiedGuestCount++
	}
	return nil
}

func validateParams(p domain.EventParams, now time.Time) error {
	if !p.StartTime.After(now) {
		return domain.Reject(domain.ErrInvalidSchedule, domain.ReasonStartNotInFuture)
	}
	if !p.EndTime.After(p.StartTime) {
		return domain.Reject(domain.ErrInvalidSchedule, domain.ReasonEndBeforeStart)
	}
	if p.IsPaid && p.Fee == 0 {
		return domain.Reject(domain.ErrInvalidFeePolicy, domain.ReasonFeeRequired)
	}
	if !p.IsPaid && p.Fee != 0 {
		return domain.Reject(domain.ErrInvalidFeePolicy, domain.ReasonNoFeeRequired)
	}
	if p.Capacity == 0 {
		return domain.Reject(domain.ErrInvalidCapacity, domain.ReasonCapacityZero)
	}
	return nil
}

// checkPayment accepts at least the fee for paid events and nothing for
// free ones. Surplus custody is not the ledger's concern.
func checkPayment(ev *domain.Event, payment uint64) error {
	if ev.IsPaid && payment < ev.Fee {
		return domain.Reject(domain.ErrPaymentError, domain.ReasonInsufficientFunds)
	}
	if !ev.IsPaid && payment != 0 {
		return domain.Reject(domain.ErrPaymentError, domain.ReasonNoFeeRequired)
	}
	return nil
}

func stamp(t time.Time) time.Time {
	return t.UTC().Truncate(time.Microsecond)
}
