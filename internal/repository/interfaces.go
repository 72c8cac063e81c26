package repository

import (
	"context"
	"errors"

	"github.com/Samuel1505/Event-Ticketing/internal/journal"
)

// ErrHeadMoved means another writer appended between our read of the head
// and our insert
var ErrHeadMoved = errors.New("journal head moved during append")

// RecordRepository is a durable journal
type RecordRepository interface {
	journal.Journal
	journal.Finder
	// Head returns the sequence and hash of the last committed record
	Head(ctx context.Context) (uint64, string, error)
}

// CursorRepository tracks how far each relay has published
type CursorRepository interface {
	Get(ctx context.Context, name string) (uint64, error)
	Advance(ctx context.Context, name string, seq uint64) error
}
