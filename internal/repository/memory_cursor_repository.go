package repository

import (
	"context"
	"sync"
)

// MemoryCursorRepository implements CursorRepository in process. It is used
// with the in-memory journal, whose records do not survive a restart either.
type MemoryCursorRepository struct {
	mu      sync.Mutex
	cursors map[string]uint64
}

// NewMemoryCursorRepository creates an empty MemoryCursorRepository
func NewMemoryCursorRepository() *MemoryCursorRepository {
	return &MemoryCursorRepository{cursors: make(map[string]uint64)}
}

func (r *MemoryCursorRepository) Get(ctx context.Context, name string) (uint64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.cursors[name], nil
}

// Advance moves the cursor forward. It never moves backwards.
func (r *MemoryCursorRepository) Advance(ctx context.Context, name string, seq uint64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if seq > r.cursors[name] {
		r.cursors[name] = seq
	}
	return nil
}
