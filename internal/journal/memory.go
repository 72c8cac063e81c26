package journal

import (
	"context"
	"sync"

	"github.com/Samuel1505/Event-Ticketing/internal/domain"
)

// Memory is an in-process journal. It is the default when no database is
// configured and the journal used by tests.
type Memory struct {
	mu      sync.RWMutex
	records []*domain.Record
}

// NewMemory creates an empty in-memory journal
func NewMemory() *Memory {
	return &Memory{}
}

// Append seals rec onto the head of the chain and stores a copy
func (m *Memory) Append(ctx context.Context, rec *domain.Record) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	prevSeq, prevHash := m.headLocked()
	if err := Seal(rec, prevSeq, prevHash); err != nil {
		return err
	}
	stored := *rec
	m.records = append(m.records, &stored)
	return nil
}

// Since returns up to limit records with Seq > afterSeq. limit <= 0 means no limit.
func (m *Memory) Since(ctx context.Context, afterSeq uint64, limit int) ([]*domain.Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	// Seq n lives at index n-1
	if afterSeq >= uint64(len(m.records)) {
		return []*domain.Record{}, nil
	}
	tail := m.records[afterSeq:]
	if limit > 0 && len(tail) > limit {
		tail = tail[:limit]
	}
	out := make([]*domain.Record, len(tail))
	for i, rec := range tail {
		c := *rec
		out[i] = &c
	}
	return out, nil
}

// Find returns the latest stored record with the same content as rec
func (m *Memory) Find(ctx context.Context, rec *domain.Record) (*domain.Record, bool, error) {
	if err := ctx.Err(); err != nil {
		return nil, false, err
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	for i := len(m.records) - 1; i >= 0; i-- {
		if SameContent(m.records[i], rec) {
			c := *m.records[i]
			return &c, true, nil
		}
	}
	return nil, false, nil
}

// Head returns the sequence and hash of the latest record
func (m *Memory) Head() (uint64, string) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.headLocked()
}

// Len returns the number of committed records
func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.records)
}

// Verify checks the whole chain
func (m *Memory) Verify() error {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return Verify(m.records, 0, GenesisHash)
}

func (m *Memory) headLocked() (uint64, string) {
	if len(m.records) == 0 {
		return 0, GenesisHash
	}
	last := m.records[len(m.records)-1]
	return last.Seq, last.Hash
}
