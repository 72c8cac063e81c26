package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresCursorRepository implements CursorRepository using PostgreSQL
type PostgresCursorRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresCursorRepository creates a new PostgresCursorRepository
func NewPostgresCursorRepository(pool *pgxpool.Pool) *PostgresCursorRepository {
	return &PostgresCursorRepository{pool: pool}
}

// Get returns the last published sequence for name, 0 if it never ran
func (r *PostgresCursorRepository) Get(ctx context.Context, name string) (uint64, error) {
	var seq int64
	err := r.pool.QueryRow(ctx, `SELECT last_seq FROM relay_cursors WHERE name = $1`, name).Scan(&seq)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to read cursor %s: %w", name, err)
	}
	return uint64(seq), nil
}

// Advance moves the cursor forward. It never moves backwards.
func (r *PostgresCursorRepository) Advance(ctx context.Context, name string, seq uint64) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO relay_cursors (name, last_seq, updated_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (name) DO UPDATE
		SET last_seq = GREATEST(relay_cursors.last_seq, EXCLUDED.last_seq),
		    updated_at = NOW()
	`, name, int64(seq))
	if err != nil {
		return fmt.Errorf("failed to advance cursor %s: %w", name, err)
	}
	return nil
}
