package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Samuel1505/Event-Ticketing/internal/domain"
	"github.com/Samuel1505/Event-Ticketing/internal/journal"
	"github.com/Samuel1505/Event-Ticketing/pkg/database"
)

// appendLockID serializes appends across connections
const appendLockID int64 = 4_202_605_02

// PostgresRecordRepository implements RecordRepository using PostgreSQL
type PostgresRecordRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRecordRepository creates a new PostgresRecordRepository
func NewPostgresRecordRepository(pool *pgxpool.Pool) *PostgresRecordRepository {
	return &PostgresRecordRepository{pool: pool}
}

// Append seals rec onto the current head and inserts it in one transaction
func (r *PostgresRecordRepository) Append(ctx context.Context, rec *domain.Record) error {
	var params []byte
	if rec.Params != nil {
		var err error
		if params, err = json.Marshal(rec.Params); err != nil {
			return fmt.Errorf("failed to encode event params: %w", err)
		}
	}

	sealed := *rec
	err := database.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `SELECT pg_advisory_xact_lock($1)`, appendLockID); err != nil {
			return fmt.Errorf("failed to lock journal: %w", err)
		}

		seq, hash, err := head(ctx, tx)
		if err != nil {
			return err
		}
		if err := journal.Seal(&sealed, seq, hash); err != nil {
			return err
		}

		_, err = tx.Exec(ctx, `
			INSERT INTO ledger_records (
				seq, kind, event_id, actor, ticket_id, title, params,
				payment, recipient, committed_at, prev_hash, hash
			) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		`,
			int64(sealed.Seq),
			string(sealed.Kind),
			int64(sealed.EventID),
			sealed.Actor,
			int64(sealed.TicketID),
			sealed.Title,
			params,
			int64(sealed.Payment),
			sealed.Recipient,
			sealed.CommittedAt,
			sealed.PrevHash,
			sealed.Hash,
		)
		if isUniqueViolation(err) {
			return ErrHeadMoved
		}
		if err != nil {
			return fmt.Errorf("failed to insert record: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	rec.Seq, rec.PrevHash, rec.Hash = sealed.Seq, sealed.PrevHash, sealed.Hash
	return nil
}

// Since returns up to limit records with seq greater than afterSeq. A
// non-positive limit returns everything.
func (r *PostgresRecordRepository) Since(ctx context.Context, afterSeq uint64, limit int) ([]*domain.Record, error) {
	query := `
		SELECT seq, kind, event_id, actor, ticket_id, title, params,
		       payment, recipient, committed_at, prev_hash, hash
		FROM ledger_records
		WHERE seq > $1
		ORDER BY seq ASC
	`
	args := []interface{}{int64(afterSeq)}
	if limit > 0 {
		query += ` LIMIT $2`
		args = append(args, limit)
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query records: %w", err)
	}
	defer rows.Close()

	records := make([]*domain.Record, 0)
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read records: %w", err)
	}
	return records, nil
}

// Find returns the latest committed record with the same content as rec
func (r *PostgresRecordRepository) Find(ctx context.Context, rec *domain.Record) (*domain.Record, bool, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT seq, kind, event_id, actor, ticket_id, title, params,
		       payment, recipient, committed_at, prev_hash, hash
		FROM ledger_records
		WHERE kind = $1 AND event_id = $2 AND ticket_id = $3
		  AND actor = $4 AND recipient = $5 AND committed_at = $6
		ORDER BY seq DESC
		LIMIT 1
	`,
		string(rec.Kind),
		int64(rec.EventID),
		int64(rec.TicketID),
		rec.Actor,
		rec.Recipient,
		rec.CommittedAt,
	)
	if err != nil {
		return nil, false, fmt.Errorf("failed to look up record: %w", err)
	}
	defer rows.Close()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return nil, false, fmt.Errorf("failed to look up record: %w", err)
		}
		return nil, false, nil
	}
	found, err := scanRecord(rows)
	if err != nil {
		return nil, false, err
	}
	if !journal.SameContent(found, rec) {
		return nil, false, nil
	}
	return found, true, nil
}

// Head returns the last committed sequence and hash, or (0, GenesisHash)
// for an empty journal
func (r *PostgresRecordRepository) Head(ctx context.Context) (uint64, string, error) {
	return head(ctx, r.pool)
}

type queryRower interface {
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
}

func head(ctx context.Context, q queryRower) (uint64, string, error) {
	var seq int64
	var hash string
	err := q.QueryRow(ctx, `SELECT seq, hash FROM ledger_records ORDER BY seq DESC LIMIT 1`).Scan(&seq, &hash)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, journal.GenesisHash, nil
	}
	if err != nil {
		return 0, "", fmt.Errorf("failed to read journal head: %w", err)
	}
	return uint64(seq), hash, nil
}

func scanRecord(rows pgx.Rows) (*domain.Record, error) {
	var (
		rec                             domain.Record
		kind                            string
		seq, eventID, ticketID, payment int64
		params                          []byte
	)
	err := rows.Scan(
		&seq, &kind, &eventID, &rec.Actor, &ticketID, &rec.Title, &params,
		&payment, &rec.Recipient, &rec.CommittedAt, &rec.PrevHash, &rec.Hash,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to scan record: %w", err)
	}

	rec.Seq = uint64(seq)
	rec.Kind = domain.RecordKind(kind)
	rec.EventID = uint64(eventID)
	rec.TicketID = uint64(ticketID)
	rec.Payment = uint64(payment)
	rec.CommittedAt = rec.CommittedAt.UTC()
	if len(params) > 0 {
		rec.Params = &domain.EventParams{}
		if err := json.Unmarshal(params, rec.Params); err != nil {
			return nil, fmt.Errorf("failed to decode params of record %d: %w", rec.Seq, err)
		}
	}
	return &rec, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
