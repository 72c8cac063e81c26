// Package journal keeps the append-only, hash-chained log of committed
// ledger operations. The log is both the notification stream and the
// source the registry is rebuilt from at boot.
package journal

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	"github.com/Samuel1505/Event-Ticketing/internal/domain"
	"github.com/fxamacker/cbor/v2"
	"github.com/zeebo/blake3"
)

// GenesisHash is the PrevHash of the first record
var GenesisHash = strings.Repeat("0", 64)

var (
	ErrBrokenChain  = errors.New("journal chain is broken")
	ErrInvalidKind  = errors.New("invalid record kind")
	ErrSequenceHole = errors.New("journal sequence has a gap")
)

// Writer appends committed records. Append assigns Seq, PrevHash and Hash.
type Writer interface {
	Append(ctx context.Context, rec *domain.Record) error
}

// Reader pages through committed records in sequence order
type Reader interface {
	Since(ctx context.Context, afterSeq uint64, limit int) ([]*domain.Record, error)
}

// Journal is a readable, writable record log
type Journal interface {
	Writer
	Reader
}

// Finder looks up a committed record with the same content as rec. Writers
// whose Append can report failure after the record became durable implement
// it so the caller can settle the outcome.
type Finder interface {
	Find(ctx context.Context, rec *domain.Record) (*domain.Record, bool, error)
}

// SameContent reports whether two records describe the same operation,
// ignoring the chain fields Append assigns
func SameContent(a, b *domain.Record) bool {
	return a.Kind == b.Kind &&
		a.EventID == b.EventID &&
		a.TicketID == b.TicketID &&
		a.Actor == b.Actor &&
		a.Recipient == b.Recipient &&
		a.Payment == b.Payment &&
		a.Title == b.Title &&
		a.CommittedAt.Equal(b.CommittedAt)
}

// sealedParams and sealedRecord fix the field order and time precision the
// hash is computed over. Times are hashed at microsecond precision so a
// record survives a round trip through PostgreSQL unchanged.
type sealedParams struct {
	Title       string `cbor:"1,keyasint"`
	Description string `cbor:"2,keyasint"`
	StartTime   int64  `cbor:"3,keyasint"`
	EndTime     int64  `cbor:"4,keyasint"`
	Fee         uint64 `cbor:"5,keyasint"`
	IsPaid      bool   `cbor:"6,keyasint"`
	Capacity    uint64 `cbor:"7,keyasint"`
}

type sealedRecord struct {
	Seq         uint64        `cbor:"1,keyasint"`
	Kind        string        `cbor:"2,keyasint"`
	EventID     uint64        `cbor:"3,keyasint"`
	Actor       string        `cbor:"4,keyasint"`
	TicketID    uint64        `cbor:"5,keyasint"`
	Title       string        `cbor:"6,keyasint"`
	Params      *sealedParams `cbor:"7,keyasint,omitempty"`
	Payment     uint64        `cbor:"8,keyasint"`
	Recipient   string        `cbor:"9,keyasint"`
	CommittedAt int64         `cbor:"10,keyasint"`
	PrevHash    string        `cbor:"11,keyasint"`
}

var encMode = mustEncMode()

func mustEncMode() cbor.EncMode {
	em, err := cbor.CoreDetEncOptions().EncMode()
	if err != nil {
		panic(fmt.Sprintf("journal: cbor encoder: %v", err))
	}
	return em
}

// Hash computes the chained digest of rec, including its PrevHash
func Hash(rec *domain.Record) (string, error) {
	sealed := sealedRecord{
		Seq:         rec.Seq,
		Kind:        string(rec.Kind),
		EventID:     rec.EventID,
		Actor:       rec.Actor,
		TicketID:    rec.TicketID,
		Title:       rec.Title,
		Payment:     rec.Payment,
		Recipient:   rec.Recipient,
		CommittedAt: rec.CommittedAt.UnixMicro(),
		PrevHash:    rec.PrevHash,
	}
	if p := rec.Params; p != nil {
		sealed.Params = &sealedParams{
			Title:       p.Title,
			Description: p.Description,
			StartTime:   p.StartTime.UnixMicro(),
			EndTime:     p.EndTime.UnixMicro(),
			Fee:         p.Fee,
			IsPaid:      p.IsPaid,
			Capacity:    p.Capacity,
		}
	}

	data, err := encMode.Marshal(sealed)
	if err != nil {
		return "", fmt.Errorf("failed to encode record: %w", err)
	}
	sum := blake3.Sum256(data)
	return hex.EncodeToString(sum[:]), nil
}

// Seal links rec after the record identified by (prevSeq, prevHash)
func Seal(rec *domain.Record, prevSeq uint64, prevHash string) error {
	if !rec.Kind.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidKind, rec.Kind)
	}
	rec.Seq = prevSeq + 1
	rec.PrevHash = prevHash
	hash, err := Hash(rec)
	if err != nil {
		return err
	}
	rec.Hash = hash
	return nil
}

// Verify checks that records form an unbroken chain starting after
// (prevSeq, prevHash). Pass 0 and GenesisHash to verify from the start.
func Verify(records []*domain.Record, prevSeq uint64, prevHash string) error {
	for _, rec := range records {
		if rec.Seq != prevSeq+1 {
			return fmt.Errorf("%w: expected seq %d, got %d", ErrSequenceHole, prevSeq+1, rec.Seq)
		}
		if rec.PrevHash != prevHash {
			return fmt.Errorf("%w: record %d does not link to its predecessor", ErrBrokenChain, rec.Seq)
		}
		want, err := Hash(rec)
		if err != nil {
			return err
		}
		if rec.Hash != want {
			return fmt.Errorf("%w: record %d hash mismatch", ErrBrokenChain, rec.Seq)
		}
		prevSeq, prevHash = rec.Seq, rec.Hash
	}
	return nil
}
