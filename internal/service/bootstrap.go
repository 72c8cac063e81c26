package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/Samuel1505/Event-Ticketing/internal/domain"
	"github.com/Samuel1505/Event-Ticketing/internal/journal"
	"github.com/Samuel1505/Event-Ticketing/internal/registry"
	"github.com/Samuel1505/Event-Ticketing/pkg/logger"
)

// replayPageSize is the number of records read per journal query at boot
const replayPageSize = 1000

// Bootstrap replays the journal into an empty registry. The chain is
// verified before any record is applied; a broken chain aborts the boot.
// It returns the sequence of the last replayed record.
func Bootstrap(ctx context.Context, reader journal.Reader, reg *registry.Registry, log *logger.Logger) (uint64, error) {
	if log == nil {
		log = logger.Nop()
	}

	var (
		records  []*domain.Record
		lastSeq  uint64
		lastHash = journal.GenesisHash
	)
	for {
		page, err := reader.Since(ctx, lastSeq, replayPageSize)
		if err != nil {
			return 0, fmt.Errorf("failed to read journal: %w", err)
		}
		if len(page) == 0 {
			break
		}
		if err := journal.Verify(page, lastSeq, lastHash); err != nil {
			return 0, err
		}
		records = append(records, page...)
		last := page[len(page)-1]
		lastSeq, lastHash = last.Seq, last.Hash
		if len(page) < replayPageSize {
			break
		}
	}

	if err := reg.Restore(records); err != nil {
		return 0, err
	}

	log.Info("journal replayed",
		zap.Int("records", len(records)),
		zap.Uint64("head_seq", lastSeq),
		zap.Uint64("events", reg.EventCount()),
	)
	return lastSeq, nil
}
