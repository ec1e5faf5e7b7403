// Package repository stores Signals by id and by input_event_hash. Two
// implementations share the same contract: an in-memory bounded FIFO store
// and a durable store backed by Postgres via pgx.
package repository

import (
	"context"
	"time"

	"github.com/hoangpro267200/omen/domain"
)

// Repository is the contract both flavors satisfy. save is idempotent: a
// signal_id is deterministic, so re-saving the same Signal is a no-op
// upsert, never a duplicate.
type Repository interface {
	Save(ctx context.Context, signal domain.Signal) error
	FindByID(ctx context.Context, signalID string) (domain.Signal, bool, error)
	FindByHash(ctx context.Context, inputEventHash string) (domain.Signal, bool, error)
	FindRecent(ctx context.Context, limit int, since *time.Time) ([]domain.Signal, error)
}
