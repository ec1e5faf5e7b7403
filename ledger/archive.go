package ledger

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// ArchiveStore persists cold-partition bytes and metadata once a partition
// ages out of local disk retention, and allows later purge once the
// retention-after-archive window also elapses.
type ArchiveStore interface {
	Archive(ctx context.Context, partitionPath string, archivedAt time.Time, data []byte) error
	DeleteOlderThan(ctx context.Context, age time.Duration) (int, error)
}

// PgArchiveStore is an ArchiveStore backed by Postgres via pgx. Partition
// bytes are stored as bytea; this module has no blob-storage dependency in
// scope (see DESIGN.md), so the archive table doubles as the archive store.
type PgArchiveStore struct {
	db *pgxpool.Pool
}

// NewPgArchiveStore wraps an already-connected pgxpool.Pool.
func NewPgArchiveStore(db *pgxpool.Pool) *PgArchiveStore {
	return &PgArchiveStore{db: db}
}

// Archive inserts one archived-partition row, keyed by its original path so
// re-archiving after a partial failure is an upsert, not a duplicate.
func (s *PgArchiveStore) Archive(ctx context.Context, partitionPath string, archivedAt time.Time, data []byte) error {
	_, err := s.db.Exec(ctx, `
		INSERT INTO ledger_archive (partition_path, archived_at, data)
		VALUES ($1, $2, $3)
		ON CONFLICT (partition_path) DO UPDATE SET
			archived_at = EXCLUDED.archived_at,
			data        = EXCLUDED.data
	`, partitionPath, archivedAt, data)
	return err
}

// DeleteOlderThan removes archive rows whose archived_at is older than age
// and reports how many rows were removed.
func (s *PgArchiveStore) DeleteOlderThan(ctx context.Context, age time.Duration) (int, error) {
	cutoff := time.Now().UTC().Add(-age)
	tag, err := s.db.Exec(ctx, `DELETE FROM ledger_archive WHERE archived_at < $1`, cutoff)
	if err != nil {
		return 0, err
	}
	return int(tag.RowsAffected()), nil
}
