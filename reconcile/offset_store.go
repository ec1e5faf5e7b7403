// Package reconcile implements the background reconciliation job: a scan
// of sealed ledger partitions, from a persisted offset forward, replaying
// any record the consumer has not yet acknowledged.
package reconcile

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/hoangpro267200/omen/domain"
)

// OffsetStore persists one ReconcileOffset per logical consumer.
type OffsetStore interface {
	Load(consumer string) (domain.ReconcileOffset, error)
	Save(consumer string, offset domain.ReconcileOffset) error
}

// FileOffsetStore persists offsets as one JSON file per consumer under dir,
// written via the write-tmp-then-rename discipline spec §5 requires for
// the single-writer reconcile offset file.
type FileOffsetStore struct {
	dir string
}

// NewFileOffsetStore builds a FileOffsetStore rooted at dir.
func NewFileOffsetStore(dir string) *FileOffsetStore {
	return &FileOffsetStore{dir: dir}
}

func (s *FileOffsetStore) path(consumer string) string {
	return filepath.Join(s.dir, consumer+".offset.json")
}

// Load reads the persisted offset for consumer. A missing file is not an
// error: it returns the zero offset, meaning "start from the beginning".
func (s *FileOffsetStore) Load(consumer string) (domain.ReconcileOffset, error) {
	raw, err := os.ReadFile(s.path(consumer))
	if err != nil {
		if os.IsNotExist(err) {
			return domain.ReconcileOffset{}, nil
		}
		return domain.ReconcileOffset{}, err
	}
	var offset domain.ReconcileOffset
	if err := json.Unmarshal(raw, &offset); err != nil {
		return domain.ReconcileOffset{}, err
	}
	return offset, nil
}

// Save persists offset for consumer by writing to a temp file in the same
// directory and renaming over the target — rename is atomic on the same
// filesystem, so a crash never leaves a half-written offset file.
func (s *FileOffsetStore) Save(consumer string, offset domain.ReconcileOffset) error {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return err
	}

	raw, err := json.Marshal(offset)
	if err != nil {
		return err
	}

	target := s.path(consumer)
	tmp := target + ".tmp"
	if err := os.WriteFile(tmp, raw, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, target)
}
