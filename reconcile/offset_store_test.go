package reconcile

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/hoangpro267200/omen/domain"
)

func TestFileOffsetStore_Load_MissingFileIsZeroOffset(t *testing.T) {
	s := NewFileOffsetStore(t.TempDir())

	offset, err := s.Load("consumer-a")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if offset != (domain.ReconcileOffset{}) {
		t.Errorf("expected zero offset for a missing file, got %+v", offset)
	}
}

func TestFileOffsetStore_SaveAndLoad_RoundTrip(t *testing.T) {
	s := NewFileOffsetStore(t.TempDir())
	want := domain.ReconcileOffset{PartitionID: "/data/warm/1.wal", ByteOffset: 128, LastSeenSignalID: "OMEN-1"}

	if err := s.Save("consumer-a", want); err != nil {
		t.Fatalf("Save: %v", err)
	}
	got, err := s.Load("consumer-a")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got != want {
		t.Errorf("Load = %+v, want %+v", got, want)
	}
}

func TestFileOffsetStore_Save_NoLeftoverTmpFile(t *testing.T) {
	dir := t.TempDir()
	s := NewFileOffsetStore(dir)

	if err := s.Save("consumer-a", domain.ReconcileOffset{ByteOffset: 1}); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "consumer-a.offset.json.tmp")); !os.IsNotExist(err) {
		t.Error("expected the temp file to be renamed away, not left behind")
	}
}

func TestFileOffsetStore_Save_OverwritesPreviousOffset(t *testing.T) {
	s := NewFileOffsetStore(t.TempDir())

	s.Save("consumer-a", domain.ReconcileOffset{ByteOffset: 1})
	s.Save("consumer-a", domain.ReconcileOffset{ByteOffset: 2})

	got, err := s.Load("consumer-a")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got.ByteOffset != 2 {
		t.Errorf("expected the most recent save to win, got ByteOffset=%d", got.ByteOffset)
	}
}

func TestFileOffsetStore_SeparateConsumersDoNotCollide(t *testing.T) {
	s := NewFileOffsetStore(t.TempDir())

	s.Save("consumer-a", domain.ReconcileOffset{ByteOffset: 1})
	s.Save("consumer-b", domain.ReconcileOffset{ByteOffset: 2})

	a, _ := s.Load("consumer-a")
	b, _ := s.Load("consumer-b")
	if a.ByteOffset != 1 || b.ByteOffset != 2 {
		t.Errorf("expected independent offsets per consumer, got a=%d b=%d", a.ByteOffset, b.ByteOffset)
	}
}
