package ledger

import (
	"strings"
	"testing"
	"time"
)

func TestNewPartitionPath_Shape(t *testing.T) {
	createdAt := time.Date(2026, 7, 31, 12, 0, 0, 0, time.UTC)
	path, err := newPartitionPath("/data/ledger", TierHot, createdAt)
	if err != nil {
		t.Fatalf("newPartitionPath: %v", err)
	}
	if !strings.HasPrefix(path, "/data/ledger/hot/2026/07/31/") {
		t.Errorf("unexpected path shape: %s", path)
	}
	if !strings.HasSuffix(path, ".wal") {
		t.Errorf("expected .wal suffix, got %s", path)
	}
}

func TestSealedPath_HotToWarm(t *testing.T) {
	hot := "/data/ledger/hot/2026/07/31/123-abcdef012345.wal"
	warm, err := sealedPath(hot)
	if err != nil {
		t.Fatalf("sealedPath: %v", err)
	}
	want := "/data/ledger/warm/2026/07/31/123-abcdef012345.wal"
	if warm != want {
		t.Errorf("sealedPath = %s, want %s", warm, want)
	}
}

func TestRetierPath_TierNotFound(t *testing.T) {
	_, err := retierPath("/data/ledger/cold/2026/07/31/1.wal", TierWarm, TierCold)
	if err == nil {
		t.Fatal("expected error when the 'from' tier is absent from the path")
	}
}

func TestCompressedPath(t *testing.T) {
	got := compressedPath("/data/ledger/cold/2026/07/31/1.wal")
	if got != "/data/ledger/cold/2026/07/31/1.wal.gz" {
		t.Errorf("compressedPath = %s", got)
	}
}

func TestPartitionCreatedAt_RoundTrip(t *testing.T) {
	createdAt := time.Date(2026, 7, 31, 12, 0, 0, 0, time.UTC)
	path, err := newPartitionPath("/data/ledger", TierHot, createdAt)
	if err != nil {
		t.Fatalf("newPartitionPath: %v", err)
	}

	got, err := partitionCreatedAt(path)
	if err != nil {
		t.Fatalf("partitionCreatedAt: %v", err)
	}
	if !got.Equal(createdAt) {
		t.Errorf("partitionCreatedAt = %v, want %v", got, createdAt)
	}
}

func TestPartitionCreatedAt_CompressedSuffix(t *testing.T) {
	createdAt := time.UnixMilli(1700000000000).UTC()
	path, _ := newPartitionPath("/data/ledger", TierCold, createdAt)
	gz := path + ".gz"

	got, err := partitionCreatedAt(gz)
	if err != nil {
		t.Fatalf("partitionCreatedAt: %v", err)
	}
	if !got.Equal(createdAt) {
		t.Errorf("partitionCreatedAt(.gz) = %v, want %v", got, createdAt)
	}
}

func TestPartitionCreatedAt_Malformed(t *testing.T) {
	if _, err := partitionCreatedAt("/data/ledger/hot/2026/07/31/not-a-partition"); err == nil {
		t.Fatal("expected error for malformed partition filename")
	}
}
