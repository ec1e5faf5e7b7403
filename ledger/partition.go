package ledger

import (
	"fmt"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/hoangpro267200/omen/internal/hash"
)

// Tier is a partition's place in the hot -> warm -> cold -> deleted
// lifecycle.
type Tier string

const (
	TierHot  Tier = "hot"
	TierWarm Tier = "warm"
	TierCold Tier = "cold"
)

// PartitionInfo describes one partition file: its path, tier, and size.
// Ordering across partitions is by (date, epoch_ms, nonce) lexicographic on
// path, which also equals creation order.
type PartitionInfo struct {
	Path      string
	Tier      Tier
	CreatedAt time.Time
	SizeBytes int64
	Sealed    bool
}

// newPartitionPath builds the path for a new partition rooted at base, for
// the given tier and creation time, per spec §6:
// <base>/<tier>/<YYYY>/<MM>/<DD>/<epoch_ms>-<12-hex-nonce>.wal
func newPartitionPath(base string, tier Tier, createdAt time.Time) (string, error) {
	nonce, err := hash.PartitionNonce()
	if err != nil {
		return "", err
	}
	dir := filepath.Join(
		base,
		string(tier),
		fmt.Sprintf("%04d", createdAt.Year()),
		fmt.Sprintf("%02d", int(createdAt.Month())),
		fmt.Sprintf("%02d", createdAt.Day()),
	)
	filename := fmt.Sprintf("%d-%s.wal", createdAt.UnixMilli(), nonce)
	return filepath.Join(dir, filename), nil
}

// sealedPath renames a hot partition's file name unchanged but its tier
// directory to warm — sealing never compresses; that is the lifecycle
// manager's Compress step.
func sealedPath(hotPath string) (string, error) {
	return retierPath(hotPath, TierHot, TierWarm)
}

// retierPath rewrites the <tier> path segment of p from 'from' to 'to'.
func retierPath(p string, from, to Tier) (string, error) {
	parts := strings.Split(filepath.ToSlash(p), "/")
	for i, part := range parts {
		if Tier(part) == from {
			parts[i] = string(to)
			return filepath.FromSlash(strings.Join(parts, "/")), nil
		}
	}
	return "", fmt.Errorf("retier %s: tier %q not found in path", p, from)
}

// compressedPath appends the .gz suffix a zstd-compressed cold partition
// carries (the suffix is historical; the lifecycle manager's Compress step
// actually uses zstd framing, not gzip — see DESIGN.md).
func compressedPath(p string) string {
	return p + ".gz"
}

// partitionCreatedAt parses the epoch_ms component out of a partition's
// filename.
func partitionCreatedAt(p string) (time.Time, error) {
	base := filepath.Base(p)
	base = strings.TrimSuffix(base, ".gz")
	base = strings.TrimSuffix(base, ".wal")
	idx := strings.LastIndex(base, "-")
	if idx <= 0 {
		return time.Time{}, fmt.Errorf("malformed partition filename: %s", p)
	}
	ms, err := strconv.ParseInt(base[:idx], 10, 64)
	if err != nil {
		return time.Time{}, fmt.Errorf("malformed partition filename: %s: %w", p, err)
	}
	return time.UnixMilli(ms).UTC(), nil
}
