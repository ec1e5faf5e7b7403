package ledger

import (
	"encoding/json"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/klauspost/compress/zstd"

	"github.com/hoangpro267200/omen/domain"
)

// Reader provides read-only access to sealed (and, for Tail, hot) partitions
// rooted at base.
type Reader struct {
	base string
}

// NewReader builds a Reader rooted at base.
func NewReader(base string) *Reader {
	return &Reader{base: base}
}

// IterPartitions returns every partition file under tier, in creation order
// (which equals lexicographic path order), optionally bounded to
// [since, until).
func (r *Reader) IterPartitions(tier Tier, since, until *time.Time) ([]PartitionInfo, error) {
	root := filepath.Join(r.base, string(tier))
	var infos []PartitionInfo

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if os.IsNotExist(err) {
				return nil
			}
			return err
		}
		if d.IsDir() {
			return nil
		}
		if !strings.HasSuffix(path, ".wal") && !strings.HasSuffix(path, ".wal.gz") {
			return nil
		}

		createdAt, err := partitionCreatedAt(path)
		if err != nil {
			return nil // skip unparseable files rather than fail the whole scan
		}
		if since != nil && createdAt.Before(*since) {
			return nil
		}
		if until != nil && !createdAt.Before(*until) {
			return nil
		}

		info, err := d.Info()
		if err != nil {
			return err
		}

		infos = append(infos, PartitionInfo{
			Path:      path,
			Tier:      tier,
			CreatedAt: createdAt,
			SizeBytes: info.Size(),
			Sealed:    tier != TierHot,
		})
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Slice(infos, func(i, j int) bool { return infos[i].Path < infos[j].Path })
	return infos, nil
}

// Record pairs a decoded Signal with its byte offset within its partition.
type Record struct {
	Offset     int64
	NextOffset int64
	Signal     domain.Signal
}

// IterRecords reads every well-formed record in partition starting at
// fromOffset. It is finite and not restartable — resuming from a given
// point is the caller's responsibility via fromOffset on the next call.
// A TruncatedFrameError at the tail is treated as end-of-stream, not a
// hard error: the WAL truncation rule (spec §4.5).
func (r *Reader) IterRecords(partition string, fromOffset int64) ([]Record, error) {
	rc, err := openPartitionForRead(partition)
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	if fromOffset > 0 {
		if _, err := io.CopyN(io.Discard, rc, fromOffset); err != nil {
			return nil, err
		}
	}

	var records []Record
	offset := fromOffset
	for {
		payload, err := readFrame(rc)
		if err != nil {
			if isTruncated(err) || err == io.EOF {
				break
			}
			return nil, err
		}

		var signal domain.Signal
		if err := json.Unmarshal(payload, &signal); err != nil {
			break // corrupt payload at tail is treated the same as a truncated frame
		}

		nextOffset := offset + int64(frameHeaderSize+len(payload))
		records = append(records, Record{Offset: offset, NextOffset: nextOffset, Signal: signal})
		offset = nextOffset
	}
	return records, nil
}

// Tail validates partition frame-by-frame and returns the last good byte
// offset — the point recovery should resume appending from (hot partitions)
// or the point reconciliation should treat as the end of available data
// (sealed partitions).
func (r *Reader) Tail(partition string) (int64, error) {
	rc, err := openPartitionForRead(partition)
	if err != nil {
		return 0, err
	}
	defer rc.Close()

	var offset int64
	for {
		payload, err := readFrame(rc)
		if err != nil {
			if isTruncated(err) || err == io.EOF {
				break
			}
			return 0, err
		}
		offset += int64(frameHeaderSize + len(payload))
	}
	return offset, nil
}

func isTruncated(err error) bool {
	_, ok := err.(*TruncatedFrameError)
	return ok
}

// openPartitionForRead opens partition for reading, transparently
// decompressing .gz (zstd-framed, see DESIGN.md) cold partitions.
func openPartitionForRead(partition string) (io.ReadCloser, error) {
	f, err := os.Open(partition)
	if err != nil {
		return nil, err
	}
	if !strings.HasSuffix(partition, ".gz") {
		return f, nil
	}

	zr, err := zstd.NewReader(f)
	if err != nil {
		f.Close()
		return nil, err
	}
	return &zstdReadCloser{zr: zr, f: f}, nil
}

// zstdReadCloser adapts a *zstd.Decoder (which exposes Close() with no
// error) to io.ReadCloser while also closing the underlying file.
type zstdReadCloser struct {
	zr *zstd.Decoder
	f  *os.File
}

func (z *zstdReadCloser) Read(p []byte) (int, error) { return z.zr.Read(p) }

func (z *zstdReadCloser) Close() error {
	z.zr.Close()
	return z.f.Close()
}
