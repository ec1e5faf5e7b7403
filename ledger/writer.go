package ledger

import (
	"context"
	"encoding/binary"
	"encoding/json"
	"hash/crc32"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/hoangpro267200/omen/domain"
	"github.com/hoangpro267200/omen/internal/clock"
)

const (
	// flushEveryFrames forces a flush+sync after this many appends even if
	// flushInterval has not elapsed, per spec §4.5.
	flushEveryFrames = 32
	// flushInterval forces a flush+sync after this much wall time even if
	// flushEveryFrames has not been reached.
	flushInterval = 500 * time.Millisecond
)

// WriteResult is returned by Append: where the record landed.
type WriteResult struct {
	PartitionID string
	ByteOffset  int64
}

// Writer owns exactly one active hot partition at a time (single-writer
// discipline, spec §4.5/§5). All appends are serialized through mu.
type Writer struct {
	mu sync.Mutex

	base  string
	clock clock.Provider

	file        *os.File
	path        string
	createdAt   time.Time
	offset      int64
	recordCount uint32
	fileCRC     uint32
	unflushed   int
	lastFlush   time.Time

	closed bool
}

// NewWriter opens (or creates) a hot partition rooted at base. base must
// already exist or be creatable via MkdirAll.
func NewWriter(base string, clk clock.Provider) (*Writer, error) {
	w := &Writer{base: base, clock: clk}
	if err := w.rollHot(); err != nil {
		return nil, err
	}
	return w, nil
}

// rollHot opens a brand new hot partition file. Callers must hold mu.
func (w *Writer) rollHot() error {
	now := w.clock.Now()
	path, err := newPartitionPath(w.base, TierHot, now)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return err
	}

	w.file = f
	w.path = path
	w.createdAt = now
	w.offset = 0
	w.recordCount = 0
	w.fileCRC = 0
	w.unflushed = 0
	w.lastFlush = now
	return nil
}

// Append serializes signal to canonical-ish JSON and writes it as one WAL
// frame to the active hot partition. The append is atomic at the frame
// level: either the full length+crc+payload lands, or (on error) the
// caller must treat the signal as not written — no partial frame is left
// addressable by offset.
func (w *Writer) Append(_ context.Context, signal domain.Signal) (WriteResult, error) {
	payload, err := json.Marshal(signal)
	if err != nil {
		return WriteResult{}, err
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return WriteResult{}, os.ErrClosed
	}

	offset := w.offset
	n, err := writeFrame(w.file, payload)
	if err != nil {
		return WriteResult{}, err
	}

	w.offset += int64(n)
	w.recordCount++
	w.fileCRC = crc32.Update(w.fileCRC, crc32.IEEETable, payload)
	w.unflushed++

	if w.unflushed >= flushEveryFrames || time.Since(w.lastFlush) >= flushInterval {
		if err := w.flushLocked(); err != nil {
			return WriteResult{}, err
		}
	}

	return WriteResult{PartitionID: w.path, ByteOffset: offset}, nil
}

func (w *Writer) flushLocked() error {
	if err := w.file.Sync(); err != nil {
		return err
	}
	w.unflushed = 0
	w.lastFlush = w.clock.Now()
	return nil
}

// Flush forces a flush+sync of the active hot partition regardless of the
// frame-count/interval thresholds.
func (w *Writer) Flush() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.flushLocked()
}

// ActivePartition reports the path of the currently open hot partition.
func (w *Writer) ActivePartition() string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.path
}

// ShouldSeal reports whether the active partition has crossed maxSize
// bytes or maxAge since creation — the lifecycle manager's Seal step uses
// this to decide which partitions to roll.
func (w *Writer) ShouldSeal(maxSize int64, maxAge time.Duration) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	if maxSize > 0 && w.offset >= maxSize {
		return true
	}
	if maxAge > 0 && w.clock.Now().Sub(w.createdAt) >= maxAge {
		return true
	}
	return false
}

// Seal flushes, writes the sealed trailer, renames hot -> warm, and opens a
// fresh hot partition to replace it. Returns the path of the now-sealed
// (warm) partition.
func (w *Writer) Seal() (string, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if err := w.flushLocked(); err != nil {
		return "", err
	}

	trailer := make([]byte, 0, len(sealTrailerMagic)+8)
	trailer = append(trailer, []byte(sealTrailerMagic)...)
	countBuf := make([]byte, 4)
	binary.BigEndian.PutUint32(countBuf, w.recordCount)
	trailer = append(trailer, countBuf...)
	crcBuf := make([]byte, 4)
	binary.BigEndian.PutUint32(crcBuf, w.fileCRC)
	trailer = append(trailer, crcBuf...)

	if _, err := w.file.Write(trailer); err != nil {
		return "", err
	}
	if err := w.file.Sync(); err != nil {
		return "", err
	}
	if err := w.file.Close(); err != nil {
		return "", err
	}

	sealedTo, err := sealedPath(w.path)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(filepath.Dir(sealedTo), 0o755); err != nil {
		return "", err
	}
	if err := os.Rename(w.path, sealedTo); err != nil {
		return "", err
	}

	if err := w.rollHot(); err != nil {
		return "", err
	}

	return sealedTo, nil
}

// Close flushes and closes the active hot partition without sealing it —
// used on process shutdown. The WAL truncation rule handles any records
// appended after the last flush but before an unclean exit.
func (w *Writer) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return nil
	}
	w.closed = true
	if err := w.flushLocked(); err != nil {
		return err
	}
	return w.file.Close()
}
