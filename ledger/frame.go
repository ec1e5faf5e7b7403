// Package ledger implements the Engine's WAL-framed, partitioned
// append-only store: the system of record for every emitted Signal.
package ledger

import (
	"encoding/binary"
	"fmt"
	"hash/crc32"
	"io"
)

// frameHeaderSize is length_prefix (uint32) + crc32 (uint32), both
// big-endian, preceding the payload bytes. Bit-exact per spec §6.
const frameHeaderSize = 8

// sealTrailerMagic is the fixed ASCII marker that opens a sealed
// partition's trailer.
const sealTrailerMagic = "WALEND"

// writeFrame encodes one WAL frame to w: uint32_be length ‖ uint32_be
// crc32(payload) ‖ payload. The CRC covers payload bytes only.
func writeFrame(w io.Writer, payload []byte) (int, error) {
	header := make([]byte, frameHeaderSize)
	binary.BigEndian.PutUint32(header[0:4], uint32(len(payload)))
	binary.BigEndian.PutUint32(header[4:8], crc32.ChecksumIEEE(payload))

	n1, err := w.Write(header)
	if err != nil {
		return n1, err
	}
	n2, err := w.Write(payload)
	return n1 + n2, err
}

// readFrame reads one frame from r. It returns io.EOF when r is exhausted
// exactly at a frame boundary (the clean-shutdown case), and a
// *TruncatedFrameError when a partial frame or CRC mismatch is encountered
// (the crash-recovery case) — callers apply the WAL truncation rule by
// stopping at the first TruncatedFrameError rather than propagating it as a
// hard failure.
func readFrame(r io.Reader) (payload []byte, err error) {
	header := make([]byte, frameHeaderSize)
	if _, err := io.ReadFull(r, header); err != nil {
		if err == io.ErrUnexpectedEOF {
			return nil, &TruncatedFrameError{Reason: "short header"}
		}
		return nil, err
	}

	length := binary.BigEndian.Uint32(header[0:4])
	wantCRC := binary.BigEndian.Uint32(header[4:8])

	payload = make([]byte, length)
	if _, err := io.ReadFull(r, payload); err != nil {
		return nil, &TruncatedFrameError{Reason: "short payload"}
	}

	if gotCRC := crc32.ChecksumIEEE(payload); gotCRC != wantCRC {
		return nil, &TruncatedFrameError{Reason: "crc mismatch"}
	}

	return payload, nil
}

// TruncatedFrameError signals that a record at the tail of a partition is
// incomplete or corrupt — the WAL truncation rule (spec §4.5): recovery
// reads exactly all previously completed frames and no partial frame.
type TruncatedFrameError struct {
	Reason string
}

func (e *TruncatedFrameError) Error() string {
	return fmt.Sprintf("truncated WAL frame: %s", e.Reason)
}
