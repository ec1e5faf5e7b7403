// Package hash provides canonical-JSON content hashing shared by the
// domain model, the ledger, and the emitter's idempotency keys.
//
// Canonicalization follows RFC 8785 (JSON Canonicalization Scheme) via
// gowebpki/jcs: object keys are sorted lexicographically, whitespace is
// stripped, and numbers are serialized in the ECMAScript-compatible
// shortest round-trip form. This is what makes input_event_hash, signal_id,
// and deterministic_trace_id byte-identical across processes and languages.
package hash

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/gowebpki/jcs"
)

// Canonical marshals v to JSON and transforms it into RFC 8785 canonical
// form. Callers must not rely on struct field order; JCS sorts object keys.
func Canonical(v interface{}) ([]byte, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("marshal for canonicalization: %w", err)
	}
	canon, err := jcs.Transform(raw)
	if err != nil {
		return nil, fmt.Errorf("canonicalize: %w", err)
	}
	return canon, nil
}

// SHA256Hex returns the lowercase hex SHA-256 digest of b.
func SHA256Hex(b []byte) string {
	sum := sha256.Sum256(b)
	return hex.EncodeToString(sum[:])
}

// ContentHash canonicalizes v and returns its SHA-256 hex digest.
func ContentHash(v interface{}) (string, error) {
	canon, err := Canonical(v)
	if err != nil {
		return "", err
	}
	return SHA256Hex(canon), nil
}

// EventHash returns the 16-hex-char input_event_hash for v, per spec §3:
// a truncation of SHA-256 over the canonical JSON of all fields.
func EventHash(v interface{}) (string, error) {
	full, err := ContentHash(v)
	if err != nil {
		return "", err
	}
	return full[:16], nil
}

// SignalID returns "OMEN-" + the uppercase first 10 hex chars of the
// SHA-256 digest of the canonical JSON of v (v must be the signal with
// signal_id and emitted_at omitted; domain.Signal.AssignID also omits
// generated_at).
func SignalID(v interface{}) (string, error) {
	full, err := ContentHash(v)
	if err != nil {
		return "", err
	}
	return "OMEN-" + strings.ToUpper(full[:10]), nil
}

// TraceID derives a deterministic trace id from the event hash. It is
// stable across reprocessing of the same RawEvent because it is a pure
// function of input_event_hash.
func TraceID(inputEventHash string) string {
	sum := sha256.Sum256([]byte("trace:" + inputEventHash))
	return hex.EncodeToString(sum[:])[:32]
}

// PartitionNonce returns a 12-hex-char random nonce for partition filenames
// (48 bits of randomness, per spec §9's resolution of the nonce-collision
// open question). Uses crypto/rand because filename collision-avoidance is
// a correctness property of the running system, not just a test seam.
func PartitionNonce() (string, error) {
	buf := make([]byte, 6)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate partition nonce: %w", err)
	}
	return hex.EncodeToString(buf), nil
}
