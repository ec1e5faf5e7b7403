package domain

import (
	"time"

	"github.com/hoangpro267200/omen/internal/hash"
)

// Signal is the pipeline's output: a validated, enriched, content-addressed
// record derived from exactly one RawEvent. It is the durable unit stored
// in the repository and the ledger.
type Signal struct {
	SignalID              string             `json:"signal_id"`
	InputEventHash        string             `json:"input_event_hash"`
	DeterministicTraceID  string             `json:"deterministic_trace_id"`
	GeneratedAt           time.Time          `json:"generated_at"`
	EmittedAt              *time.Time         `json:"emitted_at,omitempty"`
	Probability           float64            `json:"probability"`
	ConfidenceLevel       ConfidenceLevel    `json:"confidence_level"`
	ValidationScores      []ValidationResult `json:"validation_scores"`
	Evidence               map[string]interface{} `json:"evidence,omitempty"`
	Context                Context            `json:"context"`
	SourceEventID          string             `json:"source_event_id"`
	SourceSystem           string             `json:"source_system"`
}

// identity is the subset of Signal hashed to derive signal_id. It
// deliberately excludes SignalID and EmittedAt: the former would be
// self-referential, the latter is set after the hash is computed and would
// make the id non-deterministic across reprocessing. GeneratedAt is not part
// of it either, so the id does not depend on the time the signal was built.
type identity struct {
	InputEventHash   string                 `json:"input_event_hash"`
	TraceID          string                 `json:"deterministic_trace_id"`
	Probability      float64                `json:"probability"`
	ConfidenceLevel  ConfidenceLevel        `json:"confidence_level"`
	ValidationScores []ValidationResult     `json:"validation_scores"`
	Evidence         map[string]interface{} `json:"evidence,omitempty"`
	Context          Context                `json:"context"`
	SourceEventID    string                 `json:"source_event_id"`
	SourceSystem     string                 `json:"source_system"`
}

// AssignID computes and sets SignalID from the signal's current fields
// (excluding SignalID, EmittedAt and GeneratedAt). Callers must assign it
// before any other field that participates in identity changes again.
func (s *Signal) AssignID() error {
	id, err := hash.SignalID(identity{
		InputEventHash:   s.InputEventHash,
		TraceID:          s.DeterministicTraceID,
		Probability:      s.Probability,
		ConfidenceLevel:  s.ConfidenceLevel,
		ValidationScores: s.ValidationScores,
		Evidence:         s.Evidence,
		Context:          s.Context,
		SourceEventID:    s.SourceEventID,
		SourceSystem:     s.SourceSystem,
	})
	if err != nil {
		return err
	}
	s.SignalID = id
	return nil
}

// MarkEmitted stamps EmittedAt. The emitter calls this exactly once, after
// the ledger append succeeds — never before, never twice.
func (s *Signal) MarkEmitted(at time.Time) {
	t := at
	s.EmittedAt = &t
}
