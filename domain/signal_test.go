package domain

import (
	"testing"
	"time"
)

func baseSignal() Signal {
	return Signal{
		InputEventHash:       "abc123",
		DeterministicTraceID: "trace-1",
		GeneratedAt:          time.Date(2026, 7, 1, 0, 0, 0, 0, time.UTC),
		Probability:          0.62,
		ConfidenceLevel:      ConfidenceHigh,
		ValidationScores:     []ValidationResult{{RuleName: "liquidity", Status: RuleStatusPassed, Score: 0.9}},
		Context:              Context{TemporalBucket: "us_morning"},
		SourceEventID:        "pm-1",
		SourceSystem:         "polymarket",
	}
}

func TestSignal_AssignID_Deterministic(t *testing.T) {
	s1 := baseSignal()
	s2 := baseSignal()

	if err := s1.AssignID(); err != nil {
		t.Fatalf("AssignID: %v", err)
	}
	if err := s2.AssignID(); err != nil {
		t.Fatalf("AssignID: %v", err)
	}

	if s1.SignalID == "" {
		t.Fatal("expected non-empty signal_id")
	}
	if s1.SignalID != s2.SignalID {
		t.Errorf("identical signals produced different ids: %s vs %s", s1.SignalID, s2.SignalID)
	}
}

func TestSignal_AssignID_ChangesWithContent(t *testing.T) {
	s1 := baseSignal()
	s2 := baseSignal()
	s2.Probability = 0.11

	if err := s1.AssignID(); err != nil {
		t.Fatalf("AssignID: %v", err)
	}
	if err := s2.AssignID(); err != nil {
		t.Fatalf("AssignID: %v", err)
	}
	if s1.SignalID == s2.SignalID {
		t.Error("expected different ids for different signal content")
	}
}

func TestSignal_AssignID_IgnoresEmittedAt(t *testing.T) {
	s1 := baseSignal()
	s2 := baseSignal()
	now := time.Now()
	s2.MarkEmitted(now)

	if err := s1.AssignID(); err != nil {
		t.Fatalf("AssignID: %v", err)
	}
	if err := s2.AssignID(); err != nil {
		t.Fatalf("AssignID: %v", err)
	}
	if s1.SignalID != s2.SignalID {
		t.Error("emitted_at must not affect signal_id")
	}
}

func TestSignal_MarkEmitted(t *testing.T) {
	s := baseSignal()
	if s.EmittedAt != nil {
		t.Fatal("expected nil EmittedAt before MarkEmitted")
	}
	now := time.Now()
	s.MarkEmitted(now)
	if s.EmittedAt == nil || !s.EmittedAt.Equal(now) {
		t.Errorf("EmittedAt = %v, want %v", s.EmittedAt, now)
	}
}
