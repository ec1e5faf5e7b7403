package pipeline

import (
	"testing"

	"github.com/hoangpro267200/omen/domain"
)

func TestQualityMetrics_Snapshot_Empty(t *testing.T) {
	m := NewQualityMetrics()
	s := m.Snapshot()
	if s.TotalReceived != 0 || s.RejectionRate != 0 {
		t.Errorf("expected zeroed snapshot, got %+v", s)
	}
}

func TestQualityMetrics_RecordValidation(t *testing.T) {
	m := NewQualityMetrics()

	m.RecordValidation(true, []domain.ValidationResult{{RuleName: "liquidity", Status: domain.RuleStatusPassed, Score: 1}})
	m.RecordValidation(false, []domain.ValidationResult{
		{RuleName: "liquidity", Status: domain.RuleStatusFailed, Score: 0},
		{RuleName: "news_quality_gate", Status: domain.RuleStatusPassed, Score: 1},
	})

	s := m.Snapshot()
	if s.TotalReceived != 2 {
		t.Errorf("TotalReceived = %d, want 2", s.TotalReceived)
	}
	if s.TotalValidated != 1 || s.TotalRejected != 1 {
		t.Errorf("TotalValidated=%d TotalRejected=%d, want 1/1", s.TotalValidated, s.TotalRejected)
	}
	if s.RejectionRate != 0.5 {
		t.Errorf("RejectionRate = %v, want 0.5", s.RejectionRate)
	}
	if s.RejectionsByRule["liquidity"] != 1 {
		t.Errorf("expected one rejection attributed to liquidity, got %d", s.RejectionsByRule["liquidity"])
	}
}

func TestQualityMetrics_RecordConfidence(t *testing.T) {
	m := NewQualityMetrics()
	m.RecordConfidence(domain.ConfidenceHigh)
	m.RecordConfidence(domain.ConfidenceHigh)
	m.RecordConfidence(domain.ConfidenceLow)

	s := m.Snapshot()
	if s.ConfidenceDist[domain.ConfidenceHigh] != 2 {
		t.Errorf("expected 2 HIGH, got %d", s.ConfidenceDist[domain.ConfidenceHigh])
	}
	if s.ConfidenceDist[domain.ConfidenceLow] != 1 {
		t.Errorf("expected 1 LOW, got %d", s.ConfidenceDist[domain.ConfidenceLow])
	}
}
