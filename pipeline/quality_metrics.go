package pipeline

import (
	"sync"

	"github.com/hoangpro267200/omen/domain"
)

// QualityMetrics aggregates validation outcomes across every event the
// pipeline has processed, for confidence calibration and observability.
// Safe for concurrent use — every method takes QualityMetrics' own mutex.
type QualityMetrics struct {
	mu sync.Mutex

	totalReceived  int
	totalValidated int
	totalRejected  int

	rejectionsByRule   map[string]int
	rejectionsByStatus map[string]int
	confidenceDist     map[domain.ConfidenceLevel]int

	scoreSum float64
}

// NewQualityMetrics returns a zeroed QualityMetrics ready to record.
func NewQualityMetrics() *QualityMetrics {
	return &QualityMetrics{
		rejectionsByRule:   make(map[string]int),
		rejectionsByStatus: make(map[string]int),
		confidenceDist:     make(map[domain.ConfidenceLevel]int),
	}
}

// RecordValidation records one validation outcome: whether it passed overall
// and the per-rule results that produced that verdict.
func (m *QualityMetrics) RecordValidation(passed bool, results []domain.ValidationResult) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.totalReceived++
	if passed {
		m.totalValidated++
	} else {
		m.totalRejected++
		for _, r := range results {
			if r.Status != domain.RuleStatusPassed {
				m.rejectionsByRule[r.RuleName]++
				m.rejectionsByStatus[string(r.Status)]++
			}
		}
	}

	m.scoreSum += domain.MeanScore(results)
}

// RecordConfidence records a confidence level for distribution tracking.
func (m *QualityMetrics) RecordConfidence(level domain.ConfidenceLevel) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.confidenceDist[level]++
}

// Snapshot is a point-in-time, immutable copy of QualityMetrics safe to
// serialize or hand to a metrics exporter.
type Snapshot struct {
	TotalReceived      int                            `json:"total_received"`
	TotalValidated     int                            `json:"total_validated"`
	TotalRejected      int                             `json:"total_rejected"`
	RejectionRate      float64                        `json:"rejection_rate"`
	ValidationRate     float64                        `json:"validation_rate"`
	AvgValidationScore float64                        `json:"avg_validation_score"`
	RejectionsByRule   map[string]int                 `json:"rejections_by_rule"`
	RejectionsByStatus map[string]int                 `json:"rejections_by_status"`
	ConfidenceDist     map[domain.ConfidenceLevel]int `json:"confidence_distribution"`
}

// Snapshot returns a copy of the current metrics.
func (m *QualityMetrics) Snapshot() Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()

	s := Snapshot{
		TotalReceived:      m.totalReceived,
		TotalValidated:     m.totalValidated,
		TotalRejected:      m.totalRejected,
		RejectionsByRule:   make(map[string]int, len(m.rejectionsByRule)),
		RejectionsByStatus: make(map[string]int, len(m.rejectionsByStatus)),
		ConfidenceDist:     make(map[domain.ConfidenceLevel]int, len(m.confidenceDist)),
	}
	if m.totalReceived > 0 {
		s.RejectionRate = float64(m.totalRejected) / float64(m.totalReceived)
		s.ValidationRate = float64(m.totalValidated) / float64(m.totalReceived)
		s.AvgValidationScore = m.scoreSum / float64(m.totalReceived)
	}
	for k, v := range m.rejectionsByRule {
		s.RejectionsByRule[k] = v
	}
	for k, v := range m.rejectionsByStatus {
		s.RejectionsByStatus[k] = v
	}
	for k, v := range m.confidenceDist {
		s.ConfidenceDist[k] = v
	}
	return s
}
