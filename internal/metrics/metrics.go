// Package metrics provides Prometheus metrics collection for the signal
// engine's pipeline, emitter, ledger, and reconciliation components.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds every Prometheus collector the engine registers.
type Metrics struct {
	// Pipeline
	EventsProcessedTotal *prometheus.CounterVec
	ValidationRejections *prometheus.CounterVec
	PipelineDuration     prometheus.Histogram

	// Emitter
	EmitOutcomesTotal *prometheus.CounterVec
	CircuitState      *prometheus.GaugeVec

	// Ledger
	LedgerAppendsTotal  *prometheus.CounterVec
	LedgerBytesWritten  prometheus.Counter
	PartitionsSealed    prometheus.Counter

	// Reconciliation
	ReconcileLagRecords prometheus.Gauge
	ReconcileRunsTotal  *prometheus.CounterVec
}

// New creates a Metrics instance registered against the default registry.
func New() *Metrics {
	return NewWithRegistry(prometheus.DefaultRegisterer)
}

// NewWithRegistry creates a Metrics instance registered against registerer,
// which may be nil to skip registration (useful in tests that construct
// multiple instances in the same process).
func NewWithRegistry(registerer prometheus.Registerer) *Metrics {
	m := &Metrics{
		EventsProcessedTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "omen_events_processed_total",
				Help: "Total number of raw events processed by the pipeline",
			},
			[]string{"outcome"},
		),
		ValidationRejections: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "omen_validation_rejections_total",
				Help: "Total number of events rejected by the rule engine",
			},
			[]string{"rule"},
		),
		PipelineDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "omen_pipeline_duration_seconds",
				Help:    "End-to-end pipeline processing duration",
				Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5},
			},
		),

		EmitOutcomesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "omen_emit_outcomes_total",
				Help: "Total number of emit attempts by terminal status",
			},
			[]string{"status"},
		),
		CircuitState: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "omen_circuit_breaker_state",
				Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
			},
			[]string{"name"},
		),

		LedgerAppendsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "omen_ledger_appends_total",
				Help: "Total number of ledger append attempts",
			},
			[]string{"status"},
		),
		LedgerBytesWritten: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "omen_ledger_bytes_written_total",
				Help: "Total bytes written to the ledger, framing included",
			},
		),
		PartitionsSealed: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "omen_ledger_partitions_sealed_total",
				Help: "Total number of hot partitions sealed into warm",
			},
		),

		ReconcileLagRecords: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "omen_reconcile_lag_records",
				Help: "Records remaining to replay as of the last reconciliation run",
			},
		),
		ReconcileRunsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "omen_reconcile_runs_total",
				Help: "Total number of reconciliation runs by outcome",
			},
			[]string{"outcome"},
		),
	}

	if registerer != nil {
		registerer.MustRegister(
			m.EventsProcessedTotal,
			m.ValidationRejections,
			m.PipelineDuration,
			m.EmitOutcomesTotal,
			m.CircuitState,
			m.LedgerAppendsTotal,
			m.LedgerBytesWritten,
			m.PartitionsSealed,
			m.ReconcileLagRecords,
			m.ReconcileRunsTotal,
		)
	}

	return m
}

// RecordProcessed records one pipeline run's terminal outcome and duration.
func (m *Metrics) RecordProcessed(outcome string, duration time.Duration) {
	m.EventsProcessedTotal.WithLabelValues(outcome).Inc()
	m.PipelineDuration.Observe(duration.Seconds())
}

// RecordRejection records a validation rejection attributed to rule.
func (m *Metrics) RecordRejection(rule string) {
	m.ValidationRejections.WithLabelValues(rule).Inc()
}

// RecordEmit records one emit attempt's terminal status.
func (m *Metrics) RecordEmit(status string) {
	m.EmitOutcomesTotal.WithLabelValues(status).Inc()
}

// SetCircuitState records the current state (0/1/2) of the named circuit breaker.
func (m *Metrics) SetCircuitState(name string, state int) {
	m.CircuitState.WithLabelValues(name).Set(float64(state))
}

// RecordLedgerAppend records one ledger append attempt and its byte cost.
func (m *Metrics) RecordLedgerAppend(status string, bytesWritten int) {
	m.LedgerAppendsTotal.WithLabelValues(status).Inc()
	if bytesWritten > 0 {
		m.LedgerBytesWritten.Add(float64(bytesWritten))
	}
}

// RecordPartitionSealed records one hot-to-warm partition seal.
func (m *Metrics) RecordPartitionSealed() {
	m.PartitionsSealed.Inc()
}

// SetReconcileLag records how many records remain to replay.
func (m *Metrics) SetReconcileLag(records int) {
	m.ReconcileLagRecords.Set(float64(records))
}

// RecordReconcileRun records one reconciliation run's terminal outcome.
func (m *Metrics) RecordReconcileRun(outcome string) {
	m.ReconcileRunsTotal.WithLabelValues(outcome).Inc()
}
