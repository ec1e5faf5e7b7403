// Package pipeline orchestrates the Engine's core transformation:
// dedupe by input hash -> enrich -> validate -> build Signal -> save, against
// a shared repository.
package pipeline

import (
	"context"
	"time"

	"github.com/hoangpro267200/omen/domain"
	"github.com/hoangpro267200/omen/enrich"
	"github.com/hoangpro267200/omen/internal/clock"
	"github.com/hoangpro267200/omen/internal/hash"
	"github.com/hoangpro267200/omen/internal/logging"
	"github.com/hoangpro267200/omen/internal/metrics"
	"github.com/hoangpro267200/omen/repository"
	"github.com/hoangpro267200/omen/rules"
)

// ProcessResult is the pipeline's outcome for one RawEvent.
type ProcessResult struct {
	Signal          domain.Signal
	Cached          bool
	Success         bool
	RejectionReason string
}

// Pipeline wires the rule engine, enricher, and repository together per
// spec §4.3's algorithm. It is safe for concurrent use across different
// events provided its Repository is itself concurrency-safe (both
// implementations in this module are).
type Pipeline struct {
	engine     *rules.Engine
	enricher   *enrich.Enricher
	repo       repository.Repository
	clock      clock.Provider
	metrics    *QualityMetrics
	prom       *metrics.Metrics
	logger     *logging.Logger
	source     string
}

// Config names the source system stamped onto every Signal this pipeline
// produces.
type Config struct {
	SourceSystem string
}

// New builds a Pipeline from its collaborators. Tests inject a
// clock.Fixed and an in-memory repository.Memory to get deterministic,
// hermetic runs.
func New(engine *rules.Engine, enricher *enrich.Enricher, repo repository.Repository, clk clock.Provider, qm *QualityMetrics, logger *logging.Logger, cfg Config) *Pipeline {
	return &Pipeline{
		engine:   engine,
		enricher: enricher,
		repo:     repo,
		clock:    clk,
		metrics:  qm,
		logger:   logger,
		source:   cfg.SourceSystem,
	}
}

// WithPrometheus attaches Prometheus collectors; nil-safe if never called.
func (p *Pipeline) WithPrometheus(m *metrics.Metrics) *Pipeline {
	p.prom = m
	return p
}

// Process runs one RawEvent through the full pipeline. Per the idempotency
// contract, submitting the same event bytes twice returns the previously
// stored Signal with Cached=true and does no further work.
func (p *Pipeline) Process(ctx context.Context, event domain.RawEvent) (ProcessResult, error) {
	start := p.clock.Now()

	if err := event.Validate(); err != nil {
		p.recordProcessed("invalid_input", start)
		return ProcessResult{Success: false, RejectionReason: "invalid_input"}, err
	}

	inputEventHash, err := hash.EventHash(event)
	if err != nil {
		return ProcessResult{}, err
	}

	if stored, found, err := p.repo.FindByHash(ctx, inputEventHash); err != nil {
		return ProcessResult{}, err
	} else if found {
		p.recordProcessed("cached", start)
		return ProcessResult{Signal: stored, Cached: true, Success: true}, nil
	}

	ctxRecord, err := p.enricher.Enrich(event)
	if err != nil {
		return ProcessResult{}, err
	}

	outcome := p.engine.Evaluate(event, ctxRecord)
	if p.metrics != nil {
		p.metrics.RecordValidation(outcome.Passed, outcome.Results)
	}
	if !outcome.Passed {
		if p.logger != nil {
			p.logger.WithContext(ctx).WithField("event_id", event.EventID).
				WithField("reason", outcome.Reason).Info("validation rejected event")
		}
		if p.prom != nil {
			p.prom.RecordRejection(outcome.Reason)
		}
		p.recordProcessed("rejected", start)
		return ProcessResult{Success: false, RejectionReason: outcome.Reason}, nil
	}

	signal, err := p.buildSignal(event, inputEventHash, ctxRecord, outcome.Results)
	if err != nil {
		return ProcessResult{}, err
	}

	if p.metrics != nil {
		p.metrics.RecordConfidence(signal.ConfidenceLevel)
	}

	if err := p.repo.Save(ctx, signal); err != nil {
		return ProcessResult{}, err
	}

	p.recordProcessed("accepted", start)
	return ProcessResult{Signal: signal, Cached: false, Success: true}, nil
}

func (p *Pipeline) recordProcessed(outcome string, start time.Time) {
	if p.prom == nil {
		return
	}
	p.prom.RecordProcessed(outcome, p.clock.Now().Sub(start))
}

func (p *Pipeline) buildSignal(event domain.RawEvent, inputEventHash string, ctxRecord domain.Context, results []domain.ValidationResult) (domain.Signal, error) {
	evidence := make(map[string]interface{}, len(results))
	for _, r := range results {
		if len(r.Evidence) > 0 {
			evidence[r.RuleName] = r.Evidence
		}
	}

	signal := domain.Signal{
		InputEventHash:       inputEventHash,
		DeterministicTraceID: hash.TraceID(inputEventHash),
		GeneratedAt:          p.clock.Now(),
		Probability:          event.Probability,
		ConfidenceLevel:      domain.DeriveConfidenceLevel(results),
		ValidationScores:     results,
		Evidence:             evidence,
		Context:              ctxRecord,
		SourceEventID:        event.EventID,
		SourceSystem:         p.source,
	}

	if err := signal.AssignID(); err != nil {
		return domain.Signal{}, err
	}
	return signal, nil
}
