package emitter

import (
	"context"
	"fmt"
	"net/http"

	backoff "github.com/cenkalti/backoff/v4"

	"github.com/hoangpro267200/omen/domain"
	"github.com/hoangpro267200/omen/internal/clock"
	engineErrors "github.com/hoangpro267200/omen/internal/errors"
	"github.com/hoangpro267200/omen/internal/logging"
	"github.com/hoangpro267200/omen/internal/metrics"
	"github.com/hoangpro267200/omen/internal/resilience"
	"github.com/hoangpro267200/omen/ledger"
)

// Status is the terminal outcome of one emit attempt.
type Status string

const (
	StatusDelivered     Status = "DELIVERED"
	StatusDuplicate     Status = "DUPLICATE"
	StatusRejected      Status = "REJECTED"
	StatusHotPathFailed Status = "HOT_PATH_FAILED"
	StatusLedgerFailed  Status = "LEDGER_FAILED"
)

// Result is the outcome of Emit.
type Result struct {
	Status          Status
	AckID           string
	LedgerPartition string
	LedgerOffset    int64
	Err             error
}

// Emitter implements the dual-path protocol (spec §4.9): ledger append is
// mandatory and synchronous; the hot-path POST is best-effort, wrapped in a
// circuit breaker and publish retry, and never blocks the ledger write.
type Emitter struct {
	writer  *ledger.Writer
	client  *ConsumerClient
	breaker *resilience.CircuitBreaker
	retry   resilience.RetryConfig
	clock   clock.Provider
	logger  *logging.Logger
	prom    *metrics.Metrics
}

// WithPrometheus attaches Prometheus collectors; nil-safe if never called.
func (e *Emitter) WithPrometheus(m *metrics.Metrics) *Emitter {
	e.prom = m
	return e
}

// New builds an Emitter. Callers typically pass resilience.PublishRetryConfig()
// for retry and a resilience.CircuitBreaker tuned per spec §4.7's defaults.
func New(writer *ledger.Writer, client *ConsumerClient, breaker *resilience.CircuitBreaker, retry resilience.RetryConfig, clk clock.Provider, logger *logging.Logger) *Emitter {
	return &Emitter{writer: writer, client: client, breaker: breaker, retry: retry, clock: clk, logger: logger}
}

// Emit runs the dual-path protocol for signal. signal is mutated in place:
// EmittedAt is stamped exactly once, immediately after a successful ledger
// append, and never again — the emitter never modifies the signal after
// that point.
func (e *Emitter) Emit(ctx context.Context, signal *domain.Signal) Result {
	write, err := e.writer.Append(ctx, *signal)
	if err != nil {
		wrapped := engineErrors.LedgerWriteFailed(e.writer.ActivePartition(), err)
		if e.logger != nil {
			e.logger.LogLedgerAppend(ctx, e.writer.ActivePartition(), 0, wrapped)
		}
		if e.prom != nil {
			e.prom.RecordEmit(string(StatusLedgerFailed))
			e.prom.RecordLedgerAppend("failed", 0)
		}
		return Result{Status: StatusLedgerFailed, Err: wrapped}
	}
	signal.MarkEmitted(e.clock.Now())
	if e.logger != nil {
		e.logger.LogLedgerAppend(ctx, write.PartitionID, write.ByteOffset, nil)
	}
	if e.prom != nil {
		e.prom.RecordLedgerAppend("ok", 0)
	}

	result := e.hotPath(ctx, *signal)
	result.LedgerPartition = write.PartitionID
	result.LedgerOffset = write.ByteOffset

	if e.logger != nil {
		e.logger.LogEmit(ctx, signal.SignalID, string(result.Status), result.Err)
	}
	if e.prom != nil {
		e.prom.RecordEmit(string(result.Status))
		e.prom.SetCircuitState("hot_path", int(e.breaker.State()))
	}
	return result
}

// hotPath performs the best-effort publish, wrapped in circuit breaker and
// publish retry.
func (e *Emitter) hotPath(ctx context.Context, signal domain.Signal) Result {
	var outcome PublishOutcome
	var rejectErr error

	retryErr := resilience.Retry(ctx, e.retry, func() error {
		return e.breaker.Execute(ctx, func() error {
			o, err := e.client.Publish(ctx, signal, ReplaySourceHotPath)
			if err != nil {
				return err
			}
			outcome = o

			switch {
			case o.StatusCode == http.StatusOK:
				return nil
			case o.StatusCode == http.StatusConflict:
				return nil
			case o.StatusCode >= 400 && o.StatusCode < 500:
				rejectErr = engineErrors.PublishRejected(signal.SignalID, o.StatusCode, o.Detail)
				return backoff.Permanent(rejectErr)
			default:
				return fmt.Errorf("consumer returned status %d", o.StatusCode)
			}
		})
	})

	if rejectErr != nil {
		return Result{Status: StatusRejected, Err: rejectErr}
	}
	if retryErr != nil {
		return Result{Status: StatusHotPathFailed, Err: engineErrors.HotPathFailed(signal.SignalID, e.retry.MaxAttempts, retryErr)}
	}
	if outcome.StatusCode == http.StatusConflict {
		return Result{Status: StatusDuplicate, AckID: outcome.AckID}
	}
	return Result{Status: StatusDelivered, AckID: outcome.AckID}
}
