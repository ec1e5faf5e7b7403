package reconcile

import (
	"context"
	"net/http"
	"sort"
	"time"

	"github.com/hoangpro267200/omen/domain"
	"github.com/hoangpro267200/omen/emitter"
	"github.com/hoangpro267200/omen/internal/logging"
	"github.com/hoangpro267200/omen/internal/metrics"
	"github.com/hoangpro267200/omen/internal/resilience"
	"github.com/hoangpro267200/omen/ledger"
)

// persistEvery is how often (in replayed records) the offset is flushed to
// disk mid-run, per spec §4.10.
const persistEvery = 100

// Job scans sealed partitions from a persisted offset forward and replays
// unacknowledged records to the consumer.
type Job struct {
	consumer string
	reader   *ledger.Reader
	client   *emitter.ConsumerClient
	breaker  *resilience.CircuitBreaker
	offsets  OffsetStore
	logger   *logging.Logger
	prom     *metrics.Metrics
}

// WithPrometheus attaches Prometheus collectors; nil-safe if never called.
func (j *Job) WithPrometheus(m *metrics.Metrics) *Job {
	j.prom = m
	return j
}

// New builds a reconciliation Job for one logical consumer.
func New(consumer string, reader *ledger.Reader, client *emitter.ConsumerClient, breaker *resilience.CircuitBreaker, offsets OffsetStore, logger *logging.Logger) *Job {
	return &Job{consumer: consumer, reader: reader, client: client, breaker: breaker, offsets: offsets, logger: logger}
}

// RunOnce scans sealed (warm + cold) partitions from the persisted offset
// forward, replaying each record. It stops at the first 5xx/network
// failure without advancing past that record — the next run retries from
// there. Crash safety: duplicates are absorbed by the consumer's
// idempotency key.
func (j *Job) RunOnce(ctx context.Context) error {
	offset, err := j.offsets.Load(j.consumer)
	if err != nil {
		return err
	}

	partitions, err := j.sealedPartitions()
	if err != nil {
		return err
	}

	// partitions is already in creation order (sealedPartitions sorts by
	// CreatedAt); skip everything strictly before the partition the offset
	// names, then resume mid-partition from ByteOffset.
	reachedOffsetPartition := offset.PartitionID == ""
	sinceLast := 0
	for _, p := range partitions {
		fromOffset := int64(0)
		if !reachedOffsetPartition {
			if p.Path != offset.PartitionID {
				continue // already fully replayed
			}
			reachedOffsetPartition = true
			fromOffset = offset.ByteOffset
		}

		records, err := j.reader.IterRecords(p.Path, fromOffset)
		if err != nil {
			return err
		}

		for i, rec := range records {
			stop, err := j.replay(ctx, p.Path, rec, &offset)
			if err != nil {
				j.logErr(ctx, rec.Signal.SignalID, err)
			}
			if stop {
				j.offsets.Save(j.consumer, offset) //nolint:errcheck // best-effort; next run re-derives from last successful save
				if j.prom != nil {
					j.prom.SetReconcileLag(len(records) - i)
					j.prom.RecordReconcileRun("halted")
				}
				return nil
			}

			sinceLast++
			if sinceLast >= persistEvery {
				if err := j.offsets.Save(j.consumer, offset); err != nil {
					return err
				}
				sinceLast = 0
			}
		}
	}

	if j.prom != nil {
		j.prom.SetReconcileLag(0)
		j.prom.RecordReconcileRun("completed")
	}
	return j.offsets.Save(j.consumer, offset)
}

// replay POSTs one record to the consumer and decides whether the offset
// should advance past it, per spec §4.10 steps 4-6. It returns stop=true
// when the run must halt without advancing (5xx / network failure /
// circuit open).
func (j *Job) replay(ctx context.Context, partitionPath string, rec ledger.Record, offset *domain.ReconcileOffset) (stop bool, err error) {
	var outcome emitter.PublishOutcome
	execErr := j.breaker.Execute(ctx, func() error {
		o, err := j.client.Publish(ctx, rec.Signal, emitter.ReplaySourceReconcile)
		if err != nil {
			return err
		}
		outcome = o
		return nil
	})

	if execErr != nil {
		// Timeout, network failure, or circuit open: stop without
		// advancing; next run retries this record. A 5xx response is not an
		// error here and is handled by the status switch below.
		return true, execErr
	}

	switch {
	case outcome.StatusCode == http.StatusOK, outcome.StatusCode == http.StatusConflict:
		advance(offset, partitionPath, rec)
		if j.logger != nil {
			j.logger.LogReconcile(ctx, rec.Signal.SignalID, true, nil)
		}
		return false, nil
	case outcome.StatusCode >= 500:
		return true, nil
	default:
		// 4xx other than 409: unrecoverable for this record, log and
		// advance so the pipeline is never blocked on it.
		advance(offset, partitionPath, rec)
		if j.logger != nil {
			j.logger.LogReconcile(ctx, rec.Signal.SignalID, true, nil)
		}
		return false, nil
	}
}

func advance(offset *domain.ReconcileOffset, partitionPath string, rec ledger.Record) {
	offset.PartitionID = partitionPath
	offset.ByteOffset = rec.NextOffset
	offset.LastSeenSignalID = rec.Signal.SignalID
}

func (j *Job) logErr(ctx context.Context, signalID string, err error) {
	if j.logger == nil {
		return
	}
	j.logger.LogReconcile(ctx, signalID, false, err)
}

// sealedPartitions returns warm and cold partitions merged into creation
// order — the hot partition is never included; it is mutable.
func (j *Job) sealedPartitions() ([]ledger.PartitionInfo, error) {
	warm, err := j.reader.IterPartitions(ledger.TierWarm, nil, nil)
	if err != nil {
		return nil, err
	}
	cold, err := j.reader.IterPartitions(ledger.TierCold, nil, nil)
	if err != nil {
		return nil, err
	}

	all := append(warm, cold...)
	sort.Slice(all, func(i, j int) bool {
		if !all[i].CreatedAt.Equal(all[j].CreatedAt) {
			return all[i].CreatedAt.Before(all[j].CreatedAt)
		}
		return all[i].Path < all[j].Path
	})
	return all, nil
}

// Run executes RunOnce on a ticker until ctx is cancelled — the default
// interval per spec §4.10 is 5 minutes.
func (j *Job) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := j.RunOnce(ctx); err != nil {
				j.logErr(ctx, "", err)
			}
		}
	}
}
