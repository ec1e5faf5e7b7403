package ledger

import (
	"context"
	"os"
	"path/filepath"
	"time"

	"github.com/klauspost/compress/zstd"

	"github.com/hoangpro267200/omen/internal/clock"
	"github.com/hoangpro267200/omen/internal/logging"
	"github.com/hoangpro267200/omen/internal/metrics"
)

// LifecycleConfig controls the age/size thresholds that drive the
// Seal/Compress/Archive/Delete tasks (spec §4.11).
type LifecycleConfig struct {
	HotMaxSizeBytes   int64
	HotMaxAge         time.Duration
	WarmRetention     time.Duration
	ColdRetention     time.Duration
	DeleteAfter       time.Duration
}

// DefaultLifecycleConfig mirrors the spec's stated defaults: 64 MiB / 1 h
// hot rollover, generous warm/cold/delete windows suitable for a first
// production deployment.
func DefaultLifecycleConfig() LifecycleConfig {
	return LifecycleConfig{
		HotMaxSizeBytes: 64 << 20,
		HotMaxAge:       time.Hour,
		WarmRetention:   7 * 24 * time.Hour,
		ColdRetention:   30 * 24 * time.Hour,
		DeleteAfter:     365 * 24 * time.Hour,
	}
}

// Manager runs the partition lifecycle's periodic tasks: seal hot
// partitions that have aged or grown past threshold, compress warm
// partitions into cold, archive cold partitions to durable storage, and
// delete archive entries past their retention window.
type Manager struct {
	base    string
	writer  *Writer
	reader  *Reader
	archive ArchiveStore
	clock   clock.Provider
	config  LifecycleConfig
	logger  *logging.Logger
	prom    *metrics.Metrics
}

// WithPrometheus attaches Prometheus collectors; nil-safe if never called.
func (m *Manager) WithPrometheus(p *metrics.Metrics) *Manager {
	m.prom = p
	return m
}

// NewManager builds a Manager over writer's hot partition and base's
// on-disk partition tree.
func NewManager(base string, writer *Writer, archive ArchiveStore, clk clock.Provider, cfg LifecycleConfig, logger *logging.Logger) *Manager {
	return &Manager{
		base:    base,
		writer:  writer,
		reader:  NewReader(base),
		archive: archive,
		clock:   clk,
		config:  cfg,
		logger:  logger,
	}
}

// RunOnce executes Seal, Compress, Archive, and Delete in sequence. Each
// task is idempotent and safe to re-run after a partial failure; a failure
// in one task is logged and does not prevent the others from running.
func (m *Manager) RunOnce(ctx context.Context) {
	if err := m.seal(); err != nil {
		m.logErr(ctx, "seal", err)
	}
	if err := m.compress(ctx); err != nil {
		m.logErr(ctx, "compress", err)
	}
	if err := m.archivePartitions(ctx); err != nil {
		m.logErr(ctx, "archive", err)
	}
	if err := m.deleteExpired(ctx); err != nil {
		m.logErr(ctx, "delete", err)
	}
}

// Run executes RunOnce on a ticker until ctx is cancelled.
func (m *Manager) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.RunOnce(ctx)
		}
	}
}

func (m *Manager) logErr(ctx context.Context, task string, err error) {
	if m.logger == nil {
		return
	}
	m.logger.WithContext(ctx).WithField("task", task).WithError(err).Warn("lifecycle task failed")
}

// seal rolls the active hot partition if it has crossed the configured
// size or age threshold.
func (m *Manager) seal() error {
	if !m.writer.ShouldSeal(m.config.HotMaxSizeBytes, m.config.HotMaxAge) {
		return nil
	}
	_, err := m.writer.Seal()
	if err == nil && m.prom != nil {
		m.prom.RecordPartitionSealed()
	}
	return err
}

// compress zstd-compresses warm partitions older than WarmRetention into
// the cold tier, frame boundaries intact (compression operates on the
// whole byte stream; decompression reproduces it exactly, so readers see
// identical frames either way).
func (m *Manager) compress(ctx context.Context) error {
	cutoff := m.clock.Now().Add(-m.config.WarmRetention)
	partitions, err := m.reader.IterPartitions(TierWarm, nil, &cutoff)
	if err != nil {
		return err
	}

	for _, p := range partitions {
		if err := m.compressOne(p); err != nil {
			m.logErr(ctx, "compress:"+p.Path, err)
			continue
		}
	}
	return nil
}

func (m *Manager) compressOne(p PartitionInfo) error {
	coldPath, err := retierPath(p.Path, TierWarm, TierCold)
	if err != nil {
		return err
	}
	coldPath = compressedPath(coldPath)

	if err := os.MkdirAll(filepath.Dir(coldPath), 0o755); err != nil {
		return err
	}

	src, err := os.Open(p.Path)
	if err != nil {
		return err
	}
	defer src.Close()

	dst, err := os.OpenFile(coldPath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return err
	}
	defer dst.Close()

	zw, err := zstd.NewWriter(dst)
	if err != nil {
		return err
	}
	if _, err := zw.ReadFrom(src); err != nil {
		zw.Close()
		return err
	}
	if err := zw.Close(); err != nil {
		return err
	}

	return os.Remove(p.Path)
}

// archivePartitions writes cold partitions older than ColdRetention to the
// ArchiveStore and removes their local copy.
func (m *Manager) archivePartitions(ctx context.Context) error {
	if m.archive == nil {
		return nil
	}
	cutoff := m.clock.Now().Add(-m.config.ColdRetention)
	partitions, err := m.reader.IterPartitions(TierCold, nil, &cutoff)
	if err != nil {
		return err
	}

	for _, p := range partitions {
		if err := m.archiveOne(ctx, p); err != nil {
			m.logErr(ctx, "archive:"+p.Path, err)
			continue
		}
	}
	return nil
}

func (m *Manager) archiveOne(ctx context.Context, p PartitionInfo) error {
	data, err := os.ReadFile(p.Path)
	if err != nil {
		return err
	}
	if err := m.archive.Archive(ctx, p.Path, m.clock.Now(), data); err != nil {
		return err
	}
	return os.Remove(p.Path)
}

// deleteExpired purges archive entries older than DeleteAfter.
func (m *Manager) deleteExpired(ctx context.Context) error {
	if m.archive == nil || m.config.DeleteAfter <= 0 {
		return nil
	}
	_, err := m.archive.DeleteOlderThan(ctx, m.config.DeleteAfter)
	return err
}

// StorageStats reports partition counts and byte sizes per tier.
type StorageStats struct {
	HotPartitions  int
	HotBytes       int64
	WarmPartitions int
	WarmBytes      int64
	ColdPartitions int
	ColdBytes      int64
}

// Stats computes current StorageStats by scanning all three on-disk tiers.
func (m *Manager) Stats() (StorageStats, error) {
	var stats StorageStats

	for _, t := range []struct {
		tier  Tier
		count *int
		bytes *int64
	}{
		{TierHot, &stats.HotPartitions, &stats.HotBytes},
		{TierWarm, &stats.WarmPartitions, &stats.WarmBytes},
		{TierCold, &stats.ColdPartitions, &stats.ColdBytes},
	} {
		partitions, err := m.reader.IterPartitions(t.tier, nil, nil)
		if err != nil {
			return StorageStats{}, err
		}
		*t.count = len(partitions)
		for _, p := range partitions {
			*t.bytes += p.SizeBytes
		}
	}

	return stats, nil
}
