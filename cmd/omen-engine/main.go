// Command omen-engine runs the signal engine's background pipeline,
// ledger lifecycle manager, and reconciliation job. It exposes no HTTP
// surface of its own beyond an optional Prometheus /metrics endpoint;
// a source-specific adapter calls Engine.Ingest for each RawEvent it
// fetches.
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"

	"github.com/hoangpro267200/omen/domain"
	"github.com/hoangpro267200/omen/emitter"
	"github.com/hoangpro267200/omen/enrich"
	"github.com/hoangpro267200/omen/internal/clock"
	"github.com/hoangpro267200/omen/internal/config"
	"github.com/hoangpro267200/omen/internal/logging"
	"github.com/hoangpro267200/omen/internal/metrics"
	"github.com/hoangpro267200/omen/internal/resilience"
	"github.com/hoangpro267200/omen/ledger"
	"github.com/hoangpro267200/omen/pipeline"
	"github.com/hoangpro267200/omen/reconcile"
	"github.com/hoangpro267200/omen/repository"
	"github.com/hoangpro267200/omen/rules"
)

// Engine wires the pipeline and emitter into the single call a source
// adapter makes per RawEvent: validate/enrich/build, then dual-path emit.
type Engine struct {
	Pipeline *pipeline.Pipeline
	Emitter  *emitter.Emitter
}

// Ingest runs event through the pipeline and, on a newly-built Signal,
// through the emitter. A cached or rejected result never reaches the
// emitter — the idempotency and validation contracts are pipeline-level
// concerns.
func (e *Engine) Ingest(ctx context.Context, event domain.RawEvent) (pipeline.ProcessResult, *emitter.Result) {
	result, err := e.Pipeline.Process(ctx, event)
	if err != nil || !result.Success || result.Cached {
		return result, nil
	}
	emitResult := e.Emitter.Emit(ctx, &result.Signal)
	return result, &emitResult
}

func main() {
	log := logrus.WithField("app", "omen-engine")

	cfg, err := config.Load()
	if err != nil {
		log.WithError(err).Fatal("load config")
	}
	if err := cfg.Validate(); err != nil {
		log.WithError(err).Fatal("invalid config")
	}

	logger := logging.New("omen-engine", cfg.LogLevel, cfg.LogFormat)
	clk := clock.System{}

	var prom *metrics.Metrics
	if cfg.MetricsEnabled {
		prom = metrics.New()
	}

	repo := repository.Repository(repository.NewMemory(cfg.RepoMaxSize))
	enricherCfg := enrich.DefaultConfig()

	engine := rules.NewEngine(rules.DefaultConfig(),
		rules.NewLiquidityRule(10000),
		rules.NewGeographicRelevanceRule(enricherCfg.Regions),
		rules.NewSemanticRelevanceRule(enricherCfg.CommodityWords),
		rules.NewAnomalyDetectionRule(500),
		rules.NewNewsQualityGateRule(),
		rules.NewCommodityContextRule(50000),
	)
	enricher := enrich.New(enricherCfg)

	pl := pipeline.New(engine, enricher, repo, clk, pipeline.NewQualityMetrics(), logger, pipeline.Config{SourceSystem: "omen-engine"})
	if prom != nil {
		pl = pl.WithPrometheus(prom)
	}

	writer, err := ledger.NewWriter(cfg.LedgerBasePath, clk)
	if err != nil {
		log.WithError(err).Fatal("open ledger writer")
	}
	defer writer.Close()
	reader := ledger.NewReader(cfg.LedgerBasePath)

	lifecycleCfg := ledger.DefaultLifecycleConfig()
	lifecycleCfg.HotMaxSizeBytes = cfg.HotMaxSizeBytes
	lifecycleCfg.HotMaxAge = cfg.HotMaxAge()
	lifecycleCfg.WarmRetention = daysToDuration(cfg.WarmRetentionDays)
	lifecycleCfg.ColdRetention = daysToDuration(cfg.ColdRetentionDays)
	lifecycleCfg.DeleteAfter = daysToDuration(cfg.DeleteAfterDays)

	lifecycle := ledger.NewManager(cfg.LedgerBasePath, writer, nil, clk, lifecycleCfg, logger)
	if prom != nil {
		lifecycle = lifecycle.WithPrometheus(prom)
	}

	consumerClient := emitter.NewConsumerClient(cfg.ConsumerURL)
	emitBreaker := resilience.New(resilience.DefaultConfig())
	em := emitter.New(writer, consumerClient, emitBreaker, resilience.PublishRetryConfig(), clk, logger)
	if prom != nil {
		em = em.WithPrometheus(prom)
	}

	eng := &Engine{Pipeline: pl, Emitter: em}
	_ = eng // invoked per-event by the (out-of-scope) source adapter via Engine.Ingest

	offsetStore := reconcile.NewFileOffsetStore(filepath.Join(cfg.LedgerBasePath, "offsets"))
	reconcileBreaker := resilience.New(resilience.DefaultConfig())
	job := reconcile.New("downstream-consumer", reader, consumerClient, reconcileBreaker, offsetStore, logger)
	if prom != nil {
		job = job.WithPrometheus(prom)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if cfg.MetricsEnabled {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.Handler())
		srv := &http.Server{Addr: ":" + strconv.Itoa(cfg.MetricsPort), Handler: mux}
		go func() {
			if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				log.WithError(err).Warn("metrics server stopped")
			}
		}()
		go func() {
			<-ctx.Done()
			srv.Shutdown(context.Background()) //nolint:errcheck // best-effort on shutdown
		}()
	}

	go lifecycle.Run(ctx, cfg.HotMaxAge())
	go job.Run(ctx, cfg.ReconcileInterval())

	log.Info("omen-engine started")

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	log.Info("shutting down")
	cancel()
}

func daysToDuration(days int) time.Duration {
	return time.Duration(days) * 24 * time.Hour
}
