package pipeline

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/hoangpro267200/omen/domain"
	"github.com/hoangpro267200/omen/enrich"
	"github.com/hoangpro267200/omen/internal/clock"
	"github.com/hoangpro267200/omen/repository"
	"github.com/hoangpro267200/omen/rules"
)

func happyPathEvent() domain.RawEvent {
	return domain.RawEvent{
		EventID:     "pm-1",
		Title:       "Red Sea shipping halt",
		Description: "shipping disruption near the Red Sea",
		Probability: 0.62,
		Market: domain.Market{
			Source:              "polymarket",
			MarketID:            "m1",
			TotalVolumeUSD:      500000,
			CurrentLiquidityUSD: 75000,
		},
		CreatedAt: time.Date(2026, 7, 1, 10, 0, 0, 0, time.UTC),
	}
}

func newTestPipeline() *Pipeline {
	engine := rules.NewEngine(rules.DefaultConfig(),
		rules.NewLiquidityRule(10000),
		rules.NewGeographicRelevanceRule(enrich.DefaultConfig().Regions),
		rules.NewNewsQualityGateRule(),
	)
	enricher := enrich.New(enrich.DefaultConfig())
	repo := repository.NewMemory(100)
	clk := clock.NewFixed(time.Date(2026, 7, 31, 0, 0, 0, 0, time.UTC))
	return New(engine, enricher, repo, clk, NewQualityMetrics(), nil, Config{SourceSystem: "test"})
}

func TestPipeline_HappyPath(t *testing.T) {
	p := newTestPipeline()
	result, err := p.Process(context.Background(), happyPathEvent())
	require.NoError(t, err)
	require.True(t, result.Success)
	require.False(t, result.Cached)
	require.NotEmpty(t, result.Signal.SignalID)
	require.Equal(t, "pm-1", result.Signal.SourceEventID)
}

func TestPipeline_Idempotency(t *testing.T) {
	p := newTestPipeline()
	ctx := context.Background()

	first, err := p.Process(ctx, happyPathEvent())
	require.NoError(t, err)
	require.False(t, first.Cached)

	second, err := p.Process(ctx, happyPathEvent())
	require.NoError(t, err)
	require.True(t, second.Cached)
	require.Equal(t, first.Signal.SignalID, second.Signal.SignalID)
}

func TestPipeline_InvalidInputRejected(t *testing.T) {
	p := newTestPipeline()
	event := happyPathEvent()
	event.EventID = ""

	result, err := p.Process(context.Background(), event)
	require.Error(t, err)
	require.False(t, result.Success)
	require.Equal(t, "invalid_input", result.RejectionReason)
}

func TestPipeline_ValidationRejection(t *testing.T) {
	p := newTestPipeline()
	event := happyPathEvent()
	event.Market.CurrentLiquidityUSD = 1 // fails the liquidity rule

	result, err := p.Process(context.Background(), event)
	require.NoError(t, err)
	require.False(t, result.Success)
	require.Equal(t, "liquidity", result.RejectionReason)
}

func TestPipeline_DifferentEventsProduceDifferentSignals(t *testing.T) {
	p := newTestPipeline()
	ctx := context.Background()

	r1, err := p.Process(ctx, happyPathEvent())
	require.NoError(t, err)

	event2 := happyPathEvent()
	event2.EventID = "pm-2"
	r2, err := p.Process(ctx, event2)
	require.NoError(t, err)

	require.NotEqual(t, r1.Signal.SignalID, r2.Signal.SignalID)
}
