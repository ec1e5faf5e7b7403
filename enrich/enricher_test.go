package enrich

import (
	"testing"
	"time"

	"github.com/hoangpro267200/omen/domain"
)

func sampleEvent(hour int) domain.RawEvent {
	return domain.RawEvent{
		EventID:     "pm-1",
		Title:       "Oil supply disruption near the Red Sea",
		Description: "crude shipping delayed",
		Probability: 0.62,
		Market: domain.Market{
			Source:              "polymarket",
			MarketID:            "m1",
			TotalVolumeUSD:      2_000_000,
			CurrentLiquidityUSD: 75000,
		},
		CreatedAt: time.Date(2026, 7, 1, hour, 0, 0, 0, time.UTC),
	}
}

func TestEnrich_Deterministic(t *testing.T) {
	e := New(DefaultConfig())

	ctx1, err := e.Enrich(sampleEvent(10))
	if err != nil {
		t.Fatalf("Enrich: %v", err)
	}
	ctx2, err := e.Enrich(sampleEvent(10))
	if err != nil {
		t.Fatalf("Enrich: %v", err)
	}

	if ctx1.ContextHash == "" {
		t.Fatal("expected non-empty context_hash")
	}
	if ctx1.ContextHash != ctx2.ContextHash {
		t.Errorf("identical events produced different context hashes: %s vs %s", ctx1.ContextHash, ctx2.ContextHash)
	}
}

func TestEnrich_GeographicAndCommodityTags(t *testing.T) {
	e := New(DefaultConfig())
	ctx, err := e.Enrich(sampleEvent(10))
	if err != nil {
		t.Fatalf("Enrich: %v", err)
	}

	if !ctx.IsCommodity {
		t.Error("expected is_commodity=true for an oil/crude event")
	}

	found := false
	for _, tag := range ctx.GeographicTags {
		if tag == "red sea" {
			found = true
		}
	}
	if !found {
		t.Errorf("expected 'red sea' geographic tag, got %v", ctx.GeographicTags)
	}
}

func TestEnrich_TemporalBucket(t *testing.T) {
	e := New(DefaultConfig())
	cases := map[int]string{2: "overnight", 9: "morning", 14: "afternoon", 20: "evening"}
	for hour, want := range cases {
		ctx, err := e.Enrich(sampleEvent(hour))
		if err != nil {
			t.Fatalf("Enrich: %v", err)
		}
		if ctx.TemporalBucket != want {
			t.Errorf("hour %d: temporal_bucket = %q, want %q", hour, ctx.TemporalBucket, want)
		}
	}
}

func TestEnrich_HighVolumeAndConvictionTags(t *testing.T) {
	e := New(DefaultConfig())
	event := sampleEvent(10)
	event.Probability = 0.95

	ctx, err := e.Enrich(event)
	if err != nil {
		t.Fatalf("Enrich: %v", err)
	}

	hasTag := func(tag string) bool {
		for _, t := range ctx.SemanticTags {
			if t == tag {
				return true
			}
		}
		return false
	}
	if !hasTag("high_volume") {
		t.Error("expected high_volume semantic tag for a $2M market")
	}
	if !hasTag("high_conviction") {
		t.Error("expected high_conviction semantic tag for probability=0.95")
	}
}

func TestEnrich_DifferentContentDifferentHash(t *testing.T) {
	e := New(DefaultConfig())
	ctx1, _ := e.Enrich(sampleEvent(10))
	event2 := sampleEvent(10)
	event2.EventID = "pm-2"
	ctx2, _ := e.Enrich(event2)

	if ctx1.ContextHash == ctx2.ContextHash {
		t.Error("different event ids should not produce the same context hash")
	}
}
