package rules

import (
	"testing"
	"time"

	"github.com/hoangpro267200/omen/domain"
)

func evt() domain.RawEvent {
	return domain.RawEvent{
		EventID:     "pm-1",
		Title:       "Red Sea shipping halt risk",
		Description: "tensions rising near the Red Sea",
		Probability: 0.62,
		Market: domain.Market{
			Source:              "polymarket",
			MarketID:            "m1",
			TotalVolumeUSD:      500000,
			CurrentLiquidityUSD: 75000,
		},
		CreatedAt: time.Date(2026, 7, 1, 0, 0, 0, 0, time.UTC),
		Metadata:  map[string]string{},
	}
}

func TestLiquidityRule(t *testing.T) {
	r := NewLiquidityRule(10000)

	if got := r.Evaluate(evt(), domain.Context{}); got.Status != domain.RuleStatusPassed {
		t.Errorf("expected PASSED, got %v", got.Status)
	}

	e := evt()
	e.Market.CurrentLiquidityUSD = 100
	if got := r.Evaluate(e, domain.Context{}); got.Status != domain.RuleStatusFailed {
		t.Errorf("expected FAILED for thin liquidity, got %v", got.Status)
	}
}

func TestLiquidityRule_DefaultFloor(t *testing.T) {
	r := NewLiquidityRule(0)
	if r.MinLiquidityUSD != 1000 {
		t.Errorf("expected default floor of 1000, got %v", r.MinLiquidityUSD)
	}
}

func TestGeographicRelevanceRule(t *testing.T) {
	r := NewGeographicRelevanceRule([]string{"red sea", "europe"})
	got := r.Evaluate(evt(), domain.Context{})
	if got.Status != domain.RuleStatusPassed {
		t.Errorf("expected PASSED for matching title, got %v (%v)", got.Status, got.Evidence)
	}

	r2 := NewGeographicRelevanceRule(nil)
	got2 := r2.Evaluate(evt(), domain.Context{})
	if got2.Status != domain.RuleStatusSkipped {
		t.Errorf("expected SKIPPED with no configured regions, got %v", got2.Status)
	}
}

func TestSemanticRelevanceRule(t *testing.T) {
	r := NewSemanticRelevanceRule([]string{"shipping", "oil"})
	got := r.Evaluate(evt(), domain.Context{})
	if got.Score <= 0.3 {
		t.Errorf("expected elevated score on keyword match, got %v", got.Score)
	}
}

func TestAnomalyDetectionRule(t *testing.T) {
	r := NewAnomalyDetectionRule(2000)

	e := evt()
	e.Probability = 0.01
	e.Market.CurrentLiquidityUSD = 100
	if got := r.Evaluate(e, domain.Context{}); got.Status != domain.RuleStatusWarning {
		t.Errorf("expected WARNING for extreme+thin, got %v", got.Status)
	}

	if got := r.Evaluate(evt(), domain.Context{}); got.Status != domain.RuleStatusPassed {
		t.Errorf("expected PASSED for normal event, got %v", got.Status)
	}
}

func TestNewsQualityGateRule(t *testing.T) {
	r := NewNewsQualityGateRule()

	if got := r.Evaluate(evt(), domain.Context{}); got.Status != domain.RuleStatusPassed {
		t.Errorf("expected PASSED, got %v", got.Status)
	}

	e := evt()
	e.Metadata["stale"] = "true"
	if got := r.Evaluate(e, domain.Context{}); got.Status != domain.RuleStatusFailed {
		t.Errorf("expected FAILED for stale metadata, got %v", got.Status)
	}

	e2 := evt()
	e2.Metadata["duplicate"] = "yes"
	if got := r.Evaluate(e2, domain.Context{}); got.Status != domain.RuleStatusFailed {
		t.Errorf("expected FAILED for duplicate metadata, got %v", got.Status)
	}
}

func TestCommodityContextRule(t *testing.T) {
	r := NewCommodityContextRule(100000)

	if got := r.Evaluate(evt(), domain.Context{IsCommodity: false}); got.Status != domain.RuleStatusSkipped {
		t.Errorf("expected SKIPPED for non-commodity event, got %v", got.Status)
	}

	e := evt()
	e.Market.TotalVolumeUSD = 1000
	if got := r.Evaluate(e, domain.Context{IsCommodity: true}); got.Status != domain.RuleStatusWarning {
		t.Errorf("expected WARNING for below-floor commodity volume, got %v", got.Status)
	}

	if got := r.Evaluate(evt(), domain.Context{IsCommodity: true}); got.Status != domain.RuleStatusPassed {
		t.Errorf("expected PASSED for sufficient commodity volume, got %v", got.Status)
	}
}
