package domain

import (
	"testing"
	"time"
)

func validEvent() RawEvent {
	return RawEvent{
		EventID:     "pm-1",
		Title:       "Red Sea shipping halt",
		Description: "will shipping halt",
		Probability: 0.62,
		Market: Market{
			Source:              "polymarket",
			MarketID:            "m1",
			TotalVolumeUSD:      500000,
			CurrentLiquidityUSD: 75000,
		},
		CreatedAt: time.Date(2026, 7, 1, 12, 0, 0, 0, time.UTC),
	}
}

func TestRawEvent_Validate_OK(t *testing.T) {
	if err := validEvent().Validate(); err != nil {
		t.Fatalf("expected valid event, got %v", err)
	}
}

func TestRawEvent_Validate_EmptyEventID(t *testing.T) {
	e := validEvent()
	e.EventID = ""
	if err := e.Validate(); err == nil {
		t.Fatal("expected error for empty event_id")
	}
}

func TestRawEvent_Validate_EmptyTitle(t *testing.T) {
	e := validEvent()
	e.Title = ""
	if err := e.Validate(); err == nil {
		t.Fatal("expected error for empty title")
	}
}

func TestRawEvent_Validate_ProbabilityOutOfRange(t *testing.T) {
	for _, p := range []float64{-0.01, 1.01} {
		e := validEvent()
		e.Probability = p
		if err := e.Validate(); err == nil {
			t.Fatalf("expected error for probability=%v", p)
		}
	}
}

func TestRawEvent_Validate_NegativeVolume(t *testing.T) {
	e := validEvent()
	e.Market.TotalVolumeUSD = -1
	if err := e.Validate(); err == nil {
		t.Fatal("expected error for negative total_volume_usd")
	}
}

func TestRawEvent_Validate_NegativeLiquidity(t *testing.T) {
	e := validEvent()
	e.Market.CurrentLiquidityUSD = -1
	if err := e.Validate(); err == nil {
		t.Fatal("expected error for negative current_liquidity_usd")
	}
}

func TestRawEvent_Validate_ZeroCreatedAt(t *testing.T) {
	e := validEvent()
	e.CreatedAt = time.Time{}
	if err := e.Validate(); err == nil {
		t.Fatal("expected error for zero created_at")
	}
}
