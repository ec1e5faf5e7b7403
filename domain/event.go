// Package domain holds the Engine's core types: the RawEvent ingested from
// external sources, the Signal produced by the pipeline, and the records
// that describe how a Signal came to be.
package domain

import (
	"time"

	"github.com/hoangpro267200/omen/internal/errors"
)

// Market describes the prediction market a RawEvent was sourced from.
type Market struct {
	Source              string  `json:"source"`
	MarketID             string  `json:"market_id"`
	TotalVolumeUSD       float64 `json:"total_volume_usd"`
	CurrentLiquidityUSD  float64 `json:"current_liquidity_usd"`
}

// RawEvent is the pipeline's input. It is immutable after construction;
// callers must not mutate a RawEvent once it has been hashed or processed.
type RawEvent struct {
	EventID     string            `json:"event_id"`
	Title       string            `json:"title"`
	Description string            `json:"description"`
	Probability float64           `json:"probability"`
	Market      Market            `json:"market"`
	CreatedAt   time.Time         `json:"created_at"`
	Metadata    map[string]string `json:"metadata,omitempty"`
}

// Validate checks the structural invariants a RawEvent must satisfy before
// it can enter the pipeline. It does not evaluate business rules — that is
// the rule engine's job.
func (e RawEvent) Validate() error {
	if e.EventID == "" {
		return errors.InvalidInput("event_id", "must not be empty")
	}
	if e.Title == "" {
		return errors.InvalidInput("title", "must not be empty")
	}
	if e.Probability < 0 || e.Probability > 1 {
		return errors.InvalidInput("probability", "must be in [0,1]")
	}
	if e.Market.TotalVolumeUSD < 0 {
		return errors.InvalidInput("market.total_volume_usd", "must be >= 0")
	}
	if e.Market.CurrentLiquidityUSD < 0 {
		return errors.InvalidInput("market.current_liquidity_usd", "must be >= 0")
	}
	if e.CreatedAt.IsZero() {
		return errors.InvalidInput("created_at", "must be set")
	}
	return nil
}
