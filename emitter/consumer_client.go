// Package emitter implements the Engine's dual-path emission: a mandatory
// synchronous ledger append followed by a best-effort hot-path HTTP POST to
// the downstream consumer.
package emitter

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/hoangpro267200/omen/domain"
)

// ReplaySource labels a publish attempt's origin on the wire, per spec §6.
type ReplaySource string

const (
	ReplaySourceHotPath   ReplaySource = "hot_path"
	ReplaySourceReconcile ReplaySource = "reconcile"
)

// ingestResponse is the shape of both the 200 and 409 consumer responses.
type ingestResponse struct {
	AckID     string `json:"ack_id"`
	Duplicate bool   `json:"duplicate"`
	Detail    string `json:"detail"`
}

// ConsumerClient is a thin HTTP client for the consumer's
// POST /api/v1/signals/ingest contract (spec §6). It is the only wire
// boundary the core depends on.
type ConsumerClient struct {
	baseURL string
	http    *http.Client
}

// NewConsumerClient builds a ConsumerClient against baseURL with the
// spec's default 30 s HTTP timeout.
func NewConsumerClient(baseURL string) *ConsumerClient {
	return &ConsumerClient{
		baseURL: baseURL,
		http:    &http.Client{Timeout: 30 * time.Second},
	}
}

// PublishOutcome classifies the consumer's response to a publish attempt.
type PublishOutcome struct {
	StatusCode int
	AckID      string
	Duplicate  bool
	Detail     string
}

// Publish POSTs signal to the consumer's ingest endpoint with the signal's
// SignalID as idempotency key and the given replay-source header.
func (c *ConsumerClient) Publish(ctx context.Context, signal domain.Signal, replaySource ReplaySource) (PublishOutcome, error) {
	body, err := json.Marshal(signal)
	if err != nil {
		return PublishOutcome{}, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/v1/signals/ingest", bytes.NewReader(body))
	if err != nil {
		return PublishOutcome{}, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Idempotency-Key", signal.SignalID)
	if replaySource != "" {
		req.Header.Set("X-Replay-Source", string(replaySource))
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return PublishOutcome{}, err
	}
	defer resp.Body.Close()

	var decoded ingestResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil && resp.StatusCode < 500 {
		return PublishOutcome{}, fmt.Errorf("decode consumer response: %w", err)
	}

	return PublishOutcome{
		StatusCode: resp.StatusCode,
		AckID:      decoded.AckID,
		Duplicate:  decoded.Duplicate,
		Detail:     decoded.Detail,
	}, nil
}
