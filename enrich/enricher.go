// Package enrich derives the deterministic Context (geographic, temporal,
// semantic tags) the pipeline attaches to every Signal.
package enrich

import (
	"sort"
	"strings"

	"github.com/hoangpro267200/omen/domain"
	"github.com/hoangpro267200/omen/internal/hash"
)

// Enricher derives Context from a RawEvent. It is fully deterministic: the
// temporal bucket comes from the event's own CreatedAt, never wall clock,
// so the same event always produces the same Context.
type Enricher struct {
	regions        []string
	commodityWords []string
}

// Config lists the static vocabularies the Enricher matches against.
type Config struct {
	Regions        []string
	CommodityWords []string
}

// DefaultConfig returns a small built-in vocabulary sufficient for tests and
// as a sane starting point for production tuning.
func DefaultConfig() Config {
	return Config{
		Regions: []string{
			"us", "united states", "europe", "eu", "asia", "china", "middle east",
			"red sea", "africa", "latin america", "russia", "ukraine",
		},
		CommodityWords: []string{
			"oil", "gas", "gold", "silver", "wheat", "corn", "crude", "copper",
			"natural gas", "commodity", "commodities",
		},
	}
}

// New builds an Enricher from the given vocabulary configuration.
func New(cfg Config) *Enricher {
	return &Enricher{regions: cfg.Regions, commodityWords: cfg.CommodityWords}
}

// Enrich derives a Context for event. The returned Context's ContextHash is
// a pure function of the other fields plus event.EventID, so identical
// events always produce identical contexts.
func (e *Enricher) Enrich(event domain.RawEvent) (domain.Context, error) {
	haystack := strings.ToLower(event.Title + " " + event.Description)

	geoTags := matchAll(haystack, e.regions)
	isCommodity := len(matchAll(haystack, e.commodityWords)) > 0

	var semanticTags []string
	if isCommodity {
		semanticTags = append(semanticTags, "commodity")
	}
	if event.Market.TotalVolumeUSD >= 1_000_000 {
		semanticTags = append(semanticTags, "high_volume")
	}
	if event.Probability >= 0.9 || event.Probability <= 0.1 {
		semanticTags = append(semanticTags, "high_conviction")
	}

	ctx := domain.Context{
		GeographicTags: geoTags,
		TemporalBucket: temporalBucket(event.CreatedAt.Hour()),
		SemanticTags:   semanticTags,
		IsCommodity:    isCommodity,
	}

	contextHash, err := hash.ContentHash(struct {
		EventID string
		Ctx     domain.Context
	}{EventID: event.EventID, Ctx: ctx})
	if err != nil {
		return domain.Context{}, err
	}
	ctx.ContextHash = contextHash
	return ctx, nil
}

func matchAll(haystack string, vocabulary []string) []string {
	var found []string
	seen := make(map[string]bool)
	for _, word := range vocabulary {
		if strings.Contains(haystack, word) && !seen[word] {
			found = append(found, word)
			seen[word] = true
		}
	}
	sort.Strings(found)
	return found
}

// temporalBucket groups an hour-of-day into one of four coarse buckets.
func temporalBucket(hour int) string {
	switch {
	case hour >= 0 && hour < 6:
		return "overnight"
	case hour >= 6 && hour < 12:
		return "morning"
	case hour >= 12 && hour < 18:
		return "afternoon"
	default:
		return "evening"
	}
}
