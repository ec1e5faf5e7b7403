package rules

import (
	"strings"

	"github.com/hoangpro267200/omen/domain"
)

// LiquidityRule fails events whose market liquidity is below a floor.
type LiquidityRule struct {
	MinLiquidityUSD float64
}

// NewLiquidityRule returns a LiquidityRule; min defaults to 1000 if <= 0.
func NewLiquidityRule(min float64) *LiquidityRule {
	if min <= 0 {
		min = 1000
	}
	return &LiquidityRule{MinLiquidityUSD: min}
}

func (r *LiquidityRule) Name() string { return "liquidity" }

func (r *LiquidityRule) Evaluate(event domain.RawEvent, _ domain.Context) domain.ValidationResult {
	if event.Market.CurrentLiquidityUSD < r.MinLiquidityUSD {
		return domain.ValidationResult{
			RuleName: r.Name(),
			Status:   domain.RuleStatusFailed,
			Score:    0,
			Message:  "current liquidity below minimum",
			Evidence: map[string]interface{}{
				"current_liquidity_usd": event.Market.CurrentLiquidityUSD,
				"min_liquidity_usd":     r.MinLiquidityUSD,
			},
		}
	}
	return domain.ValidationResult{
		RuleName: r.Name(),
		Status:   domain.RuleStatusPassed,
		Score:    1,
		Message:  "liquidity sufficient",
	}
}

// GeographicRelevanceRule scores an event by keyword/region match against a
// configured set of region tags.
type GeographicRelevanceRule struct {
	Regions []string
}

func NewGeographicRelevanceRule(regions []string) *GeographicRelevanceRule {
	return &GeographicRelevanceRule{Regions: regions}
}

func (r *GeographicRelevanceRule) Name() string { return "geographic_relevance" }

func (r *GeographicRelevanceRule) Evaluate(event domain.RawEvent, ctx domain.Context) domain.ValidationResult {
	if len(r.Regions) == 0 {
		return domain.ValidationResult{
			RuleName: r.Name(),
			Status:   domain.RuleStatusSkipped,
			Score:    0.5,
			Message:  "no configured regions",
		}
	}

	haystack := strings.ToLower(event.Title + " " + event.Description)
	matches := 0
	for _, region := range r.Regions {
		if strings.Contains(haystack, strings.ToLower(region)) {
			matches++
		}
	}
	for _, tag := range ctx.GeographicTags {
		for _, region := range r.Regions {
			if strings.EqualFold(tag, region) {
				matches++
			}
		}
	}

	score := scoreFromMatches(matches)
	return domain.ValidationResult{
		RuleName: r.Name(),
		Status:   statusFromScore(score),
		Score:    score,
		Message:  "geographic keyword match score",
		Evidence: map[string]interface{}{"matches": matches},
	}
}

// SemanticRelevanceRule scores an event by keyword match across title and
// description against a configured vocabulary.
type SemanticRelevanceRule struct {
	Keywords []string
}

func NewSemanticRelevanceRule(keywords []string) *SemanticRelevanceRule {
	return &SemanticRelevanceRule{Keywords: keywords}
}

func (r *SemanticRelevanceRule) Name() string { return "semantic_relevance" }

func (r *SemanticRelevanceRule) Evaluate(event domain.RawEvent, _ domain.Context) domain.ValidationResult {
	if len(r.Keywords) == 0 {
		return domain.ValidationResult{
			RuleName: r.Name(),
			Status:   domain.RuleStatusSkipped,
			Score:    0.5,
			Message:  "no configured keywords",
		}
	}

	haystack := strings.ToLower(event.Title + " " + event.Description)
	matches := 0
	for _, kw := range r.Keywords {
		if strings.Contains(haystack, strings.ToLower(kw)) {
			matches++
		}
	}

	score := scoreFromMatches(matches)
	return domain.ValidationResult{
		RuleName: r.Name(),
		Status:   statusFromScore(score),
		Score:    score,
		Message:  "semantic keyword match score",
		Evidence: map[string]interface{}{"matches": matches},
	}
}

// AnomalyDetectionRule flags outlier probabilities paired with thin
// liquidity — a classic low-confidence combination.
type AnomalyDetectionRule struct {
	ExtremeThreshold    float64
	LowLiquidityUSD     float64
}

func NewAnomalyDetectionRule(lowLiquidityUSD float64) *AnomalyDetectionRule {
	if lowLiquidityUSD <= 0 {
		lowLiquidityUSD = 2000
	}
	return &AnomalyDetectionRule{ExtremeThreshold: 0.02, LowLiquidityUSD: lowLiquidityUSD}
}

func (r *AnomalyDetectionRule) Name() string { return "anomaly_detection" }

func (r *AnomalyDetectionRule) Evaluate(event domain.RawEvent, _ domain.Context) domain.ValidationResult {
	extreme := event.Probability <= r.ExtremeThreshold || event.Probability >= 1-r.ExtremeThreshold
	thin := event.Market.CurrentLiquidityUSD < r.LowLiquidityUSD

	if extreme && thin {
		return domain.ValidationResult{
			RuleName: r.Name(),
			Status:   domain.RuleStatusWarning,
			Score:    0.3,
			Message:  "extreme probability with thin liquidity",
			Evidence: map[string]interface{}{
				"probability":            event.Probability,
				"current_liquidity_usd":  event.Market.CurrentLiquidityUSD,
			},
		}
	}
	return domain.ValidationResult{
		RuleName: r.Name(),
		Status:   domain.RuleStatusPassed,
		Score:    1,
		Message:  "no anomaly detected",
	}
}

// NewsQualityGateRule rejects events whose source metadata signals stale or
// duplicate news.
type NewsQualityGateRule struct {
	StaleKey    string
	DuplicateKey string
}

func NewNewsQualityGateRule() *NewsQualityGateRule {
	return &NewsQualityGateRule{StaleKey: "stale", DuplicateKey: "duplicate"}
}

func (r *NewsQualityGateRule) Name() string { return "news_quality_gate" }

func (r *NewsQualityGateRule) Evaluate(event domain.RawEvent, _ domain.Context) domain.ValidationResult {
	if isTruthy(event.Metadata[r.StaleKey]) {
		return domain.ValidationResult{
			RuleName: r.Name(),
			Status:   domain.RuleStatusFailed,
			Score:    0,
			Message:  "source metadata flags stale news",
		}
	}
	if isTruthy(event.Metadata[r.DuplicateKey]) {
		return domain.ValidationResult{
			RuleName: r.Name(),
			Status:   domain.RuleStatusFailed,
			Score:    0,
			Message:  "source metadata flags duplicate news",
		}
	}
	return domain.ValidationResult{
		RuleName: r.Name(),
		Status:   domain.RuleStatusPassed,
		Score:    1,
		Message:  "news quality gate passed",
	}
}

// CommodityContextRule checks commodity-tagged events for a minimum volume
// floor, reflecting that commodity markets need deeper liquidity to be
// meaningful signals.
type CommodityContextRule struct {
	MinVolumeUSD float64
}

func NewCommodityContextRule(minVolumeUSD float64) *CommodityContextRule {
	if minVolumeUSD <= 0 {
		minVolumeUSD = 10000
	}
	return &CommodityContextRule{MinVolumeUSD: minVolumeUSD}
}

func (r *CommodityContextRule) Name() string { return "commodity_context" }

func (r *CommodityContextRule) Evaluate(event domain.RawEvent, ctx domain.Context) domain.ValidationResult {
	if !ctx.IsCommodity {
		return domain.ValidationResult{
			RuleName: r.Name(),
			Status:   domain.RuleStatusSkipped,
			Score:    0.5,
			Message:  "event is not commodity-tagged",
		}
	}
	if event.Market.TotalVolumeUSD < r.MinVolumeUSD {
		return domain.ValidationResult{
			RuleName: r.Name(),
			Status:   domain.RuleStatusWarning,
			Score:    0.4,
			Message:  "commodity event below expected volume floor",
			Evidence: map[string]interface{}{"total_volume_usd": event.Market.TotalVolumeUSD},
		}
	}
	return domain.ValidationResult{
		RuleName: r.Name(),
		Status:   domain.RuleStatusPassed,
		Score:    1,
		Message:  "commodity context check passed",
	}
}

func scoreFromMatches(matches int) float64 {
	switch {
	case matches >= 3:
		return 1
	case matches == 2:
		return 0.8
	case matches == 1:
		return 0.6
	default:
		return 0.3
	}
}

func statusFromScore(score float64) domain.RuleStatus {
	if score < 0.5 {
		return domain.RuleStatusWarning
	}
	return domain.RuleStatusPassed
}

func isTruthy(v string) bool {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "1", "true", "yes":
		return true
	default:
		return false
	}
}
