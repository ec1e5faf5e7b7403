package rules

import "github.com/hoangpro267200/omen/domain"

// Engine evaluates a registered, ordered set of rules against a RawEvent
// and reduces their verdicts to a single pass/fail outcome per Config.Policy.
type Engine struct {
	rules  []Rule
	config Config
}

// NewEngine builds an Engine from rules in registration order. Order is
// significant under PolicyStrict: the first FAILED rule short-circuits.
func NewEngine(config Config, rules ...Rule) *Engine {
	return &Engine{rules: rules, config: config}
}

// Outcome is the engine's reduction of per-rule ValidationResults.
type Outcome struct {
	Passed  bool
	Reason  string
	Results []domain.ValidationResult
}

// Evaluate runs every registered rule (or stops early under PolicyStrict)
// and returns the aggregate Outcome.
func (e *Engine) Evaluate(event domain.RawEvent, ctx domain.Context) Outcome {
	results := make([]domain.ValidationResult, 0, len(e.rules))

	for _, rule := range e.rules {
		result := rule.Evaluate(event, ctx)
		results = append(results, result)

		if e.config.Policy == PolicyStrict && result.Status == domain.RuleStatusFailed {
			return Outcome{
				Passed:  false,
				Reason:  rule.Name(),
				Results: results,
			}
		}
	}

	for _, r := range results {
		if r.Status == domain.RuleStatusFailed {
			return Outcome{
				Passed:  false,
				Reason:  r.RuleName,
				Results: results,
			}
		}
	}

	minScore := e.config.MinOverallScore
	if minScore == 0 {
		minScore = DefaultConfig().MinOverallScore
	}
	if domain.MeanScore(results) < minScore {
		return Outcome{
			Passed:  false,
			Reason:  "below_min_overall_score",
			Results: results,
		}
	}

	return Outcome{Passed: true, Results: results}
}
