// Package rules implements the Engine's validation rule engine: an ordered,
// pluggable set of rules that score a RawEvent and either pass, warn, fail,
// or skip it. Rules are pure functions of (event, context, config) — no I/O,
// no wall clock.
package rules

import "github.com/hoangpro267200/omen/domain"

// Rule is the narrow capability every validation rule satisfies. The engine
// evaluates rules in registration order; there is no runtime discovery.
type Rule interface {
	Name() string
	Evaluate(event domain.RawEvent, ctx domain.Context) domain.ValidationResult
}

// Policy controls how the engine aggregates per-rule results into an
// overall pass/fail decision.
type Policy string

const (
	// PolicyStrict terminates evaluation at the first FAILED rule.
	PolicyStrict Policy = "strict"
	// PolicyPermissive runs every rule and passes overall if none FAILED
	// and the mean score meets MinOverallScore. Default policy.
	PolicyPermissive Policy = "permissive"
)

// Config controls engine-wide behavior, independent of any one rule.
type Config struct {
	Policy           Policy
	MinOverallScore  float64
}

// DefaultConfig returns the spec's default policy and threshold.
func DefaultConfig() Config {
	return Config{
		Policy:          PolicyPermissive,
		MinOverallScore: 0.5,
	}
}
