package resilience

import "time"

// SourceRetryConfig is the spec §4.8 policy for upstream source fetches:
// 3 attempts, 0.1s-10s exponential backoff with full jitter.
func SourceRetryConfig() RetryConfig {
	return RetryConfig{
		MaxAttempts:  3,
		InitialDelay: 100 * time.Millisecond,
		MaxDelay:     10 * time.Second,
		Multiplier:   2.0,
		Jitter:       1.0,
	}
}

// PublishRetryConfig is the spec §4.8 policy for hot-path/reconcile
// publishes: 3 attempts, 0.5s-30s exponential backoff with full jitter.
func PublishRetryConfig() RetryConfig {
	return RetryConfig{
		MaxAttempts:  3,
		InitialDelay: 500 * time.Millisecond,
		MaxDelay:     30 * time.Second,
		Multiplier:   2.0,
		Jitter:       1.0,
	}
}
