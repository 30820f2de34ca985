package idempotency

import "time"

// DefaultTTL is how long a key and its outcome are remembered.
const DefaultTTL = 3600 * time.Second

// Execute outcomes reported to MetricsCollector.
const (
	OutcomeExecuted       = "executed"
	OutcomeFailed         = "failed"
	OutcomeReleased       = "released"
	OutcomeReplayed       = "replayed"
	OutcomeReplayedFailed = "replayed_failure"
	OutcomeConflict       = "conflict"
)

type Config struct {
	// DefaultTTL applies when Execute is called with ttl <= 0.
	DefaultTTL time.Duration
	Clock      func() time.Time
}

type noopMetrics struct{}

func (noopMetrics) RecordIdempotencyOutcome(string) {}
