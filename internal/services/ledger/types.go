package ledger

import "time"

// Config holds configuration for ledger operations.
type Config struct {
	// Timeout bounds one unit of work. The unit of work does not observe
	// the caller's cancellation.
	Timeout time.Duration
	// Clock stamps new accounts and transactions. Defaults to time.Now.
	Clock func() time.Time
}

// MetricsCollector receives ledger measurements.
type MetricsCollector interface {
	RecordTransaction(direction, outcome string)
	RecordDuration(operation string, duration time.Duration)
}
