package ledger

import "time"

const DefaultTimeout = 10 * time.Second

// Transaction outcomes reported to MetricsCollector.
const (
	OutcomeApplied  = "applied"
	OutcomeRejected = "rejected"
	OutcomeConflict = "conflict"
	OutcomeFailed   = "failed"
)

const (
	opApplyTransaction = "apply_transaction"
	opBalanceAsOf      = "balance_as_of"
)
