package ledger

import "time"

// NoopMetricsCollector is a no-op implementation of MetricsCollector
type NoopMetricsCollector struct{}

func (n *NoopMetricsCollector) RecordTransaction(string, string)     {}
func (n *NoopMetricsCollector) RecordDuration(string, time.Duration) {}
