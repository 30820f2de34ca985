// Package metrics implements the ledger and idempotency collectors on top of
// Prometheus.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Collector satisfies ledger.MetricsCollector and
// idempotency.MetricsCollector.
type Collector struct {
	transactions        *prometheus.CounterVec
	operationDuration   *prometheus.HistogramVec
	idempotencyOutcomes *prometheus.CounterVec
	httpRequests        *prometheus.CounterVec
	httpDuration        *prometheus.HistogramVec
}

// New registers the collectors on reg.
func New(reg prometheus.Registerer) *Collector {
	factory := promauto.With(reg)

	return &Collector{
		transactions: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "ledger_transactions_total",
			Help: "Transactions processed, labeled by type and outcome",
		}, []string{"type", "outcome"}),

		operationDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "ledger_operation_duration_seconds",
			Help:    "Latency distribution of ledger operations",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		}, []string{"operation"}),

		idempotencyOutcomes: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "ledger_idempotency_outcomes_total",
			Help: "Idempotent executions, labeled by outcome",
		}, []string{"outcome"}),

		httpRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "ledger_http_requests_total",
			Help: "Total HTTP requests processed, labeled by status code",
		}, []string{"method", "endpoint", "status"}),

		httpDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "ledger_http_request_duration_seconds",
			Help:    "Latency distribution of HTTP requests",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		}, []string{"method", "endpoint"}),
	}
}

func (c *Collector) RecordTransaction(direction, outcome string) {
	c.transactions.WithLabelValues(direction, outcome).Inc()
}

func (c *Collector) RecordDuration(operation string, d time.Duration) {
	c.operationDuration.WithLabelValues(operation).Observe(d.Seconds())
}

func (c *Collector) RecordIdempotencyOutcome(outcome string) {
	c.idempotencyOutcomes.WithLabelValues(outcome).Inc()
}

// RecordHTTPRequest is called by the request middleware. endpoint is the
// route pattern, never the raw path.
func (c *Collector) RecordHTTPRequest(method, endpoint string, status int, d time.Duration) {
	c.httpRequests.WithLabelValues(method, endpoint, strconv.Itoa(status)).Inc()
	c.httpDuration.WithLabelValues(method, endpoint).Observe(d.Seconds())
}
