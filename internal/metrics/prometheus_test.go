package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestCollector(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := New(reg)

	c.RecordTransaction("DEPOSIT", "applied")
	c.RecordTransaction("DEPOSIT", "applied")
	c.RecordTransaction("WITHDRAW", "rejected")
	c.RecordIdempotencyOutcome("replayed")
	c.RecordDuration("apply_transaction", 20*time.Millisecond)
	c.RecordHTTPRequest("POST", "/api/transactions", 201, 30*time.Millisecond)

	assert.Equal(t, 2.0, testutil.ToFloat64(c.transactions.WithLabelValues("DEPOSIT", "applied")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.transactions.WithLabelValues("WITHDRAW", "rejected")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.idempotencyOutcomes.WithLabelValues("replayed")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.httpRequests.WithLabelValues("POST", "/api/transactions", "201")))
	assert.Equal(t, 1, testutil.CollectAndCount(c.operationDuration))
}

func TestNew_RegistersOnce(t *testing.T) {
	reg := prometheus.NewRegistry()
	New(reg)
	assert.Panics(t, func() { New(reg) })
}
