package idempotency

import (
	"context"
	"time"

	"balance/internal/models"
)

// Store persists idempotency records with a per-key expiry.
type Store interface {
	// SetIfAbsent writes rec only if key is free and reports whether it did.
	SetIfAbsent(ctx context.Context, key string, rec *models.IdempotencyRecord, ttl time.Duration) (bool, error)
	// Get returns nil, nil when key holds no record.
	Get(ctx context.Context, key string) (*models.IdempotencyRecord, error)
	Set(ctx context.Context, key string, rec *models.IdempotencyRecord, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

// MetricsCollector receives one outcome per Execute call.
type MetricsCollector interface {
	RecordIdempotencyOutcome(outcome string)
}

// Result is a value the coordinator can cache. ResultKind names the
// payload type and must not depend on the receiver's contents.
type Result interface {
	ResultKind() string
}
