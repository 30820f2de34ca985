// Package idempotency runs an operation at most once per key and replays its
// outcome to later callers using the same key.
package idempotency

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	apperrors "balance/internal/errors"
	"balance/internal/logger"
	"balance/internal/models"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Coordinator owns the idempotency record lifecycle:
//
//	absent -> IN_PROCESS -> SUCCESS | FAILURE -> expired
//
// IN_PROCESS is also released back to absent when the operation fails with
// a transient error.
type Coordinator struct {
	store   Store
	config  Config
	metrics MetricsCollector
	log     *zap.Logger
}

func NewCoordinator(store Store, config Config, metrics MetricsCollector, log *zap.Logger) *Coordinator {
	if store == nil {
		panic("store is required")
	}
	if config.DefaultTTL <= 0 {
		config.DefaultTTL = DefaultTTL
	}
	if config.Clock == nil {
		config.Clock = time.Now
	}
	if metrics == nil {
		metrics = noopMetrics{}
	}
	return &Coordinator{
		store:   store,
		config:  config,
		metrics: metrics,
		log:     logger.OrNop(log).Named("idempotency"),
	}
}

// GenerateKey returns a fresh random key.
func GenerateKey() string {
	return uuid.NewString()
}

// KeyOrGenerate returns key, or a generated one when key is blank.
func KeyOrGenerate(key string) string {
	if key = strings.TrimSpace(key); key != "" {
		return key
	}
	return GenerateKey()
}

// Execute runs op under key, unless key already has an outcome:
//   - SUCCESS replays the cached result
//   - FAILURE returns a CachedFailure with the original message
//   - IN_PROCESS, or losing the race to reserve the key, returns ErrConflict
//
// On first execution op's own result or error is returned. Errors are cached
// as FAILURE except transient ones, which release the key instead. A ttl of
// zero or less uses the configured default.
func Execute[T Result](ctx context.Context, c *Coordinator, key string, ttl time.Duration, op func(context.Context) (T, error)) (T, error) {
	var zero T
	kind := zero.ResultKind()
	if ttl <= 0 {
		ttl = c.config.DefaultTTL
	}
	log := c.log.With(zap.String("idempotency_key", key), zap.String("result_kind", kind))

	existing, err := c.store.Get(ctx, key)
	if err != nil {
		log.Error("failed to read idempotency record", zap.Error(err))
		return zero, apperrors.ErrIdempotencyUnavailable.WithCause(err)
	}
	if existing != nil {
		return replay[T](c, existing, kind, log)
	}

	now := c.config.Clock().UTC()
	rec := &models.IdempotencyRecord{
		Key:        key,
		Status:     models.IdempotencyInProcess,
		CreatedAt:  now,
		UpdatedAt:  now,
		TTLSeconds: int(ttl / time.Second),
	}
	reserved, err := c.store.SetIfAbsent(ctx, key, rec, ttl)
	if err != nil {
		log.Error("failed to reserve idempotency key", zap.Error(err))
		return zero, apperrors.ErrIdempotencyUnavailable.WithCause(err)
	}
	if !reserved {
		log.Info("idempotency key reserved by a concurrent request")
		c.metrics.RecordIdempotencyOutcome(OutcomeConflict)
		return zero, apperrors.ErrConflict
	}

	// The outcome must be recorded even if the caller has gone away.
	writeCtx := context.WithoutCancel(ctx)

	var (
		result T
		opErr  error
	)
	func() {
		defer func() {
			if p := recover(); p != nil {
				log.Error("operation panicked, recording failure", zap.Any("panic", p))
				rec.Status = models.IdempotencyFailure
				rec.Error = internalErrorMessage
				c.complete(writeCtx, rec, ttl, log)
				c.metrics.RecordIdempotencyOutcome(OutcomeFailed)
				panic(p)
			}
		}()
		result, opErr = op(ctx)
	}()

	if opErr != nil {
		if isTransient(opErr) {
			if err := c.store.Delete(writeCtx, key); err != nil {
				log.Error("failed to release idempotency key", zap.Error(err))
			}
			log.Info("operation failed transiently, key released", zap.Error(opErr))
			c.metrics.RecordIdempotencyOutcome(OutcomeReleased)
			return zero, opErr
		}

		rec.Status = models.IdempotencyFailure
		rec.ErrorCode = apperrors.CodeOf(opErr)
		rec.Error = opErr.Error()
		if rec.ErrorCode == "" {
			rec.Error = internalErrorMessage
		}
		c.complete(writeCtx, rec, ttl, log)
		c.metrics.RecordIdempotencyOutcome(OutcomeFailed)
		return zero, opErr
	}

	payload, err := json.Marshal(result)
	if err != nil {
		log.Error("failed to encode result, key left in process until expiry", zap.Error(err))
		c.metrics.RecordIdempotencyOutcome(OutcomeExecuted)
		return result, nil
	}
	rec.Status = models.IdempotencySuccess
	rec.ResultKind = kind
	rec.Payload = payload
	c.complete(writeCtx, rec, ttl, log)
	c.metrics.RecordIdempotencyOutcome(OutcomeExecuted)
	return result, nil
}

func replay[T Result](c *Coordinator, rec *models.IdempotencyRecord, kind string, log *zap.Logger) (T, error) {
	var zero T
	if !rec.Status.Terminal() {
		log.Info("operation already in progress")
		c.metrics.RecordIdempotencyOutcome(OutcomeConflict)
		return zero, apperrors.ErrConflict
	}
	switch rec.Status {
	case models.IdempotencySuccess:
		if rec.ResultKind != kind {
			log.Warn("cached result has a different kind", zap.String("cached_kind", rec.ResultKind))
			return zero, ErrResultKindMismatch
		}
		var out T
		if err := json.Unmarshal(rec.Payload, &out); err != nil {
			log.Error("failed to decode cached result", zap.Error(err))
			return zero, apperrors.ErrIdempotencyUnavailable.WithCause(err)
		}
		log.Info("returning cached result")
		c.metrics.RecordIdempotencyOutcome(OutcomeReplayed)
		return out, nil

	default:
		log.Info("returning cached failure", zap.String("error_code", rec.ErrorCode))
		c.metrics.RecordIdempotencyOutcome(OutcomeReplayedFailed)
		return zero, apperrors.CachedFailure(rec.Error, rec.ErrorCode)
	}
}

// complete persists a terminal record. A failed write is logged only; the
// key then stays IN_PROCESS until it expires.
func (c *Coordinator) complete(ctx context.Context, rec *models.IdempotencyRecord, ttl time.Duration, log *zap.Logger) {
	rec.UpdatedAt = c.config.Clock().UTC()
	rec.TTLSeconds = int(ttl / time.Second)
	if err := c.store.Set(ctx, rec.Key, rec, ttl); err != nil {
		log.Error("failed to persist idempotency outcome",
			zap.String("status", string(rec.Status)),
			zap.Error(err),
		)
	}
}

// isTransient decides on the outermost domain error when there is one, so a
// StorageFailure caused by a deadline is still cached.
func isTransient(err error) bool {
	var de *apperrors.DomainError
	if errors.As(err, &de) {
		return de.Kind == apperrors.KindConflict
	}
	return errors.Is(err, context.Canceled) ||
		errors.Is(err, context.DeadlineExceeded)
}
