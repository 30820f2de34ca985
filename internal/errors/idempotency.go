package errors

const codeCachedFailure = "CACHED_FAILURE"

var (
	ErrConflict = register(&DomainError{
		Code:    "IDEMPOTENCY_CONFLICT",
		Message: "Request is currently being processed. Please try again later.",
		Kind:    KindConflict,
	})
	// ErrCachedFailure matches every error built by CachedFailure.
	ErrCachedFailure = register(&DomainError{
		Code:    codeCachedFailure,
		Message: "operation failed",
		Kind:    KindCachedFailure,
	})
)

// CachedFailure is the replay of an operation that already failed under the
// same idempotency key. message is surfaced verbatim.
func CachedFailure(message, origin string) *DomainError {
	if message == "" {
		message = ErrCachedFailure.Message
	}
	return &DomainError{
		Code:    codeCachedFailure,
		Message: message,
		Kind:    KindCachedFailure,
		Origin:  origin,
	}
}

// ErrIdempotencyUnavailable is returned when the idempotency store cannot be
// read or written before the operation runs. The operation is not executed.
var ErrIdempotencyUnavailable = register(&DomainError{
	Code:    "IDEMPOTENCY_UNAVAILABLE",
	Message: "idempotency store unavailable",
	Kind:    KindStorageFailure,
})

// ErrIdempotencyKeyReused is returned when a key's cached result belongs to
// a different kind of operation.
var ErrIdempotencyKeyReused = register(&DomainError{
	Code:    "IDEMPOTENCY_KEY_REUSED",
	Message: "idempotency key was already used for a different request",
	Kind:    KindBusiness,
})
