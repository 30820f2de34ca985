// Package errors defines the closed set of domain errors shared by the
// ledger, the idempotency coordinator and the HTTP layer.
package errors

import "errors"

// Kind classifies a DomainError for retry and transport decisions.
type Kind uint8

const (
	KindInternal Kind = iota
	KindValidation
	KindNotFound
	KindBusiness
	KindConflict
	KindCachedFailure
	KindStorageFailure
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindNotFound:
		return "not_found"
	case KindBusiness:
		return "business"
	case KindConflict:
		return "conflict"
	case KindCachedFailure:
		return "cached_failure"
	case KindStorageFailure:
		return "storage_failure"
	default:
		return "internal"
	}
}

// DomainError is a tagged error. Error() only ever returns Message, so the
// underlying Cause never reaches a client or an idempotency record.
type DomainError struct {
	Code    string
	Message string
	Kind    Kind
	// Origin is the Code of the error a CachedFailure replays.
	Origin string
	Cause  error
}

func (e *DomainError) Error() string {
	return e.Message
}

func (e *DomainError) Unwrap() error {
	return e.Cause
}

// Is matches on Code so copies made by WithCause still satisfy errors.Is
// against the package sentinels.
func (e *DomainError) Is(target error) bool {
	t, ok := target.(*DomainError)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// WithCause returns a copy of e carrying cause for logging.
func (e *DomainError) WithCause(cause error) *DomainError {
	cp := *e
	cp.Cause = cause
	return &cp
}

// KindOf reports the Kind of the first DomainError in err's chain.
func KindOf(err error) Kind {
	var de *DomainError
	if errors.As(err, &de) {
		return de.Kind
	}
	return KindInternal
}

// CodeOf returns the Code of the first DomainError in err's chain, or "".
func CodeOf(err error) string {
	var de *DomainError
	if errors.As(err, &de) {
		return de.Code
	}
	return ""
}

// IsTransient reports whether err is a concurrency error the caller should
// retry after a backoff.
func IsTransient(err error) bool {
	return errors.Is(err, ErrConflict) || errors.Is(err, ErrStorageConflict)
}

var registry = map[string]*DomainError{}

func register(e *DomainError) *DomainError {
	registry[e.Code] = e
	return e
}

// Lookup returns the sentinel registered under code.
func Lookup(code string) (*DomainError, bool) {
	e, ok := registry[code]
	return e, ok
}
