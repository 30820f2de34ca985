package idempotency

import apperrors "balance/internal/errors"

// ErrResultKindMismatch is returned when a key's cached payload was produced
// by an operation of a different result kind.
var ErrResultKindMismatch = apperrors.ErrIdempotencyKeyReused

// internalErrorMessage is cached in place of errors that carry no domain
// code, so their internals are never replayed.
const internalErrorMessage = "internal server error"
