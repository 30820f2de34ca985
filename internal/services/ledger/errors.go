package ledger

import (
	"context"
	"errors"

	apperrors "balance/internal/errors"
	"balance/internal/repositories"
)

// mapError turns store errors into domain errors. Domain errors raised
// inside the unit of work pass through unchanged.
func mapError(err error) error {
	var de *apperrors.DomainError
	switch {
	case err == nil:
		return nil
	case errors.As(err, &de):
		return err
	case errors.Is(err, repositories.ErrAccountNotFound):
		return apperrors.ErrAccountNotFound
	case errors.Is(err, repositories.ErrTransactionNotFound):
		return apperrors.ErrTransactionNotFound
	case errors.Is(err, repositories.ErrCommitOutcomeUnknown):
		// Must never be retried: the commit may have landed.
		return apperrors.ErrStorageFailure.WithCause(err)
	case errors.Is(err, repositories.ErrLockTimeout),
		errors.Is(err, context.DeadlineExceeded),
		errors.Is(err, context.Canceled):
		return apperrors.ErrStorageConflict.WithCause(err)
	default:
		return apperrors.ErrStorageFailure.WithCause(err)
	}
}

func outcomeOf(err error) string {
	switch apperrors.KindOf(err) {
	case apperrors.KindValidation, apperrors.KindBusiness, apperrors.KindNotFound:
		return OutcomeRejected
	case apperrors.KindConflict:
		return OutcomeConflict
	default:
		return OutcomeFailed
	}
}
