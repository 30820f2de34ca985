package repositories

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
)

func TestCommitError(t *testing.T) {
	lockErr := &pgconn.PgError{Code: pgLockNotAvailable}
	commitDeadline := fmt.Errorf("failed to commit: %w", context.DeadlineExceeded)

	tests := []struct {
		name       string
		err        error
		committing bool
		is         error
		isNot      error
	}{
		{name: "lock wait before commit", err: lockErr, is: ErrLockTimeout, isNot: ErrCommitOutcomeUnknown},
		{name: "deadline before commit", err: context.DeadlineExceeded, is: context.DeadlineExceeded, isNot: ErrCommitOutcomeUnknown},
		{name: "deadline during commit", err: commitDeadline, committing: true, is: ErrCommitOutcomeUnknown, isNot: ErrLockTimeout},
		{name: "constraint during commit", err: &pgconn.PgError{Code: pgUniqueViolation}, committing: true, is: ErrCommitOutcomeUnknown},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := commitError(tt.err, tt.committing)
			assert.ErrorIs(t, got, tt.is)
			assert.ErrorIs(t, got, tt.err)
			if tt.isNot != nil {
				assert.False(t, errors.Is(got, tt.isNot))
			}
		})
	}

	assert.NoError(t, commitError(nil, true))
}
