package repositories

import (
	"context"
	"errors"
	"time"

	"balance/internal/models"

	"github.com/shopspring/decimal"
)

var (
	ErrAccountNotFound     = errors.New("account not found")
	ErrTransactionNotFound = errors.New("transaction not found")
	// ErrLockTimeout is returned when a row lock could not be acquired in
	// time, including deadlock detection.
	ErrLockTimeout = errors.New("lock wait timeout")
	// ErrConstraintViolation covers unique, foreign key and check failures.
	ErrConstraintViolation = errors.New("constraint violation")
	// ErrCommitOutcomeUnknown wraps a failure after the unit of work ran to
	// completion, when the commit may or may not have been applied.
	ErrCommitOutcomeUnknown = errors.New("commit outcome unknown")
)

// AccountRepository is the account store. Balances are only written inside
// ExecuteInTransaction.
type AccountRepository interface {
	Create(ctx context.Context, account *models.Account) error
	GetByID(ctx context.Context, id string) (*models.Account, error)

	GetTransactionByUID(ctx context.Context, uid string) (*models.Transaction, error)
	// ListTransactions returns an account's transactions newest first and
	// the total count.
	ListTransactions(ctx context.Context, accountID string, limit, offset int) ([]models.Transaction, int64, error)
	// SumSignedAmounts returns the sum of signed amounts of the account's
	// transactions created at or before at. Zero when there are none.
	SumSignedAmounts(ctx context.Context, accountID string, at time.Time) (decimal.Decimal, error)

	// ExecuteInTransaction runs fn as one unit of work. Locks taken through
	// the AccountTx are held until fn returns; any error rolls back. Errors
	// raised after fn returned nil wrap ErrCommitOutcomeUnknown.
	ExecuteInTransaction(ctx context.Context, fn func(AccountTx) error) error

	Ping(ctx context.Context) error
}

// AccountTx is the view of the store inside a unit of work.
type AccountTx interface {
	// LockByID reads the account and holds an exclusive row lock on it.
	LockByID(id string) (*models.Account, error)
	UpdateBalance(id string, balance decimal.Decimal) error
	CreateTransaction(tx *models.Transaction) error
}
