package handlers

import (
	"context"
	"time"

	"balance/internal/models"

	"github.com/shopspring/decimal"
)

// Ledger is the subset of the ledger service the handlers depend on.
type Ledger interface {
	ApplyTransaction(ctx context.Context, accountID string, direction models.Direction, amount decimal.Decimal) (*models.Transaction, error)
	GetBalanceAsOf(ctx context.Context, accountID string, at time.Time) (decimal.Decimal, error)
	CreateAccount(ctx context.Context, name string) (*models.Account, error)
	GetAccount(ctx context.Context, accountID string) (*models.Account, error)
	GetTransaction(ctx context.Context, uid string) (*models.Transaction, error)
	ListTransactions(ctx context.Context, accountID string, limit, offset int) ([]models.Transaction, int64, error)
}

// Pinger is a dependency the readiness probe checks.
type Pinger interface {
	Ping(ctx context.Context) error
}
