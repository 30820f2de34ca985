//go:build integration

package repositories

import (
	"context"
	"testing"
	"time"

	"balance/internal/config"
	"balance/internal/models"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func setupPostgres(t *testing.T) *gorm.DB {
	t.Helper()
	ctx := context.Background()

	container, err := tcpostgres.Run(ctx,
		"postgres:16-alpine",
		tcpostgres.WithDatabase("balance"),
		tcpostgres.WithUsername("test"),
		tcpostgres.WithPassword("test"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second),
		),
	)
	require.NoError(t, err)
	t.Cleanup(func() {
		require.NoError(t, container.Terminate(ctx))
	})

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	db, err := NewPostgres(dsn, config.DBConfig{MaxOpenConns: 20}, zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = Close(db) })
	return db
}

func deposit(repo AccountRepository, accountID string, amount decimal.Decimal) error {
	return repo.ExecuteInTransaction(context.Background(), func(atx AccountTx) error {
		account, err := atx.LockByID(accountID)
		if err != nil {
			return err
		}
		tx := &models.Transaction{
			UID:       uuid.NewString(),
			Type:      models.DirectionDeposit,
			Amount:    amount,
			AccountID: accountID,
			CreatedAt: time.Now().UTC(),
		}
		if err := atx.CreateTransaction(tx); err != nil {
			return err
		}
		return atx.UpdateBalance(accountID, account.Balance.Add(amount))
	})
}

func TestIntegration_AccountRepository_ConcurrentDeposits(t *testing.T) {
	db := setupPostgres(t)
	repo := NewAccountRepository(db, 5*time.Second)
	ctx := context.Background()

	account := &models.Account{Name: "concurrent"}
	require.NoError(t, repo.Create(ctx, account))

	const n = 20
	errs := make(chan error, n)
	for i := 0; i < n; i++ {
		go func() { errs <- deposit(repo, account.ID, decimal.RequireFromString("1.25")) }()
	}
	for i := 0; i < n; i++ {
		require.NoError(t, <-errs)
	}

	got, err := repo.GetByID(ctx, account.ID)
	require.NoError(t, err)
	assert.Equal(t, "25.00", got.Balance.StringFixed(2))

	sum, err := repo.SumSignedAmounts(ctx, account.ID, time.Now().UTC())
	require.NoError(t, err)
	assert.True(t, sum.Equal(got.Balance))

	txs, total, err := repo.ListTransactions(ctx, account.ID, 5, 0)
	require.NoError(t, err)
	assert.EqualValues(t, n, total)
	assert.Len(t, txs, 5)
}

func TestIntegration_AccountRepository_LockTimeout(t *testing.T) {
	db := setupPostgres(t)
	repo := NewAccountRepository(db, 200*time.Millisecond)
	ctx := context.Background()

	account := &models.Account{Name: "locked"}
	require.NoError(t, repo.Create(ctx, account))

	locked := make(chan struct{})
	release := make(chan struct{})
	go func() {
		_ = repo.ExecuteInTransaction(ctx, func(atx AccountTx) error {
			_, err := atx.LockByID(account.ID)
			close(locked)
			<-release
			return err
		})
	}()
	<-locked

	err := deposit(repo, account.ID, decimal.NewFromInt(1))
	close(release)
	assert.ErrorIs(t, err, ErrLockTimeout)
}

func TestIntegration_AccountRepository_CheckConstraint(t *testing.T) {
	db := setupPostgres(t)
	repo := NewAccountRepository(db, time.Second)
	ctx := context.Background()

	account := &models.Account{Name: "constrained"}
	require.NoError(t, repo.Create(ctx, account))

	err := repo.ExecuteInTransaction(ctx, func(atx AccountTx) error {
		if _, err := atx.LockByID(account.ID); err != nil {
			return err
		}
		return atx.UpdateBalance(account.ID, decimal.NewFromInt(-1))
	})
	assert.ErrorIs(t, err, ErrConstraintViolation)

	_, err = repo.GetByID(ctx, uuid.NewString())
	assert.ErrorIs(t, err, ErrAccountNotFound)
}
