package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"balance/internal/models"
	"balance/internal/repositories"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedAccount(t *testing.T, repo *AccountRepository, balance string) *models.Account {
	t.Helper()
	account := &models.Account{Name: "test", Balance: decimal.RequireFromString(balance)}
	require.NoError(t, repo.Create(context.Background(), account))
	return account
}

func TestExecuteInTransaction_Commit(t *testing.T) {
	repo := NewAccountRepository(time.Second)
	ctx := context.Background()
	account := seedAccount(t, repo, "10.00")

	tx := &models.Transaction{
		UID:       "tx-1",
		Type:      models.DirectionDeposit,
		Amount:    decimal.RequireFromString("5.00"),
		AccountID: account.ID,
	}
	err := repo.ExecuteInTransaction(ctx, func(atx repositories.AccountTx) error {
		locked, err := atx.LockByID(account.ID)
		if err != nil {
			return err
		}
		if err := atx.CreateTransaction(tx); err != nil {
			return err
		}
		return atx.UpdateBalance(account.ID, locked.Balance.Add(tx.Amount))
	})
	require.NoError(t, err)
	assert.NotZero(t, tx.ID)

	got, err := repo.GetByID(ctx, account.ID)
	require.NoError(t, err)
	assert.Equal(t, "15.00", got.Balance.StringFixed(2))

	stored, err := repo.GetTransactionByUID(ctx, "tx-1")
	require.NoError(t, err)
	assert.Equal(t, account.ID, stored.AccountID)
}

func TestExecuteInTransaction_RollbackDiscardsWrites(t *testing.T) {
	repo := NewAccountRepository(time.Second)
	ctx := context.Background()
	account := seedAccount(t, repo, "10.00")
	boom := errors.New("boom")

	err := repo.ExecuteInTransaction(ctx, func(atx repositories.AccountTx) error {
		if _, err := atx.LockByID(account.ID); err != nil {
			return err
		}
		_ = atx.CreateTransaction(&models.Transaction{
			UID: "tx-rolled-back", Type: models.DirectionDeposit,
			Amount: decimal.NewFromInt(1), AccountID: account.ID,
		})
		_ = atx.UpdateBalance(account.ID, decimal.NewFromInt(11))
		return boom
	})
	assert.ErrorIs(t, err, boom)

	got, err := repo.GetByID(ctx, account.ID)
	require.NoError(t, err)
	assert.Equal(t, "10.00", got.Balance.StringFixed(2))

	_, err = repo.GetTransactionByUID(ctx, "tx-rolled-back")
	assert.ErrorIs(t, err, repositories.ErrTransactionNotFound)
}

func TestExecuteInTransaction_NegativeBalanceRejected(t *testing.T) {
	repo := NewAccountRepository(time.Second)
	account := seedAccount(t, repo, "1.00")

	err := repo.ExecuteInTransaction(context.Background(), func(atx repositories.AccountTx) error {
		if _, err := atx.LockByID(account.ID); err != nil {
			return err
		}
		return atx.UpdateBalance(account.ID, decimal.NewFromInt(-1))
	})
	assert.ErrorIs(t, err, repositories.ErrConstraintViolation)
}

func TestLockByID_Timeout(t *testing.T) {
	repo := NewAccountRepository(50 * time.Millisecond)
	ctx := context.Background()
	account := seedAccount(t, repo, "0")

	locked := make(chan struct{})
	done := make(chan struct{})
	go func() {
		_ = repo.ExecuteInTransaction(ctx, func(atx repositories.AccountTx) error {
			_, err := atx.LockByID(account.ID)
			close(locked)
			<-done
			return err
		})
	}()
	<-locked

	err := repo.ExecuteInTransaction(ctx, func(atx repositories.AccountTx) error {
		_, err := atx.LockByID(account.ID)
		return err
	})
	close(done)
	assert.ErrorIs(t, err, repositories.ErrLockTimeout)
}

func TestLockByID_NotFound(t *testing.T) {
	repo := NewAccountRepository(time.Second)

	err := repo.ExecuteInTransaction(context.Background(), func(atx repositories.AccountTx) error {
		_, err := atx.LockByID("missing")
		return err
	})
	assert.ErrorIs(t, err, repositories.ErrAccountNotFound)
}

func TestSumSignedAmountsAndList(t *testing.T) {
	repo := NewAccountRepository(time.Second)
	ctx := context.Background()
	account := seedAccount(t, repo, "0")

	t1 := time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)
	t2 := t1.Add(time.Hour)
	entries := []*models.Transaction{
		{UID: "a", Type: models.DirectionDeposit, Amount: decimal.NewFromInt(100), AccountID: account.ID, CreatedAt: t1},
		{UID: "b", Type: models.DirectionWithdraw, Amount: decimal.NewFromInt(30), AccountID: account.ID, CreatedAt: t2},
	}
	for _, e := range entries {
		e := e
		require.NoError(t, repo.ExecuteInTransaction(ctx, func(atx repositories.AccountTx) error {
			locked, err := atx.LockByID(account.ID)
			if err != nil {
				return err
			}
			if err := atx.CreateTransaction(e); err != nil {
				return err
			}
			return atx.UpdateBalance(account.ID, locked.Balance.Add(e.Effect()))
		}))
	}

	sum, err := repo.SumSignedAmounts(ctx, account.ID, t1)
	require.NoError(t, err)
	assert.Equal(t, "100", sum.String())

	sum, err = repo.SumSignedAmounts(ctx, account.ID, t2)
	require.NoError(t, err)
	assert.Equal(t, "70", sum.String())

	sum, err = repo.SumSignedAmounts(ctx, account.ID, t1.Add(-time.Second))
	require.NoError(t, err)
	assert.True(t, sum.IsZero())

	txs, total, err := repo.ListTransactions(ctx, account.ID, 1, 0)
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
	require.Len(t, txs, 1)
	assert.Equal(t, "b", txs[0].UID)

	txs, _, err = repo.ListTransactions(ctx, account.ID, 10, 5)
	require.NoError(t, err)
	assert.Empty(t, txs)
}
