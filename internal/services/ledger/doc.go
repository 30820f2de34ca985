/*
Package ledger applies deposits and withdrawals to account balances and
answers balance queries.

Every balance change happens inside one unit of work on the account store:

	lock account row -> compute new balance -> reject if negative
	-> insert transaction -> write balance -> commit

so the stored balance always equals the sum of the signed amounts of the
account's transactions, and concurrent writers to the same account are
serialised by the row lock.

Usage:

	svc := ledger.NewService(repo, ledger.Config{Timeout: 10 * time.Second}, metrics, log)

	tx, err := svc.ApplyTransaction(ctx, accountID, models.DirectionDeposit, amount)
	balance, err := svc.GetBalanceAsOf(ctx, accountID, at)

Errors are values from balance/internal/errors:
  - ErrAccountNotFound when the account does not exist
  - ErrInsufficientFunds when a withdrawal would make the balance negative
  - ErrInvalidAmount, ErrInvalidDirection for bad input
  - ErrStorageConflict when the row lock could not be acquired in time
  - ErrStorageFailure for integrity violations and other failed writes

Historical queries take no lock. They read a committed snapshot and may miss
a write that commits concurrently.
*/
package ledger
