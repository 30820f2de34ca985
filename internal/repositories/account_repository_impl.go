package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"balance/internal/models"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Postgres SQLSTATE codes the store classifies.
const (
	pgLockNotAvailable    = "55P03"
	pgDeadlockDetected    = "40P01"
	pgQueryCanceled       = "57014"
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
	pgCheckViolation      = "23514"
)

const signedAmountSQL = "COALESCE(SUM(CASE WHEN type = ? THEN -amount ELSE amount END), 0)"

type accountRepository struct {
	db          *gorm.DB
	lockTimeout time.Duration
}

// NewAccountRepository returns a gorm backed store. lockTimeout bounds every
// row lock wait inside ExecuteInTransaction; zero leaves the server default.
func NewAccountRepository(db *gorm.DB, lockTimeout time.Duration) AccountRepository {
	return &accountRepository{
		db:          db,
		lockTimeout: lockTimeout,
	}
}

func (r *accountRepository) Create(ctx context.Context, account *models.Account) error {
	if err := r.db.WithContext(ctx).Create(account).Error; err != nil {
		return fmt.Errorf("failed to create account: %w", classifyError(err))
	}
	return nil
}

func (r *accountRepository) GetByID(ctx context.Context, id string) (*models.Account, error) {
	var account models.Account
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&account).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAccountNotFound
		}
		return nil, fmt.Errorf("failed to get account: %w", err)
	}
	return &account, nil
}

func (r *accountRepository) GetTransactionByUID(ctx context.Context, uid string) (*models.Transaction, error) {
	var tx models.Transaction
	if err := r.db.WithContext(ctx).Where("uid = ?", uid).First(&tx).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTransactionNotFound
		}
		return nil, fmt.Errorf("failed to get transaction: %w", err)
	}
	return &tx, nil
}

func (r *accountRepository) ListTransactions(ctx context.Context, accountID string, limit, offset int) ([]models.Transaction, int64, error) {
	var total int64
	err := r.db.WithContext(ctx).
		Model(&models.Transaction{}).
		Where("account_id = ?", accountID).
		Count(&total).Error
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count transactions: %w", err)
	}

	var txs []models.Transaction
	err = r.db.WithContext(ctx).
		Where("account_id = ?", accountID).
		Order("created_at DESC").
		Order("id DESC").
		Limit(limit).
		Offset(offset).
		Find(&txs).Error
	if err != nil {
		return nil, 0, fmt.Errorf("failed to get transaction history: %w", err)
	}
	return txs, total, nil
}

func (r *accountRepository) SumSignedAmounts(ctx context.Context, accountID string, at time.Time) (decimal.Decimal, error) {
	var sum decimal.Decimal
	err := r.db.WithContext(ctx).
		Model(&models.Transaction{}).
		Select(signedAmountSQL, models.DirectionWithdraw).
		Where("account_id = ? AND created_at <= ?", accountID, at).
		Row().
		Scan(&sum)
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to sum transactions: %w", err)
	}
	return sum, nil
}

func (r *accountRepository) ExecuteInTransaction(ctx context.Context, fn func(AccountTx) error) error {
	var committing bool
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if r.lockTimeout > 0 {
			stmt := fmt.Sprintf("SET LOCAL lock_timeout = '%dms'", r.lockTimeout.Milliseconds())
			if err := tx.Exec(stmt).Error; err != nil {
				return fmt.Errorf("failed to set lock timeout: %w", err)
			}
		}
		if err := fn(&accountTx{db: tx}); err != nil {
			return err
		}
		committing = true
		return nil
	})
	return commitError(err, committing)
}

// commitError classifies err. Once fn has succeeded only COMMIT can fail,
// and its effect is unknown to the caller.
func commitError(err error, committing bool) error {
	if err == nil {
		return nil
	}
	if committing {
		return fmt.Errorf("%w: %w", ErrCommitOutcomeUnknown, err)
	}
	return classifyError(err)
}

func (r *accountRepository) Ping(ctx context.Context) error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

type accountTx struct {
	db *gorm.DB
}

func (t *accountTx) LockByID(id string) (*models.Account, error) {
	var account models.Account
	err := t.db.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", id).
		First(&account).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAccountNotFound
		}
		return nil, fmt.Errorf("failed to lock account: %w", err)
	}
	return &account, nil
}

func (t *accountTx) UpdateBalance(id string, balance decimal.Decimal) error {
	result := t.db.Model(&models.Account{}).Where("id = ?", id).Update("balance", balance)
	if result.Error != nil {
		return fmt.Errorf("failed to update balance: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrAccountNotFound
	}
	return nil
}

func (t *accountTx) CreateTransaction(tx *models.Transaction) error {
	if err := t.db.Create(tx).Error; err != nil {
		return fmt.Errorf("failed to create transaction: %w", err)
	}
	return nil
}

// classifyError tags Postgres failures with the store's sentinels while
// keeping the driver error in the chain.
func classifyError(err error) error {
	if err == nil {
		return nil
	}
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return err
	}
	switch pgErr.Code {
	case pgLockNotAvailable, pgDeadlockDetected, pgQueryCanceled:
		return fmt.Errorf("%w: %w", ErrLockTimeout, err)
	case pgUniqueViolation, pgForeignKeyViolation, pgCheckViolation:
		return fmt.Errorf("%w: %w", ErrConstraintViolation, err)
	}
	return err
}
