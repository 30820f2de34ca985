package ledger

import (
	"context"
	"errors"
	"time"

	apperrors "balance/internal/errors"
	"balance/internal/logger"
	"balance/internal/models"
	"balance/internal/repositories"
	"balance/internal/validation"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type Service struct {
	repo    repositories.AccountRepository
	config  Config
	metrics MetricsCollector
	log     *zap.Logger
}

// NewService creates a new ledger service
func NewService(
	repo repositories.AccountRepository,
	config Config,
	metrics MetricsCollector,
	log *zap.Logger,
) *Service {
	if repo == nil {
		panic("repo is required")
	}
	if config.Timeout <= 0 {
		config.Timeout = DefaultTimeout
	}
	if config.Clock == nil {
		config.Clock = time.Now
	}
	// Metrics is optional, create no-op collector if nil
	if metrics == nil {
		metrics = &NoopMetricsCollector{}
	}

	return &Service{
		repo:    repo,
		config:  config,
		metrics: metrics,
		log:     logger.OrNop(log).Named("ledger"),
	}
}

// ApplyTransaction applies one deposit or withdrawal to the account and
// returns the recorded transaction with BalanceAfter set.
func (s *Service) ApplyTransaction(ctx context.Context, accountID string, direction models.Direction, amount decimal.Decimal) (*models.Transaction, error) {
	start := time.Now()
	defer func() { s.metrics.RecordDuration(opApplyTransaction, time.Since(start)) }()

	if !direction.Valid() {
		s.metrics.RecordTransaction(string(direction), OutcomeRejected)
		return nil, apperrors.ErrInvalidDirection
	}
	amount, err := validation.NormalizeAmount(amount)
	if err != nil {
		s.metrics.RecordTransaction(string(direction), OutcomeRejected)
		return nil, err
	}

	// A caller that goes away must not abort a commit in flight.
	work, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.config.Timeout)
	defer cancel()

	var applied *models.Transaction
	err = s.repo.ExecuteInTransaction(work, func(tx repositories.AccountTx) error {
		account, err := tx.LockByID(accountID)
		if err != nil {
			return err
		}

		newBalance := account.Balance.Add(direction.Signed(amount))
		if newBalance.IsNegative() {
			return apperrors.ErrInsufficientFunds
		}

		txn := &models.Transaction{
			UID:       uuid.NewString(),
			Type:      direction,
			Amount:    amount,
			AccountID: account.ID,
			CreatedAt: s.config.Clock().UTC(),
		}
		if err := tx.CreateTransaction(txn); err != nil {
			return err
		}
		if err := tx.UpdateBalance(account.ID, newBalance); err != nil {
			return err
		}

		txn.BalanceAfter = newBalance
		applied = txn
		return nil
	})

	if err != nil {
		err = mapError(err)
		s.metrics.RecordTransaction(string(direction), outcomeOf(err))
		s.logFailure("apply transaction failed", err,
			zap.String("account_id", accountID),
			zap.String("type", string(direction)),
			zap.String("amount", amount.StringFixed(validation.AmountScale)),
		)
		return nil, err
	}

	s.metrics.RecordTransaction(string(direction), OutcomeApplied)
	s.log.Debug("transaction applied",
		zap.String("uid", applied.UID),
		zap.String("account_id", accountID),
		zap.String("type", string(direction)),
		zap.String("balance_after", applied.BalanceAfter.StringFixed(validation.AmountScale)),
	)
	return applied, nil
}

// GetBalanceAsOf returns the sum of the signed amounts of the account's
// transactions created at or before at.
func (s *Service) GetBalanceAsOf(ctx context.Context, accountID string, at time.Time) (decimal.Decimal, error) {
	start := time.Now()
	defer func() { s.metrics.RecordDuration(opBalanceAsOf, time.Since(start)) }()

	if _, err := s.repo.GetByID(ctx, accountID); err != nil {
		return decimal.Zero, s.readError(err, zap.String("account_id", accountID))
	}

	sum, err := s.repo.SumSignedAmounts(ctx, accountID, at)
	if err != nil {
		return decimal.Zero, s.readError(err, zap.String("account_id", accountID))
	}
	return sum, nil
}

// CreateAccount opens an account with a zero balance.
func (s *Service) CreateAccount(ctx context.Context, name string) (*models.Account, error) {
	name, err := validation.NormalizeName(name)
	if err != nil {
		return nil, err
	}

	account := &models.Account{
		ID:        uuid.NewString(),
		Name:      name,
		Balance:   decimal.Zero,
		CreatedAt: s.config.Clock().UTC(),
	}
	if err := s.repo.Create(ctx, account); err != nil {
		err = mapError(err)
		s.logFailure("create account failed", err, zap.String("name", name))
		return nil, err
	}

	s.log.Info("account created", zap.String("account_id", account.ID))
	return account, nil
}

// GetAccount returns the account with its current balance.
func (s *Service) GetAccount(ctx context.Context, accountID string) (*models.Account, error) {
	account, err := s.repo.GetByID(ctx, accountID)
	if err != nil {
		return nil, s.readError(err, zap.String("account_id", accountID))
	}
	return account, nil
}

func (s *Service) GetTransaction(ctx context.Context, uid string) (*models.Transaction, error) {
	tx, err := s.repo.GetTransactionByUID(ctx, uid)
	if err != nil {
		return nil, s.readError(err, zap.String("uid", uid))
	}
	return tx, nil
}

// ListTransactions returns one page of the account's history, newest first,
// with the total number of transactions.
func (s *Service) ListTransactions(ctx context.Context, accountID string, limit, offset int) ([]models.Transaction, int64, error) {
	if _, err := s.repo.GetByID(ctx, accountID); err != nil {
		return nil, 0, s.readError(err, zap.String("account_id", accountID))
	}

	txs, total, err := s.repo.ListTransactions(ctx, accountID, limit, offset)
	if err != nil {
		return nil, 0, s.readError(err, zap.String("account_id", accountID))
	}
	return txs, total, nil
}

func (s *Service) readError(err error, fields ...zap.Field) error {
	err = mapError(err)
	if apperrors.KindOf(err) != apperrors.KindNotFound {
		s.logFailure("ledger read failed", err, fields...)
	}
	return err
}

// logFailure logs storage problems at warn and expected rejections at debug.
func (s *Service) logFailure(msg string, err error, fields ...zap.Field) {
	fields = append(fields, zap.String("code", apperrors.CodeOf(err)), zap.Error(err))
	var de *apperrors.DomainError
	if errors.As(err, &de) && de.Cause != nil {
		fields = append(fields, zap.NamedError("cause", de.Cause))
	}

	switch apperrors.KindOf(err) {
	case apperrors.KindStorageFailure, apperrors.KindConflict, apperrors.KindInternal:
		s.log.Warn(msg, fields...)
	default:
		s.log.Debug(msg, fields...)
	}
}

