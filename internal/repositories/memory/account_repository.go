// Package memory is an in-process account store for local runs and tests.
// It honours the same contract as the Postgres store within one process.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"balance/internal/models"
	"balance/internal/repositories"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// DefaultLockTimeout is used when NewAccountRepository gets zero.
const DefaultLockTimeout = 5 * time.Second

type AccountRepository struct {
	mu       sync.RWMutex
	accounts map[string]models.Account
	byUID    map[string]models.Transaction
	history  map[string][]models.Transaction
	nextID   uint

	// rowLocks holds one single-slot channel per account id.
	rowLocks    map[string]chan struct{}
	lockTimeout time.Duration
}

var _ repositories.AccountRepository = (*AccountRepository)(nil)

func NewAccountRepository(lockTimeout time.Duration) *AccountRepository {
	if lockTimeout <= 0 {
		lockTimeout = DefaultLockTimeout
	}
	return &AccountRepository{
		accounts:    make(map[string]models.Account),
		byUID:       make(map[string]models.Transaction),
		history:     make(map[string][]models.Transaction),
		rowLocks:    make(map[string]chan struct{}),
		lockTimeout: lockTimeout,
	}
}

func (r *AccountRepository) Create(_ context.Context, account *models.Account) error {
	if account.ID == "" {
		account.ID = uuid.NewString()
	}
	if account.CreatedAt.IsZero() {
		account.CreatedAt = time.Now().UTC()
	}
	if account.Balance.IsNegative() {
		return fmt.Errorf("failed to create account: %w", repositories.ErrConstraintViolation)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.accounts[account.ID]; exists {
		return fmt.Errorf("failed to create account: %w", repositories.ErrConstraintViolation)
	}
	r.accounts[account.ID] = *account
	return nil
}

func (r *AccountRepository) GetByID(_ context.Context, id string) (*models.Account, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	account, ok := r.accounts[id]
	if !ok {
		return nil, repositories.ErrAccountNotFound
	}
	return &account, nil
}

func (r *AccountRepository) GetTransactionByUID(_ context.Context, uid string) (*models.Transaction, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	tx, ok := r.byUID[uid]
	if !ok {
		return nil, repositories.ErrTransactionNotFound
	}
	return &tx, nil
}

func (r *AccountRepository) ListTransactions(_ context.Context, accountID string, limit, offset int) ([]models.Transaction, int64, error) {
	r.mu.RLock()
	txs := append([]models.Transaction(nil), r.history[accountID]...)
	r.mu.RUnlock()

	sort.SliceStable(txs, func(i, j int) bool {
		if txs[i].CreatedAt.Equal(txs[j].CreatedAt) {
			return txs[i].ID > txs[j].ID
		}
		return txs[i].CreatedAt.After(txs[j].CreatedAt)
	})

	total := int64(len(txs))
	if offset >= len(txs) {
		return []models.Transaction{}, total, nil
	}
	txs = txs[offset:]
	if limit > 0 && limit < len(txs) {
		txs = txs[:limit]
	}
	return txs, total, nil
}

func (r *AccountRepository) SumSignedAmounts(_ context.Context, accountID string, at time.Time) (decimal.Decimal, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	sum := decimal.Zero
	for i := range r.history[accountID] {
		tx := &r.history[accountID][i]
		if !tx.CreatedAt.After(at) {
			sum = sum.Add(tx.Effect())
		}
	}
	return sum, nil
}

// ExecuteInTransaction buffers writes and applies them atomically when fn
// succeeds. Row locks are released on return either way.
func (r *AccountRepository) ExecuteInTransaction(ctx context.Context, fn func(repositories.AccountTx) error) error {
	tx := &accountTx{
		repo:     r,
		ctx:      ctx,
		held:     make(map[string]struct{}),
		balances: make(map[string]decimal.Decimal),
	}
	defer tx.release()

	if err := fn(tx); err != nil {
		return err
	}
	return r.commit(tx)
}

func (r *AccountRepository) Ping(context.Context) error {
	return nil
}

func (r *AccountRepository) rowLock(id string) chan struct{} {
	r.mu.Lock()
	defer r.mu.Unlock()
	ch, ok := r.rowLocks[id]
	if !ok {
		ch = make(chan struct{}, 1)
		r.rowLocks[id] = ch
	}
	return ch
}

func (r *AccountRepository) commit(tx *accountTx) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for id, balance := range tx.balances {
		if _, ok := r.accounts[id]; !ok {
			return repositories.ErrAccountNotFound
		}
		if balance.IsNegative() {
			return fmt.Errorf("balance of %s would be negative: %w", id, repositories.ErrConstraintViolation)
		}
	}
	seen := make(map[string]struct{}, len(tx.inserts))
	for _, t := range tx.inserts {
		if _, ok := r.accounts[t.AccountID]; !ok {
			return fmt.Errorf("unknown account %s: %w", t.AccountID, repositories.ErrConstraintViolation)
		}
		if _, dup := r.byUID[t.UID]; dup {
			return fmt.Errorf("duplicate transaction uid %s: %w", t.UID, repositories.ErrConstraintViolation)
		}
		if _, dup := seen[t.UID]; dup {
			return fmt.Errorf("duplicate transaction uid %s: %w", t.UID, repositories.ErrConstraintViolation)
		}
		seen[t.UID] = struct{}{}
	}

	for id, balance := range tx.balances {
		account := r.accounts[id]
		account.Balance = balance
		r.accounts[id] = account
	}
	for _, t := range tx.inserts {
		r.nextID++
		t.ID = r.nextID
		stored := *t
		stored.BalanceAfter = decimal.Decimal{}
		r.byUID[stored.UID] = stored
		r.history[stored.AccountID] = append(r.history[stored.AccountID], stored)
	}
	return nil
}

type accountTx struct {
	repo     *AccountRepository
	ctx      context.Context
	held     map[string]struct{}
	balances map[string]decimal.Decimal
	inserts  []*models.Transaction
}

func (t *accountTx) LockByID(id string) (*models.Account, error) {
	account, err := t.repo.GetByID(t.ctx, id)
	if err != nil {
		return nil, err
	}

	if _, ok := t.held[id]; !ok {
		timer := time.NewTimer(t.repo.lockTimeout)
		defer timer.Stop()

		select {
		case t.repo.rowLock(id) <- struct{}{}:
			t.held[id] = struct{}{}
		case <-timer.C:
			return nil, repositories.ErrLockTimeout
		case <-t.ctx.Done():
			return nil, t.ctx.Err()
		}

		// Re-read under the lock; the first read may predate a commit.
		if account, err = t.repo.GetByID(t.ctx, id); err != nil {
			return nil, err
		}
	}

	if balance, ok := t.balances[id]; ok {
		account.Balance = balance
	}
	return account, nil
}

func (t *accountTx) UpdateBalance(id string, balance decimal.Decimal) error {
	if _, ok := t.held[id]; !ok {
		return fmt.Errorf("update of unlocked account %s", id)
	}
	t.balances[id] = balance
	return nil
}

func (t *accountTx) CreateTransaction(tx *models.Transaction) error {
	if tx.UID == "" {
		tx.UID = uuid.NewString()
	}
	if tx.CreatedAt.IsZero() {
		tx.CreatedAt = time.Now().UTC()
	}
	if !tx.Amount.IsPositive() {
		return fmt.Errorf("failed to create transaction: %w", repositories.ErrConstraintViolation)
	}
	t.inserts = append(t.inserts, tx)
	return nil
}

func (t *accountTx) release() {
	for id := range t.held {
		<-t.repo.rowLock(id)
	}
	t.held = nil
}
