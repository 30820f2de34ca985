package models

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Direction is the side of a transaction. The signed effect on the balance
// is derived from it; amounts are always stored positive.
type Direction string

const (
	DirectionDeposit  Direction = "DEPOSIT"
	DirectionWithdraw Direction = "WITHDRAW"
)

// ParseDirection accepts either direction case-insensitively.
func ParseDirection(s string) (Direction, bool) {
	d := Direction(strings.ToUpper(strings.TrimSpace(s)))
	return d, d.Valid()
}

func (d Direction) Valid() bool {
	return d == DirectionDeposit || d == DirectionWithdraw
}

// Signed returns +amount for a deposit and -amount for a withdrawal.
func (d Direction) Signed(amount decimal.Decimal) decimal.Decimal {
	if d == DirectionWithdraw {
		return amount.Neg()
	}
	return amount
}

// Transaction is an immutable ledger entry. ID is the internal row id; UID
// is the public identifier.
type Transaction struct {
	ID        uint            `gorm:"primarykey" json:"-"`
	UID       string          `gorm:"type:varchar(36);uniqueIndex;not null" json:"uid"`
	Type      Direction       `gorm:"type:varchar(16);not null" json:"type"`
	Amount    decimal.Decimal `gorm:"type:numeric(20,2);not null;check:chk_transactions_amount_positive,amount > 0" json:"amount"`
	AccountID string          `gorm:"type:varchar(36);not null;index:idx_transactions_account_id;index:idx_transactions_account_created,priority:1" json:"user_id"`
	CreatedAt time.Time       `gorm:"not null;index:idx_transactions_created_at;index:idx_transactions_account_created,priority:2" json:"created_at"`

	// BalanceAfter is computed when the transaction is applied and never persisted.
	BalanceAfter decimal.Decimal `gorm:"-" json:"balance_after"`
}

// Effect is the signed amount this transaction contributed to the balance.
func (t *Transaction) Effect() decimal.Decimal {
	return t.Type.Signed(t.Amount)
}
