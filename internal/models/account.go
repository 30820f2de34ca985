package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Account holds a single non-negative balance. It is only mutated by
// applying a Transaction.
type Account struct {
	ID        string          `gorm:"type:varchar(36);primaryKey" json:"id"`
	Name      string          `gorm:"type:varchar(255);not null" json:"name"`
	Balance   decimal.Decimal `gorm:"type:numeric(20,2);not null;default:0;check:chk_accounts_balance_non_negative,balance >= 0" json:"balance"`
	CreatedAt time.Time       `gorm:"not null" json:"created_at"`

	Transactions []Transaction `gorm:"foreignKey:AccountID;constraint:OnDelete:CASCADE" json:"-"`
}

func (a *Account) BeforeCreate(tx *gorm.DB) error {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	return nil
}
