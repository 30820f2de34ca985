package handlers

import (
	"time"

	"balance/internal/models"
	"balance/internal/validation"

	"github.com/shopspring/decimal"
)

// IdempotencyKeyHeader carries the client's idempotency key. The key in use
// is always echoed back in the response.
const IdempotencyKeyHeader = "Idempotency-Key"

// transactionResultKind tags cached transaction responses.
const transactionResultKind = "transaction"

type CreateAccountRequest struct {
	Name string `json:"name"`
}

// CreateTransactionRequest accepts the amount as a JSON number or a decimal
// string.
type CreateTransactionRequest struct {
	Type   string           `json:"type"`
	Amount *decimal.Decimal `json:"amount"`
	UserID string           `json:"user_id"`
}

type AccountResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Balance   string    `json:"balance"`
	CreatedAt time.Time `json:"created_at"`
}

type BalanceResponse struct {
	UserID    string     `json:"user_id"`
	Balance   string     `json:"balance"`
	Timestamp *time.Time `json:"timestamp,omitempty"`
}

// TransactionResponse is also the cached payload of POST /api/transactions,
// so a replay serialises to the same body.
type TransactionResponse struct {
	UID          string    `json:"uid"`
	Type         string    `json:"type"`
	Amount       string    `json:"amount"`
	UserID       string    `json:"user_id"`
	CreatedAt    time.Time `json:"created_at"`
	BalanceAfter string    `json:"balance_after,omitempty"`
}

func (TransactionResponse) ResultKind() string { return transactionResultKind }

func money(d decimal.Decimal) string {
	return d.StringFixed(validation.AmountScale)
}

func newAccountResponse(a *models.Account) AccountResponse {
	return AccountResponse{
		ID:        a.ID,
		Name:      a.Name,
		Balance:   money(a.Balance),
		CreatedAt: a.CreatedAt.UTC(),
	}
}

// newTransactionResponse includes balance_after only for freshly applied
// transactions.
func newTransactionResponse(t *models.Transaction, withBalance bool) TransactionResponse {
	resp := TransactionResponse{
		UID:       t.UID,
		Type:      string(t.Type),
		Amount:    money(t.Amount),
		UserID:    t.AccountID,
		CreatedAt: t.CreatedAt.UTC(),
	}
	if withBalance {
		resp.BalanceAfter = money(t.BalanceAfter)
	}
	return resp
}
