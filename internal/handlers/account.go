package handlers

import (
	apperrors "balance/internal/errors"
	"balance/internal/logger"
	"balance/internal/utils"
	"balance/internal/validation"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100 // Maximum allowed transactions per page
)

type AccountHandler struct {
	ledger Ledger
	log    *zap.Logger
}

func NewAccountHandler(ledger Ledger, log *zap.Logger) *AccountHandler {
	return &AccountHandler{
		ledger: ledger,
		log:    logger.OrNop(log),
	}
}

// CreateAccount handles POST /api/users.
func (h *AccountHandler) CreateAccount(c *fiber.Ctx) error {
	var input CreateAccountRequest
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, apperrors.ErrInvalidRequest.Message)
	}

	v := validation.New()
	v.Required("name", input.Name)
	v.MaxLength("name", input.Name, validation.MaxNameLength)
	if !v.Valid() {
		return utils.ValidationFailed(c, v.Error(), v.Errors)
	}

	account, err := h.ledger.CreateAccount(c.UserContext(), input.Name)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return utils.Created(c, newAccountResponse(account))
}

// GetAccount handles GET /api/users/:id.
func (h *AccountHandler) GetAccount(c *fiber.Ctx) error {
	account, err := h.ledger.GetAccount(c.UserContext(), c.Params("id"))
	if err != nil {
		return writeError(c, h.log, err)
	}
	return utils.Success(c, newAccountResponse(account))
}

// GetBalance handles GET /api/users/:id/balance. With ?timestamp the balance
// is recomputed from history as of that instant.
func (h *AccountHandler) GetBalance(c *fiber.Ctx) error {
	accountID := c.Params("id")

	raw := c.Query("timestamp")
	if raw == "" {
		account, err := h.ledger.GetAccount(c.UserContext(), accountID)
		if err != nil {
			return writeError(c, h.log, err)
		}
		return utils.Success(c, BalanceResponse{UserID: account.ID, Balance: money(account.Balance)})
	}

	at, err := validation.ParseTimestamp(raw)
	if err != nil {
		return writeError(c, h.log, err)
	}
	balance, err := h.ledger.GetBalanceAsOf(c.UserContext(), accountID, at)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return utils.Success(c, BalanceResponse{UserID: accountID, Balance: money(balance), Timestamp: &at})
}

// ListTransactions handles GET /api/users/:id/transactions?page&limit.
func (h *AccountHandler) ListTransactions(c *fiber.Ctx) error {
	pagination := utils.GetPagination(c, 1, defaultPageSize, maxPageSize)

	txs, total, err := h.ledger.ListTransactions(c.UserContext(), c.Params("id"), pagination.Limit, pagination.Offset)
	if err != nil {
		return writeError(c, h.log, err)
	}

	data := make([]TransactionResponse, 0, len(txs))
	for i := range txs {
		data = append(data, newTransactionResponse(&txs[i], false))
	}
	pagination.SetTotal(total)
	return utils.Success(c, utils.NewPaginatedResponse(data, pagination))
}
