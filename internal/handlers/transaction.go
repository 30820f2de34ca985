package handlers

import (
	"context"
	"time"

	apperrors "balance/internal/errors"
	"balance/internal/logger"
	"balance/internal/services/idempotency"
	"balance/internal/utils"
	"balance/internal/validation"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

type TransactionHandler struct {
	ledger      Ledger
	coordinator *idempotency.Coordinator
	ttl         time.Duration
	log         *zap.Logger
}

// NewTransactionHandler wires the ledger behind the idempotency coordinator.
// ttl <= 0 uses the coordinator's default.
func NewTransactionHandler(ledger Ledger, coordinator *idempotency.Coordinator, ttl time.Duration, log *zap.Logger) *TransactionHandler {
	return &TransactionHandler{
		ledger:      ledger,
		coordinator: coordinator,
		ttl:         ttl,
		log:         logger.OrNop(log),
	}
}

// CreateTransaction handles POST /api/transactions. Input is validated
// before the idempotency key is consulted, so malformed requests are never
// cached.
func (h *TransactionHandler) CreateTransaction(c *fiber.Ctx) error {
	var input CreateTransactionRequest
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, apperrors.ErrInvalidRequest.Message)
	}

	v := validation.New()
	v.Required("user_id", input.UserID)
	v.Required("type", input.Type)
	v.Check(input.Amount != nil, "amount", "must not be empty")
	if !v.Valid() {
		return utils.ValidationFailed(c, v.Error(), v.Errors)
	}

	direction, err := validation.ParseDirection(input.Type)
	if err != nil {
		return writeError(c, h.log, err)
	}
	amount, err := validation.NormalizeAmount(*input.Amount)
	if err != nil {
		return writeError(c, h.log, err)
	}

	key := idempotency.KeyOrGenerate(c.Get(IdempotencyKeyHeader))
	c.Set(IdempotencyKeyHeader, key)

	accountID := input.UserID
	resp, err := idempotency.Execute(c.UserContext(), h.coordinator, key, h.ttl,
		func(ctx context.Context) (TransactionResponse, error) {
			tx, err := h.ledger.ApplyTransaction(ctx, accountID, direction, amount)
			if err != nil {
				return TransactionResponse{}, err
			}
			h.log.Info("transaction created",
				zap.String("uid", tx.UID),
				zap.String("user_id", accountID),
				zap.String("idempotency_key", key),
			)
			return newTransactionResponse(tx, true), nil
		})
	if err != nil {
		return writeError(c, h.log, err)
	}
	return utils.Created(c, resp)
}

// GetTransaction handles GET /api/transactions/:uid.
func (h *TransactionHandler) GetTransaction(c *fiber.Ctx) error {
	tx, err := h.ledger.GetTransaction(c.UserContext(), c.Params("uid"))
	if err != nil {
		return writeError(c, h.log, err)
	}
	return utils.Success(c, newTransactionResponse(tx, false))
}
