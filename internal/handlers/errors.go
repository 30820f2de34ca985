package handlers

import (
	"errors"

	apperrors "balance/internal/errors"
	"balance/internal/utils"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

const internalErrorMessage = "internal server error"

func statusForKind(kind apperrors.Kind) int {
	switch kind {
	case apperrors.KindValidation, apperrors.KindBusiness:
		return fiber.StatusBadRequest
	case apperrors.KindNotFound:
		return fiber.StatusNotFound
	case apperrors.KindConflict:
		return fiber.StatusConflict
	default:
		return fiber.StatusInternalServerError
	}
}

// StatusFor maps an error to its HTTP status. A replayed failure gets the
// status of the error it replays, or 500 when that error is not known.
func StatusFor(err error) int {
	var de *apperrors.DomainError
	if !errors.As(err, &de) {
		return fiber.StatusInternalServerError
	}
	if errors.Is(err, apperrors.ErrIdempotencyUnavailable) {
		return fiber.StatusServiceUnavailable
	}
	if de.Kind != apperrors.KindCachedFailure {
		return statusForKind(de.Kind)
	}
	if origin, ok := apperrors.Lookup(de.Origin); ok && origin.Kind != apperrors.KindCachedFailure {
		return statusForKind(origin.Kind)
	}
	return fiber.StatusInternalServerError
}

// writeError renders err as {"error": message}. Errors without a domain
// code are logged and rendered as a generic 500.
func writeError(c *fiber.Ctx, log *zap.Logger, err error) error {
	status := StatusFor(err)

	var de *apperrors.DomainError
	if !errors.As(err, &de) {
		log.Error("unexpected error", zap.String("path", c.Path()), zap.Error(err))
		return utils.InternalError(c, internalErrorMessage)
	}

	if apperrors.IsTransient(err) {
		c.Set(fiber.HeaderRetryAfter, "1")
	}
	if status >= fiber.StatusInternalServerError {
		log.Error("request failed", zap.String("code", de.Code), zap.Error(err), zap.NamedError("cause", de.Cause))
	}
	return utils.Error(c, status, de.Error())
}
