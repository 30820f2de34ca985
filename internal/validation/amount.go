package validation

import (
	"strings"
	"time"

	apperrors "balance/internal/errors"
	"balance/internal/models"

	"github.com/shopspring/decimal"
)

// maxAmount is the largest value a numeric(20,2) column holds.
var maxAmount = decimal.RequireFromString("999999999999999999.99")

// NormalizeAmount rounds half-up to two fractional digits and rejects
// anything that is not strictly positive afterwards.
func NormalizeAmount(amount decimal.Decimal) (decimal.Decimal, error) {
	normalized := amount.Round(AmountScale)
	if !normalized.IsPositive() {
		return decimal.Zero, apperrors.ErrInvalidAmount
	}
	if normalized.GreaterThan(maxAmount) {
		return decimal.Zero, apperrors.ErrAmountTooLarge
	}
	return normalized, nil
}

// ParseDirection validates a client supplied transaction type.
func ParseDirection(s string) (models.Direction, error) {
	d, ok := models.ParseDirection(s)
	if !ok {
		return "", apperrors.ErrInvalidDirection
	}
	return d, nil
}

// NormalizeName trims an account name and checks its length.
func NormalizeName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" || len([]rune(name)) > MaxNameLength {
		return "", apperrors.ErrInvalidName
	}
	return name, nil
}

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// ParseTimestamp accepts ISO-8601 date-times. Values without a zone are UTC.
func ParseTimestamp(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, apperrors.ErrInvalidTimestamp
}
