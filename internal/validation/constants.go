package validation

const (
	// AmountScale is the number of fractional digits kept for money.
	AmountScale = 2

	// MaxNameLength matches the accounts.name column.
	MaxNameLength = 255
)
