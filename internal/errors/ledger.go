package errors

var (
	ErrAccountNotFound = register(&DomainError{
		Code:    "ACCOUNT_NOT_FOUND",
		Message: "user not found",
		Kind:    KindNotFound,
	})
	ErrTransactionNotFound = register(&DomainError{
		Code:    "TRANSACTION_NOT_FOUND",
		Message: "transaction not found",
		Kind:    KindNotFound,
	})
	ErrInsufficientFunds = register(&DomainError{
		Code:    "INSUFFICIENT_FUNDS",
		Message: "insufficient funds for withdrawal",
		Kind:    KindBusiness,
	})
	ErrInvalidAmount = register(&DomainError{
		Code:    "INVALID_AMOUNT",
		Message: "amount must be positive",
		Kind:    KindValidation,
	})
	ErrAmountTooLarge = register(&DomainError{
		Code:    "AMOUNT_TOO_LARGE",
		Message: "amount exceeds the maximum allowed value",
		Kind:    KindValidation,
	})
	ErrInvalidDirection = register(&DomainError{
		Code:    "INVALID_TRANSACTION_TYPE",
		Message: "transaction type must be DEPOSIT or WITHDRAW",
		Kind:    KindValidation,
	})
	ErrInvalidName = register(&DomainError{
		Code:    "INVALID_NAME",
		Message: "name must be between 1 and 255 characters",
		Kind:    KindValidation,
	})
	ErrInvalidTimestamp = register(&DomainError{
		Code:    "INVALID_TIMESTAMP",
		Message: "timestamp must be an ISO-8601 date-time",
		Kind:    KindValidation,
	})
	ErrInvalidRequest = register(&DomainError{
		Code:    "INVALID_REQUEST",
		Message: "invalid request body",
		Kind:    KindValidation,
	})

	// ErrStorageConflict is a lock-wait timeout or deadlock. Transient.
	ErrStorageConflict = register(&DomainError{
		Code:    "STORAGE_CONFLICT",
		Message: "account is busy, please retry",
		Kind:    KindConflict,
	})
	// ErrStorageFailure covers integrity violations and any other failed write.
	ErrStorageFailure = register(&DomainError{
		Code:    "STORAGE_FAILURE",
		Message: "transaction failed",
		Kind:    KindStorageFailure,
	})
)
