package models

import (
	"encoding/json"
	"time"
)

type IdempotencyStatus string

const (
	IdempotencyInProcess IdempotencyStatus = "IN_PROCESS"
	IdempotencySuccess   IdempotencyStatus = "SUCCESS"
	IdempotencyFailure   IdempotencyStatus = "FAILURE"
)

// Terminal reports whether no further transition is allowed before expiry.
func (s IdempotencyStatus) Terminal() bool {
	return s == IdempotencySuccess || s == IdempotencyFailure
}

// IdempotencyRecord is the stored state of one idempotency key. It is not
// linked to the ledger; Payload is a serialized copy of the result, tagged
// with ResultKind.
type IdempotencyRecord struct {
	Key        string            `json:"idempotency_key"`
	Status     IdempotencyStatus `json:"status"`
	ResultKind string            `json:"result_kind,omitempty"`
	Payload    json.RawMessage   `json:"payload,omitempty"`
	Error      string            `json:"error,omitempty"`
	ErrorCode  string            `json:"error_code,omitempty"`
	CreatedAt  time.Time         `json:"created_at"`
	UpdatedAt  time.Time         `json:"updated_at"`
	TTLSeconds int               `json:"ttl"`
}
