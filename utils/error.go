package utils

import "errors"

// Error taxonomy surfaced by the movement and aggregation engines.
// The gateway maps these to HTTP statuses; nothing below the gateway
// ever returns one of these alongside a partially applied mutation.
var (
	ErrorRecordNotFound = errors.New("record not found")

	// ErrInvalidQuantity: non-positive quantity, rejected before any storage access.
	ErrInvalidQuantity = errors.New("quantity must be greater than zero")

	// ErrInsufficientStock: the requested decrement exceeds the current
	// quantity. The stock row is left unchanged.
	ErrInsufficientStock = errors.New("insufficient stock")

	// ErrStorageUnavailable: transient infrastructure fault. Safe to retry,
	// no partial state was committed.
	ErrStorageUnavailable = errors.New("storage unavailable")

	// ErrDuplicate: unique-column collision on create/update.
	ErrDuplicate = errors.New("duplicate")
)

func ErrorPanic(err error) {
	if err != nil {
		panic(err)
	}
}
