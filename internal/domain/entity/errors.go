package entity

import "errors"

var (
	// ErrNotFound is returned when an entity does not exist within the
	// caller's tenant/store scope. Cross-tenant rows look identical to
	// missing rows on purpose.
	ErrNotFound = errors.New("record not found")

	// ErrInvalidState is returned when an operation is attempted from a
	// lifecycle state that does not permit it.
	ErrInvalidState = errors.New("invalid state for operation")

	// ErrInsufficientAvailable is returned when a reservation exceeds the
	// available (on-hand minus reserved) quantity.
	ErrInsufficientAvailable = errors.New("insufficient available quantity")

	// ErrInsufficientQuantity is returned when an adjustment would drive
	// the on-hand quantity below the reserved quantity.
	ErrInsufficientQuantity = errors.New("insufficient on-hand quantity")

	// ErrOverRelease is returned when a release exceeds the reserved quantity.
	ErrOverRelease = errors.New("release exceeds reserved quantity")

	// ErrUnauthorized is returned when the actor lacks the role required
	// for the current approval level, or is not allowed to cancel.
	ErrUnauthorized = errors.New("actor is not authorized for this operation")

	// ErrDuplicate is returned on uniqueness violations (store code, product
	// SKU, document number after the retry budget is spent).
	ErrDuplicate = errors.New("duplicate record")

	// ErrValidation is returned for malformed input.
	ErrValidation = errors.New("validation failed")
)
