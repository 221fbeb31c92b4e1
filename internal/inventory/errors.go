package inventory

import "errors"

var (
	// ErrConflict is returned when a booking would overlap a committed
	// interval on the same unit.
	ErrConflict = errors.New("interval conflicts with an existing booking")

	// ErrInsufficientInventory is returned when fewer units are free over
	// the requested range than the requested quantity.
	ErrInsufficientInventory = errors.New("not enough free units for the requested range")

	// ErrUnknownUnit is returned when a unit ID is not part of the index.
	ErrUnknownUnit = errors.New("unknown unit")
)
