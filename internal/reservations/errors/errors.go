package errors

import "errors"

var (
	ErrNotFound = errors.New("reservation not found")

	ErrInvalidID = errors.New("invalid reservation ID format")

	ErrUnitConflict = errors.New("unit already booked for an overlapping range")

	ErrRoomTypeNotFound = errors.New("room type not found")
)
