package errors

import "errors"

var (
	ErrNotFound = errors.New("station not found")

	ErrInvalidID = errors.New("invalid station ID format")

	ErrInvalidOperatingHours = errors.New("opening time must be strictly before closing time")
)
