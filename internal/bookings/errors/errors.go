package errors

import "errors"

var (
	ErrNotFound = errors.New("booking not found")

	ErrInvalidID = errors.New("invalid booking ID format")

	// ErrStatusConflict means a conditional status update matched no
	// document: the booking changed state under a concurrent request.
	ErrStatusConflict = errors.New("booking status changed concurrently")
)
