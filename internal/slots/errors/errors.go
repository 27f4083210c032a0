package errors

import "errors"

var (
	ErrNotFound = errors.New("time slot not found")

	// ErrNoCapacity means the conditional decrement matched no document:
	// the slot was fully booked at mutation time.
	ErrNoCapacity = errors.New("time slot has no available spots")

	// ErrNothingToRelease means the conditional increment matched no
	// document: available spots already equal total spots.
	ErrNothingToRelease = errors.New("time slot has no consumed capacity to release")
)
