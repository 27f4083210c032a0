package model

import "time"

// BookingLock is an advisory lock keyed by (user, date). It closes the gap
// between the per-user overlap check and the booking insert; slot capacity
// itself is protected by the conditional decrement, not by this lock.
type BookingLock struct {
	ID        string    `bson:"_id" json:"id"`
	ExpiresAt time.Time `bson:"expires_at" json:"expires_at"`
	CreatedAt time.Time `bson:"created_at" json:"created_at"`
}
