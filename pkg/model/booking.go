package model

import (
	"fmt"
	"time"
)

type BookingStatus string

const (
	BookingConfirmed BookingStatus = "confirmed"
	BookingCancelled BookingStatus = "cancelled"
	BookingCheckedIn BookingStatus = "checked_in"
	BookingCompleted BookingStatus = "completed"
	BookingNoShow    BookingStatus = "no_show"
)

// validTransitions is the single source of truth for the booking lifecycle.
// Confirmed is the initial state; cancelled, completed and no_show are
// terminal. Callers never set a status directly, they request a transition.
var validTransitions = map[BookingStatus][]BookingStatus{
	BookingConfirmed: {BookingCancelled, BookingCheckedIn, BookingNoShow},
	BookingCheckedIn: {BookingCompleted},
}

type InvalidTransitionError struct {
	From BookingStatus
	To   BookingStatus
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("invalid booking status transition: %s -> %s", e.From, e.To)
}

// CanTransition reports whether the lifecycle allows moving from one status
// to another.
func CanTransition(from, to BookingStatus) bool {
	for _, next := range validTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// Transition validates the requested status change against the lifecycle
// table and applies it to the booking.
func (b *Booking) Transition(to BookingStatus) error {
	if !CanTransition(b.Status, to) {
		return &InvalidTransitionError{From: b.Status, To: to}
	}
	b.Status = to
	return nil
}

// Booking holds the interval denormalized from its time slot so per-user
// overlap checks run against a single collection.
type Booking struct {
	ID         string        `json:"id,omitempty" bson:"_id,omitempty" validate:"omitempty,mongodb"`
	UserID     string        `json:"user_id" bson:"user_id" validate:"required"`
	StationID  string        `json:"station_id" bson:"station_id" validate:"required,mongodb"`
	TimeSlotID string        `json:"time_slot_id" bson:"time_slot_id" validate:"required"`
	Date       string        `json:"date" bson:"date" validate:"required,datetime=2006-01-02"`
	StartTime  string        `json:"start_time" bson:"start_time" validate:"required,hhmm"`
	EndTime    string        `json:"end_time" bson:"end_time" validate:"required,hhmm"`
	Status     BookingStatus `json:"status" bson:"status" validate:"required,oneof=confirmed cancelled checked_in completed no_show"`
	CreatedAt  time.Time     `json:"created_at" bson:"created_at" validate:"omitempty"`
	UpdatedAt  time.Time     `json:"updated_at" bson:"updated_at" validate:"omitempty"`
}

// Active reports whether the booking still consumes a unit of slot capacity.
func (b *Booking) Active() bool {
	return b.Status == BookingConfirmed || b.Status == BookingCheckedIn
}

// BookingDetails is the denormalized view returned to callers: the booking
// plus the station fields a client renders alongside it.
type BookingDetails struct {
	Booking
	StationName string   `json:"station_name,omitempty"`
	Address     string   `json:"address,omitempty"`
	Location    GeoPoint `json:"location,omitempty"`
}
