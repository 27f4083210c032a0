package service

import (
	"context"
	"time"

	"voltslot/pkg/kafka"
	"voltslot/pkg/model"
)

const (
	EventBookingCreated   = "booking.created"
	EventBookingCancelled = "booking.cancelled"
	EventBookingCheckedIn = "booking.checked_in"
	EventBookingCompleted = "booking.completed"

	eventSource = "voltslot"
)

// EventPublisher decouples the coordinator from the Kafka producer so it can
// run without a broker. A nil publisher disables events entirely.
type EventPublisher interface {
	Publish(ctx context.Context, msg kafka.Message) error
}

// BookingEvent is the wire payload published per lifecycle change.
type BookingEvent struct {
	BookingID  string    `json:"booking_id"`
	UserID     string    `json:"user_id"`
	StationID  string    `json:"station_id"`
	TimeSlotID string    `json:"time_slot_id"`
	Date       string    `json:"date"`
	StartTime  string    `json:"start_time"`
	EndTime    string    `json:"end_time"`
	Status     string    `json:"status"`
	OccurredAt time.Time `json:"occurred_at"`
}

// publishEvent emits a lifecycle event on a best-effort basis. Publishing
// never fails the booking operation; a broker outage is logged and the
// request succeeds.
func (s *bookingService) publishEvent(ctx context.Context, eventType string, details *model.BookingDetails) {
	if s.publisher == nil {
		return
	}

	event := BookingEvent{
		BookingID:  details.ID,
		UserID:     details.UserID,
		StationID:  details.StationID,
		TimeSlotID: details.TimeSlotID,
		Date:       details.Date,
		StartTime:  details.StartTime,
		EndTime:    details.EndTime,
		Status:     string(details.Status),
		OccurredAt: s.now(),
	}

	msg := kafka.NewMessage().
		WithKey(details.ID).
		WithValue(event).
		WithEventType(eventType).
		WithSource(eventSource).
		Build()

	if err := s.publisher.Publish(ctx, msg); err != nil {
		s.cfg.Log.Warn("Failed to publish booking event",
			"event_type", eventType,
			"booking_id", details.ID,
			"error", err,
		)
	}
}
