package model

import (
	"fmt"
	"time"
)

type TimeSlotStatus string

const (
	SlotAvailable TimeSlotStatus = "available"
	SlotBooked    TimeSlotStatus = "booked"
)

// TimeSlot is a fixed-width, capacity-bounded reservation unit scoped to one
// station and one calendar date. Its identifier is derived from
// (station, date, start), so horizon regeneration upserts slots in place and
// existing booking references stay valid.
type TimeSlot struct {
	ID             string         `json:"id" bson:"_id"`
	StationID      string         `json:"station_id" bson:"station_id" validate:"required,mongodb"`
	Date           string         `json:"date" bson:"date" validate:"required,datetime=2006-01-02"`
	StartTime      string         `json:"start_time" bson:"start_time" validate:"required,hhmm"`
	EndTime        string         `json:"end_time" bson:"end_time" validate:"required,hhmm"`
	TotalSpots     int            `json:"total_spots" bson:"total_spots" validate:"required,min=1"`
	AvailableSpots int            `json:"available_spots" bson:"available_spots" validate:"min=0"`
	Status         TimeSlotStatus `json:"status" bson:"status" validate:"required,oneof=available booked"`
	GeneratedAt    time.Time      `json:"generated_at" bson:"generated_at"`
}

// SlotID builds the deterministic slot identifier.
func SlotID(stationID, date, startTime string) string {
	return fmt.Sprintf("%s_%s_%s", stationID, date, startTime)
}

// StartsBefore reports whether the slot's start is in the past relative to now.
func (s *TimeSlot) StartsBefore(now time.Time) bool {
	date := now.Format(DateLayout)
	if s.Date != date {
		return s.Date < date
	}
	return s.StartTime <= now.Format(ClockLayout)
}
