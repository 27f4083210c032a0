package model

import "time"

type StationStatus string

const (
	StationActive      StationStatus = "active"
	StationMaintenance StationStatus = "maintenance"
	StationInactive    StationStatus = "inactive"
)

// GeoPoint is carried for the map layer; the reservation engine never
// interprets it.
type GeoPoint struct {
	Latitude  float64 `json:"latitude" bson:"latitude" validate:"min=-90,max=90"`
	Longitude float64 `json:"longitude" bson:"longitude" validate:"min=-180,max=180"`
}

type Station struct {
	ID          string        `json:"id,omitempty" bson:"_id,omitempty" validate:"omitempty,mongodb"`
	Name        string        `json:"name" bson:"name" validate:"required,min=2,max=100"`
	Address     string        `json:"address" bson:"address" validate:"required,min=2,max=200"`
	Location    GeoPoint      `json:"location" bson:"location"`
	OpeningTime string        `json:"opening_time" bson:"opening_time" validate:"required,hhmm"`
	ClosingTime string        `json:"closing_time" bson:"closing_time" validate:"required,hhmm"`
	Capacity    int           `json:"capacity" bson:"capacity" validate:"required,min=1,max=200"`
	Status      StationStatus `json:"status" bson:"status" validate:"required,oneof=active maintenance inactive"`
	CreatedAt   time.Time     `json:"created_at" bson:"created_at" validate:"omitempty"`
}

type StationUpdate struct {
	Name        string         `json:"name,omitempty" validate:"omitempty,min=2,max=100"`
	Address     string         `json:"address,omitempty" validate:"omitempty,min=2,max=200"`
	Location    *GeoPoint      `json:"location,omitempty"`
	OpeningTime string         `json:"opening_time,omitempty" validate:"omitempty,hhmm"`
	ClosingTime string         `json:"closing_time,omitempty" validate:"omitempty,hhmm"`
	Capacity    *int           `json:"capacity,omitempty" validate:"omitempty,min=1,max=200"`
	Status      *StationStatus `json:"status,omitempty" validate:"omitempty,oneof=active maintenance inactive"`
}

// ChangesOperatingParameters reports whether applying the update would
// invalidate the station's generated slot horizon.
func (u *StationUpdate) ChangesOperatingParameters(s *Station) bool {
	if u.OpeningTime != "" && u.OpeningTime != s.OpeningTime {
		return true
	}
	if u.ClosingTime != "" && u.ClosingTime != s.ClosingTime {
		return true
	}
	if u.Capacity != nil && *u.Capacity != s.Capacity {
		return true
	}
	return false
}
