package model

import "time"

type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// VehicleProfile feeds client-side cost and duration estimates only; the
// reservation engine does not read it.
type VehicleProfile struct {
	Make            string  `json:"make,omitempty" bson:"make,omitempty"`
	Model           string  `json:"model,omitempty" bson:"model,omitempty"`
	BatteryCapacity float64 `json:"battery_capacity_kwh,omitempty" bson:"battery_capacity_kwh,omitempty"`
}

type User struct {
	ID        string          `json:"id,omitempty" bson:"_id,omitempty"`
	Name      string          `json:"name" bson:"name"`
	Role      Role            `json:"role" bson:"role"`
	Vehicle   *VehicleProfile `json:"vehicle,omitempty" bson:"vehicle,omitempty"`
	CreatedAt time.Time       `json:"created_at" bson:"created_at"`
}

// Identity is the caller as established by the upstream gateway.
// Authentication itself happens outside this service.
type Identity struct {
	UserID string
	Role   Role
}

func (i Identity) IsAdmin() bool {
	return i.Role == RoleAdmin
}
