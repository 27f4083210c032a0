package validator

import (
	"testing"

	"voltslot/pkg/logger"
	"voltslot/pkg/model"
)

func testValidator() *StationValidator {
	return NewStationValidator(logger.New(logger.Config{
		Level:   "error",
		Format:  logger.JSON,
		Service: "test",
	}))
}

func validStation() *model.Station {
	return &model.Station{
		Name:        "Harbor East",
		Address:     "3 Dock Rd",
		Location:    model.GeoPoint{Latitude: 51.5, Longitude: -0.08},
		OpeningTime: "08:00",
		ClosingTime: "20:00",
		Capacity:    4,
		Status:      model.StationActive,
	}
}

func TestValidate_AcceptsWellFormedStation(t *testing.T) {
	if err := testValidator().Validate(validStation()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestValidate_RejectsBadInput(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*model.Station)
	}{
		{"missing name", func(s *model.Station) { s.Name = "" }},
		{"name too short", func(s *model.Station) { s.Name = "x" }},
		{"missing address", func(s *model.Station) { s.Address = "" }},
		{"zero capacity", func(s *model.Station) { s.Capacity = 0 }},
		{"capacity over cap", func(s *model.Station) { s.Capacity = 500 }},
		{"unknown status", func(s *model.Station) { s.Status = "paused" }},
		{"unpadded opening time", func(s *model.Station) { s.OpeningTime = "8:00" }},
		{"opening past midnight", func(s *model.Station) { s.OpeningTime = "24:00" }},
		{"equal hours", func(s *model.Station) { s.OpeningTime = "10:00"; s.ClosingTime = "10:00" }},
		{"inverted hours", func(s *model.Station) { s.OpeningTime = "20:00"; s.ClosingTime = "08:00" }},
		{"latitude out of range", func(s *model.Station) { s.Location.Latitude = 95 }},
	}

	v := testValidator()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := validStation()
			tt.mutate(s)
			if err := v.Validate(s); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}

func TestValidateUpdate_PartialFieldsOnly(t *testing.T) {
	v := testValidator()

	if err := v.ValidateUpdate(&model.StationUpdate{Name: "New Name"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if err := v.ValidateUpdate(&model.StationUpdate{OpeningTime: "9:00"}); err == nil {
		t.Error("expected error for unpadded time")
	}

	// Both sides present and inverted is rejected here; single-sided changes
	// are checked against the stored station by the service.
	if err := v.ValidateUpdate(&model.StationUpdate{OpeningTime: "18:00", ClosingTime: "08:00"}); err == nil {
		t.Error("expected error for inverted window")
	}
}

func TestValidateOperatingHours(t *testing.T) {
	if err := ValidateOperatingHours("08:00", "08:59"); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	if err := ValidateOperatingHours("08:00", "08:00"); err == nil {
		t.Error("expected error for zero-width window")
	}
	if err := ValidateOperatingHours("bad", "08:00"); err == nil {
		t.Error("expected error for malformed opening time")
	}
}
