package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"voltslot/internal/slots/repository"
	stationerrors "voltslot/internal/stations/errors"
	"voltslot/pkg/config"
	apperrors "voltslot/pkg/errors"
	"voltslot/pkg/model"
)

// Slot width is fixed at one hour; a partial trailing hour before closing
// time is never emitted.
const slotWidthMinutes = 60

// StationFinder is the slice of the station repository the slot service needs.
type StationFinder interface {
	FindByID(ctx context.Context, id string) (*model.Station, error)
}

type SlotService interface {
	// ListForDate returns a station's slots for one calendar date,
	// materializing them on first request if the date is inside the horizon.
	ListForDate(ctx context.Context, stationID, date string) ([]*model.TimeSlot, error)

	// RegenerateHorizon upserts the station's full rolling horizon,
	// resetting spot counters. Callers gate this behind the
	// active-bookings check.
	RegenerateHorizon(ctx context.Context, station *model.Station) error
}

type slotService struct {
	repo     repository.TimeSlotRepository
	stations StationFinder
	cfg      *config.Config
	now      func() time.Time
}

func NewSlotService(repo repository.TimeSlotRepository, stations StationFinder, cfg *config.Config) SlotService {
	return &slotService{
		repo:     repo,
		stations: stations,
		cfg:      cfg,
		now:      time.Now,
	}
}

func (s *slotService) ListForDate(ctx context.Context, stationID, date string) ([]*model.TimeSlot, error) {
	if stationID == "" {
		return nil, apperrors.InvalidInput("Station ID cannot be empty")
	}
	if _, err := model.ParseDate(date); err != nil {
		return nil, apperrors.InvalidInput("invalid date, must be YYYY-MM-DD")
	}

	station, err := s.stations.FindByID(ctx, stationID)
	if err != nil {
		if errors.Is(err, stationerrors.ErrNotFound) {
			return nil, apperrors.NotFoundWithID("Station", stationID)
		}
		if errors.Is(err, stationerrors.ErrInvalidID) {
			return nil, apperrors.InvalidInput("Invalid station ID format")
		}
		return nil, apperrors.Internal("Failed to retrieve station", err)
	}

	slots, err := s.repo.FindByStationAndDate(ctx, stationID, date)
	if err != nil {
		s.cfg.Log.Error("Failed to list time slots", "station_id", stationID, "date", date, "error", err)
		return nil, apperrors.Internal("Failed to retrieve time slots", err)
	}
	if len(slots) > 0 {
		return slots, nil
	}

	if !s.withinHorizon(date) {
		return []*model.TimeSlot{}, nil
	}

	slots, err = GenerateDay(station, date, s.now())
	if err != nil {
		if errors.Is(err, stationerrors.ErrInvalidOperatingHours) {
			return nil, apperrors.InvalidInput(err.Error())
		}
		return nil, apperrors.Internal("Failed to generate time slots", err)
	}

	// Insert-only: a concurrent first request for the same date may have
	// materialized these slots and a booking may already have decremented
	// one, so existing documents must keep their counters. The stored
	// state is re-read below and is the authority on what exists.
	if err := s.repo.InsertBatchIfAbsent(ctx, slots); err != nil {
		s.cfg.Log.Error("Failed to persist generated time slots", "station_id", stationID, "date", date, "error", err)
		return nil, apperrors.Internal("Failed to persist time slots", err)
	}
	slots, err = s.repo.FindByStationAndDate(ctx, stationID, date)
	if err != nil {
		s.cfg.Log.Error("Failed to list time slots", "station_id", stationID, "date", date, "error", err)
		return nil, apperrors.Internal("Failed to retrieve time slots", err)
	}

	s.cfg.Log.Info("Time slots generated lazily",
		"station_id", stationID,
		"date", date,
		"count", len(slots),
	)
	return slots, nil
}

func (s *slotService) RegenerateHorizon(ctx context.Context, station *model.Station) error {
	slots, err := GenerateHorizon(station, s.now(), s.cfg.SlotHorizonDays)
	if err != nil {
		if errors.Is(err, stationerrors.ErrInvalidOperatingHours) {
			return apperrors.InvalidInput(err.Error())
		}
		return apperrors.Internal("Failed to generate slot horizon", err)
	}

	if err := s.repo.UpsertBatch(ctx, slots); err != nil {
		s.cfg.Log.Error("Failed to persist slot horizon", "station_id", station.ID, "error", err)
		return apperrors.Internal("Failed to persist slot horizon", err)
	}

	// The new shape fully replaces the old one: slots outside a narrowed
	// operating window or a shortened horizon must not stay bookable.
	// Safe because callers gate regeneration on zero active bookings.
	keepIDs := make([]string, 0, len(slots))
	for _, slot := range slots {
		keepIDs = append(keepIDs, slot.ID)
	}
	pruned, err := s.repo.DeleteAllExcept(ctx, station.ID, keepIDs)
	if err != nil {
		s.cfg.Log.Error("Failed to prune superseded time slots", "station_id", station.ID, "error", err)
		return apperrors.Internal("Failed to prune superseded time slots", err)
	}

	s.cfg.Log.Info("Slot horizon regenerated",
		"station_id", station.ID,
		"days", s.cfg.SlotHorizonDays,
		"slots", len(slots),
		"pruned", pruned,
	)
	return nil
}

// withinHorizon compares calendar dates in the process's local day, the same
// frame GenerateHorizon uses; zero-padded date strings order lexicographically.
func (s *slotService) withinHorizon(date string) bool {
	now := s.now()
	today := now.Format(model.DateLayout)
	limit := now.AddDate(0, 0, s.cfg.SlotHorizonDays).Format(model.DateLayout)
	return date >= today && date < limit
}

// GenerateDay emits one calendar date's slots for a station: one per 1-hour
// boundary between opening and closing time, each carrying the station's
// capacity as both total and available spots.
func GenerateDay(station *model.Station, date string, generatedAt time.Time) ([]*model.TimeSlot, error) {
	open, err := model.ParseClock(station.OpeningTime)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", stationerrors.ErrInvalidOperatingHours, err)
	}
	close, err := model.ParseClock(station.ClosingTime)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", stationerrors.ErrInvalidOperatingHours, err)
	}
	if open >= close {
		return nil, fmt.Errorf("%w: %s >= %s", stationerrors.ErrInvalidOperatingHours, station.OpeningTime, station.ClosingTime)
	}

	var slots []*model.TimeSlot
	for start := open; start+slotWidthMinutes <= close; start += slotWidthMinutes {
		startTime := model.FormatClock(start)
		slots = append(slots, &model.TimeSlot{
			ID:             model.SlotID(station.ID, date, startTime),
			StationID:      station.ID,
			Date:           date,
			StartTime:      startTime,
			EndTime:        model.FormatClock(start + slotWidthMinutes),
			TotalSpots:     station.Capacity,
			AvailableSpots: station.Capacity,
			Status:         model.SlotAvailable,
			GeneratedAt:    generatedAt,
		})
	}
	return slots, nil
}

// GenerateHorizon emits slots for every date in the rolling window starting
// at from's calendar date.
func GenerateHorizon(station *model.Station, from time.Time, horizonDays int) ([]*model.TimeSlot, error) {
	var all []*model.TimeSlot
	for i := 0; i < horizonDays; i++ {
		date := from.AddDate(0, 0, i).Format(model.DateLayout)
		slots, err := GenerateDay(station, date, from)
		if err != nil {
			return nil, err
		}
		all = append(all, slots...)
	}
	return all, nil
}
