package service

import (
	"context"
	"errors"
	"fmt"
	"sync"

	stationerrors "voltslot/internal/stations/errors"
	"voltslot/internal/stations/repository"
	"voltslot/internal/stations/validator"
	"voltslot/pkg/config"
	apperrors "voltslot/pkg/errors"
	"voltslot/pkg/model"
)

// SlotRegenerator rebuilds a station's slot horizon after its operating
// parameters change. Implemented by the slots service.
type SlotRegenerator interface {
	RegenerateHorizon(ctx context.Context, station *model.Station) error
}

// ActiveBookingCounter reports confirmed and checked-in bookings for a
// station. Implemented by the bookings repository.
type ActiveBookingCounter interface {
	CountActiveByStation(ctx context.Context, stationID string) (int64, error)
}

type StationService interface {
	Create(ctx context.Context, station *model.Station) error
	GetByID(ctx context.Context, id string) (*model.Station, error)
	GetAll(ctx context.Context, limit int, offset int64) ([]*model.Station, int64, error)
	Update(ctx context.Context, id string, update *model.StationUpdate) (*model.Station, error)
	Delete(ctx context.Context, id string) error
}

type stationService struct {
	repo      repository.StationRepository
	validator *validator.StationValidator
	slots     SlotRegenerator
	bookings  ActiveBookingCounter
	cfg       *config.Config
}

func NewStationService(
	repo repository.StationRepository,
	v *validator.StationValidator,
	slots SlotRegenerator,
	bookings ActiveBookingCounter,
	cfg *config.Config,
) StationService {
	return &stationService{
		repo:      repo,
		validator: v,
		slots:     slots,
		bookings:  bookings,
		cfg:       cfg,
	}
}

func (s *stationService) Create(ctx context.Context, station *model.Station) error {
	if station.Status == "" {
		station.Status = model.StationActive
	}
	if err := s.validator.Validate(station); err != nil {
		return apperrors.Validation("Station validation failed", map[string]any{"error": err.Error()})
	}

	if err := s.repo.Create(ctx, station); err != nil {
		s.cfg.Log.Error("Failed to create station", "name", station.Name, "error", err)
		return apperrors.Internal("Failed to create station", err)
	}

	// Pre-materialize the horizon so the first availability query does not
	// pay the generation cost.
	if err := s.slots.RegenerateHorizon(ctx, station); err != nil {
		s.cfg.Log.Warn("Failed to generate initial slot horizon", "station_id", station.ID, "error", err)
	}

	s.cfg.Log.Info("Station created", "id", station.ID, "name", station.Name)
	return nil
}

func (s *stationService) GetByID(ctx context.Context, id string) (*model.Station, error) {
	return s.find(ctx, id)
}

func (s *stationService) GetAll(ctx context.Context, limit int, offset int64) ([]*model.Station, int64, error) {
	var count int64
	var stations []*model.Station
	var errCount, errFind error
	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		var err error
		count, err = s.repo.Count(ctx)
		if err != nil {
			s.cfg.Log.Error("Failed to count stations", "error", err)
			errCount = apperrors.Internal("Failed to count stations", err)
		}
	}()

	go func() {
		defer wg.Done()
		var err error
		stations, err = s.repo.FindAll(ctx, limit, offset)
		if err != nil {
			s.cfg.Log.Error("Failed to list stations", "error", err)
			errFind = apperrors.Internal("Failed to retrieve stations", err)
		}
	}()

	wg.Wait()
	if errCount != nil {
		return nil, 0, errCount
	}
	if errFind != nil {
		return nil, 0, errFind
	}
	return stations, count, nil
}

func (s *stationService) Update(ctx context.Context, id string, update *model.StationUpdate) (*model.Station, error) {
	if err := s.validator.ValidateUpdate(update); err != nil {
		return nil, apperrors.Validation("Station update validation failed", map[string]any{"error": err.Error()})
	}

	station, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}

	deactivating := update.Status != nil && *update.Status != model.StationActive &&
		station.Status == model.StationActive
	reshapesHorizon := update.ChangesOperatingParameters(station)

	if deactivating || reshapesHorizon {
		if err := s.requireNoActiveBookings(ctx, station.ID); err != nil {
			return nil, err
		}
	}

	applyUpdate(station, update)
	if err := validator.ValidateOperatingHours(station.OpeningTime, station.ClosingTime); err != nil {
		return nil, apperrors.Validation("Station update validation failed", map[string]any{"error": err.Error()})
	}

	if err := s.repo.Update(ctx, id, station); err != nil {
		if errors.Is(err, stationerrors.ErrNotFound) {
			return nil, apperrors.NotFoundWithID("Station", id)
		}
		s.cfg.Log.Error("Failed to update station", "id", id, "error", err)
		return nil, apperrors.Internal("Failed to update station", err)
	}

	if reshapesHorizon {
		if err := s.slots.RegenerateHorizon(ctx, station); err != nil {
			s.cfg.Log.Error("Failed to regenerate slot horizon", "station_id", station.ID, "error", err)
			return nil, apperrors.Internal("Station updated but slot regeneration failed", err)
		}
		s.cfg.Log.Info("Slot horizon regenerated after update", "station_id", station.ID)
	}

	s.cfg.Log.Info("Station updated", "id", station.ID)
	return station, nil
}

func (s *stationService) Delete(ctx context.Context, id string) error {
	station, err := s.find(ctx, id)
	if err != nil {
		return err
	}
	if err := s.requireNoActiveBookings(ctx, station.ID); err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, stationerrors.ErrNotFound) {
			return apperrors.NotFoundWithID("Station", id)
		}
		s.cfg.Log.Error("Failed to delete station", "id", id, "error", err)
		return apperrors.Internal("Failed to delete station", err)
	}

	s.cfg.Log.Info("Station deleted", "id", id)
	return nil
}

func (s *stationService) find(ctx context.Context, id string) (*model.Station, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Station ID cannot be empty")
	}
	station, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, stationerrors.ErrNotFound) {
			return nil, apperrors.NotFoundWithID("Station", id)
		}
		if errors.Is(err, stationerrors.ErrInvalidID) {
			return nil, apperrors.InvalidInput("Invalid station ID format")
		}
		return nil, apperrors.Internal("Failed to retrieve station", err)
	}
	return station, nil
}

func (s *stationService) requireNoActiveBookings(ctx context.Context, stationID string) error {
	active, err := s.bookings.CountActiveByStation(ctx, stationID)
	if err != nil {
		return apperrors.Internal("Failed to count active bookings", err)
	}
	if active > 0 {
		return apperrors.Conflict(fmt.Sprintf(
			"Station has %d active bookings; cancel or complete them first", active,
		))
	}
	return nil
}

func applyUpdate(station *model.Station, update *model.StationUpdate) {
	if update.Name != "" {
		station.Name = update.Name
	}
	if update.Address != "" {
		station.Address = update.Address
	}
	if update.Location != nil {
		station.Location = *update.Location
	}
	if update.OpeningTime != "" {
		station.OpeningTime = update.OpeningTime
	}
	if update.ClosingTime != "" {
		station.ClosingTime = update.ClosingTime
	}
	if update.Capacity != nil {
		station.Capacity = *update.Capacity
	}
	if update.Status != nil {
		station.Status = *update.Status
	}
}
