package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/mongo"

	bookingerrors "voltslot/internal/bookings/errors"
	"voltslot/internal/bookings/repository"
	sloterrors "voltslot/internal/slots/errors"
	stationerrors "voltslot/internal/stations/errors"
	"voltslot/pkg/config"
	apperrors "voltslot/pkg/errors"
	"voltslot/pkg/model"
)

// SlotStore is the slice of the time-slot repository the coordinator needs.
// TryReserve and TryRelease are the only operations anywhere that mutate a
// slot's capacity counter.
type SlotStore interface {
	FindByID(ctx context.Context, id string) (*model.TimeSlot, error)
	TryReserve(ctx context.Context, id string) (*model.TimeSlot, error)
	TryRelease(ctx context.Context, id string) (*model.TimeSlot, error)
}

type StationFinder interface {
	FindByID(ctx context.Context, id string) (*model.Station, error)
}

type BookingService interface {
	Create(ctx context.Context, ident model.Identity, stationID, timeSlotID string) (*model.BookingDetails, error)
	Cancel(ctx context.Context, ident model.Identity, bookingID string) (*model.Booking, error)
	CheckIn(ctx context.Context, ident model.Identity, bookingID string) (*model.Booking, error)
	Complete(ctx context.Context, ident model.Identity, bookingID string) (*model.Booking, error)
	ListByUser(ctx context.Context, userID string, limit int, offset int64) ([]*model.BookingDetails, int64, error)
	SweepNoShows(ctx context.Context) (int64, error)
}

type bookingService struct {
	repo      repository.BookingRepository
	lockRepo  repository.BookingLockRepository
	slots     SlotStore
	stations  StationFinder
	publisher EventPublisher
	cfg       *config.Config
	now       func() time.Time
}

func NewBookingService(
	repo repository.BookingRepository,
	lockRepo repository.BookingLockRepository,
	slots SlotStore,
	stations StationFinder,
	publisher EventPublisher,
	cfg *config.Config,
) BookingService {
	return &bookingService{
		repo:      repo,
		lockRepo:  lockRepo,
		slots:     slots,
		stations:  stations,
		publisher: publisher,
		cfg:       cfg,
		now:       time.Now,
	}
}

func (s *bookingService) Create(ctx context.Context, ident model.Identity, stationID, timeSlotID string) (*model.BookingDetails, error) {
	if stationID == "" || timeSlotID == "" {
		return nil, apperrors.InvalidInput("station_id and time_slot_id are required")
	}

	station, err := s.findStation(ctx, stationID)
	if err != nil {
		return nil, err
	}
	if station.Status != model.StationActive {
		return nil, apperrors.Conflict("Station is not available for booking")
	}

	slot, err := s.findSlot(ctx, timeSlotID)
	if err != nil {
		return nil, err
	}
	if slot.StationID != station.ID {
		return nil, apperrors.InvalidInput("Time slot does not belong to the requested station")
	}
	if slot.StartsBefore(s.now()) {
		return nil, apperrors.Conflict("Time slot has already started")
	}
	if slot.AvailableSpots <= 0 {
		return nil, apperrors.Conflict("Time slot has no available spots")
	}

	// Advisory lock per (user, date): closes the gap between the overlap
	// check and the insert for two concurrent requests by the same user.
	// Slot capacity needs no lock, TryReserve is conditional on its own.
	lockID, err := s.acquireUserDateLock(ctx, ident.UserID, slot.Date)
	if err != nil {
		return nil, err
	}
	defer func() {
		if releaseErr := s.lockRepo.Release(ctx, lockID); releaseErr != nil {
			s.cfg.Log.Warn("Failed to release booking lock", "lock_id", lockID, "error", releaseErr)
		}
	}()

	booking := &model.Booking{
		UserID:     ident.UserID,
		StationID:  station.ID,
		TimeSlotID: slot.ID,
		Date:       slot.Date,
		StartTime:  slot.StartTime,
		EndTime:    slot.EndTime,
		Status:     model.BookingConfirmed,
	}

	err = s.repo.ExecuteTransaction(ctx, func(sessCtx mongo.SessionContext) error {
		overlapping, err := s.repo.FindOverlapping(sessCtx, ident.UserID, slot.Date, slot.StartTime, slot.EndTime)
		if err != nil {
			return apperrors.Internal("Failed to check existing bookings", err)
		}
		if len(overlapping) > 0 {
			existing := overlapping[0]
			return apperrors.Conflict(fmt.Sprintf(
				"Booking overlaps with an existing booking (%s %s - %s)",
				existing.Date, existing.StartTime, existing.EndTime,
			))
		}

		if _, err := s.slots.TryReserve(sessCtx, slot.ID); err != nil {
			if errors.Is(err, sloterrors.ErrNoCapacity) {
				return apperrors.Conflict("Time slot has no available spots")
			}
			return apperrors.Internal("Failed to reserve time slot", err)
		}

		if err := s.repo.Create(sessCtx, booking); err != nil {
			return apperrors.Internal("Failed to create booking", err)
		}
		return nil
	})
	if err != nil {
		s.cfg.Log.Error("Failed to create booking",
			"user_id", ident.UserID,
			"station_id", stationID,
			"time_slot_id", timeSlotID,
			"error", err,
		)
		return nil, err
	}

	s.cfg.Log.Info("Booking created",
		"id", booking.ID,
		"user_id", booking.UserID,
		"station_id", booking.StationID,
		"time_slot_id", booking.TimeSlotID,
	)

	details := &model.BookingDetails{
		Booking:     *booking,
		StationName: station.Name,
		Address:     station.Address,
		Location:    station.Location,
	}
	s.publishEvent(ctx, EventBookingCreated, details)
	return details, nil
}

func (s *bookingService) Cancel(ctx context.Context, ident model.Identity, bookingID string) (*model.Booking, error) {
	booking, err := s.findBooking(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if booking.UserID != ident.UserID && !ident.IsAdmin() {
		return nil, apperrors.Forbidden("Bookings can only be cancelled by their owner")
	}
	if !model.CanTransition(booking.Status, model.BookingCancelled) {
		return nil, apperrors.Conflict(fmt.Sprintf("Booking in status %q cannot be cancelled", booking.Status))
	}

	err = s.repo.ExecuteTransaction(ctx, func(sessCtx mongo.SessionContext) error {
		if err := s.repo.UpdateStatus(sessCtx, booking.ID, booking.Status, model.BookingCancelled); err != nil {
			if errors.Is(err, bookingerrors.ErrStatusConflict) {
				return apperrors.Conflict("Booking status changed concurrently, please retry")
			}
			return apperrors.Internal("Failed to cancel booking", err)
		}

		// Inverse of the reservation decrement; guarded against exceeding
		// total_spots. A failure here aborts the cancellation so a unit of
		// capacity is never double-released.
		if _, err := s.slots.TryRelease(sessCtx, booking.TimeSlotID); err != nil {
			if errors.Is(err, sloterrors.ErrNothingToRelease) {
				return apperrors.Internal("Slot capacity inconsistent on release", err)
			}
			return apperrors.Internal("Failed to release time slot", err)
		}
		return nil
	})
	if err != nil {
		s.cfg.Log.Error("Failed to cancel booking", "id", bookingID, "error", err)
		return nil, err
	}

	booking.Status = model.BookingCancelled
	s.cfg.Log.Info("Booking cancelled", "id", booking.ID, "user_id", booking.UserID)
	s.publishEvent(ctx, EventBookingCancelled, &model.BookingDetails{Booking: *booking})
	return booking, nil
}

func (s *bookingService) CheckIn(ctx context.Context, ident model.Identity, bookingID string) (*model.Booking, error) {
	return s.transition(ctx, ident, bookingID, model.BookingCheckedIn, EventBookingCheckedIn)
}

func (s *bookingService) Complete(ctx context.Context, ident model.Identity, bookingID string) (*model.Booking, error) {
	return s.transition(ctx, ident, bookingID, model.BookingCompleted, EventBookingCompleted)
}

// transition drives operator-side lifecycle steps. Check-in and completion
// do not touch capacity: the consumed unit stays consumed until the slot's
// date has passed.
func (s *bookingService) transition(ctx context.Context, ident model.Identity, bookingID string, to model.BookingStatus, eventType string) (*model.Booking, error) {
	if !ident.IsAdmin() {
		return nil, apperrors.Forbidden("Only operators may perform this transition")
	}

	booking, err := s.findBooking(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	from := booking.Status
	if err := booking.Transition(to); err != nil {
		var invalid *model.InvalidTransitionError
		if errors.As(err, &invalid) {
			return nil, apperrors.Conflict(invalid.Error())
		}
		return nil, apperrors.Internal("Failed to transition booking", err)
	}

	// Conditional on the status we read; a concurrent change surfaces as a
	// conflict instead of silently clobbering it.
	if err := s.repo.UpdateStatus(ctx, booking.ID, from, to); err != nil {
		if errors.Is(err, bookingerrors.ErrStatusConflict) {
			return nil, apperrors.Conflict("Booking status changed concurrently, please retry")
		}
		return nil, apperrors.Internal("Failed to update booking status", err)
	}

	s.cfg.Log.Info("Booking transitioned", "id", booking.ID, "status", to)
	s.publishEvent(ctx, eventType, &model.BookingDetails{Booking: *booking})
	return booking, nil
}

func (s *bookingService) ListByUser(ctx context.Context, userID string, limit int, offset int64) ([]*model.BookingDetails, int64, error) {
	if userID == "" {
		return nil, 0, apperrors.InvalidInput("User ID cannot be empty")
	}

	var count int64
	var bookings []*model.Booking
	var errCount, errFind error
	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		var err error
		count, err = s.repo.CountByUser(ctx, userID)
		if err != nil {
			s.cfg.Log.Error("Failed to count bookings", "user_id", userID, "error", err)
			errCount = apperrors.Internal("Failed to count bookings", err)
		}
	}()

	go func() {
		defer wg.Done()
		var err error
		bookings, err = s.repo.FindByUser(ctx, userID, limit, offset)
		if err != nil {
			s.cfg.Log.Error("Failed to list bookings", "user_id", userID, "error", err)
			errFind = apperrors.Internal("Failed to retrieve bookings", err)
		}
	}()

	wg.Wait()
	if errCount != nil {
		return nil, 0, errCount
	}
	if errFind != nil {
		return nil, 0, errFind
	}

	details := make([]*model.BookingDetails, 0, len(bookings))
	stationCache := make(map[string]*model.Station)
	for _, b := range bookings {
		d := &model.BookingDetails{Booking: *b}
		station, ok := stationCache[b.StationID]
		if !ok {
			station, _ = s.stations.FindByID(ctx, b.StationID)
			stationCache[b.StationID] = station
		}
		if station != nil {
			d.StationName = station.Name
			d.Address = station.Address
			d.Location = station.Location
		}
		details = append(details, d)
	}
	return details, count, nil
}

func (s *bookingService) SweepNoShows(ctx context.Context) (int64, error) {
	now := s.now()
	marked, err := s.repo.MarkNoShows(ctx, now.Format(model.DateLayout), now.Format(model.ClockLayout))
	if err != nil {
		return 0, apperrors.Internal("Failed to sweep no-show bookings", err)
	}
	if marked > 0 {
		s.cfg.Log.Info("No-show bookings marked", "count", marked)
	}
	return marked, nil
}

// --- Helpers ---

func (s *bookingService) findStation(ctx context.Context, stationID string) (*model.Station, error) {
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
	return station, nil
}

func (s *bookingService) findSlot(ctx context.Context, timeSlotID string) (*model.TimeSlot, error) {
	slot, err := s.slots.FindByID(ctx, timeSlotID)
	if err != nil {
		if errors.Is(err, sloterrors.ErrNotFound) {
			return nil, apperrors.NotFoundWithID("Time slot", timeSlotID)
		}
		return nil, apperrors.Internal("Failed to retrieve time slot", err)
	}
	return slot, nil
}

func (s *bookingService) findBooking(ctx context.Context, bookingID string) (*model.Booking, error) {
	if bookingID == "" {
		return nil, apperrors.InvalidInput("Booking ID cannot be empty")
	}
	booking, err := s.repo.FindByID(ctx, bookingID)
	if err != nil {
		if errors.Is(err, bookingerrors.ErrNotFound) {
			return nil, apperrors.NotFoundWithID("Booking", bookingID)
		}
		if errors.Is(err, bookingerrors.ErrInvalidID) {
			return nil, apperrors.InvalidInput("Invalid booking ID format")
		}
		return nil, apperrors.Internal("Failed to retrieve booking", err)
	}
	return booking, nil
}

func (s *bookingService) acquireUserDateLock(ctx context.Context, userID, date string) (string, error) {
	lock := &model.BookingLock{
		ID:        fmt.Sprintf("booking_lock_%s_%s", userID, date),
		ExpiresAt: s.now().Add(s.cfg.BookingLockTTL),
	}

	if err := s.lockRepo.Acquire(ctx, lock); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return "", apperrors.Conflict("Another booking for this user is in progress. Please try again.")
		}
		return "", apperrors.Internal("Failed to acquire booking lock", err)
	}
	return lock.ID, nil
}
