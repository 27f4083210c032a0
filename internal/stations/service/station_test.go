package service

import (
	"context"
	"testing"
	"time"

	"voltslot/internal/stations/validator"
	"voltslot/pkg/config"
	mongotx "voltslot/pkg/db/mongo"
	apperrors "voltslot/pkg/errors"
	"voltslot/pkg/logger"
	"voltslot/pkg/model"
)

const testStationID = "655f1f77bcf86cd799439011"

type mockStationRepository struct {
	createFunc   func(ctx context.Context, s *model.Station) error
	findByIDFunc func(ctx context.Context, id string) (*model.Station, error)
	findAllFunc  func(ctx context.Context, limit int, offset int64) ([]*model.Station, error)
	countFunc    func(ctx context.Context) (int64, error)
	updateFunc   func(ctx context.Context, id string, s *model.Station) error
	deleteFunc   func(ctx context.Context, id string) error
}

func (m *mockStationRepository) Create(ctx context.Context, s *model.Station) error {
	if m.createFunc != nil {
		return m.createFunc(ctx, s)
	}
	s.ID = testStationID
	return nil
}

func (m *mockStationRepository) FindByID(ctx context.Context, id string) (*model.Station, error) {
	if m.findByIDFunc != nil {
		return m.findByIDFunc(ctx, id)
	}
	return testStation(), nil
}

func (m *mockStationRepository) FindAll(ctx context.Context, limit int, offset int64) ([]*model.Station, error) {
	if m.findAllFunc != nil {
		return m.findAllFunc(ctx, limit, offset)
	}
	return []*model.Station{}, nil
}

func (m *mockStationRepository) Count(ctx context.Context) (int64, error) {
	if m.countFunc != nil {
		return m.countFunc(ctx)
	}
	return 0, nil
}

func (m *mockStationRepository) Update(ctx context.Context, id string, s *model.Station) error {
	if m.updateFunc != nil {
		return m.updateFunc(ctx, id, s)
	}
	return nil
}

func (m *mockStationRepository) Delete(ctx context.Context, id string) error {
	if m.deleteFunc != nil {
		return m.deleteFunc(ctx, id)
	}
	return nil
}

func (m *mockStationRepository) ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error {
	return fn(nil)
}

type mockSlotRegenerator struct {
	calls    int
	regenErr error
}

func (m *mockSlotRegenerator) RegenerateHorizon(ctx context.Context, station *model.Station) error {
	m.calls++
	return m.regenErr
}

type mockBookingCounter struct {
	active int64
}

func (m *mockBookingCounter) CountActiveByStation(ctx context.Context, stationID string) (int64, error) {
	return m.active, nil
}

func testStation() *model.Station {
	return &model.Station{
		ID:          testStationID,
		Name:        "Harbor East",
		Address:     "3 Dock Rd",
		OpeningTime: "08:00",
		ClosingTime: "20:00",
		Capacity:    4,
		Status:      model.StationActive,
	}
}

func testConfig() *config.Config {
	return &config.Config{
		Log: logger.New(logger.Config{
			Level:   "error",
			Format:  logger.JSON,
			Service: "test",
		}),
		SlotHorizonDays: 30,
		ReadTimeout:     5 * time.Second,
		WriteTimeout:    5 * time.Second,
	}
}

func newTestService(repo *mockStationRepository, slots *mockSlotRegenerator, bookings *mockBookingCounter) StationService {
	cfg := testConfig()
	return NewStationService(repo, validator.NewStationValidator(cfg.Log), slots, bookings, cfg)
}

func expectCode(t *testing.T, err error, code string) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected error with code %s, got nil", code)
	}
	appErr := apperrors.AsAppError(err)
	if appErr.Code != code {
		t.Fatalf("expected code %s, got %s (%s)", code, appErr.Code, appErr.Message)
	}
}

func TestCreate_GeneratesInitialHorizon(t *testing.T) {
	slots := &mockSlotRegenerator{}
	svc := newTestService(&mockStationRepository{}, slots, &mockBookingCounter{})

	station := testStation()
	station.ID = ""
	if err := svc.Create(context.Background(), station); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if slots.calls != 1 {
		t.Errorf("expected one horizon generation, got %d", slots.calls)
	}
}

func TestCreate_RejectsInvalidHours(t *testing.T) {
	svc := newTestService(&mockStationRepository{}, &mockSlotRegenerator{}, &mockBookingCounter{})

	station := testStation()
	station.ID = ""
	station.OpeningTime = "20:00"
	station.ClosingTime = "08:00"
	err := svc.Create(context.Background(), station)
	expectCode(t, err, apperrors.CodeValidation)
}

func TestUpdate_HoursChangeRegeneratesHorizon(t *testing.T) {
	var persisted *model.Station
	repo := &mockStationRepository{
		updateFunc: func(ctx context.Context, id string, s *model.Station) error {
			persisted = s
			return nil
		},
	}
	slots := &mockSlotRegenerator{}
	svc := newTestService(repo, slots, &mockBookingCounter{active: 0})

	updated, err := svc.Update(context.Background(), testStationID, &model.StationUpdate{
		OpeningTime: "09:00",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if updated.OpeningTime != "09:00" || updated.ClosingTime != "20:00" {
		t.Errorf("expected merged hours 09:00-20:00, got %s-%s", updated.OpeningTime, updated.ClosingTime)
	}
	if persisted == nil {
		t.Fatal("expected repository update")
	}
	if slots.calls != 1 {
		t.Errorf("expected horizon regeneration, got %d calls", slots.calls)
	}
}

func TestUpdate_HoursChangeBlockedByActiveBookings(t *testing.T) {
	slots := &mockSlotRegenerator{}
	svc := newTestService(&mockStationRepository{}, slots, &mockBookingCounter{active: 2})

	_, err := svc.Update(context.Background(), testStationID, &model.StationUpdate{
		OpeningTime: "09:00",
	})
	expectCode(t, err, apperrors.CodeConflict)
	if slots.calls != 0 {
		t.Errorf("expected no regeneration when blocked, got %d calls", slots.calls)
	}
}

func TestUpdate_NameChangeSkipsRegeneration(t *testing.T) {
	slots := &mockSlotRegenerator{}
	// Active bookings do not block cosmetic updates.
	svc := newTestService(&mockStationRepository{}, slots, &mockBookingCounter{active: 5})

	updated, err := svc.Update(context.Background(), testStationID, &model.StationUpdate{
		Name: "Harbor West",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if updated.Name != "Harbor West" {
		t.Errorf("expected renamed station, got %q", updated.Name)
	}
	if slots.calls != 0 {
		t.Errorf("expected no regeneration for a rename, got %d calls", slots.calls)
	}
}

func TestUpdate_DeactivationBlockedByActiveBookings(t *testing.T) {
	svc := newTestService(&mockStationRepository{}, &mockSlotRegenerator{}, &mockBookingCounter{active: 1})

	inactive := model.StationInactive
	_, err := svc.Update(context.Background(), testStationID, &model.StationUpdate{
		Status: &inactive,
	})
	expectCode(t, err, apperrors.CodeConflict)
}

func TestUpdate_MergedHoursMustStayOrdered(t *testing.T) {
	svc := newTestService(&mockStationRepository{}, &mockSlotRegenerator{}, &mockBookingCounter{})

	// Each side is individually valid but the merged window inverts.
	_, err := svc.Update(context.Background(), testStationID, &model.StationUpdate{
		ClosingTime: "07:00",
	})
	expectCode(t, err, apperrors.CodeValidation)
}

func TestDelete_BlockedByActiveBookings(t *testing.T) {
	deleted := false
	repo := &mockStationRepository{
		deleteFunc: func(ctx context.Context, id string) error {
			deleted = true
			return nil
		},
	}
	svc := newTestService(repo, &mockSlotRegenerator{}, &mockBookingCounter{active: 1})

	err := svc.Delete(context.Background(), testStationID)
	expectCode(t, err, apperrors.CodeConflict)
	if deleted {
		t.Error("station must not be deleted while bookings are active")
	}
}

func TestDelete_Succeeds(t *testing.T) {
	deleted := false
	repo := &mockStationRepository{
		deleteFunc: func(ctx context.Context, id string) error {
			deleted = true
			return nil
		},
	}
	svc := newTestService(repo, &mockSlotRegenerator{}, &mockBookingCounter{active: 0})

	if err := svc.Delete(context.Background(), testStationID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !deleted {
		t.Error("expected repository delete")
	}
}
