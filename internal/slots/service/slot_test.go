package service

import (
	"context"
	"errors"
	"sort"
	"testing"
	"time"

	sloterrors "voltslot/internal/slots/errors"
	stationerrors "voltslot/internal/stations/errors"
	"voltslot/pkg/config"
	"voltslot/pkg/logger"
	"voltslot/pkg/model"
)

const testStationID = "655f1f77bcf86cd799439011"

// mockTimeSlotRepository keeps slots in an in-memory store so tests can
// observe the difference between replacing upserts and insert-if-absent
// writes. Function fields override individual operations.
type mockTimeSlotRepository struct {
	store    map[string]*model.TimeSlot
	upserted []*model.TimeSlot
	inserted []*model.TimeSlot

	findByIDFunc             func(ctx context.Context, id string) (*model.TimeSlot, error)
	findByStationAndDateFunc func(ctx context.Context, stationID, date string) ([]*model.TimeSlot, error)
	upsertBatchFunc          func(ctx context.Context, slots []*model.TimeSlot) error
	insertBatchFunc          func(ctx context.Context, slots []*model.TimeSlot) error
	deleteAllExceptFunc      func(ctx context.Context, stationID string, keepIDs []string) (int64, error)
}

func (m *mockTimeSlotRepository) ensure() {
	if m.store == nil {
		m.store = make(map[string]*model.TimeSlot)
	}
}

func (m *mockTimeSlotRepository) FindByID(ctx context.Context, id string) (*model.TimeSlot, error) {
	if m.findByIDFunc != nil {
		return m.findByIDFunc(ctx, id)
	}
	m.ensure()
	if slot, ok := m.store[id]; ok {
		return slot, nil
	}
	return nil, sloterrors.ErrNotFound
}

func (m *mockTimeSlotRepository) FindByStationAndDate(ctx context.Context, stationID, date string) ([]*model.TimeSlot, error) {
	if m.findByStationAndDateFunc != nil {
		return m.findByStationAndDateFunc(ctx, stationID, date)
	}
	m.ensure()
	var slots []*model.TimeSlot
	for _, slot := range m.store {
		if slot.StationID == stationID && slot.Date == date {
			slots = append(slots, slot)
		}
	}
	sort.Slice(slots, func(i, j int) bool { return slots[i].StartTime < slots[j].StartTime })
	return slots, nil
}

func (m *mockTimeSlotRepository) UpsertBatch(ctx context.Context, slots []*model.TimeSlot) error {
	if m.upsertBatchFunc != nil {
		return m.upsertBatchFunc(ctx, slots)
	}
	m.ensure()
	for _, slot := range slots {
		m.store[slot.ID] = slot
	}
	m.upserted = append(m.upserted, slots...)
	return nil
}

func (m *mockTimeSlotRepository) InsertBatchIfAbsent(ctx context.Context, slots []*model.TimeSlot) error {
	if m.insertBatchFunc != nil {
		return m.insertBatchFunc(ctx, slots)
	}
	m.ensure()
	for _, slot := range slots {
		if _, ok := m.store[slot.ID]; ok {
			continue
		}
		m.store[slot.ID] = slot
		m.inserted = append(m.inserted, slot)
	}
	return nil
}

func (m *mockTimeSlotRepository) DeleteAllExcept(ctx context.Context, stationID string, keepIDs []string) (int64, error) {
	if m.deleteAllExceptFunc != nil {
		return m.deleteAllExceptFunc(ctx, stationID, keepIDs)
	}
	m.ensure()
	keep := make(map[string]struct{}, len(keepIDs))
	for _, id := range keepIDs {
		keep[id] = struct{}{}
	}
	var deleted int64
	for id, slot := range m.store {
		if slot.StationID != stationID {
			continue
		}
		if _, ok := keep[id]; !ok {
			delete(m.store, id)
			deleted++
		}
	}
	return deleted, nil
}

func (m *mockTimeSlotRepository) TryReserve(ctx context.Context, id string) (*model.TimeSlot, error) {
	return nil, sloterrors.ErrNoCapacity
}

func (m *mockTimeSlotRepository) TryRelease(ctx context.Context, id string) (*model.TimeSlot, error) {
	return nil, sloterrors.ErrNothingToRelease
}

type mockStationFinder struct {
	station *model.Station
	err     error
}

func (m *mockStationFinder) FindByID(ctx context.Context, id string) (*model.Station, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.station, nil
}

func testStation() *model.Station {
	return &model.Station{
		ID:          testStationID,
		Name:        "Harbor East",
		Address:     "3 Dock Rd",
		OpeningTime: "08:00",
		ClosingTime: "19:30",
		Capacity:    3,
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

func fixedNow() time.Time {
	return time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC)
}

func TestGenerateDay_DropsPartialTrailingHour(t *testing.T) {
	// 08:00-19:30 fits eleven whole hours; the 19:00-19:30 remainder is
	// never emitted.
	slots, err := GenerateDay(testStation(), "2026-09-05", fixedNow())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(slots) != 11 {
		t.Fatalf("expected 11 slots, got %d", len(slots))
	}
	first, last := slots[0], slots[len(slots)-1]
	if first.StartTime != "08:00" || first.EndTime != "09:00" {
		t.Errorf("expected first slot 08:00-09:00, got %s-%s", first.StartTime, first.EndTime)
	}
	if last.StartTime != "18:00" || last.EndTime != "19:00" {
		t.Errorf("expected last slot 18:00-19:00, got %s-%s", last.StartTime, last.EndTime)
	}
	for _, s := range slots {
		if s.TotalSpots != 3 || s.AvailableSpots != 3 {
			t.Errorf("slot %s: expected 3/3 spots, got %d/%d", s.ID, s.AvailableSpots, s.TotalSpots)
		}
		if s.Status != model.SlotAvailable {
			t.Errorf("slot %s: expected available status, got %s", s.ID, s.Status)
		}
	}
}

func TestGenerateDay_DeterministicIDs(t *testing.T) {
	a, err := GenerateDay(testStation(), "2026-09-05", fixedNow())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	b, err := GenerateDay(testStation(), "2026-09-05", fixedNow().Add(time.Hour))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for i := range a {
		if a[i].ID != b[i].ID {
			t.Errorf("regeneration changed slot id: %s vs %s", a[i].ID, b[i].ID)
		}
	}
	want := testStationID + "_2026-09-05_08:00"
	if a[0].ID != want {
		t.Errorf("expected id %s, got %s", want, a[0].ID)
	}
}

func TestGenerateDay_InvalidOperatingHours(t *testing.T) {
	tests := []struct {
		name    string
		opening string
		closing string
	}{
		{"equal", "09:00", "09:00"},
		{"inverted", "18:00", "08:00"},
		{"malformed opening", "9am", "18:00"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			st := testStation()
			st.OpeningTime = tt.opening
			st.ClosingTime = tt.closing
			_, err := GenerateDay(st, "2026-09-05", fixedNow())
			if !errors.Is(err, stationerrors.ErrInvalidOperatingHours) {
				t.Fatalf("expected ErrInvalidOperatingHours, got %v", err)
			}
		})
	}
}

func TestGenerateHorizon_CoversRollingWindow(t *testing.T) {
	slots, err := GenerateHorizon(testStation(), fixedNow(), 30)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(slots) != 30*11 {
		t.Fatalf("expected %d slots, got %d", 30*11, len(slots))
	}
	if slots[0].Date != "2026-09-01" {
		t.Errorf("expected horizon to start today, got %s", slots[0].Date)
	}
	if slots[len(slots)-1].Date != "2026-09-30" {
		t.Errorf("expected horizon to end 2026-09-30, got %s", slots[len(slots)-1].Date)
	}
}

func TestListForDate_GeneratesLazily(t *testing.T) {
	repo := &mockTimeSlotRepository{}
	svc := &slotService{
		repo:     repo,
		stations: &mockStationFinder{station: testStation()},
		cfg:      testConfig(),
		now:      fixedNow,
	}

	slots, err := svc.ListForDate(context.Background(), testStationID, "2026-09-10")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(slots) != 11 {
		t.Fatalf("expected 11 generated slots, got %d", len(slots))
	}
	if len(repo.inserted) != 11 {
		t.Errorf("expected generated slots persisted, got %d", len(repo.inserted))
	}
}

func TestListForDate_ReturnsExistingWithoutRegenerating(t *testing.T) {
	repo := &mockTimeSlotRepository{}
	repo.ensure()
	stored := &model.TimeSlot{
		ID:             model.SlotID(testStationID, "2026-09-10", "08:00"),
		StationID:      testStationID,
		Date:           "2026-09-10",
		StartTime:      "08:00",
		EndTime:        "09:00",
		TotalSpots:     3,
		AvailableSpots: 1,
		Status:         model.SlotAvailable,
	}
	repo.store[stored.ID] = stored
	svc := &slotService{
		repo:     repo,
		stations: &mockStationFinder{station: testStation()},
		cfg:      testConfig(),
		now:      fixedNow,
	}

	slots, err := svc.ListForDate(context.Background(), testStationID, "2026-09-10")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(slots) != 1 || slots[0].AvailableSpots != 1 {
		t.Fatalf("expected stored slots returned untouched, got %+v", slots)
	}
	if len(repo.inserted) != 0 {
		t.Errorf("expected no regeneration, got %d inserts", len(repo.inserted))
	}
}

func TestListForDate_ConcurrentMaterializationKeepsCounters(t *testing.T) {
	// Two first requests for the same date can race: by the time the
	// second one writes, the first may already have materialized the
	// slots and a booking may have decremented one. The late writer must
	// not reset that counter.
	repo := &mockTimeSlotRepository{}
	repo.ensure()
	booked := &model.TimeSlot{
		ID:             model.SlotID(testStationID, "2026-09-10", "08:00"),
		StationID:      testStationID,
		Date:           "2026-09-10",
		StartTime:      "08:00",
		EndTime:        "09:00",
		TotalSpots:     3,
		AvailableSpots: 2,
		Status:         model.SlotAvailable,
	}
	repo.store[booked.ID] = booked

	// The racing request saw an empty collection on its first read; the
	// re-read after writing sees the real store.
	repo.findByStationAndDateFunc = func(ctx context.Context, stationID, date string) ([]*model.TimeSlot, error) {
		repo.findByStationAndDateFunc = nil
		return nil, nil
	}

	svc := &slotService{
		repo:     repo,
		stations: &mockStationFinder{station: testStation()},
		cfg:      testConfig(),
		now:      fixedNow,
	}

	slots, err := svc.ListForDate(context.Background(), testStationID, "2026-09-10")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(slots) != 11 {
		t.Fatalf("expected 11 slots after materialization, got %d", len(slots))
	}
	if got := repo.store[booked.ID].AvailableSpots; got != 2 {
		t.Fatalf("expected decremented counter preserved, got %d", got)
	}
	if slots[0].ID != booked.ID || slots[0].AvailableSpots != 2 {
		t.Errorf("expected stored slot returned with its counter, got %+v", slots[0])
	}
}

func TestListForDate_OutsideHorizonIsEmpty(t *testing.T) {
	repo := &mockTimeSlotRepository{}
	svc := &slotService{
		repo:     repo,
		stations: &mockStationFinder{station: testStation()},
		cfg:      testConfig(),
		now:      fixedNow,
	}

	for _, date := range []string{"2026-08-31", "2026-10-15"} {
		slots, err := svc.ListForDate(context.Background(), testStationID, date)
		if err != nil {
			t.Fatalf("date %s: unexpected error: %v", date, err)
		}
		if len(slots) != 0 {
			t.Errorf("date %s: expected no slots outside horizon, got %d", date, len(slots))
		}
	}
	if len(repo.inserted) != 0 {
		t.Errorf("expected nothing persisted outside horizon, got %d", len(repo.inserted))
	}
}

func TestListForDate_HorizonFollowsLocalDay(t *testing.T) {
	// Just past midnight in a zone far ahead of UTC the calendar date has
	// already rolled over, even though the UTC day has not.
	zone := time.FixedZone("UTC+11", 11*60*60)
	repo := &mockTimeSlotRepository{}
	svc := &slotService{
		repo:     repo,
		stations: &mockStationFinder{station: testStation()},
		cfg:      testConfig(),
		now: func() time.Time {
			return time.Date(2026, 9, 1, 0, 30, 0, 0, zone)
		},
	}

	slots, err := svc.ListForDate(context.Background(), testStationID, "2026-09-01")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(slots) != 11 {
		t.Fatalf("expected today's slots generated, got %d", len(slots))
	}

	slots, err = svc.ListForDate(context.Background(), testStationID, "2026-08-31")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(slots) != 0 {
		t.Errorf("expected yesterday empty, got %d slots", len(slots))
	}
}

func TestListForDate_InvalidDate(t *testing.T) {
	svc := &slotService{
		repo:     &mockTimeSlotRepository{},
		stations: &mockStationFinder{station: testStation()},
		cfg:      testConfig(),
		now:      fixedNow,
	}

	if _, err := svc.ListForDate(context.Background(), testStationID, "10-09-2026"); err == nil {
		t.Fatal("expected error for malformed date")
	}
}

func TestRegenerateHorizon_ResetsCounters(t *testing.T) {
	repo := &mockTimeSlotRepository{}
	svc := &slotService{
		repo:     repo,
		stations: &mockStationFinder{station: testStation()},
		cfg:      testConfig(),
		now:      fixedNow,
	}

	st := testStation()
	st.Capacity = 5
	if err := svc.RegenerateHorizon(context.Background(), st); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(repo.upserted) != 30*11 {
		t.Fatalf("expected full horizon upserted, got %d", len(repo.upserted))
	}
	for _, s := range repo.upserted[:5] {
		if s.AvailableSpots != 5 || s.TotalSpots != 5 {
			t.Errorf("expected counters reset to new capacity, got %d/%d", s.AvailableSpots, s.TotalSpots)
		}
	}
}

func TestRegenerateHorizon_PrunesNarrowedWindow(t *testing.T) {
	repo := &mockTimeSlotRepository{}
	svc := &slotService{
		repo:     repo,
		stations: &mockStationFinder{station: testStation()},
		cfg:      testConfig(),
		now:      fixedNow,
	}

	wide := testStation()
	wide.OpeningTime = "08:00"
	wide.ClosingTime = "20:00"
	if err := svc.RegenerateHorizon(context.Background(), wide); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(repo.store) != 30*12 {
		t.Fatalf("expected %d slots in wide window, got %d", 30*12, len(repo.store))
	}

	narrow := testStation()
	narrow.OpeningTime = "08:00"
	narrow.ClosingTime = "12:00"
	if err := svc.RegenerateHorizon(context.Background(), narrow); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(repo.store) != 30*4 {
		t.Fatalf("expected %d slots after narrowing, got %d", 30*4, len(repo.store))
	}
	for id, slot := range repo.store {
		if slot.StartTime >= "12:00" {
			t.Errorf("slot %s outside the narrowed window is still bookable", id)
		}
	}
}
