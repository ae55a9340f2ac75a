package service

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/munakata1001/jujutsukaisenapp/internal/db"
	"github.com/munakata1001/jujutsukaisenapp/internal/repository"
)

// mockTimeSlotStore is a test double for the time slot repository.
type mockTimeSlotStore struct {
	slots     map[string]*db.TimeSlot
	byDate    map[string][]db.TimeSlot
	monthRows []db.TimeSlot
	err       error
}

func (m *mockTimeSlotStore) GetTimeSlot(slotID string) (*db.TimeSlot, error) {
	if m.err != nil {
		return nil, m.err
	}
	slot, ok := m.slots[slotID]
	if !ok {
		return nil, repository.ErrSlotNotFound
	}
	return slot, nil
}

func (m *mockTimeSlotStore) GetTimeSlotsByDate(date time.Time) ([]db.TimeSlot, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.byDate[date.Format("2006-01-02")], nil
}

func (m *mockTimeSlotStore) GetTimeSlotsForMonth(year int, month time.Month) ([]db.TimeSlot, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.monthRows, nil
}

func (m *mockTimeSlotStore) CreateTimeSlot(ts *db.TimeSlot) error { return m.err }

func (m *mockTimeSlotStore) UpdateTimeSlot(slotID string, capacity *int, isAvailable *bool) (*db.TimeSlot, error) {
	if m.err != nil {
		return nil, m.err
	}
	slot, ok := m.slots[slotID]
	if !ok {
		return nil, repository.ErrSlotNotFound
	}
	if capacity != nil {
		slot.Capacity = *capacity
	}
	if isAvailable != nil {
		slot.IsAvailable = *isAvailable
	}
	return slot, nil
}

func (m *mockTimeSlotStore) DeleteTimeSlot(slotID string) error { return m.err }

func newTestTimeSlotService(store *mockTimeSlotStore, now time.Time) *TimeSlotService {
	svc := NewTimeSlotService(store, DefaultLimitedThreshold)
	svc.now = func() time.Time { return now }
	return svc
}

func slotOn(day, timeStr string, capacity, reserved int, available bool) db.TimeSlot {
	date, _ := time.Parse("2006-01-02", day)
	return db.TimeSlot{
		SlotID:        GenerateSlotID(date, timeStr),
		Date:          date,
		Time:          timeStr,
		Capacity:      capacity,
		ReservedCount: reserved,
		IsAvailable:   available,
	}
}

func TestGenerateSlotID(t *testing.T) {
	date, _ := time.Parse("2006-01-02", "2025-06-01")
	assert.Equal(t, "2025-06-01_1000", GenerateSlotID(date, "10:00"))
	assert.Equal(t, "2025-12-31_0930", GenerateSlotID(time.Date(2025, 12, 31, 0, 0, 0, 0, time.UTC), "09:30"))
}

func TestSlotStatus(t *testing.T) {
	svc := NewTimeSlotService(&mockTimeSlotStore{}, 0.2)

	tests := []struct {
		name        string
		capacity    int
		reserved    int
		isAvailable bool
		want        string
	}{
		{"empty slot", 10, 0, true, "available"},
		{"just above limited threshold", 10, 7, true, "available"},
		{"at limited threshold", 10, 8, true, "limited"},
		{"one seat left", 10, 9, true, "limited"},
		{"full", 10, 10, true, "full"},
		{"closed slot reads full", 10, 0, false, "full"},
		{"capacity one open", 1, 0, true, "limited"},
		{"capacity one taken", 1, 1, true, "full"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, svc.SlotStatus(tt.capacity, tt.reserved, tt.isAvailable))
		})
	}
}

func TestGetCalendar(t *testing.T) {
	now := time.Date(2025, 6, 10, 12, 0, 0, 0, time.UTC)
	store := &mockTimeSlotStore{
		monthRows: []db.TimeSlot{
			// 2025-06-05 is in the past relative to now.
			slotOn("2025-06-05", "10:00", 10, 0, true),
			// 2025-06-15 has plenty of seats.
			slotOn("2025-06-15", "10:00", 10, 2, true),
			slotOn("2025-06-15", "11:00", 10, 5, true),
			// 2025-06-16 is down to two seats.
			slotOn("2025-06-16", "10:00", 10, 9, true),
			slotOn("2025-06-16", "11:00", 10, 9, true),
			// 2025-06-17 is sold out.
			slotOn("2025-06-17", "10:00", 10, 10, true),
			// 2025-06-18 only has a closed slot.
			slotOn("2025-06-18", "10:00", 10, 0, false),
		},
	}
	svc := newTestTimeSlotService(store, now)

	calendar, err := svc.GetCalendar(2025, 6)
	require.NoError(t, err)
	assert.Equal(t, 2025, calendar.Year)
	assert.Equal(t, 6, calendar.Month)
	assert.Len(t, calendar.Data, 30)

	assert.Equal(t, "unavailable", calendar.Data[5].Status, "past day must be unavailable")
	assert.Equal(t, 0, calendar.Data[5].AvailableSlots)

	assert.Equal(t, "available", calendar.Data[15].Status)
	assert.Equal(t, 13, calendar.Data[15].AvailableSlots)

	assert.Equal(t, "limited", calendar.Data[16].Status)
	assert.Equal(t, 2, calendar.Data[16].AvailableSlots)

	assert.Equal(t, "full", calendar.Data[17].Status)

	assert.Equal(t, "full", calendar.Data[18].Status, "closed slots contribute no seats")

	assert.Equal(t, "unavailable", calendar.Data[20].Status, "day without slots is unavailable")
}

func TestGetCalendar_InvalidMonth(t *testing.T) {
	svc := newTestTimeSlotService(&mockTimeSlotStore{}, time.Now())
	_, err := svc.GetCalendar(2025, 13)
	assert.ErrorIs(t, err, ErrValidation)
}

func TestGetDayTimeSlots(t *testing.T) {
	now := time.Date(2025, 6, 10, 9, 0, 0, 0, time.UTC)
	store := &mockTimeSlotStore{
		byDate: map[string][]db.TimeSlot{
			"2025-06-15": {
				slotOn("2025-06-15", "10:00", 10, 9, true),
				slotOn("2025-06-15", "11:00", 10, 2, true),
			},
		},
	}
	svc := newTestTimeSlotService(store, now)

	slots, err := svc.GetDayTimeSlots(time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	require.Len(t, slots, 2)
	assert.Equal(t, "10:00", slots[0].Time)
	assert.Equal(t, "limited", slots[0].Status)
	assert.Equal(t, 1, slots[0].Available)
	assert.Equal(t, "available", slots[1].Status)
	assert.Equal(t, 8, slots[1].Available)
}

func TestGetDayTimeSlots_PastDateIsEmpty(t *testing.T) {
	now := time.Date(2025, 6, 10, 9, 0, 0, 0, time.UTC)
	store := &mockTimeSlotStore{
		byDate: map[string][]db.TimeSlot{
			"2025-06-01": {slotOn("2025-06-01", "10:00", 10, 0, true)},
		},
	}
	svc := newTestTimeSlotService(store, now)

	slots, err := svc.GetDayTimeSlots(time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Empty(t, slots, "past dates expose no bookable slots regardless of stored capacity")
}

func TestCheckAvailability(t *testing.T) {
	now := time.Date(2025, 6, 10, 9, 0, 0, 0, time.UTC)
	slot := slotOn("2025-06-15", "10:00", 10, 9, true)
	store := &mockTimeSlotStore{slots: map[string]*db.TimeSlot{slot.SlotID: &slot}}
	svc := newTestTimeSlotService(store, now)

	resp, err := svc.CheckAvailability(time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC), "10:00")
	require.NoError(t, err)
	assert.True(t, resp.Available)
	assert.Equal(t, 1, resp.AvailableCount)
	assert.Equal(t, 10, resp.Capacity)
	assert.Equal(t, 9, resp.ReservedCount)
}

func TestCheckAvailability_UnknownSlot(t *testing.T) {
	svc := newTestTimeSlotService(&mockTimeSlotStore{slots: map[string]*db.TimeSlot{}}, time.Now())

	resp, err := svc.CheckAvailability(time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC), "10:00")
	require.NoError(t, err)
	assert.False(t, resp.Available)
	assert.Zero(t, resp.Capacity)
	assert.Zero(t, resp.AvailableCount)
}

func TestCheckAvailability_RepoError(t *testing.T) {
	svc := newTestTimeSlotService(&mockTimeSlotStore{err: errors.New("db down")}, time.Now())
	_, err := svc.CheckAvailability(time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC), "10:00")
	assert.Error(t, err)
}

func TestCreateTimeSlot_Validation(t *testing.T) {
	svc := newTestTimeSlotService(&mockTimeSlotStore{}, time.Now())

	tests := []struct {
		name     string
		date     string
		time     string
		capacity int
	}{
		{"bad date", "06/15/2025", "10:00", 10},
		{"bad time", "2025-06-15", "10am", 10},
		{"zero capacity", "2025-06-15", "10:00", 0},
		{"negative capacity", "2025-06-15", "10:00", -3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.CreateTimeSlot(tt.date, tt.time, tt.capacity)
			assert.ErrorIs(t, err, ErrValidation)
		})
	}
}

func TestCreateTimeSlot(t *testing.T) {
	svc := newTestTimeSlotService(&mockTimeSlotStore{}, time.Now())

	slot, err := svc.CreateTimeSlot("2025-06-15", "10:00", 10)
	require.NoError(t, err)
	assert.Equal(t, "2025-06-15_1000", slot.SlotID)
	assert.Equal(t, 10, slot.Capacity)
	assert.Equal(t, 0, slot.ReservedCount)
	assert.Equal(t, "available", slot.Status)
}
