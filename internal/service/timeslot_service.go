package service

import (
	"fmt"
	"math"
	"regexp"
	"strings"
	"time"

	"github.com/munakata1001/jujutsukaisenapp/internal/db"
	"github.com/munakata1001/jujutsukaisenapp/internal/entities"
)

// DefaultLimitedThreshold is the remaining-capacity share at or below which a
// slot is reported as "limited". Tunable per deployment, not a business
// invariant.
const DefaultLimitedThreshold = 0.2

// Day-level calendar statuses keep the storefront's original absolute rule:
// a day is "limited" once two or fewer seats remain across all its slots.
const limitedSlotsPerDay = 2

var timePattern = regexp.MustCompile(`^\d{2}:\d{2}$`)

type TimeSlotStore interface {
	GetTimeSlot(slotID string) (*db.TimeSlot, error)
	GetTimeSlotsByDate(date time.Time) ([]db.TimeSlot, error)
	GetTimeSlotsForMonth(year int, month time.Month) ([]db.TimeSlot, error)
	CreateTimeSlot(ts *db.TimeSlot) error
	UpdateTimeSlot(slotID string, capacity *int, isAvailable *bool) (*db.TimeSlot, error)
	DeleteTimeSlot(slotID string) error
}

type TimeSlotService struct {
	Repo             TimeSlotStore
	LimitedThreshold float64
	now              func() time.Time
}

func NewTimeSlotService(repo TimeSlotStore, limitedThreshold float64) *TimeSlotService {
	if limitedThreshold <= 0 || limitedThreshold >= 1 {
		limitedThreshold = DefaultLimitedThreshold
	}
	return &TimeSlotService{
		Repo:             repo,
		LimitedThreshold: limitedThreshold,
		now:              time.Now,
	}
}

// GenerateSlotID builds the canonical slot key for a (date, time) pair,
// e.g. "2025-06-01_1000".
func GenerateSlotID(date time.Time, timeStr string) string {
	return date.Format("2006-01-02") + "_" + strings.ReplaceAll(timeStr, ":", "")
}

// SlotStatus derives the display status of a single slot.
func (s *TimeSlotService) SlotStatus(capacity, reserved int, isAvailable bool) string {
	available := capacity - reserved
	if !isAvailable || available <= 0 {
		return "full"
	}
	limit := int(math.Ceil(s.LimitedThreshold * float64(capacity)))
	if available <= limit {
		return "limited"
	}
	return "available"
}

// GetCalendar aggregates slot availability per day of the month. Days without
// slots, and days already in the past, are reported as unavailable.
func (s *TimeSlotService) GetCalendar(year, month int) (*entities.CalendarResponse, error) {
	if month < 1 || month > 12 {
		return nil, fmt.Errorf("%w: month must be between 1 and 12", ErrValidation)
	}

	slots, err := s.Repo.GetTimeSlotsForMonth(year, time.Month(month))
	if err != nil {
		return nil, fmt.Errorf("error loading calendar slots: %w", err)
	}

	availableByDay := map[int]int{}
	hasSlots := map[int]bool{}
	for _, slot := range slots {
		day := slot.Date.Day()
		hasSlots[day] = true
		if slot.IsAvailable {
			if remaining := slot.Capacity - slot.ReservedCount; remaining > 0 {
				availableByDay[day] += remaining
			}
		}
	}

	today := truncateToDay(s.now())
	first := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
	daysInMonth := first.AddDate(0, 1, -1).Day()

	data := make(map[int]entities.CalendarDay, daysInMonth)
	for day := 1; day <= daysInMonth; day++ {
		date := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
		if date.Before(today) || !hasSlots[day] {
			data[day] = entities.CalendarDay{Status: "unavailable", AvailableSlots: 0}
			continue
		}
		available := availableByDay[day]
		var status string
		switch {
		case available == 0:
			status = "full"
		case available <= limitedSlotsPerDay:
			status = "limited"
		default:
			status = "available"
		}
		data[day] = entities.CalendarDay{Status: status, AvailableSlots: available}
	}

	return &entities.CalendarResponse{Year: year, Month: month, Data: data}, nil
}

// GetDayTimeSlots lists a day's slots ordered by time. Past dates return an
// empty list regardless of stored capacity: nothing in the past is bookable.
func (s *TimeSlotService) GetDayTimeSlots(date time.Time) ([]entities.TimeSlotResponse, error) {
	if truncateToDay(date).Before(truncateToDay(s.now())) {
		return []entities.TimeSlotResponse{}, nil
	}

	slots, err := s.Repo.GetTimeSlotsByDate(date)
	if err != nil {
		return nil, fmt.Errorf("error loading time slots: %w", err)
	}

	responses := make([]entities.TimeSlotResponse, 0, len(slots))
	for _, slot := range slots {
		responses = append(responses, s.toTimeSlotResponse(slot))
	}
	return responses, nil
}

// CheckAvailability reports the booking headroom of one slot. An unknown slot
// is reported as unavailable rather than an error so the storefront can render
// the answer directly.
func (s *TimeSlotService) CheckAvailability(date time.Time, timeStr string) (*entities.AvailabilityResponse, error) {
	slot, err := s.Repo.GetTimeSlot(GenerateSlotID(date, timeStr))
	if err != nil {
		if isSlotNotFound(err) {
			return &entities.AvailabilityResponse{}, nil
		}
		return nil, fmt.Errorf("error checking availability: %w", err)
	}

	available := slot.Capacity - slot.ReservedCount
	if available < 0 {
		available = 0
	}
	bookable := slot.IsAvailable && available > 0 && !truncateToDay(slot.Date).Before(truncateToDay(s.now()))
	return &entities.AvailabilityResponse{
		Available:      bookable,
		AvailableCount: available,
		Capacity:       slot.Capacity,
		ReservedCount:  slot.ReservedCount,
	}, nil
}

// CreateTimeSlot registers a new bookable slot (staff operation).
func (s *TimeSlotService) CreateTimeSlot(dateStr, timeStr string, capacity int) (*entities.TimeSlotResponse, error) {
	date, err := time.Parse("2006-01-02", dateStr)
	if err != nil {
		return nil, fmt.Errorf("%w: date must be YYYY-MM-DD", ErrValidation)
	}
	if !timePattern.MatchString(timeStr) {
		return nil, fmt.Errorf("%w: time must be HH:MM", ErrValidation)
	}
	if capacity <= 0 {
		return nil, fmt.Errorf("%w: capacity must be positive", ErrValidation)
	}

	ts := &db.TimeSlot{
		SlotID:      GenerateSlotID(date, timeStr),
		Date:        date,
		Time:        timeStr,
		Capacity:    capacity,
		IsAvailable: true,
	}
	if err := s.Repo.CreateTimeSlot(ts); err != nil {
		return nil, err
	}
	resp := s.toTimeSlotResponse(*ts)
	return &resp, nil
}

// UpdateTimeSlot changes capacity and/or availability (staff operation).
func (s *TimeSlotService) UpdateTimeSlot(slotID string, capacity *int, isAvailable *bool) (*entities.TimeSlotResponse, error) {
	if capacity != nil && *capacity <= 0 {
		return nil, fmt.Errorf("%w: capacity must be positive", ErrValidation)
	}
	ts, err := s.Repo.UpdateTimeSlot(slotID, capacity, isAvailable)
	if err != nil {
		return nil, err
	}
	resp := s.toTimeSlotResponse(*ts)
	return &resp, nil
}

func (s *TimeSlotService) DeleteTimeSlot(slotID string) error {
	return s.Repo.DeleteTimeSlot(slotID)
}

func (s *TimeSlotService) toTimeSlotResponse(slot db.TimeSlot) entities.TimeSlotResponse {
	available := slot.Capacity - slot.ReservedCount
	if available < 0 {
		available = 0
	}
	return entities.TimeSlotResponse{
		SlotID:        slot.SlotID,
		Date:          slot.Date.Format("2006-01-02"),
		Time:          slot.Time,
		Capacity:      slot.Capacity,
		ReservedCount: slot.ReservedCount,
		Available:     available,
		Status:        s.SlotStatus(slot.Capacity, slot.ReservedCount, slot.IsAvailable),
	}
}

func truncateToDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
