package repository

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/munakata1001/jujutsukaisenapp/internal/db"
)

type TimeSlotRepository struct {
	DB *sql.DB
}

func NewTimeSlotRepository(database *sql.DB) *TimeSlotRepository {
	return &TimeSlotRepository{DB: database}
}

const timeSlotColumns = `slot_id, date, time, capacity, reserved_count, is_available, created_at, updated_at`

func scanTimeSlot(row interface{ Scan(dest ...any) error }) (*db.TimeSlot, error) {
	var ts db.TimeSlot
	err := row.Scan(&ts.SlotID, &ts.Date, &ts.Time, &ts.Capacity, &ts.ReservedCount, &ts.IsAvailable, &ts.CreatedAt, &ts.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &ts, nil
}

func (r *TimeSlotRepository) GetTimeSlot(slotID string) (*db.TimeSlot, error) {
	query := `SELECT ` + timeSlotColumns + ` FROM timeslots WHERE slot_id = $1`
	ts, err := scanTimeSlot(r.DB.QueryRow(query, slotID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrSlotNotFound
		}
		return nil, fmt.Errorf("error querying time slot %s: %w", slotID, err)
	}
	return ts, nil
}

func (r *TimeSlotRepository) GetTimeSlotsByDate(date time.Time) ([]db.TimeSlot, error) {
	query := `SELECT ` + timeSlotColumns + ` FROM timeslots WHERE date = $1 ORDER BY time ASC`
	rows, err := r.DB.Query(query, date.Format("2006-01-02"))
	if err != nil {
		return nil, fmt.Errorf("error querying time slots for %s: %w", date.Format("2006-01-02"), err)
	}
	defer rows.Close()

	var slots []db.TimeSlot
	for rows.Next() {
		ts, err := scanTimeSlot(rows)
		if err != nil {
			return nil, fmt.Errorf("error scanning time slot: %w", err)
		}
		slots = append(slots, *ts)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error after iterating time slot rows: %w", err)
	}
	return slots, nil
}

// GetTimeSlotsForMonth returns every slot whose date falls inside the given
// month, ordered by date and time. Used by the calendar aggregation.
func (r *TimeSlotRepository) GetTimeSlotsForMonth(year int, month time.Month) ([]db.TimeSlot, error) {
	first := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	next := first.AddDate(0, 1, 0)

	query := `SELECT ` + timeSlotColumns + ` FROM timeslots WHERE date >= $1 AND date < $2 ORDER BY date ASC, time ASC`
	rows, err := r.DB.Query(query, first.Format("2006-01-02"), next.Format("2006-01-02"))
	if err != nil {
		return nil, fmt.Errorf("error querying time slots for %d-%02d: %w", year, month, err)
	}
	defer rows.Close()

	var slots []db.TimeSlot
	for rows.Next() {
		ts, err := scanTimeSlot(rows)
		if err != nil {
			return nil, fmt.Errorf("error scanning time slot: %w", err)
		}
		slots = append(slots, *ts)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error after iterating time slot rows: %w", err)
	}
	return slots, nil
}

func (r *TimeSlotRepository) CreateTimeSlot(ts *db.TimeSlot) error {
	query := `
		INSERT INTO timeslots (slot_id, date, time, capacity, reserved_count, is_available, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, NOW(), NOW())
		RETURNING created_at, updated_at`
	err := r.DB.QueryRow(query,
		ts.SlotID,
		ts.Date.Format("2006-01-02"),
		ts.Time,
		ts.Capacity,
		ts.ReservedCount,
		ts.IsAvailable,
	).Scan(&ts.CreatedAt, &ts.UpdatedAt)
	if err != nil {
		return fmt.Errorf("error inserting time slot %s: %w", ts.SlotID, err)
	}
	return nil
}

// UpdateTimeSlot updates capacity and/or availability of a slot. Nil fields are
// left untouched.
func (r *TimeSlotRepository) UpdateTimeSlot(slotID string, capacity *int, isAvailable *bool) (*db.TimeSlot, error) {
	query := `
		UPDATE timeslots
		SET capacity = COALESCE($2, capacity),
		    is_available = COALESCE($3, is_available),
		    updated_at = NOW()
		WHERE slot_id = $1
		RETURNING ` + timeSlotColumns
	var capArg sql.NullInt64
	if capacity != nil {
		capArg = sql.NullInt64{Int64: int64(*capacity), Valid: true}
	}
	var availArg sql.NullBool
	if isAvailable != nil {
		availArg = sql.NullBool{Bool: *isAvailable, Valid: true}
	}
	ts, err := scanTimeSlot(r.DB.QueryRow(query, slotID, capArg, availArg))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrSlotNotFound
		}
		return nil, fmt.Errorf("error updating time slot %s: %w", slotID, err)
	}
	return ts, nil
}

func (r *TimeSlotRepository) DeleteTimeSlot(slotID string) error {
	result, err := r.DB.Exec(`DELETE FROM timeslots WHERE slot_id = $1`, slotID)
	if err != nil {
		return fmt.Errorf("error deleting time slot %s: %w", slotID, err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("error reading rows affected: %w", err)
	}
	if affected == 0 {
		return ErrSlotNotFound
	}
	return nil
}

// reserveSlotTx acquires a row-level lock on the slot and increments its
// reserved count iff the slot is open and has remaining capacity.
//
// SELECT ... FOR UPDATE serialises concurrent reservation attempts on the same
// slot: a second transaction blocks on the row lock until the first commits,
// so it observes the incremented counter and cannot overbook. Slots are
// independent rows, so bookings for unrelated dates do not contend.
func reserveSlotTx(tx *sql.Tx, slotID string, quantity int) error {
	var capacity, reserved int
	var isAvailable bool
	err := tx.QueryRow(
		`SELECT capacity, reserved_count, is_available FROM timeslots WHERE slot_id = $1 FOR UPDATE`,
		slotID,
	).Scan(&capacity, &reserved, &isAvailable)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrSlotNotFound
		}
		return fmt.Errorf("error locking time slot %s: %w", slotID, err)
	}

	if !isAvailable || reserved+quantity > capacity {
		return ErrSlotFull
	}

	_, err = tx.Exec(
		`UPDATE timeslots SET reserved_count = reserved_count + $2, updated_at = NOW() WHERE slot_id = $1`,
		slotID, quantity,
	)
	if err != nil {
		return fmt.Errorf("error incrementing reserved count for slot %s: %w", slotID, err)
	}
	return nil
}

// releaseSlotTx decrements the reserved count of a slot, floored at zero.
func releaseSlotTx(tx *sql.Tx, slotID string, quantity int) error {
	_, err := tx.Exec(
		`UPDATE timeslots SET reserved_count = GREATEST(reserved_count - $2, 0), updated_at = NOW() WHERE slot_id = $1`,
		slotID, quantity,
	)
	if err != nil {
		return fmt.Errorf("error decrementing reserved count for slot %s: %w", slotID, err)
	}
	return nil
}
