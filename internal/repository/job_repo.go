package repository

import (
	"database/sql"
	"fmt"
	"log"

	"github.com/lib/pq"

	"github.com/munakata1001/jujutsukaisenapp/internal/db"
)

type JobRepository struct {
	DB *sql.DB
}

func NewJobRepository(database *sql.DB) *JobRepository {
	return &JobRepository{DB: database}
}

// GetConfirmedReservationIDsPastVisitDate returns ids of confirmed
// reservations whose visit date is already behind us.
func (r *JobRepository) GetConfirmedReservationIDsPastVisitDate() ([]string, error) {
	query := `SELECT id FROM reservations WHERE status = $1 AND visit_date < CURRENT_DATE`
	rows, err := r.DB.Query(query, db.StatusConfirmed)
	if err != nil {
		return nil, fmt.Errorf("error querying confirmed reservations past visit date: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("error scanning reservation ID: %w", err)
		}
		ids = append(ids, id)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error after iterating rows: %w", err)
	}
	return ids, nil
}

// UpdateReservationStatuses moves a batch of reservations to the given status.
func (r *JobRepository) UpdateReservationStatuses(ids []string, newStatus string) error {
	if len(ids) == 0 {
		return nil
	}
	query := `UPDATE reservations SET status = $1, updated_at = NOW() WHERE id = ANY($2)`
	result, err := r.DB.Exec(query, newStatus, pq.Array(ids))
	if err != nil {
		return fmt.Errorf("error updating reservation statuses: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		log.Printf("Could not get rows affected: %v", err)
	} else {
		log.Printf("Updated status for %d reservations to '%s'", rowsAffected, newStatus)
	}
	return nil
}
