package repository

import (
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/munakata1001/jujutsukaisenapp/internal/db"
)

type ReservationRepository struct {
	DB *sql.DB
}

func NewReservationRepository(database *sql.DB) *ReservationRepository {
	return &ReservationRepository{DB: database}
}

const reservationColumns = `id, reservation_number, user_email, user_name, user_phone, visit_date, visit_time, status, created_at, updated_at`

func scanReservation(row interface{ Scan(dest ...any) error }) (*db.Reservation, error) {
	var res db.Reservation
	err := row.Scan(
		&res.ID, &res.ReservationNumber, &res.UserEmail, &res.UserName, &res.UserPhone,
		&res.VisitDate, &res.VisitTime, &res.Status, &res.CreatedAt, &res.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &res, nil
}

// CreateReservation inserts a reservation and consumes one unit of slot
// capacity in a single transaction. Either both writes land or neither does:
// a reader can never observe a reservation whose seat was not taken, nor a
// taken seat with no reservation record.
//
// A reservation occupies exactly one slot unit regardless of how many product
// add-ons it carries; product quantities only move the per-product order
// counters.
func (r *ReservationRepository) CreateReservation(res *db.Reservation, slotID string) error {
	tx, err := r.DB.Begin()
	if err != nil {
		return fmt.Errorf("error beginning create reservation transaction: %w", err)
	}
	defer tx.Rollback()

	if err := reserveSlotTx(tx, slotID, 1); err != nil {
		return err
	}

	for _, p := range res.Products {
		if err := consumeProductTx(tx, p.ProductID, p.Quantity); err != nil {
			return err
		}
	}

	query := `
		INSERT INTO reservations (id, reservation_number, user_email, user_name, user_phone, visit_date, visit_time, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NOW(), NOW())
		RETURNING created_at, updated_at`
	err = tx.QueryRow(query,
		res.ID,
		res.ReservationNumber,
		res.UserEmail,
		res.UserName,
		res.UserPhone,
		res.VisitDate.Format("2006-01-02"),
		res.VisitTime,
		res.Status,
	).Scan(&res.CreatedAt, &res.UpdatedAt)
	if err != nil {
		return fmt.Errorf("error inserting reservation %s: %w", res.ID, err)
	}

	for _, p := range res.Products {
		_, err = tx.Exec(
			`INSERT INTO reservation_products (reservation_id, product_id, quantity) VALUES ($1, $2, $3)`,
			res.ID, p.ProductID, p.Quantity,
		)
		if err != nil {
			return fmt.Errorf("error inserting reservation product line: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("error committing create reservation transaction: %w", err)
	}
	return nil
}

// consumeProductTx locks the product row, enforces its purchase limits and
// bumps its running order count.
func consumeProductTx(tx *sql.Tx, productID string, quantity int) error {
	var name string
	var maxPerReservation, totalLimit, currentCount int
	var orderStart, orderEnd sql.NullTime
	err := tx.QueryRow(
		`SELECT name, max_per_reservation, total_order_limit, current_order_count, order_start_date, order_end_date
		 FROM products WHERE id = $1 FOR UPDATE`,
		productID,
	).Scan(&name, &maxPerReservation, &totalLimit, &currentCount, &orderStart, &orderEnd)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("%w: %s", ErrProductNotFound, productID)
		}
		return fmt.Errorf("error locking product %s: %w", productID, err)
	}

	if quantity <= 0 {
		return fmt.Errorf("%w: quantity for %s must be positive", ErrProductLimit, name)
	}
	if maxPerReservation > 0 && quantity > maxPerReservation {
		return fmt.Errorf("%w: %s allows at most %d per reservation", ErrProductLimit, name, maxPerReservation)
	}
	today := time.Now().UTC().Truncate(24 * time.Hour)
	if orderStart.Valid && today.Before(orderStart.Time) {
		return fmt.Errorf("%w: ordering for %s has not started", ErrProductLimit, name)
	}
	if orderEnd.Valid && today.After(orderEnd.Time) {
		return fmt.Errorf("%w: ordering for %s has ended", ErrProductLimit, name)
	}
	if totalLimit > 0 && currentCount+quantity > totalLimit {
		return fmt.Errorf("%w: %s has %d left", ErrProductLimit, name, totalLimit-currentCount)
	}

	_, err = tx.Exec(
		`UPDATE products SET current_order_count = current_order_count + $2, updated_at = NOW() WHERE id = $1`,
		productID, quantity,
	)
	if err != nil {
		return fmt.Errorf("error incrementing order count for product %s: %w", productID, err)
	}
	return nil
}

// CancelReservation flips the reservation to cancelled and releases its slot
// unit and product order counts in one transaction. The status is re-checked
// under the row lock so a concurrent cancel cannot release capacity twice.
func (r *ReservationRepository) CancelReservation(id, slotID string) (*db.Reservation, error) {
	tx, err := r.DB.Begin()
	if err != nil {
		return nil, fmt.Errorf("error beginning cancel transaction: %w", err)
	}
	defer tx.Rollback()

	res, err := scanReservation(tx.QueryRow(
		`SELECT `+reservationColumns+` FROM reservations WHERE id = $1 FOR UPDATE`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("error locking reservation %s: %w", id, err)
	}
	if res.Status == db.StatusCancelled || res.Status == db.StatusCompleted {
		return nil, ErrAlreadyTerminal
	}

	if err := releaseSlotTx(tx, slotID, 1); err != nil {
		return nil, err
	}

	products, err := listReservationProductsTx(tx, id)
	if err != nil {
		return nil, err
	}
	for _, p := range products {
		_, err = tx.Exec(
			`UPDATE products SET current_order_count = GREATEST(current_order_count - $2, 0), updated_at = NOW() WHERE id = $1`,
			p.ProductID, p.Quantity,
		)
		if err != nil {
			return nil, fmt.Errorf("error releasing order count for product %s: %w", p.ProductID, err)
		}
	}

	err = tx.QueryRow(
		`UPDATE reservations SET status = $2, updated_at = NOW() WHERE id = $1 RETURNING updated_at`,
		id, db.StatusCancelled,
	).Scan(&res.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("error updating reservation %s status: %w", id, err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("error committing cancel transaction: %w", err)
	}

	res.Status = db.StatusCancelled
	res.Products = products
	return res, nil
}

// MoveReservation changes the visit date/time of a reservation, releasing the
// seat in the old slot and taking one in the new slot atomically.
func (r *ReservationRepository) MoveReservation(id, oldSlotID, newSlotID string, visitDate time.Time, visitTime string) (*db.Reservation, error) {
	tx, err := r.DB.Begin()
	if err != nil {
		return nil, fmt.Errorf("error beginning move transaction: %w", err)
	}
	defer tx.Rollback()

	res, err := scanReservation(tx.QueryRow(
		`SELECT `+reservationColumns+` FROM reservations WHERE id = $1 FOR UPDATE`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("error locking reservation %s: %w", id, err)
	}
	if res.Status == db.StatusCancelled || res.Status == db.StatusCompleted {
		return nil, ErrAlreadyTerminal
	}

	if err := reserveSlotTx(tx, newSlotID, 1); err != nil {
		return nil, err
	}
	if err := releaseSlotTx(tx, oldSlotID, 1); err != nil {
		return nil, err
	}

	err = tx.QueryRow(
		`UPDATE reservations SET visit_date = $2, visit_time = $3, updated_at = NOW() WHERE id = $1 RETURNING updated_at`,
		id, visitDate.Format("2006-01-02"), visitTime,
	).Scan(&res.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("error updating reservation %s visit: %w", id, err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("error committing move transaction: %w", err)
	}

	res.VisitDate = visitDate
	res.VisitTime = visitTime
	res.Products, err = r.listReservationProducts(id)
	if err != nil {
		return nil, err
	}
	return res, nil
}

// CompleteReservation marks a confirmed reservation as completed. Capacity is
// untouched: the visit happened, the seat was used.
func (r *ReservationRepository) CompleteReservation(id string) (*db.Reservation, error) {
	tx, err := r.DB.Begin()
	if err != nil {
		return nil, fmt.Errorf("error beginning complete transaction: %w", err)
	}
	defer tx.Rollback()

	res, err := scanReservation(tx.QueryRow(
		`SELECT `+reservationColumns+` FROM reservations WHERE id = $1 FOR UPDATE`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("error locking reservation %s: %w", id, err)
	}
	if res.Status == db.StatusCancelled || res.Status == db.StatusCompleted {
		return nil, ErrAlreadyTerminal
	}

	err = tx.QueryRow(
		`UPDATE reservations SET status = $2, updated_at = NOW() WHERE id = $1 RETURNING updated_at`,
		id, db.StatusCompleted,
	).Scan(&res.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("error completing reservation %s: %w", id, err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("error committing complete transaction: %w", err)
	}

	res.Status = db.StatusCompleted
	res.Products, err = r.listReservationProducts(id)
	if err != nil {
		return nil, err
	}
	return res, nil
}

func (r *ReservationRepository) GetReservationByID(id string) (*db.Reservation, error) {
	res, err := scanReservation(r.DB.QueryRow(
		`SELECT `+reservationColumns+` FROM reservations WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("error querying reservation %s: %w", id, err)
	}
	res.Products, err = r.listReservationProducts(id)
	if err != nil {
		return nil, err
	}
	return res, nil
}

func (r *ReservationRepository) GetReservationByNumber(number string) (*db.Reservation, error) {
	res, err := scanReservation(r.DB.QueryRow(
		`SELECT `+reservationColumns+` FROM reservations WHERE reservation_number = $1`, number))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("error querying reservation number %s: %w", number, err)
	}
	res.Products, err = r.listReservationProducts(res.ID)
	if err != nil {
		return nil, err
	}
	return res, nil
}

// ListReservationsByEmail returns the user's reservations newest first.
func (r *ReservationRepository) ListReservationsByEmail(email string) ([]db.Reservation, error) {
	query := `SELECT ` + reservationColumns + ` FROM reservations WHERE user_email = $1 ORDER BY created_at DESC`
	return r.listReservations(query, email)
}

// SearchReservations filters by any combination of reservation number, user
// name, visit date and status. Used by the staff endpoints.
func (r *ReservationRepository) SearchReservations(number, userName, visitDate, status string, limit int) ([]db.Reservation, error) {
	query := `SELECT ` + reservationColumns + ` FROM reservations WHERE 1=1`
	args := []any{}
	idx := 1

	if number != "" {
		query += " AND reservation_number = $" + strconv.Itoa(idx)
		args = append(args, number)
		idx++
	}
	if userName != "" {
		query += " AND user_name = $" + strconv.Itoa(idx)
		args = append(args, userName)
		idx++
	}
	if visitDate != "" {
		query += " AND visit_date = $" + strconv.Itoa(idx)
		args = append(args, visitDate)
		idx++
	}
	if status != "" {
		query += " AND status = $" + strconv.Itoa(idx)
		args = append(args, status)
		idx++
	}
	query += " ORDER BY created_at DESC LIMIT $" + strconv.Itoa(idx)
	args = append(args, limit)

	return r.listReservations(query, args...)
}

func (r *ReservationRepository) listReservations(query string, args ...any) ([]db.Reservation, error) {
	rows, err := r.DB.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("error querying reservations: %w", err)
	}
	defer rows.Close()

	var reservations []db.Reservation
	for rows.Next() {
		res, err := scanReservation(rows)
		if err != nil {
			return nil, fmt.Errorf("error scanning reservation: %w", err)
		}
		reservations = append(reservations, *res)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error after iterating reservation rows: %w", err)
	}

	for i := range reservations {
		reservations[i].Products, err = r.listReservationProducts(reservations[i].ID)
		if err != nil {
			return nil, err
		}
	}
	return reservations, nil
}

func (r *ReservationRepository) listReservationProducts(reservationID string) ([]db.ReservationProduct, error) {
	rows, err := r.DB.Query(
		`SELECT reservation_id, product_id, quantity FROM reservation_products WHERE reservation_id = $1 ORDER BY product_id`,
		reservationID,
	)
	if err != nil {
		return nil, fmt.Errorf("error querying reservation products: %w", err)
	}
	defer rows.Close()
	return collectReservationProducts(rows)
}

func listReservationProductsTx(tx *sql.Tx, reservationID string) ([]db.ReservationProduct, error) {
	rows, err := tx.Query(
		`SELECT reservation_id, product_id, quantity FROM reservation_products WHERE reservation_id = $1 ORDER BY product_id`,
		reservationID,
	)
	if err != nil {
		return nil, fmt.Errorf("error querying reservation products: %w", err)
	}
	defer rows.Close()
	return collectReservationProducts(rows)
}

func collectReservationProducts(rows *sql.Rows) ([]db.ReservationProduct, error) {
	var products []db.ReservationProduct
	for rows.Next() {
		var p db.ReservationProduct
		if err := rows.Scan(&p.ReservationID, &p.ProductID, &p.Quantity); err != nil {
			return nil, fmt.Errorf("error scanning reservation product: %w", err)
		}
		products = append(products, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error after iterating reservation product rows: %w", err)
	}
	return products, nil
}
