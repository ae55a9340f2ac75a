package repository

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/munakata1001/jujutsukaisenapp/internal/db"
)

type ProductRepository struct {
	DB *sql.DB
}

func NewProductRepository(database *sql.DB) *ProductRepository {
	return &ProductRepository{DB: database}
}

const productColumns = `id, name, description, price, max_per_reservation, total_order_limit, current_order_count, order_start_date, order_end_date, created_at, updated_at`

func scanProduct(row interface{ Scan(dest ...any) error }) (*db.Product, error) {
	var p db.Product
	err := row.Scan(
		&p.ID, &p.Name, &p.Description, &p.Price, &p.MaxPerReservation,
		&p.TotalOrderLimit, &p.CurrentOrderCount, &p.OrderStartDate, &p.OrderEndDate,
		&p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *ProductRepository) ListProducts() ([]db.Product, error) {
	rows, err := r.DB.Query(`SELECT ` + productColumns + ` FROM products ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("error querying products: %w", err)
	}
	defer rows.Close()

	var products []db.Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("error scanning product: %w", err)
		}
		products = append(products, *p)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error after iterating product rows: %w", err)
	}
	return products, nil
}

func (r *ProductRepository) GetProduct(id string) (*db.Product, error) {
	p, err := scanProduct(r.DB.QueryRow(`SELECT `+productColumns+` FROM products WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("error querying product %s: %w", id, err)
	}
	return p, nil
}
