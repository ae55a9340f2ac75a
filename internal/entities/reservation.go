package entities

import "time"

type ProductOrder struct {
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
}

// ProductDetail is a product line enriched with catalog data for display.
type ProductDetail struct {
	ProductID   string `json:"product_id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Price       int    `json:"price"`
	Quantity    int    `json:"quantity"`
}

type ReservationResponse struct {
	ReservationID     string          `json:"reservation_id"`
	ReservationNumber string          `json:"reservation_number"`
	UserEmail         string          `json:"user_email"`
	UserName          string          `json:"user_name"`
	UserPhone         string          `json:"user_phone"`
	VisitDate         string          `json:"visit_date"`
	VisitTime         string          `json:"visit_time"`
	Status            string          `json:"status"`
	Products          []ProductOrder  `json:"products"`
	ProductDetails    []ProductDetail `json:"product_details,omitempty"`
	CreatedAt         time.Time       `json:"created_at"`
	UpdatedAt         time.Time       `json:"updated_at"`
}
