package entities

type ProductResponse struct {
	ProductID         string `json:"product_id"`
	Name              string `json:"name"`
	Description       string `json:"description,omitempty"`
	Price             int    `json:"price"`
	MaxPerReservation int    `json:"max_per_reservation,omitempty"`
}
