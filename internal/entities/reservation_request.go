package entities

type CreateReservationRequest struct {
	UserEmail string         `json:"user_email"`
	UserName  string         `json:"user_name"`
	UserPhone string         `json:"user_phone"`
	VisitDate string         `json:"visit_date"`
	VisitTime string         `json:"visit_time"`
	Products  []ProductOrder `json:"products"`
}

type UpdateReservationRequest struct {
	VisitDate string `json:"visit_date,omitempty"`
	VisitTime string `json:"visit_time,omitempty"`
}
