package api

// Time slot administration
type CreateTimeSlotRequest struct {
	Date     string `json:"date"`
	Time     string `json:"time"`
	Capacity int    `json:"capacity"`
}

type UpdateTimeSlotRequest struct {
	Capacity    *int  `json:"capacity,omitempty"`
	IsAvailable *bool `json:"is_available,omitempty"`
}

// Admin authentication
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginResponse struct {
	Token string `json:"token"`
}
