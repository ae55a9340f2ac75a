package entities

type TimeSlotResponse struct {
	SlotID        string `json:"slot_id"`
	Date          string `json:"date"`
	Time          string `json:"time"`
	Capacity      int    `json:"capacity"`
	ReservedCount int    `json:"reserved"`
	Available     int    `json:"available"`
	Status        string `json:"status"`
}

type AvailabilityResponse struct {
	Available      bool `json:"available"`
	AvailableCount int  `json:"available_count"`
	Capacity       int  `json:"capacity"`
	ReservedCount  int  `json:"reserved_count"`
}
