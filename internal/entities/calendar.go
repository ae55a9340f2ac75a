package entities

// CalendarDay is the aggregate availability for one day of the month.
// Status is one of "available", "limited", "full", "unavailable".
type CalendarDay struct {
	Status         string `json:"status"`
	AvailableSlots int    `json:"availableSlots"`
}

type CalendarResponse struct {
	Year  int                 `json:"year"`
	Month int                 `json:"month"`
	Data  map[int]CalendarDay `json:"data"`
}
