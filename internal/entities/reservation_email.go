package entities

type ReservationEmailData struct {
	UserName           string
	ReservationNumber  string
	VisitDateFormatted string
	VisitTime          string
	Status             string
	Products           []ProductDetail
	CurrentYear        int
}
