package db

import (
	"database/sql"
	"time"
)

type TimeSlot struct {
	SlotID        string
	Date          time.Time
	Time          string
	Capacity      int
	ReservedCount int
	IsAvailable   bool
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

type Reservation struct {
	ID                string
	ReservationNumber string
	UserEmail         string
	UserName          string
	UserPhone         string
	VisitDate         time.Time
	VisitTime         string
	Status            string
	CreatedAt         time.Time
	UpdatedAt         time.Time
	Products          []ReservationProduct
}

type ReservationProduct struct {
	ReservationID string
	ProductID     string
	Quantity      int
}

type Product struct {
	ID                string
	Name              string
	Description       string
	Price             int
	MaxPerReservation int
	TotalOrderLimit   int
	CurrentOrderCount int
	OrderStartDate    sql.NullTime
	OrderEndDate      sql.NullTime
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

type Admin struct {
	ID           int
	Email        string
	PasswordHash string
}
