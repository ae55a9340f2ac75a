package repository

import "errors"

// ErrNotFound is returned when a requested reservation does not exist.
var ErrNotFound = errors.New("not found")

// ErrSlotNotFound is returned when the referenced time slot does not exist.
var ErrSlotNotFound = errors.New("time slot not found")

// ErrSlotFull is returned when a slot has no remaining capacity.
var ErrSlotFull = errors.New("time slot is fully booked")

// ErrAlreadyTerminal is returned when a reservation is already cancelled or completed.
var ErrAlreadyTerminal = errors.New("reservation is already in a terminal status")

// ErrProductNotFound is returned when an ordered product does not exist.
var ErrProductNotFound = errors.New("product not found")

// ErrProductLimit is returned when an order violates a product purchase limit.
var ErrProductLimit = errors.New("product order limit exceeded")
