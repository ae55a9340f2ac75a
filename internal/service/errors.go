package service

import (
	"errors"

	"github.com/munakata1001/jujutsukaisenapp/internal/repository"
)

// ErrValidation is returned when request input fails shape or format checks.
var ErrValidation = errors.New("validation failed")

// ErrForbidden is returned when a requester does not own the reservation.
var ErrForbidden = errors.New("reservation belongs to another user")

// ErrTooLateToCancel is returned when the visit is today or already past;
// owners may cancel only until the day before the visit.
var ErrTooLateToCancel = errors.New("too late to cancel this reservation")

func isSlotNotFound(err error) bool {
	return errors.Is(err, repository.ErrSlotNotFound)
}
