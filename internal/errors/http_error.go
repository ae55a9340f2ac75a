package errors

import (
	"errors"
	"net/http"

	"github.com/munakata1001/jujutsukaisenapp/internal/repository"
	"github.com/munakata1001/jujutsukaisenapp/internal/service"
)

// HTTPError represents an error with an associated HTTP status code.
type HTTPError struct {
	Code    int
	Message string
}

func (e *HTTPError) Error() string {
	return e.Message
}

// NewHTTPError creates a new HTTPError with the given code and message.
func NewHTTPError(code int, message string) *HTTPError {
	return &HTTPError{
		Code:    code,
		Message: message,
	}
}

// FromError maps domain errors onto transport errors. Unknown errors become an
// opaque 500 so internals never leak to the client.
func FromError(err error) *HTTPError {
	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		return httpErr
	}

	switch {
	case errors.Is(err, service.ErrValidation),
		errors.Is(err, repository.ErrProductLimit):
		return NewHTTPError(http.StatusBadRequest, err.Error())
	case errors.Is(err, repository.ErrNotFound),
		errors.Is(err, repository.ErrSlotNotFound),
		errors.Is(err, repository.ErrProductNotFound):
		return NewHTTPError(http.StatusNotFound, err.Error())
	case errors.Is(err, service.ErrForbidden):
		return NewHTTPError(http.StatusForbidden, err.Error())
	case errors.Is(err, repository.ErrSlotFull),
		errors.Is(err, repository.ErrAlreadyTerminal),
		errors.Is(err, service.ErrTooLateToCancel):
		return NewHTTPError(http.StatusConflict, err.Error())
	default:
		return NewHTTPError(http.StatusInternalServerError, "internal server error")
	}
}
