package handler

import (
	"errors"
	"net/http"

	"centrale/internal/model"
)

// statusFor maps domain errors to HTTP statuses. Validation problems are
// the client's fault; anything unrecognized is a 500.
func statusFor(err error) int {
	switch {
	case errors.Is(err, model.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, model.ErrVersionConflict):
		return http.StatusConflict
	case errors.Is(err, model.ErrTooManyFiles),
		errors.Is(err, model.ErrValidation),
		errors.Is(err, model.ErrValueType),
		errors.Is(err, model.ErrInvalidColumnType),
		errors.Is(err, model.ErrInvalidPartition):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
