package httpx

import (
	"errors"
	"net/http"
)

// Sentinel errors for the domain layer.
var (
	ErrNotFound   = errors.New("resource not found")
	ErrValidation = errors.New("validation failed")
)

// RespondError maps domain errors to HTTP responses. Store and processing
// failures deliberately surface a generic message; internal detail stays in
// the logs.
func RespondError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrValidation):
		Error(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, ErrNotFound):
		Error(w, http.StatusNotFound, "not found")
	default:
		Error(w, http.StatusInternalServerError, "internal error")
	}
}
