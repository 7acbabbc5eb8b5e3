package httpx

import (
	"errors"
	"net/http"

	"github.com/gstbill/gstbill/internal/shared"
)

// ErrBodyTooLarge is returned by DecodeJSON when the request body exceeds its limit.
var ErrBodyTooLarge = errors.New("request body too large")

// RespondError maps domain errors to HTTP responses using RFC7807.
func RespondError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, shared.ErrNotFound):
		Problem(w, http.StatusNotFound, "Not Found", err.Error())
	case errors.Is(err, shared.ErrInvalidInput):
		Problem(w, http.StatusBadRequest, "Invalid Input", err.Error())
	case errors.Is(err, ErrBodyTooLarge):
		Problem(w, http.StatusRequestEntityTooLarge, "Payload Too Large", err.Error())
	case errors.Is(err, shared.ErrPersistence):
		Problem(w, http.StatusServiceUnavailable, "Storage Unavailable", "the invoice store could not be written")
	default:
		Problem(w, http.StatusInternalServerError, "Internal Error", "")
	}
}

// NotFound responds 404 for a missing resource.
func NotFound(w http.ResponseWriter, what string) {
	Problem(w, http.StatusNotFound, "Not Found", what+" not found")
}
