package services

import (
	"encoding/json"
	"errors"
	"net/http"
)

// Sentinel errors shared by the service and endpoint layers. Handlers
// map them to HTTP statuses in one place so adapters and stores never
// deal in status codes.
var (
	ErrInvalidArgument   = errors.New("invalid argument")
	ErrNotFound          = errors.New("not found")
	ErrAdapterFailure    = errors.New("adapter failure")
	ErrUnsupportedFormat = errors.New("unsupported format")
)

// httpStatus maps a service error to its HTTP status code.
func httpStatus(err error) int {
	switch {
	case errors.Is(err, ErrInvalidArgument):
		return http.StatusBadRequest
	case errors.Is(err, ErrUnsupportedFormat):
		return http.StatusBadRequest
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// writeError writes a JSON error body with the status the error maps to.
func writeError(w http.ResponseWriter, err error) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(httpStatus(err))
	json.NewEncoder(w).Encode(map[string]string{"error": err.Error()})
}
