// Package presenter renders country service results as JSON over HTTP.
package presenter

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/FACorreiaa/loci-travelbot-api/internal/types"
)

// ErrorBody is the JSON shape of every failed response.
type ErrorBody struct {
	Error string `json:"error"`
}

// StatusFor maps a service error onto an HTTP status code.
func StatusFor(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, types.ErrBadRequest):
		return http.StatusBadRequest
	case errors.Is(err, types.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	case errors.Is(err, types.ErrUpstream):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// WriteJSON writes v with the given status.
func WriteJSON(w http.ResponseWriter, status int, v any) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	return json.NewEncoder(w).Encode(v)
}

// WriteError writes the mapped status and a JSON error body. Internal
// failures get a generic message.
func WriteError(w http.ResponseWriter, err error) (int, error) {
	status := StatusFor(err)
	msg := err.Error()
	if status == http.StatusInternalServerError {
		msg = http.StatusText(status)
	}
	return status, WriteJSON(w, status, ErrorBody{Error: msg})
}
