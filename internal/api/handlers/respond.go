package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/wonny/investsim/internal/contracts"
)

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{
		"error": message,
	})
}

// statusFor maps the pipeline error taxonomy onto HTTP status codes
func statusFor(err error) int {
	switch {
	case errors.Is(err, contracts.ErrInvalidAllocationInput):
		return http.StatusBadRequest
	case errors.Is(err, contracts.ErrMissingPriceData):
		return http.StatusUnprocessableEntity
	case errors.Is(err, contracts.ErrExternalFetchFailure):
		return http.StatusBadGateway
	case errors.Is(err, contracts.ErrInvalidCatalogue), errors.Is(err, contracts.ErrInvalidRateInput):
		return http.StatusInternalServerError
	default:
		return http.StatusInternalServerError
	}
}
