package controllers

import (
	"encoding/json"
	"errors"
	"net/http"

	"ripple_server/services"
)

// writeJSON writes a JSON response body.
func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

// writeError translates core domain errors into API status codes.
func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, services.ErrNotFound):
		http.Error(w, "Not found", http.StatusNotFound)
	case errors.Is(err, services.ErrAlreadyRegistered):
		http.Error(w, "Already registered", http.StatusConflict)
	case errors.Is(err, services.ErrInvalidReference):
		http.Error(w, "Invalid reference", http.StatusBadRequest)
	case errors.Is(err, services.ErrAccountDeleted):
		http.Error(w, "Account is deleted", http.StatusGone)
	default:
		http.Error(w, "Internal server error", http.StatusInternalServerError)
	}
}
