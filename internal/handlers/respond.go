package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/Adilet2201/ChatConnect/internal/apperrors"
)

func respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(payload)
}

// respondError maps a typed service error onto its HTTP status.
func respondError(w http.ResponseWriter, err error) {
	respondJSON(w, apperrors.Status(err), map[string]interface{}{
		"success": false,
		"message": err.Error(),
	})
}
