package handlers

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/aerocall/server/internal/apperr"
)

// respondJSON writes a JSON response with the given status
func respondJSON(w http.ResponseWriter, statusCode int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.Printf("Failed to encode response: %v", err)
	}
}

// respondWithError sends a JSON error response
func respondWithError(w http.ResponseWriter, statusCode int, message string) {
	respondJSON(w, statusCode, map[string]string{"error": message})
}

// respondError maps a classified error to its status and JSON body. Raw
// causes are logged, never sent to the client.
func respondError(w http.ResponseWriter, err error) {
	if ae, ok := apperr.As(err); ok {
		if ae.Err != nil {
			log.Printf("%s: %v", ae.Message, ae.Err)
		}
		body := map[string]string{"error": ae.Message}
		if ae.Details != "" {
			body["details"] = ae.Details
		}
		respondJSON(w, ae.HTTPStatus(), body)
		return
	}
	log.Printf("Unclassified error: %v", err)
	respondWithError(w, http.StatusInternalServerError, "An unexpected error occurred.")
}
