package http

import (
	"encoding/json"
	"log/slog"
	"net/http"
)

// ErrorResponse represents a standardized error response format.
type ErrorResponse struct {
	Message string   `json:"message"`
	Errors  []string `json:"errors,omitempty"`
}

// WriteError writes a standardized JSON error response.
func WriteError(w http.ResponseWriter, statusCode int, message string, errors []string, log *slog.Logger) {
	WriteJSON(w, statusCode, ErrorResponse{Message: message, Errors: errors}, log)
}

// WriteJSON writes an arbitrary payload as JSON with the given status code.
// Gateway handlers use it to return result envelopes verbatim.
func WriteJSON(w http.ResponseWriter, statusCode int, payload any, log *slog.Logger) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	if err := json.NewEncoder(w).Encode(payload); err != nil {
		// Status code is already written, nothing else to send.
		if log != nil {
			log.Error("failed to encode response", "error", err)
		}
	}
}
