// Package response writes the API's JSON bodies. Every error body has the
// shape {"error": message, "details": ...}.
package response

import (
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog/log"
)

// ErrorResponse is the body of every non-2xx response. Details holds a
// string, a field-to-message map for validation failures, or nothing.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details any    `json:"details,omitempty"`
}

// RespondJSON writes data as JSON with the given status. A nil data writes
// the status with an empty body. Encoding failures are logged; the status has
// already been sent by then.
func RespondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Error().Err(err).Int("status", status).Msg("failed to encode JSON response")
	}
}

// RespondError writes an ErrorResponse. An empty string details is omitted.
//
// Example:
//
//	response.RespondError(w, http.StatusBadRequest, "validation failed", err.Error())
//	response.RespondError(w, http.StatusNotFound, "portfolio not found", "")
func RespondError(w http.ResponseWriter, status int, message string, details any) {
	body := ErrorResponse{Error: message}
	if s, ok := details.(string); !ok || s != "" {
		body.Details = details
	}
	RespondJSON(w, status, body)
}
