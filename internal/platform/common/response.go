package common

import (
	"encoding/json"
	"log/slog"
	"net/http"
)

// Envelope is the body of every API response.
type Envelope struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
	Message string `json:"message,omitempty"`
}

// WriteJSON writes a JSON response
func WriteJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if body != nil {
		if err := json.NewEncoder(w).Encode(body); err != nil {
			slog.Warn("Failed to encode response", "error", err)
		}
	}
}

// WriteSuccess writes a success envelope around data.
func WriteSuccess(w http.ResponseWriter, status int, data any) {
	WriteJSON(w, status, Envelope{Success: true, Data: data})
}

// WriteMessage writes a success envelope with a message and optional data.
func WriteMessage(w http.ResponseWriter, status int, message string, data any) {
	WriteJSON(w, status, Envelope{Success: true, Message: message, Data: data})
}

// WriteUseCaseError writes the error envelope for err. Details become the data
// field so clients can branch on hints such as requiresApproval.
func WriteUseCaseError(w http.ResponseWriter, err *UseCaseError) {
	env := Envelope{Error: err.Code, Message: err.Message}
	if len(err.Details) > 0 {
		env.Data = err.Details
	}
	WriteJSON(w, err.HTTPStatus(), env)
}
