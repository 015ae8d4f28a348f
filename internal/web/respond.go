package web

import (
	"encoding/json"
	"net/http"
)

// apiError is the JSON error envelope. Details carries the raw upstream body
// when a token exchange is rejected upstream.
type apiError struct {
	Error   string          `json:"error"`
	Details json.RawMessage `json:"details,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, apiError{Error: message})
}
