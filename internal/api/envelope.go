// Package api holds the JSON response envelope and HTTP plumbing shared by
// all handlers. Success payloads are plain objects; every failure becomes a
// uniform {"error": "..."} body.
package api

import (
	"encoding/json"
	"log/slog"
	"net/http"
)

// ErrorBody is the uniform error envelope.
type ErrorBody struct {
	Error string `json:"error"`
}

// WriteJSON serialises v as JSON and writes it to w with the given HTTP
// status code.
func WriteJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("write response", "error", err)
	}
}

// WriteError writes a uniform error body with the given status code.
func WriteError(w http.ResponseWriter, status int, msg string) {
	WriteJSON(w, status, ErrorBody{Error: msg})
}
