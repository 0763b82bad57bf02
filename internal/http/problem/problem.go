// Package problem writes error responses as a small JSON body so API clients
// never have to parse plain-text errors.
package problem

import (
	"encoding/json"
	"log/slog"
	"net/http"
)

type response struct {
	Error string `json:"error"`
}

func Write(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(response{Error: message}); err != nil {
		slog.Error("failed to encode error response", "error", err)
	}
}
