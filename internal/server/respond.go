package server

import (
	"encoding/json"
	"net/http"
)

// NotFoundResponse is the structured body for unmatched routes.
type NotFoundResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Path    string `json:"path"`
}

// HealthResponse is the body of the unauthenticated health endpoint.
type HealthResponse struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
}

// writeJSON encodes v with the given status. Encoding failures are ignored:
// headers are already on the wire and there is nothing useful left to do.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
