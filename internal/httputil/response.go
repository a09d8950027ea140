// Package httputil contains the JSON response helpers shared by the HTTP handlers.
package httputil

import (
	"encoding/json"
	"net/http"
)

// WriteJSON writes v with the given status. Encoding errors are dropped since
// the header has already been sent.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	_ = json.NewEncoder(w).Encode(v)
}

// WriteJSONError writes the {"error": message} body every endpoint uses.
func WriteJSONError(w http.ResponseWriter, message string, status int) {
	WriteJSON(w, status, map[string]string{"error": message})
}
