// Package middleware holds the HTTP middleware chain: logging, security
// headers, rate limiting and session authentication.
package middleware

import (
	"encoding/json"
	"net/http"
)

// Chain wraps h so that the first middleware in m runs first.
func Chain(h http.Handler, m ...func(http.Handler) http.Handler) http.Handler {
	for i := len(m) - 1; i >= 0; i-- {
		h = m[i](h)
	}
	return h
}

func writeJSONError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"message": message})
}
