package middleware

import (
	"encoding/json"
	"net/http"
)

// writeError writes the same envelope as the handlers: error code and message,
// with the message repeated as detail.
func writeError(w http.ResponseWriter, status int, code, message string) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	return json.NewEncoder(w).Encode(map[string]any{
		"error":  map[string]string{"code": code, "message": message},
		"detail": message,
	})
}
