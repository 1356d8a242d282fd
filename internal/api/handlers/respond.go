package handlers

import (
	"encoding/json"
	"net/http"
)

// Every JSON response carries a boolean "status" and, on failure, a
// human-readable "message" alongside the HTTP status code.

func writeJSON(w http.ResponseWriter, code int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(payload)
}

func fail(w http.ResponseWriter, code int, message string) {
	writeJSON(w, code, map[string]any{
		"status":  false,
		"message": message,
	})
}
