package handlers

import (
	"encoding/json"
	"net/http"
)

// JSONError writes the error envelope every endpoint and middleware shares:
// {"error":{"code":"...","message":"..."}}. The code is derived from the
// status so clients can switch on it without parsing messages.
func JSONError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]any{
		"error": map[string]string{
			"code":    errorCode(status),
			"message": message,
		},
	})
}

func errorCode(status int) string {
	switch status {
	case http.StatusBadRequest:
		return "INVALID_INPUT"
	case http.StatusUnauthorized:
		return "UNAUTHORIZED"
	case http.StatusNotFound:
		return "NOT_FOUND"
	case http.StatusConflict:
		return "CONFLICT"
	case http.StatusTooManyRequests:
		return "RATE_LIMITED"
	case http.StatusServiceUnavailable:
		return "NOT_READY"
	default:
		return "INTERNAL_ERROR"
	}
}
