// Package handlers provides JSON response helpers shared by HTTP handlers.
package handlers

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
)

// ErrorResponse is the JSON body written for failed requests.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// RespondJSON writes data as a JSON body with the given status.
func RespondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// RespondError writes {"error": err} with the given status. Server errors
// are logged at error level, client errors at warn.
func RespondError(w http.ResponseWriter, logger *slog.Logger, status int, err error) {
	logError(logger, status, err, "")
	RespondJSON(w, status, ErrorResponse{Error: err.Error()})
}

// RespondErrorDetail writes {"error": message, "details": details}. The
// cause is logged but not sent to the client.
func RespondErrorDetail(w http.ResponseWriter, logger *slog.Logger, status int, message, details string, cause error) {
	logError(logger, status, cause, details)
	RespondJSON(w, status, ErrorResponse{Error: message, Details: details})
}

func logError(logger *slog.Logger, status int, err error, details string) {
	level := slog.LevelWarn
	if status >= http.StatusInternalServerError {
		level = slog.LevelError
	}

	attrs := []any{"status", status, "error", err}
	if details != "" {
		attrs = append(attrs, "details", details)
	}

	logger.Log(context.Background(), level, "request failed", attrs...)
}
