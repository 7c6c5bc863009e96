// Package respond writes the JSON bodies shared by every API route.
package respond

import (
	"encoding/json"
	"log/slog"
	"net/http"

	chiMiddleware "github.com/go-chi/chi/v5/middleware"
)

type ErrorResponse struct {
	Error string `json:"error"`
}

func JSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("failed to encode response", "component", "respond.JSON", "error", err)
	}
}

func Error(w http.ResponseWriter, status int, message string) {
	JSON(w, status, ErrorResponse{Error: message})
}

// InternalError logs err and answers 500. The error text is only sent to the
// client when expose is set.
func InternalError(w http.ResponseWriter, r *http.Request, component string, err error, expose bool) {
	slog.ErrorContext(r.Context(), "request failed",
		"component", component,
		"request_id", chiMiddleware.GetReqID(r.Context()),
		"error", err,
	)

	message := "Server error"
	if expose {
		message = "Server error: " + err.Error()
	}
	Error(w, http.StatusInternalServerError, message)
}
