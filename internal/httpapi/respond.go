package httpapi

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
)

// ErrorResponse is the JSON error shape for every endpoint.
type ErrorResponse struct {
	ErrorCode string `json:"error_code,omitempty"`
	Message   string `json:"message"`
}

// Responder writes JSON responses and logs failures.
type Responder struct {
	logger *slog.Logger
}

// NewResponder returns a Responder. logger may be nil; then slog.Default() is used.
func NewResponder(logger *slog.Logger) Responder {
	if logger == nil {
		logger = slog.Default()
	}
	return Responder{logger: logger}
}

// WriteJSON writes payload as JSON with the given status. A nil payload or
// StatusNoContent writes the status line only.
func (r Responder) WriteJSON(ctx context.Context, w http.ResponseWriter, status int, payload any) {
	if w == nil {
		return
	}
	if status == http.StatusNoContent || payload == nil {
		w.WriteHeader(status)
		return
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		r.logger.ErrorContext(ctx, "failed to encode response", "error", err)
	}
}

// WriteError writes a JSON error body for status. code is optional.
func (r Responder) WriteError(ctx context.Context, w http.ResponseWriter, status int, code string, err error) {
	message := http.StatusText(status)
	if err != nil {
		if msg := strings.TrimSpace(err.Error()); msg != "" {
			message = msg
		}
		if status >= http.StatusInternalServerError {
			r.logger.ErrorContext(ctx, "request failed", "status", status, "error", err)
		}
	}
	r.WriteJSON(ctx, w, status, ErrorResponse{ErrorCode: code, Message: message})
}

// MethodNotAllowed writes a 405 naming the allowed methods.
func MethodNotAllowed(w http.ResponseWriter, allowed ...string) {
	if len(allowed) > 0 {
		w.Header().Set("Allow", strings.Join(allowed, ", "))
	}
	http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
}
