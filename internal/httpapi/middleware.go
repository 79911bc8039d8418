package httpapi

import (
	"errors"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"sync/atomic"
	"time"
)

var errMissingBearer = errors.New("missing bearer token")

// RequestLogger logs every request with a per-process sequence id.
func RequestLogger(base *slog.Logger) func(http.Handler) http.Handler {
	if base == nil {
		base = slog.Default()
	}
	var counter atomic.Uint64

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := counter.Add(1)
			logger := base.With(
				"request_id", id,
				"method", r.Method,
				"path", r.URL.Path,
			)
			start := time.Now()
			next.ServeHTTP(w, r)
			logger.InfoContext(r.Context(), "request completed", "duration", time.Since(start))
		})
	}
}

// RealIP resolves the client IP (X-Forwarded-For, X-Real-IP, RemoteAddr) into
// the request context for audit logging.
func RealIP() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			next.ServeHTTP(w, r.WithContext(WithClientIP(r.Context(), resolveIP(r))))
		})
	}
}

func resolveIP(r *http.Request) string {
	if s := strings.TrimSpace(r.Header.Get("X-Forwarded-For")); s != "" {
		if i := strings.Index(s, ","); i > 0 {
			s = strings.TrimSpace(s[:i])
		}
		return s
	}
	if s := strings.TrimSpace(r.Header.Get("X-Real-IP")); s != "" {
		return s
	}
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	if r.RemoteAddr != "" {
		return r.RemoteAddr
	}
	return "unknown"
}

// TokenValidator authenticates a bearer token and returns the admin id.
type TokenValidator interface {
	Authenticate(token string) (adminID string, err error)
}

// RequireAdmin rejects requests without a valid admin bearer token and puts
// the admin id on the context.
func RequireAdmin(validator TokenValidator, logger *slog.Logger) func(http.Handler) http.Handler {
	responder := NewResponder(logger)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := extractBearer(r)
			if token == "" {
				responder.WriteError(r.Context(), w, http.StatusUnauthorized, "AUTH_MISSING_TOKEN", errMissingBearer)
				return
			}
			adminID, err := validator.Authenticate(token)
			if err != nil {
				responder.WriteError(r.Context(), w, http.StatusUnauthorized, "AUTH_INVALID_TOKEN", errors.New("invalid or expired token"))
				return
			}
			next.ServeHTTP(w, r.WithContext(WithAdminID(r.Context(), adminID)))
		})
	}
}

func extractBearer(r *http.Request) string {
	h := r.Header.Get("Authorization")
	if h == "" {
		return ""
	}
	parts := strings.SplitN(h, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}
