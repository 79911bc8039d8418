// Package httpapi holds the HTTP plumbing shared by the feature handlers:
// JSON responding, request context helpers, and middleware.
package httpapi

import "context"

type contextKey struct{ name string }

var (
	adminIDKey  = contextKey{"admin_id"}
	clientIPKey = contextKey{"client_ip"}
)

// WithAdminID returns a context carrying the authenticated admin id.
func WithAdminID(ctx context.Context, adminID string) context.Context {
	return context.WithValue(ctx, adminIDKey, adminID)
}

// AdminID returns the admin id from context and true if set; otherwise "", false.
func AdminID(ctx context.Context) (string, bool) {
	v, ok := ctx.Value(adminIDKey).(string)
	return v, ok
}

// WithClientIP returns a context carrying the resolved client IP.
func WithClientIP(ctx context.Context, ip string) context.Context {
	return context.WithValue(ctx, clientIPKey, ip)
}

// ClientIP returns the client IP from context, or "unknown".
func ClientIP(ctx context.Context) string {
	if v, ok := ctx.Value(clientIPKey).(string); ok && v != "" {
		return v
	}
	return "unknown"
}
