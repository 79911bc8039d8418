package httpapi

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"punchgate/internal/telemetry/domain"
	"punchgate/internal/telemetry/producer"
)

// statusRecorder captures the status code written by the handler.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (w *statusRecorder) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}

// Telemetry traces every request and counts them by path and status. It also
// emits an http_request event to the producer when one is configured.
// Best-effort: failures never fail the request. skipPaths names paths to not
// record (e.g. /healthz).
func Telemetry(tracer trace.Tracer, meter metric.Meter, p producer.Producer, skipPaths map[string]bool) func(http.Handler) http.Handler {
	var requests metric.Int64Counter
	if meter != nil {
		var err error
		requests, err = meter.Int64Counter("punchgate.http.requests",
			metric.WithDescription("HTTP requests handled"))
		if err != nil {
			log.Printf("telemetry: create counter: %v", err)
		}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if skipPaths[r.URL.Path] {
				next.ServeHTTP(w, r)
				return
			}
			ctx := r.Context()
			if tracer != nil {
				var span trace.Span
				ctx, span = tracer.Start(ctx, r.Method+" "+r.URL.Path)
				defer span.End()
			}
			rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
			start := time.Now()
			next.ServeHTTP(rec, r.WithContext(ctx))

			if requests != nil {
				requests.Add(ctx, 1,
					metric.WithAttributes(
						attribute.String("path", r.URL.Path),
						attribute.Int("status", rec.status),
					))
			}
			if p != nil {
				event := &domain.Event{
					ID:        uuid.New().String(),
					EventType: "http_request",
					Source:    "http_middleware",
					Metadata: map[string]string{
						"method":      r.Method,
						"path":        r.URL.Path,
						"status":      http.StatusText(rec.status),
						"duration_ms": time.Since(start).Round(time.Millisecond).String(),
						"client_ip":   ClientIP(ctx),
					},
					CreatedAt: time.Now().UTC(),
				}
				go func() {
					emitCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
					defer cancel()
					if emitErr := p.Emit(emitCtx, event); emitErr != nil {
						log.Printf("telemetry: middleware emit failed: %v", emitErr)
					}
				}()
			}
		})
	}
}
