// Package telemetry emits attendance events best-effort to the configured
// sinks (Kafka event stream, OTel logs). Emission never affects the outcome of
// the operation that produced the event.
package telemetry

import (
	"context"

	"punchgate/internal/telemetry/domain"
)

// EventEmitter emits attendance events. Best-effort; callers log and ignore errors.
type EventEmitter interface {
	Emit(ctx context.Context, event *domain.Event) error
}
