package otel

import (
	"context"
	"testing"
	"time"

	otellog "go.opentelemetry.io/otel/log"
	sdklog "go.opentelemetry.io/otel/sdk/log"

	"punchgate/internal/telemetry/domain"
)

func TestNewEventEmitter_NilProvider_ReturnsNoop(t *testing.T) {
	em := NewEventEmitter(nil)
	if em == nil {
		t.Fatal("NewEventEmitter(nil) returned nil")
	}
	if err := em.Emit(context.Background(), nil); err != nil {
		t.Errorf("noop Emit(ctx, nil): %v", err)
	}
	if err := em.Emit(context.Background(), &domain.Event{EmployeeID: "emp1"}); err != nil {
		t.Errorf("noop Emit(ctx, event): %v", err)
	}
}

func TestEmit_NilEvent_ReturnsNil(t *testing.T) {
	provider := sdklog.NewLoggerProvider()
	defer func() { _ = provider.Shutdown(context.Background()) }()
	em := NewEventEmitter(provider)
	if err := em.Emit(context.Background(), nil); err != nil {
		t.Errorf("Emit(ctx, nil): %v", err)
	}
}

// recordCapture stores the last Record passed to Emit for assertion.
type recordCapture struct {
	rec otellog.Record
}

func (r *recordCapture) Emit(ctx context.Context, rec otellog.Record) {
	r.rec = rec
}

func TestEmit_AttributeAndBodyMapping(t *testing.T) {
	cap := &recordCapture{}
	em := NewEventEmitterWithLogger(cap)
	created := time.Date(2026, 3, 9, 8, 55, 0, 0, time.UTC)
	event := &domain.Event{
		ID:                "evt1",
		EmployeeID:        "emp1",
		DeviceFingerprint: "fp1",
		EventType:         domain.EventPunchArrival,
		Source:            "api",
		Metadata:          map[string]string{"status": "present"},
		CreatedAt:         created,
	}
	if err := em.Emit(context.Background(), event); err != nil {
		t.Fatalf("Emit: %v", err)
	}
	rec := cap.rec

	if rec.Body().Empty() {
		t.Error("body should be set when metadata is non-empty")
	}
	if got := rec.Body().AsBytes(); string(got) != `{"status":"present"}` {
		t.Errorf("body = %q, want %q", got, `{"status":"present"}`)
	}
	if !rec.Timestamp().Equal(created) {
		t.Errorf("timestamp = %v, want %v", rec.Timestamp(), created)
	}

	attrs := make(map[string]string)
	rec.WalkAttributes(func(kv otellog.KeyValue) bool {
		attrs[kv.Key] = kv.Value.AsString()
		return true
	})
	want := map[string]string{
		"event_id": "evt1", "employee_id": "emp1", "device_fingerprint": "fp1",
		"event_type": domain.EventPunchArrival, "source": "api",
	}
	for k, v := range want {
		if attrs[k] != v {
			t.Errorf("attr %q = %q, want %q", k, attrs[k], v)
		}
	}
}

func TestEmit_EmptyMetadata_NoBodySet(t *testing.T) {
	cap := &recordCapture{}
	em := NewEventEmitterWithLogger(cap)
	event := &domain.Event{
		EmployeeID: "emp1",
		EventType:  domain.EventDeviceEnrolled,
		Source:     "api",
	}
	if err := em.Emit(context.Background(), event); err != nil {
		t.Fatalf("Emit: %v", err)
	}
	rec := cap.rec
	if !rec.Body().Empty() {
		t.Error("body should be empty when metadata is nil")
	}
	attrs := make(map[string]string)
	rec.WalkAttributes(func(kv otellog.KeyValue) bool {
		attrs[kv.Key] = kv.Value.AsString()
		return true
	})
	if attrs["employee_id"] != "emp1" || attrs["event_type"] != domain.EventDeviceEnrolled || attrs["source"] != "api" {
		t.Errorf("attributes = %v", attrs)
	}
}

func TestEmit_ZeroTimestamp_SetsCurrentTime(t *testing.T) {
	cap := &recordCapture{}
	em := NewEventEmitterWithLogger(cap)
	event := &domain.Event{
		EmployeeID: "emp1",
		EventType:  domain.EventPunchDeparture,
		Source:     "api",
	}
	before := time.Now().UTC()
	if err := em.Emit(context.Background(), event); err != nil {
		t.Fatalf("Emit: %v", err)
	}
	after := time.Now().UTC()
	timestamp := cap.rec.Timestamp()
	if timestamp.IsZero() {
		t.Error("timestamp should be set when CreatedAt is zero")
	}
	if timestamp.Before(before) || timestamp.After(after) {
		t.Errorf("timestamp = %v, should be between %v and %v", timestamp, before, after)
	}
}
