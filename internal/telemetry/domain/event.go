package domain

import "time"

// Event types emitted by the attendance core.
const (
	EventPunchArrival      = "punch.arrival"
	EventPunchDeparture    = "punch.departure"
	EventDeviceEnrolled    = "device.enrolled"
	EventDeviceReplaced    = "device.replaced"
	EventDeviceDeactivated = "device.deactivated"
)

// Event is an attendance event on the event stream. JSON-encoded on the wire
// (Kafka message value, Loki log line).
type Event struct {
	ID                string            `json:"id"`
	EmployeeID        string            `json:"employeeId,omitempty"`
	DeviceFingerprint string            `json:"deviceFingerprint,omitempty"`
	EventType         string            `json:"eventType"`
	Source            string            `json:"source"`
	Metadata          map[string]string `json:"metadata,omitempty"`
	CreatedAt         time.Time         `json:"createdAt"`
}
