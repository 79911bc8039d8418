package domain

import (
	"time"

	"punchgate/internal/fingerprint"
)

// Device is a fingerprint-to-employee binding. At most one device per
// fingerprint and one device per employee may be active at a time; superseded
// rows are deactivated, never deleted, so the binding history stays auditable.
type Device struct {
	ID          string
	EmployeeID  string
	Fingerprint fingerprint.Fingerprint
	// Descriptor is informational display data; it is not part of the
	// uniqueness key.
	Descriptor    fingerprint.Descriptor
	Active        bool
	RegisteredAt  time.Time
	LastUsedAt    *time.Time // updated on every successful punch
	ReplacedAt    *time.Time // set when superseded by a new enrollment
	DeactivatedAt *time.Time // set on caller-initiated dissociation
}
