package domain

import (
	"time"

	"punchgate/internal/fingerprint"
)

// Attendance statuses. Status is set to StatusPresent when the arrival commits;
// the other values exist for administrative correction only.
const (
	StatusPresent       = "present"
	StatusAbsent        = "absent"
	StatusLate          = "late"
	StatusExcusedAbsent = "excused-absent"
)

// ValidStatus reports whether s is a known attendance status.
func ValidStatus(s string) bool {
	switch s {
	case StatusPresent, StatusAbsent, StatusLate, StatusExcusedAbsent:
		return true
	}
	return false
}

// Record is one employee's attendance for one calendar day. The natural key is
// (EmployeeID, Day); Day is midnight in the site time zone. A record with both
// arrival and departure set is terminal for that day.
type Record struct {
	ID         string
	EmployeeID string
	Day        time.Time
	Status     string
	// Arrival and departure commit together with their signature artifact; a
	// time without its signature is never persisted.
	ArrivalTime        *time.Time
	ArrivalSignature   []byte
	DepartureTime      *time.Time
	DepartureSignature []byte
	// DeviceFingerprint is the device that produced the arrival.
	DeviceFingerprint fingerprint.Fingerprint
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// Terminal reports whether the day is complete (both punches committed).
func (r *Record) Terminal() bool {
	return r.ArrivalTime != nil && r.DepartureTime != nil
}
