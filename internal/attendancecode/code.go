// Package attendancecode defines the payloads behind the printed attendance
// artifacts: the per-employee code and the universal self-service punch link.
// Optical decoding and QR rendering are external concerns; this package only
// deals with the decoded payload string and the link URL.
package attendancecode

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strings"
)

// PayloadTypeEmployee is the discriminator for a per-employee printed code.
const PayloadTypeEmployee = "EMPLOYEE_ATTENDANCE"

// PunchPath is the fixed path of the universal punch link. A single printed
// code serves the whole organization; the visiting device's registry binding
// supplies the identity.
const PunchPath = "/punch"

var (
	// ErrMalformedPayload is returned when the payload is not the expected JSON shape.
	ErrMalformedPayload = errors.New("attendancecode: malformed payload")
	// ErrUnknownPayloadType is returned when the type discriminator is not recognized.
	// A foreign code scanned by mistake is a protocol error, not a punch attempt.
	ErrUnknownPayloadType = errors.New("attendancecode: unknown payload type")
	// ErrMissingEmployeeID is returned when an employee payload carries no employee id.
	ErrMissingEmployeeID = errors.New("attendancecode: missing employee id")
)

// EmployeePayload is the wire shape of the per-employee printed code.
type EmployeePayload struct {
	Type       string `json:"type"`
	EmployeeID string `json:"employeeId"`
}

// EncodeEmployee builds the payload string for an employee's printed code.
func EncodeEmployee(employeeID string) (string, error) {
	employeeID = strings.TrimSpace(employeeID)
	if employeeID == "" {
		return "", ErrMissingEmployeeID
	}
	b, err := json.Marshal(EmployeePayload{Type: PayloadTypeEmployee, EmployeeID: employeeID})
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// DecodeEmployee parses a decoded scan payload and returns the employee id.
// The type discriminator is validated before the employee id is trusted.
func DecodeEmployee(payload string) (string, error) {
	var p EmployeePayload
	if err := json.Unmarshal([]byte(payload), &p); err != nil {
		return "", ErrMalformedPayload
	}
	if p.Type != PayloadTypeEmployee {
		return "", fmt.Errorf("%w: %q", ErrUnknownPayloadType, p.Type)
	}
	id := strings.TrimSpace(p.EmployeeID)
	if id == "" {
		return "", ErrMissingEmployeeID
	}
	return id, nil
}

// PunchLink returns the universal self-service punch URL for the given public
// base URL. The link carries no employee data; the visiting device's registry
// binding resolves the identity.
func PunchLink(baseURL string) (string, error) {
	u, err := url.Parse(strings.TrimSpace(baseURL))
	if err != nil {
		return "", fmt.Errorf("attendancecode: invalid base URL: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return "", errors.New("attendancecode: base URL must be absolute")
	}
	u.Path = strings.TrimSuffix(u.Path, "/") + PunchPath
	return u.String(), nil
}
