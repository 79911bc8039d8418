// Package fingerprint derives a stable pseudo-identifier for a device/browser
// combination from a set of environment signals reported by the client.
package fingerprint

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sort"
	"strings"
)

// Sentinel values substituted when a rendering context is unavailable on the
// device. Lower entropy is an accepted degradation, not an error.
const (
	CanvasUnavailable = "canvas-error"
	WebGLUnavailable  = "no-webgl"
)

// delimiter joins canonical signal components. Signals never contain it: the
// raster hash is hex and the remaining signals are sanitized before joining.
const delimiter = "###"

// Fingerprint is a hex-encoded SHA-256 digest of the canonical signal string.
// It is a value type; it exists in storage only as a field of a Device.
type Fingerprint string

// Signals carries the environment signals contributed by the calling device.
// Zero values mark optional signals as absent; absent signals are omitted from
// the canonical string rather than zero-filled, so a device that never exposes
// a signal stays deterministic across its own calls.
// Signals are reported by clients as JSON, hence the tags.
type Signals struct {
	UserAgent    string `json:"userAgent"`
	Language     string `json:"language"`
	TimeZone     string `json:"timeZone"`
	ScreenWidth  int    `json:"screenWidth"`
	ScreenHeight int    `json:"screenHeight"`
	ColorDepth   int    `json:"colorDepth"`
	// Capabilities holds enumerable capability/plugin names. Order as reported
	// is not trusted; the canonical form sorts a copy.
	Capabilities []string `json:"capabilities,omitempty"`
	// DeviceMemoryGB is the device memory hint in GiB; 0 means unavailable.
	DeviceMemoryGB int `json:"deviceMemoryGb,omitempty"`
	// LogicalCores is the reported logical core count; 0 means unavailable.
	LogicalCores int    `json:"logicalCores,omitempty"`
	Platform     string `json:"platform"`
	TouchCapable bool   `json:"touchCapable"`
	// CanvasHash is the client's raster fingerprint: fixed content rendered to
	// an offscreen 2-D surface, pixel buffer encoded to a deterministic string.
	// Empty means the canvas context was unavailable.
	CanvasHash string `json:"canvasHash,omitempty"`
	// WebGLVendor and WebGLRenderer identify the 3-D graphics stack. Both empty
	// means no 3-D context was available.
	WebGLVendor   string `json:"webglVendor,omitempty"`
	WebGLRenderer string `json:"webglRenderer,omitempty"`
}

// Generate derives the fingerprint for the given signals. It is deterministic
// for identical signals and never fails: unavailable rendering contexts are
// replaced with sentinel strings instead of propagating as errors.
func Generate(sig Signals) Fingerprint {
	sum := sha256.Sum256([]byte(Canonical(sig)))
	return Fingerprint(hex.EncodeToString(sum[:]))
}

// Canonical builds the delimiter-joined canonical string hashed by Generate.
// Exposed for tests; callers should use Generate.
func Canonical(sig Signals) string {
	parts := make([]string, 0, 12)
	appendPresent := func(s string) {
		if s = sanitize(s); s != "" {
			parts = append(parts, s)
		}
	}

	appendPresent(sig.UserAgent)
	appendPresent(sig.Language)
	appendPresent(sig.TimeZone)
	if sig.ScreenWidth > 0 || sig.ScreenHeight > 0 || sig.ColorDepth > 0 {
		parts = append(parts, fmt.Sprintf("%dx%dx%d", sig.ScreenWidth, sig.ScreenHeight, sig.ColorDepth))
	}
	if len(sig.Capabilities) > 0 {
		caps := make([]string, len(sig.Capabilities))
		for i, c := range sig.Capabilities {
			caps[i] = sanitize(c)
		}
		sort.Strings(caps)
		parts = append(parts, strings.Join(caps, ","))
	}
	if sig.DeviceMemoryGB > 0 {
		parts = append(parts, fmt.Sprintf("mem:%d", sig.DeviceMemoryGB))
	}
	if sig.LogicalCores > 0 {
		parts = append(parts, fmt.Sprintf("cores:%d", sig.LogicalCores))
	}
	appendPresent(sig.Platform)
	if sig.TouchCapable {
		parts = append(parts, "touch")
	} else {
		parts = append(parts, "no-touch")
	}

	canvas := sanitize(sig.CanvasHash)
	if canvas == "" {
		canvas = CanvasUnavailable
	}
	parts = append(parts, canvas)

	gl := strings.TrimSpace(sanitize(sig.WebGLVendor) + "~" + sanitize(sig.WebGLRenderer))
	if gl == "~" {
		gl = WebGLUnavailable
	}
	parts = append(parts, gl)

	return strings.Join(parts, delimiter)
}

// Parse validates an externally supplied fingerprint string (64 lowercase hex
// characters). Handlers use it to normalize wire input before lookups.
func Parse(s string) (Fingerprint, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if len(s) != sha256.Size*2 {
		return "", fmt.Errorf("fingerprint: want %d hex characters, got %d", sha256.Size*2, len(s))
	}
	if _, err := hex.DecodeString(s); err != nil {
		return "", fmt.Errorf("fingerprint: not hex encoded")
	}
	return Fingerprint(s), nil
}

// sanitize strips the join delimiter out of raw signal text so a hostile
// client cannot shift component boundaries.
func sanitize(s string) string {
	return strings.TrimSpace(strings.ReplaceAll(s, delimiter, ""))
}
