package fingerprint

import (
	"fmt"
	"strings"
)

// Descriptor is a coarse, human-readable classification of a device. It is
// informational only and never part of the device uniqueness key.
type Descriptor struct {
	DeviceClass   string // "mobile" or "desktop"
	OSFamily      string // e.g. "android", "windows"
	BrowserFamily string // e.g. "chrome", "firefox"
	ScreenSize    string // e.g. "1920x1080"
}

// Describe classifies the device from its signals with coarse user-agent
// matching. Unknown families come back as "unknown"; this is display data, not
// identification data.
func Describe(sig Signals) Descriptor {
	ua := strings.ToLower(sig.UserAgent)

	d := Descriptor{
		DeviceClass:   "desktop",
		OSFamily:      "unknown",
		BrowserFamily: "unknown",
	}
	if strings.Contains(ua, "mobile") || strings.Contains(ua, "android") ||
		strings.Contains(ua, "iphone") || strings.Contains(ua, "ipad") || sig.TouchCapable {
		d.DeviceClass = "mobile"
	}

	switch {
	case strings.Contains(ua, "android"):
		d.OSFamily = "android"
	case strings.Contains(ua, "iphone"), strings.Contains(ua, "ipad"):
		d.OSFamily = "ios"
	case strings.Contains(ua, "windows"):
		d.OSFamily = "windows"
	case strings.Contains(ua, "mac os"), strings.Contains(ua, "macintosh"):
		d.OSFamily = "macos"
	case strings.Contains(ua, "linux"):
		d.OSFamily = "linux"
	}

	// Order matters: Chrome-derived agents also advertise Safari, and Edge
	// advertises Chrome.
	switch {
	case strings.Contains(ua, "edg/"), strings.Contains(ua, "edge"):
		d.BrowserFamily = "edge"
	case strings.Contains(ua, "opr/"), strings.Contains(ua, "opera"):
		d.BrowserFamily = "opera"
	case strings.Contains(ua, "firefox"):
		d.BrowserFamily = "firefox"
	case strings.Contains(ua, "chrome"):
		d.BrowserFamily = "chrome"
	case strings.Contains(ua, "safari"):
		d.BrowserFamily = "safari"
	}

	if sig.ScreenWidth > 0 && sig.ScreenHeight > 0 {
		d.ScreenSize = fmt.Sprintf("%dx%d", sig.ScreenWidth, sig.ScreenHeight)
	}
	return d
}
