package fingerprint

import (
	"strings"
	"testing"
)

func fullSignals() Signals {
	return Signals{
		UserAgent:      "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/125.0 Safari/537.36",
		Language:       "en-US",
		TimeZone:       "Asia/Jakarta",
		ScreenWidth:    1920,
		ScreenHeight:   1080,
		ColorDepth:     24,
		Capabilities:   []string{"pdf-viewer", "audio", "webrtc"},
		DeviceMemoryGB: 8,
		LogicalCores:   12,
		Platform:       "Win32",
		TouchCapable:   false,
		CanvasHash:     "a1b2c3d4e5f6",
		WebGLVendor:    "Google Inc. (NVIDIA)",
		WebGLRenderer:  "ANGLE (NVIDIA GeForce RTX 3060)",
	}
}

func TestGenerate_Deterministic(t *testing.T) {
	a := Generate(fullSignals())
	b := Generate(fullSignals())
	if a != b {
		t.Errorf("same signals produced different fingerprints: %s vs %s", a, b)
	}
	if len(a) != 64 {
		t.Errorf("fingerprint length = %d, want 64", len(a))
	}
	if strings.ToLower(string(a)) != string(a) {
		t.Error("fingerprint should be lowercase hex")
	}
}

func TestGenerate_CapabilityOrderIgnored(t *testing.T) {
	a := fullSignals()
	b := fullSignals()
	b.Capabilities = []string{"webrtc", "pdf-viewer", "audio"}
	if Generate(a) != Generate(b) {
		t.Error("capability order should not change the fingerprint")
	}
}

func TestGenerate_SensitiveToEachSignal(t *testing.T) {
	base := Generate(fullSignals())

	mutations := map[string]func(*Signals){
		"user agent":    func(s *Signals) { s.UserAgent = "other-agent" },
		"language":      func(s *Signals) { s.Language = "de-DE" },
		"time zone":     func(s *Signals) { s.TimeZone = "Europe/Berlin" },
		"screen width":  func(s *Signals) { s.ScreenWidth = 1280 },
		"screen height": func(s *Signals) { s.ScreenHeight = 720 },
		"color depth":   func(s *Signals) { s.ColorDepth = 30 },
		"capabilities":  func(s *Signals) { s.Capabilities = append(s.Capabilities, "midi") },
		"device memory": func(s *Signals) { s.DeviceMemoryGB = 16 },
		"core count":    func(s *Signals) { s.LogicalCores = 8 },
		"platform":      func(s *Signals) { s.Platform = "MacIntel" },
		"touch":         func(s *Signals) { s.TouchCapable = true },
		"canvas":        func(s *Signals) { s.CanvasHash = "ffffffffffff" },
		"webgl vendor":  func(s *Signals) { s.WebGLVendor = "Apple" },
		"webgl render":  func(s *Signals) { s.WebGLRenderer = "Apple M2" },
	}

	for name, mutate := range mutations {
		t.Run(name, func(t *testing.T) {
			sig := fullSignals()
			mutate(&sig)
			if Generate(sig) == base {
				t.Errorf("changing %s did not change the fingerprint", name)
			}
		})
	}
}

func TestGenerate_SentinelsForMissingRenderers(t *testing.T) {
	sig := fullSignals()
	sig.CanvasHash = ""
	sig.WebGLVendor = ""
	sig.WebGLRenderer = ""

	canon := Canonical(sig)
	if !strings.Contains(canon, CanvasUnavailable) {
		t.Errorf("canonical string should contain %q, got %q", CanvasUnavailable, canon)
	}
	if !strings.Contains(canon, WebGLUnavailable) {
		t.Errorf("canonical string should contain %q, got %q", WebGLUnavailable, canon)
	}
	// Still deterministic with the sentinels in place.
	if Generate(sig) != Generate(sig) {
		t.Error("sentinel substitution broke determinism")
	}
}

func TestGenerate_OptionalSignalsOmitted(t *testing.T) {
	sig := fullSignals()
	sig.DeviceMemoryGB = 0
	sig.LogicalCores = 0
	sig.Capabilities = nil

	canon := Canonical(sig)
	if strings.Contains(canon, "mem:") {
		t.Error("absent device memory should be omitted, not zero-filled")
	}
	if strings.Contains(canon, "cores:") {
		t.Error("absent core count should be omitted, not zero-filled")
	}
	if Generate(sig) == Generate(fullSignals()) {
		t.Error("omitting signals should still change the fingerprint")
	}
}

func TestGenerate_DelimiterInjection(t *testing.T) {
	a := fullSignals()
	a.UserAgent = "agent" + delimiter + "en-US"
	a.Language = ""
	b := fullSignals()
	b.UserAgent = "agent"
	b.Language = "en-US"
	if Generate(a) == Generate(b) {
		t.Error("delimiter inside a signal should not shift component boundaries")
	}
}

func TestParse(t *testing.T) {
	fp := Generate(fullSignals())
	parsed, err := Parse("  " + strings.ToUpper(string(fp)) + " ")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if parsed != fp {
		t.Errorf("Parse = %s, want %s", parsed, fp)
	}

	if _, err := Parse("abc"); err == nil {
		t.Error("short input should fail")
	}
	if _, err := Parse(strings.Repeat("z", 64)); err == nil {
		t.Error("non-hex input should fail")
	}
}

func TestDescribe(t *testing.T) {
	testCases := []struct {
		name    string
		sig     Signals
		class   string
		os      string
		browser string
		screen  string
	}{
		{
			name:    "windows chrome",
			sig:     fullSignals(),
			class:   "desktop",
			os:      "windows",
			browser: "chrome",
			screen:  "1920x1080",
		},
		{
			name: "android mobile",
			sig: Signals{
				UserAgent:    "Mozilla/5.0 (Linux; Android 14) Chrome/125.0 Mobile Safari/537.36",
				ScreenWidth:  412,
				ScreenHeight: 915,
				TouchCapable: true,
			},
			class:   "mobile",
			os:      "android",
			browser: "chrome",
			screen:  "412x915",
		},
		{
			name: "iphone safari",
			sig: Signals{
				UserAgent:    "Mozilla/5.0 (iPhone; CPU iPhone OS 17_0 like Mac OS X) Version/17.0 Mobile/15E148 Safari/604.1",
				TouchCapable: true,
			},
			class:   "mobile",
			os:      "ios",
			browser: "safari",
			screen:  "",
		},
		{
			name: "edge on windows",
			sig: Signals{
				UserAgent: "Mozilla/5.0 (Windows NT 10.0) Chrome/125.0 Safari/537.36 Edg/125.0",
			},
			class:   "desktop",
			os:      "windows",
			browser: "edge",
		},
		{
			name:    "unknown agent",
			sig:     Signals{UserAgent: "curl/8.0"},
			class:   "desktop",
			os:      "unknown",
			browser: "unknown",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			d := Describe(tc.sig)
			if d.DeviceClass != tc.class {
				t.Errorf("DeviceClass = %q, want %q", d.DeviceClass, tc.class)
			}
			if d.OSFamily != tc.os {
				t.Errorf("OSFamily = %q, want %q", d.OSFamily, tc.os)
			}
			if d.BrowserFamily != tc.browser {
				t.Errorf("BrowserFamily = %q, want %q", d.BrowserFamily, tc.browser)
			}
			if d.ScreenSize != tc.screen {
				t.Errorf("ScreenSize = %q, want %q", d.ScreenSize, tc.screen)
			}
		})
	}
}
