package config

import (
	"os"
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	os.Clearenv()
	os.Setenv("HTTP_ADDR", ":8080")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg == nil {
		t.Fatal("Load returned nil config")
	}
	if cfg.HTTPAddr != ":8080" {
		t.Errorf("HTTPAddr = %q, want %q", cfg.HTTPAddr, ":8080")
	}
	if cfg.TimeZone != "Asia/Jakarta" {
		t.Errorf("TimeZone = %q, want %q", cfg.TimeZone, "Asia/Jakarta")
	}
	if cfg.JWTIssuer != "punchgate-auth" {
		t.Errorf("JWTIssuer = %q, want %q", cfg.JWTIssuer, "punchgate-auth")
	}
	if cfg.JWTAudience != "punchgate-api" {
		t.Errorf("JWTAudience = %q, want %q", cfg.JWTAudience, "punchgate-api")
	}
	if cfg.JWTAccessTTL != "15m" {
		t.Errorf("JWTAccessTTL = %q, want %q", cfg.JWTAccessTTL, "15m")
	}
	if cfg.PunchIntentTTL != "10m" {
		t.Errorf("PunchIntentTTL = %q, want %q", cfg.PunchIntentTTL, "10m")
	}
	if cfg.BcryptCost != 12 {
		t.Errorf("BcryptCost = %d, want 12", cfg.BcryptCost)
	}
	if cfg.EventKafkaTopic != "punchgate-events" {
		t.Errorf("EventKafkaTopic = %q, want default", cfg.EventKafkaTopic)
	}
}

func TestLoad_EnvVarOverride(t *testing.T) {
	os.Clearenv()
	os.Setenv("HTTP_ADDR", ":9090")
	os.Setenv("TIME_ZONE", "UTC")
	os.Setenv("JWT_ISSUER", "custom-issuer")
	os.Setenv("BCRYPT_COST", "14")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.HTTPAddr != ":9090" {
		t.Errorf("HTTPAddr = %q, want %q", cfg.HTTPAddr, ":9090")
	}
	if cfg.TimeZone != "UTC" {
		t.Errorf("TimeZone = %q, want %q", cfg.TimeZone, "UTC")
	}
	if cfg.JWTIssuer != "custom-issuer" {
		t.Errorf("JWTIssuer = %q, want %q", cfg.JWTIssuer, "custom-issuer")
	}
	if cfg.BcryptCost != 14 {
		t.Errorf("BcryptCost = %d, want 14", cfg.BcryptCost)
	}
}

func TestLoad_InvalidTimeZone(t *testing.T) {
	os.Clearenv()
	os.Setenv("HTTP_ADDR", ":8080")
	os.Setenv("TIME_ZONE", "Not/AZone")

	cfg, err := Load()
	if err == nil {
		t.Fatal("Load should return error for unknown zone")
	}
	if cfg != nil {
		t.Error("Load should return nil config on error")
	}
}

func TestLoad_BCRYPT_COSTRange(t *testing.T) {
	testCases := []struct {
		name  string
		value string
		want  int
		err   bool
	}{
		{"valid min", "4", 4, false},
		{"valid max", "31", 31, false},
		{"valid middle", "12", 12, false},
		{"too low", "3", 0, true},
		{"too high", "32", 0, true},
		{"zero", "0", 12, false}, // defaults to 12
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			os.Clearenv()
			os.Setenv("HTTP_ADDR", ":8080")
			os.Setenv("BCRYPT_COST", tc.value)

			cfg, err := Load()
			if tc.err {
				if err == nil {
					t.Fatal("Load should return error")
				}
				return
			}
			if err != nil {
				t.Fatalf("Load: %v", err)
			}
			if cfg.BcryptCost != tc.want {
				t.Errorf("BcryptCost = %d, want %d", cfg.BcryptCost, tc.want)
			}
		})
	}
}

func TestLocation(t *testing.T) {
	os.Clearenv()
	os.Setenv("HTTP_ADDR", ":8080")
	os.Setenv("TIME_ZONE", "Asia/Jakarta")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	loc, err := cfg.Location()
	if err != nil {
		t.Fatalf("Location: %v", err)
	}
	if loc.String() != "Asia/Jakarta" {
		t.Errorf("Location = %q, want Asia/Jakarta", loc.String())
	}
}

func TestAccessTTL(t *testing.T) {
	testCases := []struct {
		name  string
		value string
		want  time.Duration
	}{
		{"valid", "30m", 30 * time.Minute},
		{"invalid", "invalid", 15 * time.Minute},
		{"zero", "0", 15 * time.Minute},
		{"negative", "-5m", 15 * time.Minute},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			os.Clearenv()
			os.Setenv("HTTP_ADDR", ":8080")
			os.Setenv("JWT_ACCESS_TTL", tc.value)

			cfg, err := Load()
			if err != nil {
				t.Fatalf("Load: %v", err)
			}
			if ttl := cfg.AccessTTL(); ttl != tc.want {
				t.Errorf("AccessTTL = %v, want %v", ttl, tc.want)
			}
		})
	}
}

func TestIntentTTL(t *testing.T) {
	testCases := []struct {
		name  string
		value string
		want  time.Duration
	}{
		{"valid", "5m", 5 * time.Minute},
		{"invalid", "invalid", 10 * time.Minute},
		{"zero", "0", 10 * time.Minute},
		{"negative", "-1m", 10 * time.Minute},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			os.Clearenv()
			os.Setenv("HTTP_ADDR", ":8080")
			os.Setenv("PUNCH_INTENT_TTL", tc.value)

			cfg, err := Load()
			if err != nil {
				t.Fatalf("Load: %v", err)
			}
			if ttl := cfg.IntentTTL(); ttl != tc.want {
				t.Errorf("IntentTTL = %v, want %v", ttl, tc.want)
			}
		})
	}
}

func TestEventKafkaBrokersList(t *testing.T) {
	os.Clearenv()
	os.Setenv("HTTP_ADDR", ":8080")
	os.Setenv("KAFKA_BROKERS", "localhost:9092, broker2:9092 ,")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	brokers := cfg.EventKafkaBrokersList()
	if len(brokers) != 2 {
		t.Fatalf("brokers = %v, want 2 entries", brokers)
	}
	if brokers[0] != "localhost:9092" || brokers[1] != "broker2:9092" {
		t.Errorf("brokers = %v, want trimmed entries", brokers)
	}
}
