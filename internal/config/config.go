// Package config loads and validates app config from env and an optional .env file using Viper.
package config

import (
	"errors"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds application configuration loaded from the environment.
type Config struct {
	// HTTPAddr is the address the HTTP server listens on (e.g. :8080).
	HTTPAddr string `mapstructure:"HTTP_ADDR"`
	// DatabaseURL is the Postgres DSN; empty until DB is wired.
	DatabaseURL string `mapstructure:"DATABASE_URL"`
	// TimeZone is the fixed IANA zone used to normalize punch timestamps to a
	// calendar day (e.g. "Asia/Jakarta"). All attendance records share this zone.
	TimeZone string `mapstructure:"TIME_ZONE"`
	// JWTPrivateKey is the PEM-encoded private key (RSA or ECDSA) or path to file; used with JWT_PUBLIC_KEY.
	JWTPrivateKey string `mapstructure:"JWT_PRIVATE_KEY"`
	// JWTPublicKey is the PEM-encoded public key or path to file; used with JWT_PRIVATE_KEY.
	JWTPublicKey string `mapstructure:"JWT_PUBLIC_KEY"`
	// JWTIssuer is the iss claim (e.g. "punchgate-auth").
	JWTIssuer string `mapstructure:"JWT_ISSUER"`
	// JWTAudience is the aud claim (e.g. "punchgate-api").
	JWTAudience string `mapstructure:"JWT_AUDIENCE"`
	// JWTAccessTTL is the admin access token lifetime (e.g. "15m").
	JWTAccessTTL string `mapstructure:"JWT_ACCESS_TTL"`
	// PunchIntentTTL is how long a computed punch intent stays valid while the
	// caller signs (e.g. "10m"). Signing is human-paced; keep this generous.
	PunchIntentTTL string `mapstructure:"PUNCH_INTENT_TTL"`
	// BcryptCost is the bcrypt cost factor (4–31) for admin passwords; default 12.
	BcryptCost int `mapstructure:"BCRYPT_COST"`
	// PunchLinkBaseURL is the public base URL the universal self-service punch
	// link is built from (e.g. https://hr.example.com).
	PunchLinkBaseURL string `mapstructure:"PUNCH_LINK_BASE_URL"`
	// Env is the application environment (e.g. "development", "production").
	Env string `mapstructure:"APP_ENV"`

	// OTLPEndpoint is the OpenTelemetry collector endpoint (e.g. http://localhost:4317).
	// Empty disables telemetry export.
	OTLPEndpoint string `mapstructure:"OTLP_ENDPOINT"`
	// OTLPInsecure forces plaintext OTLP export even for https endpoints.
	OTLPInsecure bool `mapstructure:"OTLP_INSECURE"`

	// Events (optional). When Kafka brokers are set, committed punches and device
	// lifecycle changes are emitted to Kafka.
	// EventKafkaBrokers is a comma-separated list of Kafka broker addresses.
	EventKafkaBrokers string `mapstructure:"KAFKA_BROKERS"`
	// EventKafkaTopic is the Kafka topic for attendance events (default punchgate-events).
	EventKafkaTopic string `mapstructure:"EVENT_KAFKA_TOPIC"`

	// Worker-only: Loki URL for the event worker to push logs (e.g. http://localhost:3100).
	LokiURL string `mapstructure:"LOKI_URL"`
	// KafkaGroupID is the consumer group ID for the event worker.
	KafkaGroupID string `mapstructure:"KAFKA_GROUP_ID"`
}

// Load reads .env (if present), then builds and validates Config from the environment via Viper.
// Missing .env is ignored (e.g. in CI). Env vars override .env. Returns an error if required fields are invalid.
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigFile(".env")
	v.SetConfigType("env")
	_ = v.ReadInConfig() // ignore ErrConfigFileNotFound

	v.AutomaticEnv()

	v.SetDefault("HTTP_ADDR", ":8080")
	v.SetDefault("DATABASE_URL", "")
	v.SetDefault("TIME_ZONE", "Asia/Jakarta")
	v.SetDefault("JWT_ISSUER", "punchgate-auth")
	v.SetDefault("JWT_AUDIENCE", "punchgate-api")
	v.SetDefault("JWT_ACCESS_TTL", "15m")
	v.SetDefault("PUNCH_INTENT_TTL", "10m")
	v.SetDefault("BCRYPT_COST", 12)
	v.SetDefault("PUNCH_LINK_BASE_URL", "http://localhost:8080")
	v.SetDefault("APP_ENV", "")
	v.SetDefault("OTLP_ENDPOINT", "")
	v.SetDefault("OTLP_INSECURE", false)
	v.SetDefault("KAFKA_BROKERS", "")
	v.SetDefault("EVENT_KAFKA_TOPIC", "punchgate-events")
	v.SetDefault("LOKI_URL", "")
	v.SetDefault("KAFKA_GROUP_ID", "punchgate-event-worker")

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	if cfg.HTTPAddr == "" {
		return nil, errors.New("config: HTTP_ADDR must be set")
	}
	if cfg.TimeZone == "" {
		return nil, errors.New("config: TIME_ZONE must be set")
	}
	if _, err := time.LoadLocation(cfg.TimeZone); err != nil {
		return nil, errors.New("config: TIME_ZONE is not a valid IANA zone name")
	}

	if cfg.BcryptCost == 0 {
		cfg.BcryptCost = 12
	}
	if cfg.BcryptCost < 4 || cfg.BcryptCost > 31 {
		return nil, errors.New("config: BCRYPT_COST must be between 4 and 31")
	}

	return &cfg, nil
}

// AccessTTL parses JWTAccessTTL as a time.Duration. Returns 15m if unset or invalid.
func (c *Config) AccessTTL() time.Duration {
	d, err := time.ParseDuration(c.JWTAccessTTL)
	if err != nil || d <= 0 {
		return 15 * time.Minute
	}
	return d
}

// IntentTTL parses PunchIntentTTL as a time.Duration. Returns 10m if unset or invalid.
func (c *Config) IntentTTL() time.Duration {
	d, err := time.ParseDuration(c.PunchIntentTTL)
	if err != nil || d <= 0 {
		return 10 * time.Minute
	}
	return d
}

// Location resolves TimeZone to a *time.Location. Load has already validated the
// zone name, so this only fails if tzdata disappeared after startup.
func (c *Config) Location() (*time.Location, error) {
	return time.LoadLocation(c.TimeZone)
}

// EventKafkaBrokersList returns Kafka broker addresses from the comma-separated config.
// Used to decide if event emission is enabled (non-empty list) and to create the producer.
func (c *Config) EventKafkaBrokersList() []string {
	if c == nil || c.EventKafkaBrokers == "" {
		return nil
	}
	parts := strings.Split(c.EventKafkaBrokers, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if s := strings.TrimSpace(p); s != "" {
			out = append(out, s)
		}
	}
	return out
}
