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
	// HTTPAddr is the address the portal listens on (e.g. :3000).
	HTTPAddr string `mapstructure:"HTTP_ADDR"`
	// MailerAddr is the address the mail-simulation service listens on (e.g. :4444).
	MailerAddr string `mapstructure:"MAILER_ADDR"`
	// DatabaseURL is the Postgres DSN; empty selects the in-memory stores (demo mode).
	DatabaseURL string `mapstructure:"DATABASE_URL"`
	// MailerURL is the base URL of the mail-simulation service the OTP relay posts to.
	MailerURL string `mapstructure:"MAILER_URL"`
	// MailerTimeout bounds a single OTP delivery call (e.g. "5s").
	MailerTimeout string `mapstructure:"MAILER_TIMEOUT"`
	// OTPTTLValue is how long an issued OTP stays valid (e.g. "5m").
	OTPTTLValue string `mapstructure:"OTP_TTL"`
	// OTPMaxAttempts is the number of failed OTP checks after which the session is destroyed.
	OTPMaxAttempts int `mapstructure:"OTP_MAX_ATTEMPTS"`
	// SessionTTLValue is the idle lifetime of a session (e.g. "30m").
	SessionTTLValue string `mapstructure:"SESSION_TTL"`
	// SessionPrivateKey is the PEM-encoded private key (RSA or ECDSA) or path used to sign session cookies.
	// When both session keys are empty an ephemeral ECDSA key is generated at startup.
	SessionPrivateKey string `mapstructure:"SESSION_PRIVATE_KEY"`
	// SessionPublicKey is the PEM-encoded public key or path; used with SESSION_PRIVATE_KEY.
	SessionPublicKey string `mapstructure:"SESSION_PUBLIC_KEY"`
	// SessionIssuer is the iss claim of session cookies.
	SessionIssuer string `mapstructure:"SESSION_ISSUER"`
	// SessionCookieSecure sets the Secure attribute on the session cookie.
	SessionCookieSecure bool `mapstructure:"SESSION_COOKIE_SECURE"`
	// BcryptCost is the bcrypt cost factor (4–31); default 10.
	BcryptCost int `mapstructure:"BCRYPT_COST"`
	// Env is the application environment (e.g. "development", "production").
	Env string `mapstructure:"APP_ENV"`

	// OTLPEndpoint is the OpenTelemetry collector endpoint; empty installs no-op providers.
	OTLPEndpoint string `mapstructure:"OTEL_EXPORTER_OTLP_ENDPOINT"`
	// OTLPInsecure forces plaintext to the collector even for https endpoints.
	OTLPInsecure bool `mapstructure:"OTEL_EXPORTER_OTLP_INSECURE"`
	// ServiceName is the OTel service.name resource attribute.
	ServiceName string `mapstructure:"OTEL_SERVICE_NAME"`

	// TelemetryKafkaBrokers is a comma-separated list of Kafka broker addresses (e.g. "localhost:9092").
	// When set, the portal emits request and auth events to Kafka.
	TelemetryKafkaBrokers string `mapstructure:"KAFKA_BROKERS"`
	// TelemetryKafkaTopic is the Kafka topic for telemetry events.
	TelemetryKafkaTopic string `mapstructure:"TELEMETRY_KAFKA_TOPIC"`
	// KafkaGroupID is the consumer group of the telemetry worker.
	KafkaGroupID string `mapstructure:"KAFKA_GROUP_ID"`
}

// Load reads .env (if present), then builds and validates Config from the environment via Viper.
// Missing .env is ignored (e.g. in CI). Env vars override .env.
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigFile(".env")
	v.SetConfigType("env")
	_ = v.ReadInConfig()

	v.AutomaticEnv()

	v.SetDefault("HTTP_ADDR", ":3000")
	v.SetDefault("MAILER_ADDR", ":4444")
	v.SetDefault("DATABASE_URL", "")
	v.SetDefault("MAILER_URL", "http://localhost:4444")
	v.SetDefault("MAILER_TIMEOUT", "5s")
	v.SetDefault("OTP_TTL", "5m")
	v.SetDefault("OTP_MAX_ATTEMPTS", 5)
	v.SetDefault("SESSION_TTL", "30m")
	v.SetDefault("SESSION_PRIVATE_KEY", "")
	v.SetDefault("SESSION_PUBLIC_KEY", "")
	v.SetDefault("SESSION_ISSUER", "medsupply-portal")
	v.SetDefault("SESSION_COOKIE_SECURE", false)
	v.SetDefault("BCRYPT_COST", 10)
	v.SetDefault("APP_ENV", "")
	v.SetDefault("OTEL_EXPORTER_OTLP_ENDPOINT", "")
	v.SetDefault("OTEL_EXPORTER_OTLP_INSECURE", false)
	v.SetDefault("OTEL_SERVICE_NAME", "medsupply-portal")
	v.SetDefault("KAFKA_BROKERS", "")
	v.SetDefault("TELEMETRY_KAFKA_TOPIC", "medsupply-telemetry")
	v.SetDefault("KAFKA_GROUP_ID", "medsupply-telemetry-worker")

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	if cfg.HTTPAddr == "" {
		return nil, errors.New("config: HTTP_ADDR must be set")
	}
	if cfg.MailerURL == "" {
		return nil, errors.New("config: MAILER_URL must be set")
	}

	if (cfg.SessionPrivateKey == "") != (cfg.SessionPublicKey == "") {
		return nil, errors.New("config: SESSION_PRIVATE_KEY and SESSION_PUBLIC_KEY must be set together")
	}
	if cfg.Env == "production" && cfg.SessionPrivateKey == "" {
		return nil, errors.New("config: SESSION_PRIVATE_KEY is required when APP_ENV=production")
	}

	if cfg.BcryptCost == 0 {
		cfg.BcryptCost = 10
	}
	if cfg.BcryptCost < 4 || cfg.BcryptCost > 31 {
		return nil, errors.New("config: BCRYPT_COST must be between 4 and 31")
	}
	if cfg.OTPMaxAttempts <= 0 {
		cfg.OTPMaxAttempts = 5
	}

	return &cfg, nil
}

// OTPTTL parses OTPTTLValue. Returns 5m if unset or invalid.
func (c *Config) OTPTTL() time.Duration {
	return parseDurationOr(c.OTPTTLValue, 5*time.Minute)
}

// SessionTTL parses SessionTTLValue. Returns 30m if unset or invalid.
func (c *Config) SessionTTL() time.Duration {
	return parseDurationOr(c.SessionTTLValue, 30*time.Minute)
}

// RelayTimeout parses MailerTimeout. Returns 5s if unset or invalid.
func (c *Config) RelayTimeout() time.Duration {
	return parseDurationOr(c.MailerTimeout, 5*time.Second)
}

// TelemetryKafkaBrokersList returns Kafka broker addresses from the comma-separated config.
// An empty list disables the Kafka producer.
func (c *Config) TelemetryKafkaBrokersList() []string {
	if c == nil || c.TelemetryKafkaBrokers == "" {
		return nil
	}
	parts := strings.Split(c.TelemetryKafkaBrokers, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if s := strings.TrimSpace(p); s != "" {
			out = append(out, s)
		}
	}
	return out
}

func parseDurationOr(s string, def time.Duration) time.Duration {
	d, err := time.ParseDuration(s)
	if err != nil || d <= 0 {
		return def
	}
	return d
}
