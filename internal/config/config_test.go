package config

import (
	"os"
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	os.Clearenv()

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.HTTPAddr != ":3000" {
		t.Errorf("HTTPAddr = %q, want %q", cfg.HTTPAddr, ":3000")
	}
	if cfg.MailerAddr != ":4444" {
		t.Errorf("MailerAddr = %q, want %q", cfg.MailerAddr, ":4444")
	}
	if cfg.MailerURL != "http://localhost:4444" {
		t.Errorf("MailerURL = %q, want default", cfg.MailerURL)
	}
	if cfg.BcryptCost != 10 {
		t.Errorf("BcryptCost = %d, want 10", cfg.BcryptCost)
	}
	if cfg.OTPMaxAttempts != 5 {
		t.Errorf("OTPMaxAttempts = %d, want 5", cfg.OTPMaxAttempts)
	}
	if cfg.OTPTTL() != 5*time.Minute {
		t.Errorf("OTPTTL = %v, want 5m", cfg.OTPTTL())
	}
	if cfg.SessionTTL() != 30*time.Minute {
		t.Errorf("SessionTTL = %v, want 30m", cfg.SessionTTL())
	}
	if cfg.RelayTimeout() != 5*time.Second {
		t.Errorf("RelayTimeout = %v, want 5s", cfg.RelayTimeout())
	}
	if cfg.SessionIssuer != "medsupply-portal" {
		t.Errorf("SessionIssuer = %q, want medsupply-portal", cfg.SessionIssuer)
	}
	if cfg.DatabaseURL != "" {
		t.Errorf("DatabaseURL = %q, want empty", cfg.DatabaseURL)
	}
	if cfg.KafkaGroupID != "medsupply-telemetry-worker" {
		t.Errorf("KafkaGroupID = %q, want medsupply-telemetry-worker", cfg.KafkaGroupID)
	}
}

func TestLoad_EnvVarOverride(t *testing.T) {
	os.Clearenv()
	os.Setenv("HTTP_ADDR", ":9090")
	os.Setenv("MAILER_URL", "http://mailer:4444")
	os.Setenv("BCRYPT_COST", "12")
	os.Setenv("OTP_MAX_ATTEMPTS", "3")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.HTTPAddr != ":9090" {
		t.Errorf("HTTPAddr = %q, want %q", cfg.HTTPAddr, ":9090")
	}
	if cfg.MailerURL != "http://mailer:4444" {
		t.Errorf("MailerURL = %q, want override", cfg.MailerURL)
	}
	if cfg.BcryptCost != 12 {
		t.Errorf("BcryptCost = %d, want 12", cfg.BcryptCost)
	}
	if cfg.OTPMaxAttempts != 3 {
		t.Errorf("OTPMaxAttempts = %d, want 3", cfg.OTPMaxAttempts)
	}
}

func TestLoad_BcryptCostRange(t *testing.T) {
	testCases := []struct {
		name  string
		value string
		want  int
		err   bool
	}{
		{"valid min", "4", 4, false},
		{"valid max", "31", 31, false},
		{"too low", "3", 0, true},
		{"too high", "32", 0, true},
		{"zero", "0", 10, false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			os.Clearenv()
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

func TestLoad_SessionKeysMustBePaired(t *testing.T) {
	os.Clearenv()
	os.Setenv("SESSION_PRIVATE_KEY", "/tmp/key.pem")

	if _, err := Load(); err == nil {
		t.Fatal("Load should fail when only SESSION_PRIVATE_KEY is set")
	}
}

func TestLoad_ProductionRequiresSessionKey(t *testing.T) {
	os.Clearenv()
	os.Setenv("APP_ENV", "production")

	cfg, err := Load()
	if err == nil {
		t.Fatal("Load should fail in production without a session key")
	}
	if cfg != nil {
		t.Error("Load should return nil config on error")
	}
}

func TestDurations_InvalidFallBackToDefaults(t *testing.T) {
	testCases := []struct {
		name  string
		key   string
		value string
		get   func(*Config) time.Duration
		want  time.Duration
	}{
		{"otp invalid", "OTP_TTL", "invalid", (*Config).OTPTTL, 5 * time.Minute},
		{"otp zero", "OTP_TTL", "0", (*Config).OTPTTL, 5 * time.Minute},
		{"otp valid", "OTP_TTL", "2m", (*Config).OTPTTL, 2 * time.Minute},
		{"session negative", "SESSION_TTL", "-1h", (*Config).SessionTTL, 30 * time.Minute},
		{"session valid", "SESSION_TTL", "1h", (*Config).SessionTTL, time.Hour},
		{"relay invalid", "MAILER_TIMEOUT", "soon", (*Config).RelayTimeout, 5 * time.Second},
		{"relay valid", "MAILER_TIMEOUT", "750ms", (*Config).RelayTimeout, 750 * time.Millisecond},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			os.Clearenv()
			os.Setenv(tc.key, tc.value)
			cfg, err := Load()
			if err != nil {
				t.Fatalf("Load: %v", err)
			}
			if got := tc.get(cfg); got != tc.want {
				t.Errorf("%s = %v, want %v", tc.key, got, tc.want)
			}
		})
	}
}

func TestTelemetryKafkaBrokersList(t *testing.T) {
	cfg := &Config{TelemetryKafkaBrokers: " a:9092, ,b:9092 "}
	got := cfg.TelemetryKafkaBrokersList()
	if len(got) != 2 || got[0] != "a:9092" || got[1] != "b:9092" {
		t.Errorf("brokers = %v, want [a:9092 b:9092]", got)
	}
	var nilCfg *Config
	if nilCfg.TelemetryKafkaBrokersList() != nil {
		t.Error("nil config should return nil brokers")
	}
}
