package domain

import (
	"encoding/json"
	"time"
)

// Event types emitted by the portal.
const (
	EventHTTPRequest    = "http_request"
	EventRegistered     = "registered"
	EventLoginSucceeded = "login_succeeded"
	EventLoginFailed    = "login_failed"
	EventOTPVerified    = "otp_verified"
	EventOTPFailed      = "otp_failed"
	EventLogout         = "logout"
)

// Event is a telemetry record. UserID and SessionID are empty for anonymous requests.
// OTP codes and passwords never appear in Metadata.
type Event struct {
	UserID    string          `json:"user_id,omitempty"`
	SessionID string          `json:"session_id,omitempty"`
	EventType string          `json:"event_type"`
	Source    string          `json:"source"`
	Metadata  json.RawMessage `json:"metadata,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
}
