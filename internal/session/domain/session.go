package domain

import "time"

// State is the authentication stage of a browser session.
type State int

const (
	// Anonymous: no session, or a session that is expired or unknown.
	Anonymous State = iota
	// PasswordVerified: the password matched and an OTP is outstanding.
	PasswordVerified
	// FullyAuthenticated: password and OTP both verified.
	FullyAuthenticated
)

func (s State) String() string {
	switch s {
	case PasswordVerified:
		return "password_verified"
	case FullyAuthenticated:
		return "fully_authenticated"
	default:
		return "anonymous"
	}
}

// Session is the server-side record behind a session cookie.
// It carries only the user ID; the user record is re-read on every protected request.
type Session struct {
	ID                string
	UserID            string
	PasswordVerified  bool
	MFAVerified       bool
	OTPHash           string     // SHA-256 hex of the outstanding code; empty once consumed
	OTPExpiresAt      *time.Time // nil when no code is outstanding
	FailedOTPAttempts int
	CreatedAt         time.Time
	LastSeenAt        time.Time
	ExpiresAt         time.Time
}

// State returns the session's stage at now. Expired sessions are Anonymous.
func (s *Session) State(now time.Time) State {
	if s == nil || s.UserID == "" || !now.Before(s.ExpiresAt) {
		return Anonymous
	}
	if s.PasswordVerified && s.MFAVerified {
		return FullyAuthenticated
	}
	if s.PasswordVerified {
		return PasswordVerified
	}
	return Anonymous
}

// ClearOTP drops the outstanding code so it cannot be reused.
func (s *Session) ClearOTP() {
	s.OTPHash = ""
	s.OTPExpiresAt = nil
}
