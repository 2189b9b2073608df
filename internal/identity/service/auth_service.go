package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"

	"medsupply/internal/mfa"
	"medsupply/internal/mfa/relay"
	"medsupply/internal/security"
	sessiondomain "medsupply/internal/session/domain"
	userdomain "medsupply/internal/user/domain"
	userrepo "medsupply/internal/user/repository"
)

// Sentinel errors for the auth service; handlers map them to HTTP statuses.
var (
	ErrInvalidCredentials  = errors.New("invalid credentials")
	ErrInvalidOrExpiredOTP = errors.New("invalid or expired code")
	ErrDeliveryFailure     = errors.New("code delivery failed")
	ErrDuplicateAddress    = errors.New("email already registered")
	ErrValidation          = errors.New("validation failure")
	ErrNotAuthenticated    = errors.New("not authenticated")
	// ErrTooManyAttempts is an ErrInvalidOrExpiredOTP that also destroyed the session.
	ErrTooManyAttempts = fmt.Errorf("%w: too many attempts", ErrInvalidOrExpiredOTP)
)

const (
	defaultOTPTTL         = 5 * time.Minute
	defaultSessionTTL     = 30 * time.Minute
	defaultMaxOTPAttempts = 5
)

// UserRepo is the minimal user repository needed by the auth service.
type UserRepo interface {
	GetByID(ctx context.Context, id string) (*userdomain.User, error)
	GetByEmail(ctx context.Context, email string) (*userdomain.User, error)
	Create(ctx context.Context, u *userdomain.User) error
}

// SessionRepo is the minimal session repository needed by the auth service.
type SessionRepo interface {
	GetByID(ctx context.Context, id string) (*sessiondomain.Session, error)
	Create(ctx context.Context, s *sessiondomain.Session) error
	Update(ctx context.Context, s *sessiondomain.Session) error
	Delete(ctx context.Context, id string) error
}

// Settings tunes code and session lifetimes. Zero values use the defaults.
type Settings struct {
	OTPTTL         time.Duration
	SessionTTL     time.Duration
	MaxOTPAttempts int
}

// LoginResult is returned by a successful password check.
type LoginResult struct {
	SessionID    string
	UserID       string
	OTPExpiresAt time.Time
}

// AuthContext is the identity attached to a fully authenticated request.
type AuthContext struct {
	Session *sessiondomain.Session
	User    *userdomain.User
}

// AuthService drives a session through Anonymous, PasswordVerified and FullyAuthenticated.
type AuthService struct {
	userRepo    UserRepo
	sessionRepo SessionRepo
	relay       relay.Relay
	hasher      *security.Hasher
	settings    Settings
	locks       *keyedMutex
	nowF        func() time.Time
}

// NewAuthService returns an AuthService with the given dependencies.
func NewAuthService(userRepo UserRepo, sessionRepo SessionRepo, r relay.Relay, hasher *security.Hasher, settings Settings) *AuthService {
	if settings.OTPTTL <= 0 {
		settings.OTPTTL = defaultOTPTTL
	}
	if settings.SessionTTL <= 0 {
		settings.SessionTTL = defaultSessionTTL
	}
	if settings.MaxOTPAttempts <= 0 {
		settings.MaxOTPAttempts = defaultMaxOTPAttempts
	}
	return &AuthService{
		userRepo:    userRepo,
		sessionRepo: sessionRepo,
		relay:       r,
		hasher:      hasher,
		settings:    settings,
		locks:       newKeyedMutex(),
		nowF:        func() time.Time { return time.Now().UTC() },
	}
}

// Register creates a hospital account. The email is trimmed and lower-cased before storage.
func (s *AuthService) Register(ctx context.Context, hospitalName, email, password string) (*userdomain.User, error) {
	email = normalizeEmail(email)
	hospitalName = strings.TrimSpace(hospitalName)
	if err := validateRegistration(hospitalName, email, password); err != nil {
		return nil, err
	}
	existing, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrDuplicateAddress
	}
	hashed, err := s.hasher.Hash([]byte(password))
	if err != nil {
		return nil, err
	}
	user := &userdomain.User{
		ID:           uuid.New().String(),
		HospitalName: hospitalName,
		Email:        email,
		PasswordHash: hashed,
		Role:         userdomain.RoleHospital,
		CreatedAt:    s.nowF(),
	}
	if err := user.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidation, err)
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, userrepo.ErrConflict) {
			return nil, ErrDuplicateAddress
		}
		return nil, err
	}
	return user, nil
}

// Login checks the password, opens a PasswordVerified session and delivers a fresh code.
// Unknown addresses and wrong passwords both return ErrInvalidCredentials after one bcrypt comparison.
func (s *AuthService) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	email = normalizeEmail(email)
	if email == "" || password == "" {
		return nil, ErrInvalidCredentials
	}
	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if user == nil {
		_ = s.hasher.CompareMissing([]byte(password))
		return nil, ErrInvalidCredentials
	}
	if err := s.hasher.Compare(user.PasswordHash, []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	code, err := mfa.GenerateOTP()
	if err != nil {
		return nil, err
	}
	now := s.nowF()
	otpExpiresAt := now.Add(s.settings.OTPTTL)
	sess := &sessiondomain.Session{
		ID:               uuid.New().String(),
		UserID:           user.ID,
		PasswordVerified: true,
		OTPHash:          mfa.HashOTP(code),
		OTPExpiresAt:     &otpExpiresAt,
		CreatedAt:        now,
		LastSeenAt:       now,
		ExpiresAt:        now.Add(s.settings.SessionTTL),
	}
	if err := s.sessionRepo.Create(ctx, sess); err != nil {
		return nil, err
	}

	msg := relay.Message{Email: user.Email, HospitalName: user.HospitalName, OTP: code}
	if err := s.relay.SendOTP(ctx, msg); err != nil {
		log.Printf("auth: otp delivery for session %s failed: %v", sess.ID, err)
		if delErr := s.sessionRepo.Delete(ctx, sess.ID); delErr != nil {
			log.Printf("auth: delete undelivered session %s: %v", sess.ID, delErr)
		}
		return nil, fmt.Errorf("%w: %v", ErrDeliveryFailure, err)
	}
	return &LoginResult{SessionID: sess.ID, UserID: user.ID, OTPExpiresAt: otpExpiresAt}, nil
}

// VerifyOTP checks code against the session's outstanding code and promotes the session on success.
// A session that is already fully authenticated accepts any re-submission without change.
// After MaxOTPAttempts failures the session is destroyed and ErrTooManyAttempts is returned.
func (s *AuthService) VerifyOTP(ctx context.Context, sessionID, code string) (*userdomain.User, error) {
	if sessionID == "" {
		return nil, ErrInvalidOrExpiredOTP
	}
	unlock := s.locks.Lock(sessionID)
	defer unlock()

	sess, err := s.sessionRepo.GetByID(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	now := s.nowF()
	switch sess.State(now) {
	case sessiondomain.Anonymous:
		return nil, ErrInvalidOrExpiredOTP
	case sessiondomain.FullyAuthenticated:
		return s.sessionUser(ctx, sess)
	}

	if !mfa.Check(strings.TrimSpace(code), sess.OTPHash, sess.OTPExpiresAt, now) {
		sess.FailedOTPAttempts++
		if sess.FailedOTPAttempts >= s.settings.MaxOTPAttempts {
			if err := s.sessionRepo.Delete(ctx, sess.ID); err != nil {
				return nil, err
			}
			return nil, ErrTooManyAttempts
		}
		if err := s.sessionRepo.Update(ctx, sess); err != nil {
			return nil, err
		}
		return nil, ErrInvalidOrExpiredOTP
	}

	sess.MFAVerified = true
	sess.ClearOTP()
	sess.FailedOTPAttempts = 0
	sess.LastSeenAt = now
	sess.ExpiresAt = now.Add(s.settings.SessionTTL)
	if err := s.sessionRepo.Update(ctx, sess); err != nil {
		return nil, err
	}
	return s.sessionUser(ctx, sess)
}

// Authenticate resolves a session ID to a fully authenticated identity, re-reading the user.
// Every successful call slides the idle expiry forward.
func (s *AuthService) Authenticate(ctx context.Context, sessionID string) (*AuthContext, error) {
	if sessionID == "" {
		return nil, ErrNotAuthenticated
	}
	unlock := s.locks.Lock(sessionID)
	defer unlock()

	sess, err := s.sessionRepo.GetByID(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	now := s.nowF()
	if sess.State(now) != sessiondomain.FullyAuthenticated {
		return nil, ErrNotAuthenticated
	}
	user, err := s.userRepo.GetByID(ctx, sess.UserID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		if delErr := s.sessionRepo.Delete(ctx, sess.ID); delErr != nil {
			log.Printf("auth: delete session %s of missing user: %v", sess.ID, delErr)
		}
		return nil, ErrNotAuthenticated
	}
	sess.LastSeenAt = now
	sess.ExpiresAt = now.Add(s.settings.SessionTTL)
	if err := s.sessionRepo.Update(ctx, sess); err != nil {
		return nil, err
	}
	return &AuthContext{Session: sess, User: user}, nil
}

// SessionState reports the stage of sessionID without changing it. Unknown IDs are Anonymous.
func (s *AuthService) SessionState(ctx context.Context, sessionID string) (sessiondomain.State, error) {
	if sessionID == "" {
		return sessiondomain.Anonymous, nil
	}
	sess, err := s.sessionRepo.GetByID(ctx, sessionID)
	if err != nil {
		return sessiondomain.Anonymous, err
	}
	return sess.State(s.nowF()), nil
}

// Logout destroys the session. Unknown or empty IDs are a no-op.
func (s *AuthService) Logout(ctx context.Context, sessionID string) error {
	if sessionID == "" {
		return nil
	}
	unlock := s.locks.Lock(sessionID)
	defer unlock()
	return s.sessionRepo.Delete(ctx, sessionID)
}

func (s *AuthService) sessionUser(ctx context.Context, sess *sessiondomain.Session) (*userdomain.User, error) {
	user, err := s.userRepo.GetByID(ctx, sess.UserID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrNotAuthenticated
	}
	return user, nil
}
