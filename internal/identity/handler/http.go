// Package handler exposes registration, login, OTP verification and logout over HTTP.
package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"medsupply/internal/identity/service"
	"medsupply/internal/server/middleware"
	sessiondomain "medsupply/internal/session/domain"
	"medsupply/internal/telemetry"
	telemetrydomain "medsupply/internal/telemetry/domain"
	userdomain "medsupply/internal/user/domain"
)

// Auth is the auth service surface used by the handler (e.g. *service.AuthService).
type Auth interface {
	Register(ctx context.Context, hospitalName, email, password string) (*userdomain.User, error)
	Login(ctx context.Context, email, password string) (*service.LoginResult, error)
	VerifyOTP(ctx context.Context, sessionID, code string) (*userdomain.User, error)
	SessionState(ctx context.Context, sessionID string) (sessiondomain.State, error)
	Logout(ctx context.Context, sessionID string) error
}

// Server serves the authentication routes.
type Server struct {
	auth         Auth
	tokens       middleware.SessionTokens
	emitter      telemetry.EventEmitter
	cookieSecure bool
}

// NewServer returns an auth handler. emitter may be nil.
func NewServer(auth Auth, tokens middleware.SessionTokens, emitter telemetry.EventEmitter, cookieSecure bool) *Server {
	return &Server{auth: auth, tokens: tokens, emitter: emitter, cookieSecure: cookieSecure}
}

// Register mounts the auth routes on r.
func (s *Server) Register(r gin.IRoutes) {
	r.POST("/register", s.RegisterAccount)
	r.POST("/login", s.Login)
	r.POST("/verify-otp", s.VerifyOTP)
	r.GET("/logout", s.Logout)
	r.POST("/logout", s.Logout)
	r.GET("/session", s.State)
}

type registerReq struct {
	HospitalName string `form:"hospital_name" json:"hospital_name"`
	Email        string `form:"email" json:"email"`
	Password     string `form:"password" json:"password"`
}

type loginReq struct {
	Email    string `form:"email" json:"email"`
	Password string `form:"password" json:"password"`
}

type verifyOTPReq struct {
	OTP string `form:"otp" json:"otp"`
}

// RegisterAccount creates a hospital account and redirects to /login.
func (s *Server) RegisterAccount(c *gin.Context) {
	var req registerReq
	if err := c.ShouldBind(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	user, err := s.auth.Register(c.Request.Context(), req.HospitalName, req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrValidation):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		case errors.Is(err, service.ErrDuplicateAddress):
			c.JSON(http.StatusConflict, gin.H{"error": "email already registered"})
		default:
			s.internalError(c, "register", err)
		}
		return
	}
	s.setIdentity(c, user.ID, "")
	s.emit(telemetrydomain.EventRegistered, user.ID, "", nil)
	c.Redirect(http.StatusSeeOther, "/login")
}

// Login checks the password, sends a code and redirects to /verify-otp with a fresh
// session cookie. Any session carried by the request is destroyed first.
func (s *Server) Login(c *gin.Context) {
	var req loginReq
	if err := c.ShouldBind(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	ctx := c.Request.Context()
	if prior := middleware.SessionID(c, s.tokens); prior != "" {
		if err := s.auth.Logout(ctx, prior); err != nil {
			log.Printf("auth: drop prior session: %v", err)
		}
	}
	res, err := s.auth.Login(ctx, req.Email, req.Password)
	if err != nil {
		middleware.ClearSessionCookie(c, s.cookieSecure)
		switch {
		case errors.Is(err, service.ErrInvalidCredentials):
			s.emit(telemetrydomain.EventLoginFailed, "", "", map[string]string{"reason": "invalid_credentials"})
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
		case errors.Is(err, service.ErrDeliveryFailure):
			log.Printf("auth: login code not delivered: %v", err)
			s.emit(telemetrydomain.EventLoginFailed, "", "", map[string]string{"reason": "delivery_failure"})
			c.JSON(http.StatusBadGateway, gin.H{"error": "could not deliver verification code, try again"})
		default:
			s.internalError(c, "login", err)
		}
		return
	}
	token, expiresAt, err := s.tokens.IssueSession(res.SessionID)
	if err != nil {
		_ = s.auth.Logout(ctx, res.SessionID)
		s.internalError(c, "issue session token", err)
		return
	}
	middleware.SetSessionCookie(c, token, expiresAt, s.cookieSecure)
	s.setIdentity(c, res.UserID, res.SessionID)
	s.emit(telemetrydomain.EventLoginSucceeded, res.UserID, res.SessionID, nil)
	c.Redirect(http.StatusSeeOther, "/verify-otp")
}

// VerifyOTP promotes the cookie's session when the submitted code matches and
// redirects to /dashboard.
func (s *Server) VerifyOTP(c *gin.Context) {
	var req verifyOTPReq
	if err := c.ShouldBind(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	sid := middleware.SessionID(c, s.tokens)
	if sid == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication required", "redirect": "/login"})
		return
	}
	user, err := s.auth.VerifyOTP(c.Request.Context(), sid, req.OTP)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrTooManyAttempts):
			middleware.ClearSessionCookie(c, s.cookieSecure)
			s.emit(telemetrydomain.EventOTPFailed, "", sid, map[string]string{"reason": "too_many_attempts"})
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid or expired code", "redirect": "/login"})
		case errors.Is(err, service.ErrInvalidOrExpiredOTP), errors.Is(err, service.ErrNotAuthenticated):
			s.emit(telemetrydomain.EventOTPFailed, "", sid, nil)
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid or expired code"})
		default:
			s.internalError(c, "verify otp", err)
		}
		return
	}
	s.setIdentity(c, user.ID, sid)
	s.emit(telemetrydomain.EventOTPVerified, user.ID, sid, nil)
	c.Redirect(http.StatusSeeOther, "/dashboard")
}

// Logout destroys the cookie's session, clears the cookie and redirects to /.
func (s *Server) Logout(c *gin.Context) {
	sid := middleware.SessionID(c, s.tokens)
	if sid != "" {
		if err := s.auth.Logout(c.Request.Context(), sid); err != nil {
			log.Printf("auth: logout session: %v", err)
		}
		s.emit(telemetrydomain.EventLogout, "", sid, nil)
	}
	middleware.ClearSessionCookie(c, s.cookieSecure)
	c.Redirect(http.StatusSeeOther, "/")
}

// State reports how far the cookie's session has progressed.
func (s *Server) State(c *gin.Context) {
	sid := middleware.SessionID(c, s.tokens)
	state, err := s.auth.SessionState(c.Request.Context(), sid)
	if err != nil {
		s.internalError(c, "session state", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"state": state.String()})
}

// setIdentity exposes the caller to the audit and telemetry middleware, which read
// the request context after the handler returns.
func (s *Server) setIdentity(c *gin.Context, userID, sessionID string) {
	c.Request = c.Request.WithContext(middleware.WithIdentity(c.Request.Context(), userID, sessionID))
}

func (s *Server) emit(eventType, userID, sessionID string, meta map[string]string) {
	if s.emitter == nil {
		return
	}
	var raw json.RawMessage
	if len(meta) > 0 {
		raw, _ = json.Marshal(meta)
	}
	telemetry.EmitAsync(s.emitter, &telemetrydomain.Event{
		UserID:    userID,
		SessionID: sessionID,
		EventType: eventType,
		Source:    "auth_handler",
		Metadata:  raw,
		CreatedAt: time.Now().UTC(),
	})
}

func (s *Server) internalError(c *gin.Context, op string, err error) {
	log.Printf("auth: %s: %v", op, err)
	c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
}
