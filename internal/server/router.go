// Package server assembles the portal's HTTP router.
package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"medsupply/internal/audit"
	audithandler "medsupply/internal/audit/handler"
	auditrepo "medsupply/internal/audit/repository"
	healthhandler "medsupply/internal/health/handler"
	identityhandler "medsupply/internal/identity/handler"
	identityservice "medsupply/internal/identity/service"
	orderhandler "medsupply/internal/order/handler"
	"medsupply/internal/policy/engine"
	"medsupply/internal/server/middleware"
	"medsupply/internal/telemetry"
	userhandler "medsupply/internal/user/handler"
)

// Deps holds the portal's dependencies. Optional fields may be nil.
type Deps struct {
	// Auth drives register, login, OTP verification, logout and the request guard. Required.
	Auth *identityservice.AuthService
	// Tokens signs and validates session cookies (e.g. *security.TokenProvider). Required.
	Tokens middleware.SessionTokens
	// Users backs /profile and the internal account lookup. Required.
	Users userhandler.UserReader
	// Orders backs the dashboard and the public feed. Required.
	Orders orderhandler.OrderReader
	// Policy decides internal account lookups and audit listing. Required.
	Policy engine.Evaluator
	// AuditRepo stores the audit trail. If nil, requests are not audited and the audit listing is not mounted.
	AuditRepo auditrepo.Repository
	// Emitter receives telemetry events. If nil, no events are emitted.
	Emitter telemetry.EventEmitter
	// TracerProvider and MeterProvider instrument requests. If nil, requests are not traced or measured.
	TracerProvider trace.TracerProvider
	MeterProvider  metric.MeterProvider
	// HealthPinger is used by /healthz for readiness (e.g. *sql.DB). If nil, the DB ping is skipped.
	HealthPinger healthhandler.Pinger
	// HealthPolicyChecker is used by /healthz (e.g. OPA evaluator). If nil, the policy check is skipped.
	HealthPolicyChecker healthhandler.PolicyChecker
	// CookieSecure sets the Secure attribute on the session cookie.
	CookieSecure bool
}

// unobservedRoutes are not audited, traced or emitted.
var unobservedRoutes = map[string]bool{"/healthz": true}

// NewRouter returns the portal router.
//
// Route → handler mapping:
//   - /healthz                              → internal/health/handler
//   - /register, /login, /verify-otp, /logout, /session → internal/identity/handler
//   - /dashboard, /api/public-orders        → internal/order/handler (FullyAuthenticated)
//   - /profile, /internal/api/account/details → internal/user/handler (FullyAuthenticated)
//   - /internal/api/audit                   → internal/audit/handler (FullyAuthenticated, admin)
func NewRouter(deps Deps) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), middleware.RequestIP())
	r.Use(middleware.Telemetry(deps.Emitter, deps.TracerProvider, deps.MeterProvider, unobservedRoutes))
	if deps.AuditRepo != nil {
		r.Use(middleware.Audit(audit.NewLogger(deps.AuditRepo, middleware.ClientIPFromContext), unobservedRoutes))
	}

	healthhandler.NewServer(deps.HealthPinger, deps.HealthPolicyChecker).Register(r)

	r.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"service": "medsupply", "login": "/login", "register": "/register"})
	})
	r.GET("/internal", func(c *gin.Context) {
		c.Redirect(http.StatusFound, "/internal/api/")
	})
	forbidden := func(c *gin.Context) { c.JSON(http.StatusForbidden, gin.H{"error": "forbidden"}) }
	r.GET("/internal/api/", forbidden)
	r.GET("/internal/api/account", forbidden)

	identityhandler.NewServer(deps.Auth, deps.Tokens, deps.Emitter, deps.CookieSecure).Register(r)

	protected := r.Group("/", middleware.RequireFullyAuthenticated(deps.Tokens, deps.Auth))
	orderhandler.NewServer(deps.Orders).Register(protected)
	userhandler.NewServer(deps.Users, deps.Policy).Register(protected)
	if deps.AuditRepo != nil {
		audithandler.NewServer(deps.AuditRepo, deps.Policy).Register(protected)
	}
	return r
}
