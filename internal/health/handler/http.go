package handler

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

const checkTimeout = 2 * time.Second

// Pinger checks database connectivity (e.g. *sql.DB).
type Pinger interface {
	PingContext(ctx context.Context) error
}

// PolicyChecker checks that the policy engine can evaluate (e.g. *engine.OPAEvaluator).
type PolicyChecker interface {
	HealthCheck(ctx context.Context) error
}

// Server answers readiness probes for load balancers and CI.
type Server struct {
	pinger        Pinger
	policyChecker PolicyChecker
}

// NewServer returns a health server. pinger and policyChecker may be nil; the
// corresponding check is then skipped.
func NewServer(pinger Pinger, policyChecker PolicyChecker) *Server {
	return &Server{pinger: pinger, policyChecker: policyChecker}
}

// Register mounts GET /healthz.
func (s *Server) Register(r gin.IRoutes) {
	r.GET("/healthz", s.HealthCheck)
}

// HealthCheck answers 200 {"status":"serving"} or 503 {"status":"not_serving"}.
func (s *Server) HealthCheck(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), checkTimeout)
	defer cancel()
	if s.pinger != nil {
		if err := s.pinger.PingContext(ctx); err != nil {
			log.Printf("health: database ping failed: %v", err)
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "not_serving"})
			return
		}
	}
	if s.policyChecker != nil {
		if err := s.policyChecker.HealthCheck(ctx); err != nil {
			log.Printf("health: policy engine check failed: %v", err)
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "not_serving"})
			return
		}
	}
	c.JSON(http.StatusOK, gin.H{"status": "serving"})
}
