// Package handler exposes the audit trail to administrators.
package handler

import (
	"context"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"medsupply/internal/audit/domain"
	"medsupply/internal/policy/engine"
	"medsupply/internal/server/middleware"
)

const (
	defaultLimit = 50
	maxLimit     = 500
)

// AuditReader lists recent audit entries.
type AuditReader interface {
	ListRecent(ctx context.Context, limit int) ([]*domain.AuditLog, error)
}

// Server serves GET /internal/api/audit behind middleware.RequireFullyAuthenticated.
type Server struct {
	repo   AuditReader
	policy engine.Evaluator
}

// NewServer returns an audit handler.
func NewServer(repo AuditReader, policy engine.Evaluator) *Server {
	return &Server{repo: repo, policy: policy}
}

// Register mounts the audit route on r.
func (s *Server) Register(r gin.IRoutes) {
	r.GET("/internal/api/audit", s.ListAuditLogs)
}

type auditLogView struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id,omitempty"`
	Action    string    `json:"action"`
	Resource  string    `json:"resource"`
	Outcome   string    `json:"outcome"`
	IP        string    `json:"ip"`
	Metadata  string    `json:"metadata,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// ListAuditLogs returns up to ?limit= entries (default 50, max 500), newest first. Admin only.
func (s *Server) ListAuditLogs(c *gin.Context) {
	ac, ok := middleware.AuthFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication required", "redirect": "/login"})
		return
	}
	ctx := c.Request.Context()
	allowed, err := s.policy.Allow(ctx, engine.AccessRequest{Caller: ac.User, Action: engine.ActionAuditList})
	if err != nil {
		log.Printf("audit: access policy: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}
	if !allowed {
		c.JSON(http.StatusForbidden, gin.H{"error": "forbidden"})
		return
	}
	limit := defaultLimit
	if v := c.Query("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be a positive integer"})
			return
		}
		limit = min(n, maxLimit)
	}
	logs, err := s.repo.ListRecent(ctx, limit)
	if err != nil {
		log.Printf("audit: list: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}
	out := make([]auditLogView, 0, len(logs))
	for _, l := range logs {
		out = append(out, auditLogView{
			ID:        l.ID,
			UserID:    l.UserID,
			Action:    l.Action,
			Resource:  l.Resource,
			Outcome:   l.Outcome,
			IP:        l.IP,
			Metadata:  l.Metadata,
			CreatedAt: l.CreatedAt,
		})
	}
	c.JSON(http.StatusOK, gin.H{"audit_logs": out})
}
