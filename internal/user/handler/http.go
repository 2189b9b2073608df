// Package handler serves account records to authenticated callers.
package handler

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"medsupply/internal/policy/engine"
	"medsupply/internal/server/middleware"
	"medsupply/internal/user/domain"
)

// UserReader loads users by ID.
type UserReader interface {
	GetByID(ctx context.Context, id string) (*domain.User, error)
}

// Server serves /profile and the internal account lookup. Routes must sit behind
// middleware.RequireFullyAuthenticated.
type Server struct {
	users  UserReader
	policy engine.Evaluator
}

// NewServer returns a user handler.
func NewServer(users UserReader, policy engine.Evaluator) *Server {
	return &Server{users: users, policy: policy}
}

// Register mounts the user routes on r.
func (s *Server) Register(r gin.IRoutes) {
	r.GET("/profile", s.Profile)
	r.GET("/internal/api/account/details", s.AccountDetails)
}

// UserView is a user record without credentials.
type UserView struct {
	ID           string    `json:"id"`
	HospitalName string    `json:"hospital_name"`
	Email        string    `json:"email"`
	Role         string    `json:"role"`
	CreatedAt    time.Time `json:"created_at"`
}

// NewUserView copies the public fields of u.
func NewUserView(u *domain.User) UserView {
	return UserView{
		ID:           u.ID,
		HospitalName: u.HospitalName,
		Email:        u.Email,
		Role:         string(u.Role),
		CreatedAt:    u.CreatedAt,
	}
}

// Profile returns the caller's own record.
func (s *Server) Profile(c *gin.Context) {
	ac, ok := middleware.AuthFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication required", "redirect": "/login"})
		return
	}
	c.JSON(http.StatusOK, NewUserView(ac.User))
}

// AccountDetails returns the record for ?user_id= when the access policy allows it:
// support and admin accounts may read any record, hospital accounts only their own.
func (s *Server) AccountDetails(c *gin.Context) {
	ac, ok := middleware.AuthFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication required", "redirect": "/login"})
		return
	}
	targetID := c.Query("user_id")
	if targetID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"status": "error", "message": "Missing required parameter: user_id"})
		return
	}
	ctx := c.Request.Context()
	allowed, err := s.policy.Allow(ctx, engine.AccessRequest{Caller: ac.User, Action: engine.ActionAccountRead, TargetUserID: targetID})
	if err != nil {
		log.Printf("user: access policy: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"status": "error", "message": "internal error"})
		return
	}
	if !allowed {
		c.JSON(http.StatusForbidden, gin.H{"status": "error", "message": "Forbidden"})
		return
	}
	user, err := s.users.GetByID(ctx, targetID)
	if err != nil {
		log.Printf("user: get %s: %v", targetID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"status": "error", "message": "internal error"})
		return
	}
	if user == nil {
		c.JSON(http.StatusNotFound, gin.H{"status": "error", "message": "User not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "success", "data": NewUserView(user)})
}
