// Package handler exposes the mail-simulation service over HTTP.
package handler

import (
	"log"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"medsupply/internal/inbox"
)

// Server serves POST /send-otp and GET /inbox.
type Server struct {
	store inbox.Store
}

// NewServer returns a mail service handler backed by store.
func NewServer(store inbox.Store) *Server {
	return &Server{store: store}
}

// Register mounts the mail service routes on r.
func (s *Server) Register(r gin.IRoutes) {
	r.POST("/send-otp", s.SendOTP)
	r.GET("/inbox", s.Inbox)
}

type sendOTPReq struct {
	Email        string `json:"email" binding:"required"`
	HospitalName string `json:"hospital_name"`
	OTP          string `json:"otp" binding:"required"`
}

// SendOTP records an OTP mail for the recipient.
func (s *Server) SendOTP(c *gin.Context) {
	var req sendOTPReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "email and otp are required"})
		return
	}
	email := strings.ToLower(strings.TrimSpace(req.Email))
	s.store.Add(c.Request.Context(), inbox.Message{Email: email, HospitalName: req.HospitalName, OTP: req.OTP})
	// The mail service exists to display codes; it is the one place they are logged.
	log.Printf("mailer: OTP for %s: %s", email, req.OTP)
	c.JSON(http.StatusOK, gin.H{"status": "delivered"})
}

// Inbox lists the messages delivered to ?email=.
func (s *Server) Inbox(c *gin.Context) {
	email := strings.ToLower(strings.TrimSpace(c.Query("email")))
	if email == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "provide ?email=your_email"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"email":    email,
		"messages": s.store.List(c.Request.Context(), email),
	})
}
