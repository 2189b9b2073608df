// Package handler serves the order dashboard and the public order feed.
package handler

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"medsupply/internal/order/domain"
	"medsupply/internal/order/repository"
	"medsupply/internal/server/middleware"
)

// OrderReader is the read side of the order repository.
type OrderReader interface {
	ListByUser(ctx context.Context, userID string) ([]*domain.Order, error)
	ListPublic(ctx context.Context, limit int) ([]*domain.PublicOrder, error)
}

// Server serves /dashboard and /api/public-orders. Routes must sit behind
// middleware.RequireFullyAuthenticated.
type Server struct {
	orders OrderReader
}

// NewServer returns an order handler.
func NewServer(orders OrderReader) *Server {
	return &Server{orders: orders}
}

// Register mounts the order routes on r.
func (s *Server) Register(r gin.IRoutes) {
	r.GET("/dashboard", s.Dashboard)
	r.GET("/api/public-orders", s.PublicOrders)
}

type orderView struct {
	ID             string    `json:"id"`
	MedicationName string    `json:"medication_name"`
	Quantity       int       `json:"quantity"`
	Status         string    `json:"status"`
	RequestedAt    time.Time `json:"requested_at"`
	BatchNumber    string    `json:"batch_number"`
}

// Dashboard lists the caller's orders with total, pending and shipped counts.
func (s *Server) Dashboard(c *gin.Context) {
	ac, ok := middleware.AuthFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication required", "redirect": "/login"})
		return
	}
	orders, err := s.orders.ListByUser(c.Request.Context(), ac.User.ID)
	if err != nil {
		log.Printf("order: list for %s: %v", ac.User.ID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}
	views := make([]orderView, 0, len(orders))
	for _, o := range orders {
		views = append(views, orderView{
			ID:             o.ID,
			MedicationName: o.MedicationName,
			Quantity:       o.Quantity,
			Status:         o.Status,
			RequestedAt:    o.RequestedAt,
			BatchNumber:    o.BatchNumber,
		})
	}
	c.JSON(http.StatusOK, gin.H{
		"hospital_name": ac.User.HospitalName,
		"stats":         domain.Summarize(orders),
		"orders":        views,
	})
}

// PublicOrders lists recent orders across hospitals by hospital name.
func (s *Server) PublicOrders(c *gin.Context) {
	feed, err := s.orders.ListPublic(c.Request.Context(), repository.PublicFeedLimit)
	if err != nil {
		log.Printf("order: public feed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}
	if feed == nil {
		feed = []*domain.PublicOrder{}
	}
	c.JSON(http.StatusOK, feed)
}
