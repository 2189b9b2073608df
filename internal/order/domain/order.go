package domain

import (
	"strings"
	"time"
)

// Order statuses used by the seeded data.
const (
	StatusPendingApproval = "Pending Approval"
	StatusShipped         = "Shipped"
	StatusDelivered       = "Delivered"
)

// Order is a medication request placed by a hospital account.
type Order struct {
	ID             string
	UserID         string
	MedicationName string
	Quantity       int
	Status         string
	RequestedAt    time.Time
	BatchNumber    string
}

// PublicOrder is an order as shown on the cross-hospital feed. It carries the
// requesting hospital's display name and never its user ID.
type PublicOrder struct {
	ID             string `json:"id"`
	MedicationName string `json:"medication_name"`
	Quantity       int    `json:"quantity"`
	Status         string `json:"status"`
	HospitalName   string `json:"hospital_name"`
}

// DashboardStats summarizes one account's orders.
type DashboardStats struct {
	Total   int `json:"total"`
	Pending int `json:"pending"`
	Shipped int `json:"shipped"`
}

// Summarize counts orders by status. Matching is case-insensitive on a substring,
// so "Pending Approval" counts as pending.
func Summarize(orders []*Order) DashboardStats {
	stats := DashboardStats{Total: len(orders)}
	for _, o := range orders {
		s := strings.ToLower(o.Status)
		if strings.Contains(s, "pending") {
			stats.Pending++
		}
		if strings.Contains(s, "shipped") {
			stats.Shipped++
		}
	}
	return stats
}
