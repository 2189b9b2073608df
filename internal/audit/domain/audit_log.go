package domain

import "time"

// Outcomes recorded on audit entries.
const (
	OutcomeSuccess = "success"
	OutcomeDenied  = "denied"
	OutcomeFailure = "failure"
)

// AuditLog represents an audit event. UserID is empty for anonymous requests.
type AuditLog struct {
	ID        string
	UserID    string
	Action    string
	Resource  string
	Outcome   string
	IP        string
	Metadata  string
	CreatedAt time.Time
}
