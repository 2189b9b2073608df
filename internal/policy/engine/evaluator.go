package engine

import (
	"context"

	userdomain "medsupply/internal/user/domain"
)

// Actions checked against the access policy.
const (
	ActionAccountRead = "account.read"
	ActionAuditList   = "audit.list"
)

// AccessRequest describes one access decision: who is asking, what they want to do
// and, for per-account actions, whose record.
type AccessRequest struct {
	Caller       *userdomain.User
	Action       string
	TargetUserID string
}

// Evaluator decides access requests using OPA or other engines.
type Evaluator interface {
	// Allow reports whether the request is permitted. A nil caller is always denied.
	Allow(ctx context.Context, req AccessRequest) (bool, error)
}
