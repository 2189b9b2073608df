package audit

import (
	"net/http"
	"strings"

	"medsupply/internal/audit/domain"
)

// ActionResource holds action and resource derived from an HTTP route.
type ActionResource struct {
	Action   string
	Resource string
}

// routeOverrides names the portal's auth and data routes explicitly.
var routeOverrides = map[string]ActionResource{
	"POST /register":                    {Action: "register", Resource: "user"},
	"POST /login":                       {Action: "login", Resource: "session"},
	"POST /verify-otp":                  {Action: "verify_otp", Resource: "session"},
	"GET /logout":                       {Action: "logout", Resource: "session"},
	"POST /logout":                      {Action: "logout", Resource: "session"},
	"GET /dashboard":                    {Action: "list", Resource: "order"},
	"GET /profile":                      {Action: "get", Resource: "user"},
	"GET /api/public-orders":            {Action: "list", Resource: "public_order"},
	"GET /internal/api/account/details": {Action: "get", Resource: "account"},
	"GET /internal/api/audit":           {Action: "list", Resource: "audit_log"},
}

// ParseRoute returns action and resource for an HTTP method and route pattern (e.g. GET /profile).
// Unknown routes fall back to the method verb and the last static path segment.
func ParseRoute(method, route string) ActionResource {
	if ar, ok := routeOverrides[method+" "+route]; ok {
		return ar
	}
	resource := "unknown"
	segments := strings.Split(strings.Trim(route, "/"), "/")
	for i := len(segments) - 1; i >= 0; i-- {
		s := segments[i]
		if s != "" && !strings.HasPrefix(s, ":") && !strings.HasPrefix(s, "*") {
			resource = strings.ReplaceAll(s, "-", "_")
			break
		}
	}
	return ActionResource{Action: methodToAction(method), Resource: resource}
}

func methodToAction(method string) string {
	switch method {
	case http.MethodGet, http.MethodHead:
		return "get"
	case http.MethodPost:
		return "create"
	case http.MethodPut, http.MethodPatch:
		return "update"
	case http.MethodDelete:
		return "delete"
	default:
		return strings.ToLower(method)
	}
}

// OutcomeForStatus classifies an HTTP status for the audit trail.
func OutcomeForStatus(status int) string {
	switch {
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return domain.OutcomeDenied
	case status >= 400:
		return domain.OutcomeFailure
	default:
		return domain.OutcomeSuccess
	}
}
