package middleware

import (
	"fmt"

	"github.com/gin-gonic/gin"

	"medsupply/internal/audit"
)

// Audit records an audit log entry after each request whose route matched.
// skipRoutes holds route patterns to not audit (e.g. /healthz). Logging is best-effort.
func Audit(logger audit.AuditLogger, skipRoutes map[string]bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()
		route := c.FullPath()
		if logger == nil || route == "" || skipRoutes[route] {
			return
		}
		ctx := c.Request.Context()
		userID, _ := GetUserID(ctx)
		ar := audit.ParseRoute(c.Request.Method, route)
		status := c.Writer.Status()
		logger.LogEvent(ctx, userID, ar.Action, ar.Resource, audit.OutcomeForStatus(status), fmt.Sprintf("status=%d", status))
	}
}
