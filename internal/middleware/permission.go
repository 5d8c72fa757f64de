package middleware

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/charlesng35/gymadmin/internal/permissions"
	"github.com/charlesng35/gymadmin/pkg/errors"
	"github.com/charlesng35/gymadmin/pkg/logger"
	"github.com/charlesng35/gymadmin/pkg/metrics"
	"github.com/charlesng35/gymadmin/pkg/response"
)

// RequireAction lets the request through only when the authenticated actor
// may perform action on resource in domain. It must run after Auth.
func RequireAction(resolver *permissions.Resolver, domain permissions.Domain, resource string, action permissions.Action) gin.HandlerFunc {
	return func(c *gin.Context) {
		actor, ok := ActorFrom(c)
		if !ok {
			metrics.PermissionChecks.WithLabelValues(string(domain), resource, action.String(), resultUnauthenticated).Inc()
			response.Abort(c, errors.ErrUnauthorized)
			return
		}

		allowed := resolver.Allowed(domain, actor, resource, action)
		metrics.PermissionChecks.WithLabelValues(string(domain), resource, action.String(), CheckResult(allowed)).Inc()

		if !allowed {
			logger.WithModule("permissions").Debug("denied",
				zap.String("domain", string(domain)),
				zap.String("resource", resource),
				zap.String("action", action.String()),
				zap.String("user_id", actor.UserID),
				zap.String("table", actor.TableName),
				zap.String("role", actor.Role),
			)
			response.Abort(c, errors.ErrForbidden)
			return
		}
		c.Next()
	}
}

const resultUnauthenticated = "unauthenticated"

// CheckResult is the metric label for a permission outcome.
func CheckResult(allowed bool) string {
	if allowed {
		return "allowed"
	}
	return "denied"
}
