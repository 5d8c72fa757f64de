package middleware

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/charlesng35/gymadmin/pkg/errors"
	"github.com/charlesng35/gymadmin/pkg/logger"
	"github.com/charlesng35/gymadmin/pkg/response"
)

// Recovery turns a handler panic into a 500 envelope. The panic value is
// logged with the route and actor and never echoed to the client. When the
// handler already started writing, the connection is only aborted.
func Recovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			rec := recover()
			if rec == nil {
				return
			}

			fields := []zap.Field{
				zap.String("method", c.Request.Method),
				zap.String("path", c.Request.URL.Path),
				zap.String("route", c.FullPath()),
				zap.Any("error", rec),
				zap.Stack("stack"),
			}
			if actor, ok := ActorFrom(c); ok {
				fields = append(fields, zap.String("user_id", actor.UserID))
			}
			logger.WithModule("http").Error("panic", fields...)

			if c.Writer.Written() {
				c.Abort()
				return
			}
			response.Abort(c, errors.ErrInternalServer)
		}()
		c.Next()
	}
}

// NotFoundHandler renders unknown routes in the standard error envelope.
func NotFoundHandler(c *gin.Context) {
	response.Error(c, errors.ErrNotFound.WithMessage("route %s not found", c.Request.URL.Path))
}
