package middleware

import (
	"context"
	"strings"

	"github.com/gin-gonic/gin"

	iauth "github.com/charlesng35/gymadmin/internal/auth"
	"github.com/charlesng35/gymadmin/internal/permissions"
	"github.com/charlesng35/gymadmin/pkg/errors"
	"github.com/charlesng35/gymadmin/pkg/response"
)

const (
	CtxSessionKey   = "authSession"
	CtxActorKey     = "actor"
	CtxUserIDKey    = "userID"
	CtxSessionIDKey = "sessionID"
)

// SessionAuthenticator turns a bearer token into a live session.
type SessionAuthenticator interface {
	Authenticate(ctx context.Context, token string) (*iauth.Session, error)
}

// Auth requires a bearer token naming an open session. The session's actor is
// stored on the gin context and on the request context.
func Auth(authenticator SessionAuthenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := bearerToken(c.GetHeader("Authorization"))
		if !ok {
			c.Header("WWW-Authenticate", "Bearer")
			response.Abort(c, errors.ErrUnauthorized)
			return
		}

		session, err := authenticator.Authenticate(c.Request.Context(), token)
		if err != nil {
			c.Header("WWW-Authenticate", "Bearer")
			response.Abort(c, err)
			return
		}

		actor := session.Actor()
		c.Set(CtxSessionKey, session)
		c.Set(CtxActorKey, actor)
		c.Set(CtxUserIDKey, session.UserID)
		c.Set(CtxSessionIDKey, session.ID)
		c.Request = c.Request.WithContext(permissions.WithActor(c.Request.Context(), actor))

		c.Next()
	}
}

func bearerToken(header string) (string, bool) {
	if len(header) < 8 || !strings.EqualFold(header[:7], "Bearer ") {
		return "", false
	}
	token := strings.TrimSpace(header[7:])
	return token, token != ""
}

// ActorFrom returns the actor stored by Auth, if any.
func ActorFrom(c *gin.Context) (permissions.Actor, bool) {
	v, ok := c.Get(CtxActorKey)
	if !ok {
		return permissions.Actor{}, false
	}
	actor, ok := v.(permissions.Actor)
	return actor, ok
}
