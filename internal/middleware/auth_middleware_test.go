package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	iauth "github.com/charlesng35/gymadmin/internal/auth"
	"github.com/charlesng35/gymadmin/internal/permissions"
	"github.com/charlesng35/gymadmin/pkg/errors"
	"github.com/charlesng35/gymadmin/pkg/response"
)

type stubAuthenticator map[string]*iauth.Session

func (s stubAuthenticator) Authenticate(_ context.Context, token string) (*iauth.Session, error) {
	if session, ok := s[token]; ok {
		return session, nil
	}
	if token == "closed" {
		return nil, errors.ErrSessionClosed
	}
	return nil, errors.ErrUnauthorized
}

var coachSession = &iauth.Session{
	ID:        "session-abc",
	UserID:    "user-123",
	Username:  "coach",
	Role:      "教练",
	TableName: "jiaolian",
}

func TestAuthMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)

	r := gin.New()
	r.GET("/secure", Auth(stubAuthenticator{"good": coachSession}), func(c *gin.Context) {
		fromCtx, ok := permissions.ActorFromContext(c.Request.Context())
		require.True(t, ok)
		actor, ok := ActorFrom(c)
		require.True(t, ok)
		require.Equal(t, actor, fromCtx)

		c.JSON(http.StatusOK, gin.H{
			"user_id":    c.GetString(CtxUserIDKey),
			"session_id": c.GetString(CtxSessionIDKey),
			"table":      actor.TableName,
		})
	})

	// Missing Authorization header -> 401
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/secure", nil)
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusUnauthorized, w.Code)
	require.Equal(t, "Bearer", w.Header().Get("WWW-Authenticate"))

	// Closed session -> 401 with a distinct code
	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/secure", nil)
	req.Header.Set("Authorization", "Bearer closed")
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusUnauthorized, w.Code)
	var failure response.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &failure))
	require.Equal(t, errors.ErrSessionClosed.Code, failure.Error.Code)

	// Valid token -> downstream handler executes
	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/secure", nil)
	req.Header.Set("Authorization", "bearer good")
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	var payload map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &payload))
	require.Equal(t, "user-123", payload["user_id"])
	require.Equal(t, "session-abc", payload["session_id"])
	require.Equal(t, "jiaolian", payload["table"])
}

func TestBearerToken(t *testing.T) {
	_, ok := bearerToken("Basic abc")
	require.False(t, ok)

	_, ok = bearerToken("Bearer    ")
	require.False(t, ok)

	token, ok := bearerToken("Bearer  abc ")
	require.True(t, ok)
	require.Equal(t, "abc", token)
}
