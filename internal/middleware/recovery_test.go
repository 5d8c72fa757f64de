package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/charlesng35/gymadmin/pkg/response"
)

func TestRecoveryMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	logs := observeLogs(t)

	r := gin.New()
	r.Use(Recovery())
	r.PUT("/api/menus", func(c *gin.Context) {
		panic("menu swap failed")
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPut, "/api/menus", nil)
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusInternalServerError, w.Code)
	var payload response.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &payload))
	require.False(t, payload.Success)
	require.Equal(t, "INTERNAL_SERVER_ERROR", payload.Error.Code)
	require.NotContains(t, w.Body.String(), "menu swap failed")

	entries := logs.FilterMessage("panic").All()
	require.Len(t, entries, 1)
	require.Equal(t, "/api/menus", entries[0].ContextMap()["path"])
	require.Equal(t, "/api/menus", entries[0].ContextMap()["route"])
	require.Equal(t, "menu swap failed", entries[0].ContextMap()["error"])
}

func TestNotFoundHandler(t *testing.T) {
	gin.SetMode(gin.TestMode)

	r := gin.New()
	r.NoRoute(NotFoundHandler)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/kecheng/missing", nil)
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusNotFound, w.Code)
	var payload response.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &payload))
	require.False(t, payload.Success)
	require.Equal(t, "NOT_FOUND", payload.Error.Code)
	require.Contains(t, payload.Error.Message, "route /api/kecheng/missing not found")
}
