package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/charlesng35/gymadmin/internal/permissions"
	"github.com/charlesng35/gymadmin/pkg/logger"
)

func observeLogs(t *testing.T) *observer.ObservedLogs {
	t.Helper()
	core, logs := observer.New(zapcore.DebugLevel)
	t.Cleanup(logger.Set(zap.New(core)))
	return logs
}

func TestLoggerRecordsRequest(t *testing.T) {
	gin.SetMode(gin.TestMode)
	logs := observeLogs(t)

	r := gin.New()
	r.Use(Logger())
	r.GET("/api/menus/visible", func(c *gin.Context) {
		c.String(http.StatusOK, "ok")
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/menus/visible", nil))
	require.Equal(t, http.StatusOK, w.Code)

	entries := logs.FilterMessage("request").All()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	require.Equal(t, "http", fields["module"])
	require.Equal(t, "GET", fields["method"])
	require.Equal(t, "/api/menus/visible", fields["path"])
	require.EqualValues(t, http.StatusOK, fields["status"])
	require.Equal(t, "/api/menus/visible", fields["route"])
	require.Equal(t, zapcore.InfoLevel, entries[0].Level)
	require.NotContains(t, fields, "user_id")
}

func TestLoggerIncludesActor(t *testing.T) {
	gin.SetMode(gin.TestMode)
	logs := observeLogs(t)

	r := gin.New()
	r.Use(Logger())
	r.Use(func(c *gin.Context) {
		c.Set(CtxActorKey, permissions.Actor{UserID: "u-1", TableName: "jiaolian"})
		c.Next()
	})
	r.DELETE("/kecheng", func(c *gin.Context) {
		_ = c.Error(http.ErrNotSupported)
		c.Status(http.StatusForbidden)
	})

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodDelete, "/kecheng", nil))

	entries := logs.FilterMessage("request").All()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	require.Equal(t, "u-1", fields["user_id"])
	require.Equal(t, "jiaolian", fields["table"])
	require.EqualValues(t, http.StatusForbidden, fields["status"])
	require.Equal(t, zapcore.WarnLevel, entries[0].Level)
	require.Contains(t, fields["errors"], "not supported")
}

func TestAccessLevel(t *testing.T) {
	require.Equal(t, zapcore.InfoLevel, accessLevel(http.StatusNoContent))
	require.Equal(t, zapcore.InfoLevel, accessLevel(http.StatusFound))
	require.Equal(t, zapcore.WarnLevel, accessLevel(http.StatusTooManyRequests))
	require.Equal(t, zapcore.ErrorLevel, accessLevel(http.StatusServiceUnavailable))
}
