package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	promtest "github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"

	"github.com/charlesng35/gymadmin/internal/permissions"
	"github.com/charlesng35/gymadmin/pkg/metrics"
)

func permissionRouter(t *testing.T, actor *permissions.Actor) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	table, err := permissions.Compile(permissions.MenuDocument{{
		RoleName:  "教练",
		TableName: "jiaolian",
		BackMenu: []permissions.MenuGroup{{Child: []permissions.MenuEntry{
			{TableName: "kecheng", Buttons: []string{"查看", "修改"}},
		}}},
	}})
	require.NoError(t, err)
	resolver := permissions.NewResolver(table)

	r := gin.New()
	r.Use(func(c *gin.Context) {
		if actor != nil {
			c.Set(CtxActorKey, *actor)
		}
		c.Next()
	})
	r.GET("/kecheng", RequireAction(resolver, permissions.DomainBack, "kecheng", permissions.ActionView), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})
	r.DELETE("/kecheng", RequireAction(resolver, permissions.DomainBack, "kecheng", permissions.ActionDelete), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})
	return r
}

func serve(r *gin.Engine, method, path string) int {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(method, path, nil))
	return w.Code
}

func TestRequireActionWithoutAuth(t *testing.T) {
	r := permissionRouter(t, nil)
	counter := metrics.PermissionChecks.WithLabelValues("back", "kecheng", "view", "unauthenticated")
	before := promtest.ToFloat64(counter)

	require.Equal(t, http.StatusUnauthorized, serve(r, http.MethodGet, "/kecheng"))
	require.Equal(t, before+1, promtest.ToFloat64(counter))
}

func TestRequireActionAllowsAndDenies(t *testing.T) {
	r := permissionRouter(t, &permissions.Actor{UserID: "u1", TableName: "jiaolian"})

	require.Equal(t, http.StatusOK, serve(r, http.MethodGet, "/kecheng"))
	require.Equal(t, http.StatusForbidden, serve(r, http.MethodDelete, "/kecheng"))
}

func TestRequireActionAdminBypass(t *testing.T) {
	r := permissionRouter(t, &permissions.Actor{UserID: "root", TableName: permissions.DefaultAdminTable})

	require.Equal(t, http.StatusOK, serve(r, http.MethodDelete, "/kecheng"))
}

func TestRequireActionUnknownPrincipal(t *testing.T) {
	r := permissionRouter(t, &permissions.Actor{UserID: "u2", TableName: "yonghu"})

	require.Equal(t, http.StatusForbidden, serve(r, http.MethodGet, "/kecheng"))
}

func TestCheckResult(t *testing.T) {
	require.Equal(t, "allowed", CheckResult(true))
	require.Equal(t, "denied", CheckResult(false))
}
