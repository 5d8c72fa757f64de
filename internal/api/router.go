package api

import (
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"gorm.io/gorm"

	"github.com/charlesng35/gymadmin/internal/app"
	"github.com/charlesng35/gymadmin/internal/cache"
	"github.com/charlesng35/gymadmin/internal/handlers"
	"github.com/charlesng35/gymadmin/internal/middleware"
	"github.com/charlesng35/gymadmin/internal/monitoring"
	"github.com/charlesng35/gymadmin/internal/monitoring/checks"
	"github.com/charlesng35/gymadmin/internal/permissions"
	"github.com/charlesng35/gymadmin/internal/services"
)

// menuResource is the back-office resource guarding menu administration.
const menuResource = "menu"

// Dependencies bundles everything the router needs.
type Dependencies struct {
	Config   *app.Config
	DB       *gorm.DB
	Resolver *permissions.Resolver
	Auth     *services.AuthService
	Menus    *services.MenuService
	Exporter *services.PermissionExporter
	Cache    cache.Store
}

func (d Dependencies) validate() error {
	switch {
	case d.Config == nil:
		return fmt.Errorf("config must be provided")
	case d.DB == nil:
		return fmt.Errorf("database handle must be provided")
	case d.Resolver == nil:
		return fmt.Errorf("permission resolver must be provided")
	case d.Auth == nil:
		return fmt.Errorf("auth service must be provided")
	case d.Menus == nil:
		return fmt.Errorf("menu service must be provided")
	case d.Cache == nil:
		return fmt.Errorf("cache store must be provided")
	}
	return nil
}

// NewRouter builds the Gin engine, wires middleware and registers routes.
func NewRouter(deps Dependencies) (*gin.Engine, error) {
	if err := deps.validate(); err != nil {
		return nil, err
	}
	cfg := deps.Config
	resolver := deps.Resolver

	exporter := deps.Exporter
	if exporter == nil {
		var err error
		if exporter, err = services.NewPermissionExporter(resolver); err != nil {
			return nil, err
		}
	}

	r := gin.New()

	// Global middleware
	r.Use(middleware.Recovery())
	r.Use(middleware.Logger())
	r.Use(middleware.Metrics(metricsEndpoint(cfg)))
	r.Use(middleware.SecurityHeaders(cfg.Server.HSTS))

	health := monitoring.NewHealthManager(
		checks.Database(deps.DB, 0),
		checks.Permissions(resolver, deps.Menus),
	)
	if pinger, ok := deps.Cache.(checks.Pinger); ok {
		health.Register(checks.Cache(pinger, 0))
	}
	r.GET("/health", handlers.Health(health))
	r.GET("/health/live", handlers.Liveness(health))

	authHandler := handlers.NewAuthHandler(deps.Auth, resolver)
	loginRequests, loginWindow := cfg.Auth.LoginRateLimit()

	// Public auth routes
	public := r.Group("/api/auth")
	{
		public.POST("/login", middleware.RateLimit(deps.Cache, loginRequests, loginWindow), authHandler.Login)
	}

	api := r.Group("/api")
	api.Use(middleware.Auth(deps.Auth))

	api.GET("/auth/session", authHandler.Session)
	api.POST("/auth/logout", authHandler.Logout)

	permHandler := handlers.NewPermissionHandler(resolver)
	exportHandler := handlers.NewExportHandler(exporter)
	perms := api.Group("/permissions")
	{
		perms.GET("/actions", permHandler.Actions)
		perms.GET("/export",
			middleware.RequireAction(resolver, permissions.DomainBack, menuResource, permissions.ActionExport),
			exportHandler.Permissions)
		perms.POST("/check", permHandler.Check)
		perms.GET("/:resource", permHandler.Get)
	}

	menuHandler := handlers.NewMenuHandler(deps.Menus, resolver)
	menus := api.Group("/menus")
	{
		menus.GET("/visible", menuHandler.Visible)
		menus.GET("",
			middleware.RequireAction(resolver, permissions.DomainBack, menuResource, permissions.ActionView),
			menuHandler.Get)
		menus.PUT("",
			middleware.RequireAction(resolver, permissions.DomainBack, menuResource, permissions.ActionUpdate),
			menuHandler.Update)
	}

	if cfg.Monitoring.Prometheus.Enabled {
		r.GET(metricsEndpoint(cfg), gin.WrapH(promhttp.Handler()))
	}

	// NotFound fallback
	r.NoRoute(middleware.NotFoundHandler)

	return r, nil
}

func metricsEndpoint(cfg *app.Config) string {
	if endpoint := cfg.Monitoring.Prometheus.Endpoint; endpoint != "" {
		return endpoint
	}
	return "/metrics"
}
