package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/charlesng35/gymadmin/internal/api"
	"github.com/charlesng35/gymadmin/internal/app"
	"github.com/charlesng35/gymadmin/internal/app/maintenance"
	iauth "github.com/charlesng35/gymadmin/internal/auth"
	"github.com/charlesng35/gymadmin/internal/cache"
	"github.com/charlesng35/gymadmin/internal/database"
	"github.com/charlesng35/gymadmin/internal/permissions"
	"github.com/charlesng35/gymadmin/internal/services"
	"github.com/charlesng35/gymadmin/pkg/logger"
)

// runtimeStack bundles long-lived services used by the HTTP server.
type runtimeStack struct {
	DB       *gorm.DB
	Redis    *cache.RedisStore
	Store    cache.Store
	Resolver *permissions.Resolver
	Menus    *services.MenuService
	Auth     *services.AuthService
	Cleaner  *maintenance.Cleaner
	Router   *gin.Engine
}

// bootstrapRuntime initialises the database, cache, permission table, services and the HTTP router.
func bootstrapRuntime(ctx context.Context, cfg *app.Config, generated app.GeneratedDefaults, log *zap.Logger) (*runtimeStack, error) {
	stack := &runtimeStack{}
	var err error
	success := false

	defer func() {
		if !success {
			stack.Shutdown(context.Background(), log)
		}
	}()

	// enable gin debug mode
	if debug, _ := os.LookupEnv("GIN_DEBUG"); debug != "true" {
		gin.SetMode(gin.ReleaseMode)
	}

	stack.DB, err = initialiseDatabase(cfg)
	if err != nil {
		return nil, err
	}

	if generated.JWTSecret {
		secret, err := database.ResolveJWTSecret(ctx, stack.DB, cfg.Auth.JWT.Secret)
		if err != nil {
			return nil, fmt.Errorf("resolve jwt secret: %w", err)
		}
		cfg.Auth.JWT.Secret = secret
	}

	dbStore := cache.NewDatabaseStore(stack.DB)
	stack.Store = dbStore

	if cfg.Cache.Backend() == "redis" {
		if stack.Redis, err = cache.NewRedisStore(ctx, cfg.Cache.RedisClientConfig()); err != nil {
			log.Warn("redis unavailable; falling back to database cache", zap.Error(err))
		} else {
			stack.Store = stack.Redis
			log.Info("redis connected", zap.String("addr", cfg.Cache.Redis.Address))
		}
	}

	jwtSvc, err := iauth.NewJWTService(cfg.Auth.JWTServiceConfig())
	if err != nil {
		return nil, fmt.Errorf("initialise jwt service: %w", err)
	}

	sessionSvc, err := iauth.NewSessionService(stack.Store, jwtSvc, cfg.Auth.SessionServiceConfig())
	if err != nil {
		return nil, fmt.Errorf("initialise session service: %w", err)
	}

	stack.Resolver = permissions.NewResolver(nil, cfg.Permissions.ResolverOptions()...)

	stack.Menus, err = services.NewMenuService(stack.DB, stack.Resolver, cfg.Permissions.MenuFile)
	if err != nil {
		return nil, fmt.Errorf("initialise menu service: %w", err)
	}
	if err := stack.Menus.Bootstrap(ctx); err != nil {
		return nil, fmt.Errorf("load menu configuration: %w", err)
	}
	log.Info("permission table loaded",
		zap.Int("version", stack.Menus.ActiveVersion()),
		zap.Int("front_principals", len(stack.Resolver.Table().Principals(permissions.DomainFront))),
		zap.Int("back_principals", len(stack.Resolver.Table().Principals(permissions.DomainBack))),
	)

	stack.Auth, err = services.NewAuthService(stack.DB, sessionSvc, stack.Resolver)
	if err != nil {
		return nil, fmt.Errorf("initialise auth service: %w", err)
	}
	if err := seedAdmin(ctx, stack.Auth, cfg.Auth.Bootstrap, log); err != nil {
		return nil, err
	}

	// Redis expires keys on its own; only the database cache needs purging.
	var purger maintenance.CachePurger
	if stack.Redis == nil {
		purger = dbStore
	}
	stack.Cleaner = maintenance.NewCleaner(purger, stack.Menus,
		maintenance.WithCacheSchedule(cfg.Maintenance.CacheCleanup),
		maintenance.WithMenuSchedule(cfg.Maintenance.MenuReload),
	)
	if err := stack.Cleaner.Start(); err != nil {
		return nil, fmt.Errorf("start maintenance jobs: %w", err)
	}

	exporter, err := services.NewPermissionExporter(stack.Resolver)
	if err != nil {
		return nil, fmt.Errorf("initialise permission exporter: %w", err)
	}

	stack.Router, err = api.NewRouter(api.Dependencies{
		Config:   cfg,
		DB:       stack.DB,
		Resolver: stack.Resolver,
		Auth:     stack.Auth,
		Menus:    stack.Menus,
		Exporter: exporter,
		Cache:    stack.Store,
	})
	if err != nil {
		return nil, fmt.Errorf("build api router: %w", err)
	}

	success = true
	return stack, nil
}

func seedAdmin(ctx context.Context, svc *services.AuthService, admin app.BootstrapAdmin, log *zap.Logger) error {
	if strings.TrimSpace(admin.Username) == "" || admin.Password == "" {
		return nil
	}
	account, created, err := svc.EnsureAdmin(ctx, admin.Username, admin.Password)
	if err != nil {
		return fmt.Errorf("seed admin account: %w", err)
	}
	if created {
		log.Info("admin account created", zap.String("username", account.Username), zap.String("table", account.Table))
	}
	return nil
}

// Shutdown gracefully stops background jobs and releases resources.
func (s *runtimeStack) Shutdown(ctx context.Context, log *zap.Logger) {
	if s == nil {
		return
	}

	if s.Cleaner != nil {
		<-s.Cleaner.Stop().Done()
	}

	if s.Redis != nil {
		if err := s.Redis.Close(); err != nil {
			log.Warn("redis shutdown", zap.Error(err))
		}
	}

	if s.DB != nil {
		closeDatabase(s.DB, log)
	}
}

func initialiseDatabase(cfg *app.Config) (*gorm.DB, error) {
	dbCfg := cfg.Database.ConnectionConfig()
	db, err := database.Open(dbCfg)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if err := database.AutoMigrateAndSeed(db); err != nil {
		return nil, fmt.Errorf("auto-migrate database: %w", err)
	}

	log := logger.WithModule("database")
	log.Info("database connected", zap.String("driver", strings.ToLower(strings.TrimSpace(dbCfg.Driver))))

	return db, nil
}

func closeDatabase(db *gorm.DB, log *zap.Logger) {
	if db == nil {
		return
	}

	sqlDB, err := db.DB()
	if err != nil {
		log.Warn("failed to obtain underlying sql DB for closing", zap.Error(err))
		return
	}

	if err := sqlDB.Close(); err != nil {
		log.Warn("failed to close database", zap.Error(err))
	}
}
