package main

import (
	"fmt"
	"os"
	"strings"

	"go.uber.org/multierr"

	"github.com/charlesng35/gymadmin/internal/app"
	"github.com/charlesng35/gymadmin/internal/app/maintenance"
	"github.com/charlesng35/gymadmin/internal/permissions"
)

var supportedDrivers = map[string]bool{
	"sqlite":     true,
	"postgres":   true,
	"postgresql": true,
	"mysql":      true,
	"mariadb":    true,
}

// checkConfiguration validates settings that would otherwise only fail once
// the server is running: cron schedules, the menu file and the database driver.
// Every problem is reported, not just the first.
func checkConfiguration(cfg *app.Config) error {
	var errs error

	driver := cfg.Database.ConnectionConfig().Driver
	if !supportedDrivers[driver] {
		errs = multierr.Append(errs, fmt.Errorf("database.driver: unsupported driver %q", driver))
	}

	schedules := maintenance.NewCleaner(nil, nil,
		maintenance.WithCacheSchedule(cfg.Maintenance.CacheCleanup),
		maintenance.WithMenuSchedule(cfg.Maintenance.MenuReload),
	)
	if err := schedules.Validate(); err != nil {
		errs = multierr.Append(errs, fmt.Errorf("maintenance: %w", err))
	}

	if path := strings.TrimSpace(cfg.Permissions.MenuFile); path != "" {
		errs = multierr.Append(errs, checkMenuFile(path))
	}

	if cfg.Auth.RateLimit.Requests < 0 {
		errs = multierr.Append(errs, fmt.Errorf("auth.login_rate_limit.requests: must not be negative"))
	}
	return errs
}

func checkMenuFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("permissions.menu_file: %w", err)
	}
	doc, err := permissions.ParseMenuDocument(data, permissions.FormatFromPath(path))
	if err != nil {
		return fmt.Errorf("permissions.menu_file: %w", err)
	}
	if _, err := permissions.Compile(doc); err != nil {
		return fmt.Errorf("permissions.menu_file: %w", err)
	}
	return nil
}
