package app

import (
	"strings"

	"github.com/charlesng35/gymadmin/internal/database"
)

// ConnectionConfig converts DatabaseConfig into database.Open parameters.
// SQLite gets a single writer connection unless the pool is sized explicitly.
func (c DatabaseConfig) ConnectionConfig() database.Config {
	driver := strings.ToLower(strings.TrimSpace(c.Driver))
	if driver == "" {
		driver = "sqlite"
	}

	maxOpen := c.Pool.MaxOpen
	if driver == "sqlite" && maxOpen == 0 {
		maxOpen = 1
	}

	return database.Config{
		Driver:          driver,
		Path:            strings.TrimSpace(c.Path),
		DSN:             strings.TrimSpace(c.DSN),
		Host:            strings.TrimSpace(c.Host),
		Port:            c.Port,
		Name:            c.Name,
		User:            c.User,
		Password:        c.Password,
		Options:         c.Options,
		MaxOpenConns:    maxOpen,
		MaxIdleConns:    c.Pool.MaxIdle,
		ConnMaxLifetime: c.Pool.MaxLifetime,
	}
}
