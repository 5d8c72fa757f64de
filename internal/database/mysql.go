package database

import (
	"errors"
	"fmt"
	"strings"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"
)

// mysqlDefaults store timestamps in UTC with full Unicode so Chinese menu
// titles and usernames round-trip.
var mysqlDefaults = map[string]string{
	"charset":   "utf8mb4",
	"collation": "utf8mb4_unicode_ci",
	"parseTime": "True",
	"loc":       "UTC",
}

func openMySQL(cfg Config) (*gorm.DB, error) {
	dsn, err := buildMySQLDSN(cfg)
	if err != nil {
		return nil, err
	}
	return gorm.Open(mysql.Open(dsn), gormConfig())
}

func buildMySQLDSN(cfg Config) (string, error) {
	if cfg.DSN != "" {
		return cfg.DSN, nil
	}
	if cfg.User == "" || cfg.Name == "" {
		return "", errors.New("mysql configuration requires user and database name")
	}

	host := valueOrDefault(cfg.Host, "127.0.0.1")
	port := cfg.Port
	if port == 0 {
		port = 3306
	}

	user := cfg.User
	if cfg.Password != "" {
		user = cfg.User + ":" + cfg.Password
	}

	options := mergeOptions(mysqlDefaults, cfg.Options)
	pairs := make([]string, 0, len(options))
	for _, key := range sortedKeys(options) {
		pairs = append(pairs, key+"="+options[key])
	}

	return fmt.Sprintf("%s@tcp(%s:%d)/%s?%s", user, host, port, cfg.Name, strings.Join(pairs, "&")), nil
}
