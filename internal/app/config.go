package app

import (
	"errors"
	"fmt"
	"strings"
	"time"

	mapstructure "github.com/go-viper/mapstructure/v2"
	"github.com/spf13/viper"
)

// Config represents the runtime configuration for the gymadmin backend.
type Config struct {
	Server      ServerConfig      `mapstructure:"server"`
	Database    DatabaseConfig    `mapstructure:"database"`
	Cache       CacheConfig       `mapstructure:"cache"`
	Auth        AuthConfig        `mapstructure:"auth"`
	Permissions PermissionsConfig `mapstructure:"permissions"`
	Monitoring  MonitoringConfig  `mapstructure:"monitoring"`
	Maintenance MaintenanceConfig `mapstructure:"maintenance"`
}

// ServerConfig configures the HTTP server.
type ServerConfig struct {
	Port     int           `mapstructure:"port"`
	LogLevel string        `mapstructure:"log_level"`
	LogFile  string        `mapstructure:"log_file"`
	HSTS     bool          `mapstructure:"hsts"`
	Shutdown time.Duration `mapstructure:"shutdown_timeout"`
}

// DatabaseConfig describes connection options for the supported databases.
type DatabaseConfig struct {
	Driver   string            `mapstructure:"driver"`
	Path     string            `mapstructure:"path"`
	DSN      string            `mapstructure:"dsn"`
	Host     string            `mapstructure:"host"`
	Port     int               `mapstructure:"port"`
	Name     string            `mapstructure:"name"`
	User     string            `mapstructure:"user"`
	Password string            `mapstructure:"password"`
	Options  map[string]string `mapstructure:"options"`
	Pool     DatabasePool      `mapstructure:"pool"`
}

// DatabasePool tunes the database/sql connection pool. Zero values keep the driver defaults.
type DatabasePool struct {
	MaxOpen     int           `mapstructure:"max_open"`
	MaxIdle     int           `mapstructure:"max_idle"`
	MaxLifetime time.Duration `mapstructure:"max_lifetime"`
}

// CacheConfig describes cache backends.
type CacheConfig struct {
	Redis RedisCacheConfig `mapstructure:"redis"`
}

// RedisCacheConfig holds Redis connection options.
type RedisCacheConfig struct {
	Enabled  bool          `mapstructure:"enabled"`
	Address  string        `mapstructure:"address"`
	Username string        `mapstructure:"username"`
	Password string        `mapstructure:"password"`
	DB       int           `mapstructure:"db"`
	TLS      bool          `mapstructure:"tls"`
	Timeout  time.Duration `mapstructure:"timeout"`
}

// AuthConfig captures all authentication-related settings.
type AuthConfig struct {
	JWT       JWTSettings       `mapstructure:"jwt"`
	Session   SessionSettings   `mapstructure:"session"`
	RateLimit RateLimitSettings `mapstructure:"login_rate_limit"`
	Bootstrap BootstrapAdmin    `mapstructure:"bootstrap_admin"`
}

// JWTSettings configures JWT access tokens.
type JWTSettings struct {
	Secret string        `mapstructure:"secret"`
	Issuer string        `mapstructure:"issuer"`
	TTL    time.Duration `mapstructure:"access_token_ttl"`
}

// SessionSettings configures server-side session lifetimes.
type SessionSettings struct {
	TTL time.Duration `mapstructure:"ttl"`
}

// RateLimitSettings bounds login attempts per client.
type RateLimitSettings struct {
	Requests int           `mapstructure:"requests"`
	Window   time.Duration `mapstructure:"window"`
}

// BootstrapAdmin seeds an administrator account on start-up when both fields are set.
type BootstrapAdmin struct {
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
}

// PermissionsConfig controls how the permission table is seeded and evaluated.
type PermissionsConfig struct {
	MenuFile     string `mapstructure:"menu_file"`
	AdminTable   string `mapstructure:"admin_table"`
	BaselineRole string `mapstructure:"baseline_role"`
}

// MonitoringConfig enables metrics.
type MonitoringConfig struct {
	Prometheus PrometheusConfig `mapstructure:"prometheus"`
}

// PrometheusConfig toggles metrics endpoints.
type PrometheusConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Endpoint string `mapstructure:"endpoint"`
}

// MaintenanceConfig schedules background jobs. Schedules use cron syntax
// with an optional seconds field.
type MaintenanceConfig struct {
	CacheCleanup string `mapstructure:"cache_cleanup"`
	MenuReload   string `mapstructure:"menu_reload"`
}

// LoadConfig initialises application configuration using Viper with sensible defaults.
func LoadConfig(paths ...string) (*Config, error) {
	v := newViper()
	v.SetConfigName("config")
	v.SetConfigType("yaml")

	v.AddConfigPath("./config")
	for _, path := range paths {
		v.AddConfigPath(path)
	}

	if err := v.ReadInConfig(); err != nil {
		var cfgErr viper.ConfigFileNotFoundError
		if !errors.As(err, &cfgErr) {
			return nil, fmt.Errorf("config: read file: %w", err)
		}
	}
	return unmarshalConfig(v)
}

// LoadConfigFile reads one explicit configuration file. The format follows
// the extension (yaml, json or toml). A missing file is an error.
func LoadConfigFile(path string) (*Config, error) {
	v := newViper()
	v.SetConfigFile(path)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}
	return unmarshalConfig(v)
}

func newViper() *viper.Viper {
	v := viper.NewWithOptions(viper.ExperimentalBindStruct())
	setDefaults(v)

	v.SetEnvPrefix("GYMADMIN")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

func unmarshalConfig(v *viper.Viper) (*Config, error) {
	var config Config
	if err := v.Unmarshal(&config, decodeHook()); err != nil {
		return nil, fmt.Errorf("config: unmarshal: %w", err)
	}
	return &config, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8000)
	v.SetDefault("server.log_level", "info")
	v.SetDefault("server.log_file", "")
	v.SetDefault("server.hsts", false)
	v.SetDefault("server.shutdown_timeout", "10s")

	v.SetDefault("database.driver", "sqlite")
	v.SetDefault("database.path", "./data/gymadmin.sqlite")
	v.SetDefault("database.pool.max_open", 0)
	v.SetDefault("database.pool.max_idle", 0)
	v.SetDefault("database.pool.max_lifetime", "0s")

	v.SetDefault("cache.redis.enabled", false)
	v.SetDefault("cache.redis.address", "127.0.0.1:6379")
	v.SetDefault("cache.redis.username", "")
	v.SetDefault("cache.redis.password", "")
	v.SetDefault("cache.redis.db", 0)
	v.SetDefault("cache.redis.tls", false)
	v.SetDefault("cache.redis.timeout", "5s")

	v.SetDefault("auth.jwt.issuer", "gymadmin")
	v.SetDefault("auth.jwt.access_token_ttl", "2h")
	v.SetDefault("auth.session.ttl", "12h")
	v.SetDefault("auth.login_rate_limit.requests", 10)
	v.SetDefault("auth.login_rate_limit.window", "1m")

	v.SetDefault("permissions.menu_file", "")
	v.SetDefault("permissions.admin_table", "admin")
	v.SetDefault("permissions.baseline_role", "")

	v.SetDefault("monitoring.prometheus.enabled", true)
	v.SetDefault("monitoring.prometheus.endpoint", "/metrics")

	v.SetDefault("maintenance.cache_cleanup", "@every 1h")
	v.SetDefault("maintenance.menu_reload", "@every 1m")
}

func decodeHook() viper.DecoderConfigOption {
	return func(dc *mapstructure.DecoderConfig) {
		dc.TagName = "mapstructure"
		dc.DecodeHook = mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
		)
	}
}
