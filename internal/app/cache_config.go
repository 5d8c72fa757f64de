package app

import (
	"strings"
	"time"

	"github.com/charlesng35/gymadmin/internal/cache"
)

const (
	cacheBackendRedis    = "redis"
	cacheBackendDatabase = "database"

	defaultRedisTimeout = 5 * time.Second
)

// Backend names the store sessions and rate-limit counters are written to
// when Redis is reachable.
func (c CacheConfig) Backend() string {
	if c.Redis.Enabled && strings.TrimSpace(c.Redis.Address) != "" {
		return cacheBackendRedis
	}
	return cacheBackendDatabase
}

// RedisClientConfig maps the redis section onto cache.RedisConfig.
func (c CacheConfig) RedisClientConfig() cache.RedisConfig {
	timeout := c.Redis.Timeout
	if timeout <= 0 {
		timeout = defaultRedisTimeout
	}
	return cache.RedisConfig{
		Address:  strings.TrimSpace(c.Redis.Address),
		Username: strings.TrimSpace(c.Redis.Username),
		Password: c.Redis.Password,
		DB:       c.Redis.DB,
		TLS:      c.Redis.TLS,
		Timeout:  timeout,
	}
}
