package app

import (
	"time"

	"github.com/charlesng35/gymadmin/internal/auth"
)

const (
	defaultLoginRequests = 10
	defaultLoginWindow   = time.Minute
)

// JWTServiceConfig converts AuthConfig into the parameters expected by the JWT service.
// Tokens never outlive the session they name.
func (c AuthConfig) JWTServiceConfig() auth.JWTConfig {
	ttl := c.JWT.TTL
	if ttl <= 0 {
		ttl = auth.DefaultAccessTokenTTL
	}
	if session := c.SessionServiceConfig().TTL; ttl > session {
		ttl = session
	}

	return auth.JWTConfig{
		Secret:         c.JWT.Secret,
		Issuer:         c.JWT.Issuer,
		AccessTokenTTL: ttl,
	}
}

// SessionServiceConfig converts AuthConfig into SessionService parameters.
func (c AuthConfig) SessionServiceConfig() auth.SessionConfig {
	ttl := c.Session.TTL
	if ttl <= 0 {
		ttl = auth.DefaultSessionTTL
	}
	return auth.SessionConfig{TTL: ttl}
}

// LoginRateLimit returns the login throttle, falling back to defaults.
func (c AuthConfig) LoginRateLimit() (int, time.Duration) {
	requests := c.RateLimit.Requests
	if requests <= 0 {
		requests = defaultLoginRequests
	}
	window := c.RateLimit.Window
	if window <= 0 {
		window = defaultLoginWindow
	}
	return requests, window
}
