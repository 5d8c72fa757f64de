package app

import (
	"errors"
	"strings"

	"github.com/charlesng35/gymadmin/internal/permissions"
	"github.com/charlesng35/gymadmin/pkg/crypto"
)

const jwtSecretBytes = 48

// GeneratedDefaults records which values ApplyRuntimeDefaults had to invent.
// A generated JWT secret is replaced by the persisted one at bootstrap.
type GeneratedDefaults struct {
	JWTSecret bool
}

// Keys lists the configuration keys that were generated, for logging.
func (g GeneratedDefaults) Keys() []string {
	var keys []string
	if g.JWTSecret {
		keys = append(keys, "auth.jwt.secret")
	}
	return keys
}

// ApplyRuntimeDefaults fills values that must exist before the server can
// start even when no configuration file was supplied.
func ApplyRuntimeDefaults(cfg *Config) (GeneratedDefaults, error) {
	var generated GeneratedDefaults
	if cfg == nil {
		return generated, errors.New("config is nil")
	}

	if strings.TrimSpace(cfg.Auth.JWT.Secret) == "" {
		secret, err := crypto.GenerateToken(jwtSecretBytes)
		if err != nil {
			return generated, err
		}
		cfg.Auth.JWT.Secret = secret
		generated.JWTSecret = true
	}

	cfg.Permissions.AdminTable = strings.TrimSpace(cfg.Permissions.AdminTable)
	if cfg.Permissions.AdminTable == "" {
		cfg.Permissions.AdminTable = permissions.DefaultAdminTable
	}
	cfg.Permissions.BaselineRole = strings.TrimSpace(cfg.Permissions.BaselineRole)

	return generated, nil
}
