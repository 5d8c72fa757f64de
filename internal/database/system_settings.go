package database

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/charlesng35/gymadmin/internal/models"
)

// JWTSecretSetting holds the signing secret generated on first start.
const JWTSecretSetting = "auth.jwt_secret"

var errNilDB = errors.New("system settings: db is nil")

// GetSystemSetting returns the stored value for key, or "" when it is unset.
func GetSystemSetting(ctx context.Context, db *gorm.DB, key string) (string, error) {
	if db == nil {
		return "", errNilDB
	}

	var setting models.SystemSetting
	err := db.WithContext(ctx).Take(&setting, "setting_key = ?", strings.TrimSpace(key)).Error
	switch {
	case err == nil:
		return setting.Value, nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return "", nil
	default:
		return "", fmt.Errorf("system settings: get %q: %w", key, err)
	}
}

// UpsertSystemSetting writes value under key, replacing any previous value.
func UpsertSystemSetting(ctx context.Context, db *gorm.DB, key, value string) error {
	if db == nil {
		return errNilDB
	}
	key = strings.TrimSpace(key)
	if key == "" {
		return errors.New("system settings: key is required")
	}

	err := db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "setting_key"}},
			DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
		}).
		Create(&models.SystemSetting{Key: key, Value: value}).Error
	if err != nil {
		return fmt.Errorf("system settings: upsert %q: %w", key, err)
	}
	return nil
}

// ResolveJWTSecret returns the persisted signing secret. When none is stored,
// candidate is saved and returned so tokens survive restarts.
func ResolveJWTSecret(ctx context.Context, db *gorm.DB, candidate string) (string, error) {
	current, err := GetSystemSetting(ctx, db, JWTSecretSetting)
	if err != nil {
		return "", err
	}
	if current = strings.TrimSpace(current); current != "" {
		return current, nil
	}

	candidate = strings.TrimSpace(candidate)
	if candidate == "" {
		return "", errors.New("system settings: jwt secret is empty")
	}
	if err := UpsertSystemSetting(ctx, db, JWTSecretSetting, candidate); err != nil {
		return "", err
	}
	return candidate, nil
}
