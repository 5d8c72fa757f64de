package database

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/charlesng35/gymadmin/internal/models"
)

func TestGetAndUpsertSystemSetting(t *testing.T) {
	db := openSystemSettingTestDB(t)

	value, err := GetSystemSetting(context.Background(), db, "missing")
	require.NoError(t, err)
	require.Equal(t, "", value)

	require.NoError(t, UpsertSystemSetting(context.Background(), db, "sample", "value1"))

	retrieved, err := GetSystemSetting(context.Background(), db, "sample")
	require.NoError(t, err)
	require.Equal(t, "value1", retrieved)

	require.NoError(t, UpsertSystemSetting(context.Background(), db, "sample", "value2"))

	retrieved, err = GetSystemSetting(context.Background(), db, "sample")
	require.NoError(t, err)
	require.Equal(t, "value2", retrieved)
}

func TestResolveJWTSecretKeepsFirstValue(t *testing.T) {
	db := openSystemSettingTestDB(t)
	ctx := context.Background()

	secret, err := ResolveJWTSecret(ctx, db, "initial")
	require.NoError(t, err)
	require.Equal(t, "initial", secret)

	secret, err = ResolveJWTSecret(ctx, db, "rotated")
	require.NoError(t, err)
	require.Equal(t, "initial", secret)
}

func TestResolveJWTSecretRejectsEmptyCandidate(t *testing.T) {
	db := openSystemSettingTestDB(t)

	_, err := ResolveJWTSecret(context.Background(), db, "  ")
	require.Error(t, err)
}

func TestUpsertSystemSettingRequiresKey(t *testing.T) {
	db := openSystemSettingTestDB(t)
	require.Error(t, UpsertSystemSetting(context.Background(), db, " ", "v"))
	require.Error(t, UpsertSystemSetting(context.Background(), nil, "k", "v"))
}

func openSystemSettingTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db := openTestDB(t)
	require.NoError(t, db.AutoMigrate(&models.SystemSetting{}))
	return db
}
