package database

import (
	"context"
	"strconv"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/charlesng35/gymadmin/internal/models"
)

func TestAutoMigrateCreatesTables(t *testing.T) {
	db := openTestDB(t)
	require.NoError(t, AutoMigrate(db))

	migrator := db.Migrator()
	for _, model := range Models() {
		require.True(t, migrator.HasTable(model), "expected table for %T to exist", model)
	}
	require.True(t, migrator.HasIndex(&models.Account{}, "idx_accounts_table_username"))
	require.True(t, migrator.HasColumn(&models.CacheEntry{}, "cache_key"))
	require.True(t, migrator.HasColumn(&models.SystemSetting{}, "setting_key"))
}

func TestAutoMigrateStampsSchemaVersion(t *testing.T) {
	db := openTestDB(t)

	require.NoError(t, AutoMigrate(db))
	require.NoError(t, AutoMigrate(db))

	version, err := GetSystemSetting(context.Background(), db, SchemaVersionSetting)
	require.NoError(t, err)
	require.Equal(t, strconv.Itoa(SchemaVersion), version)

	var rows int64
	require.NoError(t, db.Model(&models.SystemSetting{}).Count(&rows).Error)
	require.EqualValues(t, 1, rows)
}
