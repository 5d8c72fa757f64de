package database

import (
	"context"
	"strconv"

	"gorm.io/gorm"

	"github.com/charlesng35/gymadmin/internal/models"
)

// SchemaVersion is bumped whenever a model change needs more than AutoMigrate.
const SchemaVersion = 1

// SchemaVersionSetting records the SchemaVersion the database was last migrated to.
const SchemaVersionSetting = "schema.version"

// Models lists every persisted model in dependency order.
func Models() []any {
	return []any{
		&models.Account{},
		&models.MenuConfig{},
		&models.CacheEntry{},
		&models.SystemSetting{},
	}
}

// AutoMigrate brings the schema up to date and stamps SchemaVersion.
func AutoMigrate(db *gorm.DB) error {
	if err := db.AutoMigrate(Models()...); err != nil {
		return err
	}
	return UpsertSystemSetting(context.Background(), db, SchemaVersionSetting, strconv.Itoa(SchemaVersion))
}
