package testutil

import (
	"encoding/json"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/charlesng35/gymadmin/internal/database"
	"github.com/charlesng35/gymadmin/internal/models"
	"github.com/charlesng35/gymadmin/internal/permissions"
)

// TestDBOption customises MustOpenTestDB.
type TestDBOption func(*testDBConfig)

type testDBConfig struct {
	autoMigrate bool
	menus       []permissions.MenuDocument
}

// WithAutoMigrate creates every table before the database is returned.
func WithAutoMigrate() TestDBOption {
	return func(cfg *testDBConfig) {
		cfg.autoMigrate = true
	}
}

// WithMenuRevision stores doc as the next menu revision, as if an
// administrator had saved it. Implies WithAutoMigrate.
func WithMenuRevision(doc permissions.MenuDocument) TestDBOption {
	return func(cfg *testDBConfig) {
		cfg.autoMigrate = true
		cfg.menus = append(cfg.menus, doc)
	}
}

// MustOpenTestDB opens an in-memory SQLite database private to t. Naming the
// shared-cache database after the test keeps parallel tests apart while every
// pooled connection sees the same data. The handle is closed via t.Cleanup.
func MustOpenTestDB(t *testing.T, opts ...TestDBOption) *gorm.DB {
	t.Helper()

	cfg := testDBConfig{}
	for _, opt := range opts {
		opt(&cfg)
	}

	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&_foreign_keys=1", name)

	db, err := database.Open(database.Config{Driver: "sqlite", DSN: dsn})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = sqlDB.Close()
	})

	if cfg.autoMigrate {
		require.NoError(t, database.AutoMigrate(db))
	}
	for i, doc := range cfg.menus {
		payload, err := json.Marshal(doc)
		require.NoError(t, err)
		require.NoError(t, db.Create(&models.MenuConfig{
			Version:  i + 1,
			Document: datatypes.JSON(payload),
			Source:   "test",
		}).Error)
	}

	return db
}
