package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/charlesng35/gymadmin/internal/auth"
	"github.com/charlesng35/gymadmin/internal/cache"
	"github.com/charlesng35/gymadmin/internal/database/testutil"
	"github.com/charlesng35/gymadmin/internal/permissions"
)

func newTestSessions(t *testing.T, db *gorm.DB) *auth.SessionService {
	t.Helper()

	jwtSvc, err := auth.NewJWTService(auth.JWTConfig{Secret: "test-secret", Issuer: "gymadmin"})
	require.NoError(t, err)

	sessions, err := auth.NewSessionService(cache.NewDatabaseStore(db), jwtSvc, auth.SessionConfig{TTL: time.Hour})
	require.NoError(t, err)
	return sessions
}

func newTestAuthService(t *testing.T) (*AuthService, *gorm.DB) {
	t.Helper()

	db := testutil.MustOpenTestDB(t, testutil.WithAutoMigrate())
	svc, err := NewAuthService(db, newTestSessions(t, db), permissions.NewResolver(nil))
	require.NoError(t, err)
	return svc, db
}
