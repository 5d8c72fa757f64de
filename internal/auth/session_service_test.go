package auth

import (
	"context"
	"testing"
	"time"

	promtest "github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"

	"github.com/charlesng35/gymadmin/internal/cache"
	"github.com/charlesng35/gymadmin/internal/database/testutil"
	"github.com/charlesng35/gymadmin/internal/permissions"
	"github.com/charlesng35/gymadmin/pkg/metrics"
)

type testClock struct {
	current time.Time
}

func (c *testClock) Now() time.Time {
	return c.current
}

func (c *testClock) Advance(d time.Duration) {
	c.current = c.current.Add(d)
}

func setupSessionService(t *testing.T) (*SessionService, *testClock) {
	t.Helper()

	db := testutil.MustOpenTestDB(t, testutil.WithAutoMigrate())
	clock := &testClock{current: time.Now().UTC().Truncate(time.Second)}

	jwtSvc, err := NewJWTService(JWTConfig{
		Secret:         "session-secret",
		Issuer:         "gymadmin",
		AccessTokenTTL: time.Hour,
		Clock:          clock.Now,
	})
	require.NoError(t, err)

	svc, err := NewSessionService(cache.NewDatabaseStore(db), jwtSvc, SessionConfig{
		TTL:   time.Hour,
		Clock: clock.Now,
	})
	require.NoError(t, err)

	return svc, clock
}

func TestNewSessionServiceRequiresDependencies(t *testing.T) {
	_, err := NewSessionService(nil, &JWTService{}, SessionConfig{})
	require.Error(t, err)

	db := testutil.MustOpenTestDB(t, testutil.WithAutoMigrate())
	_, err = NewSessionService(cache.NewDatabaseStore(db), nil, SessionConfig{})
	require.Error(t, err)
}

func TestOpenAndResolveSession(t *testing.T) {
	svc, _ := setupSessionService(t)
	ctx := context.Background()

	token, session, err := svc.Open(ctx, Subject{
		UserID:    "acct-1",
		Username:  " coach ",
		Role:      "教练",
		TableName: "jiaolian",
	}, SessionMetadata{IPAddress: "10.0.0.1 ", UserAgent: "unit-test"})
	require.NoError(t, err)
	require.NotEmpty(t, token)
	require.Equal(t, "coach", session.Username)
	require.Equal(t, "10.0.0.1", session.IPAddress)

	resolved, err := svc.Resolve(ctx, token)
	require.NoError(t, err)
	require.Equal(t, session.ID, resolved.ID)
	require.Equal(t, permissions.Actor{
		UserID:    "acct-1",
		Username:  "coach",
		Role:      "教练",
		TableName: "jiaolian",
	}, resolved.Actor())
}

func TestOpenRequiresUserID(t *testing.T) {
	svc, _ := setupSessionService(t)
	_, _, err := svc.Open(context.Background(), Subject{}, SessionMetadata{})
	require.Error(t, err)
}

func TestCloseSessionInvalidatesToken(t *testing.T) {
	svc, _ := setupSessionService(t)
	ctx := context.Background()

	token, session, err := svc.Open(ctx, Subject{UserID: "acct-1", TableName: "users"}, SessionMetadata{})
	require.NoError(t, err)

	require.NoError(t, svc.Close(ctx, session.ID))

	_, err = svc.Resolve(ctx, token)
	require.ErrorIs(t, err, ErrSessionNotFound)

	require.ErrorIs(t, svc.Close(ctx, session.ID), ErrSessionNotFound)
}

func TestCloseCountsOnlyRemovedSessions(t *testing.T) {
	svc, _ := setupSessionService(t)
	ctx := context.Background()
	closed := metrics.SessionEvents.WithLabelValues("closed")

	_, session, err := svc.Open(ctx, Subject{UserID: "acct-1", TableName: "users"}, SessionMetadata{})
	require.NoError(t, err)

	before := promtest.ToFloat64(closed)
	require.NoError(t, svc.Close(ctx, session.ID))
	require.Equal(t, before+1, promtest.ToFloat64(closed))

	require.ErrorIs(t, svc.Close(ctx, session.ID), ErrSessionNotFound)
	require.Equal(t, before+1, promtest.ToFloat64(closed))
}

// rivalStore removes the key on behalf of another closer just before the
// caller's own delete runs.
type rivalStore struct{ cache.Store }

func (s rivalStore) Delete(ctx context.Context, keys ...string) (int64, error) {
	if _, err := s.Store.Delete(ctx, keys...); err != nil {
		return 0, err
	}
	return s.Store.Delete(ctx, keys...)
}

func TestCloseLosingRaceIsNotCounted(t *testing.T) {
	db := testutil.MustOpenTestDB(t, testutil.WithAutoMigrate())
	jwtSvc, err := NewJWTService(JWTConfig{Secret: "session-secret", Issuer: "gymadmin"})
	require.NoError(t, err)
	svc, err := NewSessionService(rivalStore{cache.NewDatabaseStore(db)}, jwtSvc, SessionConfig{TTL: time.Hour})
	require.NoError(t, err)

	ctx := context.Background()
	_, session, err := svc.Open(ctx, Subject{UserID: "acct-1", TableName: "users"}, SessionMetadata{})
	require.NoError(t, err)

	closed := metrics.SessionEvents.WithLabelValues("closed")
	before := promtest.ToFloat64(closed)
	require.ErrorIs(t, svc.Close(ctx, session.ID), ErrSessionNotFound)
	require.Equal(t, before, promtest.ToFloat64(closed))
}

func TestResolveRejectsBadToken(t *testing.T) {
	svc, _ := setupSessionService(t)

	_, err := svc.Resolve(context.Background(), "not-a-token")
	require.ErrorIs(t, err, ErrSessionInvalidToken)
}

func TestSessionExpires(t *testing.T) {
	svc, clock := setupSessionService(t)
	ctx := context.Background()

	_, session, err := svc.Open(ctx, Subject{UserID: "acct-1"}, SessionMetadata{})
	require.NoError(t, err)

	clock.Advance(2 * time.Hour)

	_, err = svc.Get(ctx, session.ID)
	require.ErrorIs(t, err, ErrSessionNotFound)
}

func TestNilSessionActorIsZero(t *testing.T) {
	var session *Session
	require.True(t, session.Actor().IsZero())
}
