package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/charlesng35/gymadmin/internal/database/testutil"
)

func newTestStore(t *testing.T) (*DatabaseStore, *time.Time) {
	t.Helper()
	db := testutil.MustOpenTestDB(t, testutil.WithAutoMigrate())

	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	store := NewDatabaseStore(db)
	store.now = func() time.Time { return now }
	return store, &now
}

func TestDatabaseStoreSetGetDelete(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	_, ok, err := store.Get(ctx, "missing")
	require.NoError(t, err)
	require.False(t, ok)

	require.NoError(t, store.Set(ctx, "auth:sessions:1", []byte("one"), time.Minute))
	require.NoError(t, store.Set(ctx, "auth:sessions:1", []byte("two"), time.Minute))

	value, ok, err := store.Get(ctx, "auth:sessions:1")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, []byte("two"), value)

	removed, err := store.Delete(ctx, "auth:sessions:1")
	require.NoError(t, err)
	require.EqualValues(t, 1, removed)

	removed, err = store.Delete(ctx, "auth:sessions:1")
	require.NoError(t, err)
	require.Zero(t, removed)

	_, ok, err = store.Get(ctx, "auth:sessions:1")
	require.NoError(t, err)
	require.False(t, ok)
}

func TestDatabaseStoreExpiry(t *testing.T) {
	store, now := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "short", []byte("v"), time.Second))
	require.NoError(t, store.Set(ctx, "forever", []byte("v"), 0))

	*now = now.Add(time.Hour)

	_, ok, err := store.Get(ctx, "short")
	require.NoError(t, err)
	require.False(t, ok)

	_, ok, err = store.Get(ctx, "forever")
	require.NoError(t, err)
	require.True(t, ok)
}

func TestDatabaseStoreIncrementWithTTL(t *testing.T) {
	store, now := newTestStore(t)
	ctx := context.Background()

	count, ttl, err := store.IncrementWithTTL(ctx, "ratelimit:login", time.Minute)
	require.NoError(t, err)
	require.EqualValues(t, 1, count)
	require.Equal(t, time.Minute, ttl)

	*now = now.Add(10 * time.Second)
	count, ttl, err = store.IncrementWithTTL(ctx, "ratelimit:login", time.Minute)
	require.NoError(t, err)
	require.EqualValues(t, 2, count)
	require.Equal(t, 50*time.Second, ttl)

	*now = now.Add(time.Minute)
	count, _, err = store.IncrementWithTTL(ctx, "ratelimit:login", time.Minute)
	require.NoError(t, err)
	require.EqualValues(t, 1, count)
}

func TestDatabaseStorePurgeExpired(t *testing.T) {
	store, now := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "a", []byte("1"), time.Second))
	require.NoError(t, store.Set(ctx, "b", []byte("1"), time.Hour))
	require.NoError(t, store.Set(ctx, "c", []byte("1"), 0))

	*now = now.Add(time.Minute)

	removed, err := store.PurgeExpired(ctx)
	require.NoError(t, err)
	require.EqualValues(t, 1, removed)

	_, ok, err := store.Get(ctx, "b")
	require.NoError(t, err)
	require.True(t, ok)
}

func TestNilDatabaseStore(t *testing.T) {
	require.Nil(t, NewDatabaseStore(nil))

	var store *DatabaseStore
	_, _, err := store.Get(context.Background(), "k")
	require.Error(t, err)
}
