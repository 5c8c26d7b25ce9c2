package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/workhivehq/workhive/internal/models"
)

func openCacheTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.CacheEntry{}))

	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })

	return db
}

func TestDatabaseStoreSetGetDelete(t *testing.T) {
	store := NewDatabaseStore(openCacheTestDB(t))
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "greeting", []byte("hello"), time.Minute))

	value, ok, err := store.Get(ctx, "greeting")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, []byte("hello"), value)

	require.NoError(t, store.Delete(ctx, "greeting"))

	_, ok, err = store.Get(ctx, "greeting")
	require.NoError(t, err)
	require.False(t, ok)
}

func TestDatabaseStoreExpiry(t *testing.T) {
	store := NewDatabaseStore(openCacheTestDB(t))
	current := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return current }

	ctx := context.Background()
	require.NoError(t, store.Set(ctx, "short", []byte("v"), time.Minute))

	current = current.Add(2 * time.Minute)
	_, ok, err := store.Get(ctx, "short")
	require.NoError(t, err)
	require.False(t, ok)
}

func TestDatabaseStoreIncrementWindow(t *testing.T) {
	store := NewDatabaseStore(openCacheTestDB(t))
	current := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return current }

	ctx := context.Background()

	count, _, err := store.IncrementWithTTL(ctx, "rate:127.0.0.1", time.Minute)
	require.NoError(t, err)
	require.EqualValues(t, 1, count)

	count, _, err = store.IncrementWithTTL(ctx, "rate:127.0.0.1", time.Minute)
	require.NoError(t, err)
	require.EqualValues(t, 2, count)

	// A fresh window restarts the counter.
	current = current.Add(2 * time.Minute)
	count, _, err = store.IncrementWithTTL(ctx, "rate:127.0.0.1", time.Minute)
	require.NoError(t, err)
	require.EqualValues(t, 1, count)
}
