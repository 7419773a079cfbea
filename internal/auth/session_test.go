package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
	"gorm.io/gorm"
)

func TestDBSessionStore(t *testing.T) {
	ctx := context.Background()
	_, db := setupTest(t)
	store := NewDBSessionStore(db, time.Hour, zap.NewNop())
	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return now }

	id, err := store.Create(ctx, 7)
	require.NoError(t, err)

	userID, err := store.Lookup(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, uint(7), userID)

	t.Run("Unknown id", func(t *testing.T) {
		_, err := store.Lookup(ctx, "does-not-exist")
		assert.ErrorIs(t, err, ErrSessionNotFound)
	})

	t.Run("Expired session", func(t *testing.T) {
		expiring, err := store.Create(ctx, 8)
		require.NoError(t, err)

		now = now.Add(2 * time.Hour)
		_, err = store.Lookup(ctx, expiring)
		assert.ErrorIs(t, err, ErrSessionNotFound)

		var count int64
		db.Table("sessions").Where("id = ?", expiring).Count(&count)
		assert.Equal(t, int64(0), count)
	})

	t.Run("Destroy", func(t *testing.T) {
		id, err := store.Create(ctx, 9)
		require.NoError(t, err)

		require.NoError(t, store.Destroy(ctx, id))
		_, err = store.Lookup(ctx, id)
		assert.ErrorIs(t, err, ErrSessionNotFound)
	})
}

func TestDBSessionStore_ExpiredCleanupFailureIsLogged(t *testing.T) {
	// Arrange
	ctx := context.Background()
	_, db := setupTest(t)
	core, logs := observer.New(zapcore.DebugLevel)
	store := NewDBSessionStore(db, time.Hour, zap.New(core))
	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return now }

	id, err := store.Create(ctx, 3)
	require.NoError(t, err)
	require.NoError(t, db.Callback().Delete().Before("gorm:delete").Register("test:fail_delete", func(tx *gorm.DB) {
		_ = tx.AddError(errors.New("disk I/O error"))
	}))
	now = now.Add(2 * time.Hour)

	// Act
	_, err = store.Lookup(ctx, id)

	// Assert
	assert.ErrorIs(t, err, ErrSessionNotFound)
	entries := logs.FilterMessage("Failed to remove expired session").All()
	if assert.Len(t, entries, 1) {
		assert.Equal(t, zapcore.DebugLevel, entries[0].Level)
		assert.Equal(t, "disk I/O error", entries[0].ContextMap()["error"])
	}
}

func TestRedisSessionStore(t *testing.T) {
	ctx := context.Background()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer rdb.Close()

	store := NewRedisSessionStore(rdb, time.Hour)

	id, err := store.Create(ctx, 11)
	require.NoError(t, err)
	assert.True(t, mr.Exists("session:"+id))

	userID, err := store.Lookup(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, uint(11), userID)

	t.Run("Expires with TTL", func(t *testing.T) {
		expiring, err := store.Create(ctx, 12)
		require.NoError(t, err)

		mr.FastForward(2 * time.Hour)

		_, err = store.Lookup(ctx, expiring)
		assert.ErrorIs(t, err, ErrSessionNotFound)
	})

	t.Run("Destroy", func(t *testing.T) {
		id, err := store.Create(ctx, 13)
		require.NoError(t, err)

		require.NoError(t, store.Destroy(ctx, id))
		_, err = store.Lookup(ctx, id)
		assert.ErrorIs(t, err, ErrSessionNotFound)
	})

	t.Run("Corrupt value", func(t *testing.T) {
		require.NoError(t, mr.Set("session:bad", "not-a-number"))

		_, err := store.Lookup(ctx, "bad")
		assert.Error(t, err)
		assert.NotErrorIs(t, err, ErrSessionNotFound)
	})
}
