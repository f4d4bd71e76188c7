// internal/lock/lock_test.go
package lock

import (
	"context"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))
}

func TestMemory_TryLock(t *testing.T) {
	ctx := context.Background()
	l := NewMemory()

	release, err := l.TryLock(ctx, "project-1")
	require.NoError(t, err)

	_, err = l.TryLock(ctx, "project-1")
	assert.ErrorIs(t, err, ErrLocked)

	other, err := l.TryLock(ctx, "project-2")
	require.NoError(t, err, "different keys are independent")
	other()

	release()
	release() // releasing twice is harmless

	again, err := l.TryLock(ctx, "project-1")
	require.NoError(t, err)
	again()
}

func setupRedis(t *testing.T, ttl time.Duration) (*Redis, *miniredis.Miniredis) {
	mini, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mini.Close)

	l, err := NewRedis(context.Background(), RedisConfig{Addr: mini.Addr(), TTL: ttl}, testLogger())
	require.NoError(t, err)
	t.Cleanup(func() { _ = l.Close() })
	return l, mini
}

func TestRedis_TryLock(t *testing.T) {
	ctx := context.Background()

	t.Run("excludes a second holder until released", func(t *testing.T) {
		l, mini := setupRedis(t, time.Minute)

		release, err := l.TryLock(ctx, "project-1")
		require.NoError(t, err)
		assert.True(t, mini.Exists(keyPrefix+"project-1"))

		_, err = l.TryLock(ctx, "project-1")
		assert.ErrorIs(t, err, ErrLocked)

		release()
		assert.False(t, mini.Exists(keyPrefix+"project-1"))

		again, err := l.TryLock(ctx, "project-1")
		require.NoError(t, err)
		again()
	})

	t.Run("expired lock can be taken over and is not released by the old holder", func(t *testing.T) {
		l, mini := setupRedis(t, time.Second)

		staleRelease, err := l.TryLock(ctx, "project-1")
		require.NoError(t, err)

		mini.FastForward(2 * time.Second)

		release, err := l.TryLock(ctx, "project-1")
		require.NoError(t, err)

		staleRelease()
		assert.True(t, mini.Exists(keyPrefix+"project-1"), "stale release must not drop the new holder's lock")

		release()
		assert.False(t, mini.Exists(keyPrefix+"project-1"))
	})

	t.Run("fails to connect to an unreachable server", func(t *testing.T) {
		_, err := NewRedis(ctx, RedisConfig{Addr: "127.0.0.1:1"}, testLogger())
		assert.Error(t, err)
	})
}
