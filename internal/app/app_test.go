// internal/app/app_test.go
package app

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"commitlens/internal/config"
	"commitlens/internal/lock"
)

func TestSetLogLevel(t *testing.T) {
	cases := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"WARN":    slog.LevelWarn,
		"error":   slog.LevelError,
		"info":    slog.LevelInfo,
		"verbose": slog.LevelInfo,
	}
	for in, want := range cases {
		v := new(slog.LevelVar)
		SetLogLevel(in, v)
		assert.Equal(t, want, v.Level(), in)
	}
}

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer
	logger, level := NewLogger(&buf)

	logger.Debug("hidden")
	SetLogLevel("debug", level)
	logger.Debug("shown", "project_id", "p1")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "shown", entry["msg"])
	assert.Equal(t, "p1", entry["project_id"])
}

func TestNewLocker(t *testing.T) {
	logger, _ := NewLogger(&bytes.Buffer{})
	ctx := context.Background()

	t.Run("memory without redis", func(t *testing.T) {
		a := &App{Config: &config.Config{}, Logger: logger}

		l, err := a.newLocker(ctx)

		require.NoError(t, err)
		assert.IsType(t, &lock.Memory{}, l)
		assert.Empty(t, a.closers)
	})

	t.Run("redis when configured", func(t *testing.T) {
		mr := miniredis.RunT(t)
		a := &App{Config: &config.Config{RedisAddr: mr.Addr(), LockTTL: time.Minute}, Logger: logger}
		defer a.Close()

		l, err := a.newLocker(ctx)

		require.NoError(t, err)
		assert.IsType(t, &lock.Redis{}, l)
		assert.Len(t, a.closers, 1)
	})
}
