// internal/app/app.go
package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"

	"commitlens/internal/config"
	"commitlens/internal/database"
	"commitlens/internal/github"
	"commitlens/internal/lock"
	"commitlens/internal/summarizer"
	"commitlens/internal/syncer"
)

// App holds the long-lived components shared by the service and the admin CLI.
type App struct {
	Config *config.Config
	Logger *slog.Logger
	Pool   *pgxpool.Pool
	Store  *database.Store
	GitHub *github.Client
	Engine *syncer.Engine

	closers []func()
}

// New connects to Postgres, builds the GitHub client, the summarizer and the
// project locker, and wires them into a sync engine.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	a := &App{Config: cfg, Logger: logger}

	pool, err := pgxpool.New(ctx, cfg.DBURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	a.closers = append(a.closers, pool.Close)
	a.Pool = pool
	a.Store = database.NewStore(pool)

	a.GitHub, err = github.NewClient(cfg.GithubToken, cfg.GithubBaseURL, logger)
	if err != nil {
		a.Close()
		return nil, err
	}

	locker, err := a.newLocker(ctx)
	if err != nil {
		a.Close()
		return nil, err
	}

	gen := summarizer.NewGeminiGenerator(cfg.GeminiAPIKey, cfg.GeminiModel, cfg.GeminiBaseURL)
	a.Engine = syncer.NewEngine(syncer.Deps{
		Store:      a.Store,
		Source:     a.GitHub,
		Summarizer: summarizer.New(gen, logger),
		Locker:     locker,
	}, logger, cfg.SummaryWorkers)

	return a, nil
}

// NewSyncer returns the periodic scheduler over every active project.
func (a *App) NewSyncer() *syncer.Syncer {
	return syncer.NewSyncer(a.Store, a.Engine, a.Logger, syncer.Options{
		Interval:    a.Config.SyncInterval,
		Concurrency: a.Config.SyncConcurrency,
		Backfill:    a.Config.BackfillOnSync,
	})
}

// Close releases resources in reverse order of creation.
func (a *App) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
	a.closers = nil
}

func (a *App) newLocker(ctx context.Context) (lock.Locker, error) {
	if a.Config.RedisAddr == "" {
		a.Logger.Info("Using in-process project locks")
		return lock.NewMemory(), nil
	}

	r, err := lock.NewRedis(ctx, lock.RedisConfig{
		Addr:     a.Config.RedisAddr,
		Password: a.Config.RedisPassword,
		TTL:      a.Config.LockTTL,
	}, a.Logger)
	if err != nil {
		return nil, err
	}
	a.closers = append(a.closers, func() {
		if err := r.Close(); err != nil {
			a.Logger.Warn("Failed to close redis client", "error", err)
		}
	})
	a.Logger.Info("Using redis project locks", "addr", a.Config.RedisAddr)
	return r, nil
}

// NewLogger returns a JSON logger writing to w and the level variable behind it.
func NewLogger(w io.Writer) (*slog.Logger, *slog.LevelVar) {
	level := new(slog.LevelVar)
	handler := slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level})
	return slog.New(handler), level
}

// SetLogLevel maps a LOG_LEVEL value onto v. Unknown values select info.
func SetLogLevel(level string, v *slog.LevelVar) {
	switch strings.ToLower(level) {
	case "debug":
		v.Set(slog.LevelDebug)
	case "warn":
		v.Set(slog.LevelWarn)
	case "error":
		v.Set(slog.LevelError)
	default:
		v.Set(slog.LevelInfo)
	}
}
