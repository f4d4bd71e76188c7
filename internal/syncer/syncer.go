// internal/syncer/syncer.go
package syncer

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"commitlens/internal/database"
	custom_errors "commitlens/internal/errors"
	"commitlens/internal/model"
)

// ProjectLister returns the projects a sync cycle should visit.
type ProjectLister interface {
	ListActiveProjects(ctx context.Context) ([]database.Project, error)
}

// ProjectRunner is implemented by Engine.
type ProjectRunner interface {
	SyncProject(ctx context.Context, projectID, repositoryURL string) (*model.SyncResult, error)
	BackfillSummaries(ctx context.Context, projectID, repositoryURL string) (*model.BackfillResult, error)
}

// Options tune the periodic scheduler.
type Options struct {
	Interval    time.Duration
	Concurrency int
	Backfill    bool
}

// Syncer periodically syncs every active project.
type Syncer struct {
	projects ProjectLister
	runner   ProjectRunner
	logger   *slog.Logger
	opts     Options
}

// NewSyncer creates a new Syncer instance.
func NewSyncer(projects ProjectLister, runner ProjectRunner, logger *slog.Logger, opts Options) *Syncer {
	if opts.Concurrency < 1 {
		opts.Concurrency = 1
	}
	return &Syncer{
		projects: projects,
		runner:   runner,
		logger:   logger,
		opts:     opts,
	}
}

// Start runs a cycle immediately and then every Interval until ctx is done.
// A zero Interval runs nothing.
func (s *Syncer) Start(ctx context.Context) {
	if s.opts.Interval <= 0 {
		s.logger.Info("Periodic sync disabled")
		return
	}
	s.logger.Info("Starting syncer", "interval", s.opts.Interval.String(), "concurrency", s.opts.Concurrency)
	ticker := time.NewTicker(s.opts.Interval)
	defer ticker.Stop()

	s.runLogged(ctx) // Initial sync

	for {
		select {
		case <-ticker.C:
			s.runLogged(ctx)
		case <-ctx.Done():
			s.logger.Info("Syncer shutting down", "reason", ctx.Err())
			return
		}
	}
}

func (s *Syncer) runLogged(ctx context.Context) {
	if err := s.RunCycle(ctx); err != nil && !errors.Is(err, context.Canceled) {
		s.logger.Error("Sync cycle finished with an error", "error", err)
	}
}

// RunCycle performs a synchronization pass for all active projects concurrently.
// Per-project failures are logged; only a failure to list projects is returned.
func (s *Syncer) RunCycle(ctx context.Context) error {
	s.logger.Info("Starting new sync cycle")
	projects, err := s.projects.ListActiveProjects(ctx)
	if err != nil {
		return err
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.opts.Concurrency)

	for _, p := range projects {
		g.Go(func() error {
			if gctx.Err() != nil {
				return nil
			}
			s.syncProject(gctx, p)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return err
	}
	s.logger.Info("Sync cycle finished", "projects", len(projects))
	return ctx.Err()
}

func (s *Syncer) syncProject(ctx context.Context, p database.Project) {
	logger := s.logger.With("project_id", p.ID)
	if p.GithubUrl == "" {
		logger.Warn("Project has no GitHub URL, skipping")
		return
	}

	_, err := s.runner.SyncProject(ctx, p.ID, p.GithubUrl)
	var inProgress *custom_errors.ErrSyncInProgress
	switch {
	case errors.As(err, &inProgress):
		logger.Info("Sync already running, skipping project")
		return
	case err != nil:
		if !errors.Is(err, context.Canceled) {
			logger.Error("Failed to sync project", "error", err)
		}
		return
	}

	if !s.opts.Backfill {
		return
	}
	if _, err := s.runner.BackfillSummaries(ctx, p.ID, p.GithubUrl); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("Failed to backfill summaries", "error", err)
	}
}
