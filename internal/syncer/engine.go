// internal/syncer/engine.go
package syncer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
	"golang.org/x/sync/errgroup"

	"commitlens/internal/database"
	custom_errors "commitlens/internal/errors"
	"commitlens/internal/lock"
	"commitlens/internal/model"
)

// CommitSource lists commits and fetches diffs from the code host.
type CommitSource interface {
	ListCommits(ctx context.Context, owner, name string, page int) ([]model.RawCommit, bool, error)
	GetDiff(ctx context.Context, owner, name, sha string) (string, error)
}

// Summarizer turns a diff into a summary. The returned string is always
// storable; a non-nil error explains why it is a sentinel.
type Summarizer interface {
	Summarize(ctx context.Context, text string) (string, error)
}

// CommitStore is the part of database.Querier the engine needs.
type CommitStore interface {
	CommitExists(ctx context.Context, arg database.CommitExistsParams) (bool, error)
	CreateCommit(ctx context.Context, arg database.CreateCommitParams) (int64, error)
	CreateCommits(ctx context.Context, arg []database.CreateCommitParams) (int64, error)
	ListCommitsByProject(ctx context.Context, projectID string) ([]database.Commit, error)
	ListCommitHashesByProject(ctx context.Context, projectID string) ([]string, error)
	UpdateCommitSummary(ctx context.Context, arg database.UpdateCommitSummaryParams) error
}

// Deps bundles the capabilities an Engine is built from.
type Deps struct {
	Store      CommitStore
	Source     CommitSource
	Summarizer Summarizer
	Locker     lock.Locker
}

// Engine syncs a project's commit history into the store and repairs missing summaries.
type Engine struct {
	store      CommitStore
	source     CommitSource
	summarizer Summarizer
	locker     lock.Locker
	logger     *slog.Logger
	workers    int
	now        func() time.Time
	newID      func() string
}

// NewEngine creates an Engine. workers bounds the per-run diff/summary fan-out.
func NewEngine(deps Deps, logger *slog.Logger, workers int) *Engine {
	if workers < 1 {
		workers = 1
	}
	locker := deps.Locker
	if locker == nil {
		locker = lock.NewMemory()
	}
	return &Engine{
		store:      deps.Store,
		source:     deps.Source,
		summarizer: deps.Summarizer,
		locker:     locker,
		logger:     logger,
		workers:    workers,
		now:        time.Now,
		newID:      uuid.NewString,
	}
}

// SyncProject brings the stored history of projectID up to date with the repository.
// Listing failures and an invalid URL abort the run; per-commit summary and
// persistence failures are reported in the result.
func (e *Engine) SyncProject(ctx context.Context, projectID, repositoryURL string) (*model.SyncResult, error) {
	repo, err := ParseRepositoryURL(repositoryURL)
	if err != nil {
		return nil, err
	}

	release, err := e.acquire(ctx, projectID)
	if err != nil {
		return nil, err
	}
	defer release()

	logger := e.logger.With("project_id", projectID, "owner", repo.Owner, "repo", repo.Name)
	logger.Info("Syncing project")

	raw, err := e.fetchAll(ctx, repo)
	if err != nil {
		return nil, err
	}

	result := &model.SyncResult{
		ProjectID: projectID,
		Fetched:   len(raw),
		Failures:  []model.CommitFailure{},
	}
	if len(raw) == 0 {
		logger.Info("No commits found")
		return result, nil
	}

	existing, err := e.store.ListCommitHashesByProject(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("loading existing commits: %w", err)
	}
	known := make(map[string]struct{}, len(existing)+len(raw))
	for _, h := range existing {
		known[h] = struct{}{}
	}

	now := e.now()
	var fresh []model.Commit
	for _, rc := range raw {
		if _, ok := known[rc.SHA]; ok {
			continue
		}
		known[rc.SHA] = struct{}{}
		fresh = append(fresh, model.NormalizeCommit(projectID, rc, now))
	}
	result.Skipped = len(raw) - len(fresh)

	if len(fresh) == 0 {
		logger.Info("No new commits found", "fetched", result.Fetched)
		return result, nil
	}
	logger.Info("Found new commits", "count", len(fresh))

	failures, err := e.summarizeAll(ctx, repo, fresh)
	if err != nil {
		return nil, err
	}
	result.Failures = append(result.Failures, failures...)

	persisted, raced, failures, err := e.persist(ctx, fresh, logger)
	if err != nil {
		return nil, err
	}
	result.Persisted = persisted
	result.Skipped += raced
	result.Failures = append(result.Failures, failures...)

	logger.Info("Sync finished",
		"fetched", result.Fetched,
		"skipped", result.Skipped,
		"persisted", result.Persisted,
		"failures", len(result.Failures))
	return result, nil
}

// fetchAll pages through the source until it reports no further page.
func (e *Engine) fetchAll(ctx context.Context, repo model.RepoIdentifier) ([]model.RawCommit, error) {
	var all []model.RawCommit
	for page := 1; ; page++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		commits, hasNext, err := e.source.ListCommits(ctx, repo.Owner, repo.Name, page)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			return nil, &custom_errors.SourceFetchError{Owner: repo.Owner, Repo: repo.Name, Page: page, Err: err}
		}
		all = append(all, commits...)
		if !hasNext {
			return all, nil
		}
	}
}

// summarizeAll fills in Summary for every commit, fanning out up to e.workers at a time.
func (e *Engine) summarizeAll(ctx context.Context, repo model.RepoIdentifier, commits []model.Commit) ([]model.CommitFailure, error) {
	var mu sync.Mutex
	var failures []model.CommitFailure

	err := e.forEach(ctx, len(commits), func(ctx context.Context, i int) {
		summary, err := e.summarizeCommit(ctx, repo, commits[i].Hash)
		commits[i].Summary = summary
		if err != nil {
			mu.Lock()
			failures = append(failures, failure(commits[i].Hash, model.StageSummarize, err))
			mu.Unlock()
		}
	})
	return failures, err
}

// summarizeCommit never returns an empty summary: missing diffs and failures
// degrade to the sentinels.
func (e *Engine) summarizeCommit(ctx context.Context, repo model.RepoIdentifier, sha string) (string, error) {
	diff, err := e.source.GetDiff(ctx, repo.Owner, repo.Name, sha)
	if err != nil {
		return model.SummaryFailed, &custom_errors.SummarizationFailure{Hash: sha, Err: fmt.Errorf("fetching diff: %w", err)}
	}
	if strings.TrimSpace(diff) == "" {
		return model.SummaryNoChanges, nil
	}

	summary, err := e.summarizer.Summarize(ctx, diff)
	if err != nil {
		var sf *custom_errors.SummarizationFailure
		if !errors.As(err, &sf) {
			sf = &custom_errors.SummarizationFailure{Err: err}
		}
		sf.Hash = sha
		if summary == "" {
			summary = model.SummaryFailed
		}
		return summary, sf
	}
	return summary, nil
}

// persist writes commits with one bulk insert, falling back to per-commit
// inserts so that a single bad row cannot block the rest. It returns the
// number written and the number found to exist already.
func (e *Engine) persist(ctx context.Context, commits []model.Commit, logger *slog.Logger) (int, int, []model.CommitFailure, error) {
	params := make([]database.CreateCommitParams, len(commits))
	for i, c := range commits {
		params[i] = e.toCreateParams(c)
	}

	n, err := e.store.CreateCommits(ctx, params)
	if err == nil {
		logger.Info("Successfully inserted commits into database", "count", n)
		return int(n), 0, nil, nil
	}
	if ctx.Err() != nil {
		return 0, 0, nil, ctx.Err()
	}
	logger.Warn("Bulk insert failed, inserting commits one by one", "error", err)

	var persisted, raced int
	var failures []model.CommitFailure
	for _, p := range params {
		if err := ctx.Err(); err != nil {
			return persisted, raced, failures, err
		}

		exists, err := e.store.CommitExists(ctx, database.CommitExistsParams{ProjectID: p.ProjectID, CommitHash: p.CommitHash})
		if err != nil {
			failures = append(failures, failure(p.CommitHash, model.StagePersist, &custom_errors.PersistenceFailure{Hash: p.CommitHash, Err: err}))
			continue
		}
		if exists {
			raced++
			continue
		}

		rows, err := e.store.CreateCommit(ctx, p)
		switch {
		case err != nil:
			logger.Error("Failed to insert commit", "sha", p.CommitHash, "error", err)
			failures = append(failures, failure(p.CommitHash, model.StagePersist, &custom_errors.PersistenceFailure{Hash: p.CommitHash, Err: err}))
		case rows == 0:
			raced++
		default:
			persisted++
		}
	}
	return persisted, raced, failures, nil
}

func (e *Engine) toCreateParams(c model.Commit) database.CreateCommitParams {
	return database.CreateCommitParams{
		ID:                 e.newID(),
		ProjectID:          c.ProjectID,
		CommitHash:         c.Hash,
		CommitMessage:      c.Message,
		CommitAuthorName:   c.AuthorName,
		CommitAuthorAvatar: c.AuthorAvatarURL,
		CommitDate:         c.AuthoredAt,
		Summary:            pgtype.Text{String: c.Summary, Valid: c.Summary != ""},
	}
}

// forEach runs fn for indexes [0, n) with at most e.workers in flight and
// stops early only on context cancellation.
func (e *Engine) forEach(ctx context.Context, n int, fn func(ctx context.Context, i int)) error {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.workers)
	for i := 0; i < n; i++ {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			fn(gctx, i)
			return gctx.Err()
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	return ctx.Err()
}

func (e *Engine) acquire(ctx context.Context, projectID string) (func(), error) {
	release, err := e.locker.TryLock(ctx, projectID)
	if errors.Is(err, lock.ErrLocked) {
		return nil, &custom_errors.ErrSyncInProgress{ProjectID: projectID}
	}
	if err != nil {
		return nil, err
	}
	return release, nil
}

func failure(hash, stage string, err error) model.CommitFailure {
	return model.CommitFailure{Hash: hash, Stage: stage, Error: err.Error()}
}
