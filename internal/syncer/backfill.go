// internal/syncer/backfill.go
package syncer

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/jackc/pgx/v5/pgtype"

	"commitlens/internal/database"
	custom_errors "commitlens/internal/errors"
	"commitlens/internal/model"
)

// BackfillSummaries retries summary generation for stored commits whose summary
// is empty or a sentinel. Commits without a diff are left untouched.
func (e *Engine) BackfillSummaries(ctx context.Context, projectID, repositoryURL string) (*model.BackfillResult, error) {
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

	stored, err := e.store.ListCommitsByProject(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("loading commits: %w", err)
	}

	var candidates []database.Commit
	for _, c := range stored {
		if model.NeedsSummary(c.Summary.String) {
			candidates = append(candidates, c)
		}
	}

	result := &model.BackfillResult{
		ProjectID:  projectID,
		Candidates: len(candidates),
		Failures:   []model.CommitFailure{},
	}
	if len(candidates) == 0 {
		logger.Debug("No commits need a summary")
		return result, nil
	}
	logger.Info("Backfilling summaries", "count", len(candidates))

	var mu sync.Mutex
	record := func(apply func()) {
		mu.Lock()
		defer mu.Unlock()
		apply()
	}

	err = e.forEach(ctx, len(candidates), func(ctx context.Context, i int) {
		c := candidates[i]

		diff, err := e.source.GetDiff(ctx, repo.Owner, repo.Name, c.CommitHash)
		if err != nil {
			sf := &custom_errors.SummarizationFailure{Hash: c.CommitHash, Err: fmt.Errorf("fetching diff: %w", err)}
			record(func() {
				result.Failed++
				result.Failures = append(result.Failures, failure(c.CommitHash, model.StageSummarize, sf))
			})
			return
		}
		if strings.TrimSpace(diff) == "" {
			record(func() { result.Skipped++ })
			return
		}

		summary, err := e.summarizer.Summarize(ctx, diff)
		if err != nil {
			logger.Warn("Summary still unavailable", "sha", c.CommitHash, "error", err)
			record(func() {
				result.Failed++
				result.Failures = append(result.Failures, failure(c.CommitHash, model.StageSummarize, err))
			})
			return
		}

		err = e.store.UpdateCommitSummary(ctx, database.UpdateCommitSummaryParams{
			ID:      c.ID,
			Summary: pgtype.Text{String: summary, Valid: true},
		})
		if err != nil {
			pf := &custom_errors.PersistenceFailure{Hash: c.CommitHash, Err: err}
			record(func() {
				result.Failed++
				result.Failures = append(result.Failures, failure(c.CommitHash, model.StagePersist, pf))
			})
			return
		}
		record(func() { result.Repaired++ })
	})
	if err != nil {
		return nil, err
	}

	logger.Info("Backfill finished",
		"repaired", result.Repaired,
		"skipped", result.Skipped,
		"failed", result.Failed)
	return result, nil
}
