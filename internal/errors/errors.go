// internal/errors/errors.go
package errors

import (
	"errors"
	"fmt"
)

// ErrProjectNotFound is returned when a project does not exist or is not visible to the caller.
var ErrProjectNotFound = errors.New("project not found")

// ErrRepositoryNotFound is returned when the code host does not know the repository
// or hides it from the configured credentials.
var ErrRepositoryNotFound = errors.New("repository not found")

// ErrInvalidRepositoryURL is returned when a repository URL cannot be split into owner and repo.
type ErrInvalidRepositoryURL struct {
	URL string
}

func (e *ErrInvalidRepositoryURL) Error() string {
	return fmt.Sprintf("invalid repository url: %q, expected '.../owner/repo'", e.URL)
}

// SourceFetchError wraps a failure of the commit source while listing commits.
// No partial listing is trusted once it occurs.
type SourceFetchError struct {
	Owner string
	Repo  string
	Page  int
	Err   error
}

func (e *SourceFetchError) Error() string {
	return fmt.Sprintf("fetching commits for %s/%s (page %d): %v", e.Owner, e.Repo, e.Page, e.Err)
}

func (e *SourceFetchError) Unwrap() error { return e.Err }

// SummarizationFailure describes why a summary could not be produced for a commit.
type SummarizationFailure struct {
	Hash string
	Err  error
}

func (e *SummarizationFailure) Error() string {
	if e.Hash == "" {
		return fmt.Sprintf("summarization failed: %v", e.Err)
	}
	return fmt.Sprintf("summarization failed for commit %s: %v", e.Hash, e.Err)
}

func (e *SummarizationFailure) Unwrap() error { return e.Err }

// PersistenceFailure describes a commit that could not be written to the store.
type PersistenceFailure struct {
	Hash string
	Err  error
}

func (e *PersistenceFailure) Error() string {
	return fmt.Sprintf("persisting commit %s: %v", e.Hash, e.Err)
}

func (e *PersistenceFailure) Unwrap() error { return e.Err }

// ErrSyncInProgress is returned when another sync or backfill run holds the project's lock.
type ErrSyncInProgress struct {
	ProjectID string
}

func (e *ErrSyncInProgress) Error() string {
	return fmt.Sprintf("a sync is already running for project %s", e.ProjectID)
}
