// internal/model/models.go
package model

import (
	"strings"
	"time"
)

// Fallback values applied when the commit source omits a field.
const (
	UnknownAuthor = "Unknown"
	DefaultAvatar = "https://default-avatar-url.com"
)

// Sentinel summaries stored in place of a generated one.
const (
	SummaryNoChanges = "No changes detected."
	SummaryFailed    = "Summary could not be generated."
)

// RepairableSummaries lists the sentinel values a backfill pass retries.
var RepairableSummaries = []string{SummaryNoChanges, SummaryFailed}

// RepoIdentifier holds the owner and name of a repository.
type RepoIdentifier struct {
	Owner string
	Name  string
}

func (r RepoIdentifier) String() string {
	return r.Owner + "/" + r.Name
}

// Project links a user-facing name to a GitHub repository.
type Project struct {
	ID        string     `json:"id"`
	Name      string     `json:"name"`
	GithubURL string     `json:"github_url"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
	DeletedAt *time.Time `json:"deleted_at,omitempty"`
}

// RawCommit is a commit as returned by the commit source, before fallbacks.
type RawCommit struct {
	SHA         string
	Message     string
	AuthorName  string
	AuthorLogin string
	AvatarURL   string
	AuthoredAt  time.Time
}

// Commit is a commit as persisted for a project.
type Commit struct {
	ID              string    `json:"id"`
	ProjectID       string    `json:"project_id"`
	Hash            string    `json:"commit_hash"`
	Message         string    `json:"commit_message"`
	AuthorName      string    `json:"commit_author_name"`
	AuthorAvatarURL string    `json:"commit_author_avatar"`
	AuthoredAt      time.Time `json:"commit_date"`
	Summary         string    `json:"summary"`
	CreatedAt       time.Time `json:"created_at"`
}

// NormalizeCommit applies the fallback rules so that no field of the result is empty
// except the summary, which is filled in later.
func NormalizeCommit(projectID string, raw RawCommit, now time.Time) Commit {
	author := strings.TrimSpace(raw.AuthorName)
	if author == "" {
		author = strings.TrimSpace(raw.AuthorLogin)
	}
	if author == "" {
		author = UnknownAuthor
	}

	avatar := raw.AvatarURL
	if avatar == "" {
		avatar = DefaultAvatar
	}

	authoredAt := raw.AuthoredAt
	if authoredAt.IsZero() {
		authoredAt = now
	}

	return Commit{
		ProjectID:       projectID,
		Hash:            raw.SHA,
		Message:         raw.Message,
		AuthorName:      author,
		AuthorAvatarURL: avatar,
		AuthoredAt:      authoredAt.UTC(),
	}
}

// NeedsSummary reports whether a stored summary is missing or one of the sentinels.
func NeedsSummary(summary string) bool {
	if strings.TrimSpace(summary) == "" {
		return true
	}
	for _, s := range RepairableSummaries {
		if summary == s {
			return true
		}
	}
	return false
}

// Failure stages recorded in CommitFailure.
const (
	StageSummarize = "summarize"
	StagePersist   = "persist"
)

// CommitFailure records a per-commit soft failure.
type CommitFailure struct {
	Hash  string `json:"hash"`
	Stage string `json:"stage"`
	Error string `json:"error"`
}

// SyncResult summarizes one sync run for a project.
type SyncResult struct {
	ProjectID string          `json:"project_id"`
	Fetched   int             `json:"fetched"`
	Skipped   int             `json:"skipped"`
	Persisted int             `json:"newly_persisted"`
	Failures  []CommitFailure `json:"failures"`
}

// BackfillResult summarizes one backfill run for a project.
type BackfillResult struct {
	ProjectID  string          `json:"project_id"`
	Candidates int             `json:"candidates"`
	Repaired   int             `json:"repaired"`
	Skipped    int             `json:"skipped"`
	Failed     int             `json:"failed"`
	Failures   []CommitFailure `json:"failures"`
}
