// internal/database/commits.sql.go
package database

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
)

const commitExists = `-- name: CommitExists :one
SELECT EXISTS (
    SELECT 1 FROM commits WHERE project_id = $1 AND commit_hash = $2
)`

type CommitExistsParams struct {
	ProjectID  string
	CommitHash string
}

func (q *Queries) CommitExists(ctx context.Context, arg CommitExistsParams) (bool, error) {
	var exists bool
	err := q.db.QueryRow(ctx, commitExists, arg.ProjectID, arg.CommitHash).Scan(&exists)
	return exists, err
}

const createCommit = `-- name: CreateCommit :execrows
INSERT INTO commits (
    id, project_id, commit_hash, commit_message, commit_author_name,
    commit_author_avatar, commit_date, summary
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
ON CONFLICT (project_id, commit_hash) DO NOTHING`

type CreateCommitParams struct {
	ID                 string
	ProjectID          string
	CommitHash         string
	CommitMessage      string
	CommitAuthorName   string
	CommitAuthorAvatar string
	CommitDate         time.Time
	Summary            pgtype.Text
}

// CreateCommit inserts one commit and reports 0 rows when it already exists.
func (q *Queries) CreateCommit(ctx context.Context, arg CreateCommitParams) (int64, error) {
	tag, err := q.db.Exec(ctx, createCommit,
		arg.ID,
		arg.ProjectID,
		arg.CommitHash,
		arg.CommitMessage,
		arg.CommitAuthorName,
		arg.CommitAuthorAvatar,
		arg.CommitDate,
		arg.Summary,
	)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

var commitCopyColumns = []string{
	"id",
	"project_id",
	"commit_hash",
	"commit_message",
	"commit_author_name",
	"commit_author_avatar",
	"commit_date",
	"summary",
}

// CreateCommits bulk-loads commits with COPY. The copy is a single statement:
// one conflicting row fails the whole batch and nothing is written.
func (q *Queries) CreateCommits(ctx context.Context, arg []CreateCommitParams) (int64, error) {
	return q.db.CopyFrom(ctx, pgx.Identifier{"commits"}, commitCopyColumns, pgx.CopyFromSlice(len(arg), func(i int) ([]any, error) {
		c := arg[i]
		return []any{
			c.ID,
			c.ProjectID,
			c.CommitHash,
			c.CommitMessage,
			c.CommitAuthorName,
			c.CommitAuthorAvatar,
			c.CommitDate,
			c.Summary,
		}, nil
	}))
}

const listCommitsByProject = `-- name: ListCommitsByProject :many
SELECT id, project_id, commit_hash, commit_message, commit_author_name,
       commit_author_avatar, commit_date, summary, created_at
FROM commits
WHERE project_id = $1
ORDER BY commit_date DESC, created_at DESC`

func (q *Queries) ListCommitsByProject(ctx context.Context, projectID string) ([]Commit, error) {
	rows, err := q.db.Query(ctx, listCommitsByProject, projectID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := []Commit{}
	for rows.Next() {
		var c Commit
		if err := rows.Scan(
			&c.ID,
			&c.ProjectID,
			&c.CommitHash,
			&c.CommitMessage,
			&c.CommitAuthorName,
			&c.CommitAuthorAvatar,
			&c.CommitDate,
			&c.Summary,
			&c.CreatedAt,
		); err != nil {
			return nil, err
		}
		items = append(items, c)
	}
	return items, rows.Err()
}

const listCommitHashesByProject = `-- name: ListCommitHashesByProject :many
SELECT commit_hash FROM commits WHERE project_id = $1`

func (q *Queries) ListCommitHashesByProject(ctx context.Context, projectID string) ([]string, error) {
	rows, err := q.db.Query(ctx, listCommitHashesByProject, projectID)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, pgx.RowTo[string])
}

const updateCommitSummary = `-- name: UpdateCommitSummary :exec
UPDATE commits SET summary = $2 WHERE id = $1`

type UpdateCommitSummaryParams struct {
	ID      string
	Summary pgtype.Text
}

func (q *Queries) UpdateCommitSummary(ctx context.Context, arg UpdateCommitSummaryParams) error {
	_, err := q.db.Exec(ctx, updateCommitSummary, arg.ID, arg.Summary)
	return err
}
