// internal/database/db.go
package database

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// DBTX is satisfied by *pgxpool.Pool, *pgx.Conn and pgx.Tx.
type DBTX interface {
	Exec(context.Context, string, ...interface{}) (pgconn.CommandTag, error)
	Query(context.Context, string, ...interface{}) (pgx.Rows, error)
	QueryRow(context.Context, string, ...interface{}) pgx.Row
	CopyFrom(ctx context.Context, tableName pgx.Identifier, columnNames []string, rowSrc pgx.CopyFromSource) (int64, error)
}

// Querier lists every query the application runs against Postgres.
type Querier interface {
	CreateProject(ctx context.Context, arg CreateProjectParams) (Project, error)
	LinkUserToProject(ctx context.Context, arg LinkUserToProjectParams) error
	GetProject(ctx context.Context, id string) (Project, error)
	GetProjectForUser(ctx context.Context, arg GetProjectForUserParams) (Project, error)
	GetProjectRepositoryURL(ctx context.Context, id string) (string, error)
	ListProjectsByUser(ctx context.Context, userID string) ([]Project, error)
	ListActiveProjects(ctx context.Context) ([]Project, error)
	SoftDeleteProject(ctx context.Context, id string) (int64, error)

	CommitExists(ctx context.Context, arg CommitExistsParams) (bool, error)
	CreateCommit(ctx context.Context, arg CreateCommitParams) (int64, error)
	CreateCommits(ctx context.Context, arg []CreateCommitParams) (int64, error)
	ListCommitsByProject(ctx context.Context, projectID string) ([]Commit, error)
	ListCommitHashesByProject(ctx context.Context, projectID string) ([]string, error)
	UpdateCommitSummary(ctx context.Context, arg UpdateCommitSummaryParams) error
}

// Queries runs the application's queries against a DBTX.
type Queries struct {
	db DBTX
}

var _ Querier = (*Queries)(nil)

// New wraps db.
func New(db DBTX) *Queries {
	return &Queries{db: db}
}

// WithTx returns a copy of q that runs inside tx.
func (q *Queries) WithTx(tx pgx.Tx) *Queries {
	return &Queries{db: tx}
}
