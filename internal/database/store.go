// internal/database/store.go
package database

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
)

// TxDBTX is a DBTX that can also open transactions, such as *pgxpool.Pool.
type TxDBTX interface {
	DBTX
	Begin(ctx context.Context) (pgx.Tx, error)
}

// Store adds multi-statement operations on top of Queries.
type Store struct {
	*Queries
	db TxDBTX
}

// NewStore wraps db.
func NewStore(db TxDBTX) *Store {
	return &Store{Queries: New(db), db: db}
}

// CreateProjectForUser inserts a project and links it to userID in one transaction.
func (s *Store) CreateProjectForUser(ctx context.Context, userID string, arg CreateProjectParams) (Project, error) {
	var project Project
	err := pgx.BeginFunc(ctx, s.db, func(tx pgx.Tx) error {
		q := s.WithTx(tx)

		var err error
		project, err = q.CreateProject(ctx, arg)
		if err != nil {
			return fmt.Errorf("creating project: %w", err)
		}
		if err := q.LinkUserToProject(ctx, LinkUserToProjectParams{UserID: userID, ProjectID: project.ID}); err != nil {
			return fmt.Errorf("linking project to user: %w", err)
		}
		return nil
	})
	if err != nil {
		return Project{}, err
	}
	return project, nil
}
