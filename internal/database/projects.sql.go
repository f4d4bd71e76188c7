// internal/database/projects.sql.go
package database

import (
	"context"
)

const projectColumns = `id, name, github_url, created_at, updated_at, deleted_at`

func scanProject(row interface{ Scan(...any) error }) (Project, error) {
	var p Project
	err := row.Scan(
		&p.ID,
		&p.Name,
		&p.GithubUrl,
		&p.CreatedAt,
		&p.UpdatedAt,
		&p.DeletedAt,
	)
	return p, err
}

const createProject = `-- name: CreateProject :one
INSERT INTO projects (id, name, github_url)
VALUES ($1, $2, $3)
RETURNING ` + projectColumns

type CreateProjectParams struct {
	ID        string
	Name      string
	GithubUrl string
}

func (q *Queries) CreateProject(ctx context.Context, arg CreateProjectParams) (Project, error) {
	row := q.db.QueryRow(ctx, createProject, arg.ID, arg.Name, arg.GithubUrl)
	return scanProject(row)
}

const linkUserToProject = `-- name: LinkUserToProject :exec
INSERT INTO user_to_projects (user_id, project_id)
VALUES ($1, $2)
ON CONFLICT DO NOTHING`

type LinkUserToProjectParams struct {
	UserID    string
	ProjectID string
}

func (q *Queries) LinkUserToProject(ctx context.Context, arg LinkUserToProjectParams) error {
	_, err := q.db.Exec(ctx, linkUserToProject, arg.UserID, arg.ProjectID)
	return err
}

const getProject = `-- name: GetProject :one
SELECT ` + projectColumns + `
FROM projects
WHERE id = $1 AND deleted_at IS NULL`

func (q *Queries) GetProject(ctx context.Context, id string) (Project, error) {
	row := q.db.QueryRow(ctx, getProject, id)
	return scanProject(row)
}

const getProjectForUser = `-- name: GetProjectForUser :one
SELECT p.id, p.name, p.github_url, p.created_at, p.updated_at, p.deleted_at
FROM projects p
JOIN user_to_projects up ON up.project_id = p.id
WHERE p.id = $1 AND up.user_id = $2 AND p.deleted_at IS NULL`

type GetProjectForUserParams struct {
	ID     string
	UserID string
}

func (q *Queries) GetProjectForUser(ctx context.Context, arg GetProjectForUserParams) (Project, error) {
	row := q.db.QueryRow(ctx, getProjectForUser, arg.ID, arg.UserID)
	return scanProject(row)
}

const getProjectRepositoryURL = `-- name: GetProjectRepositoryURL :one
SELECT github_url
FROM projects
WHERE id = $1 AND deleted_at IS NULL`

func (q *Queries) GetProjectRepositoryURL(ctx context.Context, id string) (string, error) {
	var url string
	err := q.db.QueryRow(ctx, getProjectRepositoryURL, id).Scan(&url)
	return url, err
}

const listProjectsByUser = `-- name: ListProjectsByUser :many
SELECT p.id, p.name, p.github_url, p.created_at, p.updated_at, p.deleted_at
FROM projects p
JOIN user_to_projects up ON up.project_id = p.id
WHERE up.user_id = $1 AND p.deleted_at IS NULL
ORDER BY p.created_at DESC`

func (q *Queries) ListProjectsByUser(ctx context.Context, userID string) ([]Project, error) {
	rows, err := q.db.Query(ctx, listProjectsByUser, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := []Project{}
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, p)
	}
	return items, rows.Err()
}

const listActiveProjects = `-- name: ListActiveProjects :many
SELECT ` + projectColumns + `
FROM projects
WHERE deleted_at IS NULL
ORDER BY created_at`

func (q *Queries) ListActiveProjects(ctx context.Context) ([]Project, error) {
	rows, err := q.db.Query(ctx, listActiveProjects)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := []Project{}
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, p)
	}
	return items, rows.Err()
}

const softDeleteProject = `-- name: SoftDeleteProject :execrows
UPDATE projects
SET deleted_at = NOW(), updated_at = NOW()
WHERE id = $1 AND deleted_at IS NULL`

func (q *Queries) SoftDeleteProject(ctx context.Context, id string) (int64, error) {
	tag, err := q.db.Exec(ctx, softDeleteProject, id)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}
