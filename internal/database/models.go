// internal/database/models.go
package database

import (
	"time"

	"github.com/jackc/pgx/v5/pgtype"

	"commitlens/internal/model"
)

type Project struct {
	ID        string
	Name      string
	GithubUrl string
	CreatedAt time.Time
	UpdatedAt time.Time
	DeletedAt pgtype.Timestamptz
}

// Model converts the row to the API model.
func (p Project) Model() model.Project {
	out := model.Project{
		ID:        p.ID,
		Name:      p.Name,
		GithubURL: p.GithubUrl,
		CreatedAt: p.CreatedAt,
		UpdatedAt: p.UpdatedAt,
	}
	if p.DeletedAt.Valid {
		t := p.DeletedAt.Time
		out.DeletedAt = &t
	}
	return out
}

type Commit struct {
	ID                 string
	ProjectID          string
	CommitHash         string
	CommitMessage      string
	CommitAuthorName   string
	CommitAuthorAvatar string
	CommitDate         time.Time
	Summary            pgtype.Text
	CreatedAt          time.Time
}

// Model converts the row to the API model. A NULL summary becomes "".
func (c Commit) Model() model.Commit {
	return model.Commit{
		ID:              c.ID,
		ProjectID:       c.ProjectID,
		Hash:            c.CommitHash,
		Message:         c.CommitMessage,
		AuthorName:      c.CommitAuthorName,
		AuthorAvatarURL: c.CommitAuthorAvatar,
		AuthoredAt:      c.CommitDate,
		Summary:         c.Summary.String,
		CreatedAt:       c.CreatedAt,
	}
}
