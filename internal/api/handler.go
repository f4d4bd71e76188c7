// internal/api/handler.go
package api

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"commitlens/internal/database"
	custom_errors "commitlens/internal/errors"
	"commitlens/internal/model"
	"commitlens/internal/syncer"
)

const (
	readTimeout = 60 * time.Second
	// Sync and backfill walk the whole history and call the model per commit.
	runTimeout = 10 * time.Minute
)

// Store is the part of the database layer the API reads and writes.
type Store interface {
	CreateProjectForUser(ctx context.Context, userID string, arg database.CreateProjectParams) (database.Project, error)
	GetProjectForUser(ctx context.Context, arg database.GetProjectForUserParams) (database.Project, error)
	ListProjectsByUser(ctx context.Context, userID string) ([]database.Project, error)
	SoftDeleteProject(ctx context.Context, id string) (int64, error)
	ListCommitsByProject(ctx context.Context, projectID string) ([]database.Commit, error)
}

// RepositoryVerifier confirms that a repository exists before a project is created.
type RepositoryVerifier interface {
	GetRepository(ctx context.Context, owner, name string) (*model.RepoIdentifier, error)
}

// Handler is the container for API dependencies.
type Handler struct {
	store    Store
	runner   syncer.ProjectRunner
	verifier RepositoryVerifier
	logger   *slog.Logger
	newID    func() string
}

// NewRouter creates and configures a new chi router with all API routes.
func NewRouter(store Store, runner syncer.ProjectRunner, verifier RepositoryVerifier, logger *slog.Logger) http.Handler {
	h := &Handler{
		store:    store,
		runner:   runner,
		verifier: verifier,
		logger:   logger,
		newID:    uuid.NewString,
	}

	r := chi.NewRouter()

	// Middleware stack
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger) // Chi's default logger
	r.Use(middleware.Recoverer)

	// API Routes
	r.With(middleware.Timeout(readTimeout)).Get("/health", h.healthCheck)
	r.Route("/v1/projects", func(r chi.Router) {
		r.Use(requireUser)

		r.Group(func(r chi.Router) {
			r.Use(middleware.Timeout(readTimeout))
			r.Get("/", h.listProjects)
			r.Delete("/{id}", h.deleteProject)
			r.Get("/{id}/commits", h.getCommits)
		})

		r.Group(func(r chi.Router) {
			r.Use(middleware.Timeout(runTimeout))
			r.Post("/", h.createProject)
			r.Post("/{id}/sync", h.syncProject)
			r.Post("/{id}/backfill", h.backfillProject)
		})
	})

	return r
}

// healthCheck is a simple health endpoint.
func (h *Handler) healthCheck(w http.ResponseWriter, r *http.Request) {
	respondWithJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type createProjectRequest struct {
	Name      string `json:"name"`
	GithubURL string `json:"github_url"`
}

type createProjectResponse struct {
	Project model.Project     `json:"project"`
	Sync    *model.SyncResult `json:"sync"`
}

// createProject registers a repository for the caller and runs the first sync.
// POST /v1/projects
func (h *Handler) createProject(w http.ResponseWriter, r *http.Request) {
	userID := userFromContext(r.Context())

	var req createProjectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	req.Name = strings.TrimSpace(req.Name)
	req.GithubURL = strings.TrimSpace(req.GithubURL)
	if req.Name == "" {
		respondWithError(w, http.StatusBadRequest, "'name' is required")
		return
	}

	repo, err := syncer.ParseRepositoryURL(req.GithubURL)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}
	if _, err := h.verifier.GetRepository(r.Context(), repo.Owner, repo.Name); err != nil {
		if errors.Is(err, custom_errors.ErrRepositoryNotFound) {
			respondWithError(w, http.StatusBadRequest, "Repository not found")
			return
		}
		h.logger.Error("Failed to verify repository", "repo", repo.String(), "error", err)
		respondWithError(w, http.StatusBadGateway, "Could not reach the repository host")
		return
	}

	project, err := h.store.CreateProjectForUser(r.Context(), userID, database.CreateProjectParams{
		ID:        h.newID(),
		Name:      req.Name,
		GithubUrl: req.GithubURL,
	})
	if err != nil {
		h.logger.Error("Failed to create project", "error", err)
		respondWithError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	result, err := h.runner.SyncProject(r.Context(), project.ID, project.GithubUrl)
	if err != nil {
		h.logger.Error("Initial sync failed", "project_id", project.ID, "error", err)
		respondWithError(w, http.StatusBadGateway, "could not sync commits")
		return
	}

	respondWithJSON(w, http.StatusCreated, createProjectResponse{Project: project.Model(), Sync: result})
}

// listProjects returns the caller's active projects.
// GET /v1/projects
func (h *Handler) listProjects(w http.ResponseWriter, r *http.Request) {
	projects, err := h.store.ListProjectsByUser(r.Context(), userFromContext(r.Context()))
	if err != nil {
		h.logger.Error("Failed to list projects", "error", err)
		respondWithError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	out := make([]model.Project, 0, len(projects))
	for _, p := range projects {
		out = append(out, p.Model())
	}
	respondWithJSON(w, http.StatusOK, out)
}

// deleteProject soft-deletes a project.
// DELETE /v1/projects/{id}
func (h *Handler) deleteProject(w http.ResponseWriter, r *http.Request) {
	project, ok := h.loadProject(w, r)
	if !ok {
		return
	}

	n, err := h.store.SoftDeleteProject(r.Context(), project.ID)
	if err != nil {
		h.logger.Error("Failed to delete project", "project_id", project.ID, "error", err)
		respondWithError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	if n == 0 {
		respondWithError(w, http.StatusNotFound, "Project not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// getCommits returns the project's commit timeline, newest first.
// GET /v1/projects/{id}/commits
func (h *Handler) getCommits(w http.ResponseWriter, r *http.Request) {
	project, ok := h.loadProject(w, r)
	if !ok {
		return
	}

	commits, err := h.store.ListCommitsByProject(r.Context(), project.ID)
	if err != nil {
		h.logger.Error("Failed to get commits", "project_id", project.ID, "error", err)
		respondWithError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	out := make([]model.Commit, 0, len(commits))
	for _, c := range commits {
		out = append(out, c.Model())
	}
	respondWithJSON(w, http.StatusOK, out)
}

// syncProject runs a sync for one project.
// POST /v1/projects/{id}/sync
func (h *Handler) syncProject(w http.ResponseWriter, r *http.Request) {
	project, ok := h.loadProject(w, r)
	if !ok {
		return
	}

	result, err := h.runner.SyncProject(r.Context(), project.ID, project.GithubUrl)
	if err != nil {
		h.respondWithRunError(w, project.ID, "sync", err)
		return
	}
	respondWithJSON(w, http.StatusOK, result)
}

// backfillProject retries missing summaries for one project.
// POST /v1/projects/{id}/backfill
func (h *Handler) backfillProject(w http.ResponseWriter, r *http.Request) {
	project, ok := h.loadProject(w, r)
	if !ok {
		return
	}

	result, err := h.runner.BackfillSummaries(r.Context(), project.ID, project.GithubUrl)
	if err != nil {
		h.respondWithRunError(w, project.ID, "backfill", err)
		return
	}
	respondWithJSON(w, http.StatusOK, result)
}

// loadProject resolves {id} for the caller and writes a 404 when it is not visible.
func (h *Handler) loadProject(w http.ResponseWriter, r *http.Request) (database.Project, bool) {
	id := chi.URLParam(r, "id")
	project, err := h.store.GetProjectForUser(r.Context(), database.GetProjectForUserParams{
		ID:     id,
		UserID: userFromContext(r.Context()),
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			respondWithError(w, http.StatusNotFound, "Project not found")
			return database.Project{}, false
		}
		h.logger.Error("Failed to get project", "project_id", id, "error", err)
		respondWithError(w, http.StatusInternalServerError, "Internal server error")
		return database.Project{}, false
	}
	return project, true
}

func (h *Handler) respondWithRunError(w http.ResponseWriter, projectID, op string, err error) {
	var (
		inProgress *custom_errors.ErrSyncInProgress
		invalidURL *custom_errors.ErrInvalidRepositoryURL
		fetchErr   *custom_errors.SourceFetchError
	)
	switch {
	case errors.As(err, &inProgress):
		respondWithError(w, http.StatusConflict, err.Error())
	case errors.As(err, &invalidURL):
		respondWithError(w, http.StatusUnprocessableEntity, err.Error())
	case errors.As(err, &fetchErr):
		h.logger.Error("Commit source failed", "project_id", projectID, "op", op, "error", err)
		respondWithError(w, http.StatusBadGateway, "could not sync commits")
	case errors.Is(err, context.DeadlineExceeded):
		respondWithError(w, http.StatusGatewayTimeout, op+" timed out")
	default:
		h.logger.Error("Run failed", "project_id", projectID, "op", op, "error", err)
		respondWithError(w, http.StatusInternalServerError, "Internal server error")
	}
}
