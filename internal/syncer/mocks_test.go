// internal/syncer/mocks_test.go
package syncer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sync"

	"github.com/stretchr/testify/mock"

	"commitlens/internal/database"
	"commitlens/internal/model"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))
}

// MockSource is a mock of the CommitSource interface.
type MockSource struct {
	mock.Mock
}

func (m *MockSource) ListCommits(ctx context.Context, owner, name string, page int) ([]model.RawCommit, bool, error) {
	args := m.Called(ctx, owner, name, page)
	commits, _ := args.Get(0).([]model.RawCommit)
	return commits, args.Bool(1), args.Error(2)
}

func (m *MockSource) GetDiff(ctx context.Context, owner, name, sha string) (string, error) {
	args := m.Called(ctx, owner, name, sha)
	return args.String(0), args.Error(1)
}

// MockSummarizer is a mock of the Summarizer interface.
type MockSummarizer struct {
	mock.Mock
}

func (m *MockSummarizer) Summarize(ctx context.Context, text string) (string, error) {
	args := m.Called(ctx, text)
	return args.String(0), args.Error(1)
}

// memStore is an in-memory CommitStore that enforces the (project, hash) uniqueness
// a Postgres unique constraint would.
type memStore struct {
	mu         sync.Mutex
	commits    []database.Commit
	failBulk   bool
	failInsert map[string]bool
	failUpdate map[string]bool
	updates    int
}

func newMemStore(seed ...database.Commit) *memStore {
	return &memStore{
		commits:    seed,
		failInsert: map[string]bool{},
		failUpdate: map[string]bool{},
	}
}

func (s *memStore) existsLocked(projectID, hash string) bool {
	for _, c := range s.commits {
		if c.ProjectID == projectID && c.CommitHash == hash {
			return true
		}
	}
	return false
}

func toRow(p database.CreateCommitParams) database.Commit {
	return database.Commit{
		ID:                 p.ID,
		ProjectID:          p.ProjectID,
		CommitHash:         p.CommitHash,
		CommitMessage:      p.CommitMessage,
		CommitAuthorName:   p.CommitAuthorName,
		CommitAuthorAvatar: p.CommitAuthorAvatar,
		CommitDate:         p.CommitDate,
		Summary:            p.Summary,
	}
}

func (s *memStore) CommitExists(_ context.Context, arg database.CommitExistsParams) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.existsLocked(arg.ProjectID, arg.CommitHash), nil
}

func (s *memStore) CreateCommit(_ context.Context, arg database.CreateCommitParams) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failInsert[arg.CommitHash] {
		return 0, fmt.Errorf("insert %s: connection reset", arg.CommitHash)
	}
	if s.existsLocked(arg.ProjectID, arg.CommitHash) {
		return 0, nil
	}
	s.commits = append(s.commits, toRow(arg))
	return 1, nil
}

func (s *memStore) CreateCommits(_ context.Context, arg []database.CreateCommitParams) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failBulk {
		return 0, errors.New("copy failed")
	}
	for _, p := range arg {
		if s.existsLocked(p.ProjectID, p.CommitHash) || s.failInsert[p.CommitHash] {
			return 0, fmt.Errorf("duplicate key value violates unique constraint for %s", p.CommitHash)
		}
	}
	for _, p := range arg {
		s.commits = append(s.commits, toRow(p))
	}
	return int64(len(arg)), nil
}

func (s *memStore) ListCommitsByProject(_ context.Context, projectID string) ([]database.Commit, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []database.Commit
	for _, c := range s.commits {
		if c.ProjectID == projectID {
			out = append(out, c)
		}
	}
	return out, nil
}

func (s *memStore) ListCommitHashesByProject(_ context.Context, projectID string) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []string
	for _, c := range s.commits {
		if c.ProjectID == projectID {
			out = append(out, c.CommitHash)
		}
	}
	return out, nil
}

func (s *memStore) UpdateCommitSummary(_ context.Context, arg database.UpdateCommitSummaryParams) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failUpdate[arg.ID] {
		return errors.New("update failed")
	}
	for i := range s.commits {
		if s.commits[i].ID == arg.ID {
			s.commits[i].Summary = arg.Summary
			s.updates++
			return nil
		}
	}
	return fmt.Errorf("commit %s not found", arg.ID)
}

// byHash returns the stored commits of projectID keyed by hash.
func (s *memStore) byHash(projectID string) map[string]database.Commit {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := map[string]database.Commit{}
	for _, c := range s.commits {
		if c.ProjectID == projectID {
			out[c.CommitHash] = c
		}
	}
	return out
}

// count returns the number of stored rows for projectID, duplicates included.
func (s *memStore) count(projectID string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, c := range s.commits {
		if c.ProjectID == projectID {
			n++
		}
	}
	return n
}
