// internal/syncer/syncer_test.go
package syncer

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"commitlens/internal/database"
	custom_errors "commitlens/internal/errors"
	"commitlens/internal/model"
)

// MockProjectLister is a mock of the ProjectLister interface.
type MockProjectLister struct {
	mock.Mock
}

func (m *MockProjectLister) ListActiveProjects(ctx context.Context) ([]database.Project, error) {
	args := m.Called(ctx)
	projects, _ := args.Get(0).([]database.Project)
	return projects, args.Error(1)
}

// MockRunner is a mock of the ProjectRunner interface.
type MockRunner struct {
	mock.Mock
}

func (m *MockRunner) SyncProject(ctx context.Context, projectID, repositoryURL string) (*model.SyncResult, error) {
	args := m.Called(ctx, projectID, repositoryURL)
	result, _ := args.Get(0).(*model.SyncResult)
	return result, args.Error(1)
}

func (m *MockRunner) BackfillSummaries(ctx context.Context, projectID, repositoryURL string) (*model.BackfillResult, error) {
	args := m.Called(ctx, projectID, repositoryURL)
	result, _ := args.Get(0).(*model.BackfillResult)
	return result, args.Error(1)
}

func TestSyncer_RunCycle(t *testing.T) {
	ctx := context.Background()

	t.Run("syncs and backfills every project with a url", func(t *testing.T) {
		lister := new(MockProjectLister)
		lister.On("ListActiveProjects", mock.Anything).Return([]database.Project{
			{ID: "p1", GithubUrl: "https://github.com/a/one"},
			{ID: "p2", GithubUrl: "https://github.com/a/two"},
			{ID: "p3", GithubUrl: ""},
		}, nil).Once()
		runner := new(MockRunner)
		runner.On("SyncProject", mock.Anything, "p1", "https://github.com/a/one").Return(&model.SyncResult{}, nil).Once()
		runner.On("SyncProject", mock.Anything, "p2", "https://github.com/a/two").Return(&model.SyncResult{}, nil).Once()
		runner.On("BackfillSummaries", mock.Anything, "p1", "https://github.com/a/one").Return(&model.BackfillResult{}, nil).Once()
		runner.On("BackfillSummaries", mock.Anything, "p2", "https://github.com/a/two").Return(&model.BackfillResult{}, nil).Once()

		s := NewSyncer(lister, runner, testLogger(), Options{Concurrency: 2, Backfill: true})
		err := s.RunCycle(ctx)

		assert.NoError(t, err)
		runner.AssertExpectations(t)
		runner.AssertNotCalled(t, "SyncProject", mock.Anything, "p3", mock.Anything)
	})

	t.Run("one failing project does not stop the others", func(t *testing.T) {
		lister := new(MockProjectLister)
		lister.On("ListActiveProjects", mock.Anything).Return([]database.Project{
			{ID: "p1", GithubUrl: "https://github.com/a/one"},
			{ID: "p2", GithubUrl: "https://github.com/a/two"},
		}, nil).Once()
		runner := new(MockRunner)
		runner.On("SyncProject", mock.Anything, "p1", mock.Anything).Return(nil, &custom_errors.SourceFetchError{Owner: "a", Repo: "one", Page: 1, Err: errors.New("boom")}).Once()
		runner.On("SyncProject", mock.Anything, "p2", mock.Anything).Return(&model.SyncResult{}, nil).Once()

		s := NewSyncer(lister, runner, testLogger(), Options{Concurrency: 1})
		err := s.RunCycle(ctx)

		assert.NoError(t, err)
		runner.AssertExpectations(t)
		runner.AssertNotCalled(t, "BackfillSummaries", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("skips backfill when a sync is already running", func(t *testing.T) {
		lister := new(MockProjectLister)
		lister.On("ListActiveProjects", mock.Anything).Return([]database.Project{
			{ID: "p1", GithubUrl: "https://github.com/a/one"},
		}, nil).Once()
		runner := new(MockRunner)
		runner.On("SyncProject", mock.Anything, "p1", mock.Anything).Return(nil, &custom_errors.ErrSyncInProgress{ProjectID: "p1"}).Once()

		s := NewSyncer(lister, runner, testLogger(), Options{Concurrency: 1, Backfill: true})

		assert.NoError(t, s.RunCycle(ctx))
		runner.AssertNotCalled(t, "BackfillSummaries", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("returns an error when projects cannot be listed", func(t *testing.T) {
		lister := new(MockProjectLister)
		dbErr := errors.New("unexpected database error")
		lister.On("ListActiveProjects", mock.Anything).Return(nil, dbErr).Once()
		runner := new(MockRunner)

		s := NewSyncer(lister, runner, testLogger(), Options{Concurrency: 1})

		assert.Equal(t, dbErr, s.RunCycle(ctx))
		runner.AssertNotCalled(t, "SyncProject", mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestSyncer_StartDisabled(t *testing.T) {
	lister := new(MockProjectLister)
	s := NewSyncer(lister, new(MockRunner), testLogger(), Options{})

	s.Start(context.Background()) // returns immediately with a zero interval

	lister.AssertNotCalled(t, "ListActiveProjects", mock.Anything)
}
