// internal/github/client.go
package github

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/go-github/v62/github"
	"golang.org/x/oauth2"

	custom_errors "commitlens/internal/errors"
	"commitlens/internal/model"
)

const (
	// Total attempts per API call, including the first one.
	maxRetries = 3
	// Page size requested from the commits endpoint.
	commitsPerPage = 100
	// Upper bound on how long a single rate-limit wait may last.
	maxRateLimitWait = 5 * time.Minute
)

// Client is a wrapper around the go-github client.
type Client struct {
	gh         *github.Client
	logger     *slog.Logger
	retryDelay time.Duration
}

// NewClient creates and configures a new Client instance.
// The provided token is used to create an authenticated http.Client; an empty
// token yields an anonymous client. A non-empty baseURL points the client at a
// GitHub Enterprise server.
func NewClient(token, baseURL string, logger *slog.Logger) (*Client, error) {
	var httpClient *http.Client
	if token != "" {
		ts := oauth2.StaticTokenSource(
			&oauth2.Token{AccessToken: token},
		)
		httpClient = oauth2.NewClient(context.Background(), ts)
	}

	gh := github.NewClient(httpClient)
	if baseURL != "" {
		var err error
		gh, err = gh.WithEnterpriseURLs(baseURL, baseURL)
		if err != nil {
			return nil, fmt.Errorf("invalid GitHub base url: %w", err)
		}
	}

	return &Client{
		gh:         gh,
		logger:     logger,
		retryDelay: 500 * time.Millisecond,
	}, nil
}

// GetRepository fetches repository details and translates them to our internal model.
func (c *Client) GetRepository(ctx context.Context, owner, name string) (*model.RepoIdentifier, error) {
	var repo *github.Repository
	err := c.withRetry(ctx, "get repository", func() (*github.Response, error) {
		var resp *github.Response
		var err error
		repo, resp, err = c.gh.Repositories.Get(ctx, owner, name)
		return resp, err
	})
	if err != nil {
		var ghErr *github.ErrorResponse
		if errors.As(err, &ghErr) && ghErr.Response != nil && ghErr.Response.StatusCode == http.StatusNotFound {
			return nil, fmt.Errorf("%s/%s: %w", owner, name, custom_errors.ErrRepositoryNotFound)
		}
		return nil, err
	}
	return &model.RepoIdentifier{Owner: repo.GetOwner().GetLogin(), Name: repo.GetName()}, nil
}

// ListCommits fetches one page of commits. Pages start at 1; the second return
// value reports whether the API advertised a further page.
func (c *Client) ListCommits(ctx context.Context, owner, name string, page int) ([]model.RawCommit, bool, error) {
	opts := &github.CommitsListOptions{
		ListOptions: github.ListOptions{
			Page:    page,
			PerPage: commitsPerPage,
		},
	}

	c.logger.Debug("Fetching commits page", "owner", owner, "repo", name, "page", page)

	var commits []*github.RepositoryCommit
	var resp *github.Response
	err := c.withRetry(ctx, "list commits", func() (*github.Response, error) {
		var err error
		commits, resp, err = c.gh.Repositories.ListCommits(ctx, owner, name, opts)
		return resp, err
	})
	if err != nil {
		// An empty repository answers 409 Conflict rather than an empty list.
		var ghErr *github.ErrorResponse
		if errors.As(err, &ghErr) && ghErr.Response != nil && ghErr.Response.StatusCode == http.StatusConflict {
			return nil, false, nil
		}
		return nil, false, err
	}

	out := make([]model.RawCommit, 0, len(commits))
	for _, commit := range commits {
		out = append(out, toRawCommit(commit))
	}
	return out, resp.NextPage != 0, nil
}

// GetDiff fetches the unified diff of a single commit. An empty string means
// the commit has no textual changes.
func (c *Client) GetDiff(ctx context.Context, owner, name, sha string) (string, error) {
	var diff string
	err := c.withRetry(ctx, "get commit diff", func() (*github.Response, error) {
		var resp *github.Response
		var err error
		diff, resp, err = c.gh.Repositories.GetCommitRaw(ctx, owner, name, sha, github.RawOptions{Type: github.Diff})
		return resp, err
	})
	if err != nil {
		return "", err
	}
	return diff, nil
}

// withRetry runs call until it succeeds, fails with a non-retryable error or
// maxRetries attempts are used. Server errors back off linearly; rate-limit
// errors wait until the advertised reset.
func (c *Client) withRetry(ctx context.Context, op string, call func() (*github.Response, error)) error {
	var err error
	for attempt := 1; attempt <= maxRetries; attempt++ {
		_, err = call()
		if err == nil {
			return nil
		}

		wait, retryable := c.retryWait(err, attempt)
		if !retryable || attempt == maxRetries {
			return err
		}

		c.logger.Warn("GitHub API call failed, retrying", "op", op, "attempt", attempt, "wait", wait.String(), "error", err)
		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}
	return err
}

func (c *Client) retryWait(err error, attempt int) (time.Duration, bool) {
	backoff := c.retryDelay * time.Duration(attempt)

	var rateErr *github.RateLimitError
	if errors.As(err, &rateErr) {
		wait := time.Until(rateErr.Rate.Reset.Time)
		if wait > maxRateLimitWait {
			return 0, false
		}
		return max(wait, backoff), true
	}

	var abuseErr *github.AbuseRateLimitError
	if errors.As(err, &abuseErr) {
		wait := abuseErr.GetRetryAfter()
		if wait > maxRateLimitWait {
			return 0, false
		}
		return max(wait, backoff), true
	}

	var ghErr *github.ErrorResponse
	if errors.As(err, &ghErr) && ghErr.Response != nil && ghErr.Response.StatusCode >= http.StatusInternalServerError {
		return backoff, true
	}

	return 0, false
}

// toRawCommit translates a github.RepositoryCommit object to our internal model.RawCommit.
func toRawCommit(c *github.RepositoryCommit) model.RawCommit {
	return model.RawCommit{
		SHA:         c.GetSHA(),
		Message:     c.GetCommit().GetMessage(),
		AuthorName:  c.GetCommit().GetAuthor().GetName(),
		AuthorLogin: c.GetAuthor().GetLogin(),
		AvatarURL:   c.GetAuthor().GetAvatarURL(),
		AuthoredAt:  c.GetCommit().GetAuthor().GetDate().Time,
	}
}
