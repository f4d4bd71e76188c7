// internal/syncer/url.go
package syncer

import (
	"strings"

	custom_errors "commitlens/internal/errors"
	"commitlens/internal/model"
)

// ParseRepositoryURL takes the last two path segments of url as owner and repo.
// A trailing slash and a ".git" suffix are ignored.
func ParseRepositoryURL(url string) (model.RepoIdentifier, error) {
	trimmed := strings.TrimSuffix(strings.TrimSpace(url), "/")
	trimmed = strings.TrimSuffix(trimmed, ".git")

	parts := strings.Split(trimmed, "/")
	if len(parts) < 2 {
		return model.RepoIdentifier{}, &custom_errors.ErrInvalidRepositoryURL{URL: url}
	}
	owner, name := parts[len(parts)-2], parts[len(parts)-1]
	if owner == "" || name == "" {
		return model.RepoIdentifier{}, &custom_errors.ErrInvalidRepositoryURL{URL: url}
	}
	return model.RepoIdentifier{Owner: owner, Name: name}, nil
}
