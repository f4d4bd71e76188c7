// internal/model/models_test.go
package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeCommit(t *testing.T) {
	now := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)

	t.Run("keeps values the source provided", func(t *testing.T) {
		authored := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
		c := NormalizeCommit("p1", RawCommit{
			SHA:         "abc",
			Message:     "feat: add thing",
			AuthorName:  "Ada",
			AuthorLogin: "ada",
			AvatarURL:   "https://avatars/ada.png",
			AuthoredAt:  authored,
		}, now)

		assert.Equal(t, "p1", c.ProjectID)
		assert.Equal(t, "abc", c.Hash)
		assert.Equal(t, "Ada", c.AuthorName)
		assert.Equal(t, "https://avatars/ada.png", c.AuthorAvatarURL)
		assert.Equal(t, authored, c.AuthoredAt)
		assert.Empty(t, c.Summary)
	})

	t.Run("falls back to the login when the name is missing", func(t *testing.T) {
		c := NormalizeCommit("p1", RawCommit{SHA: "abc", AuthorLogin: "ada"}, now)
		assert.Equal(t, "ada", c.AuthorName)
	})

	t.Run("fills every field when the source omits them", func(t *testing.T) {
		c := NormalizeCommit("p1", RawCommit{SHA: "abc", AuthorName: "   "}, now)

		assert.Equal(t, UnknownAuthor, c.AuthorName)
		assert.Equal(t, DefaultAvatar, c.AuthorAvatarURL)
		assert.Equal(t, now, c.AuthoredAt)
	})
}

func TestNeedsSummary(t *testing.T) {
	for _, summary := range []string{"", "  ", SummaryNoChanges, SummaryFailed} {
		assert.True(t, NeedsSummary(summary), "summary %q", summary)
	}
	assert.False(t, NeedsSummary("Adds retry handling to the GitHub client"))
}
