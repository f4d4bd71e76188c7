// internal/summarizer/summarizer.go
package summarizer

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	custom_errors "commitlens/internal/errors"
	"commitlens/internal/model"
)

const (
	// Inputs longer than this many runes are truncated before submission.
	maxInputRunes = 1000
	// Inputs shorter than this many runes get a clarifying prefix.
	minInputRunes = 50

	truncationMarker = "\n...[diff truncated]"
	shortInputPrefix = "Commit message: "

	defaultTimeout = 60 * time.Second
)

//go:embed commit_summary.md
var commitSummaryPrompt string

// Generator produces text from a prompt. It is the only part that talks to a model.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// Summarizer turns diffs into short natural-language summaries.
type Summarizer struct {
	gen     Generator
	logger  *slog.Logger
	timeout time.Duration
}

// New creates a Summarizer backed by gen.
func New(gen Generator, logger *slog.Logger) *Summarizer {
	return &Summarizer{
		gen:     gen,
		logger:  logger,
		timeout: defaultTimeout,
	}
}

// Summarize returns a summary of text. The returned string is always usable:
// on failure it is model.SummaryFailed and the error is a
// *custom_errors.SummarizationFailure explaining why.
func (s *Summarizer) Summarize(ctx context.Context, text string) (string, error) {
	prompt := BuildPrompt(text)

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	out, err := s.gen.Generate(ctx, prompt)
	if err == nil && strings.TrimSpace(out) == "" {
		err = errors.New("model returned an empty summary")
	}
	if err != nil {
		s.logger.Warn("Summary generation failed", "error", err)
		return model.SummaryFailed, &custom_errors.SummarizationFailure{Err: err}
	}
	return strings.TrimSpace(out), nil
}

// BuildPrompt renders the prompt template around the prepared input.
func BuildPrompt(text string) string {
	return fmt.Sprintf(strings.TrimSpace(commitSummaryPrompt), prepareInput(text))
}

// prepareInput bounds the input size and pads very short inputs with context.
func prepareInput(text string) string {
	runes := []rune(text)
	switch {
	case len(runes) > maxInputRunes:
		return string(runes[:maxInputRunes]) + truncationMarker
	case len(runes) < minInputRunes:
		return shortInputPrefix + text
	default:
		return text
	}
}
