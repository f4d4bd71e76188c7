// internal/summarizer/gemini.go
package summarizer

import (
	"context"
	"fmt"
	"sync"

	"google.golang.org/genai"
)

// GeminiGenerator implements Generator using Google's Gemini Go SDK.
type GeminiGenerator struct {
	apiKey  string
	model   string
	baseURL string

	once    sync.Once
	client  *genai.Client
	initErr error
}

// NewGeminiGenerator returns a generator for model. baseURL may be empty to use
// the SDK's default endpoint. The SDK client is created on first use.
func NewGeminiGenerator(apiKey, model, baseURL string) *GeminiGenerator {
	return &GeminiGenerator{
		apiKey:  apiKey,
		model:   model,
		baseURL: baseURL,
	}
}

func (g *GeminiGenerator) ensureClient(ctx context.Context) error {
	g.once.Do(func() {
		cfg := &genai.ClientConfig{
			Backend: genai.BackendGeminiAPI,
			APIKey:  g.apiKey,
		}
		if g.baseURL != "" {
			cfg.HTTPOptions = genai.HTTPOptions{BaseURL: g.baseURL}
		}
		g.client, g.initErr = genai.NewClient(ctx, cfg)
		if g.initErr != nil {
			g.initErr = fmt.Errorf("failed to create Gemini client: %w", g.initErr)
		}
	})
	return g.initErr
}

// Generate sends prompt as a single user turn and returns the response text.
func (g *GeminiGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	if err := g.ensureClient(ctx); err != nil {
		return "", err
	}

	result, err := g.client.Models.GenerateContent(ctx, g.model, genai.Text(prompt), nil)
	if err != nil {
		return "", fmt.Errorf("Gemini API error: %w", err)
	}
	return result.Text(), nil
}
