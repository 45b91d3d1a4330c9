package llm

import (
	"context"
	"fmt"
	"strings"

	"google.golang.org/genai"
)

type geminiGenerator struct {
	client *genai.Client
	cfg    Config
}

func newGemini(ctx context.Context, cfg Config) (*geminiGenerator, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}
	return &geminiGenerator{client: client, cfg: cfg}, nil
}

func (g *geminiGenerator) Model() string { return g.cfg.Model }

func (g *geminiGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	config := &genai.GenerateContentConfig{
		MaxOutputTokens: int32(g.cfg.MaxTokens),
	}
	if g.cfg.Temperature > 0 {
		config.Temperature = genai.Ptr(g.cfg.Temperature)
	}
	contents := []*genai.Content{genai.NewContentFromText(prompt, genai.RoleUser)}
	resp, err := g.client.Models.GenerateContent(ctx, g.cfg.Model, contents, config)
	if err != nil {
		return "", fmt.Errorf("gemini API error: %w", err)
	}
	text := strings.TrimSpace(resp.Text())
	if text == "" {
		return "", fmt.Errorf("no response from gemini")
	}
	return text, nil
}
