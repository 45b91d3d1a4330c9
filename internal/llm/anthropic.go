package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

type anthropicGenerator struct {
	client *anthropic.Client
	cfg    Config
}

func newAnthropic(cfg Config, opts ...option.RequestOption) *anthropicGenerator {
	client := anthropic.NewClient(append([]option.RequestOption{option.WithAPIKey(cfg.APIKey)}, opts...)...)
	return &anthropicGenerator{client: &client, cfg: cfg}
}

func (g *anthropicGenerator) Model() string { return g.cfg.Model }

func (g *anthropicGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(g.cfg.Model),
		MaxTokens: g.cfg.MaxTokens,
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
		},
	}
	if g.cfg.Temperature > 0 {
		params.Temperature = anthropic.Float(float64(g.cfg.Temperature))
	}
	resp, err := g.client.Messages.New(ctx, params)
	if err != nil {
		return "", fmt.Errorf("anthropic API error: %w", err)
	}
	var sb strings.Builder
	for _, block := range resp.Content {
		sb.WriteString(block.Text)
	}
	if sb.Len() == 0 {
		return "", fmt.Errorf("no response from anthropic")
	}
	return strings.TrimSpace(sb.String()), nil
}
