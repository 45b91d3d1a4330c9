package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

type openAIGenerator struct {
	client *openai.Client
	cfg    Config
}

func newOpenAI(cfg Config, opts ...option.RequestOption) *openAIGenerator {
	client := openai.NewClient(append([]option.RequestOption{option.WithAPIKey(cfg.APIKey)}, opts...)...)
	return &openAIGenerator{client: &client, cfg: cfg}
}

func (g *openAIGenerator) Model() string { return g.cfg.Model }

func (g *openAIGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	params := openai.ChatCompletionNewParams{
		Model: openai.ChatModel(g.cfg.Model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.UserMessage(prompt),
		},
		MaxCompletionTokens: openai.Int(g.cfg.MaxTokens),
	}
	if g.cfg.Temperature > 0 {
		params.Temperature = openai.Float(float64(g.cfg.Temperature))
	}
	resp, err := g.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return "", fmt.Errorf("openai API error: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("no response from openai")
	}
	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}
