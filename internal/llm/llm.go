// Package llm wraps the hosted text-generation services behind one interface.
package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// ErrNotConfigured is returned when the selected provider has no API key.
var ErrNotConfigured = errors.New("llm: not configured")

// Generator turns a prompt into free text.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
	Model() string
}

// Provider names a hosted backend.
type Provider string

const (
	ProviderGemini    Provider = "gemini"
	ProviderOpenAI    Provider = "openai"
	ProviderAnthropic Provider = "anthropic"
)

// Config selects and parameterizes a backend.
type Config struct {
	Provider    Provider `toml:"provider"`
	Model       string   `toml:"model"`
	APIKey      string   `toml:"api_key"`
	Temperature float32  `toml:"temperature"`
	MaxTokens   int64    `toml:"max_tokens"`
}

// DefaultModel returns the model used when Config.Model is empty.
func DefaultModel(p Provider) string {
	switch p {
	case ProviderOpenAI:
		return "gpt-4o-mini"
	case ProviderAnthropic:
		return "claude-haiku-4-5"
	}
	return "gemini-1.5-flash"
}

// DetectProvider infers the backend from a model name, falling back to Gemini.
func DetectProvider(model string) Provider {
	m := strings.ToLower(model)
	switch {
	case strings.HasPrefix(m, "claude"):
		return ProviderAnthropic
	case strings.HasPrefix(m, "gpt"), strings.HasPrefix(m, "o1"), strings.HasPrefix(m, "o3"), strings.HasPrefix(m, "o4"):
		return ProviderOpenAI
	}
	return ProviderGemini
}

// New builds the generator named by cfg.Provider. An empty provider is
// inferred from the model name.
func New(ctx context.Context, cfg Config) (Generator, error) {
	if cfg.Provider == "" {
		cfg.Provider = DetectProvider(cfg.Model)
	}
	cfg.Provider = Provider(strings.ToLower(string(cfg.Provider)))
	if cfg.Model == "" {
		cfg.Model = DefaultModel(cfg.Provider)
	}
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = 1024
	}
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("%w: %s API key missing", ErrNotConfigured, cfg.Provider)
	}

	switch cfg.Provider {
	case ProviderGemini:
		return newGemini(ctx, cfg)
	case ProviderOpenAI:
		return newOpenAI(cfg), nil
	case ProviderAnthropic:
		return newAnthropic(cfg), nil
	}
	return nil, fmt.Errorf("llm: unknown provider %q", cfg.Provider)
}
