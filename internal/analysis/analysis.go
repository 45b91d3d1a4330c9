// Package analysis asks a text generator for a summary and short-term outlook
// of one ticker, given its quote, recent prices and insider purchase.
package analysis

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/ternarybob/arbor"

	"github.com/bighogz/tradie/internal/llm"
	"github.com/bighogz/tradie/internal/models"
	"github.com/bighogz/tradie/internal/prices"
	"github.com/bighogz/tradie/internal/trend"
	"github.com/bighogz/tradie/internal/yahoo"
)

// QuoteSource returns current quote metadata.
type QuoteSource interface {
	Quote(ctx context.Context, ticker string) (*yahoo.Quote, error)
}

// Result is the split generator output.
type Result struct {
	Ticker      string    `json:"ticker"`
	Summary     string    `json:"summary"`
	Prediction  string    `json:"prediction"`
	Model       string    `json:"model"`
	GeneratedAt time.Time `json:"generatedAt"`
}

type Service struct {
	gen    llm.Generator
	quotes QuoteSource
	prices prices.Provider
	logger arbor.ILogger
}

// NewService wires a service. quotes and history may be nil; gen may be nil,
// in which case Analyze returns llm.ErrNotConfigured.
func NewService(gen llm.Generator, quotes QuoteSource, history prices.Provider, logger arbor.ILogger) *Service {
	return &Service{gen: gen, quotes: quotes, prices: history, logger: logger}
}

// Enabled reports whether a generator is configured.
func (s *Service) Enabled() bool {
	return s != nil && s.gen != nil
}

// Analyze gathers market data for ticker, builds one prompt and calls the
// generator once. Market data failures degrade to "unavailable" lines.
func (s *Service) Analyze(ctx context.Context, ticker string, trade *models.InsiderTrade) (*Result, error) {
	if !s.Enabled() {
		return nil, llm.ErrNotConfigured
	}
	ticker = strings.ToUpper(strings.TrimSpace(ticker))
	if ticker == "" {
		return nil, fmt.Errorf("analysis: empty ticker")
	}

	in := PromptInput{Ticker: ticker, Trade: trade}
	if s.quotes != nil {
		q, err := s.quotes.Quote(ctx, ticker)
		if err != nil {
			s.logger.Warn().Err(err).Str("ticker", ticker).Msg("Quote unavailable for analysis")
		}
		in.Quote = q
	}
	if s.prices != nil {
		points, err := s.prices.History(ctx, ticker, prices.OneYear)
		if err != nil {
			s.logger.Warn().Err(err).Str("ticker", ticker).Msg("Price history unavailable for analysis")
		}
		in.Trend = trend.FromCloses(prices.Closes(points))
	}

	start := time.Now()
	text, err := s.gen.Generate(ctx, BuildPrompt(in))
	if err != nil {
		return nil, fmt.Errorf("analysis: generate %s: %w", ticker, err)
	}
	s.logger.Debug().
		Str("ticker", ticker).
		Str("model", s.gen.Model()).
		Dur("duration", time.Since(start)).
		Msg("Analysis generated")

	sec := llm.SplitSections(text)
	return &Result{
		Ticker:      ticker,
		Summary:     sec.Summary,
		Prediction:  sec.Prediction,
		Model:       s.gen.Model(),
		GeneratedAt: time.Now().UTC(),
	}, nil
}
