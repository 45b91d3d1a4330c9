package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ternarybob/arbor"

	"github.com/bighogz/tradie/internal/analysis"
	"github.com/bighogz/tradie/internal/api"
	"github.com/bighogz/tradie/internal/config"
	"github.com/bighogz/tradie/internal/fmp"
	"github.com/bighogz/tradie/internal/httpclient"
	"github.com/bighogz/tradie/internal/llm"
	"github.com/bighogz/tradie/internal/logging"
	"github.com/bighogz/tradie/internal/prices"
	"github.com/bighogz/tradie/internal/runlog/sqlite"
	"github.com/bighogz/tradie/internal/scraper"
	"github.com/bighogz/tradie/internal/telemetry"
	"github.com/bighogz/tradie/internal/yahoo"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logging.Console().Fatal().Err(err).Msg("Failed to load configuration")
	}
	logger := logging.New(cfg.Logging)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := telemetry.Setup(cfg.Telemetry)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to set up tracing")
	}
	defer func() {
		flushCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = shutdownTracing(flushCtx)
	}()

	client := httpclient.New(time.Duration(cfg.Scraper.TimeoutSeconds) * time.Second)
	scr := scraper.New(cfg.ScraperOptions(), logger, scraper.WithHTTPClient(client))

	history := priceProvider(cfg, logger)
	quotes := yahooClient(cfg)

	gen, err := llm.New(ctx, cfg.LLM)
	switch {
	case errors.Is(err, llm.ErrNotConfigured):
		logger.Warn().Str("provider", string(cfg.LLM.Provider)).Msg("No LLM API key; AI summaries disabled")
	case err != nil:
		logger.Fatal().Err(err).Msg("Failed to create text generator")
	default:
		logger.Info().Str("model", gen.Model()).Msg("Text generation enabled")
	}
	analyzer := analysis.NewService(gen, quotes, history, logger)

	runs := sqlite.Open(cfg.RunLog.Enabled, cfg.RunLog.Path, logger)
	defer runs.Close()

	srv := api.New(cfg.Server, api.Deps{
		Scraper:  scr,
		Analyzer: analyzer,
		Prices:   history,
		Runs:     runs,
		Logger:   logger,
	})
	if err := srv.ListenAndServe(ctx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Fatal().Err(err).Msg("HTTP server failed")
	}
}

func yahooClient(cfg *config.Config) *yahoo.Client {
	var opts []yahoo.Option
	if cfg.Prices.YahooBaseURL != "" {
		opts = append(opts, yahoo.WithBaseURL(cfg.Prices.YahooBaseURL))
	}
	return yahoo.New(opts...)
}

// priceProvider prefers Yahoo and falls back to FMP when a key is configured.
func priceProvider(cfg *config.Config, logger arbor.ILogger) prices.Provider {
	providers := []prices.Provider{yahooClient(cfg)}
	if cfg.Prices.FMPAPIKey != "" {
		providers = append(providers, fmp.New(cfg.Prices.FMPAPIKey))
		logger.Info().Msg("FMP price fallback enabled")
	}
	return prices.Fallback(providers...)
}
