// Package api serves the insider trade subsets, price history and analysis over HTTP.
package api

import (
	"context"
	"net/http"
	"time"

	"github.com/ternarybob/arbor"

	"github.com/bighogz/tradie/internal/analysis"
	"github.com/bighogz/tradie/internal/classify"
	"github.com/bighogz/tradie/internal/config"
	"github.com/bighogz/tradie/internal/models"
	"github.com/bighogz/tradie/internal/prices"
	"github.com/bighogz/tradie/internal/runlog"
	"github.com/bighogz/tradie/internal/scraper"
)

// Scraper produces a fresh snapshot per call.
type Scraper interface {
	ScrapeWith(ctx context.Context, th classify.Thresholds) (*scraper.Snapshot, error)
	Options() scraper.Options
}

// Analyzer writes the generated summary for one ticker.
type Analyzer interface {
	Analyze(ctx context.Context, ticker string, trade *models.InsiderTrade) (*analysis.Result, error)
	Enabled() bool
}

// Deps are the collaborators of the server. Analyzer, Prices and Runs may be nil.
type Deps struct {
	Scraper  Scraper
	Analyzer Analyzer
	Prices   prices.Provider
	Runs     runlog.Store
	Logger   arbor.ILogger
}

type Server struct {
	cfg      config.ServerConfig
	scraper  Scraper
	analyzer Analyzer
	prices   prices.Provider
	runs     runlog.Store
	logger   arbor.ILogger
	limiter  *rateLimiter
}

func New(cfg config.ServerConfig, deps Deps) *Server {
	runs := deps.Runs
	if runs == nil {
		runs = &runlog.NopStore{}
	}
	return &Server{
		cfg:      cfg,
		scraper:  deps.Scraper,
		analyzer: deps.Analyzer,
		prices:   deps.Prices,
		runs:     runs,
		logger:   deps.Logger,
		limiter:  newRateLimiter(cfg.RateLimit, cfg.RateBurst),
	}
}

// Handler returns the routed handler with the middleware chain applied.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /{$}", s.handleHome)
	mux.HandleFunc("GET /api/health", s.handleHealth)
	mux.HandleFunc("GET /api/scrapes", s.adminOnly(s.handleRuns))

	mux.HandleFunc("GET /allData", s.rateLimit(s.handleAllData))
	for _, c := range classify.Categories {
		mux.HandleFunc("GET /"+string(c), s.rateLimit(s.handleCategory(c)))
	}
	mux.HandleFunc("GET /scrape", s.rateLimit(s.handleScrape))
	mux.HandleFunc("GET /analysis/{ticker}", s.rateLimit(s.handleAnalysis))
	for _, w := range prices.Windows {
		mux.HandleFunc("GET /ticker-"+string(w)+"/{ticker}", s.rateLimit(s.handleHistory(w)))
	}

	var h http.Handler = mux
	h = s.withTimeout(h)
	h = s.logRequests(h)
	h = securityHeaders(h)
	return h
}

// ListenAndServe serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	errc := make(chan error, 1)
	go func() {
		s.logger.Info().Str("addr", s.cfg.Addr).Msg("HTTP server listening")
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	s.logger.Info().Msg("HTTP server shutting down")
	return srv.Shutdown(shutdownCtx)
}
