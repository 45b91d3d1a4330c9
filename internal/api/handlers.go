package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/bighogz/tradie/internal/classify"
	"github.com/bighogz/tradie/internal/llm"
	"github.com/bighogz/tradie/internal/models"
	"github.com/bighogz/tradie/internal/prices"
	"github.com/bighogz/tradie/internal/runlog"
	"github.com/bighogz/tradie/internal/scraper"
	"github.com/bighogz/tradie/internal/table"
	"github.com/bighogz/tradie/internal/trend"
)

const noPresidentData = "No relevant insider trading data found"

type errorBody struct {
	Error string `json:"error"`
	Kind  string `json:"kind"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError maps pipeline errors onto status codes and error kinds.
func (s *Server) writeError(w http.ResponseWriter, err error) {
	var (
		perr   *table.ParseError
		status = http.StatusInternalServerError
		kind   = "internal"
	)
	switch {
	case errors.Is(err, scraper.ErrUpstreamUnavailable):
		status, kind = http.StatusServiceUnavailable, "upstream_unavailable"
	case errors.As(err, &perr):
		status, kind = http.StatusBadGateway, "parse_error"
	case errors.Is(err, llm.ErrNotConfigured):
		status, kind = http.StatusServiceUnavailable, "not_configured"
	case errors.Is(err, prices.ErrNoData):
		status, kind = http.StatusNotFound, "no_data"
	case errors.Is(err, context.DeadlineExceeded):
		status, kind = http.StatusGatewayTimeout, "timeout"
	}
	if status >= 500 {
		s.logger.Error().Err(err).Str("kind", kind).Msg("Request failed")
	}
	writeJSON(w, status, errorBody{Error: err.Error(), Kind: kind})
}

func badRequest(w http.ResponseWriter, msg string) {
	writeJSON(w, http.StatusBadRequest, errorBody{Error: msg, Kind: "bad_request"})
}

// scrape runs one pipeline cycle and records its outcome in the run log.
func (s *Server) scrape(ctx context.Context, trigger string, th classify.Thresholds) (*scraper.Snapshot, error) {
	run := runlog.Start(s.scraper.Options().URL, trigger)
	snap, err := s.scraper.ScrapeWith(ctx, th)
	run.Finish(err)
	run.Observe(snap)
	if rerr := s.runs.Record(context.WithoutCancel(ctx), run); rerr != nil {
		s.logger.Warn().Err(rerr).Str("run", run.ID).Msg("Failed to record scrape run")
	}
	return snap, err
}

func (s *Server) handleHome(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"message": "Welcome to the Tradie Insider Trading API"})
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleAllData(w http.ResponseWriter, r *http.Request) {
	snap, err := s.scrape(r.Context(), "allData", s.scraper.Options().Thresholds)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, snap.Trades)
}

func (s *Server) handleCategory(c classify.Category) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		th := s.scraper.Options().Thresholds
		if v := r.URL.Query().Get("threshold"); v != "" {
			f, err := strconv.ParseFloat(v, 64)
			if err != nil {
				badRequest(w, fmt.Sprintf("invalid threshold %q", v))
				return
			}
			th = th.With(c, f)
		}
		snap, err := s.scrape(r.Context(), string(c), th)
		if err != nil {
			s.writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, snap.Subsets.Of(c))
	}
}

type scrapeResponse struct {
	CEO       []models.InsiderTrade `json:"ceo"`
	Pres      []models.InsiderTrade `json:"pres"`
	CFO       []models.InsiderTrade `json:"cfo"`
	AISummary string                `json:"ai_summary"`
}

// handleScrape returns the CEO, President-CEO and CFO subsets with a generated
// summary of the first President-CEO purchase.
func (s *Server) handleScrape(w http.ResponseWriter, r *http.Request) {
	snap, err := s.scrape(r.Context(), "scrape", s.scraper.Options().Thresholds)
	if err != nil {
		s.writeError(w, err)
		return
	}
	resp := scrapeResponse{
		CEO:       snap.Subsets.CEO,
		Pres:      snap.Subsets.PresidentCEO,
		CFO:       snap.Subsets.CFO,
		AISummary: noPresidentData,
	}
	if len(snap.Subsets.PresidentCEO) > 0 {
		first := snap.Subsets.PresidentCEO[0]
		resp.AISummary = s.summarize(r.Context(), &first)
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) summarize(ctx context.Context, trade *models.InsiderTrade) string {
	if s.analyzer == nil || !s.analyzer.Enabled() {
		return "AI summary unavailable: no text generation provider configured"
	}
	res, err := s.analyzer.Analyze(ctx, trade.Ticker, trade)
	if err != nil {
		s.logger.Warn().Err(err).Str("ticker", trade.Ticker).Msg("AI summary failed")
		return "AI summary unavailable"
	}
	if res.Prediction == "" {
		return res.Summary
	}
	return res.Summary + "\n\n" + res.Prediction
}

func (s *Server) handleAnalysis(w http.ResponseWriter, r *http.Request) {
	ticker := strings.ToUpper(strings.TrimSpace(r.PathValue("ticker")))
	if ticker == "" {
		badRequest(w, "ticker is required")
		return
	}
	if s.analyzer == nil {
		s.writeError(w, llm.ErrNotConfigured)
		return
	}
	res, err := s.analyzer.Analyze(r.Context(), ticker, nil)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

type historyResponse struct {
	Ticker string         `json:"ticker"`
	Window prices.Window  `json:"window"`
	Points []prices.Point `json:"points"`
	Trend  *trend.Trend   `json:"trend"`
}

func (s *Server) handleHistory(win prices.Window) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ticker := strings.ToUpper(strings.TrimSpace(r.PathValue("ticker")))
		if ticker == "" {
			badRequest(w, "ticker is required")
			return
		}
		if s.prices == nil {
			s.writeError(w, fmt.Errorf("price history: %w", prices.ErrNoData))
			return
		}
		points, err := s.prices.History(r.Context(), ticker, win)
		if err != nil {
			s.writeError(w, err)
			return
		}
		if points == nil {
			points = []prices.Point{}
		}
		writeJSON(w, http.StatusOK, historyResponse{
			Ticker: ticker,
			Window: win,
			Points: points,
			Trend:  trend.FromCloses(prices.Closes(points)),
		})
	}
}

func (s *Server) handleRuns(w http.ResponseWriter, r *http.Request) {
	limit := 20
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			badRequest(w, fmt.Sprintf("invalid limit %q", v))
			return
		}
		limit = min(n, 500)
	}
	runs, err := s.runs.Recent(r.Context(), limit)
	if err != nil {
		s.writeError(w, err)
		return
	}
	if runs == nil {
		runs = []runlog.Run{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"runs": runs})
}
