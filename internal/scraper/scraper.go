// Package scraper runs one fetch-parse-normalize-classify cycle over the
// insider purchases page and returns a fresh snapshot.
package scraper

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/ternarybob/arbor"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/bighogz/tradie/internal/classify"
	"github.com/bighogz/tradie/internal/httpclient"
	"github.com/bighogz/tradie/internal/models"
	"github.com/bighogz/tradie/internal/normalize"
	"github.com/bighogz/tradie/internal/table"
)

// DefaultURL is the openinsider listing of purchases above $25k.
const DefaultURL = "http://openinsider.com/insider-purchases-25k"

const maxBodyBytes = 16 << 20

// Options parameterize one pipeline. Thresholds is the only classification input.
type Options struct {
	URL         string
	Locator     table.Locator
	Thresholds  classify.Thresholds
	StrictDates bool
	UserAgent   string
}

// DefaultOptions targets the openinsider purchases page.
func DefaultOptions() Options {
	return Options{
		URL:        DefaultURL,
		Locator:    table.DefaultLocator(),
		Thresholds: classify.DefaultThresholds(),
		UserAgent:  httpclient.BrowserUserAgent,
	}
}

// Snapshot is the point-in-time result of one scrape.
type Snapshot struct {
	ID        string                          `json:"id"`
	ScrapedAt time.Time                       `json:"scrapedAt"`
	Source    string                          `json:"source"`
	Headers   []string                        `json:"headers"`
	Trades    []models.InsiderTrade           `json:"trades"`
	Skipped   []table.RowShapeError           `json:"skipped,omitempty"`
	Coercions []*normalize.FieldCoercionError `json:"coercions,omitempty"`
	Subsets   classify.Subsets                `json:"subsets"`
}

// Find returns the first trade for ticker, in table order.
func (s *Snapshot) Find(ticker string) (models.InsiderTrade, bool) {
	for _, t := range s.Trades {
		if t.Ticker == ticker {
			return t, true
		}
	}
	return models.InsiderTrade{}, false
}

// Scraper fetches the page and builds snapshots. It holds no dataset between calls.
type Scraper struct {
	opts   Options
	client *http.Client
	logger arbor.ILogger
	tracer trace.Tracer
}

// Option configures a Scraper.
type Option func(*Scraper)

// WithHTTPClient sets the client used for the page fetch.
func WithHTTPClient(c *http.Client) Option {
	return func(s *Scraper) {
		s.client = c
	}
}

func New(opts Options, logger arbor.ILogger, options ...Option) *Scraper {
	if opts.URL == "" {
		opts.URL = DefaultURL
	}
	if opts.UserAgent == "" {
		opts.UserAgent = httpclient.BrowserUserAgent
	}
	s := &Scraper{
		opts:   opts,
		client: httpclient.Default,
		logger: logger,
		tracer: otel.Tracer("github.com/bighogz/tradie/internal/scraper"),
	}
	for _, o := range options {
		o(s)
	}
	return s
}

// Options returns the pipeline configuration.
func (s *Scraper) Options() Options {
	return s.opts
}

// Fetch downloads the raw page. Any transport failure or non-2xx status is an
// *UpstreamError.
func (s *Scraper) Fetch(ctx context.Context) (string, error) {
	ctx, span := s.tracer.Start(ctx, "scraper.Fetch", trace.WithAttributes(attribute.String("url", s.opts.URL)))
	defer span.End()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.opts.URL, nil)
	if err != nil {
		return "", fmt.Errorf("scraper: build request: %w", err)
	}
	req.Header.Set("User-Agent", s.opts.UserAgent)
	req.Header.Set("Accept", "text/html")

	resp, err := s.client.Do(req)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "fetch failed")
		return "", &UpstreamError{URL: s.opts.URL, Err: err}
	}
	defer resp.Body.Close()
	span.SetAttributes(attribute.Int("http.status_code", resp.StatusCode))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		span.SetStatus(codes.Error, resp.Status)
		return "", &UpstreamError{URL: s.opts.URL, StatusCode: resp.StatusCode}
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		span.RecordError(err)
		return "", &UpstreamError{URL: s.opts.URL, StatusCode: resp.StatusCode, Err: err}
	}
	return string(body), nil
}

// Scrape fetches the page and builds a new snapshot from it.
func (s *Scraper) Scrape(ctx context.Context) (*Snapshot, error) {
	return s.ScrapeWith(ctx, s.opts.Thresholds)
}

// ScrapeWith is Scrape with thresholds overriding the configured ones.
func (s *Scraper) ScrapeWith(ctx context.Context, th classify.Thresholds) (*Snapshot, error) {
	ctx, span := s.tracer.Start(ctx, "scraper.Scrape")
	defer span.End()

	start := time.Now()
	html, err := s.Fetch(ctx)
	if err != nil {
		s.logger.Warn().Err(err).Str("url", s.opts.URL).Msg("Insider page fetch failed")
		return nil, err
	}

	opts := s.opts
	opts.Thresholds = th
	snap, err := Build(html, opts)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "build failed")
		s.logger.Error().Err(err).Str("url", s.opts.URL).Msg("Insider table could not be parsed")
		return nil, err
	}

	span.SetAttributes(
		attribute.Int("trades", len(snap.Trades)),
		attribute.Int("skipped", len(snap.Skipped)),
	)
	s.logger.Info().
		Str("snapshot", snap.ID).
		Int("trades", len(snap.Trades)).
		Int("skipped", len(snap.Skipped)).
		Int("coercions", len(snap.Coercions)).
		Dur("duration", time.Since(start)).
		Msg("Scrape complete")
	return snap, nil
}

// Build runs the pure part of the pipeline over already fetched markup.
func Build(html string, opts Options) (*Snapshot, error) {
	tbl, err := table.Parse(html, opts.Locator)
	if err != nil {
		return nil, err
	}
	if err := normalize.CheckHeaders(tbl.Headers); err != nil {
		return nil, err
	}

	snap := &Snapshot{
		ID:        uuid.NewString(),
		ScrapedAt: time.Now().UTC(),
		Source:    opts.URL,
		Headers:   tbl.Headers,
		Trades:    make([]models.InsiderTrade, 0, len(tbl.Rows)),
		Skipped:   tbl.Skipped,
	}
	for _, row := range tbl.Rows {
		trade, errs := normalize.Row(row.Index, tbl.Headers, row.Cells)
		if opts.StrictDates {
			for _, e := range errs {
				if e.Field == normalize.FieldFilingDate || e.Field == normalize.FieldTradeDate {
					return nil, &table.ParseError{Reason: "date format changed", Err: e}
				}
			}
		}
		snap.Coercions = append(snap.Coercions, errs...)
		snap.Trades = append(snap.Trades, trade)
	}
	snap.Subsets = classify.Classify(snap.Trades, opts.Thresholds)
	return snap, nil
}
