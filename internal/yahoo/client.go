// Package yahoo reads price history and quote metadata from the Yahoo Finance chart API.
package yahoo

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/bighogz/tradie/internal/httpclient"
	"github.com/bighogz/tradie/internal/prices"
)

// DefaultBaseURL is the chart endpoint root.
const DefaultBaseURL = "https://query1.finance.yahoo.com/v8/finance/chart"

type Client struct {
	baseURL string
	http    *http.Client
}

// Option configures a Client.
type Option func(*Client)

// WithBaseURL points the client at another chart endpoint.
func WithBaseURL(u string) Option {
	return func(c *Client) { c.baseURL = strings.TrimRight(u, "/") }
}

// WithHTTPClient replaces the shared HTTP client.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.http = h }
}

func New(opts ...Option) *Client {
	c := &Client{baseURL: DefaultBaseURL, http: httpclient.Default}
	for _, o := range opts {
		o(c)
	}
	return c
}

// ToYahooSymbol converts class-share symbols to Yahoo format: BRK.B -> BRK-B
func ToYahooSymbol(s string) string {
	return strings.ReplaceAll(strings.ToUpper(strings.TrimSpace(s)), ".", "-")
}

// rangeInterval maps a window onto the chart API range and interval parameters.
func rangeInterval(w prices.Window) (string, string) {
	switch w {
	case prices.OneDay:
		return "1d", "5m"
	case prices.OneWeek:
		return "5d", "30m"
	case prices.OneMonth:
		return "1mo", "1d"
	case prices.ThreeMonth:
		return "3mo", "1d"
	case prices.OneYear:
		return "1y", "1d"
	case prices.YTD:
		return "ytd", "1d"
	}
	return "1mo", "1d"
}

// Quote is the metadata block of a chart response.
type Quote struct {
	Symbol           string  `json:"symbol"`
	Currency         string  `json:"currency"`
	Exchange         string  `json:"exchangeName"`
	Price            float64 `json:"regularMarketPrice"`
	PreviousClose    float64 `json:"chartPreviousClose"`
	DayHigh          float64 `json:"regularMarketDayHigh"`
	DayLow           float64 `json:"regularMarketDayLow"`
	FiftyTwoWeekHigh float64 `json:"fiftyTwoWeekHigh"`
	FiftyTwoWeekLow  float64 `json:"fiftyTwoWeekLow"`
	Volume           int64   `json:"regularMarketVolume"`
	LongName         string  `json:"longName"`
}

// ChangePct is the move from the previous close, in percent.
func (q Quote) ChangePct() float64 {
	if q.PreviousClose <= 0 {
		return 0
	}
	return (q.Price - q.PreviousClose) / q.PreviousClose * 100
}

type chartResponse struct {
	Chart struct {
		Result []struct {
			Meta       Quote   `json:"meta"`
			Timestamp  []int64 `json:"timestamp"`
			Indicators struct {
				Quote []struct {
					Close []*float64 `json:"close"`
				} `json:"quote"`
			} `json:"indicators"`
		} `json:"result"`
		Error *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"chart"`
}

func (c *Client) chart(ctx context.Context, ticker, rng, interval string) (*chartResponse, error) {
	sym := ToYahooSymbol(ticker)
	if sym == "" {
		return nil, fmt.Errorf("yahoo: empty ticker")
	}
	params := url.Values{}
	params.Set("range", rng)
	params.Set("interval", interval)
	u := c.baseURL + "/" + url.PathEscape(sym) + "?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	// Yahoo rejects generic clients with 401/429.
	req.Header.Set("User-Agent", httpclient.BrowserUserAgent)
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("yahoo: chart %s: %w", sym, err)
	}
	defer resp.Body.Close()

	var data chartResponse
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		if resp.StatusCode != http.StatusOK {
			return nil, fmt.Errorf("yahoo: chart %s: status %d", sym, resp.StatusCode)
		}
		return nil, fmt.Errorf("yahoo: chart %s: decode: %w", sym, err)
	}
	if e := data.Chart.Error; e != nil {
		if e.Code == "Not Found" {
			return nil, fmt.Errorf("yahoo: chart %s: %w", sym, prices.ErrNoData)
		}
		return nil, fmt.Errorf("yahoo: chart %s: %s: %s", sym, e.Code, e.Description)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("yahoo: chart %s: status %d", sym, resp.StatusCode)
	}
	if len(data.Chart.Result) == 0 {
		return nil, fmt.Errorf("yahoo: chart %s: %w", sym, prices.ErrNoData)
	}
	return &data, nil
}

// History returns closes for the window in ascending time order. Bars without
// a close (halts, the still-open bar) are skipped.
func (c *Client) History(ctx context.Context, ticker string, w prices.Window) ([]prices.Point, error) {
	rng, interval := rangeInterval(w)
	data, err := c.chart(ctx, ticker, rng, interval)
	if err != nil {
		return nil, err
	}
	r := data.Chart.Result[0]
	if len(r.Indicators.Quote) == 0 {
		return nil, nil
	}
	closes := r.Indicators.Quote[0].Close
	out := make([]prices.Point, 0, len(r.Timestamp))
	for i, ts := range r.Timestamp {
		if i >= len(closes) {
			break
		}
		if closes[i] == nil {
			continue
		}
		out = append(out, prices.Point{Date: time.Unix(ts, 0).UTC(), Close: *closes[i]})
	}
	return out, nil
}

// Quote returns the latest quote metadata for ticker.
func (c *Client) Quote(ctx context.Context, ticker string) (*Quote, error) {
	data, err := c.chart(ctx, ticker, "1d", "1d")
	if err != nil {
		return nil, err
	}
	q := data.Chart.Result[0].Meta
	return &q, nil
}
