// Package fmp reads end-of-day prices from Financial Modeling Prep.
package fmp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/bighogz/tradie/internal/httpclient"
	"github.com/bighogz/tradie/internal/prices"
)

const DefaultBaseURL = "https://financialmodelingprep.com/stable"

// ErrNoAPIKey is returned by every call when the client has no key.
var ErrNoAPIKey = errors.New("fmp: no API key")

// ErrRateLimited is returned on HTTP 429.
var ErrRateLimited = errors.New("fmp: rate limited")

type Client struct {
	APIKey  string
	baseURL string
	http    *http.Client
	now     func() time.Time
}

// Option configures a Client.
type Option func(*Client)

func WithBaseURL(u string) Option {
	return func(c *Client) { c.baseURL = strings.TrimRight(u, "/") }
}

func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.http = h }
}

func New(apiKey string, opts ...Option) *Client {
	c := &Client{APIKey: apiKey, baseURL: DefaultBaseURL, http: httpclient.Default, now: time.Now}
	for _, o := range opts {
		o(c)
	}
	return c
}

type eodBar struct {
	Symbol string  `json:"symbol"`
	Date   string  `json:"date"`
	Close  float64 `json:"close"`
}

func (c *Client) get(ctx context.Context, path string, params url.Values, out any) error {
	if c.APIKey == "" {
		return ErrNoAPIKey
	}
	params.Set("apikey", c.APIKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path+"?"+params.Encode(), nil)
	if err != nil {
		return err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("fmp: %s: %w", path, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode == http.StatusTooManyRequests {
		return ErrRateLimited
	}

	var raw json.RawMessage
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return fmt.Errorf("fmp: %s: status %d: %w", path, resp.StatusCode, err)
	}
	var apiErr struct {
		Message string `json:"Error Message"`
	}
	if json.Unmarshal(raw, &apiErr) == nil && apiErr.Message != "" {
		return fmt.Errorf("fmp: %s: %s", path, apiErr.Message)
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("fmp: %s: status %d", path, resp.StatusCode)
	}
	return json.Unmarshal(raw, out)
}

// History returns daily closes for the window, oldest first. Intraday windows
// are not served by the end-of-day endpoint and yield no points.
func (c *Client) History(ctx context.Context, ticker string, w prices.Window) ([]prices.Point, error) {
	if !w.Daily() {
		return nil, nil
	}
	ticker = strings.ToUpper(strings.TrimSpace(ticker))
	if ticker == "" {
		return nil, fmt.Errorf("fmp: empty ticker")
	}
	now := c.now().UTC()
	params := url.Values{}
	params.Set("symbol", ticker)
	params.Set("from", w.Start(now).Format("2006-01-02"))
	params.Set("to", now.Format("2006-01-02"))

	var bars []eodBar
	if err := c.get(ctx, "/historical-price-eod/full", params, &bars); err != nil {
		return nil, err
	}
	out := make([]prices.Point, 0, len(bars))
	for _, b := range bars {
		d, err := time.Parse("2006-01-02", b.Date[:min(10, len(b.Date))])
		if err != nil || b.Close <= 0 {
			continue
		}
		out = append(out, prices.Point{Date: d, Close: b.Close})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out, nil
}
