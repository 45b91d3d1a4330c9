package scraper

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"

	"github.com/bighogz/tradie/internal/classify"
	"github.com/bighogz/tradie/internal/models"
	"github.com/bighogz/tradie/internal/table"
)

func fixture(t *testing.T) string {
	t.Helper()
	b, err := os.ReadFile("testdata/purchases.html")
	require.NoError(t, err)
	return string(b)
}

func tickers(trades []models.InsiderTrade) []string {
	out := make([]string, len(trades))
	for i, t := range trades {
		out[i] = t.Ticker
	}
	return out
}

func TestBuildFixture(t *testing.T) {
	snap, err := Build(fixture(t), DefaultOptions())
	require.NoError(t, err)

	assert.NotEmpty(t, snap.ID)
	assert.Equal(t, DefaultURL, snap.Source)
	assert.Equal(t, []string{"ABC", "PQR", "CFX", "CFY", "XYZ", "NEW"}, tickers(snap.Trades))
	require.Len(t, snap.Skipped, 1)
	assert.Equal(t, 5, snap.Skipped[0].Row)

	abc := snap.Trades[0]
	assert.Equal(t, "2024-01-02", abc.FilingDate.String())
	assert.Equal(t, 45, abc.PercentOwnedIncrease)
	assert.Equal(t, int64(1000), abc.Quantity)

	newco := snap.Trades[5]
	assert.Equal(t, 6, newco.SourceRow)
	assert.False(t, newco.Price.Valid)
	assert.Equal(t, 0, newco.PercentOwnedIncrease)

	assert.Equal(t, []string{"ABC"}, tickers(snap.Subsets.CEO))
	assert.Equal(t, []string{"PQR"}, tickers(snap.Subsets.PresidentCEO))
	assert.Equal(t, []string{"CFX"}, tickers(snap.Subsets.CFO))
	assert.Equal(t, []string{"XYZ"}, tickers(snap.Subsets.Director))
	assert.Equal(t, []string{"XYZ"}, tickers(snap.Subsets.TenPercentOwner))
}

func TestBuildThresholdsOverride(t *testing.T) {
	opts := DefaultOptions()
	opts.Thresholds = classify.Thresholds{CEO: 50, CFO: 1}
	snap, err := Build(fixture(t), opts)
	require.NoError(t, err)
	assert.Empty(t, snap.Subsets.CEO)
	assert.Equal(t, []string{"CFX", "CFY"}, tickers(snap.Subsets.CFO))
}

func TestBuildFallsBackToIndex(t *testing.T) {
	opts := DefaultOptions()
	opts.Locator = table.Locator{Selector: "table.gone", Index: 2}
	snap, err := Build(fixture(t), opts)
	require.NoError(t, err)
	assert.Len(t, snap.Trades, 6)
}

func TestBuildMissingTable(t *testing.T) {
	opts := DefaultOptions()
	opts.Locator = table.Locator{Selector: "table.gone", Index: -1}
	_, err := Build(fixture(t), opts)
	var perr *table.ParseError
	assert.ErrorAs(t, err, &perr)
}

func TestBuildWrongHeaders(t *testing.T) {
	html := `<table class="tinytable"><tr><th>Symbol</th><th>Role</th></tr><tr><td>A</td><td>CEO</td></tr></table>`
	_, err := Build(html, DefaultOptions())
	var perr *table.ParseError
	require.ErrorAs(t, err, &perr)
	assert.Contains(t, err.Error(), "Ticker")
}

func TestBuildEmptyTable(t *testing.T) {
	html := `<table class="tinytable"><tr><th>Ticker</th><th>Title</th><th>ΔOwn</th></tr></table>`
	snap, err := Build(html, DefaultOptions())
	require.NoError(t, err)
	assert.Empty(t, snap.Trades)
	for _, c := range classify.Categories {
		assert.NotNil(t, snap.Subsets.Of(c))
	}
}

func TestBuildStrictDates(t *testing.T) {
	html := `<table class="tinytable"><tr><th>Filing Date</th><th>Ticker</th><th>Title</th><th>ΔOwn</th></tr>` +
		`<tr><td>sometime</td><td>ABC</td><td>CEO</td><td>5%</td></tr></table>`

	snap, err := Build(html, DefaultOptions())
	require.NoError(t, err)
	require.Len(t, snap.Coercions, 1)
	assert.True(t, snap.Trades[0].Flagged())
	assert.Equal(t, "sometime", snap.Trades[0].FilingDate.String())

	opts := DefaultOptions()
	opts.StrictDates = true
	_, err = Build(html, opts)
	var perr *table.ParseError
	assert.ErrorAs(t, err, &perr)
}

func TestBuildRowIndexesSurviveSkippedRows(t *testing.T) {
	html := `<table class="tinytable"><tr><th>Filing Date</th><th>Ticker</th><th>Title</th><th>ΔOwn</th></tr>` +
		`<tr><td>2024-01-02</td><td>SHORT</td></tr>` +
		`<tr><td>sometime</td><td>ABC</td><td>CEO</td><td>5%</td></tr>` +
		`<tr><td>2024-01-03</td><td>XYZ</td><td>CFO</td><td>20%</td></tr></table>`

	snap, err := Build(html, DefaultOptions())
	require.NoError(t, err)

	require.Len(t, snap.Skipped, 1)
	assert.Equal(t, 0, snap.Skipped[0].Row)
	require.Len(t, snap.Coercions, 1)
	assert.Equal(t, 1, snap.Coercions[0].Row)
	require.Len(t, snap.Trades, 2)
	assert.Equal(t, 1, snap.Trades[0].SourceRow)
	assert.Equal(t, 2, snap.Trades[1].SourceRow)
	assert.Equal(t, 2, snap.Subsets.CFO[0].SourceRow)
}

func TestScrapeFromUpstream(t *testing.T) {
	page := fixture(t)
	var gotUA string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte(page))
	}))
	defer srv.Close()

	opts := DefaultOptions()
	opts.URL = srv.URL
	s := New(opts, arbor.NewLogger(), WithHTTPClient(srv.Client()))

	first, err := s.Scrape(context.Background())
	require.NoError(t, err)
	second, err := s.Scrape(context.Background())
	require.NoError(t, err)

	assert.Contains(t, gotUA, "Mozilla/5.0")
	assert.NotEqual(t, first.ID, second.ID)
	assert.Equal(t, first.Trades, second.Trades)
	assert.Equal(t, srv.URL, first.Source)

	trade, ok := first.Find("CFX")
	require.True(t, ok)
	assert.Equal(t, "CFO", trade.Title)
	_, ok = first.Find("NOPE")
	assert.False(t, ok)
}

func TestScrapeUpstreamStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	opts := DefaultOptions()
	opts.URL = srv.URL
	_, err := New(opts, arbor.NewLogger()).Scrape(context.Background())

	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUpstreamUnavailable))
	var uerr *UpstreamError
	require.ErrorAs(t, err, &uerr)
	assert.Equal(t, http.StatusServiceUnavailable, uerr.StatusCode)
}

func TestScrapeUpstreamUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	opts := DefaultOptions()
	opts.URL = url
	_, err := New(opts, arbor.NewLogger()).Scrape(context.Background())
	assert.ErrorIs(t, err, ErrUpstreamUnavailable)
}
