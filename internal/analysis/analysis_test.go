package analysis

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"

	"github.com/bighogz/tradie/internal/llm"
	"github.com/bighogz/tradie/internal/models"
	"github.com/bighogz/tradie/internal/prices"
	"github.com/bighogz/tradie/internal/yahoo"
)

type fakeGenerator struct {
	prompts []string
	reply   string
	err     error
}

func (f *fakeGenerator) Generate(_ context.Context, prompt string) (string, error) {
	f.prompts = append(f.prompts, prompt)
	return f.reply, f.err
}

func (f *fakeGenerator) Model() string { return "fake-1" }

type fakeQuotes struct {
	q   *yahoo.Quote
	err error
}

func (f fakeQuotes) Quote(context.Context, string) (*yahoo.Quote, error) { return f.q, f.err }

func history(closes ...float64) prices.Provider {
	return prices.ProviderFunc(func(context.Context, string, prices.Window) ([]prices.Point, error) {
		out := make([]prices.Point, len(closes))
		for i, c := range closes {
			out[i] = prices.Point{Date: time.Date(2024, 1, i+1, 0, 0, 0, 0, time.UTC), Close: c}
		}
		return out, nil
	})
}

func TestAnalyze(t *testing.T) {
	gen := &fakeGenerator{reply: "[SUMMARY] Steady gains. [PREDICTION] Likely higher."}
	quotes := fakeQuotes{q: &yahoo.Quote{Price: 12, PreviousClose: 10, Currency: "USD", LongName: "Acme Corp"}}
	svc := NewService(gen, quotes, history(10, 11, 12), arbor.NewLogger())

	trade := &models.InsiderTrade{
		Ticker:               "ABC",
		InsiderName:          "Jane Doe",
		Title:                "Pres, CEO",
		Quantity:             1000,
		Price:                decimal.NewNullDecimal(decimal.RequireFromString("10.50")),
		PercentOwnedIncrease: 45,
		MoneyValueIncrease:   decimal.NewFromInt(10500),
		TradeDate:            models.NewDate(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)),
	}
	res, err := svc.Analyze(context.Background(), "abc", trade)
	require.NoError(t, err)

	assert.Equal(t, "ABC", res.Ticker)
	assert.Equal(t, "Steady gains.", res.Summary)
	assert.Equal(t, "Likely higher.", res.Prediction)
	assert.Equal(t, "fake-1", res.Model)

	require.Len(t, gen.prompts, 1)
	p := gen.prompts[0]
	assert.Contains(t, p, "Ticker: ABC")
	assert.Contains(t, p, "price 12.00 USD")
	assert.Contains(t, p, "Acme Corp")
	assert.Contains(t, p, "up 20.00%")
	assert.Contains(t, p, "Jane Doe (Pres, CEO) bought 1000 shares at $10.50 on 2024-01-01")
	assert.Contains(t, p, llm.SummaryMarker)
	assert.Contains(t, p, llm.PredictionMarker)
}

func TestAnalyzeDegradesMarketData(t *testing.T) {
	gen := &fakeGenerator{reply: "plain text"}
	failing := prices.ProviderFunc(func(context.Context, string, prices.Window) ([]prices.Point, error) {
		return nil, errors.New("down")
	})
	svc := NewService(gen, fakeQuotes{err: errors.New("down")}, failing, arbor.NewLogger())

	res, err := svc.Analyze(context.Background(), "XYZ", nil)
	require.NoError(t, err)
	assert.Equal(t, "plain text", res.Summary)
	assert.Empty(t, res.Prediction)
	assert.Contains(t, gen.prompts[0], "Quote: unavailable")
	assert.Contains(t, gen.prompts[0], "One-year trend: unavailable")
	assert.NotContains(t, gen.prompts[0], "Insider purchase")
}

func TestAnalyzeErrors(t *testing.T) {
	_, err := NewService(nil, nil, nil, arbor.NewLogger()).Analyze(context.Background(), "ABC", nil)
	assert.ErrorIs(t, err, llm.ErrNotConfigured)

	boom := errors.New("quota")
	svc := NewService(&fakeGenerator{err: boom}, nil, nil, arbor.NewLogger())
	_, err = svc.Analyze(context.Background(), "ABC", nil)
	assert.ErrorIs(t, err, boom)

	_, err = svc.Analyze(context.Background(), "  ", nil)
	assert.Error(t, err)
}

func TestBuildPromptAbsentPrice(t *testing.T) {
	p := BuildPrompt(PromptInput{Ticker: "NEW", Trade: &models.InsiderTrade{InsiderName: "Pat", Title: "Director"}})
	assert.Contains(t, p, "at unavailable")
}
