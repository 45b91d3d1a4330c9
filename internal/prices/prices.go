// Package prices defines historical close series and the providers that supply them.
package prices

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/samber/lo"
)

// Window is a lookback period ending now.
type Window string

const (
	OneDay     Window = "one-day"
	OneWeek    Window = "one-week"
	OneMonth   Window = "one-month"
	ThreeMonth Window = "three-month"
	OneYear    Window = "one-year"
	YTD        Window = "ytd"
)

// Windows lists every supported window, shortest first.
var Windows = []Window{OneDay, OneWeek, OneMonth, ThreeMonth, OneYear, YTD}

// ErrNoData is returned when a provider has nothing for the ticker and window.
var ErrNoData = errors.New("prices: no data")

func ParseWindow(s string) (Window, error) {
	w := Window(strings.ToLower(strings.TrimSpace(s)))
	if lo.Contains(Windows, w) {
		return w, nil
	}
	return "", fmt.Errorf("prices: unknown window %q", s)
}

// Daily reports whether the window is sampled once per trading day.
func (w Window) Daily() bool {
	return w != OneDay && w != OneWeek
}

// Start returns the first instant covered by w when it ends at now.
func (w Window) Start(now time.Time) time.Time {
	switch w {
	case OneDay:
		return now.AddDate(0, 0, -1)
	case OneWeek:
		return now.AddDate(0, 0, -7)
	case OneMonth:
		return now.AddDate(0, -1, 0)
	case ThreeMonth:
		return now.AddDate(0, -3, 0)
	case OneYear:
		return now.AddDate(-1, 0, 0)
	case YTD:
		return time.Date(now.Year(), time.January, 1, 0, 0, 0, 0, now.Location())
	}
	return now
}

// Point is one close in a series.
type Point struct {
	Date  time.Time `json:"date"`
	Close float64   `json:"close"`
}

// Closes extracts the close values in order.
func Closes(points []Point) []float64 {
	return lo.Map(points, func(p Point, _ int) float64 { return p.Close })
}

// Provider returns ascending points for a ticker over a window.
type Provider interface {
	History(ctx context.Context, ticker string, w Window) ([]Point, error)
}

// ProviderFunc adapts a function to Provider.
type ProviderFunc func(ctx context.Context, ticker string, w Window) ([]Point, error)

func (f ProviderFunc) History(ctx context.Context, ticker string, w Window) ([]Point, error) {
	return f(ctx, ticker, w)
}

type fallback struct {
	providers []Provider
}

// Fallback tries each provider in order and returns the first non-empty series.
// When every provider fails the last error is returned; when they all return
// nothing the result is ErrNoData.
func Fallback(providers ...Provider) Provider {
	return &fallback{providers: lo.Filter(providers, func(p Provider, _ int) bool { return p != nil })}
}

func (f *fallback) History(ctx context.Context, ticker string, w Window) ([]Point, error) {
	var lastErr error
	for _, p := range f.providers {
		points, err := p.History(ctx, ticker, w)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			lastErr = err
			continue
		}
		if len(points) > 0 {
			return points, nil
		}
	}
	if lastErr != nil {
		return nil, lastErr
	}
	return nil, ErrNoData
}
