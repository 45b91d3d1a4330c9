// Package classify filters insider trades into filer-role subsets.
package classify

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/samber/lo"

	"github.com/bighogz/tradie/internal/models"
)

// Category names one role subset.
type Category string

const (
	CEO             Category = "ceo"
	PresidentCEO    Category = "pres"
	CFO             Category = "cfo"
	Director        Category = "dir"
	TenPercentOwner Category = "ten-percent"
)

// Categories lists every subset in a stable order.
var Categories = []Category{CEO, PresidentCEO, CFO, Director, TenPercentOwner}

// ParseCategory accepts the route names used by the API.
func ParseCategory(s string) (Category, error) {
	c := Category(strings.ToLower(strings.TrimSpace(s)))
	if lo.Contains(Categories, c) {
		return c, nil
	}
	return "", fmt.Errorf("classify: unknown category %q", s)
}

// Thresholds are the minimum ownership deltas, in percentage points, a trade
// must exceed to enter each subset.
type Thresholds struct {
	CEO        float64 `toml:"ceo_threshold" json:"ceoThreshold"`
	President  float64 `toml:"pres_threshold" json:"presThreshold"`
	CFO        float64 `toml:"cfo_threshold" json:"cfoThreshold"`
	Director   float64 `toml:"director_threshold" json:"directorThreshold"`
	TenPercent float64 `toml:"ten_percent_threshold" json:"tenPercentThreshold"`
}

// DefaultThresholds mirrors the deployed scraper: any positive delta counts,
// except CFO purchases which need more than 10 points.
func DefaultThresholds() Thresholds {
	return Thresholds{CFO: 10}
}

// For returns the threshold of one category.
func (t Thresholds) For(c Category) float64 {
	switch c {
	case CEO:
		return t.CEO
	case PresidentCEO:
		return t.President
	case CFO:
		return t.CFO
	case Director:
		return t.Director
	case TenPercentOwner:
		return t.TenPercent
	}
	return 0
}

// With returns a copy with the threshold of c replaced.
func (t Thresholds) With(c Category, v float64) Thresholds {
	switch c {
	case CEO:
		t.CEO = v
	case PresidentCEO:
		t.President = v
	case CFO:
		t.CFO = v
	case Director:
		t.Director = v
	case TenPercentOwner:
		t.TenPercent = v
	}
	return t
}

var tenPercentTitle = regexp.MustCompile(`(?i)10%|10-Percent|10 Percent`)

// Matches reports whether title belongs to category c, ignoring the threshold.
func Matches(c Category, title string) bool {
	switch c {
	case CEO:
		return title == "CEO"
	case PresidentCEO:
		return title == "Pres, CEO"
	case CFO:
		return title == "CFO"
	case Director:
		return strings.Contains(strings.ToLower(title), "dir")
	case TenPercentOwner:
		return tenPercentTitle.MatchString(title)
	}
	return false
}

// Subsets holds the five classified views of one scrape. Subsets overlap:
// a "Dir, 10%" filer is both a director and a ten-percent owner.
type Subsets struct {
	CEO             []models.InsiderTrade `json:"ceo"`
	PresidentCEO    []models.InsiderTrade `json:"pres"`
	CFO             []models.InsiderTrade `json:"cfo"`
	Director        []models.InsiderTrade `json:"dir"`
	TenPercentOwner []models.InsiderTrade `json:"tenPercent"`
}

// Of returns the subset for c.
func (s Subsets) Of(c Category) []models.InsiderTrade {
	switch c {
	case CEO:
		return s.CEO
	case PresidentCEO:
		return s.PresidentCEO
	case CFO:
		return s.CFO
	case Director:
		return s.Director
	case TenPercentOwner:
		return s.TenPercentOwner
	}
	return []models.InsiderTrade{}
}

// Counts returns the size of every subset.
func (s Subsets) Counts() map[Category]int {
	out := make(map[Category]int, len(Categories))
	for _, c := range Categories {
		out[c] = len(s.Of(c))
	}
	return out
}

// Filter returns the trades of category c whose delta exceeds threshold, in input order.
func Filter(trades []models.InsiderTrade, c Category, threshold float64) []models.InsiderTrade {
	return lo.Filter(trades, func(t models.InsiderTrade, _ int) bool {
		return Matches(c, t.Title) && float64(t.PercentOwnedIncrease) > threshold
	})
}

// Classify evaluates every predicate against every trade. Empty input yields
// five empty subsets.
func Classify(trades []models.InsiderTrade, th Thresholds) Subsets {
	return Subsets{
		CEO:             Filter(trades, CEO, th.CEO),
		PresidentCEO:    Filter(trades, PresidentCEO, th.President),
		CFO:             Filter(trades, CFO, th.CFO),
		Director:        Filter(trades, Director, th.Director),
		TenPercentOwner: Filter(trades, TenPercentOwner, th.TenPercent),
	}
}
