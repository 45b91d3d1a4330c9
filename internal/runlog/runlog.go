// Package runlog keeps metadata about past scrape runs. It never stores trades.
package runlog

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/bighogz/tradie/internal/scraper"
)

// Run describes one scrape attempt.
type Run struct {
	ID        string         `json:"id"`
	StartedAt time.Time      `json:"startedAt"`
	Duration  time.Duration  `json:"durationNs"`
	Source    string         `json:"source"`
	Trigger   string         `json:"trigger"`
	Rows      int            `json:"rows"`
	Skipped   int            `json:"skipped"`
	Flags     int            `json:"flags"`
	Counts    map[string]int `json:"counts,omitempty"`
	Error     string         `json:"error,omitempty"`
}

// Start returns a run stamped with a fresh ID and the current time.
func Start(source, trigger string) Run {
	return Run{
		ID:        uuid.NewString(),
		StartedAt: time.Now().UTC(),
		Source:    source,
		Trigger:   trigger,
	}
}

// Finish sets the duration and, when err is non-nil, the error text.
func (r *Run) Finish(err error) {
	r.Duration = time.Since(r.StartedAt)
	if err != nil {
		r.Error = err.Error()
	}
}

// Observe copies the row, skip, flag and subset counts of snap.
func (r *Run) Observe(snap *scraper.Snapshot) {
	if snap == nil {
		return
	}
	r.Rows = len(snap.Trades)
	r.Skipped = len(snap.Skipped)
	r.Flags = len(snap.Coercions)
	counts := snap.Subsets.Counts()
	r.Counts = make(map[string]int, len(counts))
	for c, n := range counts {
		r.Counts[string(c)] = n
	}
}

// Failed reports whether the run ended with an error.
func (r Run) Failed() bool {
	return r.Error != ""
}

type Store interface {
	Record(ctx context.Context, run Run) error
	Recent(ctx context.Context, limit int) ([]Run, error)
	Close() error
}

type NopStore struct{}

func (s *NopStore) Record(ctx context.Context, run Run) error {
	_ = ctx
	_ = run
	return nil
}

func (s *NopStore) Recent(ctx context.Context, limit int) ([]Run, error) {
	_ = limit
	return nil, nil
}

func (s *NopStore) Close() error {
	return nil
}
