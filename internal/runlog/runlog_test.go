package runlog

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bighogz/tradie/internal/scraper"
)

func TestStartFinish(t *testing.T) {
	a := Start("http://example.test", "api")
	b := Start("http://example.test", "api")
	assert.NotEqual(t, a.ID, b.ID)
	assert.Equal(t, "api", a.Trigger)

	a.Finish(nil)
	assert.False(t, a.Failed())
	assert.GreaterOrEqual(t, a.Duration.Nanoseconds(), int64(0))

	b.Finish(errors.New("upstream unavailable"))
	assert.True(t, b.Failed())
	assert.Equal(t, "upstream unavailable", b.Error)
}

func TestNopStore(t *testing.T) {
	var s Store = &NopStore{}
	require.NoError(t, s.Record(context.Background(), Start("x", "cli")))
	runs, err := s.Recent(context.Background(), 10)
	require.NoError(t, err)
	assert.Empty(t, runs)
	assert.NoError(t, s.Close())
}

func TestObserve(t *testing.T) {
	html := `<table class="tinytable"><tr><th>Ticker</th><th>Title</th><th>ΔOwn</th></tr>` +
		`<tr><td>ABC</td><td>Dir, 10%</td><td>+5%</td></tr>` +
		`<tr><td>short</td></tr></table>`
	snap, err := scraper.Build(html, scraper.DefaultOptions())
	require.NoError(t, err)

	run := Start(snap.Source, "api")
	run.Observe(snap)
	assert.Equal(t, 1, run.Rows)
	assert.Equal(t, 1, run.Skipped)
	assert.Equal(t, map[string]int{"ceo": 0, "pres": 0, "cfo": 0, "dir": 1, "ten-percent": 1}, run.Counts)

	empty := Start("x", "api")
	empty.Observe(nil)
	assert.Zero(t, empty.Rows)
	assert.Nil(t, empty.Counts)
}
