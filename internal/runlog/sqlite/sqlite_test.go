package sqlite

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"

	"github.com/bighogz/tradie/internal/runlog"
)

func openStore(t *testing.T) *Store {
	t.Helper()
	s, err := New(filepath.Join(t.TempDir(), "runs.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestRecordAndRecent(t *testing.T) {
	s := openStore(t)
	ctx := context.Background()
	base := time.Date(2024, 1, 2, 15, 0, 0, 0, time.UTC)

	ok := runlog.Run{
		ID: "a", StartedAt: base, Duration: 1500 * time.Millisecond, Source: "http://upstream", Trigger: "ceo",
		Rows: 100, Skipped: 2, Flags: 1, Counts: map[string]int{"ceo": 4, "cfo": 0},
	}
	failed := runlog.Run{
		ID: "b", StartedAt: base.Add(time.Minute), Source: "http://upstream", Trigger: "allData",
		Error: "upstream unavailable",
	}
	require.NoError(t, s.Record(ctx, ok))
	require.NoError(t, s.Record(ctx, failed))

	runs, err := s.Recent(ctx, 10)
	require.NoError(t, err)
	require.Len(t, runs, 2)

	assert.Equal(t, "b", runs[0].ID)
	assert.True(t, runs[0].Failed())
	assert.Nil(t, runs[0].Counts)

	assert.Equal(t, ok, runs[1])

	runs, err = s.Recent(ctx, 1)
	require.NoError(t, err)
	assert.Len(t, runs, 1)
}

func TestRecordDuplicateID(t *testing.T) {
	s := openStore(t)
	run := runlog.Start("http://upstream", "scrape")
	require.NoError(t, s.Record(context.Background(), run))
	assert.Error(t, s.Record(context.Background(), run))
}

func TestNewRequiresPath(t *testing.T) {
	_, err := New("")
	assert.Error(t, err)
}

func TestStartFinish(t *testing.T) {
	run := runlog.Start("src", "cfo")
	assert.NotEmpty(t, run.ID)
	run.Finish(nil)
	assert.False(t, run.Failed())
	run.Finish(errors.New("boom"))
	assert.Equal(t, "boom", run.Error)
}

func TestOpenDisabled(t *testing.T) {
	store := Open(false, filepath.Join(t.TempDir(), "runs.db"), arbor.NewLogger())
	assert.IsType(t, &runlog.NopStore{}, store)
}

func TestOpenCreatesDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "data", "runs.db")
	store := Open(true, path, arbor.NewLogger())
	defer store.Close()

	assert.IsType(t, &Store{}, store)
	require.NoError(t, store.Record(context.Background(), runlog.Start("x", "cli")))
	assert.FileExists(t, path)
}
