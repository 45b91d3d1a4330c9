package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/ternarybob/arbor"
	_ "modernc.org/sqlite"

	"github.com/bighogz/tradie/internal/runlog"
)

// DefaultLimit caps Recent when called with a non-positive limit.
const DefaultLimit = 50

type Store struct {
	db *sql.DB
}

func New(path string) (*Store, error) {
	if path == "" {
		return nil, fmt.Errorf("sqlite: path is required")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("sqlite: create directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		_ = db.Close()
		return nil, err
	}

	return store, nil
}

// Open returns the run log at path, or a runlog.NopStore when disabled or when
// the database cannot be opened. Run logging never blocks startup.
func Open(enabled bool, path string, logger arbor.ILogger) runlog.Store {
	if !enabled || path == "" {
		return &runlog.NopStore{}
	}
	store, err := New(path)
	if err != nil {
		logger.Warn().Err(err).Str("path", path).Msg("Run log disabled")
		return &runlog.NopStore{}
	}
	logger.Debug().Str("path", path).Msg("Run log opened")
	return store
}

func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *Store) Record(ctx context.Context, run runlog.Run) error {
	counts, err := json.Marshal(run.Counts)
	if err != nil {
		return err
	}
	var errText any
	if run.Error != "" {
		errText = run.Error
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO scrape_runs (
			id, started_at, duration_ms, source, trigger_name, row_count, skipped_count, flag_count, counts, error_text
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		run.ID,
		run.StartedAt.UTC().Format(time.RFC3339Nano),
		run.Duration.Milliseconds(),
		run.Source,
		run.Trigger,
		run.Rows,
		run.Skipped,
		run.Flags,
		string(counts),
		errText,
	)
	return err
}

// Recent returns up to limit runs, newest first.
func (s *Store) Recent(ctx context.Context, limit int) ([]runlog.Run, error) {
	if limit <= 0 {
		limit = DefaultLimit
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, started_at, duration_ms, source, trigger_name, row_count, skipped_count, flag_count, counts, error_text
		FROM scrape_runs
		ORDER BY started_at DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]runlog.Run, 0, limit)
	for rows.Next() {
		var (
			run        runlog.Run
			startedAt  string
			durationMS int64
			counts     string
			errText    sql.NullString
		)
		if err := rows.Scan(&run.ID, &startedAt, &durationMS, &run.Source, &run.Trigger,
			&run.Rows, &run.Skipped, &run.Flags, &counts, &errText); err != nil {
			return nil, err
		}
		if run.StartedAt, err = time.Parse(time.RFC3339Nano, startedAt); err != nil {
			return nil, fmt.Errorf("sqlite: run %s: started_at: %w", run.ID, err)
		}
		run.Duration = time.Duration(durationMS) * time.Millisecond
		if counts != "" && counts != "null" {
			if err := json.Unmarshal([]byte(counts), &run.Counts); err != nil {
				return nil, fmt.Errorf("sqlite: run %s: counts: %w", run.ID, err)
			}
		}
		run.Error = errText.String
		out = append(out, run)
	}
	return out, rows.Err()
}

func (s *Store) migrate() error {
	statements := []string{
		`PRAGMA journal_mode = WAL;`,
		`CREATE TABLE IF NOT EXISTS scrape_runs (
			id TEXT PRIMARY KEY,
			started_at TEXT NOT NULL,
			duration_ms INTEGER NOT NULL,
			source TEXT NOT NULL,
			trigger_name TEXT NOT NULL,
			row_count INTEGER NOT NULL,
			skipped_count INTEGER NOT NULL,
			flag_count INTEGER NOT NULL,
			counts TEXT NOT NULL,
			error_text TEXT
		);`,
		`CREATE INDEX IF NOT EXISTS scrape_runs_started_at ON scrape_runs (started_at);`,
	}

	for _, statement := range statements {
		if _, err := s.db.Exec(statement); err != nil {
			return err
		}
	}

	return nil
}
