package stats

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

// SQLiteSink records runs into a SQLite database.
type SQLiteSink struct {
	sqlSink
}

// NewSQLiteSink opens or creates a SQLite database at dbPath.
func NewSQLiteSink(dbPath string) (*SQLiteSink, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("create db dir: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(wal)&_pragma=foreign_keys(on)")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	s := &SQLiteSink{sqlSink{db: db, bind: func(int) string { return "?" }}}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return s, nil
}

func (s *SQLiteSink) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS runs (
		id          TEXT PRIMARY KEY,
		outcome     TEXT NOT NULL,
		ticks       INTEGER NOT NULL,
		seed        INTEGER NOT NULL,
		scenario    TEXT NOT NULL,
		deaths      INTEGER NOT NULL DEFAULT 0,
		started_at  TEXT NOT NULL,
		finished_at TEXT NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_runs_started ON runs(started_at DESC);

	CREATE TABLE IF NOT EXISTS snapshots (
		run_id             TEXT NOT NULL,
		tick               INTEGER NOT NULL,
		dirt_remaining     INTEGER NOT NULL,
		dirt_remaining_pct REAL NOT NULL,
		avg_battery        REAL NOT NULL,
		live               INTEGER NOT NULL,
		charging           INTEGER NOT NULL,
		cleaned            INTEGER NOT NULL,
		PRIMARY KEY (run_id, tick)
	);
	`
	_, err := s.db.Exec(schema)
	return err
}
