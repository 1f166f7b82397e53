package stats

import (
	"database/sql"
	"fmt"

	_ "github.com/lib/pq" // PostgreSQL driver
)

// PostgresSink records runs into a PostgreSQL database.
type PostgresSink struct {
	sqlSink
}

// NewPostgresSink connects to the database at connectionString and
// initializes its schema.
func NewPostgresSink(connectionString string) (*PostgresSink, error) {
	db, err := sql.Open("postgres", connectionString)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	s := &PostgresSink{sqlSink{db: db, bind: func(n int) string { return fmt.Sprintf("$%d", n) }}}
	if err := s.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("initialize schema: %w", err)
	}
	return s, nil
}

func (s *PostgresSink) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS runs (
		id TEXT PRIMARY KEY,
		outcome TEXT NOT NULL,
		ticks BIGINT NOT NULL,
		seed BIGINT NOT NULL,
		scenario JSONB NOT NULL,
		deaths INTEGER NOT NULL DEFAULT 0,
		started_at TEXT NOT NULL,
		finished_at TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS snapshots (
		run_id TEXT NOT NULL,
		tick BIGINT NOT NULL,
		dirt_remaining INTEGER NOT NULL,
		dirt_remaining_pct DOUBLE PRECISION NOT NULL,
		avg_battery DOUBLE PRECISION NOT NULL,
		live INTEGER NOT NULL,
		charging INTEGER NOT NULL,
		cleaned INTEGER NOT NULL,
		PRIMARY KEY (run_id, tick)
	);
	`
	_, err := s.db.Exec(schema)
	return err
}
