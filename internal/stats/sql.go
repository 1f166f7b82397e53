package stats

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// timeLayout is fixed width so that timestamps stored as text sort in time
// order.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// sqlSink is the database/sql side shared by the SQLite and Postgres sinks;
// they differ in driver, placeholder syntax and DDL.
type sqlSink struct {
	db   *sql.DB
	bind func(n int) string
}

func (s *sqlSink) q(query string, nargs int) string {
	args := make([]any, nargs)
	for i := range args {
		args[i] = s.bind(i + 1)
	}
	return fmt.Sprintf(query, args...)
}

// Record inserts snap.
func (s *sqlSink) Record(ctx context.Context, snap Snapshot) error {
	_, err := s.db.ExecContext(ctx, s.q(`INSERT INTO snapshots
		(run_id, tick, dirt_remaining, dirt_remaining_pct, avg_battery, live, charging, cleaned)
		VALUES (%s, %s, %s, %s, %s, %s, %s, %s)`, 8),
		snap.RunID, int64(snap.Tick), snap.DirtRemaining, snap.DirtRemainingPct,
		snap.AvgBattery, snap.Live, snap.Charging, snap.Cleaned)
	if err != nil {
		return fmt.Errorf("insert snapshot: %w", err)
	}
	return nil
}

// Finish upserts the run row.
func (s *sqlSink) Finish(ctx context.Context, rep Report) error {
	scenario := string(rep.Scenario)
	if scenario == "" {
		scenario = "{}"
	}
	_, err := s.db.ExecContext(ctx, s.q(`INSERT INTO runs
		(id, outcome, ticks, seed, scenario, deaths, started_at, finished_at)
		VALUES (%s, %s, %s, %s, %s, %s, %s, %s)
		ON CONFLICT (id) DO UPDATE SET
			outcome = EXCLUDED.outcome,
			ticks = EXCLUDED.ticks,
			deaths = EXCLUDED.deaths,
			finished_at = EXCLUDED.finished_at`, 8),
		rep.RunID, rep.Outcome, int64(rep.Ticks), rep.Seed, scenario, rep.Deaths,
		rep.StartedAt.UTC().Format(timeLayout), rep.FinishedAt.UTC().Format(timeLayout))
	if err != nil {
		return fmt.Errorf("upsert run: %w", err)
	}
	return nil
}

// Close closes the database.
func (s *sqlSink) Close() error { return s.db.Close() }

// Runs lists finished runs, newest first, each with its last snapshot.
func (s *sqlSink) Runs(ctx context.Context) ([]Report, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, outcome, ticks, seed, scenario, deaths, started_at, finished_at
		FROM runs ORDER BY started_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	var reps []Report
	for rows.Next() {
		var rep Report
		var ticks int64
		var scenario, started, finished string
		if err := rows.Scan(&rep.RunID, &rep.Outcome, &ticks, &rep.Seed, &scenario,
			&rep.Deaths, &started, &finished); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		rep.Ticks = uint64(ticks)
		rep.Scenario = []byte(scenario)
		if rep.StartedAt, err = time.Parse(time.RFC3339Nano, started); err != nil {
			return nil, fmt.Errorf("run %s started_at: %w", rep.RunID, err)
		}
		if rep.FinishedAt, err = time.Parse(time.RFC3339Nano, finished); err != nil {
			return nil, fmt.Errorf("run %s finished_at: %w", rep.RunID, err)
		}
		reps = append(reps, rep)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range reps {
		snaps, err := s.snapshots(ctx, reps[i].RunID, true)
		if err != nil {
			return nil, err
		}
		if len(snaps) > 0 {
			reps[i].Final = snaps[0]
		}
	}
	return reps, nil
}

// Snapshots lists a run's snapshots in tick order.
func (s *sqlSink) Snapshots(ctx context.Context, runID string) ([]Snapshot, error) {
	snaps, err := s.snapshots(ctx, runID, false)
	if err != nil {
		return nil, err
	}
	if len(snaps) == 0 {
		var n int
		if err := s.db.QueryRowContext(ctx, s.q(`SELECT COUNT(*) FROM runs WHERE id = %s`, 1), runID).Scan(&n); err != nil {
			return nil, fmt.Errorf("count runs: %w", err)
		}
		if n == 0 {
			return nil, fmt.Errorf("%w: %s", ErrUnknownRun, runID)
		}
	}
	return snaps, nil
}

func (s *sqlSink) snapshots(ctx context.Context, runID string, lastOnly bool) ([]Snapshot, error) {
	query := `SELECT run_id, tick, dirt_remaining, dirt_remaining_pct, avg_battery, live, charging, cleaned
		FROM snapshots WHERE run_id = %s ORDER BY tick`
	if lastOnly {
		query += ` DESC LIMIT 1`
	}
	rows, err := s.db.QueryContext(ctx, s.q(query, 1), runID)
	if err != nil {
		return nil, fmt.Errorf("query snapshots: %w", err)
	}
	defer rows.Close()

	var snaps []Snapshot
	for rows.Next() {
		var (
			snap Snapshot
			tick int64
		)
		if err := rows.Scan(&snap.RunID, &tick, &snap.DirtRemaining, &snap.DirtRemainingPct,
			&snap.AvgBattery, &snap.Live, &snap.Charging, &snap.Cleaned); err != nil {
			return nil, fmt.Errorf("scan snapshot: %w", err)
		}
		snap.Tick = uint64(tick)
		snaps = append(snaps, snap)
	}
	return snaps, rows.Err()
}
