// Package stats records per-tick statistics of a simulation run: a Sink
// receives a Snapshot at the start of every tick and a Report when the run
// ends.
package stats

import (
	"context"
	"encoding/json"
	"errors"
	"time"
)

// Snapshot is the state of a run at the start of a tick, before any agent
// has moved in it.
type Snapshot struct {
	RunID            string  `json:"run_id"`
	Tick             uint64  `json:"tick"`
	DirtRemaining    int     `json:"dirt_remaining"`
	DirtRemainingPct float64 `json:"dirt_remaining_pct"`
	AvgBattery       float64 `json:"avg_battery"`
	Live             int     `json:"live"`
	Charging         int     `json:"charging"`
	Cleaned          int     `json:"cleaned"`
}

// Report summarises a finished run.
type Report struct {
	RunID      string          `json:"run_id"`
	Outcome    string          `json:"outcome"`
	Ticks      uint64          `json:"ticks"`
	Seed       int64           `json:"seed"`
	Scenario   json.RawMessage `json:"scenario,omitempty"`
	Final      Snapshot        `json:"final"`
	Deaths     int             `json:"deaths"`
	StartedAt  time.Time       `json:"started_at"`
	FinishedAt time.Time       `json:"finished_at"`
}

// Sink consumes run statistics.
type Sink interface {
	Record(ctx context.Context, snap Snapshot) error
	Finish(ctx context.Context, rep Report) error
	Close() error
}

// ErrUnknownRun is returned when looking up a run that was never recorded.
var ErrUnknownRun = errors.New("unknown run")

// Discard is a Sink that drops everything.
var Discard Sink = discard{}

type discard struct{}

func (discard) Record(context.Context, Snapshot) error { return nil }
func (discard) Finish(context.Context, Report) error   { return nil }
func (discard) Close() error                           { return nil }

// Multi fans out to every sink, in order. Every sink sees every call; their
// errors are joined.
func Multi(sinks ...Sink) Sink {
	return multi(sinks)
}

type multi []Sink

func (m multi) Record(ctx context.Context, snap Snapshot) error {
	var errs []error
	for _, s := range m {
		errs = append(errs, s.Record(ctx, snap))
	}
	return errors.Join(errs...)
}

func (m multi) Finish(ctx context.Context, rep Report) error {
	var errs []error
	for _, s := range m {
		errs = append(errs, s.Finish(ctx, rep))
	}
	return errors.Join(errs...)
}

func (m multi) Close() error {
	var errs []error
	for _, s := range m {
		errs = append(errs, s.Close())
	}
	return errors.Join(errs...)
}
