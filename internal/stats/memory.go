package stats

import (
	"context"
	"sync"
)

// Memory keeps snapshots and reports in memory, keyed by run id.
type Memory struct {
	mu      sync.RWMutex
	snaps   map[string][]Snapshot
	reports map[string]Report
	order   []string
}

// NewMemory creates an empty in-memory sink.
func NewMemory() *Memory {
	return &Memory{
		snaps:   make(map[string][]Snapshot),
		reports: make(map[string]Report),
	}
}

// Record appends snap to its run.
func (m *Memory) Record(_ context.Context, snap Snapshot) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.touch(snap.RunID)
	m.snaps[snap.RunID] = append(m.snaps[snap.RunID], snap)
	return nil
}

// Finish stores the run's report.
func (m *Memory) Finish(_ context.Context, rep Report) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.touch(rep.RunID)
	m.reports[rep.RunID] = rep
	return nil
}

func (m *Memory) touch(id string) {
	if _, ok := m.snaps[id]; ok {
		return
	}
	if _, ok := m.reports[id]; ok {
		return
	}
	m.order = append(m.order, id)
	m.snaps[id] = nil
}

// Close is a no-op.
func (m *Memory) Close() error { return nil }

// Runs returns the ids of every run seen, in first-seen order.
func (m *Memory) Runs() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]string(nil), m.order...)
}

// Snapshots returns a copy of a run's snapshots.
func (m *Memory) Snapshots(runID string) []Snapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]Snapshot(nil), m.snaps[runID]...)
}

// Report returns a run's report, if it has finished.
func (m *Memory) Report(runID string) (Report, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	rep, ok := m.reports[runID]
	return rep, ok
}
