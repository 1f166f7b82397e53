package stats

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"sync"
)

// Store is a Sink whose runs can be read back.
type Store interface {
	Sink
	// Runs lists finished runs, newest first.
	Runs(ctx context.Context) ([]Report, error)
	// Snapshots lists a run's snapshots in tick order.
	Snapshots(ctx context.Context, runID string) ([]Snapshot, error)
}

// JSONSink persists runs to a local JSON file. Snapshots are buffered in
// memory and the file is rewritten when a run finishes and on Close.
type JSONSink struct {
	filePath string
	mutex    sync.RWMutex
	data     *jsonData
}

type jsonData struct {
	Runs map[string]*jsonRun `json:"runs"`
}

type jsonRun struct {
	Report    *Report    `json:"report,omitempty"`
	Snapshots []Snapshot `json:"snapshots"`
}

// NewJSONSink opens the JSON file at filePath, creating it if needed.
func NewJSONSink(filePath string) (*JSONSink, error) {
	js := &JSONSink{
		filePath: filePath,
		data:     &jsonData{Runs: make(map[string]*jsonRun)},
	}

	if _, err := os.Stat(filePath); err == nil {
		if err := js.loadFromFile(); err != nil {
			return nil, fmt.Errorf("load json sink: %w", err)
		}
	} else if err := js.saveToFile(); err != nil {
		return nil, fmt.Errorf("create json sink file: %w", err)
	}
	return js, nil
}

func (js *JSONSink) loadFromFile() error {
	js.mutex.Lock()
	defer js.mutex.Unlock()

	file, err := os.ReadFile(js.filePath)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(file, js.data); err != nil {
		return err
	}
	if js.data.Runs == nil {
		js.data.Runs = make(map[string]*jsonRun)
	}
	return nil
}

func (js *JSONSink) saveToFile() error {
	js.mutex.RLock()
	data, err := json.MarshalIndent(js.data, "", "  ")
	js.mutex.RUnlock()
	if err != nil {
		return err
	}
	return os.WriteFile(js.filePath, data, 0644)
}

func (js *JSONSink) run(id string) *jsonRun {
	r, ok := js.data.Runs[id]
	if !ok {
		r = &jsonRun{}
		js.data.Runs[id] = r
	}
	return r
}

// Record buffers snap.
func (js *JSONSink) Record(_ context.Context, snap Snapshot) error {
	js.mutex.Lock()
	r := js.run(snap.RunID)
	r.Snapshots = append(r.Snapshots, snap)
	js.mutex.Unlock()
	return nil
}

// Finish stores rep and writes the file.
func (js *JSONSink) Finish(_ context.Context, rep Report) error {
	js.mutex.Lock()
	js.run(rep.RunID).Report = &rep
	js.mutex.Unlock()
	return js.saveToFile()
}

// Close writes the file.
func (js *JSONSink) Close() error { return js.saveToFile() }

// Runs lists finished runs, newest first.
func (js *JSONSink) Runs(_ context.Context) ([]Report, error) {
	js.mutex.RLock()
	defer js.mutex.RUnlock()
	var reps []Report
	for _, r := range js.data.Runs {
		if r.Report != nil {
			reps = append(reps, *r.Report)
		}
	}
	sort.Slice(reps, func(i, j int) bool {
		return reps[i].StartedAt.After(reps[j].StartedAt)
	})
	return reps, nil
}

// Snapshots lists a run's snapshots.
func (js *JSONSink) Snapshots(_ context.Context, runID string) ([]Snapshot, error) {
	js.mutex.RLock()
	defer js.mutex.RUnlock()
	r, ok := js.data.Runs[runID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownRun, runID)
	}
	return append([]Snapshot(nil), r.Snapshots...), nil
}
