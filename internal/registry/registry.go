// Package registry holds the shared sets of dirty cells and charging stations
// that every cleaning agent reads and mutates. The registries are the source of
// truth for whether dirt or a station exists at a coordinate; grid occupancy is
// a synchronized view of them.
package registry

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"

	"github.com/zyedidia/generic/mapset"

	"github.com/borkshop/roomba/internal/grid"
	"github.com/borkshop/roomba/internal/point"
)

var (
	// ErrDuplicate is returned when registering a coordinate twice.
	ErrDuplicate = errors.New("already registered")
	// ErrCleaned is returned when registering dirt on a cell cleaned earlier
	// in the run.
	ErrCleaned = errors.New("cell already cleaned")
)

// Grid is the occupancy view kept in step with the dirt registry.
type Grid interface {
	Remove(k grid.Kind, pt point.Point) bool
}

// Dirt is the registry of dirty cells.
type Dirt struct {
	mu      sync.RWMutex
	log     *slog.Logger
	cells   mapset.Set[point.Point]
	cleaned mapset.Set[point.Point]
	initial int
}

// NewDirt creates an empty dirt registry; a nil logger discards.
func NewDirt(log *slog.Logger) *Dirt {
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Dirt{
		log:     log,
		cells:   mapset.New[point.Point](),
		cleaned: mapset.New[point.Point](),
	}
}

// Register records dirt at pt.
func (d *Dirt) Register(pt point.Point) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.cleaned.Has(pt) {
		return fmt.Errorf("register dirt %v: %w", pt, ErrCleaned)
	}
	if d.cells.Has(pt) {
		return fmt.Errorf("register dirt %v: %w", pt, ErrDuplicate)
	}
	d.cells.Put(pt)
	d.initial++
	return nil
}

// Unregister forgets dirt at pt, returning true if it was registered. Dirt
// already gone is a no-op: another agent earlier in the same tick may have
// cleaned it.
func (d *Dirt) Unregister(pt point.Point) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.unregister(pt)
}

func (d *Dirt) unregister(pt point.Point) bool {
	if !d.cells.Has(pt) {
		d.log.Debug("registry inconsistency: dirt not registered", "at", pt)
		return false
	}
	d.cells.Remove(pt)
	d.cleaned.Put(pt)
	return true
}

// Clean removes the dirt at pt from both the registry and the grid as one
// operation, returning true only for the caller that actually removed it.
func (d *Dirt) Clean(pt point.Point, g Grid) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	if !d.unregister(pt) {
		return false
	}
	if !g.Remove(grid.Dirt, pt) {
		d.log.Warn("registry inconsistency: dirt missing from grid", "at", pt)
	}
	return true
}

// Has returns true if pt is dirty.
func (d *Dirt) Has(pt point.Point) bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.cells.Has(pt)
}

// Len returns the number of dirty cells.
func (d *Dirt) Len() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.cells.Size()
}

// Initial returns how many dirty cells were ever registered.
func (d *Dirt) Initial() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.initial
}

// Cleaned returns how many dirty cells have been removed.
func (d *Dirt) Cleaned() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.cleaned.Size()
}

// List returns the dirty cells, row-major.
func (d *Dirt) List() []point.Point {
	d.mu.RLock()
	pts := make([]point.Point, 0, d.cells.Size())
	d.cells.Each(func(pt point.Point) { pts = append(pts, pt) })
	d.mu.RUnlock()
	point.Sort(pts)
	return pts
}

// Stations is the registry of charging stations; stations are never removed
// during a run.
type Stations struct {
	mu    sync.RWMutex
	order []point.Point
	set   mapset.Set[point.Point]
}

// NewStations creates an empty station registry.
func NewStations() *Stations {
	return &Stations{set: mapset.New[point.Point]()}
}

// Register records a station at pt.
func (s *Stations) Register(pt point.Point) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.set.Has(pt) {
		return fmt.Errorf("register station %v: %w", pt, ErrDuplicate)
	}
	s.set.Put(pt)
	s.order = append(s.order, pt)
	return nil
}

// Has returns true if there is a station at pt.
func (s *Stations) Has(pt point.Point) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.set.Has(pt)
}

// Len returns the number of stations.
func (s *Stations) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.order)
}

// List returns the stations in registration order.
func (s *Stations) List() []point.Point {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]point.Point(nil), s.order...)
}
