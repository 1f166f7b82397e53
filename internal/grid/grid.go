// Package grid implements the bounded, discrete 2-D space that cleaning
// agents live on: per-cell occupancy and Moore neighbourhoods over a bounded
// or toroidal topology.
package grid

import (
	"errors"
	"fmt"

	"github.com/borkshop/roomba/internal/point"
)

// Topology selects how the grid's edges behave.
type Topology uint8

// Topologies.
const (
	Bounded Topology = iota
	Torus
)

func (t Topology) String() string {
	if t == Torus {
		return "torus"
	}
	return "bounded"
}

var (
	// ErrSize is returned for grids with a non-positive dimension.
	ErrSize = errors.New("invalid grid size")
	// ErrOutOfBounds is returned for operations on points outside the grid.
	ErrOutOfBounds = errors.New("point out of bounds")
	// ErrOccupied is returned when a cell cannot take another occupant.
	ErrOccupied = errors.New("cell occupied")
	// ErrKind is returned when an operation is given other than one kind.
	ErrKind = errors.New("need exactly one occupant kind")
)

// moore lists neighbourhood offsets in enumeration order: dx outer, dy inner.
var moore = [8]point.Point{
	{X: -1, Y: -1}, {X: -1, Y: 0}, {X: -1, Y: 1},
	{X: 0, Y: -1}, {X: 0, Y: 1},
	{X: 1, Y: -1}, {X: 1, Y: 0}, {X: 1, Y: 1},
}

// Grid is a dense width x height array of cell occupancy.
type Grid struct {
	bounds point.Box
	topo   Topology
	cells  []Kind
}

// New creates an empty grid.
func New(width, height int, topo Topology) (*Grid, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("%w: %dx%d", ErrSize, width, height)
	}
	return &Grid{
		bounds: point.Bx(0, 0, width-1, height-1),
		topo:   topo,
		cells:  make([]Kind, width*height),
	}, nil
}

// Size returns the width and height of the grid.
func (g *Grid) Size() point.Point { return g.bounds.Size() }

// Bounds returns the box of valid coordinates.
func (g *Grid) Bounds() point.Box { return g.bounds }

// Topology returns the grid's edge behaviour.
func (g *Grid) Topology() Topology { return g.topo }

// InBounds returns true if pt addresses a cell of the grid.
func (g *Grid) InBounds(pt point.Point) bool { return g.bounds.Contains(pt) }

func (g *Grid) index(pt point.Point) int { return pt.Y*g.bounds.Size().X + pt.X }

// Kinds returns the occupants of the cell at pt; out of bounds points are
// Empty.
func (g *Grid) Kinds(pt point.Point) Kind {
	if !g.InBounds(pt) {
		return Empty
	}
	return g.cells[g.index(pt)]
}

// IsPassable returns true if an agent may enter the cell at pt: it is in
// bounds and holds neither an obstacle nor another agent.
func (g *Grid) IsPassable(pt point.Point) bool {
	return g.InBounds(pt) && !g.Kinds(pt).Any(Obstacle|Agent)
}

// Place adds a single occupant kind to the cell at pt.
func (g *Grid) Place(k Kind, pt point.Point) error {
	if !k.single() {
		return fmt.Errorf("%w: %v", ErrKind, k)
	}
	if !g.InBounds(pt) {
		return fmt.Errorf("%w: %v", ErrOutOfBounds, pt)
	}
	i := g.index(pt)
	have := g.cells[i]
	switch {
	case k == Agent && have.Any(Agent|Obstacle),
		k.Any(Dirt|Obstacle) && have.Any(Agent),
		k.Any(Fixed) && have.Any(Fixed):
		return fmt.Errorf("%w: %v holds %v, cannot add %v", ErrOccupied, pt, have, k)
	}
	g.cells[i] = have | k
	return nil
}

// Remove takes a single occupant kind off the cell at pt, returning true if
// it was there.
func (g *Grid) Remove(k Kind, pt point.Point) bool {
	if !g.InBounds(pt) {
		return false
	}
	i := g.index(pt)
	if !g.cells[i].All(k) {
		return false
	}
	g.cells[i] &^= k
	return true
}

// Move relocates an agent occupant.
func (g *Grid) Move(from, to point.Point) error {
	if !g.Kinds(from).All(Agent) {
		return fmt.Errorf("no agent at %v", from)
	}
	if !g.IsPassable(to) {
		return fmt.Errorf("%w: cannot move agent to %v", ErrOccupied, to)
	}
	g.Remove(Agent, from)
	return g.Place(Agent, to)
}

// Neighborhood returns the 8-connected neighbours of pt in a fixed
// enumeration order (dx -1..1 outer, dy -1..1 inner). On a bounded grid
// out-of-range neighbours are dropped; on a torus they wrap, with pt itself
// and repeats dropped on grids too small to have 8 distinct neighbours.
func (g *Grid) Neighborhood(pt point.Point) []point.Point {
	nbrs := make([]point.Point, 0, len(moore))
	size := g.Size()
	for _, d := range moore {
		n := pt.Add(d)
		if g.topo == Torus {
			n = n.Wrap(size)
			if n == pt || contains(nbrs, n) {
				continue
			}
		} else if !g.InBounds(n) {
			continue
		}
		nbrs = append(nbrs, n)
	}
	return nbrs
}

func contains(pts []point.Point, pt point.Point) bool {
	for _, p := range pts {
		if p == pt {
			return true
		}
	}
	return false
}

// Each calls fn for every cell, row-major.
func (g *Grid) Each(fn func(point.Point, Kind)) {
	g.bounds.Each(func(pt point.Point) { fn(pt, g.cells[g.index(pt)]) })
}

// Empties returns all cells without occupants, row-major.
func (g *Grid) Empties() []point.Point {
	var pts []point.Point
	g.Each(func(pt point.Point, k Kind) {
		if k == Empty {
			pts = append(pts, pt)
		}
	})
	return pts
}

// Count returns how many cells hold every kind in mask.
func (g *Grid) Count(mask Kind) int {
	n := 0
	for _, k := range g.cells {
		if k.All(mask) {
			n++
		}
	}
	return n
}
