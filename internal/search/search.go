// Package search picks greedy next steps toward the closest of a set of
// targets.
package search

import (
	"errors"
	"math"

	"github.com/borkshop/roomba/internal/point"
)

var (
	// ErrInvalidTarget is returned when searching toward an empty target set;
	// callers must guarantee targets exist.
	ErrInvalidTarget = errors.New("search: empty target set")
	// ErrNoCandidates is returned when there is no cell to step into.
	ErrNoCandidates = errors.New("search: no candidate cells")
)

// Distance returns the smallest Euclidean distance from pt to any target,
// or +Inf for no targets.
func Distance(pt point.Point, targets []point.Point) float64 {
	min := math.Inf(1)
	for _, t := range targets {
		if d := point.Dist(pt, t); d < min {
			min = d
		}
	}
	return min
}

// Nearest returns the candidate that, if stepped into, is closest to the
// nearest target. Ties go to the candidate seen first, so the result depends
// only on the candidates' order.
func Nearest(candidates, targets []point.Point) (point.Point, error) {
	if len(targets) == 0 {
		return point.Zero, ErrInvalidTarget
	}
	if len(candidates) == 0 {
		return point.Zero, ErrNoCandidates
	}
	best, bestDist := candidates[0], math.Inf(1)
	for _, c := range candidates {
		if d := Distance(c, targets); d < bestDist {
			best, bestDist = c, d
		}
	}
	return best, nil
}
