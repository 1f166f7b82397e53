package point

import (
	"fmt"
	"sort"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"
)

// Pt is a convenience constructor for Point.
func Pt(x, y int) Point { return Point{x, y} }

// Point represents a point in <X,Y> 2-space.
type Point struct{ X, Y int }

// Zero is the origin, the zero value of Point.
var Zero = Point{}

func (pt Point) String() string { return fmt.Sprintf("(%d,%d)", pt.X, pt.Y) }

// Less returns true if this point's X or Y component is less than the other's.
func (pt Point) Less(other Point) bool {
	return pt.Y < other.Y || pt.X < other.X
}

// Before orders points row-major: by Y, then by X.
func (pt Point) Before(other Point) bool {
	if pt.Y != other.Y {
		return pt.Y < other.Y
	}
	return pt.X < other.X
}

// Equal returns true if both this point's X and Y components equal another's.
func (pt Point) Equal(other Point) bool {
	return pt.X == other.X && pt.Y == other.Y
}

// Add adds another point's values to a copy of this point, returning the copy.
func (pt Point) Add(other Point) Point {
	pt.X += other.X
	pt.Y += other.Y
	return pt
}

// Sub subtracts another point's values from a copy of this point, returning
// the copy.
func (pt Point) Sub(other Point) Point {
	pt.X -= other.X
	pt.Y -= other.Y
	return pt
}

// Abs returns a copy of this point with its values non-negative.
func (pt Point) Abs() Point {
	if pt.X < 0 {
		pt.X = -pt.X
	}
	if pt.Y < 0 {
		pt.Y = -pt.Y
	}
	return pt
}

// Sign returns a copy of this point reduced to the values -1, 0, or 1 depending
// on the sign of the original values.
func (pt Point) Sign() Point {
	pt.X = sign(pt.X)
	pt.Y = sign(pt.Y)
	return pt
}

// SumSQ returns the sum-of-squared components.
func (pt Point) SumSQ() int {
	return pt.X*pt.X + pt.Y*pt.Y
}

// Wrap maps a copy of this point onto the torus [0, size.X) x [0, size.Y).
func (pt Point) Wrap(size Point) Point {
	pt.X = ((pt.X % size.X) + size.X) % size.X
	pt.Y = ((pt.Y % size.Y) + size.Y) % size.Y
	return pt
}

// Orb converts the point into planar orb geometry.
func (pt Point) Orb() orb.Point { return orb.Point{float64(pt.X), float64(pt.Y)} }

// Dist returns the straight-line Euclidean distance between two points.
func Dist(a, b Point) float64 { return planar.Distance(a.Orb(), b.Orb()) }

// Sort sorts points in place, row-major (see Before).
func Sort(pts []Point) {
	sort.Slice(pts, func(i, j int) bool { return pts[i].Before(pts[j]) })
}

func sign(i int) int {
	if i < 0 {
		return -1
	}
	if i > 0 {
		return 1
	}
	return 0
}
