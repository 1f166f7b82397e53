package point

// Bx is a convenience constructor for Box.
func Bx(tlx, tly int, brx, bry int) Box {
	return Box{Point{tlx, tly}, Point{brx, bry}}
}

// Box represents a bounding box defined by a top-left and bottom-right point;
// both corners are inside the box.
type Box struct {
	TopLeft     Point
	BottomRight Point
}

// Size returns the width and height of the box as a point, counting cells.
func (b Box) Size() Point {
	return b.BottomRight.Sub(b.TopLeft).Abs().Add(Point{1, 1})
}

// Area returns the number of cells within the box.
func (b Box) Area() int {
	sz := b.Size()
	return sz.X * sz.Y
}

// Contains returns true if a given point is inside the box.
func (b Box) Contains(pt Point) bool {
	return !(pt.Less(b.TopLeft) || b.BottomRight.Less(pt))
}

// Each calls fn for every point in the box, row-major.
func (b Box) Each(fn func(Point)) {
	for y := b.TopLeft.Y; y <= b.BottomRight.Y; y++ {
		for x := b.TopLeft.X; x <= b.BottomRight.X; x++ {
			fn(Point{x, y})
		}
	}
}
