package geom

import (
	"fmt"
	"iter"
)

// Dimension is a width x height extent without an offset.
type Dimension struct {
	W int
	H int
}

// Dim is a convenience constructor for Dimension.
func Dim(w, h int) Dimension {
	return Dimension{W: w, H: h}
}

// String returns "WxH".
func (d Dimension) String() string {
	return fmt.Sprintf("%dx%d", d.W, d.H)
}

// Area returns W*H.
func (d Dimension) Area() int {
	return d.W * d.H
}

// Grow returns the dimension enlarged by bw cells on every side.
func (d Dimension) Grow(bw int) Dimension {
	return Dimension{W: d.W + 2*bw, H: d.H + 2*bw}
}

// Rect returns the rectangle of this dimension anchored at the origin.
func (d Dimension) Rect() Rect {
	return Rect{W: d.W, H: d.H}
}

// Rect is an axis-aligned rectangle with its upper-left corner at Min.
type Rect struct {
	Min Point // Upper-left corner
	W   int   // Width
	H   int   // Height
}

// NewRect creates a rectangle at (x, y) with the given size.
// Negative sizes are clamped to zero.
func NewRect(x, y, w, h int) Rect {
	return Rect{Min: Pt(x, y), W: Max(w, 0), H: Max(h, 0)}
}

// Dim returns the extent of the rectangle.
func (r Rect) Dim() Dimension {
	return Dimension{W: r.W, H: r.H}
}

// Right returns the x-coordinate one past the right edge.
func (r Rect) Right() int {
	return r.Min.X + r.W
}

// Bottom returns the y-coordinate one past the bottom edge.
func (r Rect) Bottom() int {
	return r.Min.Y + r.H
}

// Area returns the number of points inside the rectangle.
func (r Rect) Area() int {
	return r.W * r.H
}

// Empty reports whether the rectangle covers no points.
func (r Rect) Empty() bool {
	return r.W <= 0 || r.H <= 0
}

// Contains reports whether p lies inside the rectangle.
func (r Rect) Contains(p Point) bool {
	return p.X >= r.Min.X && p.X < r.Right() && p.Y >= r.Min.Y && p.Y < r.Bottom()
}

// OnBorder reports whether p lies inside the rectangle but within bw cells
// of one of its edges.
func (r Rect) OnBorder(p Point, bw int) bool {
	if !r.Contains(p) {
		return false
	}
	return p.X < r.Min.X+bw || p.X >= r.Right()-bw ||
		p.Y < r.Min.Y+bw || p.Y >= r.Bottom()-bw
}

// Intersects returns true if this rectangle overlaps with another.
func (r Rect) Intersects(other Rect) bool {
	if r.Min.X >= other.Right() || other.Min.X >= r.Right() {
		return false
	}
	if r.Min.Y >= other.Bottom() || other.Min.Y >= r.Bottom() {
		return false
	}
	return true
}

// Intersect returns the overlapping region of two rectangles.
// The result is empty (zero size) if they do not overlap.
func (r Rect) Intersect(other Rect) Rect {
	x0 := Max(r.Min.X, other.Min.X)
	y0 := Max(r.Min.Y, other.Min.Y)
	x1 := Min(r.Right(), other.Right())
	y1 := Min(r.Bottom(), other.Bottom())
	if x1 <= x0 || y1 <= y0 {
		return Rect{Min: Pt(x0, y0)}
	}
	return Rect{Min: Pt(x0, y0), W: x1 - x0, H: y1 - y0}
}

// Translate returns the rectangle moved by offset d.
func (r Rect) Translate(d Point) Rect {
	r.Min = r.Min.Add(d)
	return r
}

// Points iterates over every point of the rectangle in row-major order.
func (r Rect) Points() iter.Seq[Point] {
	return func(yield func(Point) bool) {
		for y := r.Min.Y; y < r.Bottom(); y++ {
			for x := r.Min.X; x < r.Right(); x++ {
				if !yield(Point{X: x, Y: y}) {
					return
				}
			}
		}
	}
}

// String returns "WxH@(x,y)".
func (r Rect) String() string {
	return fmt.Sprintf("%dx%d@%s", r.W, r.H, r.Min)
}

// BoundingBox accumulates the smallest rectangle covering a set of points.
// The zero value is an empty box.
type BoundingBox struct {
	min, max Point
	valid    bool
}

// Add grows the box to include p.
func (b *BoundingBox) Add(p Point) {
	if !b.valid {
		b.min, b.max, b.valid = p, p, true
		return
	}
	b.min.X = Min(b.min.X, p.X)
	b.min.Y = Min(b.min.Y, p.Y)
	b.max.X = Max(b.max.X, p.X)
	b.max.Y = Max(b.max.Y, p.Y)
}

// Empty reports whether no point has been added.
func (b *BoundingBox) Empty() bool {
	return !b.valid
}

// Rect returns the covering rectangle. An empty box yields a zero Rect.
func (b *BoundingBox) Rect() Rect {
	if !b.valid {
		return Rect{}
	}
	return Rect{Min: b.min, W: b.max.X - b.min.X + 1, H: b.max.Y - b.min.Y + 1}
}
