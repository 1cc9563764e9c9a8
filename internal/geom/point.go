// Package geom provides integer geometry primitives shared by grids,
// neighborhoods and rules: points, dimensions, rectangles and the 2x2
// coordinate transforms used to rotate or mirror neighborhoods.
// It has no dependencies outside the standard library.
package geom

import "fmt"

// Point is a 2D integer position or offset.
// X increases to the right, Y increases downward.
type Point struct {
	X int
	Y int
}

// Pt is a convenience constructor for Point.
func Pt(x, y int) Point {
	return Point{X: x, Y: y}
}

// String returns a string representation of the point.
func (p Point) String() string {
	return fmt.Sprintf("(%d,%d)", p.X, p.Y)
}

// Add returns the vector sum p+q.
func (p Point) Add(q Point) Point {
	return Point{X: p.X + q.X, Y: p.Y + q.Y}
}

// Sub returns the vector difference p-q.
func (p Point) Sub(q Point) Point {
	return Point{X: p.X - q.X, Y: p.Y - q.Y}
}

// Neg returns the point reflection -p.
func (p Point) Neg() Point {
	return Point{X: -p.X, Y: -p.Y}
}

// Less reports whether p comes before q in row-major order (y, then x).
func (p Point) Less(q Point) bool {
	if p.Y != q.Y {
		return p.Y < q.Y
	}
	return p.X < q.X
}

// Compare orders points row-major. Suitable for slices.SortFunc.
func Compare(p, q Point) int {
	switch {
	case p.Less(q):
		return -1
	case q.Less(p):
		return 1
	}
	return 0
}

// Chebyshev returns max(|x|, |y|), the ring a point offset lies on.
func (p Point) Chebyshev() int {
	return Max(Abs(p.X), Abs(p.Y))
}

// Manhattan returns |x| + |y|.
func (p Point) Manhattan() int {
	return Abs(p.X) + Abs(p.Y)
}

// Abs returns the absolute value of an integer.
func Abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}

// Min returns the smaller of two integers.
func Min(a, b int) int {
	if a < b {
		return a
	}
	return b
}

// Max returns the larger of two integers.
func Max(a, b int) int {
	if a > b {
		return a
	}
	return b
}

// Clamp restricts a value to be within [lo, hi].
func Clamp(val, lo, hi int) int {
	if val < lo {
		return lo
	}
	if val > hi {
		return hi
	}
	return val
}
