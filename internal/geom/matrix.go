package geom

// Matrix is a 2x2 integer transform acting on points as column vectors:
//
//	| A B | |x|
//	| C D | |y|
type Matrix struct {
	A, B int
	C, D int
}

// Common transforms.
var (
	Identity = Matrix{A: 1, D: 1}
	// Rot90 rotates clockwise in screen coordinates (y down).
	Rot90   = Matrix{B: -1, C: 1}
	Reflect = Matrix{A: -1, D: -1}
	MirrorX = Matrix{A: -1, D: 1}
	MirrorY = Matrix{A: 1, D: -1}
)

// Apply transforms a point.
func (m Matrix) Apply(p Point) Point {
	return Point{X: m.A*p.X + m.B*p.Y, Y: m.C*p.X + m.D*p.Y}
}

// Mul returns the product m*n (n is applied first).
func (m Matrix) Mul(n Matrix) Matrix {
	return Matrix{
		A: m.A*n.A + m.B*n.C, B: m.A*n.B + m.B*n.D,
		C: m.C*n.A + m.D*n.C, D: m.C*n.B + m.D*n.D,
	}
}

// Pow returns m raised to a non-negative power by repeated squaring.
// Negative exponents return Identity.
func (m Matrix) Pow(n int) Matrix {
	result := Identity
	for n > 0 {
		if n&1 == 1 {
			result = result.Mul(m)
		}
		m = m.Mul(m)
		n >>= 1
	}
	return result
}

// Det returns the determinant.
func (m Matrix) Det() int {
	return m.A*m.D - m.B*m.C
}
