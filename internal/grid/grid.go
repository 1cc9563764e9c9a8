// Package grid provides the bordered cell storage used by rules and the
// simulator, together with its text and YAML file formats.
//
// A Grid stores its human cells surrounded by bw border cells on every side.
// Border cells hold BorderFill so rules reading up to bw cells past the edge
// never leave the buffer. Public accessors take human coordinates: (0,0) is
// the upper-left human cell and (-bw,-bw) the upper-left border cell.
package grid

import (
	"errors"
	"fmt"
	"iter"
	"math"
	"slices"

	"github.com/vovakirdan/casim/internal/geom"
)

// BorderFill is the sentinel held by border cells ("out of range").
const BorderFill = math.MinInt32

// ErrMalformedGrid is returned for unreadable grid input.
var ErrMalformedGrid = errors.New("grid: malformed input")

// Grid is a rectangular buffer of integer cell states plus a border.
// Cells are stored row-major over the internal dimension.
type Grid struct {
	dim    geom.Dimension // Human dimension
	bw     int            // Border width
	stride int            // Internal width
	cells  []int          // Internal cells, length (W+2bw)*(H+2bw)
}

// New creates a grid whose human cells are fill and whose border is
// BorderFill.
func New(dim geom.Dimension, bw, fill int) *Grid {
	return NewWithBorder(dim, bw, fill, BorderFill)
}

// NewWithBorder creates a grid with explicit human and border fill values.
func NewWithBorder(dim geom.Dimension, bw, fill, borderFill int) *Grid {
	dim.W = geom.Max(dim.W, 0)
	dim.H = geom.Max(dim.H, 0)
	bw = geom.Max(bw, 0)
	in := dim.Grow(bw)
	g := &Grid{
		dim:    dim,
		bw:     bw,
		stride: in.W,
		cells:  make([]int, in.Area()),
	}
	for i := range g.cells {
		g.cells[i] = borderFill
	}
	g.Fill(fill)
	return g
}

// FromRows builds a grid from row slices. All rows must have equal length.
func FromRows(rows [][]int, bw int) (*Grid, error) {
	w := 0
	if len(rows) > 0 {
		w = len(rows[0])
	}
	g := New(geom.Dim(w, len(rows)), bw, 0)
	for y, row := range rows {
		if len(row) != w {
			return nil, ErrMalformedGrid
		}
		for x, v := range row {
			g.Set(geom.Pt(x, y), v)
		}
	}
	return g, nil
}

// Dim returns the human dimension.
func (g *Grid) Dim() geom.Dimension { return g.dim }

// Rect returns the human rectangle anchored at the origin.
func (g *Grid) Rect() geom.Rect { return g.dim.Rect() }

// InternalDim returns the dimension including the border.
func (g *Grid) InternalDim() geom.Dimension { return g.dim.Grow(g.bw) }

// BorderWidth returns the number of border cells on each side.
func (g *Grid) BorderWidth() int { return g.bw }

// Index converts a human coordinate to an offset into the internal buffer.
func (g *Grid) Index(p geom.Point) int {
	return (p.Y+g.bw)*g.stride + g.bw + p.X
}

// Contains reports whether p is inside the human region.
func (g *Grid) Contains(p geom.Point) bool {
	return p.X >= 0 && p.X < g.dim.W && p.Y >= 0 && p.Y < g.dim.H
}

// InBuffer reports whether p addresses a human or border cell.
func (g *Grid) InBuffer(p geom.Point) bool {
	return p.X >= -g.bw && p.X < g.dim.W+g.bw && p.Y >= -g.bw && p.Y < g.dim.H+g.bw
}

// At returns the cell at human coordinate p. p may address a border cell.
// Addressing past the border panics; use Lookup for arbitrary points.
func (g *Grid) At(p geom.Point) int {
	return g.cells[g.checkedIndex(p)]
}

// Set writes the cell at human coordinate p. p may address a border cell.
// Addressing past the border panics.
func (g *Grid) Set(p geom.Point, v int) {
	g.cells[g.checkedIndex(p)] = v
}

func (g *Grid) checkedIndex(p geom.Point) int {
	if !g.InBuffer(p) {
		panic(fmt.Sprintf("grid: %v outside %v buffer with border %d", p, g.dim, g.bw))
	}
	return g.Index(p)
}

// Lookup returns the cell at p, or BorderFill if p is outside the buffer.
func (g *Grid) Lookup(p geom.Point) int {
	if !g.InBuffer(p) {
		return BorderFill
	}
	return g.At(p)
}

// IsBorder reports whether p addresses a border cell.
func (g *Grid) IsBorder(p geom.Point) bool {
	return g.InBuffer(p) && !g.Contains(p)
}

// Cells exposes the raw internal buffer.
func (g *Grid) Cells() []int { return g.cells }

// Points iterates over the human region in row-major order.
func (g *Grid) Points() iter.Seq[geom.Point] {
	return g.Rect().Points()
}

// Values returns a copy of the human cells in row-major order.
func (g *Grid) Values() []int {
	out := make([]int, 0, g.dim.Area())
	for y := 0; y < g.dim.H; y++ {
		start := g.Index(geom.Pt(0, y))
		out = append(out, g.cells[start:start+g.dim.W]...)
	}
	return out
}

// Fill sets every human cell to v and leaves the border untouched.
func (g *Grid) Fill(v int) {
	for y := 0; y < g.dim.H; y++ {
		start := g.Index(geom.Pt(0, y))
		row := g.cells[start : start+g.dim.W]
		for i := range row {
			row[i] = v
		}
	}
}

// Clone returns a deep copy of the grid.
func (g *Grid) Clone() *Grid {
	c := *g
	c.cells = slices.Clone(g.cells)
	return &c
}

// CopyFrom overwrites g with the contents of src. Both grids must share
// the same human dimension and border width.
func (g *Grid) CopyFrom(src *Grid) {
	if g.dim != src.dim || g.bw != src.bw {
		panic("grid: CopyFrom with mismatched layout")
	}
	copy(g.cells, src.cells)
}

// Equal compares the human regions of two grids.
func (g *Grid) Equal(other *Grid) bool {
	if g.dim != other.dim {
		return false
	}
	for p := range g.Points() {
		if g.At(p) != other.At(p) {
			return false
		}
	}
	return true
}

// ResizeBorders reallocates the buffer with a new border width and recopies
// the human cells. New border cells hold BorderFill.
func (g *Grid) ResizeBorders(bw int) {
	if bw == g.bw {
		return
	}
	resized := New(g.dim, bw, 0)
	for p := range g.Points() {
		resized.Set(p, g.At(p))
	}
	*g = *resized
}

// WithBorder returns g itself if its border is at least bw wide, otherwise a
// copy with the border grown to bw.
func (g *Grid) WithBorder(bw int) *Grid {
	if g.bw >= bw {
		return g
	}
	c := g.Clone()
	c.ResizeBorders(bw)
	return c
}

// Count returns the number of human cells for which keep returns true.
func (g *Grid) Count(keep func(int) bool) int {
	n := 0
	for p := range g.Points() {
		if keep(g.At(p)) {
			n++
		}
	}
	return n
}
