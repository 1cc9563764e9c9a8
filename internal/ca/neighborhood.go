package ca

import (
	"slices"
	"strings"

	"github.com/vovakirdan/casim/internal/geom"
)

// Neighborhood is an immutable set of relative offsets, kept deduplicated
// and sorted row-major. The order is the canonical field order used by
// table rules.
type Neighborhood struct {
	offsets []geom.Point
}

// NewNeighborhood builds a neighborhood from offsets. Duplicates are
// dropped. An empty list yields the single-cell neighborhood {(0,0)}.
func NewNeighborhood(offsets ...geom.Point) Neighborhood {
	if len(offsets) == 0 {
		return Neighborhood{offsets: []geom.Point{{}}}
	}
	sorted := slices.Clone(offsets)
	slices.SortFunc(sorted, geom.Compare)
	return Neighborhood{offsets: slices.Compact(sorted)}
}

// Moore returns all offsets with Chebyshev distance <= r, center included.
func Moore(r int) Neighborhood {
	var offsets []geom.Point
	for p := range geom.NewRect(-r, -r, 2*r+1, 2*r+1).Points() {
		offsets = append(offsets, p)
	}
	return NewNeighborhood(offsets...)
}

// VonNeumann returns all offsets with Manhattan distance <= r, center included.
func VonNeumann(r int) Neighborhood {
	var offsets []geom.Point
	for p := range geom.NewRect(-r, -r, 2*r+1, 2*r+1).Points() {
		if p.Manhattan() <= r {
			offsets = append(offsets, p)
		}
	}
	return NewNeighborhood(offsets...)
}

// Dependencies derives the offsets whose activity may change when the
// footprint written at the origin, or the origin cell itself, changes:
// {a - b | a in out ∪ {0}, b in in ∪ out}. A cell c is affected by a change
// at q when q lies in c+in (it is read) or in c+out (it is compared). For a
// symmetric n_in and a single-cell footprint this equals n_in ∪ n_out.
func Dependencies(in, out Neighborhood) Neighborhood {
	sources := out.Append(NewNeighborhood())
	reach := in.Append(out)
	deps := make([]geom.Point, 0, sources.Len()*reach.Len())
	for _, a := range sources.Offsets() {
		for _, b := range reach.Offsets() {
			deps = append(deps, a.Sub(b))
		}
	}
	return NewNeighborhood(deps...)
}

// Len returns the number of offsets.
func (n Neighborhood) Len() int { return len(n.offsets) }

// Offsets returns the offsets in canonical order. The slice must not be
// modified.
func (n Neighborhood) Offsets() []geom.Point {
	if n.offsets == nil {
		return []geom.Point{{}}
	}
	return n.offsets
}

// At returns the i-th offset.
func (n Neighborhood) At(i int) geom.Point { return n.Offsets()[i] }

// Index returns the canonical index of offset p, or -1.
func (n Neighborhood) Index(p geom.Point) int {
	i, ok := slices.BinarySearchFunc(n.Offsets(), p, geom.Compare)
	if !ok {
		return -1
	}
	return i
}

// Contains reports whether p is one of the offsets.
func (n Neighborhood) Contains(p geom.Point) bool { return n.Index(p) >= 0 }

// IsCenterOnly reports whether the neighborhood is exactly {(0,0)}.
func (n Neighborhood) IsCenterOnly() bool {
	o := n.Offsets()
	return len(o) == 1 && o[0] == geom.Point{}
}

// Dim returns the bounding rectangle of all offsets, sized to hold a local
// window of the neighborhood.
func (n Neighborhood) Dim() geom.Rect {
	var bb geom.BoundingBox
	for _, p := range n.Offsets() {
		bb.Add(p)
	}
	bb.Add(geom.Point{})
	return bb.Rect()
}

// Center returns the position of the origin inside the Dim window.
func (n Neighborhood) Center() geom.Point {
	return n.Dim().Min.Neg()
}

// BorderWidth returns the largest absolute offset coordinate.
func (n Neighborhood) BorderWidth() int {
	bw := 0
	for _, p := range n.Offsets() {
		bw = geom.Max(bw, p.Chebyshev())
	}
	return bw
}

// ForEach calls fn with origin+d for every offset d.
func (n Neighborhood) ForEach(origin geom.Point, fn func(geom.Point)) {
	for _, d := range n.Offsets() {
		fn(origin.Add(d))
	}
}

// ForEachBool calls pred with origin+d for every offset d and stops at the
// first false. It reports whether pred held for all offsets.
func (n Neighborhood) ForEachBool(origin geom.Point, pred func(geom.Point) bool) bool {
	for _, d := range n.Offsets() {
		if !pred(origin.Add(d)) {
			return false
		}
	}
	return true
}

// Append returns the union of n and other.
func (n Neighborhood) Append(other Neighborhood) Neighborhood {
	return NewNeighborhood(append(slices.Clone(n.Offsets()), other.Offsets()...)...)
}

// Transform maps every offset through m.
func (n Neighborhood) Transform(m geom.Matrix) Neighborhood {
	mapped := make([]geom.Point, 0, n.Len())
	for _, d := range n.Offsets() {
		mapped = append(mapped, m.Apply(d))
	}
	return NewNeighborhood(mapped...)
}

// Reflect returns the point reflection {-d}.
func (n Neighborhood) Reflect() Neighborhood {
	return n.Transform(geom.Reflect)
}

// Equal reports whether two neighborhoods hold the same offsets.
func (n Neighborhood) Equal(other Neighborhood) bool {
	return slices.Equal(n.Offsets(), other.Offsets())
}

// String lists the offsets, e.g. "{(0,-1) (-1,0) (0,0)}".
func (n Neighborhood) String() string {
	parts := make([]string, 0, n.Len())
	for _, d := range n.Offsets() {
		parts = append(parts, d.String())
	}
	return "{" + strings.Join(parts, " ") + "}"
}
