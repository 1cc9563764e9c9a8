package ca

import (
	"github.com/vovakirdan/casim/internal/geom"
	"github.com/vovakirdan/casim/internal/grid"
)

// IsCellActive evaluates r at p into out and reports whether applying the
// result would change g. A footprint reaching outside the human region
// makes the cell inactive regardless of the values.
func IsCellActive(r Rule, g *grid.Grid, p geom.Point, out []int) bool {
	nOut := r.NOut()
	if !nOut.ForEachBool(p, g.Contains) {
		return false
	}
	r.NextState(g, p, out)
	for i, d := range nOut.Offsets() {
		if g.At(p.Add(d)) != out[i] {
			return true
		}
	}
	return false
}

// ActiveCells returns the human positions of g, in row-major order, whose
// rule evaluation would change the grid.
func ActiveCells(r Rule, g *grid.Grid) []geom.Point {
	out := make([]int, r.NOut().Len())
	var active []geom.Point
	for p := range g.Points() {
		if IsCellActive(r, g, p, out) {
			active = append(active, p)
		}
	}
	return active
}

// ActiveMap returns a grid of the same size holding 1 for every active
// cell and 0 elsewhere.
func ActiveMap(r Rule, g *grid.Grid) *grid.Grid {
	m := grid.New(g.Dim(), 0, 0)
	for _, p := range ActiveCells(r, g) {
		m.Set(p, 1)
	}
	return m
}
