package ca

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vovakirdan/casim/internal/geom"
	"github.com/vovakirdan/casim/internal/grid"
)

// shiftRule copies the left neighbor into the cell and its right neighbor.
type shiftRule struct{}

func (shiftRule) BorderWidth() int   { return 1 }
func (shiftRule) NIn() Neighborhood  { return NewNeighborhood(geom.Pt(-1, 0)) }
func (shiftRule) NOut() Neighborhood { return NewNeighborhood(geom.Pt(0, 0), geom.Pt(1, 0)) }
func (r shiftRule) NDep() Neighborhood {
	return Dependencies(r.NIn(), r.NOut())
}
func (shiftRule) NumStates() int        { return 2 }
func (shiftRule) IsStateDead(int) bool  { return false }
func (shiftRule) GetsStable() Stability { return StabilityUnknown }
func (shiftRule) NextState(g *grid.Grid, p geom.Point, out []int) {
	v := g.At(p.Add(geom.Pt(-1, 0)))
	out[0], out[1] = v, v
}

func TestIsCellActive(t *testing.T) {
	g, err := grid.FromRows([][]int{{1, 0, 0, 0}}, 1)
	require.NoError(t, err)
	out := make([]int, 2)

	tests := []struct {
		name     string
		p        geom.Point
		expected bool
	}{
		{name: "left neighbor differs", p: geom.Pt(1, 0), expected: true},
		{name: "all equal", p: geom.Pt(2, 0), expected: false},
		{name: "footprint past right edge", p: geom.Pt(3, 0), expected: false},
		{name: "reads border sentinel", p: geom.Pt(0, 0), expected: true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, IsCellActive(shiftRule{}, g, tc.p, out))
		})
	}
}

func TestActiveMap(t *testing.T) {
	g, err := grid.FromRows([][]int{{1, 0, 0, 0}}, 1)
	require.NoError(t, err)

	assert.Equal(t, []geom.Point{geom.Pt(0, 0), geom.Pt(1, 0)}, ActiveCells(shiftRule{}, g))
	assert.Equal(t, "1 1 0 0\n", ActiveMap(shiftRule{}, g).String())
}

func TestCheckGrid(t *testing.T) {
	assert.Error(t, CheckGrid(shiftRule{}, grid.New(geom.Dim(2, 2), 0, 0)))
	assert.NoError(t, CheckGrid(shiftRule{}, grid.New(geom.Dim(2, 2), 1, 0)))
	assert.Equal(t, 1, BorderWidthOf(shiftRule{}.NIn(), shiftRule{}.NOut()))
}

func TestParseStability(t *testing.T) {
	for _, s := range []Stability{StabilityUnknown, StabilityAlways, StabilityNever} {
		got, err := ParseStability(s.String())
		require.NoError(t, err)
		assert.Equal(t, s, got)
	}
	_, err := ParseStability("sometimes")
	assert.Error(t, err)
}
