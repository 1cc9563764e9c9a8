package equation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vovakirdan/casim/internal/ca"
	"github.com/vovakirdan/casim/internal/geom"
	"github.com/vovakirdan/casim/internal/grid"
)

func sample(t *testing.T) *grid.Grid {
	t.Helper()
	g, err := grid.ParseText("1 2 3\n4 5 6\n7 8 9\n", 1)
	require.NoError(t, err)
	return g
}

func TestEvalExpressions(t *testing.T) {
	g := sample(t)
	center := geom.Pt(1, 1)

	tests := []struct {
		name     string
		source   string
		expected int
	}{
		{name: "invert", source: "1-a[0,0]", expected: -4},
		{name: "self alias", source: "v + 1", expected: 6},
		{name: "neighbors", source: "a[-1,0] + a[1,0] + a[0,-1] + a[0,1]", expected: 20},
		{name: "explicit self assignment", source: "v := a[1,1] - v", expected: 4},
		{name: "comparison is 0 or 1", source: "v > 4", expected: 1},
		{name: "ternary", source: "a[-1,-1] == 1 ? 10 : 20", expected: 10},
		{name: "division truncates", source: "v / 2", expected: 2},
		{name: "modulo", source: "v % 3", expected: 2},
		{name: "position", source: "x + 10*y", expected: 11},
		{name: "sqrt", source: "sqrt(v * 5)", expected: 5},
		{name: "bit ops", source: "bor(shl(band(v, 4), 1), bxor(1, 3))", expected: 10},
		{name: "builtin min max", source: "max(v, a[1,1]) - min(v, a[-1,-1])", expected: 8},
		{name: "builtin abs", source: "abs(a[-1,-1] - a[1,1])", expected: 8},
		{name: "logic", source: "v > 1 && a[0,-1] < 3 || false", expected: 1},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			r, err := Parse(tc.source)
			require.NoError(t, err)
			assert.Equal(t, tc.expected, r.Eval(g, center))
			assert.NoError(t, r.Err())
		})
	}
}

func TestNeighborhoodsFromSource(t *testing.T) {
	r, err := Parse("v[0,0] := a[1,0]; v[1,0] := a[0,0] + a[-2,1]")
	require.NoError(t, err)

	assert.Equal(t, []geom.Point{geom.Pt(0, 0), geom.Pt(1, 0), geom.Pt(-2, 1)}, r.NIn().Offsets())
	assert.Equal(t, []geom.Point{geom.Pt(0, 0), geom.Pt(1, 0)}, r.NOut().Offsets())
	assert.Equal(t, 2, r.BorderWidth())
	assert.False(t, r.UsesPosition())

	constant, err := Parse("7")
	require.NoError(t, err)
	assert.True(t, constant.NIn().IsCenterOnly())
	assert.True(t, constant.NOut().IsCenterOnly())
	assert.Equal(t, 0, constant.BorderWidth())
}

func TestMultiOutputNextState(t *testing.T) {
	g := sample(t)
	r, err := Parse("v[0,0] := a[1,0]; v[1,0] := v")
	require.NoError(t, err)

	out := make([]int, 2)
	r.NextState(g, geom.Pt(0, 0), out)
	assert.Equal(t, []int{2, 1}, out)
}

func TestBorderValuesPassThrough(t *testing.T) {
	g := sample(t)
	r, err := Parse("a[-1,0]")
	require.NoError(t, err)
	assert.Equal(t, grid.BorderFill, r.Eval(g, geom.Pt(0, 0)))

	guarded, err := Parse("a[-1,0] >= 0 ? a[-1,0] : v")
	require.NoError(t, err)
	assert.Equal(t, 4, guarded.Eval(g, geom.Pt(0, 1)))
}

func TestRuntimeErrorFreezesCell(t *testing.T) {
	g := sample(t)
	r, err := Parse("v % (a[0,-1] - 2)")
	require.NoError(t, err)

	// a[0,-1] at (1,1) is 2: modulo by zero
	assert.Equal(t, 5, r.Eval(g, geom.Pt(1, 1)))
	assert.Error(t, r.Err())
}

func TestRandUsesRuleRNG(t *testing.T) {
	r, err := Parse("rand(1)")
	require.NoError(t, err)
	assert.Equal(t, 0, r.Eval(sample(t), geom.Pt(0, 0)))
}

func TestOptions(t *testing.T) {
	r, err := Parse("v", WithNumStates(3), WithDeadStates(2, 0, 2), WithStability(ca.StabilityAlways))
	require.NoError(t, err)

	assert.Equal(t, 3, r.NumStates())
	assert.True(t, r.IsStateDead(0))
	assert.True(t, r.IsStateDead(2))
	assert.False(t, r.IsStateDead(1))
	assert.Equal(t, ca.StabilityAlways, r.GetsStable())
	assert.Equal(t, "v", r.Source())
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name   string
		source string
	}{
		{name: "empty", source: " ; "},
		{name: "dangling operator", source: "1 +"},
		{name: "bad target", source: "w := 1"},
		{name: "unclosed target", source: "v[0 := 1"},
		{name: "missing right side", source: "v :="},
		{name: "unknown variable", source: "z + 1"},
		{name: "dead state out of range", source: "v"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			var opts []Option
			if tc.name == "dead state out of range" {
				opts = append(opts, WithNumStates(2), WithDeadStates(5))
			}
			r, err := Parse(tc.source, opts...)
			assert.Nil(t, r)
			assert.ErrorIs(t, err, ca.ErrMalformedRule)
		})
	}
}

func TestMustParsePanics(t *testing.T) {
	assert.Panics(t, func() { MustParse("(") })
	assert.NotPanics(t, func() { MustParse("v") })
}
