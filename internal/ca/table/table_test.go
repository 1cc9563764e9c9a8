package table

import (
	"bytes"
	"encoding/binary"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vovakirdan/casim/internal/ca"
	"github.com/vovakirdan/casim/internal/geom"
	"github.com/vovakirdan/casim/internal/grid"
)

// majority is the 2-state von Neumann majority vote, evaluated directly.
type majority struct{ positional bool }

func (majority) BorderWidth() int         { return 1 }
func (majority) NIn() ca.Neighborhood     { return ca.VonNeumann(1) }
func (majority) NOut() ca.Neighborhood    { return ca.NewNeighborhood() }
func (majority) NDep() ca.Neighborhood    { return ca.VonNeumann(1) }
func (majority) NumStates() int           { return 2 }
func (majority) IsStateDead(int) bool     { return false }
func (majority) GetsStable() ca.Stability { return ca.StabilityUnknown }
func (m majority) UsesPosition() bool     { return m.positional }
func (majority) NextState(g *grid.Grid, p geom.Point, out []int) {
	sum := 0
	ca.VonNeumann(1).ForEach(p, func(q geom.Point) { sum += g.At(q) })
	out[0] = 0
	if sum >= 3 {
		out[0] = 1
	}
}

// swap exchanges a cell with its right neighbor.
type swap struct{}

func (swap) BorderWidth() int         { return 1 }
func (swap) NIn() ca.Neighborhood     { return ca.NewNeighborhood(geom.Pt(0, 0), geom.Pt(1, 0)) }
func (swap) NOut() ca.Neighborhood    { return ca.NewNeighborhood(geom.Pt(0, 0), geom.Pt(1, 0)) }
func (swap) NDep() ca.Neighborhood    { return ca.Moore(1) }
func (swap) NumStates() int           { return 3 }
func (swap) IsStateDead(int) bool     { return false }
func (swap) GetsStable() ca.Stability { return ca.StabilityUnknown }
func (swap) NextState(g *grid.Grid, p geom.Point, out []int) {
	out[0], out[1] = g.At(p.Add(geom.Pt(1, 0))), g.At(p)
}

func TestFieldBits(t *testing.T) {
	tests := []struct {
		states   int
		expected uint
	}{
		{1, 1}, {2, 1}, {3, 2}, {4, 2}, {5, 3}, {8, 3}, {9, 4}, {256, 8},
	}
	for _, tc := range tests {
		assert.Equal(t, tc.expected, FieldBits(tc.states), "FieldBits(%d)", tc.states)
	}
}

func TestInvertTable(t *testing.T) {
	r, err := New(ca.NewNeighborhood(), ca.NewNeighborhood(), 2, []uint64{1, 0})
	require.NoError(t, err)

	g, err := grid.FromRows([][]int{{0, 1}}, r.BorderWidth())
	require.NoError(t, err)
	out := make([]int, 1)

	r.NextState(g, geom.Pt(0, 0), out)
	assert.Equal(t, 1, out[0])
	r.NextState(g, geom.Pt(1, 0), out)
	assert.Equal(t, 0, out[0])

	assert.Empty(t, r.DeadStates())
	assert.False(t, r.IsStateDead(0))
}

func TestDeadStates(t *testing.T) {
	// next = current OR left neighbor: 1 stays 1 whatever the neighbor holds
	r, err := FromRule(orLeft{}, 2, 0)
	require.NoError(t, err)
	assert.Equal(t, []int{1}, r.DeadStates())
	assert.True(t, r.IsStateDead(1))
	assert.False(t, r.IsStateDead(0))
	assert.False(t, r.IsStateDead(7))
}

type orLeft struct{}

func (orLeft) BorderWidth() int         { return 1 }
func (orLeft) NIn() ca.Neighborhood     { return ca.NewNeighborhood(geom.Pt(-1, 0), geom.Pt(0, 0)) }
func (orLeft) NOut() ca.Neighborhood    { return ca.NewNeighborhood() }
func (orLeft) NDep() ca.Neighborhood    { return ca.Moore(1) }
func (orLeft) NumStates() int           { return 2 }
func (orLeft) IsStateDead(int) bool     { return false }
func (orLeft) GetsStable() ca.Stability { return ca.StabilityUnknown }
func (orLeft) NextState(g *grid.Grid, p geom.Point, out []int) {
	out[0] = g.At(p) | g.At(p.Add(geom.Pt(-1, 0)))
}

func TestFromRuleMatchesDirectEvaluation(t *testing.T) {
	src := majority{}
	r, err := FromRule(src, 2, 0)
	require.NoError(t, err)
	require.Equal(t, 32, r.Len())

	g, err := grid.ParseText("0 1 1 0\n1 1 0 1\n0 1 1 1\n1 0 1 0\n", 1)
	require.NoError(t, err)

	direct := make([]int, 1)
	viaTable := make([]int, 1)
	for p := range geom.NewRect(1, 1, 2, 2).Points() {
		src.NextState(g, p, direct)
		r.NextState(g, p, viaTable)
		assert.Equal(t, direct[0], viaTable[0], "cell %v", p)
	}
}

func TestOutOfRangeNeighborFreezesCell(t *testing.T) {
	r, err := FromRule(majority{}, 2, 0)
	require.NoError(t, err)

	// every edge cell of a bw=1 grid reads a border sentinel
	g := grid.New(geom.Dim(3, 3), 1, 1)
	out := make([]int, 1)
	r.NextState(g, geom.Pt(0, 0), out)
	assert.Equal(t, 1, out[0])

	g.Set(geom.Pt(1, 1), 5) // not a state either
	g.Set(geom.Pt(1, 0), 0)
	r.NextState(g, geom.Pt(1, 0), out)
	assert.Equal(t, 0, out[0])
}

func TestMultiOutputTable(t *testing.T) {
	r, err := FromRule(swap{}, 3, 0)
	require.NoError(t, err)
	assert.Equal(t, uint(2), r.Bits())
	assert.Equal(t, 16, r.Len())
	assert.Empty(t, r.DeadStates())

	g, err := grid.FromRows([][]int{{2, 1, 0}}, 1)
	require.NoError(t, err)
	out := make([]int, 2)

	r.NextState(g, geom.Pt(0, 0), out)
	assert.Equal(t, []int{1, 2}, out)

	// right neighbor is the border: footprint is returned unchanged
	r.NextState(g, geom.Pt(2, 0), out)
	assert.Equal(t, []int{0, grid.BorderFill}, out)
}

func TestPackUnpack(t *testing.T) {
	r, err := FromRule(swap{}, 3, 0)
	require.NoError(t, err)
	w := r.Pack([]int{2, 1})
	assert.Equal(t, uint64(0b0110), w)

	out := make([]int, 2)
	r.Unpack(w, out)
	assert.Equal(t, []int{2, 1}, out)
}

func TestFromRuleRejects(t *testing.T) {
	_, err := FromRule(majority{positional: true}, 2, 0)
	assert.ErrorIs(t, err, ErrPositionDependent)
	assert.ErrorIs(t, err, ca.ErrMalformedRule)

	_, err = FromRule(majority{}, 2, 16)
	assert.ErrorIs(t, err, ErrTableTooLarge)

	_, err = FromRule(majority{}, 0, 0)
	assert.ErrorIs(t, err, ErrStateRange)
}

func TestNewValidatesLength(t *testing.T) {
	_, err := New(ca.VonNeumann(1), ca.NewNeighborhood(), 2, make([]uint64, 31))
	assert.ErrorIs(t, err, ErrTruncated)

	_, err = New(ca.NewNeighborhood(), ca.NewNeighborhood(), 0, nil)
	assert.ErrorIs(t, err, ErrStateRange)
}

func TestCodecRoundTrip(t *testing.T) {
	r, err := FromRule(swap{}, 3, 0)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, Write(&buf, r))
	assert.Equal(t, Magic, string(buf.Bytes()[:8]))
	assert.Equal(t, uint32(Version), binary.LittleEndian.Uint32(buf.Bytes()[8:12]))

	back, err := Read(bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)
	assert.True(t, back.NIn().Equal(r.NIn()))
	assert.True(t, back.NOut().Equal(r.NOut()))
	assert.Equal(t, r.NumStates(), back.NumStates())
	for i := range uint64(r.Len()) {
		assert.Equal(t, r.Entry(i), back.Entry(i))
	}
}

func TestReadMalformed(t *testing.T) {
	r, err := FromRule(majority{}, 2, 0)
	require.NoError(t, err)
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, r))
	valid := buf.Bytes()

	badVersion := bytes.Clone(valid)
	binary.LittleEndian.PutUint32(badVersion[8:12], 1)

	tests := []struct {
		name     string
		data     []byte
		expected error
	}{
		{name: "bad magic", data: append([]byte("not_tabl"), valid[8:]...), expected: ErrBadHeader},
		{name: "wrong version", data: badVersion, expected: ErrVersion},
		{name: "truncated header", data: valid[:10], expected: ErrTruncated},
		{name: "truncated table", data: valid[:len(valid)-3], expected: ErrTruncated},
		{name: "empty", data: nil, expected: ErrTruncated},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Read(bytes.NewReader(tc.data))
			require.Error(t, err)
			assert.True(t, errors.Is(err, tc.expected), "got %v", err)
			assert.ErrorIs(t, err, ca.ErrMalformedRule)
		})
	}
}

func TestSaveLoad(t *testing.T) {
	r, err := FromRule(majority{}, 2, 0)
	require.NoError(t, err)
	path := filepath.Join(t.TempDir(), "majority.tbl")

	require.NoError(t, Save(path, r))
	back, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, r.Len(), back.Len())

	_, err = Load(filepath.Join(t.TempDir(), "missing.tbl"))
	assert.Error(t, err)
}
