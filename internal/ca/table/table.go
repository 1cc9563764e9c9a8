// Package table implements the lookup-table rule variant: every neighborhood
// configuration is packed into an index, and the table holds the packed
// output block for that configuration.
package table

import (
	"fmt"
	"math/bits"
	"slices"

	"github.com/vovakirdan/casim/internal/ca"
	"github.com/vovakirdan/casim/internal/geom"
	"github.com/vovakirdan/casim/internal/grid"
)

// MaxIndexBits bounds the packed index width, and so the table length.
const MaxIndexBits = 28

// Table rule errors. All of them wrap ca.ErrMalformedRule.
var (
	ErrBadHeader         = fmt.Errorf("%w: not a ca_table file", ca.ErrMalformedRule)
	ErrVersion           = fmt.Errorf("%w: unsupported ca_table version", ca.ErrMalformedRule)
	ErrTruncated         = fmt.Errorf("%w: truncated ca_table", ca.ErrMalformedRule)
	ErrTableTooLarge     = fmt.Errorf("%w: table too large", ca.ErrMalformedRule)
	ErrStateRange        = fmt.Errorf("%w: state out of range", ca.ErrMalformedRule)
	ErrPositionDependent = fmt.Errorf("%w: rule depends on cell position", ca.ErrMalformedRule)
)

// Rule is a table-driven transition function.
type Rule struct {
	nIn, nOut, nDep ca.Neighborhood
	numStates       int
	bits            uint     // Bits per packed field
	mask            uint64   // Field mask, 1<<bits - 1
	entries         []uint64 // Packed output blocks, indexed by packed inputs
	dead            []int    // Sorted dead states
	bw              int
}

// FieldBits returns ceil(log2(numStates)), at least 1.
func FieldBits(numStates int) uint {
	if numStates <= 2 {
		return 1
	}
	return uint(bits.Len(uint(numStates - 1)))
}

// New validates and wraps a table. len(entries) must be
// 1 << (FieldBits(numStates) * nIn.Len()).
func New(nIn, nOut ca.Neighborhood, numStates int, entries []uint64) (*Rule, error) {
	if numStates < 1 {
		return nil, fmt.Errorf("%w: num_states must be positive, got %d", ErrStateRange, numStates)
	}
	b := FieldBits(numStates)
	if b*uint(nIn.Len()) > MaxIndexBits {
		return nil, fmt.Errorf("%w: %d inputs of %d bits", ErrTableTooLarge, nIn.Len(), b)
	}
	if b*uint(nOut.Len()) > 64 {
		return nil, fmt.Errorf("%w: %d outputs of %d bits do not fit a word", ErrTableTooLarge, nOut.Len(), b)
	}
	if want := 1 << (b * uint(nIn.Len())); len(entries) != want {
		return nil, fmt.Errorf("%w: expected %d entries, got %d", ErrTruncated, want, len(entries))
	}

	r := &Rule{
		nIn:       nIn,
		nOut:      nOut,
		nDep:      ca.Dependencies(nIn, nOut),
		numStates: numStates,
		bits:      b,
		mask:      1<<b - 1,
		entries:   entries,
		bw:        ca.BorderWidthOf(nIn, nOut),
	}
	r.dead = r.findDeadStates()
	return r, nil
}

// BorderWidth returns max(n_in border, n_out border).
func (r *Rule) BorderWidth() int { return r.bw }

func (r *Rule) NIn() ca.Neighborhood  { return r.nIn }
func (r *Rule) NOut() ca.Neighborhood { return r.nOut }
func (r *Rule) NDep() ca.Neighborhood { return r.nDep }

// NumStates returns the number of valid states.
func (r *Rule) NumStates() int { return r.numStates }

// GetsStable is always unknown for tables.
func (r *Rule) GetsStable() ca.Stability { return ca.StabilityUnknown }

// Len returns the number of table entries.
func (r *Rule) Len() int { return len(r.entries) }

// Bits returns the packed field width.
func (r *Rule) Bits() uint { return r.bits }

// DeadStates returns the sorted dead states.
func (r *Rule) DeadStates() []int { return slices.Clone(r.dead) }

// Entry returns the packed output block stored at index.
func (r *Rule) Entry(index uint64) uint64 { return r.entries[index] }

// IsStateDead reports whether s is a precomputed dead state.
func (r *Rule) IsStateDead(s int) bool {
	_, ok := slices.BinarySearch(r.dead, s)
	return ok
}

// NextState packs the n_in values around p into an index and unpacks the
// stored block into out. If any neighbor is outside [0, num_states) the
// footprint is left unchanged.
func (r *Rule) NextState(g *grid.Grid, p geom.Point, out []int) {
	var idx uint64
	for i, d := range r.nIn.Offsets() {
		v := g.At(p.Add(d))
		if v < 0 || v >= r.numStates {
			r.identity(g, p, out)
			return
		}
		idx |= uint64(v) << (r.bits * uint(i))
	}
	r.Unpack(r.entries[idx], out)
}

func (r *Rule) identity(g *grid.Grid, p geom.Point, out []int) {
	for i, d := range r.nOut.Offsets() {
		out[i] = g.At(p.Add(d))
	}
}

// Pack encodes one field per value, value i at bit bits*i.
func (r *Rule) Pack(values []int) uint64 {
	var w uint64
	for i, v := range values {
		w |= (uint64(v) & r.mask) << (r.bits * uint(i))
	}
	return w
}

// Unpack decodes len(out) fields of w.
func (r *Rule) Unpack(w uint64, out []int) {
	for i := range out {
		out[i] = int((w >> (r.bits * uint(i))) & r.mask)
	}
}

// validIndex reports whether every packed input field of idx is a state.
func (r *Rule) validIndex(idx uint64) bool {
	for i := range r.nIn.Len() {
		if int((idx>>(r.bits*uint(i)))&r.mask) >= r.numStates {
			return false
		}
	}
	return true
}

// findDeadStates collects the states a single-cell footprint keeps under
// every reachable configuration.
func (r *Rule) findDeadStates() []int {
	if !r.nOut.IsCenterOnly() {
		return nil
	}
	center := r.nIn.Index(geom.Point{})
	var dead []int
	for s := range r.numStates {
		if r.keeps(s, center) {
			dead = append(dead, s)
		}
	}
	return dead
}

func (r *Rule) keeps(s, center int) bool {
	for idx := range uint64(len(r.entries)) {
		if !r.validIndex(idx) {
			continue
		}
		if center >= 0 && int((idx>>(r.bits*uint(center)))&r.mask) != s {
			continue
		}
		if int(r.entries[idx]&r.mask) != s {
			return false
		}
	}
	return true
}
