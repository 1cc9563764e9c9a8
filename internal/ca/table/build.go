package table

import (
	"fmt"

	"github.com/vovakirdan/casim/internal/ca"
	"github.com/vovakirdan/casim/internal/geom"
	"github.com/vovakirdan/casim/internal/grid"
)

// positional is implemented by rules whose result depends on x or y.
type positional interface {
	UsesPosition() bool
}

// FromRule precomputes a table for any rule by evaluating it on every
// configuration of its n_in values in [0, numStates). maxEntries bounds the
// table length; 0 means 1<<MaxIndexBits.
func FromRule(src ca.Rule, numStates, maxEntries int) (*Rule, error) {
	if p, ok := src.(positional); ok && p.UsesPosition() {
		return nil, ErrPositionDependent
	}
	if numStates < 1 {
		return nil, fmt.Errorf("%w: num_states must be positive, got %d", ErrStateRange, numStates)
	}
	nIn, nOut := src.NIn(), src.NOut()
	b := FieldBits(numStates)
	if b*uint(nIn.Len()) > MaxIndexBits {
		return nil, fmt.Errorf("%w: %d inputs of %d bits", ErrTableTooLarge, nIn.Len(), b)
	}
	size := 1 << (b * uint(nIn.Len()))
	if maxEntries > 0 && size > maxEntries {
		return nil, fmt.Errorf("%w: %d entries exceeds limit %d", ErrTableTooLarge, size, maxEntries)
	}

	t := &Rule{nIn: nIn, numStates: numStates, bits: b, mask: 1<<b - 1}
	window := grid.New(geom.Dim(1, 1), src.BorderWidth(), 0)
	origin := geom.Point{}
	out := make([]int, nOut.Len())
	entries := make([]uint64, size)

	for idx := range uint64(size) {
		if !t.validIndex(idx) {
			continue
		}
		for i, d := range nIn.Offsets() {
			window.Set(origin.Add(d), int((idx>>(b*uint(i)))&t.mask))
		}
		src.NextState(window, origin, out)
		for j, v := range out {
			if v < 0 || v >= numStates {
				return nil, fmt.Errorf("%w: output %d at %v for input %#x", ErrStateRange, v, nOut.At(j), idx)
			}
		}
		entries[idx] = t.Pack(out)
	}
	return New(nIn, nOut, numStates, entries)
}
