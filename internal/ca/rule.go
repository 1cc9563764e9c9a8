// Package ca defines the cellular automaton rule contract shared by the
// table and equation rule variants, and the neighborhoods rules read from
// and write to.
package ca

import (
	"errors"
	"fmt"

	"github.com/vovakirdan/casim/internal/geom"
	"github.com/vovakirdan/casim/internal/grid"
)

// ErrMalformedRule wraps every failure to construct a rule. A rule is
// never returned together with this error.
var ErrMalformedRule = errors.New("ca: malformed rule")

// Stability states whether repeated stepping is known to reach a fixpoint.
type Stability int

const (
	StabilityUnknown Stability = iota
	StabilityAlways
	StabilityNever
)

// String returns the stability name.
func (s Stability) String() string {
	switch s {
	case StabilityAlways:
		return "always"
	case StabilityNever:
		return "never"
	default:
		return "unknown"
	}
}

// ParseStability converts a stability name back to its value.
func ParseStability(s string) (Stability, error) {
	switch s {
	case "", "unknown":
		return StabilityUnknown, nil
	case "always":
		return StabilityAlways, nil
	case "never":
		return StabilityNever, nil
	}
	return StabilityUnknown, fmt.Errorf("ca: unknown stability %q", s)
}

// Rule is a cellular automaton transition function.
type Rule interface {
	// BorderWidth is the border a grid needs so every read and write of the
	// rule stays inside its buffer: max(NIn border, NOut border).
	BorderWidth() int
	// NIn is the set of offsets the rule reads.
	NIn() Neighborhood
	// NOut is the set of offsets the rule writes (its footprint).
	NOut() Neighborhood
	// NDep is the set of offsets whose activity a change may affect.
	NDep() Neighborhood
	// NumStates is the number of valid states, or 0 if unbounded.
	NumStates() int
	// NextState evaluates the rule at human position p of g and writes one
	// value per NOut offset into out, in NOut order. len(out) must be
	// NOut().Len().
	NextState(g *grid.Grid, p geom.Point, out []int)
	// IsStateDead reports whether a single-cell footprint in state s can
	// never change, whatever its neighbors hold.
	IsStateDead(s int) bool
	// GetsStable reports whether stepping is known to terminate.
	GetsStable() Stability
}

// BorderWidthOf computes max(NIn border, NOut border).
func BorderWidthOf(in, out Neighborhood) int {
	return max(in.BorderWidth(), out.BorderWidth())
}

// CheckGrid verifies that g has a border wide enough for r.
func CheckGrid(r Rule, g *grid.Grid) error {
	if g.BorderWidth() < r.BorderWidth() {
		return fmt.Errorf("ca: grid border %d is narrower than rule border %d",
			g.BorderWidth(), r.BorderWidth())
	}
	return nil
}
