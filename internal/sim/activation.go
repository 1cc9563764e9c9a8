package sim

import "github.com/vovakirdan/casim/internal/rng"

// Activation decides, for one differing footprint comparison, whether the
// difference takes effect this round.
type Activation func(r *rng.RNG) bool

// Synchronous accepts every difference.
func Synchronous(*rng.RNG) bool { return true }

// DefaultAsynchronicity accepts each difference with probability 1/2.
func DefaultAsynchronicity(r *rng.RNG) bool { return r.Bool() }

// Mode selects the activation predicate used by Step.
type Mode int

const (
	ModeSync Mode = iota
	ModeAsync
)

// String returns "sync" or "async".
func (m Mode) String() string {
	if m == ModeAsync {
		return "async"
	}
	return "sync"
}

// Activation returns the predicate of the mode.
func (m Mode) Activation() Activation {
	if m == ModeAsync {
		return DefaultAsynchronicity
	}
	return Synchronous
}
