// Package sim runs a cellular automaton rule over a grid. Each round only
// re-examines cells near the previous round's changes, and writes from
// overlapping footprints are resolved by reserving footprints in a seeded
// random order.
package sim

import (
	"errors"
	"fmt"
	"io"
	"slices"

	"github.com/charmbracelet/log"

	"github.com/vovakirdan/casim/internal/ca"
	"github.com/vovakirdan/casim/internal/geom"
	"github.com/vovakirdan/casim/internal/grid"
	"github.com/vovakirdan/casim/internal/rng"
)

// Simulator errors.
var (
	ErrFinalized    = errors.New("sim: already finalized")
	ErrNotFinalized = errors.New("sim: not finalized")
	ErrOutOfBounds  = errors.New("sim: point outside grid")
)

// Options configure a Simulator.
type Options struct {
	Mode   Mode        // Activation used by Step
	Seed   int64       // Seed for conflict shuffling and async activation
	Logger *log.Logger // Optional; rounds are logged at debug level
}

// StepResult summarizes one round.
type StepResult struct {
	Round      int          // Round counter after the step
	Candidates int          // Unique candidates examined
	Changed    int          // Candidates whose output took effect before conflicts
	Accepted   []geom.Point // Candidates whose footprint was committed
	Deferred   int          // Candidates carried to the next round
}

// Simulator owns three buffers: the state at grids[round%2], the state
// being built at grids[(round+1)%2], and a reservation grid.
type Simulator struct {
	rule  ca.Rule
	nOut  ca.Neighborhood
	nDep  ca.Neighborhood
	grids [3]*grid.Grid
	mode  Mode
	rng   *rng.RNG
	log   *log.Logger

	bounds    geom.Rect
	finalized bool
	round     int

	changed  []geom.Point            // Accepted centers and inputs of the last round
	deferred map[geom.Point]struct{} // Candidates to reconsider next round
	written  []geom.Point            // Cells committed last round
	scratch  []int                   // Footprint outputs of this round's candidates
	reserved []geom.Point            // Reservation cells to clear
}

type candidate struct {
	p     geom.Point
	start int // offset into scratch
}

// New creates a simulator over a copy of g. The copy's border is widened to
// the rule's border width if needed.
func New(rule ca.Rule, g *grid.Grid, opts Options) (*Simulator, error) {
	if rule == nil || g == nil {
		return nil, errors.New("sim: nil rule or grid")
	}
	state := g.WithBorder(rule.BorderWidth())
	if state == g {
		state = g.Clone()
	}

	logger := opts.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}

	s := &Simulator{
		rule:     rule,
		nOut:     rule.NOut(),
		nDep:     ca.Dependencies(rule.NIn(), rule.NOut()).Append(rule.NDep()),
		mode:     opts.Mode,
		rng:      rng.New(opts.Seed),
		log:      logger,
		bounds:   state.Rect(),
		deferred: make(map[geom.Point]struct{}),
	}
	s.grids[0] = state
	s.grids[1] = state.Clone()
	s.grids[2] = grid.NewWithBorder(state.Dim(), state.BorderWidth(), 0, 0)
	return s, nil
}

// Finalize seeds the active set from the whole grid.
func (s *Simulator) Finalize() error {
	return s.FinalizeRect(s.grids[0].Rect())
}

// FinalizeRect restricts the simulation to region and seeds the active set
// with every cell of region for which the rule is active. It must be called
// exactly once, before any step.
func (s *Simulator) FinalizeRect(region geom.Rect) error {
	if s.finalized {
		return ErrFinalized
	}
	cur := s.grids[0]
	s.bounds = region.Intersect(cur.Rect())
	s.grids[1].CopyFrom(cur)

	out := make([]int, s.nOut.Len())
	for p := range s.bounds.Points() {
		if ca.IsCellActive(s.rule, cur, p, out) {
			s.changed = append(s.changed, p)
		}
	}
	s.finalized = true
	s.log.Debug("finalized", "bounds", s.bounds, "active", len(s.changed))
	return nil
}

// Step runs one round with the simulator's mode.
func (s *Simulator) Step() StepResult {
	return s.StepWith(s.mode.Activation())
}

// StepWith runs one round with an explicit activation predicate.
// It panics if the simulator has not been finalized.
func (s *Simulator) StepWith(act Activation) StepResult {
	if !s.finalized {
		panic(ErrNotFinalized)
	}
	old := s.grids[s.round&1]
	next := s.grids[(s.round+1)&1]

	// next still holds the state from two rounds ago where the last round wrote
	for _, q := range s.written {
		next.Set(q, old.At(q))
	}
	s.written = s.written[:0]

	points := s.candidates()
	res := StepResult{Candidates: len(points)}
	changes := s.evaluate(old, points, act)
	res.Changed = len(changes)

	rng.Shuffle(s.rng, changes)
	res.Accepted = s.commit(next, changes)
	res.Deferred = len(s.deferred)

	s.changed = slices.Clone(res.Accepted)
	s.round++
	res.Round = s.round

	s.log.Debug("round",
		"round", s.round,
		"candidates", res.Candidates,
		"changed", res.Changed,
		"accepted", len(res.Accepted),
		"deferred", res.Deferred)
	return res
}

// candidates expands the last changes by n_dep, adds deferred cells and
// returns the ones inside the bounds, sorted and unique.
func (s *Simulator) candidates() []geom.Point {
	points := make([]geom.Point, 0, len(s.changed)*s.nDep.Len()+len(s.deferred))
	for _, p := range s.changed {
		s.nDep.ForEach(p, func(q geom.Point) {
			points = append(points, q)
		})
	}
	for p := range s.deferred {
		points = append(points, p)
	}
	clear(s.deferred)

	points = slices.DeleteFunc(points, func(p geom.Point) bool { return !s.bounds.Contains(p) })
	slices.SortFunc(points, geom.Compare)
	return slices.Compact(points)
}

// evaluate computes each candidate's footprint into scratch and returns the
// ones whose output takes effect this round. Candidates with a difference
// that the activation declined are deferred.
func (s *Simulator) evaluate(old *grid.Grid, points []geom.Point, act Activation) []candidate {
	offsets := s.nOut.Offsets()
	prune := s.nOut.IsCenterOnly()
	s.scratch = s.scratch[:0]

	var changes []candidate
	for _, p := range points {
		if prune && s.rule.IsStateDead(old.At(p)) {
			continue
		}

		start := len(s.scratch)
		s.scratch = slices.Grow(s.scratch, len(offsets))[:start+len(offsets)]
		out := s.scratch[start:]
		s.rule.NextState(old, p, out)

		differs, takes := false, false
		for i, d := range offsets {
			q := p.Add(d)
			if !s.bounds.Contains(q) || out[i] == old.At(q) {
				continue
			}
			differs = true
			if act(s.rng) {
				takes = true
				break
			}
		}

		switch {
		case takes:
			changes = append(changes, candidate{p: p, start: start})
		case differs:
			s.deferred[p] = struct{}{}
			s.scratch = s.scratch[:start]
		default:
			s.scratch = s.scratch[:start]
		}
	}
	return changes
}

// commit accepts candidates in order while their footprints are free,
// writing their outputs into next. Losers are deferred.
func (s *Simulator) commit(next *grid.Grid, changes []candidate) []geom.Point {
	reservation := s.grids[2]
	offsets := s.nOut.Offsets()
	accepted := make([]geom.Point, 0, len(changes))

	free := func(q geom.Point) bool { return reservation.At(q) == 0 }
	for _, c := range changes {
		if !s.nOut.ForEachBool(c.p, free) {
			s.deferred[c.p] = struct{}{}
			continue
		}
		out := s.scratch[c.start : c.start+len(offsets)]
		for i, d := range offsets {
			q := c.p.Add(d)
			reservation.Set(q, 1)
			s.reserved = append(s.reserved, q)
			if s.bounds.Contains(q) {
				next.Set(q, out[i])
				s.written = append(s.written, q)
			}
		}
		accepted = append(accepted, c.p)
	}

	for _, q := range s.reserved {
		reservation.Set(q, 0)
	}
	s.reserved = s.reserved[:0]
	return accepted
}

// Run steps at most n rounds while CanRun and returns the rounds run.
func (s *Simulator) Run(n int) int {
	steps := 0
	for steps < n && s.CanRun() {
		s.Step()
		steps++
	}
	return steps
}

// RunUntilStable steps until no cell is active or maxSteps rounds have
// run. maxSteps <= 0 means no bound. It returns the rounds run and whether
// the grid is stable.
func (s *Simulator) RunUntilStable(maxSteps int) (int, bool) {
	steps := 0
	for s.CanRun() {
		if maxSteps > 0 && steps >= maxSteps {
			return steps, false
		}
		s.Step()
		steps++
	}
	return steps, true
}

// Stabilize runs until no cell is active. It refuses, returning false,
// when the rule is known to never stabilize.
func (s *Simulator) Stabilize() bool {
	if s.rule.GetsStable() == ca.StabilityNever {
		s.log.Warn("refusing to stabilize a rule that never gets stable")
		return false
	}
	_, stable := s.RunUntilStable(0)
	return stable
}

// CanRun reports whether another round can change the grid: some cell
// changed last round or a candidate is waiting from a conflict or a
// declined activation.
func (s *Simulator) CanRun() bool {
	return len(s.changed) > 0 || len(s.deferred) > 0
}

// GetsStable forwards the rule's stability guarantee.
func (s *Simulator) GetsStable() ca.Stability {
	return s.rule.GetsStable()
}

// Input sets the cell at p to v in both state buffers and schedules its
// surroundings for the next round.
func (s *Simulator) Input(p geom.Point, v int) error {
	if !s.finalized {
		return ErrNotFinalized
	}
	if !s.grids[0].Contains(p) {
		return fmt.Errorf("%w: %v", ErrOutOfBounds, p)
	}
	s.grids[0].Set(p, v)
	s.grids[1].Set(p, v)
	s.changed = append(s.changed, p)
	return nil
}

// Grid returns the current state. It must not be modified; use Input.
func (s *Simulator) Grid() *grid.Grid {
	return s.grids[s.round&1]
}

// ActiveCells returns the worklist the next round expands: the active cells
// right after finalization, later the cells accepted last round plus
// inputs. The slice must not be modified.
func (s *Simulator) ActiveCells() []geom.Point {
	return s.changed
}

// IsCellActive reports whether the rule would change the current grid at p.
func (s *Simulator) IsCellActive(p geom.Point) bool {
	out := make([]int, s.nOut.Len())
	return ca.IsCellActive(s.rule, s.Grid(), p, out)
}

// Round returns the number of rounds run.
func (s *Simulator) Round() int { return s.round }

// Rule returns the simulated rule.
func (s *Simulator) Rule() ca.Rule { return s.rule }

// Mode returns the activation mode used by Step.
func (s *Simulator) Mode() Mode { return s.mode }

// Bounds returns the simulated region.
func (s *Simulator) Bounds() geom.Rect { return s.bounds }
