// Package equation implements the equation rule variant. An equation is a
// list of ';'-separated assignments evaluated per cell:
//
//	v := expr            assigns the cell itself (same as a bare expr)
//	v[dx,dy] := expr     assigns the footprint cell at offset (dx,dy)
//
// Expressions read neighbors as a[dx,dy] (v is a[0,0]) and the cell
// position as x and y. Booleans evaluate to 1 and 0, fractions truncate.
package equation

import (
	"fmt"
	"slices"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"

	"github.com/vovakirdan/casim/internal/ca"
	"github.com/vovakirdan/casim/internal/geom"
	"github.com/vovakirdan/casim/internal/grid"
	"github.com/vovakirdan/casim/internal/rng"
)

// Rule is an equation-driven transition function. Evaluation reuses one
// environment, so a Rule must not be shared between goroutines.
type Rule struct {
	source    string
	stmts     []compiled
	reads     []read
	nIn       ca.Neighborhood
	nOut      ca.Neighborhood
	nDep      ca.Neighborhood
	bw        int
	numStates int
	dead      []int
	stability ca.Stability
	usesPos   bool
	rng       *rng.RNG
	env       map[string]any
	machine   vm.VM
	lastErr   error
}

type compiled struct {
	out     int // index into nOut
	program *vm.Program
}

type read struct {
	name   string
	offset geom.Point
}

// Option configures a Rule.
type Option func(*Rule)

// WithNumStates declares the number of states, 0 for unbounded.
func WithNumStates(n int) Option {
	return func(r *Rule) { r.numStates = n }
}

// WithDeadStates declares states a single-cell rule never leaves.
func WithDeadStates(states ...int) Option {
	return func(r *Rule) { r.dead = slices.Clone(states) }
}

// WithStability declares whether the rule is known to stabilize.
func WithStability(s ca.Stability) Option {
	return func(r *Rule) { r.stability = s }
}

// WithRNG sets the source used by rand(). Defaults to seed 0.
func WithRNG(src *rng.RNG) Option {
	return func(r *Rule) { r.rng = src }
}

// Parse compiles an equation.
func Parse(source string, opts ...Option) (*Rule, error) {
	r := &Rule{source: source, rng: rng.New(0)}
	for _, opt := range opts {
		opt(r)
	}

	stmts, err := split(source)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ca.ErrMalformedRule, err)
	}

	var reads, targets []geom.Point
	for _, st := range stmts {
		reads = append(reads, st.reads...)
		targets = append(targets, st.target)
		if positionRef.MatchString(st.expr) {
			r.usesPos = true
		}
	}
	r.nIn = ca.NewNeighborhood(reads...)
	r.nOut = ca.NewNeighborhood(targets...)
	r.nDep = ca.Dependencies(r.nIn, r.nOut)
	r.bw = ca.BorderWidthOf(r.nIn, r.nOut)

	r.env = r.functions()
	r.env["x"], r.env["y"] = 0, 0
	for _, d := range r.nIn.Offsets() {
		name := varName(d)
		r.reads = append(r.reads, read{name: name, offset: d})
		r.env[name] = 0
	}

	for i, st := range stmts {
		program, err := expr.Compile(st.expr, expr.Env(r.env))
		if err != nil {
			return nil, fmt.Errorf("%w: statement %d: %v", ca.ErrMalformedRule, i+1, err)
		}
		r.stmts = append(r.stmts, compiled{out: r.nOut.Index(st.target), program: program})
	}

	if err := r.validateDead(); err != nil {
		return nil, err
	}
	return r, nil
}

func (r *Rule) validateDead() error {
	slices.Sort(r.dead)
	r.dead = slices.Compact(r.dead)
	if len(r.dead) > 0 && !r.nOut.IsCenterOnly() {
		return fmt.Errorf("%w: dead states need a single-cell footprint", ca.ErrMalformedRule)
	}
	for _, s := range r.dead {
		if s < 0 || (r.numStates > 0 && s >= r.numStates) {
			return fmt.Errorf("%w: dead state %d out of range", ca.ErrMalformedRule, s)
		}
	}
	return nil
}

// MustParse is like Parse but panics on error. For presets and tests.
func MustParse(source string, opts ...Option) *Rule {
	r, err := Parse(source, opts...)
	if err != nil {
		panic(err)
	}
	return r
}

func (r *Rule) BorderWidth() int         { return r.bw }
func (r *Rule) NIn() ca.Neighborhood     { return r.nIn }
func (r *Rule) NOut() ca.Neighborhood    { return r.nOut }
func (r *Rule) NDep() ca.Neighborhood    { return r.nDep }
func (r *Rule) NumStates() int           { return r.numStates }
func (r *Rule) GetsStable() ca.Stability { return r.stability }

// Source returns the program text.
func (r *Rule) Source() string { return r.source }

// UsesPosition reports whether the equation reads x or y.
func (r *Rule) UsesPosition() bool { return r.usesPos }

// IsStateDead reports whether s was declared dead.
func (r *Rule) IsStateDead(s int) bool {
	_, ok := slices.BinarySearch(r.dead, s)
	return ok
}

// Err returns the last evaluation error, if any.
func (r *Rule) Err() error { return r.lastErr }

// NextState binds x, y and the n_in values around p and evaluates every
// statement into out. A statement that fails at run time leaves its
// footprint cell unchanged and is reported by Err.
func (r *Rule) NextState(g *grid.Grid, p geom.Point, out []int) {
	r.env["x"], r.env["y"] = p.X, p.Y
	for _, rd := range r.reads {
		r.env[rd.name] = g.At(p.Add(rd.offset))
	}
	for _, st := range r.stmts {
		res, err := r.machine.Run(st.program, r.env)
		if err != nil {
			r.lastErr = fmt.Errorf("equation: at %v: %w", p, err)
			out[st.out] = g.At(p.Add(r.nOut.At(st.out)))
			continue
		}
		v, ok := toInt(res)
		if !ok {
			r.lastErr = fmt.Errorf("equation: at %v: non-numeric result %T", p, res)
			v = g.At(p.Add(r.nOut.At(st.out)))
		}
		out[st.out] = v
	}
}

// Eval evaluates the rule at p and returns the value written to the cell
// itself, or to the first footprint cell if the rule does not write p.
func (r *Rule) Eval(g *grid.Grid, p geom.Point) int {
	out := make([]int, r.nOut.Len())
	r.NextState(g, p, out)
	return out[max(r.nOut.Index(geom.Point{}), 0)]
}

func toInt(v any) (int, bool) {
	switch x := v.(type) {
	case int:
		return x, true
	case int64:
		return int(x), true
	case int32:
		return int(x), true
	case float64:
		return int(x), true
	case bool:
		if x {
			return 1, true
		}
		return 0, true
	}
	return 0, false
}
