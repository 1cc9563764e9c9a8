package sandpile

import (
	"errors"
	"fmt"
	"io"

	"github.com/charmbracelet/log"

	"github.com/vovakirdan/casim/internal/geom"
	"github.com/vovakirdan/casim/internal/grid"
	"github.com/vovakirdan/casim/internal/sim"
)

var (
	// ErrNegative is returned for configurations with a negative cell.
	ErrNegative = errors.New("sandpile: negative cell")
	// ErrNoConvergence is returned when the iteration bound is reached.
	ErrNoConvergence = errors.New("sandpile: super-stabilization did not converge")
)

// Options configure stabilization runs.
type Options struct {
	Mode          sim.Mode
	Seed          int64
	MaxIterations int // Bound on cluster firings; 0 picks one from the grid size
	Logger        *log.Logger
}

// Result reports a super-stabilization.
type Result struct {
	Grid     *grid.Grid // Superstable configuration
	Firings  *grid.Grid // Times each cell took part in a cluster firing
	Clusters int        // Cluster firings performed
	Rounds   int        // Simulator rounds spent stabilizing
}

// NewSimulator returns a finalized simulator for g, using the footprint
// toppling rule in asynchronous mode. Callers must not finalize it again.
// Every cell at or above Threshold is scheduled, including edge cells whose
// footprint reaches into the sink.
func NewSimulator(g *grid.Grid, opts Options) (*sim.Simulator, error) {
	if err := checkNonNegative(g); err != nil {
		return nil, err
	}
	rule := Rule()
	if opts.Mode == sim.ModeAsync {
		rule = ToppleRule()
	}
	s, err := sim.New(rule, g, sim.Options{Mode: opts.Mode, Seed: opts.Seed, Logger: opts.Logger})
	if err != nil {
		return nil, err
	}
	if err := s.Finalize(); err != nil {
		return nil, err
	}
	for p := range g.Rect().Points() {
		if v := g.At(p); v >= Threshold && !s.IsCellActive(p) {
			if err := s.Input(p, v); err != nil {
				return nil, err
			}
		}
	}
	return s, nil
}

// Stabilize topples g until every cell is below Threshold and returns the
// stable configuration and the rounds it took.
func Stabilize(g *grid.Grid, opts Options) (*grid.Grid, int, error) {
	s, err := NewSimulator(g, opts)
	if err != nil {
		return nil, 0, err
	}
	s.Stabilize()
	return s.Grid().Clone(), s.Round(), nil
}

// AddGrain drops one grain on p of a running simulation.
func AddGrain(s *sim.Simulator, p geom.Point) error {
	if !s.Grid().Contains(p) {
		return fmt.Errorf("%w: %v", sim.ErrOutOfBounds, p)
	}
	return s.Input(p, s.Grid().At(p)+1)
}

// Superstabilize stabilizes g and then fires maximal legal clusters,
// restabilizing after each, until no legal cluster remains.
func Superstabilize(g *grid.Grid, opts Options) (Result, error) {
	s, err := NewSimulator(g, opts)
	if err != nil {
		return Result{}, err
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}

	s.Stabilize()
	firings := grid.New(g.Dim(), 0, 0)
	limit := opts.MaxIterations
	if limit <= 0 {
		limit = 16*g.Dim().Area() + 64
	}

	clusters := 0
	for {
		cluster := LegalCluster(s.Grid())
		if len(cluster) == 0 {
			break
		}
		if clusters >= limit {
			return Result{}, fmt.Errorf("%w after %d clusters", ErrNoConvergence, clusters)
		}
		if err := fire(s, cluster); err != nil {
			return Result{}, err
		}
		for _, p := range cluster {
			firings.Set(p, firings.At(p)+1)
		}
		clusters++
		logger.Debug("fired cluster", "size", len(cluster), "clusters", clusters)
		s.Stabilize()
	}

	return Result{
		Grid:     s.Grid().Clone(),
		Firings:  firings,
		Clusters: clusters,
		Rounds:   s.Round(),
	}, nil
}

// fire applies a set-firing through the simulator's input path.
func fire(s *sim.Simulator, cluster []geom.Point) error {
	cur := s.Grid()
	delta := make(map[geom.Point]int)
	inCluster := make(map[geom.Point]bool, len(cluster))
	for _, p := range cluster {
		inCluster[p] = true
	}
	for _, p := range cluster {
		for _, d := range neighbors {
			q := p.Add(d)
			if inCluster[q] {
				continue
			}
			delta[p]--
			if cur.Contains(q) {
				delta[q]++
			}
		}
	}

	values := make(map[geom.Point]int, len(delta))
	for p, d := range delta {
		values[p] = cur.At(p) + d
	}
	for p, v := range values {
		if err := s.Input(p, v); err != nil {
			return err
		}
	}
	return nil
}

// LegalCluster returns the maximal set of cells that can fire together
// without any going negative, found by burning: a cell with fewer grains
// than its edges leaving the set is removed until none is left to remove.
// The result is in row-major order and empty for superstable grids.
func LegalCluster(g *grid.Grid) []geom.Point {
	in := grid.NewWithBorder(g.Dim(), 1, 1, 0)
	out := func(p geom.Point) int {
		n := 0
		for _, d := range neighbors {
			if in.At(p.Add(d)) == 0 {
				n++
			}
		}
		return n
	}

	queue := make([]geom.Point, 0, g.Dim().Area())
	for p := range g.Points() {
		queue = append(queue, p)
	}
	for len(queue) > 0 {
		p := queue[0]
		queue = queue[1:]
		if in.At(p) == 0 || g.At(p) >= out(p) {
			continue
		}
		in.Set(p, 0)
		for _, d := range neighbors {
			if q := p.Add(d); g.Contains(q) && in.At(q) == 1 {
				queue = append(queue, q)
			}
		}
	}

	var cluster []geom.Point
	for p := range g.Points() {
		if in.At(p) == 1 {
			cluster = append(cluster, p)
		}
	}
	return cluster
}

// IsStable reports whether every cell is below Threshold.
func IsStable(g *grid.Grid) bool {
	return g.Count(func(v int) bool { return v >= Threshold }) == 0
}

// IsSuperstable reports whether g is stable and admits no legal cluster.
func IsSuperstable(g *grid.Grid) bool {
	return IsStable(g) && len(LegalCluster(g)) == 0
}

func checkNonNegative(g *grid.Grid) error {
	for p := range g.Points() {
		if v := g.At(p); v < 0 {
			return fmt.Errorf("%w: %d at %v", ErrNegative, v, p)
		}
	}
	return nil
}
