package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/casim/internal/ca"
	"github.com/vovakirdan/casim/internal/ca/equation"
	"github.com/vovakirdan/casim/internal/geom"
	"github.com/vovakirdan/casim/internal/grid"
	"github.com/vovakirdan/casim/internal/rng"
	"github.com/vovakirdan/casim/internal/sandpile"
	"github.com/vovakirdan/casim/internal/sim"
)

type dropFlags struct {
	ruleFlags
	in, out  string
	input    string
	at       string
	cycles   int
	maxSteps int
	async    bool
	seed     int64
}

func newDropCmd(a *app) *cobra.Command {
	f := &dropFlags{}
	cmd := &cobra.Command{
		Use:   "drop <rule>",
		Short: "Drop inputs and restabilize, repeatedly",
		Long: `Run input cycles: stabilize the grid, apply the input equation to one
cell, and stabilize again. The cell is --at, or a random cell per cycle.
The size of each avalanche is logged.

Examples:
  casim drop preset:sandpile --in pile.txt --cycles 100
  casim drop preset:sandpile --in pile.txt --at 2,2 --input "v + 4"`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runDrop(cmd, args[0], f)
		},
	}
	f.register(cmd)
	cmd.Flags().StringVar(&f.in, "in", grid.StdIO, "Input grid file (- for stdin)")
	cmd.Flags().StringVar(&f.out, "out", grid.StdIO, "Output grid file (- for stdout)")
	cmd.Flags().StringVar(&f.input, "input", sandpile.InputEquation, "Equation giving the new value of the dropped-on cell")
	cmd.Flags().StringVar(&f.at, "at", "", "Cell x,y to drop on (default random)")
	cmd.Flags().IntVar(&f.cycles, "cycles", 1, "Number of input cycles")
	cmd.Flags().IntVar(&f.maxSteps, "max-steps", 0, "Round limit per cycle")
	cmd.Flags().BoolVar(&f.async, "async", false, "Randomized asynchronous updates")
	cmd.Flags().Int64Var(&f.seed, "seed", 0, "RNG seed")
	return cmd
}

func (a *app) runDrop(cmd *cobra.Command, spec string, f *dropFlags) error {
	if !cmd.Flags().Changed("seed") {
		f.seed = a.cfg.Simulation.Seed
	}
	if !cmd.Flags().Changed("max-steps") {
		f.maxSteps = a.cfg.Simulation.MaxSteps
	}
	if !cmd.Flags().Changed("async") {
		f.async = a.cfg.Simulation.Async
	}
	if f.cycles < 0 {
		return fmt.Errorf("--cycles must not be negative, got %d", f.cycles)
	}

	s, err := a.newSimulator(cmd, spec, &f.ruleFlags, f.in, f.async, f.seed, "")
	if err != nil {
		return err
	}
	if s.GetsStable() == ca.StabilityNever {
		return errors.New("rule never stabilizes; drop cycles need a settling rule")
	}
	input, err := equation.Parse(f.input, equation.WithRNG(rng.New(f.seed)))
	if err != nil {
		return err
	}
	if input.BorderWidth() > s.Grid().BorderWidth() {
		return fmt.Errorf("input equation reads %d cells past the edge, grid border is %d",
			input.BorderWidth(), s.Grid().BorderWidth())
	}

	var fixed *geom.Point
	if f.at != "" {
		p, err := parsePoint(f.at)
		if err != nil {
			return err
		}
		if !s.Grid().Contains(p) {
			return fmt.Errorf("%w: %v", sim.ErrOutOfBounds, p)
		}
		fixed = &p
	}

	pick := rng.New(f.seed)
	dim := s.Grid().Dim()
	if _, ok := s.RunUntilStable(f.maxSteps); !ok {
		return fmt.Errorf("grid did not settle within %d rounds", f.maxSteps)
	}

	total := 0
	for cycle := range f.cycles {
		p := geom.Pt(pick.IntN(dim.W), pick.IntN(dim.H))
		if fixed != nil {
			p = *fixed
		}
		if err := s.Input(p, input.Eval(s.Grid(), p)); err != nil {
			return err
		}
		if err := input.Err(); err != nil {
			return err
		}

		rounds, ok := s.RunUntilStable(f.maxSteps)
		if !ok {
			return fmt.Errorf("cycle %d did not settle within %d rounds", cycle+1, f.maxSteps)
		}
		total += rounds
		a.logger.Debug("drop", "cycle", cycle+1, "at", p, "rounds", rounds)
	}
	a.logger.Info("drops finished", "cycles", f.cycles, "rounds", total)

	return writeGrid(cmd, f.out, s.Grid())
}
