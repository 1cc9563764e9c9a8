package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/casim/internal/ca"
	"github.com/vovakirdan/casim/internal/grid"
	"github.com/vovakirdan/casim/internal/platform/tui"
	"github.com/vovakirdan/casim/internal/registry"
	"github.com/vovakirdan/casim/internal/sim"
	"github.com/vovakirdan/casim/internal/storage"
	"github.com/vovakirdan/casim/internal/trace"
)

// Output modes of the run command.
const (
	modeEnd  = "end"  // Print the final grid
	modeRole = "role" // Print the grid after every round
	modeAnim = "anim" // Animate in the terminal
)

type runFlags struct {
	ruleFlags
	in       string
	out      string
	mode     string
	steps    int
	maxSteps int
	async    bool
	seed     int64
	region   string
	trace    string
	record   bool
}

func newRunCmd(a *app) *cobra.Command {
	f := &runFlags{}
	cmd := &cobra.Command{
		Use:   "run <rule>",
		Short: "Run a rule on a grid",
		Long: `Run a cellular automaton on a grid until it is stable, or for a
fixed number of rounds.

Output modes:
  end   - print the final grid (default)
  role  - print the grid after every round, each headed by "# round N"
  anim  - animate in the terminal (space pause, n step, q quit)

Examples:
  casim run preset:sandpile --in pile.txt
  casim run preset:life --in glider.yaml --steps 40 --mode anim
  casim run table:life.tbl --in grid.txt --async --seed 3 --trace trace.csv`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runRun(cmd, args[0], f)
		},
	}

	f.register(cmd)
	cmd.Flags().StringVar(&f.in, "in", grid.StdIO, "Input grid file (- for stdin)")
	cmd.Flags().StringVar(&f.out, "out", grid.StdIO, "Output grid file (- for stdout)")
	cmd.Flags().StringVar(&f.mode, "mode", modeEnd, "Output mode: end, role, anim")
	cmd.Flags().IntVar(&f.steps, "steps", 0, "Rounds to run (0 = until stable)")
	cmd.Flags().IntVar(&f.maxSteps, "max-steps", 0, "Round limit when running until stable")
	cmd.Flags().BoolVar(&f.async, "async", false, "Randomized asynchronous updates")
	cmd.Flags().Int64Var(&f.seed, "seed", 0, "RNG seed")
	cmd.Flags().StringVar(&f.region, "region", "", "Only activate cells in x,y,w,h at start")
	cmd.Flags().StringVar(&f.trace, "trace", "", "Write per-round statistics CSV to this file")
	cmd.Flags().BoolVar(&f.record, "record", false, "Store the run in the history database")
	return cmd
}

// applyConfig fills flags the user did not set from the config.
func (a *app) applyConfig(cmd *cobra.Command, f *runFlags) {
	sc := a.cfg.Simulation
	if !cmd.Flags().Changed("steps") {
		f.steps = sc.Steps
	}
	if !cmd.Flags().Changed("max-steps") {
		f.maxSteps = sc.MaxSteps
	}
	if !cmd.Flags().Changed("async") {
		f.async = sc.Async
	}
	if !cmd.Flags().Changed("seed") {
		f.seed = sc.Seed
	}
	if !cmd.Flags().Changed("record") {
		f.record = a.cfg.Storage.Record
	}
}

func (a *app) runRun(cmd *cobra.Command, spec string, f *runFlags) error {
	a.applyConfig(cmd, f)
	switch f.mode {
	case modeEnd, modeRole, modeAnim:
	default:
		return fmt.Errorf("unknown mode %q, expected end, role or anim", f.mode)
	}
	if f.steps == 0 && f.maxSteps <= 0 {
		return errors.New("--max-steps must be positive when running until stable")
	}

	s, err := a.newSimulator(cmd, spec, &f.ruleFlags, f.in, f.async, f.seed, f.region)
	if err != nil {
		return err
	}
	if f.steps == 0 && s.GetsStable() == ca.StabilityNever {
		return errors.New("rule never stabilizes; pass --steps")
	}

	tw, closeTrace, err := openTrace(f.trace)
	if err != nil {
		return err
	}
	defer closeTrace()

	limit := f.steps
	if limit == 0 {
		limit = f.maxSteps
	}

	var records []trace.Record
	switch f.mode {
	case modeAnim:
		if !isTerminal(cmd.OutOrStdout()) {
			return errors.New("anim mode needs a terminal; use --mode role")
		}
		m, err := tui.RunAnim(s, tui.AnimOptions{
			Title:    spec,
			FPS:      a.cfg.Anim.FPS,
			Glyphs:   a.cfg.Anim.Glyphs,
			MaxSteps: limit,
			Trace:    tw,
		})
		if err != nil {
			return err
		}
		a.logger.Debug("animation ended", "state", m.State())
	default:
		out := cmd.OutOrStdout()
		if f.mode == modeRole {
			if err := writeRound(out, s); err != nil {
				return err
			}
		}
		for s.CanRun() && s.Round() < limit {
			res := s.Step()
			if tw != nil {
				rec := trace.NewRecord(res, s.Grid())
				records = append(records, rec)
				if err := tw.Write(rec); err != nil {
					return err
				}
			}
			if f.mode == modeRole {
				if err := writeRound(out, s); err != nil {
					return err
				}
			}
		}
	}

	stable := !s.CanRun()
	a.logger.Info("run finished", "rule", spec, "kind", registry.Kind(spec), "mode", s.Mode(), "rounds", s.Round(), "stable", stable)
	if f.steps == 0 && !stable {
		a.logger.Warn("round limit reached before the grid settled", "max_steps", limit)
	}
	if len(records) > 0 {
		sum := trace.Summarize(records)
		a.logger.Info("trace summary", "accepted", sum.TotalAccepted, "mean_accepted", sum.MeanAccepted,
			"peak_accepted", sum.PeakAccepted, "peak_round", sum.PeakRound)
	}

	if f.mode == modeEnd || (f.mode == modeAnim && f.out != grid.StdIO) {
		if err := writeGrid(cmd, f.out, s.Grid()); err != nil {
			return err
		}
	}
	if f.record {
		a.recordRun(spec, f.seed, s, stable)
	}
	return nil
}

// newSimulator resolves the rule, loads the grid and finalizes a simulator.
func (a *app) newSimulator(cmd *cobra.Command, spec string, rf *ruleFlags, in string, async bool, seed int64, region string) (*sim.Simulator, error) {
	rule, err := rf.resolve(spec, seed)
	if err != nil {
		return nil, err
	}
	g, err := readGrid(cmd, in, rule.BorderWidth())
	if err != nil {
		return nil, err
	}
	s, err := sim.New(rule, g, sim.Options{Mode: modeOf(async), Seed: seed, Logger: a.logger})
	if err != nil {
		return nil, err
	}
	if region == "" {
		err = s.Finalize()
	} else {
		r, perr := parseRect(region)
		if perr != nil {
			return nil, perr
		}
		err = s.FinalizeRect(r)
	}
	if err != nil {
		return nil, err
	}
	a.logger.Debug("simulator ready", "rule", spec, "size", g.Dim(), "active", len(s.ActiveCells()))
	return s, nil
}

// writeRound prints the grid of the current round.
func writeRound(w io.Writer, s *sim.Simulator) error {
	if _, err := fmt.Fprintf(w, "# round %d\n", s.Round()); err != nil {
		return err
	}
	if err := grid.Write(w, s.Grid()); err != nil {
		return err
	}
	_, err := fmt.Fprintln(w)
	return err
}

// openTrace creates the trace file, if any.
func openTrace(path string) (*trace.Writer, func(), error) {
	if path == "" {
		return nil, func() {}, nil
	}
	file, err := os.Create(path)
	if err != nil {
		return nil, nil, fmt.Errorf("cannot create trace %s: %w", path, err)
	}
	return trace.NewWriter(file), func() { file.Close() }, nil
}

// recordRun stores the run; failures are logged, not fatal.
func (a *app) recordRun(spec string, seed int64, s *sim.Simulator, stable bool) {
	store, err := storage.Open(a.dbPath)
	if err != nil {
		a.logger.Warn("could not open run database", "error", err)
		return
	}
	defer store.Close()

	g := s.Grid()
	id, err := store.SaveRun(storage.Run{
		Rule:      spec,
		Mode:      s.Mode().String(),
		Seed:      seed,
		Width:     g.Dim().W,
		Height:    g.Dim().H,
		Steps:     s.Round(),
		Stable:    stable,
		FinalGrid: g.String(),
	})
	if err != nil {
		a.logger.Warn("could not record run", "error", err)
		return
	}
	a.logger.Info("run recorded", "id", id)
}
