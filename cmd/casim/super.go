package main

import (
	"github.com/spf13/cobra"

	"github.com/vovakirdan/casim/internal/grid"
	"github.com/vovakirdan/casim/internal/sandpile"
)

func newSuperCmd(a *app) *cobra.Command {
	var (
		in, out, firings string
		async            bool
		seed             int64
		maxIterations    int
	)
	cmd := &cobra.Command{
		Use:   "super",
		Short: "Super-stabilize a sandpile",
		Long: `Stabilize a sandpile configuration, then keep firing its maximal legal
cluster and restabilizing until no legal cluster is left. The border of
the grid is the sink.

Examples:
  casim super --in pile.txt
  casim super --in pile.txt --firings firings.txt --async --seed 2`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("seed") {
				seed = a.cfg.Simulation.Seed
			}
			if !cmd.Flags().Changed("max-iterations") {
				maxIterations = a.cfg.Simulation.MaxIterations
			}
			g, err := readGrid(cmd, in, sandpile.ToppleRule().BorderWidth())
			if err != nil {
				return err
			}

			res, err := sandpile.Superstabilize(g, sandpile.Options{
				Mode:          modeOf(async),
				Seed:          seed,
				MaxIterations: maxIterations,
				Logger:        a.logger,
			})
			if err != nil {
				return err
			}
			a.logger.Info("superstable", "clusters", res.Clusters, "rounds", res.Rounds)

			if firings != "" {
				if err := grid.SaveFile(firings, res.Firings); err != nil {
					return err
				}
			}
			return writeGrid(cmd, out, res.Grid)
		},
	}
	cmd.Flags().StringVar(&in, "in", grid.StdIO, "Input grid file (- for stdin)")
	cmd.Flags().StringVar(&out, "out", grid.StdIO, "Output grid file (- for stdout)")
	cmd.Flags().StringVar(&firings, "firings", "", "Write how often each cell fired to this file")
	cmd.Flags().BoolVar(&async, "async", false, "Topple asynchronously")
	cmd.Flags().Int64Var(&seed, "seed", 0, "RNG seed")
	cmd.Flags().IntVar(&maxIterations, "max-iterations", 0, "Cluster firing limit (0 = from grid size)")
	return cmd
}
