package main

import (
	"fmt"
	"os"

	"github.com/gocarina/gocsv"
	"github.com/spf13/cobra"

	"github.com/vovakirdan/casim/internal/platform/tui"
	"github.com/vovakirdan/casim/internal/storage"
	"github.com/vovakirdan/casim/internal/trace"
)

// runRow is the CSV export of a stored run.
type runRow struct {
	ID        int64  `csv:"id"`
	Rule      string `csv:"rule"`
	Mode      string `csv:"mode"`
	Seed      int64  `csv:"seed"`
	Width     int    `csv:"width"`
	Height    int    `csv:"height"`
	Steps     int    `csv:"steps"`
	Stable    bool   `csv:"stable"`
	CreatedAt string `csv:"created_at"`
}

func newRunsCmd(a *app) *cobra.Command {
	var (
		limit       int
		rule, del   string
		tracePath   string
		show        int64
		csv, ui, st bool
	)
	cmd := &cobra.Command{
		Use:   "runs",
		Short: "Show recorded runs",
		Long: `List runs stored with casim run --record, newest first.

Examples:
  casim runs --limit 5
  casim runs --rule preset:life --csv > life.csv
  casim runs --show 12
  casim runs --stats
  casim runs --delete preset:life
  casim runs --trace trace.csv
  casim runs --tui`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if tracePath != "" {
				return printTraceSummary(cmd, tracePath)
			}
			store, err := storage.Open(a.dbPath)
			if err != nil {
				return err
			}
			defer store.Close()

			w := cmd.OutOrStdout()
			switch {
			case show > 0:
				r, err := store.RunByID(show)
				if err != nil {
					return err
				}
				fmt.Fprintf(w, "# run %d: %s (%s, seed %d, %d steps, stable %t)\n",
					r.ID, r.Rule, r.Mode, r.Seed, r.Steps, r.Stable)
				_, err = fmt.Fprint(w, r.FinalGrid)
				return err
			case st:
				return printStats(cmd, store)
			case del != "":
				if err := store.DeleteRuns(del); err != nil {
					return err
				}
				a.logger.Info("runs deleted", "rule", del)
				return nil
			}

			var runs []storage.Run
			if rule != "" {
				runs, err = store.RunsForRule(rule, limit)
			} else {
				runs, err = store.RecentRuns(limit)
			}
			if err != nil {
				return err
			}

			switch {
			case ui:
				if !isTerminal(w) {
					return fmt.Errorf("--tui needs a terminal")
				}
				width, height := terminalSize()
				return tui.RunHistory(runs, a.cfg.Anim.Glyphs, width, height)
			case csv:
				rows := make([]runRow, len(runs))
				for i, r := range runs {
					rows[i] = runRow{
						ID: r.ID, Rule: r.Rule, Mode: r.Mode, Seed: r.Seed,
						Width: r.Width, Height: r.Height, Steps: r.Steps, Stable: r.Stable,
						CreatedAt: r.CreatedAt.Format("2006-01-02 15:04:05"),
					}
				}
				return gocsv.Marshal(rows, w)
			}
			printRuns(cmd, runs)
			return nil
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 20, "Maximum runs to list")
	cmd.Flags().StringVar(&rule, "rule", "", "Only runs of this rule spec")
	cmd.Flags().Int64Var(&show, "show", 0, "Print the final grid of the run with this ID")
	cmd.Flags().BoolVar(&csv, "csv", false, "Export as CSV")
	cmd.Flags().BoolVar(&ui, "tui", false, "Browse interactively")
	cmd.Flags().BoolVar(&st, "stats", false, "Aggregate statistics per rule")
	cmd.Flags().StringVar(&del, "delete", "", "Delete every run of this rule spec")
	cmd.Flags().StringVar(&tracePath, "trace", "", "Summarize a trace CSV written by casim run --trace")
	return cmd
}

func printRuns(cmd *cobra.Command, runs []storage.Run) {
	w := cmd.OutOrStdout()
	if len(runs) == 0 {
		fmt.Fprintln(w, "No runs recorded yet.")
		fmt.Fprintln(w)
		fmt.Fprintln(w, "Use 'casim run <rule> --record' to store one.")
		return
	}

	fmt.Fprintf(w, "  %-5s  %-24s  %-5s  %-9s  %-6s  %-6s  %s\n", "ID", "Rule", "Mode", "Size", "Steps", "Stable", "Date")
	fmt.Fprintf(w, "  %-5s  %-24s  %-5s  %-9s  %-6s  %-6s  %s\n", "--", "----", "----", "----", "-----", "------", "----")
	for _, r := range runs {
		fmt.Fprintf(w, "  %-5d  %-24s  %-5s  %-9s  %-6d  %-6t  %s\n",
			r.ID, r.Rule, r.Mode, fmt.Sprintf("%dx%d", r.Width, r.Height), r.Steps, r.Stable,
			r.CreatedAt.Format("2006-01-02 15:04"))
	}
}

func printStats(cmd *cobra.Command, store *storage.Store) error {
	stats, err := store.Stats()
	if err != nil {
		return err
	}
	w := cmd.OutOrStdout()
	if len(stats) == 0 {
		fmt.Fprintln(w, "No runs recorded yet.")
		return nil
	}
	fmt.Fprintf(w, "  %-24s  %-5s  %-6s  %-9s  %-9s  %s\n", "Rule", "Runs", "Stable", "Avg steps", "Max steps", "Last run")
	fmt.Fprintf(w, "  %-24s  %-5s  %-6s  %-9s  %-9s  %s\n", "----", "----", "------", "---------", "---------", "--------")
	for _, s := range stats {
		fmt.Fprintf(w, "  %-24s  %-5d  %-6d  %-9.1f  %-9d  %s\n",
			s.Rule, s.Runs, s.Stable, s.AvgSteps, s.MaxSteps, s.LastRun.Format("2006-01-02 15:04"))
	}
	return nil
}

func printTraceSummary(cmd *cobra.Command, path string) error {
	file, err := os.Open(path)
	if err != nil {
		return err
	}
	defer file.Close()

	records, err := trace.Read(file)
	if err != nil {
		return fmt.Errorf("cannot read trace %s: %w", path, err)
	}
	sum := trace.Summarize(records)
	w := cmd.OutOrStdout()
	fmt.Fprintf(w, "rounds:         %d\n", sum.Rounds)
	fmt.Fprintf(w, "accepted:       %d\n", sum.TotalAccepted)
	fmt.Fprintf(w, "mean accepted:  %.2f (std %.2f)\n", sum.MeanAccepted, sum.StdAccepted)
	fmt.Fprintf(w, "peak accepted:  %d in round %d\n", sum.PeakAccepted, sum.PeakRound)
	fmt.Fprintf(w, "final mean:     %.3f\n", sum.FinalMean)
	return nil
}
