package main

import (
	"fmt"
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/vovakirdan/casim/internal/config"
)

// app carries the state shared by all commands of one invocation.
type app struct {
	cfg    config.Config
	logger *log.Logger

	// Global flags
	configPath string
	logLevel   string
	dbPath     string
}

func newRootCmd() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:   "casim",
		Short: "casim - cellular automata simulator",
		Long: `casim simulates cellular automata given as table files, presets
or equations, synchronously or with randomized asynchronous updates.

Rules:
  table:<path>   - precomputed lookup table (casim table build)
  preset:<id>    - built-in rule (casim rules)
  anything else  - equation, e.g. "v == 1 || a[1,0] == 1"

Examples:
  casim rules
  casim run preset:life --in glider.txt --steps 20 --mode role
  casim run "1-v" --in grid.txt --async --seed 7
  casim super --in pile.txt
  casim runs --limit 5`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd)
		},
	}

	root.PersistentFlags().StringVar(&a.configPath, "config", "", "Path to config YAML")
	root.PersistentFlags().StringVar(&a.logLevel, "log-level", "", "Log level: debug, info, warn, error")
	root.PersistentFlags().StringVar(&a.dbPath, "db", "", "Path to run history database")

	root.AddCommand(
		newRulesCmd(a),
		newRunCmd(a),
		newActiveCmd(a),
		newTableCmd(a),
		newSuperCmd(a),
		newDropCmd(a),
		newRunsCmd(a),
	)
	return root
}

// setup loads the config and builds the logger.
func (a *app) setup(cmd *cobra.Command) error {
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return err
	}
	a.cfg = cfg

	level := cfg.Log.Level
	if a.logLevel != "" {
		level = a.logLevel
	}
	lvl, err := log.ParseLevel(level)
	if err != nil {
		return fmt.Errorf("invalid log level %q: %w", level, err)
	}

	a.logger = log.NewWithOptions(cmd.ErrOrStderr(), log.Options{
		ReportTimestamp: true,
		Prefix:          "casim",
		Level:           lvl,
	})
	if a.dbPath == "" {
		a.dbPath = cfg.Storage.DBPath
	}
	return nil
}

// isTerminal reports whether f is an interactive terminal.
func isTerminal(f any) bool {
	file, ok := f.(*os.File)
	return ok && isTTY(file)
}
