// casim runs cellular automata in the terminal.
//
// Usage:
//
//	casim rules                  - List rule presets
//	casim run <rule>             - Run a rule on a grid
//	casim active <rule>          - Print the cells a rule would change
//	casim table build <rule>     - Precompute a rule into a table file
//	casim table info <file>      - Describe a table file
//	casim super                  - Super-stabilize a sandpile
//	casim drop <rule>            - Drop inputs and restabilize, repeatedly
//	casim runs                   - Show recorded runs
//
// Global flags:
//
//	--config <path>     - Config file (default: ~/.casim/config.yaml)
//	--log-level <lvl>   - debug, info, warn or error
//	--db <path>         - Run history database
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
