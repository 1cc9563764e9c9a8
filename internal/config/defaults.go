package config

import (
	_ "embed"
)

//go:embed defaults/casim.yaml
var defaultYAML []byte

// Default returns the hardcoded configuration.
func Default() Config {
	return Config{
		Simulation: SimulationConfig{
			Steps:    0,
			MaxSteps: 10000,
			Async:    false,
			Seed:     1,
		},
		Table: TableConfig{
			MaxEntries: 1 << 24,
		},
		Storage: StorageConfig{
			DBPath: "~/.casim/runs.db",
			Record: false,
		},
		Log: LogConfig{
			Level: "info",
		},
		Anim: AnimConfig{
			FPS:    10,
			Glyphs: " .:-=+*#%@",
		},
	}
}
