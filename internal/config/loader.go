package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// LocalPath is the project-local config file.
const LocalPath = "configs/casim.yaml"

// Load loads the casim configuration. Fields missing from a file keep
// their default values.
// Search order: customPath -> ~/.casim/config.yaml -> ./configs/casim.yaml -> embedded default
func Load(customPath string) (Config, error) {
	cfg := Default()

	// Try custom path first
	if customPath != "" {
		data, err := os.ReadFile(customPath)
		if err != nil {
			return cfg, fmt.Errorf("failed to read config %s: %w", customPath, err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("failed to parse config %s: %w", customPath, err)
		}
		return cfg, cfg.Validate()
	}

	// Try user config directory, then local configs directory
	for _, path := range []string{userConfigPath("config.yaml"), LocalPath} {
		if path == "" {
			continue
		}
		data, err := os.ReadFile(path)
		if err != nil {
			continue
		}
		candidate := Default()
		if err := yaml.Unmarshal(data, &candidate); err == nil {
			return candidate, candidate.Validate()
		}
	}

	// Use embedded default YAML
	if err := yaml.Unmarshal(defaultYAML, &cfg); err != nil {
		return Default(), nil
	}
	return cfg, nil
}

// Validate reports settings no command could run with.
func (c Config) Validate() error {
	switch {
	case c.Simulation.Steps < 0:
		return fmt.Errorf("config: simulation.steps must not be negative, got %d", c.Simulation.Steps)
	case c.Simulation.MaxSteps <= 0:
		return fmt.Errorf("config: simulation.max_steps must be positive, got %d", c.Simulation.MaxSteps)
	case c.Simulation.MaxIterations < 0:
		return fmt.Errorf("config: simulation.max_iterations must not be negative, got %d", c.Simulation.MaxIterations)
	case c.Table.MaxEntries < 0:
		return fmt.Errorf("config: table.max_entries must not be negative, got %d", c.Table.MaxEntries)
	case c.Anim.FPS <= 0:
		return fmt.Errorf("config: anim.fps must be positive, got %d", c.Anim.FPS)
	}
	return nil
}

// userConfigPath returns the path to user config file, or empty if home is unavailable.
func userConfigPath(filename string) string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".casim", filename)
}
