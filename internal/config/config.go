// Package config provides YAML-based configuration loading for casim.
package config

// Config contains all configuration for the casim CLI.
type Config struct {
	Simulation SimulationConfig `yaml:"simulation"`
	Table      TableConfig      `yaml:"table"`
	Storage    StorageConfig    `yaml:"storage"`
	Log        LogConfig        `yaml:"log"`
	Anim       AnimConfig       `yaml:"anim"`
}

// SimulationConfig defines defaults for the run command.
type SimulationConfig struct {
	Steps    int   `yaml:"steps"`     // Rounds to run; 0 runs until stable
	MaxSteps int   `yaml:"max_steps"` // Upper bound when running until stable
	Async    bool  `yaml:"async"`
	Seed     int64 `yaml:"seed"`
	// MaxIterations bounds super-stabilization clusters; 0 picks a bound from the grid area.
	MaxIterations int `yaml:"max_iterations"`
}

// TableConfig bounds table precomputation.
type TableConfig struct {
	MaxEntries int `yaml:"max_entries"`
}

// StorageConfig defines run history persistence.
type StorageConfig struct {
	DBPath string `yaml:"db_path"`
	Record bool   `yaml:"record"` // Record every run without --record
}

// LogConfig defines logger settings.
type LogConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error
}

// AnimConfig defines the terminal animation.
type AnimConfig struct {
	FPS    int    `yaml:"fps"`
	Glyphs string `yaml:"glyphs"` // One rune per state; states past the end use digits
}
