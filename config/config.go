// Package config provides configuration loading and access for the steering
// engine and its simulation harness.
package config

import (
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// Config holds all engine and harness configuration parameters.
type Config struct {
	Screen     ScreenConfig     `yaml:"screen"`
	World      WorldConfig      `yaml:"world"`
	Sensor     SensorConfig     `yaml:"sensor"`
	Objectives ObjectivesConfig `yaml:"objectives"`
	Behaviors  []BehaviorConfig `yaml:"behaviors"`
	Telemetry  TelemetryConfig  `yaml:"telemetry"`

	// Derived values computed after loading
	Derived DerivedConfig `yaml:"-"`
}

// ScreenConfig holds display settings for the interactive viewer.
type ScreenConfig struct {
	Width     int `yaml:"width"`
	Height    int `yaml:"height"`
	TargetFPS int `yaml:"target_fps"`
}

// WorldConfig holds the simulation arena and population parameters.
type WorldConfig struct {
	Width            float64 `yaml:"width"`
	Height           float64 `yaml:"height"`
	Agents           int     `yaml:"agents"`
	Threats          int     `yaml:"threats"`
	TickRate         float64 `yaml:"tick_rate"` // ticks per second
	MaxSpeed         float64 `yaml:"max_speed"`
	PerceptionRadius float64 `yaml:"perception_radius"`
	GridCellSize     float64 `yaml:"grid_cell_size"` // 0 = perception radius
	Seed             int64   `yaml:"seed"`
}

// SensorConfig describes the receptor ring shared by all agents.
type SensorConfig struct {
	Receptors   int     `yaml:"receptors"`
	Plane       string  `yaml:"plane"`
	Sensitivity float64 `yaml:"sensitivity"` // degrees, 0 = 360/receptors
	Magnitude   float64 `yaml:"magnitude"`   // 0 = 1
}

// ObjectivesConfig names the grid rows the decision step reads.
type ObjectivesConfig struct {
	Count    int `yaml:"count"`
	Interest int `yaml:"interest"`
	Danger   int `yaml:"danger"`
}

// BehaviorConfig describes one steering source. Behaviours run in list
// order; with the arithmetic combine rules that order changes the result,
// so it is part of the configuration contract.
type BehaviorConfig struct {
	Type      string `yaml:"type"`
	Target    string `yaml:"target"` // percept channel: goal, threats, neighbors, all
	Objective int    `yaml:"objective"`

	ValueMapping        string  `yaml:"value_mapping"`
	Rule                string  `yaml:"rule"`
	Plane               string  `yaml:"plane"`
	MagnitudeMultiplier float64 `yaml:"magnitude_multiplier"` // 0 = 1
	SensitivityOffset   float64 `yaml:"sensitivity_offset"`
	UseSignificance     bool    `yaml:"use_significance"`

	// Radius-filtered behaviours (seek, flee, adjust, arrive).
	InnerRadius    float64 `yaml:"inner_radius"`
	OuterRadius    float64 `yaml:"outer_radius"`
	RadiusMapping  string  `yaml:"radius_mapping"`
	ReceptorScaled bool    `yaml:"receptor_scaled"`

	// Arrive.
	BaseMagnitude float64 `yaml:"base_magnitude"`

	// Stabilization.
	MaxAngle       float64   `yaml:"max_angle"`
	MaxIncrease    float64   `yaml:"max_increase"`
	AngleMapping   string    `yaml:"angle_mapping"`
	UseVelocity    *bool     `yaml:"use_velocity"`
	LocalDirection []float64 `yaml:"local_direction"` // x, y, z

	// Retention.
	Objectives   []int   `yaml:"objectives"`
	MemoryFactor float64 `yaml:"memory_factor"`
}

// TelemetryConfig holds CSV output and perf-window parameters.
type TelemetryConfig struct {
	OutputDir           string `yaml:"output_dir"`
	FlushEvery          int    `yaml:"flush_every"`
	PerfCollectorWindow int    `yaml:"perf_collector_window"`
}

// DerivedConfig holds computed values derived from the loaded config.
type DerivedConfig struct {
	DT           float64 // 1 / World.TickRate
	GridCellSize float64 // effective spatial-hash cell size
}

// global holds the loaded configuration.
var global *Config

// Init loads configuration from the given path, or uses embedded defaults
// if path is empty. Must be called before Cfg().
func Init(path string) error {
	cfg, err := Load(path)
	if err != nil {
		return err
	}
	global = cfg
	return nil
}

// MustInit is like Init but panics on error.
func MustInit(path string) {
	if err := Init(path); err != nil {
		panic(fmt.Sprintf("config: failed to initialize: %v", err))
	}
}

// Cfg returns the global configuration. Panics if Init was not called.
func Cfg() *Config {
	if global == nil {
		panic("config: Cfg() called before Init()")
	}
	return global
}

// Load loads configuration from a YAML file, merging with embedded
// defaults. If path is empty, only embedded defaults are used.
func Load(path string) (*Config, error) {
	// Start with embedded defaults
	cfg := &Config{}
	if err := yaml.Unmarshal(defaultsYAML, cfg); err != nil {
		return nil, fmt.Errorf("parsing embedded defaults: %w", err)
	}

	// Load user config if provided
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		// Unmarshal into same struct - only overwrites fields present in file
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	// Compute derived values
	cfg.computeDerived()

	return cfg, nil
}

// computeDerived calculates values derived from loaded config.
func (c *Config) computeDerived() {
	if c.World.TickRate <= 0 {
		c.World.TickRate = 30
	}
	c.Derived.DT = 1 / c.World.TickRate

	c.Derived.GridCellSize = c.World.GridCellSize
	if c.Derived.GridCellSize <= 0 {
		c.Derived.GridCellSize = c.World.PerceptionRadius
	}
	if c.Derived.GridCellSize <= 0 {
		c.Derived.GridCellSize = 64
	}

	if c.Objectives.Count == 0 {
		c.Objectives.Count = 2
	}
	if c.Sensor.Receptors <= 0 {
		c.Sensor.Receptors = 16
	}
}

// WriteYAML writes the configuration to a YAML file.
func (c *Config) WriteYAML(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}
