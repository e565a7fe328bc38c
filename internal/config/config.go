package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/cooldown/internal/thermal"
)

const (
	DefaultStep           = 10.0
	DefaultSampleInterval = 60.0
	DefaultMaxSteps       = 5_000_000
	DefaultSpeed          = 1.0
	DefaultFPS            = 30.0
)

type Config struct {
	Scenario thermal.Inputs `yaml:"scenario"`
	Fluid    thermal.Fluid  `yaml:"fluid"`
	Batch    BatchConfig    `yaml:"batch"`
	Playback PlaybackConfig `yaml:"playback"`
	Log      LogConfig      `yaml:"log"`
}

type BatchConfig struct {
	Step           float64 `yaml:"step_s"`
	SampleInterval float64 `yaml:"sample_interval_s"`
	MaxSteps       int     `yaml:"max_steps"`
}

type PlaybackConfig struct {
	StepSize float64 `yaml:"step_s"`
	Speed    float64 `yaml:"speed"`
	FPS      float64 `yaml:"fps"`
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	File   string `yaml:"file"`
}

// Reference is the 4" line, 50 Nm³/h LN2 boil-off scenario.
func Reference() thermal.Inputs {
	return thermal.Inputs{
		Length:          10,
		OuterDiameterMM: 114.3,
		WallThicknessMM: 6,
		InitialC:        20,
		TargetC:         -190,
		GasInletC:       -196,
		GasFlowNm3h:     50,
		AmbientC:        20,
		HeatTransfer:    0.05,
		Efficiency:      0.9,
	}
}

func DefaultConfig() *Config {
	return &Config{
		Scenario: Reference(),
		Fluid:    thermal.Nitrogen,
		Batch: BatchConfig{
			Step:           DefaultStep,
			SampleInterval: DefaultSampleInterval,
			MaxSteps:       DefaultMaxSteps,
		},
		Playback: PlaybackConfig{
			StepSize: DefaultStep,
			Speed:    DefaultSpeed,
			FPS:      DefaultFPS,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// Load reads a YAML file over the defaults, so a file only needs the keys
// it changes.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Validate checks the run settings. Scenario errors come back as the
// thermal error kinds.
func (c *Config) Validate() error {
	if err := c.Scenario.Validate(); err != nil {
		return err
	}
	return c.ValidateSettings()
}

// ValidateSettings checks everything but the scenario, which the live
// view lets the user fix in its editor.
func (c *Config) ValidateSettings() error {
	if err := c.Fluid.Validate(); err != nil {
		return err
	}
	positive := []struct {
		name string
		v    float64
	}{
		{"batch step", c.Batch.Step},
		{"batch sample interval", c.Batch.SampleInterval},
		{"playback step", c.Playback.StepSize},
		{"playback fps", c.Playback.FPS},
	}
	for _, p := range positive {
		if !(p.v > 0) {
			return &thermal.ValidationError{Field: p.name, Value: p.v, Reason: "must be positive"}
		}
	}
	if c.Batch.MaxSteps < 0 {
		return &thermal.ValidationError{Field: "max steps", Value: float64(c.Batch.MaxSteps), Reason: "must not be negative"}
	}
	return nil
}

// Clone returns a deep copy.
func (c *Config) Clone() *Config {
	cp := *c
	return &cp
}
