// Package config loads the demo host configuration: built-in defaults, then
// an optional YAML file, then UPDATABLE_* environment variables.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"
)

// Config is the complete host configuration.
type Config struct {
	Loop     LoopConfig      `yaml:"loop"`
	Blinkers []BlinkerConfig `yaml:"blinkers"`
	Ramps    []RampConfig    `yaml:"ramps"`
	Bodies   []BodyConfig    `yaml:"bodies"`
}

// LoopConfig controls the host loop. Every field can be overridden from the
// environment.
type LoopConfig struct {
	TickRate    time.Duration `yaml:"tick_rate" env:"UPDATABLE_TICK_RATE"`
	ClockUnit   time.Duration `yaml:"clock_unit" env:"UPDATABLE_CLOCK_UNIT"`
	ClockOffset uint32        `yaml:"clock_offset" env:"UPDATABLE_CLOCK_OFFSET"`
	Duration    time.Duration `yaml:"duration" env:"UPDATABLE_DURATION"`
	Debug       bool          `yaml:"debug" env:"UPDATABLE_DEBUG"`
	LogLevel    string        `yaml:"log_level" env:"UPDATABLE_LOG_LEVEL"`
	LogFormat   string        `yaml:"log_format" env:"UPDATABLE_LOG_FORMAT"`
}

// BlinkerConfig describes a parts.Blinker.
type BlinkerConfig struct {
	Name   string `yaml:"name"`
	Period int64  `yaml:"period"`
}

// RampConfig describes a parts.Ramp.
type RampConfig struct {
	Name   string  `yaml:"name"`
	From   float64 `yaml:"from"`
	Target float64 `yaml:"target"`
	Rate   float64 `yaml:"rate"`
}

// BodyConfig describes a parts.Body. Vectors have three components.
type BodyConfig struct {
	Name         string    `yaml:"name"`
	Position     []float64 `yaml:"position"`
	Velocity     []float64 `yaml:"velocity"`
	Acceleration []float64 `yaml:"acceleration"`
	Damping      float64   `yaml:"damping"`
}

// Default returns the configuration used when nothing is specified: a 1ms
// loop on a millisecond clock running one 500ms blinker for two seconds.
func Default() Config {
	return Config{
		Loop: LoopConfig{
			TickRate:  time.Millisecond,
			ClockUnit: time.Millisecond,
			Duration:  2 * time.Second,
			LogLevel:  "info",
			LogFormat: "text",
		},
		Blinkers: []BlinkerConfig{{Name: "led", Period: 500}},
	}
}

// Load builds the configuration. path may be empty to skip the file.
func Load(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("yaml unmarshal %s: %w", path, err)
		}
	}
	if err := env.Parse(&cfg.Loop); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("config validation: %w", err)
	}
	return cfg, nil
}

// Validate checks ranges and names.
func (c Config) Validate() error {
	if c.Loop.TickRate <= 0 {
		return errors.New("loop.tick_rate must be positive")
	}
	if c.Loop.ClockUnit <= 0 {
		return errors.New("loop.clock_unit must be positive")
	}
	if c.Loop.Duration < 0 {
		return errors.New("loop.duration cannot be negative")
	}
	if _, err := c.Loop.Level(); err != nil {
		return err
	}
	if c.Loop.LogFormat != "text" && c.Loop.LogFormat != "json" {
		return fmt.Errorf("loop.log_format %q: want text or json", c.Loop.LogFormat)
	}

	names := map[string]bool{}
	unique := func(kind, name string) error {
		if name == "" {
			return fmt.Errorf("%s: name is required", kind)
		}
		if names[name] {
			return fmt.Errorf("%s %q: duplicate name", kind, name)
		}
		names[name] = true
		return nil
	}
	for _, b := range c.Blinkers {
		if err := unique("blinker", b.Name); err != nil {
			return err
		}
		if b.Period <= 0 {
			return fmt.Errorf("blinker %q: period must be positive", b.Name)
		}
	}
	for _, r := range c.Ramps {
		if err := unique("ramp", r.Name); err != nil {
			return err
		}
		if r.Rate <= 0 {
			return fmt.Errorf("ramp %q: rate must be positive", r.Name)
		}
	}
	for _, b := range c.Bodies {
		if err := unique("body", b.Name); err != nil {
			return err
		}
		for field, v := range map[string][]float64{
			"position":     b.Position,
			"velocity":     b.Velocity,
			"acceleration": b.Acceleration,
		} {
			if v != nil && len(v) != 3 {
				return fmt.Errorf("body %q: %s needs 3 components, got %d", b.Name, field, len(v))
			}
		}
		if b.Damping < 0 {
			return fmt.Errorf("body %q: damping cannot be negative", b.Name)
		}
	}
	return nil
}

// Level parses LogLevel ("debug", "info", "warn", "error").
func (c LoopConfig) Level() (slog.Level, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return 0, fmt.Errorf("loop.log_level %q: %w", c.LogLevel, err)
	}
	return lvl, nil
}
