package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/physlab/internal/dynamo"
	"github.com/san-kum/physlab/internal/integrators"
	"github.com/san-kum/physlab/internal/physics"
)

const (
	DefaultIntegrator = "rk4"
	DefaultFPS        = 60
)

type Config struct {
	Lab         string                    `yaml:"lab"`
	Integrator  string                    `yaml:"integrator"`
	Driver      DriverConfig              `yaml:"driver"`
	Pendulum    physics.PendulumConfig    `yaml:"pendulum"`
	AirTable    physics.AirTableConfig    `yaml:"airtable"`
	Centripetal physics.CentripetalConfig `yaml:"centripetal"`
}

// DriverConfig controls how wall-clock frames are split into fixed sub-steps.
type DriverConfig struct {
	SubStep  float64 `yaml:"sub_step"`
	MaxSteps int     `yaml:"max_steps"`
	FPS      float64 `yaml:"fps"`
}

func (d DriverConfig) Frame() float64 { return 1 / d.FPS }

func (d DriverConfig) NewDriver() *dynamo.Driver {
	return dynamo.NewDriver(d.SubStep, d.MaxSteps)
}

func DefaultConfig() *Config {
	return &Config{
		Lab:        "pendulum",
		Integrator: DefaultIntegrator,
		Driver: DriverConfig{
			SubStep:  dynamo.DefaultSubStep,
			MaxSteps: dynamo.DefaultMaxSteps,
			FPS:      DefaultFPS,
		},
		Pendulum:    physics.DefaultPendulumConfig(),
		AirTable:    physics.DefaultAirTableConfig(),
		Centripetal: physics.DefaultCentripetalConfig(),
	}
}

// Load overlays the YAML file at path on DefaultConfig.
func Load(path string) (*Config, error) {
	return LoadOnto(path, DefaultConfig())
}

// LoadOnto overlays the YAML file at path on a copy of base.
func LoadOnto(path string, base *Config) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := *base
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return &cfg, nil
}

// Resolve layers the named preset and then the YAML file at path over the
// defaults. Either may be empty. Without a lab the preset is looked up under
// the lab the file selects, or the default lab.
func Resolve(lab, preset, path string) (*Config, error) {
	cfg := DefaultConfig()
	if preset != "" {
		if lab == "" {
			lab = cfg.Lab
			if path != "" {
				loaded, err := Load(path)
				if err != nil {
					return nil, err
				}
				lab = loaded.Lab
			}
		}
		p := GetPreset(lab, preset)
		if p == nil {
			return nil, fmt.Errorf("unknown preset: %s (available: %v)", preset, ListPresets(lab))
		}
		cfg = p
	}
	if path != "" {
		return LoadOnto(path, cfg)
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

func (c *Config) Validate() error {
	if c.Driver.FPS <= 0 {
		return dynamo.InvalidParam("driver.fps", c.Driver.FPS, "must be positive")
	}
	if _, err := integrators.Get(c.Integrator); err != nil {
		return fmt.Errorf("%w: %v", dynamo.ErrInvalidConfiguration, err)
	}
	return errors.Join(
		c.Driver.NewDriver().Validate(),
		c.Pendulum.Validate(),
		c.AirTable.Validate(),
		c.Centripetal.Validate(),
	)
}
