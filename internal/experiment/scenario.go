package experiment

import (
	"context"
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"

	"github.com/san-kum/physlab/internal/config"
	"github.com/san-kum/physlab/internal/dynamo"
)

// Scenario is a scripted sequence of experiments.
type Scenario struct {
	Name        string         `yaml:"name"`
	Description string         `yaml:"description"`
	Steps       []ScenarioStep `yaml:"steps"`
}

// ScenarioStep runs one lab over a list of values or an evenly spaced sweep.
type ScenarioStep struct {
	Lab        string             `yaml:"lab"`
	Preset     string             `yaml:"preset"`
	Integrator string             `yaml:"integrator"`
	Params     map[string]float64 `yaml:"params"`
	Values     []float64          `yaml:"values"`
	Sweep      *Sweep             `yaml:"sweep"`
	SaveAs     string             `yaml:"save_as"`
}

// Sweep is NumSteps values from Min to Max inclusive.
type Sweep struct {
	Min      float64 `yaml:"min"`
	Max      float64 `yaml:"max"`
	NumSteps int     `yaml:"num_steps"`
}

func (s Sweep) Values() ([]float64, error) {
	if s.NumSteps < 2 {
		return nil, dynamo.InvalidParam("num_steps", float64(s.NumSteps), "a sweep needs at least two values")
	}
	if s.Max <= s.Min {
		return nil, dynamo.InvalidParam("max", s.Max, "must exceed min")
	}
	step := (s.Max - s.Min) / float64(s.NumSteps-1)
	vals := make([]float64, s.NumSteps)
	for i := range vals {
		vals[i] = s.Min + float64(i)*step
	}
	return vals, nil
}

func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var scenario Scenario
	if err := yaml.Unmarshal(data, &scenario); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if len(scenario.Steps) == 0 {
		return nil, fmt.Errorf("%w: scenario %q has no steps", dynamo.ErrInvalidConfiguration, scenario.Name)
	}

	return &scenario, nil
}

// stepConfig layers the step's preset, integrator and params over base.
func stepConfig(base *config.Config, step ScenarioStep) (*config.Config, error) {
	cfg := *base
	if step.Preset != "" {
		p := config.GetPreset(step.Lab, step.Preset)
		if p == nil {
			return nil, fmt.Errorf("%w: unknown preset %s/%s", dynamo.ErrInvalidConfiguration, step.Lab, step.Preset)
		}
		cfg = *p
		cfg.Driver = base.Driver
	}
	cfg.Lab = step.Lab
	if step.Integrator != "" {
		cfg.Integrator = step.Integrator
	}
	for name, v := range step.Params {
		if err := setLabParam(&cfg, step.Lab, name, v); err != nil {
			return nil, err
		}
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// RunScenario executes every step and returns the results in order. Steps
// with save_as are handed to save once they complete.
func RunScenario(ctx context.Context, scenario *Scenario, base *config.Config, log *logrus.Entry, save func(name string, res *Result) error) ([]*Result, error) {
	results := make([]*Result, 0, len(scenario.Steps))
	if base == nil {
		base = config.DefaultConfig()
	}

	for i, step := range scenario.Steps {
		slog := log.WithFields(logrus.Fields{"scenario": scenario.Name, "step": i + 1})
		slog.Infof("running step %d/%d: %s", i+1, len(scenario.Steps), step.Lab)

		cfg, err := stepConfig(base, step)
		if err != nil {
			return results, fmt.Errorf("step %d: %w", i+1, err)
		}

		values := step.Values
		if step.Sweep != nil {
			if values, err = step.Sweep.Values(); err != nil {
				return results, fmt.Errorf("step %d: %w", i+1, err)
			}
		}

		res, err := NewRunner(cfg, slog).Run(ctx, step.Lab, values)
		if err != nil {
			return results, fmt.Errorf("step %d run: %w", i+1, err)
		}
		results = append(results, res)

		if step.SaveAs != "" && save != nil {
			if err := save(step.SaveAs, res); err != nil {
				return results, fmt.Errorf("step %d save: %w", i+1, err)
			}
		}
	}

	return results, nil
}
