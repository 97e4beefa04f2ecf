package config

import (
	"sort"

	"github.com/san-kum/physlab/internal/dynamo"
	"github.com/san-kum/physlab/internal/physics"
)

func pendulum(fn func(*physics.PendulumConfig)) *Config {
	cfg := DefaultConfig()
	cfg.Lab = "pendulum"
	fn(&cfg.Pendulum)
	return cfg
}

func airTable(fn func(*physics.AirTableConfig)) *Config {
	cfg := DefaultConfig()
	cfg.Lab = "airtable"
	fn(&cfg.AirTable)
	return cfg
}

func centripetal(fn func(*physics.CentripetalConfig)) *Config {
	cfg := DefaultConfig()
	cfg.Lab = "centripetal"
	fn(&cfg.Centripetal)
	return cfg
}

var Presets = map[string]map[string]*Config{
	"pendulum": {
		"classroom": pendulum(func(p *physics.PendulumConfig) {}),
		"near-center": pendulum(func(p *physics.PendulumConfig) {
			p.PivotOffset = 5
			p.TargetPeriods = 5
		}),
		"near-end": pendulum(func(p *physics.PendulumConfig) {
			p.PivotOffset = 45
		}),
		"wide": pendulum(func(p *physics.PendulumConfig) {
			p.InitialAngle = 60
		}),
	},
	"airtable": {
		"gentle": airTable(func(a *physics.AirTableConfig) {}),
		"steep": airTable(func(a *physics.AirTableConfig) {
			a.InclineAngle = 15
		}),
		"dead": airTable(func(a *physics.AirTableConfig) {
			a.Restitution = 0.3
		}),
		"centre": airTable(func(a *physics.AirTableConfig) {
			a.Launch = dynamo.Vec{X: 30, Y: 20}
		}),
	},
	"centripetal": {
		"standard": centripetal(func(c *physics.CentripetalConfig) {}),
		"soft": centripetal(func(c *physics.CentripetalConfig) {
			c.SpringConstant = 1225
		}),
		"long-rope": centripetal(func(c *physics.CentripetalConfig) {
			c.RopeLength = 80
			c.ReleaseHeight = 20
		}),
		"heavy-bob": centripetal(func(c *physics.CentripetalConfig) {
			c.BobMass = 50
		}),
	},
}

// GetPreset returns a copy of the named preset, or nil.
func GetPreset(lab, preset string) *Config {
	labPresets, ok := Presets[lab]
	if !ok {
		return nil
	}
	cfg, ok := labPresets[preset]
	if !ok {
		return nil
	}
	c := *cfg
	return &c
}

func ListPresets(lab string) []string {
	labPresets, ok := Presets[lab]
	if !ok {
		return nil
	}
	names := make([]string, 0, len(labPresets))
	for name := range labPresets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func Labs() []string {
	labs := make([]string, 0, len(Presets))
	for lab := range Presets {
		labs = append(labs, lab)
	}
	sort.Strings(labs)
	return labs
}
