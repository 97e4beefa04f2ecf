package experiment

import (
	"context"
	"fmt"
	"math"
	"sort"

	"github.com/san-kum/physlab/internal/config"
	"github.com/san-kum/physlab/internal/dynamo"
	"github.com/san-kum/physlab/internal/physics"
	"github.com/san-kum/physlab/internal/regression"
)

// Lab describes how an experiment sweeps a lab and turns the fit into a constant.
type Lab struct {
	Name     string
	Quantity string
	Unit     string
	XLabel   string
	YLabel   string

	Defaults  func(cfg *config.Config) []float64
	Trial     func(r *Runner, ctx context.Context, v float64) (Trial, error)
	Derive    func(cfg *config.Config, fit regression.Result) (float64, error)
	Reference func(cfg *config.Config) float64
}

var labs = map[string]Lab{
	"pendulum": {
		Name:     "pendulum",
		Quantity: "g",
		Unit:     "cm/s²",
		XLabel:   "h² (cm²)",
		YLabel:   "T²h (s²·cm)",
		Defaults: func(cfg *config.Config) []float64 {
			var hs []float64
			for _, h := range physics.PivotOffsets {
				if h < cfg.Pendulum.Length/2 {
					hs = append(hs, h)
				}
			}
			return hs
		},
		Trial: (*Runner).PendulumTrial,
		Derive: func(cfg *config.Config, fit regression.Result) (float64, error) {
			// T²h = (4π²/g)·h² + 4π²L²/(12g)
			if fit.Slope <= 0 {
				return 0, fmt.Errorf("%w: non-positive slope %g", dynamo.ErrInsufficientVariance, fit.Slope)
			}
			return 4 * math.Pi * math.Pi / fit.Slope, nil
		},
		Reference: func(cfg *config.Config) float64 { return cfg.Pendulum.Gravity },
	},
	"airtable": {
		Name:     "airtable",
		Quantity: "g",
		Unit:     "cm/s²",
		XLabel:   "|vy| (cm/s)",
		YLabel:   "time to apex (s)",
		Defaults: func(cfg *config.Config) []float64 {
			return []float64{20, 30, 40, 50, 60}
		},
		Trial: (*Runner).AirTableTrial,
		Derive: func(cfg *config.Config, fit regression.Result) (float64, error) {
			// t_apex = |vy| / (g·sin φ)
			sin := math.Sin(cfg.AirTable.InclineAngle * math.Pi / 180)
			if fit.Slope <= 0 || sin == 0 {
				return 0, fmt.Errorf("%w: non-positive slope %g", dynamo.ErrInsufficientVariance, fit.Slope)
			}
			return 1 / (fit.Slope * sin), nil
		},
		Reference: func(cfg *config.Config) float64 { return cfg.AirTable.Gravity },
	},
	"centripetal": {
		Name:     "centripetal",
		Quantity: "ℓ",
		Unit:     "cm",
		XLabel:   "release height (cm)",
		YLabel:   "bob period² (s²)",
		Defaults: func(cfg *config.Config) []float64 {
			return []float64{2, 4, 6, 8, 10}
		},
		Trial: (*Runner).CentripetalTrial,
		Derive: func(cfg *config.Config, fit regression.Result) (float64, error) {
			// T² → 4π²ℓ/g as the release height goes to zero
			if fit.Intercept <= 0 {
				return 0, fmt.Errorf("%w: non-positive intercept %g", dynamo.ErrInsufficientVariance, fit.Intercept)
			}
			return cfg.Centripetal.Gravity * fit.Intercept / (4 * math.Pi * math.Pi), nil
		},
		Reference: func(cfg *config.Config) float64 { return cfg.Centripetal.RopeLength },
	},
}

func Lookup(name string) (Lab, error) {
	l, ok := labs[name]
	if !ok {
		return Lab{}, fmt.Errorf("unknown lab: %s", name)
	}
	return l, nil
}

func ListLabs() []string {
	names := make([]string, 0, len(labs))
	for name := range labs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
