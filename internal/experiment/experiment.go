package experiment

import (
	"context"
	"fmt"
	"math"

	"github.com/sirupsen/logrus"

	"github.com/san-kum/physlab/internal/config"
	"github.com/san-kum/physlab/internal/dynamo"
	"github.com/san-kum/physlab/internal/integrators"
	"github.com/san-kum/physlab/internal/metrics"
	"github.com/san-kum/physlab/internal/physics"
	"github.com/san-kum/physlab/internal/regression"
)

// DefaultMaxFrames bounds a single headless trial (five minutes at 60 fps).
const DefaultMaxFrames = 5 * 60 * 60

// Trial is one run of a lab at a swept parameter value.
type Trial struct {
	Param    float64
	Measured float64
	Sample   regression.Sample

	// Centripetal runs also record the cylinder's largest frame displacement
	// and the share of frames it spent on the bottom stop.
	Displacement float64
	AtStop       float64
}

// Result is a completed experiment: the recorded samples, their fit and the
// constant derived from the fit.
type Result struct {
	Lab       string
	Quantity  string
	Unit      string
	Trials    []Trial
	Samples   *regression.SampleSet
	Fit       regression.Result
	Value     float64
	Reference float64
}

// RelError is |Value − Reference| / Reference.
func (r *Result) RelError() float64 {
	if r.Reference == 0 {
		return math.NaN()
	}
	return math.Abs(r.Value-r.Reference) / math.Abs(r.Reference)
}

// Runner drives labs headless through a Driver.
type Runner struct {
	cfg       *config.Config
	log       *logrus.Entry
	maxFrames int
}

func NewRunner(cfg *config.Config, log *logrus.Entry) *Runner {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	if log == nil {
		l := logrus.New()
		l.SetLevel(logrus.WarnLevel)
		log = logrus.NewEntry(l)
	}
	return &Runner{cfg: cfg, log: log, maxFrames: DefaultMaxFrames}
}

func (r *Runner) Config() *config.Config { return r.cfg }

func (r *Runner) drive(ctx context.Context, m dynamo.Model, metric ...dynamo.Metric) (*dynamo.Driver, error) {
	d := r.cfg.Driver.NewDriver()
	if err := d.Validate(); err != nil {
		return nil, err
	}
	for _, mt := range metric {
		d.AddMetric(mt)
	}
	if _, err := d.Run(ctx, m, r.cfg.Driver.Frame(), r.maxFrames); err != nil {
		return d, err
	}
	if !m.Done() {
		return d, fmt.Errorf("%w: run did not finish within %d frames", dynamo.ErrPreconditionViolation, r.maxFrames)
	}
	if d.Dropped() > 0 {
		r.log.WithField("dropped", d.Dropped()).Warn("driver dropped simulated time")
	}
	return d, nil
}

func (r *Runner) newPendulum(h float64) (*physics.Pendulum, error) {
	cfg := r.cfg.Pendulum
	cfg.PivotOffset = h
	p, err := physics.NewPendulum(cfg)
	if err != nil {
		return nil, err
	}
	integ, err := integrators.Get(r.cfg.Integrator)
	if err != nil {
		return nil, err
	}
	if err := p.SetIntegrator(integ); err != nil {
		return nil, err
	}
	return p, nil
}

// PendulumTrial measures the average period with the pivot h from the centre.
// The sample is (h², T²·h).
func (r *Runner) PendulumTrial(ctx context.Context, h float64) (Trial, error) {
	p, err := r.newPendulum(h)
	if err != nil {
		return Trial{}, err
	}
	if err := p.Release(); err != nil {
		return Trial{}, err
	}
	if _, err := r.drive(ctx, p); err != nil {
		return Trial{}, fmt.Errorf("pendulum h=%g: %w", h, err)
	}
	period, err := p.AveragePeriod()
	if err != nil {
		return Trial{}, err
	}
	return Trial{
		Param:    h,
		Measured: period,
		Sample:   regression.Sample{X: h * h, Y: period * period * h},
	}, nil
}

// AirTableLaunchVX is the across-slope speed used for experiment launches.
const AirTableLaunchVX = 10.0

// AirTableTrial launches up the slope at speed vy and times the climb to the apex.
// The sample is (|vy|, time to apex).
func (r *Runner) AirTableTrial(ctx context.Context, vy float64) (Trial, error) {
	a, err := physics.NewAirTable(r.cfg.AirTable)
	if err != nil {
		return Trial{}, err
	}
	speed := math.Abs(vy)
	if err := a.Launch(dynamo.Vec{X: AirTableLaunchVX, Y: -speed}); err != nil {
		return Trial{}, err
	}
	if _, err := r.drive(ctx, a); err != nil {
		return Trial{}, fmt.Errorf("airtable vy=%g: %w", vy, err)
	}
	f := a.Flight()
	if !f.HasApex {
		return Trial{}, fmt.Errorf("%w: airtable vy=%g never turned", dynamo.ErrInsufficientData, vy)
	}
	if f.Bounces > 0 && a.Bounces()[0].Time <= f.TimeToApex {
		return Trial{}, fmt.Errorf("%w: airtable vy=%g hit the rail before its apex", dynamo.ErrInvalidConfiguration, vy)
	}
	return Trial{
		Param:    vy,
		Measured: f.TimeToApex,
		Sample:   regression.Sample{X: speed, Y: f.TimeToApex},
	}, nil
}

// CentripetalTrial runs the full guided sequence with the bob raised to h and
// times the bob's swing. The sample is (h, T²): for small swings
// T² ≈ 4π²ℓ/g + (π²/g)·h, so the intercept carries the rope length.
func (r *Runner) CentripetalTrial(ctx context.Context, h float64) (Trial, error) {
	c, err := physics.NewCentripetal(r.cfg.Centripetal)
	if err != nil {
		return Trial{}, err
	}
	if err := c.AttachMass(); err != nil {
		return Trial{}, err
	}
	if err := c.Assemble(r.cfg.Centripetal.ExtraExtension, h); err != nil {
		return Trial{}, err
	}
	if err := c.Release(); err != nil {
		return Trial{}, err
	}
	peak := metrics.NewPeak("displacement", physics.DisplacementLimit, func() float64 { return c.State().Displacement })
	if _, err := r.drive(ctx, c, peak); err != nil {
		return Trial{}, fmt.Errorf("centripetal h=%g: %w", h, err)
	}
	period, err := c.BobPeriod()
	if err != nil {
		return Trial{}, fmt.Errorf("centripetal h=%g: %w", h, err)
	}
	r.log.WithFields(logrus.Fields{
		"h":      h,
		"period": period,
		"peak":   peak.Value(),
		"status": physics.ClassifyDisplacement(peak.Value()).String(),
	}).Debug("centripetal run finished")
	return Trial{
		Param:        h,
		Measured:     period,
		Sample:       regression.Sample{X: h, Y: period * period},
		Displacement: peak.Value(),
		AtStop:       1 - peak.Within(),
	}, nil
}

// Run sweeps the lab over values, fits the samples and derives the lab's constant.
func (r *Runner) Run(ctx context.Context, lab string, values []float64) (*Result, error) {
	l, err := Lookup(lab)
	if err != nil {
		return nil, err
	}
	if len(values) == 0 {
		values = l.Defaults(r.cfg)
	}
	log := r.log.WithField("lab", lab)

	res := &Result{
		Lab:       lab,
		Quantity:  l.Quantity,
		Unit:      l.Unit,
		Samples:   regression.NewSampleSet(l.XLabel, l.YLabel),
		Reference: l.Reference(r.cfg),
	}
	for i, v := range values {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		trial, err := l.Trial(r, ctx, v)
		if err != nil {
			return res, fmt.Errorf("trial %d: %w", i+1, err)
		}
		res.Trials = append(res.Trials, trial)
		res.Samples.Add(trial.Sample.X, trial.Sample.Y)
		log.WithFields(logrus.Fields{
			"trial": i + 1,
			"x":     trial.Sample.X,
			"y":     trial.Sample.Y,
		}).Debug("trial recorded")
	}

	fit, err := res.Samples.Fit()
	if err != nil {
		return res, err
	}
	res.Fit = fit
	res.Value, err = l.Derive(r.cfg, fit)
	if err != nil {
		return res, err
	}

	log.WithFields(logrus.Fields{
		"slope":     fit.Slope,
		"intercept": fit.Intercept,
		"r2":        fit.RSquared,
		l.Quantity:  res.Value,
	}).Info("fit complete")
	return res, nil
}

// Comparison is one integrator's pendulum run against the theoretical period.
type Comparison struct {
	Integrator  string
	Period      float64
	Theoretical float64
	RelError    float64
	EnergyDrift float64
	MeanEnergy  float64
	FinalEnergy float64
}

// ComparePendulum runs the configured pendulum once per integrator.
func (r *Runner) ComparePendulum(ctx context.Context, names []string) ([]Comparison, error) {
	if len(names) == 0 {
		names = integrators.Names()
	}
	out := make([]Comparison, 0, len(names))
	for _, name := range names {
		integ, err := integrators.Get(name)
		if err != nil {
			return out, err
		}
		p, err := physics.NewPendulum(r.cfg.Pendulum)
		if err != nil {
			return out, err
		}
		if err := p.SetIntegrator(integ); err != nil {
			return out, err
		}
		if err := p.Release(); err != nil {
			return out, err
		}
		drift := metrics.NewEnergyDrift(p, 0)
		mean := metrics.NewEnergy(p)
		if _, err := r.drive(ctx, p, drift, mean); err != nil {
			return out, fmt.Errorf("%s: %w", name, err)
		}
		period, err := p.AveragePeriod()
		if err != nil {
			return out, err
		}
		want, err := p.TheoreticalPeriod()
		if err != nil {
			return out, err
		}
		c := Comparison{
			Integrator:  name,
			Period:      period,
			Theoretical: want,
			RelError:    math.Abs(period-want) / want,
			EnergyDrift: drift.Value(),
			MeanEnergy:  mean.Value(),
			FinalEnergy: drift.Current(),
		}
		r.log.WithFields(logrus.Fields{
			"integrator": name,
			"period":     period,
			"drift":      c.EnergyDrift,
		}).Debug("integrator compared")
		out = append(out, c)
	}
	return out, nil
}
