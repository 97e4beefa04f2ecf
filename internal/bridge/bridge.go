// Package bridge runs labs from JSON requests for hosts that cannot link Go
// directly, such as the browser build in cmd/wasm.
package bridge

import (
	"context"
	"encoding/json"
	"fmt"
	"math"

	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"

	"github.com/san-kum/physlab/internal/analysis"
	"github.com/san-kum/physlab/internal/config"
	"github.com/san-kum/physlab/internal/dynamo"
	"github.com/san-kum/physlab/internal/experiment"
	"github.com/san-kum/physlab/internal/export"
	"github.com/san-kum/physlab/internal/integrators"
	"github.com/san-kum/physlab/internal/physics"
)

// Request selects a lab and either a single run or an experiment sweep.
// Config is a partial configuration in the YAML key layout; JSON objects are
// accepted as-is.
type Request struct {
	Lab    string          `json:"lab"`
	Preset string          `json:"preset,omitempty"`
	Config json.RawMessage `json:"config,omitempty"`
	Values []float64       `json:"values,omitempty"`
	Launch *dynamo.Vec     `json:"launch,omitempty"`
}

type Response struct {
	OK     bool   `json:"ok"`
	Error  string `json:"error,omitempty"`
	Result any    `json:"result,omitempty"`
}

type PendulumRun struct {
	Periods        int       `json:"periods"`
	AveragePeriod  float64   `json:"average_period"`
	Theoretical    float64   `json:"theoretical_period"`
	SpectralPeriod float64   `json:"spectral_period,omitempty"`
	Angles         []float64 `json:"angles"`
}

type AirTableRun struct {
	Flight    physics.Flight   `json:"flight"`
	Bounces   []physics.Bounce `json:"bounces"`
	Path      []dynamo.Vec     `json:"path"`
	Predicted []dynamo.Vec     `json:"predicted"`
}

type CentripetalRun struct {
	SpringConstant     float64   `json:"spring_constant"`
	ExtensionDueToMass float64   `json:"extension_due_to_mass"`
	RestExtension      float64   `json:"rest_extension"`
	ReleaseAngle       float64   `json:"release_angle"`
	MaxDisplacement    float64   `json:"max_displacement"`
	Status             string    `json:"status"`
	BobPeriod          float64   `json:"bob_period,omitempty"`
	Frequency          float64   `json:"frequency,omitempty"`
	Displacements      []float64 `json:"displacements"`
}

// DefaultLaunch is used when an air table request has no launch velocity.
var DefaultLaunch = dynamo.Vec{X: 15, Y: -60}

// Handler runs requests against a fixed logger.
type Handler struct {
	log *logrus.Entry
}

func NewHandler(log *logrus.Entry) *Handler {
	if log == nil {
		l := logrus.New()
		l.SetLevel(logrus.WarnLevel)
		log = logrus.NewEntry(l)
	}
	return &Handler{log: log}
}

// HandleJSON decodes a request, runs it and encodes the response. Failures
// are reported inside the response, never as a Go error.
func (h *Handler) HandleJSON(ctx context.Context, data []byte) []byte {
	var req Request
	resp := Response{}
	if err := json.Unmarshal(data, &req); err != nil {
		resp.Error = fmt.Sprintf("bad request: %v", err)
	} else if res, err := h.Handle(ctx, req); err != nil {
		resp.Error = err.Error()
	} else {
		resp.OK, resp.Result = true, res
	}
	out, err := json.Marshal(resp)
	if err != nil {
		out, _ = json.Marshal(Response{Error: err.Error()})
	}
	return out
}

func (h *Handler) config(req Request) (*config.Config, error) {
	cfg := config.DefaultConfig()
	if req.Preset != "" {
		if cfg = config.GetPreset(req.Lab, req.Preset); cfg == nil {
			return nil, fmt.Errorf("unknown preset: %s", req.Preset)
		}
	}
	if len(req.Config) > 0 {
		if err := yaml.Unmarshal(req.Config, cfg); err != nil {
			return nil, fmt.Errorf("config: %w", err)
		}
	}
	cfg.Lab = req.Lab
	return cfg, cfg.Validate()
}

// Handle runs one request. With Values it runs an experiment and returns its
// report; otherwise it runs the lab once.
func (h *Handler) Handle(ctx context.Context, req Request) (any, error) {
	if _, err := experiment.Lookup(req.Lab); err != nil {
		return nil, err
	}
	cfg, err := h.config(req)
	if err != nil {
		return nil, err
	}
	log := h.log.WithField("lab", req.Lab)

	if len(req.Values) > 0 {
		res, err := experiment.NewRunner(cfg, log).Run(ctx, req.Lab, req.Values)
		if err != nil {
			return nil, err
		}
		return export.NewReport(res, cfg.Integrator), nil
	}

	switch req.Lab {
	case "pendulum":
		return runPendulum(ctx, cfg)
	case "airtable":
		launch := DefaultLaunch
		if req.Launch != nil {
			launch = *req.Launch
		}
		return runAirTable(ctx, cfg, launch)
	default:
		return runCentripetal(ctx, cfg)
	}
}

func drive(ctx context.Context, cfg *config.Config, m dynamo.Model, sample func()) error {
	d := cfg.Driver.NewDriver()
	for frames := 0; !m.Done(); frames++ {
		if frames >= experiment.DefaultMaxFrames {
			return fmt.Errorf("%w: run did not finish within %d frames", dynamo.ErrPreconditionViolation, frames)
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if _, err := d.Frame(m, cfg.Driver.Frame()); err != nil {
			return err
		}
		sample()
	}
	return nil
}

func runPendulum(ctx context.Context, cfg *config.Config) (*PendulumRun, error) {
	integ, err := integrators.Get(cfg.Integrator)
	if err != nil {
		return nil, err
	}
	p, err := physics.NewPendulum(cfg.Pendulum)
	if err != nil {
		return nil, err
	}
	if err := p.SetIntegrator(integ); err != nil {
		return nil, err
	}
	if err := p.Release(); err != nil {
		return nil, err
	}

	out := &PendulumRun{}
	if err := drive(ctx, cfg, p, func() {
		out.Angles = append(out.Angles, p.State().Angle)
	}); err != nil {
		return nil, err
	}
	out.Periods = p.State().CompletedPeriods
	if out.AveragePeriod, err = p.AveragePeriod(); err != nil {
		return nil, err
	}
	if out.Theoretical, err = p.TheoreticalPeriod(); err != nil {
		return nil, err
	}
	if sp, err := analysis.DominantPeriod(out.Angles, cfg.Driver.Frame()); err == nil && !math.IsInf(sp, 0) {
		out.SpectralPeriod = sp
	}
	return out, nil
}

func runAirTable(ctx context.Context, cfg *config.Config, launch dynamo.Vec) (*AirTableRun, error) {
	a, err := physics.NewAirTable(cfg.AirTable)
	if err != nil {
		return nil, err
	}
	out := &AirTableRun{Predicted: a.Predict(launch)}
	if err := a.Launch(launch); err != nil {
		return nil, err
	}
	if err := drive(ctx, cfg, a, func() {
		out.Path = append(out.Path, a.State().Position)
	}); err != nil {
		return nil, err
	}
	out.Flight = a.Flight()
	out.Bounces = a.Bounces()
	return out, nil
}

func runCentripetal(ctx context.Context, cfg *config.Config) (*CentripetalRun, error) {
	c, err := physics.NewCentripetal(cfg.Centripetal)
	if err != nil {
		return nil, err
	}
	if err := c.AttachMass(); err != nil {
		return nil, err
	}
	if err := c.Assemble(cfg.Centripetal.ExtraExtension, cfg.Centripetal.ReleaseHeight); err != nil {
		return nil, err
	}
	if err := c.Release(); err != nil {
		return nil, err
	}

	out := &CentripetalRun{}
	if err := drive(ctx, cfg, c, func() {
		out.Displacements = append(out.Displacements, c.State().Displacement)
	}); err != nil {
		return nil, err
	}
	out.SpringConstant = c.SpringConstant()
	out.ExtensionDueToMass = c.ExtensionDueToMass()
	out.RestExtension = c.RestExtension()
	out.ReleaseAngle = c.ReleaseAngle()
	out.MaxDisplacement = c.MaxDisplacement()
	out.Status = c.Status().String()
	if period, err := c.BobPeriod(); err == nil {
		out.BobPeriod = period
	}
	if f, err := analysis.DominantFrequency(out.Displacements, cfg.Driver.Frame()); err == nil {
		out.Frequency = f
	}
	return out, nil
}
