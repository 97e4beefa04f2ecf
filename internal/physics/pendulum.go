package physics

import (
	"fmt"
	"math"
	"slices"

	"github.com/san-kum/physlab/internal/dynamo"
	"github.com/san-kum/physlab/internal/integrators"
)

const (
	// SwingThreshold is the angular speed (rad/s) above which the bar counts as swinging.
	SwingThreshold = 0.001

	DefaultBarLength = 100.0
)

// PivotOffsets are the hole positions (cm from the centre of mass) drilled in the bar.
var PivotOffsets = []float64{5, 10, 15, 20, 25, 30, 35, 40, 45}

type PendulumConfig struct {
	Length        float64 `yaml:"length"`
	Gravity       float64 `yaml:"gravity"`
	PivotOffset   float64 `yaml:"pivot_offset"`
	InitialAngle  float64 `yaml:"initial_angle"` // degrees
	TargetPeriods int     `yaml:"target_periods"`
}

func DefaultPendulumConfig() PendulumConfig {
	return PendulumConfig{
		Length:        DefaultBarLength,
		Gravity:       Gravity,
		PivotOffset:   15,
		InitialAngle:  10,
		TargetPeriods: 10,
	}
}

func (c PendulumConfig) Validate() error {
	if c.Length <= 0 {
		return dynamo.InvalidParam("length", c.Length, "must be positive")
	}
	if c.Gravity <= 0 {
		return dynamo.InvalidParam("gravity", c.Gravity, "must be positive")
	}
	if c.PivotOffset <= 0 || c.PivotOffset >= c.Length/2 {
		return dynamo.InvalidParam("pivot_offset", c.PivotOffset, "must lie inside (0, L/2)")
	}
	if c.Length == DefaultBarLength && !slices.Contains(PivotOffsets, c.PivotOffset) {
		return dynamo.InvalidParam("pivot_offset", c.PivotOffset, "no hole at this offset")
	}
	if c.InitialAngle <= 0 || c.InitialAngle > 90 {
		return dynamo.InvalidParam("initial_angle", c.InitialAngle, "must lie in (0, 90] degrees")
	}
	if c.TargetPeriods < 1 {
		return dynamo.InvalidParam("target_periods", float64(c.TargetPeriods), "must be at least 1")
	}
	return nil
}

// InertiaPerMass is I/m about the pivot: L²/12 + h².
func InertiaPerMass(length, h float64) float64 {
	return length*length/12 + h*h
}

// TheoreticalPeriod is 2π√((L²/12 + h²)/(g·h)).
func TheoreticalPeriod(length, h, g float64) (float64, error) {
	if h <= 0 {
		return 0, dynamo.InvalidParam("pivot_offset", h, "period undefined without offset")
	}
	if g <= 0 || length <= 0 {
		return 0, dynamo.InvalidParam("gravity", g, "must be positive")
	}
	return 2 * math.Pi * math.Sqrt(InertiaPerMass(length, h)/(g*h)), nil
}

type PendulumState struct {
	Angle            float64 `json:"angle"`
	AngularVelocity  float64 `json:"angular_velocity"`
	PivotOffset      float64 `json:"pivot_offset"`
	CompletedPeriods int     `json:"completed_periods"`
	Started          bool    `json:"started"`
	Time             float64 `json:"time"`
}

// Pendulum is a uniform rigid bar swinging about a pivot h from its centre:
// d²θ/dt² = −(g·h / (L²/12 + h²))·sin θ.
type Pendulum struct {
	cfg     PendulumConfig
	integ   dynamo.Integrator
	state   PendulumState
	running bool
	done    bool
}

func NewPendulum(cfg PendulumConfig) (*Pendulum, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	p := &Pendulum{cfg: cfg, integ: integrators.NewRK4()}
	p.Init()
	return p, nil
}

// Init resets the run from the current configuration.
func (p *Pendulum) Init() {
	p.state = PendulumState{
		Angle:       p.cfg.InitialAngle * math.Pi / 180,
		PivotOffset: p.cfg.PivotOffset,
	}
	p.running = false
	p.done = false
}

func (p *Pendulum) Config() PendulumConfig { return p.cfg }
func (p *Pendulum) State() PendulumState   { return p.state }
func (p *Pendulum) Running() bool          { return p.running }
func (p *Pendulum) Done() bool             { return p.done }

// Release lets the bar go from its initial angle.
func (p *Pendulum) Release() error {
	if p.running {
		return dynamo.Busy("release")
	}
	if p.done {
		return fmt.Errorf("%w: run finished, init before releasing again", dynamo.ErrPreconditionViolation)
	}
	p.running = true
	return nil
}

// Configure replaces the configuration and re-initialises the model.
func (p *Pendulum) Configure(cfg PendulumConfig) error {
	if p.running {
		return dynamo.Busy("configure")
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	p.cfg = cfg
	p.Init()
	return nil
}

func (p *Pendulum) SetIntegrator(integ dynamo.Integrator) error {
	if p.running {
		return dynamo.Busy("set integrator")
	}
	p.integ = integ
	p.Init()
	return nil
}

func (p *Pendulum) GetParams() map[string]float64 {
	return map[string]float64{
		"length":         p.cfg.Length,
		"gravity":        p.cfg.Gravity,
		"pivot_offset":   p.cfg.PivotOffset,
		"initial_angle":  p.cfg.InitialAngle,
		"target_periods": float64(p.cfg.TargetPeriods),
	}
}

func (p *Pendulum) SetParam(name string, value float64) error {
	cfg := p.cfg
	switch name {
	case "length":
		cfg.Length = value
	case "gravity":
		cfg.Gravity = value
	case "pivot_offset":
		cfg.PivotOffset = value
	case "initial_angle":
		cfg.InitialAngle = value
	case "target_periods":
		cfg.TargetPeriods = int(value)
	default:
		return fmt.Errorf("unknown param: %s", name)
	}
	return p.Configure(cfg)
}

func (p *Pendulum) StateDim() int { return 2 }

func (p *Pendulum) Derive(x dynamo.State, t float64) dynamo.State {
	h := p.cfg.PivotOffset
	k := p.cfg.Gravity * h / InertiaPerMass(p.cfg.Length, h)
	return dynamo.State{x[1], -k * math.Sin(x[0])}
}

// Advance integrates one step of dt and updates the period counter.
func (p *Pendulum) Advance(dt float64) error {
	if !p.running {
		return fmt.Errorf("%w: advance before release", dynamo.ErrPreconditionViolation)
	}
	if dt <= 0 {
		return dynamo.InvalidParam("dt", dt, "must be positive")
	}

	prevOmega := p.state.AngularVelocity
	x := p.integ.Step(p, dynamo.State{p.state.Angle, prevOmega}, p.state.Time, dt)
	if !x.IsValid() {
		p.running = false
		return &dynamo.SimulationError{Time: p.state.Time, Wrapped: dynamo.ErrInvalidState}
	}

	p.state.Angle, p.state.AngularVelocity = x[0], x[1]
	p.state.Time += dt

	if math.Abs(p.state.AngularVelocity) > SwingThreshold {
		p.state.Started = true
	}

	// back at the starting side's turning point
	if p.state.Started && prevOmega > 0 && p.state.AngularVelocity <= 0 && p.state.Angle > 0 {
		p.state.CompletedPeriods++
		if p.state.CompletedPeriods >= p.cfg.TargetPeriods {
			p.running = false
			p.done = true
		}
	}

	return nil
}

// AveragePeriod is the elapsed time divided by the target period count.
func (p *Pendulum) AveragePeriod() (float64, error) {
	if !p.done {
		return 0, fmt.Errorf("%w: %d of %d periods completed", dynamo.ErrPreconditionViolation,
			p.state.CompletedPeriods, p.cfg.TargetPeriods)
	}
	return p.state.Time / float64(p.cfg.TargetPeriods), nil
}

func (p *Pendulum) TheoreticalPeriod() (float64, error) {
	return TheoreticalPeriod(p.cfg.Length, p.cfg.PivotOffset, p.cfg.Gravity)
}

// Energy is the mechanical energy per unit mass relative to the hanging position.
func (p *Pendulum) Energy() float64 {
	h := p.cfg.PivotOffset
	omega := p.state.AngularVelocity
	ke := 0.5 * InertiaPerMass(p.cfg.Length, h) * omega * omega
	pe := p.cfg.Gravity * h * (1 - math.Cos(p.state.Angle))
	return ke + pe
}

// CenterOfMass is the bar centre relative to the pivot, y pointing down.
func (p *Pendulum) CenterOfMass() dynamo.Vec {
	h := p.cfg.PivotOffset
	return dynamo.Vec{X: h * math.Sin(p.state.Angle), Y: h * math.Cos(p.state.Angle)}
}

// Ends returns the two bar ends relative to the pivot.
func (p *Pendulum) Ends() (top, bottom dynamo.Vec) {
	s, c := math.Sincos(p.state.Angle)
	half := p.cfg.Length / 2
	h := p.cfg.PivotOffset
	return dynamo.Vec{X: (h - half) * s, Y: (h - half) * c}, dynamo.Vec{X: (h + half) * s, Y: (h + half) * c}
}
