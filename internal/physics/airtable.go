package physics

import (
	"fmt"
	"math"

	"github.com/san-kum/physlab/internal/dynamo"
	"github.com/san-kum/physlab/internal/integrators"
)

// RestSpeed is the rail contact speed (cm/s) below which the puck stops instead of bouncing.
const RestSpeed = 1.0

type AirTableConfig struct {
	Width          float64    `yaml:"width"`
	Height         float64    `yaml:"height"`
	PuckRadius     float64    `yaml:"puck_radius"`
	InclineAngle   float64    `yaml:"incline_angle"` // degrees
	Gravity        float64    `yaml:"gravity"`
	Restitution    float64    `yaml:"restitution"`
	SubStep        float64    `yaml:"sub_step"`
	SparkInterval  float64    `yaml:"spark_interval"`
	Launch         dynamo.Vec `yaml:"launch"`
	LeaveEpsilon   float64    `yaml:"leave_epsilon"`
	MaxFlightTime  float64    `yaml:"max_flight_time"`
	PredictStep    float64    `yaml:"predict_step"`
	PredictMaxIter int        `yaml:"predict_max_iter"`
}

func DefaultAirTableConfig() AirTableConfig {
	return AirTableConfig{
		Width:          60,
		Height:         40,
		PuckRadius:     1.5,
		InclineAngle:   5,
		Gravity:        Gravity,
		Restitution:    0.8,
		SubStep:        0.001,
		SparkInterval:  0.05,
		Launch:         dynamo.Vec{X: 5, Y: 35},
		LeaveEpsilon:   1,
		MaxFlightTime:  30,
		PredictStep:    0.01,
		PredictMaxIter: 2000,
	}
}

func (c AirTableConfig) Validate() error {
	switch {
	case c.Width <= 0:
		return dynamo.InvalidParam("width", c.Width, "must be positive")
	case c.Height <= 0:
		return dynamo.InvalidParam("height", c.Height, "must be positive")
	case c.PuckRadius <= 0 || c.PuckRadius >= math.Min(c.Width, c.Height):
		return dynamo.InvalidParam("puck_radius", c.PuckRadius, "must fit on the table")
	case c.InclineAngle < 0 || c.InclineAngle >= 90:
		return dynamo.InvalidParam("incline_angle", c.InclineAngle, "must lie in [0, 90) degrees")
	case c.Gravity <= 0:
		return dynamo.InvalidParam("gravity", c.Gravity, "must be positive")
	case c.Restitution < 0 || c.Restitution > 1:
		return dynamo.InvalidParam("restitution", c.Restitution, "must lie in [0, 1]")
	case c.SubStep <= 0:
		return dynamo.InvalidParam("sub_step", c.SubStep, "must be positive")
	case c.SparkInterval <= 0:
		return dynamo.InvalidParam("spark_interval", c.SparkInterval, "must be positive")
	case c.LeaveEpsilon <= 0:
		return dynamo.InvalidParam("leave_epsilon", c.LeaveEpsilon, "must be positive")
	case c.MaxFlightTime <= 0:
		return dynamo.InvalidParam("max_flight_time", c.MaxFlightTime, "must be positive")
	case c.PredictStep <= 0 || c.PredictMaxIter < 1:
		return dynamo.InvalidParam("predict_step", c.PredictStep, "prediction needs a positive step and iteration budget")
	}
	m := c.margin()
	if c.Launch.X < m || c.Launch.X > c.Width-m || c.Launch.Y < m || c.Launch.Y > c.Height-m {
		return dynamo.InvalidParam("launch", c.Launch.Y, "launch point must lie on the table")
	}
	return nil
}

// margin keeps the puck centre this far from each edge.
func (c AirTableConfig) margin() float64 { return c.PuckRadius / 2 }

// Acceleration down the slope, the table's y axis.
func (c AirTableConfig) Acceleration() float64 {
	return c.Gravity * math.Sin(c.InclineAngle*math.Pi/180)
}

type Outcome int

const (
	OutcomeIdle Outcome = iota
	OutcomeFlying
	OutcomeLanded
	OutcomeStalled
)

func (o Outcome) String() string {
	switch o {
	case OutcomeIdle:
		return "idle"
	case OutcomeFlying:
		return "flying"
	case OutcomeLanded:
		return "landed"
	case OutcomeStalled:
		return "stalled"
	}
	return fmt.Sprintf("outcome(%d)", int(o))
}

func (o Outcome) MarshalText() ([]byte, error) { return []byte(o.String()), nil }

type ProjectileState struct {
	Position     dynamo.Vec `json:"position"`
	Velocity     dynamo.Vec `json:"velocity"`
	InclineAngle float64    `json:"incline_angle"`
	Launch       dynamo.Vec `json:"launch"`
	Time         float64    `json:"time"`
}

type Bounce struct {
	Time     float64    `json:"time"`
	Position dynamo.Vec `json:"position"`
	Energy   float64    `json:"energy"`
}

// Flight summarises a finished or running launch.
type Flight struct {
	Outcome    Outcome `json:"outcome"`
	Range      float64 `json:"range"`
	MaxHeight  float64 `json:"max_height"`
	TimeToApex float64 `json:"time_to_apex"`
	HasApex    bool    `json:"has_apex"`
	FlightTime float64 `json:"flight_time"`
	Bounces    int     `json:"bounces"`
}

// AirTable is a puck on a table tilted by the incline angle. The y axis runs
// down the slope, so "height" above the launch point is launch.Y − y.
type AirTable struct {
	cfg     AirTableConfig
	integ   dynamo.Integrator
	state   ProjectileState
	outcome Outcome

	dots      []dynamo.Vec
	nextSpark float64
	bounces   []Bounce

	// side is −1 once the puck went up-slope past the epsilon, +1 down-slope.
	side       int
	minY       float64
	timeToApex float64
	hasApex    bool
	rangeX     float64
}

func NewAirTable(cfg AirTableConfig) (*AirTable, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	a := &AirTable{cfg: cfg, integ: integrators.NewSemiImplicitEuler()}
	a.Init()
	return a, nil
}

// Init puts the puck back on the launch point at rest.
func (a *AirTable) Init() {
	a.state = ProjectileState{
		Position:     a.cfg.Launch,
		InclineAngle: a.cfg.InclineAngle,
		Launch:       a.cfg.Launch,
	}
	a.outcome = OutcomeIdle
	a.dots = a.dots[:0]
	a.bounces = a.bounces[:0]
	a.nextSpark = 0
	a.side = 0
	a.minY = a.cfg.Launch.Y
	a.timeToApex = 0
	a.hasApex = false
	a.rangeX = 0
}

func (a *AirTable) Config() AirTableConfig { return a.cfg }
func (a *AirTable) State() ProjectileState { return a.state }
func (a *AirTable) Running() bool          { return a.outcome == OutcomeFlying }
func (a *AirTable) Done() bool             { return a.outcome == OutcomeLanded || a.outcome == OutcomeStalled }

func (a *AirTable) Dots() []dynamo.Vec {
	out := make([]dynamo.Vec, len(a.dots))
	copy(out, a.dots)
	return out
}

func (a *AirTable) Bounces() []Bounce {
	out := make([]Bounce, len(a.bounces))
	copy(out, a.bounces)
	return out
}

func (a *AirTable) Flight() Flight {
	return Flight{
		Outcome:    a.outcome,
		Range:      a.rangeX,
		MaxHeight:  a.cfg.Launch.Y - a.minY,
		TimeToApex: a.timeToApex,
		HasApex:    a.hasApex,
		FlightTime: a.state.Time,
		Bounces:    len(a.bounces),
	}
}

func (a *AirTable) Configure(cfg AirTableConfig) error {
	if a.Running() {
		return dynamo.Busy("configure")
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	a.cfg = cfg
	a.Init()
	return nil
}

func (a *AirTable) GetParams() map[string]float64 {
	return map[string]float64{
		"incline_angle":  a.cfg.InclineAngle,
		"spark_interval": a.cfg.SparkInterval,
		"restitution":    a.cfg.Restitution,
		"launch_x":       a.cfg.Launch.X,
		"launch_y":       a.cfg.Launch.Y,
	}
}

func (a *AirTable) SetParam(name string, value float64) error {
	cfg := a.cfg
	switch name {
	case "incline_angle":
		cfg.InclineAngle = value
	case "spark_interval":
		cfg.SparkInterval = value
	case "restitution":
		cfg.Restitution = value
	case "launch_x":
		cfg.Launch.X = value
	case "launch_y":
		cfg.Launch.Y = value
	default:
		return fmt.Errorf("unknown param: %s", name)
	}
	return a.Configure(cfg)
}

// Launch starts a flight from the launch point with velocity v.
func (a *AirTable) Launch(v dynamo.Vec) error {
	if a.Running() {
		return dynamo.Busy("launch")
	}
	if math.IsNaN(v.X) || math.IsNaN(v.Y) || math.IsInf(v.Len(), 0) {
		return dynamo.InvalidParam("velocity", v.Len(), "must be finite")
	}
	a.Init()
	a.state.Velocity = v
	a.outcome = OutcomeFlying
	a.recordSpark()
	return nil
}

func (a *AirTable) StateDim() int { return 4 }

// Derive returns the derivative of [x, y, vx, vy].
func (a *AirTable) Derive(x dynamo.State, t float64) dynamo.State {
	return dynamo.State{x[2], x[3], 0, a.cfg.Acceleration()}
}

// Energy is kinetic plus slope potential energy per unit mass, zero at the launch point at rest.
func (a *AirTable) Energy() float64 {
	return energyAt(a.cfg, a.state.Position, a.state.Velocity)
}

func energyAt(cfg AirTableConfig, p, v dynamo.Vec) float64 {
	return 0.5*v.Dot(v) - cfg.Acceleration()*(p.Y-cfg.Launch.Y)
}

// Advance integrates dt in sub-steps no longer than the configured sub-step.
func (a *AirTable) Advance(dt float64) error {
	if !a.Running() {
		return fmt.Errorf("%w: advance without a flight in progress", dynamo.ErrPreconditionViolation)
	}
	if dt <= 0 {
		return dynamo.InvalidParam("dt", dt, "must be positive")
	}

	n := int(math.Ceil(dt/a.cfg.SubStep - 1e-9))
	if n < 1 {
		n = 1
	}
	h := dt / float64(n)
	for i := 0; i < n && a.Running(); i++ {
		if err := a.step(h); err != nil {
			return err
		}
	}
	return nil
}

func (a *AirTable) step(h float64) error {
	s := &a.state
	prevVY := s.Velocity.Y

	x := a.integ.Step(a, dynamo.State{s.Position.X, s.Position.Y, s.Velocity.X, s.Velocity.Y}, s.Time, h)
	if !x.IsValid() {
		a.outcome = OutcomeStalled
		return &dynamo.SimulationError{Time: s.Time, Wrapped: dynamo.ErrInvalidState}
	}
	s.Position = dynamo.Vec{X: x[0], Y: x[1]}
	s.Velocity = dynamo.Vec{X: x[2], Y: x[3]}
	s.Time += h

	a.collide()

	if !a.hasApex && prevVY < 0 && s.Velocity.Y >= 0 {
		a.hasApex = true
		a.timeToApex = s.Time
	}
	if s.Position.Y < a.minY {
		a.minY = s.Position.Y
	}

	launchY := a.cfg.Launch.Y
	if a.side == 0 && math.Abs(s.Position.Y-launchY) > a.cfg.LeaveEpsilon {
		if s.Position.Y < launchY {
			a.side = -1
		} else {
			a.side = 1
		}
	}
	if (a.side < 0 && s.Position.Y >= launchY) || (a.side > 0 && s.Position.Y <= launchY) {
		s.Position.Y = launchY
		s.Velocity = dynamo.Vec{}
		a.rangeX = s.Position.X - a.cfg.Launch.X
		a.outcome = OutcomeLanded
		a.recordSpark()
		return nil
	}

	if s.Time >= a.nextSpark {
		a.recordSpark()
	}
	if s.Time >= a.cfg.MaxFlightTime {
		a.rangeX = s.Position.X - a.cfg.Launch.X
		a.outcome = OutcomeStalled
	}
	return nil
}

// collide clamps the puck to the table margin and reflects the outward
// velocity component with the restitution factor. Contacts slower than
// RestSpeed leave the puck resting on the rail and are not counted.
func (a *AirTable) collide() {
	s := &a.state
	m := a.cfg.margin()
	hit := false

	if s.Position.X < m {
		s.Position.X = m
		hit = a.reflect(&s.Velocity.X, -1) || hit
	} else if s.Position.X > a.cfg.Width-m {
		s.Position.X = a.cfg.Width - m
		hit = a.reflect(&s.Velocity.X, 1) || hit
	}

	if s.Position.Y < m {
		s.Position.Y = m
		hit = a.reflect(&s.Velocity.Y, -1) || hit
	} else if s.Position.Y > a.cfg.Height-m {
		s.Position.Y = a.cfg.Height - m
		hit = a.reflect(&s.Velocity.Y, 1) || hit
	}

	if hit {
		a.bounces = append(a.bounces, Bounce{Time: s.Time, Position: s.Position, Energy: a.Energy()})
	}
}

// reflect flips v when it points along outward (±1).
func (a *AirTable) reflect(v *float64, outward float64) bool {
	speed := *v * outward
	if speed <= 0 {
		return false
	}
	if speed < RestSpeed {
		*v = 0
		return false
	}
	*v = -*v * a.cfg.Restitution
	return true
}

func (a *AirTable) recordSpark() {
	a.dots = append(a.dots, a.state.Position)
	a.nextSpark = a.state.Time + a.cfg.SparkInterval
}

// Predict forward-integrates a launch with velocity v from the launch point
// without touching the live run. It stops when the puck returns to launch
// height after leaving it, leaves the table, or runs out of iterations.
func (a *AirTable) Predict(v dynamo.Vec) []dynamo.Vec {
	cfg := a.cfg
	acc := cfg.Acceleration()
	h := cfg.PredictStep

	p := cfg.Launch
	points := make([]dynamo.Vec, 0, 64)
	points = append(points, p)

	side := 0
	for i := 0; i < cfg.PredictMaxIter; i++ {
		v.Y += acc * h
		p = p.Add(v.Scale(h))

		if p.X < 0 || p.X > cfg.Width || p.Y < 0 || p.Y > cfg.Height {
			break
		}
		points = append(points, p)

		if side == 0 && math.Abs(p.Y-cfg.Launch.Y) > cfg.LeaveEpsilon {
			if p.Y < cfg.Launch.Y {
				side = -1
			} else {
				side = 1
			}
		}
		if (side < 0 && p.Y >= cfg.Launch.Y) || (side > 0 && p.Y <= cfg.Launch.Y) {
			break
		}
	}
	return points
}
