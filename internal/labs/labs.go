package labs

import (
	"fmt"
	"math"

	"github.com/san-kum/physlab/internal/config"
	"github.com/san-kum/physlab/internal/dynamo"
	"github.com/san-kum/physlab/internal/physics"
)

// Param is a tunable lab parameter and its adjustment step.
type Param struct {
	Name string
	Step float64
}

// Stat is one labelled readout.
type Stat struct {
	Label, Value string
}

// Lab adapts a physics model to an interactive front end.
type Lab interface {
	Name() string
	Model() dynamo.Model
	Running() bool
	// Action is the primary control: release, launch or advance a phase.
	Action() error
	ActionHint() string
	Reset()
	Params() []Param
	Param(name string) float64
	SetParam(name string, v float64) error
	// Sample is the value charted over time.
	Sample() (float64, string)
	Stats() []Stat
	Draw(s Surface)
	// Poll reports the events since the previous call.
	Poll() []Event
}

// New builds the named lab from cfg.
func New(name string, cfg *config.Config) (Lab, error) {
	switch name {
	case "pendulum":
		p, err := physics.NewPendulum(cfg.Pendulum)
		if err != nil {
			return nil, err
		}
		return &pendulumLab{p: p}, nil
	case "airtable":
		a, err := physics.NewAirTable(cfg.AirTable)
		if err != nil {
			return nil, err
		}
		return &airTableLab{a: a, launch: dynamo.Vec{X: 15, Y: -60}}, nil
	case "centripetal":
		c, err := physics.NewCentripetal(cfg.Centripetal)
		if err != nil {
			return nil, err
		}
		return &centripetalLab{c: c}, nil
	}
	return nil, fmt.Errorf("unknown lab: %s", name)
}

func fmtF(format string, v float64) string { return fmt.Sprintf(format, v) }

type pendulumLab struct {
	p *physics.Pendulum
	w watch
}

func (l *pendulumLab) Name() string        { return "pendulum" }
func (l *pendulumLab) Model() dynamo.Model { return l.p }
func (l *pendulumLab) Running() bool       { return l.p.Running() }
func (l *pendulumLab) Action() error       { return l.p.Release() }
func (l *pendulumLab) ActionHint() string  { return "release" }

func (l *pendulumLab) Params() []Param {
	return []Param{{"pivot_offset", 5}, {"initial_angle", 1}, {"target_periods", 1}}
}

func (l *pendulumLab) Param(name string) float64 { return l.p.GetParams()[name] }
func (l *pendulumLab) SetParam(name string, v float64) error {
	return l.p.SetParam(name, v)
}

func (l *pendulumLab) Reset() {
	l.p.Init()
	l.w = watch{}
}

func (l *pendulumLab) Poll() []Event {
	return l.w.poll(EventPeriod, l.p.State().CompletedPeriods, l.p.Done())
}

func (l *pendulumLab) Sample() (float64, string) {
	return l.p.State().Angle * 180 / math.Pi, "angle (°)"
}

func (l *pendulumLab) Stats() []Stat {
	s := l.p.State()
	out := []Stat{
		{"Time", fmtF("%.3fs", s.Time)},
		{"Angle", fmtF("%.2f°", s.Angle*180/math.Pi)},
		{"Periods", fmt.Sprintf("%d / %d", s.CompletedPeriods, l.p.Config().TargetPeriods)},
	}
	if want, err := l.p.TheoreticalPeriod(); err == nil {
		out = append(out, Stat{"T theory", fmtF("%.4fs", want)})
	}
	if avg, err := l.p.AveragePeriod(); err == nil {
		out = append(out, Stat{"T measured", fmtF("%.4fs", avg)})
	}
	return out
}

func (l *pendulumLab) Draw(s Surface) {
	cfg := l.p.Config()
	half := cfg.Length / 2
	reach := half + cfg.PivotOffset
	// pivot sits at (reach, reach/5) so the bar swings inside the frame
	s.Fit(2*reach, reach*1.3, 2)
	pivot := dynamo.Vec{X: reach, Y: reach * 0.2}

	top, bottom := l.p.Ends()
	s.Line(pivot.Add(top), pivot.Add(bottom))
	s.Circle(pivot, 1)
	s.Circle(pivot.Add(l.p.CenterOfMass()), 1.5)
}

type airTableLab struct {
	a      *physics.AirTable
	launch dynamo.Vec
	w      watch
}

func (l *airTableLab) Name() string        { return "airtable" }
func (l *airTableLab) Model() dynamo.Model { return l.a }
func (l *airTableLab) Running() bool       { return l.a.Running() }
func (l *airTableLab) Action() error       { return l.a.Launch(l.launch) }
func (l *airTableLab) ActionHint() string  { return "launch" }

func (l *airTableLab) Params() []Param {
	return []Param{
		{"launch_vx", 5}, {"launch_vy", 5},
		{"incline_angle", 1}, {"restitution", 0.05}, {"spark_interval", 0.01},
	}
}

func (l *airTableLab) Param(name string) float64 {
	switch name {
	case "launch_vx":
		return l.launch.X
	case "launch_vy":
		return l.launch.Y
	}
	return l.a.GetParams()[name]
}

func (l *airTableLab) SetParam(name string, v float64) error {
	switch name {
	case "launch_vx":
		l.launch.X = v
		return nil
	case "launch_vy":
		l.launch.Y = v
		return nil
	}
	return l.a.SetParam(name, v)
}

func (l *airTableLab) Reset() {
	l.a.Init()
	l.w = watch{}
}

func (l *airTableLab) Poll() []Event {
	return l.w.poll(EventBounce, l.a.Flight().Bounces, l.a.Done())
}

func (l *airTableLab) Sample() (float64, string) {
	return l.a.Energy(), "energy (cm²/s²)"
}

func (l *airTableLab) Stats() []Stat {
	f := l.a.Flight()
	s := l.a.State()
	out := []Stat{
		{"Outcome", f.Outcome.String()},
		{"Time", fmtF("%.3fs", f.FlightTime)},
		{"Position", fmt.Sprintf("(%.1f, %.1f)", s.Position.X, s.Position.Y)},
		{"Bounces", fmt.Sprintf("%d", f.Bounces)},
	}
	if f.HasApex {
		out = append(out, Stat{"Apex", fmtF("%.3fs", f.TimeToApex)}, Stat{"Max height", fmtF("%.2fcm", f.MaxHeight)})
	}
	if f.Outcome == physics.OutcomeLanded || f.Outcome == physics.OutcomeStalled {
		out = append(out, Stat{"Range", fmtF("%.2fcm", f.Range)})
	}
	return out
}

func (l *airTableLab) Draw(s Surface) {
	cfg := l.a.Config()
	s.Fit(cfg.Width, cfg.Height, 1)
	s.Rect(dynamo.Vec{}, dynamo.Vec{X: cfg.Width, Y: cfg.Height})

	if !l.a.Running() && !l.a.Done() {
		pts := l.a.Predict(l.launch)
		for i := 0; i < len(pts); i += 3 {
			s.Dot(pts[i])
		}
	}
	for _, d := range l.a.Dots() {
		s.Dot(d)
	}
	s.Circle(l.a.State().Position, cfg.PuckRadius)
}

type centripetalLab struct {
	c *physics.Centripetal
	w watch
}

func (l *centripetalLab) Name() string        { return "centripetal" }
func (l *centripetalLab) Model() dynamo.Model { return l.c }
func (l *centripetalLab) Running() bool       { return l.c.Running() }

func (l *centripetalLab) Action() error {
	switch l.c.Phase() {
	case physics.PhaseEmptySpring:
		return l.c.AttachMass()
	case physics.PhaseMassAttached:
		cfg := l.c.Config()
		return l.c.Assemble(cfg.ExtraExtension, cfg.ReleaseHeight)
	case physics.PhaseFullSystem:
		return l.c.Release()
	}
	return fmt.Errorf("%w: already released", dynamo.ErrPreconditionViolation)
}

func (l *centripetalLab) ActionHint() string {
	switch l.c.Phase() {
	case physics.PhaseEmptySpring:
		return "attach mass"
	case physics.PhaseMassAttached:
		return "assemble"
	case physics.PhaseFullSystem:
		return "release"
	}
	return "-"
}

func (l *centripetalLab) Params() []Param {
	return []Param{{"spring_constant", 50}, {"extra_extension", 0.1}, {"release_height", 1}}
}

func (l *centripetalLab) Param(name string) float64 { return l.c.GetParams()[name] }
func (l *centripetalLab) SetParam(name string, v float64) error {
	return l.c.SetParam(name, v)
}

func (l *centripetalLab) Reset() {
	l.c.Reset()
	l.w = watch{}
}

func (l *centripetalLab) Poll() []Event {
	return l.w.poll(EventPhase, int(l.c.Phase()), l.c.Done())
}

func (l *centripetalLab) Sample() (float64, string) {
	return l.c.State().Displacement, "displacement (cm)"
}

func (l *centripetalLab) Stats() []Stat {
	s := l.c.State()
	out := []Stat{
		{"Phase", s.Phase.String()},
		{"Spring length", fmtF("%.3fcm", l.c.SpringLength())},
	}
	if s.Phase >= physics.PhaseMassAttached {
		out = append(out, Stat{"x0", fmtF("%.3fcm", l.c.ExtensionDueToMass())})
	}
	if s.Phase >= physics.PhaseFullSystem {
		out = append(out,
			Stat{"Rest ext.", fmtF("%.3fcm", l.c.RestExtension())},
			Stat{"Angle", fmtF("%.2f°", s.PendulumAngle*180/math.Pi)},
			Stat{"Tension", fmtF("%.0f dyn", s.Tension)},
		)
	}
	if s.Phase == physics.PhaseReleased {
		out = append(out,
			Stat{"Time", fmtF("%.2fs", s.Time)},
			Stat{"Max |d|", fmtF("%.3fcm", l.c.MaxDisplacement())},
			Stat{"Status", l.c.Status().String()},
		)
	}
	return out
}

func (l *centripetalLab) Draw(s Surface) {
	cfg := l.c.Config()
	rope := cfg.RopeLength
	height := cfg.NaturalLength + physics.DisplacementLimit + 20 + rope*1.1
	s.Fit(2.4*rope, height, 2)
	mid := 1.2 * rope

	// spring as a zigzag from the ceiling to the cylinder
	springLen := l.c.SpringLength()
	const coils = 8
	prev := dynamo.Vec{X: mid}
	for i := 1; i <= coils; i++ {
		off := 1.5
		if i%2 == 0 {
			off = -1.5
		}
		if i == coils {
			off = 0
		}
		next := dynamo.Vec{X: mid + off, Y: springLen * float64(i) / coils}
		s.Line(prev, next)
		prev = next
	}

	phase := l.c.Phase()
	if phase == physics.PhaseMassAttached {
		s.Circle(dynamo.Vec{X: mid, Y: springLen + 1}, 1)
		return
	}
	if phase < physics.PhaseFullSystem {
		return
	}

	// cylinder, then the bob hanging from its base
	top := dynamo.Vec{X: mid - 3, Y: springLen}
	bottom := dynamo.Vec{X: mid + 3, Y: springLen + 8}
	s.Rect(top, bottom)

	pivot := dynamo.Vec{X: mid, Y: bottom.Y}
	theta := l.c.State().PendulumAngle
	bob := pivot.Add(dynamo.Vec{X: rope * math.Sin(theta), Y: rope * math.Cos(theta)})
	s.Line(pivot, bob)
	s.Circle(bob, 2)
}
