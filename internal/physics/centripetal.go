package physics

import (
	"fmt"
	"math"

	"github.com/san-kum/physlab/internal/dynamo"
)

// DisplacementLimit bounds the cylinder's travel below its rest position (cm).
const DisplacementLimit = 5.0

type CentripetalConfig struct {
	Gravity         float64 `yaml:"gravity"`
	SpringConstant  float64 `yaml:"spring_constant"` // dyn/cm
	NaturalLength   float64 `yaml:"natural_length"`
	SmallMass       float64 `yaml:"small_mass"`
	CylinderMass    float64 `yaml:"cylinder_mass"`
	BobMass         float64 `yaml:"bob_mass"`
	RopeLength      float64 `yaml:"rope_length"`
	ExtraExtension  float64 `yaml:"extra_extension"`
	ReleaseHeight   float64 `yaml:"release_height"`
	SubStep         float64 `yaml:"sub_step"`
	PendulumDamping float64 `yaml:"pendulum_damping"`
	CylinderDamping float64 `yaml:"cylinder_damping"`
	RecordDuration  float64 `yaml:"record_duration"`
}

func DefaultCentripetalConfig() CentripetalConfig {
	return CentripetalConfig{
		Gravity:         Gravity,
		SpringConstant:  2450,
		NaturalLength:   10,
		SmallMass:       4.25,
		CylinderMass:    50,
		BobMass:         25,
		RopeLength:      50,
		ExtraExtension:  0,
		ReleaseHeight:   10,
		SubStep:         0.001,
		PendulumDamping: 0.9995,
		CylinderDamping: 0.95,
		RecordDuration:  10,
	}
}

func (c CentripetalConfig) Validate() error {
	switch {
	case c.Gravity <= 0:
		return dynamo.InvalidParam("gravity", c.Gravity, "must be positive")
	case c.SpringConstant <= 0:
		return dynamo.InvalidParam("spring_constant", c.SpringConstant, "must be positive")
	case c.NaturalLength < 0:
		return dynamo.InvalidParam("natural_length", c.NaturalLength, "must not be negative")
	case c.SmallMass <= 0:
		return dynamo.InvalidParam("small_mass", c.SmallMass, "must be positive")
	case c.CylinderMass <= 0:
		return dynamo.InvalidParam("cylinder_mass", c.CylinderMass, "must be positive")
	case c.BobMass <= 0:
		return dynamo.InvalidParam("bob_mass", c.BobMass, "must be positive")
	case c.RopeLength <= 0:
		return dynamo.InvalidParam("rope_length", c.RopeLength, "must be positive")
	case c.ExtraExtension < 0:
		return dynamo.InvalidParam("extra_extension", c.ExtraExtension, "must not be negative")
	case c.ReleaseHeight < 0:
		return dynamo.InvalidParam("release_height", c.ReleaseHeight, "must not be negative")
	case c.SubStep <= 0:
		return dynamo.InvalidParam("sub_step", c.SubStep, "must be positive")
	case c.PendulumDamping <= 0 || c.PendulumDamping > 1:
		return dynamo.InvalidParam("pendulum_damping", c.PendulumDamping, "must lie in (0, 1]")
	case c.CylinderDamping <= 0 || c.CylinderDamping > 1:
		return dynamo.InvalidParam("cylinder_damping", c.CylinderDamping, "must lie in (0, 1]")
	case c.RecordDuration <= 0:
		return dynamo.InvalidParam("record_duration", c.RecordDuration, "must be positive")
	}
	return nil
}

// Phase is a stage of the guided experiment. Phases only move forward.
type Phase int

const (
	PhaseEmptySpring Phase = iota
	PhaseMassAttached
	PhaseFullSystem
	PhaseReleased
)

func (p Phase) String() string {
	switch p {
	case PhaseEmptySpring:
		return "EMPTY_SPRING"
	case PhaseMassAttached:
		return "MASS_ATTACHED"
	case PhaseFullSystem:
		return "FULL_SYSTEM"
	case PhaseReleased:
		return "RELEASED"
	}
	return fmt.Sprintf("Phase(%d)", int(p))
}

type DisplacementStatus int

const (
	StatusNone DisplacementStatus = iota
	StatusMinimal
	StatusEquilibrium
	StatusSlight
	StatusSignificant
)

func (s DisplacementStatus) String() string {
	switch s {
	case StatusNone:
		return "none"
	case StatusMinimal:
		return "minimal"
	case StatusEquilibrium:
		return "equilibrium"
	case StatusSlight:
		return "slight"
	case StatusSignificant:
		return "significant"
	}
	return "unknown"
}

// ClassifyDisplacement buckets a maximum displacement (cm) into a qualitative band.
func ClassifyDisplacement(maxAbs float64) DisplacementStatus {
	d := math.Abs(maxAbs)
	switch {
	case d == 0:
		return StatusNone
	case d <= 0.2:
		return StatusMinimal
	case d <= 0.5:
		return StatusEquilibrium
	case d <= 2:
		return StatusSlight
	default:
		return StatusSignificant
	}
}

// ReleaseAngle is acos(1 − h/ℓ), with out-of-range heights clamped to [0, π].
func ReleaseAngle(height, ropeLength float64) float64 {
	return math.Acos(dynamo.Clamp(1-height/ropeLength, -1, 1))
}

type CoupledState struct {
	PendulumAngle            float64 `json:"pendulum_angle"`
	PendulumAngularVelocity  float64 `json:"pendulum_angular_velocity"`
	Displacement             float64 `json:"displacement"`
	CylinderVelocity         float64 `json:"cylinder_velocity"`
	LastCylinderAcceleration float64 `json:"last_cylinder_acceleration"`
	Tension                  float64 `json:"tension"`
	Phase                    Phase   `json:"phase"`
	Time                     float64 `json:"time"`
}

// Centripetal is a spring-hung cylinder whose support drives a pendulum bob.
// The bob swings under g plus the cylinder acceleration from the previous
// sub-step; the rope tension in turn loads the spring.
type Centripetal struct {
	cfg   CentripetalConfig
	state CoupledState

	springConstant     float64
	extensionDueToMass float64
	restExtension      float64
	releaseAngle       float64
	maxDisplacement    float64

	swings     int
	firstSwing float64
	lastSwing  float64
}

func NewCentripetal(cfg CentripetalConfig) (*Centripetal, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	c := &Centripetal{cfg: cfg}
	c.Reset()
	return c, nil
}

// Reset returns the apparatus to an empty spring.
func (c *Centripetal) Reset() {
	c.state = CoupledState{Phase: PhaseEmptySpring}
	c.springConstant = c.cfg.SpringConstant
	c.extensionDueToMass = 0
	c.restExtension = 0
	c.releaseAngle = 0
	c.maxDisplacement = 0
	c.swings = 0
	c.firstSwing = 0
	c.lastSwing = 0
}

func (c *Centripetal) Config() CentripetalConfig { return c.cfg }
func (c *Centripetal) State() CoupledState       { return c.state }
func (c *Centripetal) Phase() Phase              { return c.state.Phase }
func (c *Centripetal) Running() bool             { return c.state.Phase == PhaseReleased && !c.Done() }
func (c *Centripetal) Done() bool {
	return c.state.Phase == PhaseReleased && c.state.Time >= c.cfg.RecordDuration
}

func (c *Centripetal) SpringConstant() float64     { return c.springConstant }
func (c *Centripetal) ExtensionDueToMass() float64 { return c.extensionDueToMass }
func (c *Centripetal) RestExtension() float64      { return c.restExtension }
func (c *Centripetal) ReleaseAngle() float64       { return c.releaseAngle }
func (c *Centripetal) MaxDisplacement() float64    { return c.maxDisplacement }

// BobPeriod is the mean time between the bob's downward passes through the
// vertical after release.
func (c *Centripetal) BobPeriod() (float64, error) {
	if c.swings < 2 {
		return 0, fmt.Errorf("%w: %d passes through the vertical", dynamo.ErrInsufficientData, c.swings)
	}
	return (c.lastSwing - c.firstSwing) / float64(c.swings-1), nil
}

func (c *Centripetal) Status() DisplacementStatus {
	return ClassifyDisplacement(c.maxDisplacement)
}

// SpringLength is the length a ruler beside the spring would read in the current phase.
func (c *Centripetal) SpringLength() float64 {
	switch c.state.Phase {
	case PhaseEmptySpring:
		return c.cfg.NaturalLength
	case PhaseMassAttached:
		return c.cfg.NaturalLength + c.extensionDueToMass
	default:
		return c.cfg.NaturalLength + c.restExtension + c.state.Displacement
	}
}

// Configure replaces the configuration; only valid before the system is assembled.
func (c *Centripetal) Configure(cfg CentripetalConfig) error {
	if c.state.Phase >= PhaseFullSystem {
		return fmt.Errorf("%w: configure in phase %s", dynamo.ErrPreconditionViolation, c.state.Phase)
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	phase := c.state.Phase
	c.cfg = cfg
	c.Reset()
	if phase == PhaseMassAttached {
		return c.AttachMass()
	}
	return nil
}

func (c *Centripetal) GetParams() map[string]float64 {
	return map[string]float64{
		"spring_constant": c.cfg.SpringConstant,
		"extra_extension": c.cfg.ExtraExtension,
		"release_height":  c.cfg.ReleaseHeight,
		"rope_length":     c.cfg.RopeLength,
		"bob_mass":        c.cfg.BobMass,
		"cylinder_mass":   c.cfg.CylinderMass,
	}
}

func (c *Centripetal) SetParam(name string, value float64) error {
	cfg := c.cfg
	switch name {
	case "spring_constant":
		cfg.SpringConstant = value
	case "extra_extension":
		cfg.ExtraExtension = value
	case "release_height":
		cfg.ReleaseHeight = value
	case "rope_length":
		cfg.RopeLength = value
	case "bob_mass":
		cfg.BobMass = value
	case "cylinder_mass":
		cfg.CylinderMass = value
	default:
		return fmt.Errorf("unknown param: %s", name)
	}
	return c.Configure(cfg)
}

func (c *Centripetal) advancePhase(from, to Phase) error {
	if c.state.Phase != from {
		return fmt.Errorf("%w: %s requires phase %s, in %s", dynamo.ErrPreconditionViolation, to, from, c.state.Phase)
	}
	c.state.Phase = to
	return nil
}

// SetSpringConstant chooses k for the experiment; rejected once assembled.
func (c *Centripetal) SetSpringConstant(k float64) error {
	return c.SetParam("spring_constant", k)
}

// AttachMass hangs the small mass on the empty spring: x0 = m·g/k.
func (c *Centripetal) AttachMass() error {
	if err := c.advancePhase(PhaseEmptySpring, PhaseMassAttached); err != nil {
		return err
	}
	c.extensionDueToMass = c.cfg.SmallMass * c.cfg.Gravity / c.springConstant
	return nil
}

// Assemble hangs the cylinder and bob, stretches the spring by extra cm and
// raises the bob to the given height. The spring constant and rest extension
// are frozen until Reset.
func (c *Centripetal) Assemble(extra, height float64) error {
	if c.state.Phase != PhaseMassAttached {
		return fmt.Errorf("%w: %s requires phase %s, in %s", dynamo.ErrPreconditionViolation, PhaseFullSystem, PhaseMassAttached, c.state.Phase)
	}
	cfg := c.cfg
	cfg.ExtraExtension = extra
	cfg.ReleaseHeight = height
	if err := cfg.Validate(); err != nil {
		return err
	}
	c.cfg = cfg
	if err := c.advancePhase(PhaseMassAttached, PhaseFullSystem); err != nil {
		return err
	}
	c.restExtension = (c.cfg.CylinderMass+c.cfg.BobMass)*c.cfg.Gravity/c.springConstant + c.cfg.ExtraExtension
	c.releaseAngle = ReleaseAngle(c.cfg.ReleaseHeight, c.cfg.RopeLength)
	c.state.PendulumAngle = c.releaseAngle
	c.state.Tension = c.tension(c.releaseAngle, 0)
	return nil
}

// Release lets the bob go and starts recording the cylinder.
func (c *Centripetal) Release() error {
	return c.advancePhase(PhaseFullSystem, PhaseReleased)
}

func (c *Centripetal) tension(theta, omega float64) float64 {
	m, l := c.cfg.BobMass, c.cfg.RopeLength
	vt := omega * l
	return m*c.cfg.Gravity*math.Cos(theta) + m*vt*vt/l
}

// Advance integrates dt in sub-steps no longer than the configured sub-step.
func (c *Centripetal) Advance(dt float64) error {
	if !c.Running() {
		return fmt.Errorf("%w: advance in phase %s", dynamo.ErrPreconditionViolation, c.state.Phase)
	}
	if dt <= 0 {
		return dynamo.InvalidParam("dt", dt, "must be positive")
	}

	n := int(math.Ceil(dt/c.cfg.SubStep - 1e-9))
	if n < 1 {
		n = 1
	}
	h := dt / float64(n)
	for i := 0; i < n && !c.Done(); i++ {
		c.step(h)
	}
	return nil
}

func (c *Centripetal) step(dt float64) {
	s := &c.state
	cfg := c.cfg

	// bob in the frame of the accelerating support, lagged one sub-step
	gEff := cfg.Gravity + s.LastCylinderAcceleration
	alpha := -(gEff / cfg.RopeLength) * math.Sin(s.PendulumAngle)
	s.PendulumAngularVelocity = (s.PendulumAngularVelocity + alpha*dt) * cfg.PendulumDamping
	prev := s.PendulumAngle
	s.PendulumAngle += s.PendulumAngularVelocity * dt
	if prev > 0 && s.PendulumAngle <= 0 {
		c.recordSwing(s.Time + dt*prev/(prev-s.PendulumAngle))
	}

	s.Tension = c.tension(s.PendulumAngle, s.PendulumAngularVelocity)

	force := (cfg.CylinderMass*cfg.Gravity + s.Tension) - c.springConstant*(c.restExtension+s.Displacement)
	accel := force / cfg.CylinderMass
	s.CylinderVelocity = (s.CylinderVelocity + accel*dt) * cfg.CylinderDamping
	s.Displacement += s.CylinderVelocity * dt

	if s.Displacement < 0 {
		s.Displacement = 0
		if s.CylinderVelocity < 0 {
			s.CylinderVelocity = 0
		}
	} else if s.Displacement > DisplacementLimit {
		s.Displacement = DisplacementLimit
		if s.CylinderVelocity > 0 {
			s.CylinderVelocity = 0
		}
	}

	s.LastCylinderAcceleration = accel
	s.Time += dt

	if d := math.Abs(s.Displacement); d > c.maxDisplacement {
		c.maxDisplacement = d
	}
}

func (c *Centripetal) recordSwing(t float64) {
	if c.swings == 0 {
		c.firstSwing = t
	}
	c.lastSwing = t
	c.swings++
}
