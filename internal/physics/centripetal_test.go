package physics

import (
	"math"
	"testing"

	. "github.com/onsi/gomega"

	"github.com/san-kum/physlab/internal/dynamo"
)

func assembled(t *testing.T, extra, height float64) *Centripetal {
	t.Helper()
	g := NewWithT(t)

	c, err := NewCentripetal(DefaultCentripetalConfig())
	g.Expect(err).ToNot(HaveOccurred())
	g.Expect(c.AttachMass()).To(Succeed())
	g.Expect(c.Assemble(extra, height)).To(Succeed())
	return c
}

func TestCentripetalMassExtension(t *testing.T) {
	g := NewWithT(t)

	c, err := NewCentripetal(DefaultCentripetalConfig())
	g.Expect(err).ToNot(HaveOccurred())
	g.Expect(c.Phase()).To(Equal(PhaseEmptySpring))
	g.Expect(c.SpringLength()).To(Equal(10.0))

	g.Expect(c.AttachMass()).To(Succeed())
	g.Expect(c.ExtensionDueToMass()).To(BeNumerically("~", 1.700, 1e-9))
	g.Expect(c.SpringLength()).To(BeNumerically("~", 11.7, 1e-9))
}

func TestCentripetalPhaseOrder(t *testing.T) {
	g := NewWithT(t)

	c, err := NewCentripetal(DefaultCentripetalConfig())
	g.Expect(err).ToNot(HaveOccurred())

	g.Expect(c.Assemble(0, 10)).To(MatchError(dynamo.ErrPreconditionViolation))
	g.Expect(c.Release()).To(MatchError(dynamo.ErrPreconditionViolation))
	g.Expect(c.Advance(0.001)).To(MatchError(dynamo.ErrPreconditionViolation))

	g.Expect(c.AttachMass()).To(Succeed())
	g.Expect(c.AttachMass()).To(MatchError(dynamo.ErrPreconditionViolation))
	g.Expect(c.Release()).To(MatchError(dynamo.ErrPreconditionViolation))

	g.Expect(c.Assemble(0.5, 10)).To(Succeed())
	g.Expect(c.Phase()).To(Equal(PhaseFullSystem))
	g.Expect(c.RestExtension()).To(BeNumerically("~", 75*980/2450.0+0.5, 1e-9))
	g.Expect(c.Assemble(0.5, 10)).To(MatchError(dynamo.ErrPreconditionViolation))

	g.Expect(c.Release()).To(Succeed())
	g.Expect(c.Phase()).To(Equal(PhaseReleased))
	g.Expect(c.Running()).To(BeTrue())
}

func TestCentripetalFrozenUntilReset(t *testing.T) {
	g := NewWithT(t)

	c := assembled(t, 0, 10)
	rest := c.RestExtension()

	g.Expect(c.SetSpringConstant(1000)).To(MatchError(dynamo.ErrPreconditionViolation))
	g.Expect(c.SetParam("rope_length", 80)).To(MatchError(dynamo.ErrPreconditionViolation))
	g.Expect(c.SpringConstant()).To(Equal(2450.0))
	g.Expect(c.RestExtension()).To(Equal(rest))

	c.Reset()
	g.Expect(c.Phase()).To(Equal(PhaseEmptySpring))
	g.Expect(c.MaxDisplacement()).To(BeZero())
	g.Expect(c.SetSpringConstant(1000)).To(Succeed())
	g.Expect(c.AttachMass()).To(Succeed())
	g.Expect(c.ExtensionDueToMass()).To(BeNumerically("~", 4.25*980/1000, 1e-9))
}

func TestCentripetalSpringConstantBeforeAssembly(t *testing.T) {
	g := NewWithT(t)

	c, err := NewCentripetal(DefaultCentripetalConfig())
	g.Expect(err).ToNot(HaveOccurred())
	g.Expect(c.AttachMass()).To(Succeed())

	g.Expect(c.SetSpringConstant(4900)).To(Succeed())
	g.Expect(c.Phase()).To(Equal(PhaseMassAttached))
	g.Expect(c.ExtensionDueToMass()).To(BeNumerically("~", 0.85, 1e-9))

	g.Expect(c.SetSpringConstant(-1)).To(MatchError(dynamo.ErrInvalidConfiguration))
}

func TestCentripetalAssembleValidates(t *testing.T) {
	g := NewWithT(t)

	c, err := NewCentripetal(DefaultCentripetalConfig())
	g.Expect(err).ToNot(HaveOccurred())
	g.Expect(c.AttachMass()).To(Succeed())

	g.Expect(c.Assemble(-1, 10)).To(MatchError(dynamo.ErrInvalidConfiguration))
	g.Expect(c.Phase()).To(Equal(PhaseMassAttached))
}

func TestCentripetalDisplacementClamped(t *testing.T) {
	NewWithT(t).Expect(DisplacementLimit).To(Equal(5.0))

	for _, h := range []float64{0, 5, 10, 25, 50, 100, 200} {
		g := NewWithT(t)

		c := assembled(t, 0, h)
		g.Expect(c.Release()).To(Succeed())

		for !c.Done() {
			g.Expect(c.Advance(0.01)).To(Succeed())
			d := c.State().Displacement
			g.Expect(d).To(BeNumerically(">=", 0), "h=%v", h)
			g.Expect(d).To(BeNumerically("<=", DisplacementLimit), "h=%v", h)
		}
		g.Expect(c.MaxDisplacement()).To(BeNumerically("<=", DisplacementLimit))
		g.Expect(c.State().Time).To(BeNumerically(">=", c.Config().RecordDuration))
	}
}

func TestCentripetalDisplacementGrowsWithHeight(t *testing.T) {
	g := NewWithT(t)

	run := func(h float64) float64 {
		c := assembled(t, 0, h)
		g.Expect(c.Release()).To(Succeed())
		runToDone(t, c, 1000)
		return c.MaxDisplacement()
	}

	still := run(0)
	low := run(5)
	high := run(20)

	g.Expect(still).To(BeNumerically("<", 1e-6))
	g.Expect(low).To(BeNumerically(">", 0))
	g.Expect(high).To(BeNumerically(">", low))
}

func TestCentripetalLaggedCoupling(t *testing.T) {
	g := NewWithT(t)

	c := assembled(t, 0, 10)
	g.Expect(c.Release()).To(Succeed())
	g.Expect(c.State().LastCylinderAcceleration).To(BeZero())

	// first sub-step swings the bob under plain g
	g.Expect(c.Advance(0.001)).To(Succeed())
	theta0 := ReleaseAngle(10, 50)
	omega := -(980.0 / 50) * math.Sin(theta0) * 0.001 * 0.9995
	s := c.State()
	g.Expect(s.PendulumAngularVelocity).To(BeNumerically("~", omega, 1e-12))
	g.Expect(s.PendulumAngle).To(BeNumerically("~", theta0+omega*0.001, 1e-12))
	g.Expect(s.LastCylinderAcceleration).ToNot(BeZero())
}

func TestCentripetalBobPeriod(t *testing.T) {
	g := NewWithT(t)

	c := assembled(t, 0, 5)
	_, err := c.BobPeriod()
	g.Expect(err).To(MatchError(dynamo.ErrInsufficientData))

	g.Expect(c.Release()).To(Succeed())
	for !c.Done() {
		g.Expect(c.Advance(0.0005)).To(Succeed())
	}
	period, err := c.BobPeriod()
	g.Expect(err).ToNot(HaveOccurred())
	small := 2 * math.Pi * math.Sqrt(50.0/980)
	g.Expect(period).To(BeNumerically("~", small, 0.03*small))

	// a bob hanging straight down never crosses the vertical
	still := assembled(t, 0, 0)
	g.Expect(still.Release()).To(Succeed())
	for !still.Done() {
		g.Expect(still.Advance(0.01)).To(Succeed())
	}
	_, err = still.BobPeriod()
	g.Expect(err).To(MatchError(dynamo.ErrInsufficientData))
}

func TestReleaseAngle(t *testing.T) {
	tests := []struct {
		h    float64
		want float64
	}{
		{0, 0},
		{50, math.Pi / 2},
		{100, math.Pi},
		{150, math.Pi},
		{-10, 0},
		{10, math.Acos(0.8)},
	}

	for _, tt := range tests {
		g := NewWithT(t)
		g.Expect(ReleaseAngle(tt.h, 50)).To(BeNumerically("~", tt.want, 1e-12), "h=%v", tt.h)
	}
}

func TestClassifyDisplacement(t *testing.T) {
	tests := []struct {
		d    float64
		want DisplacementStatus
	}{
		{0, StatusNone},
		{0.1, StatusMinimal},
		{0.2, StatusMinimal},
		{0.35, StatusEquilibrium},
		{0.5, StatusEquilibrium},
		{1.5, StatusSlight},
		{2, StatusSlight},
		{2.01, StatusSignificant},
		{5, StatusSignificant},
	}

	for _, tt := range tests {
		g := NewWithT(t)
		g.Expect(ClassifyDisplacement(tt.d)).To(Equal(tt.want), "d=%v", tt.d)
	}
	NewWithT(t).Expect(StatusEquilibrium.String()).To(Equal("equilibrium"))
	NewWithT(t).Expect(PhaseFullSystem.String()).To(Equal("FULL_SYSTEM"))
}
