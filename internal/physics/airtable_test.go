package physics

import (
	"math"
	"testing"

	. "github.com/onsi/gomega"

	"github.com/san-kum/physlab/internal/dynamo"
)

func newAirTable(t *testing.T) *AirTable {
	t.Helper()
	a, err := NewAirTable(DefaultAirTableConfig())
	NewWithT(t).Expect(err).ToNot(HaveOccurred())
	return a
}

func TestAirTableApexAndRange(t *testing.T) {
	g := NewWithT(t)

	a := newAirTable(t)
	acc := a.Config().Acceleration()
	g.Expect(acc).To(BeNumerically("~", 85.41, 0.01))

	g.Expect(a.Launch(dynamo.Vec{X: 30, Y: -60})).To(Succeed())
	runToDone(t, a, 1000)

	f := a.Flight()
	g.Expect(f.Outcome).To(Equal(OutcomeLanded))
	g.Expect(f.Bounces).To(BeZero())
	g.Expect(f.HasApex).To(BeTrue())
	g.Expect(f.TimeToApex).To(BeNumerically("~", 60/acc, 0.005))
	g.Expect(f.MaxHeight).To(BeNumerically("~", 60*60/(2*acc), 0.1))
	g.Expect(f.FlightTime).To(BeNumerically("~", 120/acc, 0.01))
	g.Expect(f.Range).To(BeNumerically("~", 30*120/acc, 0.3))

	s := a.State()
	g.Expect(s.Position.Y).To(Equal(35.0))
	g.Expect(s.Velocity).To(Equal(dynamo.Vec{}))
	g.Expect(a.Running()).To(BeFalse())
}

func TestAirTableBounceLosesEnergy(t *testing.T) {
	g := NewWithT(t)

	a := newAirTable(t)
	g.Expect(a.Launch(dynamo.Vec{X: 20, Y: -150})).To(Succeed())
	e0 := a.Energy()
	g.Expect(e0).To(BeNumerically("~", 0.5*(20*20+150*150), 1e-9))

	runToDone(t, a, 1000)

	bounces := a.Bounces()
	g.Expect(bounces).To(HaveLen(1))
	g.Expect(bounces[0].Position.Y).To(Equal(a.Config().PuckRadius / 2))
	g.Expect(bounces[0].Energy).To(BeNumerically("<", e0-1000))

	f := a.Flight()
	g.Expect(f.Outcome).To(Equal(OutcomeLanded))
	g.Expect(f.Range).To(BeNumerically(">", 0))
}

func TestAirTableHorizontalLaunchStalls(t *testing.T) {
	g := NewWithT(t)

	a := newAirTable(t)
	g.Expect(a.Launch(dynamo.Vec{X: 10, Y: 0})).To(Succeed())
	runToDone(t, a, 5000)

	f := a.Flight()
	g.Expect(f.Outcome).To(Equal(OutcomeStalled))
	g.Expect(f.FlightTime).To(BeNumerically(">=", a.Config().MaxFlightTime))

	// resting on the bottom rail, still below launch height
	s := a.State()
	g.Expect(s.Position.Y).To(BeNumerically(">", 35))
	g.Expect(s.Position.Y).To(BeNumerically("<=", a.Config().Height))
}

func TestAirTableSparks(t *testing.T) {
	g := NewWithT(t)

	a := newAirTable(t)
	g.Expect(a.Launch(dynamo.Vec{X: 30, Y: -60})).To(Succeed())
	g.Expect(a.Dots()).To(HaveLen(1))

	for i := 0; i < 100; i++ {
		g.Expect(a.Advance(0.001)).To(Succeed())
	}
	// one at launch and one per 0.05 s
	g.Expect(len(a.Dots())).To(BeNumerically("~", 3, 1))

	dots := a.Dots()
	dots[0] = dynamo.Vec{X: -1, Y: -1}
	g.Expect(a.Dots()[0]).To(Equal(dynamo.Vec{X: 5, Y: 35}))
}

func TestAirTablePredictIsPure(t *testing.T) {
	g := NewWithT(t)

	a := newAirTable(t)
	g.Expect(a.Launch(dynamo.Vec{X: 30, Y: -60})).To(Succeed())
	g.Expect(a.Advance(0.1)).To(Succeed())
	before := a.State()
	dots := len(a.Dots())

	pts := a.Predict(dynamo.Vec{X: 30, Y: -60})
	g.Expect(a.State()).To(Equal(before))
	g.Expect(a.Dots()).To(HaveLen(dots))

	g.Expect(pts[0]).To(Equal(a.Config().Launch))
	g.Expect(len(pts)).To(BeNumerically("<", a.Config().PredictMaxIter))
	last := pts[len(pts)-1]
	g.Expect(last.Y).To(BeNumerically(">=", 35))
	g.Expect(last.X).To(BeNumerically("~", 5+30*120/a.Config().Acceleration(), 1))
}

func TestAirTablePredictStopsAtBounds(t *testing.T) {
	g := NewWithT(t)

	a := newAirTable(t)
	cfg := a.Config()

	for _, v := range []dynamo.Vec{{X: 10, Y: 0}, {X: 400, Y: -10}, {X: -100, Y: 0}} {
		pts := a.Predict(v)
		g.Expect(len(pts)).To(BeNumerically("<", cfg.PredictMaxIter))
		for _, p := range pts {
			g.Expect(p.X).To(BeNumerically(">=", 0))
			g.Expect(p.X).To(BeNumerically("<=", cfg.Width))
			g.Expect(p.Y).To(BeNumerically(">=", 0))
			g.Expect(p.Y).To(BeNumerically("<=", cfg.Height))
		}
	}
}

func TestAirTablePreconditions(t *testing.T) {
	g := NewWithT(t)

	a := newAirTable(t)
	g.Expect(a.Advance(0.01)).To(MatchError(dynamo.ErrPreconditionViolation))

	g.Expect(a.Launch(dynamo.Vec{X: 1, Y: -1})).To(Succeed())
	g.Expect(a.Launch(dynamo.Vec{X: 1, Y: -1})).To(MatchError(dynamo.ErrPreconditionViolation))
	g.Expect(a.SetParam("incline_angle", 10)).To(MatchError(dynamo.ErrPreconditionViolation))
	g.Expect(a.Advance(-1)).To(MatchError(dynamo.ErrInvalidConfiguration))

	fresh := newAirTable(t)
	g.Expect(fresh.Launch(dynamo.Vec{X: math.NaN()})).To(MatchError(dynamo.ErrInvalidConfiguration))
	g.Expect(fresh.Running()).To(BeFalse())
}

func TestAirTableConfigValidation(t *testing.T) {
	tests := []struct {
		name  string
		apply func(*AirTableConfig)
	}{
		{"vertical incline", func(c *AirTableConfig) { c.InclineAngle = 90 }},
		{"bouncy", func(c *AirTableConfig) { c.Restitution = 1.2 }},
		{"no sub-step", func(c *AirTableConfig) { c.SubStep = 0 }},
		{"huge puck", func(c *AirTableConfig) { c.PuckRadius = 50 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := NewWithT(t)
			cfg := DefaultAirTableConfig()
			tt.apply(&cfg)
			g.Expect(cfg.Validate()).To(MatchError(dynamo.ErrInvalidConfiguration))
		})
	}
}
