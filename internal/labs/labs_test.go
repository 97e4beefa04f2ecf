package labs

import (
	"testing"

	. "github.com/onsi/gomega"

	"github.com/san-kum/physlab/internal/config"
	"github.com/san-kum/physlab/internal/dynamo"
)

// recorder counts primitives and tracks the drawn extent.
type recorder struct {
	fitted                 bool
	lines, rects, circles  int
	dots                   int
	minX, minY, maxX, maxY float64
}

func (r *recorder) see(p dynamo.Vec) {
	r.minX, r.maxX = min(r.minX, p.X), max(r.maxX, p.X)
	r.minY, r.maxY = min(r.minY, p.Y), max(r.maxY, p.Y)
}

func (r *recorder) Fit(w, h, margin float64)       { r.fitted = true }
func (r *recorder) Line(a, b dynamo.Vec)           { r.lines++; r.see(a); r.see(b) }
func (r *recorder) Rect(lo, hi dynamo.Vec)         { r.rects++; r.see(lo); r.see(hi) }
func (r *recorder) Circle(c dynamo.Vec, _ float64) { r.circles++; r.see(c) }
func (r *recorder) Dot(p dynamo.Vec)               { r.dots++; r.see(p) }

func runFor(t *testing.T, l Lab, frames int) []Event {
	t.Helper()
	d := dynamo.NewDriver(dynamo.DefaultSubStep, dynamo.DefaultMaxSteps)
	var events []Event
	for i := 0; i < frames && !l.Model().Done(); i++ {
		if _, err := d.Frame(l.Model(), 1.0/60); err != nil {
			t.Fatalf("frame %d: %v", i, err)
		}
		events = append(events, l.Poll()...)
	}
	return events
}

func count(events []Event, kind Event) int {
	n := 0
	for _, e := range events {
		if e == kind {
			n++
		}
	}
	return n
}

func TestNewUnknownLab(t *testing.T) {
	g := NewWithT(t)
	_, err := New("trebuchet", config.DefaultConfig())
	g.Expect(err).To(MatchError(ContainSubstring("unknown lab")))
}

func TestPendulumEvents(t *testing.T) {
	g := NewWithT(t)
	l, err := New("pendulum", config.DefaultConfig())
	g.Expect(err).NotTo(HaveOccurred())
	g.Expect(l.Poll()).To(BeEmpty())

	g.Expect(l.Action()).To(Succeed())
	events := runFor(t, l, 60*60)
	g.Expect(l.Model().Done()).To(BeTrue())
	g.Expect(count(events, EventPeriod)).To(Equal(config.DefaultConfig().Pendulum.TargetPeriods))
	g.Expect(events[len(events)-1]).To(Equal(EventDone))
	g.Expect(l.Poll()).To(BeEmpty())

	l.Reset()
	g.Expect(l.Poll()).To(BeEmpty())
}

func TestAirTableEventsAndDraw(t *testing.T) {
	g := NewWithT(t)
	cfg := config.DefaultConfig()
	l, err := New("airtable", cfg)
	g.Expect(err).NotTo(HaveOccurred())

	// idle tables draw the predicted path
	r := &recorder{}
	l.Draw(r)
	g.Expect(r.fitted).To(BeTrue())
	g.Expect(r.rects).To(Equal(1))
	g.Expect(r.dots).To(BeNumerically(">", 0))

	g.Expect(l.SetParam("launch_vx", 20)).To(Succeed())
	g.Expect(l.SetParam("launch_vy", -150)).To(Succeed())
	g.Expect(l.Param("launch_vy")).To(Equal(-150.0))
	g.Expect(l.Action()).To(Succeed())

	events := runFor(t, l, 60*60)
	g.Expect(l.Model().Done()).To(BeTrue())
	g.Expect(count(events, EventBounce)).To(BeNumerically(">=", 1))
	g.Expect(count(events, EventDone)).To(Equal(1))

	r = &recorder{}
	l.Draw(r)
	g.Expect(r.maxX).To(BeNumerically("<=", cfg.AirTable.Width))
	g.Expect(r.maxY).To(BeNumerically("<=", cfg.AirTable.Height))
	g.Expect(r.minX).To(BeNumerically(">=", 0))
}

func TestCentripetalPhases(t *testing.T) {
	g := NewWithT(t)
	l, err := New("centripetal", config.DefaultConfig())
	g.Expect(err).NotTo(HaveOccurred())

	hints := []string{}
	for i := 0; i < 3; i++ {
		hints = append(hints, l.ActionHint())
		g.Expect(l.Action()).To(Succeed())
	}
	g.Expect(hints).To(Equal([]string{"attach mass", "assemble", "release"}))
	g.Expect(l.Poll()).To(Equal([]Event{EventPhase, EventPhase, EventPhase}))
	g.Expect(l.Running()).To(BeTrue())
	g.Expect(l.Action()).To(MatchError(dynamo.ErrPreconditionViolation))

	labels := map[string]bool{}
	for _, st := range l.Stats() {
		labels[st.Label] = true
	}
	g.Expect(labels).To(HaveKey("Status"))
	g.Expect(labels).To(HaveKey("Rest ext."))

	r := &recorder{}
	l.Draw(r)
	g.Expect(r.rects).To(Equal(1))
	g.Expect(r.circles).To(Equal(1))

	l.Reset()
	g.Expect(l.Poll()).To(BeEmpty())
	g.Expect(l.ActionHint()).To(Equal("attach mass"))
}

func TestWatchCountsBackwards(t *testing.T) {
	g := NewWithT(t)
	var w watch
	g.Expect(w.poll(EventBounce, 2, false)).To(Equal([]Event{EventBounce, EventBounce}))
	g.Expect(w.poll(EventBounce, 2, true)).To(Equal([]Event{EventDone}))
	// a relaunch resets the model's counter
	g.Expect(w.poll(EventBounce, 1, false)).To(Equal([]Event{EventBounce}))
	g.Expect(EventDone.String()).To(Equal("done"))
}
