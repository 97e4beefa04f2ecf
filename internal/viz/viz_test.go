package viz

import (
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	. "github.com/onsi/gomega"

	"github.com/san-kum/physlab/internal/dynamo"
	"github.com/san-kum/physlab/internal/physics"
)

func key(s string) tea.KeyMsg {
	switch s {
	case " ":
		return tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	case "up":
		return tea.KeyMsg{Type: tea.KeyUp}
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func send(m tea.Model, msgs ...tea.Msg) tea.Model {
	for _, msg := range msgs {
		m, _ = m.Update(msg)
	}
	return m
}

func TestCanvasDots(t *testing.T) {
	g := NewWithT(t)

	c := NewCanvas(4, 2)
	w, h := c.Dots()
	g.Expect(w).To(Equal(8))
	g.Expect(h).To(Equal(8))

	c.Set(0, 0)
	c.Set(1, 3)
	g.Expect(c.Grid[0][0]).To(Equal(rune(0x2800 | 0x1 | 0x80)))
	g.Expect(c.IsSet(1, 3)).To(BeTrue())
	g.Expect(c.IsSet(1, 2)).To(BeFalse())

	// off-canvas writes are ignored
	c.Set(-1, 0)
	c.Set(100, 100)

	c.DrawLine(0, 7, 7, 7)
	for x := 0; x < 8; x++ {
		g.Expect(c.IsSet(x, 7)).To(BeTrue())
	}

	c.Clear()
	g.Expect(strings.Trim(c.String(), string(rune(brailleBlank))+"\n")).To(BeEmpty())
}

func TestCanvasCircle(t *testing.T) {
	g := NewWithT(t)

	c := NewCanvas(10, 5)
	c.DrawCircle(10, 10, 4)
	g.Expect(c.IsSet(14, 10)).To(BeTrue())
	g.Expect(c.IsSet(6, 10)).To(BeTrue())
	g.Expect(c.IsSet(10, 6)).To(BeTrue())
	g.Expect(c.IsSet(10, 14)).To(BeTrue())
	g.Expect(c.IsSet(10, 10)).To(BeFalse())
}

func TestViewportFits(t *testing.T) {
	g := NewWithT(t)

	c := NewCanvas(60, 20)
	v := fitViewport(c, 60, 40, 1)
	x0, y0 := v.at(dynamo.Vec{})
	x1, y1 := v.at(dynamo.Vec{X: 60, Y: 40})
	w, h := c.Dots()
	g.Expect(x0).To(BeNumerically(">=", 0))
	g.Expect(y0).To(BeNumerically(">=", 0))
	g.Expect(x1).To(BeNumerically("<", w))
	g.Expect(y1).To(BeNumerically("<", h))
}

func TestLiveModelRunsPendulum(t *testing.T) {
	g := NewWithT(t)

	m, err := NewModel("pendulum", nil)
	g.Expect(err).ToNot(HaveOccurred())

	// ticks before release do nothing
	next := send(m, TickMsg(time.Now())).(Model)
	g.Expect(next.history).To(BeEmpty())

	next = send(next, key(" "), TickMsg(time.Now()), TickMsg(time.Now())).(Model)
	g.Expect(next.err).ToNot(HaveOccurred())
	g.Expect(next.lab.Running()).To(BeTrue())
	g.Expect(next.history).To(HaveLen(2))
	g.Expect(next.View()).To(ContainSubstring("RUNNING"))

	// parameters are locked while swinging
	next = send(next, key("up")).(Model)
	g.Expect(next.err).To(MatchError(dynamo.ErrPreconditionViolation))

	next = send(next, key("r")).(Model)
	g.Expect(next.lab.Running()).To(BeFalse())
	g.Expect(next.history).To(BeEmpty())
	g.Expect(next.err).To(BeNil())

	next = send(next, key("up")).(Model)
	g.Expect(next.err).ToNot(HaveOccurred())
	g.Expect(next.lab.Param("pivot_offset")).To(Equal(20.0))
}

func TestLiveModelCentripetalPhases(t *testing.T) {
	g := NewWithT(t)

	m, err := NewModel("centripetal", nil)
	g.Expect(err).ToNot(HaveOccurred())
	g.Expect(m.View()).To(ContainSubstring("attach mass"))

	next := send(m, key(" ")).(Model)
	g.Expect(next.lab.ActionHint()).To(Equal("assemble"))
	g.Expect(next.View()).To(ContainSubstring("x0"))

	next = send(next, key(" "), key(" ")).(Model)
	g.Expect(next.lab.Running()).To(BeTrue())
	g.Expect(next.View()).To(ContainSubstring(physics.PhaseReleased.String()))

	next = send(next, key(" ")).(Model)
	g.Expect(next.err).To(MatchError(dynamo.ErrPreconditionViolation))

	next = send(next, TickMsg(time.Now())).(Model)
	g.Expect(next.View()).To(ContainSubstring("Max |d|"))
	g.Expect(next.lastEvent).To(Equal("phase"))
}

func TestLiveModelAirTable(t *testing.T) {
	g := NewWithT(t)

	m, err := NewModel("airtable", nil)
	g.Expect(err).ToNot(HaveOccurred())
	g.Expect(m.View()).To(ContainSubstring("launch"))

	next := send(m, key("tab"), key("down")).(Model)
	g.Expect(next.lab.Param("launch_vy")).To(Equal(-65.0))

	next = send(next, key(" ")).(Model)
	for i := 0; i < 200 && next.lab.Running(); i++ {
		next = send(next, TickMsg(time.Now())).(Model)
	}
	g.Expect(next.lab.Model().Done()).To(BeTrue())
	g.Expect(next.View()).To(ContainSubstring("Range"))
}

func TestMenu(t *testing.T) {
	g := NewWithT(t)

	m := NewMenu(nil)
	g.Expect(m.View()).To(ContainSubstring("centripetal"))

	next := send(m, key("down"), key("enter")).(Menu)
	g.Expect(next.state).To(Equal(stateLab))
	g.Expect(next.live.lab.Name()).To(Equal("centripetal"))

	next = send(next, backMsg{}).(Menu)
	g.Expect(next.state).To(Equal(stateMenu))

	_, err := NewModel("trebuchet", nil)
	g.Expect(err).To(HaveOccurred())
}
