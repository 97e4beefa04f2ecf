package export

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	. "github.com/onsi/gomega"

	"github.com/san-kum/physlab/internal/dynamo"
	"github.com/san-kum/physlab/internal/experiment"
	"github.com/san-kum/physlab/internal/regression"
)

func sampleSet() *regression.SampleSet {
	set := regression.NewSampleSet("h² (cm²)", "T²h (s²·cm)")
	set.Add(400, 47.0123456)
	set.Add(100, 37.2)
	set.Add(900, 67.85)
	return set
}

func TestWriteCSV(t *testing.T) {
	g := NewWithT(t)

	var buf bytes.Buffer
	g.Expect(WriteCSV(&buf, sampleSet())).To(Succeed())

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	g.Expect(lines).To(Equal([]string{
		"h² (cm²),T²h (s²·cm)",
		"100,37.2000",
		"400,47.0123",
		"900,67.8500",
	}))
}

func TestReadCSV(t *testing.T) {
	g := NewWithT(t)

	var buf bytes.Buffer
	g.Expect(WriteCSV(&buf, sampleSet())).To(Succeed())

	set, err := ReadCSV(&buf)
	g.Expect(err).ToNot(HaveOccurred())
	g.Expect(set.XLabel).To(Equal("h² (cm²)"))
	g.Expect(set.Len()).To(Equal(3))
	g.Expect(set.Samples()[1]).To(Equal(regression.Sample{X: 400, Y: 47.0123}))

	_, err = ReadCSV(strings.NewReader(""))
	g.Expect(err).To(MatchError(dynamo.ErrInsufficientData))

	_, err = ReadCSV(strings.NewReader("x,y\n1,abc\n"))
	g.Expect(err).To(MatchError(ContainSubstring("row 2")))
}

func TestFitPlot(t *testing.T) {
	g := NewWithT(t)

	set := sampleSet()
	fit, err := set.Fit()
	g.Expect(err).ToNot(HaveOccurred())

	p, err := FitPlot(set, fit, "pendulum")
	g.Expect(err).ToNot(HaveOccurred())

	dir := t.TempDir()
	for _, name := range []string{"fit.png", "fit.svg"} {
		path := filepath.Join(dir, "plots", name)
		g.Expect(SavePlot(p, path)).To(Succeed())
		info, err := os.Stat(path)
		g.Expect(err).ToNot(HaveOccurred())
		g.Expect(info.Size()).To(BeNumerically(">", 0))
	}

	_, err = FitPlot(regression.NewSampleSet("x", "y"), fit, "empty")
	g.Expect(err).To(MatchError(dynamo.ErrInsufficientData))
}

func TestTrajectorySVG(t *testing.T) {
	g := NewWithT(t)

	path := []dynamo.Vec{{X: 5, Y: 35}, {X: 10, Y: 20}, {X: 15, Y: 35}}
	dots := []dynamo.Vec{{X: 5, Y: 35}, {X: 12, Y: 22}}
	p, err := TrajectoryPlot(path, dots, 60, 40, "flight")
	g.Expect(err).ToNot(HaveOccurred())

	var buf bytes.Buffer
	g.Expect(WriteSVG(&buf, p)).To(Succeed())
	g.Expect(buf.String()).To(ContainSubstring("<svg"))
}

func TestReport(t *testing.T) {
	g := NewWithT(t)

	set := sampleSet()
	fit, err := set.Fit()
	g.Expect(err).ToNot(HaveOccurred())
	res := &experiment.Result{Lab: "pendulum", Quantity: "g", Unit: "cm/s²", Samples: set, Fit: fit, Value: 979, Reference: 980}

	var buf bytes.Buffer
	g.Expect(WriteJSON(&buf, NewReport(res, "rk4"))).To(Succeed())
	g.Expect(buf.String()).To(ContainSubstring(`"lab": "pendulum"`))
	g.Expect(buf.String()).To(ContainSubstring(`"integrator": "rk4"`))
	g.Expect(buf.String()).To(ContainSubstring(`"samples": [`))
	g.Expect(buf.String()).ToNot(ContainSubstring(`"trials"`))
}

func TestReportCarriesTrials(t *testing.T) {
	g := NewWithT(t)

	set := sampleSet()
	fit, err := set.Fit()
	g.Expect(err).ToNot(HaveOccurred())
	res := &experiment.Result{
		Lab: "centripetal", Quantity: "ℓ", Unit: "cm", Samples: set, Fit: fit,
		Trials: []experiment.Trial{{Param: 2, Measured: 1.43, Displacement: 0.25}},
	}

	rep := NewReport(res, "")
	g.Expect(rep.Trials).To(Equal([]TrialRow{{Param: 2, Measured: 1.43, Displacement: 0.25}}))

	var buf bytes.Buffer
	g.Expect(WriteJSON(&buf, rep)).To(Succeed())
	g.Expect(buf.String()).To(ContainSubstring(`"displacement": 0.25`))
	g.Expect(buf.String()).ToNot(ContainSubstring(`"at_stop"`))
}
