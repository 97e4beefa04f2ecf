package storage

import (
	"testing"

	. "github.com/onsi/gomega"

	"github.com/san-kum/physlab/internal/experiment"
	"github.com/san-kum/physlab/internal/regression"
)

func result(t *testing.T) *experiment.Result {
	set := regression.NewSampleSet("|vy| (cm/s)", "time to apex (s)")
	for _, v := range []float64{20, 40, 60} {
		set.Add(v, v/85.41)
	}
	fit, err := set.Fit()
	NewWithT(t).Expect(err).ToNot(HaveOccurred())
	return &experiment.Result{Lab: "airtable", Quantity: "g", Samples: set, Fit: fit, Value: 980, Reference: 980}
}

func TestStoreSaveLoad(t *testing.T) {
	g := NewWithT(t)

	st := New(t.TempDir())
	g.Expect(st.Init()).To(Succeed())

	runID, err := st.Save(result(t), "symplectic")
	g.Expect(err).ToNot(HaveOccurred())
	g.Expect(runID).To(HavePrefix("airtable_"))

	rep, err := st.Load(runID)
	g.Expect(err).ToNot(HaveOccurred())
	g.Expect(rep.ID).To(Equal(runID))
	g.Expect(rep.Lab).To(Equal("airtable"))
	g.Expect(rep.Integrator).To(Equal("symplectic"))
	g.Expect(rep.Samples).To(HaveLen(3))
	g.Expect(rep.Value).To(Equal(980.0))

	set, err := st.LoadSamples(runID)
	g.Expect(err).ToNot(HaveOccurred())
	g.Expect(set.Len()).To(Equal(3))
	g.Expect(set.YLabel).To(Equal("time to apex (s)"))
	g.Expect(set.Samples()[0].Y).To(Equal(0.2342))
}

func TestStoreList(t *testing.T) {
	g := NewWithT(t)

	st := New(t.TempDir())
	runs, err := st.List()
	g.Expect(err).ToNot(HaveOccurred())
	g.Expect(runs).To(BeEmpty())

	first, err := st.Save(result(t), "rk4")
	g.Expect(err).ToNot(HaveOccurred())
	second, err := st.Save(result(t), "euler")
	g.Expect(err).ToNot(HaveOccurred())

	runs, err = st.List()
	g.Expect(err).ToNot(HaveOccurred())
	g.Expect(runs).To(HaveLen(2))
	g.Expect(runs[0].ID).To(Equal(first))
	g.Expect(runs[1].ID).To(Equal(second))

	_, err = st.Load("missing")
	g.Expect(err).To(HaveOccurred())
}
