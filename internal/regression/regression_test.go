package regression

import (
	"errors"
	"testing"

	. "github.com/onsi/gomega"

	"github.com/san-kum/physlab/internal/dynamo"
)

func TestFitExactLine(t *testing.T) {
	g := NewWithT(t)

	xs := []float64{0, 1, 2, 3, 4, 5}
	ys := make([]float64, len(xs))
	for i, x := range xs {
		ys[i] = 3*x + 2
	}

	res, err := Fit(xs, ys)
	g.Expect(err).ToNot(HaveOccurred())
	g.Expect(res.Slope).To(BeNumerically("~", 3, 1e-9))
	g.Expect(res.Intercept).To(BeNumerically("~", 2, 1e-9))
	g.Expect(res.RSquared).To(BeNumerically("~", 1, 1e-9))
	g.Expect(res.At(10)).To(BeNumerically("~", 32, 1e-9))
}

func TestFitNoisyLine(t *testing.T) {
	g := NewWithT(t)

	xs := []float64{1, 2, 3, 4}
	ys := []float64{2.1, 3.9, 6.2, 7.8}

	res, err := Fit(xs, ys)
	g.Expect(err).ToNot(HaveOccurred())
	// closed-form OLS for these points
	g.Expect(res.Slope).To(BeNumerically("~", 1.94, 1e-9))
	g.Expect(res.Intercept).To(BeNumerically("~", 0.15, 1e-9))
	g.Expect(res.RSquared).To(BeNumerically(">", 0.99))
	g.Expect(res.RSquared).To(BeNumerically("<", 1))
}

func TestFitErrors(t *testing.T) {
	tests := []struct {
		name string
		xs   []float64
		ys   []float64
		want error
	}{
		{"empty", nil, nil, dynamo.ErrInsufficientData},
		{"single sample", []float64{1}, []float64{2}, dynamo.ErrInsufficientData},
		{"length mismatch", []float64{1, 2, 3}, []float64{1, 2}, dynamo.ErrInsufficientData},
		{"constant x", []float64{15, 15, 15}, []float64{1, 2, 3}, dynamo.ErrInsufficientVariance},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := NewWithT(t)
			_, err := Fit(tt.xs, tt.ys)
			g.Expect(errors.Is(err, tt.want)).To(BeTrue(), "got %v", err)
		})
	}
}

func TestFitLargeOffset(t *testing.T) {
	g := NewWithT(t)

	res, err := Fit([]float64{1e6, 1e6 + 1, 1e6 + 2}, []float64{1, 2, 3})
	g.Expect(err).ToNot(HaveOccurred())
	g.Expect(res.Slope).To(BeNumerically("~", 1, 1e-6))
	g.Expect(res.At(1e6)).To(BeNumerically("~", 1, 1e-3))
	g.Expect(res.RSquared).To(BeNumerically("~", 1, 1e-9))
}

func TestFitConstantY(t *testing.T) {
	g := NewWithT(t)

	res, err := Fit([]float64{1, 2, 3}, []float64{4, 4, 4})
	g.Expect(err).ToNot(HaveOccurred())
	g.Expect(res.Slope).To(BeNumerically("~", 0, 1e-12))
	g.Expect(res.RSquared).To(Equal(1.0))
}

func TestSampleSetSorted(t *testing.T) {
	g := NewWithT(t)

	s := NewSampleSet("h (cm)", "T (s)")
	s.Add(30, 1.0)
	s.Add(10, 1.2)
	s.Add(20, 0.9)
	s.Add(20, 0.95)

	g.Expect(s.Len()).To(Equal(4))
	g.Expect(s.Samples()).To(Equal([]Sample{
		{X: 10, Y: 1.2},
		{X: 20, Y: 0.9},
		{X: 20, Y: 0.95},
		{X: 30, Y: 1.0},
	}))

	g.Expect(s.Remove(1)).To(Succeed())
	xs, ys := s.XY()
	g.Expect(xs).To(Equal([]float64{10, 20, 30}))
	g.Expect(ys).To(Equal([]float64{1.2, 0.95, 1.0}))

	err := s.Remove(3)
	g.Expect(errors.Is(err, dynamo.ErrInvalidConfiguration)).To(BeTrue())

	s.Clear()
	_, err = s.Fit()
	g.Expect(errors.Is(err, dynamo.ErrInsufficientData)).To(BeTrue())
}
