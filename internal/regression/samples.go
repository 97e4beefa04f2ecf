package regression

import (
	"slices"
	"sort"

	"github.com/san-kum/physlab/internal/dynamo"
)

// Sample is one recorded (independent, dependent) pair.
type Sample struct {
	X float64 `json:"x" yaml:"x"`
	Y float64 `json:"y" yaml:"y"`
}

// SampleSet is an ordered sample table kept sorted by X. Samples with equal
// X keep their recording order.
type SampleSet struct {
	XLabel  string
	YLabel  string
	samples []Sample
}

func NewSampleSet(xLabel, yLabel string) *SampleSet {
	return &SampleSet{XLabel: xLabel, YLabel: yLabel}
}

func (s *SampleSet) Add(x, y float64) {
	i := sort.Search(len(s.samples), func(i int) bool { return s.samples[i].X > x })
	s.samples = slices.Insert(s.samples, i, Sample{X: x, Y: y})
}

// Remove deletes the sample at index i of the sorted table.
func (s *SampleSet) Remove(i int) error {
	if i < 0 || i >= len(s.samples) {
		return dynamo.InvalidParam("index", float64(i), "no such sample")
	}
	s.samples = slices.Delete(s.samples, i, i+1)
	return nil
}

func (s *SampleSet) Clear() { s.samples = s.samples[:0] }

func (s *SampleSet) Len() int { return len(s.samples) }

// Samples returns a copy of the sorted table.
func (s *SampleSet) Samples() []Sample {
	return slices.Clone(s.samples)
}

func (s *SampleSet) XY() (xs, ys []float64) {
	xs = make([]float64, len(s.samples))
	ys = make([]float64, len(s.samples))
	for i, p := range s.samples {
		xs[i], ys[i] = p.X, p.Y
	}
	return xs, ys
}

func (s *SampleSet) Fit() (Result, error) {
	xs, ys := s.XY()
	return Fit(xs, ys)
}
