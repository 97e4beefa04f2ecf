package metrics

import "math"

// Peak tracks the largest magnitude a probe reports, and how often it
// reached a threshold.
type Peak struct {
	name      string
	probe     func() float64
	threshold float64
	peak      float64
	hits      int
	samples   int
}

func NewPeak(name string, threshold float64, probe func() float64) *Peak {
	return &Peak{
		name:      name,
		probe:     probe,
		threshold: threshold,
	}
}

func (p *Peak) Name() string {
	return p.name
}

func (p *Peak) Observe(t float64) {
	v := math.Abs(p.probe())
	p.samples++
	p.peak = math.Max(p.peak, v)
	if p.threshold > 0 && v >= p.threshold {
		p.hits++
	}
}

func (p *Peak) Value() float64 {
	return p.peak
}

// Within is the fraction of samples below the threshold.
func (p *Peak) Within() float64 {
	if p.samples == 0 {
		return 1.0
	}
	return 1.0 - float64(p.hits)/float64(p.samples)
}

func (p *Peak) Reset() {
	p.peak = 0
	p.hits = 0
	p.samples = 0
}
