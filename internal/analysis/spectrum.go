package analysis

import (
	"fmt"
	"math"
	"math/cmplx"

	"github.com/mjibson/go-dsp/fft"
	"github.com/mjibson/go-dsp/window"

	"github.com/san-kum/physlab/internal/dynamo"
)

// MinSamples is the shortest series DominantFrequency accepts.
const MinSamples = 16

// Spectrum is the one-sided magnitude spectrum of a sampled signal.
type Spectrum struct {
	Magnitudes []float64
	Resolution float64 // Hz per bin
}

// NewSpectrum removes the mean, applies a Hann window and returns the
// magnitudes of bins 0..N/2.
func NewSpectrum(samples []float64, dt float64) (*Spectrum, error) {
	if len(samples) < MinSamples {
		return nil, fmt.Errorf("%w: need %d samples, have %d", dynamo.ErrInsufficientData, MinSamples, len(samples))
	}
	if dt <= 0 || math.IsNaN(dt) {
		return nil, dynamo.InvalidParam("dt", dt, "must be positive")
	}

	mean := 0.0
	for _, v := range samples {
		mean += v
	}
	mean /= float64(len(samples))

	x := make([]float64, len(samples))
	for i, v := range samples {
		x[i] = v - mean
	}
	w := window.Hann(len(x))
	for i := range x {
		x[i] *= w[i]
	}

	coeffs := fft.FFTReal(x)
	half := len(coeffs)/2 + 1
	mags := make([]float64, half)
	for i := range mags {
		mags[i] = cmplx.Abs(coeffs[i])
	}

	return &Spectrum{
		Magnitudes: mags,
		Resolution: 1 / (float64(len(samples)) * dt),
	}, nil
}

// Peak returns the frequency of the strongest bin above DC, refined with a
// parabola through its neighbours.
func (s *Spectrum) Peak() (float64, error) {
	best := -1
	for i := 1; i < len(s.Magnitudes); i++ {
		if best < 0 || s.Magnitudes[i] > s.Magnitudes[best] {
			best = i
		}
	}
	if best < 0 || s.Magnitudes[best] == 0 {
		return 0, fmt.Errorf("%w: flat spectrum", dynamo.ErrInsufficientVariance)
	}

	offset := 0.0
	if best > 0 && best < len(s.Magnitudes)-1 {
		a, b, c := s.Magnitudes[best-1], s.Magnitudes[best], s.Magnitudes[best+1]
		if d := a - 2*b + c; d != 0 {
			offset = 0.5 * (a - c) / d
		}
	}
	return (float64(best) + offset) * s.Resolution, nil
}

// DominantFrequency returns the strongest oscillation frequency (Hz) of a
// series sampled every dt seconds.
func DominantFrequency(samples []float64, dt float64) (float64, error) {
	s, err := NewSpectrum(samples, dt)
	if err != nil {
		return 0, err
	}
	return s.Peak()
}

// DominantPeriod is 1 / DominantFrequency.
func DominantPeriod(samples []float64, dt float64) (float64, error) {
	f, err := DominantFrequency(samples, dt)
	if err != nil {
		return 0, err
	}
	return 1 / f, nil
}
