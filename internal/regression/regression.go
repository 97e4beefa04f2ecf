// Package regression fits straight lines to lab samples.
package regression

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat"

	"github.com/san-kum/physlab/internal/dynamo"
)

// Result is an ordinary least-squares fit y = Slope*x + Intercept.
type Result struct {
	Slope     float64 `json:"slope" yaml:"slope"`
	Intercept float64 `json:"intercept" yaml:"intercept"`
	RSquared  float64 `json:"r_squared" yaml:"r_squared"`
}

// At evaluates the fitted line.
func (r Result) At(x float64) float64 {
	return r.Slope*x + r.Intercept
}

func (r Result) String() string {
	return fmt.Sprintf("y = %.4f x %+.4f (R² = %.4f)", r.Slope, r.Intercept, r.RSquared)
}

// Fit regresses ys on xs. It needs at least two paired samples and at least
// two distinct x values.
func Fit(xs, ys []float64) (Result, error) {
	if len(xs) != len(ys) {
		return Result{}, fmt.Errorf("%w: %d x values for %d y values", dynamo.ErrInsufficientData, len(xs), len(ys))
	}
	if len(xs) < 2 {
		return Result{}, fmt.Errorf("%w: need 2 samples, have %d", dynamo.ErrInsufficientData, len(xs))
	}
	if !hasSpread(xs) {
		return Result{}, dynamo.ErrInsufficientVariance
	}

	intercept, slope := stat.LinearRegression(xs, ys, nil, false)
	if math.IsNaN(slope) || math.IsInf(slope, 0) {
		return Result{}, dynamo.ErrInsufficientVariance
	}

	return Result{
		Slope:     slope,
		Intercept: intercept,
		RSquared:  rSquared(xs, ys, intercept, slope),
	}, nil
}

// hasSpread reports whether xs holds two distinct values with a non-zero
// variance about their mean.
func hasSpread(xs []float64) bool {
	distinct := false
	for _, x := range xs[1:] {
		if x != xs[0] {
			distinct = true
			break
		}
	}
	return distinct && stat.Variance(xs, nil) > 0
}

// rSquared is 1 - SS_res/SS_tot; a constant y that the line hits exactly is a perfect fit.
func rSquared(xs, ys []float64, intercept, slope float64) float64 {
	if stat.Variance(ys, nil) == 0 {
		var ssRes float64
		for i := range xs {
			d := ys[i] - (slope*xs[i] + intercept)
			ssRes += d * d
		}
		if ssRes == 0 {
			return 1
		}
		return 0
	}
	return stat.RSquared(xs, ys, nil, intercept, slope)
}
