// Package analysis estimates oscillation frequencies from sampled lab
// signals.
//
// A run records one value per driver frame (the pendulum angle or the
// cylinder displacement). [DominantFrequency] windows the series, takes its
// real FFT and returns the strongest non-DC frequency:
//
//	f, err := analysis.DominantFrequency(angles, 1.0/60)
//	period := 1 / f
//
// The spectral period is a cross-check on the zero-crossing period counter;
// its resolution is 1/(N·dt), refined by parabolic interpolation of the peak.
package analysis
