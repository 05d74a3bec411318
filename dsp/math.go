package dsp

import (
	"math"

	"gonum.org/v1/gonum/stat"
)

// Basic statistical and smoothing functions used across the engine,
// using gonum for the statistics

// Mean calculates the arithmetic mean of a slice using gonum
func Mean(data []float64) float64 {
	if len(data) == 0 {
		return 0.0
	}
	return stat.Mean(data, nil)
}

// StdDev calculates the sample standard deviation of a slice using gonum
func StdDev(data []float64) float64 {
	if len(data) < 2 {
		return 0.0
	}
	return stat.StdDev(data, nil)
}

// CoefficientOfVariation returns stddev/mean, guarding against a zero mean
func CoefficientOfVariation(data []float64) float64 {
	m := Mean(data)
	if math.Abs(m) < Epsilon {
		return 0.0
	}
	return StdDev(data) / m
}

// Correlation computes the Pearson correlation of two equal-length slices
// using gonum; returns 0 when either side has no variance
func Correlation(a, b []float64) float64 {
	if len(a) != len(b) || len(a) < 2 {
		return 0.0
	}
	r := stat.Correlation(a, b, nil)
	if math.IsNaN(r) {
		return 0.0
	}
	return r
}

// Epsilon guards denominators against exact zero
const Epsilon = 1e-9

// Clamp limits v to [lo, hi]
func Clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Clamp01 limits v to the unit range
func Clamp01(v float64) float64 {
	return Clamp(v, 0.0, 1.0)
}

// Lerp linearly interpolates from a to b by t
func Lerp(a, b, t float64) float64 {
	return a + (b-a)*t
}

// EaseInOutCubic applies the standard cubic ease to t in [0,1]
func EaseInOutCubic(t float64) float64 {
	t = Clamp01(t)
	if t < 0.5 {
		return 4.0 * t * t * t
	}
	u := -2.0*t + 2.0
	return 1.0 - u*u*u/2.0
}

// SmoothingCoeff returns the frame-rate-independent blend factor for one
// update step of length dt toward a target, given a time constant tau in
// seconds. All smoothing in the engine uses this exponential form so
// behavior does not depend on frame rate.
func SmoothingCoeff(dt, tau float64) float64 {
	if tau <= 0.0 {
		return 1.0
	}
	return 1.0 - math.Exp(-dt/tau)
}

// SmoothToward advances current toward target by one exponential step.
// Converges without overshoot for any dt.
func SmoothToward(current, target, dt, tau float64) float64 {
	return current + (target-current)*SmoothingCoeff(dt, tau)
}
