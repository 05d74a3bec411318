package dsp

import (
	"math"

	"github.com/mjibson/go-dsp/fft"
)

// MagnitudeSpectrum computes the single-sided magnitude spectrum of a
// time-domain buffer using mjibson/go-dsp. Used when the capture
// collaborator supplies raw samples without a precomputed spectrum.
func MagnitudeSpectrum(samples []float64) []float64 {
	if len(samples) == 0 {
		return []float64{}
	}

	// go-dsp handles all sizes, including non-power-of-2
	spectrum := fft.FFTReal(samples)

	half := len(spectrum)/2 + 1
	magnitude := make([]float64, half)
	scale := 2.0 / float64(len(samples))
	for i := 0; i < half; i++ {
		magnitude[i] = cmplxAbs(spectrum[i]) * scale
	}
	return magnitude
}

// NormalizeSpectrum scales magnitudes so the peak bin is 1.0.
// Returns the input unchanged when the spectrum is silent.
func NormalizeSpectrum(magnitude []float64) []float64 {
	peak := 0.0
	for _, m := range magnitude {
		if m > peak {
			peak = m
		}
	}
	if peak < Epsilon {
		return magnitude
	}
	out := make([]float64, len(magnitude))
	for i, m := range magnitude {
		out[i] = m / peak
	}
	return out
}

func cmplxAbs(c complex128) float64 {
	return math.Hypot(real(c), imag(c))
}
