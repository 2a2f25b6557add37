package analysis

import (
	"math"
	"math/cmplx"

	"github.com/mjibson/go-dsp/fft"
)

// Spectrum is the one-sided amplitude spectrum of a uniformly sampled
// signal. Bin i is at frequency i / (n*dt).
type Spectrum struct {
	Freqs     []float64
	Amplitude []float64
}

// NewSpectrum removes the mean from samples and transforms them. Any length
// is accepted.
func NewSpectrum(samples []float64, dt float64) *Spectrum {
	n := len(samples)
	if n < 2 || !(dt > 0) {
		return &Spectrum{}
	}

	mean := 0.0
	for _, v := range samples {
		mean += v
	}
	mean /= float64(n)

	centered := make([]float64, n)
	for i, v := range samples {
		centered[i] = v - mean
	}

	coeffs := fft.FFTReal(centered)
	bins := n/2 + 1
	s := &Spectrum{
		Freqs:     make([]float64, bins),
		Amplitude: make([]float64, bins),
	}
	for i := 0; i < bins; i++ {
		s.Freqs[i] = float64(i) / (float64(n) * dt)
		s.Amplitude[i] = cmplx.Abs(coeffs[i]) / float64(n)
	}
	return s
}

// Dominant returns the frequency of the strongest non-DC bin, false if the
// signal is constant.
func (s *Spectrum) Dominant() (float64, bool) {
	best, idx := 0.0, -1
	for i := 1; i < len(s.Amplitude); i++ {
		if s.Amplitude[i] > best {
			best, idx = s.Amplitude[i], i
		}
	}
	if idx < 0 || best < 1e-12 {
		return 0, false
	}
	return s.Freqs[idx], true
}

// Period is 1/Dominant, or +Inf when there is no oscillation.
func (s *Spectrum) Period() float64 {
	f, ok := s.Dominant()
	if !ok {
		return math.Inf(1)
	}
	return 1 / f
}
