package analysis

import (
	"math/cmplx"

	"github.com/mjibson/go-dsp/fft"
)

// PowerSpectrum returns the magnitude of the first half of the DFT of data
// after removing its mean, so bin 0 does not swamp the rest.
func PowerSpectrum(data []float64) []float64 {
	if len(data) < 2 {
		return nil
	}

	mean := 0.0
	for _, v := range data {
		mean += v
	}
	mean /= float64(len(data))

	centered := make([]float64, len(data))
	for i, v := range data {
		centered[i] = v - mean
	}

	spectrum := fft.FFTReal(centered)
	ps := make([]float64, len(spectrum)/2)
	for i := range ps {
		ps[i] = cmplx.Abs(spectrum[i])
	}
	return ps
}

// DominantFrequency returns the strongest non-zero frequency in Hz of a
// series sampled every sampleMs milliseconds.
func DominantFrequency(data []float64, sampleMs float64) float64 {
	ps := PowerSpectrum(data)
	if len(ps) < 2 || sampleMs <= 0 {
		return 0
	}

	maxIdx := 1
	for i := 2; i < len(ps); i++ {
		if ps[i] > ps[maxIdx] {
			maxIdx = i
		}
	}

	window := float64(len(data)) * sampleMs / 1000
	return float64(maxIdx) / window
}
