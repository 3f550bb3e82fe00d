package analysis

import "math"

// Peak is a local maximum of a series.
type Peak struct {
	Index int
	Value float64
}

// Peaks returns the strict local maxima of data in order. A plateau counts
// once, at its first sample.
func Peaks(data []float64) []Peak {
	var peaks []Peak
	for i := 1; i < len(data)-1; i++ {
		if data[i] > data[i-1] && data[i] >= data[i+1] {
			peaks = append(peaks, Peak{Index: i, Value: data[i]})
		}
	}
	return peaks
}

// PeakRatios returns successive height ratios measured above base, starting
// with the ratio of the first apex to start.
func PeakRatios(start float64, peaks []Peak, base float64) []float64 {
	prev := start - base
	ratios := make([]float64, 0, len(peaks))
	for _, p := range peaks {
		h := p.Value - base
		if prev == 0 {
			break
		}
		ratios = append(ratios, h/prev)
		prev = h
	}
	return ratios
}

// EstimateElasticity returns sqrt of the mean of the first n peak ratios.
func EstimateElasticity(ratios []float64, n int) float64 {
	if n <= 0 || n > len(ratios) {
		n = len(ratios)
	}
	if n == 0 {
		return 0
	}
	sum := 0.0
	for _, r := range ratios[:n] {
		sum += r
	}
	return math.Sqrt(sum / float64(n))
}

// SettleIndex returns the first index after which every sample stays
// within tol of target, or -1 if the series never settles.
func SettleIndex(data []float64, target, tol float64) int {
	idx := -1
	for i := len(data) - 1; i >= 0; i-- {
		if math.Abs(data[i]-target) > tol {
			break
		}
		idx = i
	}
	return idx
}
