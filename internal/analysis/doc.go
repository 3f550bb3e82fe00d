// Package analysis extracts bounce characteristics from recorded series.
//
//   - [Peaks]: local maxima of a height series (bounce apexes)
//   - [PeakRatios]: successive apex height ratios, ~elasticity² for a floor bounce
//   - [DominantFrequency]: strongest bounce frequency via FFT
//
// # Restitution
//
// For a ball dropped onto a floor the apex heights above contact shrink by
// elasticity² per bounce:
//
//	apexes := analysis.Peaks(ys)
//	ratios := analysis.PeakRatios(ys[0], apexes, floorContact)
package analysis
