// Package equations implements the Fmask potential cloud and cloud shadow
// equations (Zhu and Woodcock, 2012 and 2015) over whole-scene grids.
//
// Every function is pure: inputs are never modified and results are new
// grids. Divisions by zero and NaN inputs are not errors; they produce NaN
// or Inf that evaluate false in every threshold comparison.
//
// The per-equation functions panic when their grids differ in shape.
// CloudMask, PostFilter and NodataMask check shapes first and return
// grid.ErrShapeMismatch instead.
package equations

import (
	"math"

	"cloudmask/internal/grid"
)

// NDVI is the normalized difference vegetation index (nir-red)/(nir+red).
// It panics with grid.ErrShapeMismatch when the grids differ in shape.
func NDVI(red, nir *grid.Float) *grid.Float {
	return grid.Map2(red, nir, func(r, n float64) float64 {
		return (n - r) / (n + r)
	})
}

// NDSI is the normalized difference snow index (green-swir1)/(green+swir1).
// It panics with grid.ErrShapeMismatch when the grids differ in shape.
func NDSI(green, swir1 *grid.Float) *grid.Float {
	return grid.Map2(green, swir1, func(g, s float64) float64 {
		return (g - s) / (g + s)
	})
}

// WhitenessIndex sums the absolute relative deviation of each visible band
// from the visible mean. Flat, white spectra score near zero.
// It panics with grid.ErrShapeMismatch when the grids differ in shape.
func WhitenessIndex(blue, green, red *grid.Float) *grid.Float {
	return grid.Map3(blue, green, red, func(b, g, r float64) float64 {
		mean := (b + g + r) / 3
		return math.Abs((b-mean)/mean) + math.Abs((g-mean)/mean) + math.Abs((r-mean)/mean)
	})
}
