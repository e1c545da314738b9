package equations

import (
	"math"

	"cloudmask/internal/grid"
)

const (
	waterTempScale  = 4.0  // degrees C, equation 9
	brightWaterNIR  = 0.11 // equation 10
	landTempBuffer  = 4.0  // degrees C, equation 14
	cirrusProbScale = 0.04
)

// WaterTempProb is the temperature probability of cloud over water (equation 9).
func WaterTempProb(waterTemp float64, tirs1 *grid.Float) *grid.Float {
	return tirs1.Map(func(t float64) float64 {
		return (waterTemp - t) / waterTempScale
	})
}

// BrightnessProb scales nir against the brightest expected water
// reflectance (equation 10). With clip the result is clamped to [0, 1];
// NaN stays NaN either way.
func BrightnessProb(nir *grid.Float, clip bool) *grid.Float {
	return nir.Map(func(n float64) float64 {
		bp := math.Min(brightWaterNIR, n) / brightWaterNIR
		if clip {
			if bp > 1 {
				bp = 1
			}
			if bp < 0 {
				bp = 0
			}
		}
		return bp
	})
}

// CirrusProb is the cirrus band contribution added to both cloud probabilities.
func CirrusProb(cirrus *grid.Float) *grid.Float {
	return cirrus.Map(func(c float64) float64 {
		return c / cirrusProbScale
	})
}

// WaterCloudProb combines equation 11 with the cirrus term.
// It panics with grid.ErrShapeMismatch when the grids differ in shape.
func WaterCloudProb(waterTempProb, brightnessProb, cirrusProb *grid.Float) *grid.Float {
	return grid.Map3(waterTempProb, brightnessProb, cirrusProb, func(wt, bp, cp float64) float64 {
		return wt*bp + cp
	})
}

// VariabilityProb is the spectral variability probability over land
// (equation 15). The maximum skips NaN operands the way fmax does, so a
// single undefined index does not mask the others.
// It panics with grid.ErrShapeMismatch when the grids differ in shape.
func VariabilityProb(ndvi, ndsi, whiteness *grid.Float) *grid.Float {
	return grid.Map3(ndvi, ndsi, whiteness, func(v, s, w float64) float64 {
		return 1.0 - fmax(fmax(math.Abs(v), math.Abs(s)), w)
	})
}

// LandTempProb is the temperature probability of cloud over land (equation 14).
func LandTempProb(tirs1 *grid.Float, tlow, thigh float64) *grid.Float {
	denom := thigh + landTempBuffer - (tlow - landTempBuffer)
	return tirs1.Map(func(t float64) float64 {
		return (thigh + landTempBuffer - t) / denom
	})
}

// LandCloudProb combines equation 16 with the cirrus term.
// It panics with grid.ErrShapeMismatch when the grids differ in shape.
func LandCloudProb(landTempProb, variabilityProb, cirrusProb *grid.Float) *grid.Float {
	return grid.Map3(landTempProb, variabilityProb, cirrusProb, func(lt, vp, cp float64) float64 {
		return lt*vp + cp
	})
}

func fmax(a, b float64) float64 {
	switch {
	case math.IsNaN(a):
		return b
	case math.IsNaN(b):
		return a
	case a > b:
		return a
	default:
		return b
	}
}
