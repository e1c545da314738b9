package equations

import "cloudmask/internal/grid"

const (
	clearWaterSWIR2 = 0.03 // equation 7
	waterPercentile = 82.5 // equation 8
	landLowPct      = 17.5 // equation 13
	landHighPct     = 82.5
	landProbPct     = 82.5 // equation 17
	landProbOffset  = 0.2
)

// ClearSkyLand is the reference population for the land thresholds:
// pixels that are neither potential cloud nor water (equation 12).
// It panics with grid.ErrShapeMismatch when the grids differ in shape.
func ClearSkyLand(pcp, water *grid.Mask) *grid.Mask {
	return grid.Or(pcp, water).Not()
}

// TempWater is the 82.5th percentile of clear-sky water temperature
// (equations 7 and 8). It is NaN when the scene has no clear water.
// It panics with grid.ErrShapeMismatch when the grids differ in shape.
func TempWater(water *grid.Mask, swir2, tirs1 *grid.Float) float64 {
	lowSWIR := swir2.Where(func(v float64) bool { return v < clearWaterSWIR2 })
	t, _ := Percentile(tirs1, grid.And(water, lowSWIR), waterPercentile)
	return t
}

// TempLand returns the 17.5th and 82.5th percentile of clear-sky land
// temperature (equations 12 and 13). Both are NaN without clear land.
// It panics with grid.ErrShapeMismatch when the grids differ in shape.
func TempLand(pcp, water *grid.Mask, tirs1 *grid.Float) (tlow, thigh float64) {
	ps, _ := Percentiles(tirs1, ClearSkyLand(pcp, water), landLowPct, landHighPct)
	return ps[0], ps[1]
}

// LandThreshold is the dynamic land cloud probability cutoff (equation 17).
// It panics with grid.ErrShapeMismatch when the grids differ in shape.
func LandThreshold(landCloudProb *grid.Float, pcp, water *grid.Mask) float64 {
	p, _ := Percentile(landCloudProb, ClearSkyLand(pcp, water), landProbPct)
	return p + landProbOffset
}
