package equations

import "cloudmask/internal/grid"

const (
	// DefaultWaterThreshold is the water cloud probability cutoff.
	DefaultWaterThreshold = 0.5

	coldOverride = 35.0 // degrees C below the low land temperature
	shadowNIR    = 0.10
	shadowSWIR1  = 0.10
)

// PotentialCloudLayer is the final potential cloud decision (equation 18).
// The cold test fires regardless of the potential cloud and water masks.
// It panics with grid.ErrShapeMismatch when the grids differ in shape.
func PotentialCloudLayer(pcp, water *grid.Mask, tirs1 *grid.Float, tlow float64,
	landCloudProb *grid.Float, landThreshold float64,
	waterCloudProb *grid.Float, waterThreshold float64) *grid.Mask {

	out := grid.NewMask(pcp.Rows, pcp.Cols)
	sameShape(tirs1, landCloudProb, waterCloudProb)
	if err := grid.CheckShapes(nil, pcp, water, tirs1); err != nil {
		panic(err)
	}

	cold := tlow - coldOverride
	for i := range out.Data {
		overWater := pcp.Data[i] && water.Data[i] && waterCloudProb.Data[i] > waterThreshold
		overLand := pcp.Data[i] && !water.Data[i] && landCloudProb.Data[i] > landThreshold
		out.Data[i] = overWater || overLand || tirs1.Data[i] < cold
	}
	return out
}

// PotentialCloudShadowLayer flags dark NIR and SWIR1 pixels that are not
// water. This replaces the Fmask flood-fill with a simple darkness test.
// It panics with grid.ErrShapeMismatch when the grids differ in shape.
func PotentialCloudShadowLayer(nir, swir1 *grid.Float, water *grid.Mask) *grid.Mask {
	out := grid.NewMask(nir.Rows, nir.Cols)
	sameShape(nir, swir1)
	if err := grid.CheckShapes(nil, nir, water); err != nil {
		panic(err)
	}

	for i := range out.Data {
		out.Data[i] = nir.Data[i] < shadowNIR && swir1.Data[i] < shadowSWIR1 && !water.Data[i]
	}
	return out
}
