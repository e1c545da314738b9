package equations

import "cloudmask/internal/grid"

// Fixed spectral test thresholds.
const (
	basicSWIR2   = 0.03 // toa reflectance
	basicTIRS1   = 27.0 // degrees Celsius
	basicNDSI    = 0.8
	basicNDVI    = 0.8
	whitenessMax = 0.7
	hotOffset    = 0.08
	nirSWIRRatio = 0.75
	cirrusTOA    = 0.01

	waterNDVIA = 0.01
	waterNIRA  = 0.11
	waterNDVIB = 0.1
	waterNIRB  = 0.05
)

// BasicTest is the fundamental potential cloud test (equation 1).
// It panics with grid.ErrShapeMismatch when the grids differ in shape.
func BasicTest(ndvi, ndsi, swir2, tirs1 *grid.Float) *grid.Mask {
	out := grid.NewMask(ndvi.Rows, ndvi.Cols)
	sameShape(ndvi, ndsi, swir2, tirs1)
	for i := range out.Data {
		out.Data[i] = swir2.Data[i] > basicSWIR2 &&
			tirs1.Data[i] < basicTIRS1 &&
			ndsi.Data[i] < basicNDSI &&
			ndvi.Data[i] < basicNDVI
	}
	return out
}

// WhitenessTest flags spectrally flat pixels (equation 2).
// It panics with grid.ErrShapeMismatch when the grids differ in shape.
func WhitenessTest(blue, green, red *grid.Float) *grid.Mask {
	return WhitenessIndex(blue, green, red).Where(func(w float64) bool {
		return w < whitenessMax
	})
}

// HOTTest is the haze optimized transformation test (equation 3).
// It panics with grid.ErrShapeMismatch when the grids differ in shape.
func HOTTest(blue, red *grid.Float) *grid.Mask {
	out := grid.NewMask(blue.Rows, blue.Cols)
	sameShape(blue, red)
	for i := range out.Data {
		out.Data[i] = blue.Data[i]-0.5*red.Data[i]-hotOffset > 0.0
	}
	return out
}

// NIRSWIRTest excludes bright rock and desert (equation 4, the "B4B5" test).
// It panics with grid.ErrShapeMismatch when the grids differ in shape.
func NIRSWIRTest(nir, swir1 *grid.Float) *grid.Mask {
	out := grid.NewMask(nir.Rows, nir.Cols)
	sameShape(nir, swir1)
	for i := range out.Data {
		out.Data[i] = nir.Data[i]/swir1.Data[i] > nirSWIRRatio
	}
	return out
}

// CirrusTest flags high cirrus TOA reflectance.
func CirrusTest(cirrus *grid.Float) *grid.Mask {
	return cirrus.Where(func(c float64) bool {
		return c > cirrusTOA
	})
}

// WaterTest separates water from land (equation 5).
// It panics with grid.ErrShapeMismatch when the grids differ in shape.
func WaterTest(ndvi, nir *grid.Float) *grid.Mask {
	out := grid.NewMask(ndvi.Rows, ndvi.Cols)
	sameShape(ndvi, nir)
	for i := range out.Data {
		v, n := ndvi.Data[i], nir.Data[i]
		out.Data[i] = (v < waterNDVIA && n < waterNIRA) || (v < waterNDVIB && n < waterNIRB)
	}
	return out
}

// PotentialCloudPixels combines the spectral tests into the first pass
// candidate mask (equation 6). Cirrus alone is sufficient.
// It panics with grid.ErrShapeMismatch when the grids differ in shape.
func PotentialCloudPixels(ndvi, ndsi, blue, green, red, nir, swir1, swir2, cirrus, tirs1 *grid.Float) *grid.Mask {
	spectral := grid.And(
		BasicTest(ndvi, ndsi, swir2, tirs1),
		WhitenessTest(blue, green, red),
		HOTTest(blue, red),
		NIRSWIRTest(nir, swir1),
	)
	return grid.Or(spectral, CirrusTest(cirrus))
}

func sameShape(first *grid.Float, rest ...*grid.Float) {
	for _, g := range rest {
		if err := grid.CheckShapes(nil, first, g); err != nil {
			panic(err)
		}
	}
}
