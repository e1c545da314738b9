package equations

import (
	"math"

	"cloudmask/internal/grid"
)

// GDAL-style mask values.
const (
	MaskMasked uint8 = 0
	MaskValid  uint8 = 255
)

// ThermalNodata flags thermal cells that are NaN or exactly zero.
func ThermalNodata(tirs1 *grid.Float) *grid.Mask {
	return tirs1.Where(func(t float64) bool {
		return math.IsNaN(t) || t == 0
	})
}

// NodataMask encodes the cloud and shadow layers plus thermal nodata as a
// GDAL-style mask: 255 where the pixel is clear and valid, 0 otherwise.
func NodataMask(cloud, shadow *grid.Mask, tirs1 *grid.Float) (*grid.Uint8, error) {
	if err := grid.CheckShapes([]string{"cloud", "shadow", "tirs1"}, cloud, shadow, tirs1); err != nil {
		return nil, err
	}

	nodata := ThermalNodata(tirs1)
	out := grid.NewUint8(cloud.Rows, cloud.Cols)
	for i := range out.Data {
		if cloud.Data[i] || shadow.Data[i] || nodata.Data[i] {
			out.Data[i] = MaskMasked
		} else {
			out.Data[i] = MaskValid
		}
	}
	return out, nil
}
