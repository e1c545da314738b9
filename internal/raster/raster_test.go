package raster

import (
	"path/filepath"
	"testing"

	"cloudmask/internal/grid"

	"github.com/airbusgeo/godal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testTransform = [6]float64{500000, 30, 0, 4200000, 0, -30}

// writeFloatBand creates a 2x3 float32 GeoTIFF with nodata -9999.
func writeFloatBand(t *testing.T, path string, data []float32) {
	t.Helper()
	register()

	ds, err := godal.Create(godal.GTiff, path, 1, godal.Float32, 3, 2)
	require.NoError(t, err)
	require.NoError(t, ds.SetGeoTransform(testTransform))

	sr, err := godal.NewSpatialRefFromEPSG(32633)
	require.NoError(t, err)
	defer sr.Close()
	wkt, err := sr.WKT()
	require.NoError(t, err)
	require.NoError(t, ds.SetProjection(wkt))

	band := ds.Bands()[0]
	require.NoError(t, band.SetNoData(-9999))
	require.NoError(t, band.Write(0, 0, data, 3, 2))
	require.NoError(t, ds.Close())
}

func TestParseDType(t *testing.T) {
	d, err := ParseDType("uint16")
	require.NoError(t, err)
	assert.Equal(t, Uint16, d)

	_, err = ParseDType("float32")
	assert.Error(t, err)
}

func TestReadBand(t *testing.T) {
	path := filepath.Join(t.TempDir(), "red.tif")
	writeFloatBand(t, path, []float32{0.25, 0.5, -9999, 1, 0, 0.125})

	b, err := ReadBand(path)
	require.NoError(t, err)

	assert.Equal(t, grid.Shape{Rows: 2, Cols: 3}, b.Data.Shape)
	assert.Equal(t, 0.25, b.Data.At(0, 0))
	assert.Equal(t, 0.125, b.Data.At(1, 2))
	assert.Equal(t, -9999.0, b.Data.At(0, 2), "nodata pixels keep their stored value")
	assert.Equal(t, 0.0, b.Data.At(1, 1))

	assert.True(t, b.Profile.HasGeoTransform)
	assert.Equal(t, testTransform, b.Profile.GeoTransform)
	assert.True(t, b.Profile.HasNoData)
	assert.Equal(t, -9999.0, b.Profile.NoData)
	assert.Contains(t, b.Profile.Projection, "UTM")
}

func TestReadBandMissing(t *testing.T) {
	_, err := ReadBand(filepath.Join(t.TempDir(), "nope.tif"))
	require.ErrorIs(t, err, ErrMissingInput)
}

func TestWriteMaskRoundTrip(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "red.tif")
	writeFloatBand(t, src, []float32{0.1, 0.2, 0.3, 0.4, 0.5, 0.6})
	red, err := ReadBand(src)
	require.NoError(t, err)

	mask := grid.NewUint8(2, 3)
	copy(mask.Data, []uint8{255, 0, 255, 0, 255, 255})

	for _, dtype := range DTypes {
		t.Run(string(dtype), func(t *testing.T) {
			out := filepath.Join(dir, "mask_"+string(dtype)+".tif")
			err := WriteMask(out, mask, red.Profile, WriteOptions{
				DType:           dtype,
				CreationOptions: []string{"COMPRESS=DEFLATE"},
			})
			require.NoError(t, err)

			ds, err := godal.Open(out)
			require.NoError(t, err)
			defer ds.Close()

			band := ds.Bands()[0]
			assert.Equal(t, dtype.gdal(), band.Structure().DataType)
			gt, err := ds.GeoTransform()
			require.NoError(t, err)
			assert.Equal(t, testTransform, gt)
			assert.Equal(t, red.Profile.Projection, ds.Projection())
			_, ok := band.NoData()
			assert.False(t, ok, "-9999 does not fit the mask dtype")

			got := make([]float64, 6)
			require.NoError(t, band.Read(0, 0, got, 3, 2))
			assert.Equal(t, []float64{255, 0, 255, 0, 255, 255}, got)
		})
	}
}

func TestWriteMaskNoData(t *testing.T) {
	tests := []struct {
		name    string
		profile Profile
		dtype   DType
		want    float64
		carried bool
	}{
		{"none declared", Profile{Width: 2, Height: 2}, Uint8, 0, false},
		{"zero", Profile{Width: 2, Height: 2, NoData: 0, HasNoData: true}, Uint8, 0, true},
		{"fits uint16 only", Profile{Width: 2, Height: 2, NoData: 1000, HasNoData: true}, Uint16, 1000, true},
		{"too large for uint8", Profile{Width: 2, Height: 2, NoData: 1000, HasNoData: true}, Uint8, 0, false},
		{"fractional", Profile{Width: 2, Height: 2, NoData: 0.5, HasNoData: true}, Uint16, 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := filepath.Join(t.TempDir(), "mask.tif")
			require.NoError(t, WriteMask(out, grid.NewUint8(2, 2), tt.profile, WriteOptions{DType: tt.dtype}))

			ds, err := godal.Open(out)
			require.NoError(t, err)
			defer ds.Close()

			nd, ok := ds.Bands()[0].NoData()
			assert.Equal(t, tt.carried, ok)
			if tt.carried {
				assert.Equal(t, tt.want, nd)
			}
		})
	}
}

func TestWriteMaskShapeMismatch(t *testing.T) {
	p := Profile{Width: 4, Height: 4}
	err := WriteMask(filepath.Join(t.TempDir(), "x.tif"), grid.NewUint8(2, 2), p, WriteOptions{})
	require.ErrorIs(t, err, grid.ErrShapeMismatch)
}
