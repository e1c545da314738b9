package equations

import (
	"math"
	"testing"

	"cloudmask/internal/grid"
	"cloudmask/internal/processing/filters"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// cloudAndShadowScene has a 6x6 cloud, a 4x4 shadow south east of it and
// a single cloudy speck in the top right corner.
func cloudAndShadowScene() *scene {
	return newScene(20, 20, clearLand).
		block(5, 11, 5, 11, cloudy).
		block(12, 16, 12, 16, darkLand).
		set(0, 19, cloudy)
}

func TestCloudMaskUniformClearScene(t *testing.T) {
	b := newScene(6, 7, clearLand).bands()

	res, err := CloudMask(b, DefaultOptions())
	require.NoError(t, err)

	assert.False(t, res.Cloud.Any())
	assert.False(t, res.Shadow.Any())
	assert.False(t, res.Layers.PCP.Any())
	assert.True(t, math.IsNaN(res.Layers.WaterTemp))
	assert.InDelta(t, 30, res.Layers.LandTempLow, 1e-12)
	assert.InDelta(t, 30, res.Layers.LandTempHigh, 1e-12)
	assert.InDelta(t, 0.6, res.Layers.LandThreshold, 1e-9)

	out, err := NodataMask(res.Cloud, res.Shadow, b.TIRS1)
	require.NoError(t, err)
	assert.Equal(t, []uint8{MaskValid}, out.Unique())
}

func TestCloudMaskCirrusPixel(t *testing.T) {
	cirrusPixel := clearLand
	cirrusPixel.cirrus = 0.02
	b := newScene(3, 3, clearLand).set(1, 1, cirrusPixel).bands()

	res, err := CloudMask(b, noFilters)
	require.NoError(t, err)
	assert.Equal(t, [][2]int{{1, 1}}, cells(res.Layers.PCP))
	assert.InDelta(t, 0.9, res.Layers.LandCloudProb.At(1, 1), 1e-9)
	assert.Equal(t, [][2]int{{1, 1}}, cells(res.Cloud))

	eroded, err := CloudMask(b, Options{
		MinFilter:      filters.Square(3),
		WaterThreshold: DefaultWaterThreshold,
		ShadowRadius:   DefaultShadowRadius,
	})
	require.NoError(t, err)
	assert.False(t, eroded.Cloud.Any(), "an isolated pixel does not survive a 3x3 minimum filter")
}

func TestCloudMaskAllWater(t *testing.T) {
	b := newScene(4, 4, openWater).bands()

	res, err := CloudMask(b, DefaultOptions())
	require.NoError(t, err)

	assert.InDelta(t, 20, res.Layers.WaterTemp, 1e-12)
	assert.True(t, math.IsNaN(res.Layers.LandTempLow))
	assert.True(t, math.IsNaN(res.Layers.LandTempHigh))
	assert.True(t, math.IsNaN(res.Layers.LandThreshold))
	assert.False(t, res.Cloud.Any())
	assert.False(t, res.Shadow.Any(), "water is never shadow")
}

func TestCloudMaskAllNaNThermal(t *testing.T) {
	noThermal := clearLand
	noThermal.tirs1 = math.NaN()
	b := newScene(5, 5, noThermal).bands()

	res, err := CloudMask(b, DefaultOptions())
	require.NoError(t, err)
	assert.False(t, res.Cloud.Any())

	out, err := NodataMask(res.Cloud, res.Shadow, b.TIRS1)
	require.NoError(t, err)
	assert.Equal(t, []uint8{MaskMasked}, out.Unique())
}

func TestCloudMaskWithoutFilters(t *testing.T) {
	b := cloudAndShadowScene().bands()

	res, err := CloudMask(b, noFilters)
	require.NoError(t, err)

	wantCloud := append(blockCells(0, 1, 19, 20), blockCells(5, 11, 5, 11)...)
	assert.ElementsMatch(t, wantCloud, cells(res.Cloud))
	assert.ElementsMatch(t, blockCells(12, 16, 12, 16), cells(res.Shadow))
	assert.Equal(t, res.Layers.PotentialCloud.Data, res.Cloud.Data)
	assert.Equal(t, res.Layers.PotentialShadow.Data, res.Shadow.Data)
}

func TestCloudMaskMinimumFilter(t *testing.T) {
	b := cloudAndShadowScene().bands()

	res, err := CloudMask(b, Options{
		MinFilter:      filters.Square(3),
		WaterThreshold: DefaultWaterThreshold,
		ShadowRadius:   DefaultShadowRadius,
	})
	require.NoError(t, err)

	assert.ElementsMatch(t, blockCells(6, 10, 6, 10), cells(res.Cloud))
	assert.ElementsMatch(t, blockCells(13, 15, 13, 15), cells(res.Shadow))
}

func TestCloudMaskOpening(t *testing.T) {
	b := cloudAndShadowScene().bands()

	opt := DefaultOptions()
	opt.MaxFilter = filters.Square(3)
	res, err := CloudMask(b, opt)
	require.NoError(t, err)

	// erosion followed by dilation restores the blocks but not the speck
	assert.ElementsMatch(t, blockCells(5, 11, 5, 11), cells(res.Cloud))
	assert.ElementsMatch(t, blockCells(12, 16, 12, 16), cells(res.Shadow))
}

func TestCloudMaskMaximumFilterGrows(t *testing.T) {
	b := cloudAndShadowScene().bands()
	minOnly := Options{MinFilter: filters.Square(3), WaterThreshold: DefaultWaterThreshold, ShadowRadius: DefaultShadowRadius}

	small, err := CloudMask(b, minOnly)
	require.NoError(t, err)

	withMax := minOnly
	withMax.MaxFilter = filters.Square(5)
	large, err := CloudMask(b, withMax)
	require.NoError(t, err)

	assert.True(t, small.Cloud.Subset(large.Cloud))
	assert.True(t, small.Shadow.Subset(large.Shadow))
	assert.Greater(t, large.Cloud.Count(), small.Cloud.Count())
}

func TestCloudMaskShadowGate(t *testing.T) {
	t.Run("no cloud survives", func(t *testing.T) {
		b := newScene(20, 20, clearLand).
			block(12, 16, 12, 16, darkLand).
			set(0, 19, cloudy).
			bands()

		res, err := CloudMask(b, Options{MinFilter: filters.Square(3), WaterThreshold: DefaultWaterThreshold, ShadowRadius: DefaultShadowRadius})
		require.NoError(t, err)
		assert.False(t, res.Cloud.Any())
		assert.False(t, res.Shadow.Any(), "shadows need a nearby cloud")

		ungated, err := CloudMask(b, noFilters)
		require.NoError(t, err)
		assert.True(t, ungated.Shadow.Any(), "the gate only runs with a minimum filter")
	})

	t.Run("cloud too far", func(t *testing.T) {
		b := cloudAndShadowScene().bands()

		res, err := CloudMask(b, Options{MinFilter: filters.Square(3), WaterThreshold: DefaultWaterThreshold, ShadowRadius: 2})
		require.NoError(t, err)
		assert.NotEmpty(t, cells(res.Cloud))
		assert.False(t, res.Shadow.Any())
	})
}

func TestCloudMaskShadowGateAtDefaultRadius(t *testing.T) {
	// distances from the cloud at the origin: inside are below 100 cells,
	// outside are at or beyond it
	inside := [][2]int{{0, 99}, {60, 79}, {70, 70}, {99, 14}}
	outside := [][2]int{{71, 71}, {80, 61}, {100, 0}, {129, 129}}

	s := newScene(130, 130, clearLand).set(0, 0, cloudy)
	for _, c := range append(append([][2]int{}, inside...), outside...) {
		s.set(c[0], c[1], darkLand)
	}
	b := s.bands()

	// a 1x1 minimum filter enables the gate without eroding anything
	res, err := CloudMask(b, Options{
		MinFilter:      filters.Square(1),
		WaterThreshold: DefaultWaterThreshold,
		ShadowRadius:   DefaultShadowRadius,
	})
	require.NoError(t, err)
	assert.Equal(t, [][2]int{{0, 0}}, cells(res.Cloud))
	assert.Equal(t, inside, cells(res.Shadow))

	ungated, err := CloudMask(b, noFilters)
	require.NoError(t, err)
	assert.Len(t, cells(ungated.Shadow), len(inside)+len(outside))
}

func TestCloudMaskIsDeterministic(t *testing.T) {
	b := cloudAndShadowScene().bands()
	before := b.NIR.Clone()

	first, err := CloudMask(b, DefaultOptions())
	require.NoError(t, err)
	second, err := CloudMask(b, DefaultOptions())
	require.NoError(t, err)

	assert.Equal(t, first.Cloud.Data, second.Cloud.Data)
	assert.Equal(t, first.Shadow.Data, second.Shadow.Data)
	assert.Equal(t, before.Data, b.NIR.Data, "inputs are not modified")
}

func TestCloudMaskInvalidInput(t *testing.T) {
	t.Run("shape mismatch", func(t *testing.T) {
		b := newScene(4, 4, clearLand).bands()
		b.Cirrus = grid.NewFloat(4, 5)

		_, err := CloudMask(b, DefaultOptions())
		require.ErrorIs(t, err, grid.ErrShapeMismatch)
		assert.Contains(t, err.Error(), "cirrus")
	})

	t.Run("missing band", func(t *testing.T) {
		b := newScene(4, 4, clearLand).bands()
		b.SWIR2 = nil

		_, err := CloudMask(b, DefaultOptions())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "swir2")
	})

	t.Run("negative window", func(t *testing.T) {
		b := newScene(4, 4, clearLand).bands()
		opt := DefaultOptions()
		opt.MaxFilter = filters.Window{Rows: -1, Cols: 3}

		_, err := CloudMask(b, opt)
		require.ErrorIs(t, err, filters.ErrInvalidWindow)
	})
}

func TestPostFilterShapeMismatch(t *testing.T) {
	_, _, err := PostFilter(grid.NewMask(2, 2), grid.NewMask(3, 2), DefaultOptions())
	require.ErrorIs(t, err, grid.ErrShapeMismatch)
}
