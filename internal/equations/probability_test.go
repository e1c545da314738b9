package equations

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWaterTempProb(t *testing.T) {
	wtp := WaterTempProb(20, row(20, 16, 24))
	assert.InDeltaSlice(t, []float64{0, 1, -1}, wtp.Data, 1e-12)

	allNaN := WaterTempProb(math.NaN(), row(20))
	assert.True(t, math.IsNaN(allNaN.Data[0]), "undefined water temperature propagates")
}

func TestBrightnessProb(t *testing.T) {
	nir := row(0.055, 0.5, -0.11, math.NaN())

	clipped := BrightnessProb(nir, true)
	assert.InDelta(t, 0.5, clipped.Data[0], 1e-12)
	assert.Equal(t, 1.0, clipped.Data[1])
	assert.Equal(t, 0.0, clipped.Data[2])
	assert.True(t, math.IsNaN(clipped.Data[3]))

	raw := BrightnessProb(nir, false)
	assert.InDelta(t, -1.0, raw.Data[2], 1e-12)
	assert.True(t, math.IsNaN(raw.Data[3]))
}

func TestCirrusProb(t *testing.T) {
	cp := CirrusProb(row(0, 0.02, 0.04))
	assert.InDeltaSlice(t, []float64{0, 0.5, 1}, cp.Data, 1e-12)
}

func TestWaterCloudProb(t *testing.T) {
	wcp := WaterCloudProb(row(2), row(0.5), row(0.25))
	assert.InDelta(t, 1.25, wcp.Data[0], 1e-12)
}

func TestVariabilityProbSkipsNaN(t *testing.T) {
	vp := VariabilityProb(
		row(0.2, math.NaN(), -0.6, math.NaN()),
		row(0.1, 0.3, 0.1, math.NaN()),
		row(0.0, 0.1, 0.5, math.NaN()),
	)
	assert.InDelta(t, 0.8, vp.Data[0], 1e-12)
	assert.InDelta(t, 0.7, vp.Data[1], 1e-12, "nan ndvi is ignored")
	assert.InDelta(t, 0.4, vp.Data[2], 1e-12, "absolute values are compared")
	assert.True(t, math.IsNaN(vp.Data[3]), "all operands nan")
}

func TestLandTempProb(t *testing.T) {
	// denominator: (30 + 4) - (20 - 4) = 18
	ltp := LandTempProb(row(34, 16, 25), 20, 30)
	assert.InDeltaSlice(t, []float64{0, 1, 0.5}, ltp.Data, 1e-12)

	undefined := LandTempProb(row(25), math.NaN(), math.NaN())
	assert.True(t, math.IsNaN(undefined.Data[0]))
}

func TestLandCloudProb(t *testing.T) {
	lcp := LandCloudProb(row(0.5), row(0.8), row(0.5))
	assert.InDelta(t, 0.9, lcp.Data[0], 1e-12)
}

func TestFmax(t *testing.T) {
	nan := math.NaN()
	assert.Equal(t, 2.0, fmax(1, 2))
	assert.Equal(t, 2.0, fmax(2, 1))
	assert.Equal(t, 1.0, fmax(nan, 1))
	assert.Equal(t, 1.0, fmax(1, nan))
	assert.True(t, math.IsNaN(fmax(nan, nan)))
}
