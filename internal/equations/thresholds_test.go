package equations

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClearSkyLand(t *testing.T) {
	pcp := maskRow(true, false, false, true)
	water := maskRow(false, true, false, true)

	assert.Equal(t, []bool{false, false, true, false}, ClearSkyLand(pcp, water).Data)
}

func TestTempWater(t *testing.T) {
	water := maskRow(true, true, true, true, true, false)
	swir2 := row(0.01, 0.01, 0.01, 0.01, 0.2, 0.01)
	tirs1 := row(10, 12, 14, 16, -40, 99)

	// clear water: 10, 12, 14, 16 -> index 2.475
	assert.InDelta(t, 14.95, TempWater(water, swir2, tirs1), 1e-9)
}

func TestTempWaterNoClearWater(t *testing.T) {
	got := TempWater(maskRow(false, true), row(0.01, 0.5), row(10, 20))
	assert.True(t, math.IsNaN(got))
}

func TestTempLand(t *testing.T) {
	pcp := maskRow(false, false, false, false, false, true)
	water := maskRow(false, false, false, false, false, false)
	tirs1 := row(1, 2, 3, 4, 5, -60)

	tlow, thigh := TempLand(pcp, water, tirs1)
	assert.InDelta(t, 1.7, tlow, 1e-12)
	assert.InDelta(t, 4.3, thigh, 1e-12)
}

func TestTempLandAllWater(t *testing.T) {
	tlow, thigh := TempLand(maskRow(false, false), maskRow(true, true), row(10, 20))
	assert.True(t, math.IsNaN(tlow))
	assert.True(t, math.IsNaN(thigh))
}

func TestLandThreshold(t *testing.T) {
	lcp := row(0.1, 0.2, 0.3, 0.4, 0.5, 5)
	pcp := maskRow(false, false, false, false, false, true)
	water := maskRow(false, false, false, false, false, false)

	assert.InDelta(t, 0.43+0.2, LandThreshold(lcp, pcp, water), 1e-12)

	none := LandThreshold(lcp, maskRow(true, true, true, true, true, true), water)
	assert.True(t, math.IsNaN(none))
}
