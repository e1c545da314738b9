package equations

import (
	"math"
	"sort"

	"cloudmask/internal/grid"
)

// Percentiles returns the requested percentiles (0..100) of the cells of
// values selected by mask. NaN cells are ignored. Interpolation is linear
// between the two closest order statistics, virtual index p/100*(n-1).
//
// When no cell survives, every result is NaN and ok is false.
// It panics with grid.ErrShapeMismatch when the grids differ in shape.
func Percentiles(values *grid.Float, mask *grid.Mask, ps ...float64) (out []float64, ok bool) {
	sample := values.Select(mask)
	out = make([]float64, len(ps))
	if len(sample) == 0 {
		for i := range out {
			out[i] = math.NaN()
		}
		return out, false
	}

	sort.Float64s(sample)
	for i, p := range ps {
		out[i] = sortedPercentile(sample, p)
	}
	return out, true
}

// Percentile is Percentiles for a single value.
func Percentile(values *grid.Float, mask *grid.Mask, p float64) (float64, bool) {
	out, ok := Percentiles(values, mask, p)
	return out[0], ok
}

func sortedPercentile(sorted []float64, p float64) float64 {
	n := len(sorted)
	virtual := (p / 100) * float64(n-1)
	lo := math.Floor(virtual)
	if lo < 0 {
		lo = 0
	}
	if lo > float64(n-1) {
		lo = float64(n - 1)
	}
	hi := lo + 1
	if hi > float64(n-1) {
		hi = float64(n - 1)
	}
	return lerp(sorted[int(lo)], sorted[int(hi)], virtual-lo)
}

// lerp interpolates from the nearer end point so results stay within
// [a, b] under rounding.
func lerp(a, b, t float64) float64 {
	diff := b - a
	if t >= 0.5 {
		return b - diff*(1-t)
	}
	return a + diff*t
}
