package equations

import (
	"cloudmask/internal/grid"
)

// pixel is one cell of every input band.
type pixel struct {
	blue, green, red, nir, swir1, swir2, cirrus, tirs1 float64
}

var (
	// clearLand is bright enough to fail every shadow test, too dark in
	// SWIR2 to be a potential cloud and vegetated enough not to be water.
	clearLand = pixel{blue: 0.2, green: 0.2, red: 0.2, nir: 0.3, swir1: 0.15, swir2: 0.01, cirrus: 0, tirs1: 30}

	// cloudy is white, bright and cold.
	cloudy = pixel{blue: 0.5, green: 0.5, red: 0.5, nir: 0.5, swir1: 0.4, swir2: 0.3, cirrus: 0, tirs1: 10}

	// darkLand passes the shadow darkness test without being water.
	darkLand = pixel{blue: 0.03, green: 0.03, red: 0.03, nir: 0.05, swir1: 0.05, swir2: 0.01, cirrus: 0, tirs1: 30}

	// openWater passes the water test and the clear water SWIR2 test.
	openWater = pixel{blue: 0.06, green: 0.05, red: 0.05, nir: 0.04, swir1: 0.02, swir2: 0.01, cirrus: 0, tirs1: 20}
)

type scene struct {
	rows, cols int
	px         []pixel
}

func newScene(rows, cols int, fill pixel) *scene {
	s := &scene{rows: rows, cols: cols, px: make([]pixel, rows*cols)}
	for i := range s.px {
		s.px[i] = fill
	}
	return s
}

func (s *scene) set(row, col int, p pixel) *scene {
	s.px[row*s.cols+col] = p
	return s
}

// block fills rows [r0, r1) and cols [c0, c1).
func (s *scene) block(r0, r1, c0, c1 int, p pixel) *scene {
	for r := r0; r < r1; r++ {
		for c := c0; c < c1; c++ {
			s.set(r, c, p)
		}
	}
	return s
}

func (s *scene) bands() Bands {
	band := func(get func(p pixel) float64) *grid.Float {
		g := grid.NewFloat(s.rows, s.cols)
		for i, p := range s.px {
			g.Data[i] = get(p)
		}
		return g
	}
	return Bands{
		Blue:   band(func(p pixel) float64 { return p.blue }),
		Green:  band(func(p pixel) float64 { return p.green }),
		Red:    band(func(p pixel) float64 { return p.red }),
		NIR:    band(func(p pixel) float64 { return p.nir }),
		SWIR1:  band(func(p pixel) float64 { return p.swir1 }),
		SWIR2:  band(func(p pixel) float64 { return p.swir2 }),
		Cirrus: band(func(p pixel) float64 { return p.cirrus }),
		TIRS1:  band(func(p pixel) float64 { return p.tirs1 }),
	}
}

func row(values ...float64) *grid.Float {
	g, err := grid.FromSlice(1, len(values), values)
	if err != nil {
		panic(err)
	}
	return g
}

func maskRow(values ...bool) *grid.Mask {
	m, err := grid.MaskFromSlice(1, len(values), values)
	if err != nil {
		panic(err)
	}
	return m
}

// cells lists the true cells of m as [row, col] pairs.
func cells(m *grid.Mask) [][2]int {
	var out [][2]int
	for r := 0; r < m.Rows; r++ {
		for c := 0; c < m.Cols; c++ {
			if m.At(r, c) {
				out = append(out, [2]int{r, c})
			}
		}
	}
	return out
}

func blockCells(r0, r1, c0, c1 int) [][2]int {
	var out [][2]int
	for r := r0; r < r1; r++ {
		for c := c0; c < c1; c++ {
			out = append(out, [2]int{r, c})
		}
	}
	return out
}

var noFilters = Options{WaterThreshold: DefaultWaterThreshold, ShadowRadius: DefaultShadowRadius}
