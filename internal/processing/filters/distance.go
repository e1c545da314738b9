package filters

import (
	"math"

	"cloudmask/internal/grid"
)

// DistanceToTrue returns, for every cell, the exact Euclidean distance in
// cell units to the nearest true cell of m. True cells are 0. When m has no
// true cell every distance is +Inf.
//
// The transform runs the Felzenszwalb and Huttenlocher lower envelope of
// parabolas down every column and then along every row. Squared distances
// are small integers, so float64 carries them without rounding.
func DistanceToTrue(m *grid.Mask) *grid.Float {
	if !m.Any() {
		return grid.Fill(m.Rows, m.Cols, math.Inf(1))
	}

	rows, cols := m.Rows, m.Cols
	// far exceeds any squared distance inside the grid
	far := float64(rows*rows + cols*cols + 1)

	sq := make([]float64, rows*cols)
	for i, v := range m.Data {
		if !v {
			sq[i] = far
		}
	}

	n := max(rows, cols)
	env := newEnvelope(n)
	in := make([]float64, n)
	out := make([]float64, n)

	for c := 0; c < cols; c++ {
		for r := 0; r < rows; r++ {
			in[r] = sq[r*cols+c]
		}
		env.transform(in[:rows], out[:rows])
		for r := 0; r < rows; r++ {
			sq[r*cols+c] = out[r]
		}
	}

	for r := 0; r < rows; r++ {
		line := sq[r*cols : (r+1)*cols]
		copy(in, line)
		env.transform(in[:cols], line)
	}

	dist := grid.NewFloat(rows, cols)
	for i, v := range sq {
		dist.Data[i] = math.Sqrt(v)
	}
	return dist
}

// envelope holds the scratch space of the 1-D squared distance transform.
type envelope struct {
	v []int     // parabola vertices
	z []float64 // boundaries between parabolas
}

func newEnvelope(n int) *envelope {
	return &envelope{v: make([]int, n), z: make([]float64, n+1)}
}

// transform writes d[q] = min_p (q-p)^2 + f[p].
func (e *envelope) transform(f, d []float64) {
	n := len(f)
	if n == 0 {
		return
	}

	k := 0
	e.v[0] = 0
	e.z[0] = math.Inf(-1)
	e.z[1] = math.Inf(1)
	for q := 1; q < n; q++ {
		s := e.intersect(f, q, e.v[k])
		for s <= e.z[k] {
			k--
			s = e.intersect(f, q, e.v[k])
		}
		k++
		e.v[k] = q
		e.z[k] = s
		e.z[k+1] = math.Inf(1)
	}

	k = 0
	for q := 0; q < n; q++ {
		for e.z[k+1] < float64(q) {
			k++
		}
		dq := float64(q - e.v[k])
		d[q] = dq*dq + f[e.v[k]]
	}
}

// intersect is the abscissa where the parabolas rooted at q and p meet.
func (e *envelope) intersect(f []float64, q, p int) float64 {
	fq, fp := float64(q), float64(p)
	return ((f[q] + fq*fq) - (f[p] + fp*fp)) / (2 * (fq - fp))
}
