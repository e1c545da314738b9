package grid

import (
	"fmt"
	"math"
)

// Float is a row-major grid of float64 values. NaN and Inf are legal cell
// values and propagate through arithmetic.
type Float struct {
	Shape
	Data []float64
}

// NewFloat returns a zeroed grid.
func NewFloat(rows, cols int) *Float {
	return &Float{Shape: Shape{Rows: rows, Cols: cols}, Data: make([]float64, rows*cols)}
}

// Fill returns a grid with every cell set to v.
func Fill(rows, cols int, v float64) *Float {
	g := NewFloat(rows, cols)
	for i := range g.Data {
		g.Data[i] = v
	}
	return g
}

// FromSlice wraps data without copying. len(data) must equal rows*cols.
func FromSlice(rows, cols int, data []float64) (*Float, error) {
	if rows <= 0 || cols <= 0 {
		return nil, fmt.Errorf("invalid grid dimensions %dx%d", rows, cols)
	}
	if len(data) != rows*cols {
		return nil, fmt.Errorf("%w: %d values for %dx%d grid", ErrShapeMismatch, len(data), rows, cols)
	}
	return &Float{Shape: Shape{Rows: rows, Cols: cols}, Data: data}, nil
}

// At returns the value at row, col.
func (g *Float) At(row, col int) float64 {
	return g.Data[row*g.Cols+col]
}

// Set stores v at row, col.
func (g *Float) Set(row, col int, v float64) {
	g.Data[row*g.Cols+col] = v
}

// Clone returns a deep copy.
func (g *Float) Clone() *Float {
	out := &Float{Shape: g.Shape, Data: make([]float64, len(g.Data))}
	copy(out.Data, g.Data)
	return out
}

// Map applies fn to every cell and returns a new grid.
func (g *Float) Map(fn func(v float64) float64) *Float {
	out := NewFloat(g.Rows, g.Cols)
	for i, v := range g.Data {
		out.Data[i] = fn(v)
	}
	return out
}

// Where returns a mask that is true where pred holds.
func (g *Float) Where(pred func(v float64) bool) *Mask {
	out := NewMask(g.Rows, g.Cols)
	for i, v := range g.Data {
		out.Data[i] = pred(v)
	}
	return out
}

// Map2 combines two same-shaped grids cell by cell.
func Map2(a, b *Float, fn func(x, y float64) float64) *Float {
	mustMatch(a.Shape, b.Shape)
	out := NewFloat(a.Rows, a.Cols)
	for i := range a.Data {
		out.Data[i] = fn(a.Data[i], b.Data[i])
	}
	return out
}

// Map3 combines three same-shaped grids cell by cell.
func Map3(a, b, c *Float, fn func(x, y, z float64) float64) *Float {
	mustMatch(a.Shape, b.Shape)
	mustMatch(a.Shape, c.Shape)
	out := NewFloat(a.Rows, a.Cols)
	for i := range a.Data {
		out.Data[i] = fn(a.Data[i], b.Data[i], c.Data[i])
	}
	return out
}

// Select returns the values of g where m is true, skipping NaN cells.
func (g *Float) Select(m *Mask) []float64 {
	mustMatch(g.Shape, m.Shape)
	out := make([]float64, 0, m.Count())
	for i, ok := range m.Data {
		if ok && !math.IsNaN(g.Data[i]) {
			out = append(out, g.Data[i])
		}
	}
	return out
}
