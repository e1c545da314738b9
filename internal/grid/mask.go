package grid

import "fmt"

// Mask is a row-major boolean grid.
type Mask struct {
	Shape
	Data []bool
}

func NewMask(rows, cols int) *Mask {
	return &Mask{Shape: Shape{Rows: rows, Cols: cols}, Data: make([]bool, rows*cols)}
}

// MaskFromSlice wraps data without copying.
func MaskFromSlice(rows, cols int, data []bool) (*Mask, error) {
	if rows <= 0 || cols <= 0 {
		return nil, fmt.Errorf("invalid mask dimensions %dx%d", rows, cols)
	}
	if len(data) != rows*cols {
		return nil, fmt.Errorf("%w: %d values for %dx%d mask", ErrShapeMismatch, len(data), rows, cols)
	}
	return &Mask{Shape: Shape{Rows: rows, Cols: cols}, Data: data}, nil
}

func (m *Mask) At(row, col int) bool {
	return m.Data[row*m.Cols+col]
}

func (m *Mask) Set(row, col int, v bool) {
	m.Data[row*m.Cols+col] = v
}

func (m *Mask) Clone() *Mask {
	out := &Mask{Shape: m.Shape, Data: make([]bool, len(m.Data))}
	copy(out.Data, m.Data)
	return out
}

// Count returns the number of true cells.
func (m *Mask) Count() int {
	n := 0
	for _, v := range m.Data {
		if v {
			n++
		}
	}
	return n
}

// Any reports whether at least one cell is true.
func (m *Mask) Any() bool {
	for _, v := range m.Data {
		if v {
			return true
		}
	}
	return false
}

// Not returns the complement.
func (m *Mask) Not() *Mask {
	out := NewMask(m.Rows, m.Cols)
	for i, v := range m.Data {
		out.Data[i] = !v
	}
	return out
}

// And returns the cellwise conjunction of one or more masks.
func And(first *Mask, rest ...*Mask) *Mask {
	out := first.Clone()
	for _, m := range rest {
		mustMatch(out.Shape, m.Shape)
		for i, v := range m.Data {
			out.Data[i] = out.Data[i] && v
		}
	}
	return out
}

// Or returns the cellwise disjunction of one or more masks.
func Or(first *Mask, rest ...*Mask) *Mask {
	out := first.Clone()
	for _, m := range rest {
		mustMatch(out.Shape, m.Shape)
		for i, v := range m.Data {
			out.Data[i] = out.Data[i] || v
		}
	}
	return out
}

// Subset reports whether every true cell of m is also true in other.
func (m *Mask) Subset(other *Mask) bool {
	mustMatch(m.Shape, other.Shape)
	for i, v := range m.Data {
		if v && !other.Data[i] {
			return false
		}
	}
	return true
}
