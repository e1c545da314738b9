package grid

// Uint8 is a row-major grid of bytes, used for encoded masks.
type Uint8 struct {
	Shape
	Data []uint8
}

func NewUint8(rows, cols int) *Uint8 {
	return &Uint8{Shape: Shape{Rows: rows, Cols: cols}, Data: make([]uint8, rows*cols)}
}

func (g *Uint8) At(row, col int) uint8 {
	return g.Data[row*g.Cols+col]
}

// Unique returns the distinct values present, in ascending order.
func (g *Uint8) Unique() []uint8 {
	var seen [256]bool
	for _, v := range g.Data {
		seen[v] = true
	}
	out := make([]uint8, 0, 2)
	for v, ok := range seen {
		if ok {
			out = append(out, uint8(v))
		}
	}
	return out
}
