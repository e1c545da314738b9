// Package grid provides the row-major 2-D float and boolean grids that every
// stage of the cloud mask computation consumes and produces.
//
// Elementwise helpers panic when handed grids of different shapes, in the
// same way gonum/mat panics with mat.ErrShape. Callers that accept grids from
// the outside world should call CheckShapes first and return the error.
package grid

import (
	"errors"
	"fmt"
)

// ErrShapeMismatch is returned (or wrapped) when grids that must be
// co-registered have different dimensions.
var ErrShapeMismatch = errors.New("grid shape mismatch")

// Shape is the dimension of a grid.
type Shape struct {
	Rows int
	Cols int
}

// Len returns the number of cells.
func (s Shape) Len() int {
	return s.Rows * s.Cols
}

func (s Shape) String() string {
	return fmt.Sprintf("%dx%d", s.Rows, s.Cols)
}

// Dims returns the shape itself so Shape satisfies Shaper.
func (s Shape) Dims() Shape {
	return s
}

// Shaper is anything with grid dimensions.
type Shaper interface {
	Dims() Shape
}

// CheckShapes reports ErrShapeMismatch if any grid differs from the first.
// Names are used in the error message and must match grids one to one;
// a nil names slice falls back to positional indices.
func CheckShapes(names []string, grids ...Shaper) error {
	if len(grids) == 0 {
		return nil
	}
	want := grids[0].Dims()
	if want.Rows <= 0 || want.Cols <= 0 {
		return fmt.Errorf("%w: %s has empty shape %s", ErrShapeMismatch, label(names, 0), want)
	}
	for i := 1; i < len(grids); i++ {
		if got := grids[i].Dims(); got != want {
			return fmt.Errorf("%w: %s is %s, %s is %s",
				ErrShapeMismatch, label(names, i), got, label(names, 0), want)
		}
	}
	return nil
}

func label(names []string, i int) string {
	if i < len(names) {
		return names[i]
	}
	return fmt.Sprintf("grid %d", i)
}

func mustMatch(a, b Shape) {
	if a != b {
		panic(fmt.Errorf("%w: %s and %s", ErrShapeMismatch, a, b))
	}
}
