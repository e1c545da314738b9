package filters

import (
	"errors"
	"fmt"
	"image"

	"cloudmask/internal/grid"
	"cloudmask/internal/opencv/safe"

	"gocv.io/x/gocv"
)

// ErrInvalidWindow is returned for windows with a negative side.
var ErrInvalidWindow = errors.New("invalid filter window")

// Window is a rectangular rank filter footprint. A window with a zero side
// is disabled.
type Window struct {
	Rows int
	Cols int
}

// Square returns an n x n window.
func Square(n int) Window {
	return Window{Rows: n, Cols: n}
}

func (w Window) Enabled() bool {
	return w.Rows > 0 && w.Cols > 0
}

func (w Window) Validate() error {
	if w.Rows < 0 || w.Cols < 0 {
		return fmt.Errorf("%w: %dx%d", ErrInvalidWindow, w.Rows, w.Cols)
	}
	return nil
}

func (w Window) String() string {
	if !w.Enabled() {
		return "disabled"
	}
	return fmt.Sprintf("%dx%d", w.Rows, w.Cols)
}

// MinimumFilter erodes m: a cell stays true only when every in-bounds cell
// of the window centred on it is true. Cells beyond the border do not take
// part, which matches a reflect-padded rank filter. Even sides put the
// extra cell before the centre.
func MinimumFilter(m *grid.Mask, w Window) (*grid.Mask, error) {
	return rankFilter(m, w, "minimum_filter", func(src gocv.Mat, dst *gocv.Mat, kernel gocv.Mat) {
		gocv.Erode(src, dst, kernel)
	})
}

// MaximumFilter dilates m: a cell becomes true when any in-bounds cell of
// the window centred on it is true.
func MaximumFilter(m *grid.Mask, w Window) (*grid.Mask, error) {
	return rankFilter(m, w, "maximum_filter", func(src gocv.Mat, dst *gocv.Mat, kernel gocv.Mat) {
		gocv.Dilate(src, dst, kernel)
	})
}

func rankFilter(m *grid.Mask, w Window, name string, apply func(src gocv.Mat, dst *gocv.Mat, kernel gocv.Mat)) (*grid.Mask, error) {
	if err := w.Validate(); err != nil {
		return nil, err
	}
	if !w.Enabled() {
		return m.Clone(), nil
	}
	if err := safe.ValidateKernel(w.Cols, w.Rows, name); err != nil {
		return nil, err
	}

	src, err := safe.NewMatFromMask(m, name+"_src")
	if err != nil {
		return nil, fmt.Errorf("failed to create %s input: %w", name, err)
	}
	defer src.Close()

	kernel := gocv.GetStructuringElement(gocv.MorphRect, image.Point{X: w.Cols, Y: w.Rows})
	defer kernel.Close()

	dst, err := safe.NewMat(m.Rows, m.Cols, gocv.MatTypeCV8UC1, name+"_dst")
	if err != nil {
		return nil, fmt.Errorf("failed to create %s output: %w", name, err)
	}
	defer dst.Close()

	apply(src.GetMat(), dst.Ptr(), kernel)

	out, err := dst.ToMask()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	return out, nil
}
