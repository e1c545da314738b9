// Package raster reads single-band GeoTIFF inputs into grids and writes the
// encoded cloud mask back out, carrying the georeferencing across.
package raster

import (
	"errors"
	"fmt"
	"math"
	"sync"

	"cloudmask/internal/grid"

	"github.com/airbusgeo/godal"
)

// ErrMissingInput is wrapped when a band file is absent or unreadable.
var ErrMissingInput = errors.New("missing input raster")

var registerOnce sync.Once

func register() {
	registerOnce.Do(godal.RegisterAll)
}

// DType is the storage type of the written mask.
type DType string

const (
	Uint8  DType = "uint8"
	Uint16 DType = "uint16"
)

// DTypes lists the accepted output types.
var DTypes = []DType{Uint8, Uint16}

func ParseDType(s string) (DType, error) {
	for _, d := range DTypes {
		if string(d) == s {
			return d, nil
		}
	}
	return "", fmt.Errorf("unsupported dtype %q (want uint8 or uint16)", s)
}

// holds reports whether v is storable in d without change.
func (d DType) holds(v float64) bool {
	limit := float64(math.MaxUint8)
	if d == Uint16 {
		limit = math.MaxUint16
	}
	return v == math.Trunc(v) && v >= 0 && v <= limit
}

func (d DType) gdal() godal.DataType {
	if d == Uint16 {
		return godal.UInt16
	}
	return godal.Byte
}

// Profile is the georeferencing of a raster, independent of its pixels.
type Profile struct {
	Width  int
	Height int

	GeoTransform    [6]float64
	HasGeoTransform bool
	Projection      string

	NoData    float64
	HasNoData bool
}

// Shape returns the grid shape matching the raster size.
func (p Profile) Shape() grid.Shape {
	return grid.Shape{Rows: p.Height, Cols: p.Width}
}

// Band is one input raster read fully into memory.
type Band struct {
	Path    string
	Data    *grid.Float
	Profile Profile
}

// WriteOptions controls how a mask is stored.
type WriteOptions struct {
	DType DType
	// CreationOptions are GDAL KEY=VALUE driver options such as COMPRESS=DEFLATE.
	CreationOptions []string
}

// GDAL reads and writes rasters through the GDAL library.
type GDAL struct{}

func (GDAL) ReadBand(path string) (*Band, error) {
	return ReadBand(path)
}

func (GDAL) WriteMask(path string, m *grid.Uint8, p Profile, opt WriteOptions) error {
	return WriteMask(path, m, p, opt)
}
