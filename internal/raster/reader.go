package raster

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"cloudmask/internal/grid"

	"github.com/airbusgeo/godal"
)

// ReadBand loads the first band of path as float64. Pixel values are kept
// as stored; a declared nodata value is only recorded in the profile.
func ReadBand(path string) (*Band, error) {
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrMissingInput, path)
		}
		return nil, fmt.Errorf("%w: %s: %v", ErrMissingInput, path, err)
	}

	register()
	ds, err := godal.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: open %s: %v", ErrMissingInput, path, err)
	}
	defer ds.Close()

	bands := ds.Bands()
	if len(bands) == 0 {
		return nil, fmt.Errorf("%w: %s has no bands", ErrMissingInput, path)
	}
	band := bands[0]

	profile := readProfile(ds, band)
	data := make([]float64, profile.Width*profile.Height)
	if err := band.Read(0, 0, data, profile.Width, profile.Height); err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	g, err := grid.FromSlice(profile.Height, profile.Width, data)
	if err != nil {
		return nil, fmt.Errorf("failed to wrap %s: %w", path, err)
	}

	return &Band{Path: path, Data: g, Profile: profile}, nil
}

func readProfile(ds *godal.Dataset, band godal.Band) Profile {
	st := band.Structure()
	p := Profile{
		Width:      st.SizeX,
		Height:     st.SizeY,
		Projection: ds.Projection(),
	}
	if gt, err := ds.GeoTransform(); err == nil {
		p.GeoTransform = gt
		p.HasGeoTransform = true
	}
	p.NoData, p.HasNoData = band.NoData()
	return p
}
