package raster

import (
	"fmt"

	"cloudmask/internal/grid"

	"github.com/airbusgeo/godal"
)

// WriteMask stores m as a single-band GeoTIFF using the size,
// georeferencing and declared nodata of p. The dtype comes from opt,
// never from p, and a nodata value it cannot hold is dropped.
func WriteMask(path string, m *grid.Uint8, p Profile, opt WriteOptions) error {
	if err := grid.CheckShapes([]string{"mask", "profile"}, m.Shape, p.Shape()); err != nil {
		return err
	}
	dtype := opt.DType
	if dtype == "" {
		dtype = Uint8
	}

	register()
	var createOpts []godal.DatasetCreateOption
	if len(opt.CreationOptions) > 0 {
		createOpts = append(createOpts, godal.CreationOption(opt.CreationOptions...))
	}
	ds, err := godal.Create(godal.GTiff, path, 1, dtype.gdal(), p.Width, p.Height, createOpts...)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}

	if err := writeMaskData(ds, m, p, dtype); err != nil {
		ds.Close()
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	if err := ds.Close(); err != nil {
		return fmt.Errorf("failed to close %s: %w", path, err)
	}
	return nil
}

func writeMaskData(ds *godal.Dataset, m *grid.Uint8, p Profile, dtype DType) error {
	if p.HasGeoTransform {
		if err := ds.SetGeoTransform(p.GeoTransform); err != nil {
			return fmt.Errorf("geotransform: %w", err)
		}
	}
	if p.Projection != "" {
		if err := ds.SetProjection(p.Projection); err != nil {
			return fmt.Errorf("projection: %w", err)
		}
	}

	band := ds.Bands()[0]
	if p.HasNoData && dtype.holds(p.NoData) {
		if err := band.SetNoData(p.NoData); err != nil {
			return fmt.Errorf("nodata: %w", err)
		}
	}

	switch dtype {
	case Uint16:
		buf := make([]uint16, len(m.Data))
		for i, v := range m.Data {
			buf[i] = uint16(v)
		}
		return band.Write(0, 0, buf, p.Width, p.Height)
	default:
		return band.Write(0, 0, m.Data, p.Width, p.Height)
	}
}
