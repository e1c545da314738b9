package pipeline

import (
	"context"
	"fmt"

	"cloudmask/internal/equations"
	"cloudmask/internal/grid"
	"cloudmask/internal/raster"
)

type maskSaver struct {
	writer        MaskWriter
	logger        Logger
	timingTracker TimingTracker
}

// Save encodes the cloud and shadow layers with the thermal nodata and
// writes them with the profile of the red band.
func (s *maskSaver) Save(ctx context.Context, path string, res *equations.Result, tirs1 *grid.Float,
	profile raster.Profile, opt raster.WriteOptions) (*grid.Uint8, error) {

	ctx = s.timingTracker.StartTiming(ctx, "save")
	defer s.timingTracker.EndTiming(ctx)

	encoded, err := equations.NodataMask(res.Cloud, res.Shadow, tirs1)
	if err != nil {
		return nil, fmt.Errorf("encode mask: %w", err)
	}

	s.logger.Debug("MaskSaver", "writing mask", map[string]interface{}{
		"path":             path,
		"dtype":            string(opt.DType),
		"creation_options": opt.CreationOptions,
	})

	if err := s.writer.WriteMask(path, encoded, profile, opt); err != nil {
		return nil, err
	}
	return encoded, nil
}
