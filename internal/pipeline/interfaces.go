package pipeline

import (
	"context"
	"time"

	"cloudmask/internal/grid"
	"cloudmask/internal/raster"
)

// Logger is satisfied by logger.Logger.
type Logger interface {
	Debug(component string, message string, fields map[string]interface{})
	Info(component string, message string, fields map[string]interface{})
	Warning(component string, message string, fields map[string]interface{})
	Error(component string, err error, fields map[string]interface{})
}

type TimingTracker interface {
	StartTiming(ctx context.Context, operation string) context.Context
	EndTiming(ctx context.Context) time.Duration
}

// BandReader loads one single-band raster. raster.GDAL is the production
// implementation.
type BandReader interface {
	ReadBand(path string) (*raster.Band, error)
}

// MaskWriter stores the encoded mask.
type MaskWriter interface {
	WriteMask(path string, m *grid.Uint8, p raster.Profile, opt raster.WriteOptions) error
}
