package pipeline

import (
	"context"
	"fmt"

	"cloudmask/internal/equations"
	"cloudmask/internal/grid"
	"cloudmask/internal/models"
	"cloudmask/internal/raster"

	"golang.org/x/sync/errgroup"
)

// redBand is the index of the band whose profile is copied to the output.
const redBand = 2

type bandLoader struct {
	reader        BandReader
	logger        Logger
	timingTracker TimingTracker
	concurrency   int
}

// Load reads all eight bands concurrently and checks they are co-registered.
func (l *bandLoader) Load(ctx context.Context, paths models.BandPaths) (*models.SceneData, error) {
	ctx = l.timingTracker.StartTiming(ctx, "load")
	defer l.timingTracker.EndTiming(ctx)

	list := paths.List()
	loaded := make([]*raster.Band, len(list))

	g, gctx := errgroup.WithContext(ctx)
	if l.concurrency > 0 {
		g.SetLimit(l.concurrency)
	}
	for i, path := range list {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			name := equations.BandNames[i]
			l.logger.Debug("BandLoader", "reading band", map[string]interface{}{
				"band": name,
				"path": path,
			})
			b, err := l.reader.ReadBand(path)
			if err != nil {
				return fmt.Errorf("%s band: %w", name, err)
			}
			loaded[i] = b
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	grids := make([]grid.Shaper, len(loaded))
	for i, b := range loaded {
		grids[i] = b.Data
	}
	if err := grid.CheckShapes(equations.BandNames, grids...); err != nil {
		return nil, err
	}

	for i, b := range loaded {
		s := SummarizeBand(equations.BandNames[i], b.Data)
		l.logger.Debug("BandLoader", "band summary", s.Fields())
	}

	red := loaded[redBand].Profile
	l.logger.Info("BandLoader", "bands loaded", map[string]interface{}{
		"bands": len(loaded),
		"size":  fmt.Sprintf("%dx%d", red.Width, red.Height),
	})

	return &models.SceneData{
		Paths: paths,
		Bands: equations.Bands{
			Blue:   loaded[0].Data,
			Green:  loaded[1].Data,
			Red:    loaded[2].Data,
			NIR:    loaded[3].Data,
			SWIR1:  loaded[4].Data,
			SWIR2:  loaded[5].Data,
			Cirrus: loaded[6].Data,
			TIRS1:  loaded[7].Data,
		},
		Profile: red,
	}, nil
}
