package pipeline

import (
	"context"
	"fmt"

	"cloudmask/internal/equations"
	"cloudmask/internal/models"
)

type maskProcessor struct {
	logger        Logger
	timingTracker TimingTracker
}

// Process runs the potential layers and the post filter with a
// cancellation check in between.
func (p *maskProcessor) Process(ctx context.Context, scene *models.SceneData, params models.MaskParameters) (*equations.Result, error) {
	ctx = p.timingTracker.StartTiming(ctx, "compute")
	defer p.timingTracker.EndTiming(ctx)

	if err := scene.Bands.Validate(); err != nil {
		return nil, err
	}
	opt := params.Options()

	p.logger.Info("MaskProcessor", "running initial tests", nil)
	p.logger.Info("MaskProcessor", "calculating potential clouds and shadows", map[string]interface{}{
		"water_threshold": opt.WaterThreshold,
	})
	layers := equations.PotentialLayers(scene.Bands, opt.WaterThreshold)

	p.logger.Debug("MaskProcessor", "potential layers ready", map[string]interface{}{
		"water_temp":       layers.WaterTemp,
		"land_temp_low":    layers.LandTempLow,
		"land_temp_high":   layers.LandTempHigh,
		"land_threshold":   layers.LandThreshold,
		"potential_cloud":  layers.PotentialCloud.Count(),
		"potential_shadow": layers.PotentialShadow.Count(),
	})

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if opt.MinFilter.Enabled() {
		p.logger.Info("MaskProcessor", "removing outliers with minimum filter", map[string]interface{}{
			"window":        opt.MinFilter.String(),
			"shadow_radius": opt.ShadowRadius,
		})
	}
	if opt.MaxFilter.Enabled() {
		p.logger.Info("MaskProcessor", "buffering edges with maximum filter", map[string]interface{}{
			"window": opt.MaxFilter.String(),
		})
	}
	cloud, shadow, err := equations.PostFilter(layers.PotentialCloud, layers.PotentialShadow, opt)
	if err != nil {
		return nil, fmt.Errorf("post filter: %w", err)
	}

	return &equations.Result{Cloud: cloud, Shadow: shadow, Layers: layers}, nil
}
